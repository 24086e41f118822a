package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/tictac/internal/client/models"
	"github.com/dmitrijs2005/tictac/internal/logging"
)

var ErrInvalidTransition = errors.New("invalid session transition")

// StateObserver is notified of every status change (metrics).
type StateObserver interface {
	ObserveState(status string)
}

type Reconciler struct {
	mu       sync.Mutex
	state    State
	previous State // restored by LoginFailed
	subs     map[int]chan State
	nextSub  int
	log      logging.Logger
	observer StateObserver
}

func NewReconciler(log logging.Logger, observer StateObserver) *Reconciler {
	if log == nil {
		log = logging.Nop()
	}
	return &Reconciler{subs: make(map[int]chan State), log: log, observer: observer}
}

func (r *Reconciler) Current() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Subscribe delivers the current state immediately and then every change.
// Slow receivers only see the latest state. The channel is closed when ctx ends.
func (r *Reconciler) Subscribe(ctx context.Context) <-chan State {
	ch := make(chan State, 1)

	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = ch
	ch <- r.state
	r.mu.Unlock()

	go func() {
		<-ctx.Done()
		r.mu.Lock()
		delete(r.subs, id)
		close(ch)
		r.mu.Unlock()
	}()
	return ch
}

// Begin starts the startup check: Unknown → Loading.
func (r *Reconciler) Begin(ctx context.Context) error {
	return r.transition(ctx, "begin", func(cur State) (State, bool) {
		if cur.Status != StatusUnknown {
			return cur, false
		}
		return State{Status: StatusLoading}, true
	})
}

// LoginStarted enters Loading from a settled state and remembers it.
func (r *Reconciler) LoginStarted(ctx context.Context) error {
	return r.transition(ctx, "login_started", func(cur State) (State, bool) {
		if !cur.Settled() {
			return cur, false
		}
		r.previous = cur
		return State{Status: StatusLoading}, true
	})
}

// LoginSucceeded moves Loading → Authenticated(user). A clear that overtook
// the login leaves the session settled; the login's stored pair then wins.
func (r *Reconciler) LoginSucceeded(ctx context.Context, user models.User) error {
	return r.transition(ctx, "login_succeeded", func(cur State) (State, bool) {
		if cur.Status == StatusUnknown {
			return cur, false
		}
		u := user
		return State{Status: StatusAuthenticated, User: &u}, true
	})
}

// LoginFailed returns from Loading to the state held before LoginStarted.
func (r *Reconciler) LoginFailed(ctx context.Context) error {
	return r.transition(ctx, "login_failed", func(cur State) (State, bool) {
		if cur.Status != StatusLoading || !r.previous.Settled() {
			return cur, false
		}
		return r.previous, true
	})
}

// Resumed moves Loading → Authenticated after a successful startup refresh.
// user may be nil when the server did not report the identity.
func (r *Reconciler) Resumed(ctx context.Context, user *models.User) error {
	return r.transition(ctx, "resumed", func(cur State) (State, bool) {
		if cur.Status != StatusLoading {
			return cur, false
		}
		var u *models.User
		if user != nil {
			copied := *user
			u = &copied
		}
		return State{Status: StatusAuthenticated, User: u}, true
	})
}

// Cleared records that the stored credentials are gone: Loading or
// Authenticated → Unauthenticated. It is a no-op when already Unauthenticated.
func (r *Reconciler) Cleared(ctx context.Context) error {
	return r.transition(ctx, "cleared", func(cur State) (State, bool) {
		switch cur.Status {
		case StatusLoading, StatusAuthenticated, StatusUnauthenticated:
			return State{Status: StatusUnauthenticated}, true
		default:
			return cur, false
		}
	})
}

func (r *Reconciler) transition(ctx context.Context, event string, next func(State) (State, bool)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.state
	ns, ok := next(cur)
	if !ok {
		return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, event, cur.Status)
	}
	if ns.Status == cur.Status && ns.User == nil && cur.User == nil {
		return nil
	}

	r.state = ns
	r.log.Info(ctx, "session state changed", "event", event, "from", cur.Status.String(), "to", ns.Status.String())
	if r.observer != nil {
		r.observer.ObserveState(ns.Status.String())
	}
	for _, ch := range r.subs {
		select {
		case <-ch:
		default:
		}
		ch <- ns
	}
	return nil
}
