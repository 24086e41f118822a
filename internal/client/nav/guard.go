// Package nav decides which view the client may show for a session state.
package nav

import (
	"context"

	"github.com/dmitrijs2005/tictac/internal/client/session"
)

type View string

const (
	ViewLogin    View = "login"
	ViewRegister View = "register"
	ViewGame     View = "game"
	ViewStats    View = "stats"
)

// Protected reports whether the view requires an authenticated session.
func (v View) Protected() bool {
	return v == ViewGame || v == ViewStats
}

// Home views for each side of the guard.
const (
	PublicHome    = ViewLogin
	ProtectedHome = ViewGame
)

// Resolve returns the view to redirect to, if any. Nothing is redirected
// while the state is Unknown or Loading.
func Resolve(state session.State, current View) (View, bool) {
	if !state.Settled() {
		return current, false
	}
	switch {
	case current.Protected() && !state.Authenticated():
		return PublicHome, true
	case !current.Protected() && state.Authenticated():
		return ProtectedHome, true
	default:
		return current, false
	}
}

// Router is the navigation surface the guard drives.
type Router interface {
	Current() View
	Replace(View)
}

// StateSource is the read side of the session reconciler.
type StateSource interface {
	Subscribe(ctx context.Context) <-chan session.State
}

// Guard reconciles the router with the session once per state change.
// It blocks until ctx ends.
func Guard(ctx context.Context, states StateSource, router Router) {
	for st := range states.Subscribe(ctx) {
		if target, redirect := Resolve(st, router.Current()); redirect {
			router.Replace(target)
		}
	}
}
