// Package services contains application services for the tictac client.
// This file defines the token lifecycle: login, register, single-flight
// refresh, logout and the startup session check.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/tictac/internal/client/client"
	"github.com/dmitrijs2005/tictac/internal/client/metrics"
	"github.com/dmitrijs2005/tictac/internal/client/models"
	"github.com/dmitrijs2005/tictac/internal/common"
	"github.com/dmitrijs2005/tictac/internal/logging"
	"golang.org/x/sync/singleflight"
)

// AuthService defines the session operations used by the CLI.
//
// Contract:
//   - Login: authenticate, persist both tokens, mark the session authenticated.
//   - Register: create an account; never stores tokens or changes the session.
//   - Refresh: exchange the refresh token; concurrent calls share one exchange;
//     any failure clears both tokens.
//   - Logout: clear both tokens; never fails.
//   - CheckAuthStatus: startup check that validates stored tokens with one refresh.
//   - Current: the stored pair; ok only when both tokens are present.
type AuthService interface {
	Current(ctx context.Context) (models.CredentialPair, bool)
	Login(ctx context.Context, email, password string) (models.User, error)
	Register(ctx context.Context, email, password string) (models.User, error)
	Refresh(ctx context.Context) error
	Logout(ctx context.Context)
	CheckAuthStatus(ctx context.Context)
	AccessToken(ctx context.Context) (string, bool)
}

// TokenStore is the credential persistence the manager writes through.
// *credstore.Store satisfies it.
type TokenStore interface {
	Get(ctx context.Context, key string) (string, bool)
	Pair(ctx context.Context) models.CredentialPair
	SetPair(ctx context.Context, pair models.CredentialPair) error
	ClearPair(ctx context.Context) error
}

// SessionEvents are the transitions the manager triggers on the session
// reconciler. *session.Reconciler satisfies it.
type SessionEvents interface {
	Begin(ctx context.Context) error
	LoginStarted(ctx context.Context) error
	LoginSucceeded(ctx context.Context, user models.User) error
	LoginFailed(ctx context.Context) error
	Resumed(ctx context.Context, user *models.User) error
	Cleared(ctx context.Context) error
}

// RefreshObserver receives the result of every refresh exchange.
type RefreshObserver interface {
	ObserveRefresh(result string)
}

const refreshFlightKey = "refresh"

// TokenManager owns the credential pair. It is the only writer of the store.
type TokenManager struct {
	api      client.Client
	store    TokenStore
	events   SessionEvents
	log      logging.Logger
	observer RefreshObserver
	timeout  time.Duration
	flight   singleflight.Group

	// mu serializes credential writes. gen counts them; a refresh exchange
	// drops its result when gen moved while it talked to the server.
	mu  sync.Mutex
	gen uint64
}

type Option func(*TokenManager)

func WithLogger(l logging.Logger) Option {
	return func(m *TokenManager) { m.log = l }
}

func WithRefreshObserver(o RefreshObserver) Option {
	return func(m *TokenManager) { m.observer = o }
}

// WithRefreshTimeout bounds the shared refresh exchange.
func WithRefreshTimeout(d time.Duration) Option {
	return func(m *TokenManager) { m.timeout = d }
}

func NewTokenManager(api client.Client, store TokenStore, events SessionEvents, opts ...Option) *TokenManager {
	m := &TokenManager{
		api:     api,
		store:   store,
		events:  events,
		log:     logging.Nop(),
		timeout: client.DefaultTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AccessToken returns the stored access token.
func (m *TokenManager) AccessToken(ctx context.Context) (string, bool) {
	return m.store.Get(ctx, common.AccessTokenKey)
}

// Current returns the stored pair; ok is false unless both tokens are present.
func (m *TokenManager) Current(ctx context.Context) (models.CredentialPair, bool) {
	pair := m.store.Pair(ctx)
	return pair, pair.Complete()
}

// Login authenticates and stores the returned pair. If storing fails the
// store is cleared and the session ends unauthenticated.
func (m *TokenManager) Login(ctx context.Context, email, password string) (models.User, error) {
	if err := validateCredentials(email, password); err != nil {
		return models.User{}, err
	}
	if err := m.events.LoginStarted(ctx); err != nil {
		return models.User{}, fmt.Errorf("login: %w", err)
	}

	resp, err := m.api.Login(ctx, models.Credentials{Email: email, Password: password})
	if err != nil {
		m.loginFailed(ctx)
		m.log.Error(ctx, "login failed", "email", email, "error", err)
		return models.User{}, fmt.Errorf("login error: %w", err)
	}

	pair := resp.Pair()
	if !pair.Complete() {
		m.loginFailed(ctx)
		return models.User{}, fmt.Errorf("%w: missing tokens", client.ErrProtocol)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.setPairLocked(ctx, pair); err != nil {
		m.log.Error(ctx, "storing tokens failed, clearing credentials", "error", err)
		m.clearLocked(ctx)
		m.transition(ctx, "cleared", m.events.Cleared(ctx))
		return models.User{}, fmt.Errorf("store tokens: %w", err)
	}
	if err := m.events.LoginSucceeded(ctx, resp.User); err != nil {
		m.log.Error(ctx, "session refused login, clearing credentials", "error", err)
		m.clearLocked(ctx)
		m.transition(ctx, "cleared", m.events.Cleared(ctx))
		return models.User{}, fmt.Errorf("login: %w", err)
	}

	m.log.Info(ctx, "login successful", "user_id", resp.User.ID)
	return resp.User, nil
}

// Register creates an account. The user must log in afterwards.
func (m *TokenManager) Register(ctx context.Context, email, password string) (models.User, error) {
	if err := validateCredentials(email, password); err != nil {
		return models.User{}, err
	}
	if utf8.RuneCountInString(password) < common.MinPasswordLength {
		return models.User{}, fmt.Errorf("%w: password must be at least %d characters", client.ErrValidation, common.MinPasswordLength)
	}

	resp, err := m.api.Register(ctx, models.Credentials{Email: email, Password: password})
	if err != nil {
		m.log.Error(ctx, "register failed", "email", email, "error", err)
		return models.User{}, fmt.Errorf("register error: %w", err)
	}
	return resp.User, nil
}

// Refresh exchanges the stored refresh token for a new pair.
func (m *TokenManager) Refresh(ctx context.Context) error {
	_, err := m.refresh(ctx, "", true)
	return err
}

// RefreshStale refreshes because stale was rejected. When the stored access
// token already differs from stale, no exchange is made. It is the
// client.RefreshFunc used by the request pipeline.
func (m *TokenManager) RefreshStale(ctx context.Context, stale string) error {
	_, err := m.refresh(ctx, stale, false)
	return err
}

// Logout clears both tokens. Store failures are logged, never returned.
func (m *TokenManager) Logout(ctx context.Context) {
	m.mu.Lock()
	m.clearLocked(ctx)
	m.transition(ctx, "cleared", m.events.Cleared(ctx))
	m.mu.Unlock()
	m.log.Info(ctx, "logged out")
}

// CheckAuthStatus runs once at startup. With both tokens stored it performs a
// single refresh; otherwise the session ends unauthenticated without any
// network call.
func (m *TokenManager) CheckAuthStatus(ctx context.Context) {
	if err := m.events.Begin(ctx); err != nil {
		m.log.Warn(ctx, "auth status check skipped", "error", err)
		return
	}

	pair := m.store.Pair(ctx)
	if !pair.Complete() {
		if !pair.Empty() {
			m.log.Warn(ctx, "found a single stored token, clearing")
			m.clear(ctx)
		}
		m.transition(ctx, "cleared", m.events.Cleared(ctx))
		return
	}

	user, err := m.refresh(ctx, "", true)
	if err != nil {
		m.log.Warn(ctx, "stored session could not be resumed", "error", err)
		m.transition(ctx, "cleared", m.events.Cleared(ctx))
		return
	}
	m.transition(ctx, "resumed", m.events.Resumed(ctx, user))
}

// refresh joins the in-flight exchange or starts one. The exchange runs on a
// context detached from the caller's cancellation; each caller waits on its own ctx.
func (m *TokenManager) refresh(ctx context.Context, stale string, force bool) (*models.User, error) {
	ch := m.flight.DoChan(refreshFlightKey, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.timeout)
		defer cancel()
		user, err := m.exchange(fctx, stale, force)
		if err != nil || user == nil {
			return nil, err
		}
		return user, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		// nil when the exchange was skipped or the server did not send the user
		if res.Val == nil {
			return nil, nil
		}
		return res.Val.(*models.User), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (m *TokenManager) exchange(ctx context.Context, stale string, force bool) (*models.User, error) {
	gen := m.generation()
	pair := m.store.Pair(ctx)
	if !force && pair.AccessToken != "" && pair.AccessToken != stale {
		m.observe(metrics.RefreshSkipped)
		return nil, nil
	}
	if pair.RefreshToken == "" {
		return nil, m.refreshFailed(ctx, gen, client.ErrNoRefreshToken)
	}

	resp, err := m.api.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		return nil, m.refreshFailed(ctx, gen, err)
	}
	next := resp.Pair()
	if next.AccessToken == "" {
		return nil, m.refreshFailed(ctx, gen, fmt.Errorf("%w: missing access token", client.ErrProtocol))
	}
	// servers that do not rotate refresh tokens omit it
	if next.RefreshToken == "" {
		next.RefreshToken = pair.RefreshToken
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		m.observe(metrics.RefreshSkipped)
		m.log.Info(ctx, "credentials replaced during refresh, dropping the exchanged pair")
		return nil, nil
	}
	if err := m.setPairLocked(ctx, next); err != nil {
		return nil, m.failClosedLocked(ctx, fmt.Errorf("store tokens: %w", err))
	}

	m.observe(metrics.RefreshSuccess)
	m.log.Info(ctx, "access token refreshed")
	return resp.User, nil
}

// refreshFailed fails closed: both tokens are removed whatever the cause,
// unless a login or logout replaced them after the exchange began.
func (m *TokenManager) refreshFailed(ctx context.Context, gen uint64, cause error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		m.observe(metrics.RefreshFailure)
		m.log.Warn(ctx, "token refresh failed for replaced credentials", "error", cause)
		return fmt.Errorf("refresh token: %w", cause)
	}
	return m.failClosedLocked(ctx, cause)
}

func (m *TokenManager) failClosedLocked(ctx context.Context, cause error) error {
	m.observe(metrics.RefreshFailure)
	m.log.Error(ctx, "token refresh failed, clearing credentials", "error", cause)
	m.clearLocked(ctx)
	m.transition(ctx, "cleared", m.events.Cleared(ctx))
	return fmt.Errorf("refresh token: %w", cause)
}

func (m *TokenManager) generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen
}

// writeContext detaches credential writes from the caller's cancellation and
// bounds them by the refresh timeout.
func (m *TokenManager) writeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), m.timeout)
}

func (m *TokenManager) setPairLocked(ctx context.Context, pair models.CredentialPair) error {
	wctx, cancel := m.writeContext(ctx)
	defer cancel()
	m.gen++
	return m.store.SetPair(wctx, pair)
}

func (m *TokenManager) clearLocked(ctx context.Context) {
	wctx, cancel := m.writeContext(ctx)
	defer cancel()
	m.gen++
	if err := m.store.ClearPair(wctx); err != nil {
		m.log.Warn(ctx, "clearing credentials failed", "error", err)
	}
}

func (m *TokenManager) clear(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearLocked(ctx)
}

func (m *TokenManager) loginFailed(ctx context.Context) {
	m.transition(ctx, "login_failed", m.events.LoginFailed(ctx))
}

func (m *TokenManager) transition(ctx context.Context, event string, err error) {
	if err != nil {
		m.log.Debug(ctx, "session transition ignored", "event", event, "error", err)
	}
}

func (m *TokenManager) observe(result string) {
	if m.observer != nil {
		m.observer.ObserveRefresh(result)
	}
}

func validateCredentials(email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return fmt.Errorf("%w: email and password are required", client.ErrValidation)
	}
	return nil
}

// IsAuthFailure reports whether err means the credentials were rejected.
func IsAuthFailure(err error) bool {
	return errors.Is(err, client.ErrUnauthorized) || errors.Is(err, client.ErrNoRefreshToken)
}
