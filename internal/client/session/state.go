// Package session owns the client's observable authentication state.
//
// The Reconciler is the only writer of State. Other components trigger
// transitions through its narrow methods and observe the result through
// Current or Subscribe:
//
//	Unknown ──Begin──▶ Loading ──Resumed / LoginSucceeded──▶ Authenticated
//	                      │                                        │
//	                      └───────────Cleared───────▶ Unauthenticated ◀─Cleared─┘
//	Unauthenticated / Authenticated ──LoginStarted──▶ Loading ──LoginFailed──▶ (previous)
package session

import "github.com/dmitrijs2005/tictac/internal/client/models"

type Status int

const (
	StatusUnknown Status = iota
	StatusLoading
	StatusAuthenticated
	StatusUnauthenticated
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// State is a snapshot of the session. User is set only when Authenticated,
// and may be nil for a session resumed from stored tokens whose identity the
// server did not report.
type State struct {
	Status Status
	User   *models.User
}

func (s State) Authenticated() bool {
	return s.Status == StatusAuthenticated
}

// Settled reports whether no login or startup check is in progress.
func (s State) Settled() bool {
	return s.Status == StatusAuthenticated || s.Status == StatusUnauthenticated
}
