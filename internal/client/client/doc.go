// Package client contains the transport side of the tictac client.
//
// # Overview
//
// The package provides:
//  1. A request pipeline built from SendFunc values. HTTPTransport.Send is the
//     innermost stage: it encodes a Request, performs the HTTP call with the
//     configured timeout and maps failures to sentinel errors.
//  2. WithAuthRetry, a decorator that attaches the bearer token and, on a 401,
//     refreshes once and re-issues the request once.
//  3. AuthAPI, the unauthenticated /auth endpoints (register, login, refresh),
//     and Caller, a small JSON helper over an authenticated pipeline.
//
// # Error Handling
//
// Conditions are exposed as sentinel errors matched with errors.Is:
// ErrUnauthorized, ErrUnavailable, ErrTimeout, ErrValidation, ErrProtocol,
// ErrNoRefreshToken. Non-2xx responses are returned as *APIError, which carries
// the server's message and unwraps to ErrUnauthorized for 401/403.
//
// Concurrency & Contexts
//
// All SendFuncs are safe for concurrent use and honor context cancellation.
package client
