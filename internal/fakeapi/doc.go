// Package fakeapi is an in-process stand-in for the tictac backend.
//
// It implements the /auth and /game endpoint contracts closely enough to
// exercise the client end to end from tests: JWT access tokens with expiry,
// rotating opaque refresh tokens, 401 on bad or expired access tokens and
// 403 on unknown refresh tokens. The game logic is deliberately minimal.
package fakeapi
