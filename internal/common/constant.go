// Package common contains constants shared by the client's transport,
// credential store and test fixtures.
package common

// HTTP header names and values used on every outbound request.
const (
	AuthorizationHeaderName = "Authorization"
	BearerPrefix            = "Bearer "
	ContentTypeHeaderName   = "Content-Type"
	ContentTypeJSON         = "application/json"
	RequestIDHeaderName     = "X-Request-ID"
)

// Logical credential store keys.
const (
	AccessTokenKey  = "accessToken"
	RefreshTokenKey = "refreshToken"
)

// MinPasswordLength is the shortest password accepted by Register.
const MinPasswordLength = 6
