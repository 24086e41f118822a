// Package models defines client-side data models used by the tictac client:
// the credential pair, the authenticated user and the game payloads.
package models

// User is the identity returned by the server on login/register.
// It is kept in memory only and never persisted.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// CredentialPair is the access/refresh token pair. Both values are opaque
// bearer strings.
type CredentialPair struct {
	AccessToken  string
	RefreshToken string
}

// Complete reports whether both tokens are present.
func (p CredentialPair) Complete() bool {
	return p.AccessToken != "" && p.RefreshToken != ""
}

// Empty reports whether neither token is present.
func (p CredentialPair) Empty() bool {
	return p.AccessToken == "" && p.RefreshToken == ""
}

// Credentials carries the login payload sent to /auth/login and /auth/register.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is the body of /auth/login and /auth/register. Tokens are only
// expected on login.
type AuthResponse struct {
	Message      string `json:"message"`
	User         User   `json:"user"`
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// Pair extracts the credential pair from a login response.
func (r AuthResponse) Pair() CredentialPair {
	return CredentialPair{AccessToken: r.AccessToken, RefreshToken: r.RefreshToken}
}

// RefreshRequest is the body of /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RefreshResponse is the body returned by /auth/refresh. Some servers also
// echo the user; when present it is used to restore identity on resume.
type RefreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         *User  `json:"user,omitempty"`
}

// Pair extracts the credential pair from a refresh response.
func (r RefreshResponse) Pair() CredentialPair {
	return CredentialPair{AccessToken: r.AccessToken, RefreshToken: r.RefreshToken}
}
