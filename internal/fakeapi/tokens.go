package fakeapi

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var errStaleToken = errors.New("token revoked")

// claims of an access token. Gen ties the token to a revocation generation.
type claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
	Gen    int64  `json:"gen"`
}

func (s *Server) issueAccess(userID string) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
		UserID: userID,
		Gen:    s.gen.Load(),
	})
	return token.SignedString(s.secret)
}

// userFromAccess validates an access token and returns its user id.
func (s *Server) userFromAccess(tokenString string) (string, error) {
	c := &claims{}
	token, err := jwt.ParseWithClaims(tokenString, c, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", jwt.ErrTokenInvalidClaims
	}
	if c.Gen < s.gen.Load() {
		return "", errStaleToken
	}
	return c.UserID, nil
}

// issuePair creates a new pair for userID; the caller holds s.mu.
func (s *Server) issuePair(userID string) (access, refresh string, err error) {
	access, err = s.issueAccess(userID)
	if err != nil {
		return "", "", err
	}
	refresh = uuid.NewString()
	s.refresh[refresh] = refreshEntry{userID: userID, expires: s.now().Add(s.refreshTTL)}
	return access, refresh, nil
}

type refreshEntry struct {
	userID  string
	expires time.Time
}
