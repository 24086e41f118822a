package client

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/tictac/internal/client/models"
)

// Auth endpoint paths, relative to the API base URL.
const (
	PathRegister = "/auth/register"
	PathLogin    = "/auth/login"
	PathRefresh  = "/auth/refresh"
)

// Client is the transport-agnostic contract of the /auth endpoints.
type Client interface {
	Register(ctx context.Context, creds models.Credentials) (models.AuthResponse, error)
	Login(ctx context.Context, creds models.Credentials) (models.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (models.RefreshResponse, error)
}

// AuthAPI calls the /auth endpoints directly on a transport. It never goes
// through WithAuthRetry: a rejected login must not trigger a refresh, and a
// rejected refresh must not recurse into another one.
type AuthAPI struct {
	send SendFunc
}

func NewAuthAPI(send SendFunc) *AuthAPI {
	return &AuthAPI{send: send}
}

func (a *AuthAPI) Register(ctx context.Context, creds models.Credentials) (models.AuthResponse, error) {
	var out models.AuthResponse
	err := call(ctx, a.send, http.MethodPost, PathRegister, creds, &out)
	return out, err
}

func (a *AuthAPI) Login(ctx context.Context, creds models.Credentials) (models.AuthResponse, error) {
	var out models.AuthResponse
	err := call(ctx, a.send, http.MethodPost, PathLogin, creds, &out)
	return out, err
}

func (a *AuthAPI) Refresh(ctx context.Context, refreshToken string) (models.RefreshResponse, error) {
	var out models.RefreshResponse
	err := call(ctx, a.send, http.MethodPost, PathRefresh, models.RefreshRequest{RefreshToken: refreshToken}, &out)
	return out, err
}

// Caller issues JSON calls over a pipeline, normally one wrapped by WithAuthRetry.
type Caller struct {
	send SendFunc
}

func NewCaller(send SendFunc) *Caller {
	return &Caller{send: send}
}

// Do sends in (nil for no body) and decodes the response into out (nil to discard).
func (c *Caller) Do(ctx context.Context, method, path string, in, out any) error {
	return call(ctx, c.send, method, path, in, out)
}

func call(ctx context.Context, send SendFunc, method, path string, in, out any) error {
	req, err := NewRequest(method, path, in)
	if err != nil {
		return err
	}
	resp, err := send(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	return resp.Decode(out)
}
