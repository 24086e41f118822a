package client

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/dmitrijs2005/tictac/internal/common"
	"github.com/stretchr/testify/require"
)

/*************
 * Fakes
 *************/

// tokenBox is a concurrency-safe access token holder standing in for the store.
type tokenBox struct {
	mu    sync.Mutex
	token string
}

func (b *tokenBox) get(context.Context) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.token, b.token != ""
}

func (b *tokenBox) set(tok string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.token = tok
}

// scriptedSend answers from a per-token table and records the bearer of every attempt.
type scriptedSend struct {
	mu      sync.Mutex
	status  map[string]int // bearer -> status; missing means 200
	bearers []string
	err     error
}

func (s *scriptedSend) send(_ context.Context, req *Request) (*Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bearer := req.Header.Get(common.AuthorizationHeaderName)
	s.bearers = append(s.bearers, bearer)
	if s.err != nil {
		return nil, s.err
	}
	code, ok := s.status[bearer]
	if !ok || code == http.StatusOK {
		return &Response{StatusCode: http.StatusOK, Body: []byte(`{"ok":true}`)}, nil
	}
	return &Response{StatusCode: code}, &APIError{StatusCode: code, Message: "rejected"}
}

type countingObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (c *countingObserver) ObserveRetry(outcome string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outcomes = append(c.outcomes, outcome)
}

func newReq(t *testing.T) *Request {
	t.Helper()
	req, err := NewRequest(http.MethodGet, "/game/current", nil)
	require.NoError(t, err)
	return req
}

/*************
 * WithAuthRetry tests
 *************/

func TestAuthRetry_AttachesBearer(t *testing.T) {
	box := &tokenBox{token: "a1"}
	s := &scriptedSend{}
	send := WithAuthRetry(s.send, box.get, func(context.Context, string) error {
		t.Fatal("refresh must not be called")
		return nil
	})

	_, err := send(context.Background(), newReq(t))
	require.NoError(t, err)
	require.Equal(t, []string{"Bearer a1"}, s.bearers)
}

func TestAuthRetry_NoTokenSendsUnauthenticated(t *testing.T) {
	box := &tokenBox{}
	s := &scriptedSend{}
	send := WithAuthRetry(s.send, box.get, nil)

	_, err := send(context.Background(), newReq(t))
	require.NoError(t, err)
	require.Equal(t, []string{""}, s.bearers)
}

func TestAuthRetry_RefreshesAndRetriesOnce(t *testing.T) {
	box := &tokenBox{token: "expired"}
	s := &scriptedSend{status: map[string]int{"Bearer expired": http.StatusUnauthorized}}
	obs := &countingObserver{}
	refreshes := 0
	send := WithAuthRetry(s.send, box.get, func(_ context.Context, stale string) error {
		refreshes++
		require.Equal(t, "expired", stale)
		box.set("new")
		return nil
	}, WithRetryObserver(obs))

	req := newReq(t)
	resp, err := send(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 1, refreshes)
	require.True(t, req.Retry)
	require.Equal(t, []string{"Bearer expired", "Bearer new"}, s.bearers)
	require.Equal(t, []string{RetryRefreshed}, obs.outcomes)
}

func TestAuthRetry_RetriedRequestRejectedIsSurfaced(t *testing.T) {
	box := &tokenBox{token: "a1"}
	s := &scriptedSend{status: map[string]int{
		"Bearer a1": http.StatusUnauthorized,
		"Bearer a2": http.StatusUnauthorized,
	}}
	obs := &countingObserver{}
	refreshes := 0
	send := WithAuthRetry(s.send, box.get, func(context.Context, string) error {
		refreshes++
		box.set("a2")
		return nil
	}, WithRetryObserver(obs))

	_, err := send(context.Background(), newReq(t))
	require.ErrorIs(t, err, ErrUnauthorized)
	require.Equal(t, 1, refreshes, "no second refresh for the same request")
	require.Len(t, s.bearers, 2)
	require.Equal(t, []string{RetryRefreshed, RetryExhausted}, obs.outcomes)
}

func TestAuthRetry_MarkedRequestIsNotRetried(t *testing.T) {
	box := &tokenBox{token: "a1"}
	s := &scriptedSend{status: map[string]int{"Bearer a1": http.StatusUnauthorized}}
	send := WithAuthRetry(s.send, box.get, func(context.Context, string) error {
		t.Fatal("refresh must not be called for a request already retried")
		return nil
	})

	req := newReq(t)
	req.Retry = true
	_, err := send(context.Background(), req)
	require.True(t, IsStatus(err, http.StatusUnauthorized))
	require.Len(t, s.bearers, 1)
}

func TestAuthRetry_RefreshFailureReturnsOriginal401(t *testing.T) {
	box := &tokenBox{token: "expired"}
	s := &scriptedSend{status: map[string]int{"Bearer expired": http.StatusUnauthorized}}
	refreshErr := errors.New("refresh rejected")
	send := WithAuthRetry(s.send, box.get, func(context.Context, string) error {
		box.set("")
		return refreshErr
	})

	_, err := send(context.Background(), newReq(t))
	require.True(t, IsStatus(err, http.StatusUnauthorized))
	require.NotErrorIs(t, err, refreshErr)
	require.Len(t, s.bearers, 1)
}

func TestAuthRetry_TokenAlreadyRotatedSkipsRefresh(t *testing.T) {
	box := &tokenBox{token: "old"}
	s := &scriptedSend{status: map[string]int{"Bearer old": http.StatusUnauthorized}}
	obs := &countingObserver{}

	// The token changes while the request is in flight.
	inner := func(ctx context.Context, req *Request) (*Response, error) {
		resp, err := s.send(ctx, req)
		box.set("fresh")
		return resp, err
	}
	send := WithAuthRetry(inner, box.get, func(context.Context, string) error {
		t.Fatal("refresh must not be called when the token already rotated")
		return nil
	}, WithRetryObserver(obs))

	_, err := send(context.Background(), newReq(t))
	require.NoError(t, err)
	require.Equal(t, []string{"Bearer old", "Bearer fresh"}, s.bearers)
	require.Equal(t, []string{RetryTokenRotated}, obs.outcomes)
}

func TestAuthRetry_NonAuthErrorsPassThrough(t *testing.T) {
	tests := []struct {
		name string
		send SendFunc
	}{
		{"server error", func(context.Context, *Request) (*Response, error) {
			return &Response{StatusCode: 500}, &APIError{StatusCode: 500}
		}},
		{"forbidden", func(context.Context, *Request) (*Response, error) {
			return &Response{StatusCode: 403}, &APIError{StatusCode: 403}
		}},
		{"timeout", func(context.Context, *Request) (*Response, error) {
			return nil, ErrTimeout
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			inner := func(ctx context.Context, req *Request) (*Response, error) {
				calls++
				return tt.send(ctx, req)
			}
			box := &tokenBox{token: "a"}
			send := WithAuthRetry(inner, box.get, func(context.Context, string) error {
				t.Fatal("refresh must not be called")
				return nil
			})
			_, err := send(context.Background(), newReq(t))
			require.Error(t, err)
			require.Equal(t, 1, calls)
		})
	}
}
