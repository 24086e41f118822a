package client

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/tictac/internal/logging"
)

// TokenFunc returns the current access token, ok=false when none is stored.
type TokenFunc func(ctx context.Context) (string, bool)

// RefreshFunc exchanges the refresh token for a new pair because the access
// token stale was rejected. Implementations must be single-flight (concurrent
// calls share one exchange) and should return nil without an exchange when
// the stored access token no longer equals stale.
type RefreshFunc func(ctx context.Context, stale string) error

// Retry outcomes reported to a RetryObserver.
const (
	RetryRefreshed     = "refreshed"      // refresh succeeded, request re-issued
	RetryTokenRotated  = "token_rotated"  // another request already refreshed, re-issued
	RetryRefreshFailed = "refresh_failed" // refresh failed, original 401 surfaced
	RetryExhausted     = "exhausted"      // 401 on the retried attempt
)

// RetryObserver receives one outcome per 401 handled by WithAuthRetry.
type RetryObserver interface {
	ObserveRetry(outcome string)
}

type authRetryOptions struct {
	log      logging.Logger
	observer RetryObserver
}

type AuthRetryOption func(*authRetryOptions)

func WithRetryLogger(l logging.Logger) AuthRetryOption {
	return func(o *authRetryOptions) { o.log = l }
}

func WithRetryObserver(obs RetryObserver) AuthRetryOption {
	return func(o *authRetryOptions) { o.observer = obs }
}

// WithAuthRetry wraps next so that every request carries the current access
// token and a 401 response is handled at most once per request:
//
//   - if the token changed since the request was sent, the request is
//     re-issued with the new token without refreshing;
//   - otherwise refresh is called and, on success, the request is re-issued
//     with the refreshed token;
//   - if refresh fails, the original 401 is returned.
//
// A 401 on the re-issued attempt is returned as is. Other failures pass through.
func WithAuthRetry(next SendFunc, token TokenFunc, refresh RefreshFunc, opts ...AuthRetryOption) SendFunc {
	o := authRetryOptions{log: logging.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	observe := func(outcome string) {
		if o.observer != nil {
			o.observer.ObserveRetry(outcome)
		}
	}

	return func(ctx context.Context, req *Request) (*Response, error) {
		sent, _ := token(ctx)
		req.SetBearer(sent)

		resp, err := next(ctx, req)
		if err == nil || !IsStatus(err, http.StatusUnauthorized) {
			return resp, err
		}
		log := o.log.With("request_id", req.ID, "path", req.Path)
		if req.Retry {
			observe(RetryExhausted)
			log.Warn(ctx, "request rejected after retry")
			return resp, err
		}
		req.Retry = true

		outcome := RetryTokenRotated
		current, _ := token(ctx)
		if current == "" || current == sent {
			if rerr := refresh(ctx, sent); rerr != nil {
				observe(RetryRefreshFailed)
				log.Warn(ctx, "token refresh failed, returning original rejection", "refresh_error", rerr)
				return resp, err
			}
			current, _ = token(ctx)
			outcome = RetryRefreshed
		}

		observe(outcome)
		log.Info(ctx, "retrying request with new access token", "outcome", outcome)
		req.SetBearer(current)

		resp, err = next(ctx, req)
		if err != nil && IsStatus(err, http.StatusUnauthorized) {
			observe(RetryExhausted)
		}
		return resp, err
	}
}
