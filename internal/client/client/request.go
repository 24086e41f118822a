package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/tictac/internal/common"
	"github.com/google/uuid"
)

// Request is one logical outbound call. The body is kept encoded so the call
// can be re-issued.
type Request struct {
	Method string
	Path   string
	Body   []byte
	Header http.Header
	// ID correlates log lines of the call and its retry.
	ID string
	// Retry is the retry marker: set once the request has been re-issued
	// after a refresh, so it is never retried again.
	Retry bool
}

// NewRequest encodes body as JSON (nil means no body).
func NewRequest(method, path string, body any) (*Request, error) {
	req := &Request{Method: method, Path: path, Header: make(http.Header), ID: uuid.NewString()}
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		req.Body = b
	}
	return req, nil
}

// SetBearer sets or, for an empty token, removes the Authorization header.
func (r *Request) SetBearer(token string) {
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	if token == "" {
		r.Header.Del(common.AuthorizationHeaderName)
		return
	}
	r.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("%w: malformed response body: %v", ErrProtocol, err)
	}
	return nil
}

// SendFunc is one stage of the request pipeline.
type SendFunc func(ctx context.Context, req *Request) (*Response, error)
