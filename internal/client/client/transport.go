package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/tictac/internal/common"
	"github.com/dmitrijs2005/tictac/internal/logging"
)

// DefaultTimeout bounds every request when no other timeout is configured.
const DefaultTimeout = 10 * time.Second

// HTTPTransport performs requests against a base URL.
type HTTPTransport struct {
	baseURL string
	http    *http.Client
	log     logging.Logger
}

// NewHTTPTransport builds a transport. A zero timeout means DefaultTimeout.
func NewHTTPTransport(baseURL string, timeout time.Duration, log logging.Logger) *HTTPTransport {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logging.Nop()
	}
	return &HTTPTransport{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// Send is the innermost SendFunc. Non-2xx responses are returned together
// with an *APIError.
func (t *HTTPTransport) Send(ctx context.Context, req *Request) (*Response, error) {
	log := t.log.With("request_id", req.ID, "method", req.Method, "path", req.Path, "retry", req.Retry)

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	hreq, err := http.NewRequestWithContext(ctx, req.Method, t.baseURL+req.Path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			hreq.Header.Add(k, v)
		}
	}
	hreq.Header.Set(common.ContentTypeHeaderName, common.ContentTypeJSON)
	hreq.Header.Set(common.RequestIDHeaderName, req.ID)

	log.Debug(ctx, "sending request", "authenticated", hreq.Header.Get(common.AuthorizationHeaderName) != "")

	hresp, err := t.http.Do(hreq)
	if err != nil {
		mapped := mapTransportError(err)
		log.Warn(ctx, "request failed", "error", mapped)
		return nil, mapped
	}
	defer hresp.Body.Close()

	data, err := io.ReadAll(hresp.Body)
	if err != nil {
		return nil, mapTransportError(err)
	}

	resp := &Response{StatusCode: hresp.StatusCode, Header: hresp.Header, Body: data}
	log.Debug(ctx, "response received", "status", hresp.StatusCode)

	if hresp.StatusCode < 200 || hresp.StatusCode > 299 {
		return resp, &APIError{StatusCode: hresp.StatusCode, Message: errorMessage(data)}
	}
	return resp, nil
}

func mapTransportError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// errorMessage extracts {"error": "..."} or {"message": "..."} from a body.
func errorMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Error != "" {
		return payload.Error
	}
	return payload.Message
}
