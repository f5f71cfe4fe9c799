// Package proxy implements the outbound half of the gateway: a Backend
// forwarder per backend pool, plus normalization of every failure an
// outbound call can produce into one {status, message, code} shape.
package proxy

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

	"go.uber.org/zap"
)

type (
	// Options describes a single outbound call. The zero value is a GET
	// with no body and no extra headers.
	Options struct {
		Method  string
		Body    json.RawMessage
		Headers map[string]string
	}

	// Forwarder is the capability a route adapter depends on. Any backend
	// pool satisfies it; which pool a route talks to is decided at
	// registration, never at call time.
	Forwarder interface {
		Forward(ctx context.Context, path string, opts *Options) (json.RawMessage, error)
	}

	// SignFunc attaches a pool's credentials to an outbound request.
	SignFunc func(*http.Request)

	// Backend forwards requests to one configured backend pool. A single
	// Forward is exactly one outbound call: no retries, no caching.
	Backend struct {
		name    string
		baseURL string
		sign    SignFunc
		client  *http.Client
		log     *zap.Logger
	}

	BackendOption func(*Backend)
)

// BearerAuth signs requests the way the core platform backend expects.
func BearerAuth(token string) SignFunc {
	return func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	}
}

// APIKeyAuth signs requests the way the PR backend expects.
func APIKeyAuth(key string) SignFunc {
	return func(r *http.Request) {
		r.Header.Set("X-API-Key", key)
	}
}

// WithHTTPClient overrides the pool's HTTP client.
func WithHTTPClient(c *http.Client) BackendOption {
	return func(b *Backend) { b.client = c }
}

// WithTimeout sets the per-call timeout on the pool's HTTP client.
func WithTimeout(d time.Duration) BackendOption {
	return func(b *Backend) { b.client.Timeout = d }
}

// WithLogger sets the pool's logger.
func WithLogger(l *zap.Logger) BackendOption {
	return func(b *Backend) { b.log = l }
}

// NewBackend builds a forwarder for one backend pool. sign may be nil for
// an unauthenticated pool.
func NewBackend(name, baseURL string, sign SignFunc, opts ...BackendOption) *Backend {
	b := &Backend{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		sign:    sign,
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Forward issues one outbound call for path (backend-relative, query string
// included literally) and returns the backend's JSON payload untouched. On
// any failure it returns a *Error carrying the normalized status, the
// backend's message and, when the backend supplied one, its error code.
func (b *Backend) Forward(ctx context.Context, path string, opts *Options) (json.RawMessage, error) {
	if opts == nil {
		opts = &Options{}
	}
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if len(opts.Body) > 0 {
		body = bytes.NewReader(opts.Body)
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, body)
	if err != nil {
		return nil, &Error{
			Kind:    KindUnknown,
			Status:  http.StatusInternalServerError,
			Message: "failed to build backend request",
			cause:   err,
		}
	}
	req.Header.Set("Accept", "application/json")
	if len(opts.Body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}
	if b.sign != nil {
		b.sign(req)
	}

	b.log.Debug("forwarding request",
		zap.String("pool", b.name),
		zap.String("method", method),
		zap.String("path", path))

	start := time.Now()
	res, err := b.client.Do(req)
	if err != nil {
		observe(b.name, 0, start)
		if isTimeout(ctx, err) {
			return nil, &Error{
				Kind:    KindTimeout,
				Status:  http.StatusGatewayTimeout,
				Message: fmt.Sprintf("backend %s timed out", b.name),
				cause:   err,
			}
		}
		return nil, &Error{
			Kind:    KindNetwork,
			Status:  http.StatusBadGateway,
			Message: fmt.Sprintf("backend %s unreachable", b.name),
			cause:   err,
		}
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	observe(b.name, res.StatusCode, start)
	if err != nil {
		return nil, &Error{
			Kind:    KindNetwork,
			Status:  http.StatusBadGateway,
			Message: fmt.Sprintf("failed reading response from backend %s", b.name),
			cause:   err,
		}
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, backendError(res.StatusCode, raw)
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		// 204 and friends still have to produce a JSON payload downstream.
		return json.RawMessage("null"), nil
	}
	if !json.Valid(raw) {
		return nil, &Error{
			Kind:    KindMalformed,
			Status:  http.StatusBadGateway,
			Message: fmt.Sprintf("backend %s returned invalid JSON", b.name),
		}
	}
	return json.RawMessage(raw), nil
}

// backendError lifts a non-2xx reply into a structured failure, keeping the
// backend's message and code when its error body parses as JSON. Both
// {"error": ...} and {"message": ...} bodies occur in the wild; error wins.
func backendError(status int, raw []byte) *Error {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Code    string `json:"code"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return &Error{Kind: KindMalformed, Status: status, Message: http.StatusText(status)}
	}
	msg := body.Error
	if msg == "" {
		msg = body.Message
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &Error{Kind: KindBackend, Status: status, Message: msg, Code: body.Code}
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
