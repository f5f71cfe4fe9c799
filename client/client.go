// Package client is a small Go client for the gateway, for internal tools
// that should honor the network invariant instead of calling backends
// directly.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	gateway "github.com/cryptocrystian/pravado-gateway"
)

type Client struct {
	baseURL string
	client  http.Client
}

// New checks connectivity with the gateway's /ping endpoint and returns the
// connected client together with the server's version string.
func New(baseURL string, timeout time.Duration) (*Client, string, error) {
	base := strings.TrimRight(baseURL, "/")

	hc := http.Client{Timeout: timeout}

	res, err := hc.Get(base + "/ping")
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to contact gateway")
	}
	defer res.Body.Close()

	var ver gateway.Version
	if err := json.NewDecoder(res.Body).Decode(&ver); err != nil {
		return nil, "", errors.Wrap(err, "failed to decode gateway version")
	}

	return &Client{baseURL: base, client: hc}, ver.String(), nil
}

// APIError is a failure envelope decoded from the gateway.
type APIError struct {
	Status  int
	Message string
	Code    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("gateway error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("gateway error %d: %s", e.Status, e.Message)
}

// Do calls a wrapped-envelope route and returns the data payload, or an
// *APIError when the gateway reported a failure.
func (cl *Client) Do(ctx context.Context, method, path string, body json.RawMessage) (json.RawMessage, error) {
	raw, status, err := cl.Raw(ctx, method, path, body)
	if err != nil {
		return nil, err
	}

	var env gateway.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, errors.Wrap(err, "failed to decode gateway envelope")
	}
	if !env.Success {
		apiErr := &APIError{Status: status, Message: "Unknown error"}
		if env.Error != nil {
			apiErr.Message = env.Error.Message
			apiErr.Code = env.Error.Code
		}
		return nil, apiErr
	}
	return env.Data, nil
}

// Raw calls any route and returns the response body and status unchanged.
// Use it for the PR route family, which does not wrap its payloads.
func (cl *Client) Raw(ctx context.Context, method, path string, body json.RawMessage) (json.RawMessage, int, error) {
	var rd io.Reader
	if len(body) > 0 {
		rd = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, cl.baseURL+path, rd)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to build gateway request")
	}
	if len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := cl.client.Do(req)
	if err != nil {
		return nil, 0, errors.Wrap(err, "error making request to gateway")
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, 0, errors.Wrap(err, "error reading response from gateway")
	}
	return raw, res.StatusCode, nil
}

// Get fetches a wrapped-envelope route.
func (cl *Client) Get(ctx context.Context, path string) (json.RawMessage, error) {
	return cl.Do(ctx, http.MethodGet, path, nil)
}

// Post sends body to a wrapped-envelope route.
func (cl *Client) Post(ctx context.Context, path string, body json.RawMessage) (json.RawMessage, error) {
	return cl.Do(ctx, http.MethodPost, path, body)
}
