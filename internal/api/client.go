// Package api implements the JSON client for the sales backend and the
// response envelope shared by every endpoint. Transport problems, HTTP
// errors and envelope rejections are classified into the failure taxonomy at
// the call site so nothing above this package needs to inspect *url.Error or
// status codes.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/routesales/internal/failure"
)

// TokenSource supplies the bearer token attached to every request. An empty
// string means the request goes out unauthenticated (login itself).
type TokenSource interface {
	AccessToken(ctx context.Context) string
}

// Client is the HTTP client for the sales backend.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenSource
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the default 30s request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithTokenSource attaches a bearer-token source.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// SetTokenSource attaches a bearer-token source after construction. The
// session manager needs the client for login before it can serve tokens,
// so the two are wired in that order.
func (c *Client) SetTokenSource(ts TokenSource) { c.tokens = ts }

// NewClient creates a client for the given base URL, e.g.
// "https://api.example.com/v1".
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get performs a GET with query parameters and decodes the envelope.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Envelope, error) {
	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return c.do(ctx, http.MethodGet, u, nil)
}

// Post performs a POST with a JSON body and decodes the envelope.
func (c *Client) Post(ctx context.Context, path string, body any) (*Envelope, error) {
	u := c.baseURL + "/" + strings.TrimLeft(path, "/")

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, failure.Unknown(fmt.Errorf("marshal request body: %w", err))
		}
		reader = bytes.NewReader(data)
	}
	return c.do(ctx, http.MethodPost, u, reader)
}

func (c *Client) do(ctx context.Context, method, u string, body io.Reader) (*Envelope, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, failure.Unknown(fmt.Errorf("build request: %w", err))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.AccessToken(ctx); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// url.Error covers DNS, dial, TLS and timeout problems alike.
		return nil, failure.Network(err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, failure.Network(fmt.Errorf("read response body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var env Envelope
		if err := json.Unmarshal(respBody, &env); err == nil && env.Message != "" {
			return nil, failure.Server(fmt.Sprintf("HTTP %d: %s", resp.StatusCode, env.Message))
		}
		return nil, failure.Server(fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)))
	}

	var env Envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, failure.Unknown(fmt.Errorf("decode envelope: %w", err))
	}
	return &env, nil
}
