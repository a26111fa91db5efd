// Package apiclient is the HTTP client for the ZionDocs portal backend.
// Authentication rides on session cookies held in an in-process cookie jar;
// every call is JSON in, JSON out, with a per-call timeout and context
// cancellation. The client never retries on its own.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// Client talks to the portal REST surface.
type Client struct {
	base    *url.URL
	httpc   *http.Client
	jar     http.CookieJar
	timeout time.Duration
	log     *slog.Logger
}

// Option configures the client.
type Option func(*Client)

// WithLogger sets the logger used for request diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithTransport replaces the underlying round tripper, used by tests.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.httpc.Transport = rt }
}

// New creates a portal client from configuration.
func New(cfg Config, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, ErrEmptyBaseURL
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, errors.Join(ErrInvalidBaseURL, err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	timeout := cfg.CallTimeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}

	c := &Client{
		base:    base,
		jar:     jar,
		timeout: timeout,
		httpc:   &http.Client{Jar: jar},
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get performs a GET request and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post performs a POST request with a JSON body and decodes the response.
func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, http.MethodPost, path, in, out)
}

// Put performs a PUT request with a JSON body and decodes the response.
func (c *Client) Put(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, http.MethodPut, path, in, out)
}

// Cookie returns the value of a cookie the backend (or SetCookie) stored for
// the portal origin.
func (c *Client) Cookie(name string) (string, bool) {
	for _, ck := range c.jar.Cookies(c.base) {
		if ck.Name == name {
			return ck.Value, true
		}
	}
	return "", false
}

// SetCookie stores a client-side cookie on the portal origin, mirroring the
// browser's js-cookie writes (e.g. the special-client flag).
func (c *Client) SetCookie(name, value string) {
	c.jar.SetCookies(c.base, []*http.Cookie{{
		Name:     name,
		Value:    value,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	}})
}

// ClearCookie drops a cookie from the portal origin.
func (c *Client) ClearCookie(name string) {
	c.jar.SetCookies(c.base, []*http.Cookie{{
		Name:   name,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	}})
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return errors.Join(ErrEncodeRequest, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	res, err := c.httpc.Do(req)
	if err != nil {
		// url.Error wraps context errors; surface them directly so callers
		// can distinguish cancellation from transport failure.
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return ctxErr
		}
		return err
	}
	defer res.Body.Close()

	c.log.DebugContext(ctx, "portal call",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status_code", res.StatusCode),
		slog.Duration("elapsed", time.Since(start)),
	)

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}

	if res.StatusCode >= 400 {
		return &APIError{Status: res.StatusCode, Detail: extractDetail(raw)}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %w", ErrDecodeResponse, err)
	}
	return nil
}

// extractDetail pulls the human-readable message the backend attaches to
// failures under either "detail" or "message".
func extractDetail(raw []byte) string {
	var payload struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	if payload.Detail != "" {
		return payload.Detail
	}
	return payload.Message
}
