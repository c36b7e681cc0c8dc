// SPDX-License-Identifier: AGPL-3.0-or-later

// Package fetch is the HTTP download layer. A Client is built once
// with its default headers and reused for every request; there is no
// per-request header juggling.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// ErrNotFound reports that the server answered 404 for the requested
// URL. Callers distinguish it from transport failures with errors.Is.
var ErrNotFound = errors.New("resource not found")

const defaultUserAgent = "sonarprep"

// Client wraps an http.Client with persistent default headers: a
// stable User-Agent and, when credentials are configured, a basic-auth
// Authorization header applied to every request.
type Client struct {
	http      *http.Client
	userAgent string
	username  string
	token     string
	logger    *zap.Logger
}

// Option configures a Client at construction time.
type Option func(*Client)

// WithUserAgent overrides the User-Agent header sent on every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithBasicAuth attaches basic-auth credentials to every request.
func WithBasicAuth(username, token string) Option {
	return func(c *Client) {
		c.username = username
		c.token = token
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithHTTPClient substitutes the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// New builds a Client. The zero configuration is usable: default
// user agent, no credentials, a 30s request timeout, no-op logging.
func New(opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{Timeout: 30 * time.Second},
		userAgent: defaultUserAgent,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch retrieves url and returns the response body. A 404 answer is
// reported as ErrNotFound; any other non-2xx status is an error.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}
	c.applyHeaders(req)

	c.logger.Debug("fetching", zap.String("url", url))
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("GET %s: %w", url, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("GET %s: unexpected status %s", url, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", url, err)
	}
	return body, nil
}

// Download fetches url and writes the body to dest, creating parent
// directories as needed.
func (c *Client) Download(ctx context.Context, url, dest string) error {
	body, err := c.Fetch(ctx, url)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(dest); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(dest, body, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}

	c.logger.Info("downloaded",
		zap.String("url", url),
		zap.String("dest", dest),
		zap.Int("bytes", len(body)))
	return nil
}

// PostJSON sends body to url as application/json. The response body is
// discarded; non-2xx statuses are errors.
func (c *Client) PostJSON(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request for %s: %w", url, err)
	}
	c.applyHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("posting", zap.String("url", url), zap.Int("bytes", len(body)))
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("POST %s: unexpected status %s", url, resp.Status)
	}
	return nil
}

func (c *Client) applyHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.userAgent)
	if c.username != "" || c.token != "" {
		req.SetBasicAuth(c.username, c.token)
	}
}
