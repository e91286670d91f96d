package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Remote is the set of store operations the controller depends on.
// It is implemented by *Client and faked in tests.
type Remote interface {
	FetchAll(ctx context.Context) ([]Extension, error)
	UpdateStatus(ctx context.Context, id ID, isActive bool) (Extension, error)
	Remove(ctx context.Context, id ID) error
}

// Ensure Client implements Remote at compile time.
var _ Remote = (*Client)(nil)

// Client talks to the extensions HTTP API.
type Client struct {
	baseURL   *url.URL
	resource  string
	http      *http.Client
	userAgent string
	logger    zerolog.Logger
}

const (
	defaultAPIURL    = "http://127.0.0.1:3000"
	defaultResource  = "extensions"
	defaultUserAgent = "extman/dev"
	requestTimeout   = 5 * time.Second
)

// Option configures a Client.
type Option func(*Client)

// WithResource sets the collection path segment (default "extensions").
func WithResource(resource string) Option {
	return func(c *Client) {
		if r := strings.Trim(strings.TrimSpace(resource), "/"); r != "" {
			c.resource = r
		}
	}
}

// WithTimeout overrides the per-request timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithLogger attaches a logger for request tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = l.With().Str("component", "gateway").Logger()
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua = strings.TrimSpace(ua); ua != "" {
			c.userAgent = ua
		}
	}
}

// NewClient builds a Client for the API rooted at apiURL.
func NewClient(apiURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(apiURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:  base,
		resource: defaultResource,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FetchAll retrieves every extension in store order.
func (c *Client) FetchAll(ctx context.Context) ([]Extension, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload []Extension
	if err := c.do(ctx, "list", 0, http.MethodGet, c.collectionPath(), nil, &payload); err != nil {
		return nil, err
	}
	if payload == nil {
		payload = []Extension{}
	}
	return payload, nil
}

// UpdateStatus sends the desired active flag for id and returns the stored record.
func (c *Client) UpdateStatus(ctx context.Context, id ID, isActive bool) (Extension, error) {
	if c == nil {
		return Extension{}, fmt.Errorf("client is nil")
	}
	body, err := json.Marshal(statusPatch{IsActive: isActive})
	if err != nil {
		return Extension{}, &Error{Op: "update", ID: id, Kind: KindTransport, Err: fmt.Errorf("encode body: %w", err)}
	}
	var payload Extension
	if err := c.do(ctx, "update", id, http.MethodPatch, c.itemPath(id), body, &payload); err != nil {
		return Extension{}, err
	}
	return payload, nil
}

// Remove deletes id from the store.
func (c *Client) Remove(ctx context.Context, id ID) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	return c.do(ctx, "remove", id, http.MethodDelete, c.itemPath(id), nil, nil)
}

func (c *Client) collectionPath() string {
	return path.Join(c.baseURL.Path, "/", c.resource)
}

func (c *Client) itemPath(id ID) string {
	return path.Join(c.collectionPath(), id.String())
}

func (c *Client) do(ctx context.Context, op string, id ID, method, p string, body []byte, dest any) error {
	reqURL := *c.baseURL
	reqURL.Path = p
	reqURL.RawPath = ""

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return &Error{Op: op, ID: id, Kind: KindTransport, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("method", method).Str("path", p).Msg("request failed")
		return &Error{Op: op, ID: id, Kind: KindTransport, Err: fmt.Errorf("execute request: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug().
		Str("method", method).
		Str("path", p).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("request done")

	if resp.StatusCode >= 400 {
		_, _ = io.Copy(io.Discard, resp.Body)
		c.logger.Warn().Str("method", method).Str("path", p).Int("status", resp.StatusCode).Msg("request rejected")
		return &Error{
			Op:         op,
			ID:         id,
			Kind:       KindRejected,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("api %s returned status %d", p, resp.StatusCode),
		}
	}
	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return &Error{Op: op, ID: id, Kind: KindTransport, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func parseBaseURL(apiURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiURL)
	if trimmed == "" {
		trimmed = defaultAPIURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_url %q: %w", apiURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api_url %q: missing host", apiURL)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
