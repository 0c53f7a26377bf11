// Package client provides the HTTP lens.Source for the public characters
// search endpoint.
//
// A Client issues one GET per fetch, with the request parameters rendered as
// the query string:
//
//	GET {baseURL}/v1/public/characters?apikey=...&limit=25&offset=50&nameStartsWith=spi
//
// Non-2xx answers and transport failures are returned as *lens.TransportError.
// The response body is returned verbatim so the coordinator can cache it.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/zoobzio/lens"
)

// DefaultPath is the characters search endpoint.
const DefaultPath = "/v1/public/characters"

// HeaderRequestID carries the per-fetch request ID.
const HeaderRequestID = "X-Request-ID"

const userAgent = "lens/1"

// Client fetches search pages over HTTP. It is safe for concurrent use.
type Client struct {
	http     *http.Client
	path     string
	endpoint string
	accept   string
	timeout  time.Duration
	logger   zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client. A nil client is ignored.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds every request. By default requests are only bounded by
// their context. It applies to a copy of the HTTP client, whichever order the
// options are given in.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger.With().Str("component", "HTTPSource").Logger()
	}
}

// WithPath overrides the endpoint path appended to the base URL.
func WithPath(path string) Option {
	return func(c *Client) {
		c.path = path
	}
}

// WithAccept sets the Accept header, normally a lens.Codec content type.
func WithAccept(contentType string) Option {
	return func(c *Client) {
		c.accept = contentType
	}
}

// New creates a Client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: missing host", baseURL)
	}
	u.RawQuery = ""
	u.Fragment = ""

	c := &Client{
		http:   &http.Client{},
		path:   DefaultPath,
		accept: lens.JSONCodec{}.ContentType(),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	c.endpoint = strings.TrimRight(u.String(), "/") + "/" + strings.TrimLeft(c.path, "/")
	return c, nil
}

// Endpoint returns the URL requests are sent to, without a query string.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Fetch implements lens.Source.
func (c *Client) Fetch(ctx context.Context, params lens.Params) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Values().Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", c.accept)
	req.Header.Set("User-Agent", userAgent)

	logger := c.logger
	if id, ok := lens.RequestIDFrom(ctx); ok {
		req.Header.Set(HeaderRequestID, id)
		logger = logger.With().Str("request_id", id).Logger()
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		// url.Error repeats the full URL, API key included.
		var ue *url.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		logger.Error().Err(err).Msg("Request to upstream failed.")
		return nil, &lens.TransportError{URL: c.endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		logger.Error().Int("status", resp.StatusCode).Msg("Upstream returned an error status.")
		return nil, &lens.TransportError{URL: c.endpoint, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to read upstream response.")
		return nil, &lens.TransportError{URL: c.endpoint, Err: fmt.Errorf("failed to read body: %w", err)}
	}

	logger.Debug().
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("took", time.Since(start)).
		Str("params", params.Redacted()).
		Msg("Fetched page from upstream.")
	return body, nil
}

var _ lens.Source = (*Client)(nil)
