// Package transport provides the HTTP client used for every remote fetch in
// scrycache. One client instance owns one global request budget: lookups,
// manifest fetches and bulk dataset downloads all wait on the same pacer.
package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// DefaultMinInterval is the documented upstream ceiling of one request per
// 100 milliseconds.
const DefaultMinInterval = 100 * time.Millisecond

const defaultUserAgent = "scrycache/1.0"

// Transport issues remote GETs. Implementations own request pacing; callers
// only interpret the returned body or error.
type Transport interface {
	// Get fetches url and returns the full response body.
	Get(ctx context.Context, url string) ([]byte, error)
	// GetStream fetches url and returns the response body as a stream.
	// The caller must close it.
	GetStream(ctx context.Context, url string) (io.ReadCloser, error)
}

// StatusError reports a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("transport: GET %s: unexpected status %d", e.URL, e.StatusCode)
}

type Config struct {
	// Client overrides the underlying HTTP client. The default has no
	// timeout: bulk dataset bodies can take minutes to stream, and callers
	// that need deadlines pass them via ctx.
	Client *http.Client
	// MinInterval is the minimum spacing between outbound requests.
	// 0 selects DefaultMinInterval.
	MinInterval time.Duration
	UserAgent   string
}

// Client is a paced HTTP transport.
type Client struct {
	hc      *http.Client
	limiter *rate.Limiter
	ua      string
}

var _ Transport = (*Client)(nil)

func New(cfg Config) *Client {
	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{}
	}
	interval := cfg.MinInterval
	if interval <= 0 {
		interval = DefaultMinInterval
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	return &Client{
		hc:      hc,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		ua:      ua,
	}
}

func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.do(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("transport: GET %s: read body: %w", url, err)
	}
	return body, nil
}

func (c *Client) GetStream(ctx context.Context, url string) (io.ReadCloser, error) {
	resp, err := c.do(ctx, url)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (c *Client) do(ctx context.Context, url string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("transport: GET %s: %w", url, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("transport: GET %s: %w", url, err)
	}
	req.Header.Set("User-Agent", c.ua)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transport: GET %s: %w", url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}
	return resp, nil
}
