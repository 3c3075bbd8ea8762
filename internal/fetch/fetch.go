package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"watchlog/internal/logging"
)

const (
	// DefaultMaxRedirects is the number of 301 hops followed before giving up.
	DefaultMaxRedirects = 3
	defaultTimeout      = 10 * time.Second
	maxBodyBytes        = 32 << 20
)

// ErrTooManyRedirects is returned when a request exceeds the redirect bound.
var ErrTooManyRedirects = errors.New("too many redirects")

// StatusError reports a response status other than 200, 301 or 404.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	// URL is the final location after redirects.
	URL  string
	Body []byte
}

// NotFound reports whether the server answered 404.
func (r *Response) NotFound() bool {
	return r.StatusCode == http.StatusNotFound
}

// Client issues GET requests.
type Client struct {
	httpClient   *http.Client
	maxRedirects int
	userAgent    string
	logger       *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client. Its redirect policy is
// replaced so redirects are always handled by Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			clone := *client
			c.httpClient = &clone
		}
	}
}

// WithMaxRedirects sets the redirect bound. Negative values are ignored.
func WithMaxRedirects(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxRedirects = n
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(agent string) Option {
	return func(c *Client) {
		if agent = strings.TrimSpace(agent); agent != "" {
			c.userAgent = agent
		}
	}
}

// WithLogger attaches a logger for redirect and latency diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Client.
func New(opts ...Option) *Client {
	client := &Client{
		httpClient:   &http.Client{Timeout: defaultTimeout},
		maxRedirects: DefaultMaxRedirects,
		userAgent:    "watchlog",
		logger:       logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	client.httpClient.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return client
}

// Get fetches rawURL, following at most the configured number of 301 redirects.
func (c *Client) Get(ctx context.Context, rawURL string) (*Response, error) {
	current, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	for hops := 0; ; hops++ {
		resp, err := c.do(ctx, current.String())
		if err != nil {
			return nil, err
		}
		switch resp.StatusCode {
		case http.StatusOK, http.StatusNotFound:
			return resp.response(current.String())
		case http.StatusMovedPermanently:
			location := resp.Header.Get("Location")
			drain(resp)
			if hops >= c.maxRedirects {
				return nil, fmt.Errorf("get %s: %w (limit %d)", rawURL, ErrTooManyRedirects, c.maxRedirects)
			}
			if location == "" {
				return nil, fmt.Errorf("get %s: redirect without location", current)
			}
			next, err := current.Parse(location)
			if err != nil {
				return nil, fmt.Errorf("parse redirect location %q: %w", location, err)
			}
			c.logger.Debug("following redirect", slog.String("from", current.String()), slog.String("to", next.String()))
			current = next
		default:
			drain(resp)
			return nil, &StatusError{StatusCode: resp.StatusCode, URL: current.String()}
		}
	}
}

type rawResponse struct {
	*http.Response
}

func (r rawResponse) response(finalURL string) (*Response, error) {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return &Response{StatusCode: r.StatusCode, URL: finalURL, Body: body}, nil
}

func (c *Client) do(ctx context.Context, target string) (rawResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return rawResponse{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return rawResponse{}, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	c.logger.Debug("catalog request", slog.String("url", target), slog.Int("status", resp.StatusCode), slog.Duration("latency", latency))
	return rawResponse{resp}, nil
}

func drain(resp rawResponse) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
