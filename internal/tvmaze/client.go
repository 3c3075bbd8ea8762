package tvmaze

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"watchlog/internal/catalogcache"
	"watchlog/internal/fetch"
	"watchlog/internal/logging"
)

// DefaultBaseURL is the public TVMaze API endpoint.
const DefaultBaseURL = "https://api.tvmaze.com"

// ErrInvalidID reports an identifier the catalog does not know.
var ErrInvalidID = errors.New("invalid series identifier")

var imdbPattern = regexp.MustCompile(`^tt\d+$`)

// Cache stores raw catalog payloads between lookups.
type Cache interface {
	Get(kind catalogcache.Kind, key string) ([]byte, bool)
	Put(kind catalogcache.Kind, key string, payload []byte) error
}

// Client talks to the TVMaze API.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	timeout      time.Duration
	maxRedirects int
	cache        Cache
	logger       *slog.Logger
	fetcher      *fetch.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout. Without it the fetch default
// applies, or the Timeout of a client passed to WithHTTPClient.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithMaxRedirects bounds how many 301 responses are followed.
func WithMaxRedirects(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxRedirects = n
		}
	}
}

// WithCache keeps successful responses in cache.
func WithCache(cache Cache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a TVMaze client. An empty baseURL selects DefaultBaseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse tvmaze base url: %w", err)
	}
	client := &Client{
		baseURL:      baseURL,
		maxRedirects: fetch.DefaultMaxRedirects,
		logger:       logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	fetchOpts := []fetch.Option{
		fetch.WithMaxRedirects(client.maxRedirects),
		fetch.WithLogger(client.logger),
	}
	if client.httpClient != nil {
		fetchOpts = append(fetchOpts, fetch.WithHTTPClient(client.httpClient))
	}
	if client.timeout > 0 {
		fetchOpts = append(fetchOpts, fetch.WithTimeout(client.timeout))
	}
	client.fetcher = fetch.New(fetchOpts...)
	return client, nil
}

// IsIMDbID reports whether id looks like an IMDb title id (tt followed by digits).
func IsIMDbID(id string) bool {
	return imdbPattern.MatchString(strings.TrimSpace(id))
}

func nativeID(id string) (string, bool) {
	id = strings.TrimSpace(id)
	n, err := strconv.ParseUint(id, 10, 63)
	if err != nil || n == 0 {
		return "", false
	}
	return strconv.FormatUint(n, 10), true
}

// Lookup loads the show with the given native TVMaze id.
func (c *Client) Lookup(ctx context.Context, id string) (*Show, error) {
	native, ok := nativeID(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	showJSON, found, err := c.get(ctx, catalogcache.KindShow, native, "/shows/"+native)
	if err != nil {
		return nil, fmt.Errorf("load show %s: %w", native, err)
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrInvalidID, native)
	}
	episodesJSON, found, err := c.get(ctx, catalogcache.KindEpisodes, native, "/shows/"+native+"/episodes?specials=1")
	if err != nil {
		return nil, fmt.Errorf("load episodes of show %s: %w", native, err)
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrInvalidID, native)
	}
	return ParseShow(showJSON, episodesJSON)
}

// LookupIMDb loads the show cross-referenced by an IMDb id.
func (c *Client) LookupIMDb(ctx context.Context, imdbID string) (*Show, error) {
	native, err := c.ResolveIMDb(ctx, imdbID)
	if err != nil {
		return nil, err
	}
	return c.Lookup(ctx, native)
}

// ResolveIMDb translates an IMDb id to the native TVMaze id.
func (c *Client) ResolveIMDb(ctx context.Context, imdbID string) (string, error) {
	imdbID = strings.TrimSpace(imdbID)
	if !IsIMDbID(imdbID) {
		return "", fmt.Errorf("%w: %q is not an IMDb id", ErrInvalidID, imdbID)
	}
	if c.cache != nil {
		if cached, ok := c.cache.Get(catalogcache.KindLookup, imdbID); ok {
			var native string
			if json.Unmarshal(cached, &native) == nil && native != "" {
				return native, nil
			}
		}
	}

	resp, err := c.fetcher.Get(ctx, c.baseURL+"/lookup/shows?imdb="+url.QueryEscape(imdbID))
	if err != nil {
		return "", fmt.Errorf("lookup imdb %s: %w", imdbID, err)
	}
	if resp.NotFound() {
		return "", fmt.Errorf("%w: %s", ErrInvalidID, imdbID)
	}
	var sp showPayload
	if err := json.Unmarshal(resp.Body, &sp); err != nil {
		return "", fmt.Errorf("decode imdb lookup: %w", err)
	}
	if sp.ID <= 0 {
		return "", fmt.Errorf("decode imdb lookup: missing id")
	}
	native := strconv.FormatInt(sp.ID, 10)
	c.store(catalogcache.KindShow, native, resp.Body)
	if encoded, err := json.Marshal(native); err == nil {
		c.store(catalogcache.KindLookup, imdbID, encoded)
	}
	return native, nil
}

// Validate reports whether a native TVMaze id exists without loading episodes.
// Ids that are not positive integers are reported as not existing.
func (c *Client) Validate(ctx context.Context, id string) (bool, error) {
	native, ok := nativeID(id)
	if !ok {
		return false, nil
	}
	_, found, err := c.get(ctx, catalogcache.KindShow, native, "/shows/"+native)
	if err != nil {
		return false, fmt.Errorf("validate show %s: %w", native, err)
	}
	return found, nil
}

// get returns a cached or freshly fetched body; found is false on 404.
func (c *Client) get(ctx context.Context, kind catalogcache.Kind, key, path string) ([]byte, bool, error) {
	if c.cache != nil {
		if cached, ok := c.cache.Get(kind, key); ok {
			c.logger.Debug("catalog cache hit", slog.String("kind", string(kind)), slog.String("key", key))
			return cached, true, nil
		}
	}
	resp, err := c.fetcher.Get(ctx, c.baseURL+path)
	if err != nil {
		return nil, false, err
	}
	if resp.NotFound() {
		return nil, false, nil
	}
	c.store(kind, key, resp.Body)
	return resp.Body, true, nil
}

func (c *Client) store(kind catalogcache.Kind, key string, payload []byte) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Put(kind, key, payload); err != nil {
		logging.WarnWithContext(c.logger, "catalog cache write failed", "catalog_cache_write",
			logging.String("kind", string(kind)),
			logging.String("key", key),
			logging.Error(err),
			logging.String(logging.FieldImpact, "next lookup refetches from TVMaze"),
		)
	}
}
