// Package source fetches record pages from the upstream randomuser-style
// API. Pages are addressed by {page, pageSize, seed}; the seed is fixed for
// the session so re-fetching a page is reproducible and cacheable.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/kiril6/users-directory/internal/directory/metrics"
	"github.com/kiril6/users-directory/internal/directory/models"
	"github.com/kiril6/users-directory/internal/directory/source/cache"
	"github.com/kiril6/users-directory/pkg/sentinel"
)

// rateLimitMarkers are the substrings an upstream error payload may carry
// instead of a clean 429 status.
var rateLimitMarkers = []string{"rate limit", "too many requests"}

// Page is one decoded upstream page.
type Page struct {
	Results []models.RawRecord `json:"results"`
	Info    PageInfo           `json:"info"`
}

// PageInfo echoes the request parameters back from the upstream.
type PageInfo struct {
	Seed    string `json:"seed"`
	Results int    `json:"results"`
	Page    int    `json:"page"`
}

type errorPayload struct {
	Error string `json:"error"`
}

// Client fetches pages over HTTP, consulting the page cache first. Cache
// failures are logged and treated as misses; they never surface to callers.
type Client struct {
	baseURL string
	seed    string
	http    *http.Client
	cache   cache.Store
	logger  *slog.Logger
	stats   *metrics.Metrics
}

// ClientOption configures a Client.
type ClientOption func(*Client)

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.http = httpClient
	}
}

func WithCache(store cache.Store) ClientOption {
	return func(c *Client) {
		c.cache = store
	}
}

func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithMetrics(stats *metrics.Metrics) ClientOption {
	return func(c *Client) {
		c.stats = stats
	}
}

func NewClient(baseURL, seed string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		seed:    seed,
		http:    http.DefaultClient,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchPage retrieves one page of raw records. Errors are classified:
// rate limiting wraps sentinel.ErrRateLimited, everything else wraps
// sentinel.ErrUnavailable.
func (c *Client) FetchPage(ctx context.Context, page, pageSize int) ([]models.RawRecord, error) {
	key := cache.PageKey(c.seed, page, pageSize)
	if c.cache != nil {
		cached, err := c.cache.GetPage(ctx, key)
		switch {
		case err == nil:
			c.stats.IncrementPageCacheHits()
			return cached, nil
		case errors.Is(err, sentinel.ErrNotFound):
			c.stats.IncrementPageCacheMisses()
		default:
			c.logger.Warn("page cache read failed, treating as miss", "key", key, "error", err)
			c.stats.IncrementPageCacheMisses()
		}
	}

	raws, err := c.fetch(ctx, page, pageSize)
	if err != nil {
		c.stats.IncrementFetchFailures()
		return nil, err
	}
	c.stats.IncrementPagesFetched()

	if c.cache != nil {
		if err := c.cache.PutPage(ctx, key, raws); err != nil {
			c.logger.Warn("page cache write failed", "key", key, "error", err)
		}
	}
	return raws, nil
}

func (c *Client) fetch(ctx context.Context, page, pageSize int) ([]models.RawRecord, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("results", strconv.Itoa(pageSize))
	q.Set("seed", c.seed)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build page request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page %d: %w: %w", page, sentinel.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read page %d response: %w: %w", page, sentinel.ErrUnavailable, err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("fetch page %d: status 429: %w", page, sentinel.ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		if isRateLimitPayload(body) {
			return nil, fmt.Errorf("fetch page %d: status %d: %w", page, resp.StatusCode, sentinel.ErrRateLimited)
		}
		return nil, fmt.Errorf("fetch page %d: status %d: %w", page, resp.StatusCode, sentinel.ErrUnavailable)
	}

	var decoded Page
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode page %d: %w: %w", page, sentinel.ErrUnavailable, err)
	}
	// Some upstreams answer 200 with an error payload when throttling.
	if decoded.Results == nil && isRateLimitPayload(body) {
		return nil, fmt.Errorf("fetch page %d: %w", page, sentinel.ErrRateLimited)
	}
	return decoded.Results, nil
}

func isRateLimitPayload(body []byte) bool {
	var payload errorPayload
	if err := json.Unmarshal(body, &payload); err != nil || payload.Error == "" {
		return false
	}
	msg := strings.ToLower(payload.Error)
	for _, marker := range rateLimitMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
