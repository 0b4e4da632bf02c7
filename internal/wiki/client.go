// Package wiki fetches the three upstream datasets the pipeline consumes:
// the collection-log item table, the recipe corpus, and the game-wide item
// name/id universe. Every response is shadowed by the disk cache with an
// age-based staleness policy, and outbound requests are spaced by a minimum
// delay to respect the wiki's rate limits.
package wiki

import (
	"context"
	"fmt"
	"sync"
	"time"

	"resty.dev/v3"

	"github.com/mozjay/osrs-clog-dependencies/internal/config"
	"github.com/mozjay/osrs-clog-dependencies/internal/ctxlog"
	"github.com/mozjay/osrs-clog-dependencies/internal/diskcache"
)

// Client is the wiki API client. It is safe for sequential use only; the
// pipeline fetches datasets one after another.
type Client struct {
	http  *resty.Client
	cache *diskcache.Store
	cfg   *config.Config

	// forceRefresh bypasses cache freshness checks.
	forceRefresh bool

	mu          sync.Mutex
	lastRequest time.Time
}

// NewClient wires a client over the given configuration and cache store.
func NewClient(cfg *config.Config, cache *diskcache.Store, forceRefresh bool) *Client {
	httpClient := resty.New().
		SetHeader("User-Agent", cfg.UserAgent).
		SetTimeout(30 * time.Second).
		SetRetryCount(2)

	return &Client{
		http:         httpClient,
		cache:        cache,
		cfg:          cfg,
		forceRefresh: forceRefresh,
	}
}

// Close releases the underlying HTTP client.
func (c *Client) Close() error {
	return c.http.Close()
}

// throttle enforces the configured minimum delay between outbound requests.
func (c *Client) throttle() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elapsed := time.Since(c.lastRequest); elapsed < c.cfg.RateLimit {
		time.Sleep(c.cfg.RateLimit - elapsed)
	}
	c.lastRequest = time.Now()
}

// get performs one rate-limited GET and returns the raw body.
func (c *Client) get(ctx context.Context, url string, params map[string]string) ([]byte, error) {
	c.throttle()

	req := c.http.R().SetContext(ctx)
	if len(params) > 0 {
		req.SetQueryParams(params)
	}

	res, err := req.Get(url)
	if err != nil {
		return nil, fmt.Errorf("GET %s failed: %w", url, err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("GET %s returned status %d", url, res.StatusCode())
	}
	return res.Bytes(), nil
}

// cacheFresh reports whether the named entry should be served from cache.
func (c *Client) cacheFresh(name string, v any) bool {
	if c.forceRefresh {
		return false
	}
	return c.cache.Load(name, c.cfg.CacheMaxAge, v) == nil
}

// staleFallback tries to serve a stale cache entry after a fetch failure.
// Stale data beats aborting the whole run when the remote is down; the
// degradation is surfaced as a warning.
func (c *Client) staleFallback(ctx context.Context, name string, fetchErr error, v any) error {
	logger := ctxlog.FromContext(ctx)
	if err := c.cache.LoadAny(name, v); err != nil {
		return fmt.Errorf("fetch failed and no cached copy of %s exists: %w", name, fetchErr)
	}
	logger.Warn("Fetch failed, serving stale cache entry.", "entry", name, "error", fetchErr)
	return nil
}
