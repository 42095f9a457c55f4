// Package coingecko is the market data gateway backed by the CoinGecko REST
// API.
package coingecko

import (
	"context"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/etnz/coinwatch"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	// BaseURL is the public API root.
	BaseURL = "https://api.coingecko.com/api/v3"
	// PerPage is the number of coins listed in the catalog.
	PerPage = 100
	// MaxPerPage is the largest page the API serves.
	MaxPerPage = 250
	// RequestsPerMinute is the default rate, below the public plan limit.
	RequestsPerMinute = 10
	// RequestTimeout is the default timeout of a single call.
	RequestTimeout = 30 * time.Second
)

// Client reads market data from CoinGecko. It implements coinwatch.Gateway.
//
// Prices are returned in the quote currency, but not labelled with it:
// views label them.
type Client struct {
	baseURL    string
	vsCurrency string
	apiKey     string
	http       *http.Client // uncached, for prices that must be fresh
	listing    *http.Client // cached, for the catalog
	limiter    *rate.Limiter
	log        logrus.FieldLogger

	cacheDir string
	cacheTTL time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the API root, mostly for tests and the pro API.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// WithVsCurrency sets the quote currency, "usd" by default.
func WithVsCurrency(cur string) Option {
	return func(c *Client) { c.vsCurrency = strings.ToLower(cur) }
}

// WithAPIKey sets the demo API key sent with every request.
func WithAPIKey(key string) Option { return func(c *Client) { c.apiKey = key } }

// WithHTTPClient sets the underlying http client.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithRate limits the client to perMinute requests per minute. 0 disables the
// limit.
func WithRate(perMinute int) Option {
	return func(c *Client) {
		if perMinute <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(float64(perMinute)/60), 1)
	}
}

// WithListingCache caches the catalog listing on disk in dir for ttl. An
// empty dir means the system temp dir, a zero ttl disables the cache.
func WithListingCache(dir string, ttl time.Duration) Option {
	return func(c *Client) { c.cacheDir, c.cacheTTL = dir, ttl }
}

// WithLogger sets the logger.
func WithLogger(log logrus.FieldLogger) Option { return func(c *Client) { c.log = log } }

// New returns a client for the public API.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    BaseURL,
		vsCurrency: "usd",
		http:       &http.Client{Timeout: RequestTimeout},
		log:        logrus.StandardLogger(),
	}
	WithRate(RequestsPerMinute)(c)
	for _, opt := range opts {
		opt(c)
	}
	c.listing = c.http
	if c.cacheTTL > 0 {
		base := c.http.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		c.listing = &http.Client{
			Transport: &diskCache{base: base, dir: c.cacheDir, ttl: c.cacheTTL, log: c.log},
			Timeout:   c.http.Timeout,
		}
	}
	return c
}

// ListMarket returns the top coins by market cap, with a 7 days sparkline.
func (c *Client) ListMarket(ctx context.Context) ([]coinwatch.Coin, error) {
	var coins []coinwatch.Coin
	if err := c.get(ctx, c.listing, "coins/markets", c.marketsQuery(nil), &coins); err != nil {
		return nil, err
	}
	return coins, nil
}

// MarketByIDs returns the market records of ids. Unknown ids are simply
// missing from the result.
//
// ids are requested MaxPerPage at a time, the first failed request fails the
// whole call.
func (c *Client) MarketByIDs(ctx context.Context, ids []string) ([]coinwatch.Coin, error) {
	var coins []coinwatch.Coin
	for chunk := range slices.Chunk(ids, MaxPerPage) {
		var page []coinwatch.Coin
		if err := c.get(ctx, c.http, "coins/markets", c.marketsQuery(chunk), &page); err != nil {
			return nil, err
		}
		coins = append(coins, page...)
	}
	return coins, nil
}

// marketsQuery returns the /coins/markets query, restricted to ids if any.
func (c *Client) marketsQuery(ids []string) url.Values {
	q := url.Values{}
	q.Set("vs_currency", c.vsCurrency)
	q.Set("order", "market_cap_desc")
	q.Set("per_page", strconv.Itoa(PerPage))
	q.Set("page", "1")
	q.Set("sparkline", "true")
	q.Set("price_change_percentage", "24h")
	if len(ids) > 0 {
		q.Set("ids", strings.Join(ids, ","))
		q.Set("per_page", strconv.Itoa(MaxPerPage))
	}
	return q
}
