// Package sources talks to the research paper databases.
package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/claimcheck/internal/cache"
	"github.com/ppiankov/claimcheck/internal/logging"
	"github.com/ppiankov/claimcheck/internal/model"
	"github.com/ppiankov/claimcheck/internal/util"
	"github.com/ppiankov/claimcheck/internal/worker"
)

// ErrRateLimited is returned when a database answers HTTP 429
var ErrRateLimited = model.ErrRateLimited

// StatusError is a non-2xx response other than 429
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// ClientOptions configures a Client
type ClientOptions struct {
	Timeout    time.Duration
	UserAgent  string
	MaxBytes   int64
	Limiter    *worker.Limiter // per-host request pacing, nil disables
	Cache      cache.Cache     // response cache, nil disables
	CacheTTL   time.Duration
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
	Logger     *zap.Logger
}

// Client is the shared GET client for every database: it paces requests
// per host, caps body size and caches successful bodies.
type Client struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	cache      cache.Cache
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// NewClient creates a new Client
func NewClient(opts ClientOptions) *Client {
	var transport http.RoundTripper = util.NewTransport(opts.HTTPProxy, opts.HTTPSProxy, opts.NoProxy)
	if opts.Limiter != nil {
		transport = opts.Limiter.Transport(transport)
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 5_000_000
	}
	if opts.Cache == nil {
		opts.Cache = cache.Nop{}
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: opts.UserAgent,
		maxBytes:  opts.MaxBytes,
		cache:     opts.Cache,
		cacheTTL:  opts.CacheTTL,
		logger:    logging.OrNop(opts.Logger),
	}
}

// HTTPClient exposes the underlying client (robots.txt checks reuse it)
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// Get fetches rawURL and returns the body. Headers are sent as given and
// are not part of the cache key.
func (c *Client) Get(ctx context.Context, rawURL string, header http.Header) ([]byte, error) {
	key := cache.Key(http.MethodGet, rawURL)
	if body, ok := c.cache.Get(key); ok {
		return body, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", redact(rawURL), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%s: %w", req.URL.Host, ErrRateLimited)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{URL: redact(rawURL), StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if err := c.cache.Set(key, body, c.cacheTTL); err != nil {
		c.logger.Debug("cache write failed", zap.String("host", req.URL.Host), zap.Error(err))
	}
	return body, nil
}

// redact drops API keys from URLs before they reach errors or logs
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	if q.Has("api_key") {
		q.Set("api_key", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
