package httputil

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/crossplot/pkg/buildinfo"
	"github.com/matzehuels/crossplot/pkg/errors"
	"github.com/matzehuels/crossplot/pkg/observability"
)

const (
	// DefaultTimeout bounds a single request.
	DefaultTimeout = 30 * time.Second
	// DefaultAttempts is the number of tries for a transient failure.
	DefaultAttempts = 3
	// DefaultDelay is the first backoff delay.
	DefaultDelay = time.Second
)

// Client downloads files over HTTP with caching and retry.
type Client struct {
	http     *http.Client
	cache    *Cache
	headers map[string]string
	backoff Backoff
	logger  *log.Logger
}

// ClientOption configures a [Client].
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithCache stores successful responses in cache.
func WithCache(cache *Cache) ClientOption {
	return func(c *Client) { c.cache = cache }
}

// WithHeader sets a header on every request.
func WithHeader(key, value string) ClientOption {
	return func(c *Client) { c.headers[key] = value }
}

// WithRetry sets the attempt count and initial backoff.
func WithRetry(attempts int, delay time.Duration) ClientOption {
	return func(c *Client) {
		c.backoff.Attempts = attempts
		c.backoff.Delay = delay
	}
}

// WithClientLogger logs requests and cache hits at debug level.
func WithClientLogger(l *log.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client that identifies itself with
// [buildinfo.UserAgent] and does not cache unless [WithCache] is given.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		http:    &http.Client{Timeout: DefaultTimeout},
		headers: map[string]string{"User-Agent": buildinfo.UserAgent()},
		backoff: DefaultBackoff,
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cache == nil {
		c.cache = NewCache(nil, nil, 0)
	}
	return c
}

// Fetch returns the body of url. A cached copy is returned unless refresh is
// set; a fresh body is written back to the cache. Failures carry the codes
// NOT_FOUND (404), TIMEOUT or NETWORK_ERROR.
func (c *Client) Fetch(ctx context.Context, url string, refresh bool) ([]byte, error) {
	if !refresh {
		if data, ok, err := c.cache.GetBytes(ctx, url); err == nil && ok {
			c.logger.Debug("cache hit", "url", url)
			observability.Cache().OnCacheHit(ctx, "http")
			return data, nil
		}
		observability.Cache().OnCacheMiss(ctx, "http")
	}

	b := c.backoff
	b.OnRetry = func(attempt int, wait time.Duration, err error) {
		c.logger.Warn("retrying", "url", url, "attempt", attempt, "wait", wait, "err", err)
	}
	var body []byte
	err := Retry(ctx, b, func() error {
		var err error
		body, err = c.get(ctx, url)
		return err
	})
	if err != nil {
		var re *RetryableError
		if stderrors.As(err, &re) {
			err = re.Err
		}
		if errors.GetCode(err) == "" {
			err = errors.Wrap(errors.ErrCodeTimeout, err, "fetch %s", url)
		}
		return nil, err
	}

	if err := c.cache.SetBytes(ctx, url, body); err != nil {
		c.logger.Warn("cache write failed", "url", url, "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "http", len(body))
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "build request for %s", url)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	c.logger.Debug("fetch", "url", url)
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, req.URL.Host, req.URL.Path)
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, req.URL.Host, req.URL.Path, err)
		if ctx.Err() != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, err, "fetch %s", url)
		}
		return nil, &RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "fetch %s", url)}
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

	if err := checkStatus(url, resp); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "read %s", url)}
	}
	return data, nil
}

func checkStatus(url string, resp *http.Response) error {
	code := resp.StatusCode
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "%s: not found", url)
	case code >= 500 || code == http.StatusTooManyRequests:
		return &RetryableError{
			Err:   errors.New(errors.ErrCodeNetwork, "%s: status %d", url, code),
			After: retryAfter(resp.Header, time.Now()),
		}
	default:
		return errors.New(errors.ErrCodeNetwork, "%s: status %d", url, code)
	}
}
