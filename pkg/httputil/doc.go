// Package httputil downloads remote files with caching and retry.
//
// # Client
//
// [Client] issues GET requests with a crossplot User-Agent, retries
// transient failures and stores bodies in a [Cache]:
//
//	backend, _ := cache.Open(ctx, "")
//	c := httputil.NewClient(
//	    httputil.WithCache(httputil.NewCache(backend, nil, 7*24*time.Hour).Namespace("marsilea")),
//	)
//	body, err := c.Fetch(ctx, url, false)
//
// A 404 becomes a NOT_FOUND error. Connection errors, 5xx and 429 responses
// are retried and end as NETWORK_ERROR once attempts run out.
//
// # Retry
//
// [Retry] repeats a function while it fails with a [RetryableError],
// doubling the delay each time. A Retry-After header on a 429 or 503
// response replaces the computed delay:
//
//	b := httputil.Backoff{Attempts: 3, Delay: time.Second, MaxDelay: 10 * time.Second}
//	err := httputil.Retry(ctx, b, func() error {
//	    return fetch()
//	})
//
// # Cache
//
// [Cache] is a namespaced view over any [cache.Cache] backend. Keys are
// built with [cache.Keyer.HTTPKey], so entries from different sources do not
// collide.
package httputil
