package httputil

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/crossplot/pkg/cache"
)

// Cache is a namespaced, typed view over a [cache.Cache] backend. Values are
// stored as JSON under keys built by [cache.Keyer.HTTPKey], so a file cache,
// Redis or MongoDB can hold downloaded data side by side with rendered
// artifacts.
//
//	c := httputil.NewCache(backend, nil, 24*time.Hour)
//	gh := c.Namespace("marsilea")
//	gh.SetBytes(ctx, "imdb.csv", body)  // key "http:marsilea:imdb.csv"
type Cache struct {
	backend   cache.Cache
	keyer     cache.Keyer
	ttl       time.Duration
	namespace string
}

// NewCache wraps backend. A nil keyer uses [cache.DefaultKeyer]; a TTL of 0
// keeps entries until the backend evicts them.
func NewCache(backend cache.Cache, keyer cache.Keyer, ttl time.Duration) *Cache {
	if backend == nil {
		backend = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &Cache{backend: backend, keyer: keyer, ttl: ttl}
}

// TTL returns the time-to-live applied by Set.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Namespace returns a view whose keys are additionally prefixed with ns.
// Calls chain: c.Namespace("a").Namespace("b") uses namespace "ab".
func (c *Cache) Namespace(ns string) *Cache {
	return &Cache{backend: c.backend, keyer: c.keyer, ttl: c.ttl, namespace: c.namespace + ns}
}

// GetBytes returns the raw entry for key.
func (c *Cache) GetBytes(ctx context.Context, key string) ([]byte, bool, error) {
	return c.backend.Get(ctx, c.keyer.HTTPKey(c.namespace, key))
}

// SetBytes stores data under key.
func (c *Cache) SetBytes(ctx context.Context, key string, data []byte) error {
	return c.backend.Set(ctx, c.keyer.HTTPKey(c.namespace, key), data, c.ttl)
}

// Get unmarshals the entry for key into v. It reports false on a miss, and
// on an entry that no longer decodes.
func (c *Cache) Get(ctx context.Context, key string, v any) (bool, error) {
	data, ok, err := c.GetBytes(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, nil
	}
	return true, nil
}

// Set marshals v to JSON and stores it under key.
func (c *Cache) Set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.SetBytes(ctx, key, data)
}
