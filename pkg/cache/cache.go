// Package cache stores bytes under string keys for the dataset loader and
// the figure pipeline.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory, the CLI default
//   - [RedisCache]: a shared Redis instance, for `crossplot serve` replicas
//   - [MongoCache]: a MongoDB collection with a TTL index
//   - [NullCache]: stores nothing, for tests and --no-cache
//
// [Open] picks a backend from a URL:
//
//	c, err := cache.Open(ctx, "redis://localhost:6379/0")
//	c, err := cache.Open(ctx, "file:///home/me/.cache/crossplot")
//	c, err := cache.Open(ctx, "none")
//
// # Keys
//
// A [Keyer] derives keys for every cached kind (raw HTTP bodies, parsed
// dataset tables, rendered artifacts). Keys that depend on options hash them
// so that changing any option misses the cache.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional expiry. A ttl of 0 never expires.
type Cache interface {
	// Get returns the data and true on a hit, or false on a miss. Expired
	// entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop every entry.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Keyer derives cache keys.
type Keyer interface {
	// HTTPKey identifies a raw response body.
	HTTPKey(namespace, key string) string
	// DatasetKey identifies a parsed dataset table.
	DatasetKey(dataset, table string) string
	// ArtifactKey identifies a rendered figure.
	ArtifactKey(figureHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the render options that change an artifact's bytes.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
	DPI    int    `json:"dpi"`
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

func (DefaultKeyer) DatasetKey(dataset, table string) string {
	return "dataset:" + dataset + "/" + table
}

func (DefaultKeyer) ArtifactKey(figureHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", figureHash, opts)
}
