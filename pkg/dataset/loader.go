// Package dataset downloads the example datasets used by figure
// descriptions and parses them into tables.
//
// Files are fetched once through an [httputil.Client], stored in any
// [cache.Cache] backend and memoized in the [Loader] until [Loader.Invalidate]
// drops them:
//
//	l := dataset.NewLoader(dataset.WithCache(backend))
//	ds, err := l.Load(ctx, "pbmc3k")
//	exp, err := ds.Table("exp")
//	m, err := exp.Numeric()
package dataset

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/crossplot/pkg/cache"
	"github.com/matzehuels/crossplot/pkg/errors"
	"github.com/matzehuels/crossplot/pkg/httputil"
	"github.com/matzehuels/crossplot/pkg/observability"
)

// DefaultTTL keeps downloaded files for a week.
const DefaultTTL = 7 * 24 * time.Hour

// Dataset is a named set of tables.
type Dataset struct {
	Name   string
	tables map[string]*Table
	order  []string
}

// Table returns the named table, or NOT_FOUND.
func (d *Dataset) Table(name string) (*Table, error) {
	t, ok := d.tables[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "dataset %s has no table %q (tables: %s)", d.Name, name, strings.Join(d.order, ", "))
	}
	return t, nil
}

// Tables returns table names in catalog order.
func (d *Dataset) Tables() []string {
	return append([]string(nil), d.order...)
}

// Loader fetches and memoizes datasets. It is safe for concurrent use.
type Loader struct {
	baseURL string
	backend cache.Cache
	keyer   cache.Keyer
	client  *httputil.Client
	refresh bool
	logger  *log.Logger

	mu   sync.Mutex
	memo map[string]*Dataset
}

// Option configures a [Loader].
type Option func(*Loader)

// WithBaseURL overrides [DefaultBaseURL].
func WithBaseURL(u string) Option {
	return func(l *Loader) { l.baseURL = strings.TrimRight(u, "/") }
}

// WithCache stores downloaded files in backend.
func WithCache(backend cache.Cache) Option {
	return func(l *Loader) { l.backend = backend }
}

// WithKeyer sets the keyer used for cache keys.
func WithKeyer(k cache.Keyer) Option {
	return func(l *Loader) { l.keyer = k }
}

// WithClient replaces the HTTP client. The client's own cache, if any, is
// used in addition to the loader's.
func WithClient(c *httputil.Client) Option {
	return func(l *Loader) { l.client = c }
}

// WithRefresh ignores cached files and downloads again.
func WithRefresh(refresh bool) Option {
	return func(l *Loader) { l.refresh = refresh }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// NewLoader creates a loader. Without [WithCache] nothing is persisted
// across processes.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		baseURL: DefaultBaseURL,
		logger:  log.New(io.Discard),
		memo:    make(map[string]*Dataset),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.backend == nil {
		l.backend = cache.NewNullCache()
	}
	if l.keyer == nil {
		l.keyer = cache.NewDefaultKeyer()
	}
	if l.client == nil {
		l.client = httputil.NewClient(httputil.WithClientLogger(l.logger))
	}
	return l
}

// Load returns the named dataset, downloading files that are not cached.
// Unknown names fail with DATASET_NOT_FOUND.
func (l *Loader) Load(ctx context.Context, name string) (*Dataset, error) {
	entry, err := Lookup(name)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	if ds, ok := l.memo[name]; ok {
		l.mu.Unlock()
		return ds, nil
	}
	l.mu.Unlock()

	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, name)
	start := time.Now()

	ds := &Dataset{Name: name, tables: make(map[string]*Table, len(entry.Files))}
	rows := 0
	for _, f := range entry.Files {
		t, err := l.loadFile(ctx, name, f)
		if err != nil {
			hooks.OnLoadComplete(ctx, name, 0, 0, time.Since(start), err)
			return nil, errors.Annotate(err, "load dataset %s", name)
		}
		ds.tables[f.Table] = t
		ds.order = append(ds.order, f.Table)
		rows += t.Len()
	}
	hooks.OnLoadComplete(ctx, name, rows, len(ds.tables[ds.order[0]].Columns), time.Since(start), nil)
	l.logger.Debug("loaded dataset", "name", name, "tables", len(ds.order), "rows", rows)

	l.mu.Lock()
	if prev, ok := l.memo[name]; ok {
		ds = prev
	} else {
		l.memo[name] = ds
	}
	l.mu.Unlock()
	return ds, nil
}

// LoadTable is a shortcut for Load followed by Dataset.Table. An empty table
// name selects the dataset's first table.
func (l *Loader) LoadTable(ctx context.Context, name, table string) (*Table, error) {
	ds, err := l.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	if table == "" {
		table = ds.order[0]
	}
	return ds.Table(table)
}

// Invalidate drops memoized datasets and their cached files. With no names
// every dataset is dropped.
func (l *Loader) Invalidate(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		names = Names()
	}
	l.mu.Lock()
	for _, n := range names {
		delete(l.memo, n)
	}
	l.mu.Unlock()

	for _, n := range names {
		entry, err := Lookup(n)
		if err != nil {
			return err
		}
		for _, f := range entry.Files {
			if err := l.backend.Delete(ctx, l.keyer.DatasetKey(n, f.Table)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Cached reports whether name is memoized.
func (l *Loader) Cached(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.memo[name]
	return ok
}

func (l *Loader) loadFile(ctx context.Context, name string, f File) (*Table, error) {
	key := l.keyer.DatasetKey(name, f.Table)
	if !l.refresh {
		data, ok, err := l.backend.Get(ctx, key)
		if err != nil {
			l.logger.Warn("dataset cache read failed", "key", key, "err", err)
		}
		if ok {
			if t, err := ReadCSV(bytes.NewReader(data), f.Table, f.Index); err == nil {
				observability.Cache().OnCacheHit(ctx, "dataset")
				l.logger.Debug("dataset cache hit", "key", key)
				return t, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "dataset")
	}

	data, err := l.client.Fetch(ctx, l.baseURL+"/"+f.Path, l.refresh)
	if err != nil {
		return nil, err
	}
	t, err := ReadCSV(bytes.NewReader(data), f.Table, f.Index)
	if err != nil {
		return nil, err
	}
	if err := l.backend.Set(ctx, key, data, DefaultTTL); err != nil {
		l.logger.Warn("dataset cache write failed", "key", key, "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "dataset", len(data))
	}
	return t, nil
}
