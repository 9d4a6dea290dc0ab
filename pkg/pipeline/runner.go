package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/crossplot/pkg/board"
	"github.com/matzehuels/crossplot/pkg/cache"
	"github.com/matzehuels/crossplot/pkg/dataset"
	"github.com/matzehuels/crossplot/pkg/errors"
	"github.com/matzehuels/crossplot/pkg/figspec"
	"github.com/matzehuels/crossplot/pkg/observability"
)

// Runner executes pipelines against a shared cache and dataset loader. It
// keeps no per-run state, so concurrent runs are safe.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Loader *dataset.Loader
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer uses
// [cache.DefaultKeyer], and a nil loader fetches datasets through c.
func NewRunner(c cache.Cache, keyer cache.Keyer, loader *dataset.Loader, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	if loader == nil {
		loader = dataset.NewLoader(dataset.WithCache(c), dataset.WithKeyer(keyer), dataset.WithLogger(logger))
	}
	return &Runner{Cache: c, Keyer: keyer, Loader: loader, Logger: logger}
}

// Execute renders the figure in every requested format, using cached
// artifacts when all of them are present.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, errors.Annotate(err, "invalid options")
	}
	fig := opts.Figure
	result := &Result{Figure: fig, Artifacts: make(map[string][]byte)}

	hash, err := HashFigure(fig, opts.Dir)
	if err != nil {
		return nil, err
	}
	result.FigureHash = hash

	if !opts.Refresh {
		if artifacts, ok := r.cachedArtifacts(ctx, hash, opts); ok {
			result.Artifacts = artifacts
			result.CacheInfo.RenderHit = true
			r.Logger.Info("served from cache", "figure", fig.Name, "formats", opts.Formats)
			return result, nil
		}
	}

	buildStart := time.Now()
	b, err := r.Build(ctx, opts)
	if err != nil {
		return nil, errors.Annotate(err, "build")
	}
	result.Board = b
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.Rows, result.Stats.Cols = b.Data().Dims()
	result.Stats.Blocks = len(fig.Blocks)
	r.Logger.Info("built figure",
		"figure", fig.Name,
		"rows", result.Stats.Rows,
		"cols", result.Stats.Cols,
		"duration", result.Stats.BuildTime)

	renderStart := time.Now()
	artifacts, err := Render(ctx, b, opts.Formats, opts.DPI)
	if err != nil {
		return nil, errors.Annotate(err, "render")
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	r.Logger.Info("rendered outputs", "formats", opts.Formats, "duration", result.Stats.RenderTime)

	for format, data := range artifacts {
		key := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, TTLArtifact); err != nil {
			r.Logger.Warn("cache artifact", "format", format, "err", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}
	return result, nil
}

// Build loads the figure's data and returns the configured, unrendered board.
func (r *Runner) Build(ctx context.Context, opts Options) (*board.Board, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	res := &figspec.Resolver{Loader: r.Loader, Dir: opts.Dir}
	return figspec.Build(ctx, opts.Figure, res, board.WithLogger(opts.Logger))
}

func (r *Runner) cachedArtifacts(ctx context.Context, hash string, opts Options) (map[string][]byte, bool) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil || !hit {
			observability.Cache().OnCacheMiss(ctx, "artifact")
			return nil, false
		}
		observability.Cache().OnCacheHit(ctx, "artifact")
		artifacts[format] = data
	}
	return artifacts, true
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
