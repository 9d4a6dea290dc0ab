// Package pipeline runs a figure description through the full
// load → build → render sequence.
//
// The CLI and the HTTP server both go through a [Runner], so caching,
// defaults and validation behave the same everywhere.
//
//	runner := pipeline.NewRunner(cache, nil, loader, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Path:    "figures/pbmc3k.toml",
//	    Formats: []string{"svg", "png"},
//	})
//	svg := result.Artifacts["svg"]
//
// Rendered artifacts are cached by a hash of the description and of every
// local data file it reads, so editing either invalidates the cache.
package pipeline

import (
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/crossplot/pkg/board"
	"github.com/matzehuels/crossplot/pkg/cache"
	"github.com/matzehuels/crossplot/pkg/errors"
	"github.com/matzehuels/crossplot/pkg/figspec"
	"github.com/matzehuels/crossplot/pkg/render"
)

const (
	// DefaultFormat is rendered when neither the options nor the
	// description name a format.
	DefaultFormat = "svg"

	// DefaultDPI is used for raster formats.
	DefaultDPI = render.DefaultDPI

	// TTLArtifact bounds how long rendered figures stay cached.
	TTLArtifact = 30 * 24 * time.Hour
)

// Options configure one pipeline run. Either Figure or Path must be set; a
// Figure wins when both are.
type Options struct {
	Path   string          `json:"path,omitempty"`
	Figure *figspec.Figure `json:"figure,omitempty"`

	// Dir resolves relative data paths. It defaults to Path's directory.
	Dir string `json:"-"`

	// Formats and DPI override the description's output section.
	Formats []string `json:"formats,omitempty"`
	DPI     int      `json:"dpi,omitempty"`
	Refresh bool     `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// Result holds the outputs of a run.
type Result struct {
	Figure     *figspec.Figure
	FigureHash string

	// Board is nil when every artifact came from the cache.
	Board     *board.Board
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains timing and size information.
type Stats struct {
	Rows, Cols int
	Blocks     int
	BuildTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo reports which stages were served from the cache.
type CacheInfo struct {
	RenderHit bool // every requested artifact was cached
}

// ValidateAndSetDefaults loads the description if needed, fills in formats
// and DPI and validates them. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Figure == nil {
		if o.Path == "" {
			return errors.New(errors.ErrCodeInvalidInput, "figure or path is required")
		}
		fig, err := figspec.Load(o.Path)
		if err != nil {
			return err
		}
		o.Figure = fig
	}
	if o.Dir == "" && o.Path != "" {
		o.Dir = filepath.Dir(o.Path)
	}
	if len(o.Formats) == 0 {
		o.Formats = o.Figure.Output.Formats
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.Formats = normalizeFormats(o.Formats)
	if o.DPI == 0 {
		o.DPI = o.Figure.Output.DPI
	}
	if o.DPI == 0 {
		o.DPI = DefaultDPI
	}
	if o.DPI < 0 {
		return errors.New(errors.ErrCodeInvalidOption, "dpi must be positive, got %d", o.DPI)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// ValidateFormats checks every format against the supported encoders.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := errors.ValidateFormat(f, render.Formats()); err != nil {
			return err
		}
	}
	return nil
}

// normalizeFormats lowercases formats and drops duplicates, keeping order.
func normalizeFormats(formats []string) []string {
	seen := make(map[string]bool, len(formats))
	out := make([]string, 0, len(formats))
	for _, f := range formats {
		f = strings.ToLower(strings.TrimSpace(f))
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

// ArtifactKeyOpts returns the cache key options for one format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{Format: format, DPI: o.DPI}
}
