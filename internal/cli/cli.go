// Package cli implements the crossplot command-line interface.
//
// # Commands
//
//   - render: draw a figure description to SVG, PNG, PDF and other formats
//   - layout: print the regions a figure allocates to its blocks
//   - tree: export the dendrogram of a clustered axis through Graphviz
//   - datasets: list, fetch and browse the example datasets
//   - cache: manage the dataset and artifact cache
//   - serve: render figure descriptions over HTTP
//
// # Caching
//
// Every command shares one cache backend, chosen with --cache:
//
//	crossplot render fig.toml                              # file cache in ~/.cache/crossplot
//	crossplot render fig.toml --cache redis://localhost:6379/0
//	crossplot render fig.toml --no-cache
package cli

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/crossplot/pkg/buildinfo"
	"github.com/matzehuels/crossplot/pkg/cache"
	"github.com/matzehuels/crossplot/pkg/dataset"
	"github.com/matzehuels/crossplot/pkg/observability"
	"github.com/matzehuels/crossplot/pkg/pipeline"
)

const appName = "crossplot"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	cacheURL  string
	noCache   bool
	logFormat string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	versionTemplate := buildinfo.Template()
	root := &cobra.Command{
		Use:          appName,
		Short:        "Crossplot draws annotated heatmaps and multi-panel figures",
		Long:         `Crossplot composes a main heatmap with side panels, dendrograms, labels and legends from a TOML or YAML figure description.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(versionTemplate)
	root.PersistentFlags().StringVar(&c.cacheURL, "cache", "", "cache backend: file (default), file:///dir, redis://..., mongodb://..., none")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable caching")
	root.PersistentFlags().StringVar(&c.logFormat, "log-format", "text", "log output: text, json or logfmt")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := c.applyLogFormat(); err != nil {
			return err
		}
		if c.Logger.GetLevel() <= log.DebugLevel {
			hooks := observability.NewLogHooks(c.Logger)
			observability.SetPipelineHooks(hooks)
			observability.SetCacheHooks(hooks)
			observability.SetHTTPHooks(hooks)
		}
		return nil
	}

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.datasetsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) applyLogFormat() error {
	f, err := logFormatter(c.logFormat)
	if err != nil {
		return err
	}
	c.Logger.SetFormatter(f)
	return nil
}

// openCache opens the backend selected by --cache and --no-cache.
func (c *CLI) openCache(ctx context.Context) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	return cache.Open(ctx, c.cacheURL)
}

// newLoader creates a dataset loader on top of backend.
func (c *CLI) newLoader(backend cache.Cache, refresh bool) *dataset.Loader {
	return dataset.NewLoader(
		dataset.WithCache(backend),
		dataset.WithRefresh(refresh),
		dataset.WithLogger(c.Logger),
	)
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, refresh bool) (*pipeline.Runner, error) {
	backend, err := c.openCache(ctx)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(backend, nil, c.newLoader(backend, refresh), c.Logger), nil
}

// parseFormats parses a comma-separated format list. Empty input yields nil
// so the figure's own output section applies.
func parseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
