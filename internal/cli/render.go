package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/crossplot/pkg/errors"
	"github.com/matzehuels/crossplot/pkg/pipeline"
	"github.com/matzehuels/crossplot/pkg/render"
)

// renderOpts holds the flags of the render command.
type renderOpts struct {
	output  string // output file (single format) or directory
	formats string // comma-separated formats
	dpi     int
	refresh bool
}

func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [figure.toml]",
		Short: "Render a figure description",
		Long: `Render a figure description to one or more image files.

The figure is read from a TOML or YAML file. Relative data paths are resolved
against the figure's directory; named datasets are downloaded once and cached.

Output files are named after the figure and written next to it unless -o names
a directory, or a file when a single format is requested.`,
		Example: `  crossplot render examples/pbmc3k.toml
  crossplot render fig.toml -f svg,png --dpi 300 -o out/
  crossplot render fig.yaml -o fig.pdf`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeFigures,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file or directory (default: next to the figure)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s), comma-separated: "+strings.Join(render.Formats(), ", "))
	cmd.Flags().IntVar(&opts.dpi, "dpi", 0, fmt.Sprintf("raster resolution (default %d)", pipeline.DefaultDPI))
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached datasets and artifacts")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
	runner, err := c.newRunner(ctx, opts.refresh)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := pipeline.Options{
		Path:    input,
		Formats: parseFormats(opts.formats),
		DPI:     opts.dpi,
		Refresh: opts.refresh,
		Logger:  c.Logger,
	}
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", filepath.Base(input)))
	spinner.Start()
	result, err := runner.Execute(ctx, popts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	paths, err := outputPaths(input, opts.output, result.Figure.Name, popts.Formats)
	if err != nil {
		return err
	}
	for _, format := range popts.Formats {
		if err := writeOutput(paths[format], result.Artifacts[format]); err != nil {
			return err
		}
	}

	printSuccess("Rendered %s", displayName(input, result.Figure.Name))
	for _, format := range popts.Formats {
		printFile(paths[format])
	}
	printStats(result.Stats.Rows, result.Stats.Cols, result.Stats.Blocks, result.CacheInfo.RenderHit)
	printNewline()
	printNextStep("Inspect the layout", "crossplot layout "+input)
	return nil
}

// outputPaths maps every format to its output file. A single format with an
// output that carries a format extension is written to that exact file;
// otherwise output is a directory and files are named base.format.
func outputPaths(input, output, name string, formats []string) (map[string]string, error) {
	base := name
	if base == "" {
		base = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	}

	dir := filepath.Dir(input)
	if output != "" {
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), ".")
		if slices.Contains(render.Formats(), ext) {
			if len(formats) != 1 {
				return nil, errors.New(errors.ErrCodeInvalidOption,
					"output %s names a single file but %d formats were requested", output, len(formats))
			}
			if ext != formats[0] {
				return nil, errors.New(errors.ErrCodeInvalidOption,
					"output %s does not match format %s", output, formats[0])
			}
			return map[string]string{formats[0]: output}, nil
		}
		dir = output
	}

	paths := make(map[string]string, len(formats))
	for _, f := range formats {
		paths[f] = filepath.Join(dir, base+"."+f)
	}
	return paths, nil
}

func writeOutput(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", filepath.Dir(path))
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
	}
	return nil
}

func displayName(input, name string) string {
	if name != "" {
		return name
	}
	return filepath.Base(input)
}
