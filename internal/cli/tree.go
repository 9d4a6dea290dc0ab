package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/crossplot/pkg/dendrogram"
	"github.com/matzehuels/crossplot/pkg/errors"
	"github.com/matzehuels/crossplot/pkg/figspec"
	"github.com/matzehuels/crossplot/pkg/matrix"
	"github.com/matzehuels/crossplot/pkg/partition"
	"github.com/matzehuels/crossplot/pkg/pipeline"
)

type treeOpts struct {
	axis   string
	chunk  int
	meta   bool
	format string
	output string
}

func (c *CLI) treeCommand() *cobra.Command {
	opts := treeOpts{axis: "rows", format: "dot"}

	cmd := &cobra.Command{
		Use:   "tree [figure.toml]",
		Short: "Export the dendrogram of a clustered axis",
		Long: `Export the clustering tree of one chunk, or the tree that orders the chunks
(--meta), as Graphviz DOT or as an image rendered by Graphviz.`,
		Example: `  crossplot tree fig.toml --axis cols -f svg -o cols.svg
  crossplot tree fig.toml --chunk 2
  crossplot tree fig.toml --meta -f png`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeFigures,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTree(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.axis, "axis", opts.axis, "axis to export: rows or cols")
	cmd.Flags().IntVar(&opts.chunk, "chunk", 0, "chunk index in render order")
	cmd.Flags().BoolVar(&opts.meta, "meta", false, "export the tree that orders the chunks")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: dot, svg, png, jpg")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout for dot, <figure>.tree.<format> otherwise)")

	return cmd
}

func (c *CLI) runTree(ctx context.Context, input string, opts treeOpts) error {
	axis, err := parseAxis(opts.axis)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, false)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := pipeline.Options{Path: input, Logger: c.Logger}
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	b, err := runner.Build(ctx, popts)
	if err != nil {
		return err
	}

	res := &figspec.Resolver{Loader: runner.Loader, Dir: popts.Dir}
	rowNames, colNames, err := res.Names(ctx, popts.Figure.Data)
	if err != nil {
		return err
	}
	names := rowNames
	if axis == matrix.Cols {
		names = colNames
	}

	tree, labels, err := selectTree(b.Partition(axis), names, opts)
	if err != nil {
		return err
	}

	dot := dendrogram.ToDOT(tree, labels)
	data, err := dendrogram.RenderDOT(ctx, dot, strings.ToLower(opts.format))
	if err != nil {
		return err
	}

	output := opts.output
	if output == "" {
		if opts.format == "dot" {
			_, err := os.Stdout.Write(data)
			return err
		}
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".tree." + opts.format
	}
	if err := writeOutput(output, data); err != nil {
		return err
	}
	printSuccess("Exported %s tree", axis)
	printFile(output)
	return nil
}

// selectTree picks the requested tree from p and the leaf labels that go
// with it.
func selectTree(p *partition.Result, names []string, opts treeOpts) (*dendrogram.Tree, []string, error) {
	if !p.Clustered() {
		return nil, nil, errors.New(errors.ErrCodeInvalidOption, "%s are not clustered; add a dendrogram or cluster section", p.Axis)
	}
	if opts.meta {
		if p.Meta == nil {
			return nil, nil, errors.New(errors.ErrCodeInvalidOption, "%s have no chunk-ordering tree", p.Axis)
		}
		return p.Meta, metaLabels(p), nil
	}
	if opts.chunk < 0 || opts.chunk >= len(p.Chunks) {
		return nil, nil, errors.New(errors.ErrCodeInvalidOption, "chunk %d out of range [0, %d)", opts.chunk, len(p.Chunks))
	}
	tree := p.Trees[opts.chunk]
	return tree, leafLabels(tree, p.Chunks[opts.chunk], names), nil
}

// leafLabels names the leaves of a chunk tree. Tree leaves index the chunk
// in its original order, while chunk.Indices is already in leaf order.
func leafLabels(tree *dendrogram.Tree, chunk partition.Chunk, names []string) []string {
	labels := make([]string, len(chunk.Indices))
	for pos, leaf := range tree.Leaves() {
		if leaf < len(labels) && pos < len(chunk.Indices) && chunk.Indices[pos] < len(names) {
			labels[leaf] = names[chunk.Indices[pos]]
		}
	}
	return labels
}

// metaLabels names the leaves of the chunk-ordering tree. Leaf i of the
// tree is the chunk at position i before reordering.
func metaLabels(p *partition.Result) []string {
	labels := make([]string, len(p.Chunks))
	for pos, leaf := range p.Meta.Leaves() {
		if leaf < len(labels) {
			labels[leaf] = p.Chunks[pos].Label
		}
	}
	return labels
}

func parseAxis(s string) (matrix.Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rows", "row", "y":
		return matrix.Rows, nil
	case "cols", "columns", "col", "x":
		return matrix.Cols, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidOption, "unknown axis %q (want rows or cols)", s)
}
