package dendrogram

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/crossplot/pkg/errors"
)

// ToDOT converts a tree to Graphviz DOT. Internal nodes are drawn as points
// annotated with their merge height; leaves use labels[i] when given.
func ToDOT(t *Tree, labels []string) string {
	var buf bytes.Buffer
	buf.WriteString("digraph dendrogram {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14];\n")
	buf.WriteString("  edge [arrowhead=none];\n")
	buf.WriteString("\n")

	leafName := func(i int) string {
		if i < len(labels) {
			return labels[i]
		}
		return fmt.Sprintf("%d", i)
	}

	for _, leaf := range t.Leaves() {
		fmt.Fprintf(&buf, "  n%d [label=%q];\n", leaf, leafName(leaf))
	}

	if l := t.Linkage(); l != nil {
		buf.WriteString("\n")
		for i, m := range l.Merges {
			id := l.N + i
			fmt.Fprintf(&buf, "  n%d [shape=point, xlabel=%q];\n", id, fmt.Sprintf("%.3g", m.Height))
			fmt.Fprintf(&buf, "  n%d -> n%d;\n", id, m.Left)
			fmt.Fprintf(&buf, "  n%d -> n%d;\n", id, m.Right)
		}
		// Keep leaves on one rank, in leaf order.
		buf.WriteString("  { rank=same;")
		for _, leaf := range t.Leaves() {
			fmt.Fprintf(&buf, " n%d;", leaf)
		}
		buf.WriteString(" }\n")
	}

	buf.WriteString("}\n")
	return buf.String()
}

var dotFormats = map[string]graphviz.Format{
	"svg": graphviz.SVG,
	"png": graphviz.PNG,
	"jpg": graphviz.JPG,
}

// RenderDOT renders DOT source with Graphviz. Supported formats are svg, png
// and jpg; "dot" returns the source unchanged.
func RenderDOT(ctx context.Context, dot, format string) ([]byte, error) {
	if format == "dot" {
		return []byte(dot), nil
	}
	f, ok := dotFormats[format]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported tree format %q (want dot, svg, png or jpg)", format)
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, f, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
