package board

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/recorder"

	"github.com/matzehuels/crossplot/pkg/errors"
	"github.com/matzehuels/crossplot/pkg/layout"
	"github.com/matzehuels/crossplot/pkg/legend"
	"github.com/matzehuels/crossplot/pkg/matrix"
	"github.com/matzehuels/crossplot/pkg/partition"
	"github.com/matzehuels/crossplot/pkg/plotter"
)

func numeric(t *testing.T, rows, cols int) *matrix.Matrix {
	t.Helper()
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = float64(i % 7)
	}
	m, err := matrix.New(rows, cols, data)
	require.NoError(t, err)
	return m
}

func names(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = string(rune('a' + i))
	}
	return out
}

func labels(t *testing.T, n int) *plotter.Labels {
	t.Helper()
	p, err := plotter.NewLabels(names(n))
	require.NoError(t, err)
	return p
}

func fills(rec *recorder.Canvas) int {
	n := 0
	for _, a := range rec.Actions {
		if _, ok := a.(*recorder.Fill); ok {
			n++
		}
	}
	return n
}

func TestAllocation(t *testing.T) {
	b, err := New(numeric(t, 2, 3), WithSize(3, 2), WithMargin(0))
	require.NoError(t, err)
	v, err := matrix.Vector([]float64{1, 2})
	require.NoError(t, err)
	bar, err := plotter.NewBar(v)
	require.NoError(t, err)
	require.NoError(t, b.AddRight(bar, Name("bar"), Size(1.0), Pad(0.1)))
	require.NoError(t, b.Render())

	main, err := b.MainRegion()
	require.NoError(t, err)
	require.Len(t, main, 1)
	assert.InDelta(t, 1.9, main[0].Width(), 1e-9)
	assert.InDelta(t, 2.0, main[0].Height(), 1e-9)

	right, err := b.Region(layout.Right, "bar")
	require.NoError(t, err)
	require.Len(t, right, 1)
	assert.InDelta(t, 1.0, right[0].Width(), 1e-9)
	assert.InDelta(t, 2.0, right[0].Left, 1e-9)
	assert.InDelta(t, 3.0, right[0].Right, 1e-9)
}

// countingLayer records how often the board renders it.
type countingLayer struct{ calls int }

func (p *countingLayer) Kind() string { return "counting" }

func (p *countingLayer) Render(draw.Canvas, plotter.View) error {
	p.calls++
	return nil
}

func TestRenderIdempotent(t *testing.T) {
	b, err := New(numeric(t, 4, 5), WithSize(5, 4))
	require.NoError(t, err)
	layer := &countingLayer{}
	require.NoError(t, b.AddLayer(layer, Name("count")))
	require.NoError(t, b.AddLeft(labels(t, 4), Name("rows")))
	require.NoError(t, b.AddTop(labels(t, 5), Name("cols")))
	require.NoError(t, b.AddDendrogram(layout.Bottom))
	require.NoError(t, b.SplitAt(matrix.Rows, 2))

	require.NoError(t, b.Render())
	first, err := b.Regions()
	require.NoError(t, err)
	require.NoError(t, b.Render())
	second, err := b.Regions()
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, Rendered, b.State())
	// Two row chunks, one column chunk, two renders.
	assert.Equal(t, 4, layer.calls)
}

func TestBlockOverflow(t *testing.T) {
	b, err := New(numeric(t, 2, 2), WithSize(2, 2), WithMargin(0.1))
	require.NoError(t, err)
	v, err := matrix.Vector([]float64{1, 2})
	require.NoError(t, err)
	bar, err := plotter.NewBar(v)
	require.NoError(t, err)

	require.NoError(t, b.AddLeft(bar, Name("wide"), Size(1.0)))
	err = b.AddRight(bar, Name("wider"), Size(0.7), Pad(0.2))
	assert.Equal(t, errors.ErrCodeInvalidOption, errors.GetCode(err))
	assert.Len(t, b.stack(layout.Right), 0)

	// The other axis has its own budget.
	require.NoError(t, b.AddTop(bar, Name("tall"), Size(1.5)))
	// Relative blocks only spend their pad.
	require.NoError(t, b.AddRight(bar, Name("share"), Relative(), Size(2)))
	require.NoError(t, b.Render())
}

func TestStates(t *testing.T) {
	b, err := New(numeric(t, 3, 3))
	require.NoError(t, err)
	assert.Equal(t, Empty, b.State())

	_, err = b.MainRegion()
	assert.True(t, errors.IsState(err))
	assert.Equal(t, errors.ErrCodeNotRendered, errors.GetCode(err))

	require.NoError(t, b.AddTop(labels(t, 3), Name("cols")))
	assert.Equal(t, Configured, b.State())
	require.NoError(t, b.Render())
	assert.Equal(t, Rendered, b.State())

	_, err = b.Region(layout.Top, "missing")
	assert.Equal(t, errors.ErrCodeNotFound, errors.GetCode(err))

	require.NoError(t, b.AddBottom(labels(t, 3), Name("more")))
	assert.Equal(t, Configured, b.State())
	_, err = b.Region(layout.Top, "cols")
	assert.True(t, errors.IsState(err))
}

func TestDuplicateNames(t *testing.T) {
	b, err := New(numeric(t, 3, 3))
	require.NoError(t, err)
	require.NoError(t, b.AddLeft(labels(t, 3), Name("x")))

	err = b.AddLeft(labels(t, 3), Name("x"))
	assert.Equal(t, errors.ErrCodeDuplicateName, errors.GetCode(err))

	require.NoError(t, b.AddRight(labels(t, 3), Name("x")))
	require.NoError(t, b.Render())
	left, err := b.Region(layout.Left, "x")
	require.NoError(t, err)
	right, err := b.Region(layout.Right, "x")
	require.NoError(t, err)
	assert.Less(t, left[0].Right, right[0].Left)
}

func TestAttachValidation(t *testing.T) {
	b, err := New(numeric(t, 3, 4))
	require.NoError(t, err)

	err = b.AddTop(labels(t, 3))
	assert.Equal(t, errors.ErrCodeSizeMismatch, errors.GetCode(err))
	assert.Equal(t, Empty, b.State())

	err = b.Attach(layout.Side(42), labels(t, 3))
	assert.Equal(t, errors.ErrCodeInvalidSide, errors.GetCode(err))

	mesh, err := plotter.NewColorMesh(numeric(t, 4, 3))
	require.NoError(t, err)
	err = b.AddLayer(mesh)
	assert.Equal(t, errors.ErrCodeSizeMismatch, errors.GetCode(err))

	err = b.AddLeft(labels(t, 3), Size(-1))
	assert.True(t, errors.IsValidation(err))
	assert.Equal(t, Empty, b.State())
}

func TestSplitLabelsRegions(t *testing.T) {
	groups := []string{"A", "A", "B", "B", "B", "C", "C", "C", "C", "C"}
	b, err := New(numeric(t, 10, 2), WithSize(2, 10), WithMargin(0), WithChunkGap(0))
	require.NoError(t, err)
	require.NoError(t, b.AddLeft(labels(t, 10), Name("names"), Size(1)))
	require.NoError(t, b.SplitLabels(matrix.Rows, groups, []string{"A", "B", "C"}))
	require.NoError(t, b.Render())

	main, err := b.MainRegion()
	require.NoError(t, err)
	require.Len(t, main, 3)
	assert.InDelta(t, 10.0, main[0].Top, 1e-9)
	assert.InDelta(t, 8.0, main[0].Bottom, 1e-9)
	assert.InDelta(t, 3.0, main[1].Height(), 1e-9)
	assert.InDelta(t, 0.0, main[2].Bottom, 1e-9)

	left, err := b.Region(layout.Left, "names")
	require.NoError(t, err)
	require.Len(t, left, 3)
	for i := range left {
		assert.Equal(t, main[i].Top, left[i].Top)
		assert.Equal(t, main[i].Bottom, left[i].Bottom)
	}

	part := b.Partition(matrix.Rows)
	assert.Equal(t, []string{"A", "B", "C"}, part.Labels())
}

func TestSplitErrorsKeepState(t *testing.T) {
	b, err := New(numeric(t, 4, 2))
	require.NoError(t, err)
	require.NoError(t, b.SplitAt(matrix.Rows, 2))

	err = b.SplitLabels(matrix.Rows, []string{"a"}, nil)
	assert.Equal(t, errors.ErrCodeSizeMismatch, errors.GetCode(err))
	assert.Len(t, b.Partition(matrix.Rows).Chunks, 2)

	err = b.Cluster(matrix.Cols, partition.ClusterSpec{Method: "nope"})
	assert.True(t, errors.IsValidation(err))
	assert.False(t, b.Partition(matrix.Cols).Clustered())
}

func TestDendrogramFallback(t *testing.T) {
	m, err := matrix.FromRows([][]float64{{9, 0}, {1, 1}, {8, 0}, {0, 1}})
	require.NoError(t, err)
	b, err := New(m)
	require.NoError(t, err)
	require.NoError(t, b.SplitLabels(matrix.Rows, []string{"x", "x", "y", "y"}, nil))
	require.NoError(t, b.AddDendrogram(layout.Left))

	part := b.Partition(matrix.Rows)
	assert.False(t, part.Clustered())
	assert.Equal(t, []int{0, 1, 2, 3}, part.Order())
	for _, tree := range part.DendrogramTrees() {
		assert.False(t, tree.Clustered())
	}
	require.NoError(t, b.Render())

	b, err = New(m)
	require.NoError(t, err)
	require.NoError(t, b.SplitLabels(matrix.Rows, []string{"x", "x", "y", "y"}, nil))
	require.NoError(t, b.AddDendrogram(layout.Left, Recluster(), KeepChunkOrder()))
	part = b.Partition(matrix.Rows)
	assert.True(t, part.Clustered())
	assert.Equal(t, []string{"x", "y"}, part.Labels())
	require.NoError(t, b.Render())
}

func TestDendrogramClusters(t *testing.T) {
	m, err := matrix.FromRows([][]float64{{0}, {10}, {1}})
	require.NoError(t, err)
	b, err := New(m)
	require.NoError(t, err)
	require.NoError(t, b.AddDendrogram(layout.Right, WithBlock(Name("tree"), Size(0.8))))

	part := b.Partition(matrix.Rows)
	assert.True(t, part.Clustered())
	order := part.Order()
	assert.ElementsMatch(t, []int{0, 1, 2}, order)
	assert.NotEqual(t, 1, order[1], "rows 0 and 2 are closest and must be adjacent")

	// A later split keeps the clustering inside each chunk.
	require.NoError(t, b.SplitAt(matrix.Rows, 1))
	assert.True(t, b.Partition(matrix.Rows).Clustered())
	require.NoError(t, b.Render())
	regions, err := b.Region(layout.Right, "tree")
	require.NoError(t, err)
	assert.Len(t, regions, 2)
}

func TestDendrogramOnCategorical(t *testing.T) {
	m, err := matrix.Categorical([][]string{{"a", "b"}, {"c", "d"}})
	require.NoError(t, err)
	b, err := New(m)
	require.NoError(t, err)

	err = b.AddDendrogram(layout.Top)
	assert.True(t, errors.IsType(err))
	assert.Equal(t, Empty, b.State())

	err = b.AddDendrogram(layout.Main)
	assert.Equal(t, errors.ErrCodeInvalidSide, errors.GetCode(err))
}

func TestLegends(t *testing.T) {
	b, err := New(numeric(t, 3, 3), WithSize(5, 3))
	require.NoError(t, err)
	groups, err := matrix.Labels([]string{"g1", "g2", "g1"})
	require.NoError(t, err)
	colors, err := plotter.NewColors(groups)
	require.NoError(t, err)
	require.NoError(t, b.AddLeft(colors, Name("group")))
	mesh, err := plotter.NewColorMesh(nil)
	require.NoError(t, err)
	require.NoError(t, b.AddLayer(mesh, Name("heat")))
	assert.Equal(t, []string{"group", "heat"}, b.Legends())

	require.NoError(t, b.AddLegends(layout.Right, Order("heat")))
	require.NoError(t, b.Render())
	regions, err := b.Region(layout.Right, "legends")
	require.NoError(t, err)
	require.Len(t, regions, 1)
	assert.Greater(t, regions[0].Width(), 0.0)

	require.NoError(t, b.AddLegends(layout.Right, Order("missing")))
	err = b.Render()
	assert.Equal(t, errors.ErrCodeNotFound, errors.GetCode(err))
	assert.Equal(t, Configured, b.State())

	// Order names resolve at render, so legends may be registered later.
	require.NoError(t, b.AddLegends(layout.Right, Order("late", "heat")))
	require.NoError(t, b.CustomLegend("late", func() (legend.Legend, error) {
		return &legend.Categorical{Entries: []legend.Entry{{Label: "x", Color: color.Black}}}, nil
	}))
	require.NoError(t, b.Render())
}

func TestHeatmapDraw(t *testing.T) {
	b, err := NewHeatmap(numeric(t, 2, 3), []plotter.Option{plotter.WithColormap("Blues")}, WithSize(3, 2))
	require.NoError(t, err)

	rec := &recorder.Canvas{}
	c := draw.Canvas{Canvas: rec, Rectangle: vg.Rectangle{Max: vg.Point{X: 3 * vg.Inch, Y: 2 * vg.Inch}}}
	require.NoError(t, b.Draw(c))
	assert.Equal(t, 6, fills(rec))
	assert.Equal(t, Rendered, b.State())
}

func TestCompose(t *testing.T) {
	a, err := NewHeatmap(numeric(t, 2, 2), nil, WithSize(2, 1))
	require.NoError(t, err)
	b, err := NewHeatmap(numeric(t, 1, 1), nil, WithSize(1, 1))
	require.NoError(t, err)

	tests := []struct {
		side layout.Side
		w, h float64
	}{
		{layout.Right, 3.5, 1},
		{layout.Left, 3.5, 1},
		{layout.Bottom, 2, 2.5},
		{layout.Top, 2, 2.5},
	}
	for _, tt := range tests {
		t.Run(tt.side.String(), func(t *testing.T) {
			c, err := Compose(a, b, tt.side, 0.5)
			require.NoError(t, err)
			w, h := c.Size()
			assert.InDelta(t, tt.w, w, 1e-9)
			assert.InDelta(t, tt.h, h, 1e-9)

			rec := &recorder.Canvas{}
			dc := draw.Canvas{Canvas: rec, Rectangle: vg.Rectangle{Max: vg.Point{X: vg.Length(w) * vg.Inch, Y: vg.Length(h) * vg.Inch}}}
			require.NoError(t, c.Draw(dc))
			assert.Equal(t, 5, fills(rec))
		})
	}

	_, err = Compose(a, nil, layout.Right, 0)
	assert.True(t, errors.IsValidation(err))
	_, err = Compose(a, b, layout.Main, 0)
	assert.Equal(t, errors.ErrCodeInvalidSide, errors.GetCode(err))
}
