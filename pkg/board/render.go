package board

import (
	"slices"

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

const mainTrack = "main"

// frame is the outcome of one layout pass.
type frame struct {
	grid *layout.Grid
	rows *partition.Result
	cols *partition.Result
	// rowSpans[0] is the top chunk.
	rowSpans []layout.Span
	colSpans []layout.Span
	main     []layout.Region
	blocks   map[layout.Side]map[string][]layout.Region
	legends  *legend.Stack
}

// Render lays out the board and runs every plotter once. Each call
// recomputes partitions, layout and regions from the current configuration;
// a board that has not changed renders to the same regions.
func (b *Board) Render() error {
	f, err := b.arrange()
	if err != nil {
		return err
	}
	rec := &recorder.Canvas{}
	c := draw.Canvas{Canvas: rec, Rectangle: vg.Rectangle{
		Max: vg.Point{X: vg.Length(b.width) * vg.Inch, Y: vg.Length(b.height) * vg.Inch},
	}}
	if err := b.paint(c, f); err != nil {
		return err
	}
	b.frame = f
	b.state = Rendered
	b.logger.Debug("rendered board", "name", b.name, "row_chunks", len(f.rowSpans),
		"col_chunks", len(f.colSpans), "actions", len(rec.Actions))
	return nil
}

// Draw renders the board onto c with the figure's bottom-left corner at
// c.Min.
func (b *Board) Draw(c draw.Canvas) error {
	if err := b.Render(); err != nil {
		return err
	}
	return b.paint(c, b.frame)
}

// MainRegion returns the main canvas regions, one per chunk pair, row-major
// with the top row first.
func (b *Board) MainRegion() ([]layout.Region, error) {
	if err := b.requireRendered(); err != nil {
		return nil, err
	}
	return slices.Clone(b.frame.main), nil
}

// Region returns the regions of a block, one per chunk along its axis. The
// legend block is named "legends".
func (b *Board) Region(side layout.Side, name string) ([]layout.Region, error) {
	if err := b.requireRendered(); err != nil {
		return nil, err
	}
	if side == layout.Main {
		if name == mainTrack || b.hasLayer(name) {
			return slices.Clone(b.frame.main), nil
		}
		return nil, errors.New(errors.ErrCodeNotFound, "no layer named %q", name)
	}
	rs, ok := b.frame.blocks[side][name]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "no block named %q on %s", name, side)
	}
	return slices.Clone(rs), nil
}

// Regions returns every region: main chunks first, then blocks by side,
// innermost first.
func (b *Board) Regions() ([]layout.Region, error) {
	if err := b.requireRendered(); err != nil {
		return nil, err
	}
	out := slices.Clone(b.frame.main)
	for _, side := range layout.Sides {
		for _, t := range b.tracks(side, b.frame.legends) {
			out = append(out, b.frame.blocks[side][t.Name]...)
		}
	}
	return out, nil
}

func (b *Board) requireRendered() error {
	if b.state != Rendered || b.frame == nil {
		return errors.New(errors.ErrCodeNotRendered, "board %q has not been rendered since its last change", b.name)
	}
	return nil
}

func (b *Board) hasLayer(name string) bool {
	for _, l := range b.layers {
		if l.Name == name {
			return true
		}
	}
	return false
}

// tracks lists the layout tracks of one side, innermost first.
func (b *Board) tracks(side layout.Side, legends *legend.Stack) []layout.Track {
	var out []layout.Track
	for _, blk := range b.blocks[side] {
		out = append(out, layout.Track{Name: blk.Name, Size: blk.Size, Pad: blk.Pad, Absolute: blk.Absolute})
	}
	if legends != nil && b.legend.side == side {
		out = append(out, b.legendTrackFor(legends))
	}
	return out
}

func (b *Board) gaps(r *partition.Result) float64 {
	return b.chunkGap * float64(len(r.Chunks)-1)
}

func (b *Board) arrange() (*frame, error) {
	f := &frame{
		rows:   b.Partition(matrix.Rows),
		cols:   b.Partition(matrix.Cols),
		blocks: make(map[layout.Side]map[string][]layout.Region),
	}
	var err error
	if f.legends, err = b.legendStack(); err != nil {
		return nil, err
	}

	main := layout.Track{Name: mainTrack, Size: 1}
	f.grid, err = layout.Compute(
		layout.AxisSpec{
			Extent: b.width, Margin: b.margin, Main: main, Gaps: b.gaps(f.cols),
			Before: b.tracks(layout.Left, f.legends), After: b.tracks(layout.Right, f.legends),
		},
		layout.AxisSpec{
			Extent: b.height, Margin: b.margin, Main: main, Gaps: b.gaps(f.rows),
			Before: b.tracks(layout.Bottom, f.legends), After: b.tracks(layout.Top, f.legends),
		},
	)
	if err != nil {
		return nil, err
	}

	if f.colSpans, err = layout.Subdivide(f.grid.H.Main, f.cols.Weights(), b.chunkGap); err != nil {
		return nil, err
	}
	// Row chunk 0 sits at the top while y grows upward.
	weights := f.rows.Weights()
	slices.Reverse(weights)
	if f.rowSpans, err = layout.Subdivide(f.grid.V.Main, weights, b.chunkGap); err != nil {
		return nil, err
	}
	slices.Reverse(f.rowSpans)

	for _, rs := range f.rowSpans {
		for _, cs := range f.colSpans {
			f.main = append(f.main, layout.Region{
				Side: layout.Main, Name: mainTrack,
				Left: cs.Start, Right: cs.End(), Bottom: rs.Start, Top: rs.End(),
			})
		}
	}

	for _, side := range layout.Sides {
		regions := make(map[string][]layout.Region)
		for _, t := range b.tracks(side, f.legends) {
			full, err := f.grid.Block(side, t.Name)
			if err != nil {
				return nil, err
			}
			if t.Name == legendTrack && f.legends != nil && b.legend.side == side {
				regions[t.Name] = []layout.Region{full}
				continue
			}
			regions[t.Name] = chunkRegions(full, f.spansFor(side))
		}
		f.blocks[side] = regions
	}

	w, h := f.grid.Size()
	b.logger.Debug("allocated grid", "width", w, "height", h,
		"main_width", f.grid.H.Main.Extent, "main_height", f.grid.V.Main.Extent)
	return f, nil
}

func (f *frame) spansFor(side layout.Side) []layout.Span {
	if side.Horizontal() {
		return f.rowSpans
	}
	return f.colSpans
}

func (f *frame) partFor(side layout.Side) *partition.Result {
	if side.Axis() == matrix.Rows {
		return f.rows
	}
	return f.cols
}

// chunkRegions cuts a block region along its aligned axis.
func chunkRegions(full layout.Region, spans []layout.Span) []layout.Region {
	out := make([]layout.Region, len(spans))
	for i, s := range spans {
		r := full
		if full.Side.Horizontal() {
			r.Bottom, r.Top = s.Start, s.End()
		} else {
			r.Left, r.Right = s.Start, s.End()
		}
		out[i] = r
	}
	return out
}

// sub returns the part of c covering region r.
func sub(c draw.Canvas, r layout.Region) draw.Canvas {
	return draw.Canvas{Canvas: c.Canvas, Rectangle: vg.Rectangle{
		Min: vg.Point{X: c.Min.X + vg.Length(r.Left)*vg.Inch, Y: c.Min.Y + vg.Length(r.Bottom)*vg.Inch},
		Max: vg.Point{X: c.Min.X + vg.Length(r.Right)*vg.Inch, Y: c.Min.Y + vg.Length(r.Top)*vg.Inch},
	}}
}

// paint runs the plotters against c: layers first, then each side innermost
// first, then the legends.
func (b *Board) paint(c draw.Canvas, f *frame) error {
	for _, blk := range b.layers {
		if err := b.paintLayer(c, f, blk); err != nil {
			return errors.Annotate(err, "render layer %q", blk.Name)
		}
	}
	for _, side := range layout.Sides {
		for _, blk := range b.blocks[side] {
			if err := b.paintBlock(c, f, blk); err != nil {
				return errors.Annotate(err, "render %s block %q", side, blk.Name)
			}
		}
	}
	if f.legends != nil {
		full, err := f.grid.Block(b.legend.side, legendTrack)
		if err != nil {
			return err
		}
		f.legends.Draw(sub(c, full))
	}
	return nil
}

func (b *Board) paintLayer(c draw.Canvas, f *frame, blk *Block) error {
	src := b.data
	if ds, ok := blk.Plotter.(plotter.DataSource); ok && ds.Data() != nil {
		src = ds.Data()
	}
	ncols := len(f.cols.Chunks)
	count := len(f.rows.Chunks) * ncols
	for i, r := range f.main {
		row, col := f.rows.Chunks[i/ncols], f.cols.Chunks[i%ncols]
		v := plotter.View{
			Side:    layout.Main,
			Label:   row.Label,
			Index:   i,
			Count:   count,
			Indices: row.Indices,
			Cross:   col.Indices,
			Data:    src.Select(row.Indices, col.Indices),
			Source:  src,
		}
		if err := blk.Plotter.Render(sub(c, r), v); err != nil {
			return err
		}
	}
	return nil
}

func (b *Board) paintBlock(c draw.Canvas, f *frame, blk *Block) error {
	part := f.partFor(blk.Side)
	trees := part.DendrogramTrees()
	var src *matrix.Matrix
	if ds, ok := blk.Plotter.(plotter.DataSource); ok {
		src = ds.Data()
	}

	regions := f.blocks[blk.Side][blk.Name]
	chunks := make([]draw.Canvas, len(regions))
	views := make([]plotter.View, len(regions))
	for i, ch := range part.Chunks {
		chunks[i] = sub(c, regions[i])
		views[i] = plotter.View{
			Side:    blk.Side,
			Label:   ch.Label,
			Index:   i,
			Count:   len(part.Chunks),
			Indices: ch.Indices,
			Source:  src,
			Tree:    trees[i],
			Meta:    part.Meta,
		}
		if src != nil {
			views[i].Data = src.SelectAxis(matrix.Cols, ch.Indices)
		}
	}

	if ap, ok := blk.Plotter.(plotter.AxisPlotter); ok {
		full, err := f.grid.Block(blk.Side, blk.Name)
		if err != nil {
			return err
		}
		return ap.RenderAxis(sub(c, full), chunks, views)
	}
	for i := range views {
		if err := blk.Plotter.Render(chunks[i], views[i]); err != nil {
			return err
		}
	}
	return nil
}
