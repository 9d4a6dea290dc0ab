package plotter

import (
	"image/color"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/matzehuels/crossplot/pkg/errors"
	"github.com/matzehuels/crossplot/pkg/palette"
	"github.com/matzehuels/crossplot/pkg/style"
)

// metaShare is the depth fraction given to the meta tree when chunks are
// ordered by one.
const metaShare = 1.0 / 3

// Dendrogram draws the trees the board computed for an axis. Leaves face the
// main canvas and roots point away from it.
type Dendrogram struct {
	cfg config
}

// NewDendrogram returns a dendrogram plotter. Use [WithCut] to color the
// top-level clusters and [WithColor] for the base line color.
func NewDendrogram(opts ...Option) *Dendrogram {
	return &Dendrogram{cfg: newConfig(opts)}
}

func (p *Dendrogram) Kind() string { return "dendrogram" }

func (p *Dendrogram) Render(c draw.Canvas, v View) error {
	return p.RenderAxis(c, []draw.Canvas{c}, []View{v})
}

func (p *Dendrogram) RenderAxis(full draw.Canvas, chunks []draw.Canvas, views []View) error {
	if len(chunks) != len(views) {
		return errors.New(errors.ErrCodeSizeMismatch, "got %d chunk canvases for %d views", len(chunks), len(views))
	}
	if len(views) == 0 {
		return nil
	}
	side := views[0].Side
	meta := views[0].Meta
	share := 1.0
	if meta != nil && len(views) > 1 {
		share = 1 - metaShare
	}

	line := style.Line(p.cfg.colorOr(color.Black), p.cfg.lineWidthOr(0.75))
	var pal []color.Color
	if p.cfg.cut > 0 {
		var err error
		if pal, err = palette.Categorical(p.cfg.palette); err != nil {
			return err
		}
	}

	ff := NewFrame(full, side)
	roots := make([]float64, len(views))
	heights := make([]float64, len(views))
	for i, v := range views {
		if v.Tree == nil {
			return errors.New(errors.ErrCodeInvalidInput, "dendrogram chunk %d has no tree", i)
		}
		f := NewFrame(chunks[i], side)
		n := v.Tree.Len()
		leafX := make([]float64, n)
		for q := range leafX {
			leafX[q] = float64(f.Slot(q, n))
		}
		branches := v.Tree.Layout(leafX)

		colors := make([]color.Color, len(branches))
		for b := range colors {
			colors[b] = line.Color
		}
		if pal != nil && v.Tree.Linkage() != nil {
			k := min(p.cfg.cut, n)
			cc, err := v.Tree.Colors(k, pal, line.Color)
			if err != nil {
				return err
			}
			colors = cc
		}

		for b, br := range branches {
			pts := make([]vg.Point, 4)
			for j := range pts {
				pts[j] = ff.Point(vg.Length(br.X[j]), ff.Depth(share*br.Y[j]))
			}
			sty := line
			sty.Color = colors[b]
			full.StrokeLines(sty, pts)
		}

		switch {
		case len(branches) > 0:
			top := branches[len(branches)-1]
			roots[i] = (top.X[1] + top.X[2]) / 2
			heights[i] = top.Y[1]
		default:
			roots[i] = leafX[0]
		}
	}

	if share == 1 {
		return nil
	}
	// Connect every chunk root up to the base of the meta tree.
	for i := range roots {
		if heights[i] >= 1 {
			continue
		}
		a := ff.Point(vg.Length(roots[i]), ff.Depth(share*heights[i]))
		b := ff.Point(vg.Length(roots[i]), ff.Depth(share))
		full.StrokeLine2(line, a.X, a.Y, b.X, b.Y)
	}
	if meta.Len() != len(views) {
		return errors.New(errors.ErrCodeSizeMismatch, "meta tree has %d leaves for %d chunks", meta.Len(), len(views))
	}
	for _, br := range meta.Layout(roots) {
		pts := make([]vg.Point, 4)
		for j := range pts {
			pts[j] = ff.Point(vg.Length(br.X[j]), ff.Depth(share+metaShare*br.Y[j]))
		}
		full.StrokeLines(line, pts)
	}
	return nil
}

var _ AxisPlotter = (*Dendrogram)(nil)

