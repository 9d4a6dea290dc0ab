package plotter

import (
	"image/color"
	"math"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/matzehuels/crossplot/pkg/errors"
	"github.com/matzehuels/crossplot/pkg/legend"
	"github.com/matzehuels/crossplot/pkg/matrix"
	"github.com/matzehuels/crossplot/pkg/style"
)

var rangeColors = [2]color.Color{
	color.RGBA{R: 0xf7, G: 0x59, B: 0x40, A: 0xff},
	color.RGBA{R: 0x3d, G: 0xc7, B: 0xbe, A: 0xff},
}

// Range joins two values per item with a line and marks both ends.
type Range struct {
	cfg    config
	data   *matrix.Matrix
	names  []string
	colors [2]color.Color
}

// NewRange returns a range plotter over 2 by n numeric data. names label the
// two ends in the legend.
func NewRange(data *matrix.Matrix, names []string, opts ...Option) (*Range, error) {
	if data == nil || !data.IsNumeric() {
		return nil, errors.New(errors.ErrCodeInvalidType, "range needs numeric data")
	}
	if k, _ := data.Dims(); k != 2 {
		return nil, errors.New(errors.ErrCodeSizeMismatch, "range needs two tracks, got %d", k)
	}
	if names == nil {
		names = []string{"Item 0", "Item 1"}
	}
	if len(names) != 2 {
		return nil, errors.New(errors.ErrCodeSizeMismatch, "range needs two names, got %d", len(names))
	}
	p := &Range{cfg: newConfig(opts), data: data, names: names, colors: rangeColors}
	for i, name := range names {
		if c, ok := p.cfg.colors[name]; ok {
			p.colors[i] = c
		}
	}
	return p, nil
}

func (p *Range) Kind() string { return "range" }
func (p *Range) Data() *matrix.Matrix { return p.data }

func (p *Range) Render(c draw.Canvas, v View) error {
	if err := requireData(p, v); err != nil {
		return err
	}
	lo, hi := finiteRange(v.Source)
	if hi <= lo {
		hi = lo + 1
	}
	f := NewFrame(c, v.Side)
	depth := func(x float64) vg.Length { return f.Depth(0.05 + 0.9*(x-lo)/(hi-lo)) }

	_, n := v.Data.Dims()
	radius := min(f.Length()/vg.Length(max(n, 1))*0.3, 3)
	line := style.Line(p.cfg.colorOr(color.Black), p.cfg.lineWidthOr(1))
	for i := range n {
		a, b := v.Data.At(0, i), v.Data.At(1, i)
		if math.IsNaN(a) || math.IsNaN(b) {
			continue
		}
		at := f.Slot(i, n)
		pa, pb := f.Point(at, depth(a)), f.Point(at, depth(b))
		c.StrokeLine2(line, pa.X, pa.Y, pb.X, pb.Y)
		for j, pt := range []vg.Point{pa, pb} {
			c.DrawGlyph(draw.GlyphStyle{Color: p.colors[j], Radius: radius, Shape: draw.CircleGlyph{}}, pt)
		}
	}
	return nil
}

func (p *Range) Legend() (legend.Legend, error) {
	l := &legend.Categorical{Title: p.cfg.label}
	for i, name := range p.names {
		l.Entries = append(l.Entries, legend.Entry{Label: name, Color: p.colors[i], Shape: legend.Circle})
	}
	return l, nil
}
