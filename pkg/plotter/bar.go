package plotter

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/matzehuels/crossplot/pkg/errors"
	"github.com/matzehuels/crossplot/pkg/legend"
	"github.com/matzehuels/crossplot/pkg/matrix"
	"github.com/matzehuels/crossplot/pkg/palette"
	"github.com/matzehuels/crossplot/pkg/style"
)

// barExtent is the share of the block depth used by the longest bar; the rest
// is left for value labels.
const barExtent = 0.85

// Bar draws one bar per item. With several tracks the bar shows their mean
// and a whisker of one standard deviation.
type Bar struct {
	cfg  config
	data *matrix.Matrix
}

// NewBar returns a bar plotter over k by n numeric data.
func NewBar(data *matrix.Matrix, opts ...Option) (*Bar, error) {
	if data == nil || !data.IsNumeric() {
		return nil, errors.New(errors.ErrCodeInvalidType, "bar needs numeric data")
	}
	return &Bar{cfg: newConfig(opts), data: data}, nil
}

// NewNumbers returns a bar per value with the value printed at its tip.
func NewNumbers(values []float64, opts ...Option) (*Bar, error) {
	v, err := matrix.Vector(values)
	if err != nil {
		return nil, err
	}
	return NewBar(v, append([]Option{WithValues()}, opts...)...)
}

func (p *Bar) Kind() string { return "bar" }
func (p *Bar) Data() *matrix.Matrix { return p.data }

// summary returns the mean and standard deviation of every column.
func summary(m *matrix.Matrix) (mean, sd []float64) {
	k, n := m.Dims()
	mean, sd = make([]float64, n), make([]float64, n)
	col := make([]float64, k)
	for i := range n {
		for j := range k {
			col[j] = m.At(j, i)
		}
		if k == 1 {
			mean[i] = col[0]
			continue
		}
		mean[i], sd[i] = stat.MeanStdDev(col, nil)
	}
	return mean, sd
}

// valueRange returns the bar range, always including zero.
func valueRange(mean, sd []float64) (lo, hi float64) {
	for i, v := range mean {
		if math.IsNaN(v) {
			continue
		}
		lo = min(lo, v-sd[i])
		hi = max(hi, v+sd[i])
	}
	if hi == lo {
		hi = lo + 1
	}
	return lo, hi
}

func (p *Bar) Render(c draw.Canvas, v View) error {
	if err := requireData(p, v); err != nil {
		return err
	}
	lo, hi := valueRange(summary(v.Source))
	mean, sd := summary(v.Data)
	depth := func(x float64) float64 { return barExtent * (x - lo) / (hi - lo) }

	f := NewFrame(c, v.Side)
	n := len(mean)
	clr := p.cfg.colorOr(color.RGBA{R: 0x4c, G: 0x72, B: 0xb0, A: 0xff})
	whisker := style.Line(color.Black, p.cfg.lineWidthOr(0.5))
	txt := style.Centered(p.cfg.fontSizeOr(style.FontSize * 0.8))
	format := p.cfg.formatOr("%.3g")
	for i, m := range mean {
		if math.IsNaN(m) {
			continue
		}
		u0 := (float64(i) + 0.1) / float64(n)
		u1 := (float64(i) + 0.9) / float64(n)
		fill := clr
		if i < len(v.Indices) {
			if ic, ok := p.cfg.itemColor(v.Indices[i]); ok {
				fill = ic
			}
		}
		style.FillRect(c, fill, f.Span(u0, u1, depth(0), depth(m)))
		if sd[i] > 0 {
			at := f.Slot(i, n)
			a := f.Point(at, f.Depth(depth(m-sd[i])))
			b := f.Point(at, f.Depth(depth(m+sd[i])))
			c.StrokeLine2(whisker, a.X, a.Y, b.X, b.Y)
		}
		if p.cfg.values {
			pt := f.Point(f.Slot(i, n), f.Depth(depth(max(m, 0)+sd[i])+(1-barExtent)/2))
			c.FillText(txt, pt, fmt.Sprintf(format, m))
		}
	}
	return nil
}

// CenterBar compares two tracks per item from a shared center line. Track 0
// grows away from the main canvas and track 1 toward it.
type CenterBar struct {
	cfg    config
	data   *matrix.Matrix
	names  []string
	colors map[string]color.Color
}

// NewCenterBar returns a centered bar plotter over 2 by n numeric data. names
// label the two tracks.
func NewCenterBar(data *matrix.Matrix, names []string, opts ...Option) (*CenterBar, error) {
	if data == nil || !data.IsNumeric() {
		return nil, errors.New(errors.ErrCodeInvalidType, "center bar needs numeric data")
	}
	if k, _ := data.Dims(); k != 2 {
		return nil, errors.New(errors.ErrCodeSizeMismatch, "center bar needs two tracks, got %d", k)
	}
	if names == nil {
		names = []string{"0", "1"}
	}
	if len(names) != 2 || names[0] == names[1] {
		return nil, errors.New(errors.ErrCodeInvalidInput, "center bar needs two distinct track names, got %v", names)
	}
	cfg := newConfig(opts)
	pal, err := palette.Categorical(cfg.palette)
	if err != nil {
		return nil, err
	}
	return &CenterBar{cfg: cfg, data: data, names: names, colors: palette.Assign(names, pal, cfg.colors)}, nil
}

func (p *CenterBar) Kind() string { return "center-bar" }
func (p *CenterBar) Data() *matrix.Matrix { return p.data }

func (p *CenterBar) Render(c draw.Canvas, v View) error {
	if err := requireData(p, v); err != nil {
		return err
	}
	lo, hi := finiteRange(v.Source)
	lim := 1.05 * max(math.Abs(lo), math.Abs(hi))
	if lim == 0 {
		lim = 1
	}
	f := NewFrame(c, v.Side)
	_, n := v.Data.Dims()
	txt := style.Centered(p.cfg.fontSizeOr(style.FontSize * 0.8))
	format := p.cfg.formatOr("%.3g")
	for i := range n {
		u0 := (float64(i) + 0.1) / float64(n)
		u1 := (float64(i) + 0.9) / float64(n)
		for j, sign := range []float64{1, -1} {
			val := v.Data.At(j, i)
			if math.IsNaN(val) {
				continue
			}
			tip := 0.5 + sign*0.45*val/lim
			style.FillRect(c, p.colors[p.names[j]], f.Span(u0, u1, 0.5, tip))
			if p.cfg.values {
				c.FillText(txt, f.Point(f.Slot(i, n), f.Depth(tip+sign*0.03)), fmt.Sprintf(format, val))
			}
		}
	}
	a := f.Point(f.Along(0), f.Depth(0.5))
	b := f.Point(f.Along(1), f.Depth(0.5))
	c.StrokeLine2(style.Line(color.Black, p.cfg.lineWidthOr(1)), a.X, a.Y, b.X, b.Y)
	return nil
}

func (p *CenterBar) Legend() (legend.Legend, error) {
	l := &legend.Categorical{Title: p.cfg.label}
	for _, name := range p.names {
		l.Entries = append(l.Entries, legend.Entry{Label: name, Color: p.colors[name]})
	}
	return l, nil
}

// StackBar stacks the k tracks of every item. Each track is one segment
// colored by its name.
type StackBar struct {
	cfg    config
	data   *matrix.Matrix
	names  []string
	colors map[string]color.Color
}

// NewStackBar returns a stacked bar plotter; names label the k tracks.
func NewStackBar(data *matrix.Matrix, names []string, opts ...Option) (*StackBar, error) {
	if data == nil || !data.IsNumeric() {
		return nil, errors.New(errors.ErrCodeInvalidType, "stacked bar needs numeric data")
	}
	k, _ := data.Dims()
	if names == nil {
		for j := range k {
			names = append(names, fmt.Sprintf("%d", j))
		}
	}
	if len(names) != k {
		return nil, errors.New(errors.ErrCodeSizeMismatch, "got %d segment names for %d tracks", len(names), k)
	}
	cfg := newConfig(opts)
	pal, err := palette.Categorical(cfg.palette)
	if err != nil {
		return nil, err
	}
	return &StackBar{cfg: cfg, data: data, names: names, colors: palette.Assign(names, pal, cfg.colors)}, nil
}

func (p *StackBar) Kind() string { return "stack-bar" }
func (p *StackBar) Data() *matrix.Matrix { return p.data }

func columnSums(m *matrix.Matrix) []float64 {
	k, n := m.Dims()
	out := make([]float64, n)
	for i := range n {
		for j := range k {
			if v := m.At(j, i); v > 0 {
				out[i] += v
			}
		}
	}
	return out
}

func (p *StackBar) Render(c draw.Canvas, v View) error {
	if err := requireData(p, v); err != nil {
		return err
	}
	var top float64
	for _, s := range columnSums(v.Source) {
		top = max(top, s)
	}
	if top == 0 {
		top = 1
	}
	f := NewFrame(c, v.Side)
	k, n := v.Data.Dims()
	for i := range n {
		u0 := (float64(i) + 0.1) / float64(n)
		u1 := (float64(i) + 0.9) / float64(n)
		var acc float64
		for j := range k {
			val := v.Data.At(j, i)
			if !(val > 0) {
				continue
			}
			t0 := barExtent * acc / top
			acc += val
			t1 := barExtent * acc / top
			style.FillRect(c, p.colors[p.names[j]], f.Span(u0, u1, t0, t1))
		}
	}
	return nil
}

func (p *StackBar) Legend() (legend.Legend, error) {
	l := &legend.Categorical{Title: p.cfg.label}
	for _, name := range p.names {
		l.Entries = append(l.Entries, legend.Entry{Label: name, Color: p.colors[name]})
	}
	return l, nil
}

// Area draws a filled profile through one value per item.
type Area struct {
	cfg  config
	data *matrix.Matrix
}

// NewArea returns an area track over a 1 by n numeric vector.
func NewArea(data *matrix.Matrix, opts ...Option) (*Area, error) {
	if data == nil || !data.IsNumeric() {
		return nil, errors.New(errors.ErrCodeInvalidType, "area needs numeric data")
	}
	if k, _ := data.Dims(); k != 1 {
		return nil, errors.New(errors.ErrCodeSizeMismatch, "area needs a single track, got %d", k)
	}
	return &Area{cfg: newConfig(opts), data: data}, nil
}

func (p *Area) Kind() string { return "area" }
func (p *Area) Data() *matrix.Matrix { return p.data }

func (p *Area) Render(c draw.Canvas, v View) error {
	if err := requireData(p, v); err != nil {
		return err
	}
	lo, hi := finiteRange(v.Source)
	lo = min(lo, 0)
	if hi <= lo {
		hi = lo + 1
	}
	f := NewFrame(c, v.Side)
	_, n := v.Data.Dims()
	base := f.Depth(barExtent * (0 - lo) / (hi - lo))
	pts := []vg.Point{f.Point(f.Along(0), base)}
	for i := range n {
		val := v.Data.At(0, i)
		if math.IsNaN(val) {
			val = 0
		}
		pts = append(pts, f.Point(f.Slot(i, n), f.Depth(barExtent*(val-lo)/(hi-lo))))
	}
	pts = append(pts, f.Point(f.Along(1), base))

	clr := p.cfg.colorOr(color.RGBA{R: 0x55, G: 0xa8, B: 0x68, A: 0xff})
	fill := color.NRGBAModel.Convert(clr).(color.NRGBA)
	fill.A = 0x99
	c.FillPolygon(fill, pts)
	c.StrokeLines(style.Line(clr, p.cfg.lineWidthOr(0.75)), pts[1:len(pts)-1])
	return nil
}
