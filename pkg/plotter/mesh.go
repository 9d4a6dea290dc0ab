package plotter

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/matzehuels/crossplot/pkg/errors"
	"github.com/matzehuels/crossplot/pkg/legend"
	"github.com/matzehuels/crossplot/pkg/matrix"
	"github.com/matzehuels/crossplot/pkg/palette"
	"github.com/matzehuels/crossplot/pkg/style"
)

// ColorMesh fills each cell with a colormap color.
type ColorMesh struct {
	cfg   config
	data  *matrix.Matrix
	bound *matrix.Matrix
}

// NewColorMesh returns a numeric heatmap. A nil matrix draws the main data.
func NewColorMesh(data *matrix.Matrix, opts ...Option) (*ColorMesh, error) {
	if data != nil && !data.IsNumeric() {
		return nil, errors.New(errors.ErrCodeInvalidType, "color mesh needs numeric data")
	}
	cfg := newConfig(opts)
	if _, err := palette.Lookup(cfg.colormap); err != nil {
		return nil, err
	}
	return &ColorMesh{cfg: cfg, data: data}, nil
}

func (p *ColorMesh) Kind() string { return "color-mesh" }
func (p *ColorMesh) Data() *matrix.Matrix { return p.data }

// Bind gives a mesh without its own data the main matrix, so its legend
// covers the right range before the first render.
func (p *ColorMesh) Bind(m *matrix.Matrix) { p.bound = m }

func (p *ColorMesh) Render(c draw.Canvas, v View) error {
	if err := requireData(p, v); err != nil {
		return err
	}
	if !v.Data.IsNumeric() {
		return errors.New(errors.ErrCodeInvalidType, "color mesh needs numeric data")
	}
	cm, err := palette.Lookup(p.cfg.colormap)
	if err != nil {
		return err
	}
	norm := p.normFor(v.Source)

	f := NewFrame(c, v.Side)
	k, n := v.Data.Dims()
	for j := range k {
		for i := range n {
			val := v.Data.At(j, i)
			if math.IsNaN(val) {
				continue
			}
			style.FillRect(c, cm.At(norm.Apply(val)), f.Cell(i, n, j, k))
		}
	}
	return nil
}

func (p *ColorMesh) normFor(src *matrix.Matrix) palette.Norm {
	lo, hi := finiteRange(src)
	if p.cfg.min != nil {
		lo = *p.cfg.min
	}
	if p.cfg.max != nil {
		hi = *p.cfg.max
	}
	return palette.Norm{Min: lo, Max: hi, Center: p.cfg.center}
}

func (p *ColorMesh) Legend() (legend.Legend, error) {
	cm, err := palette.Lookup(p.cfg.colormap)
	if err != nil {
		return nil, err
	}
	src := p.data
	if src == nil {
		src = p.bound
	}
	norm := p.normFor(src)
	return &legend.ColorBar{Title: p.cfg.label, Colormap: cm, Norm: norm}, nil
}

// Colors fills each cell with the color of its label.
type Colors struct {
	cfg    config
	data   *matrix.Matrix
	colors map[string]color.Color
	order  []string
}

// NewColors returns a categorical mesh. Numeric data is treated as labels.
func NewColors(data *matrix.Matrix, opts ...Option) (*Colors, error) {
	if data == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "colors needs data")
	}
	cfg := newConfig(opts)
	pal, err := palette.Categorical(cfg.palette)
	if err != nil {
		return nil, err
	}
	order := data.Unique()
	return &Colors{
		cfg:    cfg,
		data:   data,
		colors: palette.Assign(order, pal, cfg.colors),
		order:  order,
	}, nil
}

func (p *Colors) Kind() string { return "colors" }
func (p *Colors) Data() *matrix.Matrix { return p.data }

// ColorOf returns the color assigned to label.
func (p *Colors) ColorOf(label string) color.Color { return p.colors[label] }

func (p *Colors) Render(c draw.Canvas, v View) error {
	if err := requireData(p, v); err != nil {
		return err
	}
	f := NewFrame(c, v.Side)
	k, n := v.Data.Dims()
	for j := range k {
		for i := range n {
			clr, ok := p.colors[v.Data.Label(j, i)]
			if !ok {
				continue
			}
			style.FillRect(c, clr, f.Cell(i, n, j, k))
		}
	}
	return nil
}

func (p *Colors) Legend() (legend.Legend, error) {
	l := &legend.Categorical{Title: p.cfg.label}
	for _, label := range p.order {
		l.Entries = append(l.Entries, legend.Entry{Label: label, Color: p.colors[label]})
	}
	return l, nil
}

// SizedMesh draws a circle per cell whose area follows the size data. An
// optional color matrix (numeric or categorical) fills the circles.
type SizedMesh struct {
	cfg    config
	size   *matrix.Matrix
	color  *matrix.Matrix
	labels map[string]color.Color
}

// NewSizedMesh returns a dot plot. colors may be nil.
func NewSizedMesh(size, colors *matrix.Matrix, opts ...Option) (*SizedMesh, error) {
	if size == nil || !size.IsNumeric() {
		return nil, errors.New(errors.ErrCodeInvalidType, "sized mesh needs numeric size data")
	}
	if colors != nil {
		sr, sc := size.Dims()
		cr, cc := colors.Dims()
		if sr != cr || sc != cc {
			return nil, errors.New(errors.ErrCodeSizeMismatch, "color data is %dx%d, size data is %dx%d", cr, cc, sr, sc)
		}
	}
	p := &SizedMesh{cfg: newConfig(opts), size: size, color: colors}
	if colors != nil && !colors.IsNumeric() {
		pal, err := palette.Categorical(p.cfg.palette)
		if err != nil {
			return nil, err
		}
		p.labels = palette.Assign(colors.Unique(), pal, p.cfg.colors)
	}
	return p, nil
}

func (p *SizedMesh) Kind() string { return "sized-mesh" }
func (p *SizedMesh) Data() *matrix.Matrix { return p.size }

func (p *SizedMesh) Render(c draw.Canvas, v View) error {
	if err := requireData(p, v); err != nil {
		return err
	}
	lo, hi := finiteRange(v.Source)
	sizeNorm := palette.Norm{Min: min(0, lo), Max: hi}

	// The board slices only the size matrix; slice colors the same way.
	var colors *matrix.Matrix
	if p.color != nil {
		colors = sliced(p.color, v)
	}
	var cm palette.Colormap
	var colorNorm palette.Norm
	if colors != nil && colors.IsNumeric() {
		var err error
		if cm, err = palette.Lookup(p.cfg.colormap); err != nil {
			return err
		}
		clo, chi := finiteRange(p.color)
		colorNorm = palette.Norm{Min: clo, Max: chi}
	}

	f := NewFrame(c, v.Side)
	k, n := v.Data.Dims()
	base := p.cfg.colorOr(color.Gray{Y: 90})
	for j := range k {
		for i := range n {
			val := v.Data.At(j, i)
			if math.IsNaN(val) {
				continue
			}
			cell := f.Cell(i, n, j, k)
			size := cell.Size()
			maxR := 0.45 * min(size.X, size.Y)
			r := maxR * vg.Length(math.Sqrt(sizeNorm.Apply(val)))
			if r <= 0 {
				continue
			}
			clr := base
			switch {
			case cm != nil:
				clr = cm.At(colorNorm.Apply(colors.At(j, i)))
			case colors != nil:
				clr = p.labels[colors.Label(j, i)]
			}
			c.DrawGlyph(draw.GlyphStyle{Color: clr, Radius: r, Shape: draw.CircleGlyph{}}, center(cell))
		}
	}
	return nil
}

func (p *SizedMesh) Legend() (legend.Legend, error) {
	lo, hi := finiteRange(p.size)
	lo = min(0, lo)
	const maxR = 5
	norm := palette.Norm{Min: lo, Max: hi}
	sizes := &legend.Sizes{
		Title:  p.cfg.label,
		Values: []float64{(lo + hi) / 4, (lo + hi) / 2, hi},
		Radius: func(v float64) vg.Length { return maxR * vg.Length(math.Sqrt(norm.Apply(v))) },
		Color:  p.cfg.color,
	}
	if p.labels == nil {
		return sizes, nil
	}
	cat := &legend.Categorical{}
	for _, l := range p.color.Unique() {
		cat.Entries = append(cat.Entries, legend.Entry{Label: l, Color: p.labels[l], Shape: legend.Circle})
	}
	return &legend.Stack{Legends: []legend.Legend{sizes, cat}, Vertical: true}, nil
}

// TextMesh writes each cell's value into the cell.
type TextMesh struct {
	cfg  config
	data *matrix.Matrix
}

// NewTextMesh returns a text grid. A nil matrix prints the main data.
func NewTextMesh(data *matrix.Matrix, opts ...Option) *TextMesh {
	return &TextMesh{cfg: newConfig(opts), data: data}
}

func (p *TextMesh) Kind() string { return "text-mesh" }
func (p *TextMesh) Data() *matrix.Matrix { return p.data }

func (p *TextMesh) text(m *matrix.Matrix, i, j int) string {
	if m.IsNumeric() && p.cfg.format != "" {
		return fmt.Sprintf(p.cfg.format, m.At(i, j))
	}
	return m.Label(i, j)
}

func (p *TextMesh) Render(c draw.Canvas, v View) error {
	if err := requireData(p, v); err != nil {
		return err
	}
	f := NewFrame(c, v.Side)
	k, n := v.Data.Dims()
	longest := 1
	for j := range k {
		for i := range n {
			longest = max(longest, len(p.text(v.Data, j, i)))
		}
	}
	cell := f.Cell(0, n, 0, k).Size()
	txt := style.Centered(p.cfg.fontSizeOr(style.FitFontSize(cell.X, cell.Y, longest)))
	txt.Color = p.cfg.colorOr(color.Black)
	for j := range k {
		for i := range n {
			s := p.text(v.Data, j, i)
			if s == "" || s == "NaN" {
				continue
			}
			c.FillText(txt, center(f.Cell(i, n, j, k)), s)
		}
	}
	return nil
}

// requireData reports a missing matrix for plotters that need one.
func requireData(p Plotter, v View) error {
	if v.Data == nil {
		return errors.New(errors.ErrCodeInvalidInput, "%s has no data to draw", p.Kind())
	}
	return nil
}

// finiteRange returns the range of the finite values in m, or [0, 1] when
// there are none.
func finiteRange(m *matrix.Matrix) (lo, hi float64) {
	if m == nil || !m.IsNumeric() {
		return 0, 1
	}
	lo, hi = math.Inf(1), math.Inf(-1)
	rows, cols := m.Dims()
	for i := range rows {
		for j := range cols {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo, hi = min(lo, v), max(hi, v)
		}
	}
	if lo > hi {
		return 0, 1
	}
	return lo, hi
}
