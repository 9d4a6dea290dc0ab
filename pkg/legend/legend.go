// Package legend draws figure legends: categorical swatches, color bars and
// size keys. Legends report their natural size so the board can reserve a
// block for them before drawing.
package legend

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/matzehuels/crossplot/pkg/palette"
	"github.com/matzehuels/crossplot/pkg/style"
)

// Legend is anything that can be measured and drawn into a canvas. Draw
// anchors the legend at the top-left corner of c.
type Legend interface {
	Size() vg.Point
	Draw(c draw.Canvas)
}

// Shape is the marker drawn next to a categorical entry.
type Shape int

const (
	Square Shape = iota
	Circle
	Stroke
)

// Entry is one row of a categorical legend.
type Entry struct {
	Label string
	Color color.Color
	Shape Shape
	// Swatch, when set, draws the marker into its square instead of Shape.
	Swatch func(c draw.Canvas, r vg.Rectangle)
}

// Categorical lists labelled swatches under an optional title.
type Categorical struct {
	Title    string
	Entries  []Entry
	FontSize vg.Length
}

func (l *Categorical) fontSize() vg.Length {
	if l.FontSize > 0 {
		return l.FontSize
	}
	return style.FontSize
}

func (l *Categorical) Size() vg.Point {
	fs := l.fontSize()
	txt := style.Text(fs)
	w := titleWidth(l.Title)
	for _, e := range l.Entries {
		w = max(w, fs*1.4+txt.Width(e.Label))
	}
	return vg.Point{X: w, Y: titleHeight(l.Title) + vg.Length(len(l.Entries))*fs*1.4}
}

func (l *Categorical) Draw(c draw.Canvas) {
	fs := l.fontSize()
	x, y := c.Min.X, c.Max.Y
	y = drawTitle(c, l.Title, x, y)
	txt := style.Text(fs)
	txt.YAlign = draw.YCenter
	row := fs * 1.4
	for _, e := range l.Entries {
		mid := y - row/2
		box := vg.Rectangle{
			Min: vg.Point{X: x, Y: mid - fs/2},
			Max: vg.Point{X: x + fs, Y: mid + fs/2},
		}
		switch {
		case e.Swatch != nil:
			e.Swatch(c, box)
		case e.Shape == Circle:
			c.DrawGlyph(draw.GlyphStyle{Color: e.Color, Radius: fs / 2, Shape: draw.CircleGlyph{}},
				vg.Point{X: x + fs/2, Y: mid})
		case e.Shape == Stroke:
			c.StrokeLine2(style.Line(e.Color, 1.5), x, mid, x+fs, mid)
		default:
			style.FillRect(c, e.Color, box)
		}
		c.FillText(txt, vg.Point{X: x + fs*1.4, Y: mid}, e.Label)
		y -= row
	}
}

// ColorBar shows a colormap with its value range.
type ColorBar struct {
	Title     string
	Colormap  palette.Colormap
	Norm      palette.Norm
	Length    vg.Length
	Thickness vg.Length
	FontSize  vg.Length
}

const colorBarSteps = 64

func (l *ColorBar) dims() (length, thick, fs vg.Length) {
	length, thick, fs = l.Length, l.Thickness, l.FontSize
	if length <= 0 {
		length = vg.Inch
	}
	if thick <= 0 {
		thick = 0.15 * vg.Inch
	}
	if fs <= 0 {
		fs = style.FontSize
	}
	return length, thick, fs
}

func (l *ColorBar) ticks() []float64 {
	lo, hi := l.Norm.Min, l.Norm.Max
	if l.Norm.Center != nil {
		return []float64{lo, *l.Norm.Center, hi}
	}
	return []float64{lo, (lo + hi) / 2, hi}
}

func tickLabel(v float64) string { return fmt.Sprintf("%.3g", v) }

func (l *ColorBar) Size() vg.Point {
	length, thick, fs := l.dims()
	txt := style.Text(fs)
	var labels vg.Length
	for _, v := range l.ticks() {
		labels = max(labels, txt.Width(tickLabel(v)))
	}
	w := max(titleWidth(l.Title), thick+fs/2+labels)
	return vg.Point{X: w, Y: titleHeight(l.Title) + length + fs/2}
}

func (l *ColorBar) Draw(c draw.Canvas) {
	length, thick, fs := l.dims()
	x, y := c.Min.X, c.Max.Y
	y = drawTitle(c, l.Title, x, y) - fs/4
	bottom := y - length
	step := length / colorBarSteps
	for i := range colorBarSteps {
		v := (float64(i) + 0.5) / colorBarSteps
		y0 := bottom + vg.Length(i)*step
		style.FillRect(c, l.Colormap.At(v), vg.Rectangle{
			Min: vg.Point{X: x, Y: y0},
			Max: vg.Point{X: x + thick, Y: y0 + step},
		})
	}

	txt := style.Text(fs)
	txt.YAlign = draw.YCenter
	for _, v := range l.ticks() {
		pos := bottom + length*vg.Length(l.Norm.Apply(v))
		c.StrokeLine2(style.Line(color.Black, 0.5), x+thick, pos, x+thick+fs/4, pos)
		c.FillText(txt, vg.Point{X: x + thick + fs/2, Y: pos}, tickLabel(v))
	}
}

// Sizes maps values to circle radii.
type Sizes struct {
	Title    string
	Values   []float64
	Radius   func(v float64) vg.Length
	Color    color.Color
	FontSize vg.Length
}

func (l *Sizes) row(v float64, fs vg.Length) vg.Length {
	return max(fs*1.4, 2*l.Radius(v)+fs/4)
}

func (l *Sizes) Size() vg.Point {
	fs := l.FontSize
	if fs <= 0 {
		fs = style.FontSize
	}
	txt := style.Text(fs)
	var maxR vg.Length
	for _, v := range l.Values {
		maxR = max(maxR, l.Radius(v))
	}
	w := titleWidth(l.Title)
	h := titleHeight(l.Title)
	for _, v := range l.Values {
		w = max(w, 2*maxR+fs/2+txt.Width(tickLabel(v)))
		h += l.row(v, fs)
	}
	return vg.Point{X: w, Y: h}
}

func (l *Sizes) Draw(c draw.Canvas) {
	fs := l.FontSize
	if fs <= 0 {
		fs = style.FontSize
	}
	clr := l.Color
	if clr == nil {
		clr = color.Gray{Y: 100}
	}
	var maxR vg.Length
	for _, v := range l.Values {
		maxR = max(maxR, l.Radius(v))
	}
	x, y := c.Min.X, c.Max.Y
	y = drawTitle(c, l.Title, x, y)
	txt := style.Text(fs)
	txt.YAlign = draw.YCenter
	for _, v := range l.Values {
		h := l.row(v, fs)
		mid := y - h/2
		c.DrawGlyph(draw.GlyphStyle{Color: clr, Radius: l.Radius(v), Shape: draw.CircleGlyph{}},
			vg.Point{X: x + maxR, Y: mid})
		c.FillText(txt, vg.Point{X: x + 2*maxR + fs/2, Y: mid}, tickLabel(v))
		y -= h
	}
}

func titleHeight(title string) vg.Length {
	if title == "" {
		return 0
	}
	return style.FontSize * 1.8
}

func titleWidth(title string) vg.Length {
	if title == "" {
		return 0
	}
	return style.Text(style.FontSize * 1.1).Width(title)
}

// drawTitle writes title at the top-left (x, y) and returns the y below it.
func drawTitle(c draw.Canvas, title string, x, y vg.Length) vg.Length {
	if title == "" {
		return y
	}
	txt := style.Text(style.FontSize * 1.1)
	txt.YAlign = draw.YTop
	c.FillText(txt, vg.Point{X: x, Y: y}, title)
	return y - titleHeight(title)
}
