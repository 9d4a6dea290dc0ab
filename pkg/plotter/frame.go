package plotter

import (
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/matzehuels/crossplot/pkg/layout"
)

// Frame maps items and tracks onto a canvas for one side.
//
// Items flow in reading order along the side's axis: left to right on top,
// bottom and main, top to bottom on left and right. Depth runs away from the
// main canvas; on the main canvas it runs upward.
type Frame struct {
	draw.Canvas
	Side layout.Side
}

// NewFrame wraps c for side.
func NewFrame(c draw.Canvas, side layout.Side) Frame {
	return Frame{Canvas: c, Side: side}
}

// Vertical reports whether items flow top to bottom.
func (f Frame) Vertical() bool { return f.Side.Horizontal() }

// Length is the canvas extent along the item flow.
func (f Frame) Length() vg.Length {
	if f.Vertical() {
		return f.Max.Y - f.Min.Y
	}
	return f.Max.X - f.Min.X
}

// Thickness is the canvas extent across the item flow.
func (f Frame) Thickness() vg.Length {
	if f.Vertical() {
		return f.Max.X - f.Min.X
	}
	return f.Max.Y - f.Min.Y
}

// Along maps a fraction u of the item flow to a coordinate.
func (f Frame) Along(u float64) vg.Length {
	if f.Vertical() {
		return f.Max.Y - vg.Length(u)*f.Length()
	}
	return f.Min.X + vg.Length(u)*f.Length()
}

// Depth maps a fraction t of the distance away from the main canvas to a
// coordinate.
func (f Frame) Depth(t float64) vg.Length {
	d := vg.Length(t) * f.Thickness()
	switch f.Side {
	case layout.Bottom:
		return f.Max.Y - d
	case layout.Left:
		return f.Max.X - d
	case layout.Right:
		return f.Min.X + d
	}
	return f.Min.Y + d
}

// Point combines an along coordinate and a depth coordinate.
func (f Frame) Point(along, depth vg.Length) vg.Point {
	if f.Vertical() {
		return vg.Point{X: depth, Y: along}
	}
	return vg.Point{X: along, Y: depth}
}

// Slot returns the center of item i of n along the flow.
func (f Frame) Slot(i, n int) vg.Length {
	return f.Along((float64(i) + 0.5) / float64(n))
}

// Span returns the rectangle between along fractions u0, u1 and depth
// fractions t0, t1.
func (f Frame) Span(u0, u1, t0, t1 float64) vg.Rectangle {
	return rect(f.Point(f.Along(u0), f.Depth(t0)), f.Point(f.Along(u1), f.Depth(t1)))
}

// Cell returns item i of n in track j of k. Tracks are in reading order:
// top to bottom for horizontal flows, left to right for vertical ones.
func (f Frame) Cell(i, n, j, k int) vg.Rectangle {
	u0, u1 := float64(i)/float64(n), float64(i+1)/float64(n)
	if f.Vertical() {
		x0 := f.Min.X + vg.Length(float64(j)/float64(k))*f.Thickness()
		x1 := f.Min.X + vg.Length(float64(j+1)/float64(k))*f.Thickness()
		return rect(vg.Point{X: x0, Y: f.Along(u0)}, vg.Point{X: x1, Y: f.Along(u1)})
	}
	y0 := f.Max.Y - vg.Length(float64(j)/float64(k))*f.Thickness()
	y1 := f.Max.Y - vg.Length(float64(j+1)/float64(k))*f.Thickness()
	return rect(vg.Point{X: f.Along(u0), Y: y0}, vg.Point{X: f.Along(u1), Y: y1})
}

// rect normalises two corners into a rectangle.
func rect(a, b vg.Point) vg.Rectangle {
	return vg.Rectangle{
		Min: vg.Point{X: min(a.X, b.X), Y: min(a.Y, b.Y)},
		Max: vg.Point{X: max(a.X, b.X), Y: max(a.Y, b.Y)},
	}
}

func center(r vg.Rectangle) vg.Point {
	return vg.Point{X: (r.Min.X + r.Max.X) / 2, Y: (r.Min.Y + r.Max.Y) / 2}
}
