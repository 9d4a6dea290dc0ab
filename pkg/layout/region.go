package layout

// Region is the rectangle allocated to a block or to the main canvas for one
// render pass. Coordinates are in inches with the origin at the bottom-left
// corner of the figure.
type Region struct {
	Side        Side
	Name        string
	Left, Right float64
	Bottom, Top float64
}

// Width returns the horizontal span of the region.
func (r Region) Width() float64 { return r.Right - r.Left }

// Height returns the vertical span of the region.
func (r Region) Height() float64 { return r.Top - r.Bottom }

// CenterX returns the horizontal center point of the region.
func (r Region) CenterX() float64 { return (r.Left + r.Right) / 2 }

// CenterY returns the vertical center point of the region.
func (r Region) CenterY() float64 { return (r.Bottom + r.Top) / 2 }

// Contains reports whether o lies inside r, allowing for rounding.
func (r Region) Contains(o Region) bool {
	return o.Left >= r.Left-eps && o.Right <= r.Right+eps &&
		o.Bottom >= r.Bottom-eps && o.Top <= r.Top+eps
}

func regionOf(side Side, name string, x, y Span) Region {
	return Region{
		Side:   side,
		Name:   name,
		Left:   x.Start,
		Right:  x.End(),
		Bottom: y.Start,
		Top:    y.End(),
	}
}
