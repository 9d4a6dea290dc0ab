package board

import (
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/matzehuels/crossplot/pkg/errors"
	"github.com/matzehuels/crossplot/pkg/layout"
)

// Figure is anything that can be sized and drawn: a board or a composite.
type Figure interface {
	// Size returns the width and height in inches.
	Size() (w, h float64)
	// Draw renders onto c with the bottom-left corner at c.Min.
	Draw(c draw.Canvas) error
}

// Composite places two figures next to each other.
type Composite struct {
	a, b Figure
	side layout.Side
	gap  float64
}

// Compose places b on side of a, gap inches apart. Figures are aligned to
// the top edge when placed side by side and to the left edge when stacked.
func Compose(a, b Figure, side layout.Side, gap float64) (*Composite, error) {
	if a == nil || b == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "compose needs two figures")
	}
	if side == layout.Main || !validSide(side) {
		return nil, errors.New(errors.ErrCodeInvalidSide, "compose needs an outer side, got %s", side)
	}
	if gap < 0 {
		return nil, errors.New(errors.ErrCodeInvalidOption, "gap must not be negative, got %g", gap)
	}
	return &Composite{a: a, b: b, side: side, gap: gap}, nil
}

func (c *Composite) Size() (w, h float64) {
	aw, ah := c.a.Size()
	bw, bh := c.b.Size()
	if c.side.Horizontal() {
		return aw + c.gap + bw, max(ah, bh)
	}
	return max(aw, bw), ah + c.gap + bh
}

// offsets returns the bottom-left corners of a and b in inches.
func (c *Composite) offsets() (ax, ay, bx, by float64) {
	aw, ah := c.a.Size()
	bw, bh := c.b.Size()
	_, h := c.Size()
	switch c.side {
	case layout.Right:
		return 0, h - ah, aw + c.gap, h - bh
	case layout.Left:
		return bw + c.gap, h - ah, 0, h - bh
	case layout.Bottom:
		return 0, bh + c.gap, 0, 0
	default:
		return 0, 0, 0, ah + c.gap
	}
}

func (c *Composite) Draw(dc draw.Canvas) error {
	ax, ay, bx, by := c.offsets()
	if err := c.a.Draw(place(dc, c.a, ax, ay)); err != nil {
		return err
	}
	return c.b.Draw(place(dc, c.b, bx, by))
}

func place(dc draw.Canvas, f Figure, x, y float64) draw.Canvas {
	w, h := f.Size()
	lo := vg.Point{X: dc.Min.X + vg.Length(x)*vg.Inch, Y: dc.Min.Y + vg.Length(y)*vg.Inch}
	return draw.Canvas{Canvas: dc.Canvas, Rectangle: vg.Rectangle{
		Min: lo,
		Max: vg.Point{X: lo.X + vg.Length(w)*vg.Inch, Y: lo.Y + vg.Length(h)*vg.Inch},
	}}
}

var (
	_ Figure = (*Board)(nil)
	_ Figure = (*Composite)(nil)
)
