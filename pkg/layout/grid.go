// Package layout allocates the figure grid.
//
// A figure is a main canvas surrounded by four stacks of side blocks. The
// horizontal axis holds the left and right stacks, the vertical axis the
// bottom and top stacks. Each axis is allocated independently with
// [Allocate]: absolute sizes are kept, relative sizes share whatever is left
// after margins, paddings and chunk gaps, and blocks are stacked outward from
// the main canvas in insertion order.
//
// [Compute] combines both axes into a [Grid] from which the [Region] of the
// main canvas or of any named block can be looked up.
package layout

import (
	"github.com/matzehuels/crossplot/pkg/errors"
)

// Grid is the combined allocation of both axes.
type Grid struct {
	H AxisLayout
	V AxisLayout
}

// Compute allocates the horizontal and vertical axes independently.
func Compute(horizontal, vertical AxisSpec) (*Grid, error) {
	h, err := Allocate(horizontal)
	if err != nil {
		return nil, errors.Annotate(err, "horizontal axis")
	}
	v, err := Allocate(vertical)
	if err != nil {
		return nil, errors.Annotate(err, "vertical axis")
	}
	return &Grid{H: h, V: v}, nil
}

// Main returns the region of the main canvas.
func (g *Grid) Main() Region {
	return regionOf(Main, g.H.Main.Name, g.H.Main, g.V.Main)
}

// Block returns the region of the named block on side. Side blocks span the
// main canvas along their aligned axis.
func (g *Grid) Block(side Side, name string) (Region, error) {
	var (
		span Span
		ok   bool
	)
	switch side {
	case Left:
		span, ok = find(g.H.Before, name)
	case Right:
		span, ok = find(g.H.After, name)
	case Bottom:
		span, ok = find(g.V.Before, name)
	case Top:
		span, ok = find(g.V.After, name)
	case Main:
		return g.Main(), nil
	}
	if !ok {
		return Region{}, errors.New(errors.ErrCodeNotFound, "no block named %q on %s", name, side)
	}
	if side.Horizontal() {
		return regionOf(side, name, span, g.V.Main), nil
	}
	return regionOf(side, name, g.H.Main, span), nil
}

// Regions returns the main region followed by every block region, grouped by
// side in [Sides] order and innermost first within a side.
func (g *Grid) Regions() []Region {
	out := []Region{g.Main()}
	stacks := map[Side][]Span{
		Left:   g.H.Before,
		Right:  g.H.After,
		Bottom: g.V.Before,
		Top:    g.V.After,
	}
	for _, side := range Sides {
		for _, s := range stacks[side] {
			r, _ := g.Block(side, s.Name)
			out = append(out, r)
		}
	}
	return out
}

// Size returns the total width and height covered by the grid.
func (g *Grid) Size() (w, h float64) {
	return g.H.Total(), g.V.Total()
}
