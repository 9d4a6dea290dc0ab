package layout

import (
	"strings"

	"github.com/matzehuels/crossplot/pkg/errors"
	"github.com/matzehuels/crossplot/pkg/matrix"
)

// Side is where a block sits relative to the main canvas.
type Side int

const (
	Main Side = iota
	Left
	Right
	Top
	Bottom
)

// Sides lists the four outer sides in a stable order.
var Sides = []Side{Left, Right, Top, Bottom}

var sideNames = map[Side]string{
	Main:   "main",
	Left:   "left",
	Right:  "right",
	Top:    "top",
	Bottom: "bottom",
}

func (s Side) String() string {
	if n, ok := sideNames[s]; ok {
		return n
	}
	return "unknown"
}

// ParseSide converts a side name ("left", "right", "top", "bottom", "main").
func ParseSide(s string) (Side, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for side, n := range sideNames {
		if n == name {
			return side, nil
		}
	}
	return Main, errors.New(errors.ErrCodeInvalidSide, "unknown side %q (want left, right, top, bottom or main)", s)
}

// Axis returns the data axis a block on this side is aligned with. Blocks on
// the left and right share the rows of the main matrix; blocks on the top and
// bottom share its columns.
func (s Side) Axis() matrix.Axis {
	if s == Left || s == Right {
		return matrix.Rows
	}
	return matrix.Cols
}

// Horizontal reports whether blocks on this side stack along the x axis.
func (s Side) Horizontal() bool { return s == Left || s == Right }

// Opposite returns the side facing s across the main canvas.
func (s Side) Opposite() Side {
	switch s {
	case Left:
		return Right
	case Right:
		return Left
	case Top:
		return Bottom
	case Bottom:
		return Top
	}
	return Main
}
