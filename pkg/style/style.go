// Package style holds shared text and line styling for plotters and legends.
package style

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const (
	// FontSize is the default label size.
	FontSize = vg.Length(8)
	// TitleSize is the default title size.
	TitleSize = vg.Length(11)

	fontHeightRatio = 0.7
	fontCharWidth   = 0.55
	fontSizeMin     = vg.Length(4)
	fontSizeMax     = vg.Length(14)
)

// Text returns a black, left/bottom aligned text style of the given size.
func Text(size vg.Length) draw.TextStyle {
	return draw.TextStyle{
		Color:   color.Black,
		Font:    font.From(plot.DefaultFont, size),
		XAlign:  draw.XLeft,
		YAlign:  draw.YBottom,
		Handler: plot.DefaultTextHandler,
	}
}

// Centered returns a text style centered on its anchor point.
func Centered(size vg.Length) draw.TextStyle {
	s := Text(size)
	s.XAlign = draw.XCenter
	s.YAlign = draw.YCenter
	return s
}

// Line returns a solid line style.
func Line(c color.Color, width vg.Length) draw.LineStyle {
	return draw.LineStyle{Color: c, Width: width}
}

// FitFontSize picks a font size so text of n characters fits a w by h cell,
// clamped to a readable range.
func FitFontSize(w, h vg.Length, n int) vg.Length {
	n = max(1, n)
	byHeight := h * fontHeightRatio
	byWidth := w / (vg.Length(n) * fontCharWidth)
	return max(fontSizeMin, min(fontSizeMax, min(byHeight, byWidth)))
}

// Rect returns the corners of a rectangle as a closed polygon.
func Rect(r vg.Rectangle) []vg.Point {
	return []vg.Point{
		r.Min,
		{X: r.Max.X, Y: r.Min.Y},
		r.Max,
		{X: r.Min.X, Y: r.Max.Y},
	}
}

// FillRect fills r with clr.
func FillRect(c draw.Canvas, clr color.Color, r vg.Rectangle) {
	c.FillPolygon(clr, Rect(r))
}

// Truncate shortens s to at most n runes, marking the cut with "..".
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 2 || len(r) <= n {
		return s
	}
	return string(r[:n-2]) + ".."
}
