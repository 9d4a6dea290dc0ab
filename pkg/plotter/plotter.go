// Package plotter defines the contract between the board and the visual
// kinds it renders, and implements the built-in kinds.
//
// The board calls [Plotter.Render] once per chunk with the chunk's canvas and
// a [View] carrying the chunk's indices and sliced data. Plotters that need
// the whole axis at once (dendrograms, arcs) implement [AxisPlotter] instead.
// Optional capabilities are discovered with type assertions:
//   - [DataSource]: the plotter carries its own data aligned with the axis
//   - [Legender]: the plotter contributes a legend
//   - [Binder]: the plotter draws the main matrix and wants it up front
//
// Side data is k by n: one track per row, with n equal to the length of the
// axis the side follows. Layers on the main canvas see rows by columns.
package plotter

import (
	"image/color"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/matzehuels/crossplot/pkg/dendrogram"
	"github.com/matzehuels/crossplot/pkg/layout"
	"github.com/matzehuels/crossplot/pkg/legend"
	"github.com/matzehuels/crossplot/pkg/matrix"
)

// Plotter draws one visual kind into a region.
type Plotter interface {
	Kind() string
	Render(c draw.Canvas, v View) error
}

// DataSource is implemented by plotters that bring their own data. A nil
// matrix means the plotter draws the main matrix.
type DataSource interface {
	Data() *matrix.Matrix
}

// Legender is implemented by plotters that contribute a legend.
type Legender interface {
	Legend() (legend.Legend, error)
}

// Binder is implemented by plotters that draw the main matrix and need it
// before rendering.
type Binder interface {
	Bind(m *matrix.Matrix)
}

// AxisPlotter is implemented by plotters that draw all chunks of an axis in
// one pass. full spans every chunk; chunks[i] and views[i] describe chunk i.
type AxisPlotter interface {
	Plotter
	RenderAxis(full draw.Canvas, chunks []draw.Canvas, views []View) error
}

// View describes what a plotter draws for one chunk.
type View struct {
	Side  layout.Side
	Label string
	// Index and Count locate the chunk along the plotter's axis.
	Index, Count int
	// Indices are the original indices along the plotter's axis, in render
	// order. For main layers these are rows.
	Indices []int
	// Cross holds column indices for main layers.
	Cross []int
	// Data is sliced to the chunk; Source is the unsliced matrix.
	Data   *matrix.Matrix
	Source *matrix.Matrix
	// Tree is the chunk's dendrogram; Meta orders the chunks.
	Tree *dendrogram.Tree
	Meta *dendrogram.Tree
}

// config holds options shared by the built-in kinds.
type config struct {
	label     string
	colormap  string
	palette   string
	colors    map[string]color.Color
	color     color.Color
	min, max  *float64
	center    *float64
	fontSize  vg.Length
	format    string
	lineWidth vg.Length
	cut       int
	values    bool
	rotate    *bool
	shrink    [2]float64
	glyph     draw.GlyphDrawer
	items     []color.Color
}

// Option configures a built-in plotter.
type Option func(*config)

func newConfig(opts []Option) config {
	c := config{}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithLabel sets the legend title.
func WithLabel(s string) Option { return func(c *config) { c.label = s } }

// WithColormap names the colormap for numeric data.
func WithColormap(name string) Option { return func(c *config) { c.colormap = name } }

// WithPalette names the categorical palette.
func WithPalette(name string) Option { return func(c *config) { c.palette = name } }

// WithColors fixes the color of individual labels.
func WithColors(m map[string]color.Color) Option { return func(c *config) { c.colors = m } }

// WithColor sets a single fill or stroke color.
func WithColor(clr color.Color) Option { return func(c *config) { c.color = clr } }

// WithRange fixes the data range mapped onto the colormap.
func WithRange(lo, hi float64) Option {
	return func(c *config) { c.min, c.max = &lo, &hi }
}

// WithCenter maps v to the middle of a diverging colormap.
func WithCenter(v float64) Option { return func(c *config) { c.center = &v } }

// WithFontSize sets the text size.
func WithFontSize(s vg.Length) Option { return func(c *config) { c.fontSize = s } }

// WithFormat sets the fmt verb used to print numbers.
func WithFormat(f string) Option { return func(c *config) { c.format = f } }

// WithLineWidth sets the stroke width.
func WithLineWidth(w vg.Length) Option { return func(c *config) { c.lineWidth = w } }

// WithCut colors the k top-level clusters of a dendrogram.
func WithCut(k int) Option { return func(c *config) { c.cut = k } }

// WithValues prints values next to bars.
func WithValues() Option { return func(c *config) { c.values = true } }

// WithRotation forces text rotation on or off.
func WithRotation(on bool) Option { return func(c *config) { c.rotate = &on } }

// WithShrink scales every piece of a layers mesh around its cell center.
func WithShrink(x, y float64) Option { return func(c *config) { c.shrink = [2]float64{x, y} } }

// WithGlyph sets the marker shape.
func WithGlyph(g draw.GlyphDrawer) Option { return func(c *config) { c.glyph = g } }

// WithItemColors colors single items by their original index. Nil entries
// keep the default color.
func WithItemColors(colors []color.Color) Option { return func(c *config) { c.items = colors } }

func (c config) fontSizeOr(def vg.Length) vg.Length {
	if c.fontSize > 0 {
		return c.fontSize
	}
	return def
}

func (c config) lineWidthOr(def vg.Length) vg.Length {
	if c.lineWidth > 0 {
		return c.lineWidth
	}
	return def
}

func (c config) colorOr(def color.Color) color.Color {
	if c.color != nil {
		return c.color
	}
	return def
}

func (c config) formatOr(def string) string {
	if c.format != "" {
		return c.format
	}
	return def
}

// itemColor returns the color fixed for original index idx, if any.
func (c config) itemColor(idx int) (color.Color, bool) {
	if idx < 0 || idx >= len(c.items) || c.items[idx] == nil {
		return nil, false
	}
	return c.items[idx], true
}

// sliced cuts m the way the board cuts a plotter's own data for v.
func sliced(m *matrix.Matrix, v View) *matrix.Matrix {
	if v.Side == layout.Main {
		return m.Select(v.Indices, v.Cross)
	}
	return m.SelectAxis(matrix.Cols, v.Indices)
}
