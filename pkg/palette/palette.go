// Package palette provides colormaps for numeric data and categorical
// palettes for labels.
//
// Gradients interpolate in CIE L*a*b* space through go-colorful, which keeps
// perceived lightness changes even between stops. A few diverging maps come
// from gonum's moreland package. Append "_r" to any colormap name to reverse
// it.
package palette

import (
	"hash/fnv"
	"image/color"
	"math"
	"slices"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	plotpalette "gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"

	"github.com/matzehuels/crossplot/pkg/errors"
)

// DefaultColormap is used when a plotter does not name one.
const DefaultColormap = "viridis"

// Colormap maps a normalised value in [0, 1] to a color. Values outside the
// range are clamped.
type Colormap interface {
	At(v float64) color.Color
}

// Gradient is a piecewise colormap through evenly spaced stops.
type Gradient struct {
	stops []colorful.Color
}

// NewGradient builds a gradient from hex color stops ("#rrggbb").
func NewGradient(hex ...string) (*Gradient, error) {
	if len(hex) < 2 {
		return nil, errors.New(errors.ErrCodeInvalidOption, "a gradient needs at least 2 stops, got %d", len(hex))
	}
	stops := make([]colorful.Color, len(hex))
	for i, h := range hex {
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidOption, err, "parse gradient stop %q", h)
		}
		stops[i] = c
	}
	return &Gradient{stops: stops}, nil
}

func mustGradient(hex ...string) *Gradient {
	g, err := NewGradient(hex...)
	if err != nil {
		panic(err)
	}
	return g
}

func (g *Gradient) At(v float64) color.Color {
	v = clamp01(v)
	seg := v * float64(len(g.stops)-1)
	i := int(math.Floor(seg))
	if i >= len(g.stops)-1 {
		return g.stops[len(g.stops)-1].Clamped()
	}
	return g.stops[i].BlendLab(g.stops[i+1], seg-float64(i)).Clamped()
}

// reversed flips a colormap end to end.
type reversed struct{ Colormap }

func (r reversed) At(v float64) color.Color { return r.Colormap.At(1 - clamp01(v)) }

// gonumMap adapts a gonum ColorMap spanning [0, 1].
type gonumMap struct{ cm plotpalette.ColorMap }

func newGonumMap(cm plotpalette.ColorMap) gonumMap {
	cm.SetMin(0)
	cm.SetMax(1)
	return gonumMap{cm: cm}
}

func (g gonumMap) At(v float64) color.Color {
	c, err := g.cm.At(clamp01(v))
	if err != nil {
		return color.Transparent
	}
	return c
}

var colormaps = map[string]func() Colormap{
	"viridis": func() Colormap {
		return mustGradient("#440154", "#482878", "#3e4989", "#31688e", "#26828e",
			"#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725")
	},
	"magma": func() Colormap {
		return mustGradient("#000004", "#1c1044", "#4f127b", "#812581", "#b5367a",
			"#e55964", "#fb8761", "#fec287", "#fcfdbf")
	},
	"Blues":     func() Colormap { return mustGradient("#f7fbff", "#c6dbef", "#6baed6", "#2171b5", "#08306b") },
	"Reds":      func() Colormap { return mustGradient("#fff5f0", "#fcbba1", "#fb6a4a", "#cb181d", "#67000d") },
	"Greens":    func() Colormap { return mustGradient("#f7fcf5", "#c7e9c0", "#74c476", "#238b45", "#00441b") },
	"Greys":     func() Colormap { return mustGradient("#ffffff", "#bdbdbd", "#737373", "#252525", "#000000") },
	"RdBu":      func() Colormap { return mustGradient("#67001f", "#d6604d", "#f7f7f7", "#4393c3", "#053061") },
	"PiYG":      func() Colormap { return mustGradient("#8e0152", "#de77ae", "#f7f7f7", "#7fbc41", "#276419") },
	"YlGnBu":    func() Colormap { return mustGradient("#ffffd9", "#c7e9b4", "#41b6c4", "#225ea8", "#081d58") },
	"coolwarm":  func() Colormap { return newGonumMap(moreland.SmoothBlueRed()) },
	"kindlmann": func() Colormap { return newGonumMap(moreland.Kindlmann()) },
	"blackbody": func() Colormap { return newGonumMap(moreland.BlackBody()) },
}

// Lookup returns the named colormap. An empty name selects the default.
func Lookup(name string) (Colormap, error) {
	if name == "" {
		name = DefaultColormap
	}
	base, rev := strings.CutSuffix(name, "_r")
	mk, ok := colormaps[base]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidOption, "unknown colormap %q (known: %s)", name, strings.Join(Colormaps(), ", "))
	}
	cm := mk()
	if rev {
		return reversed{cm}, nil
	}
	return cm, nil
}

// Colormaps lists the registered colormap names.
func Colormaps() []string {
	out := make([]string, 0, len(colormaps))
	for name := range colormaps {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// Norm maps data values onto [0, 1] for a colormap.
type Norm struct {
	Min, Max float64
	// Center, when set, maps to 0.5 and stretches both halves independently.
	Center *float64
}

// Apply normalises v. A degenerate range maps every value to 0.5.
func (n Norm) Apply(v float64) float64 {
	if math.IsNaN(v) {
		return math.NaN()
	}
	if n.Center != nil {
		c := *n.Center
		switch {
		case v < c && c > n.Min:
			return clamp01(0.5 * (v - n.Min) / (c - n.Min))
		case v > c && n.Max > c:
			return clamp01(0.5 + 0.5*(v-c)/(n.Max-c))
		}
		return 0.5
	}
	if n.Max-n.Min <= 0 {
		return 0.5
	}
	return clamp01((v - n.Min) / (n.Max - n.Min))
}

// Hex parses "#rrggbb" or "#rgb".
func Hex(s string) (color.Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidOption, err, "parse color %q", s)
	}
	return c.Clamped(), nil
}

var named = map[string]string{
	"black": "#000000", "white": "#ffffff", "gray": "#808080", "grey": "#808080",
	"lightgray": "#d3d3d3", "red": "#d62728", "blue": "#1f77b4", "green": "#2ca02c",
	"orange": "#ff7f0e", "purple": "#9467bd", "brown": "#8c564b", "pink": "#e377c2",
	"olive": "#bcbd22", "cyan": "#17becf", "yellow": "#ffd92f",
}

// Parse accepts a hex color or a basic color name.
func Parse(s string) (color.Color, error) {
	if h, ok := named[strings.ToLower(s)]; ok {
		s = h
	}
	return Hex(s)
}

// Contrast returns black or white, whichever reads better on bg.
func Contrast(bg color.Color) color.Color {
	c, ok := colorful.MakeColor(bg)
	if !ok {
		return color.Black
	}
	l, _, _ := c.Lab()
	if l > 0.55 {
		return color.Black
	}
	return color.White
}

// ForKey returns a stable, muted color derived from a string key.
func ForKey(key string) color.Color {
	h := fnv.New32a()
	h.Write([]byte(key))
	hue := float64(h.Sum32()%360)
	return colorful.Hcl(hue, 0.35, 0.75).Clamped()
}

// Hexes formats colors as "#rrggbb".
func Hexes(colors []color.Color) []string {
	out := make([]string, len(colors))
	for i, c := range colors {
		cf, _ := colorful.MakeColor(c)
		out[i] = cf.Hex()
	}
	return out
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
