package palette

import (
	"image/color"
	"slices"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/crossplot/pkg/errors"
)

// DefaultCategorical is used for labels when no palette is named.
const DefaultCategorical = "tab10"

var categorical = map[string][]string{
	"tab10": {"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
		"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf"},
	"Set1": {"#e41a1c", "#377eb8", "#4daf4a", "#984ea3", "#ff7f00",
		"#ffff33", "#a65628", "#f781bf", "#999999"},
	"Set2": {"#66c2a5", "#fc8d62", "#8da0cb", "#e78ac3", "#a6d854",
		"#ffd92f", "#e5c494", "#b3b3b3"},
	"Pastel1": {"#fbb4ae", "#b3cde3", "#ccebc5", "#decbe4", "#fed9a6",
		"#ffffcc", "#e5d8bd", "#fddaec", "#f2f2f2"},
	"Dark2": {"#1b9e77", "#d95f02", "#7570b3", "#e7298a", "#66a61e",
		"#e6ab02", "#a6761d", "#666666"},
}

// Categorical returns the named categorical palette.
func Categorical(name string) ([]color.Color, error) {
	if name == "" {
		name = DefaultCategorical
	}
	hex, ok := categorical[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidOption, "unknown palette %q (known: %s)", name, strings.Join(Palettes(), ", "))
	}
	out := make([]color.Color, len(hex))
	for i, h := range hex {
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// Palettes lists the registered categorical palette names.
func Palettes() []string {
	out := make([]string, 0, len(categorical))
	for name := range categorical {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// Spread returns n evenly spaced colors, reusing the palette while it lasts
// and generating extra hues in HCL space beyond that.
func Spread(pal []color.Color, n int) []color.Color {
	out := make([]color.Color, n)
	for i := range out {
		if i < len(pal) {
			out[i] = pal[i]
			continue
		}
		hue := float64(i*137) + 20
		for hue >= 360 {
			hue -= 360
		}
		out[i] = colorful.Hcl(hue, 0.5, 0.65).Clamped()
	}
	return out
}

// Assign maps each label to a color. Labels are taken in the given order;
// explicit entries in fixed win over the palette.
func Assign(labels []string, pal []color.Color, fixed map[string]color.Color) map[string]color.Color {
	colors := Spread(pal, len(labels))
	out := make(map[string]color.Color, len(labels))
	next := 0
	for _, l := range labels {
		if _, ok := out[l]; ok {
			continue
		}
		if c, ok := fixed[l]; ok {
			out[l] = c
			continue
		}
		out[l] = colors[next]
		next++
	}
	return out
}
