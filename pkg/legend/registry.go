package legend

import (
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/matzehuels/crossplot/pkg/errors"
)

// Stack arranges legends in a row or a column.
type Stack struct {
	Legends  []Legend
	Vertical bool
	Gap      vg.Length
}

func (s *Stack) gap() vg.Length {
	if s.Gap > 0 {
		return s.Gap
	}
	return 0.15 * vg.Inch
}

func (s *Stack) Size() vg.Point {
	var out vg.Point
	for i, l := range s.Legends {
		sz := l.Size()
		var g vg.Length
		if i > 0 {
			g = s.gap()
		}
		if s.Vertical {
			out.X = max(out.X, sz.X)
			out.Y += g + sz.Y
		} else {
			out.X += g + sz.X
			out.Y = max(out.Y, sz.Y)
		}
	}
	return out
}

func (s *Stack) Draw(c draw.Canvas) {
	x, y := c.Min.X, c.Max.Y
	for _, l := range s.Legends {
		sz := l.Size()
		sub := draw.Canvas{Canvas: c.Canvas, Rectangle: vg.Rectangle{
			Min: vg.Point{X: x, Y: y - sz.Y},
			Max: vg.Point{X: x + sz.X, Y: y},
		}}
		l.Draw(sub)
		if s.Vertical {
			y -= sz.Y + s.gap()
		} else {
			x += sz.X + s.gap()
		}
	}
}

// Factory builds a legend when the figure is rendered.
type Factory func() (Legend, error)

// Registry keeps legend factories in registration order.
type Registry struct {
	names     []string
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Add registers a factory under a unique name.
func (r *Registry) Add(name string, f Factory) error {
	if err := errors.ValidateName(name); err != nil {
		return err
	}
	if _, ok := r.factories[name]; ok {
		return errors.New(errors.ErrCodeDuplicateName, "legend %q already registered", name)
	}
	r.names = append(r.names, name)
	r.factories[name] = f
	return nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.factories[name]
	return ok
}

// Names returns registered names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Len returns the number of registered legends.
func (r *Registry) Len() int { return len(r.names) }

// Build runs the factories. Names listed in order come first, in that order;
// the rest follow in registration order. Unknown names in order are an error.
func (r *Registry) Build(order []string) ([]Legend, error) {
	seen := make(map[string]bool, len(r.names))
	names := make([]string, 0, len(r.names))
	for _, n := range order {
		if !r.Has(n) {
			return nil, errors.New(errors.ErrCodeNotFound, "no legend named %q", n)
		}
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	for _, n := range r.names {
		if !seen[n] {
			names = append(names, n)
		}
	}

	out := make([]Legend, 0, len(names))
	for _, n := range names {
		l, err := r.factories[n]()
		if err != nil {
			return nil, errors.Annotate(err, "build legend %q", n)
		}
		if l != nil {
			out = append(out, l)
		}
	}
	return out, nil
}
