package layout

import (
	"github.com/matzehuels/crossplot/pkg/errors"
)

const eps = 1e-9

// Track is one entry in an axis allocation: a side block or the main canvas.
//
// Relative tracks share the extent left over after margins, paddings, gaps and
// absolute tracks, in proportion to their Size. Absolute tracks keep Size as
// their extent. Pad is the space between the track and its inner neighbour.
type Track struct {
	Name     string
	Size     float64
	Pad      float64
	Absolute bool
}

// AxisSpec describes one axis of the grid.
//
// Before holds the left (horizontal axis) or bottom (vertical axis) stack and
// After the right or top stack, both ordered innermost first. Gaps is the
// total inter-chunk spacing reserved inside the main track.
type AxisSpec struct {
	Extent float64
	Margin float64
	Main   Track
	Before []Track
	After  []Track
	Gaps   float64
}

// Span is a contiguous interval on one axis.
type Span struct {
	Name   string
	Start  float64
	Extent float64
	Pad    float64
}

// End returns Start + Extent.
func (s Span) End() float64 { return s.Start + s.Extent }

// AxisLayout is the result of allocating one axis.
type AxisLayout struct {
	Main   Span
	Before []Span
	After  []Span
	Margin float64
}

// find returns the span with the given name in one stack.
func find(spans []Span, name string) (Span, bool) {
	for _, s := range spans {
		if s.Name == name {
			return s, true
		}
	}
	return Span{}, false
}

// Total returns the sum of every span extent, every pad and both margins.
func (a AxisLayout) Total() float64 {
	t := a.Main.Extent + 2*a.Margin
	for _, s := range a.Before {
		t += s.Extent + s.Pad
	}
	for _, s := range a.After {
		t += s.Extent + s.Pad
	}
	return t
}

// Allocate turns an axis description into absolute spans.
//
// Layout order is: margin, outermost Before track, ..., innermost Before
// track, its pad, Main, pad, innermost After track, ..., outermost After
// track, margin. When every track is absolute and space is left over, the
// leftover is split evenly between both margins so the composition stays
// centred.
func Allocate(spec AxisSpec) (AxisLayout, error) {
	if err := validateSpec(spec); err != nil {
		return AxisLayout{}, err
	}

	main := spec.Main
	main.Pad = 0
	if !main.Absolute && main.Size == 0 {
		main.Size = 1
	}

	fixed := 2*spec.Margin + spec.Gaps
	weight := 0.0
	account := func(t Track) {
		fixed += t.Pad
		if t.Absolute {
			fixed += t.Size
		} else {
			weight += t.Size
		}
	}
	account(main)
	for _, t := range spec.Before {
		account(t)
	}
	for _, t := range spec.After {
		account(t)
	}

	remaining := spec.Extent - fixed
	if remaining < -eps {
		return AxisLayout{}, errors.New(errors.ErrCodeInvalidInput,
			"blocks need %.4g but only %.4g is available", fixed, spec.Extent)
	}
	remaining = max(remaining, 0)

	extent := func(t Track) float64 {
		if t.Absolute {
			return t.Size
		}
		if weight == 0 {
			return 0
		}
		return remaining * t.Size / weight
	}

	leftover := 0.0
	if weight == 0 {
		leftover = remaining
	}

	out := AxisLayout{Margin: spec.Margin + leftover/2}
	pos := out.Margin

	out.Before = make([]Span, len(spec.Before))
	for i := len(spec.Before) - 1; i >= 0; i-- {
		t := spec.Before[i]
		out.Before[i] = Span{Name: t.Name, Start: pos, Extent: extent(t), Pad: t.Pad}
		pos += out.Before[i].Extent + t.Pad
	}

	out.Main = Span{Name: main.Name, Start: pos, Extent: extent(main) + spec.Gaps}
	pos = out.Main.End()

	out.After = make([]Span, len(spec.After))
	for i, t := range spec.After {
		pos += t.Pad
		out.After[i] = Span{Name: t.Name, Start: pos, Extent: extent(t), Pad: t.Pad}
		pos += out.After[i].Extent
	}

	return out, nil
}

func validateSpec(spec AxisSpec) error {
	if spec.Extent < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "extent must not be negative, got %g", spec.Extent)
	}
	if spec.Margin < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "margin must not be negative, got %g", spec.Margin)
	}
	if spec.Gaps < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "chunk gaps must not be negative, got %g", spec.Gaps)
	}
	if spec.Main.Size < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "main size must not be negative, got %g", spec.Main.Size)
	}
	for _, stack := range [][]Track{spec.Before, spec.After} {
		seen := make(map[string]bool, len(stack))
		for _, t := range stack {
			if t.Size < 0 || t.Pad < 0 {
				return errors.New(errors.ErrCodeInvalidInput, "block %q has negative size or pad", t.Name)
			}
			if seen[t.Name] {
				return errors.New(errors.ErrCodeDuplicateName, "block %q appears twice on the same side", t.Name)
			}
			seen[t.Name] = true
		}
	}
	return nil
}

// Subdivide splits span into len(weights) consecutive chunks separated by gap.
// Chunk extents are proportional to weights; all-zero weights share equally.
func Subdivide(span Span, weights []float64, gap float64) ([]Span, error) {
	n := len(weights)
	if n == 0 {
		return nil, nil
	}
	avail := span.Extent - gap*float64(n-1)
	if avail < -eps {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"%d chunks with gap %.4g do not fit into %.4g", n, gap, span.Extent)
	}
	avail = max(avail, 0)

	total := 0.0
	for _, w := range weights {
		if w < 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "chunk weight must not be negative, got %g", w)
		}
		total += w
	}

	out := make([]Span, n)
	pos := span.Start
	for i, w := range weights {
		share := avail / float64(n)
		if total > 0 {
			share = avail * w / total
		}
		out[i] = Span{Name: span.Name, Start: pos, Extent: share}
		pos += share + gap
	}
	return out, nil
}
