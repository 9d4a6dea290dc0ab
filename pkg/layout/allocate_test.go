package layout

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/crossplot/pkg/errors"
)

const tol = 1e-9

func TestAllocateAbsoluteRightBlock(t *testing.T) {
	a, err := Allocate(AxisSpec{
		Extent: 3,
		Main:   Track{Size: 1},
		After:  []Track{{Name: "bars", Size: 1.0, Pad: 0.1, Absolute: true}},
	})
	require.NoError(t, err)

	assert.InDelta(t, 1.9, a.Main.Extent, tol)
	assert.InDelta(t, 0, a.Main.Start, tol)
	require.Len(t, a.After, 1)
	assert.InDelta(t, 1.0, a.After[0].Extent, tol)
	assert.InDelta(t, 2.0, a.After[0].Start, tol)
	assert.InDelta(t, 3.0, a.After[0].End(), tol)
}

func TestAllocateStacksOutward(t *testing.T) {
	a, err := Allocate(AxisSpec{
		Extent: 10,
		Margin: 0.5,
		Main:   Track{Size: 1},
		Before: []Track{
			{Name: "inner", Size: 1, Pad: 0.2, Absolute: true},
			{Name: "outer", Size: 2, Pad: 0.3, Absolute: true},
		},
	})
	require.NoError(t, err)

	outer, inner := a.Before[1], a.Before[0]
	assert.InDelta(t, 0.5, outer.Start, tol)
	assert.InDelta(t, outer.End()+0.3, inner.Start, tol)
	assert.InDelta(t, inner.End()+0.2, a.Main.Start, tol)
	assert.InDelta(t, 10-0.5, a.Main.End(), tol)
}

func TestAllocateRelativeShares(t *testing.T) {
	a, err := Allocate(AxisSpec{
		Extent: 4,
		Main:   Track{Size: 3},
		After:  []Track{{Name: "track", Size: 1}},
	})
	require.NoError(t, err)
	assert.InDelta(t, 3, a.Main.Extent, tol)
	assert.InDelta(t, 1, a.After[0].Extent, tol)
}

func TestAllocateEmptySides(t *testing.T) {
	a, err := Allocate(AxisSpec{Extent: 5, Margin: 0.25, Main: Track{}})
	require.NoError(t, err)
	assert.Empty(t, a.Before)
	assert.Empty(t, a.After)
	assert.InDelta(t, 0.25, a.Main.Start, tol)
	assert.InDelta(t, 4.5, a.Main.Extent, tol)
}

func TestAllocateZeroSizeIsLegal(t *testing.T) {
	a, err := Allocate(AxisSpec{
		Extent: 3,
		Main:   Track{Size: 1},
		After: []Track{
			{Name: "spacer", Size: 0, Pad: 0.5, Absolute: true},
			{Name: "labels", Size: 0.5, Absolute: true},
		},
	})
	require.NoError(t, err)
	assert.InDelta(t, 0, a.After[0].Extent, tol)
	assert.InDelta(t, 2.0, a.Main.Extent, tol)
	assert.InDelta(t, a.After[0].End(), a.After[1].Start, tol)
}

func TestAllocateAllAbsoluteIsCentred(t *testing.T) {
	a, err := Allocate(AxisSpec{
		Extent: 6,
		Main:   Track{Size: 2, Absolute: true},
		Before: []Track{{Name: "l", Size: 1, Absolute: true}},
		After:  []Track{{Name: "r", Size: 1, Absolute: true}},
	})
	require.NoError(t, err)
	assert.InDelta(t, 1, a.Margin, tol)
	assert.InDelta(t, 2, a.Main.Start, tol)
	assert.InDelta(t, 6, a.Total(), tol)
}

func TestAllocateOverflow(t *testing.T) {
	_, err := Allocate(AxisSpec{
		Extent: 1,
		Main:   Track{Size: 1},
		After:  []Track{{Name: "wide", Size: 2, Absolute: true}},
	})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestAllocateDuplicateName(t *testing.T) {
	_, err := Allocate(AxisSpec{
		Extent: 3,
		After:  []Track{{Name: "a", Size: 1}, {Name: "a", Size: 1}},
	})
	assert.True(t, errors.Is(err, errors.ErrCodeDuplicateName))

	// The same name on opposing sides is fine.
	_, err = Allocate(AxisSpec{
		Extent: 3,
		Before: []Track{{Name: "a", Size: 1}},
		After:  []Track{{Name: "a", Size: 1}},
	})
	assert.NoError(t, err)
}

func TestAllocateSumsToExtent(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for i := range 200 {
		t.Run(fmt.Sprintf("case-%d", i), func(t *testing.T) {
			spec := AxisSpec{
				Extent: 20,
				Margin: rng.Float64(),
				Main:   Track{Size: 0.5 + rng.Float64()},
				Gaps:   rng.Float64() * 0.5,
			}
			for j := range rng.IntN(4) {
				spec.Before = append(spec.Before, randomTrack(rng, fmt.Sprintf("b%d", j)))
			}
			for j := range rng.IntN(4) {
				spec.After = append(spec.After, randomTrack(rng, fmt.Sprintf("a%d", j)))
			}

			a, err := Allocate(spec)
			require.NoError(t, err)
			assert.InDelta(t, spec.Extent, a.Total(), 1e-6)

			last := 0.0
			for k := len(a.Before) - 1; k >= 0; k-- {
				assert.GreaterOrEqual(t, a.Before[k].Start+tol, last)
				last = a.Before[k].End()
			}
			assert.GreaterOrEqual(t, a.Main.Start+tol, last)
		})
	}
}

func randomTrack(rng *rand.Rand, name string) Track {
	return Track{
		Name:     name,
		Size:     rng.Float64(),
		Pad:      rng.Float64() * 0.2,
		Absolute: rng.IntN(2) == 0,
	}
}

func TestSubdivide(t *testing.T) {
	spans, err := Subdivide(Span{Start: 1, Extent: 10.2}, []float64{2, 3, 5}, 0.1)
	require.NoError(t, err)
	require.Len(t, spans, 3)
	assert.InDelta(t, 1, spans[0].Start, tol)
	assert.InDelta(t, 2, spans[0].Extent, tol)
	assert.InDelta(t, 3.1, spans[1].Start, tol)
	assert.InDelta(t, 3, spans[1].Extent, tol)
	assert.InDelta(t, 11.2, spans[2].End(), tol)

	equal, err := Subdivide(Span{Extent: 2}, []float64{0, 0}, 0)
	require.NoError(t, err)
	assert.InDelta(t, 1, equal[1].Extent, tol)

	_, err = Subdivide(Span{Extent: 0.1}, []float64{1, 1, 1}, 0.1)
	assert.True(t, errors.IsValidation(err))
}

func TestGridIndependentAxes(t *testing.T) {
	h := AxisSpec{Extent: 3, Main: Track{Size: 1}, After: []Track{{Name: "right", Size: 1, Pad: 0.1, Absolute: true}}}
	v := AxisSpec{Extent: 3, Main: Track{Size: 1}}

	g1, err := Compute(h, v)
	require.NoError(t, err)

	v.After = []Track{{Name: "top", Size: 0.5, Absolute: true}}
	g2, err := Compute(h, v)
	require.NoError(t, err)

	assert.Equal(t, g1.H, g2.H)
	assert.InDelta(t, 2.5, g2.Main().Height(), tol)

	right, err := g2.Block(Right, "right")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, right.Width(), tol)
	assert.InDelta(t, g2.Main().Height(), right.Height(), tol)

	top, err := g2.Block(Top, "top")
	require.NoError(t, err)
	assert.InDelta(t, g2.Main().Width(), top.Width(), tol)
	assert.InDelta(t, g2.Main().Top, top.Bottom, tol)

	_, err = g2.Block(Left, "right")
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))

	assert.Len(t, g2.Regions(), 3)
	w, hh := g2.Size()
	assert.InDelta(t, 3, w, tol)
	assert.InDelta(t, 3, hh, tol)
}

func TestParseSide(t *testing.T) {
	for _, name := range []string{"left", "Right", " top ", "bottom", "main"} {
		_, err := ParseSide(name)
		assert.NoError(t, err, name)
	}
	_, err := ParseSide("center")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidSide))

	assert.Equal(t, Right, Left.Opposite())
	assert.True(t, Left.Horizontal())
	assert.False(t, Top.Horizontal())
}
