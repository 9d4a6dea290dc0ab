package legend

import (
	"fmt"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/recorder"

	"github.com/matzehuels/crossplot/pkg/errors"
	"github.com/matzehuels/crossplot/pkg/palette"
)

func canvas() (*recorder.Canvas, draw.Canvas) {
	rec := &recorder.Canvas{}
	return rec, draw.Canvas{Canvas: rec, Rectangle: vg.Rectangle{Max: vg.Point{X: 4 * vg.Inch, Y: 4 * vg.Inch}}}
}

func texts(rec *recorder.Canvas) []string {
	var out []string
	for _, a := range rec.Actions {
		if fs, ok := a.(*recorder.FillString); ok {
			out = append(out, fs.String)
		}
	}
	return out
}

func TestCategorical(t *testing.T) {
	one := &Categorical{Entries: []Entry{{Label: "a", Color: color.Black}}}
	three := &Categorical{Title: "Mutation", Entries: []Entry{
		{Label: "missense", Color: color.Black},
		{Label: "nonsense", Color: color.Black, Shape: Circle},
		{Label: "splice", Color: color.Black, Shape: Stroke},
	}}
	assert.Greater(t, three.Size().Y, one.Size().Y)
	assert.Greater(t, three.Size().X, one.Size().X)

	rec, c := canvas()
	three.Draw(c)
	assert.Equal(t, []string{"Mutation", "missense", "nonsense", "splice"}, texts(rec))

	var boxes []vg.Rectangle
	custom := &Categorical{Entries: []Entry{{
		Label:  "amp",
		Swatch: func(_ draw.Canvas, r vg.Rectangle) { boxes = append(boxes, r) },
	}}}
	rec, c = canvas()
	custom.Draw(c)
	require.Len(t, boxes, 1)
	assert.Equal(t, boxes[0].Max.X-boxes[0].Min.X, boxes[0].Max.Y-boxes[0].Min.Y)
	assert.Equal(t, []string{"amp"}, texts(rec))
}

func TestColorBar(t *testing.T) {
	cm, err := palette.Lookup("Reds")
	require.NoError(t, err)
	bar := &ColorBar{Title: "expr", Colormap: cm, Norm: palette.Norm{Min: 0, Max: 10}}

	sz := bar.Size()
	assert.Greater(t, sz.Y, vg.Inch)

	rec, c := canvas()
	bar.Draw(c)
	assert.Equal(t, []string{"expr", "0", "5", "10"}, texts(rec))

	fills := 0
	for _, a := range rec.Actions {
		if _, ok := a.(*recorder.Fill); ok {
			fills++
		}
	}
	assert.Equal(t, colorBarSteps, fills)
}

func TestSizes(t *testing.T) {
	l := &Sizes{
		Values: []float64{1, 5},
		Radius: func(v float64) vg.Length { return vg.Length(v) },
	}
	sz := l.Size()
	assert.GreaterOrEqual(t, float64(sz.Y), 2.0+10.0)

	rec, c := canvas()
	l.Draw(c)
	assert.Equal(t, []string{"1", "5"}, texts(rec))
}

func TestStack(t *testing.T) {
	a := &Categorical{Entries: []Entry{{Label: "a", Color: color.Black}}}
	b := &Categorical{Entries: []Entry{{Label: "b", Color: color.Black}, {Label: "c", Color: color.Black}}}

	col := &Stack{Legends: []Legend{a, b}, Vertical: true, Gap: 2}
	assert.InDelta(t, float64(a.Size().Y+b.Size().Y+2), float64(col.Size().Y), 1e-9)

	row := &Stack{Legends: []Legend{a, b}, Gap: 2}
	assert.InDelta(t, float64(a.Size().X+b.Size().X+2), float64(row.Size().X), 1e-9)
	assert.Equal(t, b.Size().Y, row.Size().Y)

	rec, c := canvas()
	col.Draw(c)
	assert.Equal(t, []string{"a", "b", "c"}, texts(rec))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	mk := func(label string) Factory {
		return func() (Legend, error) {
			return &Categorical{Entries: []Entry{{Label: label, Color: color.Black}}}, nil
		}
	}
	require.NoError(t, r.Add("first", mk("1")))
	require.NoError(t, r.Add("second", mk("2")))
	require.NoError(t, r.Add("third", mk("3")))

	err := r.Add("second", mk("x"))
	assert.True(t, errors.Is(err, errors.ErrCodeDuplicateName))
	assert.Equal(t, 3, r.Len())

	built, err := r.Build([]string{"third"})
	require.NoError(t, err)
	var got []string
	for _, l := range built {
		got = append(got, l.(*Categorical).Entries[0].Label)
	}
	assert.Equal(t, []string{"3", "1", "2"}, got)

	_, err = r.Build([]string{"missing"})
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))

	require.NoError(t, r.Add("broken", func() (Legend, error) { return nil, fmt.Errorf("boom") }))
	_, err = r.Build(nil)
	assert.True(t, errors.Is(err, errors.ErrCodeInternal))
}
