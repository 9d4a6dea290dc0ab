package plotter

import (
	"image"
	"image/color"
	"math"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/matzehuels/crossplot/pkg/errors"
	"github.com/matzehuels/crossplot/pkg/style"
)

// Aligned is implemented by plotters without matrix data whose items still
// follow the axis. The board checks Len against the axis length.
type Aligned interface {
	Len() int
}

// Link connects two original indices of an axis.
type Link struct {
	From, To int
	Weight   float64
}

// Arc draws links between items as arcs bulging away from the main canvas.
type Arc struct {
	cfg   config
	n     int
	links []Link
}

// NewArc returns an arc diagram over an axis of length n.
func NewArc(n int, links []Link, opts ...Option) (*Arc, error) {
	for _, l := range links {
		if l.From < 0 || l.From >= n || l.To < 0 || l.To >= n {
			return nil, errors.New(errors.ErrCodeInvalidInput, "link %d-%d outside axis of length %d", l.From, l.To, n)
		}
	}
	return &Arc{cfg: newConfig(opts), n: n, links: links}, nil
}

func (p *Arc) Kind() string { return "arc" }
func (p *Arc) Len() int { return p.n }

func (p *Arc) Render(c draw.Canvas, v View) error {
	return p.RenderAxis(c, []draw.Canvas{c}, []View{v})
}

const arcSegments = 32

func (p *Arc) RenderAxis(full draw.Canvas, chunks []draw.Canvas, views []View) error {
	if len(views) == 0 {
		return nil
	}
	side := views[0].Side
	pos := make(map[int]vg.Length, p.n)
	for i, v := range views {
		f := NewFrame(chunks[i], side)
		for q, idx := range v.Indices {
			pos[idx] = f.Slot(q, len(v.Indices))
		}
	}

	var widest, heaviest float64
	for _, l := range p.links {
		a, okA := pos[l.From]
		b, okB := pos[l.To]
		if okA && okB {
			widest = max(widest, math.Abs(float64(b-a)))
		}
		heaviest = max(heaviest, l.Weight)
	}
	if widest == 0 {
		return nil
	}

	ff := NewFrame(full, side)
	base := p.cfg.colorOr(color.RGBA{R: 0x33, G: 0x66, B: 0x99, A: 0xaa})
	for _, l := range p.links {
		a, okA := pos[l.From]
		b, okB := pos[l.To]
		if !okA || !okB || a == b {
			continue
		}
		w := p.cfg.lineWidthOr(0.75)
		if heaviest > 0 && l.Weight > 0 {
			w *= vg.Length(0.5 + 1.5*l.Weight/heaviest)
		}
		mid := (a + b) / 2
		r := (b - a) / 2
		rel := math.Abs(float64(r)) * 2 / widest
		pts := make([]vg.Point, arcSegments+1)
		for s := range pts {
			theta := math.Pi * float64(s) / arcSegments
			along := mid - r*vg.Length(math.Cos(theta))
			depth := ff.Depth(0.95 * rel * math.Sin(theta))
			pts[s] = ff.Point(along, depth)
		}
		full.StrokeLines(style.Line(base, w), pts)
	}
	return nil
}

var _ AxisPlotter = (*Arc)(nil)

// Image draws one image per item, scaled to fit its cell.
type Image struct {
	cfg    config
	images []image.Image
}

// NewImage returns an image track; nil entries leave their cell empty.
func NewImage(images []image.Image, opts ...Option) *Image {
	return &Image{cfg: newConfig(opts), images: images}
}

func (p *Image) Kind() string { return "image" }
func (p *Image) Len() int { return len(p.images) }

func (p *Image) Render(c draw.Canvas, v View) error {
	f := NewFrame(c, v.Side)
	n := len(v.Indices)
	for q, idx := range v.Indices {
		if idx < 0 || idx >= len(p.images) {
			return errors.New(errors.ErrCodeSizeMismatch, "image index %d outside %d images", idx, len(p.images))
		}
		img := p.images[idx]
		if img == nil {
			continue
		}
		c.DrawImage(fit(f.Cell(q, n, 0, 1), img.Bounds()), img)
	}
	return nil
}

// fit centers a rectangle with the aspect ratio of b inside cell.
func fit(cell vg.Rectangle, b image.Rectangle) vg.Rectangle {
	size := cell.Size()
	if b.Dx() == 0 || b.Dy() == 0 {
		return cell
	}
	aspect := vg.Length(b.Dx()) / vg.Length(b.Dy())
	w, h := size.X, size.X/aspect
	if h > size.Y {
		w, h = size.Y*aspect, size.Y
	}
	ctr := center(cell)
	return vg.Rectangle{
		Min: vg.Point{X: ctr.X - w/2, Y: ctr.Y - h/2},
		Max: vg.Point{X: ctr.X + w/2, Y: ctr.Y + h/2},
	}
}
