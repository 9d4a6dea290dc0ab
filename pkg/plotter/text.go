package plotter

import (
	"image/color"
	"math"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/matzehuels/crossplot/pkg/errors"
	"github.com/matzehuels/crossplot/pkg/layout"
	"github.com/matzehuels/crossplot/pkg/matrix"
	"github.com/matzehuels/crossplot/pkg/palette"
	"github.com/matzehuels/crossplot/pkg/style"
)

// Sizer is implemented by plotters that know how deep their block should be.
// The board uses it when a block is added without an explicit size.
type Sizer interface {
	Extent(side layout.Side) vg.Length
}

const textPad = vg.Length(2)

// Labels writes one text per item, reading away from the main canvas.
type Labels struct {
	cfg    config
	labels []string
	data   *matrix.Matrix
}

// NewLabels returns a label track.
func NewLabels(labels []string, opts ...Option) (*Labels, error) {
	data, err := matrix.Labels(labels)
	if err != nil {
		return nil, err
	}
	return &Labels{cfg: newConfig(opts), labels: labels, data: data}, nil
}

func (p *Labels) Kind() string { return "labels" }
func (p *Labels) Data() *matrix.Matrix { return p.data }

func (p *Labels) rotated(side layout.Side) bool {
	if p.cfg.rotate != nil {
		return *p.cfg.rotate
	}
	return !side.Horizontal()
}

func (p *Labels) Extent(side layout.Side) vg.Length {
	txt := style.Text(p.cfg.fontSizeOr(style.FontSize))
	if !p.outward(side) {
		return txt.Height("Mg") + 2*textPad
	}
	var w vg.Length
	for _, l := range p.labels {
		w = max(w, txt.Width(l))
	}
	return w + 2*textPad
}

// outward reports whether the text runs away from the main canvas.
func (p *Labels) outward(side layout.Side) bool {
	return p.rotated(side) != side.Horizontal()
}

func (p *Labels) Render(c draw.Canvas, v View) error {
	if err := requireData(p, v); err != nil {
		return err
	}
	f := NewFrame(c, v.Side)
	_, n := v.Data.Dims()
	slot := f.Length() / vg.Length(max(n, 1))
	txt := style.Text(min(p.cfg.fontSizeOr(style.FontSize), slot*0.9))
	txt.Color = p.cfg.colorOr(color.Black)
	txt.YAlign = draw.YCenter
	if p.rotated(v.Side) {
		txt.Rotation = math.Pi / 2
	}
	near := v.Side == layout.Left || v.Side == layout.Bottom
	switch {
	case p.outward(v.Side) && near:
		txt.XAlign = draw.XRight
	case p.outward(v.Side):
		txt.XAlign = draw.XLeft
	default:
		txt.XAlign = draw.XCenter
		txt.YAlign = draw.YBottom
		if v.Side == layout.Bottom || v.Side == layout.Right {
			txt.YAlign = draw.YTop
		}
	}
	depth := f.Depth(0) + textPad
	if near {
		depth = f.Depth(0) - textPad
	}
	for i := range n {
		c.FillText(txt, f.Point(f.Slot(i, n), depth), v.Data.Label(0, i))
	}
	return nil
}

// Title writes a single centered text across the block.
type Title struct {
	cfg  config
	text string
}

// NewTitle returns a title plotter.
func NewTitle(text string, opts ...Option) *Title {
	return &Title{cfg: newConfig(opts), text: text}
}

func (p *Title) Kind() string { return "title" }

func (p *Title) size() vg.Length { return p.cfg.fontSizeOr(style.TitleSize) }

func (p *Title) Extent(layout.Side) vg.Length { return p.size() * 1.8 }

func (p *Title) Render(c draw.Canvas, v View) error {
	txt := style.Centered(p.size())
	txt.Color = p.cfg.colorOr(color.Black)
	txt.Rotation = sideRotation(v.Side)
	c.FillText(txt, center(c.Rectangle), p.text)
	return nil
}

// Chunk draws one labelled box per chunk, typically next to a split axis.
type Chunk struct {
	cfg   config
	texts []string
	fills []color.Color
}

// NewChunk returns a chunk label track. Nil texts use the chunk labels; nil
// fills leave the boxes empty.
func NewChunk(texts []string, fills []color.Color, opts ...Option) *Chunk {
	return &Chunk{cfg: newConfig(opts), texts: texts, fills: fills}
}

func (p *Chunk) Kind() string { return "chunk" }

func (p *Chunk) size() vg.Length { return p.cfg.fontSizeOr(style.FontSize * 1.1) }

func (p *Chunk) Extent(layout.Side) vg.Length { return p.size() * 2 }

func (p *Chunk) Render(c draw.Canvas, v View) error {
	if p.texts != nil && len(p.texts) != v.Count {
		return errors.New(errors.ErrCodeSizeMismatch, "got %d chunk texts for %d chunks", len(p.texts), v.Count)
	}
	if p.fills != nil && len(p.fills) != v.Count {
		return errors.New(errors.ErrCodeSizeMismatch, "got %d chunk fills for %d chunks", len(p.fills), v.Count)
	}
	text := v.Label
	if p.texts != nil {
		text = p.texts[v.Index]
	}
	fg := p.cfg.colorOr(color.Black)
	if p.fills != nil {
		fill := p.fills[v.Index]
		style.FillRect(c, fill, c.Rectangle)
		if p.cfg.color == nil {
			fg = palette.Contrast(fill)
		}
	}
	if p.cfg.lineWidth > 0 {
		c.StrokeLines(style.Line(fg, p.cfg.lineWidth), append(style.Rect(c.Rectangle), c.Min))
	}
	txt := style.Centered(p.size())
	txt.Color = fg
	txt.Rotation = sideRotation(v.Side)
	c.FillText(txt, center(c.Rectangle), text)
	return nil
}

// sideRotation turns text to read along left and right blocks.
func sideRotation(side layout.Side) float64 {
	switch side {
	case layout.Left:
		return math.Pi / 2
	case layout.Right:
		return -math.Pi / 2
	}
	return 0
}
