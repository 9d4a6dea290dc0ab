package plotter

import (
	"image/color"
	"math"
	"reflect"
	"slices"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/matzehuels/crossplot/pkg/errors"
	"github.com/matzehuels/crossplot/pkg/legend"
	"github.com/matzehuels/crossplot/pkg/matrix"
	"github.com/matzehuels/crossplot/pkg/style"
)

// Piece draws one mark into a cell of a [LayersMesh]. Oncoprints combine
// several pieces per cell, one per alteration.
type Piece interface {
	Draw(c draw.Canvas, cell vg.Rectangle)
	Style() PieceStyle
}

// PieceStyle is shared by every piece. Layers are drawn in ascending Z.
type PieceStyle struct {
	Color    color.Color
	Label    string
	NoLegend bool
	Z        int
}

func (s PieceStyle) Style() PieceStyle { return s }

var defaultPieceColor = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}

func (s PieceStyle) fill() color.Color {
	if s.Color != nil {
		return s.Color
	}
	return defaultPieceColor
}

// Rect fills the whole cell.
type Rect struct{ PieceStyle }

func (p Rect) Draw(c draw.Canvas, cell vg.Rectangle) { style.FillRect(c, p.fill(), cell) }

// FracRect fills a centered share of the cell. Frac defaults to 0.9 of the
// width and 0.5 of the height.
type FracRect struct {
	PieceStyle
	Frac [2]float64
}

func (p FracRect) Draw(c draw.Canvas, cell vg.Rectangle) {
	fx, fy := p.Frac[0], p.Frac[1]
	if fx == 0 && fy == 0 {
		fx, fy = 0.9, 0.5
	}
	style.FillRect(c, p.fill(), scaled(cell, fx, fy))
}

// FrameRect outlines the cell.
type FrameRect struct {
	PieceStyle
	Width vg.Length
}

func (p FrameRect) Draw(c draw.Canvas, cell vg.Rectangle) {
	w := p.Width
	if w <= 0 {
		w = 1
	}
	pts := style.Rect(cell)
	c.StrokeLines(style.Line(p.fill(), w), append(pts, pts[0]))
}

// Corner names the right angle of a [RightTri].
type Corner int

const (
	LowerLeft Corner = iota
	LowerRight
	UpperLeft
	UpperRight
)

// RightTri fills the half of the cell on the side of its right angle.
type RightTri struct {
	PieceStyle
	Corner Corner
}

func (p RightTri) Draw(c draw.Canvas, cell vg.Rectangle) {
	ll := cell.Min
	lr := vg.Point{X: cell.Max.X, Y: cell.Min.Y}
	ul := vg.Point{X: cell.Min.X, Y: cell.Max.Y}
	ur := cell.Max
	var pts []vg.Point
	switch p.Corner {
	case LowerRight:
		pts = []vg.Point{lr, ll, ur}
	case UpperLeft:
		pts = []vg.Point{ul, ll, ur}
	case UpperRight:
		pts = []vg.Point{ur, ul, lr}
	default:
		pts = []vg.Point{ll, lr, ul}
	}
	c.FillPolygon(p.fill(), pts)
}

// Marker draws a glyph at the cell center. A zero Radius fits the cell.
type Marker struct {
	PieceStyle
	Shape  draw.GlyphDrawer
	Radius vg.Length
}

func (p Marker) Draw(c draw.Canvas, cell vg.Rectangle) {
	shape := p.Shape
	if shape == nil {
		shape = draw.CircleGlyph{}
	}
	r := p.Radius
	if r <= 0 {
		size := cell.Size()
		r = 0.3 * min(size.X, size.Y)
	}
	c.DrawGlyph(draw.GlyphStyle{Color: p.fill(), Radius: r, Shape: shape}, center(cell))
}

// pieceLabel is the legend text of a piece: its label or its type name.
func pieceLabel(p Piece) string {
	if l := p.Style().Label; l != "" {
		return l
	}
	t := reflect.TypeOf(p)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

// scaled shrinks r around its center.
func scaled(r vg.Rectangle, fx, fy float64) vg.Rectangle {
	size := r.Size()
	dx := size.X * vg.Length(1-fx) / 2
	dy := size.Y * vg.Length(1-fy) / 2
	return vg.Rectangle{
		Min: vg.Point{X: r.Min.X + dx, Y: r.Min.Y + dy},
		Max: vg.Point{X: r.Max.X - dx, Y: r.Max.Y - dy},
	}
}

// LayersMesh draws pieces into cells. It has two modes:
//   - cell mode maps every cell label to one piece ([NewPieceMesh])
//   - layer mode stacks one numeric layer per piece and draws the piece
//     wherever its layer is non-zero ([NewLayersMesh])
type LayersMesh struct {
	cfg config

	data   *matrix.Matrix
	pieces map[string]Piece
	order  []string

	layers []*matrix.Matrix
	stack  []Piece
}

// NewPieceMesh returns a cell-mode mesh. Cells whose label has no piece stay
// empty.
func NewPieceMesh(data *matrix.Matrix, pieces map[string]Piece, opts ...Option) (*LayersMesh, error) {
	if data == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "piece mesh needs data")
	}
	if len(pieces) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "piece mesh needs at least one piece")
	}
	var order, rest []string
	for _, label := range data.Unique() {
		if _, ok := pieces[label]; ok {
			order = append(order, label)
		}
	}
	for label, p := range pieces {
		if p == nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "piece for %q is nil", label)
		}
		if !slices.Contains(order, label) {
			rest = append(rest, label)
		}
	}
	slices.Sort(rest)
	return &LayersMesh{cfg: newConfig(opts), data: data, pieces: pieces, order: append(order, rest...)}, nil
}

// NewLayersMesh returns a layer-mode mesh. layers[i] is drawn with pieces[i];
// all layers share one shape.
func NewLayersMesh(layers []*matrix.Matrix, pieces []Piece, opts ...Option) (*LayersMesh, error) {
	return newLayers(newConfig(opts), layers, pieces)
}

func newLayers(cfg config, layers []*matrix.Matrix, pieces []Piece) (*LayersMesh, error) {
	if len(layers) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "layers mesh needs at least one layer")
	}
	if len(layers) != len(pieces) {
		return nil, errors.New(errors.ErrCodeSizeMismatch, "got %d pieces for %d layers", len(pieces), len(layers))
	}
	for i, l := range layers {
		if l == nil || !l.IsNumeric() {
			return nil, errors.New(errors.ErrCodeInvalidType, "layer %d must be a numeric 0/1 matrix", i)
		}
		if pieces[i] == nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "piece %d is nil", i)
		}
		r0, c0 := layers[0].Dims()
		if r, c := l.Dims(); r != r0 || c != c0 {
			return nil, errors.New(errors.ErrCodeSizeMismatch, "layer %d is %dx%d, layer 0 is %dx%d", i, r, c, r0, c0)
		}
	}
	idx := make([]int, len(layers))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int { return pieces[a].Style().Z - pieces[b].Style().Z })
	p := &LayersMesh{cfg: cfg}
	for _, i := range idx {
		p.layers = append(p.layers, layers[i])
		p.stack = append(p.stack, pieces[i])
	}
	return p, nil
}

func (p *LayersMesh) Kind() string { return "layers" }

func (p *LayersMesh) Data() *matrix.Matrix {
	if p.data != nil {
		return p.data
	}
	return p.layers[0]
}

func (p *LayersMesh) cell(f Frame, i, n, j, k int) vg.Rectangle {
	r := f.Cell(i, n, j, k)
	if s := p.cfg.shrink; s != [2]float64{} {
		r = scaled(r, s[0], s[1])
	}
	return r
}

func (p *LayersMesh) Render(c draw.Canvas, v View) error {
	if err := requireData(p, v); err != nil {
		return err
	}
	f := NewFrame(c, v.Side)
	k, n := v.Data.Dims()
	if p.pieces != nil {
		for j := range k {
			for i := range n {
				if piece, ok := p.pieces[v.Data.Label(j, i)]; ok {
					piece.Draw(c, p.cell(f, i, n, j, k))
				}
			}
		}
		return nil
	}
	for li, layer := range p.layers {
		data := sliced(layer, v)
		for j := range k {
			for i := range n {
				if val := data.At(j, i); val != 0 && !math.IsNaN(val) {
					p.stack[li].Draw(c, p.cell(f, i, n, j, k))
				}
			}
		}
	}
	return nil
}

// Pieces returns the pieces in drawing order.
func (p *LayersMesh) Pieces() []Piece {
	if p.pieces == nil {
		return slices.Clone(p.stack)
	}
	out := make([]Piece, len(p.order))
	for i, label := range p.order {
		out[i] = p.pieces[label]
	}
	return out
}

func (p *LayersMesh) Legend() (legend.Legend, error) {
	l := &legend.Categorical{Title: p.cfg.label}
	for _, piece := range p.Pieces() {
		s := piece.Style()
		if s.NoLegend {
			continue
		}
		l.Entries = append(l.Entries, legend.Entry{Label: pieceLabel(piece), Color: s.fill(), Swatch: piece.Draw})
	}
	return l, nil
}

// MarkerMesh draws a glyph in every cell whose value is non-zero.
type MarkerMesh struct {
	*LayersMesh
}

// NewMarkerMesh returns a marker mesh over numeric 0/1 data. The label names
// the legend entry; the glyph defaults to a cross.
func NewMarkerMesh(data *matrix.Matrix, opts ...Option) (*MarkerMesh, error) {
	if data == nil || !data.IsNumeric() {
		return nil, errors.New(errors.ErrCodeInvalidType, "marker mesh needs numeric 0/1 data")
	}
	cfg := newConfig(opts)
	shape := cfg.glyph
	if shape == nil {
		shape = draw.CrossGlyph{}
	}
	marker := Marker{
		PieceStyle: PieceStyle{Color: cfg.colorOr(color.Black), Label: cfg.label},
		Shape:      shape,
	}
	inner, err := newLayers(config{shrink: cfg.shrink}, []*matrix.Matrix{data}, []Piece{marker})
	if err != nil {
		return nil, err
	}
	return &MarkerMesh{LayersMesh: inner}, nil
}

func (p *MarkerMesh) Kind() string { return "marker-mesh" }
