package upset

import (
	"image/color"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/matzehuels/crossplot/pkg/board"
	"github.com/matzehuels/crossplot/pkg/errors"
	"github.com/matzehuels/crossplot/pkg/layout"
	"github.com/matzehuels/crossplot/pkg/legend"
	"github.com/matzehuels/crossplot/pkg/matrix"
	"github.com/matzehuels/crossplot/pkg/plotter"
	"github.com/matzehuels/crossplot/pkg/style"
)

// Orient places the sets on the rows (Horizontal) or the columns (Vertical)
// of the dot matrix.
type Orient int

const (
	Horizontal Orient = iota
	Vertical
)

// Part is a side block of an UpSet plot. Its value is the block name.
type Part string

const (
	Intersections Part = "intersections"
	SetSizes      Part = "sets-size"
	SetLabels     Part = "sets-label"
)

// Highlight colors the subsets selected by Mark.
type Highlight struct {
	Mark
	Color color.Color
	Label string
}

// Default sizes, in inches.
const (
	DefaultCellSize          = 0.3
	DefaultIntersectionsSize = 1.2
	DefaultSetSizesSize      = 0.8
)

type config struct {
	orient     Orient
	sides      map[Part]layout.Side
	hidden     map[Part]bool
	sortBy     SortBy
	sortAsc    bool
	sortSets   bool
	setsAsc    bool
	setsOrder  []string
	filter     Filter
	color      color.Color
	setColors  map[string]color.Color
	shading    float64
	grid       float64
	radius     vg.Length
	lineWidth  vg.Length
	cell       float64
	highlights []Highlight
	board      []board.Option
}

// Option configures [New].
type Option func(*config)

// WithOrient sets the orientation. The default is Horizontal.
func WithOrient(o Orient) Option { return func(c *config) { c.orient = o } }

// Place moves a part to side. Intersections go across the subsets and the
// set parts across the sets.
func Place(part Part, side layout.Side) Option {
	return func(c *config) { c.sides[part] = side }
}

// Hide leaves parts out of the plot.
func Hide(parts ...Part) Option {
	return func(c *config) {
		for _, p := range parts {
			c.hidden[p] = true
		}
	}
}

// SortSubsets orders the subsets before plotting.
func SortSubsets(by SortBy, ascending bool) Option {
	return func(c *config) { c.sortBy, c.sortAsc = by, ascending }
}

// SortSets orders the sets by size before plotting.
func SortSets(ascending bool) Option {
	return func(c *config) { c.sortSets, c.setsAsc = true, ascending }
}

// SetsOrder fixes the set order.
func SetsOrder(names ...string) Option { return func(c *config) { c.setsOrder = names } }

// WithFilter keeps only the subsets within f.
func WithFilter(f Filter) Option { return func(c *config) { c.filter = f } }

// WithColor sets the color of dots, lines and bars.
func WithColor(clr color.Color) Option { return func(c *config) { c.color = clr } }

// WithSetColors colors the dots and size bars of the named sets.
func WithSetColors(m map[string]color.Color) Option { return func(c *config) { c.setColors = m } }

// WithShading sets the opacity of the dots behind absent memberships.
func WithShading(v float64) Option { return func(c *config) { c.shading = v } }

// WithGridShading sets the opacity of the bands behind every other set.
func WithGridShading(v float64) Option { return func(c *config) { c.grid = v } }

// WithRadius sets the dot radius. Zero fits the cell.
func WithRadius(r vg.Length) Option { return func(c *config) { c.radius = r } }

// WithLineWidth sets the width of the lines joining member dots.
func WithLineWidth(w vg.Length) Option { return func(c *config) { c.lineWidth = w } }

// WithCellSize sets the side of a dot-matrix cell in inches.
func WithCellSize(v float64) Option { return func(c *config) { c.cell = v } }

// WithHighlight colors the subsets selected by h. Later highlights win.
func WithHighlight(h Highlight) Option {
	return func(c *config) { c.highlights = append(c.highlights, h) }
}

// WithBoardOptions passes options to the underlying board. The figure size is
// computed from the cell size and default margin unless one of them sets it.
func WithBoardOptions(opts ...board.Option) Option {
	return func(c *config) { c.board = append(c.board, opts...) }
}

// Plot is an UpSet plot: a board whose main canvas is the membership dot
// matrix.
type Plot struct {
	*board.Board
	data   *Data
	orient Orient
}

// UpsetData returns the filtered and sorted data the plot draws.
func (p *Plot) UpsetData() *Data { return p.data }

// Orient returns the orientation.
func (p *Plot) Orient() Orient { return p.orient }

// New lays out an UpSet plot of d. d itself is not changed.
func New(d *Data, opts ...Option) (*Plot, error) {
	if d == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "upset plot needs data")
	}
	cfg := &config{
		sides:     make(map[Part]layout.Side),
		hidden:    make(map[Part]bool),
		color:     color.Gray{Y: 0x1a},
		shading:   0.3,
		grid:      0.1,
		lineWidth: 1.5,
		cell:      DefaultCellSize,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.cell <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidOption, "cell size must be positive, got %g", cfg.cell)
	}
	if err := cfg.resolveSides(); err != nil {
		return nil, err
	}

	data := d.clone()
	if cfg.setsOrder != nil || cfg.sortSets {
		if err := data.SortSets(cfg.setsOrder, cfg.setsAsc); err != nil {
			return nil, err
		}
	}
	data.Filter(cfg.filter)
	if cfg.sortBy != "" {
		if err := data.SortSubsets(cfg.sortBy, cfg.sortAsc); err != nil {
			return nil, err
		}
	}
	if len(data.subsets) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no subsets left after filtering")
	}

	highlight, err := cfg.subsetColors(data)
	if err != nil {
		return nil, err
	}
	setColors := make([]color.Color, len(data.sets))
	for j, s := range data.sets {
		setColors[j] = cfg.setColors[s]
	}

	m := memberships(data)
	if cfg.orient == Vertical {
		m = m.T()
	}
	layer := &dots{
		setsOnRows: cfg.orient == Horizontal,
		color:      cfg.color,
		sets:       setColors,
		subsets:    highlight,
		shading:    cfg.shading,
		grid:       cfg.grid,
		radius:     cfg.radius,
		lineWidth:  cfg.lineWidth,
	}

	var parts []part
	if !cfg.hidden[Intersections] {
		card := make([]float64, len(data.subsets))
		for i, s := range data.subsets {
			card[i] = float64(s.Cardinality)
		}
		bar, err := plotter.NewNumbers(card, plotter.WithColor(cfg.color), plotter.WithItemColors(highlight))
		if err != nil {
			return nil, err
		}
		parts = append(parts, part{Intersections, bar, DefaultIntersectionsSize})
	}
	if !cfg.hidden[SetSizes] {
		sizes := data.SetSizes()
		vals := make([]float64, len(sizes))
		for j, n := range sizes {
			vals[j] = float64(n)
		}
		bar, err := plotter.NewNumbers(vals, plotter.WithColor(cfg.color), plotter.WithItemColors(setColors))
		if err != nil {
			return nil, err
		}
		parts = append(parts, part{SetSizes, bar, DefaultSetSizesSize})
	}
	if !cfg.hidden[SetLabels] {
		labels, err := plotter.NewLabels(data.Sets())
		if err != nil {
			return nil, err
		}
		parts = append(parts, part{SetLabels, labels, float64(labels.Extent(cfg.sides[SetLabels]) / vg.Inch)})
	}

	var key *legend.Categorical
	for _, h := range cfg.highlights {
		if h.Label == "" {
			continue
		}
		if key == nil {
			key = &legend.Categorical{}
		}
		key.Entries = append(key.Entries, legend.Entry{Label: h.Label, Color: h.Color, Shape: legend.Circle})
	}

	// Size the figure to the cells plus every block on each axis.
	rows, cols := m.Dims()
	w := float64(cols)*cfg.cell + 2*board.DefaultMargin
	h := float64(rows)*cfg.cell + 2*board.DefaultMargin
	for _, pt := range parts {
		if cfg.sides[pt.name].Horizontal() {
			w += pt.size + pt.pad()
		} else {
			h += pt.size + pt.pad()
		}
	}
	if key != nil {
		w += float64(key.Size().X/vg.Inch) + 0.2
	}

	b, err := board.New(m, append([]board.Option{board.WithSize(w, h), board.WithName("upset")}, cfg.board...)...)
	if err != nil {
		return nil, err
	}
	if err := b.AddLayer(layer, board.Name("matrix")); err != nil {
		return nil, err
	}
	for _, pt := range parts {
		opts := []board.BlockOption{board.Name(string(pt.name)), board.Size(pt.size), board.Pad(pt.pad())}
		if err := b.Attach(cfg.sides[pt.name], pt.p, opts...); err != nil {
			return nil, err
		}
	}
	if key != nil {
		if err := b.CustomLegend("highlights", func() (legend.Legend, error) { return key, nil }); err != nil {
			return nil, err
		}
		if err := b.AddLegends(layout.Right); err != nil {
			return nil, err
		}
	}
	return &Plot{Board: b, data: data, orient: cfg.orient}, nil
}

type part struct {
	name Part
	p    plotter.Plotter
	size float64
}

func (p part) pad() float64 {
	if p.name == SetLabels {
		return 0
	}
	return 0.05
}

// resolveSides fills in default sides and rejects parts placed across the
// wrong axis.
func (c *config) resolveSides() error {
	subsetSides := [2]layout.Side{layout.Top, layout.Bottom}
	setSides := [2]layout.Side{layout.Left, layout.Right}
	defaults := map[Part]layout.Side{Intersections: layout.Top, SetSizes: layout.Left, SetLabels: layout.Right}
	if c.orient == Vertical {
		subsetSides, setSides = setSides, subsetSides
		defaults = map[Part]layout.Side{Intersections: layout.Right, SetSizes: layout.Top, SetLabels: layout.Bottom}
	}
	for part, def := range defaults {
		side, ok := c.sides[part]
		if !ok {
			c.sides[part] = def
			continue
		}
		allowed := setSides
		if part == Intersections {
			allowed = subsetSides
		}
		if side != allowed[0] && side != allowed[1] {
			return errors.New(errors.ErrCodeInvalidSide, "%s must be on %s or %s, got %s", part, allowed[0], allowed[1], side)
		}
	}
	for part := range c.sides {
		if _, ok := defaults[part]; !ok {
			return errors.New(errors.ErrCodeInvalidName, "unknown upset part %q", part)
		}
	}
	if c.sides[SetSizes] == c.sides[SetLabels] && !c.hidden[SetSizes] && !c.hidden[SetLabels] {
		return errors.New(errors.ErrCodeInvalidSide, "set sizes and set labels share %s", c.sides[SetSizes])
	}
	return nil
}

// subsetColors returns the highlight color of every subset, nil where none
// applies.
func (c *config) subsetColors(d *Data) ([]color.Color, error) {
	if len(c.highlights) == 0 {
		return nil, nil
	}
	out := make([]color.Color, len(d.subsets))
	for _, h := range c.highlights {
		marked, err := d.Mark(h.Mark)
		if err != nil {
			return nil, err
		}
		for i, on := range marked {
			if on {
				out[i] = h.Color
			}
		}
	}
	return out, nil
}

// memberships returns the sets by subsets 0/1 matrix.
func memberships(d *Data) *matrix.Matrix {
	k, n := len(d.sets), len(d.subsets)
	vals := make([]float64, k*n)
	for i, s := range d.subsets {
		for j, m := range s.Members {
			if m {
				vals[j*n+i] = 1
			}
		}
	}
	m, _ := matrix.New(k, n, vals)
	return m
}

// dots draws the membership matrix: a band behind every other set, a faint
// dot per cell, a dot per membership and a line through each subset.
type dots struct {
	setsOnRows bool
	color      color.Color
	sets       []color.Color
	subsets    []color.Color
	shading    float64
	grid       float64
	radius     vg.Length
	lineWidth  vg.Length
}

func (p *dots) Kind() string { return "upset-matrix" }

func (p *dots) Render(c draw.Canvas, v plotter.View) error {
	if v.Data == nil {
		return errors.New(errors.ErrCodeInvalidInput, "%s has no data to draw", p.Kind())
	}
	f := plotter.NewFrame(c, layout.Main)
	k, n := v.Data.Dims()
	nsets, nsub := k, n
	if !p.setsOnRows {
		nsets, nsub = n, k
	}
	cell := func(set, sub int) vg.Rectangle {
		if p.setsOnRows {
			return f.Cell(sub, n, set, k)
		}
		return f.Cell(set, n, sub, k)
	}
	member := func(set, sub int) bool {
		if p.setsOnRows {
			return v.Data.At(set, sub) != 0
		}
		return v.Data.At(sub, set) != 0
	}
	setIdx, subIdx := v.Indices, v.Cross
	if !p.setsOnRows {
		setIdx, subIdx = v.Cross, v.Indices
	}

	r := p.radius
	if r <= 0 {
		size := cell(0, 0).Size()
		r = 0.3 * min(size.X, size.Y)
	}
	glyph := func(clr color.Color, at vg.Rectangle) {
		c.DrawGlyph(draw.GlyphStyle{Color: clr, Radius: r, Shape: draw.CircleGlyph{}}, center(at))
	}

	if p.grid > 0 {
		band := fade(color.Black, p.grid)
		for s := range nsets {
			if original(setIdx, s)%2 != 0 {
				continue
			}
			a, b := cell(s, 0), cell(s, nsub-1)
			style.FillRect(c, band, union(a, b))
		}
	}
	if p.shading > 0 {
		bg := fade(p.color, p.shading)
		for s := range nsets {
			for u := range nsub {
				glyph(bg, cell(s, u))
			}
		}
	}
	for u := range nsub {
		hl := pick(p.subsets, original(subIdx, u))
		lo, hi := -1, -1
		for s := range nsets {
			if !member(s, u) {
				continue
			}
			if lo < 0 {
				lo = s
			}
			hi = s
		}
		if lo >= 0 && hi > lo {
			line := style.Line(orDefault(hl, p.color), p.lineWidth)
			a, b := center(cell(lo, u)), center(cell(hi, u))
			c.StrokeLine2(line, a.X, a.Y, b.X, b.Y)
		}
		for s := range nsets {
			if !member(s, u) {
				continue
			}
			clr := orDefault(pick(p.sets, original(setIdx, s)), p.color)
			if hl != nil {
				clr = hl
			}
			glyph(clr, cell(s, u))
		}
	}
	return nil
}

// original maps a chunk position to its index in the board data.
func original(idx []int, i int) int {
	if i < len(idx) {
		return idx[i]
	}
	return i
}

func pick(colors []color.Color, i int) color.Color {
	if i < 0 || i >= len(colors) {
		return nil
	}
	return colors[i]
}

func orDefault(c, def color.Color) color.Color {
	if c == nil {
		return def
	}
	return c
}

// fade returns c at opacity alpha.
func fade(c color.Color, alpha float64) color.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = uint8(float64(n.A) * min(max(alpha, 0), 1))
	return n
}

func center(r vg.Rectangle) vg.Point {
	return vg.Point{X: (r.Min.X + r.Max.X) / 2, Y: (r.Min.Y + r.Max.Y) / 2}
}

func union(a, b vg.Rectangle) vg.Rectangle {
	return vg.Rectangle{
		Min: vg.Point{X: min(a.Min.X, b.Min.X), Y: min(a.Min.Y, b.Min.Y)},
		Max: vg.Point{X: max(a.Max.X, b.Max.X), Y: max(a.Max.Y, b.Max.Y)},
	}
}
