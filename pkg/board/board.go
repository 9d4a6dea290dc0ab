// Package board composes a figure around one data matrix.
//
// A [Board] owns the main canvas and four stacks of side blocks. Blocks are
// attached with [Board.AddLeft], [Board.AddRight], [Board.AddTop],
// [Board.AddBottom] or [Board.Attach]; layers drawn on the main canvas are
// added with [Board.AddLayer]. The row and column axes can be split by labels
// or breakpoints and clustered; every block aligned with an axis follows the
// resulting chunks.
//
// # Lifecycle
//
// A board starts Empty, becomes Configured on the first change and Rendered
// after [Board.Render]. Regions exist only in the Rendered state; any further
// change drops them until the next render. Failed calls leave the board
// untouched.
//
//	b, _ := board.New(m, board.WithSize(4, 3))
//	_ = b.AddLeft(labels, board.Name("genes"))
//	_ = b.AddDendrogram(layout.Top)
//	_ = b.Render()
//	regions, _ := b.Region(layout.Left, "genes")
package board

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/crossplot/pkg/errors"
	"github.com/matzehuels/crossplot/pkg/layout"
	"github.com/matzehuels/crossplot/pkg/legend"
	"github.com/matzehuels/crossplot/pkg/matrix"
	"github.com/matzehuels/crossplot/pkg/partition"
	"github.com/matzehuels/crossplot/pkg/plotter"
)

// State is the lifecycle stage of a board.
type State int

const (
	Empty State = iota
	Configured
	Rendered
)

func (s State) String() string {
	switch s {
	case Configured:
		return "configured"
	case Rendered:
		return "rendered"
	}
	return "empty"
}

// Defaults, in inches.
const (
	DefaultWidth     = 4.0
	DefaultHeight    = 4.0
	DefaultMargin    = 0.1
	DefaultChunkGap  = 0.05
	DefaultBlockSize = 0.5
)

// Board is a figure under construction.
type Board struct {
	name     string
	data     *matrix.Matrix
	width    float64
	height   float64
	margin   float64
	chunkGap float64
	logger   *log.Logger

	blocks  map[layout.Side][]*Block
	layers  []*Block
	specs   map[matrix.Axis]partition.Spec
	parts   map[matrix.Axis]*partition.Result
	legends *legend.Registry
	legend  *legendConfig

	state State
	frame *frame
}

// Option configures a board.
type Option func(*Board)

// WithSize sets the figure width and height in inches.
func WithSize(w, h float64) Option {
	return func(b *Board) { b.width, b.height = w, h }
}

// WithMargin sets the blank border around the figure in inches.
func WithMargin(m float64) Option { return func(b *Board) { b.margin = m } }

// WithChunkGap sets the space between chunks of a split axis in inches.
func WithChunkGap(g float64) Option { return func(b *Board) { b.chunkGap = g } }

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option { return func(b *Board) { b.logger = l } }

// WithName names the board.
func WithName(name string) Option { return func(b *Board) { b.name = name } }

// New returns an empty board anchored to m.
func New(m *matrix.Matrix, opts ...Option) (*Board, error) {
	if m == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "board needs a data matrix")
	}
	b := &Board{
		name:     "figure",
		data:     m,
		width:    DefaultWidth,
		height:   DefaultHeight,
		margin:   DefaultMargin,
		chunkGap: DefaultChunkGap,
		blocks:   make(map[layout.Side][]*Block),
		specs:    make(map[matrix.Axis]partition.Spec),
		parts:    make(map[matrix.Axis]*partition.Result),
		legends:  legend.NewRegistry(),
	}
	for _, opt := range opts {
		opt(b)
	}
	switch {
	case b.width <= 0 || b.height <= 0:
		return nil, errors.New(errors.ErrCodeInvalidOption, "figure size must be positive, got %gx%g", b.width, b.height)
	case b.margin < 0:
		return nil, errors.New(errors.ErrCodeInvalidOption, "margin must not be negative, got %g", b.margin)
	case b.chunkGap < 0:
		return nil, errors.New(errors.ErrCodeInvalidOption, "chunk gap must not be negative, got %g", b.chunkGap)
	}
	if err := errors.ValidateName(b.name); err != nil {
		return nil, err
	}
	if b.logger == nil {
		b.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return b, nil
}

// NewHeatmap returns a board with a color mesh of m on the main canvas.
func NewHeatmap(m *matrix.Matrix, mesh []plotter.Option, opts ...Option) (*Board, error) {
	b, err := New(m, opts...)
	if err != nil {
		return nil, err
	}
	p, err := plotter.NewColorMesh(nil, mesh...)
	if err != nil {
		return nil, err
	}
	if err := b.AddLayer(p, Name("heatmap")); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Board) Name() string         { return b.name }
func (b *Board) Data() *matrix.Matrix { return b.data }
func (b *Board) State() State         { return b.state }

// Size returns the figure width and height in inches.
func (b *Board) Size() (w, h float64) { return b.width, b.height }

// Partition returns the current partition of axis. An axis that was never
// split or clustered has a single chunk in original order.
func (b *Board) Partition(axis matrix.Axis) *partition.Result {
	if r, ok := b.parts[axis]; ok {
		return r
	}
	return partition.None(axis, b.data.Len(axis))
}

// touch records a configuration change and drops rendered regions.
func (b *Board) touch() {
	b.state = Configured
	b.frame = nil
}
