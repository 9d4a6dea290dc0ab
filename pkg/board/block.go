package board

import (
	"fmt"

	"github.com/google/uuid"
	"gonum.org/v1/plot/vg"

	"github.com/matzehuels/crossplot/pkg/errors"
	"github.com/matzehuels/crossplot/pkg/layout"
	"github.com/matzehuels/crossplot/pkg/matrix"
	"github.com/matzehuels/crossplot/pkg/plotter"
)

// legendTrack is the block name reserved for the legend stack.
const legendTrack = "legends"

// Block is a plotter placed on one side of the board, or layered on the main
// canvas.
type Block struct {
	Name    string
	Side    layout.Side
	Plotter plotter.Plotter
	// Size is in inches when Absolute, otherwise a share of the free space.
	Size     float64
	Absolute bool
	// Pad is the space between the block and its inner neighbour, in inches.
	Pad    float64
	Legend bool

	sized bool
}

// BlockOption configures a block.
type BlockOption func(*Block)

// Name sets the block name. Unnamed blocks get "<kind>-<id>".
func Name(name string) BlockOption { return func(b *Block) { b.Name = name } }

// Size sets the block depth.
func Size(v float64) BlockOption {
	return func(b *Block) { b.Size, b.sized = v, true }
}

// Absolute makes Size a length in inches. This is the default.
func Absolute() BlockOption { return func(b *Block) { b.Absolute = true } }

// Relative makes Size a weight shared with the main canvas, which weighs 1.
func Relative() BlockOption { return func(b *Block) { b.Absolute = false } }

// Pad sets the space between the block and its inner neighbour.
func Pad(v float64) BlockOption { return func(b *Block) { b.Pad = v } }

// Legend turns the block's legend on or off. Legends are on by default.
func Legend(on bool) BlockOption { return func(b *Block) { b.Legend = on } }

func (b *Board) AddLeft(p plotter.Plotter, opts ...BlockOption) error {
	return b.Attach(layout.Left, p, opts...)
}

func (b *Board) AddRight(p plotter.Plotter, opts ...BlockOption) error {
	return b.Attach(layout.Right, p, opts...)
}

func (b *Board) AddTop(p plotter.Plotter, opts ...BlockOption) error {
	return b.Attach(layout.Top, p, opts...)
}

func (b *Board) AddBottom(p plotter.Plotter, opts ...BlockOption) error {
	return b.Attach(layout.Bottom, p, opts...)
}

// Attach places p on side, outside every block already there. Attaching to
// [layout.Main] adds a layer.
func (b *Board) Attach(side layout.Side, p plotter.Plotter, opts ...BlockOption) error {
	if side == layout.Main {
		return b.AddLayer(p, opts...)
	}
	blk, err := b.prepare(side, p, opts)
	if err != nil {
		return err
	}
	return b.commit(blk)
}

// AddLayer draws p on the main canvas, above earlier layers.
func (b *Board) AddLayer(p plotter.Plotter, opts ...BlockOption) error {
	blk, err := b.prepare(layout.Main, p, opts)
	if err != nil {
		return err
	}
	return b.commit(blk)
}

// AddTitle attaches a title block named "title".
func (b *Board) AddTitle(side layout.Side, text string, opts ...plotter.Option) error {
	if side == layout.Main {
		return errors.New(errors.ErrCodeInvalidSide, "a title cannot sit on the main canvas")
	}
	return b.Attach(side, plotter.NewTitle(text, opts...), Name("title"))
}

// prepare builds and validates a block without touching the board.
func (b *Board) prepare(side layout.Side, p plotter.Plotter, opts []BlockOption) (*Block, error) {
	if !validSide(side) {
		return nil, errors.New(errors.ErrCodeInvalidSide, "unknown side %d", side)
	}
	if p == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "block needs a plotter")
	}
	blk := &Block{Side: side, Plotter: p, Size: DefaultBlockSize, Absolute: true, Legend: true}
	for _, opt := range opts {
		opt(blk)
	}
	if blk.Name == "" {
		blk.Name = fmt.Sprintf("%s-%s", p.Kind(), uuid.NewString()[:8])
	}
	if err := errors.ValidateName(blk.Name); err != nil {
		return nil, err
	}
	if !blk.sized {
		if s, ok := p.(plotter.Sizer); ok && side != layout.Main {
			blk.Size = float64(s.Extent(side) / vg.Inch)
		}
	}
	if blk.Size < 0 || blk.Pad < 0 {
		return nil, errors.New(errors.ErrCodeInvalidOption, "block %q has negative size or pad", blk.Name)
	}

	for _, other := range b.stack(side) {
		if other.Name == blk.Name {
			return nil, errors.New(errors.ErrCodeDuplicateName, "block %q already exists on %s", blk.Name, side)
		}
	}
	if blk.Name == legendTrack && b.legend != nil && b.legend.side == side {
		return nil, errors.New(errors.ErrCodeDuplicateName, "block name %q is taken by the legends on %s", legendTrack, side)
	}
	if err := b.checkAligned(side, p); err != nil {
		return nil, errors.Annotate(err, "block %q", blk.Name)
	}
	if err := b.checkFits(blk); err != nil {
		return nil, err
	}
	return blk, nil
}

// checkFits rejects a block whose absolute depth, together with the margins,
// pads and absolute blocks already on its axis, exceeds the figure.
func (b *Board) checkFits(blk *Block) error {
	if blk.Side == layout.Main {
		return nil
	}
	extent, axis := b.width, matrix.Cols
	if !blk.Side.Horizontal() {
		extent, axis = b.height, matrix.Rows
	}
	fixed := 2*b.margin + b.gaps(b.Partition(axis))
	add := func(o *Block) {
		fixed += o.Pad
		if o.Absolute {
			fixed += o.Size
		}
	}
	add(blk)
	for _, side := range []layout.Side{blk.Side, blk.Side.Opposite()} {
		for _, o := range b.blocks[side] {
			add(o)
		}
	}
	if fixed > extent+1e-9 {
		return errors.New(errors.ErrCodeInvalidOption,
			"block %q does not fit: blocks on the %s axis need %.4g in, the figure is %.4g in",
			blk.Name, axis, fixed, extent)
	}
	return nil
}

// commit registers the block's legend and appends it to its stack.
func (b *Board) commit(blk *Block) error {
	if lg, ok := blk.Plotter.(plotter.Legender); ok && blk.Legend {
		key := blk.Name
		if b.legends.Has(key) {
			key = blk.Side.String() + "/" + blk.Name
		}
		if err := b.legends.Add(key, lg.Legend); err != nil {
			return err
		}
	}
	if binder, ok := blk.Plotter.(plotter.Binder); ok {
		binder.Bind(b.data)
	}
	if blk.Side == layout.Main {
		b.layers = append(b.layers, blk)
	} else {
		b.blocks[blk.Side] = append(b.blocks[blk.Side], blk)
	}
	b.touch()
	b.logger.Debug("attached block", "side", blk.Side, "name", blk.Name, "kind", blk.Plotter.Kind(),
		"size", blk.Size, "absolute", blk.Absolute)
	return nil
}

func (b *Board) stack(side layout.Side) []*Block {
	if side == layout.Main {
		return b.layers
	}
	return b.blocks[side]
}

// checkAligned verifies that a plotter's items match the axis it follows.
func (b *Board) checkAligned(side layout.Side, p plotter.Plotter) error {
	rows, cols := b.data.Dims()
	if ds, ok := p.(plotter.DataSource); ok && ds.Data() != nil {
		r, c := ds.Data().Dims()
		if side == layout.Main {
			if r != rows || c != cols {
				return errors.New(errors.ErrCodeSizeMismatch, "layer data is %dx%d, main data is %dx%d", r, c, rows, cols)
			}
			return nil
		}
		if n := b.data.Len(side.Axis()); c != n {
			return errors.New(errors.ErrCodeSizeMismatch, "%s data has %d items, the %s axis has %d",
				p.Kind(), c, side.Axis(), n)
		}
	}
	if al, ok := p.(plotter.Aligned); ok && side != layout.Main {
		if n := b.data.Len(side.Axis()); al.Len() != n {
			return errors.New(errors.ErrCodeSizeMismatch, "%s has %d items, the %s axis has %d",
				p.Kind(), al.Len(), side.Axis(), n)
		}
	}
	return nil
}

func validSide(side layout.Side) bool {
	switch side {
	case layout.Main, layout.Left, layout.Right, layout.Top, layout.Bottom:
		return true
	}
	return false
}
