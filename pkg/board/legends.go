package board

import (
	"gonum.org/v1/plot/vg"

	"github.com/matzehuels/crossplot/pkg/errors"
	"github.com/matzehuels/crossplot/pkg/layout"
	"github.com/matzehuels/crossplot/pkg/legend"
)

type legendConfig struct {
	side  layout.Side
	order []string
	size  float64
	pad   float64
}

// LegendOption configures [Board.AddLegends].
type LegendOption func(*legendConfig)

// Order lists legends to draw first, by block or custom legend name. Names
// are resolved at render time, so a legend may be registered after
// AddLegends; a name that is still unknown then fails the render.
func Order(names ...string) LegendOption {
	return func(c *legendConfig) { c.order = names }
}

// LegendSize fixes the depth of the legend block in inches. By default the
// block fits the legends.
func LegendSize(v float64) LegendOption { return func(c *legendConfig) { c.size = v } }

// LegendPad sets the space between the legends and the blocks inside them.
func LegendPad(v float64) LegendOption { return func(c *legendConfig) { c.pad = v } }

// AddLegends collects every registered legend into one block on side,
// outside all other blocks there. Calling it again moves the block.
func (b *Board) AddLegends(side layout.Side, opts ...LegendOption) error {
	if side == layout.Main || !validSide(side) {
		return errors.New(errors.ErrCodeInvalidSide, "legends need an outer side, got %s", side)
	}
	cfg := &legendConfig{side: side, pad: 0.1}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.size < 0 || cfg.pad < 0 {
		return errors.New(errors.ErrCodeInvalidOption, "legend size and pad must not be negative")
	}
	for _, blk := range b.blocks[side] {
		if blk.Name == legendTrack {
			return errors.New(errors.ErrCodeDuplicateName, "block name %q is taken on %s", legendTrack, side)
		}
	}
	b.legend = cfg
	b.touch()
	return nil
}

// CustomLegend registers a legend that belongs to no block.
func (b *Board) CustomLegend(name string, f legend.Factory) error {
	if f == nil {
		return errors.New(errors.ErrCodeInvalidInput, "legend %q needs a factory", name)
	}
	if err := b.legends.Add(name, f); err != nil {
		return err
	}
	b.touch()
	return nil
}

// Legends returns the registered legend names in registration order.
func (b *Board) Legends() []string { return b.legends.Names() }

// legendStack builds the legend block content. It returns nil when no legend
// block was requested.
func (b *Board) legendStack() (*legend.Stack, error) {
	if b.legend == nil {
		return nil, nil
	}
	ls, err := b.legends.Build(b.legend.order)
	if err != nil {
		return nil, err
	}
	return &legend.Stack{Legends: ls, Vertical: b.legend.side.Horizontal()}, nil
}

// legendTrackFor sizes the legend block along the axis it stacks on.
func (b *Board) legendTrackFor(s *legend.Stack) layout.Track {
	size := b.legend.size
	if size == 0 {
		sz := s.Size()
		d := sz.Y
		if b.legend.side.Horizontal() {
			d = sz.X
		}
		size = float64(d / vg.Inch)
	}
	return layout.Track{Name: legendTrack, Size: size, Pad: b.legend.pad, Absolute: true}
}
