package board

import (
	"github.com/matzehuels/crossplot/pkg/errors"
	"github.com/matzehuels/crossplot/pkg/layout"
	"github.com/matzehuels/crossplot/pkg/matrix"
	"github.com/matzehuels/crossplot/pkg/partition"
	"github.com/matzehuels/crossplot/pkg/plotter"
)

// Split partitions axis. Clustering requested earlier, for example by a
// dendrogram, is kept unless spec carries its own.
func (b *Board) Split(axis matrix.Axis, spec partition.Spec) error {
	if spec.Cluster == nil {
		spec.Cluster = b.specs[axis].Cluster
	}
	return b.apply(axis, spec)
}

// SplitLabels splits axis by one label per index. A nil order uses the
// sorted unique labels.
func (b *Board) SplitLabels(axis matrix.Axis, labels, order []string) error {
	return b.Split(axis, partition.Spec{Labels: labels, Order: order})
}

// SplitAt cuts axis into contiguous chunks before each breakpoint.
func (b *Board) SplitAt(axis matrix.Axis, breakpoints ...int) error {
	return b.Split(axis, partition.Spec{Breakpoints: breakpoints})
}

// Cluster orders axis by hierarchical clustering, within chunks when the
// axis is split.
func (b *Board) Cluster(axis matrix.Axis, c partition.ClusterSpec) error {
	spec := b.specs[axis]
	spec.Cluster = &c
	return b.apply(axis, spec)
}

func (b *Board) apply(axis matrix.Axis, spec partition.Spec) error {
	res, err := partition.Compute(b.data, axis, spec)
	if err != nil {
		return errors.Annotate(err, "partition %s", axis)
	}
	b.specs[axis] = spec
	b.parts[axis] = res
	b.touch()
	b.logger.Debug("partitioned axis", "axis", axis, "mode", res.Mode, "chunks", len(res.Chunks),
		"clustered", res.Clustered())
	return nil
}

// DendrogramOption configures [Board.AddDendrogram].
type DendrogramOption func(*dendrogramConfig)

type dendrogramConfig struct {
	cluster   partition.ClusterSpec
	recluster bool
	block     []BlockOption
	style     []plotter.Option
}

// Method sets the linkage method used when the dendrogram clusters.
func Method(name string) DendrogramOption {
	return func(c *dendrogramConfig) { c.cluster.Method = name }
}

// Metric sets the distance metric used when the dendrogram clusters.
func Metric(name string) DendrogramOption {
	return func(c *dendrogramConfig) { c.cluster.Metric = name }
}

// KeepChunkOrder clusters within chunks but leaves the chunk order alone.
func KeepChunkOrder() DendrogramOption {
	return func(c *dendrogramConfig) { c.cluster.KeepChunkOrder = true }
}

// Recluster clusters an axis that was split without clustering.
func Recluster() DendrogramOption {
	return func(c *dendrogramConfig) { c.recluster = true }
}

// WithBlock passes block options to the dendrogram block.
func WithBlock(opts ...BlockOption) DendrogramOption {
	return func(c *dendrogramConfig) { c.block = append(c.block, opts...) }
}

// WithStyle passes plotter options to the dendrogram.
func WithStyle(opts ...plotter.Option) DendrogramOption {
	return func(c *dendrogramConfig) { c.style = append(c.style, opts...) }
}

// AddDendrogram attaches a dendrogram for the axis side follows.
//
// An axis that is neither split nor clustered gets clustered, which reorders
// it. An axis that is already clustered keeps its trees. An axis split by
// labels or breakpoints without clustering keeps its declared order and the
// dendrogram shows flat trees, unless [Recluster] is given.
func (b *Board) AddDendrogram(side layout.Side, opts ...DendrogramOption) error {
	if side == layout.Main || !validSide(side) {
		return errors.New(errors.ErrCodeInvalidSide, "a dendrogram needs an outer side, got %s", side)
	}
	var cfg dendrogramConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	axis := side.Axis()
	spec := b.specs[axis]
	var res *partition.Result
	switch {
	case spec.Cluster != nil:
		// Reuse the axis trees.
	case spec.Mode() == partition.ModeNone || cfg.recluster:
		c := cfg.cluster
		spec.Cluster = &c
		var err error
		if res, err = partition.Compute(b.data, axis, spec); err != nil {
			return errors.Annotate(err, "cluster %s for dendrogram", axis)
		}
	default:
		b.logger.Debug("dendrogram keeps declared chunk order", "axis", axis, "mode", spec.Mode())
	}

	blk, err := b.prepare(side, plotter.NewDendrogram(cfg.style...), cfg.block)
	if err != nil {
		return err
	}
	if err := b.commit(blk); err != nil {
		return err
	}
	if res != nil {
		b.specs[axis] = spec
		b.parts[axis] = res
		b.logger.Debug("clustered axis for dendrogram", "axis", axis, "chunks", len(res.Chunks))
	}
	return nil
}
