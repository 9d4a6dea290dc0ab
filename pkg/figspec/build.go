package figspec

import (
	"context"
	"image/color"
	"time"

	"gonum.org/v1/plot/vg"

	"github.com/matzehuels/crossplot/pkg/board"
	"github.com/matzehuels/crossplot/pkg/errors"
	"github.com/matzehuels/crossplot/pkg/layout"
	"github.com/matzehuels/crossplot/pkg/matrix"
	"github.com/matzehuels/crossplot/pkg/observability"
	"github.com/matzehuels/crossplot/pkg/palette"
	"github.com/matzehuels/crossplot/pkg/partition"
	"github.com/matzehuels/crossplot/pkg/plotter"
)

// Build resolves the data of fig and assembles a board. Extra options (a
// logger, typically) are applied after the ones derived from fig.
func Build(ctx context.Context, fig *Figure, r *Resolver, opts ...board.Option) (*board.Board, error) {
	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, fig.Name)
	start := time.Now()

	b, err := build(ctx, fig, r, opts)
	blocks := 0
	if b != nil {
		blocks = len(fig.Blocks)
	}
	hooks.OnBuildComplete(ctx, fig.Name, blocks, time.Since(start), err)
	return b, err
}

type builder struct {
	ctx context.Context
	fig *Figure
	r   *Resolver
	src *source
	b   *board.Board
}

func build(ctx context.Context, fig *Figure, r *Resolver, extra []board.Option) (*board.Board, error) {
	src, err := r.source(ctx, fig.Data)
	if err != nil {
		return nil, errors.Annotate(err, "main data")
	}

	var opts []board.Option
	if fig.Name != "" {
		opts = append(opts, board.WithName(fig.Name))
	}
	if fig.Width > 0 || fig.Height > 0 {
		w, h := fig.Width, fig.Height
		if w == 0 {
			w = board.DefaultWidth
		}
		if h == 0 {
			h = board.DefaultHeight
		}
		opts = append(opts, board.WithSize(w, h))
	}
	if fig.Margin != nil {
		opts = append(opts, board.WithMargin(*fig.Margin))
	}
	if fig.ChunkGap != nil {
		opts = append(opts, board.WithChunkGap(*fig.ChunkGap))
	}
	b, err := board.New(src.m, append(opts, extra...)...)
	if err != nil {
		return nil, err
	}

	bl := &builder{ctx: ctx, fig: fig, r: r, src: src, b: b}
	steps := []func() error{bl.layers, bl.splits, bl.blocks, bl.legends}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (bl *builder) layers() error {
	layers := bl.fig.Layers
	if bl.fig.Main != nil {
		layers = append([]Layer{*bl.fig.Main}, layers...)
	}
	if len(layers) == 0 {
		kind := "heatmap"
		if !bl.src.m.IsNumeric() {
			kind = "colors"
		}
		layers = []Layer{{Kind: kind, Name: kind}}
	}
	for i, l := range layers {
		p, err := bl.layer(l)
		if err != nil {
			return errors.Annotate(err, "layers[%d]", i)
		}
		var opts []board.BlockOption
		if l.Name != "" {
			opts = append(opts, board.Name(l.Name))
		}
		if err := bl.b.AddLayer(p, opts...); err != nil {
			return errors.Annotate(err, "layers[%d]", i)
		}
	}
	return nil
}

func (bl *builder) layer(l Layer) (plotter.Plotter, error) {
	style, err := styleOptions(l.Style)
	if err != nil {
		return nil, err
	}
	m := bl.src.m
	switch l.Kind {
	case "heatmap":
		return plotter.NewColorMesh(m, style...)
	case "colors":
		return plotter.NewColors(m, style...)
	case "textmesh":
		return plotter.NewTextMesh(m, style...), nil
	case "markermesh":
		return plotter.NewMarkerMesh(m, style...)
	case "sizedmesh":
		if l.Size == nil {
			return plotter.NewSizedMesh(m, nil, style...)
		}
		size, err := bl.r.Matrix(bl.ctx, *l.Size)
		if err != nil {
			return nil, err
		}
		return plotter.NewSizedMesh(size, m, style...)
	}
	return nil, errors.New(errors.ErrCodeInvalidSpec, "unknown layer kind %q", l.Kind)
}

func (bl *builder) splits() error {
	for _, ax := range []struct {
		axis  matrix.Axis
		split *Split
	}{{matrix.Rows, bl.fig.Rows}, {matrix.Cols, bl.fig.Cols}} {
		if ax.split == nil {
			continue
		}
		spec, err := bl.partitionSpec(ax.axis, ax.split)
		if err != nil {
			return errors.Annotate(err, "%s", ax.axis)
		}
		if err := bl.b.Split(ax.axis, spec); err != nil {
			return err
		}
	}
	return nil
}

func (bl *builder) partitionSpec(axis matrix.Axis, s *Split) (partition.Spec, error) {
	spec := partition.Spec{Labels: s.Labels, Order: s.Order, Breakpoints: s.Breakpoints}
	if s.LabelsFrom != "" {
		if (axis == matrix.Rows) == bl.fig.Data.Transpose {
			return spec, errors.New(errors.ErrCodeInvalidSpec, "labels_from needs the table rows on this axis; use labels instead")
		}
		labels, err := bl.src.table.Column(s.LabelsFrom)
		if err != nil {
			return spec, err
		}
		spec.Labels = labels
	}
	if s.Cluster != nil {
		spec.Cluster = &partition.ClusterSpec{
			Metric:         s.Cluster.Metric,
			Method:         s.Cluster.Method,
			K:              s.Cluster.K,
			KeepChunkOrder: s.Cluster.KeepChunkOrder,
		}
	}
	return spec, nil
}

func (bl *builder) blocks() error {
	for i, blk := range bl.fig.Blocks {
		if err := bl.block(blk); err != nil {
			return errors.Annotate(err, "blocks[%d] (%s %s)", i, blk.Side, blk.Kind)
		}
	}
	return nil
}

func (bl *builder) block(blk Block) error {
	side, err := layout.ParseSide(blk.Side)
	if err != nil {
		return err
	}
	opts := blockOptions(blk)
	style, err := styleOptions(blk.Style)
	if err != nil {
		return err
	}

	switch blk.Kind {
	case "title":
		return bl.b.AddTitle(side, blk.Text, style...)
	case "dendrogram":
		dopts := []board.DendrogramOption{board.WithBlock(opts...), board.WithStyle(style...)}
		if blk.Method != "" {
			dopts = append(dopts, board.Method(blk.Method))
		}
		if blk.Metric != "" {
			dopts = append(dopts, board.Metric(blk.Metric))
		}
		if blk.Recluster {
			dopts = append(dopts, board.Recluster())
		}
		return bl.b.AddDendrogram(side, dopts...)
	}

	p, err := bl.plotter(side, blk, style)
	if err != nil {
		return err
	}
	return bl.b.Attach(side, p, opts...)
}

func (bl *builder) plotter(side layout.Side, blk Block, style []plotter.Option) (plotter.Plotter, error) {
	switch blk.Kind {
	case "labels":
		labels := blk.Labels
		if labels == nil {
			labels = bl.names(side.Axis())
		}
		return plotter.NewLabels(labels, style...)
	case "chunk":
		return plotter.NewChunk(blk.Labels, nil, style...), nil
	case "arc":
		links := make([]plotter.Link, len(blk.Links))
		for i, l := range blk.Links {
			links[i] = plotter.Link{From: l[0], To: l[1], Weight: 1}
		}
		return plotter.NewArc(bl.src.m.Len(side.Axis()), links, style...)
	}

	data, names, err := bl.blockData(side, blk)
	if err != nil {
		return nil, err
	}
	switch blk.Kind {
	case "heatmap":
		return plotter.NewColorMesh(data, style...)
	case "colors":
		return plotter.NewColors(data, style...)
	case "textmesh":
		return plotter.NewTextMesh(data, style...), nil
	case "bar":
		return plotter.NewBar(data, style...)
	case "numbers":
		return plotter.NewBar(data, append(style, plotter.WithValues())...)
	case "stackbar":
		return plotter.NewStackBar(data, names, style...)
	case "centerbar":
		return plotter.NewCenterBar(data, names, style...)
	case "range":
		return plotter.NewRange(data, names, style...)
	case "area":
		return plotter.NewArea(data, style...)
	}
	return nil, errors.New(errors.ErrCodeInvalidSpec, "unknown block kind %q", blk.Kind)
}

// blockData returns a k by n matrix whose columns follow the side's axis,
// and the names of the k tracks.
func (bl *builder) blockData(side layout.Side, blk Block) (*matrix.Matrix, []string, error) {
	categorical := blk.Kind == "colors" || blk.Kind == "textmesh"
	switch {
	case blk.Column != "":
		if (side.Axis() == matrix.Rows) == bl.fig.Data.Transpose {
			return nil, nil, errors.New(errors.ErrCodeInvalidSpec, "column %q does not follow the %s axis", blk.Column, side.Axis())
		}
		var m *matrix.Matrix
		var err error
		if categorical {
			m, err = bl.src.table.Categorical(blk.Column)
		} else {
			m, err = bl.src.table.Numeric(blk.Column)
		}
		if err != nil {
			return nil, nil, err
		}
		return m.T(), []string{blk.Column}, nil
	case blk.Data != nil:
		d := *blk.Data
		if categorical && d.Type == "" {
			d.Type = "categorical"
		}
		src, err := bl.r.source(bl.ctx, d)
		if err != nil {
			return nil, nil, err
		}
		return src.m.T(), src.colNames, nil
	}
	return nil, nil, errors.New(errors.ErrCodeInvalidSpec, "%s block needs data or column", blk.Kind)
}

func (bl *builder) names(axis matrix.Axis) []string {
	if axis == matrix.Rows {
		return bl.src.rowNames
	}
	return bl.src.colNames
}

func (bl *builder) legends() error {
	l := bl.fig.Legends
	if l == nil {
		return nil
	}
	name := l.Side
	if name == "" {
		name = "right"
	}
	side, err := layout.ParseSide(name)
	if err != nil {
		return err
	}
	var opts []board.LegendOption
	if len(l.Order) > 0 {
		opts = append(opts, board.Order(l.Order...))
	}
	if l.Size > 0 {
		opts = append(opts, board.LegendSize(l.Size))
	}
	if l.Pad > 0 {
		opts = append(opts, board.LegendPad(l.Pad))
	}
	return bl.b.AddLegends(side, opts...)
}

func blockOptions(blk Block) []board.BlockOption {
	var opts []board.BlockOption
	if blk.Name != "" {
		opts = append(opts, board.Name(blk.Name))
	}
	if blk.Size > 0 {
		opts = append(opts, board.Size(blk.Size))
	}
	if blk.Relative {
		opts = append(opts, board.Relative())
	}
	if blk.Pad > 0 {
		opts = append(opts, board.Pad(blk.Pad))
	}
	if blk.Legend != nil {
		opts = append(opts, board.Legend(*blk.Legend))
	}
	return opts
}

func styleOptions(s Style) ([]plotter.Option, error) {
	var opts []plotter.Option
	if s.Label != "" {
		opts = append(opts, plotter.WithLabel(s.Label))
	}
	if s.Colormap != "" {
		if _, err := palette.Lookup(s.Colormap); err != nil {
			return nil, err
		}
		opts = append(opts, plotter.WithColormap(s.Colormap))
	}
	if s.Palette != "" {
		opts = append(opts, plotter.WithPalette(s.Palette))
	}
	if s.Color != "" {
		c, err := palette.Parse(s.Color)
		if err != nil {
			return nil, err
		}
		opts = append(opts, plotter.WithColor(c))
	}
	if len(s.Colors) > 0 {
		m := make(map[string]color.Color, len(s.Colors))
		for k, v := range s.Colors {
			c, err := palette.Parse(v)
			if err != nil {
				return nil, err
			}
			m[k] = c
		}
		opts = append(opts, plotter.WithColors(m))
	}
	if len(s.Range) == 2 {
		opts = append(opts, plotter.WithRange(s.Range[0], s.Range[1]))
	}
	if s.Center != nil {
		opts = append(opts, plotter.WithCenter(*s.Center))
	}
	if s.FontSize > 0 {
		opts = append(opts, plotter.WithFontSize(vg.Length(s.FontSize)))
	}
	if s.Format != "" {
		opts = append(opts, plotter.WithFormat(s.Format))
	}
	if s.LineWidth > 0 {
		opts = append(opts, plotter.WithLineWidth(vg.Length(s.LineWidth)))
	}
	if s.Cut > 0 {
		opts = append(opts, plotter.WithCut(s.Cut))
	}
	if s.Values {
		opts = append(opts, plotter.WithValues())
	}
	if s.Rotate != nil {
		opts = append(opts, plotter.WithRotation(*s.Rotate))
	}
	return opts, nil
}
