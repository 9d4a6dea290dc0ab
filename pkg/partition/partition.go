// Package partition reorders and splits one axis of the main matrix.
//
// Three modes exist and can be combined with clustering:
//   - labels: one group label per index, chunks follow an explicit order or
//     the sorted unique labels
//   - breakpoints: contiguous index ranges, original order kept
//   - cluster: hierarchical clustering gives the leaf order; an optional cut
//     turns the tree into K chunks
//
// The output is always a list of chunks whose indices cover 0..n-1 exactly
// once.
package partition

import (
	"strconv"

	"github.com/matzehuels/crossplot/pkg/dendrogram"
	"github.com/matzehuels/crossplot/pkg/matrix"
)

// Chunk is a labelled, ordered group of original indices.
type Chunk struct {
	Label   string
	Indices []int
}

// Result is the computed partition of one axis.
type Result struct {
	Axis   matrix.Axis
	Mode   Mode
	Chunks []Chunk
	// Trees holds one tree per chunk when the axis was clustered.
	Trees []*dendrogram.Tree
	// Meta orders the chunks; leaf p of Meta is Chunks[p].
	Meta *dendrogram.Tree
	// Groups holds the cut cluster of every original index when K > 0.
	// Groups[i] is a position in Chunks, so it is 0-based while chunk
	// labels count from "1": Chunks[Groups[i]].Label is Groups[i]+1.
	Groups []int
}

// None returns the trivial partition: one unlabelled chunk in original order.
func None(axis matrix.Axis, n int) *Result {
	return &Result{Axis: axis, Mode: ModeNone, Chunks: []Chunk{{Indices: identity(n)}}}
}

// ByLabels groups indices by label. A nil order uses the sorted unique
// labels. Indices keep their original order inside a chunk.
func ByLabels(labels, order []string) ([]Chunk, error) {
	s := Spec{Labels: labels, Order: order}
	if err := s.Validate(len(labels)); err != nil {
		return nil, err
	}
	if order == nil {
		order = sortedUnique(labels)
	}
	pos := make(map[string]int, len(order))
	chunks := make([]Chunk, len(order))
	for i, o := range order {
		pos[o] = i
		chunks[i].Label = o
	}
	for i, l := range labels {
		c := pos[l]
		chunks[c].Indices = append(chunks[c].Indices, i)
	}
	return chunks, nil
}

// ByBreakpoints cuts 0..n-1 into contiguous ranges at the given positions.
// Chunks are labelled "0", "1", ... in order.
func ByBreakpoints(n int, breakpoints []int) ([]Chunk, error) {
	if err := validateBreakpoints(n, breakpoints); err != nil {
		return nil, err
	}
	bounds := append(append([]int{0}, breakpoints...), n)
	chunks := make([]Chunk, len(bounds)-1)
	for i := range chunks {
		chunks[i] = Chunk{Label: strconv.Itoa(i), Indices: rangeOf(bounds[i], bounds[i+1])}
	}
	return chunks, nil
}

// Compute partitions axis of m according to spec. The spec is validated
// first; clustering a categorical matrix is a type error.
func Compute(m *matrix.Matrix, axis matrix.Axis, spec Spec) (*Result, error) {
	n := m.Len(axis)
	if err := spec.Validate(n); err != nil {
		return nil, err
	}

	res := &Result{Axis: axis, Mode: spec.Mode()}
	switch {
	case spec.Labels != nil:
		chunks, err := ByLabels(spec.Labels, spec.Order)
		if err != nil {
			return nil, err
		}
		res.Chunks = chunks
	case spec.Breakpoints != nil:
		chunks, err := ByBreakpoints(n, spec.Breakpoints)
		if err != nil {
			return nil, err
		}
		res.Chunks = chunks
	default:
		res.Chunks = []Chunk{{Indices: identity(n)}}
	}

	if spec.Cluster == nil {
		return res, nil
	}
	if err := res.cluster(m, *spec.Cluster); err != nil {
		return nil, err
	}
	return res, nil
}

func (r *Result) cluster(m *matrix.Matrix, c ClusterSpec) error {
	vectors, err := m.Vectors(r.Axis)
	if err != nil {
		return err
	}
	opts := dendrogram.Options{Metric: c.Metric, Method: c.Method}

	r.Trees = make([]*dendrogram.Tree, len(r.Chunks))
	for i := range r.Chunks {
		tree, err := buildChunk(vectors, &r.Chunks[i], opts)
		if err != nil {
			return err
		}
		r.Trees[i] = tree
	}

	if c.K > 0 {
		return r.cut(vectors, c.K, opts)
	}

	if len(r.Chunks) > 1 && !c.KeepChunkOrder {
		meta, err := dendrogram.BuildMeta(r.Trees, opts)
		if err != nil {
			return err
		}
		order := meta.Leaves()
		chunks := make([]Chunk, len(order))
		trees := make([]*dendrogram.Tree, len(order))
		for p, i := range order {
			chunks[p], trees[p] = r.Chunks[i], r.Trees[i]
		}
		r.Chunks, r.Trees, r.Meta = chunks, trees, meta
	}
	return nil
}

// cut replaces the single clustered chunk by k chunks taken from the tree.
// Cut labels follow leaf order, so every group is contiguous in the
// reordered indices.
func (r *Result) cut(vectors [][]float64, k int, opts dendrogram.Options) error {
	whole := r.Trees[0]
	labels, err := whole.Cut(k)
	if err != nil {
		return err
	}
	r.Groups = labels

	ordered := r.Chunks[0].Indices
	chunks := make([]Chunk, k)
	for g := range chunks {
		chunks[g].Label = strconv.Itoa(g + 1)
	}
	for _, idx := range ordered {
		g := labels[idx]
		chunks[g].Indices = append(chunks[g].Indices, idx)
	}

	trees := make([]*dendrogram.Tree, k)
	for g := range chunks {
		tree, err := buildChunk(vectors, &chunks[g], opts)
		if err != nil {
			return err
		}
		trees[g] = tree
	}
	r.Chunks, r.Trees = chunks, trees
	return nil
}

func buildChunk(vectors [][]float64, c *Chunk, opts dendrogram.Options) (*dendrogram.Tree, error) {
	sub := make([][]float64, len(c.Indices))
	for i, idx := range c.Indices {
		sub[i] = vectors[idx]
	}
	tree, err := dendrogram.Build(sub, opts)
	if err != nil {
		return nil, err
	}
	tree.Key = c.Label
	leaves := tree.Leaves()
	reordered := make([]int, len(c.Indices))
	for p, leaf := range leaves {
		reordered[p] = c.Indices[leaf]
	}
	c.Indices = reordered
	return tree, nil
}

// Order returns every index in render order.
func (r *Result) Order() []int {
	var out []int
	for _, c := range r.Chunks {
		out = append(out, c.Indices...)
	}
	return out
}

// Weights returns the chunk lengths, used to size chunk regions.
func (r *Result) Weights() []float64 {
	w := make([]float64, len(r.Chunks))
	for i, c := range r.Chunks {
		w[i] = float64(len(c.Indices))
	}
	return w
}

// Labels returns the chunk labels in render order.
func (r *Result) Labels() []string {
	out := make([]string, len(r.Chunks))
	for i, c := range r.Chunks {
		out[i] = c.Label
	}
	return out
}

// Split reports whether the axis has more than one chunk.
func (r *Result) Split() bool { return len(r.Chunks) > 1 }

// Clustered reports whether chunk orders came from clustering.
func (r *Result) Clustered() bool { return r.Trees != nil }

// DendrogramTrees returns the per-chunk trees. An axis that was never
// clustered yields flat trees that keep the declared chunk order and do not
// reorder within chunks.
func (r *Result) DendrogramTrees() []*dendrogram.Tree {
	if r.Trees != nil {
		return r.Trees
	}
	out := make([]*dendrogram.Tree, len(r.Chunks))
	for i, c := range r.Chunks {
		out[i] = dendrogram.Flat(len(c.Indices))
		out[i].Key = c.Label
	}
	return out
}

func identity(n int) []int { return rangeOf(0, n) }

func rangeOf(lo, hi int) []int {
	out := make([]int, hi-lo)
	for i := range out {
		out[i] = lo + i
	}
	return out
}
