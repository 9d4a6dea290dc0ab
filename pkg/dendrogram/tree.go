// Package dendrogram builds drawable hierarchical clustering trees.
//
// A [Tree] wraps a [cluster.Linkage] with the pieces a figure needs: the leaf
// order that drives row or column reordering, cut labels, the centroid used
// when chunks are themselves clustered, and branch geometry in unit leaf
// coordinates (leaf p sits at x = p + 0.5, heights are scaled to [0, 1]).
//
// Three special trees exist besides clustered ones:
//   - a singleton (one observation) draws a short stub
//   - a flat tree ([Flat]) keeps the declared order and draws a bracket; it
//     is used when an axis was split without clustering
//   - a meta tree ([BuildMeta]) clusters the centroids of other trees
package dendrogram

import (
	"image/color"

	"gonum.org/v1/gonum/stat"

	"github.com/matzehuels/crossplot/pkg/cluster"
	"github.com/matzehuels/crossplot/pkg/errors"
)

// Options selects the distance metric and linkage method.
type Options struct {
	Method string
	Metric string
}

// Tree is a clustering tree over one set of observations.
type Tree struct {
	Key    string
	n      int
	link   *cluster.Linkage
	center []float64
	flat   bool
}

// Branch is one U-shaped connector: from the left child up to the merge
// height, across, and down to the right child.
type Branch struct {
	Node int
	X    [4]float64
	Y    [4]float64
}

// Build clusters vectors (one per observation).
func Build(vectors [][]float64, opts Options) (*Tree, error) {
	if len(vectors) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "cannot build a dendrogram over zero observations")
	}
	t := &Tree{n: len(vectors), center: centroid(vectors)}
	if len(vectors) == 1 {
		if _, err := cluster.LookupMetric(opts.Metric); err != nil {
			return nil, err
		}
		if _, err := cluster.LookupMethod(opts.Method); err != nil {
			return nil, err
		}
		return t, nil
	}
	link, err := cluster.Compute(vectors, opts.Metric, opts.Method)
	if err != nil {
		return nil, err
	}
	t.link = link
	return t, nil
}

// Flat returns a tree over n observations that keeps their declared order.
func Flat(n int) *Tree {
	return &Tree{n: n, flat: true}
}

// BuildMeta clusters the centroids of trees. Leaf i of the result is trees[i].
func BuildMeta(trees []*Tree, opts Options) (*Tree, error) {
	centers := make([][]float64, len(trees))
	for i, t := range trees {
		if t.center == nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "tree %q has no centroid; only clustered trees can be summarised", t.Key)
		}
		centers[i] = t.center
	}
	return Build(centers, opts)
}

// Len returns the number of leaves.
func (t *Tree) Len() int { return t.n }

// Clustered reports whether the leaf order came from clustering.
func (t *Tree) Clustered() bool { return !t.flat }

// Singleton reports whether the tree has exactly one clustered leaf.
func (t *Tree) Singleton() bool { return !t.flat && t.n == 1 }

// Linkage returns the merge history, or nil for flat and singleton trees.
func (t *Tree) Linkage() *cluster.Linkage { return t.link }

// Center returns the per-feature mean of the clustered observations.
func (t *Tree) Center() []float64 { return t.center }

// Leaves returns the leaf order as a permutation of 0..Len()-1.
func (t *Tree) Leaves() []int {
	if t.link != nil {
		return t.link.Leaves()
	}
	out := make([]int, t.n)
	for i := range out {
		out[i] = i
	}
	return out
}

// Cut assigns each observation to one of k clusters, numbered in leaf order.
func (t *Tree) Cut(k int) ([]int, error) {
	if t.link == nil {
		if k != 1 {
			return nil, errors.New(errors.ErrCodeInvalidOption, "a tree without merges can only be cut into 1 cluster, got %d", k)
		}
		return make([]int, t.n), nil
	}
	return t.link.Cut(k)
}

// Branches returns the branch geometry with leaves at their default unit
// positions.
func (t *Tree) Branches() []Branch {
	return t.Layout(nil)
}

// Layout returns the branch geometry with leaf p (in leaf order) at leafX[p].
// A nil leafX places leaf p at p + 0.5.
func (t *Tree) Layout(leafX []float64) []Branch {
	pos := func(p int) float64 {
		if leafX != nil {
			return leafX[p]
		}
		return float64(p) + 0.5
	}

	switch {
	case t.n == 0:
		return nil
	case t.flat:
		if t.n == 1 {
			return nil
		}
		return []Branch{{
			Node: -1,
			X:    [4]float64{pos(0), pos(0), pos(t.n - 1), pos(t.n - 1)},
			Y:    [4]float64{0, 0.5, 0.5, 0},
		}}
	case t.link == nil:
		x := pos(0)
		return []Branch{{Node: 0, X: [4]float64{x, x, x, x}, Y: [4]float64{0, 0.75, 0.75, 0}}}
	}

	l := t.link
	x := make([]float64, l.N+len(l.Merges))
	y := make([]float64, len(x))
	for p, leaf := range l.Leaves() {
		x[leaf] = pos(p)
	}
	top := l.Height(l.Root())
	out := make([]Branch, len(l.Merges))
	for i, m := range l.Merges {
		id := l.N + i
		x[id] = (x[m.Left] + x[m.Right]) / 2
		y[id] = 1
		if top > 0 {
			y[id] = m.Height / top
		}
		out[i] = Branch{
			Node: id,
			X:    [4]float64{x[m.Left], x[m.Left], x[m.Right], x[m.Right]},
			Y:    [4]float64{y[m.Left], y[id], y[id], y[m.Right]},
		}
	}
	return out
}

// Root returns the root position in the unit coordinates of [Tree.Branches].
func (t *Tree) Root() (x, y float64) {
	b := t.Branches()
	if len(b) == 0 {
		return float64(t.n) / 2, 0
	}
	r := b[len(b)-1]
	return (r.X[1] + r.X[2]) / 2, r.Y[1]
}

// Colors assigns a color to every branch returned by [Tree.Branches]. The
// tree is cut into k clusters; branches entirely inside cluster c get
// palette[c % len(palette)], branches joining clusters get base.
func (t *Tree) Colors(k int, palette []color.Color, base color.Color) ([]color.Color, error) {
	branches := t.Branches()
	out := make([]color.Color, len(branches))
	for i := range out {
		out[i] = base
	}
	if t.link == nil || len(palette) == 0 {
		return out, nil
	}
	labels, err := t.link.Cut(k)
	if err != nil {
		return nil, err
	}
	l := t.link
	group := make([]int, l.N+len(l.Merges))
	copy(group, labels)
	for i, m := range l.Merges {
		id := l.N + i
		group[id] = -1
		if group[m.Left] >= 0 && group[m.Left] == group[m.Right] {
			group[id] = group[m.Left]
			out[i] = palette[group[id]%len(palette)]
		}
	}
	return out, nil
}

func centroid(vectors [][]float64) []float64 {
	if len(vectors) == 0 {
		return nil
	}
	c := make([]float64, len(vectors[0]))
	col := make([]float64, len(vectors))
	for j := range c {
		for i, v := range vectors {
			if j < len(v) {
				col[i] = v[j]
			}
		}
		c[j] = stat.Mean(col, nil)
	}
	return c
}
