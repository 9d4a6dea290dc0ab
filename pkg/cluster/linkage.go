// Package cluster implements agglomerative hierarchical clustering.
//
// Distance metrics and linkage methods are kept in name-keyed registries
// ([Metrics] and [Methods]) so callers can pick them from configuration and
// register their own. The result is a [Linkage]: the n-1 merges in the order
// they happened, using the usual numbering where ids below n are leaves and
// id n+i is the cluster produced by merge i.
package cluster

import (
	"math"

	"github.com/matzehuels/crossplot/pkg/errors"
)

// UpdateFunc computes the distance from cluster k to the union of clusters i
// and j (Lance-Williams form). ni, nj and nk are the cluster sizes.
type UpdateFunc func(dki, dkj, dij float64, ni, nj, nk int) float64

// DefaultMethod is used when no linkage method is given.
const DefaultMethod = "single"

// Methods is a registry of linkage update rules, initialized with the
// standard options.
var Methods = map[string]UpdateFunc{
	"single":   Single,
	"complete": Complete,
	"average":  Average,
	"weighted": Weighted,
	"ward":     Ward,
}

// Single is the minimum-distance or single-linkage rule.
func Single(dki, dkj, _ float64, _, _, _ int) float64 { return math.Min(dki, dkj) }

// Complete is the maximum-distance or complete-linkage rule.
func Complete(dki, dkj, _ float64, _, _, _ int) float64 { return math.Max(dki, dkj) }

// Average is the unweighted pair-group average (UPGMA) rule.
func Average(dki, dkj, _ float64, ni, nj, _ int) float64 {
	return (float64(ni)*dki + float64(nj)*dkj) / float64(ni+nj)
}

// Weighted is the weighted pair-group average (WPGMA) rule.
func Weighted(dki, dkj, _ float64, _, _, _ int) float64 { return (dki + dkj) / 2 }

// Ward is the minimum-variance rule. It expects Euclidean input distances.
func Ward(dki, dkj, dij float64, ni, nj, nk int) float64 {
	t := float64(ni + nj + nk)
	v := (float64(nk+ni)*dki*dki + float64(nk+nj)*dkj*dkj - float64(nk)*dij*dij) / t
	return math.Sqrt(math.Max(v, 0))
}

// LookupMethod returns the registered linkage rule, or a validation error.
func LookupMethod(name string) (UpdateFunc, error) {
	if name == "" {
		name = DefaultMethod
	}
	fn, ok := Methods[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidOption, "unknown linkage method %q (known: %v)", name, names(Methods))
	}
	return fn, nil
}

// Merge is one agglomeration step. Left is always the smaller cluster id.
type Merge struct {
	Left, Right int
	Height      float64
	Size        int
}

// Linkage is the full merge history over N observations.
type Linkage struct {
	N      int
	Merges []Merge
}

// Compute clusters vectors with the named metric and method.
func Compute(vectors [][]float64, metric, method string) (*Linkage, error) {
	mf, err := LookupMetric(metric)
	if err != nil {
		return nil, err
	}
	uf, err := LookupMethod(method)
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "cannot cluster zero observations")
	}
	d, err := Pairwise(vectors, mf)
	if err != nil {
		return nil, err
	}
	return FromDistances(d, uf), nil
}

// FromDistances runs the agglomeration over a square distance matrix. The
// matrix is modified in place. Ties are broken by the lowest slot pair, so
// equal inputs always give the same tree.
func FromDistances(d [][]float64, update UpdateFunc) *Linkage {
	n := len(d)
	l := &Linkage{N: n, Merges: make([]Merge, 0, max(n-1, 0))}

	id := make([]int, n)
	size := make([]int, n)
	active := make([]bool, n)
	for i := range id {
		id[i], size[i], active[i] = i, 1, true
	}

	for step := 0; step < n-1; step++ {
		a, b := -1, -1
		best := math.Inf(1)
		for i := 0; i < n; i++ {
			if !active[i] {
				continue
			}
			for j := i + 1; j < n; j++ {
				if active[j] && d[i][j] < best {
					best, a, b = d[i][j], i, j
				}
			}
		}
		if a < 0 {
			// Only reachable with +Inf distances; merge the first two actives.
			a, b = firstTwo(active)
			best = d[a][b]
		}

		left, right := id[a], id[b]
		if left > right {
			left, right = right, left
		}
		l.Merges = append(l.Merges, Merge{Left: left, Right: right, Height: best, Size: size[a] + size[b]})

		for k := 0; k < n; k++ {
			if !active[k] || k == a || k == b {
				continue
			}
			v := update(d[k][a], d[k][b], best, size[a], size[b], size[k])
			d[a][k], d[k][a] = v, v
		}
		active[b] = false
		id[a] = n + step
		size[a] += size[b]
	}
	return l
}

func firstTwo(active []bool) (int, int) {
	a := -1
	for i, ok := range active {
		if !ok {
			continue
		}
		if a < 0 {
			a = i
			continue
		}
		return a, i
	}
	return a, a
}

// Root returns the id of the root cluster.
func (l *Linkage) Root() int {
	if l.N <= 1 {
		return 0
	}
	return l.N + len(l.Merges) - 1
}

// Children returns the two children of an internal node id.
func (l *Linkage) Children(id int) (left, right int, ok bool) {
	if id < l.N || id-l.N >= len(l.Merges) {
		return 0, 0, false
	}
	m := l.Merges[id-l.N]
	return m.Left, m.Right, true
}

// Height returns the merge height of id; leaves have height 0.
func (l *Linkage) Height(id int) float64 {
	if id < l.N {
		return 0
	}
	return l.Merges[id-l.N].Height
}

// Leaves returns the left-to-right leaf traversal of the tree. It is a
// permutation of 0..N-1.
func (l *Linkage) Leaves() []int {
	if l.N == 0 {
		return nil
	}
	out := make([]int, 0, l.N)
	stack := []int{l.Root()}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if left, right, ok := l.Children(id); ok {
			stack = append(stack, right, left)
			continue
		}
		out = append(out, id)
	}
	return out
}

// Cut splits the tree into exactly k flat clusters by undoing the last k-1
// merges. Cluster labels 0..k-1 are assigned in leaf order, so label 0 is
// the leftmost cluster.
func (l *Linkage) Cut(k int) ([]int, error) {
	if k < 1 || k > l.N {
		return nil, errors.New(errors.ErrCodeInvalidOption, "cannot cut %d observations into %d clusters", l.N, k)
	}
	parent := make([]int, l.N+len(l.Merges))
	for i := range parent {
		parent[i] = i
	}
	findRoot := func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	for i, m := range l.Merges[:l.N-k] {
		parent[findRoot(m.Left)] = l.N + i
		parent[findRoot(m.Right)] = l.N + i
	}

	labels := make([]int, l.N)
	seen := make(map[int]int, k)
	for _, leaf := range l.Leaves() {
		r := findRoot(leaf)
		lab, ok := seen[r]
		if !ok {
			lab = len(seen)
			seen[r] = lab
		}
		labels[leaf] = lab
	}
	return labels, nil
}
