package partition

import (
	"math/rand/v2"
	"slices"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/crossplot/pkg/errors"
	"github.com/matzehuels/crossplot/pkg/matrix"
)

func column(t *testing.T, xs ...float64) *matrix.Matrix {
	t.Helper()
	rows := make([][]float64, len(xs))
	for i, x := range xs {
		rows[i] = []float64{x}
	}
	m, err := matrix.FromRows(rows)
	require.NoError(t, err)
	return m
}

var abc = []string{"A", "A", "B", "B", "B", "C", "C", "C", "C", "C"}

func TestByLabelsWithOrder(t *testing.T) {
	chunks, err := ByLabels(abc, []string{"A", "B", "C"})
	require.NoError(t, err)
	assert.Equal(t, []Chunk{
		{Label: "A", Indices: []int{0, 1}},
		{Label: "B", Indices: []int{2, 3, 4}},
		{Label: "C", Indices: []int{5, 6, 7, 8, 9}},
	}, chunks)
}

func TestByLabelsDefaultOrderIsSorted(t *testing.T) {
	chunks, err := ByLabels([]string{"z", "a", "z", "m"}, nil)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, "a", chunks[0].Label)
	assert.Equal(t, "m", chunks[1].Label)
	assert.Equal(t, []int{0, 2}, chunks[2].Indices)
}

func TestOrderValidation(t *testing.T) {
	tests := []struct {
		name  string
		order []string
	}{
		{"missing", []string{"A", "B"}},
		{"duplicate", []string{"A", "B", "B", "C"}},
		{"unknown", []string{"A", "B", "C", "D"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ByLabels(abc, tt.order)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidOrder), "got %v", err)
		})
	}
}

func TestSpecValidate(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		code errors.Code
	}{
		{"label length", Spec{Labels: []string{"a"}}, errors.ErrCodeSizeMismatch},
		{"both splits", Spec{Labels: abc, Breakpoints: []int{3}}, errors.ErrCodeInvalidInput},
		{"order without labels", Spec{Order: []string{"a"}}, errors.ErrCodeInvalidOrder},
		{"breakpoint at zero", Spec{Breakpoints: []int{0, 4}}, errors.ErrCodeInvalidInput},
		{"breakpoint at end", Spec{Breakpoints: []int{10}}, errors.ErrCodeInvalidInput},
		{"breakpoints unsorted", Spec{Breakpoints: []int{5, 3}}, errors.ErrCodeInvalidInput},
		{"bad metric", Spec{Cluster: &ClusterSpec{Metric: "nope"}}, errors.ErrCodeInvalidOption},
		{"bad method", Spec{Cluster: &ClusterSpec{Method: "nope"}}, errors.ErrCodeInvalidOption},
		{"cut on split axis", Spec{Labels: abc, Cluster: &ClusterSpec{K: 2}}, errors.ErrCodeInvalidOption},
		{"cut too large", Spec{Cluster: &ClusterSpec{K: 11}}, errors.ErrCodeInvalidOption},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate(len(abc))
			assert.Equal(t, tt.code, errors.GetCode(err), "got %v", err)
		})
	}

	assert.NoError(t, Spec{}.Validate(10))
	assert.NoError(t, Spec{Labels: abc, Cluster: &ClusterSpec{}}.Validate(10))
}

func TestByBreakpoints(t *testing.T) {
	chunks, err := ByBreakpoints(7, []int{2, 5})
	require.NoError(t, err)
	assert.Equal(t, []Chunk{
		{Label: "0", Indices: []int{0, 1}},
		{Label: "1", Indices: []int{2, 3, 4}},
		{Label: "2", Indices: []int{5, 6}},
	}, chunks)
}

func TestComputeLabelsWithoutClustering(t *testing.T) {
	m := column(t, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9)
	res, err := Compute(m, matrix.Rows, Spec{Labels: abc, Order: []string{"A", "B", "C"}})
	require.NoError(t, err)

	assert.Equal(t, ModeLabels, res.Mode)
	assert.Equal(t, []string{"A", "B", "C"}, res.Labels())
	assert.Equal(t, []float64{2, 3, 5}, res.Weights())
	assert.True(t, res.Split())
	assert.False(t, res.Clustered())
	assert.Nil(t, res.Meta)
}

func TestFlatTreesKeepChunkOrder(t *testing.T) {
	m := column(t, 9, 3, 7, 1, 5)
	res, err := Compute(m, matrix.Rows, Spec{Breakpoints: []int{3}})
	require.NoError(t, err)

	trees := res.DendrogramTrees()
	require.Len(t, trees, 2)
	assert.Equal(t, []int{0, 1, 2}, trees[0].Leaves())
	assert.Equal(t, []int{0, 1}, trees[1].Leaves())
	assert.False(t, trees[0].Clustered())
	assert.Equal(t, []int{0, 1, 2, 3, 4}, res.Order())
}

func TestClusterWithinChunksAndMeta(t *testing.T) {
	m := column(t, 100, 101, 0, 1, 2, 50, 51, 52, 53, 54)

	res, err := Compute(m, matrix.Rows, Spec{Labels: abc, Cluster: &ClusterSpec{}})
	require.NoError(t, err)
	assert.True(t, res.Clustered())
	require.NotNil(t, res.Meta)
	assert.Equal(t, []string{"B", "A", "C"}, res.Labels())
	assert.Equal(t, "B", res.Trees[0].Key)
	assert.ElementsMatch(t, []int{2, 3, 4}, res.Chunks[0].Indices)

	kept, err := Compute(m, matrix.Rows, Spec{Labels: abc, Cluster: &ClusterSpec{KeepChunkOrder: true}})
	require.NoError(t, err)
	assert.Nil(t, kept.Meta)
	assert.Equal(t, []string{"A", "B", "C"}, kept.Labels())
}

func TestClusterCut(t *testing.T) {
	m := column(t, 0, 1, 2, 50, 51, 100)
	res, err := Compute(m, matrix.Rows, Spec{Cluster: &ClusterSpec{K: 3}})
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2", "3"}, res.Labels())
	assert.Equal(t, []int{5}, res.Chunks[0].Indices)
	assert.ElementsMatch(t, []int{0, 1, 2}, res.Chunks[1].Indices)
	assert.ElementsMatch(t, []int{3, 4}, res.Chunks[2].Indices)
	assert.Equal(t, []int{1, 1, 1, 2, 2, 0}, res.Groups)
	assert.Len(t, res.Trees, 3)
	assert.Nil(t, res.Meta)

	// Groups index Chunks; labels count from one.
	for i, g := range res.Groups {
		assert.Contains(t, res.Chunks[g].Indices, i)
		assert.Equal(t, strconv.Itoa(g+1), res.Chunks[g].Label)
	}
}

func TestClusterColumns(t *testing.T) {
	m, err := matrix.FromRows([][]float64{
		{0, 10, 1},
		{0, 10, 1},
	})
	require.NoError(t, err)
	res, err := Compute(m, matrix.Cols, Spec{Cluster: &ClusterSpec{}})
	require.NoError(t, err)
	assert.Equal(t, matrix.Cols, res.Axis)
	assert.Equal(t, []int{1, 0, 2}, res.Order())
}

func TestClusterCategoricalIsTypeError(t *testing.T) {
	m, err := matrix.Categorical([][]string{{"a"}, {"b"}})
	require.NoError(t, err)
	_, err = Compute(m, matrix.Rows, Spec{Cluster: &ClusterSpec{}})
	assert.True(t, errors.IsType(err), "got %v", err)
}

func TestNone(t *testing.T) {
	res := None(matrix.Cols, 3)
	assert.Equal(t, []int{0, 1, 2}, res.Order())
	assert.False(t, res.Split())
	assert.Equal(t, "none", res.Mode.String())
}

// Every partition must cover each index exactly once, whatever the mode.
func TestCoverage(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	for range 100 {
		n := 2 + r.IntN(20)
		xs := make([]float64, n)
		labels := make([]string, n)
		for i := range xs {
			xs[i] = r.Float64() * 100
			labels[i] = string(rune('a' + r.IntN(4)))
		}
		m := column(t, xs...)

		specs := []Spec{
			{},
			{Labels: labels},
			{Breakpoints: []int{1 + r.IntN(n-1)}},
			{Cluster: &ClusterSpec{Method: "average"}},
			{Labels: labels, Cluster: &ClusterSpec{Method: "ward"}},
			{Cluster: &ClusterSpec{K: 1 + r.IntN(n)}},
		}
		for _, spec := range specs {
			res, err := Compute(m, matrix.Rows, spec)
			require.NoError(t, err)
			order := res.Order()
			slices.Sort(order)
			for i, v := range order {
				require.Equal(t, i, v, "mode %s", res.Mode)
			}
			for i, tree := range res.DendrogramTrees() {
				require.Equal(t, len(res.Chunks[i].Indices), tree.Len())
			}
		}
	}
}
