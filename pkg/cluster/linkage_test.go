package cluster

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/crossplot/pkg/errors"
)

func line(xs ...float64) [][]float64 {
	out := make([][]float64, len(xs))
	for i, x := range xs {
		out[i] = []float64{x}
	}
	return out
}

func TestComputeSingleOnALine(t *testing.T) {
	l, err := Compute(line(0, 1, 5, 6, 20), "euclidean", "single")
	require.NoError(t, err)

	require.Len(t, l.Merges, 4)
	assert.Equal(t, Merge{Left: 0, Right: 1, Height: 1, Size: 2}, l.Merges[0])
	assert.Equal(t, Merge{Left: 2, Right: 3, Height: 1, Size: 2}, l.Merges[1])
	assert.Equal(t, Merge{Left: 5, Right: 6, Height: 4, Size: 4}, l.Merges[2])
	assert.Equal(t, Merge{Left: 4, Right: 7, Height: 14, Size: 5}, l.Merges[3])

	assert.Equal(t, []int{4, 0, 1, 2, 3}, l.Leaves())
	assert.Equal(t, 8, l.Root())
}

func TestComputeCompleteHeights(t *testing.T) {
	l, err := Compute(line(0, 1, 5, 6, 20), "euclidean", "complete")
	require.NoError(t, err)
	// {0,1} to {5,6} under complete linkage is the farthest pair: 6.
	assert.InDelta(t, 6, l.Merges[2].Height, 1e-12)
	assert.InDelta(t, 20, l.Merges[3].Height, 1e-12)
}

func TestComputeAverageHeights(t *testing.T) {
	l, err := Compute(line(0, 1, 5, 6, 20), "euclidean", "average")
	require.NoError(t, err)
	// mean of |0-5|, |0-6|, |1-5|, |1-6| = 5
	assert.InDelta(t, 5, l.Merges[2].Height, 1e-12)
}

func TestCut(t *testing.T) {
	l, err := Compute(line(0, 1, 5, 6, 20), "", "")
	require.NoError(t, err)

	two, err := l.Cut(2)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 1, 1, 0}, two)

	three, err := l.Cut(3)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 2, 2, 0}, three)

	one, err := l.Cut(1)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0, 0, 0}, one)

	all, err := l.Cut(5)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 0}, all)

	_, err = l.Cut(0)
	assert.True(t, errors.IsValidation(err))
	_, err = l.Cut(6)
	assert.True(t, errors.IsValidation(err))
}

func TestLeavesArePermutation(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for method := range Methods {
		for _, n := range []int{2, 3, 8, 25} {
			t.Run(fmt.Sprintf("%s-%d", method, n), func(t *testing.T) {
				vecs := make([][]float64, n)
				for i := range vecs {
					vecs[i] = []float64{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}
				}
				l, err := Compute(vecs, "euclidean", method)
				require.NoError(t, err)
				require.Len(t, l.Merges, n-1)

				leaves := l.Leaves()
				sorted := slices.Clone(leaves)
				slices.Sort(sorted)
				want := make([]int, n)
				for i := range want {
					want[i] = i
				}
				assert.Equal(t, want, sorted)
				assert.Equal(t, n, l.Merges[n-2].Size)
			})
		}
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	vecs := line(3, 3, 3, 1, 1)
	a, err := Compute(vecs, "euclidean", "average")
	require.NoError(t, err)
	b, err := Compute(vecs, "euclidean", "average")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSingleObservation(t *testing.T) {
	l, err := Compute(line(42), "euclidean", "ward")
	require.NoError(t, err)
	assert.Empty(t, l.Merges)
	assert.Equal(t, []int{0}, l.Leaves())
}

func TestComputeErrors(t *testing.T) {
	_, err := Compute(line(1, 2), "mahalanobis", "single")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidOption))

	_, err = Compute(line(1, 2), "euclidean", "median")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidOption))

	_, err = Compute(nil, "", "")
	assert.True(t, errors.IsValidation(err))

	_, err = Compute([][]float64{{1, 2}, {1}}, "", "")
	assert.True(t, errors.Is(err, errors.ErrCodeSizeMismatch))
}
