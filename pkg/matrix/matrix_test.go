package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/crossplot/pkg/errors"
)

func TestNew(t *testing.T) {
	m, err := New(2, 3, []float64{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)

	r, c := m.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)
	assert.True(t, m.IsNumeric())
	assert.Equal(t, 6.0, m.At(1, 2))
	assert.Equal(t, 3, m.Len(Cols))

	_, err = New(2, 2, []float64{1, 2, 3})
	assert.True(t, errors.Is(err, errors.ErrCodeSizeMismatch))

	_, err = New(0, 2, nil)
	assert.True(t, errors.IsValidation(err))
}

func TestNewCopiesInput(t *testing.T) {
	data := []float64{1, 2}
	m, err := New(1, 2, data)
	require.NoError(t, err)
	data[0] = 99
	assert.Equal(t, 1.0, m.At(0, 0))
}

func TestFromRowsRagged(t *testing.T) {
	_, err := FromRows([][]float64{{1, 2}, {3}})
	assert.True(t, errors.Is(err, errors.ErrCodeSizeMismatch))
}

func TestVectors(t *testing.T) {
	m, err := FromRows([][]float64{{1, 2, 3}, {4, 5, 6}})
	require.NoError(t, err)

	rows, err := m.Vectors(Rows)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 2, 3}, {4, 5, 6}}, rows)

	cols, err := m.Vectors(Cols)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 4}, {2, 5}, {3, 6}}, cols)
}

func TestCategoricalVectorsIsTypeError(t *testing.T) {
	m, err := Categorical([][]string{{"a", "b"}, {"c", "d"}})
	require.NoError(t, err)
	assert.False(t, m.IsNumeric())

	_, err = m.Vectors(Rows)
	assert.True(t, errors.IsType(err))

	_, _, err = m.Range()
	assert.True(t, errors.IsType(err))
}

func TestSelect(t *testing.T) {
	m, err := FromRows([][]float64{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}})
	require.NoError(t, err)

	s := m.Select([]int{2, 0}, []int{1})
	r, c := s.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 1, c)
	assert.Equal(t, 8.0, s.At(0, 0))
	assert.Equal(t, 2.0, s.At(1, 0))

	all := m.SelectAxis(Cols, []int{2, 1, 0})
	assert.Equal(t, 3.0, all.At(0, 0))
	assert.Equal(t, 7.0, all.At(2, 2))

	// The source is untouched.
	assert.Equal(t, 1.0, m.At(0, 0))
}

func TestSelectCategorical(t *testing.T) {
	m, err := Categorical([][]string{{"a", "b", "c"}})
	require.NoError(t, err)

	s := m.Select(nil, []int{2, 0})
	assert.Equal(t, "c", s.Label(0, 0))
	assert.Equal(t, "a", s.Label(0, 1))
	assert.Equal(t, []string{"a", "b", "c"}, m.Unique())
}

func TestTranspose(t *testing.T) {
	m, err := FromRows([][]float64{{1, 2, 3}})
	require.NoError(t, err)
	tr := m.T()
	r, c := tr.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 1, c)
	assert.Equal(t, 3.0, tr.At(2, 0))
}

func TestRangeAndLabel(t *testing.T) {
	m, err := Vector([]float64{-1.5, 2, 0.25})
	require.NoError(t, err)
	lo, hi, err := m.Range()
	require.NoError(t, err)
	assert.Equal(t, -1.5, lo)
	assert.Equal(t, 2.0, hi)
	assert.Equal(t, "0.25", m.Label(0, 2))
}
