// Package matrix holds the immutable data matrix that anchors a figure.
//
// A Matrix is either numeric (backed by a gonum [mat.Dense]) or categorical
// (a grid of strings). Its row and column counts define the canonical index
// space that splitting, clustering and every side block align to. A 1D vector
// is represented as a 1xN matrix.
//
// Matrices are never mutated after construction: [Matrix.Select] and
// [Matrix.T] return new values.
package matrix

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/crossplot/pkg/errors"
)

// Axis selects the rows or the columns of a matrix.
type Axis int

const (
	Rows Axis = iota
	Cols
)

func (a Axis) String() string {
	if a == Rows {
		return "rows"
	}
	return "cols"
}

// Matrix is an immutable numeric or categorical 2D array.
type Matrix struct {
	rows, cols int
	num        *mat.Dense
	cat        [][]string
}

// New creates a numeric matrix from row-major data.
func New(rows, cols int, data []float64) (*Matrix, error) {
	if rows <= 0 || cols <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "matrix dimensions must be positive, got %dx%d", rows, cols)
	}
	if len(data) != rows*cols {
		return nil, errors.New(errors.ErrCodeSizeMismatch, "data has %d values, want %d for %dx%d", len(data), rows*cols, rows, cols)
	}
	cp := make([]float64, len(data))
	copy(cp, data)
	return &Matrix{rows: rows, cols: cols, num: mat.NewDense(rows, cols, cp)}, nil
}

// FromRows creates a numeric matrix from a slice of equal-length rows.
func FromRows(values [][]float64) (*Matrix, error) {
	if len(values) == 0 || len(values[0]) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "matrix must have at least one row and column")
	}
	cols := len(values[0])
	data := make([]float64, 0, len(values)*cols)
	for i, r := range values {
		if len(r) != cols {
			return nil, errors.New(errors.ErrCodeSizeMismatch, "row %d has %d values, want %d", i, len(r), cols)
		}
		data = append(data, r...)
	}
	return &Matrix{rows: len(values), cols: cols, num: mat.NewDense(len(values), cols, data)}, nil
}

// FromDense wraps a copy of a gonum matrix.
func FromDense(d mat.Matrix) *Matrix {
	r, c := d.Dims()
	return &Matrix{rows: r, cols: c, num: mat.DenseCopyOf(d)}
}

// Vector creates a 1xN numeric matrix.
func Vector(values []float64) (*Matrix, error) {
	return New(1, len(values), values)
}

// Categorical creates a categorical matrix from equal-length rows of labels.
func Categorical(values [][]string) (*Matrix, error) {
	if len(values) == 0 || len(values[0]) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "matrix must have at least one row and column")
	}
	cols := len(values[0])
	cat := make([][]string, len(values))
	for i, r := range values {
		if len(r) != cols {
			return nil, errors.New(errors.ErrCodeSizeMismatch, "row %d has %d labels, want %d", i, len(r), cols)
		}
		cat[i] = append([]string(nil), r...)
	}
	return &Matrix{rows: len(values), cols: cols, cat: cat}, nil
}

// Labels creates a 1xN categorical matrix.
func Labels(values []string) (*Matrix, error) {
	return Categorical([][]string{values})
}

// Dims returns the number of rows and columns.
func (m *Matrix) Dims() (int, int) { return m.rows, m.cols }

// Len returns the length of the given axis.
func (m *Matrix) Len(axis Axis) int {
	if axis == Rows {
		return m.rows
	}
	return m.cols
}

// IsNumeric reports whether the matrix holds numbers.
func (m *Matrix) IsNumeric() bool { return m.num != nil }

// At returns the numeric value at (i, j). It panics on categorical matrices,
// like gonum does for out-of-range access; use [Matrix.IsNumeric] first.
func (m *Matrix) At(i, j int) float64 {
	if m.num == nil {
		panic("matrix: At called on categorical matrix")
	}
	return m.num.At(i, j)
}

// Label returns the cell at (i, j) as a string. Numeric cells are formatted
// with %g.
func (m *Matrix) Label(i, j int) string {
	if m.cat != nil {
		return m.cat[i][j]
	}
	return fmt.Sprintf("%g", m.num.At(i, j))
}

// Dense returns a copy of the numeric storage.
func (m *Matrix) Dense() (*mat.Dense, error) {
	if err := m.requireNumeric("dense view"); err != nil {
		return nil, err
	}
	return mat.DenseCopyOf(m.num), nil
}

// Vectors returns one observation per index along axis: rows for [Rows],
// columns for [Cols]. Clustering operates on these vectors.
func (m *Matrix) Vectors(axis Axis) ([][]float64, error) {
	if err := m.requireNumeric("clustering"); err != nil {
		return nil, err
	}
	if axis == Rows {
		out := make([][]float64, m.rows)
		for i := range out {
			out[i] = mat.Row(nil, i, m.num)
		}
		return out, nil
	}
	out := make([][]float64, m.cols)
	for j := range out {
		out[j] = mat.Col(nil, j, m.num)
	}
	return out, nil
}

// Range returns the minimum and maximum numeric value.
func (m *Matrix) Range() (lo, hi float64, err error) {
	if err := m.requireNumeric("value range"); err != nil {
		return 0, 0, err
	}
	return mat.Min(m.num), mat.Max(m.num), nil
}

// Unique returns the distinct cell labels in first-appearance order.
func (m *Matrix) Unique() []string {
	seen := make(map[string]bool)
	var out []string
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			l := m.Label(i, j)
			if !seen[l] {
				seen[l] = true
				out = append(out, l)
			}
		}
	}
	return out
}

// Select returns a new matrix restricted to the given row and column indices,
// in the given order. A nil slice selects every index along that axis.
func (m *Matrix) Select(rows, cols []int) *Matrix {
	if rows == nil {
		rows = identity(m.rows)
	}
	if cols == nil {
		cols = identity(m.cols)
	}
	out := &Matrix{rows: len(rows), cols: len(cols)}
	if m.cat != nil {
		out.cat = make([][]string, len(rows))
		for i, r := range rows {
			out.cat[i] = make([]string, len(cols))
			for j, c := range cols {
				out.cat[i][j] = m.cat[r][c]
			}
		}
		return out
	}
	if len(rows) == 0 || len(cols) == 0 {
		return out
	}
	out.num = mat.NewDense(len(rows), len(cols), nil)
	for i, r := range rows {
		for j, c := range cols {
			out.num.Set(i, j, m.num.At(r, c))
		}
	}
	return out
}

// SelectAxis selects indices along one axis and keeps the other axis whole.
func (m *Matrix) SelectAxis(axis Axis, idx []int) *Matrix {
	if axis == Rows {
		return m.Select(idx, nil)
	}
	return m.Select(nil, idx)
}

// T returns the transpose.
func (m *Matrix) T() *Matrix {
	out := &Matrix{rows: m.cols, cols: m.rows}
	if m.cat != nil {
		out.cat = make([][]string, m.cols)
		for j := range out.cat {
			out.cat[j] = make([]string, m.rows)
			for i := 0; i < m.rows; i++ {
				out.cat[j][i] = m.cat[i][j]
			}
		}
		return out
	}
	out.num = mat.DenseCopyOf(m.num.T())
	return out
}

func (m *Matrix) requireNumeric(op string) error {
	if m.num == nil {
		return errors.New(errors.ErrCodeInvalidType, "%s requires numeric data, matrix is categorical", op)
	}
	return nil
}

func identity(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}
