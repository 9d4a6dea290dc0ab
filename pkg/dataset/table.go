package dataset

import (
	"encoding/csv"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/crossplot/pkg/errors"
	"github.com/matzehuels/crossplot/pkg/matrix"
)

// Table is a parsed CSV file: a header, optional row names and string cells.
type Table struct {
	Name    string
	Columns []string
	Index   []string // row names, nil when the file has no index column
	Rows    [][]string
}

// ReadCSV parses a CSV stream. With index set, the first column becomes the
// row names and is dropped from Columns.
func ReadCSV(r io.Reader, name string, index bool) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", name)
	}
	if len(records) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s: empty csv", name)
	}

	header := records[0]
	if index {
		if len(header) < 2 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "%s: index column needs at least one data column", name)
		}
		header = header[1:]
	}
	t := &Table{Name: name, Columns: slices.Clone(header)}
	for i, rec := range records[1:] {
		if index {
			if len(rec) == 0 {
				continue
			}
			t.Index = append(t.Index, rec[0])
			rec = rec[1:]
		}
		if len(rec) != len(header) {
			return nil, errors.New(errors.ErrCodeSizeMismatch, "%s: line %d has %d fields, want %d", name, i+2, len(rec), len(header))
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

func (t *Table) column(name string) (int, error) {
	i := slices.Index(t.Columns, name)
	if i < 0 {
		return 0, errors.New(errors.ErrCodeNotFound, "table %s has no column %q", t.Name, name)
	}
	return i, nil
}

// Column returns the cells of one column.
func (t *Table) Column(name string) ([]string, error) {
	j, err := t.column(name)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[j]
	}
	return out, nil
}

// Floats parses one column as numbers. Empty cells and "NA" become NaN.
func (t *Table) Floats(name string) ([]float64, error) {
	cells, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(cells))
	for i, c := range cells {
		if out[i], err = parseFloat(c); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidType, err, "%s.%s row %d", t.Name, name, i)
		}
	}
	return out, nil
}

// Numeric converts the named columns (all columns when none are given) into
// a rows x columns numeric matrix.
func (t *Table) Numeric(cols ...string) (*matrix.Matrix, error) {
	idx, err := t.indices(cols)
	if err != nil {
		return nil, err
	}
	data := make([]float64, 0, len(t.Rows)*len(idx))
	for i, r := range t.Rows {
		for _, j := range idx {
			v, err := parseFloat(r[j])
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidType, err, "%s.%s row %d", t.Name, t.Columns[j], i)
			}
			data = append(data, v)
		}
	}
	return matrix.New(len(t.Rows), len(idx), data)
}

// Categorical converts the named columns into a rows x columns label matrix.
func (t *Table) Categorical(cols ...string) (*matrix.Matrix, error) {
	idx, err := t.indices(cols)
	if err != nil {
		return nil, err
	}
	values := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		values[i] = make([]string, len(idx))
		for k, j := range idx {
			values[i][k] = r[j]
		}
	}
	return matrix.Categorical(values)
}

// RowNames returns the index column, or the 0-based row numbers as strings
// when the table has none.
func (t *Table) RowNames() []string {
	if t.Index != nil {
		return slices.Clone(t.Index)
	}
	out := make([]string, len(t.Rows))
	for i := range out {
		out[i] = strconv.Itoa(i)
	}
	return out
}

func (t *Table) indices(cols []string) ([]int, error) {
	if len(cols) == 0 {
		idx := make([]int, len(t.Columns))
		for i := range idx {
			idx[i] = i
		}
		return idx, nil
	}
	idx := make([]int, len(cols))
	for k, c := range cols {
		j, err := t.column(c)
		if err != nil {
			return nil, err
		}
		idx[k] = j
	}
	return idx, nil
}

func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "", "NA", "NaN", "nan":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}
