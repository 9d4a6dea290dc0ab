package figspec

import (
	"context"
	"os"
	"path/filepath"

	"github.com/matzehuels/crossplot/pkg/dataset"
	"github.com/matzehuels/crossplot/pkg/errors"
	"github.com/matzehuels/crossplot/pkg/matrix"
)

// Resolver turns [Data] references into tables. Dataset references go
// through Loader; relative paths are resolved against Dir.
type Resolver struct {
	Loader *dataset.Loader
	Dir    string
}

// Table loads the referenced table.
func (r *Resolver) Table(ctx context.Context, d Data) (*dataset.Table, error) {
	if d.Dataset != "" {
		if r.Loader == nil {
			return nil, errors.New(errors.ErrCodeInvalidOption, "dataset %q referenced but no loader configured", d.Dataset)
		}
		return r.Loader.LoadTable(ctx, d.Dataset, d.Table)
	}

	path := d.Path
	if !filepath.IsAbs(path) && r.Dir != "" {
		path = filepath.Join(r.Dir, path)
	}
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()
	return dataset.ReadCSV(f, filepath.Base(path), d.Index)
}

// source is a resolved main table with the names of both matrix axes.
type source struct {
	table    *dataset.Table
	m        *matrix.Matrix
	rowNames []string
	colNames []string
}

// Matrix loads d and converts the selected columns. Table rows become matrix
// rows unless d.Transpose is set.
func (r *Resolver) Matrix(ctx context.Context, d Data) (*matrix.Matrix, error) {
	src, err := r.source(ctx, d)
	if err != nil {
		return nil, err
	}
	return src.m, nil
}

// Names returns the row and column names of the matrix d resolves to.
func (r *Resolver) Names(ctx context.Context, d Data) (rows, cols []string, err error) {
	src, err := r.source(ctx, d)
	if err != nil {
		return nil, nil, err
	}
	return src.rowNames, src.colNames, nil
}

func (r *Resolver) source(ctx context.Context, d Data) (*source, error) {
	t, err := r.Table(ctx, d)
	if err != nil {
		return nil, err
	}
	var m *matrix.Matrix
	if d.Type == "categorical" {
		m, err = t.Categorical(d.Columns...)
	} else {
		m, err = t.Numeric(d.Columns...)
	}
	if err != nil {
		return nil, err
	}

	cols := d.Columns
	if len(cols) == 0 {
		cols = t.Columns
	}
	src := &source{table: t, m: m, rowNames: t.RowNames(), colNames: append([]string(nil), cols...)}
	if d.Transpose {
		src.m = m.T()
		src.rowNames, src.colNames = src.colNames, src.rowNames
	}
	return src, nil
}
