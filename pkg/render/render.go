package render

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgeps"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/matzehuels/crossplot/pkg/board"
	"github.com/matzehuels/crossplot/pkg/errors"
)

// DefaultDPI is the raster resolution used when none is given.
const DefaultDPI = 150

var formats = []string{"png", "jpg", "jpeg", "tif", "tiff", "svg", "pdf", "eps"}

// Formats returns the supported output formats.
func Formats() []string { return append([]string(nil), formats...) }

// Option configures rendering.
type Option func(*renderer)

type renderer struct {
	format string
	dpi    int
}

// WithFormat overrides the format inferred from the file name.
func WithFormat(f string) Option { return func(r *renderer) { r.format = f } }

// WithDPI sets the raster resolution. Vector formats ignore it.
func WithDPI(dpi int) Option { return func(r *renderer) { r.dpi = dpi } }

func newRenderer(opts []Option) renderer {
	r := renderer{dpi: DefaultDPI}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// FormatOf returns the format implied by a file name's extension.
func FormatOf(path string) (string, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return "", errors.New(errors.ErrCodeInvalidFormat, "cannot infer a format from %q; add an extension or set one", path)
	}
	if err := errors.ValidateFormat(ext, formats); err != nil {
		return "", err
	}
	return ext, nil
}

// Save renders fig to path.
func Save(fig board.Figure, path string, opts ...Option) error {
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	r := newRenderer(opts)
	if r.format == "" {
		f, err := FormatOf(path)
		if err != nil {
			return err
		}
		r.format = f
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", path)
	}
	w := bufio.NewWriter(f)
	if err := r.encode(w, fig); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	return f.Close()
}

// Encode renders fig in format to w.
func Encode(w io.Writer, fig board.Figure, format string, opts ...Option) error {
	r := newRenderer(opts)
	r.format = format
	return r.encode(w, fig)
}

func (r renderer) encode(w io.Writer, fig board.Figure) error {
	if fig == nil {
		return errors.New(errors.ErrCodeInvalidInput, "nothing to render")
	}
	format := strings.ToLower(strings.TrimSpace(r.format))
	if err := errors.ValidateFormat(format, formats); err != nil {
		return err
	}
	if r.dpi <= 0 {
		return errors.New(errors.ErrCodeInvalidOption, "dpi must be positive, got %d", r.dpi)
	}

	fw, fh := fig.Size()
	width, height := vg.Length(fw)*vg.Inch, vg.Length(fh)*vg.Inch
	c, writer := r.canvas(format, width, height)
	if err := fig.Draw(draw.New(c)); err != nil {
		return err
	}
	if _, err := writer.WriteTo(w); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode %s", format)
	}
	return nil
}

// canvas returns the backend for format and the value that encodes it.
func (r renderer) canvas(format string, w, h vg.Length) (vg.CanvasSizer, io.WriterTo) {
	switch format {
	case "svg":
		c := vgsvg.New(w, h)
		return c, c
	case "pdf":
		c := vgpdf.New(w, h)
		return c, c
	case "eps":
		c := vgeps.New(w, h)
		return c, c
	}
	c := vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(r.dpi))
	switch format {
	case "jpg", "jpeg":
		return c, vgimg.JpegCanvas{Canvas: c}
	case "tif", "tiff":
		return c, vgimg.TiffCanvas{Canvas: c}
	}
	return c, vgimg.PngCanvas{Canvas: c}
}
