package pipeline

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"time"

	"github.com/matzehuels/crossplot/pkg/board"
	"github.com/matzehuels/crossplot/pkg/errors"
	"github.com/matzehuels/crossplot/pkg/figspec"
	"github.com/matzehuels/crossplot/pkg/observability"
	"github.com/matzehuels/crossplot/pkg/render"
)

// Render encodes fig once per format.
func Render(ctx context.Context, fig board.Figure, formats []string, dpi int) (artifacts map[string][]byte, err error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, formats)
	start := time.Now()
	defer func() { hooks.OnRenderComplete(ctx, formats, time.Since(start), err) }()

	artifacts = make(map[string][]byte, len(formats))
	for _, format := range formats {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, err, "render %s", format)
		}
		var buf bytes.Buffer
		if err := render.Encode(&buf, fig, format, render.WithDPI(dpi)); err != nil {
			return nil, err
		}
		artifacts[format] = buf.Bytes()
	}
	return artifacts, nil
}

// HashFigure returns a content hash of fig and of every local file it
// reads. Dataset references are hashed by name.
func HashFigure(fig *figspec.Figure, dir string) (string, error) {
	desc, err := figspec.Marshal(fig)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	h.Write(desc)
	for _, path := range LocalPaths(fig) {
		if !filepath.IsAbs(path) && dir != "" {
			path = filepath.Join(dir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return "", errors.Wrap(errors.ErrCodeNotFound, err, "read %s", path)
			}
			return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", path)
		}
		h.Write([]byte(path))
		h.Write(data)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func LocalPaths(fig *figspec.Figure) []string {
	var paths []string
	add := func(d *figspec.Data) {
		if d != nil && d.Path != "" {
			paths = append(paths, d.Path)
		}
	}
	add(&fig.Data)
	if fig.Main != nil {
		add(fig.Main.Size)
	}
	for i := range fig.Layers {
		add(fig.Layers[i].Size)
	}
	for i := range fig.Blocks {
		add(fig.Blocks[i].Data)
	}
	return paths
}
