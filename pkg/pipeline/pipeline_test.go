package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/crossplot/pkg/cache"
	"github.com/matzehuels/crossplot/pkg/errors"
	"github.com/matzehuels/crossplot/pkg/figspec"
	"github.com/matzehuels/crossplot/pkg/layout"
)

const testCSV = `gene,a,b,c,group
g1,1.0,2.0,3.0,up
g2,2.0,1.0,0.5,down
g3,0.2,0.4,0.1,up
`

const testFigure = `
name = "small"
width = 4
height = 3

[data]
path = "expr.csv"
index = true
columns = ["a", "b", "c"]

[rows]
labels_from = "group"

[[blocks]]
side = "right"
kind = "labels"
name = "genes"

[output]
formats = ["svg"]
`

func writeFigure(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "expr.csv"), []byte(testCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "small.toml")
	if err := os.WriteFile(path, []byte(testFigure), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestValidateFormats(t *testing.T) {
	tests := []struct {
		formats []string
		wantErr bool
	}{
		{[]string{"svg", "png"}, false},
		{[]string{"pdf", "eps"}, false},
		{[]string{"SVG"}, false},
		{[]string{"svg", "gif"}, true},
		{[]string{""}, true},
		{nil, false},
	}

	for _, tt := range tests {
		err := ValidateFormats(tt.formats)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormats(%q) error = %v, wantErr %v", tt.formats, err, tt.wantErr)
		}
		if err != nil && errors.GetCode(err) != errors.ErrCodeInvalidFormat {
			t.Errorf("ValidateFormats(%q) code = %s", tt.formats, errors.GetCode(err))
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	path := writeFigure(t)

	opts := Options{Path: path}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if opts.Figure == nil || opts.Figure.Name != "small" {
		t.Fatalf("figure not loaded: %+v", opts.Figure)
	}
	if opts.Dir != filepath.Dir(path) {
		t.Errorf("Dir = %q, want %q", opts.Dir, filepath.Dir(path))
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != "svg" {
		t.Errorf("Formats = %v, want the description's [svg]", opts.Formats)
	}
	if opts.DPI != DefaultDPI {
		t.Errorf("DPI = %d, want %d", opts.DPI, DefaultDPI)
	}

	override := Options{Path: path, Formats: []string{"PNG", "png", "pdf"}, DPI: 72}
	if err := override.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if len(override.Formats) != 2 || override.Formats[0] != "png" || override.Formats[1] != "pdf" {
		t.Errorf("Formats = %v, want [png pdf]", override.Formats)
	}
	if got := override.ArtifactKeyOpts("png"); got.DPI != 72 || got.Format != "png" {
		t.Errorf("ArtifactKeyOpts = %+v", got)
	}
}

func TestOptionsErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want errors.Code
	}{
		{"empty", Options{}, errors.ErrCodeInvalidInput},
		{"missing file", Options{Path: filepath.Join(t.TempDir(), "nope.toml")}, errors.ErrCodeNotFound},
		{"bad format", Options{Figure: &figspec.Figure{}, Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
		{"negative dpi", Options{Figure: &figspec.Figure{}, DPI: -1}, errors.ErrCodeInvalidOption},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if got := errors.GetCode(err); got != tt.want {
				t.Errorf("error = %v, want code %s", err, tt.want)
			}
		})
	}
}

func TestHashFigure(t *testing.T) {
	path := writeFigure(t)
	dir := filepath.Dir(path)
	fig, err := figspec.Load(path)
	if err != nil {
		t.Fatal(err)
	}

	h1, err := HashFigure(fig, dir)
	if err != nil {
		t.Fatal(err)
	}
	h2, _ := HashFigure(fig, dir)
	if h1 != h2 {
		t.Error("HashFigure should be deterministic")
	}

	if err := os.WriteFile(filepath.Join(dir, "expr.csv"), []byte(testCSV+"g4,1,1,1,down\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	h3, _ := HashFigure(fig, dir)
	if h3 == h1 {
		t.Error("editing a data file should change the hash")
	}

	fig.Width = 6
	h4, _ := HashFigure(fig, dir)
	if h4 == h3 {
		t.Error("editing the description should change the hash")
	}

	if _, err := HashFigure(fig, t.TempDir()); errors.GetCode(err) != errors.ErrCodeNotFound {
		t.Errorf("missing data file error = %v, want NOT_FOUND", err)
	}
}

func TestRunnerExecute(t *testing.T) {
	ctx := context.Background()
	path := writeFigure(t)

	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil, nil)
	defer r.Close()

	first, err := r.Execute(ctx, Options{Path: path})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if first.CacheInfo.RenderHit {
		t.Error("first run should not hit the cache")
	}
	if first.Board == nil {
		t.Fatal("first run should return the board")
	}
	if first.Stats.Rows != 3 || first.Stats.Cols != 3 {
		t.Errorf("Stats dims = %dx%d, want 3x3", first.Stats.Rows, first.Stats.Cols)
	}
	svg := first.Artifacts["svg"]
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Errorf("svg artifact does not look like SVG: %.60q", svg)
	}

	second, err := r.Execute(ctx, Options{Path: path})
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.RenderHit || second.Board != nil {
		t.Error("second run should be served from the cache")
	}
	if second.FigureHash != first.FigureHash || !bytes.Equal(second.Artifacts["svg"], svg) {
		t.Error("cached artifacts should match the first run")
	}

	refreshed, err := r.Execute(ctx, Options{Path: path, Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if refreshed.CacheInfo.RenderHit {
		t.Error("refresh should bypass the cache")
	}

	// A new format is a partial miss, so everything is rebuilt.
	both, err := r.Execute(ctx, Options{Path: path, Formats: []string{"svg", "png"}})
	if err != nil {
		t.Fatal(err)
	}
	if both.CacheInfo.RenderHit {
		t.Error("a new format should miss")
	}
	if !bytes.HasPrefix(both.Artifacts["png"], []byte("\x89PNG")) {
		t.Error("png artifact should start with the PNG signature")
	}
}

func TestRunnerBuild(t *testing.T) {
	r := NewRunner(nil, nil, nil, nil)
	b, err := r.Build(context.Background(), Options{Path: writeFigure(t)})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := b.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}
	regions, err := b.Region(layout.Right, "genes")
	if err != nil {
		t.Fatal(err)
	}
	if len(regions) != 2 {
		t.Errorf("genes regions = %d, want one per group", len(regions))
	}
}

func TestRenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(nil, nil, nil, nil)
	b, err := r.Build(context.Background(), Options{Path: writeFigure(t)})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Render(ctx, b, []string{"svg"}, DefaultDPI); errors.GetCode(err) != errors.ErrCodeTimeout {
		t.Errorf("cancelled render error = %v, want TIMEOUT", err)
	}
}
