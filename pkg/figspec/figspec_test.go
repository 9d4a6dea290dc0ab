package figspec

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/crossplot/pkg/board"
	"github.com/matzehuels/crossplot/pkg/errors"
	"github.com/matzehuels/crossplot/pkg/layout"
	"github.com/matzehuels/crossplot/pkg/matrix"
)

const exprCSV = `gene,a,b,c,group
g1,1.0,2.0,3.0,up
g2,2.0,1.0,0.5,down
g3,0.2,0.4,0.1,up
g4,5.0,4.0,3.5,down
`

const figureTOML = `
name = "expr"
width = 5
height = 4

[data]
path = "expr.csv"
index = true
columns = ["a", "b", "c"]

[rows]
labels_from = "group"
order = ["up", "down"]

[[blocks]]
side = "left"
kind = "dendrogram"
name = "tree"

[[blocks]]
side = "right"
kind = "labels"
name = "genes"

[[blocks]]
side = "right"
kind = "bar"
name = "a"
column = "a"
size = 0.8
style = { color = "#336699", label = "a" }

[[blocks]]
side = "top"
kind = "title"
text = "Expression"

[[blocks]]
side = "left"
kind = "chunk"
name = "groups"

[legends]
side = "right"

[output]
formats = ["svg", "png"]
dpi = 96
`

func writeFiles(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "expr.csv"), []byte(exprCSV), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "expr.toml"), []byte(figureTOML), 0o644))
	return dir
}

func TestParseTOML(t *testing.T) {
	fig, err := Parse([]byte(figureTOML), "toml")
	require.NoError(t, err)

	assert.Equal(t, "expr", fig.Name)
	assert.Equal(t, 5.0, fig.Width)
	assert.Equal(t, []string{"a", "b", "c"}, fig.Data.Columns)
	require.NotNil(t, fig.Rows)
	assert.Equal(t, "group", fig.Rows.LabelsFrom)
	require.Len(t, fig.Blocks, 5)
	assert.Equal(t, "#336699", fig.Blocks[2].Style.Color)
	assert.Equal(t, []string{"svg", "png"}, fig.Output.Formats)
}

func TestParseYAML(t *testing.T) {
	src := `
name: dots
data:
  dataset: pbmc3k
  table: exp
main:
  kind: sizedmesh
  size:
    dataset: pbmc3k
    table: pct_cells
cols:
  cluster:
    method: average
blocks:
  - side: top
    kind: dendrogram
legends:
  side: right
  order: [main]
`
	fig, err := Parse([]byte(src), "yml")
	require.NoError(t, err)
	require.NotNil(t, fig.Main)
	assert.Equal(t, "sizedmesh", fig.Main.Kind)
	assert.Equal(t, "pct_cells", fig.Main.Size.Table)
	assert.Equal(t, "average", fig.Cols.Cluster.Method)
	assert.Equal(t, []string{"main"}, fig.Legends.Order)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		format string
		code   errors.Code
	}{
		{"unknown format", `name = "x"`, "json", errors.ErrCodeInvalidFormat},
		{"malformed toml", `name = `, "toml", errors.ErrCodeInvalidSpec},
		{"unknown field", "colour = 1\n[data]\npath = \"a.csv\"", "toml", errors.ErrCodeInvalidSpec},
		{"unknown yaml field", "data: {path: a.csv}\nwidht: 3\n", "yaml", errors.ErrCodeInvalidSpec},
		{"no data", `name = "x"`, "toml", errors.ErrCodeInvalidSpec},
		{"dataset and path", "[data]\ndataset = \"imdb\"\npath = \"a.csv\"", "toml", errors.ErrCodeInvalidSpec},
		{"bad side", "[data]\npath = \"a.csv\"\n[[blocks]]\nside = \"middle\"\nkind = \"bar\"", "toml", errors.ErrCodeInvalidSpec},
		{"bad kind", "[data]\npath = \"a.csv\"\n[[blocks]]\nside = \"top\"\nkind = \"violin\"", "toml", errors.ErrCodeInvalidSpec},
		{"title without text", "[data]\npath = \"a.csv\"\n[[blocks]]\nside = \"top\"\nkind = \"title\"", "toml", errors.ErrCodeInvalidSpec},
		{"bad color", "[data]\npath = \"a.csv\"\n[[blocks]]\nside = \"top\"\nkind = \"bar\"\nstyle = { color = \"#zzz\" }", "toml", errors.ErrCodeInvalidSpec},
		{"negative size", "[data]\npath = \"a.csv\"\n[[blocks]]\nside = \"top\"\nkind = \"bar\"\nsize = -1", "toml", errors.ErrCodeInvalidSpec},
		{"bad output", "[data]\npath = \"a.csv\"\n[output]\nformats = [\"gif\"]", "toml", errors.ErrCodeInvalidFormat},
		{"bad name", "name = \"a\\tb\"\n[data]\npath = \"a.csv\"", "toml", errors.ErrCodeInvalidName},
		{"duplicate block", "[data]\npath = \"a.csv\"\n[[blocks]]\nside = \"top\"\nkind = \"bar\"\nname = \"x\"\n[[blocks]]\nside = \"top\"\nkind = \"area\"\nname = \"x\"", "toml", errors.ErrCodeDuplicateName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), tt.format)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err), err.Error())
		})
	}
}

func TestLoad(t *testing.T) {
	dir := writeFiles(t)
	fig, err := Load(filepath.Join(dir, "expr.toml"))
	require.NoError(t, err)
	assert.Equal(t, "expr", fig.Name)

	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.Equal(t, errors.ErrCodeNotFound, errors.GetCode(err))
}

func TestExampleFigures(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("..", "..", "examples", "*.*"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			fig, err := Load(path)
			require.NoError(t, err)
			assert.NotEmpty(t, fig.Name)
		})
	}
}

func TestBuild(t *testing.T) {
	dir := writeFiles(t)
	fig, err := Load(filepath.Join(dir, "expr.toml"))
	require.NoError(t, err)

	b, err := Build(context.Background(), fig, &Resolver{Dir: dir})
	require.NoError(t, err)

	rows, cols := b.Data().Dims()
	assert.Equal(t, 4, rows)
	assert.Equal(t, 3, cols)
	assert.Equal(t, []string{"up", "down"}, b.Partition(matrix.Rows).Labels())
	assert.Equal(t, board.Configured, b.State())

	require.NoError(t, b.Render())
	genes, err := b.Region(layout.Right, "genes")
	require.NoError(t, err)
	assert.Len(t, genes, 2)
	bars, err := b.Region(layout.Right, "a")
	require.NoError(t, err)
	assert.Greater(t, bars[0].Left, genes[0].Left)
	w, h := b.Size()
	assert.Equal(t, 5.0, w)
	assert.Equal(t, 4.0, h)
}

func TestBuildDefaultsToHeatmap(t *testing.T) {
	dir := writeFiles(t)
	fig := &Figure{Data: Data{Path: "expr.csv", Index: true, Columns: []string{"a", "b"}}}
	require.NoError(t, fig.Validate())

	b, err := Build(context.Background(), fig, &Resolver{Dir: dir})
	require.NoError(t, err)
	require.NoError(t, b.Render())
	regions, err := b.Region(layout.Main, "heatmap")
	require.NoError(t, err)
	assert.Len(t, regions, 1)
}

func TestBuildPairedBlocks(t *testing.T) {
	dir := writeFiles(t)
	pair := &Data{Path: "expr.csv", Index: true, Columns: []string{"a", "b"}}
	fig := &Figure{
		Data: Data{Path: "expr.csv", Index: true, Columns: []string{"a", "b", "c"}},
		Blocks: []Block{
			{Side: "left", Kind: "centerbar", Name: "shift", Data: pair},
			{Side: "right", Kind: "range", Name: "span", Data: pair},
			{Side: "right", Kind: "numbers", Name: "c", Column: "c"},
		},
	}
	require.NoError(t, fig.Validate())

	b, err := Build(context.Background(), fig, &Resolver{Dir: dir})
	require.NoError(t, err)
	require.NoError(t, b.Render())
	for _, blk := range fig.Blocks {
		side, err := layout.ParseSide(blk.Side)
		require.NoError(t, err)
		_, err = b.Region(side, blk.Name)
		assert.NoError(t, err, blk.Name)
	}
	assert.Contains(t, b.Legends(), "shift")
	assert.Contains(t, b.Legends(), "span")
}

func TestBuildErrors(t *testing.T) {
	dir := writeFiles(t)
	ctx := context.Background()
	base := Data{Path: "expr.csv", Index: true, Columns: []string{"a", "b", "c"}}

	tests := []struct {
		name string
		fig  Figure
		code errors.Code
	}{
		{"missing file", Figure{Data: Data{Path: "nope.csv"}}, errors.ErrCodeNotFound},
		{"non numeric column", Figure{Data: Data{Path: "expr.csv", Index: true}}, errors.ErrCodeInvalidType},
		{"column on wrong axis", Figure{Data: base, Blocks: []Block{{Side: "top", Kind: "bar", Column: "a"}}}, errors.ErrCodeInvalidSpec},
		{"block without data", Figure{Data: base, Blocks: []Block{{Side: "left", Kind: "bar"}}}, errors.ErrCodeInvalidSpec},
		{"unknown order label", Figure{Data: base, Rows: &Split{LabelsFrom: "group", Order: []string{"up"}}}, errors.ErrCodeInvalidOrder},
		{"labels length", Figure{Data: base, Cols: &Split{Labels: []string{"x"}}}, errors.ErrCodeSizeMismatch},
		{"dataset without loader", Figure{Data: Data{Dataset: "imdb"}}, errors.ErrCodeInvalidOption},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(ctx, &tt.fig, &Resolver{Dir: dir})
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err), err.Error())
		})
	}
}
