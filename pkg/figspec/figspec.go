// Package figspec reads figure descriptions from TOML or YAML files and
// builds boards from them.
//
// A description names the main data, how each axis is split or clustered,
// and the blocks placed around the main canvas:
//
//	name = "pbmc3k"
//	width = 6
//	height = 5
//
//	[data]
//	dataset = "pbmc3k"
//	table = "exp"
//
//	[rows]
//	cluster = { method = "average" }
//
//	[[blocks]]
//	side = "left"
//	kind = "dendrogram"
//
//	[[blocks]]
//	side = "right"
//	kind = "labels"
//
//	[legends]
//	side = "right"
package figspec

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/crossplot/pkg/errors"
)

// Figure is a complete figure description.
type Figure struct {
	Name     string   `toml:"name" yaml:"name" json:"name" validate:"omitempty,max=64"`
	Width    float64  `toml:"width" yaml:"width" json:"width" validate:"gte=0"`
	Height   float64  `toml:"height" yaml:"height" json:"height" validate:"gte=0"`
	Margin   *float64 `toml:"margin" yaml:"margin" json:"margin,omitempty" validate:"omitempty,gte=0"`
	ChunkGap *float64 `toml:"chunk_gap" yaml:"chunk_gap" json:"chunk_gap,omitempty" validate:"omitempty,gte=0"`

	Data   Data    `toml:"data" yaml:"data" json:"data"`
	Main   *Layer  `toml:"main" yaml:"main" json:"main,omitempty"`
	Layers []Layer `toml:"layers" yaml:"layers" json:"layers,omitempty" validate:"dive"`
	Rows   *Split  `toml:"rows" yaml:"rows" json:"rows,omitempty"`
	Cols   *Split  `toml:"cols" yaml:"cols" json:"cols,omitempty"`
	Blocks []Block `toml:"blocks" yaml:"blocks" json:"blocks,omitempty" validate:"dive"`

	Legends *Legends `toml:"legends" yaml:"legends" json:"legends,omitempty"`
	Output  Output   `toml:"output" yaml:"output" json:"output"`
}

// Data locates a table: a named dataset table or a local CSV file.
type Data struct {
	Dataset   string   `toml:"dataset" yaml:"dataset" json:"dataset,omitempty" validate:"required_without=Path,excluded_with=Path"`
	Table     string   `toml:"table" yaml:"table" json:"table,omitempty"`
	Path      string   `toml:"path" yaml:"path" json:"path,omitempty"`
	Index     bool     `toml:"index" yaml:"index" json:"index,omitempty"`
	Columns   []string `toml:"columns" yaml:"columns" json:"columns,omitempty"`
	Type      string   `toml:"type" yaml:"type" json:"type,omitempty" validate:"omitempty,oneof=numeric categorical"`
	Transpose bool     `toml:"transpose" yaml:"transpose" json:"transpose,omitempty"`
}

// Layer is a plotter drawn on the main canvas.
type Layer struct {
	Kind  string `toml:"kind" yaml:"kind" json:"kind" validate:"required,oneof=heatmap colors sizedmesh textmesh markermesh"`
	Name  string `toml:"name" yaml:"name" json:"name,omitempty"`
	Style Style  `toml:"style" yaml:"style" json:"style"`
	// Size holds the sizes of a sizedmesh; the main data gives the colors.
	Size *Data `toml:"size" yaml:"size" json:"size,omitempty"`
}

// Split partitions one axis.
type Split struct {
	Labels      []string `toml:"labels" yaml:"labels" json:"labels,omitempty" validate:"excluded_with=Breakpoints"`
	LabelsFrom  string   `toml:"labels_from" yaml:"labels_from" json:"labels_from,omitempty" validate:"excluded_with=Labels"`
	Order       []string `toml:"order" yaml:"order" json:"order,omitempty"`
	Breakpoints []int    `toml:"breakpoints" yaml:"breakpoints" json:"breakpoints,omitempty" validate:"dive,gt=0"`
	Cluster     *Cluster `toml:"cluster" yaml:"cluster" json:"cluster,omitempty"`
}

// Cluster requests hierarchical clustering of an axis.
type Cluster struct {
	Method         string `toml:"method" yaml:"method" json:"method,omitempty"`
	Metric         string `toml:"metric" yaml:"metric" json:"metric,omitempty"`
	K              int    `toml:"k" yaml:"k" json:"k,omitempty" validate:"gte=0"`
	KeepChunkOrder bool   `toml:"keep_chunk_order" yaml:"keep_chunk_order" json:"keep_chunk_order,omitempty"`
}

// Block is a plotter attached to one side of the main canvas.
type Block struct {
	Side     string  `toml:"side" yaml:"side" json:"side" validate:"required,oneof=left right top bottom"`
	Kind     string  `toml:"kind" yaml:"kind" json:"kind" validate:"required,oneof=heatmap colors bar numbers stackbar centerbar range area labels chunk title dendrogram arc textmesh"`
	Name     string  `toml:"name" yaml:"name" json:"name,omitempty"`
	Size     float64 `toml:"size" yaml:"size" json:"size,omitempty" validate:"gte=0"`
	Pad      float64 `toml:"pad" yaml:"pad" json:"pad,omitempty" validate:"gte=0"`
	Relative bool    `toml:"relative" yaml:"relative" json:"relative,omitempty"`
	Legend   *bool   `toml:"legend" yaml:"legend" json:"legend,omitempty"`

	// Data for data-driven kinds. Rows of the table are the items of the
	// axis; the selected columns become tracks.
	Data *Data `toml:"data" yaml:"data" json:"data,omitempty"`
	// Column picks one column of the main table as a single track.
	Column string `toml:"column" yaml:"column" json:"column,omitempty"`

	// Labels for the labels kind, or chunk texts for the chunk kind. The
	// labels kind defaults to the row or column names of the main data.
	Labels []string `toml:"labels" yaml:"labels" json:"labels,omitempty"`
	// Text of a title block.
	Text string `toml:"text" yaml:"text" json:"text,omitempty" validate:"required_if=Kind title"`

	// Links of an arc block, as pairs of item indices.
	Links [][]int `toml:"links" yaml:"links" json:"links,omitempty" validate:"dive,len=2,dive,gte=0"`

	// Dendrogram options.
	Method    string `toml:"method" yaml:"method" json:"method,omitempty"`
	Metric    string `toml:"metric" yaml:"metric" json:"metric,omitempty"`
	Recluster bool   `toml:"recluster" yaml:"recluster" json:"recluster,omitempty"`

	Style Style `toml:"style" yaml:"style" json:"style"`
}

// Style carries plotter options shared by most kinds.
type Style struct {
	Label     string            `toml:"label" yaml:"label" json:"label,omitempty"`
	Colormap  string            `toml:"colormap" yaml:"colormap" json:"colormap,omitempty"`
	Palette   string            `toml:"palette" yaml:"palette" json:"palette,omitempty"`
	Color     string            `toml:"color" yaml:"color" json:"color,omitempty" validate:"omitempty,color"`
	Colors    map[string]string `toml:"colors" yaml:"colors" json:"colors,omitempty" validate:"dive,color"`
	Range     []float64         `toml:"range" yaml:"range" json:"range,omitempty" validate:"omitempty,len=2"`
	Center    *float64          `toml:"center" yaml:"center" json:"center,omitempty"`
	FontSize  float64           `toml:"font_size" yaml:"font_size" json:"font_size,omitempty" validate:"gte=0"`
	Format    string            `toml:"format" yaml:"format" json:"format,omitempty"`
	LineWidth float64           `toml:"line_width" yaml:"line_width" json:"line_width,omitempty" validate:"gte=0"`
	Cut       int               `toml:"cut" yaml:"cut" json:"cut,omitempty" validate:"gte=0"`
	Values    bool              `toml:"values" yaml:"values" json:"values,omitempty"`
	Rotate    *bool             `toml:"rotate" yaml:"rotate" json:"rotate,omitempty"`
}

// Legends places the legend stack.
type Legends struct {
	Side  string   `toml:"side" yaml:"side" json:"side" validate:"omitempty,oneof=left right top bottom"`
	Order []string `toml:"order" yaml:"order" json:"order,omitempty"`
	Size  float64  `toml:"size" yaml:"size" json:"size,omitempty" validate:"gte=0"`
	Pad   float64  `toml:"pad" yaml:"pad" json:"pad,omitempty" validate:"gte=0"`
}

// Output lists the files a render produces by default.
type Output struct {
	Formats []string `toml:"formats" yaml:"formats" json:"formats,omitempty"`
	DPI     int      `toml:"dpi" yaml:"dpi" json:"dpi,omitempty" validate:"gte=0"`
}

// Parse decodes a description. format is "toml" or "yaml" ("yml" is
// accepted). The result is validated.
func Parse(data []byte, format string) (*Figure, error) {
	var fig Figure
	switch strings.ToLower(format) {
	case "toml":
		md, err := toml.Decode(string(data), &fig)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidSpec, err, "decode toml")
		}
		if undec := md.Undecoded(); len(undec) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidSpec, "unknown field %q", undec[0].String())
		}
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&fig); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidSpec, err, "decode yaml")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported figure format %q (want toml or yaml)", format)
	}
	if err := fig.Validate(); err != nil {
		return nil, err
	}
	return &fig, nil
}

// Load reads and parses a description file, choosing the decoder by
// extension.
func Load(path string) (*Figure, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "read %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", path)
	}
	fig, err := Parse(data, strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return nil, errors.Annotate(err, "%s", path)
	}
	return fig, nil
}

// Marshal encodes fig as TOML.
func Marshal(fig *Figure) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(fig); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode toml")
	}
	return buf.Bytes(), nil
}
