package dataset

import (
	"slices"

	"github.com/matzehuels/crossplot/pkg/errors"
)

// DefaultBaseURL hosts the example datasets.
const DefaultBaseURL = "https://raw.githubusercontent.com/marsilea-viz/marsilea-data/main"

// File is one CSV file of a dataset.
type File struct {
	Table string // table name within the dataset
	Path  string // path below the base URL
	Index bool   // first column holds row names
}

// Entry describes a downloadable dataset.
type Entry struct {
	Name        string
	Description string
	Files       []File
}

var catalog = []Entry{
	{
		Name:        "imdb",
		Description: "The IMDB top 100 movies",
		Files:       []File{{Table: "imdb", Path: "imdb.csv"}},
	},
	{
		Name:        "pbmc3k",
		Description: "Single-cell RNA-seq of 3k PBMCs from 10X Genomics",
		Files: []File{
			{Table: "exp", Path: "pbmc3k/exp.csv", Index: true},
			{Table: "pct_cells", Path: "pbmc3k/pct_cells.csv", Index: true},
			{Table: "count", Path: "pbmc3k/count.csv", Index: true},
		},
	},
	{
		Name:        "oncoprint",
		Description: "Subsample of Breast Invasive Carcinoma (TCGA, PanCancer Atlas)",
		Files: []File{
			{Table: "cna", Path: "oncoprint/cna.csv", Index: true},
			{Table: "mrna_exp", Path: "oncoprint/mrna_exp.csv", Index: true},
			{Table: "methyl_exp", Path: "oncoprint/methyl_exp.csv", Index: true},
			{Table: "clinical", Path: "oncoprint/clinical.csv", Index: true},
		},
	},
	{
		Name:        "cooking_oils",
		Description: "Fat composition of cooking oils",
		Files:       []File{{Table: "cooking_oils", Path: "cooking_oils.csv"}},
	},
	{
		Name:        "mouse_embryo",
		Description: "Spatial transcriptomics of a mouse embryo (cell positions and types)",
		Files:       []File{{Table: "mouse_embryo", Path: "mouse_embryo.csv"}},
	},
	{
		Name:        "seq_align",
		Description: "Multiple sequence alignment of a protein family",
		Files:       []File{{Table: "seq_align", Path: "seq_align.csv", Index: true}},
	},
	{
		Name:        "les_miserables",
		Description: "Character co-occurrence network of Les Miserables",
		Files: []File{
			{Table: "nodes", Path: "les_miserables/nodes.csv"},
			{Table: "links", Path: "les_miserables/links.csv"},
		},
	},
}

// Catalog returns the known datasets in a stable order.
func Catalog() []Entry {
	out := make([]Entry, len(catalog))
	for i, e := range catalog {
		e.Files = slices.Clone(e.Files)
		out[i] = e
	}
	return out
}

// Names returns the names of the known datasets.
func Names() []string {
	names := make([]string, len(catalog))
	for i, e := range catalog {
		names[i] = e.Name
	}
	return names
}

// Lookup returns the catalog entry for name, or a DATASET_NOT_FOUND error.
func Lookup(name string) (Entry, error) {
	for _, e := range catalog {
		if e.Name == name {
			return e, nil
		}
	}
	return Entry{}, errors.New(errors.ErrCodeDatasetNotFound, "unknown dataset %q (known: %v)", name, Names())
}
