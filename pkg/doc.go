// Package pkg provides the core libraries for crossplot, a multi-panel
// figure builder for annotated heatmaps and other matrix plots.
//
// # Overview
//
// A crossplot figure is a main canvas surrounded by blocks stacked on its
// four sides: color bars, labels, dendrograms, titles, bar charts and
// legends. Rows and columns of the main matrix can be split into chunks by
// group labels or cut points and reordered by hierarchical clustering; every
// block on the same axis follows the resulting order.
//
// # Architecture
//
// A figure goes through four stages:
//
//  1. Load: a figure document (TOML or YAML) is decoded by [figspec] and
//     its data is read from local CSV files or the [dataset] catalog.
//  2. Partition: [partition] splits and clusters each axis using the
//     linkage code in [cluster] and the trees in [dendrogram].
//  3. Layout: [layout] allocates a grid of regions in inches around the
//     main canvas, and [board] places every block into its region.
//  4. Render: [plotter] draws each block on a gonum vg canvas and [render]
//     encodes the result as png, jpg, tiff, svg, pdf or eps.
//
// [pipeline] runs the whole chain and caches rendered artifacts by figure
// hash. The CLI and the HTTP server both go through it.
//
// # Quick Start
//
//	b, _ := board.New(m, board.WithSize(4, 3))
//	mesh, _ := plotter.NewColorMesh(m, plotter.WithColormap("viridis"))
//	_ = b.AddLayer(mesh)
//	_ = b.SplitLabels(matrix.Rows, groups, nil)
//	_ = b.AddDendrogram(layout.Left)
//	labels, _ := plotter.NewLabels(rowNames)
//	_ = b.AddRight(labels)
//	err := render.Save(b, "heatmap.png", render.WithDPI(300))
//
// # Main Packages
//
// ## Figure Model
//
// [matrix] - Dense numeric matrices and their row/column axes.
//
// [layout] - Grid allocation: sides, named regions, sizes and pads.
//
// [partition] - Chunking and reordering of an axis by groups, cuts or
// clustering.
//
// [board] - The canvas that owns a matrix, its blocks and its partitions,
// plus composition of several boards into one figure.
//
// ## Drawing
//
// [plotter] - Heatmaps, sized meshes, bars, labels, arcs and dendrograms.
//
// [legend] - Colorbar and categorical legends with a factory registry.
//
// [palette] - Colormaps and categorical palettes.
//
// [style] - Shared text and line styles.
//
// [render] - Format selection and encoding.
//
// ## Infrastructure
//
// [figspec] - Declarative figure documents, validation and building.
//
// [dataset] - Catalog of example datasets, fetched over HTTP and cached.
//
// [cache] - File, Redis, MongoDB and null cache backends.
//
// [httputil] - Retrying HTTP client with response caching.
//
// [observability] - Hooks for pipeline, cache and HTTP metrics, with a
// Prometheus implementation.
//
// [errors] - Coded errors shared by every package.
package pkg
