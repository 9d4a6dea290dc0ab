// Package render writes figures to image and document formats.
//
// # Overview
//
// A figure is anything implementing [board.Figure]: a single board or a
// composite of several. Rendering draws the figure onto a gonum vg canvas
// of the matching backend and encodes it:
//
//   - Raster: png, jpg/jpeg, tif/tiff (vgimg, resolution set by [WithDPI])
//   - Vector: svg (vgsvg), pdf (vgpdf), eps (vgeps)
//
// # Usage
//
// [Save] infers the format from the file extension unless [WithFormat] is
// given:
//
//	err := render.Save(fig, "heatmap.png", render.WithDPI(300))
//
// [Encode] writes to any io.Writer, which the HTTP server and the artifact
// cache use:
//
//	var buf bytes.Buffer
//	err := render.Encode(&buf, fig, "svg")
//
// [board.Figure]: github.com/matzehuels/crossplot/pkg/board.Figure
package render
