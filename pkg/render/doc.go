// Package render turns laid-out concept maps into images.
//
// The [nodelink] subpackage emits Graphviz DOT with every node pinned to
// the coordinates computed by [layout.Compute] and renders it to SVG. The
// [ToPDF] and [ToPNG] functions in this package convert that SVG using the
// external rsvg-convert tool (from librsvg):
//
//	dot := nodelink.ToDOT(g, l, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := render.ToPNG(ctx, svg, 2.0)
//
// [nodelink]: github.com/matzehuels/conceptmap/pkg/render/nodelink
// [layout.Compute]: github.com/matzehuels/conceptmap/pkg/layout.Compute
package render
