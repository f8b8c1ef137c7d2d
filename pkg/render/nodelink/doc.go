// Package nodelink renders concept maps as node-link diagrams.
//
// # Overview
//
// Node positions are not chosen by Graphviz. [ToDOT] pins every node to the
// coordinates from a [layout.Layout] and the neato engine only routes the
// edges, so the picture matches what the server and explorer show.
//
// # Usage
//
//	l := layout.Compute(g, layout.DefaultConfig())
//	dot := nodelink.ToDOT(g, l, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Styling
//
// Root, category and leaf nodes get distinct fills. Cross edges (edges that
// are not part of the layout tree) are drawn dashed. Nodes listed in
// [Options].Collapsed carry a "+" marker to show that children are hidden.
//
// [layout.Layout]: github.com/matzehuels/conceptmap/pkg/layout.Layout
package nodelink
