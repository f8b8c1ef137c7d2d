package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/conceptmap/pkg/graph"
	"github.com/matzehuels/conceptmap/pkg/layout"
	"github.com/matzehuels/conceptmap/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds each node's summary as a tooltip.
	Detailed bool

	// Collapsed marks nodes whose children are hidden.
	Collapsed map[string]bool

	// Geometry must match the config the layout was computed with.
	// Zero means [layout.DefaultConfig].
	Geometry layout.Config
}

func (o Options) box() (float64, float64) {
	if o.Geometry.NodeWidth <= 0 || o.Geometry.NodeHeight <= 0 {
		cfg := layout.DefaultConfig()
		return cfg.NodeWidth, cfg.NodeHeight
	}
	return o.Geometry.NodeWidth, o.Geometry.NodeHeight
}

const pointsPerInch = 72.0

var fills = map[graph.NodeType]string{
	graph.TypeRoot:     "#1e3a5f",
	graph.TypeCategory: "#dbeafe",
	graph.TypeLeaf:     "#ffffff",
}

// ToDOT converts a laid-out graph to Graphviz DOT. Nodes missing from l are
// skipped, along with their edges.
func ToDOT(g graph.Graph, l layout.Layout, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontname=\"Helvetica\", fontsize=14, fixedsize=true];\n")
	buf.WriteString("  edge [color=\"#64748b\", arrowsize=0.7];\n")
	buf.WriteString("\n")

	width, height := opts.box()
	for i := range g.Nodes {
		n := &g.Nodes[i]
		p, ok := l.Position(n.ID)
		if !ok {
			continue
		}
		attrs := fmtAttrs(n, opts)
		// Graphviz puts the origin bottom-left.
		attrs = append(attrs,
			fmt.Sprintf("pos=\"%.2f,%.2f!\"", p.X, l.Height-p.Y),
			fmt.Sprintf("width=%.3f", width/pointsPerInch),
			fmt.Sprintf("height=%.3f", height/pointsPerInch),
		)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range l.TreeEdges {
		fmt.Fprintf(&buf, "  %q -> %q%s;\n", e.Source, e.Target, edgeLabel(e, false))
	}
	for _, e := range l.CrossEdges {
		fmt.Fprintf(&buf, "  %q -> %q%s;\n", e.Source, e.Target, edgeLabel(e, true))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtAttrs(n *graph.Node, opts Options) []string {
	label := n.DisplayLabel()
	if opts.Collapsed[n.ID] {
		label += " +"
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if fill, ok := fills[n.Type]; ok {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", fill))
	}
	if n.Type == graph.TypeRoot {
		attrs = append(attrs, "fontcolor=white")
	}
	if opts.Detailed && n.Summary != "" {
		attrs = append(attrs, fmt.Sprintf("tooltip=%q", n.Summary))
	}
	return attrs
}

func edgeLabel(e graph.Edge, cross bool) string {
	var attrs []string
	if e.Relationship != "" {
		attrs = append(attrs, fmt.Sprintf("label=%q", e.Relationship), "fontsize=10")
	}
	if cross {
		attrs = append(attrs, "style=dashed")
	}
	if len(attrs) == 0 {
		return ""
	}
	return " [" + strings.Join(attrs, ", ") + "]"
}

// RenderSVG renders a DOT graph to SVG using Graphviz's neato engine,
// which honors pinned positions.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
