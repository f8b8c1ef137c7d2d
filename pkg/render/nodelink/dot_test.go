package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/matzehuels/conceptmap/pkg/graph"
	"github.com/matzehuels/conceptmap/pkg/layout"
)

func sample() graph.Graph {
	return graph.Graph{
		Nodes: []graph.Node{
			{ID: "r", Label: "Research", Type: graph.TypeRoot},
			{ID: "a", Label: "Trust", Type: graph.TypeCategory, Summary: "why people trust"},
			{ID: "b", Label: "Cost", Type: graph.TypeLeaf},
		},
		Edges: []graph.Edge{
			{Source: "r", Target: "a", Relationship: "includes"},
			{Source: "a", Target: "b"},
			{Source: "r", Target: "b"},
		},
	}
}

func TestToDOT(t *testing.T) {
	g := sample()
	l := layout.Compute(g, layout.DefaultConfig())
	dot := ToDOT(g, l, Options{Detailed: true, Collapsed: map[string]bool{"a": true}})

	for _, want := range []string{
		"digraph G {",
		"inputscale=72;",
		`"r" [label="Research"`,
		`fontcolor=white`,
		`label="Trust +"`,
		`tooltip="why people trust"`,
		`"r" -> "a" [label="includes", fontsize=10];`,
		`"a" -> "b";`,
		`"r" -> "b" [style=dashed];`,
		`width=2.778`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT missing %q\n%s", want, dot)
		}
	}
}

func TestToDOTFlipsY(t *testing.T) {
	g := graph.Graph{Nodes: []graph.Node{{ID: "only", Label: "Only", Type: graph.TypeRoot}}}
	l := layout.Compute(g, layout.DefaultConfig())
	p, _ := l.Position("only")
	dot := ToDOT(g, l, Options{})

	want := `pos="` + ftoa(p.X) + "," + ftoa(l.Height-p.Y) + `!"`
	if !strings.Contains(dot, want) {
		t.Errorf("ToDOT missing %s\n%s", want, dot)
	}
}

func TestToDOTSkipsUnplacedNodes(t *testing.T) {
	g := sample()
	dot := ToDOT(g, layout.Layout{}, Options{})
	if strings.Contains(dot, `"r" [`) {
		t.Errorf("ToDOT emitted a node without a position:\n%s", dot)
	}
}

func TestRenderSVG(t *testing.T) {
	g := sample()
	l := layout.Compute(g, layout.DefaultConfig())
	svg, err := RenderSVG(context.Background(), ToDOT(g, l, Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Errorf("RenderSVG output is not SVG: %.80s", svg)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 100.00 50.00"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %s, want %s", got, want)
	}
}

func ftoa(f float64) string {
	return fmt.Sprintf("%.2f", f)
}
