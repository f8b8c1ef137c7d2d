package oracle

import (
	"testing"

	errs "github.com/matzehuels/conceptmap/pkg/errors"
	"github.com/matzehuels/conceptmap/pkg/graph"
)

func TestParseFragment(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantNodes int
		wantEdges int
		wantCode  errs.Code
	}{
		{
			name:      "bare json",
			text:      `{"nodes":[{"id":"a","label":"A","type":"root"}],"edges":[]}`,
			wantNodes: 1,
		},
		{
			name:      "markdown fence",
			text:      "Here you go:\n```json\n{\"nodes\":[{\"id\":\"a\",\"label\":\"A\",\"type\":\"root\"},{\"id\":\"b\",\"label\":\"B\",\"type\":\"leaf\"}],\"edges\":[{\"source\":\"a\",\"target\":\"b\"}]}\n```\nEnjoy.",
			wantNodes: 2,
			wantEdges: 1,
		},
		{
			name:      "title ignored",
			text:      `{"title":"Pain points","nodes":[],"edges":[]}`,
			wantNodes: 0,
		},
		{
			name:     "no object",
			text:     "I cannot help with that.",
			wantCode: errs.ErrCodeOracleTransport,
		},
		{
			name:     "broken object",
			text:     "{nodes: [}",
			wantCode: errs.ErrCodeOracleTransport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := ParseFragment(tt.text)
			if tt.wantCode != "" {
				if !errs.Is(err, tt.wantCode) {
					t.Fatalf("ParseFragment error = %v, want code %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFragment: %v", err)
			}
			if len(g.Nodes) != tt.wantNodes || len(g.Edges) != tt.wantEdges {
				t.Errorf("got %d nodes %d edges, want %d and %d", len(g.Nodes), len(g.Edges), tt.wantNodes, tt.wantEdges)
			}
		})
	}
}

func TestParseFragmentDescriptionFallback(t *testing.T) {
	g, err := ParseFragment(`{"nodes":[{"id":"a","label":"A","type":"leaf","description":"old field"}],"edges":[]}`)
	if err != nil {
		t.Fatalf("ParseFragment: %v", err)
	}
	if g.Nodes[0].Summary != "old field" {
		t.Errorf("Summary = %q, want %q", g.Nodes[0].Summary, "old field")
	}
	if g.Nodes[0].Type != graph.TypeLeaf {
		t.Errorf("Type = %q, want leaf", g.Nodes[0].Type)
	}
}
