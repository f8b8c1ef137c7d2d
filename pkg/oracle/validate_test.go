package oracle

import (
	"strings"
	"testing"

	errs "github.com/matzehuels/conceptmap/pkg/errors"
	"github.com/matzehuels/conceptmap/pkg/graph"
)

func n(id string, typ graph.NodeType) graph.Node {
	return graph.Node{ID: id, Label: strings.ToUpper(id), Type: typ}
}

func e(src, dst string) graph.Edge { return graph.Edge{Source: src, Target: dst} }

func TestValidateFragment(t *testing.T) {
	current := graph.Graph{
		Nodes: []graph.Node{n("a", graph.TypeRoot), n("b", graph.TypeCategory)},
		Edges: []graph.Edge{e("a", "b")},
	}

	tests := []struct {
		name      string
		kind      Kind
		fragment  graph.Graph
		surviving graph.Graph
		wantErr   string
	}{
		{
			name:     "valid regenerate",
			kind:     KindRegenerate,
			fragment: graph.Graph{Nodes: []graph.Node{n("r", graph.TypeRoot), n("x", graph.TypeLeaf)}, Edges: []graph.Edge{e("r", "x")}},
		},
		{
			name:     "empty regenerate",
			kind:     KindRegenerate,
			fragment: graph.Graph{},
			wantErr:  "no nodes",
		},
		{
			name:     "empty dive is allowed",
			kind:     KindDive,
			fragment: graph.Graph{},
		},
		{
			name:      "dive edge to existing node",
			kind:      KindDive,
			fragment:  graph.Graph{Nodes: []graph.Node{n("c", graph.TypeLeaf)}, Edges: []graph.Edge{e("b", "c")}},
			surviving: current,
		},
		{
			name:      "dive edge from non-selected existing node",
			kind:      KindDive,
			fragment:  graph.Graph{Nodes: []graph.Node{n("c", graph.TypeLeaf)}, Edges: []graph.Edge{e("a", "c")}},
			surviving: current,
		},
		{
			name:      "unknown edge target",
			kind:      KindDive,
			fragment:  graph.Graph{Nodes: []graph.Node{n("c", graph.TypeLeaf)}, Edges: []graph.Edge{e("b", "ghost")}},
			surviving: current,
			wantErr:   "unknown target",
		},
		{
			name:     "regenerate cannot reference old graph",
			kind:     KindRegenerate,
			fragment: graph.Graph{Nodes: []graph.Node{n("r", graph.TypeRoot)}, Edges: []graph.Edge{e("a", "r")}},
			wantErr:  "unknown source",
		},
		{
			name:     "missing label",
			kind:     KindRegenerate,
			fragment: graph.Graph{Nodes: []graph.Node{{ID: "r", Type: graph.TypeRoot}}},
			wantErr:  "nodes[0].label is required",
		},
		{
			name:     "missing id",
			kind:     KindRegenerate,
			fragment: graph.Graph{Nodes: []graph.Node{{Label: "R", Type: graph.TypeRoot}}},
			wantErr:  "nodes[0].id is required",
		},
		{
			name:     "bad type",
			kind:     KindRegenerate,
			fragment: graph.Graph{Nodes: []graph.Node{{ID: "r", Label: "R", Type: "topic"}}},
			wantErr:  "nodes[0].type must be one of",
		},
		{
			name:     "edge missing source",
			kind:     KindRegenerate,
			fragment: graph.Graph{Nodes: []graph.Node{n("r", graph.TypeRoot)}, Edges: []graph.Edge{{Target: "r"}}},
			wantErr:  "edges[0].source is required",
		},
		{
			name:     "duplicate ids",
			kind:     KindRegenerate,
			fragment: graph.Graph{Nodes: []graph.Node{n("r", graph.TypeRoot), n("r", graph.TypeLeaf)}},
			wantErr:  "duplicate node id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFragment(tt.kind, tt.fragment, tt.surviving)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("ValidateFragment() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("ValidateFragment() = nil, want error containing %q", tt.wantErr)
			}
			if !errs.Is(err, errs.ErrCodeInvalidFragment) {
				t.Errorf("code = %s, want INVALID_FRAGMENT", errs.GetCode(err))
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}
