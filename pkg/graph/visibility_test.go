package graph

import (
	"slices"
	"testing"
)

func visibleIDs(g Graph, expanded ExpansionSet) []string {
	return Visible(g, expanded).NodeIDs()
}

func TestVisible(t *testing.T) {
	tree := Graph{
		Nodes: []Node{node("r", TypeRoot), node("a", TypeCategory), node("b", TypeCategory), node("a1", TypeLeaf), node("b1", TypeLeaf)},
		Edges: []Edge{edge("r", "a"), edge("r", "b"), edge("a", "a1"), edge("b", "b1")},
	}

	tests := []struct {
		name      string
		g         Graph
		expanded  ExpansionSet
		wantNodes []string
		wantEdges int
	}{
		{"empty graph", Graph{}, NewExpansionSet(), []string{}, 0},
		{"collapsed root", tree, NewExpansionSet(), []string{"r"}, 0},
		{"root expanded", tree, NewExpansionSet("r"), []string{"r", "a", "b"}, 2},
		{"one branch", tree, NewExpansionSet("r", "a"), []string{"r", "a", "b", "a1"}, 3},
		{"expanded but unreachable", tree, NewExpansionSet("a"), []string{"r"}, 0},
		{
			name: "cycle without sources starts at first node",
			g: Graph{
				Nodes: []Node{node("x", TypeCategory), node("y", TypeCategory)},
				Edges: []Edge{edge("x", "y"), edge("y", "x")},
			},
			expanded:  NewExpansionSet("x", "y"),
			wantNodes: []string{"x", "y"},
			wantEdges: 2,
		},
		{
			name: "reconvergent child appears once",
			g: Graph{
				Nodes: []Node{node("r", TypeRoot), node("p", TypeCategory), node("q", TypeCategory), node("s", TypeLeaf)},
				Edges: []Edge{edge("r", "p"), edge("r", "q"), edge("p", "s"), edge("q", "s")},
			},
			expanded:  NewExpansionSet("r", "p", "q"),
			wantNodes: []string{"r", "p", "q", "s"},
			wantEdges: 4,
		},
		{
			name: "every source is a start node",
			g: Graph{
				Nodes: []Node{node("r1", TypeRoot), node("r2", TypeRoot), node("c", TypeLeaf)},
				Edges: []Edge{edge("r2", "c")},
			},
			expanded:  NewExpansionSet(),
			wantNodes: []string{"r1", "r2"},
			wantEdges: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Visible(tt.g, tt.expanded)
			if ids := got.NodeIDs(); !slices.Equal(ids, tt.wantNodes) {
				t.Errorf("nodes = %v, want %v", ids, tt.wantNodes)
			}
			if len(got.Edges) != tt.wantEdges {
				t.Errorf("edges = %d, want %d", len(got.Edges), tt.wantEdges)
			}
			if err := CheckEdges(got); err != nil {
				t.Errorf("visible subgraph has dangling edge: %v", err)
			}
		})
	}
}

// Adding an id to the expansion set never hides a node.
func TestVisibleMonotone(t *testing.T) {
	g := Graph{
		Nodes: []Node{node("r", TypeRoot), node("a", TypeCategory), node("b", TypeCategory), node("c", TypeLeaf), node("d", TypeLeaf)},
		Edges: []Edge{edge("r", "a"), edge("r", "b"), edge("a", "c"), edge("b", "c"), edge("c", "d")},
	}
	order := []string{"r", "b", "c", "a", "d"}

	expanded := NewExpansionSet()
	prev := visibleIDs(g, expanded)
	for _, id := range order {
		expanded.Add(id)
		cur := visibleIDs(g, expanded)
		for _, p := range prev {
			if !slices.Contains(cur, p) {
				t.Errorf("expanding %s hid %s", id, p)
			}
		}
		prev = cur
	}
	if len(prev) != len(g.Nodes) {
		t.Errorf("fully expanded shows %d nodes, want %d", len(prev), len(g.Nodes))
	}
}

func TestExpansionSet(t *testing.T) {
	s := NewExpansionSet("b", "", "a")
	if got := s.IDs(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("IDs() = %v, want [a b]", got)
	}
	c := s.Clone()
	c.Remove("a")
	if !s.Has("a") {
		t.Error("Remove on clone affected original")
	}
	if c.Has("a") {
		t.Error("Has(a) = true after Remove")
	}
}
