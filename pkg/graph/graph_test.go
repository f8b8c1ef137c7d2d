package graph

import (
	"bytes"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	errs "github.com/matzehuels/conceptmap/pkg/errors"
)

func node(id string, typ NodeType) Node {
	return Node{ID: id, Label: strings.ToUpper(id), Type: typ}
}

func edge(src, dst string) Edge { return Edge{Source: src, Target: dst} }

func TestWriteReadGraph(t *testing.T) {
	g := Graph{
		Nodes: []Node{
			{ID: "pain", Label: "Pain points", Type: TypeRoot, Summary: "What hurts"},
			{ID: "cost", Label: "Cost", Type: TypeCategory, Reasoning: "Mentioned by 4 of 5"},
		},
		Edges: []Edge{{Source: "pain", Target: "cost", Relationship: "includes"}},
	}

	var buf bytes.Buffer
	if err := WriteGraph(g, &buf); err != nil {
		t.Fatalf("WriteGraph: %v", err)
	}
	if !strings.Contains(buf.String(), `"source": "pain"`) {
		t.Errorf("output missing source field:\n%s", buf.String())
	}

	got, err := ReadGraph(&buf)
	if err != nil {
		t.Fatalf("ReadGraph: %v", err)
	}
	if len(got.Nodes) != 2 || len(got.Edges) != 1 {
		t.Fatalf("got %d nodes %d edges, want 2 and 1", len(got.Nodes), len(got.Edges))
	}
	if got.Nodes[1].Reasoning != "Mentioned by 4 of 5" {
		t.Errorf("Reasoning = %q, want %q", got.Nodes[1].Reasoning, "Mentioned by 4 of 5")
	}
	if got.Edges[0].Relationship != "includes" {
		t.Errorf("Relationship = %q, want includes", got.Edges[0].Relationship)
	}
}

func TestMarshalEmptyGraph(t *testing.T) {
	data, err := MarshalGraph(Graph{})
	if err != nil {
		t.Fatalf("MarshalGraph: %v", err)
	}
	if !strings.Contains(string(data), `"nodes": []`) {
		t.Errorf("empty graph should marshal nodes as [], got %s", data)
	}
}

func TestReadGraphRejects(t *testing.T) {
	tests := []struct {
		name string
		json string
		code errs.Code
	}{
		{"dangling edge", `{"nodes":[{"id":"a","label":"A","type":"root"}],"edges":[{"source":"a","target":"b"}]}`, errs.ErrCodeInvalidGraph},
		{"duplicate id", `{"nodes":[{"id":"a","label":"A","type":"root"},{"id":"a","label":"B","type":"leaf"}],"edges":[]}`, errs.ErrCodeInvalidGraph},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalGraph([]byte(tt.json))
			if !errs.Is(err, tt.code) {
				t.Errorf("UnmarshalGraph error = %v, want code %s", err, tt.code)
			}
		})
	}

	if _, err := UnmarshalGraph([]byte("{not json")); err == nil {
		t.Error("UnmarshalGraph(malformed) = nil error, want error")
	}
}

func TestGraphFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.json")
	g := Graph{Nodes: []Node{node("a", TypeRoot), node("b", TypeLeaf)}, Edges: []Edge{edge("a", "b")}}

	if err := WriteGraphFile(g, path); err != nil {
		t.Fatalf("WriteGraphFile: %v", err)
	}
	got, err := ReadGraphFile(path)
	if err != nil {
		t.Fatalf("ReadGraphFile: %v", err)
	}
	if got.Nodes[0].ID != "a" || got.Edges[0].Target != "b" {
		t.Errorf("ReadGraphFile = %+v", got)
	}

	if _, err := ReadGraphFile(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ReadGraphFile(missing) error = %v, want not-exist", err)
	}
}

func TestCloneIsDeep(t *testing.T) {
	g := Graph{Nodes: []Node{node("a", TypeRoot)}, Edges: []Edge{}}
	c := g.Clone()
	c.Nodes[0].Label = "changed"
	if g.Nodes[0].Label != "A" {
		t.Errorf("original Label = %q after mutating clone, want A", g.Nodes[0].Label)
	}
}

func TestNodeTypeValid(t *testing.T) {
	for _, typ := range []NodeType{TypeRoot, TypeCategory, TypeLeaf} {
		if !typ.Valid() {
			t.Errorf("%q.Valid() = false, want true", typ)
		}
	}
	if NodeType("topic").Valid() {
		t.Error(`"topic".Valid() = true, want false`)
	}
}

func TestDisplayLabel(t *testing.T) {
	n := Node{ID: "x"}
	if got := n.DisplayLabel(); got != "x" {
		t.Errorf("DisplayLabel() = %q, want x", got)
	}
	n.Label = "Ex"
	if got := n.DisplayLabel(); got != "Ex" {
		t.Errorf("DisplayLabel() = %q, want Ex", got)
	}
}
