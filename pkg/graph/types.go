package graph

import "slices"

// NodeType classifies a concept by its role in the hierarchy.
type NodeType string

// Node types produced by the oracle.
const (
	TypeRoot     NodeType = "root"
	TypeCategory NodeType = "category"
	TypeLeaf     NodeType = "leaf"
)

// Valid reports whether t is one of the known node types.
func (t NodeType) Valid() bool {
	switch t {
	case TypeRoot, TypeCategory, TypeLeaf:
		return true
	}
	return false
}

// Graph is the canonical serialization format for concept graphs.
// Used for oracle fragments, committed state, saved views and API responses.
//
// Slice order is significant: the first node and the edge order drive root
// selection, visibility traversal and sibling placement in layouts.
type Graph struct {
	Nodes []Node `json:"nodes" bson:"nodes" validate:"dive"`
	Edges []Edge `json:"edges" bson:"edges" validate:"dive"`
}

// Node is a single concept. Nodes are never edited in place; an update
// replaces the node wholesale under the same ID.
type Node struct {
	ID        string   `json:"id" bson:"id" validate:"required"`
	Label     string   `json:"label" bson:"label" validate:"required"`
	Type      NodeType `json:"type" bson:"type" validate:"required,oneof=root category leaf"`
	Summary   string   `json:"summary,omitempty" bson:"summary,omitempty"`
	Reasoning string   `json:"reasoning,omitempty" bson:"reasoning,omitempty"` // why the oracle placed it here
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Edge is a directed parent→child relation between two concepts.
type Edge struct {
	Source       string `json:"source" bson:"source" validate:"required"`
	Target       string `json:"target" bson:"target" validate:"required"`
	Relationship string `json:"relationship,omitempty" bson:"relationship,omitempty"`
}

// Clone returns a deep copy of g. Nil slices stay nil-free so that JSON
// output always carries "nodes": [] rather than null.
func (g Graph) Clone() Graph {
	out := Graph{
		Nodes: make([]Node, len(g.Nodes)),
		Edges: make([]Edge, len(g.Edges)),
	}
	copy(out.Nodes, g.Nodes)
	copy(out.Edges, g.Edges)
	return out
}

// IsEmpty reports whether the graph has no nodes.
func (g Graph) IsEmpty() bool { return len(g.Nodes) == 0 }

// Node returns the node with the given ID.
func (g Graph) Node(id string) (Node, bool) {
	i := slices.IndexFunc(g.Nodes, func(n Node) bool { return n.ID == id })
	if i < 0 {
		return Node{}, false
	}
	return g.Nodes[i], true
}

// HasNode reports whether a node with the given ID exists.
func (g Graph) HasNode(id string) bool {
	_, ok := g.Node(id)
	return ok
}

// NodeIDs returns the node IDs in graph order.
func (g Graph) NodeIDs() []string {
	ids := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.ID
	}
	return ids
}

// IDSet returns the node IDs as a set.
func (g Graph) IDSet() map[string]struct{} {
	set := make(map[string]struct{}, len(g.Nodes))
	for _, n := range g.Nodes {
		set[n.ID] = struct{}{}
	}
	return set
}
