package graph

import "slices"

// ExpansionSet holds the IDs of nodes whose children are rendered.
// The zero value is not usable; use [NewExpansionSet].
type ExpansionSet map[string]struct{}

// NewExpansionSet returns a set containing ids. Empty ids are skipped.
func NewExpansionSet(ids ...string) ExpansionSet {
	s := make(ExpansionSet, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts id into the set.
func (s ExpansionSet) Add(id string) {
	if id != "" {
		s[id] = struct{}{}
	}
}

// Remove deletes id from the set.
func (s ExpansionSet) Remove(id string) { delete(s, id) }

// Has reports whether id is expanded.
func (s ExpansionSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Clone returns an independent copy of the set.
func (s ExpansionSet) Clone() ExpansionSet {
	out := make(ExpansionSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// IDs returns the expanded IDs sorted lexically.
func (s ExpansionSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Visible returns the subgraph a viewer should see given the expansion set.
//
// Traversal starts at every in-degree-0 node (or the first node when there
// is none) and always includes the node it visits, descending into
// children only for expanded nodes. An edge is visible iff both of its
// endpoints are. Node and edge order follow the input.
func Visible(g Graph, expanded ExpansionSet) Graph {
	idx := NewIndex(g)
	visible := make(map[string]struct{}, len(g.Nodes))

	var visit func(id string)
	visit = func(id string) {
		if _, seen := visible[id]; seen {
			return
		}
		visible[id] = struct{}{}
		if !expanded.Has(id) {
			return
		}
		for _, c := range idx.Children(id) {
			visit(c)
		}
	}
	for _, id := range idx.StartNodes() {
		visit(id)
	}

	out := Graph{Nodes: []Node{}, Edges: []Edge{}}
	for _, n := range g.Nodes {
		if _, ok := visible[n.ID]; ok {
			out.Nodes = append(out.Nodes, n)
		}
	}
	for _, e := range g.Edges {
		_, src := visible[e.Source]
		_, dst := visible[e.Target]
		if src && dst {
			out.Edges = append(out.Edges, e)
		}
	}
	return out
}
