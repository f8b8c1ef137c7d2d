package session

import "github.com/matzehuels/conceptmap/pkg/graph"

// MergeDive appends fragment nodes whose ids are not yet present and every
// fragment edge. Existing nodes and edges are never removed or altered.
func MergeDive(current, fragment graph.Graph) graph.Graph {
	out := current.Clone()
	ids := current.IDSet()
	for _, n := range fragment.Nodes {
		if _, ok := ids[n.ID]; ok {
			continue
		}
		ids[n.ID] = struct{}{}
		out.Nodes = append(out.Nodes, n)
	}
	out.Edges = append(out.Edges, fragment.Edges...)
	return out
}

// PruneDescendants removes the nodes in desc and every edge that leaves
// target, enters desc, or leaves desc. Order of the survivors is kept.
func PruneDescendants(g graph.Graph, target string, desc map[string]struct{}) graph.Graph {
	out := graph.Graph{
		Nodes: make([]graph.Node, 0, len(g.Nodes)),
		Edges: make([]graph.Edge, 0, len(g.Edges)),
	}
	for _, n := range g.Nodes {
		if _, drop := desc[n.ID]; !drop {
			out.Nodes = append(out.Nodes, n)
		}
	}
	for _, e := range g.Edges {
		if e.Source == target {
			continue
		}
		if _, drop := desc[e.Target]; drop {
			continue
		}
		if _, drop := desc[e.Source]; drop {
			continue
		}
		out.Edges = append(out.Edges, e)
	}
	return out
}

// MergeRefine replaces same-id nodes in place, appends new ones and
// appends every fragment edge.
func MergeRefine(pruned, fragment graph.Graph) graph.Graph {
	out := pruned.Clone()
	pos := make(map[string]int, len(out.Nodes))
	for i, n := range out.Nodes {
		pos[n.ID] = i
	}
	for _, n := range fragment.Nodes {
		if i, ok := pos[n.ID]; ok {
			out.Nodes[i] = n
			continue
		}
		pos[n.ID] = len(out.Nodes)
		out.Nodes = append(out.Nodes, n)
	}
	out.Edges = append(out.Edges, fragment.Edges...)
	return out
}
