package graph

import (
	errs "github.com/matzehuels/conceptmap/pkg/errors"
)

// CheckEdges verifies that every edge endpoint names a node in g.
// The error names the first dangling edge in edge order.
func CheckEdges(g Graph) error {
	ids := g.IDSet()
	for _, e := range g.Edges {
		if _, ok := ids[e.Source]; !ok {
			return errs.New(errs.ErrCodeInvalidGraph, "edge %s->%s: unknown source node", e.Source, e.Target)
		}
		if _, ok := ids[e.Target]; !ok {
			return errs.New(errs.ErrCodeInvalidGraph, "edge %s->%s: unknown target node", e.Source, e.Target)
		}
	}
	return nil
}

// Validate checks the committed-state invariants: node IDs are non-empty
// and unique, and no edge dangles.
func Validate(g Graph) error {
	seen := make(map[string]struct{}, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.ID == "" {
			return errs.New(errs.ErrCodeInvalidGraph, "node with empty id")
		}
		if _, dup := seen[n.ID]; dup {
			return errs.New(errs.ErrCodeInvalidGraph, "duplicate node id %q", n.ID)
		}
		seen[n.ID] = struct{}{}
	}
	return CheckEdges(g)
}
