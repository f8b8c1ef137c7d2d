// Package layout positions the visible part of a concept graph as a
// left-to-right tree.
//
// Levels come from a breadth-first search over the parentless nodes; the
// first edge that reaches a node makes its source the layout parent, so a
// graph with shared children is drawn as a spanning forest. The remaining
// edges are returned as [Layout.CrossEdges] and take no vertical space.
//
// Vertical placement is bottom-up: every leaf occupies one slot of
// NodeHeight+SiblingGap and a parent is centered between its first and
// last child.
//
//	v := graph.Visible(g, expanded)
//	l := layout.Compute(v, layout.DefaultConfig())
//	pos := l.Positions["pain"] // pos.X, pos.Y, pos.Level
//
// Compute is a pure function: the same input always yields the same
// layout.
package layout
