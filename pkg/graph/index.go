package graph

// Index is an adjacency view over a graph, built once and queried many
// times. Children keep edge order.
type Index struct {
	order    []string
	nodes    map[string]Node
	children map[string][]string
	inDegree map[string]int
}

// NewIndex builds adjacency maps for g. Edges whose endpoints are not in
// g are ignored.
func NewIndex(g Graph) *Index {
	idx := &Index{
		order:    make([]string, 0, len(g.Nodes)),
		nodes:    make(map[string]Node, len(g.Nodes)),
		children: make(map[string][]string),
		inDegree: make(map[string]int, len(g.Nodes)),
	}
	for _, n := range g.Nodes {
		if _, dup := idx.nodes[n.ID]; dup {
			continue
		}
		idx.order = append(idx.order, n.ID)
		idx.nodes[n.ID] = n
		idx.inDegree[n.ID] = 0
	}
	for _, e := range g.Edges {
		if _, ok := idx.nodes[e.Source]; !ok {
			continue
		}
		if _, ok := idx.nodes[e.Target]; !ok {
			continue
		}
		idx.children[e.Source] = append(idx.children[e.Source], e.Target)
		idx.inDegree[e.Target]++
	}
	return idx
}

// Has reports whether id is a node of the indexed graph.
func (x *Index) Has(id string) bool {
	_, ok := x.nodes[id]
	return ok
}

// Node returns the node with the given id.
func (x *Index) Node(id string) (Node, bool) {
	n, ok := x.nodes[id]
	return n, ok
}

// Children returns the targets of id's outgoing edges in edge order.
func (x *Index) Children(id string) []string { return x.children[id] }

// InDegree returns the number of incoming edges of id.
func (x *Index) InDegree(id string) int { return x.inDegree[id] }

// Sources returns every node with in-degree 0 in node order.
func (x *Index) Sources() []string {
	var out []string
	for _, id := range x.order {
		if x.inDegree[id] == 0 {
			out = append(out, id)
		}
	}
	return out
}

// StartNodes returns the in-degree-0 nodes, or the first node alone when
// every node has a parent (a fully cyclic graph).
func (x *Index) StartNodes() []string {
	if src := x.Sources(); len(src) > 0 {
		return src
	}
	if len(x.order) > 0 {
		return []string{x.order[0]}
	}
	return nil
}

// Descendants returns every node reachable from id through outgoing edges,
// excluding id itself even when a cycle leads back to it.
func (x *Index) Descendants(id string) map[string]struct{} {
	out := make(map[string]struct{})
	stack := append([]string(nil), x.children[id]...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == id {
			continue
		}
		if _, seen := out[n]; seen {
			continue
		}
		out[n] = struct{}{}
		stack = append(stack, x.children[n]...)
	}
	return out
}

// Root picks the node that anchors the expansion set: the first node of
// type root with no parent, else the first parentless node, else the first
// node. An empty graph yields "".
func (x *Index) Root() string {
	for _, id := range x.order {
		if x.inDegree[id] == 0 && x.nodes[id].Type == TypeRoot {
			return id
		}
	}
	for _, id := range x.order {
		if x.inDegree[id] == 0 {
			return id
		}
	}
	if len(x.order) > 0 {
		return x.order[0]
	}
	return ""
}

// Root is shorthand for NewIndex(g).Root().
func Root(g Graph) string { return NewIndex(g).Root() }

// Descendants is shorthand for NewIndex(g).Descendants(id).
func Descendants(g Graph, id string) map[string]struct{} { return NewIndex(g).Descendants(id) }
