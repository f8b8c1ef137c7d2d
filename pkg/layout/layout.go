package layout

import (
	"fmt"

	"github.com/matzehuels/conceptmap/pkg/graph"
)

// Default geometry in user units.
const (
	DefaultLevelGap   = 280
	DefaultMargin     = 40
	DefaultNodeWidth  = 200
	DefaultNodeHeight = 60
	DefaultSiblingGap = 20
)

// Config holds the layout geometry.
type Config struct {
	LevelGap   float64 `json:"level_gap" toml:"level_gap"`
	Margin     float64 `json:"margin" toml:"margin"`
	NodeWidth  float64 `json:"node_width" toml:"node_width"`
	NodeHeight float64 `json:"node_height" toml:"node_height"`
	SiblingGap float64 `json:"sibling_gap" toml:"sibling_gap"`
}

// DefaultConfig returns the standard geometry.
func DefaultConfig() Config {
	return Config{
		LevelGap:   DefaultLevelGap,
		Margin:     DefaultMargin,
		NodeWidth:  DefaultNodeWidth,
		NodeHeight: DefaultNodeHeight,
		SiblingGap: DefaultSiblingGap,
	}
}

// Validate checks that all dimensions are usable.
func (c Config) Validate() error {
	switch {
	case c.LevelGap <= 0:
		return fmt.Errorf("level_gap must be positive, got %v", c.LevelGap)
	case c.NodeWidth <= 0:
		return fmt.Errorf("node_width must be positive, got %v", c.NodeWidth)
	case c.NodeHeight <= 0:
		return fmt.Errorf("node_height must be positive, got %v", c.NodeHeight)
	case c.Margin < 0:
		return fmt.Errorf("margin must not be negative, got %v", c.Margin)
	case c.SiblingGap < 0:
		return fmt.Errorf("sibling_gap must not be negative, got %v", c.SiblingGap)
	}
	return nil
}

// slot is the vertical space taken by one leaf.
func (c Config) slot() float64 { return c.NodeHeight + c.SiblingGap }

// Position is the center of a node box.
type Position struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Level int     `json:"level"`
}

// Layout is the result of [Compute].
type Layout struct {
	Positions  map[string]Position `json:"positions"`
	Parents    map[string]string   `json:"parents"` // child → layout parent; roots are absent
	Roots      []string            `json:"roots"`
	TreeEdges  []graph.Edge        `json:"tree_edges"`
	CrossEdges []graph.Edge        `json:"cross_edges"`
	Width      float64             `json:"width"`
	Height     float64             `json:"height"`

	// Degenerate is set when the input had no parentless node and the
	// first node was used as the root.
	Degenerate bool `json:"degenerate,omitempty"`
}

// Position returns the position of id.
func (l Layout) Position(id string) (Position, bool) {
	p, ok := l.Positions[id]
	return p, ok
}

// Compute lays out g, which is normally the output of [graph.Visible].
func Compute(g graph.Graph, cfg Config) Layout {
	out := Layout{
		Positions:  make(map[string]Position, len(g.Nodes)),
		Parents:    make(map[string]string, len(g.Nodes)),
		Roots:      []string{},
		TreeEdges:  []graph.Edge{},
		CrossEdges: []graph.Edge{},
	}
	if len(g.Nodes) == 0 {
		return out
	}

	idx := graph.NewIndex(g)
	roots := idx.Sources()
	if len(roots) == 0 {
		roots = idx.StartNodes()
		out.Degenerate = true
	}
	out.Roots = append(out.Roots, roots...)

	levels, children := assignLevels(idx, roots, out.Parents)

	p := placer{cfg: cfg, cursor: cfg.Margin, levels: levels, children: children, pos: out.Positions}
	for _, r := range roots {
		p.place(r)
	}
	// Unreached nodes sit in a cycle with no path from a root.
	for _, n := range g.Nodes {
		if _, ok := out.Positions[n.ID]; ok {
			continue
		}
		levels[n.ID] = 1
		p.place(n.ID)
	}

	maxLevel := 0
	for _, pos := range out.Positions {
		maxLevel = max(maxLevel, pos.Level)
	}
	out.Width = float64(maxLevel)*cfg.LevelGap + cfg.NodeWidth + cfg.Margin
	out.Height = float64(len(out.Positions))*cfg.slot() + cfg.Margin

	seen := make(map[string]bool, len(out.Parents))
	for _, e := range g.Edges {
		if !idx.Has(e.Source) || !idx.Has(e.Target) {
			continue
		}
		if out.Parents[e.Target] == e.Source && !seen[e.Target] {
			seen[e.Target] = true
			out.TreeEdges = append(out.TreeEdges, e)
			continue
		}
		out.CrossEdges = append(out.CrossEdges, e)
	}
	return out
}

// assignLevels runs a multi-source BFS from roots. The first edge that
// discovers a node records its parent.
func assignLevels(idx *graph.Index, roots []string, parents map[string]string) (map[string]int, map[string][]string) {
	levels := make(map[string]int)
	children := make(map[string][]string)
	queue := make([]string, 0, len(roots))
	for _, r := range roots {
		if _, ok := levels[r]; ok {
			continue
		}
		levels[r] = 0
		queue = append(queue, r)
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, c := range idx.Children(cur) {
			if _, ok := levels[c]; ok {
				continue
			}
			levels[c] = levels[cur] + 1
			parents[c] = cur
			children[cur] = append(children[cur], c)
			queue = append(queue, c)
		}
	}
	return levels, children
}

type placer struct {
	cfg      Config
	cursor   float64
	levels   map[string]int
	children map[string][]string
	pos      map[string]Position
}

func (p *placer) place(id string) float64 {
	level := p.levels[id]
	x := float64(level)*p.cfg.LevelGap + p.cfg.Margin

	kids := p.children[id]
	if len(kids) == 0 {
		y := p.cursor + p.cfg.NodeHeight/2
		p.cursor += p.cfg.slot()
		p.pos[id] = Position{X: x, Y: y, Level: level}
		return y
	}

	first := p.place(kids[0])
	last := first
	for _, c := range kids[1:] {
		last = p.place(c)
	}
	y := (first + last) / 2
	p.pos[id] = Position{X: x, Y: y, Level: level}
	return y
}
