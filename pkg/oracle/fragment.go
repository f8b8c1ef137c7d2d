package oracle

import (
	"encoding/json"
	"strings"

	errs "github.com/matzehuels/conceptmap/pkg/errors"
	"github.com/matzehuels/conceptmap/pkg/graph"
)

// wireFragment is the JSON shape the model is asked to produce. Older
// prompts used "description" instead of "summary"; both are accepted.
type wireFragment struct {
	Title string       `json:"title,omitempty"`
	Nodes []wireNode   `json:"nodes"`
	Edges []graph.Edge `json:"edges"`
}

type wireNode struct {
	ID          string         `json:"id"`
	Label       string         `json:"label"`
	Type        graph.NodeType `json:"type"`
	Summary     string         `json:"summary,omitempty"`
	Description string         `json:"description,omitempty"`
	Reasoning   string         `json:"reasoning,omitempty"`
}

// ParseFragment extracts a graph fragment from raw model output.
//
// The text is decoded as JSON first. If that fails, the span from the first
// '{' to the last '}' is decoded instead, which strips markdown fences and
// any prose around the object.
func ParseFragment(text string) (graph.Graph, error) {
	var w wireFragment
	if err := json.Unmarshal([]byte(text), &w); err != nil {
		start := strings.Index(text, "{")
		end := strings.LastIndex(text, "}")
		if start < 0 || end <= start {
			return graph.Graph{}, errs.New(errs.ErrCodeOracleTransport, "model output contains no JSON object: %s", excerpt(text))
		}
		w = wireFragment{}
		if err := json.Unmarshal([]byte(text[start:end+1]), &w); err != nil {
			return graph.Graph{}, errs.Wrap(errs.ErrCodeOracleTransport, err, "parse model output: %s", excerpt(text))
		}
	}

	out := graph.Graph{
		Nodes: make([]graph.Node, 0, len(w.Nodes)),
		Edges: make([]graph.Edge, 0, len(w.Edges)),
	}
	for _, n := range w.Nodes {
		summary := n.Summary
		if summary == "" {
			summary = n.Description
		}
		out.Nodes = append(out.Nodes, graph.Node{
			ID:        n.ID,
			Label:     n.Label,
			Type:      n.Type,
			Summary:   summary,
			Reasoning: n.Reasoning,
		})
	}
	out.Edges = append(out.Edges, w.Edges...)
	return out, nil
}

func excerpt(s string) string {
	const n = 200
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
