package oracle

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SystemPrompt instructs the model to answer with a bare graph fragment.
const SystemPrompt = `You are a research synthesis assistant. You analyze interview transcripts
and other research documents and organize their insights into a concept map
that follows the user's analytical focus.

You MUST return ONLY valid JSON with no additional text, markdown, or explanation.
The JSON must follow this exact structure:
{
  "nodes": [
    {"id": "unique_id", "label": "short label", "type": "root|category|leaf",
     "summary": "one or two sentences", "reasoning": "why this node exists, citing the sources"}
  ],
  "edges": [
    {"source": "node_id", "target": "node_id", "relationship": "how the two connect"}
  ]
}

Guidelines:
- Exactly one node of type "root" when building a whole map; "category" groups, "leaf" insights
- Edges point from parent to child
- Every edge must reference node ids that exist in your answer or in the current map
- Node ids are short, stable, lowercase strings and must not reuse ids of unrelated existing nodes
- Keep labels under six words`

// UserPrompt renders the user message for req.
func UserPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("Here is the combined content of the research documents:\n\n---\n")
	b.WriteString(req.Context)
	b.WriteString("\n---\n\n")

	if req.Graph != nil && req.Kind != KindRegenerate {
		if data, err := json.Marshal(req.Graph); err == nil {
			b.WriteString("The current concept map is:\n")
			b.Write(data)
			b.WriteString("\n\n")
		}
	}

	switch req.Kind {
	case KindDive:
		fmt.Fprintf(&b, "Expand the node %q. %s\n\n", req.TargetNodeID, req.Instruction)
		b.WriteString("Return ONLY the new nodes and the edges that attach them. ")
		b.WriteString("Edges should start at the expanded node or at one of your new nodes. ")
		b.WriteString("Do not repeat existing nodes.")
	case KindRefine:
		fmt.Fprintf(&b, "Rework everything below the node %q. Correction: %s\n\n", req.TargetNodeID, req.Instruction)
		b.WriteString("All current descendants of that node will be discarded. ")
		b.WriteString("Return the replacement subtree: its nodes and the edges from the node to them. ")
		b.WriteString("You may include the node itself to update its label or summary.")
	default:
		if strings.TrimSpace(req.Instruction) != "" {
			fmt.Fprintf(&b, "My request: %s\n\n", req.Instruction)
		}
		b.WriteString("Generate a complete concept map that addresses my request.")
	}
	b.WriteString(" Return ONLY valid JSON.")
	return b.String()
}
