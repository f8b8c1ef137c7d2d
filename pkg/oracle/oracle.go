// Package oracle is the boundary to the generative model that turns source
// text and an instruction into a concept graph fragment.
//
// The engine treats an [Oracle] as an opaque remote call: one request, one
// fragment or one error. Implementations never retry on their own.
//
//   - [Anthropic]: the Messages API over HTTP
//   - [Func]: adapts a plain function, for tests and embedding
//   - [Cached]: reuses fragments for identical requests
//
// Fragments are plain [graph.Graph] values. [ParseFragment] extracts one
// from model output and [ValidateFragment] checks it against the graph it
// will be merged into.
package oracle

import (
	"context"

	"github.com/matzehuels/conceptmap/pkg/graph"
)

// Kind is the operation a request is for.
type Kind string

// Operation kinds.
const (
	KindRegenerate Kind = "regenerate"
	KindDive       Kind = "dive"
	KindRefine     Kind = "refine"
)

// Request is one synthesis call.
type Request struct {
	Kind Kind `json:"operation_kind"`

	// Context is the source text, usually the combined uploaded documents.
	Context string `json:"context"`

	// TargetNodeID anchors dive and refine requests.
	TargetNodeID string `json:"target_node_id,omitempty"`

	// Instruction is the lens for regenerate, or the user's free text for
	// dive and refine.
	Instruction string `json:"instruction,omitempty"`

	// Graph is the current graph, sent with dive and refine so the model
	// can see the target's surroundings and the ids already in use.
	Graph *graph.Graph `json:"graph,omitempty"`
}

// Oracle synthesizes graph fragments.
type Oracle interface {
	Synthesize(ctx context.Context, req Request) (graph.Graph, error)
}

// Func adapts an ordinary function to the Oracle interface.
type Func func(ctx context.Context, req Request) (graph.Graph, error)

// Synthesize calls f(ctx, req).
func (f Func) Synthesize(ctx context.Context, req Request) (graph.Graph, error) {
	return f(ctx, req)
}
