// Package pkg provides the core libraries for the conceptmap engine.
//
// # Overview
//
// conceptmap grows a concept map incrementally: an oracle (a language model)
// proposes small graph fragments, and the engine merges them into a single
// authoritative graph with undo, progressive disclosure and a deterministic
// tree layout. The pkg directory is organized into four main areas:
//
//  1. [graph], [layout], [history] - Pure data structures and algorithms
//  2. [oracle], [session] - Fragment generation and the mutation pipeline
//  3. [cache], [view], [document] - Persistence and input handling
//  4. [render] - Graphviz output (DOT, SVG, PDF, PNG)
//
// # Architecture
//
// The typical data flow through a mutation:
//
//	Documents + instruction
//	         ↓
//	    [oracle] package (prompt → fragment JSON → validation)
//	         ↓
//	    [session] package (merge into [graph.Store], record in [history])
//	         ↓
//	    [graph] visibility (expansion set → visible subgraph)
//	         ↓
//	    [layout] package (tree layout with cross edges)
//	         ↓
//	    [render/nodelink] DOT / SVG / PDF / PNG
//
// # Quick Start
//
// Generate a map from a document and dive into a node:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/conceptmap/pkg/oracle"
//	    "github.com/matzehuels/conceptmap/pkg/session"
//	    "github.com/matzehuels/conceptmap/pkg/render/nodelink"
//	)
//
//	o := oracle.NewAnthropic(oracle.AnthropicConfig{APIKey: key})
//	s := session.New(o, session.Options{})
//	s.SetContext(text)
//
//	// 1. Initial generation
//	_, _ = s.Regenerate(ctx, "")
//
//	// 2. Extend the root
//	_, _ = s.Dive(ctx, s.Status().Root, "focus on trade-offs")
//
//	// 3. Render what is visible
//	f := s.Frame()
//	dot := nodelink.ToDOT(f.Graph, f.Layout, nodelink.Options{Collapsed: f.Collapsed})
//	svg, _ := nodelink.RenderSVG(ctx, dot)
//
// # Main Packages
//
// [graph] - Node/edge types, the indexed [graph.Store], edge validation and
// the visibility rule over an expansion set.
//
// [layout] - Deterministic top-down tree layout. Children are assigned to the
// first parent that reaches them; remaining edges become cross edges.
//
// [history] - Linear snapshot history with undo.
//
// [oracle] - The [oracle.Oracle] interface, the Anthropic Messages client,
// fragment parsing/validation and a caching decorator.
//
// [session] - Owns one concept map. Serializes mutations, rejects stale
// responses and merges fragments.
//
// [cache] - Byte caches (file, Redis, null) used by the caching oracle.
//
// [view] - Saved views: file, memory, Redis and MongoDB stores.
//
// [document] - Text extraction for uploaded .md and .txt files.
//
// [render] - SVG to PDF/PNG conversion; [render/nodelink] builds DOT.
//
// [errors] - Coded errors shared by every package.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/session/...            # Specific package
//	go test -run Example                 # Examples only
//	go test -tags integration ./pkg/...  # Include Redis/MongoDB tests
package pkg
