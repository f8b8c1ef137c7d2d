package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/conceptmap/pkg/errors"
	"github.com/matzehuels/conceptmap/pkg/graph"
	"github.com/matzehuels/conceptmap/pkg/history"
	"github.com/matzehuels/conceptmap/pkg/layout"
	"github.com/matzehuels/conceptmap/pkg/observability"
	"github.com/matzehuels/conceptmap/pkg/oracle"
)

// State is the mutation state of a session.
type State int

const (
	Idle State = iota
	Requesting
)

func (s State) String() string {
	if s == Requesting {
		return "requesting"
	}
	return "idle"
}

// Operation names reported to logs and hooks.
const (
	OpRegenerate   = "regenerate"
	OpRefineGlobal = "refine_global"
	OpDive         = "dive"
	OpRefine       = "refine"
)

// defaultDiveInstruction is used when a dive comes without user text.
const defaultDiveInstruction = "Break this concept down into its most important sub-concepts."

// Options configures a Session.
type Options struct {
	Logger *log.Logger
	Layout layout.Config
}

// Result summarizes a committed mutation.
type Result struct {
	Op      string `json:"op"`
	Target  string `json:"target,omitempty"`
	Nodes   int    `json:"nodes"`
	Edges   int    `json:"edges"`
	Added   int    `json:"added"`
	Removed int    `json:"removed"`
}

// Status is a point-in-time view of the session.
type Status struct {
	State        string   `json:"state"`
	Nodes        int      `json:"nodes"`
	Edges        int      `json:"edges"`
	Root         string   `json:"root"`
	Expanded     []string `json:"expanded"`
	CanUndo      bool     `json:"can_undo"`
	HistoryLen   int      `json:"history_len"`
	HistoryIndex int      `json:"history_index"`
	HasContext   bool     `json:"has_context"`
}

// Session is the single owner of a concept map. It is safe for concurrent
// use; at most one oracle request is outstanding at a time.
type Session struct {
	oracle oracle.Oracle
	logger *log.Logger
	layout layout.Config

	mu         sync.Mutex
	store      *graph.Store
	history    *history.History
	expanded   graph.ExpansionSet
	state      State
	generation uint64
	source     string
}

// New creates a session with an empty graph. The history starts with the
// empty snapshot so every mutation can be undone.
func New(o oracle.Oracle, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	cfg := opts.Layout
	if cfg == (layout.Config{}) {
		cfg = layout.DefaultConfig()
	}
	return &Session{
		oracle:   o,
		logger:   logger,
		layout:   cfg,
		store:    graph.NewStore(),
		history:  history.New(graph.Graph{}),
		expanded: graph.NewExpansionSet(),
	}
}

// SetContext replaces the source text sent with every oracle request.
func (s *Session) SetContext(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.source = text
}

// Context returns the current source text.
func (s *Session) Context() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// State returns the mutation state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// =============================================================================
// Mutations
// =============================================================================

// plan is everything a mutation needs once the oracle has answered.
type plan struct {
	op     string
	target string
	req    oracle.Request
	// apply validates the fragment and returns the graph to commit.
	apply func(fragment graph.Graph) (graph.Graph, error)
	// expand returns the expansion set after commit.
	expand func(committed graph.Graph, prev graph.ExpansionSet) graph.ExpansionSet
}

// Regenerate replaces the graph with a fresh map built from the source text.
// lens optionally focuses the map.
func (s *Session) Regenerate(ctx context.Context, lens string) (Result, error) {
	return s.regenerate(ctx, OpRegenerate, lens)
}

// RefineGlobal regenerates the whole map with prompt as the instruction,
// discarding the current graph.
func (s *Session) RefineGlobal(ctx context.Context, prompt string) (Result, error) {
	if err := errs.ValidateInstruction(prompt); err != nil {
		return Result{}, err
	}
	return s.regenerate(ctx, OpRefineGlobal, prompt)
}

func (s *Session) regenerate(ctx context.Context, op, instruction string) (Result, error) {
	return s.run(ctx, func(source string, _ graph.Graph) (*plan, error) {
		if strings.TrimSpace(source) == "" {
			return nil, errs.New(errs.ErrCodeInvalidInput, "no source documents: upload documents before generating")
		}
		return &plan{
			op:  op,
			req: oracle.Request{Kind: oracle.KindRegenerate, Context: source, Instruction: instruction},
			apply: func(fragment graph.Graph) (graph.Graph, error) {
				if err := oracle.ValidateFragment(oracle.KindRegenerate, fragment, graph.Graph{}); err != nil {
					return graph.Graph{}, err
				}
				return fragment.Clone(), nil
			},
			expand: func(committed graph.Graph, _ graph.ExpansionSet) graph.ExpansionSet {
				return graph.NewExpansionSet(graph.Root(committed))
			},
		}, nil
	})
}

// Dive asks the oracle for children of nodeID and appends them. Nothing
// already in the graph is removed or changed. An empty instruction asks for
// a general breakdown.
func (s *Session) Dive(ctx context.Context, nodeID, instruction string) (Result, error) {
	if err := errs.ValidateNodeID(nodeID); err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(instruction) == "" {
		instruction = defaultDiveInstruction
	} else if err := errs.ValidateInstruction(instruction); err != nil {
		return Result{}, err
	}

	return s.run(ctx, func(source string, cur graph.Graph) (*plan, error) {
		if !cur.HasNode(nodeID) {
			return nil, errs.New(errs.ErrCodeNodeNotFound, "node %q not found", nodeID)
		}
		snapshot := cur.Clone()
		return &plan{
			op:     OpDive,
			target: nodeID,
			req: oracle.Request{
				Kind:         oracle.KindDive,
				Context:      source,
				TargetNodeID: nodeID,
				Instruction:  instruction,
				Graph:        &snapshot,
			},
			apply: func(fragment graph.Graph) (graph.Graph, error) {
				if err := oracle.ValidateFragment(oracle.KindDive, fragment, cur); err != nil {
					return graph.Graph{}, err
				}
				return MergeDive(cur, fragment), nil
			},
			expand: addTarget(nodeID),
		}, nil
	})
}

// Refine discards every descendant of nodeID and merges the oracle's
// replacement subtree. The removed set is computed before the oracle call
// from the full graph, not the visible part.
func (s *Session) Refine(ctx context.Context, nodeID, instruction string) (Result, error) {
	if err := errs.ValidateNodeID(nodeID); err != nil {
		return Result{}, err
	}
	if err := errs.ValidateInstruction(instruction); err != nil {
		return Result{}, err
	}

	return s.run(ctx, func(source string, cur graph.Graph) (*plan, error) {
		if !cur.HasNode(nodeID) {
			return nil, errs.New(errs.ErrCodeNodeNotFound, "node %q not found", nodeID)
		}
		desc := graph.Descendants(cur, nodeID)
		pruned := PruneDescendants(cur, nodeID, desc)
		snapshot := cur.Clone()
		return &plan{
			op:     OpRefine,
			target: nodeID,
			req: oracle.Request{
				Kind:         oracle.KindRefine,
				Context:      source,
				TargetNodeID: nodeID,
				Instruction:  instruction,
				Graph:        &snapshot,
			},
			apply: func(fragment graph.Graph) (graph.Graph, error) {
				if err := oracle.ValidateFragment(oracle.KindRefine, fragment, pruned); err != nil {
					return graph.Graph{}, err
				}
				return MergeRefine(pruned, fragment), nil
			},
			expand: addTarget(nodeID),
		}, nil
	})
}

func addTarget(id string) func(graph.Graph, graph.ExpansionSet) graph.ExpansionSet {
	return func(_ graph.Graph, prev graph.ExpansionSet) graph.ExpansionSet {
		next := prev.Clone()
		next.Add(id)
		return next
	}
}

// run drives one mutation through Idle → Requesting → Committed|Rejected.
func (s *Session) run(ctx context.Context, prepare func(source string, cur graph.Graph) (*plan, error)) (Result, error) {
	s.mu.Lock()
	if s.state == Requesting {
		s.mu.Unlock()
		return Result{}, errs.New(errs.ErrCodeMutationInFlight, "another request is still running")
	}
	cur := s.store.Current()
	p, err := prepare(s.source, cur)
	if err != nil {
		s.mu.Unlock()
		return Result{}, err
	}
	gen := s.generation
	s.state = Requesting
	s.mu.Unlock()

	hooks := observability.Mutation()
	hooks.OnMutationStart(ctx, p.op, p.target)
	s.logger.Debug("mutation requested", "op", p.op, "target", p.target)
	start := time.Now()

	res, err := s.resolve(ctx, p, cur, gen)
	hooks.OnMutationComplete(ctx, p.op, p.target, res.Nodes, time.Since(start), err)
	if err != nil {
		s.logger.Warn("mutation rejected", "op", p.op, "target", p.target, "err", err)
		return Result{}, err
	}
	s.logger.Info("mutation committed", "op", p.op, "target", p.target,
		"nodes", res.Nodes, "added", res.Added, "removed", res.Removed, "elapsed", time.Since(start))
	return res, nil
}

// resolve calls the oracle and publishes the result. The session is back
// in Idle when it returns, whatever the outcome.
func (s *Session) resolve(ctx context.Context, p *plan, cur graph.Graph, gen uint64) (Result, error) {
	fragment, err := s.oracle.Synthesize(ctx, p.req)
	var next graph.Graph
	if err == nil {
		next, err = p.apply(fragment)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Idle

	if err != nil {
		return Result{}, err
	}
	if s.generation != gen {
		return Result{}, errs.New(errs.ErrCodeStaleResponse, "%s response discarded: the graph changed while it was pending", p.op)
	}
	if err := s.store.Commit(next); err != nil {
		return Result{}, err
	}
	s.history.Push(next)
	s.expanded = p.expand(next, s.expanded)
	s.generation++

	added, removed := diffNodes(cur, next)
	return Result{
		Op:      p.op,
		Target:  p.target,
		Nodes:   len(next.Nodes),
		Edges:   len(next.Edges),
		Added:   added,
		Removed: removed,
	}, nil
}

func diffNodes(before, after graph.Graph) (added, removed int) {
	prev := before.IDSet()
	next := after.IDSet()
	for id := range next {
		if _, ok := prev[id]; !ok {
			added++
		}
	}
	for id := range prev {
		if _, ok := next[id]; !ok {
			removed++
		}
	}
	return added, removed
}

// =============================================================================
// History and persistence
// =============================================================================

// Undo restores the previous snapshot. It returns false when there is
// nothing to undo. The expansion set is left alone, and a response still
// in flight will be discarded.
func (s *Session) Undo(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.history.Previous()
	if !ok {
		observability.Mutation().OnUndo(ctx, false)
		return false
	}
	// The cursor only moves once the store holds the snapshot.
	if err := s.store.Commit(snap.Graph); err != nil {
		s.logger.Error("undo snapshot rejected", "err", err)
		observability.Mutation().OnUndo(ctx, false)
		return false
	}
	s.history.Undo()
	observability.Mutation().OnUndo(ctx, true)
	s.generation++
	s.logger.Info("undo", "index", s.history.Index(), "nodes", len(snap.Graph.Nodes))
	return true
}

// CanUndo reports whether Undo would succeed.
func (s *Session) CanUndo() bool {
	return s.history.CanUndo()
}

// Export returns the committed graph.
func (s *Session) Export() graph.Graph {
	return s.store.Current()
}

// Graph is an alias for Export.
func (s *Session) Graph() graph.Graph {
	return s.Export()
}

// Load commits g, resets the expansion set to its root and starts a fresh
// history with g as the only snapshot. It is refused while a request is in
// flight.
func (s *Session) Load(g graph.Graph) error {
	if err := graph.Validate(g); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Requesting {
		return errs.New(errs.ErrCodeMutationInFlight, "cannot load while a request is running")
	}
	if err := s.store.Commit(g); err != nil {
		return err
	}
	s.history.Reset(g)
	s.expanded = graph.NewExpansionSet(graph.Root(g))
	s.generation++
	s.logger.Info("graph loaded", "nodes", len(g.Nodes), "edges", len(g.Edges))
	return nil
}

// =============================================================================
// Visibility
// =============================================================================

// Frame is one consistent picture of what is on screen: the visible graph,
// its layout and the expansion state, all derived from the same commit.
type Frame struct {
	Graph     graph.Graph     `json:"graph"`
	Layout    layout.Layout   `json:"layout"`
	Collapsed map[string]bool `json:"collapsed"`
	Expanded  []string        `json:"expanded"`
}

// Frame captures the graph and expansion set under one lock and derives
// everything else from that capture.
func (s *Session) Frame() Frame {
	s.mu.Lock()
	g := s.store.Current()
	expanded := s.expanded.Clone()
	s.mu.Unlock()

	v := graph.Visible(g, expanded)
	return Frame{
		Graph:     v,
		Layout:    layout.Compute(v, s.layout),
		Collapsed: collapsed(g, v, expanded),
		Expanded:  expanded.IDs(),
	}
}

// Visible returns the part of the graph the expansion set reveals.
func (s *Session) Visible() graph.Graph {
	s.mu.Lock()
	g := s.store.Current()
	expanded := s.expanded.Clone()
	s.mu.Unlock()
	return graph.Visible(g, expanded)
}

// Layout returns the visible graph and its layout.
func (s *Session) Layout() (graph.Graph, layout.Layout) {
	f := s.Frame()
	return f.Graph, f.Layout
}

// LayoutConfig returns the geometry used by [Session.Layout].
func (s *Session) LayoutConfig() layout.Config { return s.layout }

// Collapsed returns the visible nodes that have children but are not
// expanded.
func (s *Session) Collapsed() map[string]bool {
	return s.Frame().Collapsed
}

func collapsed(g, visible graph.Graph, expanded graph.ExpansionSet) map[string]bool {
	idx := graph.NewIndex(g)
	out := make(map[string]bool)
	for _, n := range visible.Nodes {
		if !expanded.Has(n.ID) && len(idx.Children(n.ID)) > 0 {
			out[n.ID] = true
		}
	}
	return out
}

// Expand reveals the children of nodeID.
func (s *Session) Expand(nodeID string) error {
	return s.toggle(nodeID, true)
}

// Collapse hides the children of nodeID. It never changes the graph.
func (s *Session) Collapse(nodeID string) error {
	return s.toggle(nodeID, false)
}

// ExpandAll reveals every node.
func (s *Session) ExpandAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expanded = graph.NewExpansionSet(s.store.Current().NodeIDs()...)
}

func (s *Session) toggle(nodeID string, on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.store.Current().HasNode(nodeID) {
		return errs.New(errs.ErrCodeNodeNotFound, "node %q not found", nodeID)
	}
	if on {
		s.expanded.Add(nodeID)
	} else {
		s.expanded.Remove(nodeID)
	}
	return nil
}

// Expanded returns the expanded node ids, sorted.
func (s *Session) Expanded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expanded.IDs()
}

// IsExpanded reports whether nodeID is in the expansion set.
func (s *Session) IsExpanded(nodeID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expanded.Has(nodeID)
}

// Status returns a snapshot of the session's bookkeeping.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.store.Current()
	return Status{
		State:        s.state.String(),
		Nodes:        len(g.Nodes),
		Edges:        len(g.Edges),
		Root:         graph.Root(g),
		Expanded:     s.expanded.IDs(),
		CanUndo:      s.history.CanUndo(),
		HistoryLen:   s.history.Len(),
		HistoryIndex: s.history.Index(),
		HasContext:   strings.TrimSpace(s.source) != "",
	}
}
