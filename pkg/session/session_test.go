package session

import (
	"context"
	"errors"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/conceptmap/pkg/errors"
	"github.com/matzehuels/conceptmap/pkg/graph"
	"github.com/matzehuels/conceptmap/pkg/layout"
	"github.com/matzehuels/conceptmap/pkg/oracle"
)

func nd(id string, typ graph.NodeType) graph.Node {
	return graph.Node{ID: id, Label: strings.ToUpper(id), Type: typ}
}

func ed(src, dst string) graph.Edge { return graph.Edge{Source: src, Target: dst} }

// scripted returns fragments in order and records every request.
type scripted struct {
	replies []reply
	reqs    []oracle.Request
}

type reply struct {
	g   graph.Graph
	err error
}

func (s *scripted) Synthesize(_ context.Context, req oracle.Request) (graph.Graph, error) {
	s.reqs = append(s.reqs, req)
	if len(s.replies) == 0 {
		return graph.Graph{}, errors.New("no scripted reply")
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	return r.g, r.err
}

func (s *scripted) push(g graph.Graph) { s.replies = append(s.replies, reply{g: g}) }

func (s *scripted) fail(err error) { s.replies = append(s.replies, reply{err: err}) }

func quietLogger() *log.Logger {
	return log.NewWithOptions(discard{}, log.Options{Level: log.FatalLevel})
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func newSession(o oracle.Oracle) *Session {
	s := New(o, Options{Logger: quietLogger()})
	s.SetContext("[interview.txt]\nThe fees are confusing.")
	return s
}

// abc is A(root) → B → C.
func abc() graph.Graph {
	return graph.Graph{
		Nodes: []graph.Node{nd("A", graph.TypeRoot), nd("B", graph.TypeCategory), nd("C", graph.TypeLeaf)},
		Edges: []graph.Edge{ed("A", "B"), ed("B", "C")},
	}
}

type snapshotState struct {
	graph    graph.Graph
	expanded []string
	histLen  int
	histIdx  int
	canUndo  bool
}

func capture(s *Session) snapshotState {
	st := s.Status()
	return snapshotState{
		graph:    s.Export(),
		expanded: s.Expanded(),
		histLen:  st.HistoryLen,
		histIdx:  st.HistoryIndex,
		canUndo:  st.CanUndo,
	}
}

func TestRegenerate(t *testing.T) {
	o := &scripted{}
	o.push(abc())
	s := newSession(o)

	res, err := s.Regenerate(context.Background(), "pain points")
	if err != nil {
		t.Fatalf("Regenerate: %v", err)
	}
	if res.Nodes != 3 || res.Added != 3 {
		t.Errorf("Result = %+v, want 3 nodes 3 added", res)
	}
	if got := s.Expanded(); !reflect.DeepEqual(got, []string{"A"}) {
		t.Errorf("Expanded() = %v, want [A]", got)
	}
	if !s.CanUndo() {
		t.Error("CanUndo() = false after first commit")
	}

	req := o.reqs[0]
	if req.Kind != oracle.KindRegenerate || req.Instruction != "pain points" || !strings.Contains(req.Context, "fees") {
		t.Errorf("request = %+v", req)
	}
	if req.Graph != nil {
		t.Error("regenerate request should not carry the current graph")
	}
}

func TestRegenerateNeedsContext(t *testing.T) {
	s := New(&scripted{}, Options{Logger: quietLogger()})
	_, err := s.Regenerate(context.Background(), "")
	if !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
	if s.State() != Idle {
		t.Errorf("State() = %v, want idle", s.State())
	}
}

func TestRefineGlobalDiscardsGraph(t *testing.T) {
	o := &scripted{}
	o.push(abc())
	o.push(graph.Graph{Nodes: []graph.Node{nd("X", graph.TypeRoot), nd("Y", graph.TypeLeaf)}, Edges: []graph.Edge{ed("X", "Y")}})
	s := newSession(o)
	ctx := context.Background()

	if _, err := s.Regenerate(ctx, ""); err != nil {
		t.Fatalf("Regenerate: %v", err)
	}
	_ = s.Expand("B")

	if _, err := s.RefineGlobal(ctx, "group by persona instead"); err != nil {
		t.Fatalf("RefineGlobal: %v", err)
	}
	if got := s.Export().NodeIDs(); !reflect.DeepEqual(got, []string{"X", "Y"}) {
		t.Errorf("nodes = %v, want [X Y]", got)
	}
	if got := s.Expanded(); !reflect.DeepEqual(got, []string{"X"}) {
		t.Errorf("Expanded() = %v, want [X]", got)
	}
	if o.reqs[1].Instruction != "group by persona instead" {
		t.Errorf("instruction = %q, want the prompt verbatim", o.reqs[1].Instruction)
	}

	if _, err := s.RefineGlobal(ctx, "  "); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("RefineGlobal(blank) error = %v, want INVALID_INPUT", err)
	}
}

func TestDiveNeverDeletes(t *testing.T) {
	o := &scripted{}
	o.push(abc())
	// Repeats B with a different label, adds D under B and an extra edge
	// from A that the user did not ask for.
	o.push(graph.Graph{
		Nodes: []graph.Node{{ID: "B", Label: "Renamed", Type: graph.TypeCategory}, nd("D", graph.TypeLeaf)},
		Edges: []graph.Edge{ed("B", "D"), ed("A", "D")},
	})
	s := newSession(o)
	ctx := context.Background()
	if _, err := s.Regenerate(ctx, ""); err != nil {
		t.Fatalf("Regenerate: %v", err)
	}
	before := s.Export()

	res, err := s.Dive(ctx, "B", "")
	if err != nil {
		t.Fatalf("Dive: %v", err)
	}
	after := s.Export()

	for _, n := range before.Nodes {
		got, ok := after.Node(n.ID)
		if !ok {
			t.Errorf("dive removed node %s", n.ID)
		} else if got != n {
			t.Errorf("dive altered node %s: %+v", n.ID, got)
		}
	}
	for _, e := range before.Edges {
		if !slices.Contains(after.Edges, e) {
			t.Errorf("dive removed edge %v", e)
		}
	}
	if !after.HasNode("D") || len(after.Edges) != 4 {
		t.Errorf("after dive: nodes=%v edges=%v", after.NodeIDs(), after.Edges)
	}
	if res.Added != 1 || res.Removed != 0 {
		t.Errorf("Result = %+v, want 1 added 0 removed", res)
	}
	if !s.IsExpanded("B") {
		t.Error("dive target not expanded")
	}
	if o.reqs[1].Instruction != defaultDiveInstruction {
		t.Errorf("instruction = %q, want default", o.reqs[1].Instruction)
	}
	if o.reqs[1].Graph == nil || len(o.reqs[1].Graph.Nodes) != 3 {
		t.Error("dive request should carry the current graph")
	}
}

func TestDiveUnknownNode(t *testing.T) {
	o := &scripted{}
	o.push(abc())
	s := newSession(o)
	ctx := context.Background()
	_, _ = s.Regenerate(ctx, "")

	_, err := s.Dive(ctx, "nope", "more")
	if !errs.Is(err, errs.ErrCodeNodeNotFound) {
		t.Errorf("error = %v, want NODE_NOT_FOUND", err)
	}
	if len(o.reqs) != 1 {
		t.Error("oracle called for unknown node")
	}
}

// Refine on B returning {D, B→D} where B's only child was C.
func TestRefineScenario(t *testing.T) {
	o := &scripted{}
	o.push(abc())
	o.push(graph.Graph{Nodes: []graph.Node{nd("D", graph.TypeLeaf)}, Edges: []graph.Edge{ed("B", "D")}})
	s := newSession(o)
	ctx := context.Background()
	if _, err := s.Regenerate(ctx, ""); err != nil {
		t.Fatalf("Regenerate: %v", err)
	}

	if _, err := s.Refine(ctx, "B", "fees are about transparency"); err != nil {
		t.Fatalf("Refine: %v", err)
	}
	got := s.Export()
	if ids := got.NodeIDs(); !reflect.DeepEqual(ids, []string{"A", "B", "D"}) {
		t.Errorf("nodes = %v, want [A B D]", ids)
	}
	want := []graph.Edge{ed("A", "B"), ed("B", "D")}
	if !reflect.DeepEqual(got.Edges, want) {
		t.Errorf("edges = %v, want %v", got.Edges, want)
	}
	if !s.IsExpanded("B") {
		t.Error("refine target not expanded")
	}
}

func TestRefineRemovesExactlyDescendants(t *testing.T) {
	g := graph.Graph{
		Nodes: []graph.Node{
			nd("r", graph.TypeRoot), nd("x", graph.TypeCategory), nd("y", graph.TypeCategory),
			nd("x1", graph.TypeLeaf), nd("x2", graph.TypeCategory), nd("x21", graph.TypeLeaf), nd("y1", graph.TypeLeaf),
		},
		Edges: []graph.Edge{
			ed("r", "x"), ed("r", "y"), ed("x", "x1"), ed("x", "x2"), ed("x2", "x21"), ed("y", "y1"),
			ed("x21", "x"), // back edge into the target
		},
	}
	o := &scripted{}
	o.push(graph.Graph{Nodes: []graph.Node{nd("n1", graph.TypeLeaf)}, Edges: []graph.Edge{ed("x", "n1")}})
	s := newSession(o)
	if err := s.Load(g); err != nil {
		t.Fatalf("Load: %v", err)
	}

	desc := graph.Descendants(g, "x")
	if _, err := s.Refine(context.Background(), "x", "split differently"); err != nil {
		t.Fatalf("Refine: %v", err)
	}
	after := s.Export()

	removed := map[string]struct{}{}
	for _, n := range g.Nodes {
		if !after.HasNode(n.ID) {
			removed[n.ID] = struct{}{}
		}
	}
	if !reflect.DeepEqual(removed, desc) {
		t.Errorf("removed = %v, want descendants %v", removed, desc)
	}
	if err := graph.CheckEdges(after); err != nil {
		t.Errorf("committed graph has dangling edge: %v", err)
	}
}

func TestRefineCanReplaceTarget(t *testing.T) {
	o := &scripted{}
	o.push(abc())
	o.push(graph.Graph{
		Nodes: []graph.Node{{ID: "B", Label: "Billing", Type: graph.TypeCategory}, nd("E", graph.TypeLeaf)},
		Edges: []graph.Edge{ed("B", "E")},
	})
	s := newSession(o)
	ctx := context.Background()
	_, _ = s.Regenerate(ctx, "")

	if _, err := s.Refine(ctx, "B", "rename"); err != nil {
		t.Fatalf("Refine: %v", err)
	}
	got := s.Export()
	if n, _ := got.Node("B"); n.Label != "Billing" {
		t.Errorf("B.Label = %q, want Billing", n.Label)
	}
	if ids := got.NodeIDs(); !reflect.DeepEqual(ids, []string{"A", "B", "E"}) {
		t.Errorf("nodes = %v, want [A B E] with B replaced in place", ids)
	}
}

func TestFailedMutationsChangeNothing(t *testing.T) {
	tests := []struct {
		name  string
		reply reply
		code  errs.Code
	}{
		{"transport", reply{err: errs.New(errs.ErrCodeOracleTransport, "status 529")}, errs.ErrCodeOracleTransport},
		{"missing label", reply{g: graph.Graph{Nodes: []graph.Node{{ID: "D", Type: graph.TypeLeaf}}}}, errs.ErrCodeInvalidFragment},
		{"dangling edge", reply{g: graph.Graph{Nodes: []graph.Node{nd("D", graph.TypeLeaf)}, Edges: []graph.Edge{ed("B", "ghost")}}}, errs.ErrCodeInvalidFragment},
		{"edge to pruned node", reply{g: graph.Graph{Nodes: []graph.Node{nd("D", graph.TypeLeaf)}, Edges: []graph.Edge{ed("D", "C")}}}, errs.ErrCodeInvalidFragment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &scripted{}
			o.push(abc())
			s := newSession(o)
			ctx := context.Background()
			if _, err := s.Regenerate(ctx, ""); err != nil {
				t.Fatalf("Regenerate: %v", err)
			}
			before := capture(s)

			o.replies = append(o.replies, tt.reply)
			_, err := s.Refine(ctx, "B", "try again")
			if !errs.Is(err, tt.code) {
				t.Fatalf("error = %v, want %s", err, tt.code)
			}
			if after := capture(s); !reflect.DeepEqual(before, after) {
				t.Errorf("state changed:\nbefore %+v\nafter  %+v", before, after)
			}
			if s.State() != Idle {
				t.Errorf("State() = %v, want idle", s.State())
			}
		})
	}
}

func TestUndoBackToEmpty(t *testing.T) {
	o := &scripted{}
	o.push(abc())
	o.push(graph.Graph{Nodes: []graph.Node{nd("D", graph.TypeLeaf)}, Edges: []graph.Edge{ed("C", "D")}})
	o.push(graph.Graph{Nodes: []graph.Node{nd("E", graph.TypeLeaf)}, Edges: []graph.Edge{ed("B", "E")}})
	s := newSession(o)
	ctx := context.Background()

	if _, err := s.Regenerate(ctx, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Dive(ctx, "C", "more"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Refine(ctx, "B", "redo"); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if !s.Undo(ctx) {
			t.Fatalf("Undo() #%d = false", i+1)
		}
	}
	if g := s.Export(); len(g.Nodes) != 0 || len(g.Edges) != 0 {
		t.Errorf("after 3 undos graph = %+v, want empty", g)
	}
	if s.Undo(ctx) {
		t.Error("Undo() at boundary = true")
	}
	if len(s.Export().Nodes) != 0 {
		t.Error("boundary undo changed the graph")
	}
}

func TestUndoThenMutateTruncates(t *testing.T) {
	o := &scripted{}
	o.push(abc())
	o.push(graph.Graph{Nodes: []graph.Node{nd("D", graph.TypeLeaf)}, Edges: []graph.Edge{ed("C", "D")}})
	o.push(graph.Graph{Nodes: []graph.Node{nd("E", graph.TypeLeaf)}, Edges: []graph.Edge{ed("A", "E")}})
	s := newSession(o)
	ctx := context.Background()

	_, _ = s.Regenerate(ctx, "")
	_, _ = s.Dive(ctx, "C", "more")
	if st := s.Status(); st.HistoryLen != 3 {
		t.Fatalf("HistoryLen = %d, want 3", st.HistoryLen)
	}

	s.Undo(ctx)
	if _, err := s.Dive(ctx, "A", "other"); err != nil {
		t.Fatalf("Dive: %v", err)
	}
	st := s.Status()
	if st.HistoryLen != 3 || st.HistoryIndex != 2 {
		t.Errorf("history len=%d index=%d, want 3 and 2", st.HistoryLen, st.HistoryIndex)
	}
	if s.Export().HasNode("D") {
		t.Error("undone branch resurrected")
	}
	s.Undo(ctx)
	if got := s.Export().NodeIDs(); !reflect.DeepEqual(got, []string{"A", "B", "C"}) {
		t.Errorf("after undo: %v, want [A B C]", got)
	}
}

func TestUndoRejectedSnapshotKeepsCursor(t *testing.T) {
	s := newSession(&scripted{})
	if err := s.Load(abc()); err != nil {
		t.Fatal(err)
	}
	broken := graph.Graph{Nodes: []graph.Node{nd("A", graph.TypeRoot)}, Edges: []graph.Edge{ed("A", "ghost")}}
	s.history.Push(broken)
	s.history.Push(abc())

	if s.Undo(context.Background()) {
		t.Fatal("Undo() = true onto a snapshot with a dangling edge, want false")
	}
	if got := s.history.Index(); got != 2 {
		t.Errorf("history index = %d, want 2", got)
	}
	if got := s.Export(); !reflect.DeepEqual(got, abc()) {
		t.Errorf("graph after rejected undo = %+v, want A→B→C", got)
	}
	cur, _ := s.history.Current()
	if !reflect.DeepEqual(cur.Graph, s.Export()) {
		t.Error("history cursor and store disagree after rejected undo")
	}
}

func TestUndoKeepsExpansion(t *testing.T) {
	o := &scripted{}
	o.push(abc())
	o.push(graph.Graph{Nodes: []graph.Node{nd("D", graph.TypeLeaf)}, Edges: []graph.Edge{ed("B", "D")}})
	s := newSession(o)
	ctx := context.Background()
	_, _ = s.Regenerate(ctx, "")
	_, _ = s.Dive(ctx, "B", "")

	s.Undo(ctx)
	if !s.IsExpanded("B") {
		t.Error("undo removed B from the expansion set")
	}
}

func TestVisibilityScenario(t *testing.T) {
	s := newSession(&scripted{})
	if err := s.Load(abc()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := s.Visible().NodeIDs(); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Errorf("visible = %v, want [A B]", got)
	}

	if err := s.Expand("B"); err != nil {
		t.Fatalf("Expand: %v", err)
	}
	v, l := s.Layout()
	if got := v.NodeIDs(); !reflect.DeepEqual(got, []string{"A", "B", "C"}) {
		t.Errorf("visible = %v, want [A B C]", got)
	}
	if l.Positions["C"].Level != 2 {
		t.Errorf("level(C) = %d, want 2", l.Positions["C"].Level)
	}
	if l.Positions["A"].Level != 0 || l.Positions["B"].Level != 1 {
		t.Errorf("levels = %v", l.Positions)
	}

	if err := s.Collapse("B"); err != nil {
		t.Fatalf("Collapse: %v", err)
	}
	if len(s.Export().Nodes) != 3 {
		t.Error("Collapse changed the graph")
	}
	if err := s.Expand("ghost"); !errs.Is(err, errs.ErrCodeNodeNotFound) {
		t.Errorf("Expand(ghost) error = %v, want NODE_NOT_FOUND", err)
	}
}

func TestLoadResetsHistoryAndExpansion(t *testing.T) {
	o := &scripted{}
	o.push(abc())
	s := newSession(o)
	ctx := context.Background()
	_, _ = s.Regenerate(ctx, "")
	_ = s.Expand("B")

	loaded := graph.Graph{Nodes: []graph.Node{nd("x", graph.TypeCategory), nd("R", graph.TypeRoot)}, Edges: []graph.Edge{ed("R", "x")}}
	if err := s.Load(loaded); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := s.Expanded(); !reflect.DeepEqual(got, []string{"R"}) {
		t.Errorf("Expanded() = %v, want [R]", got)
	}
	if s.CanUndo() {
		t.Error("CanUndo() = true after Load")
	}
	if !reflect.DeepEqual(s.Export(), loaded) {
		t.Errorf("Export() = %+v, want loaded graph", s.Export())
	}

	bad := graph.Graph{Nodes: []graph.Node{nd("x", graph.TypeRoot)}, Edges: []graph.Edge{ed("x", "y")}}
	if err := s.Load(bad); !errs.Is(err, errs.ErrCodeInvalidGraph) {
		t.Errorf("Load(dangling) error = %v, want INVALID_GRAPH", err)
	}
	if !reflect.DeepEqual(s.Export(), loaded) {
		t.Error("rejected Load changed the graph")
	}
}

func TestSessionUsesLayoutConfig(t *testing.T) {
	cfg := layout.DefaultConfig()
	cfg.LevelGap = 100
	s := New(&scripted{}, Options{Logger: quietLogger(), Layout: cfg})
	_ = s.Load(abc())
	_ = s.Expand("B")
	_, l := s.Layout()
	if got := l.Positions["B"].X; got != 140 {
		t.Errorf("X(B) = %v, want 140", got)
	}
}

func TestCollapsed(t *testing.T) {
	s := newSession(&scripted{})
	if err := s.Load(abc()); err != nil {
		t.Fatal(err)
	}

	// Load expands the root, so B is visible with a hidden child.
	got := s.Collapsed()
	if len(got) != 1 || !got["B"] {
		t.Errorf("Collapsed() = %v, want {B}", got)
	}

	if err := s.Expand("B"); err != nil {
		t.Fatal(err)
	}
	if got := s.Collapsed(); len(got) != 0 {
		t.Errorf("Collapsed() after expanding B = %v, want empty", got)
	}
}

func TestFrame(t *testing.T) {
	s := newSession(&scripted{})
	if err := s.Load(abc()); err != nil {
		t.Fatal(err)
	}

	f := s.Frame()
	if got := f.Graph.NodeIDs(); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Errorf("Frame().Graph nodes = %v, want [A B]", got)
	}
	for _, id := range []string{"A", "B"} {
		if _, ok := f.Layout.Positions[id]; !ok {
			t.Errorf("Frame().Layout has no position for %s", id)
		}
	}
	if len(f.Collapsed) != 1 || !f.Collapsed["B"] {
		t.Errorf("Frame().Collapsed = %v, want {B}", f.Collapsed)
	}
	if !reflect.DeepEqual(f.Expanded, []string{"A"}) {
		t.Errorf("Frame().Expanded = %v, want [A]", f.Expanded)
	}
}
