// Package history keeps the linear undo stack of committed graphs.
//
// Every commit pushes a snapshot. Pushing after an undo discards the
// snapshots above the cursor, so there is no redo. Snapshots are deep
// copies on the way in and on the way out.
package history

import (
	"sync"
	"time"

	"github.com/matzehuels/conceptmap/pkg/graph"
)

// Snapshot is an immutable copy of a committed graph.
type Snapshot struct {
	Graph   graph.Graph `json:"graph"`
	TakenAt time.Time   `json:"taken_at"`
}

func (s Snapshot) clone() Snapshot {
	return Snapshot{Graph: s.Graph.Clone(), TakenAt: s.TakenAt}
}

// History is a cursor over a list of snapshots. The snapshot at the cursor
// always mirrors the graph currently committed to the store.
//
// History is safe for concurrent use.
type History struct {
	mu        sync.Mutex
	snapshots []Snapshot
	index     int
	now       func() time.Time
}

// New returns a history holding g as its only snapshot.
func New(g graph.Graph) *History {
	h := &History{now: time.Now}
	h.Reset(g)
	return h
}

// Push truncates everything after the cursor, appends a copy of g and
// moves the cursor to it.
func (h *History) Push(g graph.Graph) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.snapshots = append(h.snapshots[:h.index+1], Snapshot{Graph: g.Clone(), TakenAt: h.now()})
	h.index = len(h.snapshots) - 1
}

// Undo moves the cursor back one step and returns the snapshot there.
// At the first snapshot it returns false and changes nothing.
func (h *History) Undo() (Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.index == 0 {
		return Snapshot{}, false
	}
	h.index--
	return h.snapshots[h.index].clone(), true
}

// Previous returns the snapshot Undo would move to, without moving the
// cursor.
func (h *History) Previous() (Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.index == 0 {
		return Snapshot{}, false
	}
	return h.snapshots[h.index-1].clone(), true
}

// CanUndo reports whether Undo would succeed.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.index > 0
}

// Current returns the snapshot at the cursor.
func (h *History) Current() (Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.snapshots) == 0 {
		return Snapshot{}, false
	}
	return h.snapshots[h.index].clone(), true
}

// Len returns the number of retained snapshots.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.snapshots)
}

// Index returns the cursor position.
func (h *History) Index() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.index
}

// Reset discards all snapshots and starts over from g.
func (h *History) Reset(g graph.Graph) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.snapshots = []Snapshot{{Graph: g.Clone(), TakenAt: h.now()}}
	h.index = 0
}
