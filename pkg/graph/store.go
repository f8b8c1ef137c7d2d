package graph

import "sync"

// Store holds the committed graph. Commit replaces the whole graph
// atomically; readers always observe either the old or the new graph.
//
// Store is safe for concurrent use. Values passed in and handed out are
// deep copies, so callers may mutate them freely.
type Store struct {
	mu sync.RWMutex
	g  Graph
}

// NewStore creates a store holding an empty graph.
func NewStore() *Store {
	return &Store{g: Graph{}.Clone()}
}

// Commit replaces the stored graph with a copy of g.
// If g violates the committed-state invariants the store is left unchanged.
func (s *Store) Commit(g Graph) error {
	if err := Validate(g); err != nil {
		return err
	}
	c := g.Clone()
	s.mu.Lock()
	s.g = c
	s.mu.Unlock()
	return nil
}

// Current returns a copy of the committed graph.
func (s *Store) Current() Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.g.Clone()
}
