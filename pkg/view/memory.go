package view

import (
	"context"
	"sync"
)

// MemoryStore keeps views in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	views map[string]*View
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{views: make(map[string]*View)}
}

func (s *MemoryStore) Save(ctx context.Context, v *View) error {
	c := *v
	c.Graph = v.Graph.Clone()
	s.mu.Lock()
	s.views[v.ID] = &c
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*View, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.views[id]
	if !ok {
		return nil, notFound(id)
	}
	c := *v
	c.Graph = v.Graph.Clone()
	return &c, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]Summary, error) {
	s.mu.RLock()
	out := make([]Summary, 0, len(s.views))
	for _, v := range s.views {
		out = append(out, v.Summary())
	}
	s.mu.RUnlock()
	sortSummaries(out)
	return out, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.views[id]; !ok {
		return notFound(id)
	}
	delete(s.views, id)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
