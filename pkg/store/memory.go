package store

import (
	"context"
	"sync"
)

// MemoryStore keeps calculations in a map. Calculations are copied on the
// way in and out, so callers never share a record with the store.
type MemoryStore struct {
	mu    sync.RWMutex
	calcs map[string]*Calculation
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{calcs: make(map[string]*Calculation)}
}

func (s *MemoryStore) Save(ctx context.Context, c *Calculation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calcs[c.ID] = c.clone()
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Calculation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.calcs[id]
	if !ok {
		return nil, notFound(id)
	}
	return c.clone(), nil
}

func (s *MemoryStore) List(ctx context.Context, opts ListOptions) ([]*Calculation, error) {
	s.mu.RLock()
	out := make([]*Calculation, 0, len(s.calcs))
	for _, c := range s.calcs {
		if opts.matches(c) {
			out = append(out, c.clone())
		}
	}
	s.mu.RUnlock()

	sortNewest(out)
	return page(out, opts), nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.calcs[id]; !ok {
		return notFound(id)
	}
	delete(s.calcs, id)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
