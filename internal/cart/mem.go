package cart

import (
	"context"
	"sort"
	"sync"
)

// MemStore: implementasi in-memory utk test dan dev tanpa redis.
type MemStore struct {
	mu       sync.Mutex
	sessions map[string]map[string]Entry
}

func NewMemStore() *MemStore {
	return &MemStore{sessions: make(map[string]map[string]Entry)}
}

func (s *MemStore) Get(ctx context.Context, sid, productID string) (Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[sid][productID]
	return e, ok, nil
}

func (s *MemStore) Put(ctx context.Context, sid string, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions[sid] == nil {
		s.sessions[sid] = make(map[string]Entry)
	}
	s.sessions[sid][e.ProductID] = e
	return nil
}

func (s *MemStore) Delete(ctx context.Context, sid, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions[sid], productID)
	return nil
}

func (s *MemStore) Clear(ctx context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sid)
	return nil
}

func (s *MemStore) Enumerate(ctx context.Context, sid string) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, 0, len(s.sessions[sid]))
	for _, e := range s.sessions[sid] {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AddedAt < out[j].AddedAt })
	return out, nil
}
