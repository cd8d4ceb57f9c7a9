package approvals

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore keeps approvals for the lifetime of the process.
type MemoryStore struct {
	mu      sync.Mutex
	nextID  uint64
	pending map[uint64]PendingApproval
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{pending: map[uint64]PendingApproval{}}
}

func (s *MemoryStore) Add(_ context.Context, p PendingApproval) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	p.ID = s.nextID
	s.pending[p.ID] = p
	return p.ID, nil
}

func (s *MemoryStore) Get(_ context.Context, id uint64) (PendingApproval, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[id]
	if !ok {
		return PendingApproval{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return p, nil
}

func (s *MemoryStore) Take(_ context.Context, id uint64) (PendingApproval, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[id]
	if !ok {
		return PendingApproval{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	delete(s.pending, id)
	return p, nil
}

func (s *MemoryStore) List(_ context.Context) ([]PendingApproval, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]PendingApproval, 0, len(s.pending))
	for _, p := range s.pending {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
