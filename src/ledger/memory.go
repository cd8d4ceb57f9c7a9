package ledger

import (
	"context"
	"sync"
	"time"
)

// Memory keeps the newest MaxLimit entries per companion.
type Memory struct {
	mu      sync.Mutex
	nextID  uint64
	entries map[uint64][]Entry
}

func NewMemory() *Memory {
	return &Memory{entries: map[uint64][]Entry{}}
}

func (m *Memory) Record(_ context.Context, e *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	e.ID = m.nextID
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	list := append(m.entries[e.TokenID], *e)
	if len(list) > MaxLimit {
		list = list[len(list)-MaxLimit:]
	}
	m.entries[e.TokenID] = list
	return nil
}

// Recent returns entries newest first.
func (m *Memory) Recent(_ context.Context, tokenID uint64, limit int) ([]Entry, error) {
	limit = clampLimit(limit)

	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.entries[tokenID]
	out := make([]Entry, 0, min(limit, len(list)))
	for i := len(list) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, list[i])
	}
	return out, nil
}
