package dialogue

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a process-local Store. It backs tests and serves as a
// degraded fallback when the database file cannot be opened.
type MemoryStore struct {
	mu     sync.RWMutex
	budget Budget
	turns  map[int64][]Turn
}

func NewMemoryStore(budget Budget) *MemoryStore {
	return &MemoryStore{budget: budget, turns: make(map[int64][]Turn)}
}

func (m *MemoryStore) Load(ctx context.Context, userID int64) ([]Turn, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ts := m.turns[userID]
	out := make([]Turn, len(ts))
	copy(out, ts)
	return out, nil
}

func (m *MemoryStore) Append(ctx context.Context, userID int64, role, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ts := append(m.turns[userID], Turn{Role: role, Text: text, CreatedAt: time.Now().UTC()})
	m.turns[userID] = ts[m.budget.start(ts):]
	return nil
}

func (m *MemoryStore) Reset(ctx context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.turns, userID)
	return nil
}
