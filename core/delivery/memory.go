package delivery

import (
	"context"
	"sync"
)

// MemoryStore keeps entries in memory. Used for tests and dry runs.
type MemoryStore struct {
	mu      sync.Mutex
	entries []Entry
	// Err, when set, is returned by Append.
	Err error
}

func NewMemoryStore(entries ...Entry) *MemoryStore {
	return &MemoryStore{entries: append([]Entry(nil), entries...)}
}

func (m *MemoryStore) Append(ctx context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.entries = append(m.entries, e)
	return nil
}

func (m *MemoryStore) Query(ctx context.Context, q Query) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []Entry
	for _, e := range m.entries {
		if q.Match(e) {
			res = append(res, e)
		}
	}
	return res, nil
}

func (m *MemoryStore) Close() error { return nil }

// Len returns the number of stored entries.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
