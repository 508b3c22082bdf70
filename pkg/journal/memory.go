package journal

import (
	"context"
	"sync"
)

// MemoryBackend implements Backend using a bounded in-memory ring.
// This is the default backend; records are lost when the process exits.
//
// MemoryBackend is thread-safe using sync.RWMutex.
type MemoryBackend struct {
	mu      sync.RWMutex
	records []*Record
	next    int
	full    bool
	closed  bool
}

// NewMemoryBackend creates an in-memory backend keeping at most maxEntries
// records. Older records are overwritten once the ring is full.
func NewMemoryBackend(maxEntries int) *MemoryBackend {
	if maxEntries <= 0 {
		maxEntries = 10000
	}
	return &MemoryBackend{
		records: make([]*Record, maxEntries),
	}
}

// Append stores a record, overwriting the oldest when full.
func (m *MemoryBackend) Append(ctx context.Context, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}

	m.records[m.next] = rec
	m.next++
	if m.next == len(m.records) {
		m.next = 0
		m.full = true
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (m *MemoryBackend) Recent(ctx context.Context, limit int) ([]*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	size := m.next
	if m.full {
		size = len(m.records)
	}
	if limit <= 0 || limit > size {
		limit = size
	}

	out := make([]*Record, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := m.next - i
		if idx < 0 {
			idx += len(m.records)
		}
		out = append(out, m.records[idx])
	}
	return out, nil
}

// Close marks the backend closed. Further appends are ignored.
func (m *MemoryBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
