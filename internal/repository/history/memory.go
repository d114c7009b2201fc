package history

import (
	"context"
	"sync"
)

// Memory is an in-process history store for embedded use without Redis.
type Memory struct {
	mu      sync.Mutex
	entries []string
}

// NewMemory creates an empty in-memory history store.
func NewMemory() *Memory {
	return &Memory{}
}

// Load returns the stored entries.
func (m *Memory) Load(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

// Save replaces the stored entries.
func (m *Memory) Save(_ context.Context, entries []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make([]string, len(entries))
	copy(m.entries, entries)
	return nil
}
