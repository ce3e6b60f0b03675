package snapshot

import (
	"context"
	"sync"
)

// Memory keeps the snapshot in process memory. Used by tests and local
// development without a database.
type Memory struct {
	mu   sync.Mutex
	snap *Snapshot
}

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{snap: New()}
}

// Load returns a deep copy of the current snapshot.
func (m *Memory) Load(_ context.Context) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap.Clone(), nil
}

// Save replaces the held snapshot with a deep copy of the argument.
func (m *Memory) Save(_ context.Context, snap *Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = snap.Clone()
	return nil
}

// NewMemoryStore is a convenience for a fully wired in-memory store.
func NewMemoryStore() Store {
	return NewLocked(NewMemory())
}
