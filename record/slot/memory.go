// Package slot provides Adapter implementations.
package slot

import (
	"context"
	"sync"
)

// =============================================================================
// MEMORY SLOT - In-memory implementation (for testing/dev)
// =============================================================================

// Memory keeps the snapshot document in process memory.
type Memory struct {
	mu    sync.RWMutex
	doc   []byte
	found bool
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Read(_ context.Context) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.found {
		return nil, false, nil
	}
	out := make([]byte, len(m.doc))
	copy(out, m.doc)
	return out, true, nil
}

func (m *Memory) Write(_ context.Context, doc []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doc = make([]byte, len(doc))
	copy(m.doc, doc)
	m.found = true
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doc = nil
	m.found = false
	return nil
}
