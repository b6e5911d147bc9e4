package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

// Memory is an in-memory substrate. It backs engines configured with
// the "memory" cache location and is the default for tests.
type Memory struct {
	mu      sync.RWMutex
	objects map[Ref][]byte
}

// NewMemory creates an empty in-memory substrate.
func NewMemory() *Memory {
	return &Memory{objects: make(map[Ref][]byte)}
}

// Open acquires a read stream over a snapshot of the stored bytes.
func (m *Memory) Open(_ context.Context, ref Ref) (io.ReadCloser, error) {
	m.mu.RLock()
	data, ok := m.objects[ref]
	m.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Write stores a copy of data at the location.
func (m *Memory) Write(_ context.Context, ref Ref, data []byte) error {
	if ref == NilRef {
		return ErrInvalidRef
	}

	cp := make([]byte, len(data))
	copy(cp, data)

	m.mu.Lock()
	m.objects[ref] = cp
	m.mu.Unlock()
	return nil
}

// Remove deletes a location. Idempotent.
func (m *Memory) Remove(_ context.Context, ref Ref) error {
	m.mu.Lock()
	delete(m.objects, ref)
	m.mu.Unlock()
	return nil
}

// Len reports the number of stored locations.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

// Ensure Memory implements Substrate
var _ Substrate = (*Memory)(nil)
