package store

import (
	"context"
	"path"
	"sync"

	"github.com/jonwraymond/memoize/fingerprint"
	"github.com/jonwraymond/memoize/storage"
)

// memoryPrefix namespaces transient artifact locations.
const memoryPrefix = "mem/objects"

// Memory is a transient store. It lives exactly as long as the engine
// instance that owns it and keeps no manifest.
type Memory struct {
	mu      sync.RWMutex
	entries map[fingerprint.Digest]storage.Ref
	closed  bool
}

// NewMemory creates an empty transient store.
func NewMemory() *Memory {
	return &Memory{entries: make(map[fingerprint.Digest]storage.Ref)}
}

// Get looks up the location for a fingerprint.
func (s *Memory) Get(_ context.Context, d fingerprint.Digest) (storage.Ref, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return storage.NilRef, false, ErrClosed
	}
	ref, ok := s.entries[d]
	return ref, ok, nil
}

// Put registers the location for a fingerprint.
func (s *Memory) Put(_ context.Context, d fingerprint.Digest, ref storage.Ref) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if prev, ok := s.entries[d]; ok {
		if prev != ref {
			return ErrConflict
		}
		return nil
	}
	s.entries[d] = ref
	return nil
}

// ArtifactRef derives a transient location from the fingerprint.
func (s *Memory) ArtifactRef(d fingerprint.Digest) storage.Ref {
	return storage.Ref(path.Join(memoryPrefix, d.Hex()))
}

// Len reports the number of registered entries.
func (s *Memory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Flush is a no-op: a transient store has nothing to persist.
func (s *Memory) Flush(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrClosed
	}
	return nil
}

// Close releases the table. Idempotent.
func (s *Memory) Close(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.entries = nil
	return nil
}

// Ensure Memory implements Store
var _ Store = (*Memory)(nil)
