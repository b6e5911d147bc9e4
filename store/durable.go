package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sync"

	"github.com/jonwraymond/memoize/fingerprint"
	"github.com/jonwraymond/memoize/storage"
)

const (
	manifestName = "manifest.json"
	objectsDir   = "objects"

	// maxManifestSize caps the manifest read at load time.
	maxManifestSize = 64 << 20
)

// Durable is a store persisted under a substrate root. The table itself
// lives in a JSON manifest mapping hex fingerprints to artifact
// locations; artifact bytes live at locations derived from their
// fingerprint, so parallel engine instances sharing a root converge on
// the same artifact for the same work.
type Durable struct {
	sub  storage.Substrate
	root string

	mu      sync.RWMutex
	entries map[fingerprint.Digest]storage.Ref
	dirty   bool
	closed  bool
}

// OpenDurable opens (or initializes) a durable store rooted at root
// within the substrate. The manifest is loaded eagerly; an absent
// manifest yields an empty store, a corrupt one is an error.
func OpenDurable(ctx context.Context, sub storage.Substrate, root string) (*Durable, error) {
	s := &Durable{
		sub:     sub,
		root:    root,
		entries: make(map[fingerprint.Digest]storage.Ref),
	}

	data, err := storage.ReadAll(ctx, sub, s.manifestRef(), maxManifestSize)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return s, nil
		}
		return nil, fmt.Errorf("store: load manifest: %w", err)
	}

	var manifest map[string]storage.Ref
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("store: corrupt manifest at %s: %w", s.manifestRef(), err)
	}
	for hexDigest, ref := range manifest {
		d, err := fingerprint.ParseHex(hexDigest)
		if err != nil {
			return nil, fmt.Errorf("store: corrupt manifest key %q: %w", hexDigest, err)
		}
		s.entries[d] = ref
	}
	return s, nil
}

// Root returns the store's root within the substrate.
func (s *Durable) Root() string {
	return s.root
}

// Get looks up the location for a fingerprint.
func (s *Durable) Get(_ context.Context, d fingerprint.Digest) (storage.Ref, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return storage.NilRef, false, ErrClosed
	}
	ref, ok := s.entries[d]
	return ref, ok, nil
}

// Put registers the location for a fingerprint and marks the manifest
// dirty. The manifest itself is persisted at Flush/Close.
func (s *Durable) Put(_ context.Context, d fingerprint.Digest, ref storage.Ref) error {
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
	s.dirty = true
	return nil
}

// ArtifactRef derives the artifact location from the fingerprint:
// <root>/objects/<hex>.
func (s *Durable) ArtifactRef(d fingerprint.Digest) storage.Ref {
	return storage.Ref(path.Join(s.root, objectsDir, d.Hex()))
}

// Len reports the number of registered entries.
func (s *Durable) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Flush writes the manifest atomically if it changed since the last
// flush. Safe to call mid-run for periodic checkpointing.
func (s *Durable) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	return s.flushLocked(ctx)
}

// Close flushes and releases the store. Idempotent.
func (s *Durable) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	if err := s.flushLocked(ctx); err != nil {
		return err
	}
	s.closed = true
	s.entries = nil
	return nil
}

func (s *Durable) flushLocked(ctx context.Context) error {
	if !s.dirty {
		return nil
	}

	manifest := make(map[string]storage.Ref, len(s.entries))
	for d, ref := range s.entries {
		manifest[d.Hex()] = ref
	}
	// json.Marshal sorts map keys, so the manifest bytes are
	// deterministic for a given table.
	data, err := json.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("store: encode manifest: %w", err)
	}
	if err := s.sub.Write(ctx, s.manifestRef(), data); err != nil {
		return fmt.Errorf("store: write manifest: %w", err)
	}
	s.dirty = false
	return nil
}

func (s *Durable) manifestRef() storage.Ref {
	return storage.Ref(path.Join(s.root, manifestName))
}

// Ensure Durable implements Store
var _ Store = (*Durable)(nil)
