package store

import (
	"context"
	"errors"

	"github.com/jonwraymond/memoize/fingerprint"
	"github.com/jonwraymond/memoize/storage"
)

// Sentinel errors for store operations.
var (
	ErrConflict = errors.New("store: fingerprint already bound to a different location")
	ErrClosed   = errors.New("store: store is closed")
)

// Store is a fingerprint-to-artifact-location table.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Immutability: Put never re-binds a fingerprint to a different
//     location; conflicting puts fail with ErrConflict, identical puts
//     are no-ops.
//   - Lifecycle: Close flushes any buffered state; after Close all
//     operations fail with ErrClosed. Close is idempotent.
type Store interface {
	// Get looks up the artifact location for a fingerprint.
	Get(ctx context.Context, d fingerprint.Digest) (storage.Ref, bool, error)

	// Put registers the artifact location for a fingerprint.
	Put(ctx context.Context, d fingerprint.Digest, ref storage.Ref) error

	// ArtifactRef derives the location a new artifact for the given
	// fingerprint should be written to. Deterministic, so engine
	// instances sharing a root converge on one location per
	// fingerprint.
	ArtifactRef(d fingerprint.Digest) storage.Ref

	// Len reports the number of registered entries.
	Len() int

	// Flush persists any buffered state to the substrate.
	Flush(ctx context.Context) error

	// Close flushes and releases the store.
	Close(ctx context.Context) error
}
