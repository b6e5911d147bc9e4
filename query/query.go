package query

import (
	"context"

	"github.com/jonwraymond/memoize/fingerprint"
	"github.com/jonwraymond/memoize/storage"
)

// Query is a self-describing unit of cacheable work.
//
// Contract:
//   - Immutability: a Query's parameters never change after creation;
//     the engine retains only its fingerprint and result, not the value.
//   - Fingerprint: must follow the fingerprint.Fingerprintable contract
//     (type identity first, then fields in declaration order).
//   - Run: invoked at most once per distinct fingerprint per engine
//     lifetime, on the cache-miss path only. It must be deterministic
//     and idempotent, since nothing stops a caller from executing it
//     directly. All side effects go through the Runtime's substrate.
//     Run returns a reference to its artifact, not the bytes, so large
//     results are never held by the engine.
type Query interface {
	fingerprint.Fingerprintable

	// Run computes the query's artifact and returns its location.
	// Typically it writes its result to rt.Output() through
	// rt.Storage() and returns that ref.
	Run(ctx context.Context, rt Runtime) (storage.Ref, error)
}

// Runtime is the capability an engine hands to a running query.
//
// Contract:
//   - Scope: valid only for the duration of the Run invocation it was
//     created for; queries must not retain it.
//   - Concurrency: safe for concurrent use, so Run may fan out nested
//     resolutions across goroutines.
type Runtime interface {
	// Resolve resolves another query through the same engine. Nested
	// resolutions hit or miss independently, to unbounded depth; a
	// query that transitively resolves itself fails rather than
	// recursing forever.
	Resolve(ctx context.Context, q Query) (storage.Ref, error)

	// Storage returns the engine's substrate handle.
	Storage() storage.Substrate

	// Output returns the location assigned to this invocation's
	// artifact, derived from the query's fingerprint. Engines sharing a
	// durable root converge on the same location for the same work.
	Output() storage.Ref

	// ReadLimit returns the engine's maximum buffered read size.
	ReadLimit() int64
}
