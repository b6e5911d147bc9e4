// Package engine deduplicates and caches query executions by
// fingerprint.
//
// An Engine resolves queries: it fingerprints the query, consults its
// cache store, and on a miss runs the query exactly once, registering
// the artifact location under the fingerprint. Queries resolve other
// queries recursively through the same engine, so independent
// computations share sub-results across one process run and, with a
// durable store, across restarts.
package engine
