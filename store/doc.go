// Package store maps fingerprints to artifact locations.
//
// It provides the Store interface with two interchangeable backends: a
// transient in-memory table scoped to one engine instance, and a
// durable table persisted as a JSON manifest under a substrate root,
// surviving process restarts. Entries are immutable facts: a
// fingerprint is never re-bound to a different location.
package store
