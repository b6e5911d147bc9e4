// Package diag is the write-only diagnostics sink the engine reports
// through.
//
// It defines a minimal structured Logger interface, a JSON-lines
// implementation, and a no-op. Diagnostics are advisory: nothing in the
// caching core depends on them for correctness.
package diag
