// Package query defines the unit of cacheable work.
//
// A Query carries an immutable, fingerprintable parameter set and a Run
// operation that computes its artifact. Run receives a Runtime bound to
// the resolving engine, through which it reads and writes the storage
// substrate and recursively resolves other queries. New kinds of work
// are added by defining new Query types, never by modifying the engine.
package query
