// Package storage is the byte substrate queries and cache stores build on.
//
// It defines the narrow Substrate interface (open a location for
// reading, write a buffer atomically, remove a location) plus disk and
// in-memory implementations. Substrates are byte-for-byte transparent:
// Open must yield exactly the bytes previously passed to Write for the
// same Ref, with no added metadata or re-encoding.
package storage
