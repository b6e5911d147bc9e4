package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// DefaultReadLimit is the maximum number of bytes ReadAll buffers when
// no explicit limit is configured.
const DefaultReadLimit int64 = 64 << 20

// Sentinel errors for substrate operations.
var (
	ErrNotFound   = errors.New("storage: location not found")
	ErrTooLarge   = errors.New("storage: read exceeds buffer limit")
	ErrInvalidRef = errors.New("storage: invalid location")
)

// Ref locates an artifact within a Substrate. It is opaque to callers:
// only the substrate that issued it interprets its contents. Refs
// serialize as plain strings so durable manifests can round-trip them.
type Ref string

// NilRef is the zero Ref, denoting no location.
const NilRef Ref = ""

// Substrate is a byte-level storage facility.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Transparency: Open returns exactly the bytes passed to Write for
//     the same Ref.
//   - Atomicity: Write is atomic from any reader's perspective; a
//     concurrent Open observes either the previous content or the new
//     content, never a partial write.
type Substrate interface {
	// Open acquires a read stream for a location. Returns ErrNotFound
	// if nothing was written there. The caller must close the stream.
	Open(ctx context.Context, ref Ref) (io.ReadCloser, error)

	// Write stores data at the location atomically, creating any
	// intermediate structure it needs.
	Write(ctx context.Context, ref Ref, data []byte) error

	// Remove deletes a location. Removing an absent location is not an
	// error.
	Remove(ctx context.Context, ref Ref) error
}

// ReadAll opens a location and consumes the stream fully, buffering at
// most max bytes. A read that would exceed max fails with ErrTooLarge
// rather than truncating. max <= 0 selects DefaultReadLimit.
func ReadAll(ctx context.Context, sub Substrate, ref Ref, max int64) ([]byte, error) {
	if max <= 0 {
		max = DefaultReadLimit
	}

	r, err := sub.Open(ctx, ref)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	// Read one byte past the limit to distinguish "exactly max" from
	// "over max".
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", ref, err)
	}
	if int64(len(data)) > max {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, ref, max)
	}
	return data, nil
}
