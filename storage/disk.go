package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

// Disk is a substrate rooted at a directory. Refs are slash-separated
// paths relative to the root; refs that would escape the root are
// rejected. Writes are atomic renames, so concurrent readers never
// observe partial content.
type Disk struct {
	root string
}

// NewDisk creates a disk substrate rooted at dir, creating it if
// necessary.
func NewDisk(dir string) (*Disk, error) {
	if dir == "" {
		return nil, errors.New("storage: disk root must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root %s: %w", dir, err)
	}
	return &Disk{root: dir}, nil
}

// Root returns the root directory.
func (d *Disk) Root() string {
	return d.root
}

// Open acquires a read stream for a location.
func (d *Disk) Open(ctx context.Context, ref Ref) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := d.path(ref)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return nil, fmt.Errorf("storage: open %s: %w", ref, err)
	}
	return f, nil
}

// Write stores data at the location via write-to-temp-then-rename.
func (d *Disk) Write(ctx context.Context, ref Ref, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := d.path(ref)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("storage: create parent of %s: %w", ref, err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("storage: write %s: %w", ref, err)
	}
	return nil
}

// Remove deletes a location. Idempotent.
func (d *Disk) Remove(ctx context.Context, ref Ref) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := d.path(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: remove %s: %w", ref, err)
	}
	return nil
}

// path maps a ref to an on-disk path, enforcing containment under the
// root.
func (d *Disk) path(ref Ref) (string, error) {
	s := string(ref)
	if s == "" {
		return "", fmt.Errorf("%w: empty ref", ErrInvalidRef)
	}
	local := filepath.FromSlash(s)
	if !filepath.IsLocal(local) {
		return "", fmt.Errorf("%w: %s escapes the substrate root", ErrInvalidRef, ref)
	}
	return filepath.Join(d.root, local), nil
}

// Ensure Disk implements Substrate
var _ Substrate = (*Disk)(nil)
