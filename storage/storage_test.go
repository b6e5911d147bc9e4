package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
)

// TestMemory_RoundTrip verifies bytes come back exactly as written.
func TestMemory_RoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	want := []byte("artifact bytes")
	if err := m.Write(ctx, "objects/abc", want); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	r, err := m.Open(ctx, "objects/abc")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer r.Close()

	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("read %q, want %q", got, want)
	}
}

// TestMemory_OpenMissing verifies ErrNotFound on absent locations.
func TestMemory_OpenMissing(t *testing.T) {
	m := NewMemory()

	_, err := m.Open(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Open(missing) = %v, want ErrNotFound", err)
	}
}

// TestMemory_WriteIsolation verifies stored bytes are not aliased to the
// caller's buffer.
func TestMemory_WriteIsolation(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	buf := []byte("original")
	if err := m.Write(ctx, "obj", buf); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	copy(buf, "mutated!")

	got, err := ReadAll(ctx, m, "obj", 0)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(got) != "original" {
		t.Errorf("stored bytes changed with caller buffer: %q", got)
	}
}

// TestMemory_RemoveIdempotent verifies removal of absent locations is
// not an error.
func TestMemory_RemoveIdempotent(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_ = m.Write(ctx, "obj", []byte("x"))
	if err := m.Remove(ctx, "obj"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := m.Remove(ctx, "obj"); err != nil {
		t.Errorf("second Remove = %v, want nil", err)
	}
	if _, err := m.Open(ctx, "obj"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Open after Remove = %v, want ErrNotFound", err)
	}
}

// TestReadAll_Limit verifies the buffer cap fails hard instead of
// truncating.
func TestReadAll_Limit(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	_ = m.Write(ctx, "obj", []byte("0123456789"))

	tests := []struct {
		name    string
		max     int64
		wantErr bool
	}{
		{"under limit", 11, false},
		{"exactly at limit", 10, false},
		{"over limit", 9, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := ReadAll(ctx, m, "obj", tt.max)
			if tt.wantErr {
				if !errors.Is(err, ErrTooLarge) {
					t.Errorf("ReadAll = %v, want ErrTooLarge", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadAll failed: %v", err)
			}
			if len(data) != 10 {
				t.Errorf("read %d bytes, want 10", len(data))
			}
		})
	}
}

// TestReadAll_DefaultLimit verifies max <= 0 selects the default cap.
func TestReadAll_DefaultLimit(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	_ = m.Write(ctx, "obj", []byte("small"))

	if _, err := ReadAll(ctx, m, "obj", 0); err != nil {
		t.Errorf("ReadAll with default limit failed: %v", err)
	}
	if _, err := ReadAll(ctx, m, "obj", -1); err != nil {
		t.Errorf("ReadAll with negative limit failed: %v", err)
	}
}

// TestMemory_RejectsNilRef verifies writes to the zero ref fail.
func TestMemory_RejectsNilRef(t *testing.T) {
	err := NewMemory().Write(context.Background(), NilRef, []byte("x"))
	if !errors.Is(err, ErrInvalidRef) {
		t.Errorf("Write(NilRef) = %v, want ErrInvalidRef", err)
	}
}
