package store

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jonwraymond/memoize/fingerprint"
)

func digestOf(t *testing.T, s string) fingerprint.Digest {
	t.Helper()
	h := fingerprint.New()
	h.WriteTypeID("store_test.key")
	h.WriteString(s)
	return h.Sum()
}

// TestMemory_GetPut verifies basic lookup-and-register behavior.
func TestMemory_GetPut(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	d := digestOf(t, "a")

	if _, ok, err := s.Get(ctx, d); err != nil || ok {
		t.Fatalf("Get on empty store = (ok=%v, err=%v), want miss", ok, err)
	}

	ref := s.ArtifactRef(d)
	if err := s.Put(ctx, d, ref); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, ok, err := s.Get(ctx, d)
	if err != nil || !ok {
		t.Fatalf("Get after Put = (ok=%v, err=%v), want hit", ok, err)
	}
	if got != ref {
		t.Errorf("Get = %q, want %q", got, ref)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}

// TestMemory_PutImmutable verifies conflicting re-registration fails
// and identical re-registration is a no-op.
func TestMemory_PutImmutable(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	d := digestOf(t, "a")
	ref := s.ArtifactRef(d)

	if err := s.Put(ctx, d, ref); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Put(ctx, d, ref); err != nil {
		t.Errorf("identical re-put = %v, want nil", err)
	}
	if err := s.Put(ctx, d, "somewhere/else"); !errors.Is(err, ErrConflict) {
		t.Errorf("conflicting put = %v, want ErrConflict", err)
	}
}

// TestMemory_ArtifactRef verifies locations are digest-derived and
// distinct per fingerprint.
func TestMemory_ArtifactRef(t *testing.T) {
	s := NewMemory()
	da, db := digestOf(t, "a"), digestOf(t, "b")

	ra, rb := s.ArtifactRef(da), s.ArtifactRef(db)
	if ra == rb {
		t.Errorf("distinct fingerprints share an artifact location: %q", ra)
	}
	if !strings.HasSuffix(string(ra), da.Hex()) {
		t.Errorf("artifact location %q does not embed the digest %s", ra, da.Hex())
	}
	if s.ArtifactRef(da) != ra {
		t.Error("ArtifactRef is not deterministic")
	}
}

// TestMemory_Close verifies close semantics.
func TestMemory_Close(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	d := digestOf(t, "a")
	_ = s.Put(ctx, d, s.ArtifactRef(d))

	if err := s.Close(ctx); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := s.Close(ctx); err != nil {
		t.Errorf("second Close = %v, want nil", err)
	}

	if _, _, err := s.Get(ctx, d); !errors.Is(err, ErrClosed) {
		t.Errorf("Get after Close = %v, want ErrClosed", err)
	}
	if err := s.Put(ctx, d, "x"); !errors.Is(err, ErrClosed) {
		t.Errorf("Put after Close = %v, want ErrClosed", err)
	}
	if err := s.Flush(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("Flush after Close = %v, want ErrClosed", err)
	}
}
