package fingerprint

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
)

// Size is the width of a Digest in bytes.
const Size = sha256.Size

// Sentinel errors for fingerprint operations.
var (
	ErrUnsupported = errors.New("fingerprint: unsupported value type")
	ErrBadDigest   = errors.New("fingerprint: malformed digest")
)

// Digest is a fixed-width fingerprint of a value's type identity and
// parameters. It is the sole cache key and, for durable stores, the
// on-disk artifact name.
type Digest [Size]byte

// Hex returns the digest as a lowercase hexadecimal string.
func (d Digest) Hex() string {
	return hex.EncodeToString(d[:])
}

func (d Digest) String() string {
	return d.Hex()
}

// ParseHex decodes a lowercase hexadecimal digest string.
func ParseHex(s string) (Digest, error) {
	var d Digest
	if len(s) != hex.EncodedLen(Size) {
		return d, fmt.Errorf("%w: got %d hex characters, want %d", ErrBadDigest, len(s), hex.EncodedLen(Size))
	}
	if _, err := hex.Decode(d[:], []byte(s)); err != nil {
		return d, fmt.Errorf("%w: %v", ErrBadDigest, err)
	}
	return d, nil
}

// Fingerprintable is a value that can fold itself into a Hasher.
//
// Contract:
//   - Implementations write a stable, fully-qualified identifier of their
//     concrete type first (WriteTypeID), then every parameter field in a
//     fixed declaration order.
//   - Nested Fingerprintable fields recurse, so structurally identical
//     payloads of different types never collide.
//   - Determinism: the same value must write the same bytes on every
//     call, in every process.
type Fingerprintable interface {
	Fingerprint(h *Hasher)
}

// Of computes the digest of a single value.
func Of(v Fingerprintable) Digest {
	h := New()
	v.Fingerprint(h)
	return h.Sum()
}

// Each canonical write is preceded by a kind tag so adjacent fields of
// different kinds can never alias each other's bytes.
const (
	tagTypeID byte = iota + 1
	tagString
	tagBytes
	tagInt
	tagUint
	tagBool
	tagDigest
)

// Hasher is a running fingerprint state. Writes are canonical and
// infallible: variable-length data is length-prefixed, fixed-width
// integers are big-endian. A Hasher must not be reused after Sum.
type Hasher struct {
	h   hash.Hash
	buf [binary.MaxVarintLen64]byte
}

// New creates an empty Hasher.
func New() *Hasher {
	return &Hasher{h: sha256.New()}
}

// WriteTypeID writes a fully-qualified type identifier. Identifiers must
// include their package path so same-named types in different packages
// cannot collide.
func (h *Hasher) WriteTypeID(id string) {
	h.writeTagged(tagTypeID, []byte(id))
}

// WriteString writes a string with a length prefix, so adjacent strings
// cannot be confused by concatenation.
func (h *Hasher) WriteString(s string) {
	h.writeTagged(tagString, []byte(s))
}

// WriteBytes writes a byte slice with a length prefix.
func (h *Hasher) WriteBytes(b []byte) {
	h.writeTagged(tagBytes, b)
}

// WriteInt writes a signed integer as 8 big-endian bytes.
func (h *Hasher) WriteInt(v int64) {
	h.writeFixed(tagInt, uint64(v))
}

// WriteUint writes an unsigned integer as 8 big-endian bytes.
func (h *Hasher) WriteUint(v uint64) {
	h.writeFixed(tagUint, v)
}

// WriteBool writes a boolean as a single byte.
func (h *Hasher) WriteBool(v bool) {
	b := byte(0)
	if v {
		b = 1
	}
	h.h.Write([]byte{tagBool, b})
}

// WriteDigest folds an already-computed digest into the state.
func (h *Hasher) WriteDigest(d Digest) {
	h.h.Write([]byte{tagDigest})
	h.h.Write(d[:])
}

// Sum finalizes the state and returns the digest.
func (h *Hasher) Sum() Digest {
	var d Digest
	h.h.Sum(d[:0])
	return d
}

func (h *Hasher) writeTagged(tag byte, b []byte) {
	h.h.Write([]byte{tag})
	n := binary.PutUvarint(h.buf[:], uint64(len(b)))
	h.h.Write(h.buf[:n])
	h.h.Write(b)
}

func (h *Hasher) writeFixed(tag byte, v uint64) {
	h.h.Write([]byte{tag})
	binary.BigEndian.PutUint64(h.buf[:8], v)
	h.h.Write(h.buf[:8])
}

// Append encodes a loose value into the Hasher. It supports the
// primitive kinds the canonical writers cover plus nested
// Fingerprintable values; anything else is a programmer error reported
// as ErrUnsupported.
func Append(h *Hasher, v any) error {
	switch x := v.(type) {
	case Fingerprintable:
		x.Fingerprint(h)
	case string:
		h.WriteString(x)
	case []byte:
		h.WriteBytes(x)
	case bool:
		h.WriteBool(x)
	case int:
		h.WriteInt(int64(x))
	case int8:
		h.WriteInt(int64(x))
	case int16:
		h.WriteInt(int64(x))
	case int32:
		h.WriteInt(int64(x))
	case int64:
		h.WriteInt(x)
	case uint:
		h.WriteUint(uint64(x))
	case uint8:
		h.WriteUint(uint64(x))
	case uint16:
		h.WriteUint(uint64(x))
	case uint32:
		h.WriteUint(uint64(x))
	case uint64:
		h.WriteUint(x)
	case Digest:
		h.WriteDigest(x)
	default:
		return fmt.Errorf("%w: %T", ErrUnsupported, v)
	}
	return nil
}
