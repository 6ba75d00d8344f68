package scoring

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
)

// Digest accumulates identity fields into a deterministic SHA-256 content
// hash. Each field is encoded as a 4-byte big-endian length prefix followed
// by the field bytes, so freeform text can never collide across field
// boundaries.
//
// Engines hash only the canonical identity subset of their input (schema
// id/version/fields, adapter id/endpoint), never request metadata or
// timestamps, so logically identical inputs hash identically regardless of
// incidental request framing. The hex digest is the deduplication and
// correlation key for downstream audit consumers.
type Digest struct {
	h hash.Hash
}

// NewDigest creates an empty digest.
func NewDigest() *Digest {
	return &Digest{h: sha256.New()}
}

// WriteField appends one length-prefixed field.
func (d *Digest) WriteField(s string) *Digest {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(s)))
	d.h.Write(lenBuf[:])
	d.h.Write([]byte(s))
	return d
}

// Sum returns the hex-encoded SHA-256 digest of all fields written so far.
func (d *Digest) Sum() string {
	return hex.EncodeToString(d.h.Sum(nil))
}
