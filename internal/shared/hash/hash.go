// Package hash provides content hashing for run deduplication.
//
// Two submissions of byte-identical source always execute to the same
// trace, so the source hash doubles as the cache key for finished runs.
package hash

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Algorithm represents the hashing algorithm to use
type Algorithm string

const (
	BLAKE2b Algorithm = "blake2b"
	SHA256  Algorithm = "sha256"
)

// Hasher provides extensible hashing functionality
type Hasher struct {
	algorithm Algorithm
}

// NewHasher creates a new hasher with the specified algorithm
func NewHasher(algorithm Algorithm) *Hasher {
	return &Hasher{
		algorithm: algorithm,
	}
}

// DefaultHasher returns a hasher with the default algorithm
func DefaultHasher() *Hasher {
	return NewHasher(BLAKE2b)
}

// Hash computes a hex-encoded hash of the input data
func (h *Hasher) Hash(data []byte) string {
	switch h.algorithm {
	case SHA256:
		sum := sha256.Sum256(data)
		return hex.EncodeToString(sum[:])
	default:
		sum := blake2b.Sum256(data)
		return hex.EncodeToString(sum[:])
	}
}

// HashString computes a hash of a string
func (h *Hasher) HashString(s string) string {
	return h.Hash([]byte(s))
}

// Code returns the canonical hash of a program's source. The source is
// hashed as submitted; even whitespace changes what executes in an
// indentation-sensitive language, so no normalization is applied.
func Code(source string) string {
	return DefaultHasher().HashString(source)
}

// Short truncates a full hash to 12 characters for logs and display.
func Short(full string) string {
	if len(full) < 12 {
		return full
	}
	return full[:12]
}
