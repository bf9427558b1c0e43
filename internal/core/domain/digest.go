package domain

import (
	"encoding/hex"
	"strings"

	"go.trai.ch/zerr"
)

// HashAlgorithm names a digest algorithm accepted in lockfile --hash options.
type HashAlgorithm string

const (
	// SHA256 is the pip-compatible default.
	SHA256 HashAlgorithm = "sha256"
	// BLAKE3 is accepted for indexes that publish blake3 digests.
	BLAKE3 HashAlgorithm = "blake3"
)

// digestHexLen is the hex length of a 256-bit digest, shared by both algorithms.
const digestHexLen = 64

// Digest is an algorithm-qualified content hash.
type Digest struct {
	Algorithm HashAlgorithm
	Hex       string
}

// ParseDigest parses "sha256:<hex>" or "blake3:<hex>".
func ParseDigest(s string) (Digest, error) {
	algo, value, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return Digest{}, zerr.With(zerr.Wrap(ErrInvalidDigest, "expected algorithm:hex"), "digest", s)
	}

	d := Digest{Algorithm: HashAlgorithm(strings.ToLower(algo)), Hex: strings.ToLower(value)}
	switch d.Algorithm {
	case SHA256, BLAKE3:
	default:
		return Digest{}, zerr.With(zerr.Wrap(ErrUnsupportedHash, "unknown digest algorithm"), "algorithm", algo)
	}

	if len(d.Hex) != digestHexLen {
		return Digest{}, zerr.With(zerr.Wrap(ErrInvalidDigest, "digest must be 64 hex characters"), "digest", s)
	}
	if _, err := hex.DecodeString(d.Hex); err != nil {
		return Digest{}, zerr.With(zerr.Wrap(ErrInvalidDigest, "digest is not hexadecimal"), "digest", s)
	}

	return d, nil
}

// String renders the digest as algorithm:hex.
func (d Digest) String() string {
	return string(d.Algorithm) + ":" + d.Hex
}

// IsZero reports whether d is unset.
func (d Digest) IsZero() bool {
	return d.Algorithm == "" && d.Hex == ""
}
