// Package csprng provides a per-trade seeded CSPRNG so that test vectors
// are reproducible while production trades always draw fresh entropy.
package csprng

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/chacha20"
)

// SeedSize is the byte length of a csprng seed.
const SeedSize = 32

// Source is a seeded stream cipher used as a CSPRNG. It must never be
// reused across two different trades: doing so would let an observer who
// learns one trade's derived scalars correlate them with another's.
type Source struct {
	cipher *chacha20.Cipher
}

// NewSeed draws a fresh random seed from the operating system CSPRNG.
func NewSeed() ([SeedSize]byte, error) {
	var seed [SeedSize]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return seed, fmt.Errorf("failed to read seed: %w", err)
	}
	return seed, nil
}

// NewSource builds a deterministic CSPRNG from a 32-byte seed and a trade
// id, so that replaying a trade with the same seed and id reproduces
// identical key material for test vectors.
func NewSource(seed [SeedSize]byte, tradeID string) (*Source, error) {
	var nonce [chacha20.NonceSize]byte
	binary.LittleEndian.PutUint64(nonce[:8], fnv64(tradeID))

	c, err := chacha20.NewUnauthenticatedCipher(seed[:], nonce[:])
	if err != nil {
		return nil, fmt.Errorf("failed to construct cipher: %w", err)
	}

	return &Source{cipher: c}, nil
}

// Read fills b with pseudorandom bytes.
func (s *Source) Read(b []byte) (int, error) {
	zero := make([]byte, len(b))
	s.cipher.XORKeyStream(b, zero)
	return len(b), nil
}

func fnv64(s string) uint64 {
	const (
		offset = 14695981039346656037
		prime  = 1099511628211
	)

	h := uint64(offset)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime
	}

	return h
}
