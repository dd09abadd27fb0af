// Package ed25519ext exposes the ed25519 scalar/point operations the
// standard library's crypto/ed25519 keeps private: scalar generation,
// scalar*basepoint, and scalar addition. These are needed for Monero's
// two-party view/spend key aggregation and for the DLEQ proof's second
// curve.
package ed25519ext

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"filippo.io/edwards25519"
)

// ScalarSize is the byte length of an encoded scalar.
const ScalarSize = 32

// Scalar is an ed25519 private scalar, reduced mod the group order L.
type Scalar struct {
	s *edwards25519.Scalar
}

// Point is an ed25519 curve point.
type Point struct {
	p *edwards25519.Point
}

// NewRandomScalar draws a uniformly random scalar mod L.
func NewRandomScalar() (*Scalar, error) {
	var b [64]byte
	if _, err := rand.Read(b[:]); err != nil {
		return nil, fmt.Errorf("failed to read random bytes: %w", err)
	}

	s, err := edwards25519.NewScalar().SetUniformBytes(b[:])
	if err != nil {
		return nil, fmt.Errorf("failed to reduce random scalar: %w", err)
	}

	return &Scalar{s: s}, nil
}

// NewScalarFromUniformBytes reduces 64 bytes of uniform randomness (e.g.
// from a per-trade csprng.Source) into a scalar mod L, used when key
// material must be reproducible from a seed rather than drawn from the
// OS CSPRNG directly.
func NewScalarFromUniformBytes(b [64]byte) (*Scalar, error) {
	s, err := edwards25519.NewScalar().SetUniformBytes(b[:])
	if err != nil {
		return nil, fmt.Errorf("failed to reduce scalar: %w", err)
	}

	return &Scalar{s: s}, nil
}

// ScalarFromCanonicalBytes decodes a 32-byte little-endian scalar that must
// already be reduced mod L.
func ScalarFromCanonicalBytes(b [ScalarSize]byte) (*Scalar, error) {
	s, err := edwards25519.NewScalar().SetCanonicalBytes(b[:])
	if err != nil {
		return nil, fmt.Errorf("scalar not canonical: %w", err)
	}

	return &Scalar{s: s}, nil
}

// ScalarFromSecp256k1Bytes reduces an arbitrary 32-byte big-endian secp256k1
// scalar encoding into the ed25519 scalar field, the conversion the DLEQ
// proof needs to treat the same underlying secret x as both a secp256k1 and
// an ed25519 scalar.
func ScalarFromSecp256k1Bytes(b [32]byte) *Scalar {
	reversed := reverse(b)
	var wide [64]byte
	copy(wide[:32], reversed[:])
	s := edwards25519.NewScalar()
	// SetUniformBytes never errors on a 64-byte input.
	_, _ = s.SetUniformBytes(wide[:])
	return &Scalar{s: s}
}

func reverse(b [32]byte) [32]byte {
	var out [32]byte
	for i := range b {
		out[i] = b[31-i]
	}
	return out
}

// Bytes returns the canonical little-endian encoding of the scalar.
func (s *Scalar) Bytes() [ScalarSize]byte {
	var out [ScalarSize]byte
	copy(out[:], s.s.Bytes())
	return out
}

// Point returns scalar*B, the ed25519 basepoint multiple.
func (s *Scalar) Point() *Point {
	return &Point{p: edwards25519.NewIdentityPoint().ScalarBaseMult(s.s)}
}

// Add returns s + other mod L.
func (s *Scalar) Add(other *Scalar) *Scalar {
	sum := edwards25519.NewScalar().Add(s.s, other.s)
	return &Scalar{s: sum}
}

// MulPoint returns s*p for an arbitrary point p (not just the basepoint).
func (s *Scalar) MulPoint(p *Point) *Point {
	return &Point{p: edwards25519.NewIdentityPoint().ScalarMult(s.s, p.p)}
}

// Bytes returns the compressed 32-byte point encoding.
func (p *Point) Bytes() [32]byte {
	var out [32]byte
	copy(out[:], p.p.Bytes())
	return out
}

// String returns the hex-encoded compressed point.
func (p *Point) String() string {
	b := p.Bytes()
	return hex.EncodeToString(b[:])
}

// Add returns the point sum p + other, used to aggregate the two parties'
// view/spend public keys into the shared Monero subaddress key.
func (p *Point) Add(other *Point) *Point {
	return &Point{p: edwards25519.NewIdentityPoint().Add(p.p, other.p)}
}

// Negate returns -p.
func (p *Point) Negate() *Point {
	return &Point{p: edwards25519.NewIdentityPoint().Negate(p.p)}
}

// PointFromBytes decodes a compressed ed25519 point.
func PointFromBytes(b [32]byte) (*Point, error) {
	p, err := edwards25519.NewIdentityPoint().SetBytes(b[:])
	if err != nil {
		return nil, fmt.Errorf("invalid ed25519 point: %w", err)
	}

	return &Point{p: p}, nil
}
