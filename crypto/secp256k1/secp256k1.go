// Package secp256k1 wraps btcec scalar/point arithmetic behind the small
// surface the swap core needs: random scalar generation, scalar*basepoint,
// and serialization, mirroring the PublicKey surface the teacher's
// dleq.VerifyResult and swap_state.secp256k1Pub expose.
package secp256k1

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/gcash/bchd/chaincfg/chainhash"
)

// ScalarSize is the byte length of an encoded scalar.
const ScalarSize = 32

// Scalar is a secp256k1 private scalar in [1, N-1].
type Scalar struct {
	k *btcec.ModNScalar
}

// PublicKey is a secp256k1 curve point.
type PublicKey struct {
	p *btcec.PublicKey
}

// NewRandomScalar draws a scalar from crypto/rand, retrying on the (astronomically
// unlikely) chance of landing outside [1, N-1].
func NewRandomScalar() (*Scalar, error) {
	for {
		var b [ScalarSize]byte
		if _, err := rand.Read(b[:]); err != nil {
			return nil, fmt.Errorf("failed to read random bytes: %w", err)
		}

		var s btcec.ModNScalar
		overflow := s.SetBytes(&b)
		if overflow != 0 || s.IsZero() {
			continue
		}

		return &Scalar{k: &s}, nil
	}
}

// ScalarFromBytes decodes a 32-byte big-endian scalar. It returns
// ErrScalarOutOfRange if the value is zero or >= the group order.
func ScalarFromBytes(b [ScalarSize]byte) (*Scalar, error) {
	var s btcec.ModNScalar
	overflow := s.SetBytes(&b)
	if overflow != 0 || s.IsZero() {
		return nil, ErrScalarOutOfRange
	}

	return &Scalar{k: &s}, nil
}

// Bytes returns the scalar as 32 big-endian bytes.
func (s *Scalar) Bytes() [ScalarSize]byte {
	return s.k.Bytes()
}

// Point returns scalar*G.
func (s *Scalar) Point() *PublicKey {
	var p btcec.JacobianPoint
	btcec.ScalarBaseMultNonConst(s.k, &p)
	p.ToAffine()
	pub := btcec.NewPublicKey(&p.X, &p.Y)
	return &PublicKey{p: pub}
}

// Add returns s + other mod N.
func (s *Scalar) Add(other *Scalar) *Scalar {
	sum := new(btcec.ModNScalar).Set(s.k)
	sum.Add(other.k)
	return &Scalar{k: sum}
}

// Mul returns s * other mod N.
func (s *Scalar) Mul(other *Scalar) *Scalar {
	prod := new(btcec.ModNScalar).Set(s.k)
	prod.Mul(other.k)
	return &Scalar{k: prod}
}

// Sub returns s - other mod N.
func (s *Scalar) Sub(other *Scalar) *Scalar {
	neg := new(btcec.ModNScalar).Set(other.k).Negate()
	diff := new(btcec.ModNScalar).Set(s.k)
	diff.Add(neg)
	return &Scalar{k: diff}
}

// Equal reports whether s and other encode the same scalar.
func (s *Scalar) Equal(other *Scalar) bool {
	return s.k.Equals(other.k)
}

// MulPoint returns s*p for an arbitrary point p (not just the basepoint).
func (s *Scalar) MulPoint(p *PublicKey) *PublicKey {
	var jp, result btcec.JacobianPoint
	p.p.AsJacobian(&jp)
	btcec.ScalarMultNonConst(s.k, &jp, &result)
	result.ToAffine()
	return &PublicKey{p: btcec.NewPublicKey(&result.X, &result.Y)}
}

// Bytes returns the compressed SEC1 encoding of the point.
func (p *PublicKey) Bytes() []byte {
	return p.p.SerializeCompressed()
}

// String returns the hex-encoded compressed point.
func (p *PublicKey) String() string {
	return hex.EncodeToString(p.Bytes())
}

// Commitment returns the double-SHA256 digest of the uncompressed point
// encoding, used as the on-script key-commitment the way the teacher
// commits secp256k1 keys into its EVM contract's ClaimKey/RefundKey fields.
func (p *PublicKey) Commitment() [32]byte {
	return chainhash.HashH(p.p.SerializeUncompressed())
}

// PublicKeyFromBytes decodes a compressed or uncompressed SEC1 point.
func PublicKeyFromBytes(b []byte) (*PublicKey, error) {
	p, err := btcec.ParsePubKey(b)
	if err != nil {
		return nil, fmt.Errorf("failed to parse point: %w", err)
	}

	return &PublicKey{p: p}, nil
}

// Add returns the point sum p + other.
func (p *PublicKey) Add(other *PublicKey) *PublicKey {
	var a, b, sum btcec.JacobianPoint
	p.p.AsJacobian(&a)
	other.p.AsJacobian(&b)
	btcec.AddNonConst(&a, &b, &sum)
	sum.ToAffine()
	return &PublicKey{p: btcec.NewPublicKey(&sum.X, &sum.Y)}
}

// Equal reports whether p and other encode the same point.
func (p *PublicKey) Equal(other *PublicKey) bool {
	return p.p.IsEqual(other.p)
}

// Negate returns -p.
func (p *PublicKey) Negate() *PublicKey {
	var a btcec.JacobianPoint
	p.p.AsJacobian(&a)
	a.Y.Negate(1)
	a.Y.Normalize()
	a.ToAffine()
	return &PublicKey{p: btcec.NewPublicKey(&a.X, &a.Y)}
}

// ErrScalarOutOfRange is returned when a decoded scalar is zero or exceeds
// the group order.
var ErrScalarOutOfRange = fmt.Errorf("scalar out of range")

// ErrPointNotOnCurve is returned when a decoded point fails the curve check.
var ErrPointNotOnCurve = fmt.Errorf("point not on curve")
