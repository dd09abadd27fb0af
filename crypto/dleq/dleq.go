// Package dleq implements a non-interactive discrete-log-equality proof
// across secp256k1 and ed25519: given a scalar x, it proves that
// P1 = x*G_secp256k1 and P2 = x*G_ed25519 share the same exponent, without
// revealing x. This is the artifact that lets a counterparty safely accept
// a shared Monero subaddress whose spend key is built from a secp256k1
// adaptor secret.
//
// A single Fiat-Shamir (c, s) response cannot be shared across two groups
// of different order: reducing s = k + c*x mod N_secp256k1 and then
// treating the same bytes as an ed25519 scalar does not reproduce the
// nonce commitment on the second curve for an honestly-generated proof,
// so that construction is neither sound nor complete. Instead this proves
// equality bit by bit: x is decomposed into 256 bits, each bit is
// committed to under a Pedersen commitment on both curves using a shared
// blinding factor, a Cramer-Damgard-Schoenmakers OR proof shows each
// commitment opens to 0 or 1 without revealing which, and the sum of the
// 256 blinding factors is opened once at the end to tie the aggregate of
// the per-bit commitments back to P1 and P2. Soundness of the binding
// reduces to the discrete-log hardness backing the two curves' NUMS
// generators H1 and H2, the same structure as a Pedersen-commitment range
// proof (e.g. the Borromean ring signatures used for Confidential
// Transactions), generalized to commit the same bit on two curves at once.
//
// TODO: this construction is linear in the bit length of x; a logarithmic
// range-proof technique (e.g. Bulletproofs) would shrink the proof
// considerably but is not implemented here.
//
// Structurally this generalizes the teacher's dleq.Interface (Prove/Verify
// against implicit fields) into free functions that take both points
// explicitly, since this protocol's invariant requires binding two
// independently-supplied points rather than proving a single party's own
// keypair.
package dleq

import (
	"crypto/rand"
	"crypto/sha256"
	"math/big"

	"github.com/Cyrix126/bch-xmr-swap/crypto/ed25519ext"
	"github.com/Cyrix126/bch-xmr-swap/crypto/secp256k1"
	"github.com/Cyrix126/bch-xmr-swap/swaperrors"
)

const (
	// bitLength is the number of bits of x committed to; secp256k1's group
	// order is just under 2^256, so 256 bits covers the full range.
	bitLength = 256
	// rBits is the bit width each per-bit blinding factor is drawn from.
	// It need not span either curve's full scalar range: hiding relies on
	// H1/H2 having an unknown discrete log, not on the blinding factor's
	// size.
	rBits = 128
	// cBits is the bit width of each bit-proof's Fiat-Shamir challenge.
	cBits = 128
	// kBits is the bit width the per-bit Schnorr nonce and the OR proof's
	// simulated response are drawn from. It must exceed cBits+rBits by a
	// statistical security margin so the real branch's response
	// statistically hides the blinding factor it was built from.
	kBits = 384
)

var (
	// secpOrder is the secp256k1 base-point order N.
	secpOrder, _ = new(big.Int).SetString("FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEBAAEDCE6AF48A03BBFD25E8CD0364141", 16)
	// edOrder is the ed25519 base-point order L = 2^252 + 27742317777372353535851937790883648493.
	edOrder = func() *big.Int {
		n, ok := new(big.Int).SetString("27742317777372353535851937790883648493", 10)
		if !ok {
			panic("dleq: invalid ed25519 order constant")
		}
		return new(big.Int).Add(new(big.Int).Lsh(big.NewInt(1), 252), n)
	}()
	// twoPowC bounds the Fiat-Shamir challenge space for each bit proof.
	twoPowC = new(big.Int).Lsh(big.NewInt(1), cBits)

	// h1 and h2 are NUMS (nothing-up-my-sleeve) generators on secp256k1 and
	// ed25519 respectively, derived by hash-to-curve so that no party can
	// know their discrete log with respect to the curve's base point. This
	// is the same technique Monero's own RingCT commitments use to derive
	// their second Pedersen generator from the base point by hashing.
	h1 *secp256k1.PublicKey
	h2 *ed25519ext.Point

	// v1[i] = 2^i * G_secp256k1 and v2[i] = (2^i mod L) * G_ed25519, the
	// per-bit "value" points added into a commitment when that bit is 1.
	v1 [bitLength]*secp256k1.PublicKey
	v2 [bitLength]*ed25519ext.Point
)

func init() {
	var err error
	h1, err = deriveH1()
	if err != nil {
		panic("dleq: failed to derive secp256k1 NUMS generator: " + err.Error())
	}
	h2, err = deriveH2()
	if err != nil {
		panic("dleq: failed to derive ed25519 NUMS generator: " + err.Error())
	}

	pow := big.NewInt(1)
	for i := 0; i < bitLength; i++ {
		v1[i], err = secpPointFromBig(pow)
		if err != nil {
			panic("dleq: failed to derive secp256k1 bit generator: " + err.Error())
		}
		v2[i], err = edPointFromBig(pow)
		if err != nil {
			panic("dleq: failed to derive ed25519 bit generator: " + err.Error())
		}
		pow = new(big.Int).Lsh(pow, 1)
	}
}

// deriveH1 hash-to-curves a secp256k1 NUMS generator by try-and-increment:
// hash a fixed domain tag, treat the digest as an x-coordinate with an
// even-y prefix, and retry on the roughly half of candidates that aren't a
// valid curve point.
func deriveH1() (*secp256k1.PublicKey, error) {
	seed := sha256.Sum256([]byte("bch-xmr-swap/dleq/h1"))
	for i := 0; i < 10000; i++ {
		candidate := sha256.Sum256(append(seed[:], byte(i)))
		compressed := make([]byte, 0, 33)
		compressed = append(compressed, 0x02)
		compressed = append(compressed, candidate[:]...)
		if p, err := secp256k1.PublicKeyFromBytes(compressed); err == nil {
			return p, nil
		}
	}
	return nil, swaperrors.Newf(swaperrors.KindProtocolViolation, "exhausted hash-to-curve attempts for h1")
}

// deriveH2 hash-to-curves an ed25519 NUMS generator the same way, then
// clears the cofactor (ed25519's group has cofactor 8) so the result lies
// in the same prime-order subgroup as the base point.
func deriveH2() (*ed25519ext.Point, error) {
	seed := sha256.Sum256([]byte("bch-xmr-swap/dleq/h2"))
	for i := 0; i < 10000; i++ {
		candidate := sha256.Sum256(append(seed[:], byte(i)))
		var arr [32]byte
		copy(arr[:], candidate[:])
		p, err := ed25519ext.PointFromBytes(arr)
		if err != nil {
			continue
		}
		return edMul(big.NewInt(8), p)
	}
	return nil, swaperrors.Newf(swaperrors.KindProtocolViolation, "exhausted hash-to-curve attempts for h2")
}

// BitProof is a Cramer-Damgard-Schoenmakers OR proof that a single
// Pedersen-committed bit is 0 or 1, committed identically (same bit, same
// blinding factor) on both curves. Exactly one of the two branches is
// real; the other is simulated, so the proof does not reveal which.
type BitProof struct {
	// C1 and C2 are the bit's Pedersen commitments on secp256k1 and
	// ed25519: C = bit*V + r*H for that curve's per-bit value point V.
	C1 *secp256k1.PublicKey
	C2 *ed25519ext.Point
	// R1Zero/R2Zero and R1One/R2One are the branch-0 (bit=0) and branch-1
	// (bit=1) Schnorr nonce commitments, one pair per curve.
	R1Zero *secp256k1.PublicKey
	R2Zero *ed25519ext.Point
	R1One  *secp256k1.PublicKey
	R2One  *ed25519ext.Point
	// C0 is branch 0's challenge; branch 1's challenge is recovered by the
	// verifier as the Fiat-Shamir total minus C0.
	C0 *big.Int
	// S0 and S1 are the two branches' responses, shared across both curves.
	S0 *big.Int
	S1 *big.Int
}

// Proof is the aggregate of 256 BitProofs plus the opened sum of their
// blinding factors.
type Proof struct {
	Bits [bitLength]BitProof
	// R is Sigma r_i over all 256 bits, opened so the verifier can strip
	// the blinding out of the summed commitments.
	R *big.Int
}

// Prove produces a DLEQ proof that x*G_secp256k1 and x*G_ed25519 (the
// latter reduced mod the ed25519 order, per ed25519ext.ScalarFromSecp256k1Bytes)
// share the exponent x.
func Prove(x *secp256k1.Scalar) (*Proof, error) {
	p1 := x.Point()
	p2 := secp256k1ScalarToEd25519(x).Point()
	ctx := proofContext(p1, p2)

	xb := x.Bytes()
	xBig := new(big.Int).SetBytes(xb[:])

	var proof Proof
	proof.R = new(big.Int)

	for i := 0; i < bitLength; i++ {
		bp, r, err := proveBit(ctx, i, xBig.Bit(i))
		if err != nil {
			return nil, err
		}
		proof.Bits[i] = *bp
		proof.R.Add(proof.R, r)
	}

	return &proof, nil
}

// Verify checks that a DLEQ proof binds p1 (secp256k1) to p2 (ed25519).
// It returns a *swaperrors.SwapError of KindInvalidDleq on any mismatch,
// including any single-bit tamper of the proof.
func Verify(p1 *secp256k1.PublicKey, p2 *ed25519ext.Point, proof *Proof) error {
	if proof.R == nil {
		return swaperrors.InvalidDleq("missing blinding-factor opening")
	}

	ctx := proofContext(p1, p2)

	var accC1 *secp256k1.PublicKey
	var accC2 *ed25519ext.Point

	for i := 0; i < bitLength; i++ {
		bp := &proof.Bits[i]
		if bp.C1 == nil || bp.C2 == nil || bp.R1Zero == nil || bp.R2Zero == nil || bp.R1One == nil || bp.R2One == nil || bp.C0 == nil || bp.S0 == nil || bp.S1 == nil {
			return swaperrors.InvalidDleq("incomplete bit proof at index %d", i)
		}
		if err := verifyBit(ctx, i, bp); err != nil {
			return err
		}
		if i == 0 {
			accC1 = bp.C1
			accC2 = bp.C2
			continue
		}
		accC1 = accC1.Add(bp.C1)
		accC2 = accC2.Add(bp.C2)
	}

	rH1, err := secpMul(proof.R, h1)
	if err != nil {
		return swaperrors.InvalidDleq("invalid blinding-factor opening: %s", err)
	}
	rH2, err := edMul(proof.R, h2)
	if err != nil {
		return swaperrors.InvalidDleq("invalid blinding-factor opening: %s", err)
	}

	if !accC1.Add(rH1.Negate()).Equal(p1) {
		return swaperrors.InvalidDleq("aggregate commitment mismatch on secp256k1 side")
	}
	if accC2.Add(rH2.Negate()).Bytes() != p2.Bytes() {
		return swaperrors.InvalidDleq("aggregate commitment mismatch on ed25519 side")
	}

	return nil
}

// proveBit builds the Pedersen commitments and CDS OR proof for bit i of
// x, returning the blinding factor r it used so the caller can fold it
// into the proof's aggregate opening.
func proveBit(ctx []byte, idx int, bit uint) (*BitProof, *big.Int, error) {
	r, err := randBig(rBits)
	if err != nil {
		return nil, nil, err
	}
	if r.Sign() == 0 {
		return nil, nil, swaperrors.Newf(swaperrors.KindProtocolViolation, "degenerate zero blinding factor")
	}

	rH1, err := secpMul(r, h1)
	if err != nil {
		return nil, nil, err
	}
	rH2, err := edMul(r, h2)
	if err != nil {
		return nil, nil, err
	}

	var c1 *secp256k1.PublicKey
	var c2 *ed25519ext.Point
	if bit == 1 {
		c1 = v1[idx].Add(rH1)
		c2 = v2[idx].Add(rH2)
	} else {
		c1 = rH1
		c2 = rH2
	}

	t1 := [2]*secp256k1.PublicKey{c1, c1.Add(v1[idx].Negate())}
	t2 := [2]*ed25519ext.Point{c2, c2.Add(v2[idx].Negate())}

	real := int(bit)
	fake := 1 - real

	var R1 [2]*secp256k1.PublicKey
	var R2 [2]*ed25519ext.Point
	var C [2]*big.Int
	var S [2]*big.Int

	k, err := randBig(kBits)
	if err != nil {
		return nil, nil, err
	}
	R1[real], err = secpMul(k, h1)
	if err != nil {
		return nil, nil, err
	}
	R2[real], err = edMul(k, h2)
	if err != nil {
		return nil, nil, err
	}

	cFake, err := randBig(cBits)
	if err != nil {
		return nil, nil, err
	}
	sFake, err := randBig(kBits)
	if err != nil {
		return nil, nil, err
	}

	sFakeH1, err := secpMul(sFake, h1)
	if err != nil {
		return nil, nil, err
	}
	cFakeT1, err := secpMul(cFake, t1[fake])
	if err != nil {
		return nil, nil, err
	}
	R1[fake] = sFakeH1.Add(cFakeT1.Negate())

	sFakeH2, err := edMul(sFake, h2)
	if err != nil {
		return nil, nil, err
	}
	cFakeT2, err := edMul(cFake, t2[fake])
	if err != nil {
		return nil, nil, err
	}
	R2[fake] = sFakeH2.Add(cFakeT2.Negate())

	C[fake] = cFake
	S[fake] = sFake

	e := bitChallenge(ctx, idx, c1, c2, R1[0], R2[0], R1[1], R2[1])
	cReal := new(big.Int).Mod(new(big.Int).Sub(e, cFake), twoPowC)
	C[real] = cReal
	S[real] = new(big.Int).Add(k, new(big.Int).Mul(cReal, r))

	return &BitProof{
		C1:     c1,
		C2:     c2,
		R1Zero: R1[0],
		R2Zero: R2[0],
		R1One:  R1[1],
		R2One:  R2[1],
		C0:     C[0],
		S0:     S[0],
		S1:     S[1],
	}, r, nil
}

func verifyBit(ctx []byte, idx int, bp *BitProof) error {
	t1Zero := bp.C1
	t1One := bp.C1.Add(v1[idx].Negate())
	t2Zero := bp.C2
	t2One := bp.C2.Add(v2[idx].Negate())

	e := bitChallenge(ctx, idx, bp.C1, bp.C2, bp.R1Zero, bp.R2Zero, bp.R1One, bp.R2One)
	c1 := new(big.Int).Mod(new(big.Int).Sub(e, bp.C0), twoPowC)

	if err := checkBranch(bp.S0, bp.C0, bp.R1Zero, bp.R2Zero, t1Zero, t2Zero); err != nil {
		return err
	}
	if err := checkBranch(bp.S1, c1, bp.R1One, bp.R2One, t1One, t2One); err != nil {
		return err
	}
	return nil
}

// checkBranch verifies s*H1 =? R1 + c*T1 and s*H2 =? R2 + c*T2, the
// conjunctive Schnorr equation a CDS OR branch must satisfy, real or
// simulated, on both curves.
func checkBranch(s, c *big.Int, r1 *secp256k1.PublicKey, r2 *ed25519ext.Point, t1 *secp256k1.PublicKey, t2 *ed25519ext.Point) error {
	sH1, err := secpMul(s, h1)
	if err != nil {
		return swaperrors.InvalidDleq("invalid response scalar: %s", err)
	}
	cT1, err := secpMul(c, t1)
	if err != nil {
		return swaperrors.InvalidDleq("invalid challenge scalar: %s", err)
	}
	if !sH1.Equal(r1.Add(cT1)) {
		return swaperrors.InvalidDleq("secp256k1 branch mismatch")
	}

	sH2, err := edMul(s, h2)
	if err != nil {
		return swaperrors.InvalidDleq("invalid response scalar: %s", err)
	}
	cT2, err := edMul(c, t2)
	if err != nil {
		return swaperrors.InvalidDleq("invalid challenge scalar: %s", err)
	}
	if sH2.Bytes() != r2.Add(cT2).Bytes() {
		return swaperrors.InvalidDleq("ed25519 branch mismatch")
	}

	return nil
}

// bitChallenge derives bit idx's Fiat-Shamir challenge, binding the proof
// context (the two public points being proven equal) and every public
// value the bit proof commits to before the challenge is known.
func bitChallenge(ctx []byte, idx int, c1 *secp256k1.PublicKey, c2 *ed25519ext.Point, r1Zero *secp256k1.PublicKey, r2Zero *ed25519ext.Point, r1One *secp256k1.PublicKey, r2One *ed25519ext.Point) *big.Int {
	h := sha256.New()
	h.Write(ctx)
	h.Write([]byte{byte(idx >> 8), byte(idx)})
	h.Write(c1.Bytes())
	c2b := c2.Bytes()
	h.Write(c2b[:])
	h.Write(r1Zero.Bytes())
	r2Zerob := r2Zero.Bytes()
	h.Write(r2Zerob[:])
	h.Write(r1One.Bytes())
	r2Oneb := r2One.Bytes()
	h.Write(r2Oneb[:])

	e := new(big.Int).SetBytes(h.Sum(nil))
	return new(big.Int).Mod(e, twoPowC)
}

func proofContext(p1 *secp256k1.PublicKey, p2 *ed25519ext.Point) []byte {
	h := sha256.New()
	h.Write(p1.Bytes())
	p2b := p2.Bytes()
	h.Write(p2b[:])
	return h.Sum(nil)
}

func randBig(bits int) (*big.Int, error) {
	n, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), uint(bits)))
	if err != nil {
		return nil, swaperrors.Newf(swaperrors.KindProtocolViolation, "failed to read random bytes: %w", err)
	}
	return n, nil
}

func secpScalarFromBig(n *big.Int) (*secp256k1.Scalar, error) {
	reduced := new(big.Int).Mod(n, secpOrder)
	var b [secp256k1.ScalarSize]byte
	reduced.FillBytes(b[:])
	s, err := secp256k1.ScalarFromBytes(b)
	if err != nil {
		return nil, swaperrors.Newf(swaperrors.KindProtocolViolation, "degenerate secp256k1 scalar: %w", err)
	}
	return s, nil
}

func edScalarFromBig(n *big.Int) (*ed25519ext.Scalar, error) {
	reduced := new(big.Int).Mod(n, edOrder)
	var be [ed25519ext.ScalarSize]byte
	reduced.FillBytes(be[:])
	var le [ed25519ext.ScalarSize]byte
	for i, bb := range be {
		le[ed25519ext.ScalarSize-1-i] = bb
	}
	s, err := ed25519ext.ScalarFromCanonicalBytes(le)
	if err != nil {
		return nil, swaperrors.Newf(swaperrors.KindProtocolViolation, "degenerate ed25519 scalar: %w", err)
	}
	return s, nil
}

func secpPointFromBig(n *big.Int) (*secp256k1.PublicKey, error) {
	s, err := secpScalarFromBig(n)
	if err != nil {
		return nil, err
	}
	return s.Point(), nil
}

func secpMul(n *big.Int, p *secp256k1.PublicKey) (*secp256k1.PublicKey, error) {
	s, err := secpScalarFromBig(n)
	if err != nil {
		return nil, err
	}
	return s.MulPoint(p), nil
}

func edPointFromBig(n *big.Int) (*ed25519ext.Point, error) {
	s, err := edScalarFromBig(n)
	if err != nil {
		return nil, err
	}
	return s.Point(), nil
}

func edMul(n *big.Int, p *ed25519ext.Point) (*ed25519ext.Point, error) {
	s, err := edScalarFromBig(n)
	if err != nil {
		return nil, err
	}
	return s.MulPoint(p), nil
}

func secp256k1ScalarToEd25519(s *secp256k1.Scalar) *ed25519ext.Scalar {
	b := s.Bytes()
	return ed25519ext.ScalarFromSecp256k1Bytes(b)
}

// Wire sizes for Marshal/UnmarshalProof. sSize is sized well above the
// largest response this construction can produce (k, bounded by kBits,
// dominates s = k + c*r), leaving ample zero-padding headroom.
const (
	secpPointSize = 33
	edPointSize   = 32
	c0Size        = cBits / 8
	sSize         = 64
	rSize         = 32

	bitProofSize = secpPointSize*3 + edPointSize*3 + c0Size + sSize*2
	proofSize    = bitLength*bitProofSize + rSize
)

// Marshal encodes a Proof as a fixed-length byte string.
func (p *Proof) Marshal() []byte {
	out := make([]byte, 0, proofSize)
	for i := range p.Bits {
		out = p.Bits[i].marshal(out)
	}
	rb := make([]byte, rSize)
	p.R.FillBytes(rb)
	out = append(out, rb...)
	return out
}

func (bp *BitProof) marshal(out []byte) []byte {
	out = append(out, bp.C1.Bytes()...)
	c2b := bp.C2.Bytes()
	out = append(out, c2b[:]...)
	out = append(out, bp.R1Zero.Bytes()...)
	r2Zerob := bp.R2Zero.Bytes()
	out = append(out, r2Zerob[:]...)
	out = append(out, bp.R1One.Bytes()...)
	r2Oneb := bp.R2One.Bytes()
	out = append(out, r2Oneb[:]...)

	c0b := make([]byte, c0Size)
	bp.C0.FillBytes(c0b)
	out = append(out, c0b...)

	s0b := make([]byte, sSize)
	bp.S0.FillBytes(s0b)
	out = append(out, s0b...)

	s1b := make([]byte, sSize)
	bp.S1.FillBytes(s1b)
	out = append(out, s1b...)

	return out
}

// UnmarshalProof decodes a Proof from its Marshal encoding. It rejects any
// input of the wrong length or containing a point that isn't on its curve,
// but does not itself run Verify: callers must still call Verify against
// the two points the proof claims to bind.
func UnmarshalProof(b []byte) (*Proof, error) {
	if len(b) != proofSize {
		return nil, swaperrors.InvalidDleq("invalid proof length: got %d want %d", len(b), proofSize)
	}

	var proof Proof
	off := 0
	for i := 0; i < bitLength; i++ {
		bp, n, err := unmarshalBitProof(b[off:])
		if err != nil {
			return nil, err
		}
		proof.Bits[i] = *bp
		off += n
	}
	proof.R = new(big.Int).SetBytes(b[off : off+rSize])
	return &proof, nil
}

func unmarshalBitProof(b []byte) (*BitProof, int, error) {
	off := 0
	readSecp := func(label string) (*secp256k1.PublicKey, error) {
		p, err := secp256k1.PublicKeyFromBytes(b[off : off+secpPointSize])
		if err != nil {
			return nil, swaperrors.InvalidDleq("invalid %s: %s", label, err)
		}
		off += secpPointSize
		return p, nil
	}
	readEd := func(label string) (*ed25519ext.Point, error) {
		var arr [edPointSize]byte
		copy(arr[:], b[off:off+edPointSize])
		p, err := ed25519ext.PointFromBytes(arr)
		if err != nil {
			return nil, swaperrors.InvalidDleq("invalid %s: %s", label, err)
		}
		off += edPointSize
		return p, nil
	}

	c1, err := readSecp("commitment point")
	if err != nil {
		return nil, 0, err
	}
	c2, err := readEd("commitment point")
	if err != nil {
		return nil, 0, err
	}
	r1Zero, err := readSecp("nonce point")
	if err != nil {
		return nil, 0, err
	}
	r2Zero, err := readEd("nonce point")
	if err != nil {
		return nil, 0, err
	}
	r1One, err := readSecp("nonce point")
	if err != nil {
		return nil, 0, err
	}
	r2One, err := readEd("nonce point")
	if err != nil {
		return nil, 0, err
	}

	c0 := new(big.Int).SetBytes(b[off : off+c0Size])
	off += c0Size
	s0 := new(big.Int).SetBytes(b[off : off+sSize])
	off += sSize
	s1 := new(big.Int).SetBytes(b[off : off+sSize])
	off += sSize

	return &BitProof{
		C1:     c1,
		C2:     c2,
		R1Zero: r1Zero,
		R2Zero: r2Zero,
		R1One:  r1One,
		R2One:  r2One,
		C0:     c0,
		S0:     s0,
		S1:     s1,
	}, off, nil
}
