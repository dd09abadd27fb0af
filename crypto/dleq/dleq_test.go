package dleq

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Cyrix126/bch-xmr-swap/crypto/ed25519ext"
	"github.com/Cyrix126/bch-xmr-swap/crypto/secp256k1"
)

func newTestKeypair(t *testing.T) (*secp256k1.Scalar, *secp256k1.PublicKey, *ed25519ext.Point) {
	x, err := secp256k1.NewRandomScalar()
	require.NoError(t, err)

	p1 := x.Point()

	xb := x.Bytes()
	p2 := ed25519ext.ScalarFromSecp256k1Bytes(xb).Point()

	return x, p1, p2
}

func TestProveVerify(t *testing.T) {
	x, p1, p2 := newTestKeypair(t)

	proof, err := Prove(x)
	require.NoError(t, err)

	require.NoError(t, Verify(p1, p2, proof))
}

func TestVerify_WrongPoint(t *testing.T) {
	x, _, p2 := newTestKeypair(t)
	_, otherP1, _ := newTestKeypair(t)

	proof, err := Prove(x)
	require.NoError(t, err)

	require.Error(t, Verify(otherP1, p2, proof))
}

func TestVerify_WrongSecondPoint(t *testing.T) {
	x, p1, _ := newTestKeypair(t)
	_, _, otherP2 := newTestKeypair(t)

	proof, err := Prove(x)
	require.NoError(t, err)

	require.Error(t, Verify(p1, otherP2, proof))
}

// TestVerify_BitSwap exercises that swapping the bit proofs at index 0 and
// 1 within one otherwise-valid proof does not verify: each bit proof's
// challenge is bound to its own index.
func TestVerify_BitSwap(t *testing.T) {
	x, p1, p2 := newTestKeypair(t)

	proof, err := Prove(x)
	require.NoError(t, err)

	proof.Bits[0], proof.Bits[1] = proof.Bits[1], proof.Bits[0]

	require.Error(t, Verify(p1, p2, proof))
}

// TestVerify_TamperedResponse mutates a single bit proof's response and
// expects verification to fail.
func TestVerify_TamperedResponse(t *testing.T) {
	x, p1, p2 := newTestKeypair(t)

	proof, err := Prove(x)
	require.NoError(t, err)

	proof.Bits[5].S0.Add(proof.Bits[5].S0, proof.Bits[5].S0)

	require.Error(t, Verify(p1, p2, proof))
}

// TestVerify_TamperedBlindingOpening mutates the proof's aggregate opening
// and expects verification to fail even though every individual bit proof
// is untouched.
func TestVerify_TamperedBlindingOpening(t *testing.T) {
	x, p1, p2 := newTestKeypair(t)

	proof, err := Prove(x)
	require.NoError(t, err)

	proof.R.Add(proof.R, proof.R)

	require.Error(t, Verify(p1, p2, proof))
}

func TestMarshalUnmarshal_RoundTrip(t *testing.T) {
	x, p1, p2 := newTestKeypair(t)

	proof, err := Prove(x)
	require.NoError(t, err)

	encoded := proof.Marshal()
	require.Len(t, encoded, proofSize)

	decoded, err := UnmarshalProof(encoded)
	require.NoError(t, err)
	require.NoError(t, Verify(p1, p2, decoded))
}

func TestUnmarshalProof_WrongLength(t *testing.T) {
	_, err := UnmarshalProof(make([]byte, 10))
	require.Error(t, err)
}
