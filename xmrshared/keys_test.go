package xmrshared

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Cyrix126/bch-xmr-swap/crypto/csprng"
)

func newTestShare(t *testing.T, tradeID string) *KeyShare {
	seed, err := csprng.NewSeed()
	require.NoError(t, err)

	src, err := csprng.NewSource(seed, tradeID)
	require.NoError(t, err)

	share, err := NewKeyShare(src)
	require.NoError(t, err)
	return share
}

func TestCombine_SpendPointIsSum(t *testing.T) {
	alice := newTestShare(t, "trade-1-alice")
	bob := newTestShare(t, "trade-1-bob")

	shared := Combine(alice, bob)
	expected := alice.SpendPoint.Add(bob.SpendPoint)

	require.Equal(t, expected.Bytes(), shared.SpendPoint.Bytes())
}

func TestFullSpendScalar_MatchesCombinedPoint(t *testing.T) {
	alice := newTestShare(t, "trade-2-alice")
	bob := newTestShare(t, "trade-2-bob")

	shared := Combine(alice, bob)
	full := FullSpendScalar(alice.SpendScalar, bob.SpendScalar)

	require.Equal(t, shared.SpendPoint.Bytes(), full.Point().Bytes())
}

func TestFullSpendScalar_WrongHalfDoesNotMatch(t *testing.T) {
	alice := newTestShare(t, "trade-3-alice")
	bob := newTestShare(t, "trade-3-bob")
	mallory := newTestShare(t, "trade-3-mallory")

	shared := Combine(alice, bob)
	wrong := FullSpendScalar(alice.SpendScalar, mallory.SpendScalar)

	require.NotEqual(t, shared.SpendPoint.Bytes(), wrong.Point().Bytes())
}
