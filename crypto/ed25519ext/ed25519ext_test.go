package ed25519ext

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScalar_CanonicalRoundTrip(t *testing.T) {
	s, err := NewRandomScalar()
	require.NoError(t, err)

	b := s.Bytes()
	s2, err := ScalarFromCanonicalBytes(b)
	require.NoError(t, err)
	require.Equal(t, s.Bytes(), s2.Bytes())
}

func TestScalar_AddMatchesPointAddition(t *testing.T) {
	a, err := NewRandomScalar()
	require.NoError(t, err)
	b, err := NewRandomScalar()
	require.NoError(t, err)

	sum := a.Add(b)
	lhs := sum.Point()
	rhs := a.Point().Add(b.Point())
	require.Equal(t, lhs.Bytes(), rhs.Bytes())
}

func TestPoint_EncodeDecodeRoundTrip(t *testing.T) {
	s, err := NewRandomScalar()
	require.NoError(t, err)

	p := s.Point()
	decoded, err := PointFromBytes(p.Bytes())
	require.NoError(t, err)
	require.Equal(t, p.Bytes(), decoded.Bytes())
}

func TestScalarFromSecp256k1Bytes_Deterministic(t *testing.T) {
	var b [32]byte
	for i := range b {
		b[i] = byte(i)
	}

	s1 := ScalarFromSecp256k1Bytes(b)
	s2 := ScalarFromSecp256k1Bytes(b)
	require.Equal(t, s1.Bytes(), s2.Bytes())
}

func TestPoint_NegateCancelsUnderAdd(t *testing.T) {
	a, err := NewRandomScalar()
	require.NoError(t, err)
	b, err := NewRandomScalar()
	require.NoError(t, err)

	// p + (-p) is the identity regardless of which point p started from.
	identity1 := a.Point().Add(a.Point().Negate())
	identity2 := b.Point().Add(b.Point().Negate())
	require.Equal(t, identity1.Bytes(), identity2.Bytes())
}
