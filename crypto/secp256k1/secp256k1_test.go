package secp256k1

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScalar_PointRoundTrip(t *testing.T) {
	s, err := NewRandomScalar()
	require.NoError(t, err)

	b := s.Bytes()
	s2, err := ScalarFromBytes(b)
	require.NoError(t, err)
	require.True(t, s.Equal(s2))

	p, err := PublicKeyFromBytes(s.Point().Bytes())
	require.NoError(t, err)
	require.True(t, p.Equal(s.Point()))
}

func TestScalar_AddSubMulConsistency(t *testing.T) {
	a, err := NewRandomScalar()
	require.NoError(t, err)
	b, err := NewRandomScalar()
	require.NoError(t, err)

	sum := a.Add(b)
	back := sum.Sub(b)
	require.True(t, back.Equal(a))

	// (a+b)*G == a*G + b*G
	lhs := sum.Point()
	rhs := a.Point().Add(b.Point())
	require.True(t, lhs.Equal(rhs))
}

func TestPublicKey_NegateAddCancels(t *testing.T) {
	s, err := NewRandomScalar()
	require.NoError(t, err)

	p := s.Point()
	neg := p.Negate()
	sum := p.Add(neg)

	zero, err := NewRandomScalar()
	require.NoError(t, err)
	zeroScalar := zero.Sub(zero)
	require.True(t, sum.Equal(zeroScalar.Point()))
}

func TestMulPoint_MatchesScalarMulThenPoint(t *testing.T) {
	a, err := NewRandomScalar()
	require.NoError(t, err)
	b, err := NewRandomScalar()
	require.NoError(t, err)

	lhs := a.MulPoint(b.Point())
	rhs := a.Mul(b).Point()
	require.True(t, lhs.Equal(rhs))
}
