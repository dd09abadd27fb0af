package csprng

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSource_DeterministicForSameSeedAndTrade(t *testing.T) {
	seed, err := NewSeed()
	require.NoError(t, err)

	s1, err := NewSource(seed, "trade-1")
	require.NoError(t, err)
	s2, err := NewSource(seed, "trade-1")
	require.NoError(t, err)

	b1 := make([]byte, 64)
	b2 := make([]byte, 64)
	_, err = s1.Read(b1)
	require.NoError(t, err)
	_, err = s2.Read(b2)
	require.NoError(t, err)
	require.Equal(t, b1, b2)
}

func TestSource_DiffersByTradeID(t *testing.T) {
	seed, err := NewSeed()
	require.NoError(t, err)

	s1, err := NewSource(seed, "trade-1")
	require.NoError(t, err)
	s2, err := NewSource(seed, "trade-2")
	require.NoError(t, err)

	b1 := make([]byte, 32)
	b2 := make([]byte, 32)
	_, err = s1.Read(b1)
	require.NoError(t, err)
	_, err = s2.Read(b2)
	require.NoError(t, err)
	require.NotEqual(t, b1, b2)
}

func TestSource_DiffersBySeed(t *testing.T) {
	seed1, err := NewSeed()
	require.NoError(t, err)
	seed2, err := NewSeed()
	require.NoError(t, err)
	require.NotEqual(t, seed1, seed2, "two independent seeds should not collide")

	s1, err := NewSource(seed1, "trade-1")
	require.NoError(t, err)
	s2, err := NewSource(seed2, "trade-1")
	require.NoError(t, err)

	b1 := make([]byte, 32)
	b2 := make([]byte, 32)
	_, err = s1.Read(b1)
	require.NoError(t, err)
	_, err = s2.Read(b2)
	require.NoError(t, err)
	require.NotEqual(t, b1, b2)
}

func TestSource_ReadFillsRequestedLength(t *testing.T) {
	seed, err := NewSeed()
	require.NoError(t, err)
	s, err := NewSource(seed, "trade-1")
	require.NoError(t, err)

	b := make([]byte, 17)
	n, err := s.Read(b)
	require.NoError(t, err)
	require.Equal(t, 17, n)
}
