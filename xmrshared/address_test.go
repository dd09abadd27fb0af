package xmrshared

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSharedAddress_DeterministicAndNetworkSensitive(t *testing.T) {
	spendScalar, err := randomScalar(devRand{})
	require.NoError(t, err)
	viewScalar, err := randomScalar(devRand{})
	require.NoError(t, err)

	addr1, err := sharedAddress(spendScalar.Point(), viewScalar, Mainnet)
	require.NoError(t, err)
	addr2, err := sharedAddress(spendScalar.Point(), viewScalar, Mainnet)
	require.NoError(t, err)
	require.Equal(t, addr1, addr2)

	stagenetAddr, err := sharedAddress(spendScalar.Point(), viewScalar, Stagenet)
	require.NoError(t, err)
	require.NotEqual(t, addr1, stagenetAddr)

	// Monero standard addresses are 95 base58 characters.
	require.Len(t, addr1, 95)
}

type devRand struct{}

func (devRand) Read(b []byte) (int, error) {
	for i := range b {
		b[i] = byte(i * 7)
	}
	return len(b), nil
}
