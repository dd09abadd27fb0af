package bchcovenant

import (
	"testing"

	"github.com/gcash/bchd/chaincfg/chainhash"
	"github.com/stretchr/testify/require"

	"github.com/Cyrix126/bch-xmr-swap/chainamounts"
)

func TestBuildForward_PayoutMinusFee(t *testing.T) {
	tx, err := BuildForward(chainhash.Hash{}, 0, 50000, []byte{0x76, 0xa9}, chainamounts.FeePerByte(1))
	require.NoError(t, err)
	require.Len(t, tx.TxOut, 1)
	require.Less(t, tx.TxOut[0].Value, int64(50000))
}

func TestBuildForward_InsufficientValue(t *testing.T) {
	_, err := BuildForward(chainhash.Hash{}, 0, 10, []byte{0x76, 0xa9}, chainamounts.FeePerByte(1000))
	require.Error(t, err)
}
