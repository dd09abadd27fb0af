package bchcovenant

import (
	"testing"

	"github.com/gcash/bchd/chaincfg/chainhash"
	"github.com/stretchr/testify/require"

	"github.com/Cyrix126/bch-xmr-swap/chainamounts"
	"github.com/Cyrix126/bch-xmr-swap/crypto/secp256k1"
)

func newTestKey(t *testing.T) *secp256k1.PublicKey {
	sk, err := secp256k1.NewRandomScalar()
	require.NoError(t, err)
	return sk.Point()
}

func TestNewSwaplockScript_Deterministic(t *testing.T) {
	claim := ClaimBranchKeys{BobClaimPub: newTestKey(t)}
	refund := RefundBranchKeys{AliceRefundPub: newTestKey(t)}

	s1, err := NewSwaplockScript(claim, refund, 144)
	require.NoError(t, err)
	s2, err := NewSwaplockScript(claim, refund, 144)
	require.NoError(t, err)

	require.Equal(t, s1, s2)
	require.NoError(t, CheckTemplate(s1, Regtest))
}

func TestNewSwaplockScript_DifferentKeysDifferentScript(t *testing.T) {
	claim := ClaimBranchKeys{BobClaimPub: newTestKey(t)}
	refund := RefundBranchKeys{AliceRefundPub: newTestKey(t)}

	s1, err := NewSwaplockScript(claim, refund, 144)
	require.NoError(t, err)

	claim2 := ClaimBranchKeys{BobClaimPub: newTestKey(t)}
	s2, err := NewSwaplockScript(claim2, refund, 144)
	require.NoError(t, err)

	require.NotEqual(t, s1, s2)
}

func TestBuildSwaplock_InsufficientFunds(t *testing.T) {
	claim := ClaimBranchKeys{BobClaimPub: newTestKey(t)}
	refund := RefundBranchKeys{AliceRefundPub: newTestKey(t)}

	inputs := []UTXO{{TxID: chainhash.Hash{}, Index: 0, Value: 1000}}
	_, _, err := BuildSwaplock(inputs, 100000, chainamounts.FeePerByte(1), nil, SwaplockParams{
		Claim: claim, Refund: refund, T1: 144, Network: Regtest,
	})
	require.Error(t, err)
}

func TestBuildSwaplock_ChangeOutput(t *testing.T) {
	claim := ClaimBranchKeys{BobClaimPub: newTestKey(t)}
	refund := RefundBranchKeys{AliceRefundPub: newTestKey(t)}

	inputs := []UTXO{{TxID: chainhash.Hash{}, Index: 0, Value: 200000}}
	tx, lockScript, err := BuildSwaplock(inputs, 100000, chainamounts.FeePerByte(1), []byte{0x76, 0xa9}, SwaplockParams{
		Claim: claim, Refund: refund, T1: 144, Network: Regtest,
	})
	require.NoError(t, err)
	require.NotEmpty(t, lockScript)
	require.Len(t, tx.TxOut, 2)
	require.Equal(t, int64(100000), tx.TxOut[0].Value)
}
