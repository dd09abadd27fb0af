package bchcovenant

import (
	"testing"

	"github.com/gcash/bchd/chaincfg/chainhash"
	"github.com/stretchr/testify/require"

	"github.com/Cyrix126/bch-xmr-swap/chainamounts"
	"github.com/Cyrix126/bch-xmr-swap/crypto/secp256k1"
	"github.com/Cyrix126/bch-xmr-swap/crypto/ves"
)

func testSignature(t *testing.T) *ves.Signature {
	sk, err := secp256k1.NewRandomScalar()
	require.NoError(t, err)
	tscalar, err := secp256k1.NewRandomScalar()
	require.NoError(t, err)

	var msg [32]byte
	presig, err := ves.EncryptSign(sk, msg, tscalar.Point())
	require.NoError(t, err)
	return ves.DecryptSig(presig, tscalar)
}

func TestBuildRefundTrigger_AndAttachWitness(t *testing.T) {
	refundKeys := RefundOutputKeys{
		AliceRecoverPub: newTestKey(t),
		BobSeizePub:     newTestKey(t),
	}

	tx, refundScript, err := BuildRefundTrigger(chainhash.Hash{}, 0, 100000, refundKeys, 144, Regtest, chainamounts.FeePerByte(1))
	require.NoError(t, err)
	require.NotEmpty(t, refundScript)
	require.Len(t, tx.TxIn, 1)
	require.Len(t, tx.TxOut, 1)

	sig := testSignature(t)
	swaplockScript, err := NewSwaplockScript(ClaimBranchKeys{BobClaimPub: newTestKey(t)}, RefundBranchKeys{AliceRefundPub: newTestKey(t)}, 144)
	require.NoError(t, err)
	require.NoError(t, AttachRefundTriggerWitness(tx, sig, swaplockScript))
	require.NotEmpty(t, tx.TxIn[0].SignatureScript)
}

func TestBuildRefundTrigger_InsufficientValue(t *testing.T) {
	refundKeys := RefundOutputKeys{
		AliceRecoverPub: newTestKey(t),
		BobSeizePub:     newTestKey(t),
	}

	_, _, err := BuildRefundTrigger(chainhash.Hash{}, 0, 10, refundKeys, 144, Regtest, chainamounts.FeePerByte(1000))
	require.Error(t, err)
}

func TestBuildAliceRecover_AndAttachWitness(t *testing.T) {
	tx, err := BuildAliceRecover(chainhash.Hash{}, 0, 50000, []byte{0x76, 0xa9}, chainamounts.FeePerByte(1))
	require.NoError(t, err)

	refundScript, err := NewRefundScript(RefundOutputKeys{AliceRecoverPub: newTestKey(t), BobSeizePub: newTestKey(t)}, 144)
	require.NoError(t, err)

	sig := testSignature(t)
	require.NoError(t, AttachAliceRecoverWitness(tx, sig, refundScript))
	require.NotEmpty(t, tx.TxIn[0].SignatureScript)
}

func TestBuildBobSeize_AndAttachWitness(t *testing.T) {
	tx, err := BuildBobSeize(chainhash.Hash{}, 0, 50000, 144, []byte{0x76, 0xa9}, chainamounts.FeePerByte(1))
	require.NoError(t, err)
	require.Equal(t, lockTimeToSequence(144), tx.TxIn[0].Sequence)

	refundScript, err := NewRefundScript(RefundOutputKeys{AliceRecoverPub: newTestKey(t), BobSeizePub: newTestKey(t)}, 144)
	require.NoError(t, err)

	sig := testSignature(t)
	require.NoError(t, AttachBobSeizeWitness(tx, sig, refundScript))
	require.NotEmpty(t, tx.TxIn[0].SignatureScript)
}

func TestBuildClaim_AndAttachWitness(t *testing.T) {
	lockScript, err := NewSwaplockScript(ClaimBranchKeys{BobClaimPub: newTestKey(t)}, RefundBranchKeys{AliceRefundPub: newTestKey(t)}, 144)
	require.NoError(t, err)

	tx, err := BuildClaim(chainhash.Hash{}, 0, 50000, lockScript, []byte{0x76, 0xa9}, chainamounts.FeePerByte(1))
	require.NoError(t, err)

	sig := testSignature(t)
	require.NoError(t, AttachClaimWitness(tx, sig, lockScript))
	require.NotEmpty(t, tx.TxIn[0].SignatureScript)
}
