package bchcovenant

import (
	"fmt"

	"github.com/gcash/bchd/chaincfg/chainhash"
	"github.com/gcash/bchd/txscript"
	"github.com/gcash/bchd/wire"

	"github.com/Cyrix126/bch-xmr-swap/chainamounts"
	"github.com/Cyrix126/bch-xmr-swap/crypto/ves"
)

// claimBranchWitness builds the scriptSig that spends a P2SH-covenant
// output's claim (OP_IF) branch: a complete Schnorr signature, the OP_IF
// true flag, and the serialized redeem script itself, which P2SH requires
// as the final scriptSig data push so the verifier can hash it against the
// output's scriptPubKey and then execute it against the preceding pushes.
func claimBranchWitness(sig *ves.Signature, redeemScript []byte) ([]byte, error) {
	return txscript.NewScriptBuilder().
		AddData(encodeSchnorrSig(sig)).
		AddInt64(1). // select the OP_IF branch
		AddData(redeemScript).
		Script()
}

// refundBranchWitness builds the scriptSig that spends a P2SH-covenant
// output's refund (OP_ELSE) branch after its relative timelock: a complete
// signature, the OP_ELSE path flag, and the redeem script as the final
// P2SH data push.
func refundBranchWitness(sig *ves.Signature, redeemScript []byte) ([]byte, error) {
	return txscript.NewScriptBuilder().
		AddData(encodeSchnorrSig(sig)).
		AddInt64(0). // select the OP_ELSE branch
		AddData(redeemScript).
		Script()
}

// encodeSchnorrSig serializes a completed VES signature as a 64-byte
// Schnorr signature with the SIGHASH_ALL|FORKID byte appended, the
// encoding OP_CHECKSIG expects for Schnorr-mode verification.
func encodeSchnorrSig(sig *ves.Signature) []byte {
	rb := sig.R.Bytes()
	sb := sig.S.Bytes()

	out := make([]byte, 0, 65)
	// Only the X coordinate participates in BIP340-style Schnorr
	// verification; compressed encoding's prefix byte is dropped.
	out = append(out, rb[1:]...)
	out = append(out, sb[:]...)
	out = append(out, byte(SigHashAllForkID))
	return out
}

// BuildClaim builds the transaction that spends Swaplock's claim branch,
// paying payTo. Completing and broadcasting this transaction is the act
// that reveals b_spend: anyone watching chain can run
// ves.RecoverSecret against the presignature Bob sent in the handshake.
func BuildClaim(swaplockTxID chainhash.Hash, swaplockOut uint32, swaplockValue chainamounts.Satoshis, lockScript []byte, payTo []byte, fee chainamounts.FeePerByte) (*wire.MsgTx, error) {
	tx := wire.NewMsgTx(wire.TxVersion)
	tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&swaplockTxID, swaplockOut), nil, nil))

	vsize := estimateVsize(1, 1)
	payout := swaplockValue - fee.Fee(vsize)
	if payout < 0 {
		return nil, fmt.Errorf("swaplock value insufficient to cover fee")
	}
	tx.AddTxOut(wire.NewTxOut(int64(payout), payTo))

	return tx, nil
}

// AttachClaimWitness finalizes tx's scriptSig for the claim branch once a
// completed signature is available. redeemScript is the Swaplock script
// NewSwaplockScript produced for this trade; it must be pushed verbatim or
// the P2SH output can never be resolved back to a script to execute.
func AttachClaimWitness(tx *wire.MsgTx, sig *ves.Signature, redeemScript []byte) error {
	sigScript, err := claimBranchWitness(sig, redeemScript)
	if err != nil {
		return fmt.Errorf("failed to build claim witness: %w", err)
	}
	tx.TxIn[0].SignatureScript = sigScript
	return nil
}

// BuildRefundTrigger builds the transaction that spends Swaplock's refund
// branch (after t1) and moves the funds into a Refund covenant output.
// Either party may broadcast it: Alice in the ordinary case, or Bob
// unilaterally using the completed signature Alice handed over during
// the handshake if Alice never reappears (see DESIGN.md).
func BuildRefundTrigger(swaplockTxID chainhash.Hash, swaplockOut uint32, swaplockValue chainamounts.Satoshis, refundKeys RefundOutputKeys, t2 int64, network Network, fee chainamounts.FeePerByte) (*wire.MsgTx, []byte, error) {
	refundScript, err := NewRefundScript(refundKeys, t2)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build refund script: %w", err)
	}

	p2sh, err := txscript.NewScriptBuilder().
		AddOp(txscript.OP_HASH160).
		AddData(hash160(refundScript)).
		AddOp(txscript.OP_EQUAL).
		Script()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build refund p2sh script: %w", err)
	}

	tx := wire.NewMsgTx(wire.TxVersion)
	in := wire.NewTxIn(wire.NewOutPoint(&swaplockTxID, swaplockOut), nil, nil)
	in.Sequence = lockTimeToSequence(t2)
	tx.AddTxIn(in)

	vsize := estimateVsize(1, 1)
	value := swaplockValue - fee.Fee(vsize)
	if value < 0 {
		return nil, nil, fmt.Errorf("swaplock value insufficient to cover fee")
	}
	tx.AddTxOut(wire.NewTxOut(int64(value), p2sh))

	return tx, refundScript, nil
}

// AttachRefundTriggerWitness finalizes the refund-trigger transaction's
// scriptSig given a completed signature under AliceRefundPub. redeemScript
// is the Swaplock script this transaction's input spends (the one
// NewSwaplockScript produced when Swaplock was funded), required as the
// final P2SH data push.
func AttachRefundTriggerWitness(tx *wire.MsgTx, sig *ves.Signature, redeemScript []byte) error {
	sigScript, err := refundBranchWitness(sig, redeemScript)
	if err != nil {
		return fmt.Errorf("failed to build refund-trigger witness: %w", err)
	}
	tx.TxIn[0].SignatureScript = sigScript
	return nil
}

// BuildAliceRecover builds the transaction spending the Refund output's
// pre-t2 AliceRecover branch, signed normally (no adaptor machinery).
func BuildAliceRecover(refundTxID chainhash.Hash, refundOut uint32, refundValue chainamounts.Satoshis, payTo []byte, fee chainamounts.FeePerByte) (*wire.MsgTx, error) {
	tx := wire.NewMsgTx(wire.TxVersion)
	tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&refundTxID, refundOut), nil, nil))

	vsize := estimateVsize(1, 1)
	payout := refundValue - fee.Fee(vsize)
	if payout < 0 {
		return nil, fmt.Errorf("refund value insufficient to cover fee")
	}
	tx.AddTxOut(wire.NewTxOut(int64(payout), payTo))

	return tx, nil
}

// AttachAliceRecoverWitness finalizes the AliceRecover scriptSig.
// redeemScript is the Refund script this transaction's input spends (the
// one NewRefundScript produced when the refund-trigger transaction was
// built).
func AttachAliceRecoverWitness(tx *wire.MsgTx, sig *ves.Signature, redeemScript []byte) error {
	sigScript, err := claimBranchWitness(sig, redeemScript) // reuses the IF-branch flag shape
	if err != nil {
		return fmt.Errorf("failed to build alice-recover witness: %w", err)
	}
	tx.TxIn[0].SignatureScript = sigScript
	return nil
}

// BuildBobSeize builds the transaction spending the Refund output's
// post-t2 BobSeize branch, Bob's unilateral compensation path. Its
// signature is an ordinary one under BobSeizePub; a_spend was already
// recoverable one hop earlier, at the refund-trigger transaction.
func BuildBobSeize(refundTxID chainhash.Hash, refundOut uint32, refundValue chainamounts.Satoshis, t2 int64, payTo []byte, fee chainamounts.FeePerByte) (*wire.MsgTx, error) {
	tx := wire.NewMsgTx(wire.TxVersion)
	in := wire.NewTxIn(wire.NewOutPoint(&refundTxID, refundOut), nil, nil)
	in.Sequence = lockTimeToSequence(t2)
	tx.AddTxIn(in)

	vsize := estimateVsize(1, 1)
	payout := refundValue - fee.Fee(vsize)
	if payout < 0 {
		return nil, fmt.Errorf("refund value insufficient to cover fee")
	}
	tx.AddTxOut(wire.NewTxOut(int64(payout), payTo))

	return tx, nil
}

// AttachBobSeizeWitness finalizes the BobSeize scriptSig. redeemScript is
// the Refund script this transaction's input spends.
func AttachBobSeizeWitness(tx *wire.MsgTx, sig *ves.Signature, redeemScript []byte) error {
	sigScript, err := refundBranchWitness(sig, redeemScript) // reuses the ELSE-branch flag shape
	if err != nil {
		return fmt.Errorf("failed to build bob-seize witness: %w", err)
	}
	tx.TxIn[0].SignatureScript = sigScript
	return nil
}

// lockTimeToSequence converts a relative block count into the nSequence
// value BCH's OP_CHECKSEQUENCEVERIFY expects, grounded on the teacher's
// lnwallet helper of the same purpose for OP_CHECKSEQUENCEVERIFY witness
// scripts.
func lockTimeToSequence(blocks int64) uint32 {
	return uint32(blocks) & wire.SequenceLockTimeMask
}
