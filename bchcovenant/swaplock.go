package bchcovenant

import (
	"fmt"

	"github.com/gcash/bchd/chaincfg/chainhash"
	"github.com/gcash/bchd/txscript"
	"github.com/gcash/bchd/wire"

	"github.com/Cyrix126/bch-xmr-swap/chainamounts"
)

// UTXO is a spendable output the funding transaction consumes.
type UTXO struct {
	TxID  chainhash.Hash
	Index uint32
	Value chainamounts.Satoshis
}

// SwaplockParams carries everything needed to build the Swaplock output.
type SwaplockParams struct {
	Claim   ClaimBranchKeys
	Refund  RefundBranchKeys
	T1      int64
	Network Network
}

// BuildSwaplock constructs the funding transaction that locks amount
// satoshis (plus a change output back to changeScript, if any change
// remains) into a Swaplock output spending the given inputs. It is pure
// and deterministic: given the same inputs and params, both parties
// derive byte-identical bytes, letting either independently verify the
// other's construction before signing.
func BuildSwaplock(inputs []UTXO, amount chainamounts.Satoshis, fee chainamounts.FeePerByte, changeScript []byte, params SwaplockParams) (*wire.MsgTx, []byte, error) {
	lockScript, err := NewSwaplockScript(params.Claim, params.Refund, params.T1)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build swaplock script: %w", err)
	}

	if err := CheckTemplate(lockScript, params.Network); err != nil {
		return nil, nil, err
	}

	p2sh, err := txscript.NewScriptBuilder().
		AddOp(txscript.OP_HASH160).
		AddData(hash160(lockScript)).
		AddOp(txscript.OP_EQUAL).
		Script()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build swaplock p2sh script: %w", err)
	}

	tx := wire.NewMsgTx(wire.TxVersion)

	var totalIn chainamounts.Satoshis
	for _, u := range inputs {
		tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&u.TxID, u.Index), nil, nil))
		totalIn += u.Value
	}

	tx.AddTxOut(wire.NewTxOut(int64(amount), p2sh))

	vsize := estimateVsize(len(inputs), 2)
	change := totalIn - amount - fee.Fee(vsize)
	if change < 0 {
		return nil, nil, fmt.Errorf("inputs insufficient to cover amount and fee")
	}
	if change > 0 {
		tx.AddTxOut(wire.NewTxOut(int64(change), changeScript))
	}

	return tx, lockScript, nil
}

// estimateVsize gives a conservative fixed-weight estimate for a
// P2SH-input, P2SH-output BCH transaction; BCH has no segwit discount so
// this is a simple linear byte count, not a weight unit.
func estimateVsize(numInputs, numOutputs int) int64 {
	const baseOverhead = 10
	const perInput = 150
	const perOutput = 34
	return int64(baseOverhead + numInputs*perInput + numOutputs*perOutput)
}
