package bchcovenant

import (
	"fmt"

	"github.com/gcash/bchd/chaincfg/chainhash"
	"github.com/gcash/bchd/wire"

	"github.com/Cyrix126/bch-xmr-swap/chainamounts"
)

// BuildForward builds an ordinary P2PKH sweep spending a terminal branch
// output (Claim, AliceRecover, or BobSeize) onward to payTo, the final
// hop that actually delivers spendable coins to a wallet address rather
// than leaving them in a covenant output.
func BuildForward(sourceTxID chainhash.Hash, sourceOut uint32, sourceValue chainamounts.Satoshis, payTo []byte, fee chainamounts.FeePerByte) (*wire.MsgTx, error) {
	tx := wire.NewMsgTx(wire.TxVersion)
	tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&sourceTxID, sourceOut), nil, nil))

	vsize := estimateVsize(1, 1)
	payout := sourceValue - fee.Fee(vsize)
	if payout < 0 {
		return nil, fmt.Errorf("source value insufficient to cover fee")
	}
	tx.AddTxOut(wire.NewTxOut(int64(payout), payTo))

	return tx, nil
}
