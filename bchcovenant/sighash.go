package bchcovenant

import (
	"fmt"

	"github.com/gcash/bchd/chaincfg/chainhash"
	"github.com/gcash/bchd/txscript"
	"github.com/gcash/bchd/wire"
)

// SigHashAllForkID is BCH's replay-protected SIGHASH_ALL flag, used for
// every signature this package produces; BCH has no segwit, so the
// FORKID-amount binding is what substitutes for witness malleability
// protection here.
const SigHashAllForkID = txscript.SigHashAll | txscript.SigHashForkID

// SigHash computes the BCH (BIP143-style, FORKID) signature hash for
// input idx of tx spending an output locked by prevScript worth amount
// satoshis.
func SigHash(tx *wire.MsgTx, idx int, prevScript []byte, amount int64) ([32]byte, error) {
	hashes := txscript.NewTxSigHashes(tx)

	h, err := txscript.CalcSignatureHash(prevScript, hashes, SigHashAllForkID, tx, idx, amount, true)
	if err != nil {
		return [32]byte{}, fmt.Errorf("failed to compute sighash: %w", err)
	}

	var out [32]byte
	copy(out[:], h)
	return out, nil
}

// TxID returns the double-SHA256 txid of a fully-built transaction, the
// identifier used throughout the journal and wire messages.
func TxID(tx *wire.MsgTx) chainhash.Hash {
	return tx.TxHash()
}
