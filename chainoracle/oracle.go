// Package chainoracle abstracts read/watch/submit access to the BCH and
// XMR chains behind one capability-set interface per chain, generalizing
// the teacher's monero.Client RPC interface (monero/client.go) to both
// chains and to the submit/watch semantics spec'd for this protocol. The
// FSM never talks to bchd/monero-wallet-rpc directly; it only ever sees
// BchOracle/XmrOracle, so a Mock can stand in for both during tests.
package chainoracle

import (
	"context"
	"fmt"

	"github.com/Cyrix126/bch-xmr-swap/bchcovenant"
)

// Event is one observation delivered on a Watch stream.
type Event struct {
	TxID          string
	Confirmations uint32
}

// ErrNotFound is returned by Confirmations when txid is unknown to the
// oracle, distinct from a zero-confirmation mempool hit.
var ErrNotFound = fmt.Errorf("chainoracle: transaction not found")

// BchOracle is the capability set the FSM needs from a Bitcoin Cash
// backend: submit raw transactions, check confirmation depth, watch an
// address or script for new activity, and list spendable inputs.
type BchOracle interface {
	Submit(raw []byte) (txid string, err error)
	Confirmations(txid string) (uint32, error)
	Watch(ctx context.Context, scriptHex string) (<-chan Event, error)
	UTXOs(addr string) ([]bchcovenant.UTXO, error)
	Health() error
}

// XmrOracle is the capability set the FSM needs from a Monero backend:
// the same submit/confirmations/watch shape, plus a balance query against
// the shared address's view key, matching the teacher's
// monero.Client.GetBalance usage generalized to a watch-only caller that
// never holds spend authority.
type XmrOracle interface {
	Submit(raw []byte) (txid string, err error)
	Confirmations(txid string) (uint32, error)
	Watch(ctx context.Context, address string) (<-chan Event, error)
	Balance(address string) (unlocked, pending uint64, err error)
	Health() error
}

// Interface bundles both chains' oracles, the "capability set" the design
// notes call for implementing via polymorphism over {BchRpc, XmrRpc, Mock}
// variants with identical operation signatures.
type Interface struct {
	Bch BchOracle
	Xmr XmrOracle
}
