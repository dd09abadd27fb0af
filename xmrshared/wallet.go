package xmrshared

import (
	"fmt"

	"github.com/Cyrix126/bch-xmr-swap/crypto/ed25519ext"
	"github.com/Cyrix126/bch-xmr-swap/swaperrors"
)

// DefaultConfirmations is the default number of confirmations required
// before the shared address's incoming lock transaction is treated as
// final, matching the teacher's choice of a conservative default rather
// than acting on zero-conf.
const DefaultConfirmations = 10

// Network selects which Monero network a shared address is derived for.
type Network int

const (
	// Mainnet is the production Monero network.
	Mainnet Network = iota
	// Stagenet is Monero's public test network.
	Stagenet
)

// WalletOracle is the subset of monero-wallet-rpc operations the shared
// address flow needs: generating the watch-only wallet from the combined
// view key, checking its balance, and sweeping it once the combined
// spend key is known. It mirrors the teacher's monero.Client interface,
// narrowed to two-party-swap concerns.
type WalletOracle interface {
	GenerateViewOnlyWallet(spendPub *ed25519ext.Point, viewKey *ed25519ext.Scalar, filename, password string, network Network) error
	GenerateSpendWallet(spendKey, viewKey *ed25519ext.Scalar, filename, password string, network Network) error
	GetBalance(accountIdx uint) (total, unlocked uint64, err error)
	GetHeight() (uint64, error)
	SweepAll(to string, accountIdx uint) (txIDs []string, err error)
	Refresh() error
}

// Watcher observes the shared address for the incoming lock transaction
// using a view-only wallet; it never has spending authority.
type Watcher struct {
	oracle   WalletOracle
	shared   *SharedKeys
	filename string
}

// NewWatcher opens (generating if necessary) a view-only wallet against
// the shared address's combined view key.
func NewWatcher(oracle WalletOracle, shared *SharedKeys, filename, password string, network Network) (*Watcher, error) {
	if err := oracle.GenerateViewOnlyWallet(shared.SpendPoint, shared.ViewScalar, filename, password, network); err != nil {
		return nil, fmt.Errorf("failed to generate view-only wallet: %w", err)
	}

	return &Watcher{oracle: oracle, shared: shared, filename: filename}, nil
}

// Confirmed refreshes the wallet and reports whether the shared address's
// unlocked balance is at least minUnlocked piconero. It relies on
// monero-wallet-rpc's own unlock rule for confirmations; it does not
// consult DefaultConfirmations or look at the total balance.
func (w *Watcher) Confirmed(minUnlocked uint64) (bool, error) {
	if err := w.oracle.Refresh(); err != nil {
		return false, fmt.Errorf("failed to refresh wallet: %w", err)
	}

	_, unlocked, err := w.oracle.GetBalance(0)
	if err != nil {
		return false, fmt.Errorf("failed to fetch balance: %w", err)
	}

	return unlocked >= minUnlocked, nil
}

// Sweep reconstructs the full spend key from both linking-secret halves,
// opens a spending wallet against the shared address, and sweeps its
// entire balance to dest. Callers must only invoke this after
// FullSpendScalar succeeds, i.e. after the counterparty's linking secret
// has actually been recovered from a confirmed BCH transaction.
func Sweep(oracle WalletOracle, shared *SharedKeys, fullSpend *ed25519ext.Scalar, dest string, filename, password string, network Network) ([]string, error) {
	if fullSpend.Point().Bytes() != shared.SpendPoint.Bytes() {
		return nil, swaperrors.ProtocolViolation("reconstructed spend scalar does not match shared spend point")
	}

	if err := oracle.GenerateSpendWallet(fullSpend, shared.ViewScalar, filename, password, network); err != nil {
		return nil, fmt.Errorf("failed to generate spend wallet: %w", err)
	}

	txIDs, err := oracle.SweepAll(dest, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to sweep shared address: %w", err)
	}

	return txIDs, nil
}
