package chainoracle

import (
	"context"
	"encoding/hex"
	"sync"

	"github.com/gcash/bchd/chaincfg/chainhash"

	"github.com/Cyrix126/bch-xmr-swap/bchcovenant"
)

// Mock implements both BchOracle and XmrOracle over in-memory state, for
// tests that exercise the FSM's reactor without a live bchd/monero-wallet-
// rpc backend. Confirmations and balances are advanced explicitly by the
// test via AdvanceConfirmations/SetBalance rather than by mining.
type Mock struct {
	mu sync.Mutex

	submitted     map[string][]byte
	confirmations map[string]uint32
	utxosByAddr   map[string][]bchcovenant.UTXO
	balances      map[string][2]uint64 // address -> [unlocked, pending]
	healthy       bool

	watchersMu sync.Mutex
	watchers   map[string][]chan Event
}

// NewMock returns a healthy Mock with empty chain state.
func NewMock() *Mock {
	return &Mock{
		submitted:     make(map[string][]byte),
		confirmations: make(map[string]uint32),
		utxosByAddr:   make(map[string][]bchcovenant.UTXO),
		balances:      make(map[string][2]uint64),
		healthy:       true,
		watchers:      make(map[string][]chan Event),
	}
}

// Submit records raw under a deterministic txid and is idempotent: two
// submissions of byte-identical raw return the same txid, matching
// spec.md's "submit of an already-known tx returns the same txid" rule.
func (m *Mock) Submit(raw []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	txid := hex.EncodeToString(chainhash.HashB(raw))
	if _, ok := m.submitted[txid]; !ok {
		m.submitted[txid] = append([]byte(nil), raw...)
		m.confirmations[txid] = 0
	}

	return txid, nil
}

// Confirmations returns the confirmation depth previously set via
// AdvanceConfirmations, or ErrNotFound for an unknown txid.
func (m *Mock) Confirmations(txid string) (uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.confirmations[txid]
	if !ok {
		return 0, ErrNotFound
	}
	return n, nil
}

// AdvanceConfirmations sets txid's confirmation count and notifies any
// watchers subscribed to subject.
func (m *Mock) AdvanceConfirmations(subject, txid string, n uint32) {
	m.mu.Lock()
	m.confirmations[txid] = n
	m.mu.Unlock()

	m.notify(subject, Event{TxID: txid, Confirmations: n})
}

// Watch returns a channel fed by AdvanceConfirmations calls naming the
// same subject. The channel is buffered so a slow test consumer cannot
// deadlock AdvanceConfirmations.
func (m *Mock) Watch(ctx context.Context, subject string) (<-chan Event, error) {
	ch := make(chan Event, 16)

	m.watchersMu.Lock()
	m.watchers[subject] = append(m.watchers[subject], ch)
	m.watchersMu.Unlock()

	go func() {
		<-ctx.Done()
		m.watchersMu.Lock()
		defer m.watchersMu.Unlock()
		subs := m.watchers[subject]
		for i, c := range subs {
			if c == ch {
				m.watchers[subject] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		close(ch)
	}()

	return ch, nil
}

func (m *Mock) notify(subject string, ev Event) {
	m.watchersMu.Lock()
	defer m.watchersMu.Unlock()
	for _, ch := range m.watchers[subject] {
		select {
		case ch <- ev:
		default:
		}
	}
}

// SetUTXOs fixes the spendable set an address reports.
func (m *Mock) SetUTXOs(addr string, utxos []bchcovenant.UTXO) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.utxosByAddr[addr] = utxos
}

// UTXOs returns the spendable set previously fixed via SetUTXOs.
func (m *Mock) UTXOs(addr string) ([]bchcovenant.UTXO, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.utxosByAddr[addr], nil
}

// SetBalance fixes the unlocked/pending balance an address reports.
func (m *Mock) SetBalance(address string, unlocked, pending uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[address] = [2]uint64{unlocked, pending}
}

// Balance returns the balance previously fixed via SetBalance.
func (m *Mock) Balance(address string) (uint64, uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.balances[address]
	return b[0], b[1], nil
}

// SetHealthy toggles the value Health reports, for exercising the
// OracleUnavailable/Paused path.
func (m *Mock) SetHealthy(healthy bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.healthy = healthy
}

// Health reports swaperrors.OracleUnavailable when SetHealthy(false) was
// called, and nil otherwise.
func (m *Mock) Health() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.healthy {
		return errUnhealthy
	}
	return nil
}
