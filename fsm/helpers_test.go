package fsm

import (
	"testing"

	"github.com/gcash/bchd/chaincfg/chainhash"
	"github.com/stretchr/testify/require"

	"github.com/Cyrix126/bch-xmr-swap/bchcovenant"
	"github.com/Cyrix126/bch-xmr-swap/chainamounts"
	"github.com/Cyrix126/bch-xmr-swap/chainoracle"
	"github.com/Cyrix126/bch-xmr-swap/crypto/ed25519ext"
	"github.com/Cyrix126/bch-xmr-swap/crypto/secp256k1"
	"github.com/Cyrix126/bch-xmr-swap/crypto/ves"
	"github.com/Cyrix126/bch-xmr-swap/journal"
	"github.com/Cyrix126/bch-xmr-swap/trade"
)

func newTestKeyMaterial(t *testing.T) *trade.KeyMaterial {
	t.Helper()

	spendSecp, err := secp256k1.NewRandomScalar()
	require.NoError(t, err)
	spendEd := ed25519ext.ScalarFromSecp256k1Bytes(spendSecp.Bytes())
	viewShare, err := ed25519ext.NewRandomScalar()
	require.NoError(t, err)
	refundKey, err := secp256k1.NewRandomScalar()
	require.NoError(t, err)
	claimKey, err := secp256k1.NewRandomScalar()
	require.NoError(t, err)

	return &trade.KeyMaterial{
		SpendSecp: spendSecp,
		SpendEd:   spendEd,
		ViewShare: viewShare,
		RefundKey: refundKey,
		ClaimKey:  claimKey,
	}
}

func newTestTrade(t *testing.T, role trade.Role, own *trade.KeyMaterial) *trade.Trade {
	t.Helper()

	amounts := trade.Amounts{Bch: chainamounts.Satoshis(1_000_000), Xmr: chainamounts.Piconero(1e11)}
	timelocks := trade.Timelocks{T1Blocks: 144, T2Blocks: 144}

	tr, err := trade.New(role, amounts, timelocks, own)
	require.NoError(t, err)
	return tr
}

// testSig builds a valid completed VES signature over an arbitrary
// message, for tests that only care that a signature argument type-checks
// and flows through to the witness-attachment call.
func testSig(t *testing.T) *ves.Signature {
	t.Helper()

	sk, err := secp256k1.NewRandomScalar()
	require.NoError(t, err)
	tscalar, err := secp256k1.NewRandomScalar()
	require.NoError(t, err)

	var msg [32]byte
	presig, err := ves.EncryptSign(sk, msg, tscalar.Point())
	require.NoError(t, err)
	return ves.DecryptSig(presig, tscalar)
}

func newJournalLayout(t *testing.T) journal.Layout {
	t.Helper()
	return journal.Layout{Root: t.TempDir()}
}

func fundingUTXO(value chainamounts.Satoshis) []bchcovenant.UTXO {
	return []bchcovenant.UTXO{{TxID: chainhash.Hash{}, Index: 0, Value: value}}
}

func newMockOracle() chainoracle.Interface {
	m := chainoracle.NewMock()
	return chainoracle.Interface{Bch: m, Xmr: m}
}

func sampleScalar(t *testing.T) *secp256k1.Scalar {
	t.Helper()
	s, err := secp256k1.NewRandomScalar()
	require.NoError(t, err)
	return s
}

func testEvent(txID string, confs uint32) chainoracle.Event {
	return chainoracle.Event{TxID: txID, Confirmations: confs}
}

// newAdaptorPresig builds a VES pre-signature alongside the adaptor
// secret it was encrypted under, so a test can later decrypt it via
// ves.DecryptSig the way the real protocol does once that secret becomes
// known on chain.
func newAdaptorPresig(t *testing.T) (*ves.PreSignature, *secp256k1.Scalar) {
	t.Helper()

	sk := sampleScalar(t)
	adaptor := sampleScalar(t)

	var msg [32]byte
	presig, err := ves.EncryptSign(sk, msg, adaptor.Point())
	require.NoError(t, err)
	return presig, adaptor
}
