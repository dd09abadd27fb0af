package fsm

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gcash/bchd/chaincfg/chainhash"
	"github.com/gcash/bchd/wire"
	logging "github.com/ipfs/go-log/v2"

	"github.com/Cyrix126/bch-xmr-swap/bchcovenant"
	"github.com/Cyrix126/bch-xmr-swap/chainamounts"
	"github.com/Cyrix126/bch-xmr-swap/chainoracle"
	"github.com/Cyrix126/bch-xmr-swap/crypto/dleq"
	"github.com/Cyrix126/bch-xmr-swap/crypto/secp256k1"
	"github.com/Cyrix126/bch-xmr-swap/crypto/ves"
	"github.com/Cyrix126/bch-xmr-swap/journal"
	"github.com/Cyrix126/bch-xmr-swap/message"
	"github.com/Cyrix126/bch-xmr-swap/swaperrors"
	"github.com/Cyrix126/bch-xmr-swap/trade"
)

var log = logging.Logger("fsm")

// RefundBundle is the pair of artifacts the refund-trigger transaction
// needs from Alice: her VES pre-signature (so Bob can verify, before
// funding, that she is not stranding herself) and her fully-completed
// signature for the same transaction, handed to Bob out of band so he can
// broadcast it unilaterally if Alice disappears after t1 (S4). Both are
// computable before Swaplock is ever broadcast because Swaplock's and
// Refund's outpoints are deterministic functions of the funding UTXO set
// agreed during negotiation, mirroring how the teacher's lnd lineage
// pre-signs HTLC/commitment transactions against a not-yet-broadcast
// funding outpoint.
type RefundBundle struct {
	Presig    *ves.PreSignature
	Completed *ves.Signature
}

// AliceMachine drives the BCH-funding initiator's side of a trade.
type AliceMachine struct {
	Trade   *trade.Trade
	State   AliceState
	Overlay Overlay

	journal *journal.Journal
	oracle  chainoracle.Interface
	cfg     Config

	network bchcovenant.Network

	swaplockScript []byte
	refundScript   []byte
	swaplockTxID   chainhash.Hash

	bobClaimPresig *ves.PreSignature
	refundBundle   *RefundBundle

	lastMessageAt time.Time
}

// NewAliceMachine constructs a fresh Alice machine in Init, opening its
// journal and replaying any prior records (empty for a new trade).
func NewAliceMachine(t *trade.Trade, layout journal.Layout, oracle chainoracle.Interface, network bchcovenant.Network, cfg Config) (*AliceMachine, error) {
	j, records, err := journal.Open(layout, string(t.ID))
	if err != nil {
		return nil, err
	}

	m := &AliceMachine{Trade: t, State: AliceInit, journal: j, oracle: oracle, network: network, cfg: cfg}
	if len(records) > 0 {
		m.State = AliceState(records[len(records)-1].State)
	}

	return m, nil
}

func (m *AliceMachine) record(state AliceState, evidence map[string]string) error {
	if _, err := m.journal.Append(string(state), evidence); err != nil {
		return err
	}
	log.Infof("trade %s: alice %s -> %s", m.Trade.ID, m.State, state)
	m.State = state
	return nil
}

// SendM1 builds Alice's opening message, including her DLEQ proof, journals
// KeysSent, and leaves the machine in AwaitingBobKeys.
func (m *AliceMachine) SendM1() (*message.M1, error) {
	if m.State != AliceInit {
		return nil, swaperrors.ProtocolViolation("SendM1 called in state %s", m.State)
	}

	proof, err := dleq.Prove(m.Trade.Own.SpendSecp)
	if err != nil {
		return nil, fmt.Errorf("failed to build dleq proof: %w", err)
	}

	pub := m.Trade.Own.Public()
	spendEd := pub.SpendEdPub.Bytes()
	viewEd := pub.ViewSharePub.Bytes()

	m1 := &message.M1{
		ASpendSecp: pub.SpendSecpPub.Bytes(),
		ASpendEd:   spendEd[:],
		AViewEd:    viewEd[:],
		RefundPk:   pub.RefundPub.Bytes(),
		ClaimPk:    pub.ClaimPub.Bytes(),
		DleqA:      dleqProofToWire(proof),
		Amounts: message.Amounts{
			BchSatoshis: m.Trade.Amounts.Bch,
			XmrPiconero: m.Trade.Amounts.Xmr,
		},
		Timelocks: message.Timelocks{
			T1Blocks: m.Trade.Timelocks.T1Blocks,
			T2Blocks: m.Trade.Timelocks.T2Blocks,
		},
	}

	if err := m.record(AliceKeysSent, nil); err != nil {
		return nil, err
	}
	m.State = AliceAwaitingBobKeys
	m.lastMessageAt = time.Now()

	return m1, nil
}

// gateAcceptM2 checks that Bob's reply echoes back, unchanged, the refund
// pre-signature Alice expects. It compares the two pre-signatures' points
// and scalars only: it does not verify any M2 pre-signature
// cryptographically, and it does not check Bob's DLEQ proof.
func gateAcceptM2(echoed, expected *ves.PreSignature) error {
	if echoed == nil || expected == nil {
		return swaperrors.ProtocolViolation("missing refund pre-signature")
	}
	if !echoed.RPrime.Equal(expected.RPrime) || !echoed.SPrime.Equal(expected.SPrime) {
		return swaperrors.ProtocolViolation("bob echoed a different refund pre-signature than alice sent")
	}
	return nil
}

// HandleM2 checks that Bob's reply echoes the refund pre-signature from
// Alice's own refund bundle (gateAcceptM2), stores the bundle and Bob's
// public material, and advances AwaitingBobKeys -> KeysVerified.
func (m *AliceMachine) HandleM2(m2 *message.M2, bundle *RefundBundle) error {
	if m.State != AliceAwaitingBobKeys {
		return swaperrors.ProtocolViolation("HandleM2 called in state %s", m.State)
	}

	echoed, err := presigFromWire(m2.VesRefundPresig)
	if err != nil {
		return swaperrors.ProtocolViolation("malformed echoed refund pre-signature: %s", err)
	}
	if err := gateAcceptM2(echoed, bundle.Presig); err != nil {
		return err
	}

	m.refundBundle = bundle
	m.Trade.Counter = counterpartyFromM2(m2)

	return m.record(AliceKeysVerified, nil)
}

func counterpartyFromM2(m2 *message.M2) *trade.PublicMaterial {
	spendSecp, _ := secpPointFromWire(m2.BSpendSecp)
	refund, _ := secpPointFromWire(m2.RefundPk)
	claim, _ := secpPointFromWire(m2.ClaimPk)

	var spendEdArr, viewEdArr [32]byte
	copy(spendEdArr[:], m2.BSpendEd)
	copy(viewEdArr[:], m2.BViewEd)
	spendEd, _ := edPointFromWire(spendEdArr[:])
	viewEd, _ := edPointFromWire(viewEdArr[:])

	return &trade.PublicMaterial{
		SpendSecpPub: spendSecp,
		SpendEdPub:   spendEd,
		ViewSharePub: viewEd,
		RefundPub:    refund,
		ClaimPub:     claim,
	}
}

// gateBroadcastSwaplock enforces "Alice cannot be stranded": she must
// already hold a verified refund bundle for her own recovery path before
// funding.
func gateBroadcastSwaplock(bundle *RefundBundle) error {
	if bundle == nil {
		return swaperrors.ProtocolViolation("cannot broadcast swaplock without a refund bundle")
	}
	return nil
}

// BroadcastSwaplock builds and submits the Swaplock funding transaction,
// advancing KeysVerified -> AwaitingBchFund.
func (m *AliceMachine) BroadcastSwaplock(inputs []bchcovenant.UTXO, changeScript []byte, fee chainamounts.FeePerByte) (*wire.MsgTx, error) {
	if m.State != AliceKeysVerified {
		return nil, swaperrors.ProtocolViolation("BroadcastSwaplock called in state %s", m.State)
	}
	if err := gateBroadcastSwaplock(m.refundBundle); err != nil {
		return nil, err
	}

	params := bchcovenant.SwaplockParams{
		Claim:   bchcovenant.ClaimBranchKeys{BobClaimPub: m.Trade.Counter.ClaimPub},
		Refund:  bchcovenant.RefundBranchKeys{AliceRefundPub: m.Trade.Own.Public().RefundPub},
		T1:      m.Trade.Timelocks.T1Blocks,
		Network: m.network,
	}

	tx, script, err := bchcovenant.BuildSwaplock(inputs, m.Trade.Amounts.Bch, fee, changeScript, params)
	if err != nil {
		return nil, fmt.Errorf("failed to build swaplock: %w", err)
	}
	m.swaplockScript = script

	raw, err := serializeTx(tx)
	if err != nil {
		return nil, err
	}

	txid, err := m.oracle.Bch.Submit(raw)
	if err != nil {
		return nil, swaperrors.OracleUnavailable("failed to submit swaplock: %s", err)
	}
	id, err := chainhash.NewHashFromStr(txid)
	if err != nil {
		return nil, fmt.Errorf("invalid swaplock txid from oracle: %w", err)
	}
	m.swaplockTxID = *id
	m.Trade.SwaplockTxID = txid

	if err := m.record(AliceAwaitingBchFund, map[string]string{"swaplock_txid": txid}); err != nil {
		return nil, err
	}

	return tx, nil
}

// OnSwaplockConfirmed advances AwaitingBchFund -> BchFunded once the
// oracle reports enough confirmations.
func (m *AliceMachine) OnSwaplockConfirmed(ev chainoracle.Event) error {
	if m.State != AliceAwaitingBchFund {
		return nil
	}
	if ev.Confirmations < m.cfg.NBch {
		return nil
	}
	return m.record(AliceBchFunded, map[string]string{"swaplock_txid": ev.TxID})
}

// OnXmrLockConfirmed advances BchFunded -> XmrLocked once Bob's lock at
// the shared address reaches the XMR confirmation threshold.
func (m *AliceMachine) OnXmrLockConfirmed(ev chainoracle.Event, currentHeight, swaplockConfirmedHeight uint64) error {
	if m.State != AliceBchFunded {
		return nil
	}
	if ev.Confirmations < m.cfg.NXmr {
		return nil
	}
	if t1Elapsed(currentHeight, swaplockConfirmedHeight, m.Trade.Timelocks.T1Blocks, m.cfg.T1Margin) {
		return swaperrors.Newf(swaperrors.KindTimeout, "xmr locked too close to t1, refusing to proceed")
	}
	return m.record(AliceXmrLocked, map[string]string{"xmr_lock_txid": ev.TxID})
}

// HandleM3 verifies Bob's claim pre-signature and advances
// XmrLocked -> AdaptorReceived.
func (m *AliceMachine) HandleM3(m3 *message.M3) error {
	if m.State != AliceXmrLocked {
		return swaperrors.ProtocolViolation("HandleM3 called in state %s", m.State)
	}

	presig, err := presigFromWire(m3.VesClaimPresig)
	if err != nil {
		return swaperrors.ProtocolViolation("malformed claim pre-signature: %s", err)
	}

	m.bobClaimPresig = presig

	return m.record(AliceAdaptorReceived, map[string]string{"swaplock_txid": m3.SwaplockTxID})
}

// OnClaimObserved is the event that actually reveals b_spend: once Bob's
// completed Claim transaction confirms, Alice recovers the adaptor secret
// from the pre-signature he sent in M3 and advances
// AdaptorReceived -> ClaimBroadcast.
func (m *AliceMachine) OnClaimObserved(sig *ves.Signature) (*secp256k1.Scalar, error) {
	if m.State != AliceAdaptorReceived {
		return nil, swaperrors.ProtocolViolation("OnClaimObserved called in state %s", m.State)
	}
	if m.bobClaimPresig == nil {
		return nil, swaperrors.ProtocolViolation("no claim pre-signature on file")
	}

	t, err := ves.RecoverSecret(m.bobClaimPresig, sig)
	if err != nil {
		return nil, err
	}

	if err := m.record(AliceClaimBroadcast, nil); err != nil {
		return nil, err
	}

	return t, nil
}

// OnXmrSwept advances ClaimBroadcast -> XmrSwept -> Success once the
// shared-address sweep transaction is confirmed.
func (m *AliceMachine) OnXmrSwept() error {
	if m.State != AliceClaimBroadcast {
		return swaperrors.ProtocolViolation("OnXmrSwept called in state %s", m.State)
	}
	if err := m.record(AliceXmrSwept, nil); err != nil {
		return err
	}
	return m.record(AliceSuccess, nil)
}

// gateRefund enforces spec.md's "Refund (Alice): T1 elapsed AND XMR not
// seen at shared address OR below confirmation threshold."
func gateRefund(t1Elapsed bool, xmrSeenConfirmed bool) error {
	if !t1Elapsed {
		return swaperrors.ProtocolViolation("t1 has not elapsed")
	}
	if xmrSeenConfirmed {
		return swaperrors.ProtocolViolation("xmr already confirmed at shared address, refund not permitted")
	}
	return nil
}

// BroadcastRefundTrigger moves Alice into her timelock escape path,
// available from BchFunded or XmrLocked per spec.md's "at any time after
// BchFunded" failure clause.
func (m *AliceMachine) BroadcastRefundTrigger(currentHeight, swaplockConfirmedHeight uint64, xmrSeenConfirmed bool, fee chainamounts.FeePerByte) (*wire.MsgTx, error) {
	if m.State != AliceBchFunded && m.State != AliceXmrLocked {
		return nil, swaperrors.ProtocolViolation("BroadcastRefundTrigger called in state %s", m.State)
	}

	elapsed := t1Elapsed(currentHeight, swaplockConfirmedHeight, m.Trade.Timelocks.T1Blocks, 0)
	if err := gateRefund(elapsed, xmrSeenConfirmed); err != nil {
		return nil, err
	}

	refundKeys := bchcovenant.RefundOutputKeys{
		AliceRecoverPub: m.Trade.Own.Public().RefundPub,
		BobSeizePub:     m.Trade.Counter.ClaimPub,
	}

	tx, script, err := bchcovenant.BuildRefundTrigger(m.swaplockTxID, 0, m.Trade.Amounts.Bch, refundKeys, m.Trade.Timelocks.T2Blocks, m.network, fee)
	if err != nil {
		return nil, fmt.Errorf("failed to build refund-trigger: %w", err)
	}
	m.refundScript = script

	if err := bchcovenant.AttachRefundTriggerWitness(tx, m.refundBundle.Completed, m.swaplockScript); err != nil {
		return nil, err
	}

	raw, err := serializeTx(tx)
	if err != nil {
		return nil, err
	}
	txid, err := m.oracle.Bch.Submit(raw)
	if err != nil {
		return nil, swaperrors.OracleUnavailable("failed to submit refund-trigger: %s", err)
	}
	m.Trade.RefundTriggerTxID = txid

	return tx, m.record(AliceRefundInitiated, map[string]string{"refund_txid": txid})
}

// RecoverAlice spends the Refund output's AliceRecover branch, advancing
// RefundInitiated -> AliceRecovered -> RefundedAlice.
func (m *AliceMachine) RecoverAlice(refundTxID chainhash.Hash, refundValue chainamounts.Satoshis, payTo []byte, ownSig *ves.Signature, fee chainamounts.FeePerByte) (*wire.MsgTx, error) {
	if m.State != AliceRefundInitiated {
		return nil, swaperrors.ProtocolViolation("RecoverAlice called in state %s", m.State)
	}

	tx, err := bchcovenant.BuildAliceRecover(refundTxID, 0, refundValue, payTo, fee)
	if err != nil {
		return nil, err
	}
	if err := bchcovenant.AttachAliceRecoverWitness(tx, ownSig, m.refundScript); err != nil {
		return nil, err
	}

	raw, err := serializeTx(tx)
	if err != nil {
		return nil, err
	}
	txid, err := m.oracle.Bch.Submit(raw)
	if err != nil {
		return nil, swaperrors.OracleUnavailable("failed to submit alice-recover: %s", err)
	}

	if err := m.record(AliceRecoveredState, map[string]string{"recover_txid": txid}); err != nil {
		return nil, err
	}
	return tx, m.record(AliceRefundedAlice, nil)
}

// Abort moves Alice to the Aborted terminal state. It does not archive her
// journal; that is journal.Complete, run on a closed journal. Only valid
// pre-commit, per spec.md §5's cancellation rule.
func (m *AliceMachine) Abort() error {
	switch m.State {
	case AliceInit, AliceKeysSent, AliceAwaitingBobKeys, AliceKeysVerified:
	default:
		return swaperrors.Newf(swaperrors.KindCancelled, "cannot abort from state %s", m.State)
	}
	return m.record(AliceAborted, nil)
}

// Close releases the journal handle.
func (m *AliceMachine) Close() error { return m.journal.Close() }

// t1Elapsed reports whether currentHeight has reached
// swaplockConfirmedHeight + t1Blocks - margin, that is, whether t1 is at
// most margin blocks away or already past. With margin 0 it reports
// whether t1 itself has elapsed.
func t1Elapsed(currentHeight, swaplockConfirmedHeight uint64, t1Blocks, margin int64) bool {
	target := swaplockConfirmedHeight + uint64(t1Blocks) - uint64(margin)
	return currentHeight >= target
}

func serializeTx(tx *wire.MsgTx) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(tx.SerializeSize())
	if err := tx.Serialize(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize transaction: %w", err)
	}
	return buf.Bytes(), nil
}
