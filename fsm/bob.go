package fsm

import (
	"fmt"

	"github.com/gcash/bchd/chaincfg/chainhash"
	"github.com/gcash/bchd/wire"

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

// BobMachine drives the XMR-locking responder's side of a trade.
type BobMachine struct {
	Trade   *trade.Trade
	State   BobState
	Overlay Overlay

	journal *journal.Journal
	oracle  chainoracle.Interface
	cfg     Config

	network bchcovenant.Network

	swaplockTxID chainhash.Hash
	refundTxID   chainhash.Hash

	aliceRefundBundle *RefundBundle
	ownClaimPresig    *ves.PreSignature
	ownSeizePresig    *ves.PreSignature
}

// NewBobMachine constructs a fresh Bob machine in Init, opening its
// journal and replaying any prior records.
func NewBobMachine(t *trade.Trade, layout journal.Layout, oracle chainoracle.Interface, network bchcovenant.Network, cfg Config) (*BobMachine, error) {
	j, records, err := journal.Open(layout, string(t.ID))
	if err != nil {
		return nil, err
	}

	m := &BobMachine{Trade: t, State: BobInit, journal: j, oracle: oracle, network: network, cfg: cfg}
	if len(records) > 0 {
		m.State = BobState(records[len(records)-1].State)
	}

	return m, nil
}

func (m *BobMachine) record(state BobState, evidence map[string]string) error {
	if _, err := m.journal.Append(string(state), evidence); err != nil {
		return err
	}
	log.Infof("trade %s: bob %s -> %s", m.Trade.ID, m.State, state)
	m.State = state
	return nil
}

// gateAcceptM1 validates Alice's opening message: her DLEQ proof must
// verify against her own claimed points, per spec.md's "Accept M1: DLEQ
// proof valid; fresh nonces; amounts match offer" precondition. Nonce
// freshness and offer matching are checked by the caller, which alone
// knows the negotiated offer and any prior nonces seen.
func gateAcceptM1(m1 *message.M1, dleqOK bool) error {
	if !dleqOK {
		return swaperrors.InvalidDleq("m1 dleq proof failed verification")
	}
	return nil
}

// HandleM1 records Alice's opening message (the caller is responsible for
// verifying m1.DleqA via crypto/dleq.Verify before calling this, since
// that requires decoding curve points this package leaves to the wire
// helpers) and advances Init -> AwaitingAliceKeys -> KeysReceived.
func (m *BobMachine) HandleM1(m1 *message.M1, dleqOK bool, bundle *RefundBundle) error {
	if m.State != BobInit {
		return swaperrors.ProtocolViolation("HandleM1 called in state %s", m.State)
	}
	if err := gateAcceptM1(m1, dleqOK); err != nil {
		return err
	}

	m.Trade.Counter = counterpartyFromM1(m1)
	m.Trade.Amounts = trade.Amounts{Bch: m1.Amounts.BchSatoshis, Xmr: m1.Amounts.XmrPiconero}
	m.Trade.Timelocks = trade.Timelocks{T1Blocks: m1.Timelocks.T1Blocks, T2Blocks: m1.Timelocks.T2Blocks}
	m.aliceRefundBundle = bundle

	if err := m.record(BobAwaitingAliceKeys, nil); err != nil {
		return err
	}
	return m.record(BobKeysReceived, nil)
}

func counterpartyFromM1(m1 *message.M1) *trade.PublicMaterial {
	spendSecp, _ := secpPointFromWire(m1.ASpendSecp)
	refund, _ := secpPointFromWire(m1.RefundPk)
	claim, _ := secpPointFromWire(m1.ClaimPk)
	spendEd, _ := edPointFromWire(m1.ASpendEd)
	viewEd, _ := edPointFromWire(m1.AViewEd)

	return &trade.PublicMaterial{
		SpendSecpPub: spendSecp,
		SpendEdPub:   spendEd,
		ViewSharePub: viewEd,
		RefundPub:    refund,
		ClaimPub:     claim,
	}
}

// SendM2 builds Bob's reply: his own key material and DLEQ proof, an echo
// of Alice's refund-trigger pre-signature, and his own BobSeize
// pre-signature (computable in advance since Swaplock's and Refund's
// outpoints are both deterministic given the agreed funding UTXO set; see
// DESIGN.md). Advances KeysReceived -> KeysSent.
func (m *BobMachine) SendM2(seizePresig *ves.PreSignature) (*message.M2, error) {
	if m.State != BobKeysReceived {
		return nil, swaperrors.ProtocolViolation("SendM2 called in state %s", m.State)
	}
	if m.aliceRefundBundle == nil {
		return nil, swaperrors.ProtocolViolation("no refund bundle from alice on file")
	}

	proof, err := dleq.Prove(m.Trade.Own.SpendSecp)
	if err != nil {
		return nil, fmt.Errorf("failed to build dleq proof: %w", err)
	}

	m.ownSeizePresig = seizePresig

	pub := m.Trade.Own.Public()
	spendEd := pub.SpendEdPub.Bytes()
	viewEd := pub.ViewSharePub.Bytes()

	m2 := &message.M2{
		BSpendSecp:      pub.SpendSecpPub.Bytes(),
		BSpendEd:        spendEd[:],
		BViewEd:         viewEd[:],
		RefundPk:        pub.RefundPub.Bytes(),
		ClaimPk:         pub.ClaimPub.Bytes(),
		DleqB:           dleqProofToWire(proof),
		VesRefundPresig: presigToWire(m.aliceRefundBundle.Presig),
		VesSeizePresig:  presigToWire(seizePresig),
	}

	return m2, m.record(BobKeysSent, nil)
}

// gateLockXmr enforces spec.md's "Lock XMR (Bob): Swaplock has >= N_bch
// confirmations AND T1 is not yet near (margin M blocks)."
func gateLockXmr(confs uint32, nBch uint32, t1Near bool) error {
	if confs < nBch {
		return swaperrors.ProtocolViolation("swaplock has %d confirmations, need %d", confs, nBch)
	}
	if t1Near {
		return swaperrors.Newf(swaperrors.KindTimeout, "t1 too near to lock xmr safely")
	}
	return nil
}

// OnSwaplockConfirmed advances KeysSent (or AwaitingFund) -> BchFunded.
func (m *BobMachine) OnSwaplockConfirmed(ev chainoracle.Event, currentHeight, swaplockSeenHeight uint64) error {
	if m.State != BobAwaitingFund && m.State != BobKeysSent {
		return nil
	}
	if err := gateLockXmr(ev.Confirmations, m.cfg.NBch, t1Elapsed(currentHeight, swaplockSeenHeight, m.Trade.Timelocks.T1Blocks, m.cfg.T1Margin)); err != nil {
		return err
	}

	id, err := chainhash.NewHashFromStr(ev.TxID)
	if err != nil {
		return fmt.Errorf("invalid swaplock txid: %w", err)
	}
	m.swaplockTxID = *id
	m.Trade.SwaplockTxID = ev.TxID

	return m.record(BobBchFunded, map[string]string{"swaplock_txid": ev.TxID})
}

// LockXmr records that Bob has locked his half of the shared XMR address
// and advances BchFunded -> XmrLocked. The actual lock transaction is
// built and submitted by the caller via the xmrshared wallet oracle;
// this method only records the fact once the caller confirms success.
func (m *BobMachine) LockXmr(lockTxID string) error {
	if m.State != BobBchFunded {
		return swaperrors.ProtocolViolation("LockXmr called in state %s", m.State)
	}
	return m.record(BobXmrLocked, map[string]string{"xmr_lock_txid": lockTxID})
}

// SendM3 builds Bob's claim pre-signature bundle and advances
// XmrLocked -> AdaptorSent.
func (m *BobMachine) SendM3(claimPresig *ves.PreSignature) (*message.M3, error) {
	if m.State != BobXmrLocked {
		return nil, swaperrors.ProtocolViolation("SendM3 called in state %s", m.State)
	}

	m.ownClaimPresig = claimPresig

	m3 := &message.M3{
		VesClaimPresig: presigToWire(claimPresig),
		SwaplockTxID:   m.swaplockTxID.String(),
	}

	return m3, m.record(BobAdaptorSent, nil)
}

// gateBroadcastClaim enforces spec.md's "XMR has >= N_xmr confirmations
// AND T1 not elapsed (margin M)" precondition, which in this
// implementation's single-key branch design gates Bob's own Claim
// broadcast (see DESIGN.md "claim broadcaster" resolution).
func gateBroadcastClaim(xmrConfs, nXmr uint32, t1Elapsed bool) error {
	if xmrConfs < nXmr {
		return swaperrors.ProtocolViolation("xmr lock has %d confirmations, need %d", xmrConfs, nXmr)
	}
	if t1Elapsed {
		return swaperrors.Newf(swaperrors.KindTimeout, "t1 has elapsed, refusing to broadcast claim")
	}
	return nil
}

// BroadcastClaim decrypts Bob's own claim pre-signature with his own
// b_spend scalar and broadcasts the Claim transaction, paying himself.
// This is the act that reveals b_spend on chain. Advances
// AdaptorSent -> AwaitingClaim -> BspendLearned (Bob already knows his own
// secret, so the "learned" state here just marks the revelation event).
func (m *BobMachine) BroadcastClaim(bSpend *secp256k1.Scalar, xmrConfs uint32, t1HasElapsed bool, payTo []byte, fee chainamounts.FeePerByte) (*wire.MsgTx, error) {
	if m.State != BobAdaptorSent {
		return nil, swaperrors.ProtocolViolation("BroadcastClaim called in state %s", m.State)
	}
	if err := gateBroadcastClaim(xmrConfs, m.cfg.NXmr, t1HasElapsed); err != nil {
		return nil, err
	}
	if m.ownClaimPresig == nil {
		return nil, swaperrors.ProtocolViolation("no claim pre-signature on file")
	}

	lockScript, err := bchcovenant.NewSwaplockScript(
		bchcovenant.ClaimBranchKeys{BobClaimPub: m.Trade.Own.Public().ClaimPub},
		bchcovenant.RefundBranchKeys{AliceRefundPub: m.Trade.Counter.RefundPub},
		m.Trade.Timelocks.T1Blocks,
	)
	if err != nil {
		return nil, err
	}

	tx, err := bchcovenant.BuildClaim(m.swaplockTxID, 0, m.Trade.Amounts.Bch, lockScript, payTo, fee)
	if err != nil {
		return nil, err
	}

	sig := ves.DecryptSig(m.ownClaimPresig, bSpend)
	if err := bchcovenant.AttachClaimWitness(tx, sig, lockScript); err != nil {
		return nil, err
	}

	raw, err := serializeTx(tx)
	if err != nil {
		return nil, err
	}
	txid, err := m.oracle.Bch.Submit(raw)
	if err != nil {
		return nil, swaperrors.OracleUnavailable("failed to submit claim: %s", err)
	}
	m.Trade.ClaimTxID = txid

	if err := m.record(BobAwaitingClaim, map[string]string{"claim_txid": txid}); err != nil {
		return nil, err
	}
	return tx, m.record(BobBspendLearned, nil)
}

// OnClaimSwept advances BspendLearned -> BchSwept -> Success once the
// Claim output's P2PKH forward sweep confirms.
func (m *BobMachine) OnClaimSwept() error {
	if m.State != BobBspendLearned {
		return swaperrors.ProtocolViolation("OnClaimSwept called in state %s", m.State)
	}
	if err := m.record(BobBchSwept, nil); err != nil {
		return err
	}
	return m.record(BobSuccess, nil)
}

// OnRefundObserved reacts to Alice's refund-trigger transaction appearing
// on chain (broadcast either by her or, in her absence, by Bob himself
// using her pre-delivered completed signature), recovering a_spend and
// advancing into the seize-window wait.
func (m *BobMachine) OnRefundObserved(refundTxID chainhash.Hash, completedSig *ves.Signature) (*secp256k1.Scalar, error) {
	switch m.State {
	case BobBchFunded, BobXmrLocked, BobAdaptorSent, BobAwaitingClaim:
	default:
		return nil, swaperrors.ProtocolViolation("OnRefundObserved called in state %s", m.State)
	}
	if m.aliceRefundBundle == nil {
		return nil, swaperrors.ProtocolViolation("no refund bundle on file")
	}

	aSpend, err := ves.RecoverSecret(m.aliceRefundBundle.Presig, completedSig)
	if err != nil {
		return nil, err
	}

	m.refundTxID = refundTxID
	return aSpend, m.record(BobAwaitingSeizeWindow, map[string]string{"refund_txid": refundTxID.String()})
}

// BroadcastRefundTriggerAsFallback lets Bob broadcast Alice's refund-
// trigger transaction himself, using her pre-delivered completed
// signature, if she disappears after t1 (scenario S4).
func (m *BobMachine) BroadcastRefundTriggerAsFallback(fee chainamounts.FeePerByte) (*wire.MsgTx, error) {
	switch m.State {
	case BobBchFunded, BobXmrLocked, BobAdaptorSent, BobAwaitingClaim:
	default:
		return nil, swaperrors.ProtocolViolation("BroadcastRefundTriggerAsFallback called in state %s", m.State)
	}
	if m.aliceRefundBundle == nil || m.aliceRefundBundle.Completed == nil {
		return nil, swaperrors.ProtocolViolation("no completed refund-trigger signature on file")
	}

	refundKeys := bchcovenant.RefundOutputKeys{
		AliceRecoverPub: m.Trade.Counter.RefundPub,
		BobSeizePub:     m.Trade.Own.Public().ClaimPub,
	}

	// The transaction being built here spends the Swaplock output, so the
	// P2SH redeem script it needs is Swaplock's, independently rebuilt from
	// the same key material used when Swaplock was originally funded.
	swaplockScript, err := bchcovenant.NewSwaplockScript(
		bchcovenant.ClaimBranchKeys{BobClaimPub: m.Trade.Own.Public().ClaimPub},
		bchcovenant.RefundBranchKeys{AliceRefundPub: m.Trade.Counter.RefundPub},
		m.Trade.Timelocks.T1Blocks,
	)
	if err != nil {
		return nil, err
	}

	tx, _, err := bchcovenant.BuildRefundTrigger(m.swaplockTxID, 0, m.Trade.Amounts.Bch, refundKeys, m.Trade.Timelocks.T2Blocks, m.network, fee)
	if err != nil {
		return nil, err
	}
	if err := bchcovenant.AttachRefundTriggerWitness(tx, m.aliceRefundBundle.Completed, swaplockScript); err != nil {
		return nil, err
	}

	raw, err := serializeTx(tx)
	if err != nil {
		return nil, err
	}
	txid, err := m.oracle.Bch.Submit(raw)
	if err != nil {
		return nil, swaperrors.OracleUnavailable("failed to submit fallback refund-trigger: %s", err)
	}

	id, err := chainhash.NewHashFromStr(txid)
	if err != nil {
		return nil, fmt.Errorf("invalid refund-trigger txid: %w", err)
	}
	m.refundTxID = *id

	return tx, m.record(BobAwaitingSeizeWindow, map[string]string{"refund_txid": txid})
}

// gateSeize enforces spec.md's "Seize (Bob): Refund on-chain AND T2
// elapsed from Refund confirmation."
func gateSeize(refundConfs uint32, nBch uint32, t2Elapsed bool) error {
	if refundConfs < nBch {
		return swaperrors.ProtocolViolation("refund has %d confirmations, need %d", refundConfs, nBch)
	}
	if !t2Elapsed {
		return swaperrors.ProtocolViolation("t2 has not elapsed since refund confirmation")
	}
	return nil
}

// BroadcastSeize spends the Refund output's BobSeize branch with Bob's
// own ordinary signature, advancing AwaitingSeizeWindow -> SeizeBroadcast
// -> SeizedBob.
func (m *BobMachine) BroadcastSeize(refundConfs uint32, t2HasElapsed bool, ownSig *ves.Signature, refundValue chainamounts.Satoshis, payTo []byte, fee chainamounts.FeePerByte) (*wire.MsgTx, error) {
	if m.State != BobAwaitingSeizeWindow {
		return nil, swaperrors.ProtocolViolation("BroadcastSeize called in state %s", m.State)
	}
	if err := gateSeize(refundConfs, m.cfg.NBch, t2HasElapsed); err != nil {
		return nil, err
	}

	tx, err := bchcovenant.BuildBobSeize(m.refundTxID, 0, refundValue, m.Trade.Timelocks.T2Blocks, payTo, fee)
	if err != nil {
		return nil, err
	}

	// This transaction spends the Refund output, so it needs Refund's
	// redeem script, independently rebuilt from the same key material used
	// wherever the refund-trigger transaction created that output.
	refundScript, err := bchcovenant.NewRefundScript(bchcovenant.RefundOutputKeys{
		AliceRecoverPub: m.Trade.Counter.RefundPub,
		BobSeizePub:     m.Trade.Own.Public().ClaimPub,
	}, m.Trade.Timelocks.T2Blocks)
	if err != nil {
		return nil, err
	}
	if err := bchcovenant.AttachBobSeizeWitness(tx, ownSig, refundScript); err != nil {
		return nil, err
	}

	raw, err := serializeTx(tx)
	if err != nil {
		return nil, err
	}
	txid, err := m.oracle.Bch.Submit(raw)
	if err != nil {
		return nil, swaperrors.OracleUnavailable("failed to submit seize: %s", err)
	}
	m.Trade.SeizeTxID = txid

	if err := m.record(BobSeizeBroadcast, map[string]string{"seize_txid": txid}); err != nil {
		return nil, err
	}
	return tx, m.record(BobSeizedBob, nil)
}

// AbortEmptyHanded moves Bob to Aborted when Alice never funds, or
// refunds without XMR ever moving (scenario S3): no loss to either side.
func (m *BobMachine) AbortEmptyHanded() error {
	switch m.State {
	case BobInit, BobAwaitingAliceKeys, BobKeysReceived, BobKeysSent, BobAwaitingFund, BobAwaitingSeizeWindow:
	default:
		return swaperrors.Newf(swaperrors.KindCancelled, "cannot abort from state %s", m.State)
	}
	return m.record(BobAborted, nil)
}

// Close releases the journal handle.
func (m *BobMachine) Close() error { return m.journal.Close() }
