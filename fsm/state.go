package fsm

import "time"

// AliceState names Alice's (the BCH-funding initiator's) FSM states,
// verbatim from spec.md §4.4's literal sequence.
type AliceState string

const (
	AliceInit             AliceState = "Init"
	AliceKeysSent         AliceState = "KeysSent"
	AliceAwaitingBobKeys  AliceState = "AwaitingBobKeys"
	AliceKeysVerified     AliceState = "KeysVerified"
	AliceAwaitingBchFund  AliceState = "AwaitingBchFund"
	AliceBchFunded        AliceState = "BchFunded"
	AliceXmrLocked        AliceState = "XmrLocked"
	AliceAdaptorReceived  AliceState = "AdaptorReceived"
	AliceClaimBroadcast   AliceState = "ClaimBroadcast"
	AliceXmrSwept         AliceState = "XmrSwept"
	AliceSuccess          AliceState = "Success"
	AliceRefundInitiated  AliceState = "RefundInitiated"
	AliceRecoveredState   AliceState = "AliceRecovered"
	AliceRefundedAlice    AliceState = "RefundedAlice"
	AliceAborted          AliceState = "Aborted"
)

// BobState names Bob's (the XMR-locking responder's) FSM states, verbatim
// from spec.md §4.4.
type BobState string

const (
	BobInit               BobState = "Init"
	BobAwaitingAliceKeys  BobState = "AwaitingAliceKeys"
	BobKeysReceived       BobState = "KeysReceived"
	BobKeysSent           BobState = "KeysSent"
	BobAwaitingFund       BobState = "AwaitingFund"
	BobBchFunded          BobState = "BchFunded"
	BobXmrLocked          BobState = "XmrLocked"
	BobAdaptorSent        BobState = "AdaptorSent"
	BobAwaitingClaim      BobState = "AwaitingClaim"
	BobBspendLearned      BobState = "BspendLearned"
	BobBchSwept           BobState = "BchSwept"
	BobSuccess            BobState = "Success"
	BobAwaitingSeizeWindow BobState = "AwaitingSeizeWindow"
	BobSeizeBroadcast     BobState = "SeizeBroadcast"
	BobSeizedBob          BobState = "SeizedBob"
	BobAborted            BobState = "Aborted"
)

// Config carries the timer/margin settings spec.md §5/§7/§8 names.
type Config struct {
	// NBch is the BCH confirmation threshold (spec.md default 2).
	NBch uint32
	// NXmr is the XMR confirmation threshold (spec.md default 10).
	NXmr uint32
	// T1Margin is the safety margin (in blocks) before T1 within which a
	// new lock/claim is no longer attempted, per the "T1 not yet near"
	// and "T1 not elapsed (margin M)" gates.
	T1Margin int64
	// HandshakeFreshness bounds how long a handshake message remains
	// acceptable; spec.md's wall-clock default is 300s.
	HandshakeFreshness time.Duration
	// OracleHealthInterval is the wall-clock oracle health probe period;
	// spec.md's default is 10s.
	OracleHealthInterval time.Duration
}

// DefaultConfig returns spec.md's literal default values.
func DefaultConfig() Config {
	return Config{
		NBch:                 2,
		NXmr:                 10,
		T1Margin:             2,
		HandshakeFreshness:   300 * time.Second,
		OracleHealthInterval: 10 * time.Second,
	}
}

// Overlay holds the Paused state spec.md §4.6 describes, alongside the
// substantive state rather than replacing it. The machines do not set it
// themselves; a failed submit returns OracleUnavailable and leaves State
// unchanged.
type Overlay struct {
	Paused bool
	Reason string
}
