package fsm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Cyrix126/bch-xmr-swap/bchcovenant"
	"github.com/Cyrix126/bch-xmr-swap/crypto/ves"
	"github.com/Cyrix126/bch-xmr-swap/trade"
)

func newAliceMachine(t *testing.T) *AliceMachine {
	t.Helper()

	aliceKeys := newTestKeyMaterial(t)
	tr := newTestTrade(t, trade.RoleAlice, aliceKeys)

	m, err := NewAliceMachine(tr, newJournalLayout(t), newMockOracle(), bchcovenant.Regtest, DefaultConfig())
	require.NoError(t, err)
	return m
}

func newBobMachine(t *testing.T) *BobMachine {
	t.Helper()

	bobKeys := newTestKeyMaterial(t)
	tr := newTestTrade(t, trade.RoleBob, bobKeys)

	m, err := NewBobMachine(tr, newJournalLayout(t), newMockOracle(), bchcovenant.Regtest, DefaultConfig())
	require.NoError(t, err)
	return m
}

// testPresig builds an arbitrary valid VES pre-signature, for tests that
// only care that a pre-signature argument type-checks and round-trips.
func testPresig(t *testing.T) *ves.PreSignature {
	t.Helper()

	sk := sampleScalar(t)
	tscalar := sampleScalar(t)

	var msg [32]byte
	presig, err := ves.EncryptSign(sk, msg, tscalar.Point())
	require.NoError(t, err)
	return presig
}

// runHandshake drives alice and bob through M1/M2 and returns the refund
// bundle both machines agree on, landing alice in KeysVerified and bob in
// KeysSent.
func runHandshake(t *testing.T, alice *AliceMachine, bob *BobMachine) *RefundBundle {
	t.Helper()

	m1, err := alice.SendM1()
	require.NoError(t, err)

	bundle := &RefundBundle{Presig: testPresig(t), Completed: testSig(t)}
	require.NoError(t, bob.HandleM1(m1, true, bundle))

	m2, err := bob.SendM2(testPresig(t))
	require.NoError(t, err)

	require.NoError(t, alice.HandleM2(m2, bundle))
	return bundle
}

func TestAliceMachine_SendM1AdvancesState(t *testing.T) {
	m := newAliceMachine(t)
	require.Equal(t, AliceInit, m.State)

	m1, err := m.SendM1()
	require.NoError(t, err)
	require.Equal(t, AliceAwaitingBobKeys, m.State)
	require.Equal(t, m.Trade.Timelocks.T1Blocks, m1.Timelocks.T1Blocks)
}

func TestAliceMachine_SendM1RejectsWrongState(t *testing.T) {
	m := newAliceMachine(t)
	_, err := m.SendM1()
	require.NoError(t, err)

	_, err = m.SendM1()
	require.Error(t, err)
}

func TestAliceMachine_HandleM2RejectsMismatchedPresig(t *testing.T) {
	alice := newAliceMachine(t)
	bob := newBobMachine(t)

	m1, err := alice.SendM1()
	require.NoError(t, err)

	bundle := &RefundBundle{Presig: testPresig(t), Completed: testSig(t)}
	require.NoError(t, bob.HandleM1(m1, true, bundle))

	m2, err := bob.SendM2(testPresig(t))
	require.NoError(t, err)

	wrongBundle := &RefundBundle{Presig: testPresig(t), Completed: testSig(t)}
	err = alice.HandleM2(m2, wrongBundle)
	require.Error(t, err)
}

func TestAliceMachine_HappyPathToXmrLocked(t *testing.T) {
	alice := newAliceMachine(t)
	bob := newBobMachine(t)

	runHandshake(t, alice, bob)
	require.Equal(t, AliceKeysVerified, alice.State)

	tx, err := alice.BroadcastSwaplock(fundingUTXO(2_000_000), nil, 1)
	require.NoError(t, err)
	require.NotNil(t, tx)
	require.Equal(t, AliceAwaitingBchFund, alice.State)

	require.NoError(t, alice.OnSwaplockConfirmed(testEvent(alice.Trade.SwaplockTxID, 2)))
	require.Equal(t, AliceBchFunded, alice.State)

	require.NoError(t, alice.OnXmrLockConfirmed(testEvent("xmrlock", 10), 100, 50))
	require.Equal(t, AliceXmrLocked, alice.State)
}

func TestAliceMachine_Abort(t *testing.T) {
	m := newAliceMachine(t)
	require.NoError(t, m.Abort())
	require.Equal(t, AliceAborted, m.State)
}

func TestAliceMachine_AbortRejectsAfterCommit(t *testing.T) {
	alice := newAliceMachine(t)
	bob := newBobMachine(t)
	runHandshake(t, alice, bob)

	_, err := alice.BroadcastSwaplock(fundingUTXO(2_000_000), nil, 1)
	require.NoError(t, err)

	require.Error(t, alice.Abort())
}
