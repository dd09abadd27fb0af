package fsm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBobMachine_HandleM1AdvancesState(t *testing.T) {
	alice := newAliceMachine(t)
	bob := newBobMachine(t)

	m1, err := alice.SendM1()
	require.NoError(t, err)

	bundle := &RefundBundle{Presig: testPresig(t), Completed: testSig(t)}
	require.NoError(t, bob.HandleM1(m1, true, bundle))
	require.Equal(t, BobKeysReceived, bob.State)
	require.Equal(t, alice.Trade.Amounts, bob.Trade.Amounts)
}

func TestBobMachine_HandleM1RejectsFailedDleq(t *testing.T) {
	alice := newAliceMachine(t)
	bob := newBobMachine(t)

	m1, err := alice.SendM1()
	require.NoError(t, err)

	bundle := &RefundBundle{Presig: testPresig(t), Completed: testSig(t)}
	err = bob.HandleM1(m1, false, bundle)
	require.Error(t, err)
	require.Equal(t, BobInit, bob.State)
}

func TestBobMachine_SendM2RequiresKeysReceived(t *testing.T) {
	bob := newBobMachine(t)
	_, err := bob.SendM2(testPresig(t))
	require.Error(t, err)
}

func TestBobMachine_FullHappyPathToSuccess(t *testing.T) {
	alice := newAliceMachine(t)
	bob := newBobMachine(t)

	runHandshake(t, alice, bob)
	require.Equal(t, BobKeysSent, bob.State)

	_, err := alice.BroadcastSwaplock(fundingUTXO(2_000_000), nil, 1)
	require.NoError(t, err)

	require.NoError(t, bob.OnSwaplockConfirmed(testEvent(alice.Trade.SwaplockTxID, 2), 100, 50))
	require.Equal(t, BobBchFunded, bob.State)

	require.NoError(t, bob.LockXmr("xmrlocktx"))
	require.Equal(t, BobXmrLocked, bob.State)

	claimPresig, bSpend := newAdaptorPresig(t)
	m3, err := bob.SendM3(claimPresig)
	require.NoError(t, err)
	require.NotEmpty(t, m3.SwaplockTxID)
	require.Equal(t, BobAdaptorSent, bob.State)

	tx, err := bob.BroadcastClaim(bSpend, 10, false, []byte{0x76, 0xa9}, 1)
	require.NoError(t, err)
	require.NotNil(t, tx)
	require.Equal(t, BobBspendLearned, bob.State)

	require.NoError(t, bob.OnClaimSwept())
	require.Equal(t, BobSuccess, bob.State)
}
