package chainoracle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMock_SubmitIdempotent(t *testing.T) {
	m := NewMock()

	txid1, err := m.Submit([]byte("raw-tx"))
	require.NoError(t, err)

	txid2, err := m.Submit([]byte("raw-tx"))
	require.NoError(t, err)

	require.Equal(t, txid1, txid2)
}

func TestMock_ConfirmationsNotFound(t *testing.T) {
	m := NewMock()
	_, err := m.Confirmations("unknown")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMock_WatchReceivesAdvance(t *testing.T) {
	m := NewMock()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := m.Watch(ctx, "swaplock-script")
	require.NoError(t, err)

	txid, err := m.Submit([]byte("tx"))
	require.NoError(t, err)
	m.AdvanceConfirmations("swaplock-script", txid, 2)

	select {
	case ev := <-ch:
		require.Equal(t, txid, ev.TxID)
		require.Equal(t, uint32(2), ev.Confirmations)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for watch event")
	}
}

func TestProber_BacksOffOnFailure(t *testing.T) {
	healthy := false
	p := NewProber(func() error {
		if healthy {
			return nil
		}
		return errUnhealthy
	})

	now := time.Now()
	require.Error(t, p.Check(now))
	require.True(t, p.Failing())

	// Within the backoff window, Check should not re-invoke health (it
	// would still report unhealthy, but via the backoff error, not a
	// fresh call) and Failing should stay true.
	require.Error(t, p.Check(now.Add(time.Millisecond)))
	require.True(t, p.Failing())

	healthy = true
	require.NoError(t, p.Check(now.Add(2*time.Second)))
	require.False(t, p.Failing())
}
