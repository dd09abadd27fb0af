package transport

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Cyrix126/bch-xmr-swap/message"
)

func validM1() message.M1 {
	return message.M1{
		ASpendSecp: make([]byte, 33),
		ASpendEd:   make([]byte, 32),
		AViewEd:    make([]byte, 32),
		RefundPk:   make([]byte, 33),
		ClaimPk:    make([]byte, 33),
		DleqA:      message.DleqProof{Bytes: make([]byte, 64)},
		Amounts:    message.Amounts{BchSatoshis: 1, XmrPiconero: 1},
		Timelocks:  message.Timelocks{T1Blocks: 10, T2Blocks: 20},
	}
}

func dialPair(t *testing.T) (client *WSConn, server *WSConn, cleanup func()) {
	t.Helper()
	listener := NewListener()
	httpServer := httptest.NewServer(listener)
	wsURL := "ws" + strings.TrimPrefix(httpServer.URL, "http")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	client, err := Dial(ctx, wsURL)
	require.NoError(t, err)

	server, err = listener.Accept(ctx, time.Second)
	require.NoError(t, err)

	return client, server, func() {
		client.Close()
		server.Close()
		httpServer.Close()
	}
}

func TestSendReceiveEnvelope(t *testing.T) {
	client, server, cleanup := dialPair(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	m1 := validM1()
	tradeID := "abcdef0123456789abcdef0123456789"
	require.NoError(t, SendMessage(ctx, client, tradeID, message.PhaseM1, m1))

	env, err := ReceiveEnvelope(ctx, server)
	require.NoError(t, err)
	require.Equal(t, message.PhaseM1, env.Phase)
	require.Equal(t, tradeID, env.TradeID)

	var got message.M1
	require.NoError(t, env.Unmarshal(&got))
	require.Equal(t, m1.Amounts, got.Amounts)
}

func TestSendMessage_RejectsInvalidBody(t *testing.T) {
	client, server, cleanup := dialPair(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := SendMessage(ctx, client, "abcdef0123456789abcdef0123456789", message.PhaseM1, message.M1{})
	require.Error(t, err)

	_ = server
}
