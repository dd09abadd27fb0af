// Package transport carries message.Envelope bytes between Alice and Bob
// over a single websocket connection, generalizing the teacher's
// rpc/wsclient request/response loop into a two-way envelope pipe: the
// swap handshake has no RPC methods to dispatch, just five ordered
// envelopes to exchange.
package transport

import (
	"context"
	"fmt"

	logging "github.com/ipfs/go-log/v2"

	"github.com/Cyrix126/bch-xmr-swap/message"
)

var log = logging.Logger("transport")

// Sender delivers an encoded envelope to the counterparty.
type Sender interface {
	Send(ctx context.Context, envelope []byte) error
}

// Receiver blocks until the next envelope arrives, or ctx is cancelled.
type Receiver interface {
	Receive(ctx context.Context) ([]byte, error)
}

// Conn is a bidirectional envelope pipe.
type Conn interface {
	Sender
	Receiver
	Close() error
}

// SendMessage encodes body as tradeID's phase message and sends it.
func SendMessage(ctx context.Context, conn Sender, tradeID string, phase message.Phase, body interface{}) error {
	raw, err := message.Encode(tradeID, phase, body)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", phase, err)
	}
	if err := conn.Send(ctx, raw); err != nil {
		return fmt.Errorf("failed to send %s: %w", phase, err)
	}
	log.Debugf("sent %s for trade %s", phase, tradeID)
	return nil
}

// ReceiveEnvelope blocks for the next envelope and decodes it, leaving the
// phase-specific body for the caller to unmarshal via Envelope.Unmarshal.
func ReceiveEnvelope(ctx context.Context, conn Receiver) (*message.Envelope, error) {
	raw, err := conn.Receive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to receive envelope: %w", err)
	}
	env, err := message.Decode(raw)
	if err != nil {
		return nil, err
	}
	log.Debugf("received %s for trade %s", env.Phase, env.TradeID)
	return env, nil
}
