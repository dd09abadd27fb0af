package transport

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// WSConn adapts a gorilla/websocket connection to Conn, mirroring the
// teacher's wsclient read/write loop but carrying opaque envelope bytes
// instead of dispatching JSON-RPC methods.
type WSConn struct {
	conn *websocket.Conn
}

// NewWSConn wraps an already-established websocket connection.
func NewWSConn(conn *websocket.Conn) *WSConn {
	return &WSConn{conn: conn}
}

// Dial opens a client-side websocket connection to a counterparty's
// listener, mirroring the teacher's wsclient.NewWsClient dial step.
func Dial(ctx context.Context, url string) (*WSConn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", url, err)
	}
	return &WSConn{conn: conn}, nil
}

func (c *WSConn) Send(ctx context.Context, envelope []byte) error {
	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetWriteDeadline(deadline)
	}
	return c.conn.WriteMessage(websocket.TextMessage, envelope)
}

func (c *WSConn) Receive(ctx context.Context) ([]byte, error) {
	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetReadDeadline(deadline)
	}
	type result struct {
		data []byte
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		_, data, err := c.conn.ReadMessage()
		ch <- result{data, err}
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.data, r.err
	}
}

func (c *WSConn) Close() error {
	return c.conn.Close()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(_ *http.Request) bool { return true },
}

// Listener accepts a single incoming counterparty connection per trade,
// unlike the teacher's rpc.wsServer which multiplexes every swap's RPC
// traffic over one listener: here each trade negotiates its own socket,
// matching the handshake's one-to-one Alice/Bob shape.
type Listener struct {
	acceptCh chan *WSConn
}

// NewListener returns an http.Handler that upgrades the first incoming
// connection and makes it available via Accept.
func NewListener() *Listener {
	return &Listener{acceptCh: make(chan *WSConn, 1)}
}

func (l *Listener) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("failed to upgrade websocket connection: %s", err)
		return
	}
	select {
	case l.acceptCh <- NewWSConn(conn):
	default:
		log.Warnf("dropping extra websocket connection, one already accepted")
		conn.Close() //nolint:errcheck
	}
}

// Accept blocks until a counterparty connects or ctx is cancelled.
func (l *Listener) Accept(ctx context.Context, timeout time.Duration) (*WSConn, error) {
	deadline := time.After(timeout)
	select {
	case conn := <-l.acceptCh:
		return conn, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-deadline:
		return nil, fmt.Errorf("timed out waiting for counterparty connection")
	}
}
