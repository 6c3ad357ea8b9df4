// Package ws establishes the single peer connection over WebSocket, behind the
// same peer.Conn interface as the tcp package. Payloads carry the identical
// newline-delimited text, so the session is transport-blind.
package ws

import (
	"context"
	"errors"
	"io"
	"net"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

// Conn adapts a gobwas websocket connection to peer.Conn. The side (client or
// server) selects the frame masking rules per RFC 6455.
type Conn struct {
	conn net.Conn
	side ws.State
}

// NewConn wraps an upgraded websocket connection.
func NewConn(conn net.Conn, side ws.State) *Conn {
	return &Conn{conn: conn, side: side}
}

// Read returns the payload of the next binary message from the peer.
// A clean close from the peer is reported as io.EOF.
func (c *Conn) Read(ctx context.Context) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if c.side == ws.StateServerSide {
		data, err = wsutil.ReadClientBinary(c.conn)
	} else {
		data, err = wsutil.ReadServerBinary(c.conn)
	}
	if err != nil {
		var closed wsutil.ClosedError
		if errors.As(err, &closed) {
			switch closed.Code {
			case ws.StatusNormalClosure, ws.StatusGoingAway, ws.StatusNoStatusRcvd:
				return nil, io.EOF
			}
		}
		return nil, err
	}
	return data, nil
}

// Write sends p as one binary message.
func (c *Conn) Write(ctx context.Context, p []byte) error {
	if c.side == ws.StateServerSide {
		return wsutil.WriteServerBinary(c.conn, p)
	}
	return wsutil.WriteClientBinary(c.conn, p)
}

// Close sends a close frame, then closes the underlying connection.
func (c *Conn) Close() error {
	if c.side == ws.StateServerSide {
		_ = wsutil.WriteServerMessage(c.conn, ws.OpClose, nil)
	} else {
		_ = wsutil.WriteClientMessage(c.conn, ws.OpClose, nil)
	}
	return c.conn.Close()
}

// RemoteAddr returns the peer address.
func (c *Conn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
