// Package tcp establishes the single TCP connection between the two peers.
package tcp

import (
	"context"
	"net"

	"github.com/PatricioDieck/tcp-peer/internal/transport"
)

// DefaultReadBufferSize bounds one chunk read from the socket.
const DefaultReadBufferSize = 4096

// Conn adapts net.Conn to peer.Conn.
type Conn struct {
	conn    net.Conn
	bufSize int
}

// NewConn wraps a net.Conn. bufSize <= 0 selects DefaultReadBufferSize.
func NewConn(conn net.Conn, bufSize int) *Conn {
	if bufSize <= 0 {
		bufSize = DefaultReadBufferSize
	}
	return &Conn{conn: conn, bufSize: bufSize}
}

// Read returns the next available chunk, at most the configured buffer size.
func (c *Conn) Read(ctx context.Context) ([]byte, error) {
	buf := make([]byte, c.bufSize)
	n, err := c.conn.Read(buf)
	if n > 0 {
		// Deliver the data; an EOF alongside it resurfaces on the next read.
		return buf[:n], nil
	}
	return nil, err
}

// Write sends all of p, looping over short writes.
func (c *Conn) Write(ctx context.Context, p []byte) error {
	return transport.WriteFull(c.conn, p)
}

// Close closes the connection.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// RemoteAddr returns the peer address.
func (c *Conn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
