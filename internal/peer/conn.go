// Package peer implements the two-peer chat session: the duplex pump that owns
// the single connection, and the local input and output collaborators it
// multiplexes.
package peer

import "context"

// Conn abstracts the one bidirectional connection to the remote peer.
// Implementations live under internal/transport.
type Conn interface {
	// Read returns the next available chunk of inbound bytes.
	// Returns io.EOF when the peer has closed the connection.
	Read(ctx context.Context) ([]byte, error)

	// Write sends all of p to the peer, looping over short writes.
	Write(ctx context.Context, p []byte) error

	// Close closes the connection.
	Close() error

	// RemoteAddr returns the peer address for logging.
	RemoteAddr() string
}
