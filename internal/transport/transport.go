// Package transport holds the contract shared by the connection establishers:
// the setup error taxonomy and the must-fully-send write helper. Concrete
// establishers live in the tcp and ws subpackages; both produce the same
// peer.Conn, so the session never cares which one is underneath.
package transport

import (
	"errors"
	"fmt"
	"io"
)

// Setup errors. Establishers wrap the underlying cause with one of these
// sentinels so callers can classify failures with errors.Is.
var (
	ErrBind    = errors.New("bind failed")
	ErrAccept  = errors.New("accept failed")
	ErrAddress = errors.New("address resolution failed")
	ErrConnect = errors.New("connect failed")
)

// WriteFull writes all of p to w. The write primitive may accept fewer bytes
// than offered in one call, so WriteFull loops, advancing past what was taken,
// until everything is out or an error surfaces. A zero-byte write with no error
// means the stream is closed.
func WriteFull(w io.Writer, p []byte) error {
	for len(p) > 0 {
		n, err := w.Write(p)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("connection closed mid-write: %w", io.ErrClosedPipe)
		}
		p = p[n:]
	}
	return nil
}
