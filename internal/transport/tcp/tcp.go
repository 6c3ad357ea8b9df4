package tcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/PatricioDieck/tcp-peer/internal/peer"
	"github.com/PatricioDieck/tcp-peer/internal/transport"
)

// Listener waits for exactly one peer. This is a single-connection design, not
// a server: the listening socket is released as soon as one peer is accepted.
type Listener struct {
	ln      net.Listener
	bufSize int
}

// Listen binds addr (":port" binds all interfaces). net.Listen applies address
// reuse on Unix, so a restarted peer can rebind the same port immediately.
func Listen(addr string, readBufferSize int) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", transport.ErrBind, err)
	}
	return &Listener{ln: ln, bufSize: readBufferSize}, nil
}

// Addr returns the bound address.
func (l *Listener) Addr() string {
	return l.ln.Addr().String()
}

// AcceptOne blocks until one peer connects, then closes the listening socket.
// Cancelling ctx unblocks the wait.
func (l *Listener) AcceptOne(ctx context.Context) (peer.Conn, error) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			l.ln.Close()
		case <-done:
		}
	}()

	conn, err := l.ln.Accept()
	l.ln.Close()
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", transport.ErrAccept, ctx.Err())
		}
		return nil, fmt.Errorf("%w: %w", transport.ErrAccept, err)
	}
	return NewConn(conn, l.bufSize), nil
}

// Close releases the listening socket without accepting.
func (l *Listener) Close() error {
	return l.ln.Close()
}

// Dial connects to host:port. host may be numeric or a resolvable name; an
// unresolvable name is an address error, a failed connect a connect error.
func Dial(ctx context.Context, host string, port int, readBufferSize int) (peer.Conn, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) {
			return nil, fmt.Errorf("%w: %w", transport.ErrAddress, err)
		}
		return nil, fmt.Errorf("%w: %w", transport.ErrConnect, err)
	}
	return NewConn(conn, readBufferSize), nil
}
