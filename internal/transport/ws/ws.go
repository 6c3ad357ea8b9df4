package ws

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/gobwas/ws"

	"github.com/PatricioDieck/tcp-peer/internal/peer"
	"github.com/PatricioDieck/tcp-peer/internal/transport"
)

// Listener waits for exactly one peer, like its tcp counterpart: the listening
// socket is released as soon as one connection is accepted and upgraded.
type Listener struct {
	ln net.Listener
}

// Listen binds addr for incoming websocket connections.
func Listen(addr string) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", transport.ErrBind, err)
	}
	return &Listener{ln: ln}, nil
}

// Addr returns the bound address.
func (l *Listener) Addr() string {
	return l.ln.Addr().String()
}

// AcceptOne accepts one TCP connection, upgrades it in place, and closes the
// listening socket. Cancelling ctx unblocks the wait.
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

	if _, err := ws.Upgrade(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: websocket upgrade: %w", transport.ErrAccept, err)
	}
	return NewConn(conn, ws.StateServerSide), nil
}

// Close releases the listening socket without accepting.
func (l *Listener) Close() error {
	return l.ln.Close()
}

// Dial connects to ws://host:port/.
func Dial(ctx context.Context, host string, port int) (peer.Conn, error) {
	url := fmt.Sprintf("ws://%s/", net.JoinHostPort(host, strconv.Itoa(port)))
	conn, _, _, err := ws.Dial(ctx, url)
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) {
			return nil, fmt.Errorf("%w: %w", transport.ErrAddress, err)
		}
		return nil, fmt.Errorf("%w: %w", transport.ErrConnect, err)
	}
	return NewConn(conn, ws.StateClientSide), nil
}
