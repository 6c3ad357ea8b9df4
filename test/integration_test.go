package test

import (
	"context"
	"io"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/PatricioDieck/tcp-peer/internal/peer"
	"github.com/PatricioDieck/tcp-peer/internal/transport/tcp"
	"github.com/PatricioDieck/tcp-peer/internal/transport/ws"
)

type chanSource struct {
	ch chan []byte
}

func (s *chanSource) Next() ([]byte, error) {
	unit, ok := <-s.ch
	if !ok {
		return nil, io.EOF
	}
	return unit, nil
}

func (s *chanSource) Close() error { return nil }

type recordSink struct {
	mu       sync.Mutex
	messages []string
}

func (s *recordSink) Message(line []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, string(line))
	return nil
}

func (s *recordSink) Stream(chunk []byte) error { return nil }

func (s *recordSink) Messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.messages...)
}

func portOf(t *testing.T, addr string) int {
	t.Helper()
	_, portStr, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return port
}

func received(sink *recordSink, want string) func() bool {
	return func() bool {
		for _, m := range sink.Messages() {
			if m == want {
				return true
			}
		}
		return false
	}
}

// Two real peers over loopback TCP: A listens, B dials, both exchange a
// message, then both shut down cleanly once their input ends.
func TestIntegration_TCPPeers(t *testing.T) {
	ctx := context.Background()

	l, err := tcp.Listen("127.0.0.1:0", 0)
	require.NoError(t, err)
	port := portOf(t, l.Addr())

	aIn := &chanSource{ch: make(chan []byte)}
	bIn := &chanSource{ch: make(chan []byte)}
	aOut := &recordSink{}
	bOut := &recordSink{}

	var g errgroup.Group
	g.Go(func() error {
		conn, err := l.AcceptOne(ctx)
		if err != nil {
			return err
		}
		return peer.NewSession(conn, aIn, aOut, peer.Options{}).Run(ctx)
	})
	g.Go(func() error {
		conn, err := tcp.Dial(ctx, "127.0.0.1", port, 0)
		if err != nil {
			return err
		}
		return peer.NewSession(conn, bIn, bOut, peer.Options{}).Run(ctx)
	})

	aIn.ch <- []byte("hello from A")
	require.Eventually(t, received(bOut, "hello from A"), 5*time.Second, 10*time.Millisecond)

	bIn.ch <- []byte("hello from B")
	require.Eventually(t, received(aOut, "hello from B"), 5*time.Second, 10*time.Millisecond)

	close(aIn.ch)
	close(bIn.ch)
	assert.NoError(t, g.Wait())
}

// The same round trip with the websocket transport underneath.
func TestIntegration_WebSocketPeers(t *testing.T) {
	ctx := context.Background()

	l, err := ws.Listen("127.0.0.1:0")
	require.NoError(t, err)
	port := portOf(t, l.Addr())

	aIn := &chanSource{ch: make(chan []byte)}
	bIn := &chanSource{ch: make(chan []byte)}
	aOut := &recordSink{}
	bOut := &recordSink{}

	var g errgroup.Group
	g.Go(func() error {
		conn, err := l.AcceptOne(ctx)
		if err != nil {
			return err
		}
		return peer.NewSession(conn, aIn, aOut, peer.Options{}).Run(ctx)
	})
	g.Go(func() error {
		conn, err := ws.Dial(ctx, "127.0.0.1", port)
		if err != nil {
			return err
		}
		return peer.NewSession(conn, bIn, bOut, peer.Options{}).Run(ctx)
	})

	aIn.ch <- []byte("over websocket")
	require.Eventually(t, received(bOut, "over websocket"), 5*time.Second, 10*time.Millisecond)

	bIn.ch <- []byte("and back")
	require.Eventually(t, received(aOut, "and back"), 5*time.Second, 10*time.Millisecond)

	close(aIn.ch)
	close(bIn.ch)
	assert.NoError(t, g.Wait())
}

// One peer hanging up mid-session ends the other cleanly.
func TestIntegration_PeerDisconnect(t *testing.T) {
	ctx := context.Background()

	l, err := tcp.Listen("127.0.0.1:0", 0)
	require.NoError(t, err)
	port := portOf(t, l.Addr())

	aIn := &chanSource{ch: make(chan []byte)}
	defer close(aIn.ch)
	aOut := &recordSink{}

	sessErr := make(chan error, 1)
	go func() {
		conn, err := l.AcceptOne(ctx)
		if err != nil {
			sessErr <- err
			return
		}
		sessErr <- peer.NewSession(conn, aIn, aOut, peer.Options{}).Run(ctx)
	}()

	conn, err := tcp.Dial(ctx, "127.0.0.1", port, 0)
	require.NoError(t, err)
	require.NoError(t, conn.Write(ctx, []byte("last words\n")))
	require.NoError(t, conn.Close())

	select {
	case err := <-sessErr:
		assert.NoError(t, err, "peer disconnect is a clean termination")
	case <-time.After(5 * time.Second):
		t.Fatal("session did not end after peer disconnect")
	}
	assert.Contains(t, aOut.Messages(), "last words")
}
