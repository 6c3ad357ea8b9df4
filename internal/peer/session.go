package peer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/PatricioDieck/tcp-peer/pkg/lineproto"
)

// Options configure a Session.
type Options struct {
	// Raw disables message framing: inbound bytes pass to the sink unmodified
	// and local units are echoed locally before transmission.
	Raw bool

	// MaxMessageSize bounds the undelimited bytes buffered while waiting for a
	// delimiter. 0 disables the bound.
	MaxMessageSize int

	Logger *zap.Logger
}

// Session is the duplex pump. It owns the connection for its whole lifetime:
// Run closes it on every exit path. The only other mutable state is the inbound
// buffer inside the Framer, also touched exclusively by the pump loop.
type Session struct {
	conn   Conn
	source Source
	sink   Sink
	framer *lineproto.Framer
	framed bool
	log    *zap.Logger
}

// NewSession wires a Session over an established connection.
func NewSession(conn Conn, source Source, sink Sink, opts Options) *Session {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		conn:   conn,
		source: source,
		sink:   sink,
		framer: lineproto.NewFramer(opts.MaxMessageSize),
		framed: !opts.Raw,
		log:    log.With(zap.String("peer", conn.RemoteAddr())),
	}
}

// readResult carries one read from a reader goroutine to the pump loop.
type readResult struct {
	data []byte
	err  error
}

// Run pumps the session until a terminal condition: local end of input, peer
// close, an unrecoverable I/O error, or ctx cancellation. A nil return is a
// clean termination. Once a terminal condition fires, nothing more is sent.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer s.conn.Close()

	local := make(chan readResult)
	remote := make(chan readResult)

	// The local reader may stay blocked in Next after the session ends (stdin
	// has no cancellation), so the pump never waits on it.
	go s.readSource(ctx, local)
	go s.readConn(ctx, remote)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("session interrupted")
			return nil

		case r := <-local:
			if r.err != nil {
				if errors.Is(r.err, io.EOF) {
					s.log.Info("local input closed")
					return nil
				}
				return fmt.Errorf("read local input: %w", r.err)
			}
			if err := s.send(ctx, r.data); err != nil {
				return err
			}

		case r := <-remote:
			if r.err != nil {
				if errors.Is(r.err, io.EOF) {
					s.log.Info("peer disconnected")
					return nil
				}
				return fmt.Errorf("read from peer: %w", r.err)
			}
			if err := s.deliver(r.data); err != nil {
				return err
			}
		}
	}
}

// send transmits one local unit. In framed mode the delimiter is appended when
// missing; in raw mode the unit is echoed locally first, since the terminal's
// own echo is off.
func (s *Session) send(ctx context.Context, unit []byte) error {
	if s.framed {
		unit = lineproto.Terminate(unit)
	} else if err := s.sink.Stream(unit); err != nil {
		return fmt.Errorf("echo local input: %w", err)
	}
	if err := s.conn.Write(ctx, unit); err != nil {
		return fmt.Errorf("send to peer: %w", err)
	}
	return nil
}

// deliver hands one inbound chunk to the sink, framed or raw.
func (s *Session) deliver(chunk []byte) error {
	if !s.framed {
		if err := s.sink.Stream(chunk); err != nil {
			return fmt.Errorf("write peer output: %w", err)
		}
		return nil
	}

	msgs, err := s.framer.Append(chunk)
	for _, msg := range msgs {
		if werr := s.sink.Message(msg); werr != nil {
			return fmt.Errorf("write peer output: %w", werr)
		}
	}
	if err != nil {
		return fmt.Errorf("frame inbound bytes: %w", err)
	}
	return nil
}

func (s *Session) readSource(ctx context.Context, out chan<- readResult) {
	for {
		unit, err := s.source.Next()
		select {
		case out <- readResult{data: unit, err: err}:
		case <-ctx.Done():
			return
		}
		if err != nil {
			return
		}
	}
}

func (s *Session) readConn(ctx context.Context, out chan<- readResult) {
	for {
		chunk, err := s.conn.Read(ctx)
		select {
		case out <- readResult{data: chunk, err: err}:
		case <-ctx.Done():
			return
		}
		if err != nil {
			return
		}
	}
}
