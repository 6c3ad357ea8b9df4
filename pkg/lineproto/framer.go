// Package lineproto implements the newline-delimited framing used on the wire.
//
// A message is a byte sequence terminated by a single '\n'; the delimiter is never
// part of the message. TCP delivers an unbounded byte stream with no message
// boundaries, so inbound bytes accumulate in a Framer until a delimiter arrives.
package lineproto

import (
	"bytes"
	"errors"
	"fmt"
)

// Delimiter terminates every message on the wire.
const Delimiter = '\n'

// DefaultMaxMessageSize is the default bound on undelimited bytes a Framer holds.
const DefaultMaxMessageSize = 1 << 20

// ErrMessageTooLarge is returned by Append when the buffered bytes awaiting a
// delimiter exceed the configured maximum.
var ErrMessageTooLarge = errors.New("message exceeds maximum size")

// Framer reassembles a byte stream into discrete messages. Bytes appended in
// arbitrarily small chunks yield the same message sequence as one big append.
// Each Append drains every complete message currently buffered, so at rest the
// buffer holds at most one partial message.
type Framer struct {
	buf []byte
	max int
}

// NewFramer creates a Framer. maxMessageSize bounds the bytes buffered while
// waiting for a delimiter; 0 disables the bound.
func NewFramer(maxMessageSize int) *Framer {
	return &Framer{max: maxMessageSize}
}

// Append adds p to the inbound buffer and returns every complete message now
// present, in arrival order, delimiters stripped. When the undelimited remainder
// exceeds the configured maximum, the extracted messages are returned together
// with an error wrapping ErrMessageTooLarge.
func (f *Framer) Append(p []byte) ([][]byte, error) {
	f.buf = append(f.buf, p...)

	var msgs [][]byte
	for {
		i := bytes.IndexByte(f.buf, Delimiter)
		if i < 0 {
			break
		}
		msg := make([]byte, i)
		copy(msg, f.buf[:i])
		msgs = append(msgs, msg)
		f.buf = f.buf[i+1:]
	}

	if f.max > 0 && len(f.buf) > f.max {
		return msgs, fmt.Errorf("%w: %d bytes pending without a delimiter (max %d)",
			ErrMessageTooLarge, len(f.buf), f.max)
	}
	return msgs, nil
}

// Pending returns the buffered bytes not yet terminated by a delimiter.
func (f *Framer) Pending() []byte {
	return f.buf
}

// Terminate returns unit ending in the delimiter, appending one when missing.
func Terminate(unit []byte) []byte {
	if len(unit) > 0 && unit[len(unit)-1] == Delimiter {
		return unit
	}
	out := make([]byte, len(unit)+1)
	copy(out, unit)
	out[len(unit)] = Delimiter
	return out
}
