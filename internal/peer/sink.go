package peer

import (
	"fmt"
	"io"
)

// Sink receives inbound data for display. Message delivers one complete framed
// message with the delimiter stripped; Stream delivers raw bytes (inbound
// passthrough and local echo in raw mode).
type Sink interface {
	Message(line []byte) error
	Stream(chunk []byte) error
}

// ConsoleSink writes peer output to W, prefixing framed messages.
type ConsoleSink struct {
	W io.Writer
}

func (c ConsoleSink) Message(line []byte) error {
	_, err := fmt.Fprintf(c.W, "[peer] %s\n", line)
	return err
}

func (c ConsoleSink) Stream(chunk []byte) error {
	_, err := c.W.Write(chunk)
	return err
}
