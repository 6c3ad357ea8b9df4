package peer

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/PatricioDieck/tcp-peer/pkg/lineproto"
)

// Source supplies local send units: whole lines in line mode, single keystrokes
// in raw mode. Next returns io.EOF when the operator closes the input stream.
type Source interface {
	Next() ([]byte, error)
	Close() error
}

type lineSource struct {
	r *bufio.Reader
}

// Lines returns a line-oriented Source. Each unit is one line including its
// delimiter; a final unterminated line is still delivered as a unit.
func Lines(r io.Reader) Source {
	return &lineSource{r: bufio.NewReader(r)}
}

func (s *lineSource) Next() ([]byte, error) {
	line, err := s.r.ReadBytes(lineproto.Delimiter)
	if len(line) > 0 {
		return line, nil
	}
	if err == nil {
		err = io.EOF
	}
	return nil, err
}

func (s *lineSource) Close() error { return nil }

// Quit keys recognized by the keystroke source. Raw mode disables the
// terminal's signal keys, so end-of-session is detected here instead.
const (
	keyETX = 0x03 // Ctrl-C
	keyEOT = 0x04 // Ctrl-D
)

type keySource struct {
	f    *os.File
	prev *term.State
}

// Keys returns a keystroke-oriented Source reading one byte per unit from f.
// When f is a terminal it is switched to raw mode; Close restores the previous
// state, so callers must defer Close on every exit path.
func Keys(f *os.File) (Source, error) {
	s := &keySource{f: f}
	fd := int(f.Fd())
	if term.IsTerminal(fd) {
		prev, err := term.MakeRaw(fd)
		if err != nil {
			return nil, fmt.Errorf("enable raw terminal mode: %w", err)
		}
		s.prev = prev
	}
	return s, nil
}

func (s *keySource) Next() ([]byte, error) {
	b := make([]byte, 1)
	n, err := s.f.Read(b)
	if n == 1 {
		if b[0] == keyETX || b[0] == keyEOT {
			return nil, io.EOF
		}
		return b, nil
	}
	if err == nil {
		err = io.EOF
	}
	return nil, err
}

func (s *keySource) Close() error {
	if s.prev == nil {
		return nil
	}
	return term.Restore(int(s.f.Fd()), s.prev)
}
