package ui

import (
	"bytes"
	"io"
)

// Alternate-screen toggles stripped from program output.
var (
	altScreenEnable  = []byte("\x1b[?1049h")
	altScreenDisable = []byte("\x1b[?1049l")
)

// altScreenFilter is a streaming writer that suppresses the alternate-screen
// enable/disable control sequences and forwards everything else unchanged.
// Partial prefixes of the sequences are buffered, not emitted, until they
// are disambiguated.
type altScreenFilter struct {
	out     io.Writer
	pending []byte
}

func newAltScreenFilter(out io.Writer) *altScreenFilter {
	return &altScreenFilter{out: out}
}

func (f *altScreenFilter) Write(p []byte) (int, error) {
	f.pending = append(f.pending, p...)

	for len(f.pending) > 0 {
		i := bytes.IndexByte(f.pending, 0x1b)
		if i < 0 {
			if err := f.flush(len(f.pending)); err != nil {
				return len(p), err
			}
			break
		}

		// Emit everything before the escape.
		if i > 0 {
			if err := f.flush(i); err != nil {
				return len(p), err
			}
		}

		tail := f.pending
		switch {
		case bytes.HasPrefix(tail, altScreenEnable), bytes.HasPrefix(tail, altScreenDisable):
			f.pending = f.pending[len(altScreenEnable):]
		case bytes.HasPrefix(altScreenEnable, tail) || bytes.HasPrefix(altScreenDisable, tail):
			// A prefix of a suppressed sequence: wait for more bytes.
			return len(p), nil
		default:
			// An escape that is not one of ours; emit it and move on.
			if err := f.flush(1); err != nil {
				return len(p), err
			}
		}
	}
	return len(p), nil
}

// flush writes the first n pending bytes through.
func (f *altScreenFilter) flush(n int) error {
	_, err := f.out.Write(f.pending[:n])
	f.pending = f.pending[n:]
	return err
}
