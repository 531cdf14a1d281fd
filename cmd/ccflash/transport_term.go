package main

import (
	"time"

	"github.com/pkg/term"
)

// termTransport adapts *term.Term to tisbl.Transport. The serial device is
// opened in raw mode; timeouts are applied afterward with SetOption so the
// adapter can satisfy SetReadTimeout at any point in a Device's lifetime,
// not just at open time.
type termTransport struct {
	t *term.Term
}

// openTermTransport opens path at baud in raw mode.
func openTermTransport(path string, baud int) (*termTransport, error) {
	t, err := term.Open(path, term.Speed(baud), term.RawMode)
	if err != nil {
		return nil, err
	}
	return &termTransport{t: t}, nil
}

func (tt *termTransport) Read(p []byte) (int, error)  { return tt.t.Read(p) }
func (tt *termTransport) Write(p []byte) (int, error) { return tt.t.Write(p) }
func (tt *termTransport) Close() error                { return tt.t.Close() }

// SetReadTimeout maps the duration onto termios VTIME (tenths of a second,
// clamped to 1..255) with VMIN=0, so a Read returns (0, nil) once the
// interval passes with nothing received.
func (tt *termTransport) SetReadTimeout(d time.Duration) error {
	ds := d / (100 * time.Millisecond)
	if ds < 1 {
		ds = 1
	}
	if ds > 255 {
		ds = 255
	}
	return tt.t.SetOption(term.Vmin(0), term.Vtime(byte(ds)))
}
