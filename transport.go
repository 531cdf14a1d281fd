package tisbl

import (
	"io"
	"time"
)

// Transport is the byte-oriented, half-duplex serial connection a Device
// speaks the SBI protocol over. Opening the underlying port, enumerating
// candidate devices and toggling boot-entry pins are all the caller's
// responsibility (see cmd/ccflash) — this package only ever reads and
// writes bytes and adjusts the read timeout.
//
// Read must return (0, nil) on a timeout rather than blocking forever; this
// is how Framer.ReadAck distinguishes "nothing arrived yet, keep polling"
// from a hard error. Write must not return until every byte has been
// handed to the underlying line (no internal buffering left undrained).
type Transport interface {
	io.Reader
	io.Writer
	io.Closer

	// SetReadTimeout changes how long a single Read call will wait before
	// returning (0, nil). It may be called at any time, including between
	// commands.
	SetReadTimeout(d time.Duration) error
}
