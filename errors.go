package tisbl

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrNotConnected is wrapped by the *CommError returned from NewDevice when
// neither the initial communications check nor auto-baud gets a response
// out of the device.
var ErrNotConnected = errors.New("ti-sbl: device not connected or not in bootloader mode")

// CommError reports a transport-level failure: a read/write error from the
// underlying Transport, an unexpected end of stream, an ACK deadline
// expiring, or a response whose checksum doesn't match its payload (a
// response length that differs from the caller's buffer is a
// ProgrammingError panic instead). The caller may retry at a higher level (e.g. reopening the serial
// port) but nothing inside this package retries on its own.
type CommError struct {
	Op  string
	Err error
}

func (e *CommError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("ti-sbl: %s", e.Op)
	}
	return fmt.Sprintf("ti-sbl: %s: %v", e.Op, e.Err)
}

func (e *CommError) Unwrap() error { return e.Err }

func commErrorf(op string, err error) *CommError {
	return &CommError{Op: op, Err: err}
}

// ProtocolError reports that the device itself rejected a command: a NACK
// on a command that has no retry contract, or a non-StatusSuccess result
// from GetStatus following a destructive command. Command names the SBI
// operation that failed; Status and the derived mnemonic are only set when
// the failure came from a GetStatus poll rather than a bare NACK.
type ProtocolError struct {
	Command   string
	Status    byte
	HasStatus bool
	Cause     error
}

func (e *ProtocolError) Error() string {
	if e.HasStatus {
		return fmt.Sprintf("ti-sbl: %s failed: %s (%#02x)", e.Command, StatusMnemonic(e.Status), e.Status)
	}
	return fmt.Sprintf("ti-sbl: %s not acknowledged", e.Command)
}

func (e *ProtocolError) Unwrap() error { return e.Cause }

func nackError(command string) error {
	return &ProtocolError{Command: command, Cause: errors.Errorf("%s: NACK received", command)}
}

func statusError(command string, status byte) error {
	return &ProtocolError{
		Command:   command,
		Status:    status,
		HasStatus: true,
		Cause:     errors.Errorf("%s: device returned %s (%#02x)", command, StatusMnemonic(status), status),
	}
}

// SendDataNackError is the error WriteRange returns when a SendData chunk
// whose transfer requires an ACK is NACKed. It is its own type, not a
// *ProtocolError. It
// carries enough context (chunk index/address/page, transfer index) for the
// caller to report exactly where flashing stopped.
type SendDataNackError struct {
	TransferIndex int
	ChunkIndex    int
	ChunkAddress  uint32
	Page          uint32
}

func (e *SendDataNackError) Error() string {
	return fmt.Sprintf(
		"ti-sbl: chunk #%d of transfer #%d not acknowledged at address %#08x (page %d)",
		e.ChunkIndex, e.TransferIndex, e.ChunkAddress, e.Page,
	)
}

// ProgrammingError is the value panicked with when a caller violates a
// contract that is a bug, not a device fault: issuing a command the
// selected Family doesn't support, a misaligned sector address, an
// oversized SendData payload, a response buffer of the wrong length, or a
// misaligned/oversized MemoryRead32 request. It is never returned as an
// error.
type ProgrammingError struct {
	Reason string
}

func (e ProgrammingError) Error() string {
	return fmt.Sprintf("ti-sbl: programming error: %s", e.Reason)
}

func badRequest(format string, args ...interface{}) {
	panic(ProgrammingError{Reason: fmt.Sprintf(format, args...)})
}

// errTimedOut is wrapped by Framer.ReadAck when the 1-second ACK deadline
// expires without seeing a complete ACK/NACK frame.
var errTimedOut = errors.New("ti-sbl: timed out waiting for ack")

func errChecksumMismatch(want, got byte) error {
	return errors.Errorf("checksum mismatch: packet says %#02x, computed %#02x", want, got)
}
