package tisbl

import (
	"io"
	"time"
)

// ackDeadline bounds how long Framer.ReadAck will wait for the ACK/NACK
// pair to show up, across any number of transient per-read timeouts.
const ackDeadline = 1 * time.Second

// Framer implements the SBI wire format on top of a Transport: packet
// encode/decode, the checksum, and the ACK/NACK handshake. It holds no
// protocol state of its own beyond the Transport it wraps.
type Framer struct {
	t Transport
}

func newFramer(t Transport) *Framer {
	return &Framer{t: t}
}

// WriteCommand emits [length, checksum, cmd, data...] where length is the
// full packet length (3 + len(data)) and checksum is (cmd + sum(data)) mod
// 256. len(data) above 252 bytes would push length past the wire's 255-byte
// limit, which is a programming error inside this package, not a device
// fault.
func (f *Framer) WriteCommand(cmd byte, data []byte) error {
	if len(data) > MaxBytesPerTransfer {
		badRequest("command %#02x payload of %d bytes exceeds %d-byte limit", cmd, len(data), MaxBytesPerTransfer)
	}

	pktLen := 3 + len(data)
	if pktLen > maxPacketLen {
		badRequest("command %#02x packet length %d exceeds %d-byte limit", cmd, pktLen, maxPacketLen)
	}

	sum := cmd
	for _, b := range data {
		sum += b
	}

	pkt := make([]byte, 0, pktLen)
	pkt = append(pkt, byte(pktLen), sum, cmd)
	pkt = append(pkt, data...)

	if _, err := f.t.Write(pkt); err != nil {
		return commErrorf("write command packet", err)
	}
	return nil
}

// ReadAck reads bytes one at a time until the trailing two bytes are
// 0x00,ACK (true) or 0x00,NACK (false), tolerating any number of transient
// per-Read timeouts along the way. It gives up after ackDeadline.
func (f *Framer) ReadAck() (bool, error) {
	deadline := time.Now().Add(ackDeadline)

	window := [2]byte{0xFF, 0xFF}
	var b [1]byte
	for {
		n, err := f.t.Read(b[:])
		if err != nil && err != io.EOF {
			return false, commErrorf("read ack", err)
		}
		if n == 0 {
			if err == io.EOF {
				return false, commErrorf("read ack", io.ErrUnexpectedEOF)
			}
			// Transient timeout: keep polling until the deadline.
		} else {
			window[0], window[1] = window[1], b[0]
		}

		if window[0] == 0x00 && window[1] == ack {
			return true, nil
		}
		if window[0] == 0x00 && window[1] == nack {
			return false, nil
		}

		if time.Now().After(deadline) {
			return false, commErrorf("read ack", errTimedOut)
		}
	}
}

// WriteAck writes the two-byte host-to-device acknowledgement frame.
func (f *Framer) WriteAck(ackValue bool) error {
	token := byte(nack)
	if ackValue {
		token = ack
	}
	if _, err := f.t.Write([]byte{0x00, token}); err != nil {
		return commErrorf("write ack", err)
	}
	return nil
}

// ReadResponse reads a [totalLen, checksum] header followed by exactly
// len(response) payload bytes into response. response's length must equal
// the payload length the header declares; any mismatch is a programming
// error, since only this package's own command methods ever choose that
// length.
func (f *Framer) ReadResponse(response []byte) error {
	var hdr [2]byte
	if err := f.readFull(hdr[:]); err != nil {
		return commErrorf("read response header", err)
	}

	payloadLen := int(hdr[0]) - len(hdr)
	if payloadLen != len(response) {
		badRequest("response buffer length %d does not match declared payload length %d", len(response), payloadLen)
	}

	if err := f.readFull(response); err != nil {
		return commErrorf("read response payload", err)
	}

	var sum byte
	for _, b := range response {
		sum += b
	}
	if sum != hdr[1] {
		return commErrorf("read response", errChecksumMismatch(hdr[1], sum))
	}

	return nil
}

func (f *Framer) readFull(buf []byte) error {
	read := 0
	for read < len(buf) {
		n, err := f.t.Read(buf[read:])
		if err != nil && err != io.EOF {
			return err
		}
		if n == 0 {
			if err == io.EOF {
				return io.ErrUnexpectedEOF
			}
			continue
		}
		read += n
	}
	return nil
}
