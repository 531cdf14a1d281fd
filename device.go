package tisbl

import (
	"encoding/binary"
	"time"
)

// defaultReadTimeout is applied to the transport by NewDevice.
const defaultReadTimeout = 200 * time.Millisecond

// Device is a live connection to one TI SBI bootloader. It owns the
// Transport for its lifetime and is not safe for concurrent use: the
// protocol is strictly half-duplex request/response, so only one goroutine
// may issue commands on a given Device at a time.
type Device struct {
	family Family
	framer *Framer
	t      Transport
}

// NewDevice takes ownership of t, sets its read timeout to 200ms, and
// synchronizes with the bootloader: a dummy zero-opcode command is sent
// first, and auto-baud (0x55 0x55) is attempted only if reading its
// acknowledgement fails outright — a NACK reply already proves the device
// is latched onto the host's baud rate and framing correctly. The
// device must already be in bootloader mode; entering bootloader mode is
// the caller's responsibility (see cmd/ccflash's boot-entry pin toggle).
func NewDevice(t Transport, family Family) (*Device, error) {
	if err := t.SetReadTimeout(defaultReadTimeout); err != nil {
		return nil, commErrorf("set initial read timeout", err)
	}

	d := &Device{family: family, framer: newFramer(t), t: t}

	if err := d.initCommunications(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Device) initCommunications() error {
	if err := d.framer.WriteCommand(0x00, nil); err == nil {
		if _, err := d.framer.ReadAck(); err == nil {
			// Even a NACK means the device is framing our bytes
			// correctly; only a failed read calls for auto-baud.
			return nil
		}
	}
	return d.autoBaud()
}

func (d *Device) autoBaud() error {
	if _, err := d.t.Write([]byte{0x55, 0x55}); err != nil {
		return commErrorf("auto-baud", err)
	}
	ok, err := d.framer.ReadAck()
	if err != nil || !ok {
		return commErrorf("auto-baud", ErrNotConnected)
	}
	return nil
}

// Family returns the family this Device was constructed with.
func (d *Device) Family() Family { return d.family }

// SetReadTimeout overrides the transport read timeout NewDevice set by
// default.
func (d *Device) SetReadTimeout(dur time.Duration) error {
	return d.t.SetReadTimeout(dur)
}

// Close releases the underlying transport. The Device must not be used
// afterwards.
func (d *Device) Close() error {
	return d.t.Close()
}

func be32(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

// Ping sends the bootloader a no-op command and reports whether it was
// acknowledged.
func (d *Device) Ping() (bool, error) {
	if err := d.framer.WriteCommand(cmdPing, nil); err != nil {
		return false, err
	}
	return d.framer.ReadAck()
}

// Download prepares the bootloader to receive programSize bytes at
// programAddress via subsequent SendData calls. Must be followed by
// GetStatus to confirm the address/size were accepted.
func (d *Device) Download(programAddress, programSize uint32) error {
	data := append(be32(programAddress), be32(programSize)...)
	if err := d.framer.WriteCommand(cmdDownload, data); err != nil {
		return err
	}
	ok, err := d.framer.ReadAck()
	if err != nil {
		return err
	}
	if !ok {
		return nackError("Download")
	}
	return nil
}

// GetStatus retrieves the status byte of the last destructive command.
func (d *Device) GetStatus() (byte, error) {
	if err := d.framer.WriteCommand(cmdGetStatus, nil); err != nil {
		return 0, err
	}
	ok, err := d.framer.ReadAck()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nackError("GetStatus")
	}

	var resp [1]byte
	if err := d.framer.ReadResponse(resp[:]); err != nil {
		return 0, err
	}
	if err := d.framer.WriteAck(true); err != nil {
		return 0, err
	}
	return resp[0], nil
}

// SendData writes up to MaxBytesPerTransfer bytes of a Download'd image.
// The returned bool is the ACK: true means the bootloader advanced its
// write cursor, false means it did not and the same chunk may be
// retransmitted at the same address. Every command but this one treats a
// NACK as a hard failure; SendData's retry policy is entirely the caller's
// decision, which is why it returns the raw ACK instead of an error.
func (d *Device) SendData(data []byte) (bool, error) {
	if len(data) == 0 || len(data) > MaxBytesPerTransfer {
		badRequest("SendData payload of %d bytes must be 1-%d bytes", len(data), MaxBytesPerTransfer)
	}
	if err := d.framer.WriteCommand(cmdSendData, data); err != nil {
		return false, err
	}
	return d.framer.ReadAck()
}

// Erase performs a whole-range erase. Only supported on CC2538.
func (d *Device) Erase(address, byteCount uint32) error {
	if !d.family.SupportsErase() {
		badRequest("Erase is not supported on %s", d.family)
	}
	data := append(be32(address), be32(byteCount)...)
	if err := d.framer.WriteCommand(cmdErase, data); err != nil {
		return err
	}
	ok, err := d.framer.ReadAck()
	if err != nil {
		return err
	}
	if !ok {
		return nackError("Erase")
	}
	return nil
}

// SectorErase erases a single sector starting at address. Only supported on
// CC26X0/CC26X2, and address must be sector-aligned.
func (d *Device) SectorErase(address uint32) error {
	if !d.family.SupportsSectorErase() {
		badRequest("SectorErase is not supported on %s", d.family)
	}
	if (address-d.family.FlashBase())%d.family.SectorSize() != 0 {
		badRequest("SectorErase address %#08x is not sector-aligned for %s", address, d.family)
	}
	if err := d.framer.WriteCommand(cmdSectorErase, be32(address)); err != nil {
		return err
	}
	ok, err := d.framer.ReadAck()
	if err != nil {
		return err
	}
	if !ok {
		return nackError("SectorErase")
	}
	return nil
}

// GetChipID reads the device's 32-bit chip identifier.
func (d *Device) GetChipID() (uint32, error) {
	if err := d.framer.WriteCommand(cmdGetChipID, nil); err != nil {
		return 0, err
	}
	ok, err := d.framer.ReadAck()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nackError("GetChipID")
	}

	var resp [4]byte
	if err := d.framer.ReadResponse(resp[:]); err != nil {
		return 0, err
	}
	if err := d.framer.WriteAck(true); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(resp[:]), nil
}

// SetXosc switches the device to its crystal oscillator. Only supported on
// CC2538.
func (d *Device) SetXosc() error {
	if !d.family.SupportsSetXosc() {
		badRequest("SetXosc is not supported on %s", d.family)
	}
	if err := d.framer.WriteCommand(cmdSetXosc, nil); err != nil {
		return err
	}
	ok, err := d.framer.ReadAck()
	if err != nil {
		return err
	}
	if !ok {
		return nackError("SetXosc")
	}
	return nil
}

// MemoryRead32 reads len(data)/4 32-bit words starting at address into
// data. address must be 4-byte aligned, data's length must be a multiple of
// 4 and at most 63*4 bytes (the wire count field is one byte, one word per
// count). Not supported on CC2538 as a user-facing command (that family's
// ROM answers 0x2A with a different, single-value payload shape).
// ReadFlashSize and ReadIEEEAddress use the unexported memoryRead32 below,
// which has no family gate and sends the same addr||type||count request on
// every family, CC2538 included.
func (d *Device) MemoryRead32(address uint32, data []byte) error {
	if !d.family.SupportsMemoryRead32() {
		badRequest("MemoryRead32 is not supported on %s", d.family)
	}
	return d.memoryRead32(address, data)
}

func (d *Device) memoryRead32(address uint32, data []byte) error {
	if address&0x03 != 0 {
		badRequest("MemoryRead32 address %#08x is not 4-byte aligned", address)
	}
	if len(data) == 0 || len(data)%4 != 0 {
		badRequest("MemoryRead32 buffer length %d is not a positive multiple of 4", len(data))
	}
	count := len(data) / 4
	if count > 63 {
		badRequest("MemoryRead32 count %d exceeds 63-word wire limit", count)
	}

	req := append(be32(address), 1, byte(count))
	if err := d.framer.WriteCommand(cmdMemoryRead, req); err != nil {
		return err
	}
	ok, err := d.framer.ReadAck()
	if err != nil {
		return err
	}
	if !ok {
		return nackError("MemoryRead32")
	}

	if err := d.framer.ReadResponse(data); err != nil {
		return err
	}
	return d.framer.WriteAck(true)
}

// MemoryWrite32 writes data (a multiple of 4 bytes) to a 4-byte-aligned
// address using the same access-type field as MemoryRead32. Not supported
// on CC2538.
func (d *Device) MemoryWrite32(address uint32, data []byte) error {
	if !d.family.SupportsMemoryRead32() {
		badRequest("MemoryWrite32 is not supported on %s", d.family)
	}
	if address&0x03 != 0 {
		badRequest("MemoryWrite32 address %#08x is not 4-byte aligned", address)
	}
	if len(data) == 0 || len(data)%4 != 0 {
		badRequest("MemoryWrite32 buffer length %d is not a positive multiple of 4", len(data))
	}

	req := append(be32(address), 1)
	req = append(req, data...)
	if err := d.framer.WriteCommand(cmdMemoryWrite, req); err != nil {
		return err
	}
	ok, err := d.framer.ReadAck()
	if err != nil {
		return err
	}
	if !ok {
		return nackError("MemoryWrite32")
	}
	return nil
}

// Run jumps to the programmed image. Only supported on CC2538. There is no
// response: a successful Run means the device has left the bootloader.
func (d *Device) Run() error {
	if !d.family.SupportsRun() {
		badRequest("Run is not supported on %s", d.family)
	}
	if err := d.framer.WriteCommand(cmdRun, nil); err != nil {
		return err
	}
	ok, err := d.framer.ReadAck()
	if err != nil {
		return err
	}
	if !ok {
		return nackError("Run")
	}
	return nil
}

// Reset soft-resets the device. The caller must reconnect (construct a new
// Device over a fresh Transport) afterwards.
func (d *Device) Reset() error {
	if err := d.framer.WriteCommand(cmdReset, nil); err != nil {
		return err
	}
	ok, err := d.framer.ReadAck()
	if err != nil {
		return err
	}
	if !ok {
		return nackError("Reset")
	}
	return nil
}

// BankErase erases the whole flash bank except its last sector. Only
// supported on CC26X0/CC26X2. Callers should follow with GetStatus.
func (d *Device) BankErase() error {
	if !d.family.SupportsBankErase() {
		badRequest("BankErase is not supported on %s", d.family)
	}
	if err := d.framer.WriteCommand(cmdBankErase, nil); err != nil {
		return err
	}
	ok, err := d.framer.ReadAck()
	if err != nil {
		return err
	}
	if !ok {
		return nackError("BankErase")
	}
	return nil
}

// SetCcfg writes a single CCFG field by its field ID. Only supported on
// CC26X0/CC26X2. Callers should follow with GetStatus.
func (d *Device) SetCcfg(fieldID, value uint32) error {
	if !d.family.SupportsSetCcfg() {
		badRequest("SetCcfg is not supported on %s", d.family)
	}
	data := append(be32(fieldID), be32(value)...)
	if err := d.framer.WriteCommand(cmdSetCcfg, data); err != nil {
		return err
	}
	ok, err := d.framer.ReadAck()
	if err != nil {
		return err
	}
	if !ok {
		return nackError("SetCcfg")
	}
	return nil
}

// DownloadCrc behaves like Download but also hands the ROM a CRC32 it can
// validate the incoming image against. Only supported on CC26X2. Callers
// should follow with GetStatus.
func (d *Device) DownloadCrc(programAddress, programSize, crc uint32) error {
	if !d.family.SupportsDownloadCrc() {
		badRequest("DownloadCrc is not supported on %s", d.family)
	}
	data := be32(programAddress)
	data = append(data, be32(programSize)...)
	data = append(data, be32(crc)...)
	if err := d.framer.WriteCommand(cmdDownloadCrc, data); err != nil {
		return err
	}
	ok, err := d.framer.ReadAck()
	if err != nil {
		return err
	}
	if !ok {
		return nackError("DownloadCrc")
	}
	return nil
}

// CRC32 asks the device to compute a CRC32 over byteCount bytes of flash
// starting at address, reading each word readRepeat times (readRepeat is
// normally 0). Available on all families.
func (d *Device) CRC32(address, byteCount, readRepeat uint32) (uint32, error) {
	data := be32(address)
	data = append(data, be32(byteCount)...)
	data = append(data, be32(readRepeat)...)
	if err := d.framer.WriteCommand(cmdCRC32, data); err != nil {
		return 0, err
	}
	ok, err := d.framer.ReadAck()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nackError("CRC32")
	}

	var resp [4]byte
	if err := d.framer.ReadResponse(resp[:]); err != nil {
		return 0, err
	}
	if err := d.framer.WriteAck(true); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(resp[:]), nil
}
