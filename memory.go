package tisbl

import "encoding/binary"

// InvalidIEEEAddress is the sentinel value ReadIEEEAddress's secondary
// address takes when no secondary address is programmed.
var InvalidIEEEAddress = [8]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}

const (
	cc2538FlashCtrlDiecfg0 = 0x400D3014
	cc26xxFlashOFlashSize  = 0x4003002C
	cc2538IEEEAddrPrimary  = 0x00280028
	cc2538IEEEAddrSecond   = 0x0027FFCC
	cc26xxFCFG1MAC1540     = 0x000002F0
)

// ReadFlashSize reads the device's flash size, in bytes, from its
// flash-size register: DIECFG0 bits [6:4] on CC2538 (mapped through the
// datasheet's 64K/128K/256K/384K/512K table, with any unrecognized code
// falling back to 64K), or FLASH_O_FLASH_SIZE's low byte times the family's
// sector size on CC26xx. This reads through Device's unexported memoryRead32
// rather than the public MemoryRead32, which refuses CC2538; see device.go.
func ReadFlashSize(d *Device) (uint32, error) {
	switch d.Family() {
	case CC2538:
		var reg [4]byte
		if err := d.memoryRead32(cc2538FlashCtrlDiecfg0, reg[:]); err != nil {
			return 0, err
		}
		flashCtrl := binary.LittleEndian.Uint32(reg[:])
		code := (flashCtrl >> 4) & 0x07
		switch code {
		case 0:
			return 0x10000, nil
		case 1:
			return 0x20000, nil
		case 2:
			return 0x40000, nil
		case 3:
			return 0x60000, nil
		case 4:
			return 0x80000, nil
		default:
			return 0x10000, nil
		}

	default: // CC26X0, CC26X2
		var reg [4]byte
		if err := d.memoryRead32(cc26xxFlashOFlashSize, reg[:]); err != nil {
			return 0, err
		}
		sectorCount := binary.LittleEndian.Uint32(reg[:]) & 0xFF
		return sectorCount * d.Family().SectorSize(), nil
	}
}

// ReadIEEEAddress reads the device's primary and secondary IEEE 802.15.4g
// addresses. primaryAddr is always meaningful; secondaryAddr equal to
// InvalidIEEEAddress means no secondary address is programmed.
func ReadIEEEAddress(d *Device) (primaryAddr, secondaryAddr [8]byte, err error) {
	var primaryOffset, secondaryOffset uint32

	switch d.Family() {
	case CC2538:
		primaryOffset = cc2538IEEEAddrPrimary
		secondaryOffset = cc2538IEEEAddrSecond

	default: // CC26X0, CC26X2
		primaryOffset = cc26xxFCFG1MAC1540

		flashSize, ferr := ReadFlashSize(d)
		if ferr != nil {
			return primaryAddr, secondaryAddr, ferr
		}
		secondaryOffset = flashSize - CCFGSize + 0x20
	}

	if err := d.memoryRead32(primaryOffset, primaryAddr[:]); err != nil {
		return primaryAddr, secondaryAddr, err
	}
	if err := d.memoryRead32(secondaryOffset, secondaryAddr[:]); err != nil {
		return primaryAddr, secondaryAddr, err
	}
	return primaryAddr, secondaryAddr, nil
}
