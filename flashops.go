package tisbl

import "fmt"

// Transfer describes one contiguous flash-write segment: the bytes to
// write, where they start, and whether the bootloader is expected to ACK
// each chunk. ExpectAck is false only for a CC26xx CCFG tail segment, which
// may lock the device before it can reply.
type Transfer struct {
	Data         []byte
	StartAddress uint32
	ExpectAck    bool
}

// EraseRange erases byteCount bytes of flash starting at startAddress,
// using whichever erase primitive the device's Family supports. On
// CC26X0/CC26X2 this issues one SectorErase per sector (rounding byteCount
// up to a whole number of sectors) followed by a GetStatus poll; a
// non-success status aborts immediately.
func EraseRange(d *Device, startAddress, byteCount uint32) error {
	family := d.Family()

	switch {
	case family.SupportsErase():
		return d.Erase(startAddress, byteCount)

	case family.SupportsSectorErase():
		sectorSize := family.SectorSize()
		sectorCount := byteCount / sectorSize
		if byteCount%sectorSize != 0 {
			sectorCount++
		}

		for i := uint32(0); i < sectorCount; i++ {
			sectorAddress := startAddress + i*sectorSize
			if err := d.SectorErase(sectorAddress); err != nil {
				return err
			}
			status, err := d.GetStatus()
			if err != nil {
				return err
			}
			if status != StatusSuccess {
				return statusError("SectorErase", status)
			}
		}
		return nil

	default:
		badRequest("no erase command supported on %s", family)
		return nil // unreachable
	}
}

// WriteRange writes each Transfer in order: a Download, then one SendData
// per MaxBytesPerTransfer-sized chunk. Transfers with ExpectAck true get a
// GetStatus poll after every chunk and abort on the first NACK or
// non-success status; transfers with ExpectAck false (the CCFG tail) send
// their chunks without checking either, since the device may self-lock
// before it can reply.
func WriteRange(d *Device, transfers []Transfer) error {
	for txferIndex, transfer := range transfers {
		if err := d.Download(transfer.StartAddress, uint32(len(transfer.Data))); err != nil {
			return err
		}
		status, err := d.GetStatus()
		if err != nil {
			return err
		}
		if status != StatusSuccess {
			return statusError("Download", status)
		}

		bytesLeft := len(transfer.Data)
		dataOffset := 0
		chunkIndex := 0

		for bytesLeft > 0 {
			chunkSize := bytesLeft
			if chunkSize > MaxBytesPerTransfer {
				chunkSize = MaxBytesPerTransfer
			}
			chunk := transfer.Data[dataOffset : dataOffset+chunkSize]
			chunkAddr := transfer.StartAddress + uint32(dataOffset)

			chunkAck, err := d.SendData(chunk)
			if err != nil {
				return err
			}

			if transfer.ExpectAck {
				if !chunkAck {
					return &SendDataNackError{
						TransferIndex: txferIndex,
						ChunkIndex:    chunkIndex,
						ChunkAddress:  chunkAddr,
						Page:          d.Family().AddressToPage(chunkAddr),
					}
				}
				status, err := d.GetStatus()
				if err != nil {
					return err
				}
				if status != StatusSuccess {
					return statusError("SendData", status)
				}
			}

			bytesLeft -= chunkSize
			dataOffset += chunkSize
			chunkIndex++
		}
	}
	return nil
}

// SplitForCCFG decides how a binary image should be split into Transfers so
// that writing it never clobbers the CC26xx CCFG unless the caller asked
// for that with force.
//
// overwrites_ccfg compares the image's end address (start plus length) with
// >= against the CCFG's start offset, so an image that ends exactly where
// the CCFG begins, with its last byte just before the CCFG's first byte, is
// treated as overlapping even though it does not touch the CCFG. This is
// deliberately conservative; see DESIGN.md, "Open Question decisions", #2.
//
// On CC2538, or on CC26xx when the image doesn't reach the CCFG, a single
// Transfer with ExpectAck true is returned. On CC26xx when the image
// reaches the CCFG and force is true, two Transfers are returned: the
// non-CCFG prefix (ExpectAck true) and the CCFGSize-byte tail (ExpectAck
// false). On CC26xx when the image reaches the CCFG and force is false, an
// error is returned instead of a panic: this is bad input from the caller,
// not an internal contract violation.
func SplitForCCFG(family Family, flashSize, startAddress uint32, binary []byte, force bool) ([]Transfer, error) {
	ccfgAware := family == CC26X0 || family == CC26X2

	var overwritesCCFG bool
	if ccfgAware {
		ccfgOffset := flashSize - CCFGSize
		binaryEndAddr := startAddress + uint32(len(binary))
		overwritesCCFG = binaryEndAddr >= ccfgOffset
	}

	if ccfgAware && overwritesCCFG && !force {
		return nil, fmt.Errorf("ti-sbl: binary may overwrite the CCFG at %#08x; pass force to flash it anyway", flashSize-CCFGSize)
	}

	if ccfgAware && overwritesCCFG {
		split := len(binary) - CCFGSize
		return []Transfer{
			{Data: binary[:split], StartAddress: startAddress, ExpectAck: true},
			{Data: binary[split:], StartAddress: startAddress + uint32(split), ExpectAck: false},
		}, nil
	}

	return []Transfer{
		{Data: binary, StartAddress: startAddress, ExpectAck: true},
	}, nil
}

// FlashOptions configures FlashImage.
type FlashOptions struct {
	// PreErase, when true, erases the image's footprint before writing it
	// (leaving an untouched CCFG alone when the image doesn't intend to
	// rewrite it).
	PreErase bool
	// Force allows an image that reaches into the CCFG to be written on
	// CC26xx. Ignored on CC2538.
	Force bool
}

// FlashImage is the composite operation cmd/ccflash drives a -flash
// invocation through: it validates the image's bounds against flash_size,
// computes the CCFG-preserving split, optionally pre-erases, and writes the
// result.
func FlashImage(d *Device, flashSize, startAddress uint32, binary []byte, opts FlashOptions) error {
	family := d.Family()

	if uint32(len(binary)) > flashSize {
		return fmt.Errorf("ti-sbl: binary of %d bytes is larger than flash_size %d", len(binary), flashSize)
	}
	if startAddress < family.FlashBase() {
		return fmt.Errorf("ti-sbl: start address %#08x is below flash_base %#08x", startAddress, family.FlashBase())
	}
	if startAddress+uint32(len(binary)) > family.FlashBase()+flashSize {
		return fmt.Errorf("ti-sbl: binary would end past the end of flash (end %#08x, flash_base+flash_size %#08x)",
			startAddress+uint32(len(binary)), family.FlashBase()+flashSize)
	}

	transfers, err := SplitForCCFG(family, flashSize, startAddress, binary, opts.Force)
	if err != nil {
		return err
	}

	if opts.PreErase {
		eraseLen := uint32(len(binary))
		if len(transfers) == 2 {
			eraseLen -= CCFGSize
		}
		if err := EraseRange(d, startAddress, eraseLen); err != nil {
			return err
		}
	}

	return WriteRange(d, transfers)
}
