package main

import (
	"fmt"

	tisbl "github.com/tinkerator/ti-sbl"
	"zappem.net/pub/debug/xcrc32"
)

// verifyCRC cross-checks a just-written image against the device's own CRC32
// command, without reading the flash contents back over the wire.
func verifyCRC(d *tisbl.Device, address uint32, image []byte) error {
	_, want := xcrc32.NewCRC32(image)

	got, err := d.CRC32(address, uint32(len(image)), 0)
	if err != nil {
		return fmt.Errorf("device CRC32 at %#08x: %w", address, err)
	}
	if got != want {
		return fmt.Errorf("crc mismatch at %#08x: device=0x%08x host=0x%08x", address, got, want)
	}
	return nil
}
