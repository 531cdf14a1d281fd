// Program ccflash synchronizes with a TI SBI ROM bootloader over a serial
// line, reports the connected chip's identity, and optionally programs a
// binary image into its flash.
package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"

	tisbl "github.com/tinkerator/ti-sbl"
	"zappem.net/pub/debug/xxd"
)

var (
	port          = flag.String("port", "/dev/ttyACM0", "serial port the target is connected to")
	familyName    = flag.String("family", "cc26x2", "target family: cc2538, cc26x0, cc26x2")
	baud          = flag.Int("baud", 115200, "serial baud rate")
	address       = flag.Int("address", 0, "flash address to program the image at")
	flashPath     = flag.String("flash", "", "path to the binary image to program")
	erase         = flag.Bool("erase", false, "erase the image's footprint before writing it")
	force         = flag.Bool("force", false, "allow an image that overwrites the CCFG on cc26x0/cc26x2")
	blInvoke      = flag.Bool("bl-invoke", false, "toggle DTR/RTS to force the target into bootloader mode before connecting (linux only)")
	blInverted    = flag.Bool("bl-inverted", false, "swap which line (DTR/RTS) carries the bootloader-select signal")
	blActiveLow   = flag.Bool("bl-active-low", false, "the bootloader-select line is active low")
	verifyCrcFlag = flag.Bool("verify-crc", false, "cross-check a written image against the device's own CRC32 command")
	debug         = flag.Bool("debug", false, "be more verbose")
)

func main() {
	flag.Parse()

	family, err := tisbl.ParseFamily(*familyName)
	if err != nil {
		log.Fatalf("-family: %v", err)
	}

	if *blInverted && !*blInvoke {
		log.Fatal("-bl-inverted requires -bl-invoke")
	}
	if *blActiveLow && !*blInvoke {
		log.Fatal("-bl-active-low requires -bl-invoke")
	}

	if *blInvoke {
		if *debug {
			log.Printf("invoking bootloader on %q", *port)
		}
		if err := invokeBootloader(*port, *blInverted, !*blActiveLow); err != nil {
			log.Fatalf("failed to invoke bootloader: %v", err)
		}
	}

	t, err := openTermTransport(*port, *baud)
	if err != nil {
		log.Fatalf("failed to open %q: %v", *port, err)
	}

	d, err := tisbl.NewDevice(t, family)
	if err != nil {
		log.Fatalf("failed to synchronize with the bootloader on %q: %v", *port, err)
	}
	defer d.Close()

	ok, err := d.Ping()
	if err != nil {
		log.Fatalf("ping failed: %v", err)
	}
	if !ok {
		log.Fatal("ping was not acknowledged")
	}

	flashSize, err := tisbl.ReadFlashSize(d)
	if err != nil {
		log.Fatalf("failed to read flash size: %v", err)
	}
	log.Printf("flash size: %d KiB", flashSize/1024)

	chipID, err := d.GetChipID()
	if err != nil {
		log.Fatalf("failed to read chip ID: %v", err)
	}
	log.Printf("chip ID: %#08x", chipID)
	if *debug {
		xxd.Print(0, be32(chipID))
	}

	primary, secondary, err := tisbl.ReadIEEEAddress(d)
	if err != nil {
		log.Fatalf("failed to read IEEE 802.15.4 address: %v", err)
	}
	log.Printf("IEEE 802.15.4g primary address: %s", formatAddr(primary))
	if secondary != tisbl.InvalidIEEEAddress {
		log.Printf("IEEE 802.15.4g secondary address: %s", formatAddr(secondary))
	}
	if *debug {
		xxd.Print(0, primary[:])
	}

	if *flashPath == "" {
		return
	}

	binary, err := ioutil.ReadFile(*flashPath)
	if err != nil {
		log.Fatalf("failed to read %q: %v", *flashPath, err)
	}
	if *debug {
		fmt.Printf("writing %q (%d bytes) to %#08x...\n", *flashPath, len(binary), *address)
	}

	opts := tisbl.FlashOptions{PreErase: *erase, Force: *force}
	if err := tisbl.FlashImage(d, flashSize, uint32(*address), binary, opts); err != nil {
		log.Fatalf("failed to flash image: %v", err)
	}
	log.Printf("wrote %d bytes to %#08x", len(binary), *address)

	if *verifyCrcFlag {
		if err := verifyCRC(d, uint32(*address), binary); err != nil {
			log.Fatalf("crc verification failed: %v", err)
		}
		log.Print("crc verification OK")
	}

	os.Exit(0)
}

func be32(v uint32) []byte {
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

func formatAddr(addr [8]byte) string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X:%02X:%02X",
		addr[0], addr[1], addr[2], addr[3], addr[4], addr[5], addr[6], addr[7])
}
