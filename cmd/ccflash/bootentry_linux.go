//go:build linux

package main

import (
	"fmt"
	"time"

	serial "github.com/daedaluz/goserial"
)

// invokeBootloader pulses the target's reset line while holding its
// bootloader-select line at the level chosen for bootloader entry, then
// releases the bootloader line back to its normal operating level. It opens
// path a second, transient time purely to drive DTR/RTS; the real Transport
// is opened afterward by the caller.
//
// inverted swaps which physical line (DTR or RTS) carries the bootloader
// select signal versus the reset signal, for boards wired the other way
// around. activeHigh says whether asserting the bootloader line (driving it
// true) selects bootloader mode or normal run mode.
func invokeBootloader(path string, inverted, activeHigh bool) error {
	port, err := serial.Open(path, serial.NewOptions())
	if err != nil {
		return fmt.Errorf("open %q for boot-entry pin toggle: %w", path, err)
	}
	defer port.Close()

	if err := setBootloaderPin(port, inverted, !activeHigh); err != nil {
		return err
	}
	if err := setResetPin(port, inverted, false); err != nil {
		return err
	}
	if err := setResetPin(port, inverted, true); err != nil {
		return err
	}
	if err := setResetPin(port, inverted, false); err != nil {
		return err
	}
	time.Sleep(2 * time.Millisecond)
	return setBootloaderPin(port, inverted, activeHigh)
}

func setBootloaderPin(port *serial.Port, inverted, level bool) error {
	if inverted {
		return setModemLine(port, serial.TIOCM_RTS, level)
	}
	return setModemLine(port, serial.TIOCM_DTR, level)
}

func setResetPin(port *serial.Port, inverted, level bool) error {
	if inverted {
		return setModemLine(port, serial.TIOCM_DTR, level)
	}
	return setModemLine(port, serial.TIOCM_RTS, level)
}

func setModemLine(port *serial.Port, line serial.ModemLine, level bool) error {
	if level {
		return port.EnableModemLines(line)
	}
	return port.DisableModemLines(line)
}
