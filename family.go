package tisbl

import "fmt"

// Family identifies which TI bootloader variant a Device is talking to. It
// is a closed set: CC2538, CC26X0/CC13X0 and CC26X2/CC13X2 each gate a
// different subset of the opcode table and use a different sector size.
type Family int

const (
	// CC2538 covers the CC2538 family.
	CC2538 Family = iota
	// CC26X0 covers the CC26x0 and CC13x0 families.
	CC26X0
	// CC26X2 covers the CC26x2 and CC13x2 families.
	CC26X2
)

func (f Family) String() string {
	switch f {
	case CC2538:
		return "cc2538"
	case CC26X0:
		return "cc26x0"
	case CC26X2:
		return "cc26x2"
	default:
		return fmt.Sprintf("Family(%d)", int(f))
	}
}

// ParseFamily parses the family names accepted by cmd/ccflash's -family flag.
func ParseFamily(s string) (Family, error) {
	switch s {
	case "cc2538", "CC2538":
		return CC2538, nil
	case "cc26x0", "CC26X0":
		return CC26X0, nil
	case "cc26x2", "CC26X2":
		return CC26X2, nil
	default:
		return 0, fmt.Errorf("invalid family %q: must be one of cc2538, cc26x0, cc26x2", s)
	}
}

// FlashBase returns the start address of flash for this family.
func (f Family) FlashBase() uint32 {
	switch f {
	case CC2538:
		return 0x00200000
	default:
		return 0x00000000
	}
}

// SectorSize returns the erase-granularity of flash for this family, in
// bytes.
//
// CC26X0 is 4092 here, not the 4096 the datasheet lists; see DESIGN.md,
// "Open Question decisions", #1.
func (f Family) SectorSize() uint32 {
	switch f {
	case CC2538:
		return 2048
	case CC26X0:
		return 4092
	case CC26X2:
		return 8192
	default:
		panic(ProgrammingError{fmt.Sprintf("unknown family %d", int(f))})
	}
}

// AddressToPage converts a flash address to its sector/page number. The
// caller is responsible for ensuring address is sector-aligned when the
// result feeds SectorErase; AddressToPage itself is used only for error
// reporting and does not require alignment.
func (f Family) AddressToPage(address uint32) uint32 {
	return (address - f.FlashBase()) / f.SectorSize()
}

// SupportsErase reports whether the whole-range Erase command is available.
func (f Family) SupportsErase() bool { return f == CC2538 }

// SupportsSectorErase reports whether SectorErase is available.
func (f Family) SupportsSectorErase() bool { return f == CC26X0 || f == CC26X2 }

// SupportsSetXosc reports whether SetXosc is available.
func (f Family) SupportsSetXosc() bool { return f == CC2538 }

// SupportsBankErase reports whether BankErase is available.
func (f Family) SupportsBankErase() bool { return f == CC26X0 || f == CC26X2 }

// SupportsSetCcfg reports whether SetCcfg is available.
func (f Family) SupportsSetCcfg() bool { return f == CC26X0 || f == CC26X2 }

// SupportsDownloadCrc reports whether DownloadCrc is available.
func (f Family) SupportsDownloadCrc() bool { return f == CC26X2 }

// SupportsRun reports whether Run is available.
func (f Family) SupportsRun() bool { return f == CC2538 }

// SupportsMemoryRead32 reports whether MemoryRead32/MemoryWrite32 are
// available. Not supported on CC2538.
func (f Family) SupportsMemoryRead32() bool { return f != CC2538 }
