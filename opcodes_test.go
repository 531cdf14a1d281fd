package tisbl

import "testing"

func TestRunEncoding(t *testing.T) {
	ft := &fakeTransport{}
	ft.pushBytes(0x00, ack) // init
	ft.pushBytes(0x00, ack) // Run ack
	d := newTestDevice(t, ft, CC2538)

	if err := d.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	last := ft.writes[len(ft.writes)-1]
	if !bytesEqual(last, []byte{0x03, cmdRun, cmdRun}) {
		t.Errorf("Run wrote % x, want 03 22 22", last)
	}
}

func TestResetEncoding(t *testing.T) {
	ft := &fakeTransport{}
	ft.pushBytes(0x00, ack) // init
	ft.pushBytes(0x00, ack) // Reset ack
	d := newTestDevice(t, ft, CC26X2)

	if err := d.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	last := ft.writes[len(ft.writes)-1]
	if !bytesEqual(last, []byte{0x03, cmdReset, cmdReset}) {
		t.Errorf("Reset wrote % x, want 03 25 25", last)
	}
}

func TestBankEraseRequiresCC26xx(t *testing.T) {
	ft := &fakeTransport{}
	ft.pushBytes(0x00, ack)
	d := newTestDevice(t, ft, CC2538)

	defer func() {
		if recover() == nil {
			t.Fatal("expected BankErase to panic on CC2538")
		}
	}()
	_ = d.BankErase()
}

func TestBankEraseEncoding(t *testing.T) {
	ft := &fakeTransport{}
	ft.pushBytes(0x00, ack) // init
	ft.pushBytes(0x00, ack) // BankErase ack
	d := newTestDevice(t, ft, CC26X0)

	if err := d.BankErase(); err != nil {
		t.Fatalf("BankErase: %v", err)
	}
	last := ft.writes[len(ft.writes)-1]
	if !bytesEqual(last, []byte{0x03, cmdBankErase, cmdBankErase}) {
		t.Errorf("BankErase wrote % x, want 03 2c 2c", last)
	}
}

func TestSetCcfgRequiresCC26xx(t *testing.T) {
	ft := &fakeTransport{}
	ft.pushBytes(0x00, ack)
	d := newTestDevice(t, ft, CC2538)

	defer func() {
		if recover() == nil {
			t.Fatal("expected SetCcfg to panic on CC2538")
		}
	}()
	_ = d.SetCcfg(0, 0)
}

func TestSetCcfgEncoding(t *testing.T) {
	ft := &fakeTransport{}
	ft.pushBytes(0x00, ack) // init
	ft.pushBytes(0x00, ack) // SetCcfg ack
	d := newTestDevice(t, ft, CC26X2)

	if err := d.SetCcfg(1, 0xFFFFFFFF); err != nil {
		t.Fatalf("SetCcfg: %v", err)
	}
	last := ft.writes[len(ft.writes)-1]
	want := []byte{0x0B, 0x2A, cmdSetCcfg, 0x00, 0x00, 0x00, 0x01, 0xFF, 0xFF, 0xFF, 0xFF}
	if !bytesEqual(last, want) {
		t.Errorf("SetCcfg wrote % x, want % x", last, want)
	}
}

func TestDownloadCrcRequiresCC26X2(t *testing.T) {
	ft := &fakeTransport{}
	ft.pushBytes(0x00, ack)
	d := newTestDevice(t, ft, CC26X0)

	defer func() {
		if recover() == nil {
			t.Fatal("expected DownloadCrc to panic on CC26X0")
		}
	}()
	_ = d.DownloadCrc(0, 0, 0)
}

func TestDownloadCrcSucceedsOnCC26X2(t *testing.T) {
	ft := &fakeTransport{}
	ft.pushBytes(0x00, ack) // init
	ft.pushBytes(0x00, ack) // DownloadCrc ack
	d := newTestDevice(t, ft, CC26X2)

	if err := d.DownloadCrc(0x1000, 256, 0xDEADBEEF); err != nil {
		t.Fatalf("DownloadCrc: %v", err)
	}
}

func TestCRC32RoundTrip(t *testing.T) {
	ft := &fakeTransport{}
	ft.pushBytes(0x00, ack) // init
	ft.pushBytes(0x00, ack) // CRC32 command ack
	ft.pushBytes(6, sum8([]byte{0x12, 0x34, 0x56, 0x78}))
	ft.pushBytes(0x12, 0x34, 0x56, 0x78)
	d := newTestDevice(t, ft, CC2538)

	got, err := d.CRC32(0x00202000, 0x1000, 0)
	if err != nil {
		t.Fatalf("CRC32: %v", err)
	}
	if got != 0x12345678 {
		t.Errorf("CRC32 = %#08x, want 0x12345678", got)
	}
}

func TestMemoryWrite32RequiresAlignment(t *testing.T) {
	ft := &fakeTransport{}
	ft.pushBytes(0x00, ack)
	d := newTestDevice(t, ft, CC26X2)

	defer func() {
		if recover() == nil {
			t.Fatal("expected MemoryWrite32 to panic on a misaligned address")
		}
	}()
	_ = d.MemoryWrite32(1, make([]byte, 4))
}

func TestMemoryWrite32Encoding(t *testing.T) {
	ft := &fakeTransport{}
	ft.pushBytes(0x00, ack) // init
	ft.pushBytes(0x00, ack) // MemoryWrite32 ack
	d := newTestDevice(t, ft, CC26X2)

	if err := d.MemoryWrite32(0x20000000, []byte{0xAA, 0xBB, 0xCC, 0xDD}); err != nil {
		t.Fatalf("MemoryWrite32: %v", err)
	}
	last := ft.writes[len(ft.writes)-1]
	if last[2] != cmdMemoryWrite {
		t.Errorf("MemoryWrite32 opcode = %#02x, want %#02x", last[2], cmdMemoryWrite)
	}
	if last[7] != 0x01 {
		t.Errorf("MemoryWrite32 access-type byte = %#02x, want 0x01", last[7])
	}
	if !bytesEqual(last[8:], []byte{0xAA, 0xBB, 0xCC, 0xDD}) {
		t.Errorf("MemoryWrite32 payload = % x, want aa bb cc dd", last[8:])
	}
}
