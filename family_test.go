package tisbl

import "testing"

func TestAddressToPage(t *testing.T) {
	cases := []struct {
		family  Family
		address uint32
		want    uint32
	}{
		{CC2538, 0x00200000, 0},
		{CC2538, 0x00200000 + 2048, 1},
		{CC26X0, 0, 0},
		{CC26X0, 4092, 1},
		{CC26X2, 0x2000, 1},
	}
	for _, c := range cases {
		if got := c.family.AddressToPage(c.address); got != c.want {
			t.Errorf("%s.AddressToPage(%#x) = %d, want %d", c.family, c.address, got, c.want)
		}
	}
}

func TestFamilyCapabilities(t *testing.T) {
	if !CC2538.SupportsErase() || CC26X0.SupportsErase() || CC26X2.SupportsErase() {
		t.Error("SupportsErase capability mismatch")
	}
	if CC2538.SupportsSectorErase() || !CC26X0.SupportsSectorErase() || !CC26X2.SupportsSectorErase() {
		t.Error("SupportsSectorErase capability mismatch")
	}
	if !CC2538.SupportsSetXosc() || CC26X0.SupportsSetXosc() {
		t.Error("SupportsSetXosc capability mismatch")
	}
	if CC2538.SupportsBankErase() || !CC26X0.SupportsBankErase() {
		t.Error("SupportsBankErase capability mismatch")
	}
	if CC2538.SupportsSetCcfg() || !CC26X2.SupportsSetCcfg() {
		t.Error("SupportsSetCcfg capability mismatch")
	}
	if CC26X0.SupportsDownloadCrc() || !CC26X2.SupportsDownloadCrc() {
		t.Error("SupportsDownloadCrc capability mismatch")
	}
	if !CC2538.SupportsRun() || CC26X2.SupportsRun() {
		t.Error("SupportsRun capability mismatch")
	}
	if CC2538.SupportsMemoryRead32() || !CC26X0.SupportsMemoryRead32() {
		t.Error("SupportsMemoryRead32 capability mismatch")
	}
}

func TestParseFamily(t *testing.T) {
	cases := map[string]Family{
		"cc2538": CC2538, "CC2538": CC2538,
		"cc26x0": CC26X0, "CC26X0": CC26X0,
		"cc26x2": CC26X2, "CC26X2": CC26X2,
	}
	for s, want := range cases {
		got, err := ParseFamily(s)
		if err != nil {
			t.Fatalf("ParseFamily(%q): %v", s, err)
		}
		if got != want {
			t.Errorf("ParseFamily(%q) = %v, want %v", s, got, want)
		}
	}
	if _, err := ParseFamily("bogus"); err == nil {
		t.Error("ParseFamily(\"bogus\") should have failed")
	}
}
