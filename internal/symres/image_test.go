package symres

import "testing"

func TestFormatString(t *testing.T) {
	if FormatELF.String() != "ELF" {
		t.Errorf("FormatELF.String() = %q, want ELF", FormatELF.String())
	}
	if FormatPE.String() != "PE" {
		t.Errorf("FormatPE.String() = %q, want PE", FormatPE.String())
	}
}

func TestArchString(t *testing.T) {
	cases := map[Arch]string{
		ArchX86_32:  "x86_32",
		ArchX86_64:  "x86_64",
		ArchARM32:   "arm32",
		ArchARM64:   "arm64",
		ArchUnknown: "unknown",
	}
	for a, want := range cases {
		if got := a.String(); got != want {
			t.Errorf("Arch(%d).String() = %q, want %q", a, got, want)
		}
	}
}

func TestCloneMapIsIndependentCopy(t *testing.T) {
	orig := map[string]uint64{"puts": 0x1000}
	clone := cloneMap(orig)

	clone["puts"] = 0xdead
	if orig["puts"] != 0x1000 {
		t.Error("mutating the clone must not affect the original map")
	}
}

func TestCloneMapNil(t *testing.T) {
	if cloneMap(nil) != nil {
		t.Error("cloneMap(nil) should return nil")
	}
}

func TestImageAccessorsForPEImageExposeNilELFMaps(t *testing.T) {
	img := &Image{
		format: FormatPE,
		iat:    map[string]uint64{"CreateFileA": 0x100},
		eat:    map[string]uint64{"SetCurrentDirectoryA": 0x200},
	}

	if img.GOT() != nil {
		t.Error("a PE image should report a nil GOT map")
	}
	if img.PLT() != nil {
		t.Error("a PE image should report a nil PLT map")
	}
	if addr := img.IAT()["CreateFileA"]; addr != 0x100 {
		t.Errorf("IAT()[CreateFileA] = 0x%x, want 0x100", addr)
	}
}

func TestResolveMissingSymbol(t *testing.T) {
	img := &Image{symbols: map[string]uint64{"puts": 0x1000}}

	if _, err := img.Resolve("does_not_exist"); err == nil {
		t.Error("expected an error resolving an unknown symbol")
	} else if e, ok := err.(*Error); !ok || e.Kind != SymbolNotFound {
		t.Errorf("expected a SymbolNotFound *Error, got %v", err)
	}

	addr, err := img.Resolve("puts")
	if err != nil || addr != 0x1000 {
		t.Errorf("Resolve(puts) = (0x%x, %v), want (0x1000, nil)", addr, err)
	}
}
