package symres

import (
	"bytes"
	"debug/elf"

	"github.com/reversewire/symres/internal/rlog"
)

// elfImage holds the parsed ELF facts an Image needs beyond the unified
// maps: the raw *elf.File (kept for PLT resolution, which needs section
// bytes and DT_PLTGOT) and whether the image is dynamically linked.
type elfImage struct {
	file    *elf.File
	dynamic bool // PT_INTERP present
}

// archFromMachine maps e_machine to the four architectures the PLT resolver
// understands. Any other machine yields ArchUnknown. GOT parsing does not
// depend on it; resolvePLT rejects ArchUnknown with UnsupportedArchitecture
// whenever the GOT map is non-empty, and that error aborts Open (§4.2, §7).
func archFromMachine(m elf.Machine) Arch {
	switch m {
	case elf.EM_386:
		return ArchX86_32
	case elf.EM_X86_64:
		return ArchX86_64
	case elf.EM_ARM:
		return ArchARM32
	case elf.EM_AARCH64:
		return ArchARM64
	default:
		return ArchUnknown
	}
}

// openELF parses raw as an ELF image and builds its full symbol index.
func openELF(path string, raw []byte, cfg Config) (*Image, error) {
	f, err := elf.NewFile(bytes.NewReader(raw))
	if err != nil {
		kind := UnsupportedFormat
		if bytes.HasPrefix(raw, []byte(elf.ELFMAG)) {
			kind = MalformedElf
		}
		return nil, errf(kind, "parse ELF header for "+path, err)
	}

	bits := 32
	if f.Class == elf.ELFCLASS64 {
		bits = 64
	}
	endian := LittleEndian
	if f.Data == elf.ELFDATA2MSB {
		endian = BigEndian
	}

	dynamic := false
	for _, p := range f.Progs {
		if p.Type == elf.PT_INTERP {
			dynamic = true
			break
		}
	}

	img := &Image{
		path:   path,
		raw:    raw,
		format: FormatELF,
		arch:   archFromMachine(f.Machine),
		endian: endian,
		bits:   bits,
		elf:    &elfImage{file: f, dynamic: dynamic},
	}

	// §4.2: statically linked images short-circuit GOT/PLT to empty maps.
	got := map[string]uint64{}
	plt := map[string]uint64{}
	if dynamic {
		got, err = buildGOT(f)
		if err != nil {
			return nil, errf(MalformedElf, "build GOT for "+path, err)
		}

		plt, err = resolvePLT(f, got, cfg)
		if err != nil {
			// PLT resolution failures (missing DT_PLTGOT, unsupported
			// architecture, emulator setup) are construction-time failures
			// per §7 and abort the open.
			return nil, err
		}
	}

	symbols, err := aggregateELFSymbols(f, plt, got)
	if err != nil {
		return nil, errf(MalformedElf, "aggregate symbols for "+path, err)
	}

	img.got = got
	img.plt = plt
	img.symbols = symbols

	rlog.L.Debug("opened ELF image",
		rlog.Section(path),
		zapArch(img.arch),
	)

	return img, nil
}

// sectionByName returns the first section whose name equals name, or nil.
func sectionByName(f *elf.File, name string) *elf.Section {
	for _, s := range f.Sections {
		if s.Name == name {
			return s
		}
	}
	return nil
}
