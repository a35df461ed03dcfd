package symres

import (
	"fmt"

	"github.com/saferwall/pe"

	"github.com/reversewire/symres/internal/rlog"
)

// PE machine constants, as recorded in the COFF file header. Mirrored here
// rather than pulled from a dependency so the architecture switch reads the
// same way the ELF one does.
const (
	peMachineI386  = 0x14c
	peMachineAMD64 = 0x8664
	peMachineARM   = 0x1c0
	peMachineARM64 = 0xaa64
)

// peImage holds the parsed saferwall/pe handle; PLT resolution never
// touches PE images, so this is much thinner than elfImage.
type peImage struct {
	file *pe.File
}

func archFromPEMachine(m uint16) Arch {
	switch uint32(m) {
	case peMachineI386:
		return ArchX86_32
	case peMachineAMD64:
		return ArchX86_64
	case peMachineARM:
		return ArchARM32
	case peMachineARM64:
		return ArchARM64
	default:
		return ArchUnknown
	}
}

// openPE parses raw as a PE image and builds its import/export maps. A
// parse failure on a buffer without the MZ magic is reported as
// UnsupportedFormat so Open falls through to the ELF parser; a parse failure
// on a buffer that starts with MZ, and any later failure, is MalformedPe.
func openPE(path string, raw []byte) (*Image, error) {
	parseKind := UnsupportedFormat
	if len(raw) >= 2 && raw[0] == 'M' && raw[1] == 'Z' {
		parseKind = MalformedPe
	}
	f, err := pe.NewBytes(raw, &pe.Options{})
	if err != nil {
		return nil, errf(parseKind, "parse PE header for "+path, err)
	}
	if err := f.Parse(); err != nil {
		return nil, errf(parseKind, "parse PE structures for "+path, err)
	}

	bits := 32
	if f.Is64 {
		bits = 64
	}

	img := &Image{
		path:   path,
		raw:    raw,
		format: FormatPE,
		arch:   archFromPEMachine(f.NtHeader.FileHeader.Machine),
		endian: LittleEndian, // PE is always little-endian per the COFF spec
		bits:   bits,
		pe:     &peImage{file: f},
	}

	iat := buildIAT(f)
	eat, err := buildEAT(f)
	if err != nil {
		return nil, errf(MalformedPe, "build EAT for "+path, err)
	}

	img.iat = iat
	img.eat = eat
	img.symbols = aggregatePESymbols(eat, iat)

	rlog.L.Debug("opened PE image", rlog.Section(path), zapArch(img.arch))

	return img, nil
}

// buildIAT records import_name -> thunk RVA for every imported function,
// per §4.6. The thunk RVA plays the same structural role the ELF GOT slot
// offset does: the location a loader patches in with the resolved address.
func buildIAT(f *pe.File) map[string]uint64 {
	iat := make(map[string]uint64)
	for _, imp := range f.Imports {
		for _, fn := range imp.Functions {
			name := fn.Name
			if name == "" {
				if !fn.ByOrdinal {
					continue
				}
				name = fmt.Sprintf("ordinal_%d", fn.Ordinal)
			}
			iat[name] = uint64(fn.ThunkRVA)
		}
	}
	return iat
}

// buildEAT records export_name -> rva for every exported function, per
// §4.6. Unnamed exports are synthesized as ordinal_<N>, matching the
// round-trip property in §8.
func buildEAT(f *pe.File) (map[string]uint64, error) {
	eat := make(map[string]uint64)
	for _, fn := range f.Export.Functions {
		name := fn.Name
		if name == "" {
			name = fmt.Sprintf("ordinal_%d", fn.Ordinal)
		}
		eat[name] = uint64(fn.RVA)
	}
	return eat, nil
}

// aggregatePESymbols merges EAT and IAT into one unified map per §4.6:
// exports ingest first (eat.<name> and bare <name>), then imports
// (iat.<name> and bare <name> only if not already present). Priority on
// bare names: EAT over IAT.
func aggregatePESymbols(eat, iat map[string]uint64) map[string]uint64 {
	symbols := make(map[string]uint64, len(eat)+len(iat))

	for name, addr := range eat {
		symbols["eat."+name] = addr
		symbols[name] = addr
	}

	for name, addr := range iat {
		symbols["iat."+name] = addr
		if _, exists := symbols[name]; !exists {
			symbols[name] = addr
		}
	}

	return symbols
}
