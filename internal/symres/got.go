package symres

import (
	"debug/elf"
	"fmt"

	"github.com/reversewire/symres/internal/rlog"
)

// buildGOT walks every relocation section and records symbol_name -> r_offset
// for each relocation with a non-zero symbol index (§4.3). Callers must only
// invoke this for dynamically linked images; statically linked images get an
// empty map without calling this at all.
func buildGOT(f *elf.File) (map[string]uint64, error) {
	got := make(map[string]uint64)

	for _, sec := range f.Sections {
		if sec.Type != elf.SHT_REL && sec.Type != elf.SHT_RELA {
			continue
		}
		if sec.Link == 0 { // SHN_UNDEF: no linked symbol table
			continue
		}
		if int(sec.Link) >= len(f.Sections) {
			return nil, fmt.Errorf("relocation section %q: symbol table link %d out of range", sec.Name, sec.Link)
		}

		symSec := f.Sections[sec.Link]
		syms, err := decodeSymtabSection(f, symSec)
		if err != nil {
			return nil, fmt.Errorf("relocation section %q: %w", sec.Name, err)
		}

		data, err := sec.Data()
		if err != nil {
			return nil, fmt.Errorf("read relocation section %q: %w", sec.Name, err)
		}

		relocs, err := decodeRelocs(f, sec, data)
		if err != nil {
			return nil, fmt.Errorf("relocation section %q: %w", sec.Name, err)
		}

		for _, r := range relocs {
			if r.Sym == 0 {
				continue
			}
			idx := int(r.Sym)
			if idx >= len(syms) {
				continue
			}
			if syms[idx].Name == "" {
				continue
			}
			got[syms[idx].Name] = r.Offset
		}
	}

	rlog.L.Debug("built GOT map", zapInt("entries", len(got)))
	return got, nil
}
