package symres

import (
	"debug/elf"
	"fmt"

	"github.com/reversewire/symres/internal/rlog"
)

// shtSunwLdynsym is SHT_SUNW_LDYNSYM, the Solaris-style local dynamic symbol
// table. debug/elf does not define this constant, and per §9 some
// binary-parsing libraries skip it entirely; we treat it as equivalent to a
// dynamic symbol table.
const shtSunwLdynsym = 0x6FFFFFF3

// aggregateELFSymbols merges static symbol tables, PLT entries, and GOT
// entries into one unified map per §4.5: static wins over PLT, which wins
// over GOT, on bare-name collisions; prefixed variants are always
// materialized. A malformed static-symbol section (bad link index, string
// table overrun) is fatal, per §7, to avoid silent name corruption.
func aggregateELFSymbols(f *elf.File, plt, got map[string]uint64) (map[string]uint64, error) {
	symbols := make(map[string]uint64)

	for _, sec := range f.Sections {
		t := uint32(sec.Type)
		if t != uint32(elf.SHT_SYMTAB) && t != uint32(elf.SHT_DYNSYM) && t != shtSunwLdynsym {
			continue
		}

		syms, err := decodeSymtabSection(f, sec)
		if err != nil {
			return nil, fmt.Errorf("symbol section %q: %w", sec.Name, err)
		}

		for _, s := range syms {
			if s.Value == 0 || s.Name == "" {
				continue
			}
			symbols[s.Name] = s.Value
		}
	}

	mergeELFSymbolLayers(symbols, plt, got)

	rlog.L.Debug("aggregated ELF symbol index", zapInt("entries", len(symbols)))
	return symbols, nil
}

// mergeELFSymbolLayers folds plt then got into static, which already holds
// the static-symbol-table entries. Bare-name collisions resolve in favor of
// whichever layer inserted first: static, then plt, then got. Prefixed
// "plt."/"got." variants are always materialized regardless of collision.
func mergeELFSymbolLayers(static, plt, got map[string]uint64) {
	for name, addr := range plt {
		static["plt."+name] = addr
		if _, exists := static[name]; !exists {
			static[name] = addr
		}
	}

	for name, addr := range got {
		static["got."+name] = addr
		if _, exists := static[name]; !exists {
			static[name] = addr
		}
	}
}
