package symres

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"fmt"
)

// rawSymbol is one decoded entry from an ELF symbol table section, after
// resolving its name through the section's linked string table.
type rawSymbol struct {
	Name  string
	Value uint64
}

// rawReloc is one decoded entry from a REL or RELA section.
type rawReloc struct {
	Offset uint64
	Sym    uint32
}

// lookupStrtab resolves a NUL-terminated string at nameOff within a string
// table's raw bytes. Running off the end of the table is fatal (§4.3).
func lookupStrtab(data []byte, nameOff uint32) (string, error) {
	if int(nameOff) >= len(data) {
		return "", fmt.Errorf("name offset %d beyond string table of size %d", nameOff, len(data))
	}
	end := int(nameOff)
	for end < len(data) && data[end] != 0 {
		end++
	}
	if end >= len(data) {
		return "", fmt.Errorf("unterminated string at offset %d", nameOff)
	}
	return string(data[nameOff:end]), nil
}

// decodeSymtabSection parses symSec as an ELF symbol table (Elf32_Sym or
// Elf64_Sym entries, per the image's container) and resolves every entry's
// name through symSec's linked string table.
func decodeSymtabSection(f *elf.File, symSec *elf.Section) ([]rawSymbol, error) {
	data, err := symSec.Data()
	if err != nil {
		return nil, fmt.Errorf("read symbol table %q: %w", symSec.Name, err)
	}

	if int(symSec.Link) >= len(f.Sections) {
		return nil, fmt.Errorf("symbol table %q: string table link %d out of range", symSec.Name, symSec.Link)
	}
	strSec := f.Sections[symSec.Link]
	strData, err := strSec.Data()
	if err != nil {
		return nil, fmt.Errorf("read string table %q: %w", strSec.Name, err)
	}

	is64 := f.Class == elf.ELFCLASS64
	entSize := 16
	if is64 {
		entSize = 24
	}

	var out []rawSymbol
	for off := 0; off+entSize <= len(data); off += entSize {
		var nameOff uint32
		var value uint64
		if is64 {
			var sym elf.Sym64
			if err := binary.Read(bytes.NewReader(data[off:off+entSize]), f.ByteOrder, &sym); err != nil {
				return nil, fmt.Errorf("symbol table %q: decode entry at %d: %w", symSec.Name, off, err)
			}
			nameOff, value = sym.Name, sym.Value
		} else {
			var sym elf.Sym32
			if err := binary.Read(bytes.NewReader(data[off:off+entSize]), f.ByteOrder, &sym); err != nil {
				return nil, fmt.Errorf("symbol table %q: decode entry at %d: %w", symSec.Name, off, err)
			}
			nameOff, value = sym.Name, uint64(sym.Value)
		}

		name, err := lookupStrtab(strData, nameOff)
		if err != nil {
			return nil, fmt.Errorf("symbol table %q: %w", symSec.Name, err)
		}
		out = append(out, rawSymbol{Name: name, Value: value})
	}
	return out, nil
}

// decodeRelocs parses data as a REL or RELA section, per the image's
// container/endianness.
func decodeRelocs(f *elf.File, sec *elf.Section, data []byte) ([]rawReloc, error) {
	is64 := f.Class == elf.ELFCLASS64
	withAddend := sec.Type == elf.SHT_RELA

	var entSize int
	switch {
	case is64 && withAddend:
		entSize = 24
	case is64 && !withAddend:
		entSize = 16
	case !is64 && withAddend:
		entSize = 12
	default:
		entSize = 8
	}

	var out []rawReloc
	for off := 0; off+entSize <= len(data); off += entSize {
		r := bytes.NewReader(data[off : off+entSize])
		switch {
		case is64 && withAddend:
			var rel elf.Rela64
			if err := binary.Read(r, f.ByteOrder, &rel); err != nil {
				return nil, fmt.Errorf("%s: decode rela64 at %d: %w", sec.Name, off, err)
			}
			out = append(out, rawReloc{Offset: rel.Off, Sym: elf.R_SYM64(rel.Info)})
		case is64 && !withAddend:
			var rel elf.Rel64
			if err := binary.Read(r, f.ByteOrder, &rel); err != nil {
				return nil, fmt.Errorf("%s: decode rel64 at %d: %w", sec.Name, off, err)
			}
			out = append(out, rawReloc{Offset: rel.Off, Sym: elf.R_SYM64(rel.Info)})
		case !is64 && withAddend:
			var rel elf.Rela32
			if err := binary.Read(r, f.ByteOrder, &rel); err != nil {
				return nil, fmt.Errorf("%s: decode rela32 at %d: %w", sec.Name, off, err)
			}
			out = append(out, rawReloc{Offset: uint64(rel.Off), Sym: elf.R_SYM32(rel.Info)})
		default:
			var rel elf.Rel32
			if err := binary.Read(r, f.ByteOrder, &rel); err != nil {
				return nil, fmt.Errorf("%s: decode rel32 at %d: %w", sec.Name, off, err)
			}
			out = append(out, rawReloc{Offset: uint64(rel.Off), Sym: elf.R_SYM32(rel.Info)})
		}
	}
	return out, nil
}
