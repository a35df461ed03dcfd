// Package symres is the binary symbol resolution core: given a path to an
// ELF or PE executable, it builds a unified name->address symbol index and
// exposes it through a single read-only Resolve operation.
//
// The two format back-ends (ELF, PE) are modeled as a tagged variant behind
// one Image type rather than a class hierarchy: Open classifies the file,
// and every other operation (Resolve, GOT, PLT, Symbols, IAT, EAT) is a
// plain method that looks at Image.Format to know which maps are populated.
package symres

import "errors"

// Format identifies which binary container an Image was parsed from.
type Format int

const (
	FormatELF Format = iota
	FormatPE
)

func (f Format) String() string {
	if f == FormatPE {
		return "PE"
	}
	return "ELF"
}

// Arch identifies the instruction set an Image targets. Only these four are
// accepted by the PLT resolver; ELF/PE parsing otherwise proceeds regardless
// of architecture.
type Arch int

const (
	ArchUnknown Arch = iota
	ArchX86_32
	ArchX86_64
	ArchARM32
	ArchARM64
)

func (a Arch) String() string {
	switch a {
	case ArchX86_32:
		return "x86_32"
	case ArchX86_64:
		return "x86_64"
	case ArchARM32:
		return "arm32"
	case ArchARM64:
		return "arm64"
	default:
		return "unknown"
	}
}

// Endianness is the byte order of multi-byte fields in the image.
type Endianness int

const (
	LittleEndian Endianness = iota
	BigEndian
)

// Image is an opened binary: raw bytes plus everything the parsers derived
// from them. It is immutable after Open returns and safe to share across
// goroutines for Resolve/GOT/PLT/Symbols/IAT/EAT reads.
type Image struct {
	path   string
	raw    []byte
	format Format
	arch   Arch
	endian Endianness
	bits   int // 32 or 64

	elf *elfImage // populated when format == FormatELF
	pe  *peImage  // populated when format == FormatPE

	got     map[string]uint64 // ELF only
	plt     map[string]uint64 // ELF only
	iat     map[string]uint64 // PE only
	eat     map[string]uint64 // PE only
	symbols map[string]uint64 // unified index, both formats
}

// Path returns the resolved, absolute path the image was opened from.
func (img *Image) Path() string { return img.path }

// Format returns ELF or PE.
func (img *Image) Format() Format { return img.format }

// Arch returns the image's instruction set, or ArchUnknown if it could not
// be determined (ELF or PE machine values this core does not know).
func (img *Image) Arch() Arch { return img.arch }

// Bitness returns 32 or 64.
func (img *Image) Bitness() int { return img.bits }

// Endian returns the image's byte order.
func (img *Image) Endian() Endianness { return img.endian }

// Open reads the file at path (resolved via the filesystem then PATH),
// classifies it as PE or ELF, parses it, and builds the full symbol index
// including PLT resolution for ELF images. cfg optionally overrides the PLT
// resolver's defaults; at most one is consulted.
func Open(path string, cfg ...Config) (*Image, error) {
	resolved, raw, err := readFile(path)
	if err != nil {
		return nil, err
	}

	resolverCfg := DefaultConfig()
	if len(cfg) > 0 {
		resolverCfg = cfg[0]
	}

	// Format detection attempts PE first, then ELF; see §4.1. A format-
	// detection miss (bad magic) falls through to the next parser; a
	// malformed-but-recognized file's error propagates as-is.
	peImg, peErr := openPE(resolved, raw)
	if peErr == nil {
		return peImg, nil
	}
	if !isUnsupportedFormat(peErr) {
		return nil, peErr
	}

	elfImg, elfErr := openELF(resolved, raw, resolverCfg)
	if elfErr == nil {
		return elfImg, nil
	}
	if !isUnsupportedFormat(elfErr) {
		return nil, elfErr
	}

	return nil, errf(UnsupportedFormat, "open "+resolved, nil)
}

func isUnsupportedFormat(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == UnsupportedFormat
	}
	return false
}

// Resolve returns the virtual address bound to name, or SymbolNotFound.
func (img *Image) Resolve(name string) (uint64, error) {
	addr, ok := img.symbols[name]
	if !ok {
		return 0, errf(SymbolNotFound, "resolve "+name, nil)
	}
	return addr, nil
}

// Symbols returns a copy of the unified symbol index for diagnostics.
func (img *Image) Symbols() map[string]uint64 {
	return cloneMap(img.symbols)
}

// GOT returns a copy of the ELF GOT map (nil for PE images).
func (img *Image) GOT() map[string]uint64 { return cloneMap(img.got) }

// PLT returns a copy of the ELF PLT map (nil for PE images).
func (img *Image) PLT() map[string]uint64 { return cloneMap(img.plt) }

// IAT returns a copy of the PE import map (nil for ELF images).
func (img *Image) IAT() map[string]uint64 { return cloneMap(img.iat) }

// EAT returns a copy of the PE export map (nil for ELF images).
func (img *Image) EAT() map[string]uint64 { return cloneMap(img.eat) }

func cloneMap(m map[string]uint64) map[string]uint64 {
	if m == nil {
		return nil
	}
	out := make(map[string]uint64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
