package symres

import (
	"debug/elf"
	"fmt"
	"sort"

	uc "github.com/unicorn-engine/unicorn/bindings/go/unicorn"

	"github.com/reversewire/symres/internal/rlog"
)

// pltSectionNames lists every section that may hold PLT stub code, in the
// order candidates are tried. A binary may carry more than one at once
// (.plt alongside .plt.sec on modern toolchains with IBT stubs).
var pltSectionNames = []string{".plt", ".plt.got", ".plt.sec"}

// resolvePLT names PLT stubs by emulating each 4-byte-aligned candidate
// offset within every PLT-bearing section and recording the first memory
// address the candidate touches (§4.4). A candidate whose first touch lands
// on a known GOT address is assumed to be that address's trampoline; this is
// the only link between the PLT's instruction stream and GOT's symbol names,
// since PLT stubs carry no symbol table of their own.
func resolvePLT(f *elf.File, got map[string]uint64, cfg Config) (map[string]uint64, error) {
	plt := make(map[string]uint64)
	if len(got) == 0 {
		return plt, nil
	}

	arch := archFromMachine(f.Machine)
	if arch == ArchUnknown {
		return nil, errf(UnsupportedArchitecture, "resolve PLT", fmt.Errorf("machine %v has no emulation profile", f.Machine))
	}
	endian := LittleEndian
	if f.Data == elf.ELFDATA2MSB {
		endian = BigEndian
	}

	dtPltGot, dtErr := readDTPltGot(f)

	gotTargets := make(map[uint64]string, len(got))
	for name, addr := range got {
		gotTargets[addr] = name
	}

	for _, name := range pltSectionNames {
		sec := sectionByName(f, name)
		if sec == nil {
			continue
		}
		data, err := sec.Data()
		if err != nil {
			return nil, errf(MalformedElf, "read "+name, err)
		}
		if len(data) == 0 {
			continue
		}
		if dtErr != nil {
			return nil, errf(MissingDtPltGot, "resolve PLT", dtErr)
		}

		hits, err := emulatePLTSection(arch, endian, sec.Addr, dtPltGot, data, cfg)
		if err != nil {
			return nil, err
		}

		// Ascending candidate order, so a later candidate that reads the same
		// GOT slot overwrites an earlier one.
		starts := make([]uint64, 0, len(hits))
		for pltAddr := range hits {
			starts = append(starts, pltAddr)
		}
		sort.Slice(starts, func(i, j int) bool { return starts[i] < starts[j] })
		for _, pltAddr := range starts {
			if symName, ok := gotTargets[hits[pltAddr]]; ok {
				plt[symName] = pltAddr
			}
		}
	}

	rlog.L.Debug("resolved PLT map", zapInt("entries", len(plt)))
	return plt, nil
}

// readDTPltGot returns the dynamic section's DT_PLTGOT value, the base
// address x86-32 PLT stubs expect preloaded into EBX.
func readDTPltGot(f *elf.File) (uint64, error) {
	vals, err := f.DynValue(elf.DT_PLTGOT)
	if err != nil {
		return 0, err
	}
	if len(vals) == 0 {
		return 0, fmt.Errorf("DT_PLTGOT not present in dynamic section")
	}
	return vals[0], nil
}

// unicornProfile maps an (Arch, Endianness) pair to the Unicorn (arch, mode)
// pair that emulates it. Only these four architectures are supported;
// resolvePLT rejects everything else before ever touching Unicorn. x86 has
// no big-endian mode in Unicorn, so endian only affects the ARM profiles,
// matching the image's byte order per §4.4.
func unicornProfile(a Arch, endian Endianness) (int, int, error) {
	armMode := uc.MODE_ARM
	if endian == BigEndian {
		armMode |= uc.MODE_BIG_ENDIAN
	}

	switch a {
	case ArchX86_32:
		return uc.ARCH_X86, uc.MODE_32, nil
	case ArchX86_64:
		return uc.ARCH_X86, uc.MODE_64, nil
	case ArchARM32:
		return uc.ARCH_ARM, armMode, nil
	case ArchARM64:
		return uc.ARCH_ARM64, armMode, nil
	default:
		return 0, 0, fmt.Errorf("no emulator profile for %s", a)
	}
}

// emulatePLTSection maps sectionData at sectionAddr and, for every
// candidate offset spaced cfg.CandidateStride bytes apart, runs a fresh
// emulation from that offset and records the first address touched by a
// memory read or an unmapped access. It returns candidate start address ->
// first-touched address, for every candidate that touched something.
func emulatePLTSection(arch Arch, endian Endianness, sectionAddr, dtPltGot uint64, sectionData []byte, cfg Config) (map[uint64]uint64, error) {
	ucArch, ucMode, err := unicornProfile(arch, endian)
	if err != nil {
		return nil, errf(UnsupportedArchitecture, "select emulator profile", err)
	}

	mu, err := uc.NewUnicorn(ucArch, ucMode)
	if err != nil {
		return nil, errf(EmulatorSetupFailed, "create emulator", err)
	}
	defer mu.Close()

	pageSize := cfg.PageSize
	if pageSize == 0 {
		pageSize = 4096
	}
	memStart := sectionAddr &^ (pageSize - 1)
	memEnd := (sectionAddr + uint64(len(sectionData)) + pageSize - 1) &^ (pageSize - 1)

	if err := mu.MemMapProt(memStart, memEnd-memStart, uc.PROT_READ|uc.PROT_EXEC); err != nil {
		return nil, errf(EmulatorSetupFailed, "map PLT memory", err)
	}
	if err := mu.MemWrite(sectionAddr, sectionData); err != nil {
		return nil, errf(EmulatorSetupFailed, "write PLT bytes", err)
	}

	var (
		faulted   bool
		faultAddr uint64
	)
	observe := func(addr uint64) {
		if !faulted {
			faulted = true
			faultAddr = addr
		}
	}
	readHook := func(_ uc.Unicorn, _ int, addr uint64, _ int, _ int64) {
		observe(addr)
	}
	invalidHook := func(_ uc.Unicorn, _ int, addr uint64, _ int, _ int64) bool {
		observe(addr)
		return true
	}
	// Hooks cover the whole address space (begin > end, the teacher's and
	// the original's idiom for "unbounded"), not just the mapped PLT page:
	// a stub's first memory access is its GOT read, and the GOT lives in a
	// different, unmapped segment that a [memStart, memEnd]-scoped hook
	// would never see fire.
	if _, err := mu.HookAdd(uc.HOOK_MEM_READ, readHook, 1, 0); err != nil {
		return nil, errf(EmulatorSetupFailed, "install memory read hook", err)
	}
	if _, err := mu.HookAdd(uc.HOOK_MEM_UNMAPPED, invalidHook, 1, 0); err != nil {
		return nil, errf(EmulatorSetupFailed, "install unmapped memory hook", err)
	}

	snapshot, err := mu.Context()
	if err != nil {
		return nil, errf(EmulatorSetupFailed, "snapshot emulator context", err)
	}

	stride := cfg.CandidateStride
	if stride == 0 {
		stride = 4
	}
	timeoutUS := cfg.PerCandidateTimeoutMS * 1000
	if timeoutUS == 0 {
		timeoutUS = uc.SECOND_SCALE
	}

	// x86-32 PLT stubs dereference GOT through EBX, not a PC-relative
	// encoding; every other architecture's stub is self-contained.
	preloadEBX := arch == ArchX86_32

	hits := make(map[uint64]uint64)
	for off := uint64(0); off+stride <= uint64(len(sectionData)); off += stride {
		if err := mu.RestoreContext(snapshot); err != nil {
			return nil, errf(EmulatorSetupFailed, "restore emulator context", err)
		}
		faulted = false
		faultAddr = 0

		if preloadEBX {
			if err := mu.RegWrite(uc.X86_REG_EBX, dtPltGot); err != nil {
				return nil, errf(EmulatorSetupFailed, "preload EBX with DT_PLTGOT", err)
			}
		}

		start := sectionAddr + off
		_ = mu.StartWithOptions(start, memEnd, &uc.UcOptions{
			Timeout: timeoutUS,
			Count:   int(memEnd - memStart),
		})

		if faulted && faultAddr != 0 {
			hits[start] = faultAddr
		}
	}

	return hits, nil
}
