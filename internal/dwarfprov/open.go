package dwarfprov

import (
	"debug/dwarf"
	"debug/elf"
	"debug/macho"
	"debug/pe"
	"fmt"
)

// openBinary opens path as an ELF, Mach-O, or PE binary and returns its
// DWARF data plus the target pointer size in bytes.
func openBinary(path string) (*dwarf.Data, int64, error) {
	if f, err := elf.Open(path); err == nil {
		defer f.Close()
		data, err := f.DWARF()
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %v", ErrNoDWARF, err)
		}
		size := int64(4)
		if f.Class == elf.ELFCLASS64 {
			size = 8
		}
		return data, size, nil
	}

	if f, err := macho.Open(path); err == nil {
		defer f.Close()
		data, err := f.DWARF()
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %v", ErrNoDWARF, err)
		}
		size := int64(4)
		if f.Magic == macho.Magic64 {
			size = 8
		}
		return data, size, nil
	}

	if f, err := pe.Open(path); err == nil {
		defer f.Close()
		data, err := f.DWARF()
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %v", ErrNoDWARF, err)
		}
		size := int64(4)
		if _, ok := f.OptionalHeader.(*pe.OptionalHeader64); ok {
			size = 8
		}
		return data, size, nil
	}

	return nil, 0, fmt.Errorf("%w: %s", ErrUnsupportedBinary, path)
}
