// Package dwarfprov implements layout.Provider on top of DWARF debug
// information. It reads the layout facts a compiler has already computed
// into a binary's debug info: member offsets, bit offsets, inheritance,
// sizes, and declaration coordinates.
//
// DWARF describes the Itanium C++ convention, so the Microsoft-only facts
// (own vftable/vbtable pointers, vtordisp requirements) are always reported
// absent.
package dwarfprov

import (
	"debug/dwarf"
	"errors"
	"fmt"
	"iter"

	"go.uber.org/zap"

	"github.com/nedwardsnae/StructLayout/layout"
)

// Sentinel errors for common conditions.
var (
	// ErrUnsupportedBinary indicates the file is not an ELF, Mach-O, or PE
	// binary.
	ErrUnsupportedBinary = errors.New("dwarfprov: unsupported binary format")

	// ErrNoDWARF indicates the binary carries no DWARF debug info.
	ErrNoDWARF = errors.New("dwarfprov: no DWARF debug info")
)

// Provider reads declarations and layout facts from one binary's DWARF
// data. It is built once per binary and queried by a single goroutine.
type Provider struct {
	data   *dwarf.Data
	target layout.Target

	// source is the translation-unit source file being inspected.
	// Candidates come only from compilation units matching it; empty means
	// no candidates (enumeration only).
	source string

	types      map[dwarf.Offset]*typeInfo
	records    []*record
	candidates []layout.Candidate

	fileIDs    map[string]uint64
	alignCache map[dwarf.Offset]int64
}

// Open reads the binary at path and indexes the DWARF info of the
// compilation units built from source. source may be empty when only
// record enumeration is needed.
func Open(path, source string) (*Provider, error) {
	data, pointerSize, err := openBinary(path)
	if err != nil {
		return nil, err
	}

	p := &Provider{
		data: data,
		target: layout.Target{
			PointerSize:  pointerSize,
			PointerAlign: pointerSize,
		},
		source:     source,
		types:      make(map[dwarf.Offset]*typeInfo),
		fileIDs:    make(map[string]uint64),
		alignCache: make(map[dwarf.Offset]int64),
	}

	if err := p.index(); err != nil {
		return nil, fmt.Errorf("dwarfprov: indexing %s: %w", path, err)
	}

	Logger().Debug("indexed binary",
		zap.String("path", path),
		zap.String("source", source),
		zap.Int("records", len(p.records)),
		zap.Int("candidates", len(p.candidates)))

	return p, nil
}

// Target returns the binary's pointer shape.
func (p *Provider) Target() layout.Target { return p.target }

// Candidates enumerates the record and variable declarations found in the
// inspected source file.
func (p *Provider) Candidates() iter.Seq[layout.Candidate] {
	return func(yield func(layout.Candidate) bool) {
		for _, c := range p.candidates {
			if !yield(c) {
				return
			}
		}
	}
}

// Records enumerates every complete record indexed from the binary, in
// encounter order.
func (p *Provider) Records() iter.Seq[layout.Record] {
	return func(yield func(layout.Record) bool) {
		for _, rec := range p.records {
			if !rec.Complete() {
				continue
			}
			if !yield(rec) {
				return
			}
		}
	}
}

// fileID returns a stable identity for a filename within this provider.
func (p *Provider) fileID(name string) uint64 {
	if id, ok := p.fileIDs[name]; ok {
		return id
	}
	id := uint64(len(p.fileIDs) + 1)
	p.fileIDs[name] = id
	return id
}
