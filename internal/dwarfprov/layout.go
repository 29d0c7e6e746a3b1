package dwarfprov

import (
	"fmt"

	"github.com/nedwardsnae/StructLayout/layout"
)

// Layout assembles the placement facts for one record. DWARF describes the
// Itanium ABI, so vfptr/vbptr ownership and vtordisp never appear here; the
// polymorphic case surfaces through Primary and the record's dynamic flag
// instead.
func (p *Provider) Layout(r layout.Record) (*layout.RecordLayout, error) {
	rec, ok := r.(*record)
	if !ok || rec == nil {
		return nil, fmt.Errorf("layout: %w", layout.ErrNoLayout)
	}
	if rec.declared || rec.byteSize < 0 {
		return nil, fmt.Errorf("layout of incomplete record %s: %w", rec.name, layout.ErrNoLayout)
	}

	lay := &layout.RecordLayout{
		Size:        rec.byteSize,
		Align:       p.recordAlign(rec),
		BaseOffsets: make(map[layout.RecordID]int64),
		VBases:      make(map[layout.RecordID]layout.VBase),
	}

	// Non-virtual direct bases sit at constant offsets in the member
	// location attribute. The primary base is the first dynamic one placed
	// at offset zero; it carries the vtable pointer this record reuses.
	for _, inh := range rec.inherits {
		if inh.virtual {
			continue
		}
		base := p.recordAt(inh.typeRef)
		if base == nil || !inh.constOffset {
			continue
		}
		lay.BaseOffsets[base.ID()] = inh.byteOffset
		if lay.Primary == 0 && inh.byteOffset == 0 && base.dynamic {
			lay.Primary = base.ID()
		}
	}

	p.placeVirtualBases(rec, lay)
	p.fieldBits(rec, lay)

	// The non-virtual region ends where the first virtual base begins.
	lay.NonVirtualSize = lay.Size
	for _, vb := range lay.VBases {
		lay.NonVirtualSize = min(lay.NonVirtualSize, vb.Offset)
	}

	return lay, nil
}

// placeVirtualBases records an offset for every virtual base in the
// inheritance graph. Compilers usually emit constant offsets for them; when
// one comes as a location expression instead, its offset is approximated by
// packing the base downward from the end of the object.
func (p *Provider) placeVirtualBases(rec *record, lay *layout.RecordLayout) {
	var unknown []*record

	for _, vb := range rec.VirtualBases() {
		base := vb.(*record)
		if off, ok := p.virtualBaseOffset(rec, base); ok {
			lay.VBases[base.ID()] = layout.VBase{Offset: off}
		} else {
			unknown = append(unknown, base)
		}
	}

	cursor := lay.Size
	for _, vb := range lay.VBases {
		cursor = min(cursor, vb.Offset)
	}
	for i := len(unknown) - 1; i >= 0; i-- {
		base := unknown[i]
		size := base.byteSize
		if size < 1 {
			size = 1
		}
		cursor = alignDown(cursor-size, p.recordAlign(base))
		lay.VBases[base.ID()] = layout.VBase{Offset: max(cursor, 0)}
	}
}

// virtualBaseOffset looks for a constant offset for base anywhere in rec's
// direct inheritance list.
func (p *Provider) virtualBaseOffset(rec *record, base *record) (int64, bool) {
	for _, inh := range rec.inherits {
		if !inh.virtual || !inh.constOffset {
			continue
		}
		if p.recordAt(inh.typeRef) == base {
			return inh.byteOffset, true
		}
	}
	return 0, false
}

// fieldBits computes the bit position of every field reported by Fields,
// in the same order.
func (p *Provider) fieldBits(rec *record, lay *layout.RecordLayout) {
	for _, m := range rec.dataMembers() {
		bits := uint64(m.byteOffset) * 8

		switch {
		case m.dataBitOffset >= 0:
			// DWARF 4+: offset from the start of the record.
			bits = uint64(m.dataBitOffset)
		case m.legacyBitOffset >= 0 && m.bitSize > 0:
			// DWARF 2/3 counts from the high-order bit of the storage
			// unit; convert assuming a little-endian target.
			storage := p.sizeOf(m.typeRef) * 8
			bits = uint64(m.byteOffset)*8 + uint64(storage) -
				uint64(m.legacyBitOffset) - uint64(m.bitSize)
		}

		lay.FieldBits = append(lay.FieldBits, bits)
	}
}

func alignDown(v, align int64) int64 {
	if align <= 1 {
		return v
	}
	return v - v%align
}
