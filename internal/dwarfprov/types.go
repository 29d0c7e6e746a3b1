package dwarfprov

import (
	"debug/dwarf"
	"fmt"
	"strings"
)

// typeInfo is the indexed shape of one type DIE.
type typeInfo struct {
	tag      dwarf.Tag
	name     string
	byteSize int64 // -1 when absent
	align    int64 // 0 unless DW_AT_alignment is present
	typeRef  dwarf.Offset
	hasRef   bool
	count    int64 // array element count, -1 when unknown
	rec      *record
}

// addType registers a non-record type DIE.
func (p *Provider) addType(d *die, scope []string) {
	e := d.entry

	switch e.Tag {
	case dwarf.TagBaseType, dwarf.TagPointerType, dwarf.TagReferenceType,
		dwarf.TagRvalueReferenceType, dwarf.TagConstType, dwarf.TagVolatileType,
		dwarf.TagRestrictType, dwarf.TagTypedef, dwarf.TagEnumerationType,
		dwarf.TagArrayType, dwarf.TagSubroutineType, dwarf.TagPtrToMemberType,
		dwarf.TagUnspecifiedType:
	default:
		return
	}

	ti := &typeInfo{
		tag:      e.Tag,
		byteSize: -1,
		count:    -1,
	}

	name := attrString(e, dwarf.AttrName)
	switch e.Tag {
	case dwarf.TagTypedef, dwarf.TagEnumerationType:
		if name != "" {
			ti.name = strings.Join(append(scope[:len(scope):len(scope)], name), "::")
		}
	default:
		ti.name = name
	}

	if size, ok := attrInt(e, dwarf.AttrByteSize); ok {
		ti.byteSize = size
	}
	if align, ok := attrInt(e, dwarf.AttrAlignment); ok {
		ti.align = align
	}
	ti.typeRef, ti.hasRef = attrRef(e, dwarf.AttrType)

	if e.Tag == dwarf.TagArrayType {
		ti.count = arrayCount(d)
	}

	p.types[e.Offset] = ti
}

// arrayCount reads the element count from an array's subrange children,
// multiplying the dimensions of multidimensional arrays.
func arrayCount(d *die) int64 {
	count := int64(-1)
	for _, child := range d.children {
		if child.entry.Tag != dwarf.TagSubrangeType {
			continue
		}
		var dim int64
		if n, ok := attrInt(child.entry, dwarf.AttrCount); ok {
			dim = n
		} else if upper, ok := attrInt(child.entry, dwarf.AttrUpperBound); ok {
			dim = upper + 1
		} else {
			return -1
		}
		if count < 0 {
			count = dim
		} else {
			count *= dim
		}
	}
	return count
}

// recordAt resolves a type reference to a record, looking through
// typedefs and cv-qualifiers but not pointers or arrays.
func (p *Provider) recordAt(ref dwarf.Offset) *record {
	for range 32 { // qualifier chains are short; bound against loops
		ti := p.types[ref]
		if ti == nil {
			return nil
		}
		if ti.rec != nil {
			return ti.rec
		}
		switch ti.tag {
		case dwarf.TagTypedef, dwarf.TagConstType, dwarf.TagVolatileType, dwarf.TagRestrictType:
			if !ti.hasRef {
				return nil
			}
			ref = ti.typeRef
		default:
			return nil
		}
	}
	return nil
}

// typeName spells a type the way it would appear in source.
func (p *Provider) typeName(ref dwarf.Offset) string {
	return p.typeNameDepth(ref, 0)
}

func (p *Provider) typeNameDepth(ref dwarf.Offset, depth int) string {
	if depth > 32 {
		return "?"
	}

	ti := p.types[ref]
	if ti == nil {
		return "void"
	}

	switch ti.tag {
	case dwarf.TagPointerType:
		if !ti.hasRef {
			return "void *"
		}
		return p.typeNameDepth(ti.typeRef, depth+1) + " *"
	case dwarf.TagReferenceType:
		return p.typeNameDepth(ti.typeRef, depth+1) + " &"
	case dwarf.TagRvalueReferenceType:
		return p.typeNameDepth(ti.typeRef, depth+1) + " &&"
	case dwarf.TagConstType:
		if !ti.hasRef {
			return "const void"
		}
		return "const " + p.typeNameDepth(ti.typeRef, depth+1)
	case dwarf.TagVolatileType:
		return "volatile " + p.typeNameDepth(ti.typeRef, depth+1)
	case dwarf.TagRestrictType:
		return p.typeNameDepth(ti.typeRef, depth+1)
	case dwarf.TagArrayType:
		elem := p.typeNameDepth(ti.typeRef, depth+1)
		if ti.count < 0 {
			return elem + "[]"
		}
		return fmt.Sprintf("%s[%d]", elem, ti.count)
	case dwarf.TagSubroutineType:
		return "function"
	default:
		if ti.name != "" {
			return ti.name
		}
		return "?"
	}
}

// sizeOf returns a type's byte size, 0 when unknown.
func (p *Provider) sizeOf(ref dwarf.Offset) int64 {
	return p.sizeOfDepth(ref, 0)
}

func (p *Provider) sizeOfDepth(ref dwarf.Offset, depth int) int64 {
	if depth > 32 {
		return 0
	}

	ti := p.types[ref]
	if ti == nil {
		return 0
	}
	if ti.byteSize >= 0 {
		return ti.byteSize
	}

	switch ti.tag {
	case dwarf.TagPointerType, dwarf.TagReferenceType, dwarf.TagRvalueReferenceType:
		return p.target.PointerSize
	case dwarf.TagTypedef, dwarf.TagConstType, dwarf.TagVolatileType, dwarf.TagRestrictType:
		return p.sizeOfDepth(ti.typeRef, depth+1)
	case dwarf.TagArrayType:
		if ti.count < 0 {
			return 0
		}
		return ti.count * p.sizeOfDepth(ti.typeRef, depth+1)
	default:
		return 0
	}
}

// alignOf returns a type's byte alignment. DWARF rarely records alignment
// explicitly, so scalar types fall back to natural alignment and records
// to the greatest alignment among their parts.
func (p *Provider) alignOf(ref dwarf.Offset) int64 {
	return p.alignOfDepth(ref, 0)
}

func (p *Provider) alignOfDepth(ref dwarf.Offset, depth int) int64 {
	if depth > 32 {
		return 1
	}

	ti := p.types[ref]
	if ti == nil {
		return 1
	}
	if ti.align > 0 {
		return ti.align
	}

	switch ti.tag {
	case dwarf.TagPointerType, dwarf.TagReferenceType, dwarf.TagRvalueReferenceType:
		return p.target.PointerAlign
	case dwarf.TagTypedef, dwarf.TagConstType, dwarf.TagVolatileType, dwarf.TagRestrictType,
		dwarf.TagArrayType:
		return p.alignOfDepth(ti.typeRef, depth+1)
	case dwarf.TagClassType, dwarf.TagStructType, dwarf.TagUnionType:
		if ti.rec != nil {
			return p.recordAlign(ti.rec)
		}
		return 1
	default:
		return naturalAlign(ti.byteSize, p.target.PointerAlign)
	}
}

// recordAlign computes a record's alignment as the greatest alignment of
// its bases and members, floored at pointer alignment for dynamic classes.
func (p *Provider) recordAlign(rec *record) int64 {
	if align, ok := p.alignCache[rec.offset]; ok {
		return align
	}
	p.alignCache[rec.offset] = 1 // break inheritance/member reference cycles

	align := int64(1)
	if rec.dynamic {
		align = p.target.PointerAlign
	}
	for _, inh := range rec.inherits {
		if base := p.recordAt(inh.typeRef); base != nil {
			align = max(align, p.recordAlign(base))
		}
	}
	for _, m := range rec.members {
		if m.artificial {
			continue
		}
		align = max(align, p.alignOfDepth(m.typeRef, 0))
	}

	p.alignCache[rec.offset] = align
	return align
}

// naturalAlign maps a scalar size to its natural alignment.
func naturalAlign(size, pointerAlign int64) int64 {
	switch size {
	case 1, 2, 4, 8, 16:
		return size
	case 10, 12: // x87 long double
		return pointerAlign
	default:
		if size <= 0 {
			return 1
		}
		return pointerAlign
	}
}
