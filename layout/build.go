package layout

import (
	"cmp"
	"slices"
)

// vtorDispSize is the fixed size of a displacement adjustment slot.
const vtorDispSize = 4

// Builder constructs layout trees for records, interning source files into
// the supplied file table as it resolves locations.
type Builder struct {
	provider Provider
	files    *FileTable
}

// NewBuilder returns a Builder that reads layout facts from p and interns
// filenames into files.
func NewBuilder(p Provider, files *FileTable) *Builder {
	return &Builder{provider: p, files: files}
}

// Build constructs the full layout tree for rec, including its virtual
// bases.
func (b *Builder) Build(rec Record) (*Node, error) {
	return b.build(rec, true)
}

// build constructs the tree for one record. Base sub-objects are built with
// includeVirtualBases false so their size reflects only the non-virtual
// extent.
func (b *Builder) build(rec Record, includeVirtualBases bool) (*Node, error) {
	node := &Node{
		Category:     CategoryRecord,
		TypeName:     rec.Name(),
		TypeLocation: b.resolve(rec.Location()),
	}

	lay, err := b.provider.Layout(rec)
	if err != nil {
		return nil, &BuildError{Record: rec.Name(), Err: err}
	}
	if lay == nil {
		return nil, &BuildError{Record: rec.Name(), Err: ErrNoLayout}
	}

	if includeVirtualBases {
		node.Size = lay.Size
	} else {
		node.Size = lay.NonVirtualSize
	}
	node.Align = lay.Align

	target := b.provider.Target()

	// Primary vtable pointer. A dynamic class without an inherited primary
	// base holds its own pointer at offset zero; the Microsoft convention
	// reports this through OwnVFPtr instead.
	if rec.Dynamic() && lay.Primary == 0 && !target.Microsoft {
		node.Children = append(node.Children, pointerNode(CategoryVTablePtr, 0, target))
	} else if lay.OwnVFPtr {
		node.Children = append(node.Children, pointerNode(CategoryVFTablePtr, 0, target))
	}

	// Non-virtual bases, sorted by their placement. The sort is stable so
	// declaration order decides among equal offsets.
	var bases []Record
	for _, base := range rec.Bases() {
		if base.Dependent {
			return nil, &BuildError{Record: rec.Name(), Err: ErrDependentBase}
		}
		if !base.Virtual {
			bases = append(bases, base.Record)
		}
	}
	slices.SortStableFunc(bases, func(x, y Record) int {
		return cmp.Compare(lay.BaseOffsets[x.ID()], lay.BaseOffsets[y.ID()])
	})

	for _, base := range bases {
		child, err := b.build(base, false)
		if err != nil {
			return nil, err
		}
		child.Offset = lay.BaseOffsets[base.ID()]
		if base.ID() == lay.Primary {
			child.Category = CategoryNVPrimaryBase
		} else {
			child.Category = CategoryNVBase
		}
		node.Children = append(node.Children, child)
	}

	// Virtual-base-table pointer (Microsoft convention).
	if lay.OwnVBPtr {
		node.Children = append(node.Children, pointerNode(CategoryVBTablePtr, lay.VBPtrOffset, target))
	}

	// Fields, in declaration order.
	for i, field := range rec.Fields() {
		bits := lay.FieldBits[i]
		byteOffset := int64(bits / 8)

		switch {
		case field.Record != nil:
			child, err := b.build(field.Record, true)
			if err != nil {
				return nil, err
			}
			child.Name = field.Name
			child.TypeName = field.TypeName
			child.Offset = byteOffset
			child.FieldLocation = b.resolve(field.Location)
			node.Children = append(node.Children, child)

		case field.Bitfield:
			child := &Node{
				Category: CategoryBitfield,
				Name:     field.Name,
				TypeName: field.TypeName,
				Offset:   byteOffset,
				Size:     field.Size,
				Align:    field.Align,
			}
			// Bit position within the byte the field starts in, plus the
			// field's width in bits.
			child.Children = append(child.Children, &Node{
				Category: CategoryBitRange,
				Offset:   int64(bits % 8),
				Size:     int64(field.BitWidth),
			})
			node.Children = append(node.Children, child)

		default:
			node.Children = append(node.Children, &Node{
				Category:      CategorySimpleField,
				Name:          field.Name,
				TypeName:      field.TypeName,
				Offset:        byteOffset,
				Size:          field.Size,
				Align:         field.Align,
				FieldLocation: b.resolve(field.Location),
			})
		}
	}

	// Virtual bases, in declaration order. A base needing a displacement
	// adjustment gets a vtordisp slot immediately before it. Every
	// reported virtual base must have a placement; an omission is a
	// provider contract breach, not an empty base.
	if includeVirtualBases {
		for _, vbase := range rec.VirtualBases() {
			placement, ok := lay.VBases[vbase.ID()]
			if !ok {
				return nil, &BuildError{Record: rec.Name(), Err: ErrNoVBasePlacement}
			}

			if placement.VtorDisp {
				node.Children = append(node.Children, &Node{
					Category: CategoryVtorDisp,
					Offset:   placement.Offset - vtorDispSize,
					Size:     vtorDispSize,
					Align:    vtorDispSize,
				})
			}

			child, err := b.build(vbase, false)
			if err != nil {
				return nil, err
			}
			child.Offset = placement.Offset
			if vbase.ID() == lay.Primary {
				child.Category = CategoryVPrimaryBase
			} else {
				child.Category = CategoryVBase
			}
			node.Children = append(node.Children, child)
		}
	}

	// Physical layout order. Stable, so emission order above breaks ties
	// among equal offsets.
	slices.SortStableFunc(node.Children, func(x, y *Node) int {
		return cmp.Compare(x.Offset, y.Offset)
	})

	return node, nil
}

// resolve turns a presumed location into a position, interning the file.
// Invalid locations resolve to nil; synthetic entities have no position.
func (b *Builder) resolve(loc Presumed) *Position {
	if !loc.Valid {
		return nil
	}
	return &Position{
		File:   b.files.Intern(loc.FileID, loc.Filename),
		Line:   loc.Line,
		Column: loc.Column,
	}
}

func pointerNode(category Category, offset int64, target Target) *Node {
	return &Node{
		Category: category,
		Offset:   offset,
		Size:     target.PointerSize,
		Align:    target.PointerAlign,
	}
}
