// Package layout builds hierarchical descriptions of C++ record memory
// layout from facts supplied by a debug-info provider.
package layout

// Category identifies what a layout node represents.
type Category uint8

const (
	// CategoryRecord is the root record or a record-typed field.
	CategoryRecord Category = iota
	CategorySimpleField
	CategoryBitfield
	// CategoryBitRange carries the bit position and width of a bitfield
	// within its byte-aligned slot. Always a child of a CategoryBitfield
	// node.
	CategoryBitRange
	CategoryNVBase
	CategoryNVPrimaryBase
	CategoryVBase
	CategoryVPrimaryBase
	CategoryVTablePtr
	CategoryVFTablePtr
	CategoryVBTablePtr
	// CategoryVtorDisp is the hidden displacement adjustment placed before
	// certain virtual bases (Microsoft convention).
	CategoryVtorDisp
)

func (c Category) String() string {
	switch c {
	case CategoryRecord:
		return "record"
	case CategorySimpleField:
		return "field"
	case CategoryBitfield:
		return "bitfield"
	case CategoryBitRange:
		return "bitrange"
	case CategoryNVBase:
		return "base"
	case CategoryNVPrimaryBase:
		return "primary_base"
	case CategoryVBase:
		return "virtual_base"
	case CategoryVPrimaryBase:
		return "virtual_primary_base"
	case CategoryVTablePtr:
		return "vtable_ptr"
	case CategoryVFTablePtr:
		return "vftable_ptr"
	case CategoryVBTablePtr:
		return "vbtable_ptr"
	case CategoryVtorDisp:
		return "vtordisp"
	default:
		return "unknown"
	}
}

// Position is a resolved source position. File indexes into Result.Files.
type Position struct {
	File   int    `json:"file"`
	Line   uint32 `json:"line"`
	Column uint32 `json:"column"`
}

// Node is one element of a layout tree. Offset is relative to the start of
// the immediately enclosing node. Children are sorted by ascending offset
// once construction completes.
type Node struct {
	Category Category `json:"category"`
	Name     string   `json:"name,omitempty"`
	TypeName string   `json:"type,omitempty"`
	Offset   int64    `json:"offset"`
	Size     int64    `json:"size"`
	Align    int64    `json:"align"`

	// TypeLocation points at the node's type declaration, FieldLocation at
	// the field declaration. Either is nil when the underlying entity has
	// no resolvable location.
	TypeLocation  *Position `json:"type_location,omitempty"`
	FieldLocation *Position `json:"field_location,omitempty"`

	Children []*Node `json:"children,omitempty"`
}

// Result is the output of one run: the layout tree for the record found at
// the target position, plus the table of file names its positions refer to.
// Root is nil when no record contains the target position.
type Result struct {
	Root  *Node    `json:"root,omitempty"`
	Files []string `json:"files"`
}
