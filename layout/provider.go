package layout

import "iter"

// RecordID is a provider-stable identity for a record declaration. The zero
// value means "no record".
type RecordID uint64

// Presumed is a macro-expansion-aware source position reported by a
// provider. FileID must be stable for a given file within one run so that
// the file table can deduplicate names.
type Presumed struct {
	FileID   uint64
	Filename string
	Line     uint32
	Column   uint32
	Valid    bool
}

// Range is an inclusive source range.
type Range struct {
	Begin Presumed
	End   Presumed
}

// Filter is the target position a run inspects.
type Filter struct {
	Row    uint32
	Column uint32
}

// Contains reports whether the filter position lies within r, compared
// lexicographically by (line, column) and inclusive at both ends.
func (f Filter) Contains(r Range) bool {
	if !r.Begin.Valid || !r.End.Valid {
		return false
	}
	afterBegin := f.Row > r.Begin.Line || (f.Row == r.Begin.Line && f.Column >= r.Begin.Column)
	beforeEnd := f.Row < r.End.Line || (f.Row == r.End.Line && f.Column <= r.End.Column)
	return afterBegin && beforeEnd
}

// Candidate is one declaration considered by Locate: a record declaration,
// or a variable declaration standing in for its type's record. Record is
// nil when the declaration does not resolve to a record at all.
type Candidate struct {
	Record Record
	Range  Range
}

// Record exposes the declaration facts the builder consumes. Bases and
// Fields follow declaration order.
type Record interface {
	// ID returns the record's stable identity.
	ID() RecordID

	// Name returns the fully qualified record name.
	Name() string

	// Location returns the record's declaration position.
	Location() Presumed

	// Complete reports whether the record has a full, valid definition.
	Complete() bool

	// Dependent reports whether the record's type depends on unresolved
	// template parameters.
	Dependent() bool

	// Dynamic reports whether the record has virtual functions.
	Dynamic() bool

	// Bases returns the direct base specifiers.
	Bases() []Base

	// VirtualBases returns every virtual base of the record, direct and
	// inherited.
	VirtualBases() []Record

	// Fields returns the declared data members.
	Fields() []Field
}

// Base is one direct base specifier.
type Base struct {
	Record    Record
	Virtual   bool
	Dependent bool
}

// Field is one declared data member.
type Field struct {
	Name     string
	TypeName string

	// Record is non-nil when the field's type is itself a record.
	Record Record

	Bitfield bool
	BitWidth uint32

	// Size and Align are the byte size and alignment of the field's type.
	Size  int64
	Align int64

	Location Presumed
}

// VBase describes the placement of one virtual base.
type VBase struct {
	Offset   int64
	VtorDisp bool
}

// RecordLayout carries the ABI-computed layout facts for one record.
type RecordLayout struct {
	Size           int64
	NonVirtualSize int64
	Align          int64

	// Primary is the designated primary base, zero when none.
	Primary RecordID

	// OwnVFPtr and OwnVBPtr report whether the record itself holds a
	// vftable / vbtable pointer (Microsoft convention).
	OwnVFPtr    bool
	OwnVBPtr    bool
	VBPtrOffset int64

	// BaseOffsets maps direct non-virtual bases to their byte offsets.
	BaseOffsets map[RecordID]int64

	// VBases maps virtual bases to their placement.
	VBases map[RecordID]VBase

	// FieldBits holds per-field bit offsets, parallel to Record.Fields.
	FieldBits []uint64
}

// Target describes the pointer shape of the compilation target.
type Target struct {
	PointerSize  int64
	PointerAlign int64
	Microsoft    bool
}

// Provider supplies declarations and ABI layout facts for one translation
// unit. Implementations are queried by a single goroutine per run.
type Provider interface {
	// Candidates enumerates the declarations physically defined in the
	// inspected file.
	Candidates() iter.Seq[Candidate]

	// Layout returns the ABI layout facts for a complete record.
	Layout(Record) (*RecordLayout, error)

	// Target returns the compilation target's pointer shape.
	Target() Target
}
