package dwarfprov

import (
	"debug/dwarf"
	"math"
	"strings"

	mapset "github.com/deckarep/golang-set"

	"github.com/nedwardsnae/StructLayout/layout"
)

// record is one indexed class/struct/union DIE.
type record struct {
	p *Provider

	offset   dwarf.Offset
	name     string // qualified
	decl     layout.Presumed
	declared bool // forward declaration only
	byteSize int64
	dynamic  bool

	members  []member
	inherits []inherit

	// maxLine is the greatest declaration line anywhere in the record's
	// subtree. DWARF records no end positions, so the source range is
	// approximated as [decl, maxLine:EOL].
	maxLine uint32
	inMain  bool
}

// member is one DW_TAG_member.
type member struct {
	name            string
	typeRef         dwarf.Offset
	byteOffset      int64
	bitSize         int64 // 0 when not a bitfield
	dataBitOffset   int64 // -1 when absent
	legacyBitOffset int64 // -1 when absent (DWARF<4 DW_AT_bit_offset)
	artificial      bool
	loc             layout.Presumed
}

// inherit is one DW_TAG_inheritance.
type inherit struct {
	typeRef     dwarf.Offset
	byteOffset  int64
	constOffset bool // offset is a constant, not a location expression
	virtual     bool
}

// pendingVar is a variable declaration in the inspected file whose type is
// resolved into a candidate once indexing completes.
type pendingVar struct {
	typeRef dwarf.Offset
	pos     layout.Presumed
}

func (p *Provider) index() error {
	units, err := loadDIEs(p.data.Reader())
	if err != nil {
		return err
	}

	var vars []pendingVar
	for _, cu := range units {
		if cu.entry.Tag != dwarf.TagCompileUnit {
			continue
		}
		info := p.newCUInfo(cu.entry)
		for _, child := range cu.children {
			p.visit(child, nil, info, &vars)
		}
	}

	p.buildCandidates(vars)
	return nil
}

// visit indexes one DIE subtree and returns the greatest declaration line
// it contains.
func (p *Provider) visit(d *die, scope []string, cu *cuInfo, vars *[]pendingVar) uint32 {
	e := d.entry
	var maxLine uint32
	if line, ok := attrInt(e, dwarf.AttrDeclLine); ok {
		maxLine = uint32(line)
	}

	switch e.Tag {
	case dwarf.TagNamespace:
		inner := scope
		if name := attrString(e, dwarf.AttrName); name != "" {
			inner = append(scope[:len(scope):len(scope)], name)
		}
		for _, child := range d.children {
			maxLine = max(maxLine, p.visit(child, inner, cu, vars))
		}

	case dwarf.TagClassType, dwarf.TagStructType, dwarf.TagUnionType:
		maxLine = max(maxLine, p.addRecord(d, scope, cu, vars))

	case dwarf.TagVariable:
		if p.source != "" && p.inMainFile(e, cu) {
			if ref, ok := attrRef(e, dwarf.AttrType); ok {
				*vars = append(*vars, pendingVar{typeRef: ref, pos: p.declOf(e, cu)})
			}
		}

	case dwarf.TagSubprogram, dwarf.TagLexDwarfBlock:
		// Function bodies can hold local types and variables.
		for _, child := range d.children {
			maxLine = max(maxLine, p.visit(child, scope, cu, vars))
		}

	default:
		p.addType(d, scope)
	}

	return maxLine
}

// addRecord indexes a class/struct/union DIE and everything nested in it.
func (p *Provider) addRecord(d *die, scope []string, cu *cuInfo, vars *[]pendingVar) uint32 {
	e := d.entry

	name := attrString(e, dwarf.AttrName)
	if name == "" {
		name = "(anonymous)"
	}
	qualified := strings.Join(append(scope[:len(scope):len(scope)], name), "::")

	rec := &record{
		p:        p,
		offset:   e.Offset,
		name:     qualified,
		decl:     p.declOf(e, cu),
		declared: attrBool(e, dwarf.AttrDeclaration),
		byteSize: -1,
		inMain:   p.source != "" && p.inMainFile(e, cu),
	}
	if size, ok := attrInt(e, dwarf.AttrByteSize); ok {
		rec.byteSize = size
	}
	rec.maxLine = rec.decl.Line

	innerScope := append(scope[:len(scope):len(scope)], name)
	for _, child := range d.children {
		ce := child.entry
		switch ce.Tag {
		case dwarf.TagMember:
			if m, ok := p.newMember(child, cu); ok {
				if m.artificial && strings.HasPrefix(m.name, "_vptr") {
					rec.dynamic = true
				}
				rec.members = append(rec.members, m)
				rec.maxLine = max(rec.maxLine, m.loc.Line)
			}

		case dwarf.TagInheritance:
			inh := inherit{byteOffset: -1}
			inh.typeRef, _ = attrRef(ce, dwarf.AttrType)
			if off, ok := attrInt(ce, dwarf.AttrDataMemberLoc); ok {
				inh.byteOffset = off
				inh.constOffset = true
			}
			if virt, ok := attrInt(ce, dwarf.AttrVirtuality); ok && virt > 0 {
				inh.virtual = true
			}
			rec.inherits = append(rec.inherits, inh)

		case dwarf.TagSubprogram:
			if virt, ok := attrInt(ce, dwarf.AttrVirtuality); ok && virt > 0 {
				rec.dynamic = true
			}
			rec.maxLine = max(rec.maxLine, p.visit(child, innerScope, cu, vars))

		default:
			rec.maxLine = max(rec.maxLine, p.visit(child, innerScope, cu, vars))
		}
	}

	p.records = append(p.records, rec)
	p.types[e.Offset] = &typeInfo{
		tag:      e.Tag,
		name:     qualified,
		byteSize: rec.byteSize,
		rec:      rec,
	}

	return rec.maxLine
}

func (p *Provider) newMember(d *die, cu *cuInfo) (member, bool) {
	e := d.entry

	// Static members occupy no storage in the object.
	if attrBool(e, dwarf.AttrDeclaration) || attrBool(e, dwarf.AttrExternal) {
		return member{}, false
	}

	m := member{
		name:            attrString(e, dwarf.AttrName),
		artificial:      attrBool(e, dwarf.AttrArtificial),
		dataBitOffset:   -1,
		legacyBitOffset: -1,
		loc:             p.declOf(e, cu),
	}
	m.typeRef, _ = attrRef(e, dwarf.AttrType)

	// An absent data member location means offset zero (common in unions).
	// An expression-valued location cannot be evaluated statically; such
	// members are skipped.
	switch v := e.Val(dwarf.AttrDataMemberLoc).(type) {
	case int64:
		m.byteOffset = v
	case nil:
		m.byteOffset = 0
	default:
		return member{}, false
	}

	if bits, ok := attrInt(e, dwarf.AttrBitSize); ok {
		m.bitSize = bits
	}
	if off, ok := attrInt(e, dwarf.AttrDataBitOffset); ok {
		m.dataBitOffset = off
	}
	if off, ok := attrInt(e, dwarf.AttrBitOffset); ok {
		m.legacyBitOffset = off
	}

	return m, true
}

// buildCandidates turns indexed records and pending variables into the
// locator's candidate list.
func (p *Provider) buildCandidates(vars []pendingVar) {
	for _, rec := range p.records {
		if !rec.inMain || !rec.decl.Valid {
			continue
		}
		p.candidates = append(p.candidates, layout.Candidate{
			Record: rec,
			Range:  approxRange(rec.decl, rec.maxLine),
		})
	}

	for _, v := range vars {
		if !v.pos.Valid {
			continue
		}
		c := layout.Candidate{Range: approxRange(v.pos, v.pos.Line)}
		if rec := p.recordAt(v.typeRef); rec != nil {
			c.Record = rec
		}
		p.candidates = append(p.candidates, c)
	}
}

// approxRange widens a declaration start into an inclusive range ending at
// the last line the declaration is known to touch. End columns are unknown
// in DWARF, so the range runs to end of line.
func approxRange(begin layout.Presumed, endLine uint32) layout.Range {
	end := begin
	end.Line = max(endLine, begin.Line)
	end.Column = math.MaxUint32
	return layout.Range{Begin: begin, End: end}
}

// layout.Record implementation.

func (r *record) ID() layout.RecordID       { return layout.RecordID(r.offset) }
func (r *record) Name() string              { return r.name }
func (r *record) Location() layout.Presumed { return r.decl }
func (r *record) Complete() bool            { return !r.declared && r.byteSize >= 0 }
func (r *record) Dependent() bool           { return false } // DWARF holds instantiated types only
func (r *record) Dynamic() bool             { return r.dynamic }

func (r *record) Bases() []layout.Base {
	var out []layout.Base
	for _, inh := range r.inherits {
		base := r.p.recordAt(inh.typeRef)
		if base == nil {
			continue
		}
		out = append(out, layout.Base{Record: base, Virtual: inh.virtual})
	}
	return out
}

// VirtualBases returns every virtual base in inheritance-graph preorder,
// deduplicated: a virtual base shared along several paths appears once.
func (r *record) VirtualBases() []layout.Record {
	seen := mapset.NewSet()
	var out []layout.Record

	var collect func(rec *record)
	collect = func(rec *record) {
		for _, inh := range rec.inherits {
			base := rec.p.recordAt(inh.typeRef)
			if base == nil {
				continue
			}
			if inh.virtual && seen.Add(base.offset) {
				out = append(out, base)
			}
			collect(base)
		}
	}
	collect(r)
	return out
}

// dataMembers returns the non-artificial members; Fields and the layout
// facts must agree on this filtering.
func (r *record) dataMembers() []member {
	var out []member
	for _, m := range r.members {
		if m.artificial {
			continue
		}
		out = append(out, m)
	}
	return out
}

func (r *record) Fields() []layout.Field {
	var out []layout.Field
	for _, m := range r.dataMembers() {
		f := layout.Field{
			Name:     m.name,
			TypeName: r.p.typeName(m.typeRef),
			Size:     r.p.sizeOf(m.typeRef),
			Align:    r.p.alignOf(m.typeRef),
			Location: m.loc,
		}
		if m.bitSize > 0 {
			f.Bitfield = true
			f.BitWidth = uint32(m.bitSize)
		} else if rec := r.p.recordAt(m.typeRef); rec != nil {
			f.Record = rec
		}
		out = append(out, f)
	}
	return out
}
