package layout

import "iter"

// Shared test doubles: an in-memory provider with hand-written records and
// layout facts.

type fakeRecord struct {
	id        RecordID
	name      string
	loc       Presumed
	complete  bool
	dependent bool
	dynamic   bool
	bases     []Base
	vbases    []Record
	fields    []Field
}

func (r *fakeRecord) ID() RecordID           { return r.id }
func (r *fakeRecord) Name() string           { return r.name }
func (r *fakeRecord) Location() Presumed     { return r.loc }
func (r *fakeRecord) Complete() bool         { return r.complete }
func (r *fakeRecord) Dependent() bool        { return r.dependent }
func (r *fakeRecord) Dynamic() bool          { return r.dynamic }
func (r *fakeRecord) Bases() []Base          { return r.bases }
func (r *fakeRecord) VirtualBases() []Record { return r.vbases }
func (r *fakeRecord) Fields() []Field        { return r.fields }

// record returns a complete, non-dependent record.
func record(id RecordID, name string) *fakeRecord {
	return &fakeRecord{id: id, name: name, complete: true}
}

// at returns a valid presumed position.
func at(fileID uint64, filename string, line, col uint32) Presumed {
	return Presumed{FileID: fileID, Filename: filename, Line: line, Column: col, Valid: true}
}

// span returns an inclusive range within a single file.
func span(fileID uint64, filename string, startLine, startCol, endLine, endCol uint32) Range {
	return Range{
		Begin: at(fileID, filename, startLine, startCol),
		End:   at(fileID, filename, endLine, endCol),
	}
}

type fakeProvider struct {
	candidates []Candidate
	layouts    map[RecordID]*RecordLayout
	target     Target
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		layouts: make(map[RecordID]*RecordLayout),
		target:  Target{PointerSize: 8, PointerAlign: 8},
	}
}

func (p *fakeProvider) Candidates() iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		for _, c := range p.candidates {
			if !yield(c) {
				return
			}
		}
	}
}

func (p *fakeProvider) Layout(r Record) (*RecordLayout, error) {
	lay, ok := p.layouts[r.ID()]
	if !ok {
		return nil, ErrNoLayout
	}
	return lay, nil
}

func (p *fakeProvider) Target() Target { return p.target }

// addLayout registers layout facts for a record and returns them for
// further tweaking.
func (p *fakeProvider) addLayout(r Record, lay *RecordLayout) *RecordLayout {
	if lay.BaseOffsets == nil {
		lay.BaseOffsets = make(map[RecordID]int64)
	}
	if lay.VBases == nil {
		lay.VBases = make(map[RecordID]VBase)
	}
	p.layouts[r.ID()] = lay
	return lay
}
