package dwarfprov

import (
	"debug/dwarf"
	"path"
	"strings"

	"github.com/nedwardsnae/StructLayout/layout"
)

// die is one debug info entry with its children, so indexing can recurse
// over the tree instead of tracking reader depth.
type die struct {
	entry    *dwarf.Entry
	children []*die
}

// loadDIEs reads the whole DWARF tree. The returned slice holds the
// compilation units.
func loadDIEs(r *dwarf.Reader) ([]*die, error) {
	var (
		units []*die
		stack []*die
	)

	for {
		entry, err := r.Next()
		if err != nil {
			return nil, err
		}
		if entry == nil {
			break
		}

		// A zero entry terminates the current sibling list.
		if entry.Tag == 0 {
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			continue
		}

		d := &die{entry: entry}
		if len(stack) == 0 {
			units = append(units, d)
		} else {
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, d)
		}
		if entry.Children {
			stack = append(stack, d)
		}
	}

	return units, nil
}

// Attribute helpers. DWARF attribute values are dynamically typed; these
// return the zero value when absent or of an unexpected type.

func attrString(e *dwarf.Entry, a dwarf.Attr) string {
	s, _ := e.Val(a).(string)
	return s
}

func attrInt(e *dwarf.Entry, a dwarf.Attr) (int64, bool) {
	v, ok := e.Val(a).(int64)
	return v, ok
}

func attrBool(e *dwarf.Entry, a dwarf.Attr) bool {
	v, _ := e.Val(a).(bool)
	return v
}

func attrRef(e *dwarf.Entry, a dwarf.Attr) (dwarf.Offset, bool) {
	v, ok := e.Val(a).(dwarf.Offset)
	return v, ok
}

// cuInfo carries the per-compilation-unit context needed to resolve
// declaration coordinates.
type cuInfo struct {
	files []*dwarf.LineFile
}

func (p *Provider) newCUInfo(cu *dwarf.Entry) *cuInfo {
	info := &cuInfo{}

	if lr, err := p.data.LineReader(cu); err == nil && lr != nil {
		info.files = lr.Files()
	}
	return info
}

// fileName resolves a DW_AT_decl_file index through the CU's line table.
func (c *cuInfo) fileName(index int64) string {
	if index < 0 || index >= int64(len(c.files)) || c.files[index] == nil {
		return ""
	}
	return c.files[index].Name
}

// declOf extracts a declaration position from an entry.
func (p *Provider) declOf(e *dwarf.Entry, cu *cuInfo) layout.Presumed {
	fileIdx, ok := attrInt(e, dwarf.AttrDeclFile)
	if !ok {
		return layout.Presumed{}
	}
	name := cu.fileName(fileIdx)
	if name == "" {
		return layout.Presumed{}
	}

	line, _ := attrInt(e, dwarf.AttrDeclLine)
	col, _ := attrInt(e, dwarf.AttrDeclColumn)

	return layout.Presumed{
		FileID:   p.fileID(name),
		Filename: name,
		Line:     uint32(line),
		Column:   uint32(col),
		Valid:    line > 0,
	}
}

// inMainFile reports whether an entry's declaration lies in the inspected
// source file.
func (p *Provider) inMainFile(e *dwarf.Entry, cu *cuInfo) bool {
	fileIdx, ok := attrInt(e, dwarf.AttrDeclFile)
	if !ok {
		return false
	}
	name := cu.fileName(fileIdx)
	return name != "" && matchesSource(name, p.source)
}

// matchesSource reports whether a debug-info file name refers to the
// requested source path. Paths in debug info may be absolute or
// compilation-directory relative, so the comparison accepts any
// path-component suffix match.
func matchesSource(name, source string) bool {
	if source == "" {
		return false
	}
	name = path.Clean(strings.ReplaceAll(name, "\\", "/"))
	source = path.Clean(strings.ReplaceAll(source, "\\", "/"))

	if name == source {
		return true
	}
	if strings.Contains(source, "/") {
		return strings.HasSuffix(name, "/"+source) || strings.HasSuffix(source, "/"+name)
	}
	return path.Base(name) == source
}
