package layout

// FileTable assigns stable indexes to files, storing each filename once.
// Indexes are assigned in first-encounter order within a run. Not safe for
// concurrent use; a run is single-threaded.
type FileTable struct {
	lookup map[uint64]int
	names  []string
}

// NewFileTable returns an empty file table.
func NewFileTable() *FileTable {
	return &FileTable{lookup: make(map[uint64]int)}
}

// Intern returns the index for the file identified by id, appending name on
// first encounter.
func (t *FileTable) Intern(id uint64, name string) int {
	if idx, ok := t.lookup[id]; ok {
		return idx
	}
	idx := len(t.names)
	t.lookup[id] = idx
	t.names = append(t.names, name)
	return idx
}

// Len returns the number of interned files.
func (t *FileTable) Len() int { return len(t.names) }

// Names returns the interned filenames in index order. The returned slice
// is owned by the table.
func (t *FileTable) Names() []string { return t.names }

// Reset clears the table for reuse.
func (t *FileTable) Reset() {
	clear(t.lookup)
	t.names = nil
}
