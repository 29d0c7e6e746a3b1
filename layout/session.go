package layout

import "go.uber.org/zap"

// Session drives one or more runs against a provider. Each run resets the
// session's state first, so repeated runs never alias earlier results. A
// Session is single-threaded; callers reusing one across goroutines must
// serialize access.
type Session struct {
	provider Provider
	files    *FileTable
	result   Result
}

// NewSession returns a session reading from p.
func NewSession(p Provider) *Session {
	return &Session{
		provider: p,
		files:    NewFileTable(),
	}
}

// Run locates the record at filter and builds its layout tree. A position
// with no record under it is not an error: the returned result simply has a
// nil root.
//
// The result is owned by the session and valid until the next Run or Reset;
// callers must serialize it before either.
func (s *Session) Run(filter Filter) (*Result, error) {
	s.Reset()

	rec := Locate(s.provider, filter)
	if rec == nil {
		Logger().Debug("no record at position",
			zap.Uint32("row", filter.Row),
			zap.Uint32("column", filter.Column))
		s.result = Result{Files: s.files.Names()}
		return &s.result, nil
	}

	builder := NewBuilder(s.provider, s.files)
	root, err := builder.Build(rec)
	if err != nil {
		s.Reset()
		return nil, err
	}

	Logger().Debug("built layout tree",
		zap.String("record", root.TypeName),
		zap.Int64("size", root.Size),
		zap.Int("files", s.files.Len()))

	s.result = Result{Root: root, Files: s.files.Names()}
	return &s.result, nil
}

// Reset drops the previous run's tree and clears the file table. Calling
// Reset on an already clean session is a no-op.
func (s *Session) Reset() {
	s.files.Reset()
	s.result = Result{}
}

// Result returns the most recent run's result.
func (s *Session) Result() *Result { return &s.result }
