package layout

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
var (
	// ErrDependentBase indicates a base class with an unresolved dependent
	// type reached the builder. This is a precondition violation: complete,
	// non-dependent records never have dependent bases.
	ErrDependentBase = errors.New("layout: cannot lay out record with dependent base")

	// ErrNoLayout indicates the provider failed to produce layout facts
	// for a record.
	ErrNoLayout = errors.New("layout: no layout facts for record")

	// ErrNoVBasePlacement indicates a record's layout facts omit the
	// placement of one of its virtual bases. Providers must place every
	// virtual base they report.
	ErrNoVBasePlacement = errors.New("layout: no placement for virtual base")
)

// BuildError reports which record the builder was visiting when
// construction failed.
type BuildError struct {
	Record string // qualified name of the record being built
	Err    error  // underlying error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("layout: building %s: %v", e.Record, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }
