// Package slbin serializes layout results to a compact binary form.
//
// The format is little-endian and versioned:
//
//	magic   "SLBN"
//	version u16
//	files   u32 count, then length-prefixed names
//	root    u8 presence flag, then the node tree in preorder
//
// Each node carries category, name, type name, offset, size, align, two
// optional positions, and a child count followed by the children in their
// stored order. Readers must preserve that order; it is the physical layout
// order.
package slbin

import (
	"errors"
	"fmt"
)

// Magic identifies a serialized layout result.
var Magic = [4]byte{'S', 'L', 'B', 'N'}

// Version is the current format version.
const Version uint16 = 1

// Sentinel errors for common conditions.
var (
	// ErrBadMagic indicates the data does not start with the SLBN magic.
	ErrBadMagic = errors.New("slbin: not a layout result file")

	// ErrUnsupportedVersion indicates a format version this package cannot
	// decode.
	ErrUnsupportedVersion = errors.New("slbin: unsupported format version")

	// ErrTruncated indicates the data ended before the tree was complete.
	ErrTruncated = errors.New("slbin: unexpected end of data")
)

// DecodeError reports where in the data decoding failed.
type DecodeError struct {
	Offset  int    // byte offset within the data
	Message string // description of the failure
	Err     error  // underlying error, if any
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("slbin: decode error at offset 0x%x: %s: %v", e.Offset, e.Message, e.Err)
	}
	return fmt.Sprintf("slbin: decode error at offset 0x%x: %s", e.Offset, e.Message)
}

func (e *DecodeError) Unwrap() error { return e.Err }
