package slbin

import (
	"bytes"
	"encoding/binary"
	"os"

	"github.com/nedwardsnae/StructLayout/layout"
)

// Read decodes a serialized layout result.
func Read(data []byte) (*layout.Result, error) {
	r := &reader{data: data}

	magic, err := r.take(4)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(magic, Magic[:]) {
		return nil, ErrBadMagic
	}

	version, err := r.u16()
	if err != nil {
		return nil, err
	}
	if version != Version {
		return nil, &DecodeError{Offset: 4, Message: "bad version", Err: ErrUnsupportedVersion}
	}

	fileCount, err := r.u32()
	if err != nil {
		return nil, err
	}

	res := &layout.Result{}
	for i := uint32(0); i < fileCount; i++ {
		name, err := r.str()
		if err != nil {
			return nil, err
		}
		res.Files = append(res.Files, name)
	}

	present, err := r.u8()
	if err != nil {
		return nil, err
	}
	if present != 0 {
		res.Root, err = r.node()
		if err != nil {
			return nil, err
		}
	}

	return res, nil
}

// ReadFile decodes the named file.
func ReadFile(path string) (*layout.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Read(data)
}

// reader consumes little-endian values from a byte slice.
type reader struct {
	data   []byte
	offset int
}

func (r *reader) take(n int) ([]byte, error) {
	if n < 0 || r.offset+n > len(r.data) {
		return nil, &DecodeError{Offset: r.offset, Message: "short read", Err: ErrTruncated}
	}
	v := r.data[r.offset : r.offset+n]
	r.offset += n
	return v, nil
}

func (r *reader) u8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) u16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *reader) u32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *reader) i64() (int64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(b)), nil
}

func (r *reader) str() (string, error) {
	n, err := r.u32()
	if err != nil {
		return "", err
	}
	b, err := r.take(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *reader) position() (*layout.Position, error) {
	present, err := r.u8()
	if err != nil {
		return nil, err
	}
	if present == 0 {
		return nil, nil
	}

	file, err := r.u32()
	if err != nil {
		return nil, err
	}
	line, err := r.u32()
	if err != nil {
		return nil, err
	}
	col, err := r.u32()
	if err != nil {
		return nil, err
	}
	return &layout.Position{File: int(int32(file)), Line: line, Column: col}, nil
}

func (r *reader) node() (*layout.Node, error) {
	n := &layout.Node{}

	category, err := r.u8()
	if err != nil {
		return nil, err
	}
	n.Category = layout.Category(category)

	if n.Name, err = r.str(); err != nil {
		return nil, err
	}
	if n.TypeName, err = r.str(); err != nil {
		return nil, err
	}
	if n.Offset, err = r.i64(); err != nil {
		return nil, err
	}
	if n.Size, err = r.i64(); err != nil {
		return nil, err
	}
	if n.Align, err = r.i64(); err != nil {
		return nil, err
	}
	if n.TypeLocation, err = r.position(); err != nil {
		return nil, err
	}
	if n.FieldLocation, err = r.position(); err != nil {
		return nil, err
	}

	childCount, err := r.u32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < childCount; i++ {
		child, err := r.node()
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, child)
	}

	return n, nil
}
