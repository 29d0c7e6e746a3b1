package slbin

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"

	"github.com/nedwardsnae/StructLayout/layout"
)

// Write serializes res to w.
func Write(w io.Writer, res *layout.Result) error {
	bw := &writer{w: bufio.NewWriter(w)}

	bw.bytes(Magic[:])
	bw.u16(Version)

	bw.u32(uint32(len(res.Files)))
	for _, name := range res.Files {
		bw.str(name)
	}

	if res.Root != nil {
		bw.u8(1)
		bw.node(res.Root)
	} else {
		bw.u8(0)
	}

	if bw.err != nil {
		return bw.err
	}
	return bw.w.(*bufio.Writer).Flush()
}

// WriteFile serializes res to the named file, creating or truncating it.
func WriteFile(path string, res *layout.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := Write(f, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// writer emits little-endian values with a sticky error, so encoding code
// can run straight through and check once.
type writer struct {
	w   io.Writer
	buf [8]byte
	err error
}

func (w *writer) bytes(b []byte) {
	if w.err != nil {
		return
	}
	_, w.err = w.w.Write(b)
}

func (w *writer) u8(v uint8) {
	w.buf[0] = v
	w.bytes(w.buf[:1])
}

func (w *writer) u16(v uint16) {
	binary.LittleEndian.PutUint16(w.buf[:2], v)
	w.bytes(w.buf[:2])
}

func (w *writer) u32(v uint32) {
	binary.LittleEndian.PutUint32(w.buf[:4], v)
	w.bytes(w.buf[:4])
}

func (w *writer) i32(v int32) { w.u32(uint32(v)) }

func (w *writer) i64(v int64) {
	binary.LittleEndian.PutUint64(w.buf[:8], uint64(v))
	w.bytes(w.buf[:8])
}

func (w *writer) str(s string) {
	w.u32(uint32(len(s)))
	w.bytes([]byte(s))
}

func (w *writer) position(p *layout.Position) {
	if p == nil {
		w.u8(0)
		return
	}
	w.u8(1)
	w.i32(int32(p.File))
	w.u32(p.Line)
	w.u32(p.Column)
}

func (w *writer) node(n *layout.Node) {
	w.u8(uint8(n.Category))
	w.str(n.Name)
	w.str(n.TypeName)
	w.i64(n.Offset)
	w.i64(n.Size)
	w.i64(n.Align)
	w.position(n.TypeLocation)
	w.position(n.FieldLocation)

	w.u32(uint32(len(n.Children)))
	for _, child := range n.Children {
		w.node(child)
	}
}
