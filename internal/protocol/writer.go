package protocol

import (
	"encoding/binary"
	"math"

	"github.com/udisondev/navgo/internal/constants"
	"github.com/udisondev/navgo/internal/geom"
)

const headerLen = constants.FrameHeaderSize + constants.FrameTypeSize

// Writer builds one response frame in place.
// The first bytes of the buffer are reserved for the length prefix and the
// type byte, which Finish fills in.
type Writer struct {
	buf []byte
}

// NewWriter creates a Writer that appends to buf[:0]. buf may come from a pool.
func NewWriter(buf []byte) *Writer {
	w := &Writer{buf: buf}
	w.Reset()
	return w
}

// Reset discards the body written so far.
func (w *Writer) Reset() {
	w.buf = append(w.buf[:0], make([]byte, headerLen)...)
}

// WriteByte writes a single byte.
func (w *Writer) WriteByte(b byte) error {
	w.buf = append(w.buf, b)
	return nil
}

// WriteInt32 writes an int32 (4 bytes, LE).
func (w *Writer) WriteInt32(v int32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(v))
}

// WriteFloat32 writes a float32 (4 bytes, LE).
func (w *Writer) WriteFloat32(v float32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, math.Float32bits(v))
}

// WriteVec3 writes a point as 3×float32.
func (w *Writer) WriteVec3(v geom.Vec3) {
	w.buf = appendVec3(w.buf, v)
}

// WriteVec3s writes points back to back without a count.
func (w *Writer) WriteVec3s(pts []geom.Vec3) {
	for _, p := range pts {
		w.buf = appendVec3(w.buf, p)
	}
}

// Len returns the body length written so far.
func (w *Writer) Len() int {
	return len(w.buf) - headerLen
}

// Body returns the body written so far.
func (w *Writer) Body() []byte {
	return w.buf[headerLen:]
}

// Finish fills the header for msgType and returns the complete frame.
// The frame aliases the Writer's buffer.
func (w *Writer) Finish(msgType MessageType) []byte {
	binary.LittleEndian.PutUint32(w.buf[0:], uint32(len(w.buf)-constants.FrameHeaderSize))
	w.buf[constants.FrameHeaderSize] = byte(msgType)
	return w.buf
}

// Buffer returns the underlying buffer so it can be returned to a pool.
func (w *Writer) Buffer() []byte {
	return w.buf
}

func appendVec3(b []byte, v geom.Vec3) []byte {
	b = binary.LittleEndian.AppendUint32(b, math.Float32bits(v.X))
	b = binary.LittleEndian.AppendUint32(b, math.Float32bits(v.Y))
	return binary.LittleEndian.AppendUint32(b, math.Float32bits(v.Z))
}
