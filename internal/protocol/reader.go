package protocol

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/udisondev/navgo/internal/constants"
	"github.com/udisondev/navgo/internal/geom"
)

// Reader читает поля тела запроса.
// Любая нехватка данных оборачивает ErrMalformedFrame.
type Reader struct {
	data []byte
	pos  int
}

// NewReader создаёт Reader поверх тела кадра.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// ReadByte читает 1 байт.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, fmt.Errorf("%w: ReadByte: not enough data (pos=%d, len=%d)", ErrMalformedFrame, r.pos, len(r.data))
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadInt32 читает int32 (4 байта, LE).
func (r *Reader) ReadInt32() (int32, error) {
	if r.pos+4 > len(r.data) {
		return 0, fmt.Errorf("%w: ReadInt32: not enough data (pos=%d, len=%d)", ErrMalformedFrame, r.pos, len(r.data))
	}
	val := int32(binary.LittleEndian.Uint32(r.data[r.pos:]))
	r.pos += 4
	return val, nil
}

// ReadFloat32 читает float32 (4 байта, LE).
func (r *Reader) ReadFloat32() (float32, error) {
	if r.pos+4 > len(r.data) {
		return 0, fmt.Errorf("%w: ReadFloat32: not enough data (pos=%d, len=%d)", ErrMalformedFrame, r.pos, len(r.data))
	}
	val := math.Float32frombits(binary.LittleEndian.Uint32(r.data[r.pos:]))
	r.pos += 4
	return val, nil
}

// ReadVec3 читает точку (3×float32).
func (r *Reader) ReadVec3() (geom.Vec3, error) {
	if r.pos+constants.Vec3Size > len(r.data) {
		return geom.Vec3{}, fmt.Errorf("%w: ReadVec3: not enough data (pos=%d, len=%d)", ErrMalformedFrame, r.pos, len(r.data))
	}
	v := getVec3(r.data[r.pos:])
	r.pos += constants.Vec3Size
	return v, nil
}

// ReadVec3s читает n точек подряд.
func (r *Reader) ReadVec3s(n int) ([]geom.Vec3, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: ReadVec3s: negative count %d", ErrMalformedFrame, n)
	}
	if n > r.Remaining()/constants.Vec3Size {
		return nil, fmt.Errorf("%w: ReadVec3s: not enough data (pos=%d, need=%d, len=%d)",
			ErrMalformedFrame, r.pos, n*constants.Vec3Size, len(r.data))
	}
	out := make([]geom.Vec3, n)
	for i := range out {
		out[i] = getVec3(r.data[r.pos:])
		r.pos += constants.Vec3Size
	}
	return out, nil
}

// Remaining возвращает количество непрочитанных байт.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// Position возвращает текущую позицию чтения.
func (r *Reader) Position() int {
	return r.pos
}

func getVec3(b []byte) geom.Vec3 {
	return geom.Vec3{
		X: math.Float32frombits(binary.LittleEndian.Uint32(b[0:])),
		Y: math.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
		Z: math.Float32frombits(binary.LittleEndian.Uint32(b[8:])),
	}
}
