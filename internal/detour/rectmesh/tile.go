package rectmesh

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/udisondev/navgo/internal/detour"
)

// Tile blob layout (little-endian):
//
//	magic u32 | version u32 | tileX i32 | tileY i32 | polyCount u32
//	polyCount × { minX f32 | minZ f32 | maxX f32 | maxZ f32 | height f32 | flags u16 | area u8 | pad u8 }
const (
	// TileMagic is "RMSH".
	TileMagic   uint32 = 'R'<<24 | 'M'<<16 | 'S'<<8 | 'H'
	TileVersion uint32 = 1

	tileHeaderSize = 20
	polySize       = 24
)

// Poly is an axis-aligned walkable rectangle in the engine horizontal plane (X/Z) at a fixed height.
type Poly struct {
	MinX, MinZ float32
	MaxX, MaxZ float32
	Height     float32
	Flags      uint16
	Area       uint8
}

// Tile is the decoded contents of a tile blob.
type Tile struct {
	X, Y  int32
	Polys []Poly
}

// MarshalBinary encodes the tile into its blob layout.
func (t Tile) MarshalBinary() ([]byte, error) {
	b := make([]byte, 0, tileHeaderSize+len(t.Polys)*polySize)
	b = binary.LittleEndian.AppendUint32(b, TileMagic)
	b = binary.LittleEndian.AppendUint32(b, TileVersion)
	b = binary.LittleEndian.AppendUint32(b, uint32(t.X))
	b = binary.LittleEndian.AppendUint32(b, uint32(t.Y))
	b = binary.LittleEndian.AppendUint32(b, uint32(len(t.Polys)))
	for _, p := range t.Polys {
		for _, f := range [...]float32{p.MinX, p.MinZ, p.MaxX, p.MaxZ, p.Height} {
			b = binary.LittleEndian.AppendUint32(b, math.Float32bits(f))
		}
		b = binary.LittleEndian.AppendUint16(b, p.Flags)
		b = append(b, p.Area, 0)
	}
	return b, nil
}

// DecodeTile parses a tile blob.
func DecodeTile(data []byte) (Tile, error) {
	if len(data) < tileHeaderSize {
		return Tile{}, fmt.Errorf("%w: tile too short (len=%d)", detour.ErrInvalidParam, len(data))
	}
	if magic := binary.LittleEndian.Uint32(data); magic != TileMagic {
		return Tile{}, fmt.Errorf("%w: 0x%08X", detour.ErrWrongMagic, magic)
	}
	if version := binary.LittleEndian.Uint32(data[4:]); version != TileVersion {
		return Tile{}, fmt.Errorf("%w: %d", detour.ErrWrongVersion, version)
	}

	t := Tile{
		X: int32(binary.LittleEndian.Uint32(data[8:])),
		Y: int32(binary.LittleEndian.Uint32(data[12:])),
	}
	count := int(binary.LittleEndian.Uint32(data[16:]))
	if len(data)-tileHeaderSize < count*polySize {
		return Tile{}, fmt.Errorf("%w: %d polys need %d bytes, have %d",
			detour.ErrInvalidParam, count, count*polySize, len(data)-tileHeaderSize)
	}

	t.Polys = make([]Poly, count)
	off := tileHeaderSize
	f := func() float32 {
		v := math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
		off += 4
		return v
	}
	for i := range t.Polys {
		p := &t.Polys[i]
		p.MinX, p.MinZ, p.MaxX, p.MaxZ, p.Height = f(), f(), f(), f(), f()
		p.Flags = binary.LittleEndian.Uint16(data[off:])
		p.Area = data[off+2]
		off += 4

		if !(p.MinX < p.MaxX && p.MinZ < p.MaxZ) {
			return Tile{}, fmt.Errorf("%w: poly %d has empty bounds", detour.ErrInvalidParam, i)
		}
	}
	return t, nil
}
