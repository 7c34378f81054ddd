package navmesh

import (
	"encoding/binary"
	"fmt"

	"github.com/udisondev/navgo/internal/constants"
)

// TileHeader is the fixed header in front of every per-tile file.
type TileHeader struct {
	Magic         uint32
	EngineVersion uint32
	FormatVersion uint32
	Size          uint32
	UsesLiquids   bool
}

// UnmarshalBinary decodes the 20-byte little-endian header.
func (h *TileHeader) UnmarshalBinary(data []byte) error {
	if len(data) < constants.TileHeaderSize {
		return fmt.Errorf("%w: tile header: not enough data (len=%d)", ErrFormatMismatch, len(data))
	}
	h.Magic = binary.LittleEndian.Uint32(data[0:])
	h.EngineVersion = binary.LittleEndian.Uint32(data[4:])
	h.FormatVersion = binary.LittleEndian.Uint32(data[8:])
	h.Size = binary.LittleEndian.Uint32(data[12:])
	h.UsesLiquids = data[16] != 0
	return nil
}

// AppendBinary appends the 20-byte encoding of h to b.
func (h TileHeader) AppendBinary(b []byte) ([]byte, error) {
	b = binary.LittleEndian.AppendUint32(b, h.Magic)
	b = binary.LittleEndian.AppendUint32(b, h.EngineVersion)
	b = binary.LittleEndian.AppendUint32(b, h.FormatVersion)
	b = binary.LittleEndian.AppendUint32(b, h.Size)
	var liquids byte
	if h.UsesLiquids {
		liquids = 1
	}
	return append(b, liquids, 0, 0, 0), nil
}

// Validate checks the magic and the minimum format version.
func (h TileHeader) Validate() error {
	if h.Magic != constants.TileMagic {
		return fmt.Errorf("%w: bad tile magic 0x%08X", ErrFormatMismatch, h.Magic)
	}
	if h.FormatVersion < constants.MinTileVersion {
		return fmt.Errorf("%w: tile version %d < %d", ErrFormatMismatch, h.FormatVersion, constants.MinTileVersion)
	}
	return nil
}

// SplitTile validates the header of a per-tile file and returns the engine blob.
func SplitTile(data []byte) ([]byte, error) {
	var h TileHeader
	if err := h.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}
	blob := data[constants.TileHeaderSize:]
	if uint64(len(blob)) < uint64(h.Size) {
		return nil, fmt.Errorf("%w: tile blob truncated (have=%d, want=%d)", ErrFormatMismatch, len(blob), h.Size)
	}
	return blob[:h.Size], nil
}

// EncodeTile prepends a current-version header to an engine blob.
func EncodeTile(blob []byte, usesLiquids bool) []byte {
	h := TileHeader{
		Magic:         constants.TileMagic,
		FormatVersion: constants.MinTileVersion,
		Size:          uint32(len(blob)),
		UsesLiquids:   usesLiquids,
	}
	out, _ := h.AppendBinary(make([]byte, 0, constants.TileHeaderSize+len(blob)))
	return append(out, blob...)
}
