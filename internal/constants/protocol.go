package constants

// Navigation Protocol Constants
//
// Wire-level constants for the navigation TCP protocol. Every frame is
// [int32 LE length][u8 message type][body], where length counts the type
// byte plus the body.

// Frame Structure Constants
const (
	// FrameHeaderSize is the length prefix size (4 bytes, little-endian int32)
	FrameHeaderSize = 4

	// FrameTypeSize is the message type size following the length prefix
	FrameTypeSize = 1

	// MinFrameLength is the smallest legal length prefix (type byte, empty body)
	MinFrameLength = FrameTypeSize

	// MaxFrameLength caps the length prefix; larger values are treated as malformed
	MaxFrameLength = 64 * 1024

	// Vec3Size is the encoded size of a point (3×float32 LE)
	Vec3Size = 12
)

// Buffer Pool Size Constants
const (
	// DefaultSendBufSize is the initial response buffer capacity
	DefaultSendBufSize = 4096

	// DefaultReadBufSize is the read buffer capacity (one full frame)
	DefaultReadBufSize = FrameHeaderSize + MaxFrameLength
)

// Server Default Constants
const (
	// DefaultPort is the default TCP port of the navigation server
	DefaultPort = 47110

	// DefaultMaxPolyPath is the default corridor buffer size (polygons per session)
	DefaultMaxPolyPath = 512

	// DefaultMaxPointPath is the default point buffer size (points per session)
	DefaultMaxPointPath = 256

	// DefaultMaxSearchNodes is the default node budget of a per-map query
	DefaultMaxSearchNodes = 65535

	// DefaultPolySearchExtent is the half-extent of the nearest-polygon query box
	DefaultPolySearchExtent = 6.0

	// DefaultMoveVisitedBudget bounds polygons visited by one surface move
	DefaultMoveVisitedBudget = 16
)

// Tile File Constants
//
// Per-tile file header: magic u32 | engine version u32 | format version u32 |
// blob size u32 | uses liquids u8 | padding [3]u8, followed by the engine blob.
const (
	// TileMagic is the per-tile file magic ("MMAP" as LE u32)
	TileMagic = 0x4D4D4150

	// MinTileVersion is the minimum supported tile format version
	MinTileVersion = 15

	// TileHeaderSize is the per-tile file header size
	TileHeaderSize = 20

	// TileGridSize is the side of the square tile grid of a map
	TileGridSize = 64

	// DefaultTileLoadWorkers is the default number of parallel tile readers
	DefaultTileLoadWorkers = 4
)
