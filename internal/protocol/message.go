// Package protocol implements the binary framing and message layouts of the
// navigation TCP protocol.
//
// Every frame is [int32 LE length][u8 message type][body] where length
// counts the type byte plus the body. All multi-byte values are little-endian.
package protocol

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownMessageType is returned for a type byte with no registered handler.
	ErrUnknownMessageType = errors.New("unknown message type")

	// ErrMalformedFrame is returned for an illegal length prefix or a body shorter than its layout.
	ErrMalformedFrame = errors.New("malformed frame")
)

// MessageType identifies the operation requested by a frame.
type MessageType uint8

const (
	MsgPath MessageType = iota
	MsgMoveAlongSurface
	MsgRandomPoint
	MsgRandomPointAround
	MsgCastRay
	MsgRandomPath
	MsgExplorePoly
	MsgConfigureFilter
)

// String returns string representation of message type.
func (t MessageType) String() string {
	switch t {
	case MsgPath:
		return "PATH"
	case MsgMoveAlongSurface:
		return "MOVE_ALONG_SURFACE"
	case MsgRandomPoint:
		return "RANDOM_POINT"
	case MsgRandomPointAround:
		return "RANDOM_POINT_AROUND"
	case MsgCastRay:
		return "CAST_RAY"
	case MsgRandomPath:
		return "RANDOM_PATH"
	case MsgExplorePoly:
		return "EXPLORE_POLY"
	case MsgConfigureFilter:
		return "CONFIGURE_FILTER"
	default:
		return fmt.Sprintf("MessageType(%d)", uint8(t))
	}
}

// PathFlags select the post-processing of point-list responses.
type PathFlags uint8

const (
	FlagSmoothChaikin    PathFlags = 0x01
	FlagSmoothCatmullRom PathFlags = 0x02
	FlagSmoothBezier     PathFlags = 0x04
	// FlagValidateCPOP snaps every point to the closest point on the mesh.
	FlagValidateCPOP PathFlags = 0x08
	// FlagValidateMAS re-walks the path with surface moves.
	FlagValidateMAS PathFlags = 0x10
)

// Has reports whether all bits of f are set.
func (p PathFlags) Has(f PathFlags) bool {
	return p&f == f
}

// Smoothing returns the smoothing flag that applies: the first set bit
// among Chaikin, Catmull-Rom and Bezier, or zero.
func (p PathFlags) Smoothing() PathFlags {
	switch {
	case p.Has(FlagSmoothChaikin):
		return FlagSmoothChaikin
	case p.Has(FlagSmoothCatmullRom):
		return FlagSmoothCatmullRom
	case p.Has(FlagSmoothBezier):
		return FlagSmoothBezier
	}
	return 0
}
