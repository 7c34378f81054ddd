package protocol

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/udisondev/navgo/internal/constants"
	"github.com/udisondev/navgo/internal/geom"
)

// PathRequest is the body of PATH and RANDOM_PATH.
type PathRequest struct {
	MapID int32
	Start geom.Vec3
	End   geom.Vec3
	Flags PathFlags
}

// SegmentRequest is the body of MOVE_ALONG_SURFACE and CAST_RAY.
type SegmentRequest struct {
	MapID int32
	Start geom.Vec3
	End   geom.Vec3
}

// RandomPointRequest is the body of RANDOM_POINT.
type RandomPointRequest struct {
	MapID int32
}

// RandomPointAroundRequest is the body of RANDOM_POINT_AROUND.
type RandomPointAroundRequest struct {
	MapID  int32
	Start  geom.Vec3
	Radius float32
}

// ExplorePolyRequest is the body of EXPLORE_POLY.
type ExplorePolyRequest struct {
	MapID        int32
	Boundary     []geom.Vec3
	Start        geom.Vec3
	ViewDistance float32
	Flags        PathFlags
}

// AreaCost overrides the traversal cost of one area id.
type AreaCost struct {
	Area uint8
	Cost float32
}

// ConfigureFilterRequest is the body of CONFIGURE_FILTER.
type ConfigureFilterRequest struct {
	State uint8
	Costs []AreaCost
}

// DecodePathRequest parses a PATH or RANDOM_PATH body.
func DecodePathRequest(body []byte) (PathRequest, error) {
	var req PathRequest
	r := NewReader(body)
	var err error
	if req.MapID, err = r.ReadInt32(); err != nil {
		return req, err
	}
	if req.Start, err = r.ReadVec3(); err != nil {
		return req, err
	}
	if req.End, err = r.ReadVec3(); err != nil {
		return req, err
	}
	flags, err := r.ReadByte()
	if err != nil {
		return req, err
	}
	req.Flags = PathFlags(flags)
	return req, nil
}

// DecodeSegmentRequest parses a MOVE_ALONG_SURFACE or CAST_RAY body.
func DecodeSegmentRequest(body []byte) (SegmentRequest, error) {
	var req SegmentRequest
	r := NewReader(body)
	var err error
	if req.MapID, err = r.ReadInt32(); err != nil {
		return req, err
	}
	if req.Start, err = r.ReadVec3(); err != nil {
		return req, err
	}
	req.End, err = r.ReadVec3()
	return req, err
}

// DecodeRandomPointRequest parses a RANDOM_POINT body.
func DecodeRandomPointRequest(body []byte) (RandomPointRequest, error) {
	id, err := NewReader(body).ReadInt32()
	return RandomPointRequest{MapID: id}, err
}

// DecodeRandomPointAroundRequest parses a RANDOM_POINT_AROUND body.
func DecodeRandomPointAroundRequest(body []byte) (RandomPointAroundRequest, error) {
	var req RandomPointAroundRequest
	r := NewReader(body)
	var err error
	if req.MapID, err = r.ReadInt32(); err != nil {
		return req, err
	}
	if req.Start, err = r.ReadVec3(); err != nil {
		return req, err
	}
	req.Radius, err = r.ReadFloat32()
	return req, err
}

// DecodeExplorePolyRequest parses an EXPLORE_POLY body.
func DecodeExplorePolyRequest(body []byte) (ExplorePolyRequest, error) {
	var req ExplorePolyRequest
	r := NewReader(body)
	var err error
	if req.MapID, err = r.ReadInt32(); err != nil {
		return req, err
	}
	count, err := r.ReadInt32()
	if err != nil {
		return req, err
	}
	if req.Boundary, err = r.ReadVec3s(int(count)); err != nil {
		return req, err
	}
	if req.Start, err = r.ReadVec3(); err != nil {
		return req, err
	}
	if req.ViewDistance, err = r.ReadFloat32(); err != nil {
		return req, err
	}
	flags, err := r.ReadByte()
	if err != nil {
		return req, err
	}
	req.Flags = PathFlags(flags)
	return req, nil
}

// DecodeConfigureFilterRequest parses a CONFIGURE_FILTER body.
func DecodeConfigureFilterRequest(body []byte) (ConfigureFilterRequest, error) {
	var req ConfigureFilterRequest
	r := NewReader(body)
	var err error
	if req.State, err = r.ReadByte(); err != nil {
		return req, err
	}
	count, err := r.ReadByte()
	if err != nil {
		return req, err
	}
	if r.Remaining() < int(count)*5 {
		return req, fmt.Errorf("%w: ConfigureFilter: %d costs need %d bytes, have %d",
			ErrMalformedFrame, count, int(count)*5, r.Remaining())
	}
	req.Costs = make([]AreaCost, count)
	for i := range req.Costs {
		// длина проверена выше
		req.Costs[i].Area, _ = r.ReadByte()
		req.Costs[i].Cost, _ = r.ReadFloat32()
	}
	return req, nil
}

// Клиентские кодировщики тел запросов.

// AppendBody appends the encoded body to dst.
func (p PathRequest) AppendBody(dst []byte) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, uint32(p.MapID))
	dst = appendVec3(dst, p.Start)
	dst = appendVec3(dst, p.End)
	return append(dst, byte(p.Flags))
}

// AppendBody appends the encoded body to dst.
func (s SegmentRequest) AppendBody(dst []byte) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, uint32(s.MapID))
	dst = appendVec3(dst, s.Start)
	return appendVec3(dst, s.End)
}

// AppendBody appends the encoded body to dst.
func (p RandomPointRequest) AppendBody(dst []byte) []byte {
	return binary.LittleEndian.AppendUint32(dst, uint32(p.MapID))
}

// AppendBody appends the encoded body to dst.
func (p RandomPointAroundRequest) AppendBody(dst []byte) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, uint32(p.MapID))
	dst = appendVec3(dst, p.Start)
	return binary.LittleEndian.AppendUint32(dst, math.Float32bits(p.Radius))
}

// AppendBody appends the encoded body to dst.
func (e ExplorePolyRequest) AppendBody(dst []byte) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, uint32(e.MapID))
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(e.Boundary)))
	for _, p := range e.Boundary {
		dst = appendVec3(dst, p)
	}
	dst = appendVec3(dst, e.Start)
	dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(e.ViewDistance))
	return append(dst, byte(e.Flags))
}

// AppendBody appends the encoded body to dst.
func (c ConfigureFilterRequest) AppendBody(dst []byte) []byte {
	dst = append(dst, c.State, byte(len(c.Costs)))
	for _, ac := range c.Costs {
		dst = append(dst, ac.Area)
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(ac.Cost))
	}
	return dst
}

// DecodePoints parses a point-list response body.
func DecodePoints(body []byte) ([]geom.Vec3, error) {
	if len(body)%constants.Vec3Size != 0 {
		return nil, fmt.Errorf("%w: point list of %d bytes", ErrMalformedFrame, len(body))
	}
	return NewReader(body).ReadVec3s(len(body) / constants.Vec3Size)
}

// DecodePoint parses a single-point response body.
func DecodePoint(body []byte) (geom.Vec3, error) {
	return NewReader(body).ReadVec3()
}
