// Package detour defines the navigation-mesh engine capability the server
// is built on: immutable multi-tile meshes and per-session query objects.
//
// All positions passed to and returned from an Engine are in the engine
// frame (Y up). The concrete engine is pluggable; see package rectmesh for
// the built-in one.
package detour

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/udisondev/navgo/internal/geom"
)

// PolyRef identifies a polygon inside a mesh. Zero is never a valid reference.
type PolyRef uint64

// TileRef identifies a tile inside a mesh. Zero is never a valid reference.
type TileRef uint64

// NoHit is the RaycastHit.T value of a ray that reached its end point unobstructed.
const NoHit float32 = math.MaxFloat32

// MeshParamsSize is the encoded size of MeshParams.
const MeshParamsSize = 28

var (
	// ErrFailure is a generic operation failure.
	ErrFailure = errors.New("detour: failure")

	// ErrInvalidParam is returned for invalid references or arguments.
	ErrInvalidParam = errors.New("detour: invalid param")

	// ErrWrongMagic is returned by AddTile for blobs of an unknown layout.
	ErrWrongMagic = errors.New("detour: wrong magic")

	// ErrWrongVersion is returned by AddTile for blobs of an unsupported version.
	ErrWrongVersion = errors.New("detour: wrong version")

	// ErrOutOfMemory is returned when a mesh cannot take more tiles or polygons.
	ErrOutOfMemory = errors.New("detour: out of memory")
)

// RaycastHit describes the result of a ray walk along the mesh surface.
type RaycastHit struct {
	// T is the hit parameter along the ray (0..1), or NoHit when the end was reached.
	T float32
	// Normal of the wall that was hit.
	Normal geom.Vec3
	// Visited polygons.
	PathCount int
}

// MeshParams describes the tile layout of a multi-tile mesh.
type MeshParams struct {
	Origin     geom.Vec3
	TileWidth  float32
	TileHeight float32
	MaxTiles   int32
	MaxPolys   int32
}

// UnmarshalBinary decodes the 28-byte little-endian parameter block.
func (p *MeshParams) UnmarshalBinary(data []byte) error {
	if len(data) < MeshParamsSize {
		return fmt.Errorf("mesh params: not enough data (len=%d, need=%d)", len(data), MeshParamsSize)
	}
	f := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(data[off:])) }
	p.Origin = geom.Vec3{X: f(0), Y: f(4), Z: f(8)}
	p.TileWidth = f(12)
	p.TileHeight = f(16)
	p.MaxTiles = int32(binary.LittleEndian.Uint32(data[20:]))
	p.MaxPolys = int32(binary.LittleEndian.Uint32(data[24:]))
	return nil
}

// AppendBinary appends the 28-byte little-endian encoding of p to b.
func (p MeshParams) AppendBinary(b []byte) ([]byte, error) {
	put := func(v float32) { b = binary.LittleEndian.AppendUint32(b, math.Float32bits(v)) }
	put(p.Origin.X)
	put(p.Origin.Y)
	put(p.Origin.Z)
	put(p.TileWidth)
	put(p.TileHeight)
	b = binary.LittleEndian.AppendUint32(b, uint32(p.MaxTiles))
	b = binary.LittleEndian.AppendUint32(b, uint32(p.MaxPolys))
	return b, nil
}

// Engine creates meshes and query objects.
type Engine interface {
	// NewMesh allocates an empty multi-tile mesh.
	NewMesh(params MeshParams) (Mesh, error)
	// NewQuery creates a query bound to mesh with a node budget of maxNodes.
	NewQuery(mesh Mesh, maxNodes int) (Query, error)
}

// Mesh is a navigation mesh. Tiles are added during loading only; once
// loading completes the mesh is immutable and safe for concurrent queries.
type Mesh interface {
	// AddTile takes ownership of data and links the tile into the mesh.
	AddTile(data []byte) (TileRef, error)
	// TileCount returns the number of tiles added so far.
	TileCount() int
}

// Query runs searches on a mesh. A Query holds mutable search state and
// must not be used from more than one goroutine at a time.
type Query interface {
	// FindNearestPoly returns the polygon closest to center within the
	// half-extents box and the closest point on it. Ref is zero when no
	// polygon passing the filter overlaps the box.
	FindNearestPoly(center, extents geom.Vec3, filter *QueryFilter) (PolyRef, geom.Vec3, error)

	// FindPath computes a polygon corridor from startRef to endRef and
	// writes it into path. Returns the number of polygons written; when the
	// goal is unreachable the corridor leads to the polygon closest to it.
	FindPath(startRef, endRef PolyRef, startPos, endPos geom.Vec3, filter *QueryFilter, path []PolyRef) (int, error)

	// FindStraightPath string-pulls a corridor into corner points, appending
	// them to out until it is full.
	FindStraightPath(startPos, endPos geom.Vec3, corridor []PolyRef, out *geom.Path) error

	// MoveAlongSurface moves from startPos towards endPos constrained to the
	// mesh surface, visiting at most maxVisited polygons.
	MoveAlongSurface(startRef PolyRef, startPos, endPos geom.Vec3, filter *QueryFilter, maxVisited int) (geom.Vec3, error)

	// Raycast walks a ray from startPos to endPos along the surface.
	Raycast(startRef PolyRef, startPos, endPos geom.Vec3, filter *QueryFilter) (RaycastHit, error)

	// FindRandomPoint returns a uniformly distributed point on the mesh.
	FindRandomPoint(filter *QueryFilter, rnd geom.RandomSource) (PolyRef, geom.Vec3, error)

	// FindRandomPointAroundCircle returns a random point on polygons reachable
	// from startRef whose distance to center is within radius.
	FindRandomPointAroundCircle(startRef PolyRef, center geom.Vec3, radius float32, filter *QueryFilter, rnd geom.RandomSource) (PolyRef, geom.Vec3, error)
}
