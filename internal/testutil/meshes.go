package testutil

import (
	"fmt"
	"io/fs"
	"sync/atomic"
	"testing"
	"time"

	"github.com/udisondev/navgo/internal/detour"
	"github.com/udisondev/navgo/internal/detour/rectmesh"
	"github.com/udisondev/navgo/internal/filter"
	"github.com/udisondev/navgo/internal/geom"
	"github.com/udisondev/navgo/internal/navmesh"
)

// TestMapID is the map id used by mesh fixtures.
const TestMapID int32 = 1

// MemMap is the in-memory container of one map.
type MemMap struct {
	Params []byte
	// Tiles are engine blobs keyed by tile coordinates.
	Tiles map[[2]int][]byte
}

// MemSource is an in-memory navmesh.Source that counts opened containers.
type MemSource struct {
	Fmt  filter.Format
	Maps map[int32]*MemMap
	// Delay is slept inside Open to widen race windows in concurrency tests.
	Delay time.Duration

	opens atomic.Int64
}

// Format returns the configured format.
func (s *MemSource) Format() filter.Format { return s.Fmt }

// Open returns the container of mapID or navmesh.ErrNotFound.
func (s *MemSource) Open(mapID int32) (navmesh.Container, error) {
	s.opens.Add(1)
	if s.Delay > 0 {
		time.Sleep(s.Delay)
	}
	m, ok := s.Maps[mapID]
	if !ok {
		return nil, fmt.Errorf("%w: map %d", navmesh.ErrNotFound, mapID)
	}
	return memContainer{m}, nil
}

// Opens returns how many times Open was called.
func (s *MemSource) Opens() int64 { return s.opens.Load() }

type memContainer struct{ m *MemMap }

func (c memContainer) Params() ([]byte, error) {
	if c.m.Params == nil {
		return nil, fs.ErrNotExist
	}
	return c.m.Params, nil
}

func (c memContainer) Tile(x, y int) ([]byte, error) {
	blob, ok := c.m.Tiles[[2]int{x, y}]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return blob, nil
}

func (c memContainer) Close() error { return nil }

// Walkable polygon flags and area of the TC335A format used by fixtures.
const (
	GroundFlags = filter.Flag335aGround
	GroundArea  = filter.Area335aGround
)

// MeshParams returns parameters for a small fixture mesh.
func MeshParams() detour.MeshParams {
	return detour.MeshParams{TileWidth: 533.3333, TileHeight: 533.3333, MaxTiles: 64, MaxPolys: 1024}
}

// EncodeParams encodes p, failing the test on error.
func EncodeParams(t testing.TB, p detour.MeshParams) []byte {
	t.Helper()
	b, err := p.AppendBinary(nil)
	if err != nil {
		t.Fatalf("encode mesh params: %v", err)
	}
	return b
}

// EncodeRectTile encodes a rectangle tile, failing the test on error.
func EncodeRectTile(t testing.TB, x, y int32, polys ...rectmesh.Poly) []byte {
	t.Helper()
	b, err := rectmesh.Tile{X: x, Y: y, Polys: polys}.MarshalBinary()
	if err != nil {
		t.Fatalf("encode tile: %v", err)
	}
	return b
}

// Ground returns a walkable rectangle in engine coordinates.
func Ground(minX, minZ, maxX, maxZ float32) rectmesh.Poly {
	return rectmesh.Poly{MinX: minX, MinZ: minZ, MaxX: maxX, MaxZ: maxZ, Flags: GroundFlags, Area: GroundArea}
}

// Two-polygon fixture: A spans engine X 0..10, B spans X 10..20, both Z 0..10 at height 0.
var (
	// PointInA is a client-frame point on polygon A.
	PointInA = geom.ToExternal(geom.Vec3{X: 5, Y: 0, Z: 5})
	// PointInB is a client-frame point on polygon B.
	PointInB = geom.ToExternal(geom.Vec3{X: 15, Y: 0, Z: 5})
)

// TwoPolyMap returns a map with two adjacent walkable rectangles A and B.
func TwoPolyMap(t testing.TB) *MemMap {
	t.Helper()
	return &MemMap{
		Params: EncodeParams(t, MeshParams()),
		Tiles: map[[2]int][]byte{
			{32, 32}: EncodeRectTile(t, 32, 32, Ground(0, 0, 10, 10), Ground(10, 0, 20, 10)),
		},
	}
}

// TwoPolySource returns a TC335A source serving TwoPolyMap as TestMapID.
func TwoPolySource(t testing.TB) *MemSource {
	t.Helper()
	return &MemSource{
		Fmt:  filter.FormatTC335A,
		Maps: map[int32]*MemMap{TestMapID: TwoPolyMap(t)},
	}
}

// LShapeMap returns a map of three rectangles: A (X 0..10, Z 0..10),
// B (X 10..20, Z 0..10) and C (X 10..20, Z 10..20). A path from A to C turns
// around the corner (10, 10).
func LShapeMap(t testing.TB) *MemMap {
	t.Helper()
	return &MemMap{
		Params: EncodeParams(t, MeshParams()),
		Tiles: map[[2]int][]byte{
			{32, 32}: EncodeRectTile(t, 32, 32,
				Ground(0, 0, 10, 10), Ground(10, 0, 20, 10), Ground(10, 10, 20, 20)),
		},
	}
}
