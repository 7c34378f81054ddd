// Package rectmesh is a navigation engine over meshes made of axis-aligned
// rectangles. Rectangles sharing an edge are linked; searches run A* over
// the link graph and string-pull the resulting corridor.
package rectmesh

import (
	"fmt"
	"math"

	"github.com/udisondev/navgo/internal/detour"
	"github.com/udisondev/navgo/internal/geom"
)

const (
	// edgeEpsilon is the tolerance used when matching shared edges and portals.
	edgeEpsilon = 1e-3

	// MaxClimb is the largest height difference between linked polygons.
	MaxClimb = 2.0

	maxQueryNodes = 65535
)

// Engine creates rectangle meshes and queries.
type Engine struct{}

// New returns the rectangle engine.
func New() *Engine {
	return &Engine{}
}

// NewMesh allocates an empty mesh.
func (e *Engine) NewMesh(params detour.MeshParams) (detour.Mesh, error) {
	if params.MaxTiles < 0 || params.MaxPolys < 0 {
		return nil, fmt.Errorf("%w: negative limits (tiles=%d, polys=%d)", detour.ErrInvalidParam, params.MaxTiles, params.MaxPolys)
	}
	if math.IsNaN(float64(params.TileWidth)) || math.IsNaN(float64(params.TileHeight)) {
		return nil, fmt.Errorf("%w: tile size is NaN", detour.ErrInvalidParam)
	}
	return &Mesh{params: params}, nil
}

// NewQuery creates a query over mesh, which must have been created by this engine.
func (e *Engine) NewQuery(m detour.Mesh, maxNodes int) (detour.Query, error) {
	mesh, ok := m.(*Mesh)
	if !ok || mesh == nil {
		return nil, fmt.Errorf("%w: foreign mesh %T", detour.ErrInvalidParam, m)
	}
	if maxNodes <= 0 || maxNodes > maxQueryNodes {
		return nil, fmt.Errorf("%w: maxNodes=%d", detour.ErrInvalidParam, maxNodes)
	}
	return newQuery(mesh, maxNodes), nil
}

// link connects a polygon to a neighbour through a shared edge segment.
type link struct {
	to     int
	portal [2]geom.Vec3
}

type poly struct {
	Poly
	links []link
}

func (p *poly) center() geom.Vec3 {
	return geom.Vec3{X: (p.MinX + p.MaxX) / 2, Y: p.Height, Z: (p.MinZ + p.MaxZ) / 2}
}

func (p *poly) area() float32 {
	return (p.MaxX - p.MinX) * (p.MaxZ - p.MinZ)
}

// clamp returns the point of p closest to v horizontally, at the polygon height.
func (p *poly) clamp(v geom.Vec3) geom.Vec3 {
	return geom.Vec3{
		X: min(max(v.X, p.MinX), p.MaxX),
		Y: p.Height,
		Z: min(max(v.Z, p.MinZ), p.MaxZ),
	}
}

func (p *poly) linkTo(to int) (link, bool) {
	for _, l := range p.links {
		if l.to == to {
			return l, true
		}
	}
	return link{}, false
}

// Mesh is a multi-tile rectangle mesh.
type Mesh struct {
	params detour.MeshParams
	tiles  []Tile
	polys  []poly
}

// AddTile decodes data and links its polygons to the rest of the mesh.
// Not safe for concurrent use; meshes are populated by a single loader.
func (m *Mesh) AddTile(data []byte) (detour.TileRef, error) {
	tile, err := DecodeTile(data)
	if err != nil {
		return 0, err
	}
	if m.params.MaxTiles > 0 && len(m.tiles) >= int(m.params.MaxTiles) {
		return 0, fmt.Errorf("%w: tile limit %d reached", detour.ErrOutOfMemory, m.params.MaxTiles)
	}
	if m.params.MaxPolys > 0 && len(tile.Polys) > int(m.params.MaxPolys) {
		return 0, fmt.Errorf("%w: tile has %d polys, limit %d", detour.ErrOutOfMemory, len(tile.Polys), m.params.MaxPolys)
	}

	first := len(m.polys)
	for _, p := range tile.Polys {
		m.polys = append(m.polys, poly{Poly: p})
	}
	for i := first; i < len(m.polys); i++ {
		for j := range i {
			a, b := &m.polys[i], &m.polys[j]
			portal, ok := sharedEdge(a.Poly, b.Poly)
			if !ok {
				continue
			}
			a.links = append(a.links, link{to: j, portal: portal})
			b.links = append(b.links, link{to: i, portal: portal})
		}
	}

	m.tiles = append(m.tiles, tile)
	return detour.TileRef(len(m.tiles)), nil
}

// TileCount returns the number of tiles added.
func (m *Mesh) TileCount() int {
	return len(m.tiles)
}

// PolyCount returns the number of polygons across all tiles.
func (m *Mesh) PolyCount() int {
	return len(m.polys)
}

func (m *Mesh) poly(ref detour.PolyRef) (int, bool) {
	if ref == 0 || ref > detour.PolyRef(len(m.polys)) {
		return 0, false
	}
	return int(ref - 1), true
}

func ref(idx int) detour.PolyRef {
	return detour.PolyRef(idx + 1)
}

// sharedEdge returns the common edge segment of two rectangles.
func sharedEdge(a, b Poly) ([2]geom.Vec3, bool) {
	if math.Abs(float64(a.Height-b.Height)) > MaxClimb {
		return [2]geom.Vec3{}, false
	}
	y := (a.Height + b.Height) / 2

	if x, ok := touching(a.MinX, a.MaxX, b.MinX, b.MaxX); ok {
		z0, z1 := max(a.MinZ, b.MinZ), min(a.MaxZ, b.MaxZ)
		if z1-z0 > edgeEpsilon {
			return [2]geom.Vec3{{X: x, Y: y, Z: z0}, {X: x, Y: y, Z: z1}}, true
		}
	}
	if z, ok := touching(a.MinZ, a.MaxZ, b.MinZ, b.MaxZ); ok {
		x0, x1 := max(a.MinX, b.MinX), min(a.MaxX, b.MaxX)
		if x1-x0 > edgeEpsilon {
			return [2]geom.Vec3{{X: x0, Y: y, Z: z}, {X: x1, Y: y, Z: z}}, true
		}
	}
	return [2]geom.Vec3{}, false
}

func touching(aMin, aMax, bMin, bMax float32) (float32, bool) {
	switch {
	case abs32(aMax-bMin) <= edgeEpsilon:
		return aMax, true
	case abs32(bMax-aMin) <= edgeEpsilon:
		return aMin, true
	}
	return 0, false
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
