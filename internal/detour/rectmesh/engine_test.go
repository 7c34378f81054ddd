package rectmesh

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/navgo/internal/detour"
	"github.com/udisondev/navgo/internal/geom"
)

const walkable = 1

// buildLMesh creates an L-shaped mesh: A and B side by side along X, C on top of B along Z.
func buildLMesh(t *testing.T) (*Mesh, *Query) {
	t.Helper()

	e := New()
	m, err := e.NewMesh(detour.MeshParams{TileWidth: 533.33, TileHeight: 533.33, MaxTiles: 4, MaxPolys: 16})
	require.NoError(t, err)

	blob, err := Tile{Polys: []Poly{
		{MinX: 0, MinZ: 0, MaxX: 10, MaxZ: 10, Flags: walkable, Area: 1},
		{MinX: 10, MinZ: 0, MaxX: 20, MaxZ: 10, Flags: walkable, Area: 1},
		{MinX: 10, MinZ: 10, MaxX: 20, MaxZ: 20, Flags: walkable, Area: 1},
	}}.MarshalBinary()
	require.NoError(t, err)

	_, err = m.AddTile(blob)
	require.NoError(t, err)

	q, err := e.NewQuery(m, 2048)
	require.NoError(t, err)

	return m.(*Mesh), q.(*Query)
}

func allFilter() *detour.QueryFilter {
	return detour.NewQueryFilter()
}

func TestTileRoundTripAndLinks(t *testing.T) {
	m, _ := buildLMesh(t)

	assert.Equal(t, 1, m.TileCount())
	assert.Equal(t, 3, m.PolyCount())
	assert.Len(t, m.polys[0].links, 1, "A touches B only")
	assert.Len(t, m.polys[1].links, 2, "B touches A and C")
	assert.Len(t, m.polys[2].links, 1, "C touches B only")
}

func TestAddTileRejectsGarbage(t *testing.T) {
	m, err := New().NewMesh(detour.MeshParams{})
	require.NoError(t, err)

	_, err = m.AddTile([]byte{1, 2, 3})
	assert.ErrorIs(t, err, detour.ErrInvalidParam)

	blob := make([]byte, tileHeaderSize)
	_, err = m.AddTile(blob)
	assert.ErrorIs(t, err, detour.ErrWrongMagic)
}

func TestNewQueryValidation(t *testing.T) {
	e := New()
	m, err := e.NewMesh(detour.MeshParams{})
	require.NoError(t, err)

	_, err = e.NewQuery(m, 0)
	assert.ErrorIs(t, err, detour.ErrInvalidParam)

	_, err = e.NewQuery(m, 70000)
	assert.ErrorIs(t, err, detour.ErrInvalidParam)
}

func TestFindNearestPoly(t *testing.T) {
	_, q := buildLMesh(t)
	ext := geom.Vec3{X: 6, Y: 6, Z: 6}

	ref, pos, err := q.FindNearestPoly(geom.Vec3{X: 5, Y: 1, Z: 5}, ext, allFilter())
	require.NoError(t, err)
	assert.Equal(t, detour.PolyRef(1), ref)
	assert.Equal(t, geom.Vec3{X: 5, Y: 0, Z: 5}, pos)

	ref, pos, err = q.FindNearestPoly(geom.Vec3{X: 22, Y: 0, Z: 15}, ext, allFilter())
	require.NoError(t, err)
	assert.Equal(t, detour.PolyRef(3), ref)
	assert.Equal(t, geom.Vec3{X: 20, Y: 0, Z: 15}, pos)

	ref, _, err = q.FindNearestPoly(geom.Vec3{X: 100, Y: 0, Z: 100}, ext, allFilter())
	require.NoError(t, err)
	assert.Zero(t, ref)
}

func TestFindPathAndStraightPath(t *testing.T) {
	_, q := buildLMesh(t)
	f := allFilter()

	start := geom.Vec3{X: 5, Z: 5}
	end := geom.Vec3{X: 12, Z: 18}

	corridor := make([]detour.PolyRef, 16)
	n, err := q.FindPath(1, 3, start, end, f, corridor)
	require.NoError(t, err)
	require.Equal(t, []detour.PolyRef{1, 2, 3}, corridor[:n])

	out := geom.NewPath(16)
	require.NoError(t, q.FindStraightPath(start, end, corridor[:n], out))
	assert.Equal(t, []geom.Vec3{start, {X: 10, Z: 10}, end}, out.Points())
}

func TestFindPathTerminatesWithNonPositiveCosts(t *testing.T) {
	e := New()
	m, err := e.NewMesh(detour.MeshParams{TileWidth: 533.33, TileHeight: 533.33, MaxTiles: 4, MaxPolys: 16})
	require.NoError(t, err)

	// Полоса из четырёх прямоугольников вдоль X.
	var polys []Poly
	for i := range 4 {
		x := float32(i * 10)
		polys = append(polys, Poly{MinX: x, MinZ: 0, MaxX: x + 10, MaxZ: 10, Flags: walkable, Area: 1})
	}
	blob, err := Tile{Polys: polys}.MarshalBinary()
	require.NoError(t, err)
	_, err = m.AddTile(blob)
	require.NoError(t, err)
	q, err := e.NewQuery(m, 2048)
	require.NoError(t, err)

	for _, cost := range []float32{-1, 0, float32(math.NaN())} {
		f := allFilter()
		f.SetAreaCost(1, cost)

		done := make(chan []detour.PolyRef, 1)
		go func() {
			corridor := make([]detour.PolyRef, 16)
			n, err := q.FindPath(1, 4, geom.Vec3{X: 5, Z: 5}, geom.Vec3{X: 35, Z: 5}, f, corridor)
			assert.NoError(t, err)
			done <- corridor[:n]
		}()

		select {
		case got := <-done:
			assert.Equal(t, []detour.PolyRef{1, 2, 3, 4}, got, "cost %v", cost)
		case <-time.After(3 * time.Second):
			t.Fatalf("FindPath did not return with area cost %v", cost)
		}
	}
}

func TestStraightPathWithoutCorners(t *testing.T) {
	_, q := buildLMesh(t)

	start := geom.Vec3{X: 2, Z: 5}
	end := geom.Vec3{X: 18, Z: 6}
	out := geom.NewPath(16)
	require.NoError(t, q.FindStraightPath(start, end, []detour.PolyRef{1, 2}, out))
	assert.Equal(t, []geom.Vec3{start, end}, out.Points())
}

func TestFindPathTruncatesToBuffer(t *testing.T) {
	_, q := buildLMesh(t)

	corridor := make([]detour.PolyRef, 2)
	n, err := q.FindPath(1, 3, geom.Vec3{X: 5, Z: 5}, geom.Vec3{X: 15, Z: 15}, allFilter(), corridor)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []detour.PolyRef{1, 2}, corridor)
}

func TestFindPathFilteredGoal(t *testing.T) {
	_, q := buildLMesh(t)
	q.mesh.polys[1].Flags = 2

	f := allFilter()
	f.IncludeFlags = walkable

	corridor := make([]detour.PolyRef, 8)
	n, err := q.FindPath(1, 3, geom.Vec3{X: 5, Z: 5}, geom.Vec3{X: 15, Z: 15}, f, corridor)
	require.NoError(t, err)
	assert.Equal(t, []detour.PolyRef{1}, corridor[:n], "partial corridor ends at the closest reachable polygon")
}

func TestFindPathInvalidRefs(t *testing.T) {
	_, q := buildLMesh(t)

	_, err := q.FindPath(0, 3, geom.Vec3{}, geom.Vec3{}, allFilter(), make([]detour.PolyRef, 4))
	assert.ErrorIs(t, err, detour.ErrInvalidParam)

	_, err = q.FindPath(1, 99, geom.Vec3{}, geom.Vec3{}, allFilter(), make([]detour.PolyRef, 4))
	assert.ErrorIs(t, err, detour.ErrInvalidParam)
}

func TestRaycast(t *testing.T) {
	_, q := buildLMesh(t)
	f := allFilter()

	tests := []struct {
		name  string
		end   geom.Vec3
		clear bool
		t     float32
	}{
		{"across portal", geom.Vec3{X: 15, Z: 5}, true, 0},
		{"into wall", geom.Vec3{X: 5, Z: 15}, false, 0.5},
		{"stays inside", geom.Vec3{X: 8, Z: 8}, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, err := q.Raycast(1, geom.Vec3{X: 5, Z: 5}, tt.end, f)
			require.NoError(t, err)
			if tt.clear {
				assert.Equal(t, detour.NoHit, hit.T)
				return
			}
			assert.InDelta(t, tt.t, hit.T, 1e-5)
			assert.Equal(t, geom.Vec3{Z: 1}, hit.Normal)
		})
	}
}

func TestMoveAlongSurface(t *testing.T) {
	_, q := buildLMesh(t)
	f := allFilter()

	pos, err := q.MoveAlongSurface(1, geom.Vec3{X: 5, Z: 5}, geom.Vec3{X: 15, Z: 5}, f, 16)
	require.NoError(t, err)
	assert.Equal(t, geom.Vec3{X: 15, Z: 5}, pos)

	pos, err = q.MoveAlongSurface(1, geom.Vec3{X: 5, Z: 5}, geom.Vec3{X: 5, Z: 15}, f, 16)
	require.NoError(t, err)
	assert.Equal(t, geom.Vec3{X: 5, Z: 10}, pos, "slides along the wall")

	pos, err = q.MoveAlongSurface(1, geom.Vec3{X: 5, Z: 5}, geom.Vec3{X: 15, Z: 5}, f, 1)
	require.NoError(t, err)
	assert.Equal(t, geom.Vec3{X: 10, Z: 5}, pos, "visit budget stops at the first polygon")
}

func TestRandomPoints(t *testing.T) {
	_, q := buildLMesh(t)
	f := allFilter()
	rng := rand.New(rand.NewPCG(42, 24))

	for range 100 {
		ref, p, err := q.FindRandomPoint(f, rng.Float32)
		require.NoError(t, err)
		assert.NotZero(t, ref)
		idx, ok := q.mesh.poly(ref)
		require.True(t, ok)
		assert.Equal(t, p, q.mesh.polys[idx].clamp(p), "point lies on its polygon")
	}

	center := geom.Vec3{X: 10, Z: 5}
	for range 100 {
		ref, p, err := q.FindRandomPointAroundCircle(1, center, 3, f, rng.Float32)
		require.NoError(t, err)
		assert.NotZero(t, ref)
		assert.LessOrEqual(t, p.DistXZ(center), float32(3))
	}
}

func TestRandomPointNothingWalkable(t *testing.T) {
	_, q := buildLMesh(t)
	f := allFilter()
	f.IncludeFlags = 0x80

	_, _, err := q.FindRandomPoint(f, rand.New(rand.NewPCG(1, 1)).Float32)
	assert.ErrorIs(t, err, detour.ErrFailure)
}

func TestMeshParamsBinary(t *testing.T) {
	p := detour.MeshParams{
		Origin:     geom.Vec3{X: -17066.666, Y: 0, Z: -17066.666},
		TileWidth:  533.3333,
		TileHeight: 533.3333,
		MaxTiles:   4096,
		MaxPolys:   1 << 14,
	}
	b, err := p.AppendBinary(nil)
	require.NoError(t, err)
	require.Len(t, b, detour.MeshParamsSize)

	var got detour.MeshParams
	require.NoError(t, got.UnmarshalBinary(b))
	assert.Equal(t, p, got)

	assert.Error(t, got.UnmarshalBinary(b[:10]))
}
