package nav_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/navgo/internal/detour"
	"github.com/udisondev/navgo/internal/detour/rectmesh"
	"github.com/udisondev/navgo/internal/filter"
	"github.com/udisondev/navgo/internal/geom"
	"github.com/udisondev/navgo/internal/nav"
	"github.com/udisondev/navgo/internal/navmesh"
	"github.com/udisondev/navgo/internal/session"
	"github.com/udisondev/navgo/internal/testutil"
)

const lMapID int32 = 2

// ext converts an engine-frame point to the client frame.
func ext(x, y, z float32) geom.Vec3 {
	return geom.ToExternal(geom.Vec3{X: x, Y: y, Z: z})
}

func fixedRand() geom.RandomSource {
	r := rand.New(rand.NewPCG(7, 11))
	return r.Float32
}

func newNavigator(t *testing.T, opts nav.Options) (*nav.Navigator, *session.Registry) {
	t.Helper()
	src := testutil.TwoPolySource(t)
	src.Maps[lMapID] = testutil.LShapeMap(t)

	engine := rectmesh.New()
	reg := session.NewRegistry(engine, navmesh.NewCache(engine, src, 2),
		filter.NewProvider(filter.DefaultCosts()), src.Format(), session.DefaultOptions())
	return nav.New(reg, opts, fixedRand()), reg
}

func TestGetPathSamePolygon(t *testing.T) {
	n, reg := newNavigator(t, nav.DefaultOptions())
	reg.Create(1, filter.StateNormal)

	end := ext(3, 0, 7)
	path, err := n.GetPath(1, testutil.TestMapID, testutil.PointInA, end)
	require.NoError(t, err)

	require.Equal(t, 1, path.Len())
	assert.Equal(t, end, path.At(0))
}

func TestGetPathAcrossPolygons(t *testing.T) {
	n, reg := newNavigator(t, nav.DefaultOptions())
	reg.Create(1, filter.StateNormal)

	path, err := n.GetPath(1, testutil.TestMapID, testutil.PointInA, testutil.PointInB)
	require.NoError(t, err)

	require.GreaterOrEqual(t, path.Len(), 2)
	assert.Equal(t, testutil.PointInA, path.At(0))
	last, _ := path.Last()
	assert.Equal(t, testutil.PointInB, last)
}

func TestGetPathAroundCorner(t *testing.T) {
	n, reg := newNavigator(t, nav.DefaultOptions())
	reg.Create(1, filter.StateNormal)

	path, err := n.GetPath(1, lMapID, ext(2, 0, 8), ext(12, 0, 18))
	require.NoError(t, err)
	assert.Equal(t, []geom.Vec3{ext(2, 0, 8), ext(10, 0, 10), ext(12, 0, 18)}, path.Points())
}

func TestGetRandomPathKeepsEndpoints(t *testing.T) {
	opts := nav.DefaultOptions()
	opts.RandomPathMaxDistance = 1.5
	n, reg := newNavigator(t, opts)
	reg.Create(1, filter.StateNormal)

	start, end := ext(2, 0, 8), ext(12, 0, 18)
	path, err := n.GetRandomPath(1, lMapID, start, end)
	require.NoError(t, err)

	require.Equal(t, 3, path.Len())
	assert.Equal(t, start, path.At(0))
	assert.Equal(t, end, path.At(2))
	assert.LessOrEqual(t, path.At(1).DistXY(ext(10, 0, 10)), float32(1.5+1e-4))
}

func TestOperationsFailAfterDestroy(t *testing.T) {
	n, reg := newNavigator(t, nav.DefaultOptions())
	reg.Create(9, filter.StateNormal)
	_, err := n.GetPath(9, testutil.TestMapID, testutil.PointInA, testutil.PointInB)
	require.NoError(t, err)

	reg.Destroy(9)

	a, b := testutil.PointInA, testutil.PointInB
	ops := map[string]func() error{
		"GetPath":       func() error { _, err := n.GetPath(9, 1, a, b); return err },
		"GetRandomPath": func() error { _, err := n.GetRandomPath(9, 1, a, b); return err },
		"Move":          func() error { _, err := n.MoveAlongSurface(9, 1, a, b); return err },
		"CastRay":       func() error { _, err := n.CastMovementRay(9, 1, a, b); return err },
		"RandomPoint":   func() error { _, err := n.GetRandomPoint(9, 1); return err },
		"RandomAround":  func() error { _, err := n.GetRandomPointAround(9, 1, a, 3); return err },
		"Explore":       func() error { _, err := n.ExplorePoly(9, 1, []geom.Vec3{a, b, ext(5, 0, 9)}, a, 2); return err },
		"SnapPath":      func() error { return n.SnapPath(9, 1, geom.NewPath(2)) },
		"WalkPath":      func() error { return n.WalkPath(9, 1, geom.NewPath(2)) },
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, op(), nav.ErrNoClientSession)
		})
	}
}

func TestOperationErrors(t *testing.T) {
	n, reg := newNavigator(t, nav.DefaultOptions())
	reg.Create(1, filter.StateNormal)

	_, err := n.GetPath(1, 99, testutil.PointInA, testutil.PointInB)
	assert.ErrorIs(t, err, navmesh.ErrNotFound)

	_, err = n.GetPath(1, testutil.TestMapID, testutil.PointInA, ext(100, 0, 100))
	assert.ErrorIs(t, err, nav.ErrNearestPolyNotFound)

	_, err = n.MoveAlongSurface(1, testutil.TestMapID, ext(5, 50, 5), testutil.PointInB)
	assert.ErrorIs(t, err, nav.ErrNearestPolyNotFound)
}

func TestMoveAlongSurfaceStopsAtBoundary(t *testing.T) {
	n, reg := newNavigator(t, nav.DefaultOptions())
	reg.Create(1, filter.StateNormal)

	got, err := n.MoveAlongSurface(1, testutil.TestMapID, testutil.PointInA, ext(30, 0, 5))
	require.NoError(t, err)

	e := geom.ToEngine(got)
	assert.InDelta(t, 20, e.X, 1e-3)
	assert.InDelta(t, 5, e.Z, 1e-3)
}

func TestCastMovementRayOnMesh(t *testing.T) {
	n, reg := newNavigator(t, nav.DefaultOptions())
	reg.Create(1, filter.StateNormal)

	ok, err := n.CastMovementRay(1, testutil.TestMapID, testutil.PointInA, testutil.PointInB)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = n.CastMovementRay(1, testutil.TestMapID, testutil.PointInA, ext(30, 0, 5))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRandomPointsStayOnMesh(t *testing.T) {
	n, reg := newNavigator(t, nav.DefaultOptions())
	reg.Create(1, filter.StateNormal)

	for range 50 {
		p, err := n.GetRandomPoint(1, testutil.TestMapID)
		require.NoError(t, err)
		e := geom.ToEngine(p)
		assert.True(t, e.X >= 0 && e.X <= 20 && e.Z >= 0 && e.Z <= 10, "point %v off mesh", e)

		p, err = n.GetRandomPointAround(1, testutil.TestMapID, testutil.PointInA, 3)
		require.NoError(t, err)
		assert.LessOrEqual(t, p.DistXY(testutil.PointInA), float32(3+1e-4))
	}
}

func TestExplorePoly(t *testing.T) {
	n, reg := newNavigator(t, nav.DefaultOptions())
	reg.Create(1, filter.StateNormal)

	boundary := []geom.Vec3{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}, {X: 0, Y: 100}}
	start := geom.Vec3{X: 50, Y: 50, Z: 7}
	const viewDistance = 32

	path, err := n.ExplorePoly(1, testutil.TestMapID, boundary, start, viewDistance)
	require.NoError(t, err)
	require.NotZero(t, path.Len())

	pts := path.Points()
	for i, p := range pts {
		assert.True(t, geom.Polygon(boundary).Contains(p), "point %v outside boundary", p)
		assert.Equal(t, float32(7), p.Z)
		for j := i + 1; j < len(pts); j++ {
			assert.GreaterOrEqual(t, p.DistXY(pts[j]), float32(viewDistance))
		}
	}

	// Первая точка тура ближайшая к старту.
	for _, p := range pts[1:] {
		assert.LessOrEqual(t, pts[0].DistXY(start), p.DistXY(start))
	}

	_, err = n.ExplorePoly(1, testutil.TestMapID, boundary[:2], start, viewDistance)
	assert.ErrorIs(t, err, nav.ErrSamplingFailed)
}

func TestSnapAndWalkPath(t *testing.T) {
	n, reg := newNavigator(t, nav.DefaultOptions())
	reg.Create(1, filter.StateNormal)

	path := geom.NewPath(4)
	path.Append(ext(5, 3, 5))     // над A, в пределах экстента
	path.Append(ext(100, 0, 100)) // вне меша
	path.Append(ext(15, -2, 5))   // под B

	require.NoError(t, n.SnapPath(1, testutil.TestMapID, path))
	assert.Equal(t, []geom.Vec3{ext(5, 0, 5), ext(15, 0, 5)}, path.Points())

	path.Append(ext(30, 0, 5))
	require.NoError(t, n.WalkPath(1, testutil.TestMapID, path))
	require.Equal(t, 3, path.Len())
	assert.InDelta(t, 20, geom.ToEngine(path.At(2)).X, 1e-3)
}

// Фейковый движок для проверки интерпретации результата Raycast.

type fakeEngine struct{ hitT float32 }

func (e fakeEngine) NewMesh(detour.MeshParams) (detour.Mesh, error) { return fakeMesh{}, nil }
func (e fakeEngine) NewQuery(detour.Mesh, int) (detour.Query, error) {
	return &fakeQuery{hitT: e.hitT}, nil
}

type fakeMesh struct{}

func (fakeMesh) AddTile([]byte) (detour.TileRef, error) { return 1, nil }
func (fakeMesh) TileCount() int                         { return 1 }

type fakeMeshes struct{}

func (fakeMeshes) GetOrLoad(int32) (detour.Mesh, error) { return fakeMesh{}, nil }

type fakeQuery struct {
	detour.Query
	hitT float32
}

func (q *fakeQuery) FindNearestPoly(center, _ geom.Vec3, _ *detour.QueryFilter) (detour.PolyRef, geom.Vec3, error) {
	return 1, center, nil
}

func (q *fakeQuery) Raycast(detour.PolyRef, geom.Vec3, geom.Vec3, *detour.QueryFilter) (detour.RaycastHit, error) {
	return detour.RaycastHit{T: q.hitT}, nil
}

func TestCastMovementRayInterpretsHit(t *testing.T) {
	tests := []struct {
		name string
		hitT float32
		want bool
	}{
		{name: "no hit", hitT: detour.NoHit, want: true},
		{name: "hit near end", hitT: 0.999, want: false},
		{name: "hit at start", hitT: 0, want: false},
		{name: "hit past end", hitT: 1.5, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := session.NewRegistry(fakeEngine{hitT: tt.hitT}, fakeMeshes{},
				filter.NewProvider(filter.DefaultCosts()), filter.FormatTC335A, session.DefaultOptions())
			reg.Create(1, filter.StateNormal)
			n := nav.New(reg, nav.DefaultOptions(), fixedRand())

			got, err := n.CastMovementRay(1, 5, geom.Vec3{}, geom.Vec3{X: 1})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
