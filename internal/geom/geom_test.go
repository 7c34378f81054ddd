package geom

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(7, 11))
	for range 1000 {
		p := Vec3{
			X: (rng.Float32() - 0.5) * 34000,
			Y: (rng.Float32() - 0.5) * 34000,
			Z: (rng.Float32() - 0.5) * 2000,
		}
		assert.Equal(t, p, ToExternal(ToEngine(p)))
		assert.Equal(t, p, ToEngine(ToExternal(p)))
	}
}

func TestToEngineAxes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Vec3{X: 2, Y: 3, Z: 1}, ToEngine(Vec3{X: 1, Y: 2, Z: 3}))
	assert.Equal(t, Vec3{X: 3, Y: 1, Z: 2}, ToExternal(Vec3{X: 1, Y: 2, Z: 3}))
}

func TestPathCapacity(t *testing.T) {
	t.Parallel()

	p := NewPath(3)
	assert.Equal(t, 3, p.Cap())

	for i := range 5 {
		ok := p.Append(Vec3{X: float32(i)})
		assert.Equal(t, i < 3, ok, "append #%d", i)
		assert.LessOrEqual(t, p.Len(), p.Cap())
	}

	last, ok := p.Last()
	require.True(t, ok)
	assert.Equal(t, float32(2), last.X)

	pts := p.Points()
	pts = append(pts, Vec3{X: 99})
	assert.Equal(t, 3, p.Len(), "appending to Points() must not grow the path")
	assert.Len(t, pts, 4)

	p.Reset()
	assert.Equal(t, 0, p.Len())
	assert.Equal(t, 3, p.Space())

	n := p.AppendAll([]Vec3{{X: 1}, {X: 2}, {X: 3}, {X: 4}})
	assert.Equal(t, 3, n)
}

func TestPolygonContains(t *testing.T) {
	t.Parallel()

	square := Polygon{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	concave := Polygon{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 5, Y: 5}, {X: 0, Y: 10}}

	tests := []struct {
		name string
		poly Polygon
		p    Vec3
		want bool
	}{
		{"center", square, Vec3{X: 5, Y: 5}, true},
		{"outside right", square, Vec3{X: 11, Y: 5}, false},
		{"outside below", square, Vec3{X: 5, Y: -1}, false},
		{"concave body", concave, Vec3{X: 5, Y: 2}, true},
		{"concave notch", concave, Vec3{X: 5, Y: 8}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.poly.Contains(tt.p))
		})
	}
}

func TestPoissonDiskInvariants(t *testing.T) {
	t.Parallel()

	boundary := Polygon{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 60}, {X: 50, Y: 30}, {X: 0, Y: 60}}
	rng := rand.New(rand.NewPCG(1, 2))

	pd := PoissonDisk{MinDistance: 8, Z: 42, Rand: rng.Float32}
	out := NewPath(512)
	require.NoError(t, pd.Sample(boundary, out))
	require.Greater(t, out.Len(), 10)

	pts := out.Points()
	for i, p := range pts {
		assert.True(t, boundary.Contains(p), "point %d %+v outside boundary", i, p)
		assert.Equal(t, float32(42), p.Z)
		for j := i + 1; j < len(pts); j++ {
			assert.GreaterOrEqual(t, p.DistXY(pts[j]), pd.MinDistance, "points %d and %d too close", i, j)
		}
	}
}

func TestPoissonDiskRespectsCapacity(t *testing.T) {
	t.Parallel()

	boundary := Polygon{{X: 0, Y: 0}, {X: 200, Y: 0}, {X: 200, Y: 200}, {X: 0, Y: 200}}
	rng := rand.New(rand.NewPCG(3, 4))

	out := NewPath(5)
	require.NoError(t, PoissonDisk{MinDistance: 2, Rand: rng.Float32}.Sample(boundary, out))
	assert.Equal(t, 5, out.Len())
}

func TestPoissonDiskErrors(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(5, 6))
	out := NewPath(8)

	err := PoissonDisk{MinDistance: 1, Rand: rng.Float32}.Sample(Polygon{{X: 0}, {X: 1}}, out)
	assert.ErrorIs(t, err, ErrDegeneratePolygon)

	err = PoissonDisk{MinDistance: 0, Rand: rng.Float32}.Sample(Polygon{{X: 0}, {X: 1}, {Y: 1}}, out)
	assert.ErrorIs(t, err, ErrInvalidDistance)

	flat := Polygon{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 20, Y: 0}}
	err = PoissonDisk{MinDistance: 1, Rand: rng.Float32}.Sample(flat, out)
	assert.ErrorIs(t, err, ErrDegeneratePolygon)
}

func TestPoissonDiskRejectsHugeGrids(t *testing.T) {
	t.Parallel()

	inf := float32(math.Inf(1))
	strip := Polygon{{X: -3e38, Y: 0}, {X: 3e38, Y: 0}, {X: 3e38, Y: 80}, {X: -3e38, Y: 80}}
	square := Polygon{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}, {X: 0, Y: 100}}

	tests := []struct {
		name     string
		boundary Polygon
		minDist  float32
		wantErr  error
	}{
		{name: "width overflows float32", boundary: strip, minDist: 32, wantErr: ErrDegeneratePolygon},
		{name: "infinite vertex", boundary: Polygon{{X: 0}, {X: inf}, {X: 10, Y: 10}}, minDist: 1, wantErr: ErrDegeneratePolygon},
		{name: "nan vertex", boundary: Polygon{{X: 0}, {X: float32(math.NaN())}, {X: 10, Y: 10}}, minDist: 1, wantErr: ErrDegeneratePolygon},
		{name: "tiny distance", boundary: square, minDist: 1e-20, wantErr: ErrInvalidDistance},
		{name: "grid over cap", boundary: square, minDist: 0.01, wantErr: ErrInvalidDistance},
		{name: "wide but finite", boundary: Polygon{{X: -1e30}, {X: 1e30}, {X: 1e30, Y: 80}, {X: -1e30, Y: 80}}, minDist: 32, wantErr: ErrInvalidDistance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := rand.New(rand.NewPCG(1, 2))
			out := NewPath(16)
			var err error
			require.NotPanics(t, func() {
				err = PoissonDisk{MinDistance: tt.minDist, Rand: rng.Float32}.Sample(tt.boundary, out)
			})
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, out.Len())
		})
	}
}

func TestOrderNearestNeighbour(t *testing.T) {
	t.Parallel()

	pts := []Vec3{{X: 10}, {X: 1}, {X: 5}, {X: -2}}
	OrderNearestNeighbour(pts, Vec3{})

	assert.Equal(t, []Vec3{{X: 1}, {X: -2}, {X: 5}, {X: 10}}, pts)
}
