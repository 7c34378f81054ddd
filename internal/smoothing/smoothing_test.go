package smoothing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/navgo/internal/geom"
)

var zigzag = []geom.Vec3{
	{X: 0, Y: 0, Z: 0},
	{X: 10, Y: 0, Z: 0},
	{X: 10, Y: 10, Z: 0},
	{X: 20, Y: 10, Z: 0},
	{X: 20, Y: 20, Z: 0},
	{X: 30, Y: 20, Z: 0},
	{X: 30, Y: 30, Z: 0},
}

func TestChaikinKeepsEndpoints(t *testing.T) {
	t.Parallel()

	dst := geom.NewPath(64)
	Chaikin(dst, zigzag)

	require.Equal(t, 2*(len(zigzag)-1)+2, dst.Len())
	assert.Equal(t, zigzag[0], dst.At(0))
	last, _ := dst.Last()
	assert.Equal(t, zigzag[len(zigzag)-1], last)

	// первый отрезок режется на 1/4 и 3/4
	assert.Equal(t, geom.Vec3{X: 2.5}, dst.At(1))
	assert.Equal(t, geom.Vec3{X: 7.5}, dst.At(2))
}

func TestChaikinCapacity(t *testing.T) {
	t.Parallel()

	for _, capacity := range []int{2, 3, 4, 5, 8} {
		dst := geom.NewPath(capacity)
		Chaikin(dst, zigzag)

		assert.LessOrEqual(t, dst.Len(), capacity)
		assert.Equal(t, zigzag[0], dst.At(0), "cap=%d", capacity)
		last, _ := dst.Last()
		assert.Equal(t, zigzag[len(zigzag)-1], last, "cap=%d", capacity)
	}
}

func TestChaikinDegenerate(t *testing.T) {
	t.Parallel()

	dst := geom.NewPath(8)
	Chaikin(dst, nil)
	assert.Equal(t, 0, dst.Len())

	Chaikin(dst, zigzag[:1])
	assert.Equal(t, []geom.Vec3{zigzag[0]}, dst.Points())
}

func TestChaikinN(t *testing.T) {
	t.Parallel()

	a, b := geom.NewPath(256), geom.NewPath(256)
	b.AppendAll(zigzag)

	out := ChaikinN(a, b, b.Points(), 3)

	n := len(zigzag)
	for range 3 {
		n = 2*(n-1) + 2
	}
	require.Equal(t, n, out.Len())
	assert.Equal(t, zigzag[0], out.At(0))
	last, _ := out.Last()
	assert.Equal(t, zigzag[len(zigzag)-1], last)
}

func TestCatmullRom(t *testing.T) {
	t.Parallel()

	dst := geom.NewPath(128)
	CatmullRom(dst, zigzag, 4, 0.5)

	// 4 окна по 4 семпла, первая точка и хвост из двух точек
	require.Equal(t, 1+(len(zigzag)-3)*4+2, dst.Len())
	assert.Equal(t, zigzag[0], dst.At(0))
	last, _ := dst.Last()
	assert.Equal(t, zigzag[len(zigzag)-1], last)

	// Каждое окно начинается в своей контрольной точке p1.
	for w := range len(zigzag) - 3 {
		got := dst.At(1 + w*4)
		assert.InDelta(t, zigzag[w+1].X, got.X, 1e-3)
		assert.InDelta(t, zigzag[w+1].Y, got.Y, 1e-3)
	}
}

func TestCatmullRomDropsNaN(t *testing.T) {
	t.Parallel()

	src := []geom.Vec3{{X: 0}, {X: 5}, {X: 5}, {X: 10}, {X: 15}}
	dst := geom.NewPath(64)
	CatmullRom(dst, src, 4, 0.5)

	for i, p := range dst.Points() {
		assert.False(t, p.HasNaN(), "point %d is not finite", i)
	}
	last, _ := dst.Last()
	assert.Equal(t, src[len(src)-1], last)
}

func TestCatmullRomShortInput(t *testing.T) {
	t.Parallel()

	dst := geom.NewPath(8)
	CatmullRom(dst, zigzag[:3], 4, 1)
	assert.Equal(t, zigzag[:3], dst.Points())
}

func TestBezier(t *testing.T) {
	t.Parallel()

	dst := geom.NewPath(64)
	Bezier(dst, zigzag, 5)

	// два окна: 5 + 4 точки (общая граница не дублируется)
	require.Equal(t, 9, dst.Len())
	assert.Equal(t, zigzag[0], dst.At(0))
	assert.Equal(t, zigzag[3], dst.At(4))
	last, _ := dst.Last()
	assert.Equal(t, zigzag[6], last)
}

func TestBezierLeftoverAndCapacity(t *testing.T) {
	t.Parallel()

	src := append([]geom.Vec3{}, zigzag[:5]...)

	dst := geom.NewPath(64)
	Bezier(dst, src, 4)
	last, _ := dst.Last()
	assert.Equal(t, src[4], last)
	assert.Equal(t, 5, dst.Len())

	small := geom.NewPath(3)
	Bezier(small, zigzag, 8)
	assert.Equal(t, 3, small.Len())
	last, _ = small.Last()
	assert.Equal(t, zigzag[6], last)
}
