package smoothing

import (
	"math"

	"github.com/udisondev/navgo/internal/geom"
)

// CatmullRom fits a centripetal-family Catmull-Rom spline through src.
//
// Every window of four consecutive points p0..p3 contributes samples on the
// p1→p2 segment; knots are spaced by distance^alpha (0 uniform, 0.5
// centripetal, 1 chordal). Samples with non-finite components (coincident
// control points) are dropped. The first point and the tail that no window
// covers are copied from src, so the curve starts and ends on src.
func CatmullRom(dst *geom.Path, src []geom.Vec3, samples int, alpha float32) {
	dst.Reset()
	if len(src) == 0 {
		return
	}
	if samples < 1 {
		samples = 1
	}

	dst.Append(src[0])

	tailStart := max(1, len(src)-2)
	tail := src[tailStart:]

	for i := 1; i+2 < len(src); i++ {
		p0, p1, p2, p3 := src[i-1], src[i], src[i+1], src[i+2]

		t0 := float32(0)
		t1 := knot(t0, p0, p1, alpha)
		t2 := knot(t1, p1, p2, alpha)
		t3 := knot(t2, p2, p3, alpha)

		for j := range samples {
			if dst.Space() <= len(tail) {
				dst.AppendAll(tail)
				return
			}
			t := t1 + (t2-t1)*float32(j)/float32(samples)

			a1 := remap(p0, p1, t0, t1, t)
			a2 := remap(p1, p2, t1, t2, t)
			a3 := remap(p2, p3, t2, t3, t)
			b1 := remap(a1, a2, t0, t2, t)
			b2 := remap(a2, a3, t1, t3, t)
			c := remap(b1, b2, t1, t2, t)

			if c.HasNaN() {
				continue
			}
			dst.Append(c)
		}
	}

	dst.AppendAll(tail)
}

func knot(t float32, a, b geom.Vec3, alpha float32) float32 {
	return t + float32(math.Pow(float64(a.Dist(b)), float64(alpha)))
}

// remap interpolates a (at ta) and b (at tb) at parameter t.
func remap(a, b geom.Vec3, ta, tb, t float32) geom.Vec3 {
	span := tb - ta
	return a.Scale((tb - t) / span).Add(b.Scale((t - ta) / span))
}
