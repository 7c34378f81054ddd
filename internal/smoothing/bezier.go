package smoothing

import "github.com/udisondev/navgo/internal/geom"

// Bezier samples cubic Bézier curves over windows of four control points,
// stepping by three so consecutive curves share an endpoint.
// Each window yields samples points at t = j/(samples-1); the shared endpoint
// is emitted once. Control points left over after the last full window are
// appended unchanged, so the output always ends on the last point of src.
func Bezier(dst *geom.Path, src []geom.Vec3, samples int) {
	dst.Reset()
	if len(src) < 4 {
		dst.AppendAll(src)
		return
	}
	if samples < 2 {
		samples = 2
	}

	last := 0
	for i := 0; i+3 < len(src); i += 3 {
		p0, p1, p2, p3 := src[i], src[i+1], src[i+2], src[i+3]
		for j := range samples {
			if i > 0 && j == 0 {
				continue
			}
			if dst.Space() <= 1 {
				dst.Append(src[len(src)-1])
				return
			}
			t := float32(j) / float32(samples-1)
			dst.Append(cubic(p0, p1, p2, p3, t))
		}
		last = i + 3
	}

	for _, p := range src[last+1:] {
		if dst.Space() <= 1 {
			break
		}
		dst.Append(p)
	}
	if end, _ := dst.Last(); end != src[len(src)-1] {
		dst.Append(src[len(src)-1])
	}
}

func cubic(p0, p1, p2, p3 geom.Vec3, t float32) geom.Vec3 {
	u := 1 - t
	return p0.Scale(u * u * u).
		Add(p1.Scale(3 * u * u * t)).
		Add(p2.Scale(3 * u * t * t)).
		Add(p3.Scale(t * t * t))
}
