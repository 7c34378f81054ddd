// Package smoothing post-processes waypoint paths into curves.
//
// Every function writes into a caller-provided fixed-capacity destination
// and resets it first. Output is truncated when the destination fills up.
package smoothing

import "github.com/udisondev/navgo/internal/geom"

// Chaikin cuts every corner of src once (corner cutting at 1/4 and 3/4).
// The first and last points of src are always kept: a slot is reserved for
// the final point, so with limited capacity the interior is truncated instead.
func Chaikin(dst *geom.Path, src []geom.Vec3) {
	dst.Reset()
	if len(src) == 0 {
		return
	}
	if !dst.Append(src[0]) || len(src) == 1 {
		return
	}

	for i := 0; i+1 < len(src); i++ {
		// Два новых угла плюс зарезервированный слот под последнюю точку.
		if dst.Space() < 3 {
			break
		}
		a, b := src[i], src[i+1]
		dst.Append(a.Scale(0.75).Add(b.Scale(0.25)))
		dst.Append(a.Scale(0.25).Add(b.Scale(0.75)))
	}

	dst.Append(src[len(src)-1])
}

// ChaikinN applies Chaikin iterations times, alternating between dst and
// scratch, and returns whichever buffer holds the result.
// scratch may alias src: src is read only during the first pass.
func ChaikinN(dst, scratch *geom.Path, src []geom.Vec3, iterations int) *geom.Path {
	Chaikin(dst, src)
	for range iterations - 1 {
		Chaikin(scratch, dst.Points())
		dst, scratch = scratch, dst
	}
	return dst
}
