package geom

import "math"

// Vec3 is a point or a direction with single-precision components.
// Which axis is "up" depends on the frame: Z in the client frame, Y in the engine frame.
type Vec3 struct {
	X, Y, Z float32
}

// RandomSource returns uniformly distributed values in [0, 1).
type RandomSource func() float32

// Add возвращает сумму векторов.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub возвращает разность векторов.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Scale умножает вектор на скаляр.
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Lerp interpolates between v (t=0) and o (t=1).
func (v Vec3) Lerp(o Vec3, t float32) Vec3 {
	return Vec3{
		X: v.X + (o.X-v.X)*t,
		Y: v.Y + (o.Y-v.Y)*t,
		Z: v.Z + (o.Z-v.Z)*t,
	}
}

// Dist returns the Euclidean distance between v and o.
func (v Vec3) Dist(o Vec3) float32 {
	return float32(math.Sqrt(float64(v.DistSqr(o))))
}

// DistSqr returns the squared Euclidean distance between v and o.
func (v Vec3) DistSqr(o Vec3) float32 {
	dx, dy, dz := v.X-o.X, v.Y-o.Y, v.Z-o.Z
	return dx*dx + dy*dy + dz*dz
}

// DistXY returns the distance in the client horizontal plane.
func (v Vec3) DistXY(o Vec3) float32 {
	dx, dy := v.X-o.X, v.Y-o.Y
	return float32(math.Sqrt(float64(dx*dx + dy*dy)))
}

// DistXZ returns the distance in the engine horizontal plane.
func (v Vec3) DistXZ(o Vec3) float32 {
	dx, dz := v.X-o.X, v.Z-o.Z
	return float32(math.Sqrt(float64(dx*dx + dz*dz)))
}

// IsZero reports whether all components are zero.
func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// HasNaN reports whether any component is NaN or infinite.
func (v Vec3) HasNaN() bool {
	return !finite(v.X) || !finite(v.Y) || !finite(v.Z)
}

func finite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}
