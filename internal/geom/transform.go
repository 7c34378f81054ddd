package geom

// Client frame: X/Y horizontal, Z up.
// Engine frame: X/Z horizontal, Y up.
//
// Conversions happen exactly once at the boundary: requests are converted
// on ingress, results on egress. Internal code never mixes the two frames.

// ToEngine converts a client-frame point to the engine frame: (x,y,z) → (y,z,x).
func ToEngine(p Vec3) Vec3 {
	return Vec3{X: p.Y, Y: p.Z, Z: p.X}
}

// ToExternal converts an engine-frame point to the client frame: (x,y,z) → (z,x,y).
func ToExternal(p Vec3) Vec3 {
	return Vec3{X: p.Z, Y: p.X, Z: p.Y}
}
