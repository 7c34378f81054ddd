package geom

// Polygon is a closed 2D boundary in the client horizontal plane (X/Y).
// Vertex Z values are ignored. The last vertex connects back to the first.
type Polygon []Vec3

// Contains reports whether p lies inside the polygon (even-odd rule).
func (poly Polygon) Contains(p Vec3) bool {
	inside := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) == (b.Y > p.Y) {
			continue
		}
		x := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
		if p.X < x {
			inside = !inside
		}
	}
	return inside
}

// Bounds returns the axis-aligned bounding box of the polygon in X/Y.
func (poly Polygon) Bounds() (minX, minY, maxX, maxY float32) {
	if len(poly) == 0 {
		return 0, 0, 0, 0
	}
	minX, minY = poly[0].X, poly[0].Y
	maxX, maxY = minX, minY
	for _, v := range poly[1:] {
		minX = min(minX, v.X)
		minY = min(minY, v.Y)
		maxX = max(maxX, v.X)
		maxY = max(maxY, v.Y)
	}
	return minX, minY, maxX, maxY
}
