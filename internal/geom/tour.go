package geom

// OrderNearestNeighbour reorders points in place into a greedy tour:
// each point is the closest remaining one to its predecessor, starting from start.
func OrderNearestNeighbour(points []Vec3, start Vec3) {
	cur := start
	for i := range points {
		best := i
		bestDist := cur.DistSqr(points[i])
		for j := i + 1; j < len(points); j++ {
			if d := cur.DistSqr(points[j]); d < bestDist {
				best, bestDist = j, d
			}
		}
		points[i], points[best] = points[best], points[i]
		cur = points[i]
	}
}
