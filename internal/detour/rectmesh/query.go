package rectmesh

import (
	"fmt"
	"math"

	"github.com/udisondev/navgo/internal/detour"
	"github.com/udisondev/navgo/internal/geom"
)

const circleSampleAttempts = 16

// FindNearestPoly scans polygons overlapping the query box.
func (q *Query) FindNearestPoly(center, extents geom.Vec3, filter *detour.QueryFilter) (detour.PolyRef, geom.Vec3, error) {
	if filter == nil {
		return 0, geom.Vec3{}, fmt.Errorf("%w: nil filter", detour.ErrInvalidParam)
	}

	best := -1
	var bestPos geom.Vec3
	var bestDist float32
	for i := range q.mesh.polys {
		p := &q.mesh.polys[i]
		if !filter.PassFilter(p.Flags) {
			continue
		}
		if p.MaxX < center.X-extents.X || p.MinX > center.X+extents.X ||
			p.MaxZ < center.Z-extents.Z || p.MinZ > center.Z+extents.Z ||
			abs32(p.Height-center.Y) > extents.Y {
			continue
		}
		pos := p.clamp(center)
		if d := pos.DistSqr(center); best < 0 || d < bestDist {
			best, bestPos, bestDist = i, pos, d
		}
	}
	if best < 0 {
		return 0, geom.Vec3{}, nil
	}
	return ref(best), bestPos, nil
}

// Raycast walks polygons crossed by the segment. The hit parameter is
// relative to the start position clamped onto the start polygon.
func (q *Query) Raycast(startRef detour.PolyRef, startPos, endPos geom.Vec3, filter *detour.QueryFilter) (detour.RaycastHit, error) {
	cur, ok := q.mesh.poly(startRef)
	if !ok || filter == nil {
		return detour.RaycastHit{}, fmt.Errorf("%w: Raycast(start=%d)", detour.ErrInvalidParam, startRef)
	}

	s := q.mesh.polys[cur].clamp(startPos)
	dir := endPos.Sub(s)
	hit := detour.RaycastHit{T: detour.NoHit}

	for range len(q.mesh.polys) {
		hit.PathCount++
		p := &q.mesh.polys[cur]

		t, side := exitParam(p, s, dir)
		if t >= 1 {
			return hit, nil
		}
		exit := s.Add(dir.Scale(t))
		next, ok := q.crossing(p, exit, side, filter)
		if !ok {
			hit.T = t
			hit.Normal = wallNormal(p, exit, side)
			return hit, nil
		}
		cur = next
	}
	return hit, fmt.Errorf("%w: raycast did not terminate", detour.ErrFailure)
}

// MoveAlongSurface follows the segment polygon by polygon. When blocked by a
// wall, or when the visit budget runs out, the result slides to the point of
// the current polygon closest to the target.
func (q *Query) MoveAlongSurface(startRef detour.PolyRef, startPos, endPos geom.Vec3, filter *detour.QueryFilter, maxVisited int) (geom.Vec3, error) {
	cur, ok := q.mesh.poly(startRef)
	if !ok || filter == nil || maxVisited <= 0 {
		return geom.Vec3{}, fmt.Errorf("%w: MoveAlongSurface(start=%d, maxVisited=%d)", detour.ErrInvalidParam, startRef, maxVisited)
	}

	s := q.mesh.polys[cur].clamp(startPos)
	dir := endPos.Sub(s)

	for visited := 1; ; visited++ {
		p := &q.mesh.polys[cur]
		t, side := exitParam(p, s, dir)
		if t >= 1 || visited >= maxVisited {
			return p.clamp(endPos), nil
		}
		next, ok := q.crossing(p, s.Add(dir.Scale(t)), side, filter)
		if !ok {
			return p.clamp(endPos), nil
		}
		cur = next
	}
}

// FindRandomPoint picks a polygon with probability proportional to its area.
func (q *Query) FindRandomPoint(filter *detour.QueryFilter, rnd geom.RandomSource) (detour.PolyRef, geom.Vec3, error) {
	if filter == nil || rnd == nil {
		return 0, geom.Vec3{}, fmt.Errorf("%w: FindRandomPoint", detour.ErrInvalidParam)
	}

	sel := -1
	var total float32
	for i := range q.mesh.polys {
		p := &q.mesh.polys[i]
		if !filter.PassFilter(p.Flags) {
			continue
		}
		a := p.area()
		total += a
		if rnd()*total <= a {
			sel = i
		}
	}
	if sel < 0 {
		return 0, geom.Vec3{}, fmt.Errorf("%w: no walkable polygon", detour.ErrFailure)
	}

	p := &q.mesh.polys[sel]
	pos := geom.Vec3{
		X: p.MinX + rnd()*(p.MaxX-p.MinX),
		Y: p.Height,
		Z: p.MinZ + rnd()*(p.MaxZ-p.MinZ),
	}
	return ref(sel), p.clamp(pos), nil
}

// FindRandomPointAroundCircle explores polygons reachable from startRef that
// touch the circle and picks one weighted by the area overlapping the
// circle's bounding square. The point is rejection-sampled inside the circle.
func (q *Query) FindRandomPointAroundCircle(startRef detour.PolyRef, center geom.Vec3, radius float32, filter *detour.QueryFilter, rnd geom.RandomSource) (detour.PolyRef, geom.Vec3, error) {
	start, ok := q.mesh.poly(startRef)
	if !ok || filter == nil || rnd == nil || !(radius >= 0) {
		return 0, geom.Vec3{}, fmt.Errorf("%w: FindRandomPointAroundCircle(start=%d, radius=%v)", detour.ErrInvalidParam, startRef, radius)
	}
	if !filter.PassFilter(q.mesh.polys[start].Flags) {
		return 0, geom.Vec3{}, fmt.Errorf("%w: start polygon filtered out", detour.ErrInvalidParam)
	}

	clear(q.visited)
	q.visited[start] = struct{}{}
	queue := []int{start}

	sel := -1
	var total float32
	var selBox [4]float32

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		p := &q.mesh.polys[cur]

		box := [4]float32{
			max(p.MinX, center.X-radius), max(p.MinZ, center.Z-radius),
			min(p.MaxX, center.X+radius), min(p.MaxZ, center.Z+radius),
		}
		if a := max(box[2]-box[0], 0) * max(box[3]-box[1], 0); a > 0 || sel < 0 {
			total += a
			if sel < 0 || rnd()*total <= a {
				sel, selBox = cur, box
			}
		}

		for _, l := range p.links {
			if _, seen := q.visited[l.to]; seen || len(q.visited) >= q.maxNodes {
				continue
			}
			np := &q.mesh.polys[l.to]
			if !filter.PassFilter(np.Flags) || np.clamp(center).DistXZ(center) > radius {
				continue
			}
			q.visited[l.to] = struct{}{}
			queue = append(queue, l.to)
		}
	}

	p := &q.mesh.polys[sel]
	for range circleSampleAttempts {
		pos := geom.Vec3{
			X: selBox[0] + rnd()*(selBox[2]-selBox[0]),
			Y: p.Height,
			Z: selBox[1] + rnd()*(selBox[3]-selBox[1]),
		}
		if pos = p.clamp(pos); pos.DistXZ(center) <= radius {
			return ref(sel), pos, nil
		}
	}
	return ref(sel), p.clamp(center), nil
}

// edgeSide tells which pair of rectangle edges a segment leaves through.
type edgeSide uint8

const (
	sideX edgeSide = iota // через ребро x = const
	sideZ                 // через ребро z = const
)

// crossing returns the neighbour of p entered through the edge on side at point exit.
func (q *Query) crossing(p *poly, exit geom.Vec3, side edgeSide, filter *detour.QueryFilter) (int, bool) {
	for _, l := range p.links {
		if !filter.PassFilter(q.mesh.polys[l.to].Flags) {
			continue
		}
		a, b := l.portal[0], l.portal[1]
		switch side {
		case sideX:
			if a.X == b.X && abs32(exit.X-a.X) <= edgeEpsilon &&
				exit.Z >= min(a.Z, b.Z)-edgeEpsilon && exit.Z <= max(a.Z, b.Z)+edgeEpsilon {
				return l.to, true
			}
		case sideZ:
			if a.Z == b.Z && abs32(exit.Z-a.Z) <= edgeEpsilon &&
				exit.X >= min(a.X, b.X)-edgeEpsilon && exit.X <= max(a.X, b.X)+edgeEpsilon {
				return l.to, true
			}
		}
	}
	return 0, false
}

// exitParam returns the segment parameter at which s+dir*t leaves p and the edge it leaves through.
func exitParam(p *poly, s, dir geom.Vec3) (float32, edgeSide) {
	tx, tz := float32(math.Inf(1)), float32(math.Inf(1))
	switch {
	case dir.X > 0:
		tx = (p.MaxX - s.X) / dir.X
	case dir.X < 0:
		tx = (p.MinX - s.X) / dir.X
	}
	switch {
	case dir.Z > 0:
		tz = (p.MaxZ - s.Z) / dir.Z
	case dir.Z < 0:
		tz = (p.MinZ - s.Z) / dir.Z
	}
	if tx <= tz {
		return max(tx, 0), sideX
	}
	return max(tz, 0), sideZ
}

func wallNormal(p *poly, at geom.Vec3, side edgeSide) geom.Vec3 {
	if side == sideX {
		if abs32(at.X-p.MinX) <= edgeEpsilon {
			return geom.Vec3{X: -1}
		}
		return geom.Vec3{X: 1}
	}
	if abs32(at.Z-p.MinZ) <= edgeEpsilon {
		return geom.Vec3{Z: -1}
	}
	return geom.Vec3{Z: 1}
}
