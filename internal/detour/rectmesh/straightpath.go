package rectmesh

import (
	"fmt"

	"github.com/udisondev/navgo/internal/detour"
	"github.com/udisondev/navgo/internal/geom"
)

// FindStraightPath string-pulls the corridor with the funnel algorithm.
// The start and end positions are clamped onto the first and last polygons.
// Output stops silently when out is full.
func (q *Query) FindStraightPath(startPos, endPos geom.Vec3, corridor []detour.PolyRef, out *geom.Path) error {
	if len(corridor) == 0 {
		return fmt.Errorf("%w: empty corridor", detour.ErrInvalidParam)
	}

	idx := make([]int, len(corridor))
	for i, r := range corridor {
		p, ok := q.mesh.poly(r)
		if !ok {
			return fmt.Errorf("%w: corridor[%d]=%d", detour.ErrInvalidParam, i, r)
		}
		idx[i] = p
	}

	start := q.mesh.polys[idx[0]].clamp(startPos)
	end := q.mesh.polys[idx[len(idx)-1]].clamp(endPos)

	type portal struct{ left, right geom.Vec3 }
	portals := make([]portal, 0, len(idx)+1)
	portals = append(portals, portal{start, start})
	for i := 0; i+1 < len(idx); i++ {
		from, to := &q.mesh.polys[idx[i]], &q.mesh.polys[idx[i+1]]
		l, ok := from.linkTo(idx[i+1])
		if !ok {
			return fmt.Errorf("%w: corridor polys %d and %d are not adjacent", detour.ErrInvalidParam, corridor[i], corridor[i+1])
		}
		left, right := orient(from.center(), to.center(), l.portal[0], l.portal[1])
		portals = append(portals, portal{left, right})
	}
	portals = append(portals, portal{end, end})

	emit := func(p geom.Vec3) bool {
		if last, ok := out.Last(); ok && last == p {
			return true
		}
		return out.Append(p)
	}

	if !emit(start) {
		return nil
	}

	apex, left, right := start, start, start
	apexIdx, leftIdx, rightIdx := 0, 0, 0

	for i := 1; i < len(portals); i++ {
		pl, pr := portals[i].left, portals[i].right

		// Сужаем правую сторону воронки.
		if triArea2(apex, right, pr) <= 0 {
			if apex == right || triArea2(apex, left, pr) > 0 {
				right, rightIdx = pr, i
			} else {
				if !emit(left) {
					return nil
				}
				apex, apexIdx = left, leftIdx
				right, rightIdx = apex, apexIdx
				i = apexIdx
				continue
			}
		}

		// Сужаем левую сторону воронки.
		if triArea2(apex, left, pl) >= 0 {
			if apex == left || triArea2(apex, right, pl) < 0 {
				left, leftIdx = pl, i
			} else {
				if !emit(right) {
					return nil
				}
				apex, apexIdx = right, rightIdx
				left, leftIdx = apex, apexIdx
				i = apexIdx
				continue
			}
		}
	}

	emit(end)
	return nil
}

// triArea2 returns twice the signed area of triangle abc in the X/Z plane.
// Positive when c lies to the right of a→b.
func triArea2(a, b, c geom.Vec3) float32 {
	abx, abz := b.X-a.X, b.Z-a.Z
	acx, acz := c.X-a.X, c.Z-a.Z
	return acx*abz - abx*acz
}

// orient orders portal endpoints p, q as (left, right) when travelling from → to.
func orient(from, to, p, q geom.Vec3) (geom.Vec3, geom.Vec3) {
	dx, dz := to.X-from.X, to.Z-from.Z
	mx, mz := (p.X+q.X)/2, (p.Z+q.Z)/2
	if dx*(p.Z-mz)-dz*(p.X-mx) > 0 {
		return p, q
	}
	return q, p
}
