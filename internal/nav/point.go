package nav

import (
	"fmt"

	"github.com/udisondev/navgo/internal/detour"
	"github.com/udisondev/navgo/internal/geom"
)

// MoveAlongSurface slides from start towards end along the mesh and returns
// the furthest reachable position.
func (n *Navigator) MoveAlongSurface(sessionID uint64, mapID int32, start, end geom.Vec3) (geom.Vec3, error) {
	s, q, err := n.query(sessionID, mapID)
	if err != nil {
		return geom.Vec3{}, err
	}
	f := s.Filter()

	ref, sp, err := n.nearest(q, f, geom.ToEngine(start))
	if err != nil {
		return geom.Vec3{}, err
	}
	reached, err := q.MoveAlongSurface(ref, sp, geom.ToEngine(end), f, n.opts.MoveVisitedBudget)
	if err != nil {
		return geom.Vec3{}, fmt.Errorf("move along surface on map %d: %w", mapID, err)
	}
	return geom.ToExternal(reached), nil
}

// CastMovementRay reports whether a straight walk from start reaches end
// without leaving the mesh.
func (n *Navigator) CastMovementRay(sessionID uint64, mapID int32, start, end geom.Vec3) (bool, error) {
	s, q, err := n.query(sessionID, mapID)
	if err != nil {
		return false, err
	}
	f := s.Filter()

	ref, sp, err := n.nearest(q, f, geom.ToEngine(start))
	if err != nil {
		return false, err
	}
	hit, err := q.Raycast(ref, sp, geom.ToEngine(end), f)
	if err != nil {
		return false, fmt.Errorf("raycast on map %d: %w", mapID, err)
	}
	return hit.T == detour.NoHit, nil
}

// GetRandomPoint returns a uniformly distributed point of the whole mesh.
func (n *Navigator) GetRandomPoint(sessionID uint64, mapID int32) (geom.Vec3, error) {
	s, q, err := n.query(sessionID, mapID)
	if err != nil {
		return geom.Vec3{}, err
	}
	_, p, err := q.FindRandomPoint(s.Filter(), n.rand)
	if err != nil {
		return geom.Vec3{}, fmt.Errorf("%w: map %d: %v", ErrSamplingFailed, mapID, err)
	}
	return geom.ToExternal(p), nil
}

// GetRandomPointAround returns a random mesh point within radius of the
// polygon nearest to start.
func (n *Navigator) GetRandomPointAround(sessionID uint64, mapID int32, start geom.Vec3, radius float32) (geom.Vec3, error) {
	s, q, err := n.query(sessionID, mapID)
	if err != nil {
		return geom.Vec3{}, err
	}
	f := s.Filter()

	ref, sp, err := n.nearest(q, f, geom.ToEngine(start))
	if err != nil {
		return geom.Vec3{}, err
	}
	_, p, err := q.FindRandomPointAroundCircle(ref, sp, radius, f, n.rand)
	if err != nil {
		return geom.Vec3{}, fmt.Errorf("%w: map %d: %v", ErrSamplingFailed, mapID, err)
	}
	return geom.ToExternal(p), nil
}

// ExplorePoly generates well-spread waypoints inside boundary (client frame,
// X/Y plane) at least viewDistance apart, ordered as a nearest-neighbour tour
// from start. Every waypoint takes start's height.
func (n *Navigator) ExplorePoly(sessionID uint64, mapID int32, boundary []geom.Vec3, start geom.Vec3, viewDistance float32) (*geom.Path, error) {
	s, _, err := n.query(sessionID, mapID)
	if err != nil {
		return nil, err
	}

	pd := geom.PoissonDisk{
		MinDistance: viewDistance,
		Candidates:  n.opts.ExploreCandidates,
		Z:           start.Z,
		Rand:        n.rand,
	}
	if err := pd.Sample(geom.Polygon(boundary), s.Path); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSamplingFailed, err)
	}
	if s.Path.Len() == 0 {
		return nil, ErrSamplingFailed
	}
	geom.OrderNearestNeighbour(s.Path.Points(), start)
	return s.Path, nil
}
