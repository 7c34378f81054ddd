package nav

import (
	"fmt"
	"log/slog"

	"github.com/udisondev/navgo/internal/detour"
	"github.com/udisondev/navgo/internal/geom"
	"github.com/udisondev/navgo/internal/session"
)

// GetPath computes a taut path from start to end into the session's Path buffer.
// When both points resolve to the same polygon the path is the single
// (clamped) end point.
func (n *Navigator) GetPath(sessionID uint64, mapID int32, start, end geom.Vec3) (*geom.Path, error) {
	s, q, err := n.query(sessionID, mapID)
	if err != nil {
		return nil, err
	}
	if err := n.buildPath(s, q, geom.ToEngine(start), geom.ToEngine(end)); err != nil {
		return nil, fmt.Errorf("map %d: %w", mapID, err)
	}
	s.Path.Transform(geom.ToExternal)
	return s.Path, nil
}

// GetRandomPath is GetPath with every interior point moved to a random
// mesh position within RandomPathMaxDistance of it. Points that cannot be
// resampled are left unchanged.
func (n *Navigator) GetRandomPath(sessionID uint64, mapID int32, start, end geom.Vec3) (*geom.Path, error) {
	s, q, err := n.query(sessionID, mapID)
	if err != nil {
		return nil, err
	}
	if err := n.buildPath(s, q, geom.ToEngine(start), geom.ToEngine(end)); err != nil {
		return nil, fmt.Errorf("map %d: %w", mapID, err)
	}

	f := s.Filter()
	for i := 1; i < s.Path.Len()-1; i++ {
		p := s.Path.At(i)
		ref, _, err := n.nearest(q, f, p)
		if err != nil {
			slog.Debug("jitter skipped", "client", sessionID, "map", mapID, "index", i, "err", err)
			continue
		}
		_, rp, err := q.FindRandomPointAroundCircle(ref, p, n.opts.RandomPathMaxDistance, f, n.rand)
		if err != nil {
			slog.Debug("jitter skipped", "client", sessionID, "map", mapID, "index", i, "err", err)
			continue
		}
		s.Path.Set(i, rp)
	}

	s.Path.Transform(geom.ToExternal)
	return s.Path, nil
}

// buildPath fills s.Path with engine-frame points from sp to ep.
func (n *Navigator) buildPath(s *session.Session, q detour.Query, sp, ep geom.Vec3) error {
	s.Path.Reset()
	f := s.Filter()

	startRef, sp, err := n.nearest(q, f, sp)
	if err != nil {
		return err
	}
	endRef, ep, err := n.nearest(q, f, ep)
	if err != nil {
		return err
	}

	if startRef == endRef {
		s.Path.Append(ep)
		return nil
	}

	count, err := q.FindPath(startRef, endRef, sp, ep, f, s.PolyPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorridorSearchFailed, err)
	}
	if count == 0 {
		return ErrCorridorSearchFailed
	}

	if err := q.FindStraightPath(sp, ep, s.PolyPath[:count], s.Path); err != nil {
		s.Path.Reset()
		return fmt.Errorf("%w: %v", ErrStraightPathFailed, err)
	}
	if s.Path.Len() == 0 {
		return ErrStraightPathFailed
	}
	return nil
}

// SnapPath replaces every point of path with the closest point on the mesh.
// Points with no polygon in reach are dropped. Points are in the client frame.
func (n *Navigator) SnapPath(sessionID uint64, mapID int32, path *geom.Path) error {
	s, q, err := n.query(sessionID, mapID)
	if err != nil {
		return err
	}
	f := s.Filter()

	kept := 0
	for i := range path.Len() {
		_, closest, err := n.nearest(q, f, geom.ToEngine(path.At(i)))
		if err != nil {
			continue
		}
		path.Set(kept, geom.ToExternal(closest))
		kept++
	}
	pts := path.Points()[:kept]
	path.Reset()
	path.AppendAll(pts)
	return nil
}

// WalkPath re-walks path with surface moves: each point is replaced by the
// position reachable from the previous one. Points are in the client frame.
func (n *Navigator) WalkPath(sessionID uint64, mapID int32, path *geom.Path) error {
	s, q, err := n.query(sessionID, mapID)
	if err != nil {
		return err
	}
	if path.Len() < 2 {
		return nil
	}
	f := s.Filter()

	prev := geom.ToEngine(path.At(0))
	for i := 1; i < path.Len(); i++ {
		target := geom.ToEngine(path.At(i))
		ref, from, err := n.nearest(q, f, prev)
		if err != nil {
			prev = target
			continue
		}
		reached, err := q.MoveAlongSurface(ref, from, target, f, n.opts.MoveVisitedBudget)
		if err != nil {
			prev = target
			continue
		}
		path.Set(i, geom.ToExternal(reached))
		prev = reached
	}
	return nil
}
