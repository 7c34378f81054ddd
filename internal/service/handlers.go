package service

import (
	"context"
	"log/slog"

	"github.com/udisondev/navgo/internal/filter"
	"github.com/udisondev/navgo/internal/geom"
	"github.com/udisondev/navgo/internal/protocol"
	"github.com/udisondev/navgo/internal/server"
	"github.com/udisondev/navgo/internal/smoothing"
)

// handlers builds the dispatch table. It is read-only after New.
//
// Decode errors are returned and close the connection. Navigation errors are
// logged and answered with the zero vector, so every request gets a response.
func (s *Service) handlers() server.Handlers {
	return server.Handlers{
		protocol.MsgPath:              s.handlePath,
		protocol.MsgRandomPath:        s.handleRandomPath,
		protocol.MsgMoveAlongSurface:  s.handleMoveAlongSurface,
		protocol.MsgCastRay:           s.handleCastRay,
		protocol.MsgRandomPoint:       s.handleRandomPoint,
		protocol.MsgRandomPointAround: s.handleRandomPointAround,
		protocol.MsgExplorePoly:       s.handleExplorePoly,
		protocol.MsgConfigureFilter:   s.handleConfigureFilter,
	}
}

func (s *Service) handlePath(_ context.Context, c *server.Conn, body []byte, w *protocol.Writer) error {
	req, err := protocol.DecodePathRequest(body)
	if err != nil {
		return err
	}
	path, err := s.nav.GetPath(c.ID(), req.MapID, req.Start, req.End)
	if err != nil {
		queryFailed(c, protocol.MsgPath, req.MapID, err)
		w.WriteVec3(geom.Vec3{})
		return nil
	}
	s.writePath(c, protocol.MsgPath, req.MapID, path, req.Flags, w)
	return nil
}

func (s *Service) handleRandomPath(_ context.Context, c *server.Conn, body []byte, w *protocol.Writer) error {
	req, err := protocol.DecodePathRequest(body)
	if err != nil {
		return err
	}
	path, err := s.nav.GetRandomPath(c.ID(), req.MapID, req.Start, req.End)
	if err != nil {
		queryFailed(c, protocol.MsgRandomPath, req.MapID, err)
		w.WriteVec3(geom.Vec3{})
		return nil
	}
	s.writePath(c, protocol.MsgRandomPath, req.MapID, path, req.Flags, w)
	return nil
}

func (s *Service) handleMoveAlongSurface(_ context.Context, c *server.Conn, body []byte, w *protocol.Writer) error {
	req, err := protocol.DecodeSegmentRequest(body)
	if err != nil {
		return err
	}
	p, err := s.nav.MoveAlongSurface(c.ID(), req.MapID, req.Start, req.End)
	if err != nil {
		queryFailed(c, protocol.MsgMoveAlongSurface, req.MapID, err)
	}
	w.WriteVec3(p)
	return nil
}

// handleCastRay answers with the requested end on a clear line, zero otherwise.
func (s *Service) handleCastRay(_ context.Context, c *server.Conn, body []byte, w *protocol.Writer) error {
	req, err := protocol.DecodeSegmentRequest(body)
	if err != nil {
		return err
	}
	visible, err := s.nav.CastMovementRay(c.ID(), req.MapID, req.Start, req.End)
	if err != nil {
		queryFailed(c, protocol.MsgCastRay, req.MapID, err)
	}
	if visible {
		w.WriteVec3(req.End)
	} else {
		w.WriteVec3(geom.Vec3{})
	}
	return nil
}

func (s *Service) handleRandomPoint(_ context.Context, c *server.Conn, body []byte, w *protocol.Writer) error {
	req, err := protocol.DecodeRandomPointRequest(body)
	if err != nil {
		return err
	}
	p, err := s.nav.GetRandomPoint(c.ID(), req.MapID)
	if err != nil {
		queryFailed(c, protocol.MsgRandomPoint, req.MapID, err)
	}
	w.WriteVec3(p)
	return nil
}

func (s *Service) handleRandomPointAround(_ context.Context, c *server.Conn, body []byte, w *protocol.Writer) error {
	req, err := protocol.DecodeRandomPointAroundRequest(body)
	if err != nil {
		return err
	}
	p, err := s.nav.GetRandomPointAround(c.ID(), req.MapID, req.Start, req.Radius)
	if err != nil {
		queryFailed(c, protocol.MsgRandomPointAround, req.MapID, err)
	}
	w.WriteVec3(p)
	return nil
}

func (s *Service) handleExplorePoly(_ context.Context, c *server.Conn, body []byte, w *protocol.Writer) error {
	req, err := protocol.DecodeExplorePolyRequest(body)
	if err != nil {
		return err
	}
	path, err := s.nav.ExplorePoly(c.ID(), req.MapID, req.Boundary, req.Start, req.ViewDistance)
	if err != nil {
		queryFailed(c, protocol.MsgExplorePoly, req.MapID, err)
		w.WriteVec3(geom.Vec3{})
		return nil
	}
	s.writePath(c, protocol.MsgExplorePoly, req.MapID, path, req.Flags, w)
	return nil
}

// handleConfigureFilter answers 1 when the session's filter was updated and
// 0 for unknown states or costs that are not finite and positive.
func (s *Service) handleConfigureFilter(_ context.Context, c *server.Conn, body []byte, w *protocol.Writer) error {
	req, err := protocol.DecodeConfigureFilterRequest(body)
	if err != nil {
		return err
	}

	state := filter.ClientState(req.State)
	if !state.Valid() {
		slog.Warn("unknown client state", "client", c.ID(), "state", req.State)
		return w.WriteByte(0)
	}
	sess, err := s.sessions.Get(c.ID())
	if err != nil {
		queryFailed(c, protocol.MsgConfigureFilter, -1, err)
		return w.WriteByte(0)
	}

	var overrides map[uint8]float32
	if len(req.Costs) > 0 {
		overrides = make(map[uint8]float32, len(req.Costs))
		for _, ac := range req.Costs {
			overrides[ac.Area] = ac.Cost
		}
	}
	if err := sess.ConfigureFilter(state, overrides); err != nil {
		slog.Warn("filter rejected", "client", c.ID(), "state", state, "err", err)
		return w.WriteByte(0)
	}
	slog.Debug("filter configured", "client", c.ID(), "state", state, "overrides", len(overrides))
	return w.WriteByte(1)
}

// writePath applies the smoothing and validation flags to path and writes
// the resulting point list.
func (s *Service) writePath(c *server.Conn, t protocol.MessageType, mapID int32, path *geom.Path, flags protocol.PathFlags, w *protocol.Writer) {
	out, err := s.postProcess(c.ID(), mapID, path, flags)
	if err != nil {
		queryFailed(c, t, mapID, err)
		w.WriteVec3(geom.Vec3{})
		return
	}
	w.WriteVec3s(out.Points())
}

// postProcess runs the flag pipeline: at most one smoothing pass, then
// closest-point snapping, then the surface re-walk.
func (s *Service) postProcess(clientID uint64, mapID int32, path *geom.Path, flags protocol.PathFlags) (*geom.Path, error) {
	sess, err := s.sessions.Get(clientID)
	if err != nil {
		return nil, err
	}

	out := path
	switch flags.Smoothing() {
	case protocol.FlagSmoothChaikin:
		// path служит вторым буфером: исходные точки читаются только на первом проходе.
		out = smoothing.ChaikinN(sess.Scratch, path, path.Points(), s.smooth.chaikinIterations)
	case protocol.FlagSmoothCatmullRom:
		smoothing.CatmullRom(sess.Scratch, path.Points(), s.smooth.catmullRomPoints, s.smooth.catmullRomAlpha)
		out = sess.Scratch
	case protocol.FlagSmoothBezier:
		smoothing.Bezier(sess.Scratch, path.Points(), s.smooth.bezierPoints)
		out = sess.Scratch
	}

	if flags.Has(protocol.FlagValidateCPOP) {
		if err := s.nav.SnapPath(clientID, mapID, out); err != nil {
			return nil, err
		}
	}
	if flags.Has(protocol.FlagValidateMAS) {
		if err := s.nav.WalkPath(clientID, mapID, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func queryFailed(c *server.Conn, t protocol.MessageType, mapID int32, err error) {
	slog.Debug("query failed", "client", c.ID(), "type", t, "map", mapID, "err", err)
}
