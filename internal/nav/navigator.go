// Package nav implements the navigation operations served to clients:
// paths, surface moves, ray casts, random points and area exploration.
//
// Operations take positions in the client frame, convert them to the engine
// frame on entry and back on exit. Point-list results are written into the
// session's own fixed-capacity buffers and stay valid until the session's
// next operation.
package nav

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/udisondev/navgo/internal/constants"
	"github.com/udisondev/navgo/internal/detour"
	"github.com/udisondev/navgo/internal/geom"
	"github.com/udisondev/navgo/internal/session"
)

var (
	// ErrNoClientSession is returned for unknown or destroyed sessions.
	ErrNoClientSession = session.ErrNoClientSession

	// ErrEngineQueryInitFailed is returned when the session's query cannot be created.
	ErrEngineQueryInitFailed = session.ErrEngineQueryInitFailed

	// ErrNearestPolyNotFound is returned when an input point has no polygon within the search extent.
	ErrNearestPolyNotFound = errors.New("nearest poly not found")

	// ErrCorridorSearchFailed is returned when no polygon corridor was produced.
	ErrCorridorSearchFailed = errors.New("corridor search failed")

	// ErrStraightPathFailed is returned when a corridor could not be turned into points.
	ErrStraightPathFailed = errors.New("straight path failed")

	// ErrSamplingFailed is returned when random sampling produced no point.
	ErrSamplingFailed = errors.New("sampling failed")
)

// Options tune the operations.
type Options struct {
	// SearchExtent is the half-extent of the nearest-polygon box on every axis.
	SearchExtent float32
	// RandomPathMaxDistance bounds how far GetRandomPath moves interior points.
	RandomPathMaxDistance float32
	// MoveVisitedBudget bounds polygons visited by one surface move.
	MoveVisitedBudget int
	// ExploreCandidates is the Poisson-disk candidate count per active point.
	ExploreCandidates int
}

// DefaultOptions returns the stock tuning.
func DefaultOptions() Options {
	return Options{
		SearchExtent:          constants.DefaultPolySearchExtent,
		RandomPathMaxDistance: 1.5,
		MoveVisitedBudget:     constants.DefaultMoveVisitedBudget,
		ExploreCandidates:     geom.DefaultPoissonCandidates,
	}
}

// Navigator runs operations on behalf of sessions.
// It holds no per-client state: concurrent calls for different sessions are safe,
// calls for one session must be sequential.
type Navigator struct {
	sessions *session.Registry
	opts     Options
	extents  geom.Vec3
	rand     geom.RandomSource
}

// New creates a Navigator. rnd supplies uniform [0,1) values; nil uses math/rand/v2.
func New(sessions *session.Registry, opts Options, rnd geom.RandomSource) *Navigator {
	def := DefaultOptions()
	if opts.SearchExtent <= 0 {
		opts.SearchExtent = def.SearchExtent
	}
	if opts.MoveVisitedBudget <= 0 {
		opts.MoveVisitedBudget = def.MoveVisitedBudget
	}
	if opts.ExploreCandidates <= 0 {
		opts.ExploreCandidates = def.ExploreCandidates
	}
	if rnd == nil {
		rnd = rand.Float32
	}
	e := opts.SearchExtent
	return &Navigator{
		sessions: sessions,
		opts:     opts,
		extents:  geom.Vec3{X: e, Y: e, Z: e},
		rand:     rnd,
	}
}

// Sessions returns the registry the navigator resolves sessions in.
func (n *Navigator) Sessions() *session.Registry {
	return n.sessions
}

// query resolves the session and its query object for mapID.
func (n *Navigator) query(sessionID uint64, mapID int32) (*session.Session, detour.Query, error) {
	s, err := n.sessions.Get(sessionID)
	if err != nil {
		return nil, nil, err
	}
	q, err := s.EnsureQuery(mapID)
	if err != nil {
		return nil, nil, err
	}
	return s, q, nil
}

// nearest snaps an engine-frame point to the mesh.
func (n *Navigator) nearest(q detour.Query, f *detour.QueryFilter, p geom.Vec3) (detour.PolyRef, geom.Vec3, error) {
	ref, closest, err := q.FindNearestPoly(p, n.extents, f)
	if err != nil {
		return 0, geom.Vec3{}, fmt.Errorf("%w: %v: %v", ErrNearestPolyNotFound, geom.ToExternal(p), err)
	}
	if ref == 0 {
		return 0, geom.Vec3{}, fmt.Errorf("%w: %v", ErrNearestPolyNotFound, geom.ToExternal(p))
	}
	return ref, closest, nil
}
