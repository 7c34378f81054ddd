// Package session keeps per-client navigation state: query objects per map,
// fixed-capacity path buffers and the movement filter.
package session

import (
	"errors"
	"fmt"
	"maps"
	"math"

	"github.com/udisondev/navgo/internal/detour"
	"github.com/udisondev/navgo/internal/filter"
	"github.com/udisondev/navgo/internal/geom"
)

var (
	// ErrNoClientSession is returned for unknown or destroyed session ids.
	ErrNoClientSession = errors.New("no client session")

	// ErrEngineQueryInitFailed is returned when a query object cannot be created.
	ErrEngineQueryInitFailed = errors.New("engine query init failed")

	// ErrInvalidAreaCost is returned for area costs that are not finite and positive.
	ErrInvalidAreaCost = errors.New("invalid area cost")
)

// MeshProvider resolves map ids to loaded meshes.
type MeshProvider interface {
	GetOrLoad(mapID int32) (detour.Mesh, error)
}

// Session is the navigation state of one client.
// It is owned by the connection that created it and is not safe for concurrent use.
type Session struct {
	id    uint64
	state filter.ClientState
	deps  *Registry

	queries map[int32]detour.Query
	custom  *detour.QueryFilter
	costs   map[uint8]float32

	// PolyPath is the corridor buffer.
	PolyPath []detour.PolyRef
	// Path receives the primary point output of an operation.
	Path *geom.Path
	// Scratch is the secondary point buffer used by post-processing.
	Scratch *geom.Path
}

func newSession(id uint64, state filter.ClientState, r *Registry) *Session {
	return &Session{
		id:       id,
		state:    state,
		deps:     r,
		queries:  make(map[int32]detour.Query),
		PolyPath: make([]detour.PolyRef, r.opts.PolyPathSize),
		Path:     geom.NewPath(r.opts.PointPathSize),
		Scratch:  geom.NewPath(r.opts.PointPathSize),
	}
}

// ID возвращает идентификатор сессии.
func (s *Session) ID() uint64 { return s.id }

// State возвращает текущий профиль клиента.
func (s *Session) State() filter.ClientState { return s.state }

// EnsureQuery returns the session's query for mapID, loading the mesh and
// creating the query on first use. The query is reused afterwards.
func (s *Session) EnsureQuery(mapID int32) (detour.Query, error) {
	if q, ok := s.queries[mapID]; ok {
		return q, nil
	}

	mesh, err := s.deps.meshes.GetOrLoad(mapID)
	if err != nil {
		return nil, err
	}

	q, err := s.deps.engine.NewQuery(mesh, s.deps.opts.MaxSearchNodes)
	if err != nil {
		return nil, fmt.Errorf("%w: map %d: %v", ErrEngineQueryInitFailed, mapID, err)
	}
	s.queries[mapID] = q
	return q, nil
}

// QueryCount returns the number of maps the session holds queries for.
func (s *Session) QueryCount() int {
	return len(s.queries)
}

// Filter returns the filter used by the session's queries: a private copy
// when costs were customised, the shared default otherwise.
func (s *Session) Filter() *detour.QueryFilter {
	if s.custom != nil {
		return s.custom
	}
	return s.deps.filters.Get(s.deps.format, s.state)
}

// ConfigureFilter switches the client state and replaces the area cost overrides.
// An empty overrides map restores the shared default filter of the state.
// Costs must be finite and positive; otherwise nothing changes.
func (s *Session) ConfigureFilter(state filter.ClientState, overrides map[uint8]float32) error {
	for area, cost := range overrides {
		// Отрицательная или NaN стоимость ломает поиск пути.
		if !(cost > 0) || math.IsInf(float64(cost), 1) {
			return fmt.Errorf("%w: area %d cost %v", ErrInvalidAreaCost, area, cost)
		}
	}

	s.state = state
	s.costs = maps.Clone(overrides)
	s.custom = nil
	if len(s.costs) == 0 {
		return nil
	}

	f := s.deps.filters.Get(s.deps.format, state).Clone()
	for area, cost := range s.costs {
		f.SetAreaCost(area, cost)
	}
	s.custom = f
	return nil
}

// release drops queries and buffers.
func (s *Session) release() {
	clear(s.queries)
	s.queries = nil
	s.custom = nil
	s.PolyPath = nil
	s.Path = nil
	s.Scratch = nil
}
