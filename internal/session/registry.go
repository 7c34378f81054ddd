package session

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/udisondev/navgo/internal/constants"
	"github.com/udisondev/navgo/internal/detour"
	"github.com/udisondev/navgo/internal/filter"
)

// Options задают размеры буферов и бюджет поиска для новых сессий.
type Options struct {
	PolyPathSize   int
	PointPathSize  int
	MaxSearchNodes int
}

// DefaultOptions returns the buffer sizes used by the server by default.
func DefaultOptions() Options {
	return Options{
		PolyPathSize:   constants.DefaultMaxPolyPath,
		PointPathSize:  constants.DefaultMaxPointPath,
		MaxSearchNodes: constants.DefaultMaxSearchNodes,
	}
}

// Registry owns the sessions of all connected clients.
// Thread-safe через sync.Map: сессии создаются и удаляются из разных соединений.
type Registry struct {
	engine  detour.Engine
	meshes  MeshProvider
	filters *filter.Provider
	format  filter.Format
	opts    Options

	sessions sync.Map // map[uint64]*Session
	count    atomic.Int64
}

// NewRegistry creates an empty registry. Filters are looked up for format.
func NewRegistry(engine detour.Engine, meshes MeshProvider, filters *filter.Provider, format filter.Format, opts Options) *Registry {
	if opts.PolyPathSize <= 0 {
		opts.PolyPathSize = constants.DefaultMaxPolyPath
	}
	if opts.PointPathSize <= 0 {
		opts.PointPathSize = constants.DefaultMaxPointPath
	}
	if opts.MaxSearchNodes <= 0 {
		opts.MaxSearchNodes = constants.DefaultMaxSearchNodes
	}
	return &Registry{
		engine:  engine,
		meshes:  meshes,
		filters: filters,
		format:  format,
		opts:    opts,
	}
}

// Create returns the session for id, creating it with state if absent.
// Creating an existing id returns the existing session unchanged.
func (r *Registry) Create(id uint64, state filter.ClientState) *Session {
	if s, ok := r.sessions.Load(id); ok {
		return s.(*Session)
	}
	s, loaded := r.sessions.LoadOrStore(id, newSession(id, state, r))
	if !loaded {
		r.count.Add(1)
	}
	return s.(*Session)
}

// Destroy releases the session's queries and buffers. Unknown ids are ignored.
func (r *Registry) Destroy(id uint64) {
	s, ok := r.sessions.LoadAndDelete(id)
	if !ok {
		return
	}
	r.count.Add(-1)
	s.(*Session).release()
}

// Get returns the live session for id or ErrNoClientSession.
func (r *Registry) Get(id uint64) (*Session, error) {
	s, ok := r.sessions.Load(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNoClientSession, id)
	}
	return s.(*Session), nil
}

// Count возвращает количество активных сессий.
func (r *Registry) Count() int {
	return int(r.count.Load())
}

// Format returns the mesh format filters are resolved for.
func (r *Registry) Format() filter.Format {
	return r.format
}
