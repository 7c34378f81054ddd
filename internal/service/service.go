// Package service wires the navigation server together: mesh source,
// resource cache, session registry, navigator and the framed TCP server.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/udisondev/navgo/internal/config"
	"github.com/udisondev/navgo/internal/detour"
	"github.com/udisondev/navgo/internal/detour/rectmesh"
	"github.com/udisondev/navgo/internal/filter"
	"github.com/udisondev/navgo/internal/geom"
	"github.com/udisondev/navgo/internal/nav"
	"github.com/udisondev/navgo/internal/navmesh"
	"github.com/udisondev/navgo/internal/server"
	"github.com/udisondev/navgo/internal/session"
)

// Option is a functional option for Service configuration.
type Option func(*options)

type options struct {
	engine detour.Engine
	source navmesh.Source
	rand   geom.RandomSource
}

// WithEngine sets the navigation engine (default: rectmesh).
func WithEngine(e detour.Engine) Option {
	return func(o *options) { o.engine = e }
}

// WithSource overrides the tile source built from mmaps_path/mmap_format.
func WithSource(src navmesh.Source) Option {
	return func(o *options) { o.source = src }
}

// WithRandom sets the uniform [0,1) source used by sampling operations.
func WithRandom(rnd geom.RandomSource) Option {
	return func(o *options) { o.rand = rnd }
}

// smoothingParams are the curve settings used by flag post-processing.
type smoothingParams struct {
	chaikinIterations int
	catmullRomPoints  int
	catmullRomAlpha   float32
	bezierPoints      int
}

// Service owns every long-lived component of the navigation server.
// It is built once at startup and handed to the transport by reference.
type Service struct {
	cfg      config.NavServer
	meshes   *navmesh.Cache
	sessions *session.Registry
	nav      *nav.Navigator
	srv      *server.Server
	smooth   smoothingParams
}

// New builds the service from cfg. cfg is expected to be validated.
func New(cfg config.NavServer, opts ...Option) (*Service, error) {
	o := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.engine == nil {
		o.engine = rectmesh.New()
	}
	if o.source == nil {
		src, err := OpenSource(cfg)
		if err != nil {
			return nil, err
		}
		o.source = src
	}

	format := o.source.Format()
	meshes := navmesh.NewCache(o.engine, o.source, cfg.TileLoadWorkers)
	filters := filter.NewProvider(cfg.Costs())

	sessions := session.NewRegistry(o.engine, meshes, filters, format, session.Options{
		PolyPathSize:   cfg.MaxPolyPath,
		PointPathSize:  cfg.MaxPointPath,
		MaxSearchNodes: cfg.MaxSearchNodes,
	})

	navigator := nav.New(sessions, nav.Options{
		SearchExtent:          cfg.PolySearchExtent,
		RandomPathMaxDistance: cfg.RandomPathMaxDistance,
		ExploreCandidates:     cfg.ExploreCandidates,
	}, o.rand)

	s := &Service{
		cfg:      cfg,
		meshes:   meshes,
		sessions: sessions,
		nav:      navigator,
		smooth: smoothingParams{
			chaikinIterations: max(cfg.ChaikinIterations, 1),
			catmullRomPoints:  cfg.CatmullRomPoints,
			catmullRomAlpha:   cfg.CatmullRomAlpha,
			bezierPoints:      cfg.BezierPoints,
		},
	}

	s.srv = server.New(server.Config{
		BindAddress:  cfg.BindAddress,
		Port:         cfg.Port,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}, s.handlers(), server.Hooks{
		OnConnect:    s.onConnect,
		OnDisconnect: s.onDisconnect,
	})

	slog.Info("navigation service ready",
		"format", format,
		"mmaps", cfg.MmapsPath,
		"max_poly_path", cfg.MaxPolyPath,
		"max_point_path", cfg.MaxPointPath)
	return s, nil
}

// OpenSource picks the tile source for cfg: a zip archive source for the
// anp format, a directory source otherwise (auto detects the naming).
func OpenSource(cfg config.NavServer) (navmesh.Source, error) {
	format, err := cfg.Format()
	if err != nil {
		return nil, err
	}
	if format == filter.FormatANP {
		return navmesh.NewAnpSource(cfg.MmapsPath), nil
	}
	src, err := navmesh.NewMmapSource(cfg.MmapsPath, format)
	if err != nil {
		return nil, fmt.Errorf("opening mmaps: %w", err)
	}
	return src, nil
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	return s.srv.Run(ctx)
}

// Serve serves on an existing listener until ctx is cancelled or Close is called.
func (s *Service) Serve(ctx context.Context, ln net.Listener) error {
	return s.srv.Serve(ctx, ln)
}

// Close stops accepting clients; in-flight requests are answered first.
func (s *Service) Close() error {
	return s.srv.Close()
}

// Addr returns the listening address, or nil before Run/Serve.
func (s *Service) Addr() net.Addr {
	return s.srv.Addr()
}

// Sessions returns the client session registry.
func (s *Service) Sessions() *session.Registry {
	return s.sessions
}

// Meshes returns the resource cache.
func (s *Service) Meshes() *navmesh.Cache {
	return s.meshes
}

// Preload loads mapIDs into the cache before clients arrive.
// Failures are logged and do not stop the remaining maps.
func (s *Service) Preload(mapIDs ...int32) {
	for _, id := range mapIDs {
		start := time.Now()
		if _, err := s.meshes.GetOrLoad(id); err != nil {
			slog.Warn("preload failed", "map", id, "err", err)
			continue
		}
		slog.Info("map preloaded", "map", id, "took", time.Since(start))
	}
}

func (s *Service) onConnect(c *server.Conn) error {
	s.sessions.Create(c.ID(), filter.StateNormal)
	slog.Info("client connected", "client", c.ID(), "remote", c.RemoteAddr(), "sessions", s.sessions.Count())
	return nil
}

func (s *Service) onDisconnect(c *server.Conn) {
	s.sessions.Destroy(c.ID())
	slog.Info("client disconnected", "client", c.ID(), "remote", c.RemoteAddr(), "sessions", s.sessions.Count())
}
