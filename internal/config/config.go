package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/navgo/internal/constants"
	"github.com/udisondev/navgo/internal/filter"
)

// NavServer holds all configuration for the navigation server.
type NavServer struct {
	// Network
	BindAddress  string        `yaml:"bind_address"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`  // idle client disconnect (0 = never)
	WriteTimeout time.Duration `yaml:"write_timeout"` // per-response deadline

	// Navmesh files
	MmapsPath       string  `yaml:"mmaps_path"`
	MmapFormat      string  `yaml:"mmap_format"` // auto | 335a | 548 | anp
	TileLoadWorkers int     `yaml:"tile_load_workers"`
	PreloadMaps     []int32 `yaml:"preload_maps"` // loaded before accepting clients

	// Per-session buffers
	MaxPolyPath    int `yaml:"max_poly_path"`
	MaxPointPath   int `yaml:"max_point_path"`
	MaxSearchNodes int `yaml:"max_search_nodes"`

	// Queries
	PolySearchExtent      float32 `yaml:"poly_search_extent"`
	RandomPathMaxDistance float32 `yaml:"random_path_max_distance"`
	ExploreCandidates     int     `yaml:"explore_candidates"`

	// Smoothing
	ChaikinIterations int     `yaml:"chaikin_iterations"`
	CatmullRomPoints  int     `yaml:"catmull_rom_points"`
	CatmullRomAlpha   float32 `yaml:"catmull_rom_alpha"`
	BezierPoints      int     `yaml:"bezier_points"`

	// Filter costs
	WaterCost            float32 `yaml:"water_cost"`
	BadLiquidCost        float32 `yaml:"bad_liquid_cost"`
	HostileTerritoryCost float32 `yaml:"hostile_territory_cost"`

	LogLevel string `yaml:"log_level"` // debug | info | warn | error
}

// DefaultNavServer returns NavServer config with sensible defaults.
func DefaultNavServer() NavServer {
	costs := filter.DefaultCosts()
	return NavServer{
		BindAddress:           "0.0.0.0",
		Port:                  constants.DefaultPort,
		WriteTimeout:          5 * time.Second,
		MmapsPath:             "mmaps",
		MmapFormat:            "auto",
		TileLoadWorkers:       constants.DefaultTileLoadWorkers,
		MaxPolyPath:           constants.DefaultMaxPolyPath,
		MaxPointPath:          constants.DefaultMaxPointPath,
		MaxSearchNodes:        constants.DefaultMaxSearchNodes,
		PolySearchExtent:      constants.DefaultPolySearchExtent,
		RandomPathMaxDistance: 1.5,
		ExploreCandidates:     30,
		ChaikinIterations:     1,
		CatmullRomPoints:      4,
		CatmullRomAlpha:       1.0,
		BezierPoints:          4,
		WaterCost:             costs.Water,
		BadLiquidCost:         costs.BadLiquid,
		HostileTerritoryCost:  costs.Hostile,
		LogLevel:              "info",
	}
}

// LoadNavServer loads navigation server config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadNavServer(path string) (NavServer, error) {
	cfg := DefaultNavServer()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate проверяет конфигурацию перед стартом.
// Все найденные проблемы возвращаются одной ошибкой.
func (c NavServer) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port has to be a value between 1 and 65535, got %d", c.Port))
	}
	if c.MaxPolyPath <= 0 {
		errs = append(errs, fmt.Errorf("max_poly_path has to be a value > 0, got %d", c.MaxPolyPath))
	}
	if c.MaxPointPath <= 1 {
		errs = append(errs, fmt.Errorf("max_point_path has to be a value > 1, got %d", c.MaxPointPath))
	}
	if c.MaxSearchNodes <= 0 || c.MaxSearchNodes > 65535 {
		errs = append(errs, fmt.Errorf("max_search_nodes has to be a value between 1 and 65535, got %d", c.MaxSearchNodes))
	}
	if c.TileLoadWorkers <= 0 {
		errs = append(errs, fmt.Errorf("tile_load_workers has to be a value > 0, got %d", c.TileLoadWorkers))
	}
	if !(c.PolySearchExtent > 0) {
		errs = append(errs, fmt.Errorf("poly_search_extent has to be a value > 0, got %v", c.PolySearchExtent))
	}
	for name, cost := range map[string]float32{
		"water_cost":             c.WaterCost,
		"bad_liquid_cost":        c.BadLiquidCost,
		"hostile_territory_cost": c.HostileTerritoryCost,
	} {
		if !(cost > 0) || math.IsInf(float64(cost), 1) {
			errs = append(errs, fmt.Errorf("%s has to be a finite value > 0, got %v", name, cost))
		}
	}
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 {
		errs = append(errs, errors.New("timeouts must not be negative"))
	}
	if _, err := c.Format(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if fi, err := os.Stat(c.MmapsPath); err != nil || !fi.IsDir() {
		errs = append(errs, fmt.Errorf("mmaps folder does not exist: %q", c.MmapsPath))
	}
	return errors.Join(errs...)
}

// Format returns the configured mesh format; FormatUnknown means auto-detect.
func (c NavServer) Format() (filter.Format, error) {
	return filter.ParseFormat(c.MmapFormat)
}

// Costs returns the filter cost multipliers.
func (c NavServer) Costs() filter.Costs {
	return filter.Costs{
		Water:     c.WaterCost,
		BadLiquid: c.BadLiquidCost,
		Hostile:   c.HostileTerritoryCost,
	}
}

// SlogLevel parses LogLevel.
func (c NavServer) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level: %w", err)
	}
	return lvl, nil
}
