package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/navgo/internal/filter"
)

func TestLoadNavServerMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadNavServer(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultNavServer(), cfg)
}

func TestLoadNavServerOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "navserver.yaml")
	data := `
port: 5000
mmap_format: anp
max_point_path: 64
write_timeout: 250ms
hostile_territory_cost: 8
log_level: debug
preload_maps: [0, 1, 530]
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadNavServer(path)
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, 64, cfg.MaxPointPath)
	assert.Equal(t, 250*time.Millisecond, cfg.WriteTimeout)
	assert.Equal(t, float32(8), cfg.Costs().Hostile)
	assert.Equal(t, []int32{0, 1, 530}, cfg.PreloadMaps)
	assert.Equal(t, DefaultNavServer().MaxPolyPath, cfg.MaxPolyPath, "unset keys keep defaults")

	f, err := cfg.Format()
	require.NoError(t, err)
	assert.Equal(t, filter.FormatANP, f)

	lvl, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}

func TestLoadNavServerBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [1"), 0o644))

	_, err := LoadNavServer(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func(t *testing.T) NavServer {
		cfg := DefaultNavServer()
		cfg.MmapsPath = t.TempDir()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(c *NavServer)
		wantErr string
	}{
		{name: "defaults with existing dir"},
		{name: "port zero", mutate: func(c *NavServer) { c.Port = 0 }, wantErr: "port"},
		{name: "port too large", mutate: func(c *NavServer) { c.Port = 70000 }, wantErr: "port"},
		{name: "poly path", mutate: func(c *NavServer) { c.MaxPolyPath = 0 }, wantErr: "max_poly_path"},
		{name: "point path", mutate: func(c *NavServer) { c.MaxPointPath = 1 }, wantErr: "max_point_path"},
		{name: "search nodes", mutate: func(c *NavServer) { c.MaxSearchNodes = 65536 }, wantErr: "max_search_nodes"},
		{name: "format", mutate: func(c *NavServer) { c.MmapFormat = "wotlk" }, wantErr: "unknown mesh format"},
		{name: "negative water cost", mutate: func(c *NavServer) { c.WaterCost = -1 }, wantErr: "water_cost"},
		{name: "zero hostile cost", mutate: func(c *NavServer) { c.HostileTerritoryCost = 0 }, wantErr: "hostile_territory_cost"},
		{name: "log level", mutate: func(c *NavServer) { c.LogLevel = "loud" }, wantErr: "log_level"},
		{name: "mmaps missing", mutate: func(c *NavServer) { c.MmapsPath = "/nonexistent/mmaps" }, wantErr: "mmaps folder"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid(t)
			if tt.mutate != nil {
				tt.mutate(&cfg)
			}
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
