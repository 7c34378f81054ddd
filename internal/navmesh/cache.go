package navmesh

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/udisondev/navgo/internal/constants"
	"github.com/udisondev/navgo/internal/detour"
)

// Cache lazily loads one mesh per map and shares it between all sessions.
//
// Loaded meshes are read without locking. Concurrent misses on the same map
// collapse into a single load; misses on different maps load in parallel.
// Failed loads are not cached: the next request tries again.
type Cache struct {
	engine  detour.Engine
	source  Source
	workers int

	meshes sync.Map // map[int32]detour.Mesh
	group  singleflight.Group
	loads  atomic.Int64
}

// NewCache creates a cache reading from source. workers bounds parallel tile reads.
func NewCache(engine detour.Engine, source Source, workers int) *Cache {
	if workers <= 0 {
		workers = constants.DefaultTileLoadWorkers
	}
	return &Cache{engine: engine, source: source, workers: workers}
}

// GetOrLoad returns the mesh of mapID, loading it on first use.
func (c *Cache) GetOrLoad(mapID int32) (detour.Mesh, error) {
	if m, ok := c.meshes.Load(mapID); ok {
		return m.(detour.Mesh), nil
	}

	v, err, _ := c.group.Do(strconv.Itoa(int(mapID)), func() (any, error) {
		// Повторная проверка: загрузка могла завершиться между Load и Do.
		if m, ok := c.meshes.Load(mapID); ok {
			return m, nil
		}
		m, err := c.load(mapID)
		if err != nil {
			return nil, err
		}
		c.meshes.Store(mapID, m)
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(detour.Mesh), nil
}

// Loaded reports whether mapID is resident.
func (c *Cache) Loaded(mapID int32) bool {
	_, ok := c.meshes.Load(mapID)
	return ok
}

// Loads returns the number of load sequences started so far.
func (c *Cache) Loads() int64 {
	return c.loads.Load()
}

func (c *Cache) load(mapID int32) (detour.Mesh, error) {
	c.loads.Add(1)
	log := slog.With("map", mapID)

	container, err := c.source.Open(mapID)
	if err != nil {
		return nil, fmt.Errorf("loading map %d: %w", mapID, err)
	}
	defer container.Close()

	raw, err := container.Params()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading map %d params: %w", mapID, ErrNotFound)
		}
		return nil, fmt.Errorf("loading map %d params: %w: %v", mapID, ErrFormatMismatch, err)
	}
	var params detour.MeshParams
	if err := params.UnmarshalBinary(raw); err != nil {
		return nil, fmt.Errorf("loading map %d: %w: %v", mapID, ErrFormatMismatch, err)
	}

	mesh, err := c.engine.NewMesh(params)
	if err != nil {
		return nil, fmt.Errorf("loading map %d: %w: %v", mapID, ErrEngineInitFailed, err)
	}

	const grid = constants.TileGridSize
	blobs := make([][]byte, grid*grid)

	var g errgroup.Group
	g.SetLimit(c.workers)
	for i := range blobs {
		x, y := i/grid, i%grid
		g.Go(func() error {
			blob, err := container.Tile(x, y)
			switch {
			case err == nil:
				blobs[i] = blob
			case errors.Is(err, fs.ErrNotExist):
			default:
				log.Warn("skipping tile", "x", x, "y", y, "err", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	added := 0
	for i, blob := range blobs {
		if blob == nil {
			continue
		}
		if _, err := mesh.AddTile(blob); err != nil {
			log.Warn("engine rejected tile", "x", i/grid, "y", i%grid, "err", err)
			continue
		}
		added++
	}

	log.Info("navmesh loaded", "tiles", added)
	return mesh, nil
}
