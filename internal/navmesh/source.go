// Package navmesh loads navigation meshes from tile-file containers and
// caches them per map.
package navmesh

import (
	"errors"

	"github.com/udisondev/navgo/internal/filter"
)

var (
	// ErrNotFound is returned when a map has no tile-file container.
	ErrNotFound = errors.New("navmesh not found")

	// ErrFormatMismatch is returned for containers or tiles with an unexpected layout.
	ErrFormatMismatch = errors.New("navmesh format mismatch")

	// ErrEngineInitFailed is returned when the engine rejects the mesh parameters.
	ErrEngineInitFailed = errors.New("navmesh engine init failed")
)

// Source locates tile-file containers.
type Source interface {
	// Format reports the mesh format of every container of this source.
	Format() filter.Format
	// Open returns the container of mapID, or ErrNotFound.
	Open(mapID int32) (Container, error)
}

// Container holds the mesh parameters and tiles of one map.
// Tile may be called concurrently.
type Container interface {
	// Params returns the raw mesh parameter block.
	Params() ([]byte, error)
	// Tile returns the engine blob of tile (x, y), or an error wrapping
	// fs.ErrNotExist when the tile is absent.
	Tile(x, y int) ([]byte, error)
	Close() error
}
