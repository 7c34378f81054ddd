package navmesh

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/udisondev/navgo/internal/filter"
)

// mmapPatterns are the file naming schemes of the directory formats,
// in detection order.
var mmapPatterns = []struct {
	format filter.Format
	params string
	tile   string
}{
	{filter.FormatTC335A, "%03d.mmap", "%03d%02d%02d.mmtile"},
	{filter.FormatSF548, "%04d.mmap", "%04d_%02d_%02d.mmtile"},
}

// DetectMmapFormat probes dir for a well-known tile (map 0, tile 27/27) in
// each naming scheme. Returns FormatUnknown when none matches.
func DetectMmapFormat(dir string) filter.Format {
	for _, p := range mmapPatterns {
		if _, err := os.Stat(filepath.Join(dir, fmt.Sprintf(p.tile, 0, 27, 27))); err == nil {
			return p.format
		}
	}
	return filter.FormatUnknown
}

// MmapSource reads one parameters file and one file per tile from a directory.
type MmapSource struct {
	dir    string
	format filter.Format
	params string
	tile   string
}

// NewMmapSource creates a directory source. FormatUnknown triggers detection.
func NewMmapSource(dir string, format filter.Format) (*MmapSource, error) {
	if format == filter.FormatUnknown {
		format = DetectMmapFormat(dir)
	}
	for _, p := range mmapPatterns {
		if p.format == format {
			return &MmapSource{dir: dir, format: format, params: p.params, tile: p.tile}, nil
		}
	}
	return nil, fmt.Errorf("%w: cannot use format %s for mmap directory %s", ErrFormatMismatch, format, dir)
}

// Format returns the naming scheme of the directory.
func (s *MmapSource) Format() filter.Format {
	return s.format
}

// Open checks that the parameters file of mapID exists.
func (s *MmapSource) Open(mapID int32) (Container, error) {
	path := filepath.Join(s.dir, fmt.Sprintf(s.params, mapID))
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	return &mmapContainer{src: s, mapID: mapID, paramsPath: path}, nil
}

type mmapContainer struct {
	src        *MmapSource
	mapID      int32
	paramsPath string
}

func (c *mmapContainer) Params() ([]byte, error) {
	return os.ReadFile(c.paramsPath)
}

func (c *mmapContainer) Tile(x, y int) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(c.src.dir, fmt.Sprintf(c.src.tile, c.mapID, x, y)))
	if err != nil {
		return nil, err
	}
	return SplitTile(data)
}

func (c *mmapContainer) Close() error {
	return nil
}
