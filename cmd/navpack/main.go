// Navpack converts mmap tile directories into .anp archives.
//
// Usage:
//
//	go run ./cmd/navpack -in mmaps -out anp -maps 0,1,530
//	go run ./cmd/navpack -in mmaps -out anp -format 548 -zstd -maps 0
package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/navgo/internal/constants"
	"github.com/udisondev/navgo/internal/filter"
	"github.com/udisondev/navgo/internal/navmesh"
)

func main() {
	in := flag.String("in", "mmaps", "mmap tile directory")
	out := flag.String("out", "anp", "output directory for .anp archives")
	format := flag.String("format", "auto", "mmap naming: auto | 335a | 548")
	maps := flag.String("maps", "", "comma-separated map ids")
	useZstd := flag.Bool("zstd", false, "compress entries with zstd instead of deflate")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	if err := run(*in, *out, *format, *maps, *useZstd); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(in, out, format, maps string, useZstd bool) error {
	ids, err := parseMapIDs(maps)
	if err != nil {
		return err
	}
	f, err := filter.ParseFormat(format)
	if err != nil {
		return err
	}
	if f == filter.FormatANP {
		return errors.New("input must be an mmap directory")
	}
	src, err := navmesh.NewMmapSource(in, f)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}

	compression := navmesh.AnpDeflate
	if useZstd {
		compression = navmesh.AnpZstd
	}

	start := time.Now()
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for _, id := range ids {
		g.Go(func() error {
			return packMap(src, id, filepath.Join(out, navmesh.AnpFileName(id)), compression)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("done", "maps", len(ids), "format", src.Format(), "took", time.Since(start))
	return nil
}

func packMap(src *navmesh.MmapSource, mapID int32, path string, compression navmesh.AnpCompression) (err error) {
	c, err := src.Open(mapID)
	if err != nil {
		return fmt.Errorf("map %d: %w", mapID, err)
	}
	defer c.Close()

	params, err := c.Params()
	if err != nil {
		return fmt.Errorf("map %d params: %w", mapID, err)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()

	aw, err := navmesh.NewAnpWriter(file, mapID, params, compression)
	if err != nil {
		return fmt.Errorf("map %d: %w", mapID, err)
	}

	tiles := 0
	for x := range constants.TileGridSize {
		for y := range constants.TileGridSize {
			blob, err := c.Tile(x, y)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if errors.Is(err, navmesh.ErrFormatMismatch) {
				slog.Warn("tile skipped", "map", mapID, "x", x, "y", y, "err", err)
				continue
			}
			if err != nil {
				return fmt.Errorf("map %d tile %02d_%02d: %w", mapID, x, y, err)
			}
			if err := aw.AddTile(x, y, blob); err != nil {
				return fmt.Errorf("map %d: %w", mapID, err)
			}
			tiles++
		}
	}
	if err := aw.Close(); err != nil {
		return fmt.Errorf("map %d: %w", mapID, err)
	}

	slog.Info("map packed", "map", mapID, "tiles", tiles, "file", path)
	return nil
}

func parseMapIDs(s string) ([]int32, error) {
	if strings.TrimSpace(s) == "" {
		return nil, errors.New("-maps is required")
	}
	var ids []int32
	for _, part := range strings.Split(s, ",") {
		v, err := strconv.ParseInt(strings.TrimSpace(part), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("bad map id %q: %w", part, err)
		}
		ids = append(ids, int32(v))
	}
	return ids, nil
}
