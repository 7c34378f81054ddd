package navmesh

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"

	"github.com/udisondev/navgo/internal/filter"
)

// ANP archives are zip files named %03d.anp holding the entries
// "mapId" (i32 LE), "params" (mesh parameters) and one "XX_YY" entry per tile
// with the raw engine blob (no per-tile header).
const (
	anpMapIDEntry  = "mapId"
	anpParamsEntry = "params"
)

// AnpFileName returns the archive name of mapID.
func AnpFileName(mapID int32) string {
	return fmt.Sprintf("%03d.anp", mapID)
}

func anpTileEntry(x, y int) string {
	return fmt.Sprintf("%02d_%02d", x, y)
}

// AnpSource reads packaged maps from a directory of .anp archives.
type AnpSource struct {
	dir string
}

// NewAnpSource creates an archive source over dir.
func NewAnpSource(dir string) *AnpSource {
	return &AnpSource{dir: dir}
}

// Format returns FormatANP.
func (s *AnpSource) Format() filter.Format {
	return filter.FormatANP
}

// Open opens the archive of mapID and indexes its entries.
func (s *AnpSource) Open(mapID int32) (Container, error) {
	path := filepath.Join(s.dir, AnpFileName(mapID))
	zr, err := zip.OpenReader(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: open %s: %v", ErrFormatMismatch, path, err)
	}
	zr.RegisterDecompressor(zstd.ZipMethodWinZip, zstd.ZipDecompressor())

	c := &anpContainer{zr: zr, entries: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		c.entries[f.Name] = f
	}

	if f, ok := c.entries[anpMapIDEntry]; ok {
		raw, err := readEntry(f)
		if err != nil || len(raw) < 4 {
			zr.Close()
			return nil, fmt.Errorf("%w: %s: bad mapId entry", ErrFormatMismatch, path)
		}
		if got := int32(binary.LittleEndian.Uint32(raw)); got != mapID {
			zr.Close()
			return nil, fmt.Errorf("%w: %s holds map %d", ErrFormatMismatch, path, got)
		}
	}
	return c, nil
}

type anpContainer struct {
	zr      *zip.ReadCloser
	entries map[string]*zip.File
}

func (c *anpContainer) Params() ([]byte, error) {
	f, ok := c.entries[anpParamsEntry]
	if !ok {
		return nil, fmt.Errorf("%w: archive has no %q entry", ErrFormatMismatch, anpParamsEntry)
	}
	return readEntry(f)
}

func (c *anpContainer) Tile(x, y int) ([]byte, error) {
	name := anpTileEntry(x, y)
	f, ok := c.entries[name]
	if !ok {
		return nil, fmt.Errorf("tile %s: %w", name, fs.ErrNotExist)
	}
	return readEntry(f)
}

func (c *anpContainer) Close() error {
	return c.zr.Close()
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read entry %s: %w", f.Name, err)
	}
	return data, nil
}

// AnpCompression selects the entry codec of written archives.
type AnpCompression uint8

const (
	// AnpDeflate writes deflate entries readable by any zip tool.
	AnpDeflate AnpCompression = iota
	// AnpZstd writes zstd entries (zip method 93).
	AnpZstd
)

// AnpWriter packs one map into an .anp archive.
type AnpWriter struct {
	zw     *zip.Writer
	method uint16
}

// NewAnpWriter starts an archive on w and writes the map id and parameter entries.
func NewAnpWriter(w io.Writer, mapID int32, params []byte, compression AnpCompression) (*AnpWriter, error) {
	zw := zip.NewWriter(w)
	aw := &AnpWriter{zw: zw, method: zip.Deflate}

	switch compression {
	case AnpZstd:
		aw.method = zstd.ZipMethodWinZip
		zw.RegisterCompressor(zstd.ZipMethodWinZip, zstd.ZipCompressor(zstd.WithEncoderLevel(zstd.SpeedBestCompression)))
	default:
		zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
			return flate.NewWriter(out, flate.BestCompression)
		})
	}

	if err := aw.add(anpMapIDEntry, binary.LittleEndian.AppendUint32(nil, uint32(mapID))); err != nil {
		return nil, err
	}
	if err := aw.add(anpParamsEntry, params); err != nil {
		return nil, err
	}
	return aw, nil
}

// AddTile stores the engine blob of tile (x, y).
func (aw *AnpWriter) AddTile(x, y int, blob []byte) error {
	return aw.add(anpTileEntry(x, y), blob)
}

// Close finishes the archive. It does not close the underlying writer.
func (aw *AnpWriter) Close() error {
	return aw.zw.Close()
}

func (aw *AnpWriter) add(name string, data []byte) error {
	w, err := aw.zw.CreateHeader(&zip.FileHeader{Name: name, Method: aw.method})
	if err != nil {
		return fmt.Errorf("create entry %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write entry %s: %w", name, err)
	}
	return nil
}
