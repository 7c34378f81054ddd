package geom

import (
	"errors"
	"fmt"
	"math"
)

const (
	// DefaultPoissonCandidates is the number of candidates tried around an active point.
	DefaultPoissonCandidates = 30

	// DefaultPoissonSeedAttempts bounds rejection sampling of the first point.
	DefaultPoissonSeedAttempts = 1000

	// maxPoissonGridCells caps the acceleration grid size.
	maxPoissonGridCells = 1 << 22
)

var (
	// ErrDegeneratePolygon is returned for boundaries with fewer than 3 vertices or zero area.
	ErrDegeneratePolygon = errors.New("degenerate polygon")

	// ErrNoInteriorPoint is returned when no seed point inside the polygon could be found.
	ErrNoInteriorPoint = errors.New("no interior point found")

	// ErrInvalidDistance is returned for non-positive minimum distances and
	// for distances too small for the boundary's extent.
	ErrInvalidDistance = errors.New("invalid minimum distance")
)

// PoissonDisk samples blue-noise points inside a polygon (Bridson's algorithm).
// Every accepted point lies inside the polygon and is at least MinDistance
// away (in X/Y) from every other accepted point.
type PoissonDisk struct {
	MinDistance float32
	// Candidates per active point; DefaultPoissonCandidates when zero.
	Candidates int
	// SeedAttempts for the first point; DefaultPoissonSeedAttempts when zero.
	SeedAttempts int
	// Z is assigned to every sampled point.
	Z    float32
	Rand RandomSource
}

// Sample fills out (after resetting it) with points until the active set is
// exhausted or out is full.
func (pd PoissonDisk) Sample(boundary Polygon, out *Path) error {
	out.Reset()

	if pd.MinDistance <= 0 || !finite(pd.MinDistance) {
		return fmt.Errorf("%w: %v", ErrInvalidDistance, pd.MinDistance)
	}
	if len(boundary) < 3 {
		return fmt.Errorf("%w: %d vertices", ErrDegeneratePolygon, len(boundary))
	}
	for _, v := range boundary {
		if !finite(v.X) || !finite(v.Y) {
			return fmt.Errorf("%w: non-finite vertex %v", ErrDegeneratePolygon, v)
		}
	}
	minX, minY, maxX, maxY := boundary.Bounds()
	width, height := maxX-minX, maxY-minY
	if !finite(width) || !finite(height) {
		return fmt.Errorf("%w: bounds overflow", ErrDegeneratePolygon)
	}
	if width <= 0 || height <= 0 {
		return ErrDegeneratePolygon
	}

	// Размер сетки считается в float64: при малом MinDistance int переполняется.
	cell := pd.MinDistance / math.Sqrt2
	fc := math.Ceil(float64(width)/float64(cell)) + 1
	fr := math.Ceil(float64(height)/float64(cell)) + 1
	if !(fc*fr <= maxPoissonGridCells) {
		return fmt.Errorf("%w: sampling grid %.0fx%.0f too large", ErrInvalidDistance, fc, fr)
	}
	cols, rows := int(fc), int(fr)

	candidates := pd.Candidates
	if candidates <= 0 {
		candidates = DefaultPoissonCandidates
	}
	seedAttempts := pd.SeedAttempts
	if seedAttempts <= 0 {
		seedAttempts = DefaultPoissonSeedAttempts
	}

	// grid хранит индекс точки в out или -1.
	grid := make([]int32, cols*rows)
	for i := range grid {
		grid[i] = -1
	}
	cellOf := func(p Vec3) (int, int) {
		return int((p.X - minX) / cell), int((p.Y - minY) / cell)
	}
	farEnough := func(p Vec3) bool {
		cx, cy := cellOf(p)
		for y := max(cy-2, 0); y <= min(cy+2, rows-1); y++ {
			for x := max(cx-2, 0); x <= min(cx+2, cols-1); x++ {
				idx := grid[y*cols+x]
				if idx >= 0 && out.At(int(idx)).DistXY(p) < pd.MinDistance {
					return false
				}
			}
		}
		return true
	}
	accept := func(p Vec3) bool {
		if !out.Append(p) {
			return false
		}
		cx, cy := cellOf(p)
		grid[cy*cols+cx] = int32(out.Len() - 1)
		return true
	}

	var seed Vec3
	found := false
	for range seedAttempts {
		seed = Vec3{X: minX + pd.Rand()*width, Y: minY + pd.Rand()*height, Z: pd.Z}
		if boundary.Contains(seed) {
			found = true
			break
		}
	}
	if !found {
		return ErrNoInteriorPoint
	}
	if !accept(seed) {
		return nil
	}

	active := []int{0}
	for len(active) > 0 && out.Space() > 0 {
		slot := min(int(pd.Rand()*float32(len(active))), len(active)-1)
		center := out.At(active[slot])

		placed := false
		for range candidates {
			angle := float64(pd.Rand()) * 2 * math.Pi
			dist := pd.MinDistance * (1 + pd.Rand())
			c := Vec3{
				X: center.X + dist*float32(math.Cos(angle)),
				Y: center.Y + dist*float32(math.Sin(angle)),
				Z: pd.Z,
			}
			if c.X < minX || c.X > maxX || c.Y < minY || c.Y > maxY {
				continue
			}
			if !boundary.Contains(c) || !farEnough(c) {
				continue
			}
			if !accept(c) {
				return nil
			}
			active = append(active, out.Len()-1)
			placed = true
			break
		}

		if !placed {
			active[slot] = active[len(active)-1]
			active = active[:len(active)-1]
		}
	}
	return nil
}
