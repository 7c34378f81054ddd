package geom

// Path is a fixed-capacity point buffer.
// The number of stored points never exceeds the capacity given at construction;
// appends past capacity are refused. The zero value has no capacity.
type Path struct {
	points []Vec3
}

// NewPath создаёт пустой путь с фиксированной ёмкостью.
func NewPath(capacity int) *Path {
	return &Path{points: make([]Vec3, 0, max(capacity, 0))}
}

// Append adds v to the end of the path.
// Returns false (and leaves the path unchanged) when the path is full.
func (p *Path) Append(v Vec3) bool {
	if len(p.points) == cap(p.points) {
		return false
	}
	p.points = append(p.points, v)
	return true
}

// AppendAll appends points until the path is full and returns how many were stored.
func (p *Path) AppendAll(vs []Vec3) int {
	n := min(len(vs), p.Space())
	p.points = append(p.points, vs[:n]...)
	return n
}

// Reset empties the path, keeping its capacity.
func (p *Path) Reset() {
	p.points = p.points[:0]
}

// Len returns the number of stored points.
func (p *Path) Len() int { return len(p.points) }

// Cap returns the fixed capacity.
func (p *Path) Cap() int { return cap(p.points) }

// Space returns how many more points fit.
func (p *Path) Space() int { return cap(p.points) - len(p.points) }

// At returns the i-th point.
func (p *Path) At(i int) Vec3 { return p.points[i] }

// Set overwrites the i-th point.
func (p *Path) Set(i int, v Vec3) { p.points[i] = v }

// Last returns the final point and false when the path is empty.
func (p *Path) Last() (Vec3, bool) {
	if len(p.points) == 0 {
		return Vec3{}, false
	}
	return p.points[len(p.points)-1], true
}

// Points returns the stored points.
// The returned slice aliases the buffer and is valid until the next mutation;
// its capacity is clipped so that appending to it cannot write into the buffer.
func (p *Path) Points() []Vec3 {
	return p.points[:len(p.points):len(p.points)]
}

// Transform replaces every point with fn(point).
func (p *Path) Transform(fn func(Vec3) Vec3) {
	for i, v := range p.points {
		p.points[i] = fn(v)
	}
}
