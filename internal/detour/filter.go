package detour

// MaxAreas is the number of distinct area ids a polygon can carry.
const MaxAreas = 64

// QueryFilter decides which polygons are traversable and what they cost.
type QueryFilter struct {
	IncludeFlags uint16
	ExcludeFlags uint16
	areaCost     [MaxAreas]float32
}

// NewQueryFilter returns a filter that includes every polygon at unit cost.
func NewQueryFilter() *QueryFilter {
	f := &QueryFilter{IncludeFlags: 0xFFFF}
	for i := range f.areaCost {
		f.areaCost[i] = 1
	}
	return f
}

// PassFilter reports whether a polygon with the given flags may be traversed.
func (f *QueryFilter) PassFilter(flags uint16) bool {
	return flags&f.IncludeFlags != 0 && flags&f.ExcludeFlags == 0
}

// AreaCost returns the traversal cost multiplier of area.
func (f *QueryFilter) AreaCost(area uint8) float32 {
	if int(area) >= MaxAreas {
		return 1
	}
	return f.areaCost[area]
}

// SetAreaCost sets the traversal cost multiplier of area. Out-of-range ids are ignored.
func (f *QueryFilter) SetAreaCost(area uint8, cost float32) {
	if int(area) >= MaxAreas {
		return
	}
	f.areaCost[area] = cost
}

// Clone returns an independent copy of f.
func (f *QueryFilter) Clone() *QueryFilter {
	c := *f
	return &c
}
