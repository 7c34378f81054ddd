package filter

import "github.com/udisondev/navgo/internal/detour"

// Costs are the traversal cost multipliers applied by the default profiles.
type Costs struct {
	Water     float32
	BadLiquid float32
	// Hostile scales areas owned by the opposite faction (ANP meshes only).
	Hostile float32
}

// DefaultCosts returns the stock multipliers.
func DefaultCosts() Costs {
	return Costs{Water: 1.3, BadLiquid: 4.0, Hostile: 3.0}
}

type key struct {
	format Format
	state  ClientState
}

// Provider is an immutable table of default filters keyed by (format, state).
// Filters returned by Get are shared and must not be modified; callers that
// need to customise costs work on a Clone.
type Provider struct {
	filters map[key]*detour.QueryFilter
}

// NewProvider builds filters for every known format and state.
func NewProvider(c Costs) *Provider {
	p := &Provider{filters: make(map[key]*detour.QueryFilter, 12)}
	for state := range stateCount {
		p.filters[key{FormatTC335A, state}] = build335a(c, state)
		p.filters[key{FormatSF548, state}] = build548(c, state)
		p.filters[key{FormatANP, state}] = buildAnp(c, state)
	}
	return p
}

// Get returns the shared filter for format and state.
// Unknown combinations fall back to the NORMAL filter of the format, and to
// a permissive unit-cost filter for unknown formats.
func (p *Provider) Get(format Format, state ClientState) *detour.QueryFilter {
	if f, ok := p.filters[key{format, state}]; ok {
		return f
	}
	if f, ok := p.filters[key{format, StateNormal}]; ok {
		return f
	}
	return permissive
}

var permissive = detour.NewQueryFilter()

func build335a(c Costs, state ClientState) *detour.QueryFilter {
	f := detour.NewQueryFilter()
	f.IncludeFlags = Flag335aGround | Flag335aWater | Flag335aMagmaSlime
	f.ExcludeFlags = Flag335aEmpty | Flag335aGroundSteep
	if state == StateDead {
		return f
	}
	f.SetAreaCost(Area335aWater, c.Water)
	f.SetAreaCost(Area335aMagmaSlime, c.BadLiquid)
	return f
}

func build548(c Costs, state ClientState) *detour.QueryFilter {
	f := detour.NewQueryFilter()
	f.IncludeFlags = Flag548Ground | Flag548Magma | Flag548Slime | Flag548Water
	f.ExcludeFlags = Flag548Empty
	if state == StateDead {
		return f
	}
	f.SetAreaCost(Area548Water, c.Water)
	f.SetAreaCost(Area548Magma, c.BadLiquid)
	f.SetAreaCost(Area548Slime, c.BadLiquid)
	return f
}

func buildAnp(c Costs, state ClientState) *detour.QueryFilter {
	f := detour.NewQueryFilter()
	f.IncludeFlags = FlagAnpLavaSlime | FlagAnpWater | FlagAnpGround | FlagAnpRoad | FlagAnpAlliance | FlagAnpHorde
	f.ExcludeFlags = FlagAnpEmpty
	if state == StateDead {
		return f
	}

	for _, kind := range anpKinds {
		cost := float32(1)
		switch kind {
		case AreaAnpWater, AreaAnpOcean:
			cost = c.Water
		case AreaAnpLava, AreaAnpSlime:
			cost = c.BadLiquid
		}
		alliance, horde := cost, cost
		switch state {
		case StateNormalAlliance:
			horde *= c.Hostile
		case StateNormalHorde:
			alliance *= c.Hostile
		}
		f.SetAreaCost(kind, cost)
		f.SetAreaCost(kind+1, alliance)
		f.SetAreaCost(kind+2, horde)
	}
	return f
}
