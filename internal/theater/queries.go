package theater

import (
	"github.com/talgya/marshals/internal/agents"
	"github.com/talgya/marshals/internal/world"
)

// MarshalsAt returns the on-field marshals in a region, in declared order.
func (t *Theater) MarshalsAt(region world.RegionID) []*agents.Marshal {
	var out []*agents.Marshal
	for _, id := range t.marshalOrder {
		m := t.marshals[id]
		if m.Location == region && OnField(m) {
			out = append(out, m)
		}
	}
	return out
}

// MarshalsOf returns every marshal of a faction, in declared order.
func (t *Theater) MarshalsOf(faction world.FactionID) []*agents.Marshal {
	var out []*agents.Marshal
	for _, id := range t.marshalOrder {
		if m := t.marshals[id]; m.Faction == faction {
			out = append(out, m)
		}
	}
	return out
}

// EnemiesAt returns on-field marshals in a region not belonging to faction.
func (t *Theater) EnemiesAt(region world.RegionID, faction world.FactionID) []*agents.Marshal {
	var out []*agents.Marshal
	for _, m := range t.MarshalsAt(region) {
		if m.Faction != faction {
			out = append(out, m)
		}
	}
	return out
}

// AlliesAt returns on-field marshals of faction in a region, excluding one id.
func (t *Theater) AlliesAt(region world.RegionID, faction world.FactionID, exclude agents.MarshalID) []*agents.Marshal {
	var out []*agents.Marshal
	for _, m := range t.MarshalsAt(region) {
		if m.Faction == faction && m.ID != exclude {
			out = append(out, m)
		}
	}
	return out
}

// EnemyOccupied reports whether any enemy of faction stands in region.
func (t *Theater) EnemyOccupied(region world.RegionID, faction world.FactionID) bool {
	return len(t.EnemiesAt(region, faction)) > 0
}

// Hostile reports whether a region is owned by another faction or held by
// enemy troops.
func (t *Theater) Hostile(region world.RegionID, faction world.FactionID) bool {
	r := t.Map.Get(region)
	if r == nil {
		return false
	}
	if r.Owner != "" && r.Owner != faction {
		return true
	}
	return t.EnemyOccupied(region, faction)
}

// StrengthAt sums the troops of faction in a region.
func (t *Theater) StrengthAt(region world.RegionID, faction world.FactionID) int {
	total := 0
	for _, m := range t.MarshalsAt(region) {
		if m.Faction == faction {
			total += m.Strength
		}
	}
	return total
}

// EnemyStrengthAt sums the troops of every faction other than faction in a region.
func (t *Theater) EnemyStrengthAt(region world.RegionID, faction world.FactionID) int {
	total := 0
	for _, m := range t.EnemiesAt(region, faction) {
		total += m.Strength
	}
	return total
}

// EnemyStrengthNear sums enemy troops in a region and its neighbours.
func (t *Theater) EnemyStrengthNear(region world.RegionID, faction world.FactionID) int {
	total := t.EnemyStrengthAt(region, faction)
	for _, n := range t.Map.Neighbors(region) {
		total += t.EnemyStrengthAt(n, faction)
	}
	return total
}

// AllyNear reports whether another marshal of the same faction is in the
// marshal's region or an adjacent one.
func (t *Theater) AllyNear(m *agents.Marshal) bool {
	if len(t.AlliesAt(m.Location, m.Faction, m.ID)) > 0 {
		return true
	}
	for _, n := range t.Map.Neighbors(m.Location) {
		if len(t.AlliesAt(n, m.Faction, m.ID)) > 0 {
			return true
		}
	}
	return false
}

// AdjacentEnemies returns enemy marshals in regions adjacent to m, in
// declared adjacency then marshal order.
func (t *Theater) AdjacentEnemies(m *agents.Marshal) []*agents.Marshal {
	var out []*agents.Marshal
	for _, n := range t.Map.Neighbors(m.Location) {
		out = append(out, t.EnemiesAt(n, m.Faction)...)
	}
	return out
}

// RegionsOwnedBy returns the regions owned by a faction in declared order.
func (t *Theater) RegionsOwnedBy(faction world.FactionID) []*world.Region {
	var out []*world.Region
	for _, r := range t.Map.Regions() {
		if r.Owner == faction {
			out = append(out, r)
		}
	}
	return out
}

// TotalStrength sums the troops of every marshal of a faction, including
// those on administrative duty.
func (t *Theater) TotalStrength(faction world.FactionID) int {
	total := 0
	for _, m := range t.MarshalsOf(faction) {
		total += m.Strength
	}
	return total
}

// NearestDistance returns the BFS distance from region to the closest
// region satisfying pred, or -1 if none does.
func (t *Theater) NearestDistance(from world.RegionID, pred func(world.RegionID) bool) int {
	best := -1
	for id, d := range t.Map.Distances(from) {
		if pred(id) && (best < 0 || d < best) {
			best = d
		}
	}
	return best
}
