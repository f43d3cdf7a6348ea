package combat

import (
	"github.com/talgya/marshals/internal/agents"
	"github.com/talgya/marshals/internal/theater"
	"github.com/talgya/marshals/internal/world"
)

// PrimaryDefender returns the strongest enemy of faction in a region; ties go
// to declared order. Nil when the region holds no enemy troops.
func PrimaryDefender(th *theater.Theater, region world.RegionID, faction world.FactionID) *agents.Marshal {
	var best *agents.Marshal
	for _, m := range th.EnemiesAt(region, faction) {
		if best == nil || m.Strength > best.Strength {
			best = m
		}
	}
	return best
}

// RegionOdds projects att's odds against the primary defender of a region.
// Returns 0 when nobody defends it.
func (r *Resolver) RegionOdds(th *theater.Theater, att *agents.Marshal, region world.RegionID) float64 {
	def := PrimaryDefender(th, region, att.Faction)
	if def == nil {
		return 0
	}
	terrain := world.TerrainPlains
	if reg, ok := th.Region(region); ok {
		terrain = reg.Terrain
	}
	return r.Odds(att, def, terrain)
}

// ThreatSource is the region a retreat should get away from: the marshal's
// own region when enemies share it, otherwise the adjacent region holding
// the most enemy troops. Falls back to the marshal's location.
func ThreatSource(th *theater.Theater, m *agents.Marshal) world.RegionID {
	if th.EnemyOccupied(m.Location, m.Faction) {
		return m.Location
	}
	src, most := m.Location, 0
	for _, n := range th.Map.Neighbors(m.Location) {
		if s := th.EnemyStrengthAt(n, m.Faction); s > most {
			src, most = n, s
		}
	}
	return src
}
