package combat

import (
	"math"

	"github.com/talgya/marshals/internal/agents"
	"github.com/talgya/marshals/internal/theater"
	"github.com/talgya/marshals/internal/world"
)

// Tier ranks retreat destinations. Lower is better.
type Tier uint8

const (
	TierFriendlyCovered Tier = iota // Own territory with an allied marshal present
	TierFriendlyEmpty               // Own territory, nobody there
	TierEnemyCovered                // Foreign territory with an allied marshal present
	TierEnemyEmpty                  // Foreign territory, nobody there
	TierEncircled                   // Nowhere to go: fall back on the capital or the nearest safe own region at a heavy cost
)

func (t Tier) String() string {
	switch t {
	case TierFriendlyCovered:
		return "friendly-covered"
	case TierFriendlyEmpty:
		return "friendly-empty"
	case TierEnemyCovered:
		return "enemy-covered"
	case TierEnemyEmpty:
		return "enemy-empty"
	default:
		return "encircled"
	}
}

// SelectRetreat picks where m falls back to from an attack launched out of
// attackerLoc. Candidates are adjacent regions free of enemy troops, other
// than the attacker's own. The best tier wins; ties go to the region
// farthest from the attacker, then to declared region order.
func SelectRetreat(th *theater.Theater, m *agents.Marshal, attackerLoc world.RegionID) (world.RegionID, Tier) {
	dist := th.Map.Distances(attackerLoc)

	best := world.RegionID("")
	bestTier := TierEncircled
	bestDist := -1
	for _, r := range th.Map.Regions() {
		if !th.Map.Adjacent(m.Location, r.ID) || r.ID == attackerLoc {
			continue
		}
		if th.EnemyOccupied(r.ID, m.Faction) {
			continue
		}
		tier := tierOf(th, m, r)
		d, ok := dist[r.ID]
		if !ok {
			d = math.MaxInt32
		}
		if tier < bestTier || (tier == bestTier && d > bestDist) {
			best, bestTier, bestDist = r.ID, tier, d
		}
	}
	if bestTier != TierEncircled {
		return best, bestTier
	}

	return fallback(th, m), TierEncircled
}

// fallback is where an encircled marshal ends up: its capital unless the
// enemy stands there, else the nearest own region free of enemy troops,
// else where it is.
func fallback(th *theater.Theater, m *agents.Marshal) world.RegionID {
	if f, ok := th.Faction(m.Faction); ok && f.Capital != "" && !th.EnemyOccupied(f.Capital, m.Faction) {
		if _, ok := th.Region(f.Capital); ok {
			return f.Capital
		}
	}
	dist := th.Map.Distances(m.Location)
	best, bestDist := m.Location, -1
	for _, r := range th.Map.Regions() {
		d, ok := dist[r.ID]
		if !ok || r.ID == m.Location || r.Owner != m.Faction || th.EnemyOccupied(r.ID, m.Faction) {
			continue
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = r.ID, d
		}
	}
	return best
}

func tierOf(th *theater.Theater, m *agents.Marshal, r *world.Region) Tier {
	covered := len(th.AlliesAt(r.ID, m.Faction, m.ID)) > 0
	friendly := r.Owner == m.Faction
	switch {
	case friendly && covered:
		return TierFriendlyCovered
	case friendly:
		return TierFriendlyEmpty
	case covered:
		return TierEnemyCovered
	default:
		return TierEnemyEmpty
	}
}

// Relocate moves a retreating marshal and puts it into recovery. Forced
// retreats leave the force broken; encirclement also costs half its strength.
func Relocate(m *agents.Marshal, dest world.RegionID, tier Tier, forced bool) int {
	recovery := agents.VoluntaryRetreatRecovery
	if forced {
		recovery = agents.ForcedRetreatRecovery
	}
	m.Location = dest
	m.EnterRetreat(recovery)
	if forced {
		m.Tactical.Broken = true
	}
	if tier == TierEncircled {
		return m.ApplyCasualties(int(math.Round(float64(m.Strength) * EncirclementLoss)))
	}
	return 0
}
