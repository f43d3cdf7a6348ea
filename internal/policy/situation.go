package policy

import (
	"github.com/talgya/marshals/internal/agents"
	"github.com/talgya/marshals/internal/combat"
	"github.com/talgya/marshals/internal/theater"
	"github.com/talgya/marshals/internal/world"
)

// Ladder tuning.
const (
	StrengthFloor  = 0.25 // Below this fraction of starting strength a marshal stops attacking
	RallyBelow     = 0.50 // Below this a marshal seeks its strongest ally
	SupportRadius  = 3    // Regions within which an ally in trouble is supported
	IdleEscalation = 2    // Idle turns before escalation starts
	ThresholdStep  = 0.1  // Attack threshold drop per idle turn past escalation
	ThresholdFloor = 0.6
)

// Situation is one marshal's view of the theater for one invocation, along
// with the targets rules may build orders against.
type Situation struct {
	Env
	Marshal *agents.Marshal

	BestTarget    world.RegionID // Adjacent defended region with the best odds
	CaptureTarget world.RegionID // Adjacent hostile region nobody defends
	SupportStep   world.RegionID
	RallyStep     world.RegionID
	AdvanceStep   world.RegionID
	FallbackStep  world.RegionID
}

// Threshold is the attack threshold after idle escalation.
func Threshold(m *agents.Marshal) float64 {
	base := agents.ProfileFor(m.Personality).AttackThreshold
	over := max(0, m.IdleTurns-IdleEscalation)
	return max(ThresholdFloor, base-ThresholdStep*float64(over))
}

// Assess reads the theater from a marshal's point of view. It never writes.
func Assess(th *theater.Theater, res *combat.Resolver, m *agents.Marshal) *Situation {
	prof := agents.ProfileFor(m.Personality)
	s := &Situation{Marshal: m}
	s.Env = Env{
		Personality:      m.Personality.String(),
		Stance:           m.Stance.String(),
		Preferred:        prof.PreferredStance.String(),
		StrengthRatio:    m.StrengthRatio(),
		Morale:           m.Morale,
		InRecovery:       m.InRecovery(),
		Administrative:   m.Tactical.Administrative,
		Fortified:        m.Tactical.Fortified,
		Drilling:         m.Tactical.Drilling,
		Holding:          m.Tactical.Holding,
		ShockReady:       m.Tactical.ShockBonus > 0,
		IdleTurns:        m.IdleTurns,
		AdvancedThisTurn: m.AdvancedThisTurn,
		Threshold:        Threshold(m),
	}
	if !theater.OnField(m) {
		return s
	}

	if r, ok := th.Region(m.Location); ok {
		s.FriendlyTerritory = r.Owner == m.Faction
	}
	s.EnemyHere = th.EnemyOccupied(m.Location, m.Faction)
	if s.EnemyHere {
		s.HereOdds = res.RegionOdds(th, m, m.Location)
	}

	for _, n := range th.Map.Neighbors(m.Location) {
		if th.EnemyOccupied(n, m.Faction) {
			s.EnemyAdjacent = true
			if th.EnemyStrengthAt(n, m.Faction) > m.Strength {
				s.StrongerEnemyAdjacent = true
			}
			odds := res.RegionOdds(th, m, n)
			if !s.HasCombatTarget || odds > s.BestOdds {
				s.HasCombatTarget = true
				s.BestOdds = odds
				s.BestTarget = n
			}
			continue
		}
		if s.CaptureTarget == "" && th.Hostile(n, m.Faction) {
			s.CaptureTarget = n
			s.UndefendedTarget = true
		}
	}

	_, tier := combat.SelectRetreat(th, m, combat.ThreatSource(th, m))
	s.CanRetreat = tier != combat.TierEncircled

	s.SupportStep = supportStep(th, m)
	s.AllyNeedsSupport = s.SupportStep != ""
	if m.StrengthRatio() < RallyBelow {
		s.RallyStep = rallyStep(th, m)
		s.CanRally = s.RallyStep != ""
	}
	s.AdvanceStep = advanceStep(th, m)
	s.CanAdvance = s.AdvanceStep != ""
	if !s.FriendlyTerritory {
		s.FallbackStep = fallbackStep(th, m)
		s.CanFallBack = s.FallbackStep != ""
	}
	return s
}

// stepToward returns the first step of a route that never enters an
// enemy-held region, or "" when there is none.
func stepToward(th *theater.Theater, m *agents.Marshal, dest world.RegionID) world.RegionID {
	passable := func(id world.RegionID) bool { return !th.EnemyOccupied(id, m.Faction) }
	path := th.Map.Path(m.Location, dest, passable)
	if len(path) == 0 || !passable(path[0]) {
		return ""
	}
	return path[0]
}

// supportStep heads for the closest ally that is in combat or outnumbered.
func supportStep(th *theater.Theater, m *agents.Marshal) world.RegionID {
	dist := th.Map.Distances(m.Location)
	var best *agents.Marshal
	bestDist := 0
	for _, a := range th.MarshalsOf(m.Faction) {
		if a.ID == m.ID || !theater.OnField(a) || a.Location == m.Location {
			continue
		}
		d, ok := dist[a.Location]
		if !ok || d > SupportRadius {
			continue
		}
		inTrouble := th.EnemyOccupied(a.Location, a.Faction) ||
			th.EnemyStrengthNear(a.Location, a.Faction) > a.Strength
		if inTrouble && (best == nil || d < bestDist) {
			best, bestDist = a, d
		}
	}
	if best == nil {
		return ""
	}
	return stepToward(th, m, best.Location)
}

// rallyStep heads for the strongest ally nearby.
func rallyStep(th *theater.Theater, m *agents.Marshal) world.RegionID {
	dist := th.Map.Distances(m.Location)
	var best *agents.Marshal
	for _, a := range th.MarshalsOf(m.Faction) {
		if a.ID == m.ID || !theater.OnField(a) || a.Location == m.Location {
			continue
		}
		if d, ok := dist[a.Location]; !ok || d > SupportRadius {
			continue
		}
		if best == nil || a.Strength > best.Strength {
			best = a
		}
	}
	if best == nil {
		return ""
	}
	return stepToward(th, m, best.Location)
}

// advanceStep heads for the nearest enemy force.
func advanceStep(th *theater.Theater, m *agents.Marshal) world.RegionID {
	dist := th.Map.Distances(m.Location)
	target, bestDist := world.RegionID(""), -1
	for _, e := range th.Marshals() {
		if e.Faction == m.Faction || !theater.OnField(e) {
			continue
		}
		d, ok := dist[e.Location]
		if !ok || d == 0 {
			continue
		}
		if bestDist < 0 || d < bestDist {
			target, bestDist = e.Location, d
		}
	}
	if target == "" {
		return ""
	}
	return stepToward(th, m, target)
}

// fallbackStep heads for the nearest region the marshal's faction owns.
func fallbackStep(th *theater.Theater, m *agents.Marshal) world.RegionID {
	dist := th.Map.Distances(m.Location)
	target, bestDist := world.RegionID(""), -1
	for _, r := range th.RegionsOwnedBy(m.Faction) {
		d, ok := dist[r.ID]
		if !ok || d == 0 {
			continue
		}
		if bestDist < 0 || d < bestDist {
			target, bestDist = r.ID, d
		}
	}
	if target == "" {
		return ""
	}
	return stepToward(th, m, target)
}
