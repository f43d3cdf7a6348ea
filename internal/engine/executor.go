// The executor: the single path by which orders from the player, the
// decision policy, and standing orders change the theater.
package engine

import (
	"log/slog"

	"github.com/talgya/marshals/internal/agents"
	"github.com/talgya/marshals/internal/combat"
	"github.com/talgya/marshals/internal/command"
	"github.com/talgya/marshals/internal/orders"
	"github.com/talgya/marshals/internal/theater"
	"github.com/talgya/marshals/internal/world"
)

// Actions that reset the idle counter when they succeed.
var productive = map[command.ActionKind]bool{
	command.Move:    true,
	command.Attack:  true,
	command.Probe:   true,
	command.Retreat: true,
	command.Drill:   true,
	command.Fortify: true,
}

// Actions refused while drilling.
var drillLocked = map[command.ActionKind]bool{
	command.Move:    true,
	command.Attack:  true,
	command.Probe:   true,
	command.Fortify: true,
	command.Retreat: true,
	command.Scout:   true,
}

// Execute validates and applies one order. Nothing is written unless every
// check passes. Non-self-directed orders to the player's marshals spend one
// of the player's actions for the turn.
func (g *Game) Execute(o command.Order) command.Result {
	m, res, ok := g.validate(o)
	if !ok {
		slog.Debug("order rejected", "marshal", o.MarshalID, "order", o.Kind, "reason", res.Reason, "detail", res.Detail)
		return res
	}
	if g.chargesPlayer(m, o) {
		if g.playerActions <= 0 {
			return command.Reject(command.ReasonNoActionsLeft, "no orders left this turn")
		}
		g.playerActions--
	}

	res = g.apply(m, o)
	if res.Success && productive[o.Kind] {
		m.MarkActive()
	}
	slog.Debug("order executed", "marshal", m.ID, "order", o.Kind, "target", o.Target,
		"self_directed", o.SelfDirected, "summary", res.Summary)
	return res
}

func (g *Game) chargesPlayer(m *agents.Marshal, o command.Order) bool {
	return !o.SelfDirected && g.Theater.IsPlayer(m)
}

// validate runs every check in order: game state, identity, action, duty,
// recovery, drill lock, the action's own requirements, then the order's
// condition.
func (g *Game) validate(o command.Order) (*agents.Marshal, command.Result, bool) {
	if g.gameOver {
		return nil, command.Reject(command.ReasonGameOver, "the campaign is over"), false
	}
	m, ok := g.Theater.Marshal(o.MarshalID)
	if !ok {
		return nil, command.Reject(command.ReasonUnknownAgent, "no marshal %q", o.MarshalID), false
	}
	if !o.Kind.Valid() {
		return m, command.Reject(command.ReasonUnknownAction, "action %d", o.Kind), false
	}
	if m.Tactical.Administrative && o.Kind != command.ReturnToField && o.Kind != command.Wait {
		return m, command.Reject(command.ReasonAdministrative, "%s is on administrative duty", m.Name), false
	}
	if m.Strength <= 0 && !m.Tactical.Administrative && o.Kind != command.Wait {
		return m, command.Reject(command.ReasonDestroyed, "%s has no troops left", m.Name), false
	}
	if m.InRecovery() && blockedInRecovery(o) {
		return m, command.Reject(command.ReasonRetreatRecovery, "%s is recovering from a retreat (%d turns)",
			m.Name, m.Tactical.RetreatRecovery), false
	}
	if m.Tactical.Drilling && drillLocked[o.Kind] {
		return m, command.Reject(command.ReasonDrilling, "%s is drilling", m.Name), false
	}
	if res, ok := g.checkAction(m, o); !ok {
		return m, res, false
	}
	if res, ok := g.checkCondition(m, o); !ok {
		return m, res, false
	}
	return m, command.Result{}, true
}

func blockedInRecovery(o command.Order) bool {
	switch o.Kind {
	case command.Attack, command.Probe, command.Fortify, command.Drill, command.Scout:
		return true
	case command.SetStance:
		return o.Stance == agents.StanceAggressive
	}
	return false
}

func (g *Game) checkAction(m *agents.Marshal, o command.Order) (command.Result, bool) {
	th := g.Theater
	switch o.Kind {
	case command.Move:
		if res, ok := g.checkAdjacent(m, o.Target, false); !ok {
			return res, false
		}
		if th.EnemyOccupied(o.Target, m.Faction) {
			return command.Reject(command.ReasonOccupied, "%s is held by the enemy", o.Target), false
		}

	case command.Attack, command.Probe:
		if m.Tactical.Fortified {
			return command.Reject(command.ReasonFortified, "%s must leave the fortifications first", m.Name), false
		}
		if res, ok := g.checkAdjacent(m, o.Target, true); !ok {
			return res, false
		}
		defended := th.EnemyOccupied(o.Target, m.Faction)
		switch {
		case o.Target == m.Location && !defended:
			return command.Reject(command.ReasonNoTarget, "no enemy in %s", o.Target), false
		case o.Kind == command.Probe && !defended:
			return command.Reject(command.ReasonNoTarget, "nobody to probe in %s", o.Target), false
		case !defended && th.Map.Get(o.Target).Owner == m.Faction:
			return command.Reject(command.ReasonNoTarget, "%s is already held", o.Target), false
		}

	case command.Fortify:
		if m.Tactical.Fortified {
			return command.Reject(command.ReasonFortified, "%s is already fortified", m.Name), false
		}

	case command.Unfortify:
		if !m.Tactical.Fortified {
			return command.Reject(command.ReasonNotFortified, "%s is not fortified", m.Name), false
		}

	case command.Drill:
		if m.Tactical.Fortified {
			return command.Reject(command.ReasonFortified, "%s cannot drill while fortified", m.Name), false
		}
		if m.Tactical.Drilling {
			return command.Reject(command.ReasonDrilling, "%s is already drilling", m.Name), false
		}

	case command.SetStance:
		if o.Stance > agents.StanceDefensive {
			return command.Reject(command.ReasonInvalidStance, "stance %d", o.Stance), false
		}

	case command.Administer:
		if th.EnemyOccupied(m.Location, m.Faction) {
			return command.Reject(command.ReasonOccupied, "%s cannot stand down with the enemy present", m.Name), false
		}

	case command.ReturnToField:
		if !m.Tactical.Administrative {
			return command.Reject(command.ReasonNotAdministrative, "%s is already in the field", m.Name), false
		}
	}
	return command.Result{}, true
}

// checkAdjacent requires target to be a region next to the marshal, or its
// own region when sameOK.
func (g *Game) checkAdjacent(m *agents.Marshal, target world.RegionID, sameOK bool) (command.Result, bool) {
	if _, ok := g.Theater.Region(target); !ok {
		return command.Reject(command.ReasonNoTarget, "no region %q", target), false
	}
	if sameOK && target == m.Location {
		return command.Result{}, true
	}
	if !g.Theater.Map.Adjacent(m.Location, target) {
		return command.Reject(command.ReasonNotAdjacent, "%s is not adjacent to %s", target, m.Location), false
	}
	return command.Result{}, true
}

// apply writes a validated order.
func (g *Game) apply(m *agents.Marshal, o command.Order) command.Result {
	switch o.Kind {
	case command.Move:
		m.Location = o.Target
		m.Unfortify()
		m.Tactical.Holding = false
		m.AdvancedThisTurn = true
		return command.Succeed(o, "%s marches to %s", m.Name, g.regionName(o.Target))

	case command.Attack:
		return g.attack(m, o, false)

	case command.Probe:
		return g.attack(m, o, true)

	case command.Defend:
		m.Stance = agents.StanceDefensive
		return command.Succeed(o, "%s takes up a defensive posture", m.Name)

	case command.Hold:
		m.Tactical.Holding = true
		return command.Succeed(o, "%s holds position at %s", m.Name, g.regionName(m.Location))

	case command.Fortify:
		m.StartFortify()
		return command.Succeed(o, "%s fortifies %s", m.Name, g.regionName(m.Location))

	case command.Unfortify:
		m.Unfortify()
		return command.Succeed(o, "%s leaves the fortifications", m.Name)

	case command.Drill:
		m.StartDrill()
		return command.Succeed(o, "%s drills the troops", m.Name)

	case command.Scout:
		m.Tactical.PrecisionBonus = agents.ScoutPrecisionBonus
		return command.Succeed(o, "%s scouts the enemy positions", m.Name)

	case command.Retreat:
		dest, tier := combat.SelectRetreat(g.Theater, m, combat.ThreatSource(g.Theater, m))
		lost := combat.Relocate(m, dest, tier, false)
		g.record(CategoryRetreat, "%s withdraws to %s (%s)", m.Name, g.regionName(dest), tier)
		res := command.Succeed(o, "%s retreats to %s", m.Name, g.regionName(dest))
		if lost > 0 {
			res.Summary += ", losing troops to encirclement"
		}
		return res

	case command.SetStance:
		m.Stance = o.Stance
		return command.Succeed(o, "%s adopts a %s stance", m.Name, o.Stance)

	case command.Administer:
		m.Tactical.Administrative = true
		m.Tactical.Holding = false
		m.Tactical.Drilling = false
		m.Tactical.DrillTurnsLeft = 0
		m.Unfortify()
		return command.Succeed(o, "%s stands down for administrative duty", m.Name)

	case command.ReturnToField:
		m.Tactical.Administrative = false
		return command.Succeed(o, "%s returns to the field", m.Name)
	}

	res := command.Succeed(o, "%s waits", m.Name)
	res.Message = command.MsgInfo
	return res
}

// attack fights for a region. An undefended region is captured outright;
// otherwise the strongest defender meets the attacker, the loser's forced
// retreats are carried out, and a full attack that clears the region
// advances into it and takes it.
func (g *Game) attack(m *agents.Marshal, o command.Order, probe bool) command.Result {
	th := g.Theater
	region := th.Map.Get(o.Target)

	def := combat.PrimaryDefender(th, o.Target, m.Faction)
	if def == nil {
		g.advanceInto(m, region)
		g.capture(m, region)
		res := command.Succeed(o, "%s takes %s unopposed", m.Name, region.Name)
		res.Battle = &command.BattleReport{Region: string(region.ID), Attacker: string(m.ID), AttackerWon: true, Captured: true}
		return res
	}

	from := m.Location
	var out combat.Outcome
	if probe {
		out = g.resolver.ResolveProbe(m, def, region.Terrain)
	} else {
		out = g.resolver.Resolve(m, def, region.Terrain)
	}

	if out.DefenderRetreats {
		g.forceRetreat(def, from)
	}
	if out.AttackerRetreats {
		g.forceRetreat(m, o.Target)
	} else if out.AttackerWon && !probe && !th.EnemyOccupied(o.Target, m.Faction) {
		g.advanceInto(m, region)
	}

	captured := false
	if m.Location == o.Target && !th.EnemyOccupied(o.Target, m.Faction) && region.Owner != m.Faction && out.AttackerWon && !probe {
		g.capture(m, region)
		captured = true
	}

	verb := "attacks"
	if probe {
		verb = "probes"
	}
	winner := def.Name
	if out.AttackerWon {
		winner = m.Name
	}
	g.record(CategoryBattle, "%s %s %s at %s: %s prevails (%d vs %d lost)",
		m.Name, verb, def.Name, region.Name, winner, out.AttackerLoss, out.DefenderLoss)
	slog.Info("battle", "turn", g.turn, "region", region.ID, "attacker", m.ID, "defender", def.ID,
		"probe", probe, "attacker_won", out.AttackerWon, "ratio", out.Ratio)

	g.publishBattle(m, def, out.AttackerWon, o.Target)

	res := command.Succeed(o, "%s %s %s at %s; %s prevails", m.Name, verb, def.Name, region.Name, winner)
	res.Message = command.MsgBattle
	res.Battle = &command.BattleReport{
		Region:       string(region.ID),
		Attacker:     string(m.ID),
		Defender:     string(def.ID),
		AttackerWon:  out.AttackerWon,
		AttackerLoss: out.AttackerLoss,
		DefenderLoss: out.DefenderLoss,
		Captured:     captured,
	}
	return res
}

func (g *Game) advanceInto(m *agents.Marshal, region *world.Region) {
	if m.Location == region.ID {
		return
	}
	m.Location = region.ID
	m.Unfortify()
	m.Tactical.Holding = false
	m.AdvancedThisTurn = true
}

func (g *Game) capture(m *agents.Marshal, region *world.Region) {
	prev := region.Owner
	region.Owner = m.Faction
	g.record(CategoryCapture, "%s captures %s for %s", m.Name, region.Name, m.Faction)
	slog.Info("region captured", "turn", g.turn, "region", region.ID, "from", prev, "to", m.Faction)
}

// forceRetreat drives a broken force out of its region, away from the
// threat it faced.
func (g *Game) forceRetreat(m *agents.Marshal, threat world.RegionID) {
	if !theater.OnField(m) {
		return
	}
	dest, tier := combat.SelectRetreat(g.Theater, m, threat)
	lost := combat.Relocate(m, dest, tier, true)
	if tier == combat.TierEncircled {
		g.record(CategoryRetreat, "%s is encircled and falls back on %s, losing %d men", m.Name, g.regionName(dest), lost)
		return
	}
	g.record(CategoryRetreat, "%s is driven back to %s (%s)", m.Name, g.regionName(dest), tier)
}

// publishBattle tells the vindication tracker and the standing orders that a
// battle happened.
func (g *Game) publishBattle(att, def *agents.Marshal, attackerWon bool, region world.RegionID) {
	for _, side := range []struct {
		m   *agents.Marshal
		won bool
	}{{att, attackerWon}, {def, !attackerWon}} {
		if j, ok := g.vindication.OnBattle(side.m, side.won, g.authority); ok {
			g.record(CategoryVindication, "%s's %s objection judged after battle (won=%t, vindication %+.0f)",
				side.m.Name, j.Entry.Outcome, side.won, j.VindDelta)
		}
		if rep, ok := g.book.NotifyBattle(side.m.ID, g.turn); ok {
			g.applyReports([]orders.Report{rep})
		}
	}
	g.applyReports(g.book.NotifyContact(region, []agents.MarshalID{att.ID, def.ID}, g.turn))
}

func (g *Game) regionName(id world.RegionID) string {
	if r, ok := g.Theater.Region(id); ok && r.Name != "" {
		return r.Name
	}
	return string(id)
}
