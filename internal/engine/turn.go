// The turn coordinator: a fixed sequence of phases run exactly once per turn.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/marshals/internal/agents"
	"github.com/talgya/marshals/internal/command"
	"github.com/talgya/marshals/internal/social"
	"github.com/talgya/marshals/internal/theater"
	"github.com/talgya/marshals/internal/world"
)

// Turn phases, in the order they run.
const (
	phaseTransients = iota
	phaseCounters
	phaseNotify
	phaseAutonomous
	phaseStandingOrders
	phaseAdvance
	phaseCount
)

// Notification thresholds.
const (
	TrustCrisisBelow  = 20.0
	TrustHighAt       = 80.0
	AuthorityLowBelow = 25.0
	AuthorityHighAt   = 75.0
)

type band uint8

const (
	bandMid band = iota
	bandLow
	bandHigh
)

func bandOf(v, lowBelow, highAt float64) band {
	switch {
	case v < lowBelow:
		return bandLow
	case v >= highAt:
		return bandHigh
	}
	return bandMid
}

// TurnSummary reports what one call to AdvanceTurn did.
type TurnSummary struct {
	Turn              int
	AutonomousActions int
	OrderReports      int
	Events            []Event
	GameOver          bool
	Winner            world.FactionID
}

// AdvanceTurn runs the turn's phases in order and moves to the next turn.
// It refuses to run while a turn is already in progress, and each phase
// runs at most once per turn number.
func (g *Game) AdvanceTurn() (TurnSummary, error) {
	if g.inTurn {
		return TurnSummary{}, ErrTurnInProgress
	}
	if g.gameOver {
		return TurnSummary{}, fmt.Errorf("advance turn %d: %w", g.turn, ErrGameOver)
	}
	g.inTurn = true
	defer func() { g.inTurn = false }()

	sum := TurnSummary{Turn: g.turn}
	g.clearTransients()
	g.advanceCounters()
	g.notify()
	sum.AutonomousActions = g.runAutonomous()
	sum.OrderReports = g.tickStandingOrders()
	g.closeTurn()

	sum.Events = g.EventsSince(sum.Turn)
	sum.GameOver, sum.Winner = g.gameOver, g.winner

	slog.Info("turn report",
		"turn", sum.Turn,
		"autonomous_actions", sum.AutonomousActions,
		"standing_order_reports", sum.OrderReports,
		"events", len(sum.Events),
		"authority", fmt.Sprintf("%.1f", g.authority.Level),
		"game_over", sum.GameOver,
	)
	return sum, nil
}

// enterPhase marks a phase as run for this turn. Returns false when it
// already ran.
func (g *Game) enterPhase(p int) bool {
	if g.phaseTurn[p] == g.turn {
		return false
	}
	g.phaseTurn[p] = g.turn
	return true
}

// clearTransients is phase 1: single-turn markers, per-turn budgets and
// caps, stale objections, and expired vindication entries.
func (g *Game) clearTransients() {
	if !g.enterPhase(phaseTransients) {
		return
	}
	for _, m := range g.Theater.Marshals() {
		m.ClearTransients()
	}
	g.objections.ResetTurn()
	g.playerActions = g.opts.PlayerActions
	for _, f := range g.Theater.Factions() {
		f.ResetBudget(g.opts.FactionBudget)
	}

	for _, p := range g.PendingObjections() {
		delete(g.pending, p.ID)
		if m, ok := g.Theater.Marshal(p.MarshalID); ok {
			g.record(CategoryObjection, "%s's objection to %s lapsed unanswered", m.Name, p.Original.Kind)
		}
	}
	if n := g.vindication.Expire(g.turn); n > 0 {
		slog.Debug("vindication entries expired", "turn", g.turn, "count", n)
	}
}

// advanceCounters is phase 2: fortification, drills, retreat recovery, and
// cavalry restlessness.
func (g *Game) advanceCounters() {
	if !g.enterPhase(phaseCounters) {
		return
	}
	for _, m := range g.Theater.Marshals() {
		m.AccrueFortify()
		if m.AdvanceDrill() {
			g.record(CategoryTactics, "%s's drill is complete; the troops are ready for a shock attack", m.Name)
		}
		m.DecrementRecovery()
		if m.TickRestlessness() {
			m.Trust.Modify(-agents.CavalryRestlessPenalty)
			g.record(CategoryTactics, "%s's cavalry grows restless and rides out of its position", m.Name)
		}
	}
}

// notify is phase 3: trust and authority threshold crossings, each reported
// once per crossing.
func (g *Game) notify() {
	if !g.enterPhase(phaseNotify) {
		return
	}
	for _, m := range g.Theater.Marshals() {
		b := bandOf(m.Trust.Value(), TrustCrisisBelow, TrustHighAt)
		if prev, seen := g.trustBands[m.ID]; seen && prev != b {
			switch b {
			case bandLow:
				g.record(CategoryTrustCrisis, "%s's trust has collapsed to %.0f", m.Name, m.Trust.Value())
			case bandHigh:
				g.record(CategoryTrustHigh, "%s trusts your judgement (%.0f)", m.Name, m.Trust.Value())
			}
		}
		g.trustBands[m.ID] = b
	}

	b := bandOf(g.authority.Level, AuthorityLowBelow, AuthorityHighAt)
	if b != g.authorityBand {
		switch b {
		case bandLow:
			g.record(CategoryAuthorityLow, "the officer corps questions your authority (%.0f)", g.authority.Level)
		case bandHigh:
			g.record(CategoryAuthorityHigh, "your authority is unquestioned (%.0f)", g.authority.Level)
		}
	}
	g.authorityBand = b
}

func (g *Game) primeBands() {
	for _, m := range g.Theater.Marshals() {
		g.trustBands[m.ID] = bandOf(m.Trust.Value(), TrustCrisisBelow, TrustHighAt)
	}
	g.authorityBand = bandOf(g.authority.Level, AuthorityLowBelow, AuthorityHighAt)
}

// runAutonomous is phase 4: the decision policy for every marshal acting on
// its own judgement, in declared order, within the faction budgets and the
// global safety cap. Returns the number of actions taken.
func (g *Game) runAutonomous() int {
	if !g.enterPhase(phaseAutonomous) {
		return 0
	}
	total := 0
	for _, m := range g.Theater.Marshals() {
		if total >= g.opts.SafetyCap || g.gameOver {
			break
		}
		f, ok := g.Theater.Faction(m.Faction)
		if !ok || f.Defeated || !g.autonomous(m) {
			continue
		}
		for i := 0; i < g.opts.ActionsPerMarshal; i++ {
			if total >= g.opts.SafetyCap || f.Budget <= 0 || g.gameOver {
				break
			}
			d := g.policy.Decide(g.Theater, m, g)
			if !d.Acted() {
				break
			}
			f.Spend()
			total++
			if d.Order.Kind == command.Wait {
				break
			}
		}
	}
	if total >= g.opts.SafetyCap {
		slog.Warn("autonomous safety cap reached", "turn", g.turn, "cap", g.opts.SafetyCap)
	}
	return total
}

// autonomous reports whether the policy drives m this turn. Marshals with a
// standing order follow the order instead.
func (g *Game) autonomous(m *agents.Marshal) bool {
	if m.Strength <= 0 && !m.Tactical.Administrative {
		return false
	}
	if _, ok := g.book.Get(m.ID); ok {
		return false
	}
	return !g.Theater.IsPlayer(m) || m.Autonomous
}

// tickStandingOrders is phase 5.
func (g *Game) tickStandingOrders() int {
	if !g.enterPhase(phaseStandingOrders) {
		return 0
	}
	reps := g.book.Tick(g.turn, g)
	g.applyReports(reps)
	return len(reps)
}

// closeTurn is phase 6: settle idle counters, advance the turn, and decide
// whether the campaign is over.
func (g *Game) closeTurn() {
	if !g.enterPhase(phaseAdvance) {
		return
	}
	for _, m := range g.Theater.Marshals() {
		m.CloseTurn()
	}
	g.turn++
	g.checkVictory()
}

// checkVictory marks defeated factions and ends the game when the player is
// defeated, one faction remains, or the turn limit has passed.
func (g *Game) checkVictory() {
	th := g.Theater
	var alive []*social.Faction
	for _, f := range th.Factions() {
		if !f.Defeated {
			if why := defeatReason(th, f); why != "" {
				f.Defeated = true
				g.record(CategoryDefeat, "%s is defeated: %s", f.Name, why)
				slog.Info("faction defeated", "turn", g.turn, "faction", f.ID, "reason", why)
			}
		}
		if !f.Defeated {
			alive = append(alive, f)
		}
	}

	player, hasPlayer := th.PlayerFaction()
	switch {
	case len(alive) == 1:
		g.end(alive[0].ID)
	case len(alive) == 0:
		g.end("")
	case hasPlayer && player.Defeated:
		g.end(leader(th, alive))
	case g.opts.TurnLimit > 0 && g.turn > g.opts.TurnLimit:
		g.end(leader(th, alive))
	}
}

func (g *Game) end(winner world.FactionID) {
	g.gameOver = true
	g.winner = winner
	if winner == "" {
		g.record(CategoryVictory, "the campaign ends without a victor")
	} else {
		g.record(CategoryVictory, "the campaign ends: victory for %s", winner)
	}
	slog.Info("game over", "turn", g.turn, "winner", winner)
}

func defeatReason(th *theater.Theater, f *social.Faction) string {
	if len(th.RegionsOwnedBy(f.ID)) == 0 {
		return "no territory left"
	}
	if f.Capital != "" {
		if r, ok := th.Region(f.Capital); ok && r.Owner != f.ID {
			return "capital has fallen"
		}
	}
	if th.TotalStrength(f.ID) == 0 {
		return "no troops left"
	}
	return ""
}

// leader is the surviving faction holding the most regions; a tie has no
// leader.
func leader(th *theater.Theater, alive []*social.Faction) world.FactionID {
	best, most, tied := world.FactionID(""), -1, false
	for _, f := range alive {
		n := len(th.RegionsOwnedBy(f.ID))
		switch {
		case n > most:
			best, most, tied = f.ID, n, false
		case n == most:
			tied = true
		}
	}
	if tied {
		return ""
	}
	return best
}
