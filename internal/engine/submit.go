package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/marshals/internal/agents"
	"github.com/talgya/marshals/internal/combat"
	"github.com/talgya/marshals/internal/command"
	"github.com/talgya/marshals/internal/negotiation"
	"github.com/talgya/marshals/internal/world"
)

// Submit routes an order from outside the core. Orders to the player's
// marshals are first weighed by the objection engine: a mild objection is
// noted and the order executes, a major one holds the order until
// ResolveObjection is called. A held order spends the player's action now.
func (g *Game) Submit(o command.Order) command.Result {
	m, res, ok := g.validate(o)
	if !ok {
		return res
	}
	if o.SelfDirected || !g.Theater.IsPlayer(m) {
		return g.Execute(o)
	}

	ev := g.objections.Evaluate(m, o, g.objectionContext(m, o))
	switch ev.Verdict {
	case negotiation.Comply:
		return g.Execute(o)
	case negotiation.MildObjection:
		res := g.Execute(o)
		if res.Success {
			g.record(CategoryObjection, "%s grumbles about the order to %s but complies", m.Name, o.Kind)
			res.Summary += fmt.Sprintf(" (%s objects, but complies)", m.Name)
		}
		return res
	}

	if g.playerActions <= 0 {
		return command.Reject(command.ReasonNoActionsLeft, "no orders left this turn")
	}
	g.playerActions--

	p := negotiation.NewPending(m, o, ev, g.turn)
	g.pending[p.ID] = p
	g.record(CategoryObjection, "%s objects strongly to the order to %s and proposes to %s instead",
		m.Name, o.Kind, p.Alternative.Kind)
	slog.Info("major objection", "turn", g.turn, "marshal", m.ID, "order", o.Kind,
		"severity", fmt.Sprintf("%.2f", ev.Severity), "alternative", p.Alternative.Kind,
		"compromise", p.Compromise.Kind, "id", p.ID)

	return command.Result{
		Message:     command.MsgObjection,
		Summary:     fmt.Sprintf("%s objects to the order to %s; proposes %s, or %s as a compromise", m.Name, o.Kind, p.Alternative.Kind, p.Compromise.Kind),
		Executed:    o,
		ObjectionID: p.ID,
	}
}

// ResolveObjection settles a pending objection and executes the chosen
// order. Each objection resolves exactly once. A choice whose order can no
// longer be carried out is rejected with nothing changed, and the objection
// stays open for another choice.
func (g *Game) ResolveObjection(id string, c negotiation.Choice) (command.Result, error) {
	p, ok := g.pending[id]
	if !ok {
		return command.Result{}, fmt.Errorf("resolve objection %s: %w", id, ErrObjectionNotFound)
	}
	if _, res, ok := g.validate(p.Order(c)); !ok {
		slog.Info("objection choice rejected", "id", id, "choice", c, "reason", res.Reason)
		return res, nil
	}
	delete(g.pending, id)

	m, _ := g.Theater.Marshal(p.MarshalID)
	o, entry := g.objections.Resolve(p, c, m, g.turn)
	g.vindication.Track(entry)
	g.record(CategoryObjection, "%s's objection resolved: %s", m.Name, c)
	return g.Execute(o), nil
}

// objectionContext is the world as the marshal sees it for an order.
func (g *Game) objectionContext(m *agents.Marshal, o command.Order) negotiation.Context {
	th := g.Theater
	ctx := negotiation.Context{
		EnemyHere:           th.EnemyOccupied(m.Location, m.Faction),
		EnemyAdjacent:       len(th.AdjacentEnemies(m)) > 0,
		EnemyStrengthNearby: th.EnemyStrengthNear(m.Location, m.Faction),
		OwnStrength:         m.Strength,
		AllyNearby:          th.AllyNear(m),
		AlreadyFortified:    m.Tactical.Fortified,
		StrengthRatio:       m.StrengthRatio(),
		ProbeTarget:         g.probeTarget(m, o),
	}
	if o.Kind == command.Move && o.Target != "" {
		ctx.TargetNearEnemy = th.EnemyStrengthNear(o.Target, m.Faction) > 0
	}
	return ctx
}

// probeTarget is where a proposed probe would go: the order's own target
// when the enemy holds it, else the most threatening enemy position.
func (g *Game) probeTarget(m *agents.Marshal, o command.Order) world.RegionID {
	th := g.Theater
	if o.Target != "" && th.EnemyOccupied(o.Target, m.Faction) {
		return o.Target
	}
	src := combat.ThreatSource(th, m)
	if th.EnemyOccupied(src, m.Faction) {
		return src
	}
	return ""
}
