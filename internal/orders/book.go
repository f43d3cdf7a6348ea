package orders

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/talgya/marshals/internal/agents"
	"github.com/talgya/marshals/internal/combat"
	"github.com/talgya/marshals/internal/command"
	"github.com/talgya/marshals/internal/theater"
	"github.com/talgya/marshals/internal/world"
)

// Book holds at most one standing order per marshal. It reads the theater
// and proposes orders through an executor; it never writes state itself.
type Book struct {
	th     *theater.Theater
	res    *combat.Resolver
	orders map[agents.MarshalID]*StandingOrder
}

// NewBook creates an empty book.
func NewBook(th *theater.Theater, res *combat.Resolver) *Book {
	return &Book{th: th, res: res, orders: make(map[agents.MarshalID]*StandingOrder)}
}

// Get returns a marshal's standing order.
func (b *Book) Get(id agents.MarshalID) (*StandingOrder, bool) {
	so, ok := b.orders[id]
	return so, ok
}

// Orders returns every standing order in marshal-id order.
func (b *Book) Orders() []*StandingOrder {
	ids := make([]agents.MarshalID, 0, len(b.orders))
	for id := range b.orders {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]*StandingOrder, 0, len(ids))
	for _, id := range ids {
		out = append(out, b.orders[id])
	}
	return out
}

// Restore replaces the book's contents, used when loading a game.
func (b *Book) Restore(orders []*StandingOrder) {
	b.orders = make(map[agents.MarshalID]*StandingOrder, len(orders))
	for _, so := range orders {
		b.orders[so.MarshalID] = so
	}
}

// Issue creates a standing order, silently replacing any existing one, and
// takes its first step immediately.
func (b *Book) Issue(spec Spec, turn int, exec command.Executor) (*StandingOrder, Report, error) {
	m, ok := b.th.Marshal(spec.MarshalID)
	if !ok {
		return nil, Report{}, fmt.Errorf("issue standing order for %s: %w", spec.MarshalID, ErrUnknownMarshal)
	}

	so := &StandingOrder{
		MarshalID:     m.ID,
		Goal:          spec.Goal,
		TargetRegion:  spec.TargetRegion,
		TargetMarshal: spec.TargetMarshal,
		Termination:   spec.Termination,
		MaxTurns:      spec.MaxTurns,
		IssuedTurn:    turn,
		State:         StateIssued,
	}

	switch spec.Goal {
	case HoldPosition:
		so.TargetRegion = m.Location
	case Pursue, Support:
		if spec.TargetMarshal != "" {
			target, ok := b.th.Marshal(spec.TargetMarshal)
			if !ok {
				return nil, Report{}, fmt.Errorf("issue standing order for %s: target %s: %w", m.ID, spec.TargetMarshal, ErrUnknownMarshal)
			}
			so.TargetRegion = target.Location
		}
	}
	if _, ok := b.th.Region(so.TargetRegion); !ok {
		return nil, Report{}, fmt.Errorf("issue standing order for %s: region %q: %w", m.ID, so.TargetRegion, ErrUnknownRegion)
	}
	so.Path = b.th.Map.Path(m.Location, so.TargetRegion, nil)

	if prev, ok := b.orders[m.ID]; ok {
		slog.Debug("standing order replaced", "marshal", m.ID, "goal", prev.Goal)
	}
	b.orders[m.ID] = so
	slog.Info("standing order issued", "marshal", m.ID, "goal", so.Goal, "target", so.TargetRegion,
		"termination", so.Termination, "steps", len(so.Path))

	rep := b.advance(so, m, turn, exec)
	if !so.State.Terminal() && so.State != StateBlocked {
		so.State = StateActive
	}
	return so, rep, nil
}

// Tick advances every active standing order by one turn.
func (b *Book) Tick(turn int, exec command.Executor) []Report {
	var reports []Report
	for _, so := range b.Orders() {
		m, ok := b.th.Marshal(so.MarshalID)
		if !ok {
			delete(b.orders, so.MarshalID)
			continue
		}
		so.TurnsActive++
		reports = append(reports, b.tick(so, m, turn, exec))
	}
	return reports
}

func (b *Book) tick(so *StandingOrder, m *agents.Marshal, turn int, exec command.Executor) Report {
	if so.Interrupt != nil {
		if rep, handled := b.handleInterrupt(so, m, turn, exec); handled {
			return rep
		}
	}

	if so.Termination == MaxTurns && so.MaxTurns > 0 && so.TurnsActive > so.MaxTurns {
		return b.finish(so, turn, StateCompleted, "max turns reached", 0)
	}
	return b.advance(so, m, turn, exec)
}

// advance takes one step toward the goal.
func (b *Book) advance(so *StandingOrder, m *agents.Marshal, turn int, exec command.Executor) Report {
	if _, ok := b.th.Region(so.TargetRegion); !ok {
		return b.finish(so, turn, StateCompleted, "target not found", 0)
	}

	if so.Goal == HoldPosition {
		if m.Tactical.Holding {
			return b.report(so, turn, "holding", nil)
		}
		res := exec.Execute(b.order(so, command.Hold, ""))
		if res.Success {
			so.Committed = true
		}
		return b.report(so, turn, "hold", &res)
	}

	if m.Location == so.TargetRegion {
		if so.Termination == UntilArrival || so.Termination == None || so.Goal == Support {
			return b.finish(so, turn, StateCompleted, "arrived", 0)
		}
		return b.report(so, turn, "at target", nil)
	}

	next := b.nextStep(so, m)
	if next == "" {
		return b.finish(so, turn, StateCompleted, "target not found", 0)
	}

	if b.th.EnemyOccupied(next, m.Faction) {
		return b.blocked(so, m, next, turn, exec)
	}

	res := exec.Execute(b.order(so, command.Move, next))
	if res.Success {
		so.Step++
		so.Committed = true
	}
	return b.report(so, turn, "step", &res)
}

// nextStep returns the next region on the stored path, recomputing the
// path when the marshal has left it.
func (b *Book) nextStep(so *StandingOrder, m *agents.Marshal) world.RegionID {
	if so.Step < len(so.Path) && b.th.Map.Adjacent(m.Location, so.Path[so.Step]) {
		return so.Path[so.Step]
	}
	so.Path = b.th.Map.Path(m.Location, so.TargetRegion, nil)
	so.Step = 0
	if len(so.Path) == 0 {
		return ""
	}
	return so.Path[0]
}

// blocked forks by personality when the next step is held by the enemy.
func (b *Book) blocked(so *StandingOrder, m *agents.Marshal, next world.RegionID, turn int, exec command.Executor) Report {
	switch m.Personality {
	case agents.Aggressive, agents.Balanced:
		if b.res.RegionOdds(b.th, m, next) >= agents.ProfileFor(m.Personality).AttackThreshold {
			return b.attack(so, m, next, turn, exec)
		}
	case agents.Literal:
		return b.reroute(so, m, turn, exec)
	}
	return b.raiseBlocked(so, next, turn)
}

func (b *Book) attack(so *StandingOrder, m *agents.Marshal, next world.RegionID, turn int, exec command.Executor) Report {
	res := exec.Execute(b.order(so, command.Attack, next))
	if res.Success {
		so.Committed = true
		if m.Location == next {
			so.Step++
		}
	}
	return b.report(so, turn, "attack", &res)
}

// reroute goes around every hostile region. With no way around, the order
// fails blocked.
func (b *Book) reroute(so *StandingOrder, m *agents.Marshal, turn int, exec command.Executor) Report {
	passable := func(id world.RegionID) bool { return !b.th.Hostile(id, m.Faction) }
	path := b.th.Map.Path(m.Location, so.TargetRegion, passable)
	if len(path) == 0 || b.th.EnemyOccupied(path[0], m.Faction) {
		return b.finish(so, turn, StateFailed, "blocked: no route", BlockedPenalty)
	}
	so.Path, so.Step = path, 0
	res := exec.Execute(b.order(so, command.Move, path[0]))
	if res.Success {
		so.Step++
		so.Committed = true
	}
	return b.report(so, turn, "reroute", &res)
}

func (b *Book) raiseBlocked(so *StandingOrder, at world.RegionID, turn int) Report {
	so.State = StateBlocked
	so.Interrupt = &Interrupt{Kind: InterruptBlocked, Region: at, RaisedTurn: turn, Default: RespondHold}
	slog.Info("standing order blocked", "marshal", so.MarshalID, "region", at)
	return b.report(so, turn, "blocked", nil)
}

// handleInterrupt applies the response to a pending interrupt. Returns
// handled=false when the order should go on to take its normal step. A
// contact raised this turn pauses the order until the next tick unless it
// has already been answered.
func (b *Book) handleInterrupt(so *StandingOrder, m *agents.Marshal, turn int, exec command.Executor) (Report, bool) {
	in := so.Interrupt
	switch in.Kind {
	case InterruptContact:
		if in.Response == nil && turn <= in.RaisedTurn {
			return b.report(so, turn, "awaiting response", nil), true
		}
		so.Interrupt = nil
		switch in.Choice() {
		case RespondDivert:
			so.TargetRegion = in.Region
			so.Path = b.th.Map.Path(m.Location, in.Region, nil)
			so.Step = 0
			return Report{}, false
		case RespondHold:
			res := exec.Execute(b.order(so, command.Hold, ""))
			return b.report(so, turn, "contact hold", &res), true
		case RespondCancel:
			return b.cancel(so, turn), true
		}
		return Report{}, false

	default:
		if in.Response == nil {
			if turn-in.RaisedTurn >= BlockedTimeout {
				return b.finish(so, turn, StateFailed, "blocked: no response", BlockedPenalty), true
			}
			return b.report(so, turn, "awaiting response", nil), true
		}
		choice := *in.Response
		so.Interrupt = nil
		so.State = StateActive
		switch choice {
		case RespondAttack:
			return b.attack(so, m, in.Region, turn, exec), true
		case RespondReroute:
			return b.reroute(so, m, turn, exec), true
		case RespondCancel:
			return b.cancel(so, turn), true
		case RespondHold:
			res := exec.Execute(b.order(so, command.Hold, ""))
			return b.report(so, turn, "blocked hold", &res), true
		}
		return Report{}, false
	}
}

// NotifyContact tells the book a battle happened in region. Orders whose
// marshal is within the contact radius, and did not fight in it, get a
// contact interrupt with their personality's default response. Literal and
// loyal marshals ignore contact entirely.
func (b *Book) NotifyContact(region world.RegionID, participants []agents.MarshalID, turn int) []Report {
	var reports []Report
	for _, so := range b.Orders() {
		if so.State.Terminal() || so.State == StateBlocked || involved(so.MarshalID, participants) {
			continue
		}
		m, ok := b.th.Marshal(so.MarshalID)
		if !ok {
			continue
		}
		d := b.th.Map.Distance(m.Location, region)
		if d < 0 || d > ContactRadius {
			continue
		}
		def, raise := contactDefault(m.Personality)
		if !raise {
			continue
		}
		so.Interrupt = &Interrupt{Kind: InterruptContact, Region: region, RaisedTurn: turn, Default: def}
		reports = append(reports, b.report(so, turn, "contact", nil))
	}
	return reports
}

func contactDefault(p agents.Personality) (Response, bool) {
	switch p {
	case agents.Aggressive:
		return RespondDivert, true
	case agents.Cautious, agents.Balanced:
		return RespondHold, true
	}
	return RespondIgnore, false
}

func involved(id agents.MarshalID, ids []agents.MarshalID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

// NotifyBattle completes an until-battle order once its marshal has fought.
func (b *Book) NotifyBattle(id agents.MarshalID, turn int) (Report, bool) {
	so, ok := b.orders[id]
	if !ok || so.Termination != UntilBattle {
		return Report{}, false
	}
	return b.finish(so, turn, StateCompleted, "battle resolved", 0), true
}

// Respond records an explicit answer to a pending interrupt. It takes
// effect when the order next ticks.
func (b *Book) Respond(id agents.MarshalID, r Response) error {
	so, ok := b.orders[id]
	if !ok {
		return fmt.Errorf("respond for %s: %w", id, ErrNoStandingOrder)
	}
	if so.Interrupt == nil {
		return fmt.Errorf("respond for %s: %w", id, ErrNoInterrupt)
	}
	valid := map[InterruptKind]map[Response]bool{
		InterruptContact: {RespondIgnore: true, RespondDivert: true, RespondHold: true, RespondCancel: true},
		InterruptBlocked: {RespondAttack: true, RespondReroute: true, RespondHold: true, RespondCancel: true},
	}
	if !valid[so.Interrupt.Kind][r] {
		return fmt.Errorf("respond %s to %s interrupt: %w", r, so.Interrupt.Kind, ErrBadResponse)
	}
	so.Interrupt.Response = &r
	return nil
}

// Cancel withdraws a marshal's standing order. Cancelling before the first
// step was committed costs no trust.
func (b *Book) Cancel(id agents.MarshalID, turn int) (Report, error) {
	so, ok := b.orders[id]
	if !ok {
		return Report{}, fmt.Errorf("cancel for %s: %w", id, ErrNoStandingOrder)
	}
	return b.cancel(so, turn), nil
}

func (b *Book) cancel(so *StandingOrder, turn int) Report {
	penalty := CancelPenalty
	if !so.Committed {
		penalty = 0
	}
	return b.finish(so, turn, StateCancelled, "cancelled", penalty)
}

// finish moves an order to a terminal state and removes it from the book.
func (b *Book) finish(so *StandingOrder, turn int, st State, outcome string, penalty float64) Report {
	so.State = st
	so.Outcome = outcome
	so.Interrupt = nil
	delete(b.orders, so.MarshalID)
	slog.Info("standing order finished", "marshal", so.MarshalID, "state", st, "outcome", outcome, "trust_penalty", penalty)
	rep := b.report(so, turn, st.String(), nil)
	rep.Outcome = outcome
	rep.TrustPenalty = penalty
	return rep
}

func (b *Book) order(so *StandingOrder, kind command.ActionKind, target world.RegionID) command.Order {
	return command.Order{MarshalID: so.MarshalID, Kind: kind, Target: target, SelfDirected: true}
}

func (b *Book) report(so *StandingOrder, turn int, event string, res *command.Result) Report {
	return Report{MarshalID: so.MarshalID, Turn: turn, Event: event, State: so.State, Result: res}
}
