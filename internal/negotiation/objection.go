package negotiation

import (
	"log/slog"

	"github.com/talgya/marshals/internal/agents"
	"github.com/talgya/marshals/internal/command"
	"github.com/talgya/marshals/internal/entropy"
	"github.com/talgya/marshals/internal/world"
)

// Verdict is the terminal state of an objection evaluation.
type Verdict uint8

const (
	Comply Verdict = iota
	MildObjection
	MajorObjection
)

func (v Verdict) String() string {
	switch v {
	case MildObjection:
		return "mild"
	case MajorObjection:
		return "major"
	default:
		return "comply"
	}
}

// Objection tuning.
const (
	MildThreshold     = 0.20
	MajorThreshold    = 0.50
	MaxSeverity       = 0.95
	MajorCapPerTurn   = 2
	HistoryWindow     = 5 // Resolutions per marshal that count toward override resentment
	MaxOverrideFactor = 1.3
)

// Context is the world as the marshal sees it when an order arrives.
type Context struct {
	EnemyAdjacent       bool
	EnemyHere           bool
	EnemyStrengthNearby int
	OwnStrength         int
	AllyNearby          bool
	AlreadyFortified    bool
	StrengthRatio       float64 // Current over starting strength
	TargetNearEnemy     bool    // Move destination touches enemy troops
	ProbeTarget         world.RegionID
}

func (c Context) enemyNearby() bool {
	return c.EnemyAdjacent || c.EnemyHere
}

func (c Context) outnumbered() bool {
	return c.EnemyStrengthNearby > 0 && c.EnemyStrengthNearby >= c.OwnStrength
}

var objectionable = map[command.ActionKind]bool{
	command.Attack:    true,
	command.Probe:     true,
	command.Move:      true,
	command.Defend:    true,
	command.Fortify:   true,
	command.Unfortify: true,
	command.Drill:     true,
	command.Retreat:   true,
	command.Hold:      true,
}

// Evaluation is the outcome of weighing one order.
type Evaluation struct {
	Verdict  Verdict
	Base     float64
	Severity float64

	// Set for major objections only.
	Alternative command.Order
	Compromise  command.Order
}

// Engine evaluates orders against a marshal's judgement.
type Engine struct {
	Authority *AuthorityTracker
	Rand      entropy.Source

	majors  int
	history map[agents.MarshalID][]Outcome
}

// NewEngine creates an objection engine.
func NewEngine(auth *AuthorityTracker, src entropy.Source) *Engine {
	return &Engine{
		Authority: auth,
		Rand:      src,
		history:   make(map[agents.MarshalID][]Outcome),
	}
}

// ResetTurn clears the per-turn major objection count.
func (e *Engine) ResetTurn() {
	e.majors = 0
}

// MajorsThisTurn returns how many major objections have been raised this turn.
func (e *Engine) MajorsThisTurn() int {
	return e.majors
}

// RestoreMajors sets the per-turn count when a game is loaded mid-turn.
func (e *Engine) RestoreMajors(n int) {
	e.majors = max(0, n)
}

// Evaluate weighs an order. Self-directed orders, marshals in retreat
// recovery, and non-objectionable actions always comply.
func (e *Engine) Evaluate(m *agents.Marshal, o command.Order, ctx Context) Evaluation {
	if o.SelfDirected || m.InRecovery() || !objectionable[o.Kind] {
		return Evaluation{Verdict: Comply}
	}

	base := baseSeverity(m.Personality, o.Kind, ctx)
	sev := base *
		(1 + (agents.DefaultTrust-m.Trust.Value())/100) *
		(1 + 0.05*m.Vindication) *
		e.overrideFactor(m.ID) *
		e.Authority.SeverityModifier()
	sev += entropy.Triangular(e.Rand, varianceFor(sev))
	sev = min(MaxSeverity, max(0, sev))

	ev := Evaluation{Base: base, Severity: sev}
	switch {
	case sev < MildThreshold:
		ev.Verdict = Comply
	case sev < MajorThreshold:
		ev.Verdict = MildObjection
	default:
		ev.Verdict = MajorObjection
	}

	if ev.Verdict == MajorObjection {
		// Authority reduces the chance a major objection is voiced, never to zero.
		if e.Rand.Float() < m.Trust.ComplianceProbability()*(1-sev) {
			ev.Verdict = MildObjection
		}
	}
	if ev.Verdict == MajorObjection {
		if e.majors >= MajorCapPerTurn {
			slog.Debug("major objection over cap, complying", "marshal", m.ID, "order", o.Kind)
			return Evaluation{Verdict: Comply, Base: base, Severity: sev}
		}
		e.majors++
		prop := ProposalFor(o.Kind, m.Personality)
		ev.Alternative = buildOrder(o, prop.Alternative, ctx)
		ev.Compromise = buildOrder(o, prop.Compromise, ctx)
		ev.Alternative.SelfDirected = true
		ev.Compromise.SelfDirected = true
	}
	return ev
}

func varianceFor(sev float64) float64 {
	switch {
	case sev < MildThreshold:
		return 0.02
	case sev < MajorThreshold:
		return 0.04
	default:
		return 0.05
	}
}

// overrideFactor grows with the overrides among the marshal's recent resolutions.
func (e *Engine) overrideFactor(id agents.MarshalID) float64 {
	n := 0
	for _, o := range e.history[id] {
		if o == Overrode {
			n++
		}
	}
	return min(MaxOverrideFactor, 1+0.1*float64(n))
}

// remember appends a resolution to a marshal's personal history.
func (e *Engine) remember(id agents.MarshalID, o Outcome) {
	h := append(e.history[id], o)
	if len(h) > HistoryWindow {
		h = h[len(h)-HistoryWindow:]
	}
	e.history[id] = h
}

// History returns a copy of every marshal's recent resolutions.
func (e *Engine) History() map[agents.MarshalID][]Outcome {
	out := make(map[agents.MarshalID][]Outcome, len(e.history))
	for id, h := range e.history {
		out[id] = append([]Outcome(nil), h...)
	}
	return out
}

// RestoreHistory replaces the per-marshal history, used when loading a game.
func (e *Engine) RestoreHistory(h map[agents.MarshalID][]Outcome) {
	e.history = make(map[agents.MarshalID][]Outcome, len(h))
	for id, outs := range h {
		e.history[id] = append([]Outcome(nil), outs...)
	}
}

// baseSeverity is the personality's base objection rate for an action in context.
func baseSeverity(p agents.Personality, kind command.ActionKind, ctx Context) float64 {
	switch p {
	case agents.Aggressive:
		switch kind {
		case command.Defend, command.Fortify, command.Hold:
			if ctx.enemyNearby() {
				return 0.30
			}
			return 0.60
		case command.Retreat:
			return 0.70
		}
		return 0.05

	case agents.Cautious:
		switch kind {
		case command.Attack:
			switch {
			case ctx.outnumbered():
				return 0.65
			case !ctx.AllyNearby && float64(ctx.EnemyStrengthNearby) >= 0.75*float64(ctx.OwnStrength):
				return 0.45
			}
			return 0.15
		case command.Move:
			if ctx.TargetNearEnemy {
				return 0.35
			}
		case command.Unfortify:
			if ctx.enemyNearby() {
				return 0.50
			}
		case command.Drill:
			return 0.10
		}
		return 0.05

	case agents.Literal:
		if kind == command.Attack && ctx.EnemyStrengthNearby >= 2*ctx.OwnStrength && ctx.OwnStrength > 0 {
			return 0.10
		}
		return 0.02

	case agents.Loyal:
		return balancedSeverity(kind, ctx) / 2
	}
	return balancedSeverity(kind, ctx)
}

func balancedSeverity(kind command.ActionKind, ctx Context) float64 {
	switch kind {
	case command.Attack:
		if ctx.outnumbered() {
			return 0.45
		}
	case command.Retreat:
		if ctx.StrengthRatio > 0.6 {
			return 0.35
		}
	case command.Defend:
		if !ctx.enemyNearby() {
			return 0.20
		}
	}
	return 0.08
}
