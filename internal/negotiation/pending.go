package negotiation

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/talgya/marshals/internal/agents"
	"github.com/talgya/marshals/internal/command"
)

// Choice is the order-giver's answer to a major objection.
type Choice uint8

const (
	Accept Choice = iota
	Override
	Compromise
)

func (c Choice) String() string {
	switch c {
	case Override:
		return "override"
	case Compromise:
		return "compromise"
	default:
		return "accept"
	}
}

// ParseChoice maps a name back to its choice.
func ParseChoice(s string) (Choice, error) {
	for _, c := range []Choice{Accept, Override, Compromise} {
		if strings.EqualFold(c.String(), s) {
			return c, nil
		}
	}
	return Accept, fmt.Errorf("parse choice %q: unknown", s)
}

// Trust deltas for resolving a major objection.
const (
	AcceptTrustGain     = 3.0
	OverrideTrustLoss   = -5.0
	CompromiseTrustGain = 1.0
)

// PendingObjection is a major objection awaiting a decision. It lives for
// the turn it was raised in.
type PendingObjection struct {
	ID          string           `json:"id"`
	MarshalID   agents.MarshalID `json:"marshal_id"`
	Turn        int              `json:"turn"`
	Severity    float64          `json:"severity"`
	Original    command.Order    `json:"original"`
	Alternative command.Order    `json:"alternative"`
	Compromise  command.Order    `json:"compromise"`
}

// NewPending wraps a major evaluation into a pending objection.
func NewPending(m *agents.Marshal, o command.Order, ev Evaluation, turn int) *PendingObjection {
	return &PendingObjection{
		ID:          uuid.NewString(),
		MarshalID:   m.ID,
		Turn:        turn,
		Severity:    ev.Severity,
		Original:    o,
		Alternative: ev.Alternative,
		Compromise:  ev.Compromise,
	}
}

// Order is the order a choice executes.
func (p *PendingObjection) Order(c Choice) command.Order {
	switch c {
	case Override:
		o := p.Original
		o.SelfDirected = true
		return o
	case Compromise:
		return p.Compromise
	default:
		return p.Alternative
	}
}

// Resolve applies the order-giver's choice to the marshal and the authority
// tracker, and returns the order to execute along with the vindication entry
// that will judge the call after the marshal's next battle.
func (e *Engine) Resolve(p *PendingObjection, c Choice, m *agents.Marshal, turn int) (command.Order, VindicationEntry) {
	gain := e.Authority.TrustGainMultiplier()

	exec := p.Order(c)
	var (
		outcome Outcome
		applied float64
	)
	switch c {
	case Override:
		outcome = Overrode
		applied = m.Trust.Modify(OverrideTrustLoss)
	case Compromise:
		outcome = Compromised
		applied = m.Trust.Modify(CompromiseTrustGain * gain)
	default:
		outcome = Deferred
		applied = m.Trust.Modify(AcceptTrustGain * gain)
	}

	e.Authority.Record(outcome)
	e.remember(m.ID, outcome)

	slog.Info("objection resolved", "marshal", m.ID, "choice", c, "trust_delta", applied,
		"trust", m.Trust.Value(), "authority", e.Authority.Level)

	return exec, VindicationEntry{
		ID:        uuid.NewString(),
		MarshalID: m.ID,
		Outcome:   outcome,
		Turn:      turn,
	}
}
