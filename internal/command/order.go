// Package command defines the narrow order contract shared by every order
// source (player, decision policy, standing orders) and the executor.
package command

import (
	"strings"

	"github.com/talgya/marshals/internal/agents"
	"github.com/talgya/marshals/internal/world"
)

// ActionKind is the closed set of actions a marshal can be ordered to take.
type ActionKind uint8

const (
	Wait ActionKind = iota
	Move
	Attack
	Probe // Limited attack: half casualties, never advances
	Defend
	Hold
	Fortify
	Unfortify
	Drill
	Scout
	Retreat
	SetStance
	Administer
	ReturnToField
)

var actionNames = map[ActionKind]string{
	Wait:          "wait",
	Move:          "move",
	Attack:        "attack",
	Probe:         "probe",
	Defend:        "defend",
	Hold:          "hold",
	Fortify:       "fortify",
	Unfortify:     "unfortify",
	Drill:         "drill",
	Scout:         "scout",
	Retreat:       "retreat",
	SetStance:     "stance",
	Administer:    "administer",
	ReturnToField: "return",
}

// String returns the action's lower-case name.
func (k ActionKind) String() string {
	if s, ok := actionNames[k]; ok {
		return s
	}
	return "unknown"
}

// Valid reports whether k is a known action.
func (k ActionKind) Valid() bool {
	_, ok := actionNames[k]
	return ok
}

// ParseAction maps a name back to its action.
func ParseAction(s string) (ActionKind, bool) {
	for k, name := range actionNames {
		if strings.EqualFold(name, s) {
			return k, true
		}
	}
	return 0, false
}

// Order is the inbound order contract. Orders arrive already structured;
// the core never parses free text.
type Order struct {
	MarshalID agents.MarshalID `json:"marshal_id"`
	Kind      ActionKind       `json:"kind"`
	Target    world.RegionID   `json:"target,omitempty"`
	Stance    agents.Stance    `json:"stance,omitempty"`
	Condition string           `json:"condition,omitempty"` // expr guard checked when the order executes; see engine.ConditionEnv

	// SelfDirected orders come from the marshal's own judgement (policy or
	// standing order). They never raise objections against themselves and do
	// not spend the player's action budget.
	SelfDirected bool `json:"self_directed"`
}

// WithKind returns a copy of o carrying a different action, used when an
// objection substitutes an alternative.
func (o Order) WithKind(k ActionKind) Order {
	o.Kind = k
	return o
}

// Executor is the sole writer of campaign state. Order sources propose;
// the executor validates and applies.
type Executor interface {
	Execute(o Order) Result
}
