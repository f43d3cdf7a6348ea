// Package orders runs multi-turn standing orders: a goal a marshal pursues
// on its own, step by step, until it completes, is cancelled, or fails
// blocked.
package orders

import (
	"errors"
	"strings"

	"github.com/talgya/marshals/internal/agents"
	"github.com/talgya/marshals/internal/command"
	"github.com/talgya/marshals/internal/world"
)

// Goal is what a standing order is trying to achieve.
type Goal uint8

const (
	Advance      Goal = iota // March to a region
	Pursue                   // Chase a marshal's position as seen at issue time
	HoldPosition             // Stay put and hold
	Support                  // Join an ally's position as seen at issue time
)

var goalNames = map[Goal]string{Advance: "advance", Pursue: "pursue", HoldPosition: "hold", Support: "support"}

func (g Goal) String() string { return goalNames[g] }

// ParseGoal maps a name back to its goal.
func ParseGoal(s string) (Goal, bool) {
	for g, n := range goalNames {
		if strings.EqualFold(n, s) {
			return g, true
		}
	}
	return Advance, false
}

// Termination decides when an order is done besides reaching its goal.
type Termination uint8

const (
	None         Termination = iota
	MaxTurns                 // After a fixed number of ticks
	UntilArrival             // On reaching the target region
	UntilBattle              // After the marshal's next battle
)

var terminationNames = map[Termination]string{None: "none", MaxTurns: "max_turns", UntilArrival: "until_arrival", UntilBattle: "until_battle"}

func (t Termination) String() string { return terminationNames[t] }

// ParseTermination maps a name back to its termination.
func ParseTermination(s string) (Termination, bool) {
	for t, n := range terminationNames {
		if strings.EqualFold(n, s) {
			return t, true
		}
	}
	return None, false
}

// State is where a standing order is in its lifecycle.
type State uint8

const (
	StateIssued State = iota
	StateActive
	StateBlocked // Waiting for a response to a blocked step
	StateCompleted
	StateCancelled
	StateFailed
)

var stateNames = map[State]string{
	StateIssued: "issued", StateActive: "active", StateBlocked: "blocked",
	StateCompleted: "completed", StateCancelled: "cancelled", StateFailed: "failed",
}

func (s State) String() string { return stateNames[s] }

// Terminal reports whether the order is finished.
func (s State) Terminal() bool {
	return s >= StateCompleted
}

// InterruptKind is why an order paused for a decision.
type InterruptKind uint8

const (
	InterruptBlocked InterruptKind = iota // Next step held by the enemy
	InterruptContact                      // Battle nearby
)

func (k InterruptKind) String() string {
	if k == InterruptContact {
		return "contact"
	}
	return "blocked"
}

// Response answers an interrupt.
type Response uint8

const (
	RespondIgnore  Response = iota // Carry on unchanged
	RespondDivert                  // Head for the contact
	RespondHold                    // Hold this turn, then carry on
	RespondAttack                  // Force the blocked step
	RespondReroute                 // Go around hostile territory
	RespondCancel                  // Abandon the order
)

var responseNames = map[Response]string{
	RespondIgnore: "ignore", RespondDivert: "divert", RespondHold: "hold",
	RespondAttack: "attack", RespondReroute: "reroute", RespondCancel: "cancel",
}

func (r Response) String() string { return responseNames[r] }

// ParseResponse maps a name back to its response.
func ParseResponse(s string) (Response, bool) {
	for r, n := range responseNames {
		if strings.EqualFold(n, s) {
			return r, true
		}
	}
	return RespondIgnore, false
}

// Interrupt is a pause awaiting an explicit response. Without one, the
// default applies on the first tick after the turn it was raised in.
type Interrupt struct {
	Kind       InterruptKind  `json:"kind"`
	Region     world.RegionID `json:"region"`
	RaisedTurn int            `json:"raised_turn"`
	Default    Response       `json:"default"`
	Response   *Response      `json:"response,omitempty"`
}

// Choice returns the explicit response if one was given, else the default.
func (i *Interrupt) Choice() Response {
	if i.Response != nil {
		return *i.Response
	}
	return i.Default
}

// StandingOrder is one marshal's multi-turn goal. The target region is a
// snapshot taken when the order was issued and never follows a moving
// marshal afterwards.
type StandingOrder struct {
	MarshalID     agents.MarshalID `json:"marshal_id"`
	Goal          Goal             `json:"goal"`
	TargetRegion  world.RegionID   `json:"target_region"`
	TargetMarshal agents.MarshalID `json:"target_marshal,omitempty"`
	Path          []world.RegionID `json:"path"`
	Step          int              `json:"step"`
	Termination   Termination      `json:"termination"`
	MaxTurns      int              `json:"max_turns"`
	TurnsActive   int              `json:"turns_active"`
	IssuedTurn    int              `json:"issued_turn"`
	State         State            `json:"state"`
	Committed     bool             `json:"committed"` // First step has been taken
	Interrupt     *Interrupt       `json:"interrupt,omitempty"`
	Outcome       string           `json:"outcome,omitempty"`
}

// Spec is a request to issue a standing order.
type Spec struct {
	MarshalID     agents.MarshalID
	Goal          Goal
	TargetRegion  world.RegionID
	TargetMarshal agents.MarshalID
	Termination   Termination
	MaxTurns      int
}

// Report is one thing that happened to a standing order. TrustPenalty is
// applied by the caller; the book never writes marshal state.
type Report struct {
	MarshalID    agents.MarshalID
	Turn         int
	Event        string
	Outcome      string
	State        State
	TrustPenalty float64
	Result       *command.Result
}

// Trust penalties.
const (
	CancelPenalty  = -3.0
	BlockedPenalty = -2.0
)

// Tuning.
const (
	ContactRadius  = 2 // Regions within which a battle interrupts an order
	BlockedTimeout = 3 // Turns a blocked interrupt waits before the order fails
)

var (
	ErrNoStandingOrder = errors.New("no standing order")
	ErrNoInterrupt     = errors.New("no pending interrupt")
	ErrBadResponse     = errors.New("response does not fit the interrupt")
	ErrUnknownMarshal  = errors.New("unknown marshal")
	ErrUnknownRegion   = errors.New("unknown region")
)
