package command

import (
	"errors"
	"fmt"
)

// MessageKind classifies a result for presentation layers, which read only
// the kind and summary.
type MessageKind uint8

const (
	MsgInfo MessageKind = iota
	MsgSuccess
	MsgRejected
	MsgBattle
	MsgObjection
)

func (k MessageKind) String() string {
	switch k {
	case MsgSuccess:
		return "success"
	case MsgRejected:
		return "rejected"
	case MsgBattle:
		return "battle"
	case MsgObjection:
		return "objection"
	default:
		return "info"
	}
}

// Reason names why an order was refused.
type Reason string

const (
	ReasonNone              Reason = ""
	ReasonGameOver          Reason = "game_over"
	ReasonUnknownAgent      Reason = "unknown_agent"
	ReasonUnknownAction     Reason = "unknown_action"
	ReasonAdministrative    Reason = "administrative"
	ReasonRetreatRecovery   Reason = "retreat_recovery"
	ReasonDrilling          Reason = "drilling"
	ReasonFortified         Reason = "fortified"
	ReasonNotAdjacent       Reason = "not_adjacent"
	ReasonOccupied          Reason = "occupied"
	ReasonNoTarget          Reason = "no_target"
	ReasonNoActionsLeft     Reason = "no_actions_left"
	ReasonInvalidStance     Reason = "invalid_stance"
	ReasonNotAdministrative Reason = "not_administrative"
	ReasonNotFortified      Reason = "not_fortified"
	ReasonDestroyed         Reason = "destroyed"
	ReasonBadCondition      Reason = "bad_condition"
	ReasonConditionUnmet    Reason = "condition_unmet"
)

// ErrRejected is matched by every RejectError via errors.Is.
var ErrRejected = errors.New("order rejected")

// RejectError carries a typed rejection out as a Go error.
type RejectError struct {
	Reason Reason
	Detail string
}

func (e *RejectError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("order rejected: %s", e.Reason)
	}
	return fmt.Sprintf("order rejected: %s: %s", e.Reason, e.Detail)
}

// Is makes RejectError match ErrRejected.
func (e *RejectError) Is(target error) bool {
	return target == ErrRejected
}

// Result is what the executor reports for one order.
type Result struct {
	Success bool        `json:"success"`
	Message MessageKind `json:"message"`
	Summary string      `json:"summary"`
	Reason  Reason      `json:"reason,omitempty"`
	Detail  string      `json:"detail,omitempty"`

	// Executed is the order actually applied, which differs from the one
	// submitted when an objection substituted an alternative.
	Executed Order `json:"executed"`

	// Battle is set when the order led to an engagement.
	Battle *BattleReport `json:"battle,omitempty"`

	// ObjectionID is set when the order is held pending a decision.
	ObjectionID string `json:"objection_id,omitempty"`
}

// BattleReport is the presentation summary of one engagement.
type BattleReport struct {
	Region       string `json:"region"`
	Attacker     string `json:"attacker"`
	Defender     string `json:"defender"`
	AttackerWon  bool   `json:"attacker_won"`
	AttackerLoss int    `json:"attacker_loss"`
	DefenderLoss int    `json:"defender_loss"`
	Captured     bool   `json:"captured"`
}

// Err converts a rejection into an error; nil for anything else.
func (r Result) Err() error {
	if r.Success || r.Reason == ReasonNone {
		return nil
	}
	return &RejectError{Reason: r.Reason, Detail: r.Detail}
}

// Pending reports whether the order awaits an objection decision.
func (r Result) Pending() bool {
	return r.ObjectionID != ""
}

// Reject builds a rejection result.
func Reject(reason Reason, format string, args ...any) Result {
	detail := fmt.Sprintf(format, args...)
	return Result{
		Message: MsgRejected,
		Reason:  reason,
		Detail:  detail,
		Summary: fmt.Sprintf("rejected (%s): %s", reason, detail),
	}
}

// Succeed builds a success result.
func Succeed(o Order, format string, args ...any) Result {
	return Result{
		Success:  true,
		Message:  MsgSuccess,
		Summary:  fmt.Sprintf(format, args...),
		Executed: o,
	}
}
