// Package policy is the autonomous marshal's judgement: a strict priority
// ladder of guarded rules, evaluated fresh on every invocation.
package policy

import (
	"github.com/expr-lang/expr/vm"

	"github.com/talgya/marshals/internal/command"
)

// BuildFunc turns a matched rule into the order to attempt.
type BuildFunc func(s *Situation) command.Order

// Rule is one rung of the ladder: a condition and the order it proposes.
type Rule struct {
	Name         string      // human-readable identifier
	Rung         string      // ladder step the rule belongs to
	Priority     int         // higher = evaluated first
	ConditionSrc string      // expr source
	program      *vm.Program // compiled bytecode
	Build        BuildFunc
}
