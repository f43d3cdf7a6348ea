package negotiation

import (
	"github.com/talgya/marshals/internal/agents"
	"github.com/talgya/marshals/internal/command"
)

type altKey struct {
	kind command.ActionKind
	p    agents.Personality
}

// Proposal is what a marshal offers instead of an order it objects to.
type Proposal struct {
	Alternative command.ActionKind
	Compromise  command.ActionKind
}

var alternatives = map[altKey]Proposal{
	{command.Defend, agents.Aggressive}:  {command.Probe, command.Hold},
	{command.Fortify, agents.Aggressive}: {command.Drill, command.Defend},
	{command.Hold, agents.Aggressive}:    {command.Probe, command.Wait},
	{command.Retreat, agents.Aggressive}: {command.Defend, command.Hold},
	{command.Attack, agents.Cautious}:    {command.Defend, command.Probe},
	{command.Probe, agents.Cautious}:     {command.Scout, command.Hold},
	{command.Move, agents.Cautious}:      {command.Hold, command.Scout},
	{command.Unfortify, agents.Cautious}: {command.Hold, command.Wait},
	{command.Attack, agents.Balanced}:    {command.Probe, command.Defend},
	{command.Retreat, agents.Balanced}:   {command.Defend, command.Hold},
	{command.Defend, agents.Balanced}:    {command.Hold, command.Wait},
	{command.Attack, agents.Literal}:     {command.Probe, command.Wait},
	{command.Attack, agents.Loyal}:       {command.Probe, command.Defend},
}

var defaultProposal = Proposal{Alternative: command.Hold, Compromise: command.Wait}

// ProposalFor looks up what a personality proposes instead of an action.
func ProposalFor(kind command.ActionKind, p agents.Personality) Proposal {
	if prop, ok := alternatives[altKey{kind, p}]; ok {
		return prop
	}
	return defaultProposal
}

// buildOrder turns a proposed action into an order, giving it a target
// where it needs one. The order-giver's condition is not carried over. A
// probe with no enemy in reach becomes a scout.
func buildOrder(orig command.Order, kind command.ActionKind, ctx Context) command.Order {
	if kind == command.Probe && ctx.ProbeTarget == "" {
		kind = command.Scout
	}
	o := orig.WithKind(kind)
	o.Condition = ""
	switch kind {
	case command.Probe:
		o.Target = ctx.ProbeTarget
	case command.Scout:
		o.Target = ""
	case command.Attack, command.Move:
		// Inherits the original target.
	default:
		o.Target = ""
	}
	return o
}
