package policy

import (
	"github.com/talgya/marshals/internal/agents"
	"github.com/talgya/marshals/internal/command"
	"github.com/talgya/marshals/internal/world"
)

func order(s *Situation, kind command.ActionKind) command.Order {
	return command.Order{MarshalID: s.Marshal.ID, Kind: kind, SelfDirected: true}
}

func toward(kind command.ActionKind, pick func(s *Situation) world.RegionID) BuildFunc {
	return func(s *Situation) command.Order {
		o := order(s, kind)
		o.Target = pick(s)
		return o
	}
}

func act(kind command.ActionKind) BuildFunc {
	return func(s *Situation) command.Order { return order(s, kind) }
}

func stance(st agents.Stance) BuildFunc {
	return func(s *Situation) command.Order {
		o := order(s, command.SetStance)
		o.Stance = st
		return o
	}
}

func preferredStance(s *Situation) command.Order {
	o := order(s, command.SetStance)
	o.Stance = agents.ProfileFor(s.Marshal.Personality).PreferredStance
	return o
}

// DefaultRules returns the ladder. Priorities leave gaps so rungs can be
// extended without renumbering.
func DefaultRules() []*Rule {
	return []*Rule{
		// 0: enemy in the same region. Attack, retreat, or wait; nothing else.
		{
			Name: "engaged-attack", Rung: "0", Priority: 1000,
			ConditionSrc: `EnemyHere && !Administrative && HereOdds >= Threshold`,
			Build:        toward(command.Attack, func(s *Situation) world.RegionID { return s.Marshal.Location }),
		},
		{
			Name: "engaged-retreat", Rung: "0", Priority: 990,
			ConditionSrc: `EnemyHere && CanRetreat`,
			Build:        act(command.Retreat),
		},
		{
			Name: "engaged-wait", Rung: "0", Priority: 980,
			ConditionSrc: `EnemyHere`,
			Build:        act(command.Wait),
		},

		{
			Name: "administrative-wait", Rung: "A", Priority: 950,
			ConditionSrc: `Administrative`,
			Build:        act(command.Wait),
		},

		// 1: retreat recovery allows only a defensive stance or waiting.
		{
			Name: "recovery-defend", Rung: "1", Priority: 900,
			ConditionSrc: `InRecovery && !InStance("defensive")`,
			Build:        stance(agents.StanceDefensive),
		},
		{
			Name: "recovery-wait", Rung: "1", Priority: 890,
			ConditionSrc: `InRecovery`,
			Build:        act(command.Wait),
		},

		// 2: below the strength floor.
		{
			Name: "weak-retreat", Rung: "2", Priority: 800,
			ConditionSrc: `Weak() && EnemyAdjacent && CanRetreat`,
			Build:        act(command.Retreat),
		},
		{
			Name: "weak-defend", Rung: "2", Priority: 790,
			ConditionSrc: `Weak() && !InStance("defensive")`,
			Build:        stance(agents.StanceDefensive),
		},
		{
			Name: "weak-hold", Rung: "2", Priority: 780,
			ConditionSrc: `Weak() && !Holding`,
			Build:        act(command.Hold),
		},

		// 3: a stronger enemy next door.
		{
			Name: "threatened-fortify-cautious", Rung: "3", Priority: 700,
			ConditionSrc: `StrongerEnemyAdjacent && Is("cautious") && !Fortified && !Drilling`,
			Build:        act(command.Fortify),
		},
		{
			Name: "threatened-defend", Rung: "3", Priority: 690,
			ConditionSrc: `StrongerEnemyAdjacent && !InStance("defensive") && !OddsClear()`,
			Build:        stance(agents.StanceDefensive),
		},
		{
			Name: "threatened-fortify", Rung: "3", Priority: 680,
			ConditionSrc: `StrongerEnemyAdjacent && !Fortified && !Drilling && !OddsClear()`,
			Build:        act(command.Fortify),
		},

		// 4: offensive options.
		{
			Name: "sally", Rung: "4", Priority: 600,
			ConditionSrc: `Fortified && OddsClear()`,
			Build:        act(command.Unfortify),
		},
		{
			Name: "attack", Rung: "4", Priority: 590,
			ConditionSrc: `!Fortified && !Weak() && OddsClear()`,
			Build:        toward(command.Attack, func(s *Situation) world.RegionID { return s.BestTarget }),
		},
		{
			Name: "capture-undefended", Rung: "4", Priority: 580,
			ConditionSrc: `!Fortified && !Drilling && !HasCombatTarget && UndefendedTarget`,
			Build:        toward(command.Attack, func(s *Situation) world.RegionID { return s.CaptureTarget }),
		},

		// 4b: allies.
		{
			Name: "support-ally", Rung: "4b", Priority: 500,
			ConditionSrc: `AllyNeedsSupport && !Drilling`,
			Build:        toward(command.Move, func(s *Situation) world.RegionID { return s.SupportStep }),
		},
		{
			Name: "rally-strongest", Rung: "4b", Priority: 490,
			ConditionSrc: `CanRally && !AdvancedThisTurn && !Drilling`,
			Build:        toward(command.Move, func(s *Situation) world.RegionID { return s.RallyStep }),
		},

		// 5-6: no combat option.
		{
			Name: "cautious-fortify", Rung: "5", Priority: 400,
			ConditionSrc: `Is("cautious") && !Fortified && !Drilling && IdleTurns < 2`,
			Build:        act(command.Fortify),
		},
		{
			Name: "aggressive-drill", Rung: "6", Priority: 300,
			ConditionSrc: `Is("aggressive") && !Drilling && !Fortified && !ShockReady && IdleTurns < 2`,
			Build:        act(command.Drill),
		},

		// 7: no threat.
		{
			Name: "forced-advance", Rung: "7", Priority: 200,
			ConditionSrc: `IdleTurns >= 2 && CanAdvance && !Drilling`,
			Build:        toward(command.Move, func(s *Situation) world.RegionID { return s.AdvanceStep }),
		},
		{
			Name: "advance", Rung: "7", Priority: 190,
			ConditionSrc: `Is("aggressive") && CanAdvance && !Drilling`,
			Build:        toward(command.Move, func(s *Situation) world.RegionID { return s.AdvanceStep }),
		},
		{
			Name: "fall-back", Rung: "7", Priority: 180,
			ConditionSrc: `Is("cautious") && CanFallBack && !AdvancedThisTurn && !Drilling`,
			Build:        toward(command.Move, func(s *Situation) world.RegionID { return s.FallbackStep }),
		},

		// 8: default.
		{
			Name: "adjust-stance", Rung: "8", Priority: 100,
			ConditionSrc: `Stance != Preferred && !(InRecovery && Preferred == "aggressive")`,
			Build:        preferredStance,
		},
		{
			Name: "wait", Rung: "8", Priority: 0,
			ConditionSrc: `true`,
			Build:        act(command.Wait),
		},
	}
}
