package engine

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/talgya/marshals/internal/agents"
	"github.com/talgya/marshals/internal/command"
	"github.com/talgya/marshals/internal/theater"
	"github.com/talgya/marshals/internal/world"
)

// ConditionEnv is what an order's condition can see, from the ordered
// marshal's point of view at the moment the order executes.
type ConditionEnv struct {
	Turn           int
	Strength       int     // The marshal's own troops
	FriendlyHere   int     // Troops of the marshal's faction in its region
	Morale         float64
	Trust          float64
	Fortified      bool
	Holding        bool
	EnemyHere      bool
	EnemyAdjacent  bool
	EnemyDistance  int     // Regions to the nearest enemy, -1 if none
	TargetDefended bool    // Enemy troops in the order's target
	TargetOdds     float64 // Projected odds against the target's defender, 0 if none
}

// checkCondition evaluates an order's condition. An empty condition always
// holds; one that fails to compile or run rejects the order.
func (g *Game) checkCondition(m *agents.Marshal, o command.Order) (command.Result, bool) {
	if o.Condition == "" {
		return command.Result{}, true
	}
	prog, err := g.conditionProgram(o.Condition)
	if err != nil {
		return command.Reject(command.ReasonBadCondition, "%v", err), false
	}
	out, err := vm.Run(prog, g.conditionEnv(m, o))
	if err != nil {
		return command.Reject(command.ReasonBadCondition, "run condition %q: %v", o.Condition, err), false
	}
	if held, _ := out.(bool); !held {
		return command.Reject(command.ReasonConditionUnmet, "condition %q does not hold", o.Condition), false
	}
	return command.Result{}, true
}

func (g *Game) conditionProgram(src string) (*vm.Program, error) {
	if prog, ok := g.conditions[src]; ok {
		return prog, nil
	}
	prog, err := expr.Compile(src, expr.Env(ConditionEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile condition %q: %w", src, err)
	}
	g.conditions[src] = prog
	return prog, nil
}

func (g *Game) conditionEnv(m *agents.Marshal, o command.Order) ConditionEnv {
	th := g.Theater
	env := ConditionEnv{
		Turn:          g.turn,
		Strength:      m.Strength,
		FriendlyHere:  th.StrengthAt(m.Location, m.Faction),
		Morale:        m.Morale,
		Trust:         m.Trust.Value(),
		Fortified:     m.Tactical.Fortified,
		Holding:       m.Tactical.Holding,
		EnemyHere:     th.EnemyOccupied(m.Location, m.Faction),
		EnemyAdjacent: len(th.AdjacentEnemies(m)) > 0,
		EnemyDistance: enemyDistance(th, m),
	}
	if o.Target != "" {
		env.TargetDefended = th.EnemyOccupied(o.Target, m.Faction)
		env.TargetOdds = g.resolver.RegionOdds(th, m, o.Target)
	}
	return env
}

func enemyDistance(th *theater.Theater, m *agents.Marshal) int {
	return th.NearestDistance(m.Location, func(id world.RegionID) bool {
		return th.EnemyOccupied(id, m.Faction)
	})
}
