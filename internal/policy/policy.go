package policy

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/talgya/marshals/internal/agents"
	"github.com/talgya/marshals/internal/combat"
	"github.com/talgya/marshals/internal/command"
	"github.com/talgya/marshals/internal/theater"
)

// Policy runs the compiled ladder for autonomous marshals.
type Policy struct {
	rules    []*Rule
	resolver *combat.Resolver
}

// New compiles the rules into expr bytecode and sorts them by priority.
func New(rules []*Rule, res *combat.Resolver) (*Policy, error) {
	compiled, err := compileRules(rules)
	if err != nil {
		return nil, err
	}
	return &Policy{rules: compiled, resolver: res}, nil
}

// Rules returns the compiled ladder in evaluation order.
func (p *Policy) Rules() []*Rule {
	return p.rules
}

// Decision is the outcome of one policy invocation.
type Decision struct {
	Rule   string
	Order  command.Order
	Result command.Result
}

// Acted reports whether the invocation produced an accepted order.
func (d Decision) Acted() bool {
	return d.Result.Success
}

// Decide evaluates the ladder for one marshal and submits orders through
// exec. The first matching rule whose order the executor accepts wins; a
// rejected order yields to the next matching rule and is never retried.
func (p *Policy) Decide(th *theater.Theater, m *agents.Marshal, exec command.Executor) Decision {
	s := Assess(th, p.resolver, m)

	var last Decision
	for _, r := range p.rules {
		out, err := vm.Run(r.program, s.Env)
		if err != nil {
			slog.Warn("rule condition error", "rule", r.Name, "error", err)
			continue
		}
		if match, ok := out.(bool); !ok || !match {
			continue
		}

		o := r.Build(s)
		res := exec.Execute(o)
		last = Decision{Rule: r.Name, Order: o, Result: res}
		if res.Success {
			slog.Debug("rule fired", "marshal", m.ID, "rule", r.Name, "rung", r.Rung, "order", o.Kind, "target", o.Target)
			return last
		}
		slog.Debug("rule yielded", "marshal", m.ID, "rule", r.Name, "reason", res.Reason)
	}
	return last
}

func compileRules(rules []*Rule) ([]*Rule, error) {
	for _, r := range rules {
		prog, err := expr.Compile(r.ConditionSrc, expr.Env(Env{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile rule %q: %w", r.Name, err)
		}
		r.program = prog
	}
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority > rules[j].Priority
	})
	return rules, nil
}
