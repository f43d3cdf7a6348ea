package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/talgya/marshals/internal/agents"
	"github.com/talgya/marshals/internal/command"
	"github.com/talgya/marshals/internal/engine"
	"github.com/talgya/marshals/internal/negotiation"
	"github.com/talgya/marshals/internal/orders"
	"github.com/talgya/marshals/internal/world"
)

func (a *app) newOrderCmd() *cobra.Command {
	var stance, condition string
	cmd := &cobra.Command{
		Use:   "order <marshal> <action> [region]",
		Short: "Give a marshal an order for this turn",
		Long: `Orders pass through the marshal's judgement. A major objection holds the
order until it is resolved with the resolve command.

Actions: wait, move, attack, probe, defend, hold, fortify, unfortify, drill,
scout, retreat, stance, administer, return.

--if takes an expression over Turn, Strength, FriendlyHere, Morale, Trust,
Fortified, Holding, EnemyHere, EnemyAdjacent, EnemyDistance, TargetDefended
and TargetOdds.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, ok := command.ParseAction(args[1])
			if !ok {
				return fmt.Errorf("unknown action %q", args[1])
			}
			o := command.Order{MarshalID: agents.MarshalID(args[0]), Kind: kind, Condition: condition}
			if len(args) == 3 {
				o.Target = world.RegionID(args[2])
			}
			if kind == command.SetStance {
				st, ok := agents.ParseStance(stance)
				if !ok {
					return fmt.Errorf("unknown stance %q", stance)
				}
				o.Stance = st
			}
			return a.withGame(func(g *engine.Game) error {
				printResult(cmd.OutOrStdout(), g.Submit(o))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&stance, "stance", "neutral", "Stance for the stance action (neutral, aggressive, defensive)")
	cmd.Flags().StringVar(&condition, "if", "", `Only carry out the order if this holds, e.g. "TargetOdds >= 1.5"`)
	return cmd
}

func (a *app) newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <objection-id> <accept|override|compromise>",
		Short: "Answer a marshal's major objection",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			choice, err := negotiation.ParseChoice(args[1])
			if err != nil {
				return err
			}
			return a.withGame(func(g *engine.Game) error {
				res, err := g.ResolveObjection(args[0], choice)
				if err != nil {
					return err
				}
				printResult(cmd.OutOrStdout(), res)
				return nil
			})
		},
	}
}

func (a *app) newStandingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "standing",
		Short: "Manage standing orders",
	}

	var (
		until         string
		maxTurns      int
		targetMarshal string
	)
	issue := &cobra.Command{
		Use:   "issue <marshal> <advance|pursue|hold|support> [region]",
		Short: "Give a marshal a multi-turn goal",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			goal, ok := orders.ParseGoal(args[1])
			if !ok {
				return fmt.Errorf("unknown goal %q", args[1])
			}
			term, ok := orders.ParseTermination(until)
			if !ok {
				return fmt.Errorf("unknown termination %q", until)
			}
			spec := orders.Spec{
				MarshalID:     agents.MarshalID(args[0]),
				Goal:          goal,
				TargetMarshal: agents.MarshalID(targetMarshal),
				Termination:   term,
				MaxTurns:      maxTurns,
			}
			if len(args) == 3 {
				spec.TargetRegion = world.RegionID(args[2])
			}
			return a.withGame(func(g *engine.Game) error {
				rep, err := g.IssueStandingOrder(spec)
				if err != nil {
					return err
				}
				printReport(cmd.OutOrStdout(), rep)
				return nil
			})
		},
	}
	issue.Flags().StringVar(&until, "until", "none", "Termination: none, max_turns, until_arrival, until_battle")
	issue.Flags().IntVar(&maxTurns, "max-turns", 0, "Turn limit for max_turns")
	issue.Flags().StringVar(&targetMarshal, "marshal", "", "Marshal to pursue or support")

	respond := &cobra.Command{
		Use:   "respond <marshal> <response>",
		Short: "Answer a standing-order interrupt",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, ok := orders.ParseResponse(args[1])
			if !ok {
				return fmt.Errorf("unknown response %q", args[1])
			}
			return a.withGame(func(g *engine.Game) error {
				if err := g.RespondStandingOrder(agents.MarshalID(args[0]), r); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s will %s\n", args[0], r)
				return nil
			})
		},
	}

	cancel := &cobra.Command{
		Use:   "cancel <marshal>",
		Short: "Withdraw a marshal's standing order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withGame(func(g *engine.Game) error {
				rep, err := g.CancelStandingOrder(agents.MarshalID(args[0]))
				if err != nil {
					return err
				}
				printReport(cmd.OutOrStdout(), rep)
				return nil
			})
		},
	}

	cmd.AddCommand(issue, respond, cancel)
	return cmd
}

func printResult(w io.Writer, res command.Result) {
	switch {
	case res.Message == command.MsgObjection:
		fmt.Fprintf(w, "%s\n  objection id: %s\n", res.Summary, res.ObjectionID)
	case !res.Success:
		fmt.Fprintln(w, res.Err())
	default:
		fmt.Fprintln(w, res.Summary)
	}
}

func printReport(w io.Writer, rep orders.Report) {
	line := fmt.Sprintf("%s: %s (%s)", rep.MarshalID, rep.Event, rep.State)
	if rep.Outcome != "" {
		line += ": " + rep.Outcome
	}
	if rep.TrustPenalty != 0 {
		line += fmt.Sprintf(", trust %+.0f", rep.TrustPenalty)
	}
	fmt.Fprintln(w, line)
}
