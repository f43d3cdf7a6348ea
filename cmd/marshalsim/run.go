package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/talgya/marshals/internal/engine"
	"github.com/talgya/marshals/internal/persistence"
)

func (a *app) newRunCmd() *cobra.Command {
	var (
		turns int
		fresh bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Play turns, resuming the saved campaign if there is one",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("turns") {
				turns = a.cfg.Game.Turns
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.run(ctx, cmd.OutOrStdout(), turns, fresh)
		},
	}
	cmd.Flags().IntVarP(&turns, "turns", "n", 0, "Turns to play (default game.turns)")
	cmd.Flags().BoolVar(&fresh, "fresh", false, "Discard the saved campaign and generate a new one")
	return cmd
}

func (a *app) run(ctx context.Context, w io.Writer, turns int, fresh bool) error {
	db, err := a.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	var g *engine.Game
	if !fresh {
		g, err = a.loadGame(db)
		if err != nil && !errors.Is(err, persistence.ErrNoSavedState) {
			return err
		}
	}
	if g == nil {
		if g, err = engine.NewScenario(a.cfg.ScenarioSpec(), a.cfg.Options()); err != nil {
			return err
		}
		fmt.Fprintf(w, "New campaign: %d regions, %d marshals (seed %d)\n",
			g.Theater.Map.Len(), len(g.Theater.Marshals()), g.Seed())
		if err := db.Save(g.Snapshot()); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(w, "Resuming campaign at the %s turn\n", humanize.Ordinal(g.Turn()))
	}

	r := engine.NewRunner(g)
	r.OnTurn = func(sum engine.TurnSummary) { printSummary(w, g, sum) }
	r.OnCheckpoint = func(g *engine.Game) error {
		if err := db.Save(g.Snapshot()); err != nil {
			return fmt.Errorf("save after turn %d: %w", g.Turn()-1, err)
		}
		return nil
	}
	if _, err := r.Run(ctx, turns); err != nil {
		return err
	}

	if g.GameOver() {
		if g.Winner() == "" {
			fmt.Fprintln(w, "The campaign is over. No side prevailed.")
		} else {
			fmt.Fprintf(w, "The campaign is over. Victory for %s.\n", factionName(g, g.Winner()))
		}
	}
	return nil
}

func printSummary(w io.Writer, g *engine.Game, sum engine.TurnSummary) {
	fmt.Fprintf(w, "\n== %s turn: %s autonomous actions, %s standing-order reports ==\n",
		humanize.Ordinal(sum.Turn), humanize.Comma(int64(sum.AutonomousActions)),
		humanize.Comma(int64(sum.OrderReports)))
	for _, e := range sum.Events {
		fmt.Fprintf(w, "  [%s] %s\n", e.Category, e.Description)
	}
	for _, f := range g.Theater.Factions() {
		fmt.Fprintf(w, "  %-14s %3d regions  %9s troops\n", f.Name,
			len(g.Theater.RegionsOwnedBy(f.ID)), humanize.Comma(int64(g.Theater.TotalStrength(f.ID))))
	}
}
