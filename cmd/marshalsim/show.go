package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/talgya/marshals/internal/engine"
	"github.com/talgya/marshals/internal/world"
)

func (a *app) newShowCmd() *cobra.Command {
	var events int
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the saved campaign",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			g, err := a.loadGame(db)
			if err != nil {
				return err
			}
			recent, err := db.RecentEvents(events)
			if err != nil {
				return err
			}
			troops, err := db.MarshalStrengths()
			if err != nil {
				return err
			}
			show(cmd.OutOrStdout(), g, recent, troops)
			return nil
		},
	}
	cmd.Flags().IntVarP(&events, "events", "e", 10, "Recent events to print")
	return cmd
}

// show prints the campaign. Faction troop totals come from the save.
func show(w io.Writer, g *engine.Game, recent []engine.Event, troops map[world.FactionID]int) {
	th := g.Theater
	fmt.Fprintf(w, "%s turn, authority %.0f, %d orders left\n",
		humanize.Ordinal(g.Turn()), g.Authority().Level, g.PlayerActionsLeft())
	if g.GameOver() {
		fmt.Fprintf(w, "Campaign over; winner: %s\n", factionName(g, g.Winner()))
	}

	fmt.Fprintln(w, "\nFactions")
	for _, f := range th.Factions() {
		tag := ""
		switch {
		case f.Player:
			tag = " (player)"
		case f.Defeated:
			tag = " (defeated)"
		}
		fmt.Fprintf(w, "  %-14s capital %-6s %3d regions %9s troops%s\n", f.Name, f.Capital,
			len(th.RegionsOwnedBy(f.ID)), humanize.Comma(int64(troops[f.ID])), tag)
	}

	fmt.Fprintln(w, "\nMarshals")
	for _, m := range th.Marshals() {
		fmt.Fprintf(w, "  %-8s %-20s %-4s at %-6s %9s troops  morale %3.0f  trust %3.0f  %s/%s\n",
			m.ID, m.Name, m.Faction, m.Location, humanize.Comma(int64(m.Strength)),
			m.Morale, m.Trust.Value(), m.Personality, m.Stance)
	}

	if pend := g.PendingObjections(); len(pend) > 0 {
		fmt.Fprintln(w, "\nPending objections")
		for _, p := range pend {
			fmt.Fprintf(w, "  %s  %s objects to %s; proposes %s, compromise %s\n",
				p.ID, p.MarshalID, p.Original.Kind, p.Alternative.Kind, p.Compromise.Kind)
		}
	}

	if sos := g.StandingOrders(); len(sos) > 0 {
		fmt.Fprintln(w, "\nStanding orders")
		for _, so := range sos {
			line := fmt.Sprintf("  %-8s %s to %s, %s, step %d/%d", so.MarshalID, so.Goal, so.TargetRegion,
				so.State, so.Step, len(so.Path))
			if so.Interrupt != nil {
				line += fmt.Sprintf(" (%s interrupt at %s, default %s)", so.Interrupt.Kind, so.Interrupt.Region, so.Interrupt.Default)
			}
			fmt.Fprintln(w, line)
		}
	}

	if len(recent) > 0 {
		fmt.Fprintln(w, "\nRecent events")
		for _, e := range recent {
			fmt.Fprintf(w, "  %4d [%s] %s\n", e.Turn, e.Category, e.Description)
		}
	}
}

func factionName(g *engine.Game, id world.FactionID) string {
	if f, ok := g.Theater.Faction(id); ok && f.Name != "" {
		return f.Name
	}
	if id == "" {
		return "none"
	}
	return string(id)
}
