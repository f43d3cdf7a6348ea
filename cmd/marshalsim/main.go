// Command marshalsim runs a Marshals campaign from the command line: generate
// a scenario, play turns, issue orders, and inspect the saved state.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/talgya/marshals/internal/config"
	"github.com/talgya/marshals/internal/engine"
	"github.com/talgya/marshals/internal/persistence"
)

// app carries what every subcommand needs once the root has loaded the
// configuration.
type app struct {
	configPath string
	dbPath     string
	seed       int64

	cfg *config.Config
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "marshalsim",
		Short: "Command a campaign of autonomous marshals",
		Long: `marshalsim plays a turn-based campaign in which the player's orders pass
through marshals who have opinions of their own. Marshals object, comply,
or act on their own judgement; the campaign is saved to SQLite after every
turn.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "marshals.yaml", "Configuration file")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "Save file (overrides database.path)")
	root.PersistentFlags().Int64Var(&a.seed, "seed", 0, "Campaign seed (overrides game.seed)")

	root.AddCommand(
		a.newRunCmd(),
		a.newShowCmd(),
		a.newOrderCmd(),
		a.newResolveCmd(),
		a.newStandingCmd(),
	)
	return root
}

// setup loads the configuration, installs the logger, and applies tuning
// overrides.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.dbPath != "" {
		cfg.Database.Path = a.dbPath
	}
	if cmd.Flags().Changed("seed") {
		cfg.Game.Seed = a.seed
	}
	a.cfg = cfg

	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler = slog.NewTextHandler(cmd.ErrOrStderr(), opts)
	if cfg.Logging.Format == "json" {
		h = slog.NewJSONHandler(cmd.ErrOrStderr(), opts)
	}
	slog.SetDefault(slog.New(h))

	cfg.ApplyPersonalities()
	return nil
}

func (a *app) openDB() (*persistence.DB, error) {
	path := a.cfg.Database.Path
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}
	db, err := persistence.Open(path)
	if err != nil {
		return nil, err
	}
	slog.Debug("database opened", "path", path)
	return db, nil
}

// loadGame restores the saved campaign.
func (a *app) loadGame(db *persistence.DB) (*engine.Game, error) {
	snap, err := db.Load()
	if err != nil {
		return nil, fmt.Errorf("load campaign: %w", err)
	}
	return engine.Restore(snap, a.cfg.Options())
}

// withGame opens the save, restores the campaign, runs fn, and saves the
// result.
func (a *app) withGame(fn func(g *engine.Game) error) error {
	db, err := a.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	g, err := a.loadGame(db)
	if err != nil {
		return err
	}
	if err := fn(g); err != nil {
		return err
	}
	return db.Save(g.Snapshot())
}
