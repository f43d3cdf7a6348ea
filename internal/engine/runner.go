package engine

import (
	"context"
	"log/slog"
)

// Runner drives a game forward a turn at a time.
type Runner struct {
	Game *Game

	// CheckpointEvery is how many turns pass between OnCheckpoint calls.
	// 0 checkpoints only when the run ends.
	CheckpointEvery int

	// Callbacks, populated during setup.
	OnTurn       func(sum TurnSummary) // After every turn
	OnCheckpoint func(g *Game) error   // Every CheckpointEvery turns and at the end
}

// NewRunner creates a runner that checkpoints after every turn.
func NewRunner(g *Game) *Runner {
	return &Runner{Game: g, CheckpointEvery: 1}
}

// Run plays up to turns turns. It stops early when the campaign ends or ctx
// is cancelled, always between turns. Returns the number of turns played.
func (r *Runner) Run(ctx context.Context, turns int) (int, error) {
	g := r.Game
	slog.Info("runner started", "turn", g.Turn(), "turns", turns)

	played, sinceCheckpoint := 0, 0
	for played < turns && !g.GameOver() {
		if err := ctx.Err(); err != nil {
			slog.Info("runner interrupted between turns", "turn", g.Turn())
			break
		}
		sum, err := g.AdvanceTurn()
		if err != nil {
			return played, err
		}
		played++
		sinceCheckpoint++

		if r.OnTurn != nil {
			r.OnTurn(sum)
		}
		if r.CheckpointEvery > 0 && sinceCheckpoint >= r.CheckpointEvery {
			if err := r.checkpoint(); err != nil {
				return played, err
			}
			sinceCheckpoint = 0
		}
	}

	if sinceCheckpoint > 0 || played == 0 {
		if err := r.checkpoint(); err != nil {
			return played, err
		}
	}
	slog.Info("runner stopped", "turn", g.Turn(), "played", played, "game_over", g.GameOver())
	return played, nil
}

func (r *Runner) checkpoint() error {
	if r.OnCheckpoint == nil {
		return nil
	}
	return r.OnCheckpoint(r.Game)
}
