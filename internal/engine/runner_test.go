package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/marshals/internal/agents"
)

func quietGame(t *testing.T) *Game {
	t.Helper()
	th := field()
	add(th, "ney", "fr", "a", agents.Balanced, 1000)
	add(th, "blu", "co", "z", agents.Balanced, 1000)
	return newGame(t, th)
}

func TestRunnerPlaysTurnsAndCheckpoints(t *testing.T) {
	g := quietGame(t)
	start := g.Turn()

	r := NewRunner(g)
	r.CheckpointEvery = 2
	var seen []int
	checkpoints := 0
	r.OnTurn = func(sum TurnSummary) { seen = append(seen, sum.Turn) }
	r.OnCheckpoint = func(*Game) error { checkpoints++; return nil }

	played, err := r.Run(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 5, played)
	assert.Equal(t, []int{start, start + 1, start + 2, start + 3, start + 4}, seen)
	// Two periodic checkpoints plus the final one for the odd turn.
	assert.Equal(t, 3, checkpoints)
}

func TestRunnerStopsWhenCancelled(t *testing.T) {
	g := quietGame(t)
	ctx, cancel := context.WithCancel(context.Background())

	r := NewRunner(g)
	r.OnTurn = func(TurnSummary) { cancel() }

	played, err := r.Run(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, played)
}

func TestRunnerStopsAtGameOver(t *testing.T) {
	th := field()
	add(th, "ney", "fr", "a", agents.Balanced, 1000)
	g := newGame(t, th)

	played, err := NewRunner(g).Run(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, played)
	assert.True(t, g.GameOver())
}

func TestRunnerReturnsCheckpointError(t *testing.T) {
	g := quietGame(t)
	boom := errors.New("disk full")

	r := NewRunner(g)
	r.OnCheckpoint = func(*Game) error { return boom }

	played, err := r.Run(context.Background(), 3)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, played)
}
