package persistence

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/marshals/internal/command"
	"github.com/talgya/marshals/internal/engine"
	"github.com/talgya/marshals/internal/entropy"
	"github.com/talgya/marshals/internal/negotiation"
	"github.com/talgya/marshals/internal/orders"
)

func openDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "marshals.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// campaign plays a scenario far enough to fill every part of the snapshot.
func campaign(t *testing.T) *engine.Game {
	t.Helper()
	g, err := engine.NewScenario(engine.DefaultScenario(), engine.Options{Seed: 11})
	require.NoError(t, err)
	for i := 0; i < 3 && !g.GameOver(); i++ {
		_, err := g.AdvanceTurn()
		require.NoError(t, err)
	}
	return g
}

func TestLoadEmptyDatabase(t *testing.T) {
	db := openDB(t)
	assert.False(t, db.HasSavedState())

	_, err := db.Load()
	assert.ErrorIs(t, err, ErrNoSavedState)
	_, err = db.GetMeta("turn")
	assert.ErrorIs(t, err, ErrNoSavedState)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	db := openDB(t)
	g := campaign(t)
	snap := g.Snapshot()

	require.NoError(t, db.Save(snap))
	assert.True(t, db.HasSavedState())

	got, err := db.Load()
	require.NoError(t, err)

	want, err := json.Marshal(snap)
	require.NoError(t, err)
	have, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(have))
}

func TestSaveReplacesPreviousCampaign(t *testing.T) {
	db := openDB(t)
	g := campaign(t)
	require.NoError(t, db.Save(g.Snapshot()))

	if !g.GameOver() {
		_, err := g.AdvanceTurn()
		require.NoError(t, err)
	}
	snap := g.Snapshot()
	require.NoError(t, db.Save(snap))

	got, err := db.Load()
	require.NoError(t, err)
	assert.Equal(t, snap.Turn, got.Turn)
	assert.Len(t, got.Marshals, len(snap.Marshals))
	assert.Len(t, got.Regions, len(snap.Regions))
	assert.Len(t, got.Events, len(snap.Events))
}

func TestObjectionStateSurvivesSave(t *testing.T) {
	db := openDB(t)
	g, err := engine.NewScenario(engine.DefaultScenario(), engine.Options{Seed: 5, Rand: entropy.NewSequence(0.5)})
	require.NoError(t, err)

	// Marshals of the player's faction stand on the capital; one with the
	// aggressive temperament resents being told to defend it.
	player, ok := g.Theater.PlayerFaction()
	require.True(t, ok)
	var pending string
	for _, m := range g.Theater.MarshalsOf(player.ID) {
		res := g.Submit(command.Order{MarshalID: m.ID, Kind: command.Defend})
		if res.Message == command.MsgObjection {
			pending = res.ObjectionID
			break
		}
	}
	first := g.Theater.MarshalsOf(player.ID)[0]
	_, err = g.IssueStandingOrder(orders.Spec{MarshalID: first.ID, Goal: orders.HoldPosition, TargetRegion: first.Location})
	require.NoError(t, err)

	require.NoError(t, db.Save(g.Snapshot()))
	snap, err := db.Load()
	require.NoError(t, err)
	assert.Len(t, snap.StandingOrders, 1)

	restored, err := engine.Restore(snap, engine.Options{Rand: entropy.NewSequence(0.5)})
	require.NoError(t, err)
	assert.Equal(t, g.PlayerActionsLeft(), restored.PlayerActionsLeft())
	assert.Equal(t, g.MajorObjectionsThisTurn(), restored.MajorObjectionsThisTurn())
	if pending != "" {
		_, err := restored.ResolveObjection(pending, negotiation.Accept)
		assert.NoError(t, err)
	}
}

func TestRecentEvents(t *testing.T) {
	db := openDB(t)
	snap := &engine.Snapshot{
		Turn: 3,
		Events: []engine.Event{
			{Turn: 1, Description: "first", Category: engine.CategoryBattle},
			{Turn: 2, Description: "second", Category: engine.CategoryCapture},
			{Turn: 3, Description: "third", Category: engine.CategoryRetreat},
		},
	}
	require.NoError(t, db.Save(snap))

	got, err := db.RecentEvents(2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "second", got[0].Description)
	assert.Equal(t, "third", got[1].Description)
	assert.Equal(t, 3, got[1].Turn)
}

func TestMarshalStrengths(t *testing.T) {
	db := openDB(t)
	g := campaign(t)
	require.NoError(t, db.Save(g.Snapshot()))

	got, err := db.MarshalStrengths()
	require.NoError(t, err)
	for _, f := range g.Theater.Factions() {
		assert.Equal(t, g.Theater.TotalStrength(f.ID), got[f.ID], "faction %s", f.ID)
	}
}
