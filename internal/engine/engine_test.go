package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/marshals/internal/agents"
	"github.com/talgya/marshals/internal/command"
	"github.com/talgya/marshals/internal/entropy"
	"github.com/talgya/marshals/internal/negotiation"
	"github.com/talgya/marshals/internal/orders"
	"github.com/talgya/marshals/internal/social"
	"github.com/talgya/marshals/internal/theater"
	"github.com/talgya/marshals/internal/world"
)

// field builds
//
//	a - b - c - d        z
//
// a is fr's capital and b is fr's; c and d (the capital) belong to co. z is
// an isolated co region that keeps co alive without touching the front.
func field() *theater.Theater {
	m := world.NewMap()
	m.Add(&world.Region{ID: "a", Name: "Arles", Owner: "fr"})
	m.Add(&world.Region{ID: "b", Name: "Blois", Owner: "fr", Adjacent: []world.RegionID{"a"}})
	m.Add(&world.Region{ID: "c", Name: "Caen", Owner: "co", Adjacent: []world.RegionID{"b"}})
	m.Add(&world.Region{ID: "d", Name: "Dole", Owner: "co", Adjacent: []world.RegionID{"c"}})
	m.Add(&world.Region{ID: "z", Name: "Zug", Owner: "co"})

	th := theater.New(m)
	th.AddFaction(&social.Faction{ID: "fr", Name: "France", Capital: "a", Player: true})
	th.AddFaction(&social.Faction{ID: "co", Name: "Coalition", Capital: "d"})
	return th
}

func add(th *theater.Theater, id agents.MarshalID, faction world.FactionID, loc world.RegionID, p agents.Personality, strength int) *agents.Marshal {
	m := &agents.Marshal{
		ID:          id,
		Name:        string(id),
		Faction:     faction,
		Location:    loc,
		Strength:    strength,
		MaxStrength: strength,
		Morale:      80,
		Personality: p,
		Trust:       agents.NewTrust(agents.DefaultTrust),
	}
	th.AddMarshal(m)
	return m
}

func newGame(t *testing.T, th *theater.Theater) *Game {
	t.Helper()
	g, err := New(th, Options{Rand: entropy.NewSequence(0.5)})
	require.NoError(t, err)
	return g
}

func order(id agents.MarshalID, k command.ActionKind, target world.RegionID) command.Order {
	return command.Order{MarshalID: id, Kind: k, Target: target}
}

func countEvents(g *Game, category string) int {
	n := 0
	for _, e := range g.Events {
		if e.Category == category {
			n++
		}
	}
	return n
}

func TestRecoveryBlocksOffensiveActions(t *testing.T) {
	th := field()
	m := add(th, "ney", "fr", "b", agents.Balanced, 1000)
	add(th, "blu", "co", "c", agents.Balanced, 1000)
	m.Tactical.RetreatRecovery = 2
	g := newGame(t, th)

	for _, o := range []command.Order{
		order("ney", command.Attack, "c"),
		order("ney", command.Probe, "c"),
		order("ney", command.Fortify, ""),
		order("ney", command.Drill, ""),
		order("ney", command.Scout, ""),
		{MarshalID: "ney", Kind: command.SetStance, Stance: agents.StanceAggressive},
	} {
		res := g.Execute(o)
		assert.Equal(t, command.ReasonRetreatRecovery, res.Reason, "order %s", o.Kind)
	}

	res := g.Execute(command.Order{MarshalID: "ney", Kind: command.SetStance, Stance: agents.StanceDefensive})
	assert.True(t, res.Success)
	res = g.Execute(order("ney", command.Wait, ""))
	assert.True(t, res.Success)
	assert.Equal(t, command.MsgInfo, res.Message)
}

func TestValidationOrder(t *testing.T) {
	th := field()
	m := add(th, "ney", "fr", "b", agents.Balanced, 1000)
	add(th, "blu", "co", "z", agents.Balanced, 1000)
	g := newGame(t, th)

	m.Tactical.RetreatRecovery = 1
	m.Tactical.Drilling = true
	assert.Equal(t, command.ReasonRetreatRecovery, g.Execute(order("ney", command.Attack, "c")).Reason)
	m.Tactical.RetreatRecovery = 0
	assert.Equal(t, command.ReasonDrilling, g.Execute(order("ney", command.Attack, "c")).Reason)
	m.Tactical.Drilling = false

	g.playerActions = 0
	assert.Equal(t, command.ReasonNotFortified, g.Execute(order("ney", command.Unfortify, "")).Reason)
	assert.Equal(t, command.ReasonNoActionsLeft, g.Execute(order("ney", command.Fortify, "")).Reason)
	assert.False(t, m.Tactical.Fortified)

	g.gameOver = true
	assert.Equal(t, command.ReasonGameOver, g.Execute(order("ghost", command.Wait, "")).Reason)
}

func TestActionChecks(t *testing.T) {
	th := field()
	m := add(th, "ney", "fr", "b", agents.Balanced, 1000)
	add(th, "blu", "co", "z", agents.Balanced, 1000)
	g := newGame(t, th)

	assert.Equal(t, command.ReasonNotAdjacent, g.Execute(order("ney", command.Move, "d")).Reason)
	assert.Equal(t, command.ReasonNoTarget, g.Execute(order("ney", command.Attack, "a")).Reason)
	assert.Equal(t, command.ReasonNoTarget, g.Execute(order("ney", command.Probe, "c")).Reason)
	assert.Equal(t, command.ReasonNoTarget, g.Execute(order("ney", command.Attack, "b")).Reason)
	assert.Equal(t, command.ReasonInvalidStance,
		g.Execute(command.Order{MarshalID: "ney", Kind: command.SetStance, Stance: agents.Stance(9)}).Reason)
	assert.Equal(t, command.ReasonNotAdministrative, g.Execute(order("ney", command.ReturnToField, "")).Reason)
	assert.Equal(t, command.ReasonUnknownAction, g.Execute(order("ney", command.ActionKind(99), "")).Reason)

	require.True(t, g.Execute(order("ney", command.Fortify, "")).Success)
	assert.Equal(t, command.ReasonFortified, g.Execute(order("ney", command.Attack, "c")).Reason)
	assert.Equal(t, command.ReasonFortified, g.Execute(order("ney", command.Drill, "")).Reason)
	assert.True(t, m.Tactical.Fortified)
	assert.Equal(t, 3, g.PlayerActionsLeft())
}

func TestAdministrativeDuty(t *testing.T) {
	th := field()
	m := add(th, "ney", "fr", "a", agents.Balanced, 1000)
	add(th, "blu", "co", "z", agents.Balanced, 1000)
	g := newGame(t, th)

	require.True(t, g.Execute(order("ney", command.Administer, "")).Success)
	assert.True(t, m.Tactical.Administrative)
	assert.Equal(t, command.ReasonAdministrative, g.Execute(order("ney", command.Move, "b")).Reason)
	assert.True(t, g.Execute(order("ney", command.ReturnToField, "")).Success)
	assert.False(t, m.Tactical.Administrative)
}

func TestAttackCapturesUndefendedRegion(t *testing.T) {
	th := field()
	m := add(th, "ney", "fr", "b", agents.Balanced, 1000)
	add(th, "blu", "co", "z", agents.Balanced, 1000)
	g := newGame(t, th)

	res := g.Execute(order("ney", command.Attack, "c"))
	require.True(t, res.Success)
	require.NotNil(t, res.Battle)
	assert.True(t, res.Battle.Captured)
	assert.Equal(t, world.RegionID("c"), m.Location)
	assert.Equal(t, world.FactionID("fr"), th.Map.Get("c").Owner)
	assert.Equal(t, 3, g.PlayerActionsLeft())
	assert.Equal(t, 0, m.IdleTurns)
	assert.True(t, m.ActedThisTurn)
	assert.Equal(t, 1, countEvents(g, CategoryCapture))
}

func TestMoveDoesNotChangeOwnership(t *testing.T) {
	th := field()
	m := add(th, "ney", "fr", "b", agents.Balanced, 1000)
	add(th, "blu", "co", "z", agents.Balanced, 1000)
	g := newGame(t, th)

	require.True(t, g.Execute(order("ney", command.Move, "c")).Success)
	assert.Equal(t, world.RegionID("c"), m.Location)
	assert.Equal(t, world.FactionID("co"), th.Map.Get("c").Owner)
}

func TestProbeNeverAdvances(t *testing.T) {
	th := field()
	m := add(th, "ney", "fr", "b", agents.Balanced, 3000)
	def := add(th, "blu", "co", "c", agents.Balanced, 1000)
	g := newGame(t, th)

	res := g.Execute(order("ney", command.Probe, "c"))
	require.True(t, res.Success)
	assert.Equal(t, command.MsgBattle, res.Message)
	assert.True(t, res.Battle.AttackerWon)
	assert.False(t, res.Battle.Captured)
	assert.Equal(t, world.RegionID("b"), m.Location)
	assert.Equal(t, world.RegionID("c"), def.Location)
	assert.Equal(t, world.FactionID("co"), th.Map.Get("c").Owner)
}

func TestForcedRetreatBothSides(t *testing.T) {
	th := field()
	att := add(th, "ney", "fr", "b", agents.Balanced, 1300)
	att.Morale = 26
	def := add(th, "blu", "co", "c", agents.Balanced, 1000)
	g := newGame(t, th)

	// 1300 against 1000 x 1.2: the attacker wins narrowly, but its own
	// losses push morale under the break point.
	res := g.Execute(order("ney", command.Attack, "c"))
	require.True(t, res.Success)
	assert.True(t, res.Battle.AttackerWon)
	assert.False(t, res.Battle.Captured)

	assert.Equal(t, world.RegionID("d"), def.Location)
	assert.Equal(t, world.RegionID("a"), att.Location)
	assert.Equal(t, agents.ForcedRetreatRecovery, att.Tactical.RetreatRecovery)
	assert.Equal(t, agents.ForcedRetreatRecovery, def.Tactical.RetreatRecovery)
	assert.True(t, att.Tactical.Broken)
	assert.True(t, def.Tactical.Broken)
	assert.Equal(t, world.FactionID("co"), th.Map.Get("c").Owner)
	assert.Equal(t, 2, countEvents(g, CategoryRetreat))
}

func TestWinningAttackAdvancesAndCaptures(t *testing.T) {
	th := field()
	att := add(th, "ney", "fr", "b", agents.Balanced, 3000)
	def := add(th, "blu", "co", "c", agents.Balanced, 1000)
	g := newGame(t, th)

	res := g.Execute(order("ney", command.Attack, "c"))
	require.True(t, res.Success)
	assert.True(t, res.Battle.Captured)
	assert.Equal(t, world.RegionID("c"), att.Location)
	assert.Equal(t, world.RegionID("d"), def.Location)
	assert.Equal(t, world.FactionID("fr"), th.Map.Get("c").Owner)
	assert.True(t, att.AdvancedThisTurn)
}

func TestCountersAdvanceOncePerTurn(t *testing.T) {
	th := field()
	m := add(th, "ney", "fr", "a", agents.Balanced, 1000)
	add(th, "blu", "co", "z", agents.Balanced, 1000)
	m.Tactical.RetreatRecovery = 3
	g := newGame(t, th)

	g.advanceCounters()
	g.advanceCounters()
	assert.Equal(t, 2, m.Tactical.RetreatRecovery)
}

func TestAdvanceTurnRefusesReentry(t *testing.T) {
	th := field()
	add(th, "ney", "fr", "a", agents.Balanced, 1000)
	add(th, "blu", "co", "z", agents.Balanced, 1000)
	g := newGame(t, th)

	g.inTurn = true
	_, err := g.AdvanceTurn()
	assert.ErrorIs(t, err, ErrTurnInProgress)
	assert.Equal(t, 1, g.Turn())
}

func TestMajorObjectionCapPerTurn(t *testing.T) {
	th := field()
	for _, id := range []agents.MarshalID{"m1", "m2", "m3"} {
		add(th, id, "fr", "a", agents.Aggressive, 1000)
	}
	add(th, "blu", "co", "z", agents.Balanced, 1000)
	g := newGame(t, th)

	// Aggressive marshals with nobody to fight resent defending.
	r1 := g.Submit(order("m1", command.Defend, ""))
	r2 := g.Submit(order("m2", command.Defend, ""))
	r3 := g.Submit(order("m3", command.Defend, ""))

	assert.Equal(t, command.MsgObjection, r1.Message)
	assert.Equal(t, command.MsgObjection, r2.Message)
	assert.NotEmpty(t, r1.ObjectionID)
	assert.True(t, r3.Success)
	assert.Equal(t, command.MsgSuccess, r3.Message)

	assert.Equal(t, 2, g.MajorObjectionsThisTurn())
	assert.Len(t, g.PendingObjections(), 2)
	assert.Equal(t, 1, g.PlayerActionsLeft())
}

// objectionGame sets up a cautious marshal facing a stronger enemy, which
// objects to a direct attack.
func objectionGame(t *testing.T) (*Game, *agents.Marshal, command.Result) {
	t.Helper()
	th := field()
	m := add(th, "ney", "fr", "b", agents.Cautious, 1000)
	add(th, "blu", "co", "c", agents.Balanced, 2000)
	g := newGame(t, th)

	res := g.Submit(order("ney", command.Attack, "c"))
	require.Equal(t, command.MsgObjection, res.Message)
	require.Len(t, g.PendingObjections(), 1)
	return g, m, res
}

func TestObjectionAccept(t *testing.T) {
	g, m, res := objectionGame(t)
	p := g.PendingObjections()[0]
	assert.Equal(t, command.Defend, p.Alternative.Kind)
	assert.Equal(t, command.Probe, p.Compromise.Kind)
	assert.Equal(t, world.RegionID("c"), p.Compromise.Target)
	assert.Equal(t, 3, g.PlayerActionsLeft())

	out, err := g.ResolveObjection(res.ObjectionID, negotiation.Accept)
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, agents.StanceDefensive, m.Stance)
	assert.InDelta(t, 73, m.Trust.Value(), 1e-9)
	assert.InDelta(t, 49.5, g.Authority().Level, 1e-9)
	assert.Len(t, g.Vindication(), 1)
	assert.Equal(t, 3, g.PlayerActionsLeft())

	_, err = g.ResolveObjection(res.ObjectionID, negotiation.Accept)
	assert.ErrorIs(t, err, ErrObjectionNotFound)
}

func TestAggressiveDefendWithNoEnemyNearAcceptScouts(t *testing.T) {
	th := field()
	m := add(th, "mur", "fr", "a", agents.Aggressive, 1000)
	add(th, "blu", "co", "z", agents.Balanced, 1000)
	g := newGame(t, th)

	res := g.Submit(order("mur", command.Defend, ""))
	require.Equal(t, command.MsgObjection, res.Message)
	p := g.PendingObjections()[0]
	assert.Equal(t, command.Scout, p.Alternative.Kind)

	out, err := g.ResolveObjection(res.ObjectionID, negotiation.Accept)
	require.NoError(t, err)
	assert.True(t, out.Success, "accepted alternative should execute: %s", out.Detail)
	assert.Equal(t, agents.ScoutPrecisionBonus, m.Tactical.PrecisionBonus)
	assert.InDelta(t, 73, m.Trust.Value(), 1e-9)
	assert.Len(t, g.Vindication(), 1)
	assert.Equal(t, 3, g.PlayerActionsLeft())
}

func TestUnexecutableChoiceLeavesObjectionOpen(t *testing.T) {
	g, m, res := objectionGame(t)
	authority := g.Authority().Level

	// The enemy leaves c, so the compromise probe has nothing to hit.
	blu, _ := g.Theater.Marshal("blu")
	blu.Location = "d"

	out, err := g.ResolveObjection(res.ObjectionID, negotiation.Compromise)
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Equal(t, command.ReasonNoTarget, out.Reason)
	assert.InDelta(t, 70, m.Trust.Value(), 1e-9)
	assert.Equal(t, authority, g.Authority().Level)
	assert.Empty(t, g.Vindication())
	assert.Len(t, g.PendingObjections(), 1)

	out, err = g.ResolveObjection(res.ObjectionID, negotiation.Accept)
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Empty(t, g.PendingObjections())
}

func TestObjectionOverrideJudgedByBattle(t *testing.T) {
	g, m, res := objectionGame(t)

	out, err := g.ResolveObjection(res.ObjectionID, negotiation.Override)
	require.NoError(t, err)
	require.Equal(t, command.MsgBattle, out.Message)
	assert.False(t, out.Battle.AttackerWon)

	// The marshal was right: the overridden attack failed.
	assert.InDelta(t, 65, m.Trust.Value(), 1e-9)
	assert.InDelta(t, 1, m.Vindication, 1e-9)
	assert.InDelta(t, 48, g.Authority().Level, 1e-9)
	assert.Empty(t, g.Vindication())
	assert.Equal(t, 3, g.PlayerActionsLeft())
	assert.Equal(t, 1, countEvents(g, CategoryVindication))
}

func TestObjectionCompromiseConsumedBySameBattle(t *testing.T) {
	g, m, res := objectionGame(t)

	out, err := g.ResolveObjection(res.ObjectionID, negotiation.Compromise)
	require.NoError(t, err)
	assert.Equal(t, command.MsgBattle, out.Message)
	assert.Equal(t, world.RegionID("b"), m.Location)
	assert.InDelta(t, 71, m.Trust.Value(), 1e-9)
	assert.Empty(t, g.Vindication())
}

func TestUnresolvedObjectionsLapse(t *testing.T) {
	g, _, _ := objectionGame(t)

	_, err := g.AdvanceTurn()
	require.NoError(t, err)
	assert.Empty(t, g.PendingObjections())
	assert.Equal(t, 2, g.Turn())
	assert.Equal(t, g.Options().PlayerActions, g.PlayerActionsLeft())
}

func TestAutonomousPhaseRespectsFactionBudget(t *testing.T) {
	th := field()
	add(th, "ney", "fr", "a", agents.Balanced, 1000)
	add(th, "blu", "co", "z", agents.Balanced, 1000)
	add(th, "yor", "co", "z", agents.Balanced, 1000)
	g, err := New(th, Options{Rand: entropy.NewSequence(0.5), FactionBudget: 1})
	require.NoError(t, err)

	sum, err := g.AdvanceTurn()
	require.NoError(t, err)
	assert.Equal(t, 1, sum.AutonomousActions)
	assert.Equal(t, 1, sum.Turn)
}

func TestIdleCounterSettledAtTurnEnd(t *testing.T) {
	th := field()
	busy := add(th, "ney", "fr", "a", agents.Balanced, 1000)
	idle := add(th, "lan", "fr", "a", agents.Balanced, 1000)
	add(th, "blu", "co", "z", agents.Balanced, 1000)
	g := newGame(t, th)

	require.True(t, g.Execute(order("ney", command.Move, "b")).Success)
	_, err := g.AdvanceTurn()
	require.NoError(t, err)
	assert.Equal(t, 0, busy.IdleTurns)
	assert.Equal(t, 1, idle.IdleTurns)
	assert.False(t, busy.ActedThisTurn)
}

func TestVictoryWhenEnemyHasNoTroops(t *testing.T) {
	th := field()
	add(th, "ney", "fr", "a", agents.Balanced, 1000)
	g := newGame(t, th)

	sum, err := g.AdvanceTurn()
	require.NoError(t, err)
	assert.True(t, sum.GameOver)
	assert.Equal(t, world.FactionID("fr"), sum.Winner)
	assert.Equal(t, 1, countEvents(g, CategoryDefeat))

	_, err = g.AdvanceTurn()
	assert.ErrorIs(t, err, ErrGameOver)
	assert.Equal(t, command.ReasonGameOver, g.Submit(order("ney", command.Wait, "")).Reason)
}

func TestCapitalLossDefeatsPlayer(t *testing.T) {
	th := field()
	add(th, "ney", "fr", "b", agents.Balanced, 1000)
	add(th, "blu", "co", "z", agents.Balanced, 1000)
	th.Map.Get("a").Owner = "co"
	g := newGame(t, th)

	sum, err := g.AdvanceTurn()
	require.NoError(t, err)
	assert.True(t, sum.GameOver)
	assert.Equal(t, world.FactionID("co"), sum.Winner)
}

func TestStandingOrderCancelCostsTrust(t *testing.T) {
	th := field()
	m := add(th, "ney", "fr", "a", agents.Balanced, 1000)
	add(th, "blu", "co", "z", agents.Balanced, 1000)
	g := newGame(t, th)

	rep, err := g.IssueStandingOrder(orders.Spec{MarshalID: "ney", Goal: orders.Advance, TargetRegion: "d"})
	require.NoError(t, err)
	assert.Equal(t, "step", rep.Event)
	assert.Equal(t, world.RegionID("b"), m.Location)
	assert.Equal(t, g.Options().PlayerActions, g.PlayerActionsLeft())
	assert.Len(t, g.StandingOrders(), 1)

	rep, err = g.CancelStandingOrder("ney")
	require.NoError(t, err)
	assert.Equal(t, orders.StateCancelled, rep.State)
	assert.InDelta(t, 67, m.Trust.Value(), 1e-9)
	assert.Empty(t, g.StandingOrders())
}

func TestStandingOrderMarshalSkipsPolicy(t *testing.T) {
	th := field()
	m := add(th, "ney", "fr", "a", agents.Balanced, 1000)
	m.Autonomous = true
	blu := add(th, "blu", "co", "z", agents.Balanced, 1000)
	g := newGame(t, th)
	require.True(t, g.autonomous(m))

	_, err := g.IssueStandingOrder(orders.Spec{MarshalID: "ney", Goal: orders.Advance, TargetRegion: "d"})
	require.NoError(t, err)
	assert.False(t, g.autonomous(m))
	assert.True(t, g.autonomous(blu))
}

func TestContactFromAIBattleWaitsForPlayerResponse(t *testing.T) {
	th := field()
	ney := add(th, "ney", "fr", "a", agents.Cautious, 1000)
	add(th, "lan", "fr", "c", agents.Balanced, 500)
	add(th, "blu", "co", "c", agents.Aggressive, 3000)
	g := newGame(t, th)

	_, err := g.IssueStandingOrder(orders.Spec{MarshalID: "ney", Goal: orders.Advance, TargetRegion: "d"})
	require.NoError(t, err)
	require.Equal(t, world.RegionID("b"), ney.Location)

	_, err = g.AdvanceTurn()
	require.NoError(t, err)

	// blu fought lan at c during the AI phase, one region from ney.
	require.Len(t, g.StandingOrders(), 1)
	so := g.StandingOrders()[0]
	require.NotNil(t, so.Interrupt)
	assert.Equal(t, orders.InterruptContact, so.Interrupt.Kind)
	assert.Equal(t, world.RegionID("c"), so.Interrupt.Region)
	assert.False(t, ney.Tactical.Holding, "the cautious default must not apply before the player can answer")
	assert.Equal(t, world.RegionID("b"), ney.Location)

	assert.NoError(t, g.RespondStandingOrder("ney", orders.RespondCancel))
}

func TestOrderConditions(t *testing.T) {
	th := field()
	m := add(th, "ney", "fr", "b", agents.Balanced, 1000)
	add(th, "blu", "co", "c", agents.Balanced, 1000)
	g := newGame(t, th)

	attack := order("ney", command.Attack, "c")
	attack.Condition = "TargetDefended && TargetOdds >= 2"
	res := g.Submit(attack)
	assert.Equal(t, command.ReasonConditionUnmet, res.Reason)
	assert.ErrorIs(t, res.Err(), command.ErrRejected)
	assert.Equal(t, world.RegionID("b"), m.Location)
	assert.Equal(t, 4, g.PlayerActionsLeft())
	assert.Empty(t, g.PendingObjections())

	for _, src := range []string{"Strength +", "Strength", "Nonsense > 1"} {
		o := order("ney", command.Hold, "")
		o.Condition = src
		assert.Equal(t, command.ReasonBadCondition, g.Execute(o).Reason, src)
	}
	assert.False(t, m.Tactical.Holding)

	hold := order("ney", command.Hold, "")
	hold.Condition = `EnemyAdjacent && EnemyDistance == 1 && FriendlyHere == 1000 && Turn == 1`
	res = g.Execute(hold)
	require.True(t, res.Success, res.Detail)
	assert.True(t, m.Tactical.Holding)
	assert.Equal(t, 3, g.PlayerActionsLeft())
}

func TestTrustCrisisReportedOnce(t *testing.T) {
	th := field()
	m := add(th, "ney", "fr", "a", agents.Balanced, 1000)
	add(th, "blu", "co", "z", agents.Balanced, 1000)
	g := newGame(t, th)

	m.Trust.Modify(-60)
	_, err := g.AdvanceTurn()
	require.NoError(t, err)
	_, err = g.AdvanceTurn()
	require.NoError(t, err)
	assert.Equal(t, 1, countEvents(g, CategoryTrustCrisis))
}

func TestSnapshotRoundTrip(t *testing.T) {
	g, _, res := objectionGame(t)
	_, err := g.ResolveObjection(res.ObjectionID, negotiation.Accept)
	require.NoError(t, err)
	th := g.Theater
	add(th, "lan", "fr", "a", agents.Balanced, 500)
	require.True(t, g.Submit(order("lan", command.Defend, "")).Success)
	_, err = g.IssueStandingOrder(orders.Spec{MarshalID: "lan", Goal: orders.HoldPosition, TargetRegion: "a"})
	require.NoError(t, err)

	before, err := json.Marshal(g.Snapshot())
	require.NoError(t, err)

	var snap Snapshot
	require.NoError(t, json.Unmarshal(before, &snap))
	restored, err := Restore(&snap, Options{Rand: entropy.NewSequence(0.5)})
	require.NoError(t, err)

	after, err := json.Marshal(restored.Snapshot())
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
	assert.Equal(t, g.Turn(), restored.Turn())
	assert.Equal(t, g.PlayerActionsLeft(), restored.PlayerActionsLeft())
	assert.Len(t, restored.StandingOrders(), 1)
}

func TestRestoreNilSnapshot(t *testing.T) {
	_, err := Restore(nil, Options{})
	assert.Error(t, err)
}

func TestScenarioIsDeterministic(t *testing.T) {
	play := func() []byte {
		g, err := NewScenario(DefaultScenario(), Options{Seed: 42})
		require.NoError(t, err)
		for i := 0; i < 5 && !g.GameOver(); i++ {
			_, err := g.AdvanceTurn()
			require.NoError(t, err)
		}
		b, err := json.Marshal(g.Snapshot())
		require.NoError(t, err)
		return b
	}
	assert.JSONEq(t, string(play()), string(play()))
}

func TestScenarioLayout(t *testing.T) {
	g, err := NewScenario(DefaultScenario(), Options{Seed: 7})
	require.NoError(t, err)

	th := g.Theater
	require.Len(t, th.Factions(), 2)
	assert.Len(t, th.Marshals(), 6)
	for _, f := range th.Factions() {
		r, ok := th.Region(f.Capital)
		require.True(t, ok)
		assert.Equal(t, f.ID, r.Owner)
		for _, m := range th.MarshalsOf(f.ID) {
			assert.Equal(t, f.Capital, m.Location)
		}
	}
	assert.NotEqual(t, th.Factions()[0].Capital, th.Factions()[1].Capital)

	_, err = NewScenario(Scenario{}, Options{})
	assert.Error(t, err)
}

func TestScenarioPlayerFaction(t *testing.T) {
	sc := DefaultScenario()
	sc.PlayerFaction = "co"
	g, err := NewScenario(sc, Options{Seed: 3})
	require.NoError(t, err)
	p, ok := g.Theater.PlayerFaction()
	require.True(t, ok)
	assert.Equal(t, world.FactionID("co"), p.ID)

	sc.PlayerFaction = NoPlayer
	g, err = NewScenario(sc, Options{Seed: 3})
	require.NoError(t, err)
	_, ok = g.Theater.PlayerFaction()
	assert.False(t, ok)

	sc.PlayerFaction = "xx"
	_, err = NewScenario(sc, Options{Seed: 3})
	assert.Error(t, err)
}
