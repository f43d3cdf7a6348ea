package agents

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMarshal(p Personality) *Marshal {
	return &Marshal{
		ID:          "m1",
		Strength:    1000,
		MaxStrength: 1000,
		Morale:      80,
		Personality: p,
		Trust:       NewTrust(DefaultTrust),
	}
}

func TestTrustModifyClamps(t *testing.T) {
	tr := NewTrust(95)
	applied := tr.Modify(10)
	assert.InDelta(t, 5.0, applied, 1e-9)
	assert.Equal(t, 100.0, tr.Value())

	applied = tr.Modify(-250)
	assert.InDelta(t, -100.0, applied, 1e-9)
	assert.Equal(t, 0.0, tr.Value())

	assert.Equal(t, 100.0, NewTrust(140).Value())
	assert.Equal(t, 0.0, NewTrust(-3).Value())
}

func TestTrustStaysInRangeUnderAnySequence(t *testing.T) {
	tr := NewTrust(DefaultTrust)
	deltas := []float64{30, 45, -12, -90, -3, 7, 200, -0.5, -1000, 64, 33, 12.5}
	for _, d := range deltas {
		tr.Modify(d)
		require.GreaterOrEqual(t, tr.Value(), MinTrust)
		require.LessOrEqual(t, tr.Value(), MaxTrust)
	}
}

func TestComplianceBreakpoints(t *testing.T) {
	tests := []struct {
		trust  float64
		lo, hi float64
	}{
		{100, 1.0, 1.0},
		{80, 1.0, 1.0},
		{79, 0.90, 0.99},
		{60, 0.90, 0.99},
		{59, 0.70, 0.89},
		{40, 0.70, 0.89},
		{39, 0.40, 0.69},
		{20, 0.40, 0.69},
		{19, 0.20, 0.39},
		{0, 0.20, 0.39},
	}
	for _, tc := range tests {
		got := NewTrust(tc.trust).ComplianceProbability()
		assert.GreaterOrEqual(t, got, tc.lo, "trust %.0f", tc.trust)
		assert.LessOrEqual(t, got, tc.hi, "trust %.0f", tc.trust)
	}
}

func TestComplianceMonotonic(t *testing.T) {
	prev := -1.0
	for v := 0.0; v <= 100; v += 0.25 {
		got := NewTrust(v).ComplianceProbability()
		require.GreaterOrEqual(t, got, prev, "trust %.2f", v)
		prev = got
	}
}

func TestTrustJSONRoundTrip(t *testing.T) {
	m := newMarshal(Balanced)
	m.Trust.Modify(-12.5)
	data, err := json.Marshal(m)
	require.NoError(t, err)

	var back Marshal
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, 57.5, back.Trust.Value())

	var clamped Trust
	require.NoError(t, json.Unmarshal([]byte("180"), &clamped))
	assert.Equal(t, 100.0, clamped.Value())
}

func TestModifiersByPersonalityAndStance(t *testing.T) {
	var eng ModifierEngine

	agg := newMarshal(Aggressive)
	agg.Stance = StanceAggressive
	assert.InDelta(t, 1.15*1.20, eng.AttackModifier(agg), 1e-9)
	agg.Stance = StanceDefensive
	assert.InDelta(t, 1.15*0.85, eng.AttackModifier(agg), 1e-9)

	cau := newMarshal(Cautious)
	cau.Stance = StanceDefensive
	assert.InDelta(t, 1.15*1.25, eng.DefenseModifier(cau), 1e-9)
	cau.Stance = StanceAggressive
	assert.InDelta(t, 1.15*0.85, eng.DefenseModifier(cau), 1e-9)

	bal := newMarshal(Balanced)
	bal.Stance = StanceAggressive
	assert.InDelta(t, 1.10, eng.AttackModifier(bal), 1e-9)
	assert.InDelta(t, 0.90, eng.DefenseModifier(bal), 1e-9)
}

func TestModifierQueriesDoNotClearBonuses(t *testing.T) {
	var eng ModifierEngine
	m := newMarshal(Balanced)
	m.Tactical.ShockBonus = DrillShockBonus
	m.Tactical.PrecisionBonus = ScoutPrecisionBonus

	first := eng.AttackModifier(m)
	second := eng.AttackModifier(m)
	assert.Equal(t, first, second)
	assert.InDelta(t, 1.0+DrillShockBonus+ScoutPrecisionBonus, first, 1e-9)

	m.ConsumeOneShot()
	assert.InDelta(t, 1.0, eng.AttackModifier(m), 1e-9)
}

func TestFortifyAccruesToPersonalityCap(t *testing.T) {
	var eng ModifierEngine
	m := newMarshal(Aggressive)
	m.StartFortify()
	assert.InDelta(t, 0.95+0.05, eng.DefenseModifier(m), 1e-9)

	for i := 0; i < 10; i++ {
		m.AccrueFortify()
	}
	assert.InDelta(t, 0.15, m.Tactical.FortifyBonus, 1e-9)
	assert.InDelta(t, 0.95+0.15, eng.DefenseModifier(m), 1e-9)
	// Fortification is defense only.
	assert.InDelta(t, 1.15, eng.AttackModifier(m), 1e-9)

	c := newMarshal(Cautious)
	c.StartFortify()
	for i := 0; i < 10; i++ {
		c.AccrueFortify()
	}
	assert.InDelta(t, 0.30, c.Tactical.FortifyBonus, 1e-9)
}

func TestStatePenalties(t *testing.T) {
	var eng ModifierEngine
	m := newMarshal(Balanced)
	m.Tactical.RetreatedThisTurn = true
	assert.InDelta(t, ExposedDefensePenalty, eng.DefenseModifier(m), 1e-9)

	m.ClearTransients()
	m.StartDrill()
	assert.InDelta(t, DrillingDefensePenalty, eng.DefenseModifier(m), 1e-9)

	m.Tactical.Drilling = false
	m.Tactical.Broken = true
	assert.InDelta(t, BrokenPenalty, eng.AttackModifier(m), 1e-9)
}

func TestDrillCompletesIntoShock(t *testing.T) {
	m := newMarshal(Aggressive)
	m.StartDrill()
	assert.True(t, m.AdvanceDrill())
	assert.False(t, m.Tactical.Drilling)
	assert.Equal(t, DrillShockBonus, m.Tactical.ShockBonus)
	assert.False(t, m.AdvanceDrill())
}

func TestEnterRetreatClearsPositions(t *testing.T) {
	m := newMarshal(Cautious)
	m.StartFortify()
	m.Tactical.Holding = true
	m.EnterRetreat(ForcedRetreatRecovery)

	assert.False(t, m.Tactical.Fortified)
	assert.Zero(t, m.Tactical.FortifyBonus)
	assert.False(t, m.Tactical.Holding)
	assert.True(t, m.Tactical.RetreatedThisTurn)
	assert.Equal(t, ForcedRetreatRecovery, m.Tactical.RetreatRecovery)

	// A shorter recovery never shortens an existing one.
	m.EnterRetreat(VoluntaryRetreatRecovery)
	assert.Equal(t, ForcedRetreatRecovery, m.Tactical.RetreatRecovery)
}

func TestCavalryRestlessness(t *testing.T) {
	m := newMarshal(Balanced)
	m.Tactical.Cavalry = true
	m.Stance = StanceDefensive
	m.StartFortify()

	assert.False(t, m.TickRestlessness())
	assert.False(t, m.TickRestlessness())
	assert.True(t, m.TickRestlessness())
	assert.False(t, m.Tactical.Fortified)
	assert.Equal(t, StanceNeutral, m.Stance)
	assert.Zero(t, m.Tactical.Restlessness)

	infantry := newMarshal(Balanced)
	infantry.StartFortify()
	for i := 0; i < 5; i++ {
		assert.False(t, infantry.TickRestlessness())
	}
}

func TestCasualtiesAndMoraleNeverNegative(t *testing.T) {
	m := newMarshal(Balanced)
	lost := m.ApplyCasualties(5000)
	assert.Equal(t, 1000, lost)
	assert.Zero(t, m.Strength)

	m.AdjustMorale(-500)
	assert.Zero(t, m.Morale)
	m.AdjustMorale(500)
	assert.Equal(t, 100.0, m.Morale)

	admin := newMarshal(Balanced)
	admin.Tactical.Administrative = true
	assert.Zero(t, admin.ApplyCasualties(300))
	assert.Equal(t, 1000, admin.Strength)
}

func TestVindicationClamped(t *testing.T) {
	m := newMarshal(Balanced)
	for i := 0; i < 8; i++ {
		m.AdjustVindication(1)
	}
	assert.Equal(t, MaxVindication, m.Vindication)
	applied := m.AdjustVindication(-20)
	assert.InDelta(t, -10.0, applied, 1e-9)
	assert.Equal(t, MinVindication, m.Vindication)
}

func TestOverrideProfile(t *testing.T) {
	before := ProfileFor(Loyal)
	t.Cleanup(func() {
		OverrideProfile(Loyal, ProfileOverride{
			BaseAttack:      before.BaseAttack,
			BaseDefense:     before.BaseDefense,
			FortifyMax:      before.FortifyMax,
			AttackThreshold: before.AttackThreshold,
		})
	})

	OverrideProfile(Loyal, ProfileOverride{AttackThreshold: 1.05})
	got := ProfileFor(Loyal)
	assert.Equal(t, 1.05, got.AttackThreshold)
	assert.Equal(t, before.BaseAttack, got.BaseAttack)
}

func TestParse(t *testing.T) {
	p, ok := ParsePersonality("Cautious")
	assert.True(t, ok)
	assert.Equal(t, Cautious, p)
	_, ok = ParsePersonality("reckless")
	assert.False(t, ok)

	s, ok := ParseStance("defensive")
	assert.True(t, ok)
	assert.Equal(t, StanceDefensive, s)
}

func TestSpawnerDeterministic(t *testing.T) {
	a := NewSpawner(9).Spawn("fr", "r0_0", 20000)
	b := NewSpawner(9).Spawn("fr", "r0_0", 20000)
	assert.Equal(t, a.Name, b.Name)
	assert.Equal(t, a.Personality, b.Personality)
	assert.Equal(t, MarshalID("m1"), a.ID)
	assert.Equal(t, DefaultTrust, a.Trust.Value())
	assert.Equal(t, 20000, a.MaxStrength)
}

func TestIdleCounter(t *testing.T) {
	m := newMarshal(Balanced)
	m.CloseTurn()
	m.CloseTurn()
	assert.Equal(t, 2, m.IdleTurns)

	m.MarkActive()
	assert.Zero(t, m.IdleTurns)
	m.ClearTransients()
	assert.True(t, m.ActedThisTurn, "activity survives the transient reset")
	m.CloseTurn()
	assert.Zero(t, m.IdleTurns)
	assert.False(t, m.ActedThisTurn)
}
