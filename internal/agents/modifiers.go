package agents

// Penalties folded into the modifiers by tactical state.
const (
	ExposedDefensePenalty  = 0.85 // Caught on the move after retreating this turn
	DrillingDefensePenalty = 0.90 // Formations broken up for drill
	BrokenPenalty          = 0.50 // Routed troops fight at half effect
)

// ModifierEngine is the single place attack and defense multipliers are
// computed. Both methods are pure reads of the marshal's current state; the
// one-shot bonuses they include are cleared by the caller (ConsumeOneShot)
// only after both sides of an engagement have been queried.
type ModifierEngine struct{}

// AttackModifier returns the marshal's attack multiplier.
func (ModifierEngine) AttackModifier(m *Marshal) float64 {
	prof := ProfileFor(m.Personality)
	adj := StanceFor(m.Personality, m.Stance)

	mod := prof.BaseAttack*adj.Attack + m.Tactical.ShockBonus + m.Tactical.PrecisionBonus
	if m.Tactical.Broken {
		mod *= BrokenPenalty
	}
	return mod
}

// DefenseModifier returns the marshal's defense multiplier. The fortify bonus
// is additive on defense only.
func (ModifierEngine) DefenseModifier(m *Marshal) float64 {
	prof := ProfileFor(m.Personality)
	adj := StanceFor(m.Personality, m.Stance)

	fortify := 0.0
	if m.Tactical.Fortified {
		fortify = min(m.Tactical.FortifyBonus, prof.FortifyMax)
	}
	mod := prof.BaseDefense*adj.Defense + fortify
	if m.Tactical.RetreatedThisTurn {
		mod *= ExposedDefensePenalty
	}
	if m.Tactical.Drilling {
		mod *= DrillingDefensePenalty
	}
	if m.Tactical.Broken {
		mod *= BrokenPenalty
	}
	return mod
}
