// Personality profiles: the tuning tables behind every per-personality rule.
// The mechanism reads these tables; their content can be overridden at startup.
package agents

import "sync"

// Profile is the per-personality tuning row.
type Profile struct {
	BaseAttack  float64 // Attack multiplier before stance
	BaseDefense float64 // Defense multiplier before stance
	FortifyMax  float64 // Cap on the accrued fortify bonus

	// AttackThreshold is the minimum power ratio the marshal accepts when
	// choosing to attack on its own initiative.
	AttackThreshold float64

	// PreferredStance is what the marshal drifts to when nothing else is urgent.
	PreferredStance Stance
}

// StanceAdjust multiplies the base attack and defense for a stance.
type StanceAdjust struct {
	Attack  float64
	Defense float64
}

type stanceKey struct {
	p Personality
	s Stance
}

var (
	profileMu sync.RWMutex

	profiles = map[Personality]Profile{
		Aggressive: {BaseAttack: 1.15, BaseDefense: 0.95, FortifyMax: 0.15, AttackThreshold: 0.90, PreferredStance: StanceAggressive},
		Cautious:   {BaseAttack: 0.95, BaseDefense: 1.15, FortifyMax: 0.30, AttackThreshold: 1.40, PreferredStance: StanceDefensive},
		Literal:    {BaseAttack: 1.00, BaseDefense: 1.05, FortifyMax: 0.20, AttackThreshold: 1.15, PreferredStance: StanceNeutral},
		Balanced:   {BaseAttack: 1.00, BaseDefense: 1.00, FortifyMax: 0.20, AttackThreshold: 1.15, PreferredStance: StanceNeutral},
		Loyal:      {BaseAttack: 1.00, BaseDefense: 1.05, FortifyMax: 0.20, AttackThreshold: 1.20, PreferredStance: StanceNeutral},
	}

	// defaultStance applies to personalities without their own row.
	defaultStance = map[Stance]StanceAdjust{
		StanceNeutral:    {Attack: 1.0, Defense: 1.0},
		StanceAggressive: {Attack: 1.10, Defense: 0.90},
		StanceDefensive:  {Attack: 0.90, Defense: 1.15},
	}

	// personalityStance holds the personality-specific stance rows.
	// Aggressive marshals thrive attacking and sulk defending; cautious ones mirror that.
	personalityStance = map[stanceKey]StanceAdjust{
		{Aggressive, StanceAggressive}: {Attack: 1.20, Defense: 0.90},
		{Aggressive, StanceDefensive}:  {Attack: 0.85, Defense: 1.05},
		{Cautious, StanceAggressive}:   {Attack: 1.05, Defense: 0.85},
		{Cautious, StanceDefensive}:    {Attack: 0.90, Defense: 1.25},
	}
)

// ProfileFor returns the tuning row for a personality.
func ProfileFor(p Personality) Profile {
	profileMu.RLock()
	defer profileMu.RUnlock()
	if prof, ok := profiles[p]; ok {
		return prof
	}
	return profiles[Balanced]
}

// StanceFor returns the stance adjustment for a personality.
func StanceFor(p Personality, s Stance) StanceAdjust {
	profileMu.RLock()
	defer profileMu.RUnlock()
	if adj, ok := personalityStance[stanceKey{p, s}]; ok {
		return adj
	}
	return defaultStance[s]
}

// ProfileOverride replaces individual fields of a profile. Zero fields are
// left unchanged.
type ProfileOverride struct {
	BaseAttack      float64
	BaseDefense     float64
	FortifyMax      float64
	AttackThreshold float64
}

// OverrideProfile applies tuning overrides for a personality. Intended for
// startup configuration, before any turn is played.
func OverrideProfile(p Personality, o ProfileOverride) {
	profileMu.Lock()
	defer profileMu.Unlock()
	prof := profiles[p]
	if o.BaseAttack > 0 {
		prof.BaseAttack = o.BaseAttack
	}
	if o.BaseDefense > 0 {
		prof.BaseDefense = o.BaseDefense
	}
	if o.FortifyMax > 0 {
		prof.FortifyMax = o.FortifyMax
	}
	if o.AttackThreshold > 0 {
		prof.AttackThreshold = o.AttackThreshold
	}
	profiles[p] = prof
}
