package policy

import "strings"

// Env is what rule conditions see. Every field is recomputed for each
// invocation; nothing is memoized across turns beyond the marshal's own
// counters.
type Env struct {
	Personality string
	Stance      string
	Preferred   string // Stance the personality drifts to

	StrengthRatio    float64
	Morale           float64
	InRecovery       bool
	Administrative   bool
	Fortified        bool
	Drilling         bool
	Holding          bool
	ShockReady       bool
	IdleTurns        int
	AdvancedThisTurn bool

	EnemyHere             bool
	EnemyAdjacent         bool
	StrongerEnemyAdjacent bool
	CanRetreat            bool
	FriendlyTerritory     bool

	HereOdds  float64 // Odds against enemies sharing the region
	BestOdds  float64 // Best odds against an adjacent defended region
	Threshold float64 // Attack threshold after idle escalation

	HasCombatTarget  bool
	UndefendedTarget bool
	AllyNeedsSupport bool
	CanRally         bool
	CanAdvance       bool
	CanFallBack      bool
}

// Is reports whether the marshal has the named personality.
func (e Env) Is(personality string) bool {
	return strings.EqualFold(e.Personality, personality)
}

// InStance reports whether the marshal holds the named stance.
func (e Env) InStance(stance string) bool {
	return strings.EqualFold(e.Stance, stance)
}

// OddsClear reports whether the best adjacent target meets the threshold.
func (e Env) OddsClear() bool {
	return e.HasCombatTarget && e.BestOdds >= e.Threshold
}

// Weak reports whether the marshal is below the strength floor.
func (e Env) Weak() bool {
	return e.StrengthRatio < StrengthFloor
}
