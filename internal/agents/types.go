// Package agents provides the marshal data model: personality, stance,
// tactical state, trust, and the Modifier Engine that turns them into
// attack and defense multipliers.
package agents

import (
	"strings"

	"github.com/talgya/marshals/internal/world"
)

// MarshalID is a unique identifier for a marshal.
type MarshalID string

// Personality is the closed set of marshal temperaments. Behaviour that
// varies by personality is looked up in tables keyed by this tag.
type Personality uint8

const (
	Balanced   Personality = iota
	Aggressive             // Accepts worse odds, resents defensive orders
	Cautious               // Fortifies, objects to bad attacks
	Literal                // Executes orders to the letter, rarely objects
	Loyal                  // Objects at half the balanced rate
)

// Personalities lists every personality in declared order.
var Personalities = []Personality{Balanced, Aggressive, Cautious, Literal, Loyal}

// String returns the lower-case personality name.
func (p Personality) String() string {
	switch p {
	case Aggressive:
		return "aggressive"
	case Cautious:
		return "cautious"
	case Literal:
		return "literal"
	case Loyal:
		return "loyal"
	default:
		return "balanced"
	}
}

// ParsePersonality maps a name back to its personality.
func ParsePersonality(s string) (Personality, bool) {
	for _, p := range Personalities {
		if strings.EqualFold(p.String(), s) {
			return p, true
		}
	}
	return Balanced, false
}

// Stance is the mutually exclusive attack/defense posture.
type Stance uint8

const (
	StanceNeutral Stance = iota
	StanceAggressive
	StanceDefensive
)

// String returns the lower-case stance name.
func (s Stance) String() string {
	switch s {
	case StanceAggressive:
		return "aggressive"
	case StanceDefensive:
		return "defensive"
	default:
		return "neutral"
	}
}

// ParseStance maps a name back to its stance.
func ParseStance(s string) (Stance, bool) {
	for _, st := range []Stance{StanceNeutral, StanceAggressive, StanceDefensive} {
		if strings.EqualFold(st.String(), s) {
			return st, true
		}
	}
	return StanceNeutral, false
}

// Tactical holds the independent tactical flags and counters. Several are
// legitimately concurrent (fortified and in defensive stance), so they are
// separate fields rather than a single mode.
type Tactical struct {
	Fortified    bool    `json:"fortified"`
	FortifyBonus float64 `json:"fortify_bonus"` // Additive defense, capped per personality

	Drilling       bool    `json:"drilling"`
	DrillTurnsLeft int     `json:"drill_turns_left"`
	ShockBonus     float64 `json:"shock_bonus"`     // One-shot attack bonus from completed drill
	PrecisionBonus float64 `json:"precision_bonus"` // One-shot attack bonus from scouting

	Holding           bool `json:"holding"`
	RetreatRecovery   int  `json:"retreat_recovery"`    // Turns left; blocks offensive actions while > 0
	RetreatedThisTurn bool `json:"retreated_this_turn"` // Exposed after retreat until next turn
	Broken            bool `json:"broken"`              // Routed in battle this turn

	Cavalry      bool `json:"cavalry"`
	Restlessness int  `json:"restlessness"` // Turns cavalry has sat fortified or holding

	Administrative bool `json:"administrative"` // Off the field; strength frozen
}

// Marshal is a commanded unit.
type Marshal struct {
	ID      MarshalID       `json:"id"`
	Name    string          `json:"name"`
	Faction world.FactionID `json:"faction"`

	// Location
	Location world.RegionID `json:"location"`

	// Force
	Strength    int     `json:"strength"`     // Troops
	MaxStrength int     `json:"max_strength"` // Starting troops, basis of the strength floor
	Morale      float64 `json:"morale"`       // 0–100

	// Temperament and posture
	Personality Personality `json:"personality"`
	Stance      Stance      `json:"stance"`
	Tactical    Tactical    `json:"tactical"`

	// Relationship with the order-giver
	Trust       Trust   `json:"trust"`
	Vindication float64 `json:"vindication"` // -5 to +5

	// Autonomy
	Autonomous       bool `json:"autonomous"`         // Player marshal left to its own judgement
	IdleTurns        int  `json:"idle_turns"`         // Consecutive non-productive turns
	AdvancedThisTurn bool `json:"advanced_this_turn"` // Anti-oscillation marker
	ActedThisTurn    bool `json:"acted_this_turn"`    // Took a productive action this turn
}

// Vindication bounds.
const (
	MinVindication = -5.0
	MaxVindication = 5.0
)

// StrengthRatio is current strength as a fraction of starting strength.
func (m *Marshal) StrengthRatio() float64 {
	if m.MaxStrength <= 0 {
		return 0
	}
	return float64(m.Strength) / float64(m.MaxStrength)
}

// InRecovery reports whether the marshal is still recovering from a retreat.
func (m *Marshal) InRecovery() bool {
	return m.Tactical.RetreatRecovery > 0
}

// AdjustVindication shifts the vindication score, clamped to its range.
// Returns the delta actually applied.
func (m *Marshal) AdjustVindication(delta float64) float64 {
	before := m.Vindication
	m.Vindication = clamp(m.Vindication+delta, MinVindication, MaxVindication)
	return m.Vindication - before
}

// AdjustMorale shifts morale, clamped to [0, 100].
func (m *Marshal) AdjustMorale(delta float64) {
	m.Morale = clamp(m.Morale+delta, 0, 100)
}

// ApplyCasualties removes troops, flooring at zero. Administrative marshals
// have their strength frozen. Returns the troops actually lost.
func (m *Marshal) ApplyCasualties(n int) int {
	if n <= 0 || m.Tactical.Administrative {
		return 0
	}
	if n > m.Strength {
		n = m.Strength
	}
	m.Strength -= n
	return n
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
