// Package combat resolves engagements between two marshals and chooses where
// a beaten force falls back to.
package combat

import (
	"log/slog"
	"math"

	"github.com/talgya/marshals/internal/agents"
	"github.com/talgya/marshals/internal/entropy"
	"github.com/talgya/marshals/internal/world"
)

// Combat tuning.
const (
	DefenderBonus    = 1.20 // Applied to the defending side regardless of personality
	JitterLow        = 0.90
	JitterHigh       = 1.10
	MaxLoserLoss     = 0.40
	MinWinnerLoss    = 0.02
	LossPerRatio     = 0.10
	MaxMoraleLoss    = 40.0
	WinnerMoraleGain = 3.0
	MoraleBreakPoint = 25.0 // At or below this a side is forced to retreat
	ProbeFactor      = 0.5  // Probes halve casualties and morale swings
	MaxRatio         = 10.0
	EncirclementLoss = 0.5
)

// Modifiers is the source of attack and defense multipliers.
// agents.ModifierEngine is the only production implementation.
type Modifiers interface {
	AttackModifier(m *agents.Marshal) float64
	DefenseModifier(m *agents.Marshal) float64
}

// Resolver resolves engagements.
type Resolver struct {
	Mods Modifiers
	Rand entropy.Source
}

// NewResolver creates a resolver over the standard modifier engine.
func NewResolver(src entropy.Source) *Resolver {
	return &Resolver{Mods: agents.ModifierEngine{}, Rand: src}
}

// Outcome is the result of one engagement. Casualties and morale have
// already been applied to both marshals when it is returned.
type Outcome struct {
	Probe bool `json:"probe"`

	AttackerPower float64 `json:"attacker_power"`
	DefenderPower float64 `json:"defender_power"`
	Ratio         float64 `json:"ratio"` // Winner power over loser power
	AttackerWon   bool    `json:"attacker_won"`

	AttackerLoss   int     `json:"attacker_loss"`
	DefenderLoss   int     `json:"defender_loss"`
	AttackerMorale float64 `json:"attacker_morale"` // Delta applied
	DefenderMorale float64 `json:"defender_morale"`

	// Forced retreats. Morale at or below the break point forces a retreat
	// whoever won; a defender beaten by a full attack is always dislodged.
	AttackerRetreats bool `json:"attacker_retreats"`
	DefenderRetreats bool `json:"defender_retreats"`
}

// Resolve fights a full attack of att against def standing on terrain.
func (r *Resolver) Resolve(att, def *agents.Marshal, terrain world.Terrain) Outcome {
	return r.resolve(att, def, terrain, false)
}

// ResolveProbe fights a probing attack. The attacker never advances.
func (r *Resolver) ResolveProbe(att, def *agents.Marshal, terrain world.Terrain) Outcome {
	return r.resolve(att, def, terrain, true)
}

func (r *Resolver) resolve(att, def *agents.Marshal, terrain world.Terrain, probe bool) Outcome {
	atkMod := r.Mods.AttackModifier(att)
	defMod := r.Mods.DefenseModifier(def)
	att.ConsumeOneShot()

	out := Outcome{Probe: probe}
	out.AttackerPower = float64(att.Strength) * atkMod * entropy.Uniform(r.Rand, JitterLow, JitterHigh)
	out.DefenderPower = float64(def.Strength) * defMod * terrain.DefenseFactor() * DefenderBonus *
		entropy.Uniform(r.Rand, JitterLow, JitterHigh)

	// Ties go to the defender.
	out.AttackerWon = out.AttackerPower > out.DefenderPower
	winner, loser := def, att
	winP, loseP := out.DefenderPower, out.AttackerPower
	if out.AttackerWon {
		winner, loser = att, def
		winP, loseP = out.AttackerPower, out.DefenderPower
	}
	out.Ratio = powerRatio(winP, loseP)

	loserFrac := math.Min(MaxLoserLoss, LossPerRatio*out.Ratio)
	winnerFrac := math.Max(MinWinnerLoss, LossPerRatio/out.Ratio)
	loserMorale := -math.Min(MaxMoraleLoss, 10+10*out.Ratio)
	winnerMorale := WinnerMoraleGain - 50*winnerFrac
	if probe {
		loserFrac *= ProbeFactor
		winnerFrac *= ProbeFactor
		loserMorale *= ProbeFactor
		winnerMorale *= ProbeFactor
	}

	winnerLoss := winner.ApplyCasualties(int(math.Round(float64(winner.Strength) * winnerFrac)))
	loserLoss := loser.ApplyCasualties(int(math.Round(float64(loser.Strength) * loserFrac)))
	winner.AdjustMorale(winnerMorale)
	loser.AdjustMorale(loserMorale)

	if out.AttackerWon {
		out.AttackerLoss, out.DefenderLoss = winnerLoss, loserLoss
		out.AttackerMorale, out.DefenderMorale = winnerMorale, loserMorale
	} else {
		out.AttackerLoss, out.DefenderLoss = loserLoss, winnerLoss
		out.AttackerMorale, out.DefenderMorale = loserMorale, winnerMorale
	}

	out.AttackerRetreats = att.Morale <= MoraleBreakPoint
	out.DefenderRetreats = def.Morale <= MoraleBreakPoint || (out.AttackerWon && !probe)

	slog.Debug("battle resolved",
		"attacker", att.ID, "defender", def.ID, "probe", probe,
		"attacker_won", out.AttackerWon, "ratio", out.Ratio,
		"attacker_loss", out.AttackerLoss, "defender_loss", out.DefenderLoss)
	return out
}

// Odds projects the attacker-over-defender power ratio without jitter.
// It reads the same modifiers as Resolve but consumes nothing.
func (r *Resolver) Odds(att, def *agents.Marshal, terrain world.Terrain) float64 {
	a := float64(att.Strength) * r.Mods.AttackModifier(att)
	d := float64(def.Strength) * r.Mods.DefenseModifier(def) * terrain.DefenseFactor() * DefenderBonus
	return powerRatio(a, d)
}

func powerRatio(num, den float64) float64 {
	switch {
	case num <= 0 && den <= 0:
		return 1
	case den <= 0:
		return MaxRatio
	}
	return math.Min(num/den, MaxRatio)
}
