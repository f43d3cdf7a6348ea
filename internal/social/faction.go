// Factions: the powers contesting the theater.
package social

import "github.com/talgya/marshals/internal/world"

// Faction is a side in the war. Each has a capital whose loss defeats it.
type Faction struct {
	ID      world.FactionID `json:"id"`
	Name    string          `json:"name"`
	Capital world.RegionID  `json:"capital"`

	// Player marks the faction whose orders come from outside the core.
	Player bool `json:"player"`

	// Budget is the autonomous actions this faction may still spend this turn.
	Budget int `json:"budget"`

	Defeated bool `json:"defeated"`
}

var factionNames = []struct {
	id   world.FactionID
	name string
}{
	{"fr", "Grande Armée"},
	{"co", "Coalition"},
	{"pr", "Prussia"},
	{"ru", "Russia"},
	{"es", "Spain"},
	{"se", "Sweden"},
}

// SeedFactions creates n factions. The first is the player's.
// n is clamped to the number of known factions.
func SeedFactions(n int) []*Faction {
	n = max(2, min(n, len(factionNames)))
	out := make([]*Faction, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, &Faction{
			ID:     factionNames[i].id,
			Name:   factionNames[i].name,
			Player: i == 0,
		})
	}
	return out
}

// ResetBudget restores the per-turn autonomous action budget.
func (f *Faction) ResetBudget(budget int) {
	f.Budget = budget
}

// Spend consumes one budgeted action. Returns false when exhausted.
func (f *Faction) Spend() bool {
	if f.Budget <= 0 {
		return false
	}
	f.Budget--
	return true
}
