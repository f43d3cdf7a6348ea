// Scenario setup: a generated map divided between seeded factions, each
// fielding marshals at its capital.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/marshals/internal/agents"
	"github.com/talgya/marshals/internal/social"
	"github.com/talgya/marshals/internal/theater"
	"github.com/talgya/marshals/internal/world"
)

// Scenario describes a generated campaign.
type Scenario struct {
	Radius             int // Hex radius of the generated map
	Factions           int
	MarshalsPerFaction int
	BaseStrength       int // Troops of each faction's first marshal

	// PlayerFaction picks the player's side. Empty keeps the first faction;
	// NoPlayer leaves every faction to the decision policy.
	PlayerFaction world.FactionID
}

// NoPlayer as a scenario's player faction runs an all-autonomous campaign.
const NoPlayer world.FactionID = "none"

// DefaultScenario returns a small two-faction campaign.
func DefaultScenario() Scenario {
	return Scenario{Radius: 3, Factions: 2, MarshalsPerFaction: 3, BaseStrength: 20000}
}

// NewScenario generates a map, divides it between the factions, fields
// their marshals, and creates the game.
func NewScenario(sc Scenario, opts Options) (*Game, error) {
	if sc.Radius <= 0 || sc.MarshalsPerFaction <= 0 || sc.BaseStrength <= 0 {
		return nil, fmt.Errorf("new scenario: invalid scenario %+v", sc)
	}

	gen := world.DefaultGenConfig()
	gen.Radius = sc.Radius
	if opts.Seed != 0 {
		gen.Seed = opts.Seed
	}
	m := world.Generate(gen)

	factions := social.SeedFactions(sc.Factions)
	if sc.PlayerFaction != "" {
		found := sc.PlayerFaction == NoPlayer
		for _, f := range factions {
			f.Player = f.ID == sc.PlayerFaction
			found = found || f.Player
		}
		if !found {
			return nil, fmt.Errorf("new scenario: unknown player faction %q", sc.PlayerFaction)
		}
	}
	if m.Len() < len(factions) {
		return nil, fmt.Errorf("new scenario: map has %d regions for %d factions", m.Len(), len(factions))
	}
	placeCapitals(m, factions)
	divideTerritory(m, factions)

	th := theater.New(m)
	for _, f := range factions {
		th.AddFaction(f)
	}

	spawner := agents.NewSpawner(gen.Seed)
	for _, f := range factions {
		for i := 0; i < sc.MarshalsPerFaction; i++ {
			strength := sc.BaseStrength - i*sc.BaseStrength/10
			th.AddMarshal(spawner.Spawn(f.ID, f.Capital, strength))
		}
	}

	slog.Info("scenario generated", "regions", m.Len(), "factions", len(factions),
		"marshals", len(th.Marshals()), "map_seed", gen.Seed)
	return New(th, opts)
}

// placeCapitals puts the first capital in the first region and each later
// one as far as possible from those already placed.
func placeCapitals(m *world.Map, factions []*social.Faction) {
	regions := m.Regions()
	var placed []world.RegionID
	for i, f := range factions {
		if i == 0 {
			f.Capital = regions[0].ID
			placed = append(placed, f.Capital)
			continue
		}
		best, bestDist := world.RegionID(""), -1
		for _, r := range regions {
			d := nearest(m, r.ID, placed)
			if d > bestDist {
				best, bestDist = r.ID, d
			}
		}
		f.Capital = best
		placed = append(placed, best)
	}
}

// divideTerritory gives every region to the faction whose capital is
// strictly closest. Equidistant regions stay neutral.
func divideTerritory(m *world.Map, factions []*social.Faction) {
	dists := make([]map[world.RegionID]int, len(factions))
	for i, f := range factions {
		dists[i] = m.Distances(f.Capital)
	}
	for _, r := range m.Regions() {
		owner, best, tied := world.FactionID(""), -1, false
		for i, f := range factions {
			d, ok := dists[i][r.ID]
			if !ok {
				continue
			}
			switch {
			case best < 0 || d < best:
				owner, best, tied = f.ID, d, false
			case d == best:
				tied = true
			}
		}
		if !tied {
			r.Owner = owner
		}
	}
}

func nearest(m *world.Map, id world.RegionID, from []world.RegionID) int {
	best := -1
	for _, f := range from {
		d := m.Distance(f, id)
		if d >= 0 && (best < 0 || d < best) {
			best = d
		}
	}
	return best
}
