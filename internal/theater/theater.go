// Package theater is the single owned registry of marshals, regions, and
// factions. Relationships (who occupies a region, who covers whom) are
// answered by query over ids, never stored as back-references.
package theater

import (
	"github.com/talgya/marshals/internal/agents"
	"github.com/talgya/marshals/internal/social"
	"github.com/talgya/marshals/internal/world"
)

// Theater owns all campaign state. The engine's executor is its only writer;
// everything else reads through the query methods.
type Theater struct {
	Map *world.Map

	marshals     map[agents.MarshalID]*agents.Marshal
	marshalOrder []agents.MarshalID

	factions     map[world.FactionID]*social.Faction
	factionOrder []world.FactionID
}

// New creates a theater over a map.
func New(m *world.Map) *Theater {
	return &Theater{
		Map:      m,
		marshals: make(map[agents.MarshalID]*agents.Marshal),
		factions: make(map[world.FactionID]*social.Faction),
	}
}

// AddFaction registers a faction. Re-adding an id replaces it in place.
func (t *Theater) AddFaction(f *social.Faction) {
	if _, ok := t.factions[f.ID]; !ok {
		t.factionOrder = append(t.factionOrder, f.ID)
	}
	t.factions[f.ID] = f
}

// AddMarshal registers a marshal. Re-adding an id replaces it in place.
func (t *Theater) AddMarshal(m *agents.Marshal) {
	if _, ok := t.marshals[m.ID]; !ok {
		t.marshalOrder = append(t.marshalOrder, m.ID)
	}
	t.marshals[m.ID] = m
}

// Marshal looks up a marshal by id.
func (t *Theater) Marshal(id agents.MarshalID) (*agents.Marshal, bool) {
	m, ok := t.marshals[id]
	return m, ok
}

// Marshals returns every marshal in declared order.
func (t *Theater) Marshals() []*agents.Marshal {
	out := make([]*agents.Marshal, 0, len(t.marshalOrder))
	for _, id := range t.marshalOrder {
		out = append(out, t.marshals[id])
	}
	return out
}

// Faction looks up a faction by id.
func (t *Theater) Faction(id world.FactionID) (*social.Faction, bool) {
	f, ok := t.factions[id]
	return f, ok
}

// Factions returns every faction in declared order.
func (t *Theater) Factions() []*social.Faction {
	out := make([]*social.Faction, 0, len(t.factionOrder))
	for _, id := range t.factionOrder {
		out = append(out, t.factions[id])
	}
	return out
}

// PlayerFaction returns the player's faction, if any.
func (t *Theater) PlayerFaction() (*social.Faction, bool) {
	for _, id := range t.factionOrder {
		if f := t.factions[id]; f.Player {
			return f, true
		}
	}
	return nil, false
}

// Region looks up a region by id.
func (t *Theater) Region(id world.RegionID) (*world.Region, bool) {
	r := t.Map.Get(id)
	return r, r != nil
}

// OnField reports whether a marshal is physically present on the map.
// Administrative and destroyed marshals neither block nor cover anyone.
func OnField(m *agents.Marshal) bool {
	return !m.Tactical.Administrative && m.Strength > 0
}

// IsPlayer reports whether a marshal belongs to the player's faction.
func (t *Theater) IsPlayer(m *agents.Marshal) bool {
	f, ok := t.factions[m.Faction]
	return ok && f.Player
}
