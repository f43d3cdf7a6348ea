package engine

import (
	"fmt"

	"github.com/talgya/marshals/internal/agents"
	"github.com/talgya/marshals/internal/negotiation"
	"github.com/talgya/marshals/internal/orders"
	"github.com/talgya/marshals/internal/social"
	"github.com/talgya/marshals/internal/theater"
	"github.com/talgya/marshals/internal/world"
)

// Snapshot is the complete campaign state as plain values. It is what
// persistence stores; every field round-trips through JSON.
type Snapshot struct {
	Turn           int             `json:"turn"`
	Seed           int64           `json:"seed"`
	PlayerActions  int             `json:"player_actions"`
	MajorsThisTurn int             `json:"majors_this_turn"`
	GameOver       bool            `json:"game_over"`
	Winner         world.FactionID `json:"winner,omitempty"`

	Regions  []world.Region   `json:"regions"`
	Factions []social.Faction `json:"factions"`
	Marshals []agents.Marshal `json:"marshals"`

	Authority         negotiation.AuthorityTracker               `json:"authority"`
	ResolutionHistory map[agents.MarshalID][]negotiation.Outcome `json:"resolution_history,omitempty"`
	Vindication       []negotiation.VindicationEntry             `json:"vindication"`
	PendingObjections []negotiation.PendingObjection             `json:"pending_objections"`
	StandingOrders    []orders.StandingOrder                     `json:"standing_orders"`
	Events            []Event                                    `json:"events"`
}

// Snapshot copies the game state out.
func (g *Game) Snapshot() *Snapshot {
	s := &Snapshot{
		Turn:              g.turn,
		Seed:              g.seed,
		PlayerActions:     g.playerActions,
		MajorsThisTurn:    g.objections.MajorsThisTurn(),
		GameOver:          g.gameOver,
		Winner:            g.winner,
		Authority:         *g.authority,
		ResolutionHistory: g.objections.History(),
		Vindication:       g.Vindication(),
		Events:            append([]Event(nil), g.Events...),
	}
	s.Authority.Window = append([]negotiation.Outcome(nil), g.authority.Window...)

	for _, r := range g.Theater.Map.Regions() {
		cp := *r
		cp.Adjacent = append([]world.RegionID(nil), r.Adjacent...)
		s.Regions = append(s.Regions, cp)
	}
	for _, f := range g.Theater.Factions() {
		s.Factions = append(s.Factions, *f)
	}
	for _, m := range g.Theater.Marshals() {
		s.Marshals = append(s.Marshals, *m)
	}
	for _, p := range g.PendingObjections() {
		s.PendingObjections = append(s.PendingObjections, *p)
	}
	for _, so := range g.book.Orders() {
		cp := *so
		cp.Path = append([]world.RegionID(nil), so.Path...)
		if so.Interrupt != nil {
			in := *so.Interrupt
			cp.Interrupt = &in
		}
		s.StandingOrders = append(s.StandingOrders, cp)
	}
	return s
}

// Restore rebuilds a game from a snapshot. The random source is reseeded
// from the saved seed and turn, so a restored game is deterministic but
// does not replay the rolls an uninterrupted game would have made.
func Restore(s *Snapshot, opts Options) (*Game, error) {
	if s == nil {
		return nil, fmt.Errorf("restore game: nil snapshot")
	}

	m := world.NewMap()
	for i := range s.Regions {
		r := s.Regions[i]
		r.Adjacent = append([]world.RegionID(nil), r.Adjacent...)
		m.Add(&r)
	}
	th := theater.New(m)
	for i := range s.Factions {
		f := s.Factions[i]
		th.AddFaction(&f)
	}
	for i := range s.Marshals {
		mm := s.Marshals[i]
		th.AddMarshal(&mm)
	}

	if opts.Rand == nil {
		opts.Seed = s.Seed + int64(s.Turn)
	}
	g, err := New(th, opts)
	if err != nil {
		return nil, fmt.Errorf("restore game: %w", err)
	}
	g.seed = s.Seed
	g.turn = s.Turn
	g.playerActions = s.PlayerActions
	g.gameOver = s.GameOver
	g.winner = s.Winner
	g.Events = append([]Event(nil), s.Events...)

	// New resets faction budgets; the saved values win.
	for i := range s.Factions {
		if f, ok := th.Faction(s.Factions[i].ID); ok {
			f.Budget = s.Factions[i].Budget
		}
	}

	*g.authority = s.Authority
	g.authority.Window = append([]negotiation.Outcome(nil), s.Authority.Window...)
	g.objections.RestoreHistory(s.ResolutionHistory)
	g.objections.RestoreMajors(s.MajorsThisTurn)
	g.vindication.Entries = append([]negotiation.VindicationEntry(nil), s.Vindication...)
	for i := range s.PendingObjections {
		p := s.PendingObjections[i]
		g.pending[p.ID] = &p
	}
	restored := make([]*orders.StandingOrder, 0, len(s.StandingOrders))
	for i := range s.StandingOrders {
		so := s.StandingOrders[i]
		restored = append(restored, &so)
	}
	g.book.Restore(restored)

	g.primeBands()
	return g, nil
}
