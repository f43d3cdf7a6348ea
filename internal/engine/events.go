package engine

import (
	"fmt"
	"log/slog"
)

// Event is a notable occurrence in the campaign.
type Event struct {
	Turn        int    `json:"turn"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// Event categories.
const (
	CategoryBattle        = "battle"
	CategoryCapture       = "capture"
	CategoryRetreat       = "retreat"
	CategoryObjection     = "objection"
	CategoryVindication   = "vindication"
	CategoryStandingOrder = "standing_order"
	CategoryTactics       = "tactics"
	CategoryTrustCrisis   = "trust_crisis"
	CategoryTrustHigh     = "trust_high"
	CategoryAuthorityLow  = "authority_low"
	CategoryAuthorityHigh = "authority_high"
	CategoryDefeat        = "defeat"
	CategoryVictory       = "victory"
)

const maxEvents = 1000

func (g *Game) record(category, format string, args ...any) {
	e := Event{Turn: g.turn, Description: fmt.Sprintf(format, args...), Category: category}
	g.Events = append(g.Events, e)
	if len(g.Events) > maxEvents {
		g.Events = g.Events[len(g.Events)-maxEvents:]
	}
	slog.Debug("event", "turn", e.Turn, "category", e.Category, "description", e.Description)
}

// EventsSince returns the events recorded at or after turn.
func (g *Game) EventsSince(turn int) []Event {
	i := len(g.Events)
	for i > 0 && g.Events[i-1].Turn >= turn {
		i--
	}
	return append([]Event(nil), g.Events[i:]...)
}
