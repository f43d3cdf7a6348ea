package negotiation

import (
	"log/slog"

	"github.com/talgya/marshals/internal/agents"
)

// VindicationTTL is how many turns an entry waits for a battle before it
// expires unjudged.
const VindicationTTL = 3

// Vindication effects.
const (
	VindicatedTrustGain = 3.0
	AuthoritySwing      = 3.0
)

// VindicationEntry records one objection resolution awaiting judgement by
// the marshal's next battle.
type VindicationEntry struct {
	ID        string           `json:"id"`
	MarshalID agents.MarshalID `json:"marshal_id"`
	Outcome   Outcome          `json:"outcome"`
	Turn      int              `json:"turn"`
}

// Tracker holds the live vindication entries in creation order.
type Tracker struct {
	Entries []VindicationEntry `json:"entries"`
}

// Track adds an entry.
func (t *Tracker) Track(e VindicationEntry) {
	t.Entries = append(t.Entries, e)
}

// Judgement is what a battle did to a consumed entry.
type Judgement struct {
	Entry          VindicationEntry
	TrustDelta     float64
	VindDelta      float64
	AuthorityDelta float64
}

// OnBattle judges the oldest live entry for the marshal against the battle
// result and consumes it. Returns false when the marshal had no entry.
func (t *Tracker) OnBattle(m *agents.Marshal, won bool, auth *AuthorityTracker) (Judgement, bool) {
	idx := -1
	for i, e := range t.Entries {
		if e.MarshalID == m.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Judgement{}, false
	}
	e := t.Entries[idx]
	t.Entries = append(t.Entries[:idx], t.Entries[idx+1:]...)

	j := Judgement{Entry: e}
	switch {
	case e.Outcome == Deferred && won:
		j.TrustDelta = m.Trust.Modify(VindicatedTrustGain * auth.TrustGainMultiplier())
		j.VindDelta = m.AdjustVindication(1)
	case e.Outcome == Deferred:
		j.VindDelta = m.AdjustVindication(-1)
	case e.Outcome == Overrode && won:
		j.AuthorityDelta = auth.Adjust(AuthoritySwing)
		j.VindDelta = m.AdjustVindication(-1)
	case e.Outcome == Overrode:
		j.VindDelta = m.AdjustVindication(1)
		j.AuthorityDelta = auth.Adjust(-AuthoritySwing)
	case e.Outcome == Compromised && won:
		j.TrustDelta = m.Trust.Modify(1)
	}

	slog.Debug("vindication judged", "marshal", m.ID, "outcome", e.Outcome, "won", won,
		"trust_delta", j.TrustDelta, "vindication_delta", j.VindDelta, "authority_delta", j.AuthorityDelta)
	return j, true
}

// Expire drops entries older than the TTL. Returns how many were dropped.
func (t *Tracker) Expire(turn int) int {
	kept := t.Entries[:0]
	dropped := 0
	for _, e := range t.Entries {
		if turn-e.Turn > VindicationTTL {
			dropped++
			continue
		}
		kept = append(kept, e)
	}
	t.Entries = kept
	return dropped
}

// Len returns the number of live entries.
func (t *Tracker) Len() int {
	return len(t.Entries)
}
