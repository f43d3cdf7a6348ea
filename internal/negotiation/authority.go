// Package negotiation implements the give-and-take between the order-giver
// and the marshals: objections, their resolution, the authority the
// order-giver earns from it, and the retrospective vindication of each call.
package negotiation

// Outcome is how a major objection was resolved.
type Outcome string

const (
	Deferred    Outcome = "deferred"    // Order-giver accepted the marshal's alternative
	Overrode    Outcome = "overrode"    // Original order stood
	Compromised Outcome = "compromised" // Middle course taken
)

// Authority tuning.
const (
	AuthorityWindow   = 10
	DefaultAuthority  = 50.0
	MinGainMultiplier = 0.4
)

var levelShift = map[Outcome]float64{
	Overrode:    1.0,
	Compromised: 0.25,
	Deferred:    -0.5,
}

// AuthorityTracker is the order-giver's standing with the officer corps.
// It is explicit state owned by the game and passed to whoever needs it.
// Derived values are recomputed from the window on every call.
type AuthorityTracker struct {
	Level  float64   `json:"level"`
	Window []Outcome `json:"window"`
}

// NewAuthorityTracker creates a tracker at the default level.
func NewAuthorityTracker() *AuthorityTracker {
	return &AuthorityTracker{Level: DefaultAuthority}
}

// Record ingests one resolution outcome.
func (a *AuthorityTracker) Record(o Outcome) {
	a.Window = append(a.Window, o)
	if len(a.Window) > AuthorityWindow {
		a.Window = a.Window[len(a.Window)-AuthorityWindow:]
	}
	a.Adjust(levelShift[o])
}

// Adjust shifts the level, clamped to [0, 100]. Returns the applied delta.
func (a *AuthorityTracker) Adjust(delta float64) float64 {
	before := a.Level
	a.Level = min(100, max(0, a.Level+delta))
	return a.Level - before
}

// DeferRatio is the fraction of the window spent deferring.
func (a *AuthorityTracker) DeferRatio() float64 {
	if len(a.Window) == 0 {
		return 0
	}
	n := 0
	for _, o := range a.Window {
		if o == Deferred {
			n++
		}
	}
	return float64(n) / float64(len(a.Window))
}

// TrustGainMultiplier dampens trust gains for an order-giver who defers too
// often. Neutral until the window holds three outcomes.
func (a *AuthorityTracker) TrustGainMultiplier() float64 {
	r := a.DeferRatio()
	if len(a.Window) < 3 || r <= 0.5 {
		return 1.0
	}
	return max(MinGainMultiplier, 1-0.6*(r-0.5)/0.5)
}

// SeverityModifier scales objection severity: high authority lowers it,
// habitual deferring raises it.
func (a *AuthorityTracker) SeverityModifier() float64 {
	return 1.1 - 0.2*a.Level/100 + 0.1*a.DeferRatio()
}
