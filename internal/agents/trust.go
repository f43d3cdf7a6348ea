package agents

import "encoding/json"

// Trust bounds and the starting value for new marshals.
const (
	MinTrust     = 0.0
	MaxTrust     = 100.0
	DefaultTrust = 70.0
)

// Trust is a marshal's willingness to comply without objection.
// Every mutation clamps to [0, 100].
type Trust struct {
	value float64
}

// NewTrust creates a trust scalar, clamped to range.
func NewTrust(v float64) Trust {
	return Trust{value: clamp(v, MinTrust, MaxTrust)}
}

// Value returns the current trust.
func (t Trust) Value() float64 {
	return t.value
}

// Modify shifts trust by delta and returns the delta actually applied,
// which is smaller than requested near a bound.
func (t *Trust) Modify(delta float64) float64 {
	before := t.value
	t.value = clamp(t.value+delta, MinTrust, MaxTrust)
	return t.value - before
}

// ComplianceProbability is the non-linear compliance curve. Below 80 trust
// never drives compliance to zero or to certainty.
//
//	>= 80     100%
//	60–79     90–99%
//	40–59     70–89%
//	20–39     40–69%
//	< 20      20–39%
func (t Trust) ComplianceProbability() float64 {
	v := t.value
	switch {
	case v >= 80:
		return 1.0
	case v >= 60:
		return 0.90 + 0.09*(v-60)/20
	case v >= 40:
		return 0.70 + 0.19*(v-40)/20
	case v >= 20:
		return 0.40 + 0.29*(v-20)/20
	default:
		return 0.20 + 0.19*v/20
	}
}

// MarshalJSON encodes trust as a bare number.
func (t Trust) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.value)
}

// UnmarshalJSON decodes a bare number, clamping it to range.
func (t *Trust) UnmarshalJSON(data []byte) error {
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	t.value = clamp(v, MinTrust, MaxTrust)
	return nil
}
