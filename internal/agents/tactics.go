// Tactical state transitions. These are the only mutators of Tactical and
// are called by the executor and the turn coordinator, never by the AI.
package agents

// Tactical tuning.
const (
	FortifyPerTurn           = 0.05 // Defense accrued per turn of uninterrupted fortification
	DrillTurns               = 1    // Turns a drill takes to complete
	DrillShockBonus          = 0.20 // One-shot attack bonus granted by a completed drill
	ScoutPrecisionBonus      = 0.15 // One-shot attack bonus granted by scouting
	ForcedRetreatRecovery    = 3    // Recovery turns after a forced retreat
	VoluntaryRetreatRecovery = 2    // Recovery turns after an ordered retreat
	CavalryRestlessLimit     = 3    // Turns cavalry tolerates sitting still
	CavalryRestlessPenalty   = 2.0  // Trust lost when cavalry breaks out on its own
)

// StartFortify digs in. The first turn grants one step of the bonus.
func (m *Marshal) StartFortify() {
	prof := ProfileFor(m.Personality)
	m.Tactical.Fortified = true
	m.Tactical.FortifyBonus = min(FortifyPerTurn, prof.FortifyMax)
}

// AccrueFortify adds one turn of fortification, capped per personality.
func (m *Marshal) AccrueFortify() {
	if !m.Tactical.Fortified {
		return
	}
	prof := ProfileFor(m.Personality)
	m.Tactical.FortifyBonus = min(m.Tactical.FortifyBonus+FortifyPerTurn, prof.FortifyMax)
}

// Unfortify abandons the fortified position and its accrued bonus.
func (m *Marshal) Unfortify() {
	m.Tactical.Fortified = false
	m.Tactical.FortifyBonus = 0
}

// StartDrill begins drilling the troops.
func (m *Marshal) StartDrill() {
	m.Tactical.Drilling = true
	m.Tactical.DrillTurnsLeft = DrillTurns
}

// AdvanceDrill counts down an active drill. Returns true when the drill
// completed this call and the shock bonus is now pending.
func (m *Marshal) AdvanceDrill() bool {
	if !m.Tactical.Drilling {
		return false
	}
	m.Tactical.DrillTurnsLeft--
	if m.Tactical.DrillTurnsLeft > 0 {
		return false
	}
	m.Tactical.Drilling = false
	m.Tactical.DrillTurnsLeft = 0
	m.Tactical.ShockBonus = DrillShockBonus
	return true
}

// ConsumeOneShot clears the one-shot attack bonuses after an engagement has
// read them.
func (m *Marshal) ConsumeOneShot() {
	m.Tactical.ShockBonus = 0
	m.Tactical.PrecisionBonus = 0
}

// EnterRetreat puts the marshal into retreat recovery. Fortification, drill,
// and holding are all lost.
func (m *Marshal) EnterRetreat(recovery int) {
	m.Tactical.RetreatRecovery = max(m.Tactical.RetreatRecovery, recovery)
	m.Tactical.RetreatedThisTurn = true
	m.Tactical.Holding = false
	m.Tactical.Drilling = false
	m.Tactical.DrillTurnsLeft = 0
	m.Unfortify()
}

// DecrementRecovery counts down retreat recovery by one turn.
func (m *Marshal) DecrementRecovery() {
	if m.Tactical.RetreatRecovery > 0 {
		m.Tactical.RetreatRecovery--
	}
}

// ClearTransients resets the single-turn markers.
func (m *Marshal) ClearTransients() {
	m.Tactical.RetreatedThisTurn = false
	m.Tactical.Broken = false
	m.AdvancedThisTurn = false
}

// MarkActive records a productive action. The idle counter resets at once.
func (m *Marshal) MarkActive() {
	m.ActedThisTurn = true
	m.IdleTurns = 0
}

// CloseTurn settles the idle counter for the turn that just ended.
func (m *Marshal) CloseTurn() {
	if m.ActedThisTurn {
		m.IdleTurns = 0
	} else {
		m.IdleTurns++
	}
	m.ActedThisTurn = false
}

// TickRestlessness advances cavalry restlessness. Cavalry left fortified or
// holding for too long breaks out on its own; returns true when that
// auto-correction happened so the caller can apply the trust penalty.
func (m *Marshal) TickRestlessness() bool {
	if !m.Tactical.Cavalry {
		return false
	}
	if !m.Tactical.Fortified && !m.Tactical.Holding {
		m.Tactical.Restlessness = 0
		return false
	}
	m.Tactical.Restlessness++
	if m.Tactical.Restlessness < CavalryRestlessLimit {
		return false
	}
	m.Unfortify()
	m.Tactical.Holding = false
	m.Stance = StanceNeutral
	m.Tactical.Restlessness = 0
	return true
}
