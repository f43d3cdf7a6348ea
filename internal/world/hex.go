// Package world provides regions, terrain, and the adjacency graph the campaign
// is fought over. Generated scenarios lay regions out on a hex grid using
// axial coordinates (q, r); the graph itself is what the rest of the core reads.
package world

// HexCoord represents a position on the hex grid using axial coordinates.
// The third cube coordinate s is derived: s = -q - r.
type HexCoord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// S returns the implicit third cube coordinate.
func (h HexCoord) S() int {
	return -h.Q - h.R
}

// HexNeighborDirections defines the six neighbor offsets in axial coordinates.
var HexNeighborDirections = [6]HexCoord{
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
	{Q: 0, R: 1},
}

// Neighbors returns the six adjacent hex coordinates.
func (h HexCoord) Neighbors() [6]HexCoord {
	var result [6]HexCoord
	for i, dir := range HexNeighborDirections {
		result[i] = HexCoord{Q: h.Q + dir.Q, R: h.R + dir.R}
	}
	return result
}

// HexDistance returns the hex distance between two coordinates.
func HexDistance(a, b HexCoord) int {
	dq := abs(a.Q - b.Q)
	dr := abs(a.R - b.R)
	ds := abs(a.S() - b.S())
	// Max of the three absolute differences in cube coordinates.
	return max(dq, dr, ds)
}

// Terrain types for regions.
type Terrain uint8

const (
	TerrainPlains   Terrain = iota // Open ground, no defensive value
	TerrainForest                  // Cover for the defender
	TerrainHills                   // High ground
	TerrainMountain                // Passes and strongholds
	TerrainRiver                   // Crossings favour the defender
	TerrainMarsh                   // Bogs down the defender
)

// DefenseFactor is the multiplier applied to the defending side's power.
func (t Terrain) DefenseFactor() float64 {
	switch t {
	case TerrainForest:
		return 1.10
	case TerrainHills:
		return 1.20
	case TerrainMountain:
		return 1.30
	case TerrainRiver:
		return 1.15
	case TerrainMarsh:
		return 0.90
	default:
		return 1.0
	}
}

// String returns a human-readable name for a terrain type.
func (t Terrain) String() string {
	switch t {
	case TerrainPlains:
		return "Plains"
	case TerrainForest:
		return "Forest"
	case TerrainHills:
		return "Hills"
	case TerrainMountain:
		return "Mountain"
	case TerrainRiver:
		return "River"
	case TerrainMarsh:
		return "Marsh"
	default:
		return "Unknown"
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
