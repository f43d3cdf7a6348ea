// Scenario map generation using layered simplex noise.
// Elevation and rainfall fields decide terrain; every land hex becomes a region
// and shares a border with its land neighbours.
package world

import (
	"fmt"
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds map generation parameters.
type GenConfig struct {
	Radius   int     // Hex grid radius (3 gives 37 hexes)
	Seed     int64   // Noise seed
	SeaLevel float64 // Elevation below which a hex is impassable water (0.0–1.0)
	HillLvl  float64 // Elevation threshold for hills
	PeakLvl  float64 // Elevation threshold for mountains
}

// DefaultGenConfig returns a reasonable starting configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Radius:   3,
		Seed:     42,
		SeaLevel: 0.12,
		HillLvl:  0.62,
		PeakLvl:  0.78,
	}
}

var (
	namePrefixes = []string{"Aus", "Bor", "Cal", "Dre", "Eis", "Fri", "Gar", "Hoh", "Ile", "Jen", "Kul", "Lan", "Mar", "Ney", "Ols", "Pra", "Ratis", "Sal", "Tor", "Ulm", "Val", "Wag", "Zna"}
	nameSuffixes = []string{"terlitz", "odino", "dea", "sden", "sling", "edland", "da", "enlinden", "au", "a", "m", "dshut", "engo", "burg", "tein", "ga", "bon", "amanca", "gau", "", "ladolid", "ram", "im"}
)

// Generate creates a region map. Only the largest connected landmass is kept
// so every region is reachable from every other.
func Generate(cfg GenConfig) *Map {
	elevNoise := opensimplex.NewNormalized(cfg.Seed)
	rainNoise := opensimplex.NewNormalized(cfg.Seed + 1)
	rng := rand.New(rand.NewSource(cfg.Seed + 200))

	type cell struct {
		coord   HexCoord
		terrain Terrain
		yield   int
	}
	land := make(map[HexCoord]*cell)
	var order []HexCoord

	for q := -cfg.Radius; q <= cfg.Radius; q++ {
		for r := -cfg.Radius; r <= cfg.Radius; r++ {
			coord := HexCoord{Q: q, R: r}
			if HexDistance(coord, HexCoord{}) > cfg.Radius {
				continue
			}

			// Hex axial → cartesian: x = q + r*0.5, y = r * sqrt(3)/2
			x := float64(q) + float64(r)*0.5
			y := float64(r) * math.Sqrt(3.0) / 2.0

			elev := octaveNoise(elevNoise, x, y, 3, 0.35, 0.5)
			rain := octaveNoise(rainNoise, x, y, 2, 0.30, 0.5)
			if elev < cfg.SeaLevel {
				continue
			}

			land[coord] = &cell{
				coord:   coord,
				terrain: deriveTerrain(elev, rain, cfg),
				yield:   1 + int(math.Round(rain*3)),
			}
			order = append(order, coord)
		}
	}

	keep := largestComponent(land, order)

	m := NewMap()
	used := make(map[string]bool)
	for _, coord := range order {
		if !keep[coord] {
			continue
		}
		c := land[coord]
		m.Add(&Region{
			ID:      regionID(coord),
			Name:    uniqueName(rng, used),
			Yield:   c.yield,
			Terrain: c.terrain,
			Coord:   coord,
		})
	}
	for _, coord := range order {
		if !keep[coord] {
			continue
		}
		for _, n := range coord.Neighbors() {
			if keep[n] {
				m.Connect(regionID(coord), regionID(n))
			}
		}
	}
	return m
}

// regionID derives a stable identifier from the hex coordinate.
func regionID(c HexCoord) RegionID {
	return RegionID(fmt.Sprintf("r%d_%d", c.Q, c.R))
}

// deriveTerrain determines terrain type from environmental parameters.
func deriveTerrain(elev, rain float64, cfg GenConfig) Terrain {
	switch {
	case elev > cfg.PeakLvl:
		return TerrainMountain
	case elev > cfg.HillLvl:
		return TerrainHills
	case rain > 0.7 && elev < 0.3:
		return TerrainMarsh
	case rain > 0.62:
		return TerrainRiver
	case rain > 0.5:
		return TerrainForest
	default:
		return TerrainPlains
	}
}

// largestComponent flood-fills the land cells and returns the biggest group.
func largestComponent[T any](land map[HexCoord]T, order []HexCoord) map[HexCoord]bool {
	seen := make(map[HexCoord]bool)
	var best map[HexCoord]bool
	for _, start := range order {
		if seen[start] {
			continue
		}
		comp := map[HexCoord]bool{start: true}
		seen[start] = true
		queue := []HexCoord{start}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, n := range cur.Neighbors() {
				if _, ok := land[n]; !ok || seen[n] {
					continue
				}
				seen[n] = true
				comp[n] = true
				queue = append(queue, n)
			}
		}
		if len(comp) > len(best) {
			best = comp
		}
	}
	return best
}

func uniqueName(rng *rand.Rand, used map[string]bool) string {
	for attempt := 0; ; attempt++ {
		name := namePrefixes[rng.Intn(len(namePrefixes))] + nameSuffixes[rng.Intn(len(nameSuffixes))]
		if attempt > 20 {
			name = fmt.Sprintf("%s %d", name, attempt)
		}
		if !used[name] {
			used[name] = true
			return name
		}
	}
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
