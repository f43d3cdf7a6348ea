// Marshal spawning: creates the starting roster of a generated scenario.
package agents

import (
	"fmt"
	"math/rand"

	"github.com/talgya/marshals/internal/world"
)

var marshalNames = []string{
	"Ney", "Davout", "Lannes", "Murat", "Soult", "Masséna", "Bernadotte", "Berthier",
	"Augereau", "Bessières", "Suchet", "Victor", "Marmont", "Oudinot", "Mortier", "Lefebvre",
	"Blücher", "Kutuzov", "Wellington", "Schwarzenberg", "Bagration", "Barclay", "Gneisenau", "Yorck",
}

// Spawner creates marshals for a scenario.
type Spawner struct {
	rng    *rand.Rand
	nextID int
	used   map[string]bool
}

// NewSpawner creates a marshal spawner with the given seed.
func NewSpawner(seed int64) *Spawner {
	return &Spawner{
		rng:    rand.New(rand.NewSource(seed + 300)),
		nextID: 1,
		used:   make(map[string]bool),
	}
}

// Spawn creates one marshal at a location with the given starting strength.
func (s *Spawner) Spawn(faction world.FactionID, location world.RegionID, strength int) *Marshal {
	id := MarshalID(fmt.Sprintf("m%d", s.nextID))
	s.nextID++

	return &Marshal{
		ID:          id,
		Name:        s.name(),
		Faction:     faction,
		Location:    location,
		Strength:    strength,
		MaxStrength: strength,
		Morale:      80 + s.rng.Float64()*20,
		Personality: Personalities[s.rng.Intn(len(Personalities))],
		Stance:      StanceNeutral,
		Tactical: Tactical{
			Cavalry: s.rng.Float64() < 0.25,
		},
		Trust: NewTrust(DefaultTrust),
	}
}

func (s *Spawner) name() string {
	for attempt := 0; attempt < len(marshalNames)*2; attempt++ {
		n := marshalNames[s.rng.Intn(len(marshalNames))]
		if !s.used[n] {
			s.used[n] = true
			return n
		}
	}
	return fmt.Sprintf("Marshal %d", s.nextID)
}
