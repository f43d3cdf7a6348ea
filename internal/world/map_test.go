package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// line builds a-b-c-d with a spur b-e.
func line() *Map {
	m := NewMap()
	m.Add(&Region{ID: "a"})
	m.Add(&Region{ID: "b", Adjacent: []RegionID{"a"}})
	m.Add(&Region{ID: "c", Adjacent: []RegionID{"b"}})
	m.Add(&Region{ID: "d", Adjacent: []RegionID{"c"}})
	m.Add(&Region{ID: "e", Adjacent: []RegionID{"b"}})
	return m
}

func TestAddMakesAdjacencySymmetric(t *testing.T) {
	m := line()
	assert.True(t, m.Adjacent("a", "b"))
	assert.True(t, m.Adjacent("b", "a"))
	assert.False(t, m.Adjacent("a", "c"))
	assert.Equal(t, []RegionID{"a", "c", "e"}, m.Neighbors("b"))
}

func TestDistance(t *testing.T) {
	m := line()
	assert.Equal(t, 0, m.Distance("a", "a"))
	assert.Equal(t, 3, m.Distance("a", "d"))
	assert.Equal(t, 2, m.Distance("d", "e"))

	m.Add(&Region{ID: "island"})
	assert.Equal(t, -1, m.Distance("a", "island"))
}

func TestPath(t *testing.T) {
	m := line()
	assert.Equal(t, []RegionID{"b", "c", "d"}, m.Path("a", "d", nil))
	assert.Nil(t, m.Path("a", "a", nil))

	// Blocking c leaves no route to d.
	blocked := func(id RegionID) bool { return id != "c" }
	assert.Nil(t, m.Path("a", "d", blocked))

	// The destination itself is always enterable.
	assert.Equal(t, []RegionID{"b", "c"}, m.Path("a", "c", blocked))
}

func TestPathDetour(t *testing.T) {
	m := NewMap()
	m.Add(&Region{ID: "a"})
	m.Add(&Region{ID: "b", Adjacent: []RegionID{"a"}})
	m.Add(&Region{ID: "c", Adjacent: []RegionID{"a"}})
	m.Add(&Region{ID: "d", Adjacent: []RegionID{"b", "c"}})

	assert.Equal(t, []RegionID{"b", "d"}, m.Path("a", "d", nil))
	assert.Equal(t, []RegionID{"c", "d"}, m.Path("a", "d", func(id RegionID) bool { return id != "b" }))
}

func TestGenerateIsDeterministicAndConnected(t *testing.T) {
	cfg := DefaultGenConfig()
	m1 := Generate(cfg)
	m2 := Generate(cfg)

	require.Greater(t, m1.Len(), 3)
	require.Equal(t, m1.Len(), m2.Len())
	for i, r := range m1.Regions() {
		other := m2.Regions()[i]
		assert.Equal(t, r.ID, other.ID)
		assert.Equal(t, r.Name, other.Name)
		assert.Equal(t, r.Terrain, other.Terrain)
	}

	first := m1.Regions()[0].ID
	dist := m1.Distances(first)
	assert.Len(t, dist, m1.Len(), "every region reachable")
}

func TestTerrainDefenseFactor(t *testing.T) {
	assert.Equal(t, 1.0, TerrainPlains.DefenseFactor())
	assert.Greater(t, TerrainMountain.DefenseFactor(), TerrainHills.DefenseFactor())
	assert.Less(t, TerrainMarsh.DefenseFactor(), 1.0)
}
