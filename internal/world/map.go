package world

import "fmt"

// RegionID is a unique identifier for a region.
type RegionID string

// FactionID identifies the faction owning a region. Empty means neutral.
type FactionID string

// Region is a single territory on the campaign map.
type Region struct {
	ID       RegionID   `json:"id"`
	Name     string     `json:"name"`
	Owner    FactionID  `json:"owner"`
	Adjacent []RegionID `json:"adjacent"`
	Yield    int        `json:"yield"` // Economic yield per turn
	Terrain  Terrain    `json:"terrain"`
	Coord    HexCoord   `json:"coord"`
}

// Map holds the region graph. Regions keep their insertion order, which is
// the declared iteration order used everywhere determinism matters.
type Map struct {
	regions map[RegionID]*Region
	order   []RegionID
}

// NewMap creates an empty map.
func NewMap() *Map {
	return &Map{regions: make(map[RegionID]*Region)}
}

// Add places a region on the map. Adjacency is copied from the region and
// made symmetric with regions already present.
func (m *Map) Add(r *Region) {
	if _, exists := m.regions[r.ID]; !exists {
		m.order = append(m.order, r.ID)
	}
	adj := r.Adjacent
	r.Adjacent = nil
	m.regions[r.ID] = r
	for _, other := range adj {
		m.Connect(r.ID, other)
	}
}

// Connect links two regions in both directions.
func (m *Map) Connect(a, b RegionID) {
	ra, rb := m.regions[a], m.regions[b]
	if ra == nil || rb == nil || a == b {
		return
	}
	if !contains(ra.Adjacent, b) {
		ra.Adjacent = append(ra.Adjacent, b)
	}
	if !contains(rb.Adjacent, a) {
		rb.Adjacent = append(rb.Adjacent, a)
	}
}

// Get returns the region with the given ID, or nil if it does not exist.
func (m *Map) Get(id RegionID) *Region {
	return m.regions[id]
}

// Regions returns all regions in declared order.
func (m *Map) Regions() []*Region {
	out := make([]*Region, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.regions[id])
	}
	return out
}

// Len returns the number of regions.
func (m *Map) Len() int {
	return len(m.order)
}

// Neighbors returns the regions adjacent to id.
func (m *Map) Neighbors(id RegionID) []RegionID {
	r := m.regions[id]
	if r == nil {
		return nil
	}
	return r.Adjacent
}

// Adjacent reports whether two regions share a border.
func (m *Map) Adjacent(a, b RegionID) bool {
	r := m.regions[a]
	return r != nil && contains(r.Adjacent, b)
}

// Distances returns BFS hop counts from id to every reachable region.
func (m *Map) Distances(from RegionID) map[RegionID]int {
	dist := make(map[RegionID]int)
	if m.regions[from] == nil {
		return dist
	}
	dist[from] = 0
	queue := []RegionID{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range m.regions[cur].Adjacent {
			if _, seen := dist[n]; seen {
				continue
			}
			dist[n] = dist[cur] + 1
			queue = append(queue, n)
		}
	}
	return dist
}

// Distance returns the hop count between two regions, or -1 if unreachable.
func (m *Map) Distance(a, b RegionID) int {
	d, ok := m.Distances(a)[b]
	if !ok {
		return -1
	}
	return d
}

// Path returns the shortest route from one region to another, excluding the
// start and including the destination. Regions for which passable returns
// false are never entered, except the destination itself. A nil passable
// allows every region. Returns nil when no route exists or from == to.
func (m *Map) Path(from, to RegionID, passable func(RegionID) bool) []RegionID {
	if from == to || m.regions[from] == nil || m.regions[to] == nil {
		return nil
	}
	prev := map[RegionID]RegionID{from: from}
	queue := []RegionID{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == to {
			break
		}
		for _, n := range m.regions[cur].Adjacent {
			if _, seen := prev[n]; seen {
				continue
			}
			if n != to && passable != nil && !passable(n) {
				continue
			}
			prev[n] = cur
			queue = append(queue, n)
		}
	}
	if _, ok := prev[to]; !ok {
		return nil
	}
	var path []RegionID
	for cur := to; cur != from; cur = prev[cur] {
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// String returns a summary of the map.
func (m *Map) String() string {
	return fmt.Sprintf("Map(regions=%d)", m.Len())
}

func contains(ids []RegionID, id RegionID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
