package photon

import (
	"math"

	"github.com/yafaray-go/renderer/pkg/core"
)

// HashGrid is the progressive-photon-mapping alternative index: a
// uniform grid mapped through a spatial hash to bucket
// lists, cell size equal to the current query radius so the photon
// density the Query radius expects stays roughly one photon per cell.
type HashGrid struct {
	cellSize float64
	buckets  map[int64][]int
	photons  []Photon
	n        int64
}

const (
	hashX = 73856093
	hashY = 19349663
	hashZ = 83492791
)

// NewHashGrid builds the grid over photons with the given cell size.
func NewHashGrid(photons []Photon, cellSize float64) *HashGrid {
	g := &HashGrid{
		cellSize: cellSize,
		buckets:  make(map[int64][]int, len(photons)),
		photons:  photons,
		n:        int64(len(photons)),
	}
	if g.n == 0 {
		g.n = 1
	}
	for i, p := range photons {
		g.insert(p.Position, i)
	}
	return g
}

func (g *HashGrid) cell(p core.Vec3) (int64, int64, int64) {
	inv := 1.0 / g.cellSize
	return int64(math.Floor(p.X * inv)), int64(math.Floor(p.Y * inv)), int64(math.Floor(p.Z * inv))
}

func (g *HashGrid) hash(ix, iy, iz int64) int64 {
	h := (ix*hashX ^ iy*hashY ^ iz*hashZ) % g.n
	if h < 0 {
		h += g.n
	}
	return h
}

func (g *HashGrid) insert(pos core.Vec3, idx int) {
	ix, iy, iz := g.cell(pos)
	key := g.hash(ix, iy, iz)
	g.buckets[key] = append(g.buckets[key], idx)
}

// Gather enumerates every cell covered by [p-r, p+r] and tests each
// bucket member for |p-pos|^2 < r^2.
func (g *HashGrid) Gather(p core.Vec3, r float64) []Photon {
	if g == nil || len(g.photons) == 0 {
		return nil
	}
	r2 := r * r
	loX, loY, loZ := g.cell(p.Subtract(core.NewVec3(r, r, r)))
	hiX, hiY, hiZ := g.cell(p.Add(core.NewVec3(r, r, r)))

	seen := make(map[int]bool)
	var out []Photon
	for ix := loX; ix <= hiX; ix++ {
		for iy := loY; iy <= hiY; iy++ {
			for iz := loZ; iz <= hiZ; iz++ {
				key := g.hash(ix, iy, iz)
				for _, idx := range g.buckets[key] {
					if seen[idx] {
						continue
					}
					seen[idx] = true
					ph := g.photons[idx]
					if ph.Position.Subtract(p).LengthSquared() < r2 {
						out = append(out, ph)
					}
				}
			}
		}
	}
	return out
}

// Len returns the number of photons indexed by the grid.
func (g *HashGrid) Len() int { return len(g.photons) }
