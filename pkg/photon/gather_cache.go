package photon

import (
	"fmt"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/yafaray-go/renderer/pkg/core"
)

// GatherCache memoizes final-gather irradiance results by a quantized
// (position, normal) cluster key, an irradiance-cache-style shortcut over
// straight per-point final gather. It is ambient
// efficiency plumbing for the final-gather path, not a new estimator: a
// cache miss always falls through to the caller's own gather.
type GatherCache struct {
	cache    *lru.Cache[string, core.Vec3]
	cellSize float64
}

// NewGatherCache builds a cache with the given entry capacity and spatial
// quantization cell size (smaller cells trade cache-hit rate for fidelity
// to the true per-point irradiance).
func NewGatherCache(capacity int, cellSize float64) *GatherCache {
	c, err := lru.New[string, core.Vec3](capacity)
	if err != nil {
		// Only returns an error for capacity <= 0, which is a caller bug.
		panic(err)
	}
	if cellSize <= 0 {
		cellSize = 1
	}
	return &GatherCache{cache: c, cellSize: cellSize}
}

func (g *GatherCache) key(p, n core.Vec3) string {
	q := func(x float64) int64 { return int64(math.Floor(x / g.cellSize)) }
	// Normal bucketed coarsely (8 steps per axis) since final-gather
	// irradiance varies slowly with orientation near a shared cluster.
	nq := func(x float64) int64 { return int64(math.Round(x * 8)) }
	return fmt.Sprintf("%d,%d,%d|%d,%d,%d", q(p.X), q(p.Y), q(p.Z), nq(n.X), nq(n.Y), nq(n.Z))
}

// Lookup returns a memoized irradiance estimate for the cluster containing
// (p, n), if one exists.
func (g *GatherCache) Lookup(p, n core.Vec3) (core.Vec3, bool) {
	return g.cache.Get(g.key(p, n))
}

// Store records a freshly computed final-gather irradiance estimate for
// the cluster containing (p, n).
func (g *GatherCache) Store(p, n core.Vec3, irradiance core.Vec3) {
	g.cache.Add(g.key(p, n), irradiance)
}

// Len returns the number of cached clusters.
func (g *GatherCache) Len() int { return g.cache.Len() }
