package render

import (
	"math/rand"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/yafaray-go/renderer/pkg/core"
)

// SequenceCache memoizes scrambled-Halton permutation tables per stream
// seed. Building the per-dimension digit permutations is the expensive
// part of starting a sequence, and neighbouring samples of the same pixel
// share a seed, so a small LRU keeps the hot tables around. Each worker
// owns its own cache: the cached sequences carry a mutable dimension
// cursor and must never be shared across goroutines.
type SequenceCache struct {
	cache *lru.Cache[int64, *core.ScrambledHalton]
}

func NewSequenceCache(capacity int) *SequenceCache {
	if capacity <= 0 {
		capacity = 512
	}
	c, err := lru.New[int64, *core.ScrambledHalton](capacity)
	if err != nil {
		panic(err) // only reachable with capacity <= 0
	}
	return &SequenceCache{cache: c}
}

func (sc *SequenceCache) sequence(seed int64) *core.ScrambledHalton {
	if seq, ok := sc.cache.Get(seed); ok {
		return seq
	}
	seq := core.NewScrambledHalton(seed)
	sc.cache.Add(seed, seq)
	return seq
}

// PixelSampler is the per-sample core.Sampler handed to the camera,
// integrator and materials: low-discrepancy dimensions come from the
// scrambled Halton sequence seeded by (pixel, sample, pass), and the
// Rand() escape hatch is a deterministic stream
// derived from the same seed.
type PixelSampler struct {
	seq   *core.ScrambledHalton
	index uint64
	rng   *rand.Rand
}

// ForSample positions a sampler on one (pixel, sampleIndex, pass)
// triple. The same triple always produces the same sample stream.
func (sc *SequenceCache) ForSample(pixelID, sampleIndex, pass int) *PixelSampler {
	seed := core.PixelSeed(pixelID, pass, 0)
	seq := sc.sequence(seed)
	seq.Reset()
	return &PixelSampler{
		seq:   seq,
		index: uint64(sampleIndex + 1), // index 0 is degenerate for Halton
		rng:   rand.New(rand.NewSource(core.PixelSeed(pixelID, pass, sampleIndex))),
	}
}

func (ps *PixelSampler) Get1D() float64 { return ps.seq.Sample1D(ps.index) }

func (ps *PixelSampler) Get2D() core.Vec2 { return ps.seq.Sample2D(ps.index) }

func (ps *PixelSampler) Get3D() core.Vec3 {
	return core.NewVec3(ps.Get1D(), ps.Get1D(), ps.Get1D())
}

func (ps *PixelSampler) Rand() *rand.Rand { return ps.rng }
