package core

import "math/rand"

// primeBases supplies the low-discrepancy bases used by the scrambled
// Halton sequence, one per sampling dimension (pixel-x, pixel-y, lens-u,
// lens-v, and successive bounce dimensions).
var primeBases = [...]int{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43}

// ScrambledHalton produces a deterministic low-discrepancy sequence seeded
// by (pixelID, sampleID, pass), so
// re-rendering the same (scene, config, seed) reproduces identical
// samples.
type ScrambledHalton struct {
	scrambles [len(primeBases)][]uint8 // per-dimension digit permutation
	dim       int
}

// NewScrambledHalton builds the per-dimension digit-permutation tables
// (the "scramble") from a seed, so different seeds decorrelate the same
// Halton sequence across pixels or tiles.
func NewScrambledHalton(seed int64) *ScrambledHalton {
	r := rand.New(rand.NewSource(seed))
	sh := &ScrambledHalton{}
	for i, base := range primeBases {
		perm := make([]uint8, base)
		for d := range perm {
			perm[d] = uint8(d)
		}
		r.Shuffle(base, func(a, b int) { perm[a], perm[b] = perm[b], perm[a] })
		sh.scrambles[i] = perm
	}
	return sh
}

// Sample1D returns the scrambled radical inverse of index in the next
// sequence dimension (wrapping after len(primeBases)).
func (sh *ScrambledHalton) Sample1D(index uint64) float64 {
	base := primeBases[sh.dim%len(primeBases)]
	perm := sh.scrambles[sh.dim%len(primeBases)]
	sh.dim++
	return scrambledRadicalInverse(index, base, perm)
}

// Sample2D returns a pair of consecutive scrambled dimensions, convenient
// for lens/pixel (u,v) pairs.
func (sh *ScrambledHalton) Sample2D(index uint64) Vec2 {
	return Vec2{X: sh.Sample1D(index), Y: sh.Sample1D(index)}
}

// Reset rewinds the dimension cursor so the same ScrambledHalton can be
// reused for a fresh sample index.
func (sh *ScrambledHalton) Reset() { sh.dim = 0 }

func scrambledRadicalInverse(index uint64, base int, perm []uint8) float64 {
	invBase := 1.0 / float64(base)
	result := 0.0
	f := invBase
	for index > 0 {
		digit := int(index % uint64(base))
		result += float64(perm[digit]) * f
		index /= uint64(base)
		f *= invBase
	}
	return result
}

// VanDerCorput is the unscrambled base-2 radical inverse, used for the
// pixel-filter jitter dimension where no cross-pixel decorrelation is
// required.
func VanDerCorput(index uint64) float64 {
	bits := index
	bits = (bits << 16) | (bits >> 16)
	bits = ((bits & 0x55555555) << 1) | ((bits & 0xAAAAAAAA) >> 1)
	bits = ((bits & 0x33333333) << 2) | ((bits & 0xCCCCCCCC) >> 2)
	bits = ((bits & 0x0F0F0F0F) << 4) | ((bits & 0xF0F0F0F0) >> 4)
	bits = ((bits & 0x00FF00FF) << 8) | ((bits & 0xFF00FF00) >> 8)
	return float64(bits&0xFFFFFFFF) / float64(1<<32)
}

// PixelSeed derives a deterministic stream seed from (tileID, pass,
// sampleID), so re-rendering is reproducible.
func PixelSeed(tileID, pass, sampleID int) int64 {
	h := uint64(tileID)*2654435761 ^ uint64(pass)*2246822519 ^ uint64(sampleID)*3266489917
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	return int64(h)
}
