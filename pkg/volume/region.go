// Package volume implements volumetric media: AABB-bounded density
// regions plus the emission and
// single-scatter volume integrators that ray-march through them.
package volume

import "github.com/yafaray-go/renderer/pkg/core"

// Region is one participating-medium volume: an AABB-bounded extinction
// and scattering field. Intersect
// returns the entry/exit parametric distances along ray, clipped to the
// region's bounds; the coefficient queries are evaluated at a world
// point only. No coefficient depends on direction: anisotropy enters
// solely through Asymmetry's phase-function parameter.
type Region interface {
	Bounds() core.AABB
	Intersect(ray core.Ray) (t0, t1 float64, hit bool)
	SigmaA(p core.Vec3) core.Vec3
	SigmaS(p core.Vec3) core.Vec3
	Emission(p core.Vec3) core.Vec3
	// Asymmetry is the Henyey-Greenstein phase function's g parameter
	// for this region (0 = isotropic).
	Asymmetry() float64
}

// SigmaT returns the total extinction coefficient at p (absorption plus
// scattering), the quantity ray-marching integrates along a path.
func SigmaT(r Region, p core.Vec3) core.Vec3 {
	return r.SigmaA(p).Add(r.SigmaS(p))
}

// attenuationGrid is a precomputed coarse sampling of a region's
// extinction field. Every region builds one, but no query in this
// package reads it: Transmittance and the single-scatter march evaluate
// SigmaT directly at every step.
type attenuationGrid struct {
	bounds     core.AABB
	resolution [3]int
	values     []float64 // extinction luminance sampled at each cell centre
}

func newAttenuationGrid(r Region, bounds core.AABB, res [3]int) *attenuationGrid {
	g := &attenuationGrid{bounds: bounds, resolution: res}
	n := res[0] * res[1] * res[2]
	g.values = make([]float64, n)

	size := bounds.Max.Subtract(bounds.Min)
	cell := core.NewVec3(size.X/float64(res[0]), size.Y/float64(res[1]), size.Z/float64(res[2]))
	idx := 0
	for k := 0; k < res[2]; k++ {
		for j := 0; j < res[1]; j++ {
			for i := 0; i < res[0]; i++ {
				center := core.NewVec3(
					bounds.Min.X+(float64(i)+0.5)*cell.X,
					bounds.Min.Y+(float64(j)+0.5)*cell.Y,
					bounds.Min.Z+(float64(k)+0.5)*cell.Z,
				)
				g.values[idx] = SigmaT(r, center).Luminance()
				idx++
			}
		}
	}
	return g
}

// meanExtinction returns the grid cell's precomputed extinction value for
// p, clamping p into bounds first. The value is the cell-centre sample,
// not a bound on the cell's extinction, and nothing calls this function.
func (g *attenuationGrid) meanExtinction(p core.Vec3) float64 {
	size := g.bounds.Max.Subtract(g.bounds.Min)
	clampAxis := func(x, lo, size float64, res int) int {
		if size <= 0 {
			return 0
		}
		f := (x - lo) / size
		if f < 0 {
			f = 0
		}
		if f >= 1 {
			f = 0.999999
		}
		return int(f * float64(res))
	}
	i := clampAxis(p.X, g.bounds.Min.X, size.X, g.resolution[0])
	j := clampAxis(p.Y, g.bounds.Min.Y, size.Y, g.resolution[1])
	k := clampAxis(p.Z, g.bounds.Min.Z, size.Z, g.resolution[2])
	idx := (k*g.resolution[1]+j)*g.resolution[0] + i
	return g.values[idx]
}
