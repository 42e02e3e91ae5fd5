package volume

import (
	"math"

	"github.com/yafaray-go/renderer/pkg/core"
)

// Grid is a medium whose density is stored on a regular 3D lattice and
// trilinearly interpolated at query points, for volumes authored from a
// voxel simulation.
type Grid struct {
	bounds        core.AABB
	nx, ny, nz    int
	density       []float64 // nx*ny*nz, x fastest
	baseSigmaA    core.Vec3
	baseSigmaS    core.Vec3
	emission      core.Vec3
	asymmetry     float64
	grid          *attenuationGrid
}

// NewGrid wraps a voxel density field. density must have length
// nx*ny*nz, laid out with x varying fastest.
func NewGrid(bounds core.AABB, nx, ny, nz int, density []float64, baseSigmaA, baseSigmaS, emission core.Vec3, g float64, attenGridRes [3]int) *Grid {
	gr := &Grid{
		bounds: bounds, nx: nx, ny: ny, nz: nz, density: density,
		baseSigmaA: baseSigmaA, baseSigmaS: baseSigmaS, emission: emission, asymmetry: g,
	}
	gr.grid = newAttenuationGrid(gr, bounds, attenGridRes)
	return gr
}

func (g *Grid) at(i, j, k int) float64 {
	i = clampInt(i, 0, g.nx-1)
	j = clampInt(j, 0, g.ny-1)
	k = clampInt(k, 0, g.nz-1)
	return g.density[(k*g.ny+j)*g.nx+i]
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func lerp(t, a, b float64) float64 { return a + t*(b-a) }

// sample trilinearly interpolates the density field at a point expressed
// in [0,1]^3 local-grid coordinates.
func (g *Grid) sample(local core.Vec3) float64 {
	fx := local.X*float64(g.nx) - 0.5
	fy := local.Y*float64(g.ny) - 0.5
	fz := local.Z*float64(g.nz) - 0.5

	ix, iy, iz := int(math.Floor(fx)), int(math.Floor(fy)), int(math.Floor(fz))
	dx, dy, dz := fx-float64(ix), fy-float64(iy), fz-float64(iz)

	d00 := lerp(dx, g.at(ix, iy, iz), g.at(ix+1, iy, iz))
	d10 := lerp(dx, g.at(ix, iy+1, iz), g.at(ix+1, iy+1, iz))
	d01 := lerp(dx, g.at(ix, iy, iz+1), g.at(ix+1, iy, iz+1))
	d11 := lerp(dx, g.at(ix, iy+1, iz+1), g.at(ix+1, iy+1, iz+1))
	d0 := lerp(dy, d00, d10)
	d1 := lerp(dy, d01, d11)
	return lerp(dz, d0, d1)
}

func (g *Grid) localCoords(p core.Vec3) core.Vec3 {
	size := g.bounds.Max.Subtract(g.bounds.Min)
	f := func(x, lo, s float64) float64 {
		if s <= 0 {
			return 0
		}
		v := (x - lo) / s
		return math.Max(0, math.Min(1, v))
	}
	return core.NewVec3(f(p.X, g.bounds.Min.X, size.X), f(p.Y, g.bounds.Min.Y, size.Y), f(p.Z, g.bounds.Min.Z, size.Z))
}

func (g *Grid) densityAt(p core.Vec3) float64 { return g.sample(g.localCoords(p)) }

func (g *Grid) Bounds() core.AABB { return g.bounds }

func (g *Grid) Intersect(ray core.Ray) (float64, float64, bool) {
	return g.bounds.Hit(ray, ray.TMin, ray.TMax)
}

func (g *Grid) SigmaA(p core.Vec3) core.Vec3   { return g.baseSigmaA.Multiply(g.densityAt(p)) }
func (g *Grid) SigmaS(p core.Vec3) core.Vec3   { return g.baseSigmaS.Multiply(g.densityAt(p)) }
func (g *Grid) Emission(p core.Vec3) core.Vec3 { return g.emission.Multiply(g.densityAt(p)) }
func (g *Grid) Asymmetry() float64             { return g.asymmetry }
