package volume

import (
	"math"

	"github.com/yafaray-go/renderer/pkg/core"
)

// ExpDensity is a medium whose density falls off exponentially along an
// axis from a base height, density(p) = exp(-a*(height(p) - h0)), scaled
// by base sigma_a/sigma_s at h0.
type ExpDensity struct {
	bounds       core.AABB
	baseSigmaA   core.Vec3
	baseSigmaS   core.Vec3
	emission     core.Vec3
	asymmetry    float64
	heightAxis   int // 0=X, 1=Y, 2=Z
	baseHeight   float64
	falloff      float64
	grid         *attenuationGrid
}

func NewExpDensity(bounds core.AABB, baseSigmaA, baseSigmaS, emission core.Vec3, g float64, heightAxis int, baseHeight, falloff float64, attenGridRes [3]int) *ExpDensity {
	e := &ExpDensity{
		bounds: bounds, baseSigmaA: baseSigmaA, baseSigmaS: baseSigmaS, emission: emission,
		asymmetry: g, heightAxis: heightAxis, baseHeight: baseHeight, falloff: falloff,
	}
	e.grid = newAttenuationGrid(e, bounds, attenGridRes)
	return e
}

func (e *ExpDensity) height(p core.Vec3) float64 {
	switch e.heightAxis {
	case 0:
		return p.X
	case 2:
		return p.Z
	default:
		return p.Y
	}
}

func (e *ExpDensity) density(p core.Vec3) float64 {
	return math.Exp(-e.falloff * (e.height(p) - e.baseHeight))
}

func (e *ExpDensity) Bounds() core.AABB { return e.bounds }

func (e *ExpDensity) Intersect(ray core.Ray) (float64, float64, bool) {
	return e.bounds.Hit(ray, ray.TMin, ray.TMax)
}

func (e *ExpDensity) SigmaA(p core.Vec3) core.Vec3   { return e.baseSigmaA.Multiply(e.density(p)) }
func (e *ExpDensity) SigmaS(p core.Vec3) core.Vec3   { return e.baseSigmaS.Multiply(e.density(p)) }
func (e *ExpDensity) Emission(p core.Vec3) core.Vec3 { return e.emission.Multiply(e.density(p)) }
func (e *ExpDensity) Asymmetry() float64             { return e.asymmetry }
