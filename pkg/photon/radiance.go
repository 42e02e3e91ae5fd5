package photon

import (
	"math"

	"github.com/yafaray-go/renderer/pkg/core"
)

// FilterKind selects the photon-distance weighting used by the radiance
// estimate: none, Jensen's cone, or Gaussian.
type FilterKind int

const (
	FilterNone FilterKind = iota
	FilterCone
	FilterGaussian
)

// coneFilterK is Jensen's cone-filter steepness constant (k=1 is the
// classic choice that still weights the farthest photon to zero).
const coneFilterK = 1.1

// EstimateRadiance implements the photon-map radiance estimate:
//
//	L_r(x,w) ~= (1 / (pi * r^2)) * sum_i f(x,w_i,w) * Phi_i
//
// over photons at position within gather.MaxDistSq of x, restricted to
// those whose incident cosine with the surface normal n is positive.
// eval is the surface BSDF's raw (non cosine-weighted) Eval callback.
func EstimateRadiance(position core.Vec3, gather GatherResult, n core.Vec3, filter FilterKind, eval func(wi core.Vec3) core.Vec3) core.Vec3 {
	if len(gather.Photons) == 0 || gather.MaxDistSq <= 0 {
		return core.Vec3{}
	}
	rMax := math.Sqrt(gather.MaxDistSq)
	var sum core.Vec3
	for _, p := range gather.Photons {
		wi := p.Direction.Normalize()
		cosTerm := wi.Dot(n)
		if cosTerm <= 0 {
			continue
		}
		d := p.Position.Subtract(position).Length()
		w := distanceWeight(filter, d, rMax)
		brdf := eval(wi)
		sum = sum.Add(brdf.MultiplyVec(p.Power).Multiply(w))
	}
	area := math.Pi * gather.MaxDistSq
	return sum.Multiply(1.0 / area)
}

func distanceWeight(kind FilterKind, d, rMax float64) float64 {
	switch kind {
	case FilterCone:
		if rMax <= 0 {
			return 1
		}
		wd := 1 - d/(coneFilterK*rMax)
		return math.Max(0, wd) / (1 - 2.0/(3*coneFilterK))
	case FilterGaussian:
		alpha, beta := 0.918, 1.953
		expB := math.Exp(-beta)
		num := 1 - math.Exp(-beta*(d*d)/(2*rMax*rMax))
		return alpha * (1 - num/(1-expB))
	default:
		return 1
	}
}
