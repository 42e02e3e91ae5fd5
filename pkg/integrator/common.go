package integrator

import (
	"math"

	"github.com/yafaray-go/renderer/pkg/core"
)

// estimateDirect computes direct illumination at sp by multiple
// importance sampling: for every light, one light
// sample and one BSDF sample combined with the power heuristic. Dirac
// lights are sampled once without MIS since BSDF sampling can never hit
// them. Shadow queries go through Scene.Occluded, so transparent-shadow
// attenuation multiplies into each contribution.
func estimateDirect(state *core.RenderState, sp *core.SurfacePoint, wo core.Vec3, flags core.BSDFFlags, scene Scene, sampler core.Sampler) core.Vec3 {
	if sp.Material == nil || !flags.Has(core.BSDFDiffuse|core.BSDFGlossy) {
		return core.Vec3{}
	}
	var total core.Vec3
	for _, light := range scene.Lights() {
		n := light.NumSamples()
		if n <= 0 {
			n = 1
		}
		var acc core.Vec3
		for i := 0; i < n; i++ {
			acc = acc.Add(sampleOneLight(state, sp, wo, flags, light, scene, sampler))
		}
		total = total.Add(acc.Multiply(1.0 / float64(n)))
	}
	return total
}

func sampleOneLight(state *core.RenderState, sp *core.SurfacePoint, wo core.Vec3, flags core.BSDFFlags, light core.Light, scene Scene, sampler core.Sampler) core.Vec3 {
	var contribution core.Vec3

	// Light-sample half of the estimator.
	ls := light.Sample(sp.Position, sp.Ns, sampler.Get2D())
	if ls.PDF > 0 && !ls.Emission.IsZero() {
		if ls.Direction.Dot(sp.Ns) > 0 {
			shadowed, filter := scene.Occluded(sp.Position, ls.Direction, ls.Distance, sp.Primitive)
			if !shadowed {
				f := sp.Material.Eval(state, sp, wo, ls.Direction, flags)
				if !f.IsZero() {
					weight := 1.0
					if !light.IsDelta() {
						bsdfPDF := sp.Material.PDF(state, sp, wo, ls.Direction, flags)
						weight = core.PowerHeuristic(1, ls.PDF, 1, bsdfPDF)
					}
					contribution = contribution.Add(
						f.MultiplyVec(ls.Emission).MultiplyVec(filter).Multiply(weight / ls.PDF))
				}
			}
		}
	}

	// BSDF-sample half; pointless against Dirac lights.
	if light.IsDelta() {
		return contribution
	}
	s, ok := sp.Material.Sample(state, sp, wo, sampler)
	if !ok || s.IsSpecular() || s.PDF <= 0 {
		return contribution
	}
	dir := s.Scattered.Direction.Normalize()
	lightPDF := light.PDF(sp.Position, sp.Ns, dir)
	if lightPDF <= 0 {
		return contribution
	}
	emission, filter, reached := traceToLight(state, sp, dir, light, scene)
	if !reached || emission.IsZero() {
		return contribution
	}
	weight := core.PowerHeuristic(1, s.PDF, 1, lightPDF)
	contribution = contribution.Add(
		s.Attenuation.MultiplyVec(emission).MultiplyVec(filter).Multiply(weight / s.PDF))
	return contribution
}

// traceToLight follows a BSDF-sampled direction and reports the emission
// actually reached: either the sampled area light's surface, or the
// light's infinite-domain emission when the ray escapes (IBL). Any other
// hit means the light was occluded for this direction.
func traceToLight(state *core.RenderState, sp *core.SurfacePoint, dir core.Vec3, light core.Light, scene Scene) (core.Vec3, core.Vec3, bool) {
	ray := core.NewRay(sp.Position, dir).WithBias(shadowBiasFor(sp))
	hit, _, ok := scene.Intersect(ray)
	if !ok {
		// Only infinite lights emit along escaped rays; finite lights
		// return zero here, which zeroes the contribution.
		return light.Emit(ray), whiteFilter, true
	}
	if hit.Light != light {
		return core.Vec3{}, whiteFilter, false
	}
	return emittedAt(state, &hit, dir.Negate()), whiteFilter, true
}

var whiteFilter = core.NewVec3(1, 1, 1)

// shadowBiasFor is the conservative spawn epsilon for secondary rays.
// The scene-scale-relative part is
// already folded into the scene's Occluded query; this bounds the local
// self-intersection window for rays the integrator spawns itself.
func shadowBiasFor(sp *core.SurfacePoint) float64 {
	scale := math.Max(1, sp.Position.Length())
	return 1e-5 * scale
}
