package volume

import (
	"math"

	"github.com/yafaray-go/renderer/pkg/core"
)

// ShadowTester answers whether the segment [origin, origin+dir*dist] is
// occluded by scene geometry, letting the volume integrator sample
// direct light through the medium without depending on pkg/accel
// directly.
type ShadowTester interface {
	IsShadowed(origin, dir core.Vec3, dist float64) bool
}

// SingleScatterOptions configures the marching and adaptive refinement
// policy.
type SingleScatterOptions struct {
	BaseSteps          int
	RefinementThreshold float64
	MaxRefinements     int
}

func defaultOptions(o SingleScatterOptions) SingleScatterOptions {
	if o.BaseSteps <= 0 {
		o.BaseSteps = 16
	}
	if o.RefinementThreshold <= 0 {
		o.RefinementThreshold = 0.1
	}
	if o.MaxRefinements <= 0 {
		o.MaxRefinements = 2
	}
	return o
}

// IntegrateSingleScatter is the single-scatter volume integrator:
// ray-march each intersected region, at each step sample one
// light for in-scattered radiance weighted by the Henyey-Greenstein phase
// function (or the Rayleigh/Mie split for Sky regions), attenuated by
// transmittance to the camera and, toward the light, by a shadow test
// against scene geometry and the region's own transmittance.
func IntegrateSingleScatter(regions []Region, lights []core.Light, shadow ShadowTester, ray core.Ray, tEnd float64, sampler core.Sampler, opts SingleScatterOptions) core.Vec3 {
	opts = defaultOptions(opts)
	result := core.Vec3{}
	for _, r := range regions {
		t0, t1, hit := r.Intersect(core.Ray{Origin: ray.Origin, Direction: ray.Direction, TMin: ray.TMin, TMax: tEnd})
		if !hit {
			continue
		}
		t1 = math.Min(t1, tEnd)
		if t1 <= t0 {
			continue
		}
		result = result.Add(marchRegion(r, lights, shadow, ray, t0, t1, sampler, opts))
	}
	return result
}

func marchRegion(r Region, lights []core.Light, shadow ShadowTester, ray core.Ray, t0, t1 float64, sampler core.Sampler, opts SingleScatterOptions) core.Vec3 {
	result := core.Vec3{}
	tau := core.Vec3{}
	remaining := t1 - t0
	steps := opts.BaseSteps
	ds := remaining / float64(steps)
	t := t0

	for t < t1 {
		step := ds
		if t+step > t1 {
			step = t1 - t
		}
		mid := t + step*0.5
		p := ray.At(mid)

		contribution := inscatterAt(r, lights, shadow, p, ray.Direction, sampler)
		lum := contribution.Luminance()

		refinements := 0
		for lum > opts.RefinementThreshold && step > 1e-5 && refinements < opts.MaxRefinements {
			step *= 0.5
			mid = t + step*0.5
			p = ray.At(mid)
			contribution = inscatterAt(r, lights, shadow, p, ray.Direction, sampler)
			lum = contribution.Luminance()
			refinements++
		}

		cameraTransmittance := core.NewVec3(math.Exp(-tau.X), math.Exp(-tau.Y), math.Exp(-tau.Z))
		sigmaS := r.SigmaS(p)
		result = result.Add(cameraTransmittance.MultiplyVec(sigmaS).MultiplyVec(contribution).Multiply(step))

		tau = tau.Add(SigmaT(r, p).Multiply(step))
		t += step
	}
	return result
}

// inscatterAt samples one light's in-scattered radiance at p, phase-
// weighted and shadow-attenuated. The incoming direction wi is toward
// the light; wo (the outgoing/view direction) is -ray.Direction by
// convention.
func inscatterAt(r Region, lights []core.Light, shadow ShadowTester, p, rayDir core.Vec3, sampler core.Sampler) core.Vec3 {
	if len(lights) == 0 {
		return core.Vec3{}
	}
	wo := rayDir.Negate()
	light := lights[int(sampler.Get1D()*float64(len(lights)))%len(lights)]
	lightPDFSelect := 1.0 / float64(len(lights))

	ls := light.Sample(p, core.Vec3{}, sampler.Get2D())
	if ls.PDF <= 0 || ls.Emission.IsZero() {
		return core.Vec3{}
	}
	if shadow != nil && shadow.IsShadowed(p, ls.Direction, ls.Distance) {
		return core.Vec3{}
	}
	toLight := Transmittance([]Region{r}, core.NewRay(p, ls.Direction), ls.Distance)

	cosTheta := ls.Direction.Dot(wo)
	var phase float64
	if sky, ok := r.(*Sky); ok {
		frac := sky.RayleighFraction(p)
		phase = frac*RayleighPhase(cosTheta) + (1-frac)*core.HenyeyGreenstein(cosTheta, sky.Asymmetry())
	} else {
		phase = core.HenyeyGreenstein(cosTheta, r.Asymmetry())
	}

	pdf := ls.PDF * lightPDFSelect
	return toLight.MultiplyVec(ls.Emission).Multiply(phase / pdf)
}
