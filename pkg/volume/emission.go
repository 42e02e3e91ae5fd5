package volume

import (
	"math"

	"github.com/yafaray-go/renderer/pkg/core"
)

// EmissionSteps is the default ray-march step count inside a region.
const EmissionSteps = 32

// Transmittance returns exp(-sum of region extinction optical depth)
// along ray up to distance tEnd, ray-marching each intersected region
// with EmissionSteps steps.
func Transmittance(regions []Region, ray core.Ray, tEnd float64) core.Vec3 {
	totalTau := core.Vec3{}
	for _, r := range regions {
		t0, t1, hit := r.Intersect(core.Ray{Origin: ray.Origin, Direction: ray.Direction, TMin: ray.TMin, TMax: tEnd})
		if !hit {
			continue
		}
		t1 = math.Min(t1, tEnd)
		if t1 <= t0 {
			continue
		}
		totalTau = totalTau.Add(opticalDepth(r, ray, t0, t1, EmissionSteps))
	}
	return core.NewVec3(math.Exp(-totalTau.X), math.Exp(-totalTau.Y), math.Exp(-totalTau.Z))
}

func opticalDepth(r Region, ray core.Ray, t0, t1 float64, steps int) core.Vec3 {
	if steps <= 0 {
		steps = 1
	}
	ds := (t1 - t0) / float64(steps)
	tau := core.Vec3{}
	for i := 0; i < steps; i++ {
		t := t0 + (float64(i)+0.5)*ds
		p := ray.At(t)
		tau = tau.Add(SigmaT(r, p).Multiply(ds))
	}
	return tau
}

// Integrate is the emission volume integrator: ray-march
// each intersected region with EmissionSteps steps, accumulating
// transmittance-weighted emission, T_i * emission(x_i) * ds.
func Integrate(regions []Region, ray core.Ray, tEnd float64) core.Vec3 {
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
		result = result.Add(integrateRegionEmission(r, ray, t0, t1, EmissionSteps))
	}
	return result
}

func integrateRegionEmission(r Region, ray core.Ray, t0, t1 float64, steps int) core.Vec3 {
	if steps <= 0 {
		steps = 1
	}
	ds := (t1 - t0) / float64(steps)
	result := core.Vec3{}
	tau := core.Vec3{}
	for i := 0; i < steps; i++ {
		t := t0 + (float64(i)+0.5)*ds
		p := ray.At(t)
		transmittance := core.NewVec3(math.Exp(-tau.X), math.Exp(-tau.Y), math.Exp(-tau.Z))
		result = result.Add(transmittance.MultiplyVec(r.Emission(p)).Multiply(ds))
		tau = tau.Add(SigmaT(r, p).Multiply(ds))
	}
	return result
}
