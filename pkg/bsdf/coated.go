package bsdf

import "github.com/yafaray-go/renderer/pkg/core"

// Coated wraps a base material with a thin dielectric coat: the coat's
// Fresnel reflectance is evaluated first, and with probability 1-R the
// ray is handed to the base material instead.
type Coated struct {
	Coat IOR
	Base core.Material
}

// IOR is the minimal coat description: just an index of refraction, since
// the coat itself has no colour of its own.
type IOR struct {
	RefractiveIndex float64
}

func NewCoated(coatIOR float64, base core.Material) *Coated {
	return &Coated{Coat: IOR{RefractiveIndex: coatIOR}, Base: base}
}

func (c *Coated) InitBSDF(state *core.RenderState, sp *core.SurfacePoint) core.BSDFFlags {
	baseFlags := c.Base.InitBSDF(state, sp)
	return baseFlags | core.BSDFSpecular | core.BSDFReflect
}

func (c *Coated) Eval(state *core.RenderState, sp *core.SurfacePoint, wo, wi core.Vec3, flags core.BSDFFlags) core.Vec3 {
	cosTheta := clamp01(wo.Dot(sp.Ns))
	reflectance := schlick(cosTheta, 1.0/c.Coat.RefractiveIndex)
	return c.Base.Eval(state, sp, wo, wi, flags).Multiply(1 - reflectance)
}

func (c *Coated) Sample(state *core.RenderState, sp *core.SurfacePoint, wo core.Vec3, sampler core.Sampler) (core.ScatterResult, bool) {
	cosTheta := clamp01(wo.Dot(sp.Ns))
	reflectance := schlick(cosTheta, 1.0/c.Coat.RefractiveIndex)

	if sampler.Get1D() < reflectance {
		reflected := wo.Negate().Reflect(sp.Ns)
		return core.ScatterResult{
			Scattered:    core.NewRay(sp.Position, reflected),
			Attenuation:  core.NewVec3(1, 1, 1),
			PDF:          0,
			SampledFlags: core.BSDFSpecular | core.BSDFReflect,
			Weight:       core.NewVec3(1, 1, 1),
		}, true
	}

	result, ok := c.Base.Sample(state, sp, wo, sampler)
	if !ok {
		return core.ScatterResult{}, false
	}
	// The coat transmits (1-R) of the energy, and the base lobe was
	// chosen with the same probability, so the two factors cancel in the
	// sample weight; only the reported BSDF value and PDF change.
	result.Attenuation = result.Attenuation.Multiply(1 - reflectance)
	if result.PDF > 0 {
		result.PDF *= 1 - reflectance
	}
	return result, true
}

func (c *Coated) PDF(state *core.RenderState, sp *core.SurfacePoint, wo, wi core.Vec3, flags core.BSDFFlags) float64 {
	cosTheta := clamp01(wo.Dot(sp.Ns))
	reflectance := schlick(cosTheta, 1.0/c.Coat.RefractiveIndex)
	return (1 - reflectance) * c.Base.PDF(state, sp, wo, wi, flags)
}

func (c *Coated) GetSpecular(state *core.RenderState, sp *core.SurfacePoint, wo core.Vec3) (reflect, refract *core.SpecularSample) {
	cosTheta := clamp01(wo.Dot(sp.Ns))
	reflectance := schlick(cosTheta, 1.0/c.Coat.RefractiveIndex)
	dir := wo.Negate().Reflect(sp.Ns)
	return &core.SpecularSample{Direction: dir, Colour: core.NewVec3(reflectance, reflectance, reflectance)}, nil
}

func (c *Coated) GetTransparency(state *core.RenderState, sp *core.SurfacePoint, wo core.Vec3) core.Vec3 {
	return c.Base.GetTransparency(state, sp, wo)
}

func (c *Coated) IsTransparent() bool { return c.Base.IsTransparent() }

func (c *Coated) GetAlpha(state *core.RenderState, sp *core.SurfacePoint, wo core.Vec3) float64 {
	return c.Base.GetAlpha(state, sp, wo)
}

func (c *Coated) ScatterPhoton(sp *core.SurfacePoint, wi core.Vec3, power core.Vec3, sampler core.Sampler) (wo core.Vec3, tinted core.Vec3, flags core.BSDFFlags, scattered bool) {
	cosTheta := clamp01(wi.Dot(sp.Ns)) // wi points back toward the source
	reflectance := schlick(cosTheta, 1.0/c.Coat.RefractiveIndex)
	if sampler.Get1D() < reflectance {
		return wi.Negate().Reflect(sp.Ns), power, core.BSDFSpecular | core.BSDFReflect, true
	}
	return c.Base.ScatterPhoton(sp, wi, power.Multiply(1-reflectance), sampler)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
