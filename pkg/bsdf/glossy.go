package bsdf

import (
	"math"

	"github.com/yafaray-go/renderer/pkg/core"
)

// Glossy is a specular-reflection material with optional fuzz (roughness)
// that spreads the mirror lobe into a glossy one. Sample reports a
// non-delta PDF once Roughness > 0; a perfect mirror routes through
// GetSpecular instead.
type Glossy struct {
	Albedo    core.Vec3
	Roughness float64 // 0 = perfect mirror
}

func NewGlossy(albedo core.Vec3, roughness float64) *Glossy {
	return &Glossy{Albedo: albedo, Roughness: math.Max(0, math.Min(1, roughness))}
}

func (g *Glossy) InitBSDF(state *core.RenderState, sp *core.SurfacePoint) core.BSDFFlags {
	if g.Roughness <= 1e-4 {
		return core.BSDFSpecular | core.BSDFReflect
	}
	return core.BSDFGlossy | core.BSDFReflect
}

func (g *Glossy) Eval(state *core.RenderState, sp *core.SurfacePoint, wo, wi core.Vec3, flags core.BSDFFlags) core.Vec3 {
	if !flags.Has(core.BSDFGlossy) {
		return core.Vec3{}
	}
	reflected := wo.Negate().Reflect(sp.Ns)
	cosAlpha := math.Max(0, reflected.Dot(wi))
	// Phong-style glossy lobe driven by roughness, normalized for energy
	// conservation; exact at Roughness -> 0 it degenerates to a spike the
	// InitBSDF flag switch routes through GetSpecular instead.
	exponent := 2.0/math.Max(g.Roughness*g.Roughness, 1e-4) - 2.0
	norm := (exponent + 2) / (2 * math.Pi)
	lobe := norm * math.Pow(cosAlpha, exponent)
	cosTheta := math.Max(0, wi.Dot(sp.Ns))
	return g.Albedo.Multiply(lobe * cosTheta)
}

func (g *Glossy) Sample(state *core.RenderState, sp *core.SurfacePoint, wo core.Vec3, sampler core.Sampler) (core.ScatterResult, bool) {
	reflected := wo.Negate().Reflect(sp.Ns)
	if g.Roughness <= 1e-4 {
		if reflected.Dot(sp.Ns) <= 0 {
			return core.ScatterResult{}, false
		}
		return core.ScatterResult{
			Scattered:    core.NewRay(sp.Position, reflected),
			Attenuation:  g.Albedo,
			PDF:          0,
			SampledFlags: core.BSDFSpecular | core.BSDFReflect,
			Weight:       g.Albedo,
		}, true
	}

	s3 := sampler.Get3D()
	fuzz := core.RandomInUnitSphere(s3.X, s3.Y, s3.Z).Multiply(g.Roughness)
	dir := reflected.Add(fuzz).Normalize()
	if dir.Dot(sp.Ns) <= 0 {
		return core.ScatterResult{}, false
	}
	value := g.Eval(state, sp, wo, dir, core.BSDFGlossy|core.BSDFReflect)
	pdf := g.PDF(state, sp, wo, dir, core.BSDFGlossy|core.BSDFReflect)
	if pdf <= 0 {
		return core.ScatterResult{}, false
	}
	return core.ScatterResult{
		Scattered:    core.NewRay(sp.Position, dir),
		Attenuation:  value,
		PDF:          pdf,
		SampledFlags: core.BSDFGlossy | core.BSDFReflect,
		Weight:       value.Multiply(1.0 / pdf),
	}, true
}

func (g *Glossy) PDF(state *core.RenderState, sp *core.SurfacePoint, wo, wi core.Vec3, flags core.BSDFFlags) float64 {
	if g.Roughness <= 1e-4 || !flags.Has(core.BSDFGlossy) {
		return 0
	}
	reflected := wo.Negate().Reflect(sp.Ns)
	cosAlpha := math.Max(0, reflected.Dot(wi))
	exponent := 2.0/math.Max(g.Roughness*g.Roughness, 1e-4) - 2.0
	norm := (exponent + 1) / (2 * math.Pi)
	return norm * math.Pow(cosAlpha, exponent)
}

func (g *Glossy) GetSpecular(state *core.RenderState, sp *core.SurfacePoint, wo core.Vec3) (reflect, refract *core.SpecularSample) {
	if g.Roughness > 1e-4 {
		return nil, nil
	}
	dir := wo.Negate().Reflect(sp.Ns)
	return &core.SpecularSample{Direction: dir, Colour: g.Albedo}, nil
}

func (g *Glossy) GetTransparency(state *core.RenderState, sp *core.SurfacePoint, wo core.Vec3) core.Vec3 {
	return core.Vec3{}
}

func (g *Glossy) IsTransparent() bool { return false }

func (g *Glossy) GetAlpha(state *core.RenderState, sp *core.SurfacePoint, wo core.Vec3) float64 {
	return 1.0
}

func (g *Glossy) ScatterPhoton(sp *core.SurfacePoint, wi core.Vec3, power core.Vec3, sampler core.Sampler) (wo core.Vec3, tinted core.Vec3, flags core.BSDFFlags, scattered bool) {
	reflected := wi.Negate().Reflect(sp.Ns)
	if g.Roughness > 1e-4 {
		s3 := sampler.Get3D()
		reflected = reflected.Add(core.RandomInUnitSphere(s3.X, s3.Y, s3.Z).Multiply(g.Roughness)).Normalize()
	}
	if reflected.Dot(sp.Ns) <= 0 {
		return core.Vec3{}, core.Vec3{}, core.BSDFNone, false
	}
	return reflected, power.MultiplyVec(g.Albedo), core.BSDFGlossy | core.BSDFReflect, true
}
