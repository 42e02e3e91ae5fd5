package bsdf

import (
	"math"

	"github.com/yafaray-go/renderer/pkg/core"
)

// Glass is a smooth dielectric: reflects or refracts according to
// Fresnel/Schlick, with an optional constant tint on transmitted light
// (independent of the distance travelled inside the glass).
// Sample stochastically picks one lobe; GetSpecular exposes both at
// once so the integrator can branch them deterministically.
type Glass struct {
	IOR          float64
	Transmission core.Vec3 // tint applied to transmitted light (1,1,1 = clear)
}

func NewGlass(ior float64) *Glass {
	return &Glass{IOR: ior, Transmission: core.NewVec3(1, 1, 1)}
}

func (g *Glass) InitBSDF(state *core.RenderState, sp *core.SurfacePoint) core.BSDFFlags {
	return core.BSDFSpecular | core.BSDFReflect | core.BSDFTransmit
}

func (g *Glass) Eval(state *core.RenderState, sp *core.SurfacePoint, wo, wi core.Vec3, flags core.BSDFFlags) core.Vec3 {
	return core.Vec3{} // pure delta material, contributes only via GetSpecular
}

func (g *Glass) Sample(state *core.RenderState, sp *core.SurfacePoint, wo core.Vec3, sampler core.Sampler) (core.ScatterResult, bool) {
	incoming := wo.Negate()
	etaRatio := 1.0 / g.IOR
	if !sp.FrontFace {
		etaRatio = g.IOR
	}

	cosTheta := math.Min(-incoming.Dot(sp.Ns), 1.0)
	refracted, canRefract := incoming.Refract(sp.Ns, etaRatio)
	reflectance := schlick(cosTheta, etaRatio)

	if !canRefract || reflectance > sampler.Get1D() {
		reflected := incoming.Reflect(sp.Ns)
		return core.ScatterResult{
			Scattered:    core.NewRay(sp.Position, reflected),
			Attenuation:  core.NewVec3(1, 1, 1),
			PDF:          0,
			SampledFlags: core.BSDFSpecular | core.BSDFReflect,
			Weight:       core.NewVec3(1, 1, 1),
		}, true
	}

	return core.ScatterResult{
		Scattered:    core.NewRay(sp.Position, refracted),
		Attenuation:  g.Transmission,
		PDF:          0,
		SampledFlags: core.BSDFSpecular | core.BSDFTransmit,
		Weight:       g.Transmission,
	}, true
}

func (g *Glass) PDF(state *core.RenderState, sp *core.SurfacePoint, wo, wi core.Vec3, flags core.BSDFFlags) float64 {
	return 0
}

// GetSpecular returns both delta lobes at once (unlike Sample, which
// stochastically picks one) so the direct-lighting and photon-mapping
// integrators can follow both deterministically.
func (g *Glass) GetSpecular(state *core.RenderState, sp *core.SurfacePoint, wo core.Vec3) (reflect, refract *core.SpecularSample) {
	incoming := wo.Negate()
	etaRatio := 1.0 / g.IOR
	if !sp.FrontFace {
		etaRatio = g.IOR
	}
	cosTheta := math.Min(-incoming.Dot(sp.Ns), 1.0)
	reflectance := schlick(cosTheta, etaRatio)

	reflectedDir := incoming.Reflect(sp.Ns)
	reflect = &core.SpecularSample{Direction: reflectedDir, Colour: core.NewVec3(reflectance, reflectance, reflectance)}

	if refractedDir, ok := incoming.Refract(sp.Ns, etaRatio); ok {
		t := 1 - reflectance
		refract = &core.SpecularSample{Direction: refractedDir, Colour: g.Transmission.Multiply(t)}
	}
	return reflect, refract
}

func (g *Glass) GetTransparency(state *core.RenderState, sp *core.SurfacePoint, wo core.Vec3) core.Vec3 {
	return core.Vec3{}
}

func (g *Glass) IsTransparent() bool { return false }

func (g *Glass) GetAlpha(state *core.RenderState, sp *core.SurfacePoint, wo core.Vec3) float64 {
	return 1.0
}

func (g *Glass) ScatterPhoton(sp *core.SurfacePoint, wi core.Vec3, power core.Vec3, sampler core.Sampler) (wo core.Vec3, tinted core.Vec3, flags core.BSDFFlags, scattered bool) {
	incoming := wi.Negate() // wi points back toward the photon's source
	etaRatio := 1.0 / g.IOR
	if !sp.FrontFace {
		etaRatio = g.IOR
	}
	cosTheta := math.Min(-incoming.Dot(sp.Ns), 1.0)
	refracted, canRefract := incoming.Refract(sp.Ns, etaRatio)
	reflectance := schlick(cosTheta, etaRatio)

	if !canRefract || reflectance > sampler.Get1D() {
		return incoming.Reflect(sp.Ns), power, core.BSDFSpecular | core.BSDFReflect, true
	}
	return refracted, power.MultiplyVec(g.Transmission), core.BSDFSpecular | core.BSDFTransmit, true
}

// schlick is the Schlick Fresnel-reflectance approximation.
func schlick(cosine, refractionRatio float64) float64 {
	r0 := (1 - refractionRatio) / (1 + refractionRatio)
	r0 = r0 * r0
	return r0 + (1-r0)*math.Pow(1-cosine, 5)
}
