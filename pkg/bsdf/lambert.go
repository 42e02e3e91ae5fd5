// Package bsdf implements the core.Material contract:
// lambert, glossy, glass, coated/layered, mask and emissive materials,
// plus the flat node-evaluation buffer and image/procedural texture
// nodes that feed them. Every material satisfies the full
// InitBSDF/Eval/Sample/PDF/GetSpecular/GetTransparency/ScatterPhoton
// contract.
package bsdf

import (
	"math"

	"github.com/yafaray-go/renderer/pkg/core"
)

// Lambert is a perfectly diffuse material; its node graph, if any,
// supplies a spatially varying albedo.
type Lambert struct {
	Albedo core.Vec3
	AlbedoNode Node
}

func NewLambert(albedo core.Vec3) *Lambert { return &Lambert{Albedo: albedo} }

func (l *Lambert) albedoAt(state *core.RenderState) core.Vec3 {
	if l.AlbedoNode != nil {
		return l.AlbedoNode.EvalColour(state)
	}
	return l.Albedo
}

func (l *Lambert) InitBSDF(state *core.RenderState, sp *core.SurfacePoint) core.BSDFFlags {
	if l.AlbedoNode != nil {
		l.AlbedoNode.Eval(state, sp)
	}
	return core.BSDFDiffuse | core.BSDFReflect
}

func (l *Lambert) Eval(state *core.RenderState, sp *core.SurfacePoint, wo, wi core.Vec3, flags core.BSDFFlags) core.Vec3 {
	if !flags.Has(core.BSDFDiffuse) {
		return core.Vec3{}
	}
	cosTheta := math.Max(0, wi.Dot(sp.Ns))
	return l.albedoAt(state).Multiply(cosTheta / math.Pi)
}

func (l *Lambert) Sample(state *core.RenderState, sp *core.SurfacePoint, wo core.Vec3, sampler core.Sampler) (core.ScatterResult, bool) {
	s := sampler.Get2D()
	dir, pdf := core.CosineSampleHemisphere(sp.Ns, s.X, s.Y)
	if pdf <= 0 {
		return core.ScatterResult{}, false
	}
	cosTheta := math.Max(0, dir.Dot(sp.Ns))
	value := l.albedoAt(state).Multiply(cosTheta / math.Pi)
	return core.ScatterResult{
		Scattered:    core.NewRay(sp.Position, dir),
		Attenuation:  value,
		PDF:          pdf,
		SampledFlags: core.BSDFDiffuse | core.BSDFReflect,
		Weight:       value.Multiply(1.0 / pdf),
	}, true
}

func (l *Lambert) PDF(state *core.RenderState, sp *core.SurfacePoint, wo, wi core.Vec3, flags core.BSDFFlags) float64 {
	if !flags.Has(core.BSDFDiffuse) {
		return 0
	}
	cosTheta := math.Max(0, wi.Dot(sp.Ns))
	return cosTheta / math.Pi
}

func (l *Lambert) GetSpecular(state *core.RenderState, sp *core.SurfacePoint, wo core.Vec3) (reflect, refract *core.SpecularSample) {
	return nil, nil
}

func (l *Lambert) GetTransparency(state *core.RenderState, sp *core.SurfacePoint, wo core.Vec3) core.Vec3 {
	return core.Vec3{}
}

func (l *Lambert) IsTransparent() bool { return false }

func (l *Lambert) GetAlpha(state *core.RenderState, sp *core.SurfacePoint, wo core.Vec3) float64 {
	return 1.0
}

func (l *Lambert) ScatterPhoton(sp *core.SurfacePoint, wi core.Vec3, power core.Vec3, sampler core.Sampler) (wo core.Vec3, tinted core.Vec3, flags core.BSDFFlags, scattered bool) {
	s := sampler.Get2D()
	dir, pdf := core.CosineSampleHemisphere(sp.Ns, s.X, s.Y)
	if pdf <= 0 {
		return core.Vec3{}, core.Vec3{}, core.BSDFNone, false
	}
	albedo := l.Albedo
	if l.AlbedoNode != nil {
		albedo = l.AlbedoNode.EvalColour(nil)
	}
	return dir, power.MultiplyVec(albedo), core.BSDFDiffuse | core.BSDFReflect, true
}
