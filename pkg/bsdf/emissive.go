package bsdf

import "github.com/yafaray-go/renderer/pkg/core"

// Emissive is a light-emitting material: it never scatters, only emits.
type Emissive struct {
	Emission core.Vec3
}

func NewEmissive(emission core.Vec3) *Emissive { return &Emissive{Emission: emission} }

func (e *Emissive) InitBSDF(state *core.RenderState, sp *core.SurfacePoint) core.BSDFFlags {
	return core.BSDFEmit
}

func (e *Emissive) Eval(state *core.RenderState, sp *core.SurfacePoint, wo, wi core.Vec3, flags core.BSDFFlags) core.Vec3 {
	return core.Vec3{}
}

func (e *Emissive) Sample(state *core.RenderState, sp *core.SurfacePoint, wo core.Vec3, sampler core.Sampler) (core.ScatterResult, bool) {
	return core.ScatterResult{}, false
}

func (e *Emissive) PDF(state *core.RenderState, sp *core.SurfacePoint, wo, wi core.Vec3, flags core.BSDFFlags) float64 {
	return 0
}

func (e *Emissive) GetSpecular(state *core.RenderState, sp *core.SurfacePoint, wo core.Vec3) (reflect, refract *core.SpecularSample) {
	return nil, nil
}

func (e *Emissive) GetTransparency(state *core.RenderState, sp *core.SurfacePoint, wo core.Vec3) core.Vec3 {
	return core.Vec3{}
}

func (e *Emissive) IsTransparent() bool { return false }

func (e *Emissive) GetAlpha(state *core.RenderState, sp *core.SurfacePoint, wo core.Vec3) float64 {
	return 1.0
}

func (e *Emissive) ScatterPhoton(sp *core.SurfacePoint, wi core.Vec3, power core.Vec3, sampler core.Sampler) (wo core.Vec3, tinted core.Vec3, flags core.BSDFFlags, scattered bool) {
	return core.Vec3{}, core.Vec3{}, core.BSDFNone, false
}

// Emit returns the emitted radiance, independent of wo (diffuse emitter).
func (e *Emissive) Emit(state *core.RenderState, sp *core.SurfacePoint, wo core.Vec3) core.Vec3 {
	return e.Emission
}
