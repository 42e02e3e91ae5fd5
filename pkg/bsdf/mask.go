package bsdf

import (
	"math"

	"github.com/yafaray-go/renderer/pkg/core"
)

// Mask blends two materials by a scalar mask value, optionally driven
// per point by a node rather than a fixed ratio.
type Mask struct {
	A, B     core.Material
	Mask     float64 // 0 = all A, 1 = all B
	MaskNode Node
}

func NewMask(a, b core.Material, mask float64) *Mask {
	return &Mask{A: a, B: b, Mask: math.Max(0, math.Min(1, mask))}
}

func (m *Mask) maskAt(state *core.RenderState) float64 {
	if m.MaskNode != nil {
		return m.MaskNode.EvalScalar(state)
	}
	return m.Mask
}

// pick deterministically resolves which material backs this shading
// point so InitBSDF/Eval/Sample/PDF/etc. agree on the same choice; the
// choice is keyed on the mask value compared against a stable fraction
// hashed from the point's position rather than a fresh random draw, so
// one decision holds for the whole shade.
func (m *Mask) pick(state *core.RenderState, sp *core.SurfacePoint) core.Material {
	frac := maskHash(sp)
	if frac < m.maskAt(state) {
		return m.B
	}
	return m.A
}

func maskHash(sp *core.SurfacePoint) float64 {
	h := uint64(math.Float64bits(sp.Position.X)) ^
		uint64(math.Float64bits(sp.Position.Y))*2654435761 ^
		uint64(math.Float64bits(sp.Position.Z))*2246822519
	h ^= h >> 33
	return float64(h%1000000) / 1000000.0
}

func (m *Mask) InitBSDF(state *core.RenderState, sp *core.SurfacePoint) core.BSDFFlags {
	if m.MaskNode != nil {
		m.MaskNode.Eval(state, sp)
	}
	return m.pick(state, sp).InitBSDF(state, sp)
}

func (m *Mask) Eval(state *core.RenderState, sp *core.SurfacePoint, wo, wi core.Vec3, flags core.BSDFFlags) core.Vec3 {
	return m.pick(state, sp).Eval(state, sp, wo, wi, flags)
}

func (m *Mask) Sample(state *core.RenderState, sp *core.SurfacePoint, wo core.Vec3, sampler core.Sampler) (core.ScatterResult, bool) {
	return m.pick(state, sp).Sample(state, sp, wo, sampler)
}

func (m *Mask) PDF(state *core.RenderState, sp *core.SurfacePoint, wo, wi core.Vec3, flags core.BSDFFlags) float64 {
	return m.pick(state, sp).PDF(state, sp, wo, wi, flags)
}

func (m *Mask) GetSpecular(state *core.RenderState, sp *core.SurfacePoint, wo core.Vec3) (reflect, refract *core.SpecularSample) {
	return m.pick(state, sp).GetSpecular(state, sp, wo)
}

func (m *Mask) GetTransparency(state *core.RenderState, sp *core.SurfacePoint, wo core.Vec3) core.Vec3 {
	return m.pick(state, sp).GetTransparency(state, sp, wo)
}

func (m *Mask) IsTransparent() bool { return m.A.IsTransparent() || m.B.IsTransparent() }

func (m *Mask) GetAlpha(state *core.RenderState, sp *core.SurfacePoint, wo core.Vec3) float64 {
	return m.pick(state, sp).GetAlpha(state, sp, wo)
}

func (m *Mask) ScatterPhoton(sp *core.SurfacePoint, wi core.Vec3, power core.Vec3, sampler core.Sampler) (wo core.Vec3, tinted core.Vec3, flags core.BSDFFlags, scattered bool) {
	chosen := m.pick(nil, sp)
	return chosen.ScatterPhoton(sp, wi, power, sampler)
}
