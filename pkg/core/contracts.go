package core

import "math/rand"

// This file collects the cross-cutting contracts shared by every leaf
// package (primitive, accel, bsdf, light, photon, volume, integrator) so
// that none of them need to import each other directly — primitives
// return a core.SurfacePoint carrying a core.Material, materials accept a
// core.SurfacePoint, lights are sampled by core.Light — breaking what
// would otherwise be primitive<->bsdf<->light import cycles.

// IntersectData is the raw result of an accelerator traversal:
// immutable once returned, not yet a full SurfacePoint.
type IntersectData struct {
	T             float64
	U, V          float64 // barycentric / parametric coordinates
	PrimitiveID   int     // index into the accelerator's primitive array
	PrimitiveRef  Primitive
}

// BSDFFlags is a bitset over the lobes a material may return.
type BSDFFlags uint16

const (
	BSDFSpecular BSDFFlags = 1 << iota
	BSDFGlossy
	BSDFDiffuse
	BSDFDispersive
	BSDFReflect
	BSDFTransmit
	BSDFFilter
	BSDFEmit
	BSDFVolumetric
	BSDFNone BSDFFlags = 0
)

func (f BSDFFlags) Has(bit BSDFFlags) bool { return f&bit != 0 }

// SurfacePoint is the fully resolved shading point: position,
// geometric and shading normals, tangent frame, parametric and
// original-space coordinates, and pointers back to the owning primitive,
// material and (if emissive) light.
type SurfacePoint struct {
	Position    Vec3
	Ng          Vec3 // geometric normal, |Ng| = 1
	Ns          Vec3 // shading normal, |Ns| = 1
	Nu, Nv      Vec3 // tangent frame, Ns.Nu ~= 0, right-handed
	U, V        float64
	Orco        Vec3 // original (pre-transform) coordinates
	Primitive   Primitive
	Material    Material
	Light       Light // non-nil only for emissive surfaces
	FrontFace   bool
}

// SetFaceNormal orients Ng/Ns so they face the incoming ray, recording
// FrontFace.
func (sp *SurfacePoint) SetFaceNormal(ray Ray, outwardNg, outwardNs Vec3) {
	sp.FrontFace = ray.Direction.Dot(outwardNg) < 0
	if sp.FrontFace {
		sp.Ng, sp.Ns = outwardNg, outwardNs
	} else {
		sp.Ng, sp.Ns = outwardNg.Negate(), outwardNs.Negate()
	}
}

// Primitive is the smallest intersectable surface unit.
type Primitive interface {
	Intersect(ray Ray, tMin, tMax float64) (IntersectData, bool)
	GetSurfacePoint(ray Ray, hit IntersectData) SurfacePoint
	Bounds() AABB
}

// Sampler is the per-ray source of random/quasi-random numbers a material
// or integrator pulls from, decoupling callers from whether the
// underlying stream is math/rand or a ScrambledHalton sequence.
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
	Get3D() Vec3
	Rand() *rand.Rand
}

// ScatterResult is what Material.Sample returns: the sampled direction,
// the (already cosine-weighted, by convention) BSDF value, its PDF, which
// lobe was sampled, and a convenience sample weight (value/pdf).
type ScatterResult struct {
	Incoming      Ray
	Scattered     Ray
	Attenuation   Vec3
	PDF           float64
	SampledFlags  BSDFFlags
	Weight        Vec3
}

// IsSpecular reports whether the sampled lobe is a delta distribution
// (PDF <= 0 is the delta-lobe sentinel).
func (s ScatterResult) IsSpecular() bool { return s.PDF <= 0 }

// SpecularSample is one delta-lobe direction/colour pair returned by
// Material.GetSpecular.
type SpecularSample struct {
	Direction Vec3
	Colour    Vec3
}

// Material is the BSDF contract. Every method is a pure
// function of (state, surface point, directions) plus the per-shade
// user-data buffer InitBSDF fills in — no method mutates shared state.
type Material interface {
	// InitBSDF evaluates this material's node graph once per shading
	// point into the state's NodeBuffer and returns which lobes are
	// active for this point.
	InitBSDF(state *RenderState, sp *SurfacePoint) BSDFFlags

	// Eval returns the BSDF value (by convention already multiplied by
	// cos(theta_i)) for a given incoming/outgoing direction pair.
	Eval(state *RenderState, sp *SurfacePoint, wo, wi Vec3, flags BSDFFlags) Vec3

	// Sample draws a scattered direction and returns its contribution.
	Sample(state *RenderState, sp *SurfacePoint, wo Vec3, sampler Sampler) (ScatterResult, bool)

	// PDF is the solid-angle probability of sampling wi from wo.
	PDF(state *RenderState, sp *SurfacePoint, wo, wi Vec3, flags BSDFFlags) float64

	// GetSpecular returns the delta-lobe directions (reflection and/or
	// refraction) this material contributes, if any.
	GetSpecular(state *RenderState, sp *SurfacePoint, wo Vec3) (reflect, refract *SpecularSample)

	// GetTransparency/IsTransparent/GetAlpha support the any-hit
	// transparent-shadow traversal.
	GetTransparency(state *RenderState, sp *SurfacePoint, wo Vec3) Vec3
	IsTransparent() bool
	GetAlpha(state *RenderState, sp *SurfacePoint, wo Vec3) float64

	// ScatterPhoton implements the photon-shooting contract: given an
	// incoming photon direction, returns the outgoing
	// direction, tinted power, and which lobe handled the bounce.
	ScatterPhoton(sp *SurfacePoint, wi Vec3, power Vec3, sampler Sampler) (wo Vec3, tinted Vec3, flags BSDFFlags, scattered bool)
}

// Emitter is implemented by materials that emit light directly (area
// lights backed by an emissive material).
type Emitter interface {
	Emit(state *RenderState, sp *SurfacePoint, wo Vec3) Vec3
}

// LightSample is a sampled point/direction on a light toward a shading
// point.
type LightSample struct {
	Point     Vec3
	Normal    Vec3
	Direction Vec3 // from shading point TO light
	Distance  float64
	Emission  Vec3
	PDF       float64
}

// EmissionSample is a sampled emission point+direction FROM a light
// surface, used by photon shooting.
type EmissionSample struct {
	Point        Vec3
	Normal       Vec3
	Direction    Vec3
	Emission     Vec3
	AreaPDF      float64
	DirectionPDF float64
}

// Light is the contract both Dirac (point/directional/spot) and area
// lights satisfy.
type Light interface {
	IsDelta() bool
	NumSamples() int
	CanIntersect() bool

	Sample(point, normal Vec3, sample Vec2) LightSample
	PDF(point, normal, direction Vec3) float64

	SampleEmission(samplePoint, sampleDirection Vec2) EmissionSample
	EmissionPDF(point, direction Vec3) float64

	// Emit evaluates emission hit directly by a ray (non-zero only for
	// infinite/IBL lights and emissive-surface self-intersection).
	Emit(ray Ray) Vec3
}

// SplatRay is a secondary contribution the integrator wants accumulated
// at a pixel other than the one being traced.
type SplatRay struct {
	X, Y   float64 // continuous film-plane coordinates
	Colour Vec3
	Weight float64
}

// Camera produces primary rays (with differentials) for a film position.
type Camera interface {
	GetRay(x, y float64, sampler Sampler) Ray
}

// RenderState is the per-ray scratch carried down the recursion: depth
// counters, inside-medium stack, the BSDF node evaluation buffer, and
// the random stream id, all owned exclusively by one worker.
type RenderState struct {
	Depth            int // raydepth bounces remaining
	ShadowDepth      int // shadow_depth transparent-shadow links remaining
	InsideMedium     []VolumeHandle
	NodeBuffer       []NodeResult
	StreamID         int64
	IncludeEmission  bool // false right after a MIS-weighted direct-light vertex
}

// VolumeHandle is an opaque reference a volume region pushes onto
// RenderState.InsideMedium; pkg/volume defines the concrete type via this
// indirection so pkg/core doesn't need to import pkg/volume.
type VolumeHandle interface{}

// NodeResult is one slot of the flat per-point shader-node evaluation
// buffer.
type NodeResult struct {
	Scalar float64
	Colour Vec3
}
