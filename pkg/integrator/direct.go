package integrator

import (
	"math"

	"github.com/yafaray-go/renderer/pkg/core"
	"github.com/yafaray-go/renderer/pkg/photon"
)

// DirectConfig configures the direct-lighting integrator: delta-lobe
// (specular) reflection/refraction is followed for up to MaxDepth-1
// levels, glossy lobes are lit directly but not followed, and there is no
// diffuse recursion; diffuse indirect comes from a precomputed diffuse
// photon map via final gather, or is omitted when no map is supplied.
type DirectConfig struct {
	MaxDepth int // shading levels along a delta-lobe chain, first hit included

	DiffuseMap   *photon.Map
	FinalGather  bool
	FGSamples    int
	GatherSearch int     // k for the diffuse-map lookup at gather hits
	GatherRadius float64 // r_max for the lookup
	GatherCache  *photon.GatherCache
}

// DirectLight is a simplified path integrator: direct lighting,
// delta-lobe continuations, and photon-mapped diffuse indirect only.
type DirectLight struct {
	cfg DirectConfig
}

func NewDirectLight(cfg DirectConfig) *DirectLight {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 3
	}
	if cfg.FGSamples <= 0 {
		cfg.FGSamples = 16
	}
	if cfg.GatherSearch <= 0 {
		cfg.GatherSearch = 100
	}
	if cfg.GatherRadius <= 0 {
		cfg.GatherRadius = 1.0
	}
	return &DirectLight{cfg: cfg}
}

func (d *DirectLight) Integrate(state *core.RenderState, ray core.Ray, scene Scene, sampler core.Sampler) Result {
	sp, tHit, ok := scene.Intersect(ray)
	if !ok {
		return escaped(ray, scene)
	}
	alpha := 1.0
	if sp.Material != nil {
		alpha = sp.Material.GetAlpha(state, &sp, ray.Direction.Negate())
	}
	colour := d.shade(state, ray, sp, scene, sampler, d.cfg.MaxDepth)
	return Result{Colour: colour, Alpha: alpha, FirstHitT: tHit}
}

func (d *DirectLight) shade(state *core.RenderState, ray core.Ray, sp core.SurfacePoint, scene Scene, sampler core.Sampler, depth int) core.Vec3 {
	if sp.Material == nil {
		return core.Vec3{}
	}
	wo := ray.Direction.Negate()
	flags := sp.Material.InitBSDF(state, &sp)

	colour := emittedAt(state, &sp, wo)
	colour = colour.Add(estimateDirect(state, &sp, wo, flags, scene, sampler))

	if flags.Has(core.BSDFDiffuse) && d.cfg.DiffuseMap != nil && d.cfg.DiffuseMap.Len() > 0 {
		colour = colour.Add(d.diffuseIndirect(state, &sp, wo, flags, scene, sampler))
	}

	// Delta-lobe continuation, one level per recursive call.
	if depth > 1 {
		reflectS, refractS := sp.Material.GetSpecular(state, &sp, wo)
		for _, spec := range []*core.SpecularSample{reflectS, refractS} {
			if spec == nil || spec.Colour.IsZero() {
				continue
			}
			next := core.NewRay(sp.Position, spec.Direction.Normalize()).WithBias(shadowBiasFor(&sp))
			hit, _, ok := scene.Intersect(next)
			if !ok {
				colour = colour.Add(spec.Colour.MultiplyVec(scene.Background(next)))
				continue
			}
			colour = colour.Add(spec.Colour.MultiplyVec(d.shade(state, next, hit, scene, sampler, depth-1)))
		}
	}
	return colour
}

// diffuseIndirect estimates diffuse interreflection: either final gather
// (fire FGSamples cosine-weighted rays, read the diffuse map at each
// secondary hit, average) or, with FinalGather off, a
// direct radiance estimate from the map at the shading point itself.
func (d *DirectLight) diffuseIndirect(state *core.RenderState, sp *core.SurfacePoint, wo core.Vec3, flags core.BSDFFlags, scene Scene, sampler core.Sampler) core.Vec3 {
	if !d.cfg.FinalGather {
		return d.mapRadiance(state, sp, wo, flags)
	}
	if d.cfg.GatherCache != nil {
		if irradiance, ok := d.cfg.GatherCache.Lookup(sp.Position, sp.Ns); ok {
			return applyDiffuseAlbedo(state, sp, wo, flags, irradiance)
		}
	}

	var sum core.Vec3
	for i := 0; i < d.cfg.FGSamples; i++ {
		s := sampler.Get2D()
		dir, pdf := core.CosineSampleHemisphere(sp.Ns, s.X, s.Y)
		if pdf <= 0 {
			continue
		}
		gatherRay := core.NewRay(sp.Position, dir).WithBias(shadowBiasFor(sp))
		hit, _, ok := scene.Intersect(gatherRay)
		if !ok || hit.Material == nil {
			continue
		}
		hitFlags := hit.Material.InitBSDF(state, &hit)
		if !hitFlags.Has(core.BSDFDiffuse) {
			continue
		}
		radiance := d.mapRadiance(state, &hit, dir.Negate(), hitFlags)
		// Cosine-weighted sampling cancels the cos/pi of the ideal
		// gather estimator, leaving a plain average of pi * L.
		sum = sum.Add(radiance.Multiply(math.Pi))
	}
	irradiance := sum.Multiply(1.0 / float64(d.cfg.FGSamples))
	if d.cfg.GatherCache != nil {
		d.cfg.GatherCache.Store(sp.Position, sp.Ns, irradiance)
	}
	return applyDiffuseAlbedo(state, sp, wo, flags, irradiance)
}

// mapRadiance is the photon density estimate against the diffuse
// map at a shading point.
func (d *DirectLight) mapRadiance(state *core.RenderState, sp *core.SurfacePoint, wo core.Vec3, flags core.BSDFFlags) core.Vec3 {
	gather := d.cfg.DiffuseMap.Gather(sp.Position, d.cfg.GatherSearch, d.cfg.GatherRadius*d.cfg.GatherRadius)
	return photon.EstimateRadiance(sp.Position, gather, sp.Ns, photon.FilterCone, func(wi core.Vec3) core.Vec3 {
		cos := math.Max(1e-6, wi.Dot(sp.Ns))
		return sp.Material.Eval(state, sp, wo, wi, flags).Multiply(1 / cos)
	})
}

// applyDiffuseAlbedo converts a cached irradiance value back to exitant
// radiance through the local diffuse BRDF. The unit-wi trick reads the
// cosine-weighted Eval at normal incidence, recovering albedo/pi.
func applyDiffuseAlbedo(state *core.RenderState, sp *core.SurfacePoint, wo core.Vec3, flags core.BSDFFlags, irradiance core.Vec3) core.Vec3 {
	f := sp.Material.Eval(state, sp, wo, sp.Ns, flags)
	return f.MultiplyVec(irradiance)
}
