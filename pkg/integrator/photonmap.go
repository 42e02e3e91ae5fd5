package integrator

import (
	"context"
	"math"

	"github.com/yafaray-go/renderer/pkg/core"
	"github.com/yafaray-go/renderer/pkg/photon"
)

// PhotonMapConfig configures the photon-mapping integrator and its
// shooting pre-pass.
type PhotonMapConfig struct {
	CausticPhotons int
	DiffusePhotons int
	MaxBounces     int

	Search int     // k nearest photons per estimate
	Radius float64 // r_max for estimates

	FinalGather bool
	FGSamples   int
	FGBounces   int

	DirectDepth int // specular recursion limit for the direct component
}

func (c PhotonMapConfig) withDefaults() PhotonMapConfig {
	if c.CausticPhotons <= 0 {
		c.CausticPhotons = 100000
	}
	if c.DiffusePhotons <= 0 {
		c.DiffusePhotons = 100000
	}
	if c.MaxBounces <= 0 {
		c.MaxBounces = 8
	}
	if c.Search <= 0 {
		c.Search = 100
	}
	if c.Radius <= 0 {
		c.Radius = 1.0
	}
	if c.FGSamples <= 0 {
		c.FGSamples = 16
	}
	if c.FGBounces <= 0 {
		c.FGBounces = 1
	}
	if c.DirectDepth <= 0 {
		c.DirectDepth = 3
	}
	return c
}

// Maps bundles the two photon maps the integrators read: the caustic map
// (photons that arrived via at least one specular bounce) and the
// diffuse map (diffuse-only paths). Either may be empty.
type Maps struct {
	Caustic *photon.Map
	Diffuse *photon.Map
}

// BuildMaps runs the photon-shooting pre-pass for both map kinds. An
// entirely empty result is reported as a PhotonMapEmpty error; callers
// downgrade it to "no caustics" with a warning rather than aborting
// the render.
func BuildMaps(ctx context.Context, intersector photon.Intersector, lights []core.Light, cfg PhotonMapConfig, seed int64, logger core.Logger) (*Maps, error) {
	cfg = cfg.withDefaults()

	caustic, err := photon.Shoot(ctx, intersector, lights, photon.ShootOptions{
		NumPhotons:    cfg.CausticPhotons,
		MaxBounces:    cfg.MaxBounces,
		RRThreshold:   0.1,
		StoreCaustics: true,
	}, seed)
	if err != nil {
		return nil, err
	}
	diffuse, err := photon.Shoot(ctx, intersector, lights, photon.ShootOptions{
		NumPhotons:   cfg.DiffusePhotons,
		MaxBounces:   cfg.MaxBounces,
		RRThreshold:  0.1,
		StoreDiffuse: true,
	}, seed+1)
	if err != nil {
		return nil, err
	}

	// Shot photons carry the full light power each; normalize to the
	// per-photon share so the density estimate is unbiased.
	normalizePower(caustic, cfg.CausticPhotons)
	normalizePower(diffuse, cfg.DiffusePhotons)

	if logger != nil {
		logger.Infow("photon maps built",
			"caustic_stored", len(caustic), "diffuse_stored", len(diffuse))
	}
	maps := &Maps{Caustic: photon.NewMap(caustic), Diffuse: photon.NewMap(diffuse)}
	if len(caustic) == 0 && len(diffuse) == 0 {
		return maps, core.NewError(core.KindPhotonMapEmpty, nil, "photon pass stored no photons")
	}
	return maps, nil
}

func normalizePower(photons []photon.Photon, emitted int) {
	if emitted <= 0 {
		return
	}
	inv := 1.0 / float64(emitted)
	for i := range photons {
		photons[i].Power = photons[i].Power.Multiply(inv)
	}
}

// PhotonMapper is the photon-mapping surface integrator: direct
// lighting by MIS, caustics from the caustic map, diffuse
// interreflection from the diffuse map directly or via final gather.
type PhotonMapper struct {
	cfg   PhotonMapConfig
	maps  *Maps
	cache *photon.GatherCache
}

func NewPhotonMapper(cfg PhotonMapConfig, maps *Maps) *PhotonMapper {
	cfg = cfg.withDefaults()
	var cache *photon.GatherCache
	if cfg.FinalGather {
		cache = photon.NewGatherCache(4096, cfg.Radius*0.5)
	}
	return &PhotonMapper{cfg: cfg, maps: maps, cache: cache}
}

func (pm *PhotonMapper) Integrate(state *core.RenderState, ray core.Ray, scene Scene, sampler core.Sampler) Result {
	sp, tHit, ok := scene.Intersect(ray)
	if !ok {
		return escaped(ray, scene)
	}
	alpha := 1.0
	if sp.Material != nil {
		alpha = sp.Material.GetAlpha(state, &sp, ray.Direction.Negate())
	}
	colour := pm.shade(state, ray, sp, scene, sampler, pm.cfg.DirectDepth)
	return Result{Colour: colour, Alpha: alpha, FirstHitT: tHit}
}

func (pm *PhotonMapper) shade(state *core.RenderState, ray core.Ray, sp core.SurfacePoint, scene Scene, sampler core.Sampler, depth int) core.Vec3 {
	if sp.Material == nil {
		return core.Vec3{}
	}
	wo := ray.Direction.Negate()
	flags := sp.Material.InitBSDF(state, &sp)

	colour := emittedAt(state, &sp, wo)
	colour = colour.Add(estimateDirect(state, &sp, wo, flags, scene, sampler))

	if flags.Has(core.BSDFDiffuse) {
		if pm.maps.Caustic != nil && pm.maps.Caustic.Len() > 0 {
			colour = colour.Add(pm.radianceFrom(pm.maps.Caustic, state, &sp, wo, flags))
		}
		if pm.maps.Diffuse != nil && pm.maps.Diffuse.Len() > 0 {
			if pm.cfg.FinalGather {
				colour = colour.Add(pm.finalGather(state, &sp, wo, flags, scene, sampler))
			} else {
				colour = colour.Add(pm.radianceFrom(pm.maps.Diffuse, state, &sp, wo, flags))
			}
		}
	}

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
			colour = colour.Add(spec.Colour.MultiplyVec(pm.shade(state, next, hit, scene, sampler, depth-1)))
		}
	}
	return colour
}

func (pm *PhotonMapper) radianceFrom(m *photon.Map, state *core.RenderState, sp *core.SurfacePoint, wo core.Vec3, flags core.BSDFFlags) core.Vec3 {
	gather := m.Gather(sp.Position, pm.cfg.Search, pm.cfg.Radius*pm.cfg.Radius)
	return photon.EstimateRadiance(sp.Position, gather, sp.Ns, photon.FilterCone, func(wi core.Vec3) core.Vec3 {
		cos := math.Max(1e-6, wi.Dot(sp.Ns))
		return sp.Material.Eval(state, sp, wo, wi, flags).Multiply(1 / cos)
	})
}

// finalGather fires FGSamples cosine-weighted rays and reads the diffuse
// map where they land, memoizing per shading cluster.
func (pm *PhotonMapper) finalGather(state *core.RenderState, sp *core.SurfacePoint, wo core.Vec3, flags core.BSDFFlags, scene Scene, sampler core.Sampler) core.Vec3 {
	if pm.cache != nil {
		if irradiance, ok := pm.cache.Lookup(sp.Position, sp.Ns); ok {
			return applyDiffuseAlbedo(state, sp, wo, flags, irradiance)
		}
	}
	var sum core.Vec3
	for i := 0; i < pm.cfg.FGSamples; i++ {
		s := sampler.Get2D()
		dir, pdf := core.CosineSampleHemisphere(sp.Ns, s.X, s.Y)
		if pdf <= 0 {
			continue
		}
		ray := core.NewRay(sp.Position, dir).WithBias(shadowBiasFor(sp))
		sum = sum.Add(pm.gatherBounce(state, ray, scene, sampler, pm.cfg.FGBounces).Multiply(math.Pi))
	}
	irradiance := sum.Multiply(1.0 / float64(pm.cfg.FGSamples))
	if pm.cache != nil {
		pm.cache.Store(sp.Position, sp.Ns, irradiance)
	}
	return applyDiffuseAlbedo(state, sp, wo, flags, irradiance)
}

// gatherBounce reads the diffuse map at a gather ray's hit; with bounces
// remaining it lets the gather ray continue once more through a diffuse
// surface (fg_bounces).
func (pm *PhotonMapper) gatherBounce(state *core.RenderState, ray core.Ray, scene Scene, sampler core.Sampler, bounces int) core.Vec3 {
	hit, _, ok := scene.Intersect(ray)
	if !ok || hit.Material == nil {
		return core.Vec3{}
	}
	hitFlags := hit.Material.InitBSDF(state, &hit)
	if !hitFlags.Has(core.BSDFDiffuse) {
		return core.Vec3{}
	}
	radiance := pm.radianceFrom(pm.maps.Diffuse, state, &hit, ray.Direction.Negate(), hitFlags)
	if bounces > 1 {
		s := sampler.Get2D()
		dir, pdf := core.CosineSampleHemisphere(hit.Ns, s.X, s.Y)
		if pdf > 0 {
			next := core.NewRay(hit.Position, dir).WithBias(shadowBiasFor(&hit))
			bounced := pm.gatherBounce(state, next, scene, sampler, bounces-1)
			f := hit.Material.Eval(state, &hit, ray.Direction.Negate(), dir, hitFlags)
			radiance = radiance.Add(f.MultiplyVec(bounced).Multiply(1 / pdf))
		}
	}
	return radiance
}
