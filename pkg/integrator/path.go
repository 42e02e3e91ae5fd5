package integrator

import (
	"math"

	"github.com/yafaray-go/renderer/pkg/core"
	"github.com/yafaray-go/renderer/pkg/photon"
)

// CausticType selects how caustic light paths are rendered.
type CausticType int

const (
	CausticNone CausticType = iota
	CausticPath
	CausticPhoton
	CausticBoth
)

// ParseCausticType maps the caustic_type configuration values.
func ParseCausticType(s string) (CausticType, bool) {
	switch s {
	case "none":
		return CausticNone, true
	case "path":
		return CausticPath, true
	case "photon":
		return CausticPhoton, true
	case "both":
		return CausticBoth, true
	}
	return CausticNone, false
}

// PathConfig carries the path tracer's termination and caustic policy.
type PathConfig struct {
	MaxDepth                  int
	RussianRouletteMinBounces int

	Caustics      CausticType
	CausticMap    *photon.Map // read when Caustics is Photon or Both
	CausticSearch int         // k for the caustic-map gather
	CausticRadius float64
}

// PathTracer is the Monte-Carlo path tracing integrator. The bounce
// loop is iterative to keep stack use flat at high depths.
type PathTracer struct {
	cfg PathConfig
}

func NewPathTracer(cfg PathConfig) *PathTracer {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 5
	}
	if cfg.CausticSearch <= 0 {
		cfg.CausticSearch = 100
	}
	if cfg.CausticRadius <= 0 {
		cfg.CausticRadius = 1.0
	}
	return &PathTracer{cfg: cfg}
}

func (p *PathTracer) Integrate(state *core.RenderState, ray core.Ray, scene Scene, sampler core.Sampler) Result {
	var colour core.Vec3
	throughput := core.NewVec3(1, 1, 1)
	firstHitT := math.Inf(1)
	alpha := 0.0

	// Specular chains keep emission enabled: their vertices were not
	// importance-sampled against the lights, so the light has to be
	// picked up on direct hit. cameOffDiffuse
	// tracks whether the path has already scattered diffusely; a
	// specular continuation after that point is a caustic path and is
	// only traced here when the caustic policy says so.
	includeEmission := true
	cameOffDiffuse := false

	for bounce := 0; ; bounce++ {
		sp, tHit, ok := scene.Intersect(ray)
		if !ok {
			colour = colour.Add(throughput.MultiplyVec(scene.Background(ray)))
			break
		}
		if bounce == 0 {
			firstHitT = tHit
			alpha = 1.0
			if sp.Material != nil {
				alpha = sp.Material.GetAlpha(state, &sp, ray.Direction.Negate())
			}
		}
		if sp.Material == nil {
			break
		}

		wo := ray.Direction.Negate()
		flags := sp.Material.InitBSDF(state, &sp)

		// Emission counts on direct/specular hits; after a light-sampled
		// vertex it would double-count -- but only for surfaces that
		// estimateDirect can actually sample, i.e. those registered as
		// lights. An emitter without a light back-pointer is reachable
		// through BSDF sampling alone and always contributes.
		if includeEmission || sp.Light == nil {
			colour = colour.Add(throughput.MultiplyVec(emittedAt(state, &sp, wo)))
		}

		colour = colour.Add(throughput.MultiplyVec(estimateDirect(state, &sp, wo, flags, scene, sampler)))

		if p.readsCausticMap() && flags.Has(core.BSDFDiffuse) {
			colour = colour.Add(throughput.MultiplyVec(p.causticRadiance(state, &sp, wo, flags)))
		}

		if bounce >= p.cfg.MaxDepth-1 {
			break
		}

		s, ok := sp.Material.Sample(state, &sp, wo, sampler)
		if !ok {
			break
		}
		if s.IsSpecular() {
			// Delta lobe: no MIS, next emission hit counts directly --
			// unless it would form a caustic the photon map owns.
			includeEmission = !cameOffDiffuse ||
				p.cfg.Caustics == CausticPath || p.cfg.Caustics == CausticBoth
			throughput = throughput.MultiplyVec(s.Attenuation)
		} else {
			if s.PDF <= 0 {
				break
			}
			cameOffDiffuse = true
			includeEmission = false
			throughput = throughput.MultiplyVec(s.Weight)
		}
		if throughput.IsZero() {
			break
		}

		// Russian roulette: survival probability is
		// the clamped max throughput component, compensation 1/p.
		if bounce+1 >= p.cfg.RussianRouletteMinBounces {
			survival := clamp(maxComponent(throughput), 0, 0.95)
			if sampler.Get1D() > survival {
				break
			}
			if survival > 0 {
				throughput = throughput.Multiply(1 / survival)
			}
		}

		ray = core.NewRay(sp.Position, s.Scattered.Direction.Normalize()).WithBias(shadowBiasFor(&sp))
	}

	return Result{Colour: colour, Alpha: alpha, FirstHitT: firstHitT}
}

func (p *PathTracer) readsCausticMap() bool {
	return (p.cfg.Caustics == CausticPhoton || p.cfg.Caustics == CausticBoth) &&
		p.cfg.CausticMap != nil && p.cfg.CausticMap.Len() > 0
}

// causticRadiance reads the caustic photon map at a diffuse vertex.
// Material.Eval returns the BSDF value
// pre-multiplied by cos(theta_i) by convention, so the cosine is divided
// back out: the photon density already accounts for it.
func (p *PathTracer) causticRadiance(state *core.RenderState, sp *core.SurfacePoint, wo core.Vec3, flags core.BSDFFlags) core.Vec3 {
	gather := p.cfg.CausticMap.Gather(sp.Position, p.cfg.CausticSearch, p.cfg.CausticRadius*p.cfg.CausticRadius)
	return photon.EstimateRadiance(sp.Position, gather, sp.Ns, photon.FilterCone, func(wi core.Vec3) core.Vec3 {
		cos := math.Max(1e-6, wi.Dot(sp.Ns))
		return sp.Material.Eval(state, sp, wo, wi, flags).Multiply(1 / cos)
	})
}

func maxComponent(v core.Vec3) float64 {
	return math.Max(v.X, math.Max(v.Y, v.Z))
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
