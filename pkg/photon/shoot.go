package photon

import (
	"context"
	"math"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"github.com/yafaray-go/renderer/pkg/core"
)

// Intersector is the scene-traversal contract photon shooting needs: just
// the closest-hit query, matching core.Primitive's own signature so the
// accelerator's root node satisfies this directly.
type Intersector interface {
	Intersect(ray core.Ray, tMin, tMax float64) (core.IntersectData, bool)
}

// PowerLight is a core.Light that can additionally report its approximate
// total emitted power, used to proportion the photon budget across
// lights. Lights that don't implement it share the budget equally.
type PowerLight interface {
	core.Light
	Power() core.Vec3
}

// ShootOptions configures one photon-shooting pass.
type ShootOptions struct {
	NumPhotons  int
	MaxBounces  int
	Chunks      int     // parallel work units; 0 picks 8
	RRThreshold float64 // from the fourth bounce on, Russian roulette kicks in once throughput falls below this luminance
	StoreCaustics bool // true: only store photons that arrived via >=1 specular bounce and no diffuse bounce
	StoreDiffuse  bool // true: only store purely diffuse-bounce photons
}

// rngSampler is a minimal core.Sampler backed by a private math/rand
// stream, sufficient for ScatterPhoton's BSDF sampling during shooting.
type rngSampler struct{ r *rand.Rand }

func (s rngSampler) Get1D() float64    { return s.r.Float64() }
func (s rngSampler) Get2D() core.Vec2  { return core.NewVec2(s.r.Float64(), s.r.Float64()) }
func (s rngSampler) Get3D() core.Vec3  { return core.NewVec3(s.r.Float64(), s.r.Float64(), s.r.Float64()) }
func (s rngSampler) Rand() *rand.Rand  { return s.r }

func lightWeights(lights []core.Light) []float64 {
	weights := make([]float64, len(lights))
	total := 0.0
	for i, l := range lights {
		w := 1.0
		if pl, ok := l.(PowerLight); ok {
			w = pl.Power().Luminance()
			if w <= 0 {
				w = 1.0
			}
		}
		weights[i] = w
		total += w
	}
	if total <= 0 {
		return weights
	}
	for i := range weights {
		weights[i] /= total
	}
	return weights
}

func pickLight(weights []float64, u float64) int {
	cum := 0.0
	for i, w := range weights {
		cum += w
		if u < cum {
			return i
		}
	}
	return len(weights) - 1
}

// Shoot runs a full photon-shooting pass: photon budget is split into
// Chunks work units dispatched over an errgroup, each worker tracing its
// share into a private slice; the slices are concatenated once all
// workers finish.
func Shoot(ctx context.Context, intersector Intersector, lights []core.Light, opts ShootOptions, seed int64) ([]Photon, error) {
	if len(lights) == 0 || opts.NumPhotons <= 0 {
		return nil, nil
	}
	chunks := opts.Chunks
	if chunks <= 0 {
		chunks = 8
	}
	weights := lightWeights(lights)

	base := opts.NumPhotons / chunks
	remainder := opts.NumPhotons % chunks
	results := make([][]Photon, chunks)

	g, gctx := errgroup.WithContext(ctx)
	for c := 0; c < chunks; c++ {
		c := c
		n := base
		if c < remainder {
			n++
		}
		g.Go(func() error {
			r := rand.New(rand.NewSource(seed + int64(c)*2654435761))
			sampler := rngSampler{r: r}
			out := make([]Photon, 0, n)
			for i := 0; i < n; i++ {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				out = shootOne(intersector, lights, weights, sampler, opts, out)
			}
			results[c] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}
	photons := make([]Photon, 0, total)
	for _, r := range results {
		photons = append(photons, r...)
	}
	return photons, nil
}

func shootOne(intersector Intersector, lights []core.Light, weights []float64, sampler core.Sampler, opts ShootOptions, out []Photon) []Photon {
	idx := pickLight(weights, sampler.Get1D())
	light := lights[idx]
	pdfLight := weights[idx]
	if pdfLight <= 0 {
		return out
	}

	es := light.SampleEmission(sampler.Get2D(), sampler.Get2D())
	if es.AreaPDF <= 0 || es.DirectionPDF <= 0 {
		return out
	}
	power := es.Emission.Multiply(1.0 / (pdfLight * es.AreaPDF * es.DirectionPDF))

	ray := core.NewRay(es.Point, es.Direction).WithBias(1e-4)
	sawSpecular := false
	sawDiffuse := false

	for bounce := 0; bounce < opts.MaxBounces; bounce++ {
		hit, ok := intersector.Intersect(ray, ray.TMin, ray.TMax)
		if !ok {
			break
		}
		sp := hit.PrimitiveRef.GetSurfacePoint(ray, hit)
		if sp.Material == nil {
			break
		}

		storeHere := (bounce > 0) &&
			((opts.StoreCaustics && sawSpecular && !sawDiffuse) ||
				(opts.StoreDiffuse && sawDiffuse && !sawSpecular) ||
				(!opts.StoreCaustics && !opts.StoreDiffuse))
		if storeHere {
			out = append(out, Photon{
				Position:  sp.Position,
				Direction: ray.Direction.Negate(),
				Power:     power,
				Normal:    sp.Ns,
				HasNormal: true,
			})
		}

		wo, tinted, flags, scattered := sp.Material.ScatterPhoton(&sp, ray.Direction.Negate(), power, sampler)
		if !scattered {
			break
		}
		if flags&core.BSDFSpecular != 0 {
			sawSpecular = true
		} else {
			sawDiffuse = true
		}
		power = tinted

		survival := math.Min(1, power.Luminance()/math.Max(opts.RRThreshold, 1e-6))
		if bounce > 2 {
			if sampler.Get1D() > survival {
				break
			}
			power = power.Multiply(1 / survival)
		}

		ray = core.NewRay(sp.Position, wo).WithBias(1e-4)
	}
	return out
}
