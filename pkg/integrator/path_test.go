package integrator

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yafaray-go/renderer/pkg/bsdf"
	"github.com/yafaray-go/renderer/pkg/core"
	"github.com/yafaray-go/renderer/pkg/light"
	"github.com/yafaray-go/renderer/pkg/primitive"
)

// listScene is a brute-force integrator.Scene over a primitive list,
// small enough that tests need no accelerator.
type listScene struct {
	prims  []core.Primitive
	lights []core.Light
	bg     core.Vec3
}

func (s *listScene) Intersect(ray core.Ray) (core.SurfacePoint, float64, bool) {
	best := ray.TMax
	var bestHit core.IntersectData
	found := false
	for _, p := range s.prims {
		if hit, ok := p.Intersect(ray, math.Max(ray.TMin, 1e-6), best); ok {
			best = hit.T
			bestHit = hit
			found = true
		}
	}
	if !found {
		return core.SurfacePoint{}, 0, false
	}
	sp := bestHit.PrimitiveRef.GetSurfacePoint(ray, bestHit)
	return sp, bestHit.T, true
}

func (s *listScene) Occluded(origin, dir core.Vec3, dist float64, exclude core.Primitive) (bool, core.Vec3) {
	ray := core.Ray{Origin: origin, Direction: dir, TMin: 1e-4, TMax: dist - 1e-4}
	for _, p := range s.prims {
		if p == exclude {
			continue
		}
		if _, ok := p.Intersect(ray, ray.TMin, ray.TMax); ok {
			return true, core.Vec3{}
		}
	}
	return false, core.NewVec3(1, 1, 1)
}

func (s *listScene) Lights() []core.Light { return s.lights }

func (s *listScene) Background(ray core.Ray) core.Vec3 { return s.bg }

// fixedSampler is a deterministic test sampler.
type fixedSampler struct {
	r *rand.Rand
}

func newFixedSampler(seed int64) *fixedSampler {
	return &fixedSampler{r: rand.New(rand.NewSource(seed))}
}

func (f *fixedSampler) Get1D() float64   { return f.r.Float64() }
func (f *fixedSampler) Get2D() core.Vec2 { return core.NewVec2(f.r.Float64(), f.r.Float64()) }
func (f *fixedSampler) Get3D() core.Vec3 {
	return core.NewVec3(f.r.Float64(), f.r.Float64(), f.r.Float64())
}
func (f *fixedSampler) Rand() *rand.Rand { return f.r }

func TestPathTracer_EscapedRayReturnsBackground(t *testing.T) {
	scene := &listScene{bg: core.NewVec3(0.25, 0.5, 0.75)}
	pt := NewPathTracer(PathConfig{MaxDepth: 4})
	state := &core.RenderState{}

	res := pt.Integrate(state, core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), scene, newFixedSampler(1))
	require.Equal(t, scene.bg, res.Colour)
	require.True(t, math.IsInf(res.FirstHitT, 1))
	require.Zero(t, res.Alpha)
}

func TestPathTracer_DirectHitOnEmitter(t *testing.T) {
	emissive := bsdf.NewEmissive(core.NewVec3(4, 4, 4))
	scene := &listScene{
		prims: []core.Primitive{primitive.NewSphere(core.NewVec3(0, 0, -3), 1, emissive)},
	}
	pt := NewPathTracer(PathConfig{MaxDepth: 4})
	res := pt.Integrate(&core.RenderState{}, core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), scene, newFixedSampler(2))
	require.InDelta(t, 4.0, res.Colour.X, 1e-9)
	require.InDelta(t, 2.0, res.FirstHitT, 1e-9)
	require.InDelta(t, 1.0, res.Alpha, 1e-9)
}

// TestPathTracer_DirectionalLitSphere: a
// white diffuse sphere lit head-on by a unit directional light. The
// point facing the light reflects albedo/pi * cos(0) * E = 1/pi.
func TestPathTracer_DirectionalLitSphere(t *testing.T) {
	white := bsdf.NewLambert(core.NewVec3(1, 1, 1))
	scene := &listScene{
		prims:  []core.Primitive{primitive.NewSphere(core.NewVec3(0, 0, -5), 1, white)},
		lights: []core.Light{light.NewDirectional(core.NewVec3(0, 0, -1), core.NewVec3(1, 1, 1))},
	}
	pt := NewPathTracer(PathConfig{MaxDepth: 1})

	// Average a few samples: depth 1 means direct lighting only, so the
	// only noise is the (deterministic) light sampling, which is exact
	// for a directional light.
	var sum core.Vec3
	const n = 8
	for i := 0; i < n; i++ {
		res := pt.Integrate(&core.RenderState{}, core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), scene, newFixedSampler(int64(i)))
		sum = sum.Add(res.Colour)
	}
	got := sum.Multiply(1.0 / n)
	require.InDelta(t, 1.0/math.Pi, got.X, 1e-6)
}

// TestPathTracer_ShadowedPoint: geometry between the surface and the
// light kills the direct contribution.
func TestPathTracer_ShadowedPoint(t *testing.T) {
	white := bsdf.NewLambert(core.NewVec3(1, 1, 1))
	floor := primitive.NewSphere(core.NewVec3(0, -101, 0), 100, white)
	blocker := primitive.NewSphere(core.NewVec3(0, 2, 0), 0.5, white)
	scene := &listScene{
		prims:  []core.Primitive{floor, blocker},
		lights: []core.Light{light.NewPoint(core.NewVec3(0, 5, 0), core.NewVec3(10, 10, 10))},
	}
	pt := NewPathTracer(PathConfig{MaxDepth: 1})

	// Straight down onto the floor point below the blocker: the shadow
	// ray toward the light passes through the blocker.
	res := pt.Integrate(&core.RenderState{}, core.NewRay(core.Vec3{}, core.NewVec3(0, -1, 0)), scene, newFixedSampler(3))
	require.InDelta(t, 0.0, res.Colour.Luminance(), 1e-9)
}

// TestRussianRoulette_Unbiased: with matched seeds and depth, the mean
// of RR-terminated paths tracks the non-RR mean within sampling noise.
func TestRussianRoulette_Unbiased(t *testing.T) {
	grey := bsdf.NewLambert(core.NewVec3(0.6, 0.6, 0.6))
	emissive := bsdf.NewEmissive(core.NewVec3(1, 1, 1))
	scene := &listScene{
		prims: []core.Primitive{
			primitive.NewSphere(core.NewVec3(0, -101, -5), 100, grey),
			primitive.NewSphere(core.NewVec3(0, 8, -5), 4, emissive),
		},
	}
	ray := core.NewRay(core.Vec3{}, core.NewVec3(0, -0.3, -1).Normalize())

	mean := func(rrMin int, samples int) float64 {
		pt := NewPathTracer(PathConfig{MaxDepth: 6, RussianRouletteMinBounces: rrMin})
		sum := 0.0
		for i := 0; i < samples; i++ {
			res := pt.Integrate(&core.RenderState{}, ray, scene, newFixedSampler(int64(i)))
			sum += res.Colour.Luminance()
		}
		return sum / float64(samples)
	}

	const samples = 4000
	noRR := mean(100, samples) // RR never kicks in below depth 100
	withRR := mean(2, samples)
	require.Greater(t, noRR, 0.01, "scene should carry energy")
	require.InDelta(t, noRR, withRR, math.Max(0.1*noRR, 0.02),
		"RR mean %.4f vs non-RR mean %.4f", withRR, noRR)
}

func TestDirectLight_UsesBackgroundForSpecularEscape(t *testing.T) {
	glass := bsdf.NewGlass(1.5)
	scene := &listScene{
		prims:  []core.Primitive{primitive.NewSphere(core.NewVec3(0, 0, -3), 1, glass)},
		lights: []core.Light{light.NewDirectional(core.NewVec3(0, -1, 0), core.NewVec3(1, 1, 1))},
		bg:     core.NewVec3(0.5, 0.5, 0.5),
	}
	dl := NewDirectLight(DirectConfig{MaxDepth: 4})
	res := dl.Integrate(&core.RenderState{}, core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), scene, newFixedSampler(5))
	// The refracted/reflected chain reaches the background, so some
	// non-zero energy returns.
	require.Greater(t, res.Colour.Luminance(), 0.0)
}
