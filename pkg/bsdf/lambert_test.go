package bsdf

import (
	"math"
	"math/rand"
	"testing"

	"github.com/yafaray-go/renderer/pkg/core"
)

type testSampler struct{ r *rand.Rand }

func (s testSampler) Get1D() float64   { return s.r.Float64() }
func (s testSampler) Get2D() core.Vec2 { return core.NewVec2(s.r.Float64(), s.r.Float64()) }
func (s testSampler) Get3D() core.Vec3 {
	return core.NewVec3(s.r.Float64(), s.r.Float64(), s.r.Float64())
}
func (s testSampler) Rand() *rand.Rand { return s.r }

func upFacingPoint() core.SurfacePoint {
	sp := core.SurfacePoint{
		Position: core.Vec3{},
		Ng:       core.NewVec3(0, 0, 1),
		Ns:       core.NewVec3(0, 0, 1),
	}
	sp.Nu, sp.Nv = core.OrthonormalBasis(sp.Ns)
	return sp
}

func TestLambert_EvalMatchesCosineWeightedBRDF(t *testing.T) {
	l := NewLambert(core.NewVec3(0.8, 0.8, 0.8))
	sp := upFacingPoint()
	state := &core.RenderState{}
	flags := l.InitBSDF(state, &sp)
	if !flags.Has(core.BSDFDiffuse) {
		t.Fatal("lambert must publish the diffuse flag")
	}

	wi := core.NewVec3(0, 0, 1) // normal incidence, cos = 1
	got := l.Eval(state, &sp, core.NewVec3(0, 0, 1), wi, flags)
	want := 0.8 / math.Pi
	if math.Abs(got.X-want) > 1e-12 {
		t.Errorf("Eval at normal incidence = %g, want %g", got.X, want)
	}
}

func TestLambert_PDFIntegratesToOne(t *testing.T) {
	l := NewLambert(core.NewVec3(0.5, 0.5, 0.5))
	sp := upFacingPoint()
	state := &core.RenderState{}
	flags := l.InitBSDF(state, &sp)

	// Monte-Carlo integrate the PDF over the hemisphere with uniform
	// directional sampling: the integral of any PDF is 1.
	r := rand.New(rand.NewSource(9))
	const n = 200000
	sum := 0.0
	for i := 0; i < n; i++ {
		z := r.Float64()
		phi := 2 * math.Pi * r.Float64()
		sinTheta := math.Sqrt(1 - z*z)
		wi := core.NewVec3(sinTheta*math.Cos(phi), sinTheta*math.Sin(phi), z)
		sum += l.PDF(state, &sp, core.NewVec3(0, 0, 1), wi, flags) * 2 * math.Pi
	}
	if got := sum / n; math.Abs(got-1) > 0.02 {
		t.Errorf("hemisphere PDF integral = %g, want ~1", got)
	}
}

func TestLambert_SampleStaysInHemisphere(t *testing.T) {
	l := NewLambert(core.NewVec3(0.5, 0.5, 0.5))
	sp := upFacingPoint()
	state := &core.RenderState{}
	l.InitBSDF(state, &sp)
	sampler := testSampler{r: rand.New(rand.NewSource(10))}

	for i := 0; i < 1000; i++ {
		s, ok := l.Sample(state, &sp, core.NewVec3(0, 0, 1), sampler)
		if !ok {
			continue
		}
		if s.Scattered.Direction.Dot(sp.Ns) < 0 {
			t.Fatal("cosine-sampled direction left the upper hemisphere")
		}
		if s.PDF <= 0 {
			t.Fatal("diffuse sample must carry a positive PDF")
		}
	}
}

func TestGlass_HeadOnRefractionAndReflection(t *testing.T) {
	g := NewGlass(1.5)
	sp := upFacingPoint()
	sp.FrontFace = true
	state := &core.RenderState{}

	// Head-on: refraction continues downward.
	wo := core.NewVec3(0, 0, 1)
	reflectS, refractS := g.GetSpecular(state, &sp, wo)
	if refractS == nil {
		t.Fatal("head-on ray through glass must refract")
	}
	if refractS.Direction.Z >= 0 {
		t.Errorf("refracted direction %v should continue through the surface", refractS.Direction)
	}
	if reflectS == nil {
		t.Fatal("glass should also report the mirror lobe")
	}
	if reflectS.Direction.Z <= 0 {
		t.Errorf("reflected direction %v should leave the surface", reflectS.Direction)
	}
}

func TestMask_BlendsBetweenMaterials(t *testing.T) {
	dark := NewLambert(core.NewVec3(0, 0, 0))
	bright := NewLambert(core.NewVec3(1, 1, 1))
	sp := upFacingPoint()
	state := &core.RenderState{}

	m0 := NewMask(dark, bright, 0) // fully material a
	flags := m0.InitBSDF(state, &sp)
	e0 := m0.Eval(state, &sp, core.NewVec3(0, 0, 1), core.NewVec3(0, 0, 1), flags)

	m1 := NewMask(dark, bright, 1) // fully material b
	flags = m1.InitBSDF(state, &sp)
	e1 := m1.Eval(state, &sp, core.NewVec3(0, 0, 1), core.NewVec3(0, 0, 1), flags)

	if e0.X >= e1.X {
		t.Errorf("mask blend not monotone: mask=0 gives %g, mask=1 gives %g", e0.X, e1.X)
	}
}
