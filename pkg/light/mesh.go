package light

import (
	"math"

	"github.com/yafaray-go/renderer/pkg/core"
	"github.com/yafaray-go/renderer/pkg/primitive"
)

// Mesh is an area light backed by an arbitrary triangle mesh, sampling
// triangles proportional to their area
// via a cumulative-area table and then sampling uniformly within the
// chosen triangle.
type Mesh struct {
	Triangles []*primitive.Triangle
	cumArea   []float64
	totalArea float64
	Material  core.Material
}

func NewMesh(tris []*primitive.Triangle, mat core.Material) *Mesh {
	m := &Mesh{Triangles: tris, Material: mat}
	m.cumArea = make([]float64, len(tris))
	total := 0.0
	for i, t := range tris {
		total += t.Area()
		m.cumArea[i] = total
	}
	m.totalArea = total
	return m
}

func (m *Mesh) IsDelta() bool      { return false }
func (m *Mesh) NumSamples() int    { return 1 }
func (m *Mesh) CanIntersect() bool { return true }

func (m *Mesh) pickTriangle(u float64) (*primitive.Triangle, float64) {
	if len(m.Triangles) == 0 || m.totalArea <= 0 {
		return nil, 0
	}
	target := u * m.totalArea
	lo, hi := 0, len(m.cumArea)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if m.cumArea[mid] < target {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return m.Triangles[lo], m.Triangles[lo].Area() / m.totalArea
}

func (m *Mesh) sampleSurface(u1, u2, u3 float64) (core.Vec3, core.Vec3, float64) {
	tri, triPDF := m.pickTriangle(u1)
	if tri == nil {
		return core.Vec3{}, core.Vec3{}, 0
	}
	p, n := tri.SamplePoint(u2, u3)
	areaPDF := triPDF / tri.Area()
	return p, n, areaPDF
}

func (m *Mesh) Sample(point, normal core.Vec3, sample core.Vec2) core.LightSample {
	p, n, areaPDF := m.sampleSurface(sample.X, sample.Y, sample.X)
	if areaPDF <= 0 {
		return core.LightSample{}
	}
	toLight := p.Subtract(point)
	dist := toLight.Length()
	if dist == 0 {
		return core.LightSample{}
	}
	dir := toLight.Multiply(1 / dist)
	cosTheta := math.Abs(n.Dot(dir.Negate()))
	if cosTheta < 1e-8 {
		return core.LightSample{Point: p, Normal: n, Direction: dir, Distance: dist, PDF: 0}
	}
	pdf := areaPDF * dist * dist / cosTheta
	sp := core.SurfacePoint{Position: p, Ng: n, Ns: n, Material: m.Material}
	emission := emitterEmission(m.Material, &sp, dir.Negate())
	return core.LightSample{Point: p, Normal: n, Direction: dir, Distance: dist, Emission: emission, PDF: pdf}
}

func (m *Mesh) PDF(point, normal, direction core.Vec3) float64 {
	ray := core.NewRay(point, direction)
	best := math.Inf(1)
	var bestN core.Vec3
	found := false
	for _, t := range m.Triangles {
		if hit, ok := t.Intersect(ray, 1e-6, best); ok {
			best = hit.T
			sp := t.GetSurfacePoint(ray, hit)
			bestN = sp.Ng
			found = true
		}
	}
	if !found {
		return 0
	}
	cosTheta := math.Abs(bestN.Dot(direction.Negate()))
	if cosTheta < 1e-8 {
		return 0
	}
	return (1.0 / m.totalArea) * best * best / cosTheta
}

func (m *Mesh) SampleEmission(samplePoint, sampleDirection core.Vec2) core.EmissionSample {
	p, n, areaPDF := m.sampleSurface(samplePoint.X, samplePoint.Y, sampleDirection.X)
	sp := core.SurfacePoint{Position: p, Ng: n, Ns: n, Material: m.Material}
	dir, dirPDF := core.CosineSampleHemisphere(n, sampleDirection.X, sampleDirection.Y)
	emission := emitterEmission(m.Material, &sp, dir)
	return core.EmissionSample{Point: p, Normal: n, Direction: dir, Emission: emission, AreaPDF: areaPDF, DirectionPDF: dirPDF}
}

func (m *Mesh) EmissionPDF(point, direction core.Vec3) float64 {
	return 1.0 / m.totalArea
}

func (m *Mesh) Emit(ray core.Ray) core.Vec3 { return core.Vec3{} }
