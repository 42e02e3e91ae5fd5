package light

import (
	"math"

	"github.com/yafaray-go/renderer/pkg/core"
	"github.com/yafaray-go/renderer/pkg/primitive"
)

// emitterEmission reads emission from mat if it implements core.Emitter,
// so non-emissive backing materials read as black.
func emitterEmission(mat core.Material, sp *core.SurfacePoint, wo core.Vec3) core.Vec3 {
	if e, ok := mat.(core.Emitter); ok {
		return e.Emit(nil, sp, wo)
	}
	return core.Vec3{}
}

// Quad is a rectangular area light spanned by corner+u+v, sampled
// uniformly over its area with an area-to-solid-angle PDF conversion.
type Quad struct {
	Corner, U, V, Normal core.Vec3
	Area                 float64
	Material             core.Material
}

func NewQuad(corner, u, v core.Vec3, mat core.Material) *Quad {
	normal := u.Cross(v)
	area := normal.Length()
	return &Quad{Corner: corner, U: u, V: v, Normal: normal.Normalize(), Area: area, Material: mat}
}

func (q *Quad) IsDelta() bool      { return false }
func (q *Quad) NumSamples() int    { return 1 }
func (q *Quad) CanIntersect() bool { return true }

func (q *Quad) samplePoint(s core.Vec2) core.Vec3 {
	return q.Corner.Add(q.U.Multiply(s.X)).Add(q.V.Multiply(s.Y))
}

func (q *Quad) surfacePoint(p core.Vec3) core.SurfacePoint {
	sp := core.SurfacePoint{Position: p, Ng: q.Normal, Ns: q.Normal, Material: q.Material}
	sp.Nu, sp.Nv = core.OrthonormalBasis(q.Normal)
	return sp
}

func (q *Quad) Sample(point, normal core.Vec3, sample core.Vec2) core.LightSample {
	samplePoint := q.samplePoint(sample)
	toLight := samplePoint.Subtract(point)
	dist := toLight.Length()
	if dist == 0 {
		return core.LightSample{}
	}
	dir := toLight.Multiply(1 / dist)
	cosTheta := math.Abs(q.Normal.Dot(dir.Negate()))
	if cosTheta < 1e-8 {
		return core.LightSample{Point: samplePoint, Normal: q.Normal, Direction: dir, Distance: dist, PDF: 0}
	}
	areaPDF := 1.0 / q.Area
	pdf := areaPDF * dist * dist / cosTheta
	sp := q.surfacePoint(samplePoint)
	emission := emitterEmission(q.Material, &sp, dir.Negate())
	return core.LightSample{Point: samplePoint, Normal: q.Normal, Direction: dir, Distance: dist, Emission: emission, PDF: pdf}
}

func (q *Quad) PDF(point, normal, direction core.Vec3) float64 {
	hit, ok := q.hit(point, direction)
	if !ok {
		return 0
	}
	cosTheta := math.Abs(q.Normal.Dot(direction.Negate()))
	if cosTheta < 1e-8 {
		return 0
	}
	areaPDF := 1.0 / q.Area
	return areaPDF * hit * hit / cosTheta
}

// hit intersects the quad's plane and checks the parametric bounds; t is
// returned in the second value on success.
func (q *Quad) hit(point, direction core.Vec3) (float64, bool) {
	denom := q.Normal.Dot(direction)
	if math.Abs(denom) < 1e-10 {
		return 0, false
	}
	t := q.Normal.Dot(q.Corner.Subtract(point)) / denom
	if t <= 1e-6 {
		return 0, false
	}
	p := point.Add(direction.Multiply(t))
	toP := p.Subtract(q.Corner)
	uu, vv, uv := q.U.Dot(q.U), q.V.Dot(q.V), q.U.Dot(q.V)
	det := uu*vv - uv*uv
	if math.Abs(det) < 1e-12 {
		return 0, false
	}
	a := (vv*toP.Dot(q.U) - uv*toP.Dot(q.V)) / det
	b := (uu*toP.Dot(q.V) - uv*toP.Dot(q.U)) / det
	if a < 0 || a > 1 || b < 0 || b > 1 {
		return 0, false
	}
	return t, true
}

func (q *Quad) SampleEmission(samplePoint, sampleDirection core.Vec2) core.EmissionSample {
	p := q.samplePoint(samplePoint)
	sp := q.surfacePoint(p)
	areaPDF := 1.0 / q.Area
	dir, dirPDF := core.CosineSampleHemisphere(q.Normal, sampleDirection.X, sampleDirection.Y)
	emission := emitterEmission(q.Material, &sp, dir)
	return core.EmissionSample{Point: p, Normal: q.Normal, Direction: dir, Emission: emission, AreaPDF: areaPDF, DirectionPDF: dirPDF}
}

func (q *Quad) EmissionPDF(point, direction core.Vec3) float64 {
	cosTheta := math.Max(0, direction.Dot(q.Normal))
	if cosTheta <= 0 {
		return 0
	}
	return (1.0 / q.Area) * (cosTheta / math.Pi)
}

func (q *Quad) Emit(ray core.Ray) core.Vec3 { return core.Vec3{} }

// Disc is a circular area light, sampled uniformly over the disc.
type Disc struct {
	Center, Normal core.Vec3
	Radius         float64
	Material       core.Material
}

func NewDisc(center, normal core.Vec3, radius float64, mat core.Material) *Disc {
	return &Disc{Center: center, Normal: normal.Normalize(), Radius: radius, Material: mat}
}

func (d *Disc) IsDelta() bool      { return false }
func (d *Disc) NumSamples() int    { return 1 }
func (d *Disc) CanIntersect() bool { return true }

func (d *Disc) samplePoint(s core.Vec2) core.Vec3 {
	u, v := core.OrthonormalBasis(d.Normal)
	r := d.Radius * math.Sqrt(s.X)
	phi := 2 * math.Pi * s.Y
	return d.Center.Add(u.Multiply(r * math.Cos(phi))).Add(v.Multiply(r * math.Sin(phi)))
}

func (d *Disc) surfacePoint(p core.Vec3) core.SurfacePoint {
	sp := core.SurfacePoint{Position: p, Ng: d.Normal, Ns: d.Normal, Material: d.Material}
	sp.Nu, sp.Nv = core.OrthonormalBasis(d.Normal)
	return sp
}

func (d *Disc) Sample(point, normal core.Vec3, sample core.Vec2) core.LightSample {
	samplePoint := d.samplePoint(sample)
	toLight := samplePoint.Subtract(point)
	dist := toLight.Length()
	if dist == 0 {
		return core.LightSample{}
	}
	dir := toLight.Multiply(1 / dist)
	cosTheta := math.Abs(d.Normal.Dot(dir.Negate()))
	if cosTheta < 1e-6 {
		return core.LightSample{Point: samplePoint, Normal: d.Normal, Direction: dir, Distance: dist, PDF: 0}
	}
	areaPDF := 1.0 / (math.Pi * d.Radius * d.Radius)
	pdf := areaPDF * dist * dist / cosTheta
	sp := d.surfacePoint(samplePoint)
	emission := emitterEmission(d.Material, &sp, dir.Negate())
	return core.LightSample{Point: samplePoint, Normal: d.Normal, Direction: dir, Distance: dist, Emission: emission, PDF: pdf}
}

func (d *Disc) PDF(point, normal, direction core.Vec3) float64 {
	denom := d.Normal.Dot(direction)
	if math.Abs(denom) < 1e-10 {
		return 0
	}
	t := d.Normal.Dot(d.Center.Subtract(point)) / denom
	if t <= 1e-6 {
		return 0
	}
	p := point.Add(direction.Multiply(t))
	if p.Subtract(d.Center).Length() > d.Radius {
		return 0
	}
	cosTheta := math.Abs(d.Normal.Dot(direction.Negate()))
	if cosTheta < 1e-6 {
		return 0
	}
	areaPDF := 1.0 / (math.Pi * d.Radius * d.Radius)
	return areaPDF * t * t / cosTheta
}

func (d *Disc) SampleEmission(samplePoint, sampleDirection core.Vec2) core.EmissionSample {
	p := d.samplePoint(samplePoint)
	sp := d.surfacePoint(p)
	areaPDF := 1.0 / (math.Pi * d.Radius * d.Radius)
	dir, dirPDF := core.CosineSampleHemisphere(d.Normal, sampleDirection.X, sampleDirection.Y)
	emission := emitterEmission(d.Material, &sp, dir)
	return core.EmissionSample{Point: p, Normal: d.Normal, Direction: dir, Emission: emission, AreaPDF: areaPDF, DirectionPDF: dirPDF}
}

func (d *Disc) EmissionPDF(point, direction core.Vec3) float64 {
	cosTheta := math.Max(0, direction.Dot(d.Normal))
	if cosTheta <= 0 {
		return 0
	}
	return (1.0 / (math.Pi * d.Radius * d.Radius)) * (cosTheta / math.Pi)
}

func (d *Disc) Emit(ray core.Ray) core.Vec3 { return core.Vec3{} }

// Sphere is a spherical area light wrapping a primitive.Sphere, sampling
// only the hemisphere visible from the shading point when outside the
// sphere (cone sampling).
type Sphere struct {
	*primitive.Sphere
}

func NewSphere(center core.Vec3, radius float64, mat core.Material) *Sphere {
	return &Sphere{Sphere: primitive.NewSphere(center, radius, mat)}
}

func (s *Sphere) IsDelta() bool      { return false }
func (s *Sphere) NumSamples() int    { return 1 }
func (s *Sphere) CanIntersect() bool { return true }

func (s *Sphere) Sample(point, normal core.Vec3, sample core.Vec2) core.LightSample {
	toCenter := s.Center.Subtract(point)
	distToCenter := toCenter.Length()
	if distToCenter <= s.Radius {
		return s.sampleUniform(point, sample)
	}
	return s.sampleVisible(point, sample, distToCenter, toCenter)
}

func (s *Sphere) sampleUniform(point core.Vec3, sample core.Vec2) core.LightSample {
	dir := uniformSphereDirection(sample)
	samplePoint := s.Center.Add(dir.Multiply(s.Radius))
	toLight := samplePoint.Subtract(point)
	dist := toLight.Length()
	dirN := toLight.Normalize()
	cosTheta := math.Abs(dir.Dot(dirN))
	if cosTheta < 1e-8 {
		return core.LightSample{Point: samplePoint, Normal: dir, Direction: dirN, Distance: dist, PDF: 0}
	}
	pdf := core.SphereUniformPDF(s.Radius) * dist * dist / cosTheta
	sp := core.SurfacePoint{Position: samplePoint, Ng: dir, Ns: dir, Material: s.Material}
	emission := emitterEmission(s.Material, &sp, dirN.Negate())
	return core.LightSample{Point: samplePoint, Normal: dir, Direction: dirN, Distance: dist, Emission: emission, PDF: pdf}
}

func (s *Sphere) sampleVisible(point core.Vec3, sample core.Vec2, distToCenter float64, toCenter core.Vec3) core.LightSample {
	w := toCenter.Normalize()
	u, v := core.OrthonormalBasis(w)
	sinThetaMax := s.Radius / distToCenter
	cosThetaMax := math.Sqrt(math.Max(0, 1-sinThetaMax*sinThetaMax))
	cosTheta := 1 - sample.X*(1-cosThetaMax)
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
	phi := 2 * math.Pi * sample.Y
	dir := u.Multiply(sinTheta * math.Cos(phi)).Add(v.Multiply(sinTheta * math.Sin(phi))).Add(w.Multiply(cosTheta))

	ray := core.NewRay(point, dir)
	hit, ok := s.Sphere.Intersect(ray, 1e-6, math.Inf(1))
	if !ok {
		return s.sampleUniform(point, sample)
	}
	sp := s.Sphere.GetSurfacePoint(ray, hit)
	pdf := core.SphereConePDF(distToCenter, s.Radius)
	emission := emitterEmission(s.Material, &sp, dir.Negate())
	return core.LightSample{Point: sp.Position, Normal: sp.Ng, Direction: dir, Distance: hit.T, Emission: emission, PDF: pdf}
}

func (s *Sphere) PDF(point, normal, direction core.Vec3) float64 {
	ray := core.NewRay(point, direction)
	if _, ok := s.Sphere.Intersect(ray, 1e-6, math.Inf(1)); !ok {
		return 0
	}
	distToCenter := s.Center.Subtract(point).Length()
	return core.SphereConePDF(distToCenter, s.Radius)
}

func (s *Sphere) SampleEmission(samplePoint, sampleDirection core.Vec2) core.EmissionSample {
	dir := uniformSphereDirection(samplePoint)
	p := s.Center.Add(dir.Multiply(s.Radius))
	sp := core.SurfacePoint{Position: p, Ng: dir, Ns: dir, Material: s.Material}
	areaPDF := core.SphereUniformPDF(s.Radius)
	emitDir, dirPDF := core.CosineSampleHemisphere(dir, sampleDirection.X, sampleDirection.Y)
	emission := emitterEmission(s.Material, &sp, emitDir)
	return core.EmissionSample{Point: p, Normal: dir, Direction: emitDir, Emission: emission, AreaPDF: areaPDF, DirectionPDF: dirPDF}
}

func (s *Sphere) EmissionPDF(point, direction core.Vec3) float64 {
	normal := point.Subtract(s.Center).Normalize()
	cosTheta := math.Max(0, direction.Dot(normal))
	if cosTheta <= 0 {
		return 0
	}
	areaPDF := 1.0 / (4.0 * math.Pi * s.Radius * s.Radius)
	return areaPDF * (cosTheta / math.Pi)
}

func (s *Sphere) Emit(ray core.Ray) core.Vec3 { return core.Vec3{} }
