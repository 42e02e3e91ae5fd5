// Package light implements the core.Light contract:
// Dirac point/directional/spot lights, area lights (quad/disc/sphere),
// and an image-based infinite light. Every light kind lives behind the
// one shared core.Light contract.
package light

import (
	"math"

	"github.com/yafaray-go/renderer/pkg/core"
)

// Point is an isotropic Dirac point light: the spot light's fully-open
// special case.
type Point struct {
	Position core.Vec3
	Emission core.Vec3 // intensity at unit distance
}

func NewPoint(position, emission core.Vec3) *Point {
	return &Point{Position: position, Emission: emission}
}

func (p *Point) IsDelta() bool      { return true }
func (p *Point) NumSamples() int    { return 1 }
func (p *Point) CanIntersect() bool { return false }

func (p *Point) Sample(point, normal core.Vec3, sample core.Vec2) core.LightSample {
	toLight := p.Position.Subtract(point)
	dist := toLight.Length()
	if dist == 0 {
		return core.LightSample{}
	}
	dir := toLight.Multiply(1 / dist)
	return core.LightSample{
		Point:     p.Position,
		Normal:    dir.Negate(),
		Direction: dir,
		Distance:  dist,
		Emission:  p.Emission.Multiply(1 / (dist * dist)),
		PDF:       1.0,
	}
}

// PDF is zero everywhere: a delta light can never be hit by BSDF sampling,
// so MIS weighting skips it.
func (p *Point) PDF(point, normal, direction core.Vec3) float64 { return 0 }

func (p *Point) SampleEmission(samplePoint, sampleDirection core.Vec2) core.EmissionSample {
	dir := uniformSphereDirection(sampleDirection)
	return core.EmissionSample{
		Point:        p.Position,
		Normal:       dir,
		Direction:    dir,
		Emission:     p.Emission,
		AreaPDF:      1.0, // a point has no area; area density is a delta at 1
		DirectionPDF: 1.0 / (4.0 * math.Pi),
	}
}

func (p *Point) EmissionPDF(point, direction core.Vec3) float64 {
	return 1.0 / (4.0 * math.Pi)
}

func (p *Point) Emit(ray core.Ray) core.Vec3 { return core.Vec3{} }

func uniformSphereDirection(s core.Vec2) core.Vec3 {
	z := 1 - 2*s.X
	r := math.Sqrt(math.Max(0, 1-z*z))
	phi := 2 * math.Pi * s.Y
	return core.Vec3{X: r * math.Cos(phi), Y: r * math.Sin(phi), Z: z}
}
