package light

import (
	"math"

	"github.com/yafaray-go/renderer/pkg/core"
)

// Spot is a cone-constrained point light with a falloff between the
// inner and outer cone angle. The falloff curve is a quartic ramp,
// delta^4 across the band between the two edges; a disc-based variant (Disc=true) samples a finite-radius
// emitting disc rather than a point.
type Spot struct {
	Position        core.Vec3
	Direction       core.Vec3 // normalized, points from light toward scene
	Emission        core.Vec3
	CosTotalWidth   float64
	CosFalloffStart float64
	Disc            bool
	Radius          float64 // only used when Disc
}

// NewSpot builds a spot light aimed from `from` to `to`. coneAngleDeg is
// the angle from the axis to the cone edge and falloffDeltaDeg the width
// of the falloff band inside it, both in degrees.
func NewSpot(from, to, emission core.Vec3, coneAngleDeg, falloffDeltaDeg float64) *Spot {
	dir := to.Subtract(from).Normalize()
	total := coneAngleDeg * math.Pi / 180
	start := (coneAngleDeg - falloffDeltaDeg) * math.Pi / 180
	return &Spot{
		Position:        from,
		Direction:       dir,
		Emission:        emission,
		CosTotalWidth:   math.Cos(total),
		CosFalloffStart: math.Cos(start),
	}
}

func (s *Spot) IsDelta() bool      { return !s.Disc }
func (s *Spot) NumSamples() int    { return 1 }
func (s *Spot) CanIntersect() bool { return false }

func (s *Spot) falloff(cosAngle float64) float64 {
	if cosAngle < s.CosTotalWidth {
		return 0
	}
	if cosAngle >= s.CosFalloffStart {
		return 1
	}
	delta := (cosAngle - s.CosTotalWidth) / (s.CosFalloffStart - s.CosTotalWidth)
	return delta * delta * delta * delta
}

func (s *Spot) Sample(point, normal core.Vec3, sample core.Vec2) core.LightSample {
	samplePoint := s.Position
	if s.Disc && s.Radius > 0 {
		u, v := core.OrthonormalBasis(s.Direction)
		r := s.Radius * math.Sqrt(sample.X)
		phi := 2 * math.Pi * sample.Y
		samplePoint = s.Position.Add(u.Multiply(r * math.Cos(phi))).Add(v.Multiply(r * math.Sin(phi)))
	}
	toLight := samplePoint.Subtract(point)
	dist := toLight.Length()
	if dist == 0 {
		return core.LightSample{}
	}
	dir := toLight.Multiply(1 / dist)
	cosAngle := s.Direction.Dot(dir.Negate())
	atten := s.falloff(cosAngle)
	pdf := 1.0
	if s.Disc && s.Radius > 0 {
		areaPDF := 1.0 / (math.Pi * s.Radius * s.Radius)
		cosTheta := math.Abs(s.Direction.Dot(dir.Negate()))
		if cosTheta < 1e-8 {
			pdf = 0
		} else {
			pdf = areaPDF * dist * dist / cosTheta
		}
	}
	return core.LightSample{
		Point:     samplePoint,
		Normal:    s.Direction,
		Direction: dir,
		Distance:  dist,
		Emission:  s.Emission.Multiply(atten / (dist * dist)),
		PDF:       pdf,
	}
}

func (s *Spot) PDF(point, normal, direction core.Vec3) float64 {
	if !s.Disc {
		return 0
	}
	cosAngle := s.Direction.Dot(direction.Negate())
	if cosAngle < s.CosTotalWidth {
		return 0
	}
	areaPDF := 1.0 / (math.Pi * s.Radius * s.Radius)
	return areaPDF
}

func (s *Spot) SampleEmission(samplePoint, sampleDirection core.Vec2) core.EmissionSample {
	cosTheta := 1 - sampleDirection.X*(1-s.CosTotalWidth)
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
	phi := 2 * math.Pi * sampleDirection.Y
	u, v := core.OrthonormalBasis(s.Direction)
	dir := u.Multiply(sinTheta * math.Cos(phi)).Add(v.Multiply(sinTheta * math.Sin(phi))).Add(s.Direction.Multiply(cosTheta)).Normalize()
	atten := s.falloff(dir.Dot(s.Direction))
	return core.EmissionSample{
		Point:        s.Position,
		Normal:       s.Direction,
		Direction:    dir,
		Emission:     s.Emission.Multiply(atten),
		AreaPDF:      1.0,
		DirectionPDF: 1.0 / (2.0 * math.Pi * (1.0 - s.CosTotalWidth)),
	}
}

func (s *Spot) EmissionPDF(point, direction core.Vec3) float64 {
	cosAngle := s.Direction.Dot(direction)
	if cosAngle < s.CosTotalWidth {
		return 0
	}
	return 1.0 / (2.0 * math.Pi * (1.0 - s.CosTotalWidth))
}

func (s *Spot) Emit(ray core.Ray) core.Vec3 { return core.Vec3{} }
