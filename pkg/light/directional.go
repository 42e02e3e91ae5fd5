package light

import (
	"math"

	"github.com/yafaray-go/renderer/pkg/core"
)

// Directional is a Dirac light whose rays arrive parallel from infinity
// (e.g. sunlight).
type Directional struct {
	Direction core.Vec3 // normalized, points FROM the light TOWARD the scene
	Emission  core.Vec3
	WorldRadius float64 // set by Scene.Preprocess so emission sampling can place a finite origin
}

func NewDirectional(direction, emission core.Vec3) *Directional {
	return &Directional{Direction: direction.Normalize(), Emission: emission}
}

func (d *Directional) IsDelta() bool      { return true }
func (d *Directional) NumSamples() int    { return 1 }
func (d *Directional) CanIntersect() bool { return false }

func (d *Directional) Sample(point, normal core.Vec3, sample core.Vec2) core.LightSample {
	toLight := d.Direction.Negate()
	return core.LightSample{
		Point:     point.Add(toLight.Multiply(2 * d.WorldRadius)),
		Normal:    d.Direction,
		Direction: toLight,
		Distance:  math.Inf(1),
		Emission:  d.Emission,
		PDF:       1.0,
	}
}

func (d *Directional) PDF(point, normal, direction core.Vec3) float64 { return 0 }

func (d *Directional) SampleEmission(samplePoint, sampleDirection core.Vec2) core.EmissionSample {
	// Sample a disk perpendicular to Direction, sized to the scene radius,
	// then push the origin back so the ray enters the whole scene bound.
	u, v := core.OrthonormalBasis(d.Direction)
	r := d.WorldRadius
	if r <= 0 {
		r = 1
	}
	diskR := r * math.Sqrt(sampleDirection.X)
	phi := 2 * math.Pi * sampleDirection.Y
	offset := u.Multiply(diskR * math.Cos(phi)).Add(v.Multiply(diskR * math.Sin(phi)))
	origin := offset.Add(d.Direction.Multiply(-r))
	return core.EmissionSample{
		Point:        origin,
		Normal:       d.Direction,
		Direction:    d.Direction,
		Emission:     d.Emission,
		AreaPDF:      1.0 / (math.Pi * r * r),
		DirectionPDF: 1.0,
	}
}

func (d *Directional) EmissionPDF(point, direction core.Vec3) float64 {
	r := d.WorldRadius
	if r <= 0 {
		r = 1
	}
	return 1.0 / (math.Pi * r * r)
}

func (d *Directional) Emit(ray core.Ray) core.Vec3 { return core.Vec3{} }
