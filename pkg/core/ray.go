package core

import "math"

// RayDifferential carries the screen-space neighbour rays used to derive
// texture-filtering footprints. It is optional: a Ray with
// HasDifferentials == false carries no extra cost beyond the bool.
type RayDifferential struct {
	OriginX, DirectionX Vec3
	OriginY, DirectionY Vec3
}

// Ray is an origin + unit direction with a valid-t window and a time
// sample, plus optional differentials for texture filtering.
type Ray struct {
	Origin, Direction Vec3
	TMin, TMax        float64
	Time              float64

	HasDifferentials bool
	Differentials    RayDifferential
}

// NewRay creates a ray with the conventional [TMin, +Inf) window.
func NewRay(origin, direction Vec3) Ray {
	return Ray{Origin: origin, Direction: direction, TMin: 0, TMax: infinity}
}

// NewRayTo creates a ray from origin toward target, with TMax set to the
// distance to target.
func NewRayTo(origin, target Vec3) Ray {
	d := target.Subtract(origin)
	dist := d.Length()
	return Ray{Origin: origin, Direction: d.Normalize(), TMin: 0, TMax: dist}
}

func (r Ray) At(t float64) Vec3 { return r.Origin.Add(r.Direction.Multiply(t)) }

// WithBias returns a copy of the ray with TMin advanced by bias, the
// scene-scale-relative epsilon applied to secondary rays to avoid
// re-hitting the spawning surface.
func (r Ray) WithBias(bias float64) Ray {
	r.TMin += bias
	return r
}

var infinity = math.Inf(1)
