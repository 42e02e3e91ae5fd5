package volume

import "github.com/yafaray-go/renderer/pkg/core"

// Uniform is a constant-density participating medium: sigma_a, sigma_s,
// and emission are the same everywhere inside the bounding box.
type Uniform struct {
	bounds    core.AABB
	sigmaA    core.Vec3
	sigmaS    core.Vec3
	emission  core.Vec3
	asymmetry float64
	grid      *attenuationGrid
}

// NewUniform builds a uniform volume region; attenGridRes controls the
// precomputed shadow-transmittance grid resolution along each axis
// (e.g. [8,8,8]).
func NewUniform(bounds core.AABB, sigmaA, sigmaS, emission core.Vec3, g float64, attenGridRes [3]int) *Uniform {
	u := &Uniform{bounds: bounds, sigmaA: sigmaA, sigmaS: sigmaS, emission: emission, asymmetry: g}
	u.grid = newAttenuationGrid(u, bounds, attenGridRes)
	return u
}

func (u *Uniform) Bounds() core.AABB { return u.bounds }

func (u *Uniform) Intersect(ray core.Ray) (float64, float64, bool) {
	return u.bounds.Hit(ray, ray.TMin, ray.TMax)
}

func (u *Uniform) SigmaA(core.Vec3) core.Vec3   { return u.sigmaA }
func (u *Uniform) SigmaS(core.Vec3) core.Vec3   { return u.sigmaS }
func (u *Uniform) Emission(core.Vec3) core.Vec3 { return u.emission }
func (u *Uniform) Asymmetry() float64           { return u.asymmetry }
