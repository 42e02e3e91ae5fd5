// Package integrator implements the surface integrators:
// direct lighting, unidirectional path tracing with MIS, and photon
// mapping with optional final gather. Every integrator answers
// Integrate(ray) -> colour against a Scene borrowed immutably for the
// duration of the render. Each result carries the first-hit distance
// so the driver can run the volume integrators over the same ray.
package integrator

import (
	"math"

	"github.com/yafaray-go/renderer/pkg/core"
)

// Scene is the read-only view an integrator holds while tracing. scenegraph.Scene is the
// production implementation; tests provide small fakes.
type Scene interface {
	// Intersect returns the nearest surface hit along ray, its parametric
	// distance, and whether anything was hit at all.
	Intersect(ray core.Ray) (core.SurfacePoint, float64, bool)

	// Occluded answers the any-hit/transparent-shadow query: whether
	// the segment of length dist along dir from origin is
	// blocked by an opaque surface, and the accumulated transparent-shadow
	// filter colour when it is not. exclude suppresses self-intersection
	// with the spawning primitive.
	Occluded(origin, dir core.Vec3, dist float64, exclude core.Primitive) (bool, core.Vec3)

	Lights() []core.Light

	// Background is the radiance of a ray that escapes all geometry.
	Background(ray core.Ray) core.Vec3
}

// Result is what a surface integrator returns for one primary ray: the
// radiance estimate, an alpha value, and the distance of the first
// surface hit (+Inf when the ray escaped) so the driver can bound the
// volume integrators over the same ray.
type Result struct {
	Colour    core.Vec3
	Alpha     float64
	FirstHitT float64
}

// Surface is the integrate(ray) -> colour contract.
type Surface interface {
	Integrate(state *core.RenderState, ray core.Ray, scene Scene, sampler core.Sampler) Result
}

func escaped(ray core.Ray, scene Scene) Result {
	return Result{Colour: scene.Background(ray), Alpha: 0, FirstHitT: math.Inf(1)}
}

// emittedAt reads emission from a surface hit's material, if emissive.
func emittedAt(state *core.RenderState, sp *core.SurfacePoint, wo core.Vec3) core.Vec3 {
	if e, ok := sp.Material.(core.Emitter); ok {
		return e.Emit(state, sp, wo)
	}
	return core.Vec3{}
}
