// Package primitive implements the concrete intersectable shapes
// (triangle, sphere, instance, curve) that pkg/accel indexes and the
// integrators shade. Intersect returns a raw core.IntersectData;
// GetSurfacePoint resolves it into a full core.SurfacePoint carrying
// shading normal, tangent frame and original-space coordinates.
package primitive

import (
	"math"

	"github.com/yafaray-go/renderer/pkg/core"
)

// Triangle is a single triangle with optional per-vertex shading normals,
// UVs and original-space coordinates.
type Triangle struct {
	V0, V1, V2    core.Vec3
	N0, N1, N2    core.Vec3 // per-vertex shading normals; zero Vec3 means "use Ng"
	UV0, UV1, UV2 core.Vec2
	Orco0, Orco1, Orco2 core.Vec3

	Material core.Material
	Light    core.Light // non-nil when this triangle is part of a mesh light

	hasShadingNormals bool
	hasUVs            bool
	hasOrco           bool

	ng   core.Vec3
	bbox core.AABB
}

// NewTriangle builds a flat-shaded triangle (no custom shading normals or
// UVs) with the given material.
func NewTriangle(v0, v1, v2 core.Vec3, mat core.Material) *Triangle {
	t := &Triangle{V0: v0, V1: v1, V2: v2, Material: mat}
	t.finish()
	return t
}

// WithShadingNormals attaches per-vertex shading normals for smooth
// shading.
func (t *Triangle) WithShadingNormals(n0, n1, n2 core.Vec3) *Triangle {
	t.N0, t.N1, t.N2 = n0.Normalize(), n1.Normalize(), n2.Normalize()
	t.hasShadingNormals = true
	return t
}

// WithUVs attaches per-vertex texture coordinates.
func (t *Triangle) WithUVs(uv0, uv1, uv2 core.Vec2) *Triangle {
	t.UV0, t.UV1, t.UV2 = uv0, uv1, uv2
	t.hasUVs = true
	return t
}

// WithOrco attaches per-vertex original-space (pre-transform) coordinates
// used by procedural textures.
func (t *Triangle) WithOrco(o0, o1, o2 core.Vec3) *Triangle {
	t.Orco0, t.Orco1, t.Orco2 = o0, o1, o2
	t.hasOrco = true
	return t
}

func (t *Triangle) finish() {
	edge1 := t.V1.Subtract(t.V0)
	edge2 := t.V2.Subtract(t.V0)
	t.ng = edge1.Cross(edge2).Normalize()
	t.bbox = core.NewAABBFromPoints(t.V0, t.V1, t.V2)
}

const triangleEpsilon = 1e-8

// Intersect implements the Möller-Trumbore ray/triangle test.
func (t *Triangle) Intersect(ray core.Ray, tMin, tMax float64) (core.IntersectData, bool) {
	edge1 := t.V1.Subtract(t.V0)
	edge2 := t.V2.Subtract(t.V0)

	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)
	if a > -triangleEpsilon && a < triangleEpsilon {
		return core.IntersectData{}, false
	}

	f := 1.0 / a
	s := ray.Origin.Subtract(t.V0)
	u := f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return core.IntersectData{}, false
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return core.IntersectData{}, false
	}

	tHit := f * edge2.Dot(q)
	if tHit < tMin || tHit > tMax {
		return core.IntersectData{}, false
	}

	return core.IntersectData{T: tHit, U: u, V: v, PrimitiveRef: t}, true
}

// GetSurfacePoint builds the full shading point from a previously
// returned IntersectData, interpolating shading normal/UV/orco with the
// barycentric coordinates the intersection already computed.
func (t *Triangle) GetSurfacePoint(ray core.Ray, hit core.IntersectData) core.SurfacePoint {
	u, v := hit.U, hit.V
	w := 1.0 - u - v

	ns := t.ng
	if t.hasShadingNormals {
		ns = t.N0.Multiply(w).Add(t.N1.Multiply(u)).Add(t.N2.Multiply(v)).Normalize()
	}

	var uv core.Vec2
	if t.hasUVs {
		uv = t.UV0.Multiply(w).Add(t.UV1.Multiply(u)).Add(t.UV2.Multiply(v))
	} else {
		uv = core.NewVec2(u, v)
	}

	orco := ray.At(hit.T)
	if t.hasOrco {
		orco = t.Orco0.Multiply(w).Add(t.Orco1.Multiply(u)).Add(t.Orco2.Multiply(v))
	}

	nu, nv := core.OrthonormalBasis(ns)

	sp := core.SurfacePoint{
		Position:  ray.At(hit.T),
		U:         uv.X,
		V:         uv.Y,
		Orco:      orco,
		Primitive: t,
		Material:  t.Material,
		Light:     t.Light,
		Nu:        nu,
		Nv:        nv,
	}
	sp.SetFaceNormal(ray, t.ng, ns)
	return sp
}

func (t *Triangle) Bounds() core.AABB { return t.bbox }

// Area returns the triangle's surface area, used by mesh-light uniform
// area sampling.
func (t *Triangle) Area() float64 {
	return t.V1.Subtract(t.V0).Cross(t.V2.Subtract(t.V0)).Length() * 0.5
}

// SamplePoint returns a uniformly sampled point on the triangle from two
// uniform samples, used by area-light emission sampling.
func (t *Triangle) SamplePoint(u1, u2 float64) (core.Vec3, core.Vec3) {
	su0 := math.Sqrt(u1)
	b0 := 1 - su0
	b1 := u2 * su0
	p := t.V0.Multiply(b0).Add(t.V1.Multiply(b1)).Add(t.V2.Multiply(1 - b0 - b1))
	return p, t.ng
}
