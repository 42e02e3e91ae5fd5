package primitive

import (
	"math"

	"github.com/yafaray-go/renderer/pkg/core"
)

// Sphere is a quadratic-surface primitive, also used as the implicit
// geometry behind sphere area lights.
type Sphere struct {
	Center   core.Vec3
	Radius   float64
	Material core.Material
	Light    core.Light
}

func NewSphere(center core.Vec3, radius float64, mat core.Material) *Sphere {
	return &Sphere{Center: center, Radius: radius, Material: mat}
}

func (s *Sphere) Intersect(ray core.Ray, tMin, tMax float64) (core.IntersectData, bool) {
	oc := ray.Origin.Subtract(s.Center)
	a := ray.Direction.Dot(ray.Direction)
	halfB := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	disc := halfB*halfB - a*c
	if disc < 0 {
		return core.IntersectData{}, false
	}
	sqrtD := math.Sqrt(disc)

	root := (-halfB - sqrtD) / a
	if root < tMin || root > tMax {
		root = (-halfB + sqrtD) / a
		if root < tMin || root > tMax {
			return core.IntersectData{}, false
		}
	}
	return core.IntersectData{T: root, PrimitiveRef: s}, true
}

func (s *Sphere) GetSurfacePoint(ray core.Ray, hit core.IntersectData) core.SurfacePoint {
	point := ray.At(hit.T)
	n := point.Subtract(s.Center).Multiply(1.0 / s.Radius)

	theta := math.Acos(-n.Y)
	phi := math.Atan2(-n.Z, n.X) + math.Pi
	u, v := phi/(2.0*math.Pi), theta/math.Pi

	nu, nv := core.OrthonormalBasis(n)

	sp := core.SurfacePoint{
		Position:  point,
		U:         u,
		V:         v,
		Orco:      n,
		Primitive: s,
		Material:  s.Material,
		Light:     s.Light,
		Nu:        nu,
		Nv:        nv,
	}
	sp.SetFaceNormal(ray, n, n)
	return sp
}

func (s *Sphere) Bounds() core.AABB {
	r := core.NewVec3(s.Radius, s.Radius, s.Radius)
	return core.NewAABB(s.Center.Subtract(r), s.Center.Add(r))
}

// Area is the sphere's total surface area (4*pi*r^2).
func (s *Sphere) Area() float64 { return 4 * math.Pi * s.Radius * s.Radius }
