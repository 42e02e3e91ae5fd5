package core

import "math"

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max Vec3
}

func NewAABB(min, max Vec3) AABB { return AABB{Min: min, Max: max} }

func NewAABBFromPoints(points ...Vec3) AABB {
	if len(points) == 0 {
		return AABB{}
	}
	min, max := points[0], points[0]
	for _, p := range points[1:] {
		min.X, max.X = math.Min(min.X, p.X), math.Max(max.X, p.X)
		min.Y, max.Y = math.Min(min.Y, p.Y), math.Max(max.Y, p.Y)
		min.Z, max.Z = math.Min(min.Z, p.Z), math.Max(max.Z, p.Z)
	}
	return AABB{Min: min, Max: max}
}

// Hit tests a ray against the box using the slab method with precomputed
// inverse direction; components of dir that are exactly zero are treated
// as +/-Inf.
func (b AABB) Hit(ray Ray, tMin, tMax float64) (float64, float64, bool) {
	for axis := 0; axis < 3; axis++ {
		o, d, lo, hi := axisComponents(ray, b, axis)
		invD := 1.0 / d
		t1 := (lo - o) * invD
		t2 := (hi - o) * invD
		if invD < 0 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMax < tMin {
			return 0, 0, false
		}
	}
	return tMin, tMax, true
}

func axisComponents(r Ray, b AABB, axis int) (o, d, lo, hi float64) {
	switch axis {
	case 0:
		return r.Origin.X, r.Direction.X, b.Min.X, b.Max.X
	case 1:
		return r.Origin.Y, r.Direction.Y, b.Min.Y, b.Max.Y
	default:
		return r.Origin.Z, r.Direction.Z, b.Min.Z, b.Max.Z
	}
}

func (b AABB) Union(o AABB) AABB {
	return AABB{
		Min: Vec3{math.Min(b.Min.X, o.Min.X), math.Min(b.Min.Y, o.Min.Y), math.Min(b.Min.Z, o.Min.Z)},
		Max: Vec3{math.Max(b.Max.X, o.Max.X), math.Max(b.Max.Y, o.Max.Y), math.Max(b.Max.Z, o.Max.Z)},
	}
}

func (b AABB) UnionPoint(p Vec3) AABB {
	return b.Union(AABB{Min: p, Max: p})
}

func (b AABB) Center() Vec3     { return b.Min.Add(b.Max).Multiply(0.5) }
func (b AABB) Size() Vec3       { return b.Max.Subtract(b.Min) }
func (b AABB) IsValid() bool {
	return b.Min.X <= b.Max.X && b.Min.Y <= b.Max.Y && b.Min.Z <= b.Max.Z
}

func (b AABB) SurfaceArea() float64 {
	s := b.Size()
	if !b.IsValid() {
		return 0
	}
	return 2.0 * (s.X*s.Y + s.Y*s.Z + s.Z*s.X)
}

func (b AABB) LongestAxis() int {
	s := b.Size()
	switch {
	case s.X > s.Y && s.X > s.Z:
		return 0
	case s.Y > s.Z:
		return 1
	default:
		return 2
	}
}

func (b AABB) Axis(axis int) (lo, hi float64) {
	switch axis {
	case 0:
		return b.Min.X, b.Max.X
	case 1:
		return b.Min.Y, b.Max.Y
	default:
		return b.Min.Z, b.Max.Z
	}
}

func (b AABB) Expand(amount float64) AABB {
	e := NewVec3(amount, amount, amount)
	return AABB{Min: b.Min.Subtract(e), Max: b.Max.Add(e)}
}

// Clip returns the portion of b on one side of the axis-aligned plane
// `axis == pos`; keepBelow selects min<=pos (true) or max>=pos (false).
// Used by the k-d tree builder to cut a straddling primitive's bounding
// box at the split plane; this is a box clip, not the primitive's exact
// clipped extent.
func (b AABB) Clip(axis int, pos float64, keepBelow bool) AABB {
	lo, hi := b.Axis(axis)
	if keepBelow {
		hi = math.Min(hi, pos)
	} else {
		lo = math.Max(lo, pos)
	}
	min, max := b.Min, b.Max
	switch axis {
	case 0:
		min.X, max.X = lo, hi
	case 1:
		min.Y, max.Y = lo, hi
	default:
		min.Z, max.Z = lo, hi
	}
	return AABB{Min: min, Max: max}
}
