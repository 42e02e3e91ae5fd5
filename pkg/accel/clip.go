package accel

import "github.com/yafaray-go/renderer/pkg/core"

// ClipTriangleToAABB implements Sutherland-Hodgman polygon clipping of a
// triangle against an axis-aligned box, returning the (possibly
// quad-or-more-sided) clipped polygon's vertices. The k-d tree builder
// does not call it: New only clips each primitive's bounding box at the
// split plane (core.AABB.Clip), so a straddling triangle's child bound is
// its box cut at the plane, not its exact clipped extent.
func ClipTriangleToAABB(v0, v1, v2 core.Vec3, box core.AABB) []core.Vec3 {
	poly := []core.Vec3{v0, v1, v2}
	for axis := 0; axis < 3; axis++ {
		lo, hi := box.Axis(axis)
		poly = clipHalfSpace(poly, axis, lo, false)
		poly = clipHalfSpace(poly, axis, hi, true)
		if len(poly) == 0 {
			return nil
		}
	}
	return poly
}

// ClippedBounds is a convenience wrapper returning the AABB of the
// clipped polygon directly.
func ClippedBounds(v0, v1, v2 core.Vec3, box core.AABB) (core.AABB, bool) {
	poly := ClipTriangleToAABB(v0, v1, v2, box)
	if len(poly) == 0 {
		return core.AABB{}, false
	}
	return core.NewAABBFromPoints(poly...), true
}

// clipHalfSpace clips poly against the half-space `component(axis) <=
// pos` (keepBelow true) or `component(axis) >= pos` (keepBelow false).
func clipHalfSpace(poly []core.Vec3, axis int, pos float64, keepBelow bool) []core.Vec3 {
	if len(poly) == 0 {
		return nil
	}
	var out []core.Vec3
	for i := range poly {
		cur := poly[i]
		prev := poly[(i-1+len(poly))%len(poly)]
		curIn := inside(cur, axis, pos, keepBelow)
		prevIn := inside(prev, axis, pos, keepBelow)
		if curIn {
			if !prevIn {
				out = append(out, intersectEdge(prev, cur, axis, pos))
			}
			out = append(out, cur)
		} else if prevIn {
			out = append(out, intersectEdge(prev, cur, axis, pos))
		}
	}
	return out
}

func inside(p core.Vec3, axis int, pos float64, keepBelow bool) bool {
	v := component(p, axis)
	if keepBelow {
		return v <= pos
	}
	return v >= pos
}

func intersectEdge(a, b core.Vec3, axis int, pos float64) core.Vec3 {
	va, vb := component(a, axis), component(b, axis)
	t := (pos - va) / (vb - va)
	return a.Add(b.Subtract(a).Multiply(t))
}

func component(p core.Vec3, axis int) float64 {
	switch axis {
	case 0:
		return p.X
	case 1:
		return p.Y
	default:
		return p.Z
	}
}
