package primitive

import (
	"gonum.org/v1/gonum/mat"

	"github.com/yafaray-go/renderer/pkg/core"
)

// Instance wraps a primitive with an object-to-world affine transform,
// letting one tessellated mesh be placed multiple times in a scene without
// duplicating geometry. The transform is a gonum 4x4 mat.Dense
// together with its inverse-transpose (normal matrix).
type Instance struct {
	Inner core.Primitive

	objectToWorld *mat.Dense
	worldToObject *mat.Dense
	normalMatrix  *mat.Dense // inverse-transpose of the 3x3 linear part

	bbox core.AABB
}

// NewInstance builds an instance from a 4x4 row-major object-to-world
// matrix. The matrix must be invertible.
func NewInstance(inner core.Primitive, objectToWorld [16]float64) (*Instance, error) {
	o2w := mat.NewDense(4, 4, objectToWorld[:])
	w2o := mat.NewDense(4, 4, nil)
	if err := w2o.Inverse(o2w); err != nil {
		return nil, core.NewError(core.KindSceneBuildFailed, err, "instance transform is not invertible")
	}

	normalMat := mat.NewDense(3, 3, nil)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			normalMat.Set(r, c, w2o.At(c, r)) // transpose of the inverse
		}
	}

	inst := &Instance{
		Inner:         inner,
		objectToWorld: o2w,
		worldToObject: w2o,
		normalMatrix:  normalMat,
	}
	inst.bbox = inst.transformBounds(inner.Bounds())
	return inst, nil
}

func transformPoint(m *mat.Dense, p core.Vec3) core.Vec3 {
	v := mat.NewVecDense(4, []float64{p.X, p.Y, p.Z, 1})
	var out mat.VecDense
	out.MulVec(m, v)
	w := out.AtVec(3)
	if w == 0 {
		w = 1
	}
	return core.NewVec3(out.AtVec(0)/w, out.AtVec(1)/w, out.AtVec(2)/w)
}

func transformVector(m *mat.Dense, v core.Vec3) core.Vec3 {
	in := mat.NewVecDense(4, []float64{v.X, v.Y, v.Z, 0})
	var out mat.VecDense
	out.MulVec(m, in)
	return core.NewVec3(out.AtVec(0), out.AtVec(1), out.AtVec(2))
}

func transformNormal(m *mat.Dense, n core.Vec3) core.Vec3 {
	in := mat.NewVecDense(3, []float64{n.X, n.Y, n.Z})
	var out mat.VecDense
	out.MulVec(m, in)
	return core.NewVec3(out.AtVec(0), out.AtVec(1), out.AtVec(2)).Normalize()
}

func (inst *Instance) transformBounds(b core.AABB) core.AABB {
	corners := [8]core.Vec3{
		{X: b.Min.X, Y: b.Min.Y, Z: b.Min.Z}, {X: b.Max.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Min.Z}, {X: b.Min.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Min.Z}, {X: b.Max.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Max.Z}, {X: b.Max.X, Y: b.Max.Y, Z: b.Max.Z},
	}
	pts := make([]core.Vec3, 8)
	for i, c := range corners {
		pts[i] = transformPoint(inst.objectToWorld, c)
	}
	return core.NewAABBFromPoints(pts...)
}

// Intersect transforms ray into object space, delegates to Inner, and
// leaves hit.T in world units (valid since the transform is affine and
// the object-space ray direction is rescaled accordingly).
func (inst *Instance) Intersect(ray core.Ray, tMin, tMax float64) (core.IntersectData, bool) {
	localRay := core.Ray{
		Origin:    transformPoint(inst.worldToObject, ray.Origin),
		Direction: transformVector(inst.worldToObject, ray.Direction),
		TMin:      tMin,
		TMax:      tMax,
		Time:      ray.Time,
	}
	hit, ok := inst.Inner.Intersect(localRay, tMin, tMax)
	if !ok {
		return core.IntersectData{}, false
	}
	hit.PrimitiveRef = inst
	return hit, true
}

func (inst *Instance) GetSurfacePoint(ray core.Ray, hit core.IntersectData) core.SurfacePoint {
	localRay := core.Ray{
		Origin:    transformPoint(inst.worldToObject, ray.Origin),
		Direction: transformVector(inst.worldToObject, ray.Direction),
		TMin:      ray.TMin,
		TMax:      ray.TMax,
		Time:      ray.Time,
	}
	sp := inst.Inner.GetSurfacePoint(localRay, hit)
	sp.Position = transformPoint(inst.objectToWorld, sp.Position)
	sp.Ng = transformNormal(inst.normalMatrix, sp.Ng)
	sp.Ns = transformNormal(inst.normalMatrix, sp.Ns)
	sp.Nu = transformVector(inst.objectToWorld, sp.Nu).Normalize()
	sp.Nv = transformVector(inst.objectToWorld, sp.Nv).Normalize()
	sp.Primitive = inst
	return sp
}

func (inst *Instance) Bounds() core.AABB { return inst.bbox }
