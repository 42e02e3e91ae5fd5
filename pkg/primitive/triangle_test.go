package primitive

import (
	"math"
	"testing"

	"github.com/yafaray-go/renderer/pkg/core"
)

func unitTriangle() *Triangle {
	return NewTriangle(
		core.NewVec3(0, 0, 0),
		core.NewVec3(1, 0, 0),
		core.NewVec3(0, 1, 0), nil)
}

func TestTriangle_HitAndBarycentrics(t *testing.T) {
	tri := unitTriangle()
	ray := core.NewRay(core.NewVec3(0.25, 0.25, 5), core.NewVec3(0, 0, -1))

	hit, ok := tri.Intersect(ray, 0.001, 100)
	if !ok {
		t.Fatal("expected hit")
	}
	if math.Abs(hit.T-5) > 1e-9 {
		t.Errorf("t = %g, want 5", hit.T)
	}
	if math.Abs(hit.U-0.25) > 1e-9 || math.Abs(hit.V-0.25) > 1e-9 {
		t.Errorf("barycentrics = (%g, %g), want (0.25, 0.25)", hit.U, hit.V)
	}
}

func TestTriangle_MissOutsideEdges(t *testing.T) {
	tri := unitTriangle()
	misses := []core.Vec3{
		{X: 0.75, Y: 0.75, Z: 5}, // beyond the hypotenuse
		{X: -0.1, Y: 0.5, Z: 5},
		{X: 0.5, Y: -0.1, Z: 5},
	}
	for _, o := range misses {
		if _, ok := tri.Intersect(core.NewRay(o, core.NewVec3(0, 0, -1)), 0.001, 100); ok {
			t.Errorf("ray through %v should miss", o)
		}
	}
}

func TestTriangle_ParallelRayMisses(t *testing.T) {
	tri := unitTriangle()
	ray := core.NewRay(core.NewVec3(-1, 0.25, 0), core.NewVec3(1, 0, 0)) // in-plane
	if _, ok := tri.Intersect(ray, 0.001, 100); ok {
		t.Error("in-plane ray should not hit")
	}
}

func TestTriangle_SurfacePointFrame(t *testing.T) {
	tri := unitTriangle()
	ray := core.NewRay(core.NewVec3(0.2, 0.2, 5), core.NewVec3(0, 0, -1))
	hit, _ := tri.Intersect(ray, 0.001, 100)
	sp := tri.GetSurfacePoint(ray, hit)

	if math.Abs(sp.Ns.Length()-1) > 1e-9 || math.Abs(sp.Ng.Length()-1) > 1e-9 {
		t.Error("normals must be unit length")
	}
	if math.Abs(sp.Ns.Dot(sp.Nu)) > 1e-9 {
		t.Error("Nu must be orthogonal to Ns")
	}
	if !sp.FrontFace {
		t.Error("ray from +z onto +z-facing triangle should be front-facing")
	}
}

func TestTriangle_SmoothNormalInterpolation(t *testing.T) {
	tri := unitTriangle().WithShadingNormals(
		core.NewVec3(0, 0, 1),
		core.NewVec3(1, 0, 1).Normalize(),
		core.NewVec3(0, 1, 1).Normalize())
	ray := core.NewRay(core.NewVec3(0.0, 0.0, 5), core.NewVec3(0, 0, -1))
	hit, _ := tri.Intersect(ray, 0.001, 100)
	sp := tri.GetSurfacePoint(ray, hit)

	// At the first vertex the shading normal is exactly N0.
	if sp.Ns.Subtract(core.NewVec3(0, 0, 1)).Length() > 1e-6 {
		t.Errorf("Ns at vertex 0 = %v, want (0,0,1)", sp.Ns)
	}
}

func TestTriangle_AreaAndBounds(t *testing.T) {
	tri := unitTriangle()
	if math.Abs(tri.Area()-0.5) > 1e-12 {
		t.Errorf("area = %g, want 0.5", tri.Area())
	}
	b := tri.Bounds()
	if b.Min.X != 0 || b.Max.X != 1 || b.Max.Y != 1 {
		t.Errorf("bounds = %v..%v", b.Min, b.Max)
	}
}

func TestSphere_IntersectInsideAndOutside(t *testing.T) {
	s := NewSphere(core.NewVec3(0, 0, 0), 2, nil)

	// From outside: near root.
	hit, ok := s.Intersect(core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1)), 0.001, 100)
	if !ok || math.Abs(hit.T-3) > 1e-9 {
		t.Fatalf("outside hit t = %v (ok=%v), want 3", hit.T, ok)
	}
	// From inside: far root.
	hit, ok = s.Intersect(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)), 0.001, 100)
	if !ok || math.Abs(hit.T-2) > 1e-9 {
		t.Fatalf("inside hit t = %v (ok=%v), want 2", hit.T, ok)
	}
}

func TestInstance_TranslatedHit(t *testing.T) {
	tri := unitTriangle()
	translate := [16]float64{
		1, 0, 0, 10,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
	inst, err := NewInstance(tri, translate)
	if err != nil {
		t.Fatal(err)
	}

	// The original location no longer hits through the instance...
	if _, ok := inst.Intersect(core.NewRay(core.NewVec3(0.25, 0.25, 5), core.NewVec3(0, 0, -1)), 0.001, 100); ok {
		t.Error("instance should not intersect at the base location")
	}
	// ...the translated one does, with t still in world units.
	hit, ok := inst.Intersect(core.NewRay(core.NewVec3(10.25, 0.25, 5), core.NewVec3(0, 0, -1)), 0.001, 100)
	if !ok || math.Abs(hit.T-5) > 1e-9 {
		t.Fatalf("translated hit t = %v (ok=%v), want 5", hit.T, ok)
	}
	sp := inst.GetSurfacePoint(core.NewRay(core.NewVec3(10.25, 0.25, 5), core.NewVec3(0, 0, -1)), hit)
	if math.Abs(sp.Position.X-10.25) > 1e-9 {
		t.Errorf("surface point = %v, want x=10.25", sp.Position)
	}
}

func TestInstance_SingularMatrixRejected(t *testing.T) {
	var singular [16]float64 // all zeros
	if _, err := NewInstance(unitTriangle(), singular); err == nil {
		t.Error("singular transform must be rejected")
	}
}
