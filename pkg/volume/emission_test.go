package volume

import (
	"math"
	"testing"

	"github.com/yafaray-go/renderer/pkg/core"
)

func testRegion() Region {
	bounds := core.NewAABB(core.NewVec3(0, 0, 0), core.NewVec3(4, 4, 4))
	return NewUniform(bounds,
		core.NewVec3(0.3, 0.3, 0.3), // sigma_a
		core.NewVec3(0.2, 0.2, 0.2), // sigma_s
		core.Vec3{}, 0, [3]int{4, 4, 4})
}

func xRay(originX float64) core.Ray {
	return core.NewRay(core.NewVec3(originX, 2, 2), core.NewVec3(1, 0, 0))
}

// Transmittance of a zero-length segment is exactly 1.
func TestTransmittance_ZeroLengthIsOne(t *testing.T) {
	regions := []Region{testRegion()}
	tr := Transmittance(regions, xRay(-1), 0)
	if tr.X != 1 || tr.Y != 1 || tr.Z != 1 {
		t.Errorf("transmittance(t_max=0) = %v, want (1,1,1)", tr)
	}
}

// Transmittance must be multiplicative along segments split at any
// interior t.
func TestTransmittance_Multiplicative(t *testing.T) {
	regions := []Region{testRegion()}
	ray := xRay(-1)

	full := Transmittance(regions, ray, 10)
	// Split at t=3: [0,3] from the original origin, then [3,10]
	// re-parameterized as a ray starting at the split point.
	first := Transmittance(regions, ray, 3)
	second := Transmittance(regions, core.NewRay(ray.At(3), ray.Direction), 7)
	product := first.MultiplyVec(second)

	if math.Abs(full.X-product.X) > 1e-9 {
		t.Errorf("transmittance not multiplicative: full=%v, split product=%v", full, product)
	}
}

// A homogeneous medium has the closed form exp(-sigma_t * length).
func TestTransmittance_UniformMatchesAnalytic(t *testing.T) {
	regions := []Region{testRegion()}
	// Ray fully crossing the 4-unit box; sigma_t = 0.5 per channel.
	tr := Transmittance(regions, xRay(-2), 100)
	want := math.Exp(-0.5 * 4)
	if math.Abs(tr.X-want) > 1e-6 {
		t.Errorf("uniform transmittance = %v, want %v", tr.X, want)
	}
}

func TestTransmittance_RayMissingRegionIsOne(t *testing.T) {
	regions := []Region{testRegion()}
	miss := core.NewRay(core.NewVec3(-1, 10, 10), core.NewVec3(1, 0, 0))
	tr := Transmittance(regions, miss, 100)
	if tr.X != 1 {
		t.Errorf("transmittance of missing ray = %v, want 1", tr.X)
	}
}

// The emission integrator accumulates only inside emissive regions.
func TestIntegrate_EmissiveRegion(t *testing.T) {
	bounds := core.NewAABB(core.NewVec3(0, 0, 0), core.NewVec3(2, 2, 2))
	glow := NewUniform(bounds, core.Vec3{}, core.Vec3{},
		core.NewVec3(1, 0.5, 0.25), 0, [3]int{2, 2, 2})

	got := Integrate([]Region{glow}, core.NewRay(core.NewVec3(-1, 1, 1), core.NewVec3(1, 0, 0)), 100)
	// No extinction: the integral is emission * path length (2 units).
	if math.Abs(got.X-2.0) > 1e-6 || math.Abs(got.Y-1.0) > 1e-6 {
		t.Errorf("emission integral = %v, want (2, 1, 0.5)", got)
	}

	if empty := Integrate([]Region{glow}, core.NewRay(core.NewVec3(-1, 5, 5), core.NewVec3(1, 0, 0)), 100); !empty.IsZero() {
		t.Errorf("emission outside region = %v, want zero", empty)
	}
}
