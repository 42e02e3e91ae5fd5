package accel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yafaray-go/renderer/pkg/core"
)

// mockSphere is a minimal core.Primitive used only to exercise the tree's
// build and traversal logic without pulling in pkg/primitive.
type mockSphere struct {
	center core.Vec3
	radius float64
}

func (s mockSphere) Bounds() core.AABB {
	r := core.NewVec3(s.radius, s.radius, s.radius)
	return core.NewAABB(s.center.Subtract(r), s.center.Add(r))
}

func (s mockSphere) Intersect(ray core.Ray, tMin, tMax float64) (core.IntersectData, bool) {
	oc := ray.Origin.Subtract(s.center)
	a := ray.Direction.Dot(ray.Direction)
	b := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.radius*s.radius
	disc := b*b - a*c
	if disc < 0 {
		return core.IntersectData{}, false
	}
	sq := math.Sqrt(disc)
	t := (-b - sq) / a
	if t < tMin || t > tMax {
		t = (-b + sq) / a
		if t < tMin || t > tMax {
			return core.IntersectData{}, false
		}
	}
	return core.IntersectData{T: t}, true
}

func (s mockSphere) GetSurfacePoint(ray core.Ray, hit core.IntersectData) core.SurfacePoint {
	p := ray.At(hit.T)
	n := p.Subtract(s.center).Normalize()
	return core.SurfacePoint{Position: p, Ng: n, Ns: n}
}

func spheresGrid(n int) []Primitive {
	prims := make([]Primitive, 0, n*n*n)
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			for z := 0; z < n; z++ {
				prims = append(prims, mockSphere{
					center: core.NewVec3(float64(x)*3, float64(y)*3, float64(z)*3),
					radius: 0.4,
				})
			}
		}
	}
	return prims
}

func bruteForceIntersect(prims []Primitive, ray core.Ray, tMin, tMax float64) (core.IntersectData, bool) {
	best := tMax
	found := false
	var bestHit core.IntersectData
	for _, p := range prims {
		if hit, ok := p.Intersect(ray, tMin, best); ok {
			best = hit.T
			bestHit = hit
			found = true
		}
	}
	return bestHit, found
}

func TestKDTree_EmptyTree(t *testing.T) {
	tree := New(nil)
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0))
	_, hit := tree.Intersect(ray, 0.001, 1000)
	assert.False(t, hit)
}

func TestKDTree_SingleLeafBelowThreshold(t *testing.T) {
	prims := spheresGrid(1)
	tree := New(prims)
	stats := tree.Stats()
	assert.Equal(t, 1, stats.Nodes)
	assert.Equal(t, 1, stats.Leaves)
}

func TestKDTree_SplitsLargeScenes(t *testing.T) {
	prims := spheresGrid(4) // 64 primitives, well above leafThreshold
	tree := New(prims)
	stats := tree.Stats()
	assert.Greater(t, stats.Nodes, 1)
	assert.GreaterOrEqual(t, stats.Leaves, 2)
	assert.Equal(t, len(prims), stats.TotalPrimRefs)
}

// TestKDTree_AgreesWithBruteForce fires rays through a grid of spheres
// from many directions and checks the tree returns the same nearest hit
// (within floating point tolerance) as a linear scan.
func TestKDTree_AgreesWithBruteForce(t *testing.T) {
	prims := spheresGrid(5)
	tree := New(prims)

	dirs := []core.Vec3{
		core.NewVec3(1, 0, 0),
		core.NewVec3(0, 1, 0),
		core.NewVec3(0, 0, 1),
		core.NewVec3(1, 1, 1).Normalize(),
		core.NewVec3(-1, 0.3, 0.7).Normalize(),
	}
	origins := []core.Vec3{
		core.NewVec3(-5, -5, -5),
		core.NewVec3(20, 20, 20),
		core.NewVec3(6, 1, 1),
	}

	for _, o := range origins {
		for _, d := range dirs {
			ray := core.NewRay(o, d)
			wantHit, wantOK := bruteForceIntersect(prims, ray, 0.0001, 1e6)
			gotHit, gotOK := tree.Intersect(ray, 0.0001, 1e6)
			require.Equal(t, wantOK, gotOK)
			if wantOK {
				assert.InDelta(t, wantHit.T, gotHit.T, 1e-6)
			}
		}
	}
}

func TestKDTree_AnyHitSkipsTransparent(t *testing.T) {
	prims := []Primitive{
		mockSphere{center: core.NewVec3(5, 0, 0), radius: 1},
		mockSphere{center: core.NewVec3(10, 0, 0), radius: 1},
	}
	tree := New(prims)
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0))

	// Treat the first hit as transparent, forcing the walk to continue.
	seenFirst := false
	hit, ok := tree.AnyHit(ray, 0.001, 1000, func(d core.IntersectData) bool {
		if !seenFirst {
			seenFirst = true
			return false
		}
		return true
	})
	require.True(t, ok)
	assert.InDelta(t, 9.0, hit.T, 1e-6)
}
