package photon

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yafaray-go/renderer/pkg/bsdf"
	"github.com/yafaray-go/renderer/pkg/core"
	"github.com/yafaray-go/renderer/pkg/light"
	"github.com/yafaray-go/renderer/pkg/primitive"
)

// planePair is a brute-force Intersector over two large parallel diffuse
// planes, enough geometry for photons to bounce at least twice.
type planePair struct {
	prims []core.Primitive
}

func newPlanePair() *planePair {
	mat := bsdf.NewLambert(core.NewVec3(0.8, 0.8, 0.8))
	big := 100.0
	// floor at y=0 (facing up), ceiling at y=2 (facing down)
	floor1 := primitive.NewTriangle(core.NewVec3(-big, 0, -big), core.NewVec3(big, 0, -big), core.NewVec3(big, 0, big), mat)
	floor2 := primitive.NewTriangle(core.NewVec3(-big, 0, -big), core.NewVec3(big, 0, big), core.NewVec3(-big, 0, big), mat)
	ceil1 := primitive.NewTriangle(core.NewVec3(-big, 2, -big), core.NewVec3(big, 2, big), core.NewVec3(big, 2, -big), mat)
	ceil2 := primitive.NewTriangle(core.NewVec3(-big, 2, -big), core.NewVec3(-big, 2, big), core.NewVec3(big, 2, big), mat)
	return &planePair{prims: []core.Primitive{floor1, floor2, ceil1, ceil2}}
}

func (p *planePair) Intersect(ray core.Ray, tMin, tMax float64) (core.IntersectData, bool) {
	best := tMax
	var bestHit core.IntersectData
	found := false
	for _, pr := range p.prims {
		if hit, ok := pr.Intersect(ray, tMin, best); ok {
			best = hit.T
			bestHit = hit
			found = true
		}
	}
	return bestHit, found
}

func TestShoot_StoresDiffusePhotons(t *testing.T) {
	scene := newPlanePair()
	lights := []core.Light{light.NewPoint(core.NewVec3(0, 1, 0), core.NewVec3(10, 10, 10))}

	photons, err := Shoot(context.Background(), scene, lights, ShootOptions{
		NumPhotons:   2000,
		MaxBounces:   5,
		Chunks:       4,
		RRThreshold:  0.1,
		StoreDiffuse: true,
	}, 99)
	require.NoError(t, err)
	require.NotEmpty(t, photons, "photons bouncing between two diffuse planes must be stored")

	for _, ph := range photons {
		onFloor := math.Abs(ph.Position.Y) < 1e-6
		onCeiling := math.Abs(ph.Position.Y-2) < 1e-6
		require.True(t, onFloor || onCeiling, "photon stored off-surface at %v", ph.Position)
		require.False(t, ph.Power.HasNaNOrInf())
		require.True(t, ph.HasNormal)
	}
}

func TestShoot_CausticPolicyExcludesDiffuseOnlyPaths(t *testing.T) {
	scene := newPlanePair()
	lights := []core.Light{light.NewPoint(core.NewVec3(0, 1, 0), core.NewVec3(10, 10, 10))}

	// All-diffuse geometry: a caustic-only pass must store nothing.
	photons, err := Shoot(context.Background(), scene, lights, ShootOptions{
		NumPhotons:    500,
		MaxBounces:    5,
		RRThreshold:   0.1,
		StoreCaustics: true,
	}, 42)
	require.NoError(t, err)
	require.Empty(t, photons)
}

func TestShoot_NoLightsOrBudget(t *testing.T) {
	scene := newPlanePair()
	photons, err := Shoot(context.Background(), scene, nil, ShootOptions{NumPhotons: 100}, 1)
	require.NoError(t, err)
	require.Nil(t, photons)

	photons, err = Shoot(context.Background(), scene,
		[]core.Light{light.NewPoint(core.Vec3{}, core.NewVec3(1, 1, 1))},
		ShootOptions{NumPhotons: 0}, 1)
	require.NoError(t, err)
	require.Nil(t, photons)
}
