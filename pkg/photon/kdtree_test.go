package photon

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yafaray-go/renderer/pkg/core"
)

func randomPhotons(n int, seed int64) []Photon {
	r := rand.New(rand.NewSource(seed))
	photons := make([]Photon, n)
	for i := range photons {
		photons[i] = Photon{
			Position:  core.NewVec3(r.Float64()*10, r.Float64()*10, r.Float64()*10),
			Direction: core.NewVec3(0, 1, 0),
			Power:     core.NewVec3(1, 1, 1),
		}
	}
	return photons
}

// bruteKNN returns the true k nearest squared distances within maxDistSq.
func bruteKNN(photons []Photon, p core.Vec3, k int, maxDistSq float64) []float64 {
	dists := make([]float64, 0, len(photons))
	for _, ph := range photons {
		d := ph.Position.Subtract(p).LengthSquared()
		if d <= maxDistSq {
			dists = append(dists, d)
		}
	}
	sort.Float64s(dists)
	if len(dists) > k {
		dists = dists[:k]
	}
	return dists
}

// TestMap_GatherMatchesBruteForce is the photon-map k-NN correctness
// check: the k returned photons are the true k nearest by
// Euclidean distance among those within r_max.
func TestMap_GatherMatchesBruteForce(t *testing.T) {
	photons := randomPhotons(500, 1)
	m := NewMap(photons)
	r := rand.New(rand.NewSource(2))

	for trial := 0; trial < 50; trial++ {
		q := core.NewVec3(r.Float64()*10, r.Float64()*10, r.Float64()*10)
		k := 1 + r.Intn(20)
		maxDistSq := 1.0 + r.Float64()*20

		want := bruteKNN(photons, q, k, maxDistSq)
		got := m.Gather(q, k, maxDistSq)

		require.Len(t, got.Photons, len(want), "trial %d", trial)
		gotDists := make([]float64, len(got.Photons))
		for i, ph := range got.Photons {
			gotDists[i] = ph.Position.Subtract(q).LengthSquared()
		}
		sort.Float64s(gotDists)
		for i := range want {
			require.InDelta(t, want[i], gotDists[i], 1e-9, "trial %d, neighbour %d", trial, i)
		}
		if len(want) > 0 {
			require.InDelta(t, want[len(want)-1], got.MaxDistSq, 1e-9)
		}
	}
}

func TestMap_EmptyAndDegenerateQueries(t *testing.T) {
	empty := NewMap(nil)
	require.Zero(t, empty.Len())
	require.Empty(t, empty.Gather(core.Vec3{}, 10, 100).Photons)

	m := NewMap(randomPhotons(10, 3))
	require.Empty(t, m.Gather(core.Vec3{}, 0, 100).Photons, "k=0 returns nothing")
}

func TestMap_GatherRadiusMatchesBruteForce(t *testing.T) {
	photons := randomPhotons(300, 4)
	m := NewMap(photons)
	q := core.NewVec3(5, 5, 5)
	radius := 2.5

	wantCount := 0
	for _, ph := range photons {
		if ph.Position.Subtract(q).LengthSquared() <= radius*radius {
			wantCount++
		}
	}
	got := m.GatherRadius(q, radius)
	require.Len(t, got, wantCount)
	for _, ph := range got {
		require.LessOrEqual(t, ph.Position.Subtract(q).LengthSquared(), radius*radius+1e-9)
	}
}
