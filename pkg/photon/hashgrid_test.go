package photon

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yafaray-go/renderer/pkg/core"
)

// TestHashGrid_GatherMatchesBruteForce: the grid's radius query must
// return exactly the photons within r, like the k-d tree's radius
// variant, despite the hashed bucketing.
func TestHashGrid_GatherMatchesBruteForce(t *testing.T) {
	photons := randomPhotons(400, 7)
	radius := 1.5
	grid := NewHashGrid(photons, radius)
	r := rand.New(rand.NewSource(8))

	for trial := 0; trial < 30; trial++ {
		q := core.NewVec3(r.Float64()*10, r.Float64()*10, r.Float64()*10)

		wantCount := 0
		for _, ph := range photons {
			if ph.Position.Subtract(q).LengthSquared() < radius*radius {
				wantCount++
			}
		}
		got := grid.Gather(q, radius)
		require.Len(t, got, wantCount, "trial %d", trial)
		for _, ph := range got {
			require.Less(t, ph.Position.Subtract(q).LengthSquared(), radius*radius)
		}
	}
}

func TestHashGrid_Empty(t *testing.T) {
	grid := NewHashGrid(nil, 1)
	require.Zero(t, grid.Len())
	require.Empty(t, grid.Gather(core.Vec3{}, 1))
}
