package render

import (
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yafaray-go/renderer/pkg/core"
)

func TestFilters_ZeroBeyondRadius(t *testing.T) {
	filters := []Filter{
		BoxFilter{R: 0.5},
		NewGaussianFilter(1.5, 2),
		NewMitchellFilter(2),
	}
	for _, f := range filters {
		r := f.Radius()
		if w := f.Weight(r*1.01, 0); w != 0 {
			t.Errorf("%T: weight beyond radius = %g, want 0", f, w)
		}
		if w := f.Weight(0, 0); w <= 0 {
			t.Errorf("%T: weight at centre = %g, want > 0", f, w)
		}
	}
}

func TestFilters_Symmetric(t *testing.T) {
	filters := []Filter{
		BoxFilter{R: 0.5},
		NewGaussianFilter(1.5, 2),
		NewMitchellFilter(2),
	}
	for _, f := range filters {
		for _, d := range []float64{0.1, 0.3, 0.7} {
			if f.Weight(d, 0) != f.Weight(-d, 0) || f.Weight(0, d) != f.Weight(0, -d) {
				t.Errorf("%T: kernel not symmetric at %g", f, d)
			}
		}
	}
}

// TestFilters_PartitionOfUnity verifies the reconstruction-filter
// partition property: splatting a constant-colour signal
// over a dense uniform sample grid reconstructs that constant at every
// interior pixel to within 0.5%.
func TestFilters_PartitionOfUnity(t *testing.T) {
	filters := map[string]Filter{
		"box":      BoxFilter{R: 0.5},
		"gaussian": NewGaussianFilter(1.5, 2),
		"mitchell": NewMitchellFilter(2),
	}
	const size = 16
	const sub = 8 // sub-samples per pixel axis
	colour := core.NewVec3(0.6, 0.4, 0.2)

	for name, f := range filters {
		film := NewFilm(size, size)
		bounds := image.Rect(0, 0, size, size)
		for y := 0; y < size*sub; y++ {
			for x := 0; x < size*sub; x++ {
				fx := (float64(x) + 0.5) / sub
				fy := (float64(y) + 0.5) / sub
				film.Splat(bounds, fx, fy, colour, f)
			}
		}
		// Interior pixels only: edge pixels lose kernel support to the
		// film border by construction. Every interior pixel must
		// reconstruct the constant exactly and collect the same total
		// kernel weight (the filter's integral over one pixel area).
		margin := int(math.Ceil(f.Radius())) + 1
		meanWeight, count := 0.0, 0
		for y := margin; y < size-margin; y++ {
			for x := margin; x < size-margin; x++ {
				meanWeight += film.Pixel(x, y).WeightSum
				count++
			}
		}
		meanWeight /= float64(count)
		require.Greater(t, meanWeight, 0.0, name)
		for y := margin; y < size-margin; y++ {
			for x := margin; x < size-margin; x++ {
				p := film.Pixel(x, y)
				require.InDeltaf(t, colour.X, p.Colour().X, 1e-12,
					"%s: pixel (%d,%d) colour", name, x, y)
				require.InDeltaf(t, meanWeight, p.WeightSum, 0.005*meanWeight,
					"%s: pixel (%d,%d) weight sum", name, x, y)
			}
		}
	}
}

// TestBoxFilter_WeightSumMatchesPixelArea checks the box kernel's
// integral directly: summed over a dense grid it equals the pixel area.
func TestBoxFilter_WeightSumMatchesPixelArea(t *testing.T) {
	f := BoxFilter{R: 0.5}
	const sub = 64
	sum := 0.0
	for y := 0; y < sub; y++ {
		for x := 0; x < sub; x++ {
			dx := (float64(x)+0.5)/sub - 0.5
			dy := (float64(y)+0.5)/sub - 0.5
			sum += f.Weight(dx, dy) / (sub * sub)
		}
	}
	require.InDelta(t, 1.0, sum, 0.005)
}
