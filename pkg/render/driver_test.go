package render_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yafaray-go/renderer/pkg/core"
	"github.com/yafaray-go/renderer/pkg/integrator"
	"github.com/yafaray-go/renderer/pkg/render"
)

// flatScene has no geometry: every ray escapes to a flat background.
type flatScene struct {
	bg core.Vec3
}

func (f flatScene) Intersect(ray core.Ray) (core.SurfacePoint, float64, bool) {
	return core.SurfacePoint{}, 0, false
}

func (f flatScene) Occluded(origin, dir core.Vec3, dist float64, exclude core.Primitive) (bool, core.Vec3) {
	return false, core.NewVec3(1, 1, 1)
}

func (f flatScene) Lights() []core.Light { return nil }

func (f flatScene) Background(ray core.Ray) core.Vec3 { return f.bg }

func testDriver(bg core.Vec3, cfg render.Config) *render.Driver {
	camera := render.NewPinhole(
		core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1), core.NewVec3(0, 1, 0),
		45, cfg.Width, cfg.Height, 0, 1)
	surface := integrator.NewPathTracer(integrator.PathConfig{MaxDepth: 3})
	return render.NewDriver(cfg, camera, surface, flatScene{bg: bg}, nil, nil, nil, core.NewNopLogger())
}

// TestDriver_EmptySceneRendersBackground: an empty scene produces a
// background-filled image and a nil error.
func TestDriver_EmptySceneRendersBackground(t *testing.T) {
	bg := core.NewVec3(0.2, 0.4, 0.6)
	d := testDriver(bg, render.Config{Width: 16, Height: 16, AASamples: 1, Threads: 2})

	film, stats, err := d.Render(context.Background())
	require.NoError(t, err)
	require.False(t, stats.Cancelled)

	for y := 0; y < film.Height; y++ {
		for x := 0; x < film.Width; x++ {
			got := film.Pixel(x, y).Colour()
			require.InDelta(t, bg.X, got.X, 1e-12)
			require.InDelta(t, bg.Y, got.Y, 1e-12)
			require.InDelta(t, bg.Z, got.Z, 1e-12)
		}
	}
}

// TestDriver_Deterministic: two
// renders with the same configuration produce identical pixel buffers,
// regardless of worker count.
func TestDriver_Deterministic(t *testing.T) {
	bg := core.NewVec3(0.7, 0.1, 0.3)
	cfgA := render.Config{Width: 24, Height: 16, AASamples: 4, TileSize: 8, Threads: 1}
	cfgB := render.Config{Width: 24, Height: 16, AASamples: 4, TileSize: 8, Threads: 8}

	filmA, _, err := testDriver(bg, cfgA).Render(context.Background())
	require.NoError(t, err)
	filmB, _, err := testDriver(bg, cfgB).Render(context.Background())
	require.NoError(t, err)

	for y := 0; y < filmA.Height; y++ {
		for x := 0; x < filmA.Width; x++ {
			a, b := filmA.Pixel(x, y), filmB.Pixel(x, y)
			if a.Colour() != b.Colour() || a.WeightSum != b.WeightSum {
				t.Fatalf("pixel (%d,%d) differs across renders: %v vs %v", x, y, a.Colour(), b.Colour())
			}
		}
	}
}

// TestDriver_TileOrderInvariant: tiles are independent work items, so
// dispatch order must not change the result.
func TestDriver_TileOrderInvariant(t *testing.T) {
	bg := core.NewVec3(0.5, 0.5, 0.5)
	base := render.Config{Width: 32, Height: 32, AASamples: 2, TileSize: 8, Threads: 4}

	orders := []render.TileOrder{render.TileOrderLinear, render.TileOrderCentre, render.TileOrderRandom}
	var reference *render.Film
	for _, order := range orders {
		cfg := base
		cfg.TileOrder = order
		film, _, err := testDriver(bg, cfg).Render(context.Background())
		require.NoError(t, err)
		if reference == nil {
			reference = film
			continue
		}
		for y := 0; y < film.Height; y++ {
			for x := 0; x < film.Width; x++ {
				require.Equal(t, reference.Pixel(x, y).Colour(), film.Pixel(x, y).Colour(),
					"order %v, pixel (%d,%d)", order, x, y)
			}
		}
	}
}

// TestDriver_Cancellation: a cancelled render
// returns a Cancelled-kind error, and every touched pixel still honours
// the weighted-sum invariant.
func TestDriver_Cancellation(t *testing.T) {
	d := testDriver(core.NewVec3(1, 1, 1), render.Config{
		Width: 64, Height: 64, AASamples: 8, TileSize: 8, Threads: 2,
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel before the first tile dequeues

	film, stats, err := d.Render(ctx)
	require.Error(t, err)
	require.True(t, core.IsCancelled(err))
	require.True(t, stats.Cancelled)

	for y := 0; y < film.Height; y++ {
		for x := 0; x < film.Width; x++ {
			p := film.Pixel(x, y)
			if p.WeightSum > 0 {
				c := p.Colour()
				require.False(t, c.HasNaNOrInf())
				require.InDelta(t, p.ColourSum.X/p.WeightSum, c.X, 1e-12)
			}
		}
	}
}

// TestDriver_OutputCallbacks checks the output sink sees every pixel at
// flush and that callbacks arrive serialized (no data race under -race).
func TestDriver_OutputCallbacks(t *testing.T) {
	var put int
	var flushed bool
	out := &render.OutputCallbacks{
		PutPixel: func(user interface{}, view string, x, y int, layer string, colour core.Vec3, alpha float64) {
			put++
		},
		Flush: func(user interface{}, view string) { flushed = true },
	}
	camera := render.NewPinhole(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1), core.NewVec3(0, 1, 0), 45, 8, 8, 0, 1)
	surface := integrator.NewPathTracer(integrator.PathConfig{MaxDepth: 2})
	d := render.NewDriver(render.Config{Width: 8, Height: 8, AASamples: 1, TileSize: 4, Threads: 3},
		camera, surface, flatScene{bg: core.NewVec3(1, 0, 0)}, nil, out, nil, core.NewNopLogger())

	_, _, err := d.Render(context.Background())
	require.NoError(t, err)
	require.True(t, flushed)
	// 4 tiles * 16 pixels at completion + 64 at flush
	require.Equal(t, 4*16+64, put)
}

// TestDriver_AdaptiveConvergenceStopsEarly: a perfectly flat image
// converges after the base pass, so later passes add no samples.
func TestDriver_AdaptiveConvergenceStopsEarly(t *testing.T) {
	d := testDriver(core.NewVec3(0.5, 0.5, 0.5), render.Config{
		Width: 16, Height: 16, AASamples: 4, AAPasses: 5, AAIncSample: 4,
		AAThreshold: 0.01, TileSize: 8, Threads: 2,
	})
	film, stats, err := d.Render(context.Background())
	require.NoError(t, err)
	require.LessOrEqual(t, stats.PassesRun, 2)
	require.Equal(t, film.Width*film.Height, stats.ConvergedPixels)

	maxSamples := 0
	for y := 0; y < film.Height; y++ {
		for x := 0; x < film.Width; x++ {
			if s := film.Pixel(x, y).SampleCount; s > maxSamples {
				maxSamples = s
			}
		}
	}
	// Only the base pass's samples (plus box-filter neighbours, which a
	// half-pixel box kernel does not produce).
	require.LessOrEqual(t, maxSamples, 4)
}
