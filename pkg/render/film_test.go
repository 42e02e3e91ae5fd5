package render

import (
	"image"
	"math"
	"testing"

	"github.com/yafaray-go/renderer/pkg/core"
)

func TestPixel_WeightedAccumulation(t *testing.T) {
	var p Pixel
	p.AddSample(core.NewVec3(1, 0, 0), 0.5)
	p.AddSample(core.NewVec3(0, 1, 0), 1.5)

	// colour == Sum(w*c) / Sum(w) (spec invariant on ImageFilm pixels)
	got := p.Colour()
	want := core.NewVec3(0.5, 1.5, 0).Multiply(1.0 / 2.0)
	if math.Abs(got.X-want.X) > 1e-12 || math.Abs(got.Y-want.Y) > 1e-12 {
		t.Errorf("Colour() = %v, want %v", got, want)
	}
	if p.SampleCount != 2 {
		t.Errorf("SampleCount = %d, want 2", p.SampleCount)
	}
}

func TestPixel_EmptyPixelIsBlack(t *testing.T) {
	var p Pixel
	if !p.Colour().IsZero() {
		t.Errorf("empty pixel colour = %v, want zero", p.Colour())
	}
	if p.Variance() != 0 {
		t.Errorf("empty pixel variance = %v, want 0", p.Variance())
	}
}

func TestPixel_VarianceOfConstantStreamIsZero(t *testing.T) {
	var p Pixel
	for i := 0; i < 16; i++ {
		p.AddSample(core.NewVec3(0.25, 0.25, 0.25), 1)
	}
	if v := p.Variance(); v > 1e-12 {
		t.Errorf("variance of constant stream = %g, want ~0", v)
	}
}

func TestPixel_VarianceDetectsNoise(t *testing.T) {
	var p Pixel
	for i := 0; i < 16; i++ {
		c := 0.0
		if i%2 == 0 {
			c = 1.0
		}
		p.AddSample(core.NewVec3(c, c, c), 1)
	}
	if v := p.Variance(); v < 0.1 {
		t.Errorf("variance of alternating stream = %g, want > 0.1", v)
	}
}

func TestNewTileGrid_CoversImageDisjointly(t *testing.T) {
	width, height, tileSize := 100, 70, 32
	tiles := NewTileGrid(width, height, tileSize, TileOrderLinear)

	covered := make([]bool, width*height)
	for _, tile := range tiles {
		for y := tile.Bounds.Min.Y; y < tile.Bounds.Max.Y; y++ {
			for x := tile.Bounds.Min.X; x < tile.Bounds.Max.X; x++ {
				idx := y*width + x
				if covered[idx] {
					t.Fatalf("pixel (%d,%d) covered by two tiles", x, y)
				}
				covered[idx] = true
			}
		}
	}
	for i, c := range covered {
		if !c {
			t.Fatalf("pixel %d not covered by any tile", i)
		}
	}
}

func TestNewTileGrid_OrderingsPreserveTileSet(t *testing.T) {
	for _, order := range []TileOrder{TileOrderLinear, TileOrderCentre, TileOrderRandom} {
		tiles := NewTileGrid(128, 96, 32, order)
		if len(tiles) != 4*3 {
			t.Errorf("order %v: got %d tiles, want 12", order, len(tiles))
		}
		seen := map[int]bool{}
		for _, tile := range tiles {
			if seen[tile.ID] {
				t.Errorf("order %v: duplicate tile id %d", order, tile.ID)
			}
			seen[tile.ID] = true
		}
	}
}

func TestFilm_SplatClampsToBounds(t *testing.T) {
	film := NewFilm(8, 8)
	bounds := image.Rect(0, 0, 4, 4)
	filter := NewGaussianFilter(2, 2)

	// Splat near the tile edge: pixels outside bounds must stay empty.
	film.Splat(bounds, 3.5, 3.5, core.NewVec3(1, 1, 1), filter)

	if film.Pixel(3, 3).WeightSum <= 0 {
		t.Error("in-bounds pixel received no weight")
	}
	for y := 4; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if film.Pixel(x, y).WeightSum != 0 {
				t.Fatalf("pixel (%d,%d) outside tile bounds was written", x, y)
			}
		}
	}
}
