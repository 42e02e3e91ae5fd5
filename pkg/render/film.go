// Package render is the tiled progressive driver: the
// ImageFilm pixel accumulator, reconstruction filters, the quasi-random
// sample sequence, the worker pool dispatching tiles, and the pass loop
// with adaptive resampling, cancellation and output callbacks.
package render

import (
	"image"

	"github.com/yafaray-go/renderer/pkg/core"
)

// Pixel accumulates weighted colour samples plus the statistics
// adaptive sampling needs.
type Pixel struct {
	ColourSum core.Vec3 // sum of w*c
	WeightSum float64   // sum of w

	SampleCount int
	lumSum      float64
	lumSqSum    float64

	Converged bool
	Resampled bool
}

// AddSample folds one filtered sample into the accumulator. The invariant
// colour == ColourSum/WeightSum holds after every call.
func (p *Pixel) AddSample(c core.Vec3, weight float64) {
	p.ColourSum = p.ColourSum.Add(c.Multiply(weight))
	p.WeightSum += weight
	lum := c.Luminance()
	p.lumSum += lum
	p.lumSqSum += lum * lum
	p.SampleCount++
}

// Colour returns the reconstructed pixel value Sum(w*c)/Sum(w).
func (p *Pixel) Colour() core.Vec3 {
	if p.WeightSum <= 0 {
		return core.Vec3{}
	}
	return p.ColourSum.Multiply(1.0 / p.WeightSum)
}

// Variance is the sample variance of the luminance stream, the quantity
// compared against AA_threshold between passes.
func (p *Pixel) Variance() float64 {
	if p.SampleCount < 2 {
		return 0
	}
	n := float64(p.SampleCount)
	mean := p.lumSum / n
	return (p.lumSqSum/n - mean*mean) * n / (n - 1)
}

// Film is the full-resolution accumulation buffer, written to by exactly
// one worker per tile region at a time.
type Film struct {
	Width, Height int
	pixels        []Pixel
}

func NewFilm(width, height int) *Film {
	return &Film{Width: width, Height: height, pixels: make([]Pixel, width*height)}
}

// Pixel returns the accumulator at integer coordinates; nil outside the
// film.
func (f *Film) Pixel(x, y int) *Pixel {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return nil
	}
	return &f.pixels[y*f.Width+x]
}

// Splat distributes one sample at continuous film position (fx, fy) to
// the pixels under the reconstruction filter kernel, clipped to bounds
// so a tile's worker never writes outside the region it owns.
func (f *Film) Splat(bounds image.Rectangle, fx, fy float64, c core.Vec3, filter Filter) {
	r := filter.Radius()
	x0 := maxInt(bounds.Min.X, int(fx-r+0.5))
	x1 := minInt(bounds.Max.X-1, int(fx+r-0.5))
	y0 := maxInt(bounds.Min.Y, int(fy-r+0.5))
	y1 := minInt(bounds.Max.Y-1, int(fy+r-0.5))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			w := filter.Weight(float64(x)+0.5-fx, float64(y)+0.5-fy)
			if w <= 0 {
				continue
			}
			if px := f.Pixel(x, y); px != nil {
				px.AddSample(c, w)
			}
		}
	}
}

// Tile is one unit of render work: an axis-aligned pixel rectangle
// processed by exactly one worker at a time.
type Tile struct {
	ID     int
	Bounds image.Rectangle

	PassesCompleted int
	Converged       bool // every pixel in the tile converged; skipped next pass
}

// TileOrder selects how the tile list is sequenced before dispatch
// (AA_tile_order).
type TileOrder int

const (
	TileOrderLinear TileOrder = iota
	TileOrderCentre           // centre-out, the usual preview ordering
	TileOrderRandom           // deterministic shuffle keyed by tile count
)

// ParseTileOrder maps the AA_tile_order parameter values.
func ParseTileOrder(s string) (TileOrder, bool) {
	switch s {
	case "linear", "":
		return TileOrderLinear, true
	case "centre", "center":
		return TileOrderCentre, true
	case "random":
		return TileOrderRandom, true
	}
	return TileOrderLinear, false
}

// NewTileGrid partitions the image into tiles of the given side
// length, with ceiling division so edge tiles shrink rather than
// overflow.
func NewTileGrid(width, height, tileSize int, order TileOrder) []*Tile {
	if tileSize <= 0 {
		tileSize = 32
	}
	var tiles []*Tile
	id := 0
	tilesX := (width + tileSize - 1) / tileSize
	tilesY := (height + tileSize - 1) / tileSize
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			x0, y0 := tx*tileSize, ty*tileSize
			x1, y1 := minInt(x0+tileSize, width), minInt(y0+tileSize, height)
			tiles = append(tiles, &Tile{ID: id, Bounds: image.Rect(x0, y0, x1, y1)})
			id++
		}
	}
	reorderTiles(tiles, width, height, order)
	return tiles
}

func reorderTiles(tiles []*Tile, width, height int, order TileOrder) {
	switch order {
	case TileOrderCentre:
		cx, cy := float64(width)/2, float64(height)/2
		sortTilesBy(tiles, func(t *Tile) float64 {
			tx := float64(t.Bounds.Min.X+t.Bounds.Max.X) / 2
			ty := float64(t.Bounds.Min.Y+t.Bounds.Max.Y) / 2
			dx, dy := tx-cx, ty-cy
			return dx*dx + dy*dy
		})
	case TileOrderRandom:
		// Deterministic LCG shuffle so renders stay reproducible.
		seed := uint64(len(tiles))*6364136223846793005 + 1442695040888963407
		for i := len(tiles) - 1; i > 0; i-- {
			seed = seed*6364136223846793005 + 1442695040888963407
			j := int(seed % uint64(i+1))
			tiles[i], tiles[j] = tiles[j], tiles[i]
		}
	}
}

func sortTilesBy(tiles []*Tile, key func(*Tile) float64) {
	// Insertion sort: tile counts are small and the input is mostly
	// ordered already.
	for i := 1; i < len(tiles); i++ {
		t := tiles[i]
		k := key(t)
		j := i - 1
		for j >= 0 && key(tiles[j]) > k {
			tiles[j+1] = tiles[j]
			j--
		}
		tiles[j+1] = t
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
