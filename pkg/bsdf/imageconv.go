package bsdf

import (
	"image"
	"image/color"
	"math"

	"github.com/yafaray-go/renderer/pkg/core"
)

// vec3ToRGBA64/rgba64ToVec3 bridge between the renderer's linear-colour
// Vec3 buffers and image.RGBA64, the only format precise enough to round
// trip linear HDR values through golang.org/x/image/draw's scaler without
// visible banding.

func vec3ToRGBA64(m mipLevel) *image.RGBA64 {
	img := image.NewRGBA64(image.Rect(0, 0, m.width, m.height))
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			c := m.pixels[y*m.width+x]
			img.SetRGBA64(x, y, color.RGBA64{
				R: toChannel(c.X),
				G: toChannel(c.Y),
				B: toChannel(c.Z),
				A: 0xFFFF,
			})
		}
	}
	return img
}

func newRGBA64(w, h int) *image.RGBA64 {
	return image.NewRGBA64(image.Rect(0, 0, w, h))
}

func rgba64ToVec3(img *image.RGBA64, w, h int) mipLevel {
	pixels := make([]core.Vec3, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.RGBA64At(x, y)
			pixels[y*w+x] = core.NewVec3(fromChannel(c.R), fromChannel(c.G), fromChannel(c.B))
		}
	}
	return mipLevel{width: w, height: h, pixels: pixels}
}

// toChannel/fromChannel map the renderer's unbounded linear-light values
// into image.RGBA64's 16-bit channel range and back via a simple
// Reinhard-style compressor, so HDR values above 1.0 survive the round
// trip through the 16-bit-per-channel scaler without clipping.
func toChannel(v float64) uint16 {
	compressed := v / (1 + math.Max(0, v))
	if v < 0 {
		compressed = 0
	}
	return uint16(math.Min(65535, math.Max(0, compressed*65535)))
}

func fromChannel(c uint16) float64 {
	compressed := float64(c) / 65535
	if compressed >= 1 {
		return 1e6
	}
	return compressed / (1 - compressed)
}
