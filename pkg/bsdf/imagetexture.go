package bsdf

import (
	"math"

	"golang.org/x/image/draw"

	"github.com/yafaray-go/renderer/pkg/core"
)

// ImageTexture samples a pre-decoded pixel buffer via a UV node.
// Decoding TGA/EXR/HDR files belongs to the scene loader: callers hand
// in an already-decoded []core.Vec3 buffer. A mip chain is precomputed
// with golang.org/x/image/draw's BiLinear scaler; Eval (the node path)
// samples the base level only, and the coarser levels are read only by
// EvalFiltered for a caller-supplied footprint.
type ImageTexture struct {
	ID int

	mips []mipLevel

	WrapU, WrapV WrapMode
}

type mipLevel struct {
	width, height int
	pixels        []core.Vec3
}

// WrapMode controls UV coordinates outside [0,1).
type WrapMode int

const (
	WrapRepeat WrapMode = iota
	WrapClamp
)

// NewImageTexture builds a texture from a decoded pixel buffer, precomputing
// a full mip chain down to 1x1.
func NewImageTexture(id, width, height int, pixels []core.Vec3) *ImageTexture {
	t := &ImageTexture{ID: id}
	t.mips = append(t.mips, mipLevel{width: width, height: height, pixels: pixels})
	w, h := width, height
	for w > 1 || h > 1 {
		nw, nh := maxInt(1, w/2), maxInt(1, h/2)
		t.mips = append(t.mips, downsample(t.mips[len(t.mips)-1], nw, nh))
		w, h = nw, nh
	}
	return t
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// downsample uses golang.org/x/image/draw's bilinear scaler operating on
// an image.RGBA64 intermediate, then converts back to linear Vec3 colour.
func downsample(src mipLevel, dstW, dstH int) mipLevel {
	srcImg := vec3ToRGBA64(src)
	dstImg := newRGBA64(dstW, dstH)
	draw.BiLinear.Scale(dstImg, dstImg.Bounds(), srcImg, srcImg.Bounds(), draw.Over, nil)
	return rgba64ToVec3(dstImg, dstW, dstH)
}

func (t *ImageTexture) NodeID() int { return t.ID }

func (t *ImageTexture) Eval(state *core.RenderState, sp *core.SurfacePoint) core.NodeResult {
	colour := t.sampleLevel(0, sp.U, sp.V)
	result := core.NodeResult{Colour: colour, Scalar: colour.Luminance()}
	writeNode(state, t.ID, result)
	return result
}

func (t *ImageTexture) EvalColour(state *core.RenderState) core.Vec3 {
	if r, ok := readNode(state, t.ID); ok {
		return r.Colour
	}
	return core.Vec3{}
}

func (t *ImageTexture) EvalScalar(state *core.RenderState) float64 {
	if r, ok := readNode(state, t.ID); ok {
		return r.Scalar
	}
	return 0
}

// EvalFiltered samples the mip chain at a level chosen from the texture
// footprint implied by ray differentials,
// falling back to the base level when footprint is degenerate.
func (t *ImageTexture) EvalFiltered(u, v, footprint float64) core.Vec3 {
	if footprint <= 0 || len(t.mips) == 1 {
		return t.sampleLevel(0, u, v)
	}
	level := math.Log2(footprint * float64(t.mips[0].width))
	level = math.Max(0, math.Min(float64(len(t.mips)-1), level))
	lo := int(level)
	hi := minInt(lo+1, len(t.mips)-1)
	frac := level - float64(lo)
	a := t.sampleLevel(lo, u, v)
	b := t.sampleLevel(hi, u, v)
	return a.Multiply(1 - frac).Add(b.Multiply(frac))
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func (t *ImageTexture) sampleLevel(level int, u, v float64) core.Vec3 {
	m := t.mips[level]
	u = wrap(u, t.WrapU)
	v = wrap(v, t.WrapV)

	x := u * float64(m.width)
	y := (1.0 - v) * float64(m.height)
	return bilinearSample(m, x, y)
}

func wrap(c float64, mode WrapMode) float64 {
	switch mode {
	case WrapClamp:
		return math.Max(0, math.Min(1, c))
	default:
		f := c - math.Floor(c)
		return f
	}
}

func bilinearSample(m mipLevel, x, y float64) core.Vec3 {
	x0 := int(math.Floor(x - 0.5))
	y0 := int(math.Floor(y - 0.5))
	fx := x - 0.5 - float64(x0)
	fy := y - 0.5 - float64(y0)

	c00 := at(m, x0, y0)
	c10 := at(m, x0+1, y0)
	c01 := at(m, x0, y0+1)
	c11 := at(m, x0+1, y0+1)

	top := c00.Multiply(1 - fx).Add(c10.Multiply(fx))
	bottom := c01.Multiply(1 - fx).Add(c11.Multiply(fx))
	return top.Multiply(1 - fy).Add(bottom.Multiply(fy))
}

func at(m mipLevel, x, y int) core.Vec3 {
	x = clampInt(x, 0, m.width-1)
	y = clampInt(y, 0, m.height-1)
	return m.pixels[y*m.width+x]
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
