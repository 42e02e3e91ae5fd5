package render

import (
	"math"

	"github.com/yafaray-go/renderer/pkg/core"
)

// Pinhole is a perspective camera generating primary rays with screen-
// space differentials. A look-at frame, vertical field of view, and a
// thin-lens aperture for depth of field parameterize the viewport.
type Pinhole struct {
	origin          core.Vec3
	lowerLeftCorner core.Vec3
	horizontal      core.Vec3
	vertical        core.Vec3
	u, v            core.Vec3

	width, height float64
	lensRadius    float64
}

// NewPinhole builds a camera at from looking at to. fovDeg is the
// vertical field of view; aperture 0 gives a pure pinhole.
func NewPinhole(from, to, up core.Vec3, fovDeg float64, width, height int, aperture, focusDist float64) *Pinhole {
	aspect := float64(width) / float64(height)
	theta := fovDeg * math.Pi / 180
	h := math.Tan(theta / 2)
	viewportHeight := 2 * h
	viewportWidth := aspect * viewportHeight

	w := from.Subtract(to).Normalize()
	u := up.Cross(w).Normalize()
	v := w.Cross(u)

	if focusDist <= 0 {
		focusDist = from.Subtract(to).Length()
	}

	horizontal := u.Multiply(viewportWidth * focusDist)
	vertical := v.Multiply(viewportHeight * focusDist)
	lowerLeft := from.
		Subtract(horizontal.Multiply(0.5)).
		Subtract(vertical.Multiply(0.5)).
		Subtract(w.Multiply(focusDist))

	return &Pinhole{
		origin:          from,
		lowerLeftCorner: lowerLeft,
		horizontal:      horizontal,
		vertical:        vertical,
		u:               u,
		v:               v,
		width:           float64(width),
		height:          float64(height),
		lensRadius:      aperture / 2,
	}
}

// GetRay maps continuous pixel coordinates (x right, y down) to a
// primary ray. Lens samples come from the sampler when the aperture is
// open; the differentials are the rays one pixel over in x and y.
func (c *Pinhole) GetRay(x, y float64, sampler core.Sampler) core.Ray {
	origin := c.origin
	if c.lensRadius > 0 && sampler != nil {
		s := sampler.Get2D()
		// concentric-free polar disc sample; good enough for a lens
		r := c.lensRadius * math.Sqrt(s.X)
		phi := 2 * math.Pi * s.Y
		offset := c.u.Multiply(r * math.Cos(phi)).Add(c.v.Multiply(r * math.Sin(phi)))
		origin = origin.Add(offset)
	}

	dir := c.directionAt(x, y, origin)
	ray := core.Ray{Origin: origin, Direction: dir, TMin: 0, TMax: math.Inf(1)}
	ray.HasDifferentials = true
	ray.Differentials = core.RayDifferential{
		OriginX:    origin,
		DirectionX: c.directionAt(x+1, y, origin),
		OriginY:    origin,
		DirectionY: c.directionAt(x, y+1, origin),
	}
	return ray
}

func (c *Pinhole) directionAt(x, y float64, origin core.Vec3) core.Vec3 {
	s := x / c.width
	t := 1 - y/c.height // film y grows downward, viewport v upward
	target := c.lowerLeftCorner.
		Add(c.horizontal.Multiply(s)).
		Add(c.vertical.Multiply(t))
	return target.Subtract(origin).Normalize()
}
