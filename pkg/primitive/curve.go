package primitive

import (
	"math"

	"github.com/yafaray-go/renderer/pkg/core"
)

// Curve is a hair/fur strand: a polyline of control points tessellated at
// construction time into a ring of triangles forming a tube, with radius
// varying from StrandStart to StrandEnd along a StrandShape-controlled
// profile. Tessellation happens once in the constructor. Curve has no
// intersection of its own: the resulting triangles are the primitives.
type Curve struct {
	ControlPoints []core.Vec3
	StrandStart   float64
	StrandEnd     float64
	StrandShape   float64 // -1..1: biases radius taper toward the tip or root
	RadialSegments int
	Material      core.Material

	triangles []*Triangle
	bbox      core.AABB
}

// NewCurve tessellates the control polyline into triangles. radialSegments
// controls the tube's circular cross-section resolution (default 6
// when fewer than 3 are given).
func NewCurve(points []core.Vec3, strandStart, strandEnd, strandShape float64, radialSegments int, mat core.Material) *Curve {
	if radialSegments < 3 {
		radialSegments = 6
	}
	c := &Curve{
		ControlPoints:  points,
		StrandStart:    strandStart,
		StrandEnd:      strandEnd,
		StrandShape:    strandShape,
		RadialSegments: radialSegments,
		Material:       mat,
	}
	c.tessellate()
	return c
}

// radiusAt maps a strand parameter t in [0,1] to a tube radius, applying
// the strand_shape bias the same way libYafaRay's CurveObject does:
// shape > 0 thickens the tip, shape < 0 thickens the root.
func (c *Curve) radiusAt(t float64) float64 {
	shape := 1.0
	if c.StrandShape >= 0 {
		shape = 1 - c.StrandShape*(1-t)
	} else {
		shape = 1 + c.StrandShape*t
	}
	return (c.StrandStart + (c.StrandEnd-c.StrandStart)*t) * shape
}

func (c *Curve) tessellate() {
	n := len(c.ControlPoints)
	if n < 2 {
		return
	}

	type ring struct {
		verts []core.Vec3
	}
	rings := make([]ring, n)

	for i, p := range c.ControlPoints {
		t := float64(i) / float64(n-1)
		radius := c.radiusAt(t)

		var tangent core.Vec3
		switch {
		case i == 0:
			tangent = c.ControlPoints[1].Subtract(p)
		case i == n-1:
			tangent = p.Subtract(c.ControlPoints[i-1])
		default:
			tangent = c.ControlPoints[i+1].Subtract(c.ControlPoints[i-1])
		}
		tangent = tangent.Normalize()
		u, v := core.OrthonormalBasis(tangent)

		verts := make([]core.Vec3, c.RadialSegments)
		for s := 0; s < c.RadialSegments; s++ {
			angle := 2 * math.Pi * float64(s) / float64(c.RadialSegments)
			offset := u.Multiply(math.Cos(angle) * radius).Add(v.Multiply(math.Sin(angle) * radius))
			verts[s] = p.Add(offset)
		}
		rings[i] = ring{verts: verts}
	}

	var points []core.Vec3
	for i := 0; i < n-1; i++ {
		a, b := rings[i].verts, rings[i+1].verts
		for s := 0; s < c.RadialSegments; s++ {
			s2 := (s + 1) % c.RadialSegments
			c.triangles = append(c.triangles, NewTriangle(a[s], a[s2], b[s], c.Material))
			c.triangles = append(c.triangles, NewTriangle(a[s2], b[s2], b[s], c.Material))
			points = append(points, a[s], a[s2], b[s], b[s2])
		}
	}
	if len(points) > 0 {
		c.bbox = core.NewAABBFromPoints(points...)
	}
}

// Triangles exposes the tessellated geometry. Curve itself does not
// implement core.Primitive; its triangles can be added to a scene one by
// one, the same way a mesh's faces are.
func (c *Curve) Triangles() []*Triangle { return c.triangles }

func (c *Curve) Bounds() core.AABB { return c.bbox }
