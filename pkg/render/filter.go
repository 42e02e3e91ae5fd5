package render

import "math"

// Filter is a separable reconstruction kernel with a fixed radius per
// render.
type Filter interface {
	Radius() float64
	Weight(dx, dy float64) float64
}

// ParseFilter maps the filter_type/filter_size configuration keys.
func ParseFilter(name string, size float64) (Filter, bool) {
	if size <= 0 {
		size = 1.0
	}
	switch name {
	case "box", "":
		return BoxFilter{R: size * 0.5}, true
	case "gauss", "gaussian":
		return NewGaussianFilter(size, 2.0), true
	case "mitchell":
		return NewMitchellFilter(size), true
	}
	return nil, false
}

// BoxFilter weighs every sample inside the radius equally. A half-pixel
// box is the "one sample, one pixel" degenerate case.
type BoxFilter struct {
	R float64
}

func (b BoxFilter) Radius() float64 { return b.R }

func (b BoxFilter) Weight(dx, dy float64) float64 {
	if math.Abs(dx) > b.R || math.Abs(dy) > b.R {
		return 0
	}
	return 1
}

// GaussianFilter is a truncated Gaussian with the tail value at the
// radius subtracted so the kernel falls to exactly zero at the edge.
type GaussianFilter struct {
	r, alpha, edge float64
}

func NewGaussianFilter(radius, alpha float64) GaussianFilter {
	return GaussianFilter{
		r:     radius,
		alpha: alpha,
		edge:  math.Exp(-alpha * radius * radius),
	}
}

func (g GaussianFilter) Radius() float64 { return g.r }

func (g GaussianFilter) Weight(dx, dy float64) float64 {
	return g.gauss1D(dx) * g.gauss1D(dy)
}

func (g GaussianFilter) gauss1D(d float64) float64 {
	return math.Max(0, math.Exp(-g.alpha*d*d)-g.edge)
}

// MitchellFilter is the Mitchell-Netravali cubic with the standard
// B = C = 1/3 parameterization.
type MitchellFilter struct {
	r, b, c float64
}

func NewMitchellFilter(radius float64) MitchellFilter {
	return MitchellFilter{r: radius, b: 1.0 / 3.0, c: 1.0 / 3.0}
}

func (m MitchellFilter) Radius() float64 { return m.r }

func (m MitchellFilter) Weight(dx, dy float64) float64 {
	return m.mitchell1D(dx*2/m.r) * m.mitchell1D(dy*2/m.r)
}

func (m MitchellFilter) mitchell1D(x float64) float64 {
	x = math.Abs(x)
	b, c := m.b, m.c
	switch {
	case x < 1:
		return ((12-9*b-6*c)*x*x*x + (-18+12*b+6*c)*x*x + (6 - 2*b)) / 6
	case x < 2:
		return ((-b-6*c)*x*x*x + (6*b+30*c)*x*x + (-12*b-48*c)*x + (8*b + 24*c)) / 6
	default:
		return 0
	}
}
