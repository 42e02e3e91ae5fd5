package volume

import (
	"math"

	"github.com/yafaray-go/renderer/pkg/core"
)

// Sky is an atmospheric scattering medium combining an exponential-falloff
// Rayleigh term (wavelength^-4, responsible for blue skylight) and a Mie
// term (wavelength-independent, responsible for haze/aerosol forward
// scattering), both decaying with altitude above a planet radius.
// Every coefficient comes from NewSky's caller; the type has no built-in
// defaults.
type Sky struct {
	bounds         core.AABB
	planetCenter   core.Vec3
	planetRadius   float64
	rayleighHeight float64
	mieHeight      float64
	rayleighCoeff  core.Vec3 // sigma_s at sea level, per-wavelength
	mieCoeff       float64   // sigma_s at sea level, scalar
	mieAbsorption  float64
	g              float64 // Mie asymmetry; Rayleigh is isotropic (g=0) analytically
	grid           *attenuationGrid
}

func NewSky(bounds core.AABB, planetCenter core.Vec3, planetRadius, rayleighHeight, mieHeight float64, rayleighCoeff core.Vec3, mieCoeff, mieAbsorption, g float64, attenGridRes [3]int) *Sky {
	s := &Sky{
		bounds: bounds, planetCenter: planetCenter, planetRadius: planetRadius,
		rayleighHeight: rayleighHeight, mieHeight: mieHeight,
		rayleighCoeff: rayleighCoeff, mieCoeff: mieCoeff, mieAbsorption: mieAbsorption, g: g,
	}
	s.grid = newAttenuationGrid(s, bounds, attenGridRes)
	return s
}

func (s *Sky) altitude(p core.Vec3) float64 {
	return p.Subtract(s.planetCenter).Length() - s.planetRadius
}

func (s *Sky) rayleighDensity(p core.Vec3) float64 {
	h := math.Max(0, s.altitude(p))
	return math.Exp(-h / s.rayleighHeight)
}

func (s *Sky) mieDensity(p core.Vec3) float64 {
	h := math.Max(0, s.altitude(p))
	return math.Exp(-h / s.mieHeight)
}

func (s *Sky) Bounds() core.AABB { return s.bounds }

func (s *Sky) Intersect(ray core.Ray) (float64, float64, bool) {
	return s.bounds.Hit(ray, ray.TMin, ray.TMax)
}

func (s *Sky) SigmaA(p core.Vec3) core.Vec3 {
	return core.NewVec3(s.mieAbsorption, s.mieAbsorption, s.mieAbsorption).Multiply(s.mieDensity(p))
}

func (s *Sky) SigmaS(p core.Vec3) core.Vec3 {
	rayleigh := s.rayleighCoeff.Multiply(s.rayleighDensity(p))
	mie := core.NewVec3(s.mieCoeff, s.mieCoeff, s.mieCoeff).Multiply(s.mieDensity(p))
	return rayleigh.Add(mie)
}

func (s *Sky) Emission(core.Vec3) core.Vec3 { return core.Vec3{} }

// Asymmetry reports the Mie asymmetry parameter; Rayleigh scattering's
// own (1+cos^2) phase is handled separately by RayleighPhase since it
// cannot be folded into a single Henyey-Greenstein g.
func (s *Sky) Asymmetry() float64 { return s.g }

// RayleighPhase evaluates the exact Rayleigh phase function
// (3/16pi)(1+cos^2(theta)), used by the single-scatter integrator to
// weight the Rayleigh fraction of a sky region's scattering separately
// from its Mie (Henyey-Greenstein) fraction.
func RayleighPhase(cosTheta float64) float64 {
	return (3.0 / (16.0 * math.Pi)) * (1 + cosTheta*cosTheta)
}

// RayleighFraction returns the proportion of total scattering at p
// attributable to Rayleigh (vs. Mie), used to blend RayleighPhase and
// Henyey-Greenstein contributions in single-scatter integration.
func (s *Sky) RayleighFraction(p core.Vec3) float64 {
	r := s.rayleighCoeff.Multiply(s.rayleighDensity(p)).Luminance()
	m := s.mieCoeff * s.mieDensity(p)
	total := r + m
	if total <= 0 {
		return 0
	}
	return r / total
}
