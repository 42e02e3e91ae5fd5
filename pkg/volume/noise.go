package volume

import "github.com/yafaray-go/renderer/pkg/core"

// NoiseFunc samples a scalar procedural noise field at a world point,
// injected from outside this package. Procedural noise-texture
// generation is out of scope for the rendering core; Noise
// only consumes whatever function the external front-end supplies,
// matching that collaborator boundary.
type NoiseFunc func(p core.Vec3) float64

// Noise is a medium whose density comes from an injected procedural
// noise function instead of a stored field, e.g. for smoke/cloud volumes
// authored as a shader graph.
type Noise struct {
	bounds     core.AABB
	noise      NoiseFunc
	scale      core.Vec3 // world-to-noise-space scale per axis
	baseSigmaA core.Vec3
	baseSigmaS core.Vec3
	emission   core.Vec3
	asymmetry  float64
	grid       *attenuationGrid
}

func NewNoise(bounds core.AABB, noise NoiseFunc, scale, baseSigmaA, baseSigmaS, emission core.Vec3, g float64, attenGridRes [3]int) *Noise {
	n := &Noise{
		bounds: bounds, noise: noise, scale: scale,
		baseSigmaA: baseSigmaA, baseSigmaS: baseSigmaS, emission: emission, asymmetry: g,
	}
	n.grid = newAttenuationGrid(n, bounds, attenGridRes)
	return n
}

func (n *Noise) densityAt(p core.Vec3) float64 {
	if n.noise == nil {
		return 0
	}
	np := p.MultiplyVec(n.scale)
	d := n.noise(np)
	if d < 0 {
		d = 0
	}
	return d
}

func (n *Noise) Bounds() core.AABB { return n.bounds }

func (n *Noise) Intersect(ray core.Ray) (float64, float64, bool) {
	return n.bounds.Hit(ray, ray.TMin, ray.TMax)
}

func (n *Noise) SigmaA(p core.Vec3) core.Vec3   { return n.baseSigmaA.Multiply(n.densityAt(p)) }
func (n *Noise) SigmaS(p core.Vec3) core.Vec3   { return n.baseSigmaS.Multiply(n.densityAt(p)) }
func (n *Noise) Emission(p core.Vec3) core.Vec3 { return n.emission.Multiply(n.densityAt(p)) }
func (n *Noise) Asymmetry() float64             { return n.asymmetry }
