package bsdf

import "github.com/yafaray-go/renderer/pkg/core"

// CheckerboardNode, GradientNode and UVDebugNode are procedural texture
// nodes evaluated analytically rather than from decoded pixels; they
// need no backing image at all.
type CheckerboardNode struct {
	ID                   int
	Colour1, Colour2     core.Vec3
	ChecksU, ChecksV     float64
}

func (n *CheckerboardNode) NodeID() int { return n.ID }

func (n *CheckerboardNode) Eval(state *core.RenderState, sp *core.SurfacePoint) core.NodeResult {
	cu := int(sp.U * n.ChecksU)
	cv := int(sp.V * n.ChecksV)
	colour := n.Colour1
	if (cu+cv)%2 != 0 {
		colour = n.Colour2
	}
	result := core.NodeResult{Colour: colour, Scalar: colour.Luminance()}
	writeNode(state, n.ID, result)
	return result
}

func (n *CheckerboardNode) EvalColour(state *core.RenderState) core.Vec3 {
	if r, ok := readNode(state, n.ID); ok {
		return r.Colour
	}
	return n.Colour1
}

func (n *CheckerboardNode) EvalScalar(state *core.RenderState) float64 {
	if r, ok := readNode(state, n.ID); ok {
		return r.Scalar
	}
	return n.Colour1.Luminance()
}

// GradientNode interpolates linearly between two colours along V.
type GradientNode struct {
	ID             int
	Top, Bottom    core.Vec3
}

func (n *GradientNode) NodeID() int { return n.ID }

func (n *GradientNode) Eval(state *core.RenderState, sp *core.SurfacePoint) core.NodeResult {
	colour := n.Top.Multiply(sp.V).Add(n.Bottom.Multiply(1 - sp.V))
	result := core.NodeResult{Colour: colour, Scalar: colour.Luminance()}
	writeNode(state, n.ID, result)
	return result
}

func (n *GradientNode) EvalColour(state *core.RenderState) core.Vec3 {
	if r, ok := readNode(state, n.ID); ok {
		return r.Colour
	}
	return n.Top
}

func (n *GradientNode) EvalScalar(state *core.RenderState) float64 {
	if r, ok := readNode(state, n.ID); ok {
		return r.Scalar
	}
	return n.Top.Luminance()
}

// UVDebugNode maps (U,V) directly to (R,G), useful for verifying
// parametrization on new primitives without any asset dependency.
type UVDebugNode struct{ ID int }

func (n *UVDebugNode) NodeID() int { return n.ID }

func (n *UVDebugNode) Eval(state *core.RenderState, sp *core.SurfacePoint) core.NodeResult {
	colour := core.NewVec3(sp.U, sp.V, 0)
	result := core.NodeResult{Colour: colour, Scalar: colour.Luminance()}
	writeNode(state, n.ID, result)
	return result
}

func (n *UVDebugNode) EvalColour(state *core.RenderState) core.Vec3 {
	if r, ok := readNode(state, n.ID); ok {
		return r.Colour
	}
	return core.Vec3{}
}

func (n *UVDebugNode) EvalScalar(state *core.RenderState) float64 {
	if r, ok := readNode(state, n.ID); ok {
		return r.Scalar
	}
	return 0
}
