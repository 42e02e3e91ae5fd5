package bsdf

import "github.com/yafaray-go/renderer/pkg/core"

// Node is one shader-graph node: given a shading point it writes its
// result into the RenderState's flat NodeBuffer at NodeID and returns a
// colour/scalar convenience value. Materials hold Node references rather
// than evaluating textures inline, so a texture can be shared and
// evaluated once per shading point even if several material inputs read
// it.
type Node interface {
	NodeID() int
	Eval(state *core.RenderState, sp *core.SurfacePoint) core.NodeResult
	EvalColour(state *core.RenderState) core.Vec3
	EvalScalar(state *core.RenderState) float64
}

// ConstantNode always returns the same colour/scalar, used for literal
// material inputs that never needed a texture in the first place.
type ConstantNode struct {
	ID     int
	Colour core.Vec3
	Scalar float64
}

func (n *ConstantNode) NodeID() int { return n.ID }

func (n *ConstantNode) Eval(state *core.RenderState, sp *core.SurfacePoint) core.NodeResult {
	result := core.NodeResult{Colour: n.Colour, Scalar: n.Scalar}
	writeNode(state, n.ID, result)
	return result
}

func (n *ConstantNode) EvalColour(state *core.RenderState) core.Vec3 {
	if r, ok := readNode(state, n.ID); ok {
		return r.Colour
	}
	return n.Colour
}

func (n *ConstantNode) EvalScalar(state *core.RenderState) float64 {
	if r, ok := readNode(state, n.ID); ok {
		return r.Scalar
	}
	return n.Scalar
}

func writeNode(state *core.RenderState, id int, result core.NodeResult) {
	if state == nil {
		return
	}
	for len(state.NodeBuffer) <= id {
		state.NodeBuffer = append(state.NodeBuffer, core.NodeResult{})
	}
	state.NodeBuffer[id] = result
}

func readNode(state *core.RenderState, id int) (core.NodeResult, bool) {
	if state == nil || id >= len(state.NodeBuffer) {
		return core.NodeResult{}, false
	}
	return state.NodeBuffer[id], true
}

// MixNode linearly blends two inputs by a scalar factor node.
type MixNode struct {
	ID     int
	A, B   Node
	Factor Node
}

func (n *MixNode) NodeID() int { return n.ID }

func (n *MixNode) Eval(state *core.RenderState, sp *core.SurfacePoint) core.NodeResult {
	a := n.A.Eval(state, sp)
	b := n.B.Eval(state, sp)
	f := n.Factor.Eval(state, sp).Scalar
	result := core.NodeResult{
		Colour: a.Colour.Multiply(1 - f).Add(b.Colour.Multiply(f)),
		Scalar: a.Scalar*(1-f) + b.Scalar*f,
	}
	writeNode(state, n.ID, result)
	return result
}

func (n *MixNode) EvalColour(state *core.RenderState) core.Vec3 {
	if r, ok := readNode(state, n.ID); ok {
		return r.Colour
	}
	return core.Vec3{}
}

func (n *MixNode) EvalScalar(state *core.RenderState) float64 {
	if r, ok := readNode(state, n.ID); ok {
		return r.Scalar
	}
	return 0
}
