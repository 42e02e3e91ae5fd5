// Package accel builds and traverses the spatial acceleration structure
// every primitive lookup goes through: a SAH-split k-d
// tree whose builder cuts each straddling primitive's bounding box at the
// split plane, a fixed-depth traversal stack for nearest-hit queries, and
// a separate any-hit walk for transparent shadow rays.
package accel

import (
	"github.com/yafaray-go/renderer/pkg/core"
	"golang.org/x/exp/slices"
)

// Primitive is the subset of core.Primitive the tree needs at build time,
// aliased here so callers can pass either core.Primitive values directly.
type Primitive = core.Primitive

const (
	leafThreshold = 4   // stop splitting once a node holds this few primitives
	maxDepth      = 48  // hard recursion cap, mirrors a fixed traversal stack size
	traversalCost = 0.3 // SAH constants (Havran-style defaults)
	intersectCost = 1.0
	emptyBonus    = 0.2
)

// KDNode is one node of the tree: leaves carry a primitive index slice,
// internal nodes carry a split axis/position and two children.
type KDNode struct {
	Bounds   core.AABB
	Axis     int // -1 for a leaf
	SplitPos float64
	Left     *KDNode
	Right    *KDNode
	Prims    []int // indices into Tree.prims, non-nil only for leaves
}

// KDTree is the top-level accelerator: an immutable snapshot over a set of
// primitives built once per scene-graph finalize.
type KDTree struct {
	root  *KDNode
	prims []Primitive
	stats Stats
}

// Stats summarises the built tree, exposed for diagnostics/logging (spec
// supplement 4.1a).
type Stats struct {
	Nodes, Leaves, MaxDepthReached, TotalPrimRefs int
}

type edge struct {
	pos    float64
	starts bool
	prim   int
}

// New builds a k-d tree over prims using the surface-area heuristic. An
// empty slice yields a tree that never reports a hit.
func New(prims []Primitive) *KDTree {
	t := &KDTree{prims: prims}
	if len(prims) == 0 {
		return t
	}
	bounds := prims[0].Bounds()
	clipped := make([]core.AABB, len(prims))
	indices := make([]int, len(prims))
	for i, p := range prims {
		b := p.Bounds()
		clipped[i] = b
		indices[i] = i
		if i > 0 {
			bounds = bounds.Union(b)
		}
	}
	t.root = t.build(indices, clipped, bounds, 0)
	t.collectStats(t.root, 0)
	return t
}

// Stats returns the statistics collected at build time.
func (t *KDTree) Stats() Stats { return t.stats }

// Bounds is the world bound of every primitive in the tree.
func (t *KDTree) Bounds() core.AABB {
	if t.root == nil {
		return core.AABB{}
	}
	return t.root.Bounds
}

func (t *KDTree) build(indices []int, boxes []core.AABB, bounds core.AABB, depth int) *KDNode {
	if len(indices) <= leafThreshold || depth >= maxDepth {
		return &KDNode{Bounds: bounds, Axis: -1, Prims: append([]int(nil), indices...)}
	}

	axis, pos, found := findSAHSplit(indices, boxes, bounds)
	if !found {
		return &KDNode{Bounds: bounds, Axis: -1, Prims: append([]int(nil), indices...)}
	}

	var leftIdx, rightIdx []int
	var leftBoxes, rightBoxes []core.AABB
	for k, i := range indices {
		lo, hi := boxes[k].Axis(axis)
		// A box that only touches the plane goes to the side it lies on;
		// a flat box lying in the plane goes left.
		if lo < pos || hi <= pos {
			leftIdx = append(leftIdx, i)
			leftBoxes = append(leftBoxes, boxes[k].Clip(axis, pos, true))
		}
		if hi > pos {
			rightIdx = append(rightIdx, i)
			rightBoxes = append(rightBoxes, boxes[k].Clip(axis, pos, false))
		}
	}
	if len(leftIdx) == 0 || len(rightIdx) == 0 || len(leftIdx) == len(indices) && len(rightIdx) == len(indices) {
		return &KDNode{Bounds: bounds, Axis: -1, Prims: append([]int(nil), indices...)}
	}

	leftBounds := bounds.Clip(axis, pos, true)
	rightBounds := bounds.Clip(axis, pos, false)

	return &KDNode{
		Bounds:   bounds,
		Axis:     axis,
		SplitPos: pos,
		Left:     t.build(leftIdx, leftBoxes, leftBounds, depth+1),
		Right:    t.build(rightIdx, rightBoxes, rightBounds, depth+1),
	}
}

// findSAHSplit evaluates the perfect-split-plane sweep (Wald/Havran) on
// each axis and returns the lowest-cost plane found, if splitting is
// actually cheaper than making a leaf.
func findSAHSplit(indices []int, boxes []core.AABB, bounds core.AABB) (axis int, pos float64, ok bool) {
	n := len(indices)
	invSA := 1.0 / bounds.SurfaceArea()
	bestCost := intersectCost * float64(n)
	bestAxis := -1
	var bestPos float64

	for a := 0; a < 3; a++ {
		lo, hi := bounds.Axis(a)
		if hi <= lo {
			continue
		}
		edges := make([]edge, 0, 2*n)
		for k := range indices {
			elo, ehi := boxes[k].Axis(a)
			edges = append(edges, edge{pos: elo, starts: true, prim: indices[k]})
			edges = append(edges, edge{pos: ehi, starts: false, prim: indices[k]})
		}
		slices.SortFunc(edges, func(a, b edge) int {
			switch {
			case a.pos < b.pos:
				return -1
			case a.pos > b.pos:
				return 1
			case a.starts && !b.starts:
				return -1
			case !a.starts && b.starts:
				return 1
			default:
				return 0
			}
		})

		nLeft, nRight := 0, n
		for i := 0; i < len(edges); {
			pos := edges[i].pos
			startsHere, endsHere := 0, 0
			for i < len(edges) && edges[i].pos == pos {
				if edges[i].starts {
					startsHere++
				} else {
					endsHere++
				}
				i++
			}
			nRight -= endsHere
			if pos > lo && pos < hi {
				leftBounds := bounds.Clip(a, pos, true)
				rightBounds := bounds.Clip(a, pos, false)
				cost := sahCost(leftBounds.SurfaceArea()*invSA, rightBounds.SurfaceArea()*invSA, nLeft, nRight)
				if cost < bestCost {
					bestCost = cost
					bestAxis = a
					bestPos = pos
				}
			}
			nLeft += startsHere
		}
	}
	if bestAxis == -1 {
		return 0, 0, false
	}
	return bestAxis, bestPos, true
}

func sahCost(pLeft, pRight float64, nLeft, nRight int) float64 {
	bonus := 1.0
	if nLeft == 0 || nRight == 0 {
		bonus = 1 - emptyBonus
	}
	return bonus * (traversalCost + intersectCost*(pLeft*float64(nLeft)+pRight*float64(nRight)))
}

func (t *KDTree) collectStats(n *KDNode, depth int) {
	if n == nil {
		return
	}
	t.stats.Nodes++
	if depth > t.stats.MaxDepthReached {
		t.stats.MaxDepthReached = depth
	}
	if n.Axis == -1 {
		t.stats.Leaves++
		t.stats.TotalPrimRefs += len(n.Prims)
		return
	}
	t.collectStats(n.Left, depth+1)
	t.collectStats(n.Right, depth+1)
}

// stackItem is one entry of the fixed-depth traversal stack.
type stackItem struct {
	node       *KDNode
	tMin, tMax float64
}

// Intersect returns the closest hit along ray in [tMin, tMax], walking the
// tree iteratively with a fixed-size stack.
func (t *KDTree) Intersect(ray core.Ray, tMin, tMax float64) (core.IntersectData, bool) {
	if t.root == nil {
		return core.IntersectData{}, false
	}
	rootMin, rootMax, ok := t.root.Bounds.Hit(ray, tMin, tMax)
	if !ok {
		return core.IntersectData{}, false
	}

	var stack [maxDepth + 1]stackItem
	sp := 0
	stack[sp] = stackItem{t.root, rootMin, rootMax}
	sp++

	var best core.IntersectData
	found := false
	closest := tMax

	for sp > 0 {
		sp--
		item := stack[sp]
		node := item.node
		if closest < item.tMin {
			continue
		}
		if node.Axis == -1 {
			for _, idx := range node.Prims {
				if hit, ok := t.prims[idx].Intersect(ray, tMin, closest); ok {
					if hit.T < closest {
						closest = hit.T
						best = hit
						found = true
					}
				}
			}
			continue
		}

		origin, dir := axisComponent(ray.Origin, node.Axis), axisComponent(ray.Direction, node.Axis)
		var near, far *KDNode
		if origin < node.SplitPos || (origin == node.SplitPos && dir <= 0) {
			near, far = node.Left, node.Right
		} else {
			near, far = node.Right, node.Left
		}

		if dir == 0 {
			stack[sp] = stackItem{near, item.tMin, item.tMax}
			sp++
			continue
		}
		tSplit := (node.SplitPos - origin) / dir
		switch {
		case tSplit > item.tMax || tSplit < 0:
			stack[sp] = stackItem{near, item.tMin, item.tMax}
			sp++
		case tSplit < item.tMin:
			stack[sp] = stackItem{far, item.tMin, item.tMax}
			sp++
		default:
			stack[sp] = stackItem{far, tSplit, item.tMax}
			sp++
			stack[sp] = stackItem{near, item.tMin, tSplit}
			sp++
		}
	}
	return best, found
}

// AnyHit returns the nearest hit in [tMin, tMax] that isOpaque accepts.
// It first collects every primitive hit along the ray, sorts them by
// distance and then tests them in order, so the whole segment is always
// traversed, even when the nearest hit is opaque; hits that isOpaque
// rejects are passed over.
func (t *KDTree) AnyHit(ray core.Ray, tMin, tMax float64, isOpaque func(core.IntersectData) bool) (core.IntersectData, bool) {
	if t.root == nil {
		return core.IntersectData{}, false
	}
	candidates := t.collectAlongRay(ray, tMin, tMax)
	slices.SortFunc(candidates, func(a, b core.IntersectData) int {
		switch {
		case a.T < b.T:
			return -1
		case a.T > b.T:
			return 1
		default:
			return 0
		}
	})
	for _, c := range candidates {
		if isOpaque(c) {
			return c, true
		}
	}
	return core.IntersectData{}, false
}

// collectAlongRay gathers every primitive hit in [tMin,tMax] without
// early termination, used by AnyHit's transparent-shadow walk.
func (t *KDTree) collectAlongRay(ray core.Ray, tMin, tMax float64) []core.IntersectData {
	var out []core.IntersectData
	var walk func(n *KDNode)
	walk = func(n *KDNode) {
		if n == nil {
			return
		}
		if _, _, ok := n.Bounds.Hit(ray, tMin, tMax); !ok {
			return
		}
		if n.Axis == -1 {
			for _, idx := range n.Prims {
				if hit, ok := t.prims[idx].Intersect(ray, tMin, tMax); ok {
					out = append(out, hit)
				}
			}
			return
		}
		walk(n.Left)
		walk(n.Right)
	}
	walk(t.root)
	return out
}

func axisComponent(v core.Vec3, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}
