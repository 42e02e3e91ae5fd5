package photon

import (
	"sort"

	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/yafaray-go/renderer/pkg/core"
)

// comparablePhoton adapts a Photon (by index into Map.photons) to
// gonum's kdtree.Comparable, so the tree is gonum's default builder
// rather than a hand-rolled one. That builder cycles the split axis with
// depth (x, y, z, x, ...); it does not pick the axis of largest extent.
type comparablePhoton struct {
	pos core.Vec3
	idx int
}

func axisOf(v core.Vec3, d kdtree.Dim) float64 {
	switch d {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func (p comparablePhoton) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(comparablePhoton)
	return axisOf(p.pos, d) - axisOf(q.pos, d)
}

func (p comparablePhoton) Dims() int { return 3 }

func (p comparablePhoton) Distance(c kdtree.Comparable) float64 {
	q := c.(comparablePhoton)
	return p.pos.Subtract(q.pos).LengthSquared()
}

// photonSlice implements kdtree.Interface over a slice of
// comparablePhoton, with Pivot delegating to kdtree.Partition over a
// per-axis sort view (axisView below) -- the same median-of-medians
// selection gonum's own built-in Points type uses internally.
type photonSlice []comparablePhoton

func (s photonSlice) Index(i int) kdtree.Comparable { return s[i] }
func (s photonSlice) Len() int                      { return len(s) }
func (s photonSlice) Slice(start, end int) kdtree.Interface {
	return s[start:end]
}
func (s photonSlice) Pivot(d kdtree.Dim) int {
	v := axisView{s: s, dim: d}
	return kdtree.Partition(v, kdtree.MedianOfMedians(v))
}

// axisView sorts a photonSlice along one axis, satisfying
// kdtree.SortSlicer for kdtree.Partition's median-of-medians selection.
type axisView struct {
	s   photonSlice
	dim kdtree.Dim
}

func (v axisView) Len() int { return len(v.s) }
func (v axisView) Less(i, j int) bool {
	return axisOf(v.s[i].pos, v.dim) < axisOf(v.s[j].pos, v.dim)
}
func (v axisView) Swap(i, j int) { v.s[i], v.s[j] = v.s[j], v.s[i] }
func (v axisView) Slice(start, end int) kdtree.SortSlicer {
	return axisView{s: v.s[start:end], dim: v.dim}
}

var _ sort.Interface = axisView{}

// Map is a balanced k-d photon map: the flat photon array plus the gonum
// tree indexing it, built once after shooting completes. It is
// immutable after NewMap returns.
type Map struct {
	photons []Photon
	tree    *kdtree.Tree
}

// NewMap shoots no photons itself; it indexes an already-accumulated
// photon slice (typically concatenated from per-worker chunks) into
// the balanced tree.
func NewMap(photons []Photon) *Map {
	m := &Map{photons: photons}
	if len(photons) == 0 {
		return m
	}
	items := make(photonSlice, len(photons))
	for i, p := range photons {
		items[i] = comparablePhoton{pos: p.Position, idx: i}
	}
	m.tree = kdtree.New(items, false)
	return m
}

// Len returns the number of stored photons.
func (m *Map) Len() int { return len(m.photons) }

// GatherResult is the outcome of a k-NN photon query: the photons
// found, in no particular order, and the squared
// distance actually achieved to the farthest one (used as r² for the
// radiance estimate).
type GatherResult struct {
	Photons  []Photon
	MaxDistSq float64
}

// Gather returns up to k nearest photons within radius sqrt(maxDistSq) of
// position, using gonum's bounded max-heap keeper.
func (m *Map) Gather(position core.Vec3, k int, maxDistSq float64) GatherResult {
	if m.tree == nil || k <= 0 {
		return GatherResult{}
	}
	query := comparablePhoton{pos: position, idx: -1}
	keeper := kdtree.NewNKeeper(k)
	m.tree.NearestSet(keeper, query)

	out := make([]Photon, 0, k)
	maxSq := 0.0
	for _, cd := range keeper.Heap {
		cp, ok := cd.Comparable.(comparablePhoton)
		if !ok {
			continue
		}
		if cd.Dist > maxDistSq {
			continue
		}
		out = append(out, m.photons[cp.idx])
		if cd.Dist > maxSq {
			maxSq = cd.Dist
		}
	}
	return GatherResult{Photons: out, MaxDistSq: maxSq}
}

// GatherRadius returns every photon within radius r of position, the
// radius-only query variant.
func (m *Map) GatherRadius(position core.Vec3, r float64) []Photon {
	if m.tree == nil || r <= 0 {
		return nil
	}
	query := comparablePhoton{pos: position, idx: -1}
	keeper := kdtree.NewDistKeeper(r * r)
	m.tree.NearestSet(keeper, query)

	out := make([]Photon, 0, len(keeper.Heap))
	for _, cd := range keeper.Heap {
		cp, ok := cd.Comparable.(comparablePhoton)
		if !ok || cp.idx < 0 {
			continue
		}
		out = append(out, m.photons[cp.idx])
	}
	return out
}
