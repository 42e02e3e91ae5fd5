// Package scenegraph owns the scene: primitives, materials, lights,
// volume regions, the built accelerator and the render session. It
// exposes the scene-construction API and implements the read-only
// Scene view the integrators and driver borrow.
package scenegraph

import (
	"math"

	"github.com/yafaray-go/renderer/pkg/accel"
	"github.com/yafaray-go/renderer/pkg/bsdf"
	"github.com/yafaray-go/renderer/pkg/core"
	"github.com/yafaray-go/renderer/pkg/light"
	"github.com/yafaray-go/renderer/pkg/render"
	"github.com/yafaray-go/renderer/pkg/volume"
)

// Scene is the container for everything a render reads. All mutation
// happens through the construction API before Preprocess; afterwards
// workers borrow it immutably.
type Scene struct {
	prims   []core.Primitive
	lights  []core.Light
	regions []volume.Region

	materials map[string]core.Material
	textures  map[string]bsdf.Node
	objects   map[string]*meshObject
	cameras   map[string]core.Camera

	background      core.Vec3
	backgroundLight core.Light // IBL; its Emit(ray) supersedes the flat colour

	tree    *accel.KDTree
	session *render.Session
	logger  core.Logger

	// Spawn epsilons and transparent-shadow limits. ShadowDepth bounds
	// only the transparent-shadow chain; raydepth bounds every other
	// bounce.
	ShadowBias         float64
	RayMinDist         float64
	TransparentShadows bool
	ShadowDepth        int

	// current object being built by the construction API
	building *meshObject

	// render-job state set by AddIntegrator/SetOutputCallbacks
	job jobState

	preprocessed bool
}

func NewScene(logger core.Logger) *Scene {
	if logger == nil {
		logger = core.NewNopLogger()
	}
	return &Scene{
		materials:   map[string]core.Material{},
		textures:    map[string]bsdf.Node{},
		objects:     map[string]*meshObject{},
		cameras:     map[string]core.Camera{},
		session:     render.NewSession(),
		logger:      logger,
		ShadowBias:  1e-4,
		RayMinDist:  1e-5,
		ShadowDepth: 4,
	}
}

func (s *Scene) Session() *render.Session  { return s.session }
func (s *Scene) Lights() []core.Light      { return s.lights }
func (s *Scene) Regions() []volume.Region  { return s.regions }
func (s *Scene) Primitives() []core.Primitive { return s.prims }

// Accelerator exposes the built k-d tree (nil before Preprocess); it
// satisfies the photon-shooting Intersector contract directly.
func (s *Scene) Accelerator() *accel.KDTree { return s.tree }

// mutate records a scene mutation and invalidates the accelerator so a
// later render rebuilds it (and, via the session, any cached photon
// maps).
func (s *Scene) mutate() {
	s.session.MarkMutation()
	s.preprocessed = false
}

// Preprocess validates and freezes the scene: no geometry or no lights
// is a SceneBuildFailed error (StartRender makes the missing-camera
// check); otherwise the accelerator is built and infinite lights learn
// the world bounds.
func (s *Scene) Preprocess() error {
	if len(s.prims) == 0 {
		return core.NewError(core.KindSceneBuildFailed, nil, "scene has no geometry")
	}
	if len(s.lights) == 0 && s.backgroundLight == nil {
		return core.NewError(core.KindSceneBuildFailed, nil, "scene has no lights")
	}
	s.tree = accel.New(s.prims)
	bounds := s.tree.Bounds()
	radius := bounds.Size().Length() / 2

	for _, l := range s.lights {
		switch tl := l.(type) {
		case *light.IBL:
			tl.WorldCenter = bounds.Center()
			tl.WorldRadius = radius
		case *light.Directional:
			tl.WorldRadius = radius
		}
	}
	if ibl, ok := s.backgroundLight.(*light.IBL); ok {
		ibl.WorldCenter = bounds.Center()
		ibl.WorldRadius = radius
	}

	// Scale the spawn epsilons with the scene so they stay conservative
	// for large and small worlds alike.
	if radius > 0 {
		s.ShadowBias = math.Max(s.ShadowBias, radius*1e-6)
		s.RayMinDist = math.Max(s.RayMinDist, radius*1e-7)
	}

	stats := s.tree.Stats()
	s.logger.Infow("scene preprocessed",
		"primitives", len(s.prims), "lights", len(s.lights),
		"kd_nodes", stats.Nodes, "kd_leaves", stats.Leaves,
		"kd_max_depth", stats.MaxDepthReached)
	s.preprocessed = true
	return nil
}

// Intersect is the nearest-hit scene query, resolving the
// raw accelerator hit into a full SurfacePoint.
func (s *Scene) Intersect(ray core.Ray) (core.SurfacePoint, float64, bool) {
	if s.tree == nil {
		return core.SurfacePoint{}, 0, false
	}
	tMin := math.Max(ray.TMin, s.RayMinDist)
	hit, ok := s.tree.Intersect(ray, tMin, ray.TMax)
	if !ok {
		return core.SurfacePoint{}, 0, false
	}
	sp := hit.PrimitiveRef.GetSurfacePoint(ray, hit)
	return sp, hit.T, true
}

// Occluded is the any-hit/transparent-shadow query: it
// walks potential occluders front to back, multiplying transparent
// filter colours until an opaque surface is found or the chain exceeds
// ShadowDepth. exclude suppresses self-intersection with the spawning
// primitive by reference comparison.
func (s *Scene) Occluded(origin, dir core.Vec3, dist float64, exclude core.Primitive) (bool, core.Vec3) {
	filter := core.NewVec3(1, 1, 1)
	if s.tree == nil {
		return false, filter
	}
	ray := core.Ray{Origin: origin, Direction: dir, TMin: s.ShadowBias, TMax: dist}
	tMax := dist - s.ShadowBias
	if tMax <= ray.TMin {
		return false, filter
	}
	chain := 0
	_, blocked := s.tree.AnyHit(ray, ray.TMin, tMax, func(hit core.IntersectData) bool {
		if exclude != nil && hit.PrimitiveRef == exclude {
			return false
		}
		sp := hit.PrimitiveRef.GetSurfacePoint(ray, hit)
		if sp.Material == nil {
			return true
		}
		if s.TransparentShadows && sp.Material.IsTransparent() && chain < s.ShadowDepth {
			chain++
			filter = filter.MultiplyVec(sp.Material.GetTransparency(nil, &sp, dir.Negate()))
			return false
		}
		return true
	})
	if blocked {
		return true, core.Vec3{}
	}
	return false, filter
}

// Background returns the escaped-ray radiance: the background light's
// emission when set, else the flat background colour.
func (s *Scene) Background(ray core.Ray) core.Vec3 {
	if s.backgroundLight != nil {
		return s.backgroundLight.Emit(ray)
	}
	return s.background
}

// Bounds is the world bound of all geometry; zero before Preprocess.
func (s *Scene) Bounds() core.AABB {
	if s.tree == nil {
		return core.AABB{}
	}
	return s.tree.Bounds()
}
