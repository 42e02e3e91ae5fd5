package scenegraph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yafaray-go/renderer/pkg/bsdf"
	"github.com/yafaray-go/renderer/pkg/core"
	"github.com/yafaray-go/renderer/pkg/light"
	"github.com/yafaray-go/renderer/pkg/primitive"
	"github.com/yafaray-go/renderer/pkg/render"
)

func TestPreprocess_FailsWithoutGeometry(t *testing.T) {
	s := NewScene(nil)
	s.AddLight(light.NewPoint(core.NewVec3(0, 5, 0), core.NewVec3(10, 10, 10)))
	err := s.Preprocess()
	require.Error(t, err)
	require.Equal(t, core.KindSceneBuildFailed, core.ErrorKind(err))
}

func TestPreprocess_FailsWithoutLights(t *testing.T) {
	s := NewScene(nil)
	s.AddPrimitive(primitive.NewSphere(core.NewVec3(0, 0, 0), 1, bsdf.NewLambert(core.NewVec3(0.5, 0.5, 0.5))))
	err := s.Preprocess()
	require.Error(t, err)
	require.Equal(t, core.KindSceneBuildFailed, core.ErrorKind(err))
}

func TestSceneIntersect_NearestHit(t *testing.T) {
	s := NewScene(nil)
	mat := bsdf.NewLambert(core.NewVec3(0.5, 0.5, 0.5))
	s.AddPrimitive(primitive.NewSphere(core.NewVec3(0, 0, -5), 1, mat))
	s.AddPrimitive(primitive.NewSphere(core.NewVec3(0, 0, -10), 1, mat))
	s.AddLight(light.NewPoint(core.NewVec3(0, 5, 0), core.NewVec3(10, 10, 10)))
	require.NoError(t, s.Preprocess())

	sp, tHit, ok := s.Intersect(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)))
	require.True(t, ok)
	require.InDelta(t, 4.0, tHit, 1e-9)
	require.NotNil(t, sp.Material)
}

// TestOccluded_NoSelfIntersection: a shadow ray
// leaving a surface must not be blocked by the spawning primitive, even
// for coplanar triangles sharing an edge.
func TestOccluded_NoSelfIntersection(t *testing.T) {
	s := NewScene(nil)
	mat := bsdf.NewLambert(core.NewVec3(0.7, 0.7, 0.7))
	t0 := primitive.NewTriangle(
		core.NewVec3(-1, 0, -1), core.NewVec3(1, 0, -1), core.NewVec3(1, 0, 1), mat)
	t1 := primitive.NewTriangle(
		core.NewVec3(-1, 0, -1), core.NewVec3(1, 0, 1), core.NewVec3(-1, 0, 1), mat)
	s.AddPrimitive(t0)
	s.AddPrimitive(t1)
	s.AddLight(light.NewPoint(core.NewVec3(0, 5, 0), core.NewVec3(50, 50, 50)))
	require.NoError(t, s.Preprocess())

	// From a point on t0, straight up toward the light: unshadowed.
	origin := core.NewVec3(0.5, 0, -0.25)
	shadowed, filter := s.Occluded(origin, core.NewVec3(0, 1, 0), 5, t0)
	require.False(t, shadowed)
	require.Equal(t, core.NewVec3(1, 1, 1), filter)
}

func TestOccluded_OpaqueBlocker(t *testing.T) {
	s := NewScene(nil)
	mat := bsdf.NewLambert(core.NewVec3(0.7, 0.7, 0.7))
	s.AddPrimitive(primitive.NewSphere(core.NewVec3(0, 2, 0), 0.5, mat))
	s.AddLight(light.NewPoint(core.NewVec3(0, 5, 0), core.NewVec3(50, 50, 50)))
	require.NoError(t, s.Preprocess())

	shadowed, _ := s.Occluded(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), 5, nil)
	require.True(t, shadowed)

	// A ray that misses the blocker is clear.
	clear, filter := s.Occluded(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), 5, nil)
	require.False(t, clear)
	require.Equal(t, core.NewVec3(1, 1, 1), filter)
}

// buildTestScene is a small lit scene for end-to-end render tests: a
// single sphere and a directional light with a flat white material
// over a fixed background.
func buildTestScene(t *testing.T, width, height int) *Scene {
	t.Helper()
	s := NewScene(nil)
	white := bsdf.NewLambert(core.NewVec3(1, 1, 1))
	s.AddPrimitive(primitive.NewSphere(core.NewVec3(0, 0, -5), 1, white))
	s.AddLight(light.NewDirectional(core.NewVec3(0, 0, -1), core.NewVec3(1, 1, 1)))
	s.SetBackground(core.NewVec3(0.1, 0.2, 0.3))
	s.AddCamera("main", render.NewPinhole(
		core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1), core.NewVec3(0, 1, 0),
		45, width, height, 0, 1))
	require.NoError(t, s.AddIntegrator(ParamMap{
		"width": width, "height": height,
		"AA_samples":   2,
		"raydepth":     3,
		"caustic_type": "none",
		"threads":      2,
	}))
	return s
}

// TestStartRender_LitSphereOverBackground: the sphere is lit, the
// corners show the exact background colour.
func TestStartRender_LitSphereOverBackground(t *testing.T) {
	s := buildTestScene(t, 32, 32)
	film, stats, err := s.StartRender(context.Background())
	require.NoError(t, err)
	require.False(t, stats.Cancelled)
	require.Zero(t, stats.NumericalFailures)

	centre := film.Pixel(16, 16).Colour()
	require.Greater(t, centre.Luminance(), 0.1, "centre of lit sphere should be bright")

	corner := film.Pixel(0, 0).Colour()
	require.InDelta(t, 0.1, corner.X, 1e-9)
	require.InDelta(t, 0.2, corner.Y, 1e-9)
	require.InDelta(t, 0.3, corner.Z, 1e-9)
}

// TestStartRender_Deterministic runs the determinism check end to
// end: identical scene + config => byte-identical pixel buffers.
func TestStartRender_Deterministic(t *testing.T) {
	renderOnce := func() *render.Film {
		s := buildTestScene(t, 24, 24)
		film, _, err := s.StartRender(context.Background())
		require.NoError(t, err)
		return film
	}
	a, b := renderOnce(), renderOnce()
	for y := 0; y < a.Height; y++ {
		for x := 0; x < a.Width; x++ {
			require.Equal(t, a.Pixel(x, y).Colour(), b.Pixel(x, y).Colour(), "pixel (%d,%d)", x, y)
		}
	}
}

func TestStartRender_WithoutIntegratorIsConfigInvalid(t *testing.T) {
	s := NewScene(nil)
	_, _, err := s.StartRender(context.Background())
	require.Error(t, err)
	require.Equal(t, core.KindConfigInvalid, core.ErrorKind(err))
}

func TestConstruction_MeshAndInstance(t *testing.T) {
	s := NewScene(nil)
	mat := bsdf.NewLambert(core.NewVec3(0.5, 0.5, 0.5))
	require.NoError(t, s.CreateObject("tri", ObjectMesh, mat))
	s.AddVertex(core.NewVec3(0, 0, 0))
	s.AddVertex(core.NewVec3(1, 0, 0))
	s.AddVertex(core.NewVec3(0, 1, 0))
	require.NoError(t, s.AddFace([3]int{0, 1, 2}, nil))
	require.NoError(t, s.EndObject())
	require.Len(t, s.Primitives(), 1)

	// Identity-translate instance duplicates the geometry offset in x.
	translate := [16]float64{
		1, 0, 0, 3,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
	require.NoError(t, s.AddInstance("tri", translate))
	require.Len(t, s.Primitives(), 2)

	s.AddLight(light.NewPoint(core.NewVec3(0, 5, 0), core.NewVec3(10, 10, 10)))
	require.NoError(t, s.Preprocess())

	// The instance is hit at its translated location.
	_, tHit, ok := s.Intersect(core.NewRay(core.NewVec3(3.2, 0.2, 5), core.NewVec3(0, 0, -1)))
	require.True(t, ok)
	require.InDelta(t, 5.0, tHit, 1e-9)
}

func TestConstruction_FaceIndexValidation(t *testing.T) {
	s := NewScene(nil)
	require.NoError(t, s.CreateObject("bad", ObjectMesh, nil))
	s.AddVertex(core.NewVec3(0, 0, 0))
	err := s.AddFace([3]int{0, 1, 2}, nil)
	require.Error(t, err)
	require.Equal(t, core.KindConfigInvalid, core.ErrorKind(err))
}

func TestSession_MutationInvalidatesPhotonMaps(t *testing.T) {
	s := NewScene(nil)
	session := s.Session()
	session.MarkPhotonMapsBuilt()
	require.True(t, session.PhotonMapsValid())

	s.AddPrimitive(primitive.NewSphere(core.NewVec3(0, 0, 0), 1, nil))
	require.False(t, session.PhotonMapsValid(), "scene mutation must invalidate cached photon maps")
}
