package scenegraph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yafaray-go/renderer/pkg/core"
	"github.com/yafaray-go/renderer/pkg/integrator"
)

func TestParamMap_Defaults(t *testing.T) {
	s, err := ParamMap{}.Settings()
	require.NoError(t, err)
	require.Equal(t, "pathtracing", s.IntegratorKind)
	require.Equal(t, 5, s.RayDepth)
	require.Equal(t, 100, s.Search)
	require.Equal(t, integrator.CausticPath, s.CausticType)
}

func TestParamMap_KnownKeys(t *testing.T) {
	pm := ParamMap{
		"AA_passes":            3,
		"AA_samples":           8,
		"AA_inc_samples":       4,
		"AA_threshold":         0.02,
		"AA_tile_size":         64,
		"AA_tile_order":        "centre",
		"filter_type":          "mitchell",
		"filter_size":          2.0,
		"shadow_bias":          1e-3,
		"ray_min_dist":         1e-4,
		"transparent_shadows":  true,
		"shadow_depth":         6,
		"raydepth":             8,
		"russian_roulette_min_bounces": 4,
		"caustic_type":         "both",
		"photons":              50000,
		"caustic_photons":      20000,
		"diffuse_photons":      30000,
		"search":               50,
		"caustic_mix":          80,
		"photon_radius":        0.5,
		"final_gather":         true,
		"fg_samples":           32,
		"fg_bounces":           2,
		"threads":              4,
		"integrator":           "photonmapping",
	}
	s, err := pm.Settings()
	require.NoError(t, err)
	require.Equal(t, 3, s.AAPasses)
	require.Equal(t, 8, s.AASamples)
	require.True(t, s.TransparentShadows)
	require.Equal(t, integrator.CausticBoth, s.CausticType)
	require.Equal(t, 20000, s.CausticPhotons)
	require.Equal(t, "photonmapping", s.IntegratorKind)
}

func TestParamMap_UnknownKeyIsConfigInvalid(t *testing.T) {
	_, err := ParamMap{"AA_pases": 3}.Settings()
	require.Error(t, err)
	require.Equal(t, core.KindConfigInvalid, core.ErrorKind(err))
}

func TestParamMap_WrongTypeIsConfigInvalid(t *testing.T) {
	_, err := ParamMap{"AA_passes": "three"}.Settings()
	require.Error(t, err)
	require.Equal(t, core.KindConfigInvalid, core.ErrorKind(err))
}

func TestParamMap_ContradictoryCausticConfig(t *testing.T) {
	_, err := ParamMap{
		"caustic_type":    "photon",
		"photons":         0,
		"caustic_photons": 0,
	}.Settings()
	require.Error(t, err)
	require.Equal(t, core.KindConfigInvalid, core.ErrorKind(err))
}

func TestParamMap_PhotonBudgetFallback(t *testing.T) {
	s, err := ParamMap{"photons": 12345}.Settings()
	require.NoError(t, err)
	require.Equal(t, 12345, s.CausticPhotons)
	require.Equal(t, 12345, s.DiffusePhotons)
}

func TestParamMap_TOMLIntegers(t *testing.T) {
	// BurntSushi/toml decodes integers as int64; the map must accept
	// them transparently.
	s, err := ParamMap{"AA_samples": int64(16)}.Settings()
	require.NoError(t, err)
	require.Equal(t, 16, s.AASamples)
}
