package scenegraph

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/yafaray-go/renderer/pkg/core"
	"github.com/yafaray-go/renderer/pkg/integrator"
	"github.com/yafaray-go/renderer/pkg/render"
)

// ParamMap is the loosely-typed parameter map the front end hands the
// core. Keys the core does not recognize are a ConfigInvalid error,
// surfaced before rendering starts.
type ParamMap map[string]interface{}

// LoadParamMap reads a TOML parameter file into a ParamMap. Read
// failures are I/O errors; TOML syntax errors are ConfigInvalid.
func LoadParamMap(path string) (ParamMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.NewError(core.KindResourceExhausted, err, "reading parameter file")
	}
	pm := ParamMap{}
	if err := toml.Unmarshal(data, &pm); err != nil {
		return nil, core.NewError(core.KindConfigInvalid, err, "parsing parameter file")
	}
	return pm, nil
}

// Settings is the validated, typed form of the configuration keys the
// core recognizes.
type Settings struct {
	Width, Height int

	AAPasses    int
	AASamples   int
	AAIncSample int
	AAThreshold float64
	AATileSize  int
	AATileOrder render.TileOrder

	FilterType string
	FilterSize float64

	ShadowBias         float64
	RayMinDist         float64
	TransparentShadows bool
	ShadowDepth        int
	RayDepth           int
	RussianRouletteMinBounces int

	CausticType    integrator.CausticType
	Photons        int
	CausticPhotons int
	DiffusePhotons int
	Search         int
	CausticMix     int
	PhotonRadius   float64

	FinalGather bool
	FGSamples   int
	FGBounces   int

	Threads int

	IntegratorKind string // directlighting | pathtracing | photonmapping
}

func defaultSettings() Settings {
	return Settings{
		Width: 512, Height: 512,
		AAPasses: 1, AASamples: 1, AAIncSample: 1,
		AAThreshold: 0.05, AATileSize: 32,
		FilterType: "box", FilterSize: 1.0,
		ShadowBias: 1e-4, RayMinDist: 1e-5,
		ShadowDepth: 4, RayDepth: 5,
		RussianRouletteMinBounces: 3,
		CausticType:               integrator.CausticPath,
		Photons:                   100000,
		Search:                    100,
		CausticMix:                100,
		PhotonRadius:              1.0,
		FGSamples:                 16,
		FGBounces:                 1,
		IntegratorKind:            "pathtracing",
	}
}

// Settings validates pm against the recognized key set and returns the
// typed settings. Unknown or contradictory keys abort with
// ConfigInvalid before any rendering happens.
func (pm ParamMap) Settings() (Settings, error) {
	s := defaultSettings()
	for key, raw := range pm {
		if err := s.apply(key, raw); err != nil {
			return Settings{}, err
		}
	}
	if err := s.validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s *Settings) apply(key string, raw interface{}) error {
	switch key {
	case "width":
		return setInt(&s.Width, key, raw)
	case "height":
		return setInt(&s.Height, key, raw)
	case "AA_passes":
		return setInt(&s.AAPasses, key, raw)
	case "AA_samples":
		return setInt(&s.AASamples, key, raw)
	case "AA_inc_samples":
		return setInt(&s.AAIncSample, key, raw)
	case "AA_threshold":
		return setFloat(&s.AAThreshold, key, raw)
	case "AA_tile_size":
		return setInt(&s.AATileSize, key, raw)
	case "AA_tile_order":
		str, err := asString(key, raw)
		if err != nil {
			return err
		}
		order, ok := render.ParseTileOrder(str)
		if !ok {
			return badValue(key, raw)
		}
		s.AATileOrder = order
		return nil
	case "filter_type":
		str, err := asString(key, raw)
		if err != nil {
			return err
		}
		if _, ok := render.ParseFilter(str, 1); !ok {
			return badValue(key, raw)
		}
		s.FilterType = str
		return nil
	case "filter_size":
		return setFloat(&s.FilterSize, key, raw)
	case "shadow_bias":
		return setFloat(&s.ShadowBias, key, raw)
	case "ray_min_dist":
		return setFloat(&s.RayMinDist, key, raw)
	case "transparent_shadows":
		return setBool(&s.TransparentShadows, key, raw)
	case "shadow_depth":
		return setInt(&s.ShadowDepth, key, raw)
	case "raydepth":
		return setInt(&s.RayDepth, key, raw)
	case "russian_roulette_min_bounces":
		return setInt(&s.RussianRouletteMinBounces, key, raw)
	case "caustic_type":
		str, err := asString(key, raw)
		if err != nil {
			return err
		}
		ct, ok := integrator.ParseCausticType(str)
		if !ok {
			return badValue(key, raw)
		}
		s.CausticType = ct
		return nil
	case "photons":
		return setInt(&s.Photons, key, raw)
	case "caustic_photons":
		return setInt(&s.CausticPhotons, key, raw)
	case "diffuse_photons":
		return setInt(&s.DiffusePhotons, key, raw)
	case "search":
		return setInt(&s.Search, key, raw)
	case "caustic_mix":
		return setInt(&s.CausticMix, key, raw)
	case "photon_radius":
		return setFloat(&s.PhotonRadius, key, raw)
	case "final_gather":
		return setBool(&s.FinalGather, key, raw)
	case "fg_samples":
		return setInt(&s.FGSamples, key, raw)
	case "fg_bounces":
		return setInt(&s.FGBounces, key, raw)
	case "threads":
		return setInt(&s.Threads, key, raw)
	case "integrator":
		return setString(&s.IntegratorKind, key, raw)
	}
	return core.NewError(core.KindConfigInvalid, nil, "unrecognized parameter: "+key)
}

func (s *Settings) validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return core.NewError(core.KindConfigInvalid, nil, "image size must be positive")
	}
	if s.AAThreshold < 0 {
		return core.NewError(core.KindConfigInvalid, nil, "AA_threshold must be >= 0")
	}
	if s.RayDepth < 1 {
		return core.NewError(core.KindConfigInvalid, nil, "raydepth must be >= 1")
	}
	switch s.IntegratorKind {
	case "directlighting", "pathtracing", "photonmapping":
	default:
		return core.NewError(core.KindConfigInvalid, nil, "unknown integrator: "+s.IntegratorKind)
	}
	// Contradiction: a photon-map caustic policy with a zero photon
	// budget cannot produce the paths it promises.
	if (s.CausticType == integrator.CausticPhoton || s.CausticType == integrator.CausticBoth) &&
		s.Photons <= 0 && s.CausticPhotons <= 0 {
		return core.NewError(core.KindConfigInvalid, nil, "caustic_type photon requires a photon budget")
	}
	if s.CausticPhotons == 0 {
		s.CausticPhotons = s.Photons
	}
	if s.DiffusePhotons == 0 {
		s.DiffusePhotons = s.Photons
	}
	return nil
}

func setInt(dst *int, key string, raw interface{}) error {
	switch v := raw.(type) {
	case int:
		*dst = v
	case int64:
		*dst = int(v)
	case float64:
		if v != float64(int(v)) {
			return badValue(key, raw)
		}
		*dst = int(v)
	default:
		return badValue(key, raw)
	}
	return nil
}

func setFloat(dst *float64, key string, raw interface{}) error {
	switch v := raw.(type) {
	case float64:
		*dst = v
	case int:
		*dst = float64(v)
	case int64:
		*dst = float64(v)
	default:
		return badValue(key, raw)
	}
	return nil
}

func setBool(dst *bool, key string, raw interface{}) error {
	v, ok := raw.(bool)
	if !ok {
		return badValue(key, raw)
	}
	*dst = v
	return nil
}

func setString(dst *string, key string, raw interface{}) error {
	v, err := asString(key, raw)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func asString(key string, raw interface{}) (string, error) {
	v, ok := raw.(string)
	if !ok {
		return "", badValue(key, raw)
	}
	return v, nil
}

func badValue(key string, raw interface{}) error {
	return core.NewError(core.KindConfigInvalid, nil,
		fmt.Sprintf("invalid value for %s: %v", key, raw))
}
