package scenegraph

import (
	"context"

	"github.com/yafaray-go/renderer/pkg/core"
	"github.com/yafaray-go/renderer/pkg/integrator"
	"github.com/yafaray-go/renderer/pkg/render"
)

// This file closes the construction API: add integrator,
// set output callbacks, start render. StartRender assembles the
// integrator stack from validated Settings, runs the photon pre-pass
// when the configuration needs one (reusing session-valid maps), and
// drives the tiled renderer.

type jobState struct {
	settings     Settings
	haveSettings bool
	out          *render.OutputCallbacks
	maps         *integrator.Maps
}

// AddIntegrator selects the surface integrator and applies the full
// parameter map.
func (s *Scene) AddIntegrator(pm ParamMap) error {
	settings, err := pm.Settings()
	if err != nil {
		return err
	}
	s.job.settings = settings
	s.job.haveSettings = true
	return nil
}

// SetOutputCallbacks registers the output sink the driver notifies.
func (s *Scene) SetOutputCallbacks(out *render.OutputCallbacks) {
	s.job.out = out
}

// StartRender preprocesses the scene, builds the integrator stack and
// runs the render to completion or cancellation. The returned error's
// kind maps onto the front end's exit codes.
func (s *Scene) StartRender(ctx context.Context) (*render.Film, render.RenderStats, error) {
	if !s.job.haveSettings {
		return nil, render.RenderStats{}, core.NewError(core.KindConfigInvalid, nil, "no integrator configured")
	}
	cfg := s.job.settings

	if err := s.Preprocess(); err != nil {
		return nil, render.RenderStats{}, err
	}
	camera, ok := s.Camera("")
	if !ok {
		return nil, render.RenderStats{}, core.NewError(core.KindSceneBuildFailed, nil, "scene has no camera")
	}

	s.ShadowBias = cfg.ShadowBias
	s.RayMinDist = cfg.RayMinDist
	s.TransparentShadows = cfg.TransparentShadows
	s.ShadowDepth = cfg.ShadowDepth

	surface, err := s.buildSurfaceIntegrator(ctx, cfg)
	if err != nil {
		return nil, render.RenderStats{}, err
	}

	filter, _ := render.ParseFilter(cfg.FilterType, cfg.FilterSize)
	volumes := render.VolumeNone
	if len(s.regions) > 0 {
		volumes = render.VolumeSingleScatter
	}
	driver := render.NewDriver(render.Config{
		Width:       cfg.Width,
		Height:      cfg.Height,
		AAPasses:    cfg.AAPasses,
		AASamples:   cfg.AASamples,
		AAIncSample: cfg.AAIncSample,
		AAThreshold: cfg.AAThreshold,
		TileSize:    cfg.AATileSize,
		TileOrder:   cfg.AATileOrder,
		Filter:      filter,
		Threads:     cfg.Threads,
		Volumes:     volumes,
	}, camera, surface, s, s.regions, s.job.out, s.session, s.logger)

	return driver.Render(ctx)
}

// buildSurfaceIntegrator assembles the configured integrator, shooting
// photon maps first when the configuration calls for them. An empty
// photon pass downgrades to "no caustics" with a warning instead of
// failing the render.
func (s *Scene) buildSurfaceIntegrator(ctx context.Context, cfg Settings) (integrator.Surface, error) {
	needsCausticMap := cfg.CausticType == integrator.CausticPhoton || cfg.CausticType == integrator.CausticBoth
	needsMaps := needsCausticMap || cfg.IntegratorKind == "photonmapping" ||
		(cfg.IntegratorKind == "directlighting" && cfg.FinalGather)

	photonCfg := integrator.PhotonMapConfig{
		CausticPhotons: cfg.CausticPhotons,
		DiffusePhotons: cfg.DiffusePhotons,
		Search:         cfg.Search,
		Radius:         cfg.PhotonRadius,
		FinalGather:    cfg.FinalGather,
		FGSamples:      cfg.FGSamples,
		FGBounces:      cfg.FGBounces,
		DirectDepth:    cfg.RayDepth,
	}

	if needsMaps {
		if err := s.ensurePhotonMaps(ctx, photonCfg); err != nil {
			if core.ErrorKind(err) != core.KindPhotonMapEmpty {
				return nil, err
			}
			s.logger.Warnw("photon pass stored no photons, continuing without caustics")
		}
	}

	switch cfg.IntegratorKind {
	case "pathtracing":
		pathCfg := integrator.PathConfig{
			MaxDepth:                  cfg.RayDepth,
			RussianRouletteMinBounces: cfg.RussianRouletteMinBounces,
			Caustics:                  cfg.CausticType,
			CausticSearch:             cfg.CausticMix,
			CausticRadius:             cfg.PhotonRadius,
		}
		if needsCausticMap && s.job.maps != nil {
			pathCfg.CausticMap = s.job.maps.Caustic
		}
		return integrator.NewPathTracer(pathCfg), nil
	case "directlighting":
		directCfg := integrator.DirectConfig{
			MaxDepth:     cfg.RayDepth,
			FinalGather:  cfg.FinalGather,
			FGSamples:    cfg.FGSamples,
			GatherSearch: cfg.Search,
			GatherRadius: cfg.PhotonRadius,
		}
		if cfg.FinalGather && s.job.maps != nil {
			directCfg.DiffuseMap = s.job.maps.Diffuse
		}
		return integrator.NewDirectLight(directCfg), nil
	case "photonmapping":
		maps := s.job.maps
		if maps == nil {
			maps = &integrator.Maps{}
		}
		return integrator.NewPhotonMapper(photonCfg, maps), nil
	}
	return nil, core.NewError(core.KindConfigInvalid, nil, "unknown integrator: "+cfg.IntegratorKind)
}

// ensurePhotonMaps builds the photon maps, or reuses the existing ones
// when nothing in the scene changed since they were shot; any mutation
// invalidates them.
func (s *Scene) ensurePhotonMaps(ctx context.Context, cfg integrator.PhotonMapConfig) error {
	if s.job.maps != nil && s.session.PhotonMapsValid() {
		s.logger.Infow("reusing photon maps", "session", s.session.ID())
		return nil
	}
	maps, err := integrator.BuildMaps(ctx, s.tree, s.lights, cfg, 7919, s.logger)
	if maps != nil {
		s.job.maps = maps
		s.session.MarkPhotonMapsBuilt()
	}
	return err
}
