package render

import (
	"context"
	"math"
	"sync"

	"github.com/yafaray-go/renderer/pkg/core"
	"github.com/yafaray-go/renderer/pkg/integrator"
	"github.com/yafaray-go/renderer/pkg/volume"
)

// VolumeMode selects which volume integrator the driver applies over
// each primary ray.
type VolumeMode int

const (
	VolumeNone VolumeMode = iota
	VolumeEmission
	VolumeSingleScatter
)

// Config is the driver's slice of the ray-tracer configuration keys:
// pass counts, sample budgets, the adaptive threshold, tiling,
// filtering and threading.
type Config struct {
	Width, Height int

	AAPasses    int     // number of passes (pass 0 is the base pass)
	AASamples   int     // samples per pixel in pass 0
	AAIncSample int     // additional samples per resampled pixel per pass
	AAThreshold float64 // per-pixel variance threshold for convergence

	TileSize  int
	TileOrder TileOrder

	Filter  Filter
	Threads int

	Volumes   VolumeMode
	ViewName  string
	LayerName string
	ShowTiles bool // highlight tiles in the output sink as they start
}

func (c Config) withDefaults() Config {
	if c.AAPasses <= 0 {
		c.AAPasses = 1
	}
	if c.AASamples <= 0 {
		c.AASamples = 1
	}
	if c.AAIncSample <= 0 {
		c.AAIncSample = c.AASamples
	}
	if c.AAThreshold <= 0 {
		c.AAThreshold = 0.05
	}
	if c.TileSize <= 0 {
		c.TileSize = 32
	}
	if c.Filter == nil {
		c.Filter = BoxFilter{R: 0.5}
	}
	if c.ViewName == "" {
		c.ViewName = "default"
	}
	if c.LayerName == "" {
		c.LayerName = "combined"
	}
	return c
}

// Driver runs the tiled, pass-based progressive render:
// partition into tiles, dispatch to workers, adaptively resample
// unconverged pixels each pass, and hand completed tiles to the output
// sink.
type Driver struct {
	cfg     Config
	camera  core.Camera
	surface integrator.Surface
	scene   integrator.Scene
	regions []volume.Region

	film     *Film
	counters Counters
	session  *Session
	out      *OutputCallbacks
	outMu    sync.Mutex
	logger   core.Logger
}

func NewDriver(cfg Config, camera core.Camera, surface integrator.Surface, scene integrator.Scene, regions []volume.Region, out *OutputCallbacks, session *Session, logger core.Logger) *Driver {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = core.NewNopLogger()
	}
	if session == nil {
		session = NewSession()
	}
	return &Driver{
		cfg:     cfg,
		camera:  camera,
		surface: surface,
		scene:   scene,
		regions: regions,
		film:    NewFilm(cfg.Width, cfg.Height),
		session: session,
		out:     out,
		logger:  logger,
	}
}

// Film exposes the accumulation buffer; valid during and after Render.
func (d *Driver) Film() *Film { return d.film }

// Render runs all passes. On cancellation the partial film is flushed
// and returned together with a Cancelled-kind error.
func (d *Driver) Render(ctx context.Context) (*Film, RenderStats, error) {
	d.outMu.Lock()
	d.out.notifyView(d.cfg.ViewName)
	d.out.notifyLayer(d.cfg.LayerName)
	d.outMu.Unlock()

	tiles := NewTileGrid(d.cfg.Width, d.cfg.Height, d.cfg.TileSize, d.cfg.TileOrder)
	d.logger.Infow("render start",
		"session", d.session.ID(),
		"size", []int{d.cfg.Width, d.cfg.Height},
		"tiles", len(tiles), "passes", d.cfg.AAPasses)

	// Per-worker sequence caches and render states, one per worker index, allocated up front.
	threads := d.cfg.Threads
	if threads <= 0 {
		threads = defaultThreads()
	}
	caches := make([]*SequenceCache, threads)
	states := make([]*core.RenderState, threads)
	for i := range caches {
		caches[i] = NewSequenceCache(1024)
		states[i] = &core.RenderState{StreamID: int64(i)}
	}

	passesRun := 0
	for pass := 0; pass < d.cfg.AAPasses; pass++ {
		samples := d.cfg.AASamples
		if pass > 0 {
			samples = d.cfg.AAIncSample
			if d.markResampled() == 0 {
				d.logger.Infow("all pixels converged", "pass", pass)
				break
			}
		}

		active := d.activeTiles(tiles, pass)
		err := RunTiles(ctx, threads, active, func(worker int, t *Tile) error {
			return d.renderTile(caches[worker], states[worker], t, pass, samples)
		}, func(t *Tile) {
			t.PassesCompleted++
			d.counters.TilesRendered.Add(1)
			d.emitTile(t)
		})
		passesRun++
		if err != nil {
			stats := snapshotStats(d.film, &d.counters, passesRun, core.IsCancelled(err), d.cfg.AAThreshold)
			d.flushAll()
			return d.film, stats, err
		}
		d.logger.Infow("pass complete", "pass", pass, "tiles", len(active),
			"samples_total", d.counters.SamplesTaken.Load())
	}

	d.flushAll()
	stats := snapshotStats(d.film, &d.counters, passesRun, false, d.cfg.AAThreshold)
	d.logger.Infow("render done",
		"samples", stats.TotalSamples,
		"avg_per_pixel", stats.AverageSamples,
		"numerical_failures", stats.NumericalFailures)
	return d.film, stats, nil
}

// markResampled flags pixels whose AA variance still exceeds the
// threshold for another round of samples, and returns how many there
// are.
func (d *Driver) markResampled() int {
	n := 0
	for y := 0; y < d.film.Height; y++ {
		for x := 0; x < d.film.Width; x++ {
			p := d.film.Pixel(x, y)
			if p.Variance() > d.cfg.AAThreshold {
				p.Resampled = true
				p.Converged = false
				n++
			} else {
				p.Resampled = false
				p.Converged = true
			}
		}
	}
	return n
}

// activeTiles drops tiles whose pixels have all converged.
func (d *Driver) activeTiles(tiles []*Tile, pass int) []*Tile {
	if pass == 0 {
		return tiles
	}
	var active []*Tile
	for _, t := range tiles {
		converged := true
		for y := t.Bounds.Min.Y; y < t.Bounds.Max.Y && converged; y++ {
			for x := t.Bounds.Min.X; x < t.Bounds.Max.X; x++ {
				if d.film.Pixel(x, y).Resampled {
					converged = false
					break
				}
			}
		}
		t.Converged = converged
		if !converged {
			active = append(active, t)
		}
	}
	return active
}

func (d *Driver) renderTile(cache *SequenceCache, state *core.RenderState, t *Tile, pass, samples int) error {
	if d.cfg.ShowTiles {
		d.outMu.Lock()
		d.out.highlightArea(d.cfg.ViewName, t.Bounds.Min.X, t.Bounds.Min.Y, t.Bounds.Max.X, t.Bounds.Max.Y)
		d.outMu.Unlock()
	}
	for y := t.Bounds.Min.Y; y < t.Bounds.Max.Y; y++ {
		for x := t.Bounds.Min.X; x < t.Bounds.Max.X; x++ {
			if pass > 0 && !d.film.Pixel(x, y).Resampled {
				continue
			}
			pixelID := y*d.film.Width + x
			for s := 0; s < samples; s++ {
				d.renderSample(cache, state, t, pixelID, x, y, s, pass)
			}
		}
	}
	return nil
}

func (d *Driver) renderSample(cache *SequenceCache, state *core.RenderState, t *Tile, pixelID, x, y, sampleIndex, pass int) {
	sampler := cache.ForSample(pixelID, sampleIndex, pass)

	jitter := sampler.Get2D()
	fx := float64(x) + jitter.X
	fy := float64(y) + jitter.Y
	ray := d.camera.GetRay(fx, fy, sampler)

	res := d.surface.Integrate(state, ray, d.scene, sampler)
	colour := d.applyVolumes(ray, res, sampler)

	// Numerical failures are recovered locally: drop the sample, count
	// it, keep rendering.
	if colour.HasNaNOrInf() {
		d.counters.NumericalFailures.Add(1)
		return
	}
	d.film.Splat(t.Bounds, fx, fy, colour, d.cfg.Filter)
	d.counters.SamplesTaken.Add(1)
}

// applyVolumes wraps the surface radiance in the configured volume
// integrator over the same ray: attenuate by
// transmittance up to the first surface hit and add the in-scattered /
// emitted medium radiance.
func (d *Driver) applyVolumes(ray core.Ray, res integrator.Result, sampler core.Sampler) core.Vec3 {
	if d.cfg.Volumes == VolumeNone || len(d.regions) == 0 {
		return res.Colour
	}
	tEnd := res.FirstHitT
	if math.IsInf(tEnd, 1) {
		tEnd = math.MaxFloat64
	}
	transmittance := volume.Transmittance(d.regions, ray, tEnd)
	colour := transmittance.MultiplyVec(res.Colour)
	switch d.cfg.Volumes {
	case VolumeEmission:
		colour = colour.Add(volume.Integrate(d.regions, ray, tEnd))
	case VolumeSingleScatter:
		colour = colour.Add(volume.IntegrateSingleScatter(
			d.regions, d.scene.Lights(), volumeShadow{d.scene}, ray, tEnd, sampler,
			volume.SingleScatterOptions{}))
	}
	return colour
}

// emitTile pushes one completed tile's pixels to the output sink,
// serialized behind the driver's output mutex.
func (d *Driver) emitTile(t *Tile) {
	d.outMu.Lock()
	defer d.outMu.Unlock()
	for y := t.Bounds.Min.Y; y < t.Bounds.Max.Y; y++ {
		for x := t.Bounds.Min.X; x < t.Bounds.Max.X; x++ {
			p := d.film.Pixel(x, y)
			d.out.putPixel(d.cfg.ViewName, x, y, d.cfg.LayerName, p.Colour(), alphaOf(p))
		}
	}
	d.out.flushArea(d.cfg.ViewName, t.Bounds.Min.X, t.Bounds.Min.Y, t.Bounds.Max.X, t.Bounds.Max.Y)
}

func (d *Driver) flushAll() {
	d.outMu.Lock()
	defer d.outMu.Unlock()
	for y := 0; y < d.film.Height; y++ {
		for x := 0; x < d.film.Width; x++ {
			p := d.film.Pixel(x, y)
			d.out.putPixel(d.cfg.ViewName, x, y, d.cfg.LayerName, p.Colour(), alphaOf(p))
		}
	}
	d.out.flush(d.cfg.ViewName)
}

func alphaOf(p *Pixel) float64 {
	if p.WeightSum > 0 {
		return 1
	}
	return 0
}

// volumeShadow adapts the integrator scene's occlusion query to the
// volume package's ShadowTester.
type volumeShadow struct {
	scene integrator.Scene
}

func (v volumeShadow) IsShadowed(origin, dir core.Vec3, dist float64) bool {
	shadowed, _ := v.scene.Occluded(origin, dir, dist, nil)
	return shadowed
}
