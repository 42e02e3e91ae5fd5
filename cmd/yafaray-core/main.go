// Command yafaray-core is a thin demonstration front end for the
// rendering core: it builds a small built-in scene (or loads a TOML
// parameter file), renders it, and writes a PNG. The real scene loaders,
// CLI and viewer are external collaborators; this exists so the core can
// be exercised end to end.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"os/signal"
	"time"

	"github.com/yafaray-go/renderer/pkg/bsdf"
	"github.com/yafaray-go/renderer/pkg/core"
	"github.com/yafaray-go/renderer/pkg/primitive"
	"github.com/yafaray-go/renderer/pkg/render"
	"github.com/yafaray-go/renderer/pkg/scenegraph"
)

// Exit codes of the driver.
const (
	exitOK         = 0
	exitCancelled  = 1
	exitConfig     = 2
	exitSceneBuild = 3
	exitIO         = 4
)

type config struct {
	Width, Height int
	ParamFile     string
	Output        string
	Scene         string
	Help          bool
}

func main() {
	os.Exit(run())
}

func run() int {
	cfg := parseFlags()
	if cfg.Help {
		showHelp()
		return exitOK
	}

	logger, err := core.NewZapLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		return exitIO
	}

	params := defaultParams(cfg)
	if cfg.ParamFile != "" {
		loaded, err := scenegraph.LoadParamMap(cfg.ParamFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "loading %s: %v\n", cfg.ParamFile, err)
			return exitFor(err)
		}
		for k, v := range loaded {
			params[k] = v
		}
	}

	scene, err := buildScene(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "building scene: %v\n", err)
		return exitFor(err)
	}
	if err := scene.AddIntegrator(params); err != nil {
		fmt.Fprintf(os.Stderr, "configuration: %v\n", err)
		return exitFor(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	film, stats, err := scene.StartRender(ctx)
	if err != nil && !core.IsCancelled(err) {
		fmt.Fprintf(os.Stderr, "render failed: %v\n", err)
		return exitFor(err)
	}

	if werr := writePNG(cfg.Output, film); werr != nil {
		fmt.Fprintf(os.Stderr, "writing %s: %v\n", cfg.Output, werr)
		return exitIO
	}

	fmt.Printf("Render completed in %v (%.1f samples/pixel, %d passes)\n",
		time.Since(start).Round(time.Millisecond), stats.AverageSamples, stats.PassesRun)
	fmt.Printf("Saved %s\n", cfg.Output)
	if core.IsCancelled(err) {
		fmt.Println("Render was cancelled; output contains the finished tiles.")
		return exitCancelled
	}
	return exitOK
}

func parseFlags() config {
	cfg := config{}
	flag.IntVar(&cfg.Width, "width", 512, "Image width in pixels")
	flag.IntVar(&cfg.Height, "height", 512, "Image height in pixels")
	flag.StringVar(&cfg.ParamFile, "config", "", "TOML parameter file")
	flag.StringVar(&cfg.Output, "output", "render.png", "Output PNG path")
	flag.StringVar(&cfg.Scene, "scene", "cornell", "Built-in scene: 'cornell' or 'caustic'")
	flag.BoolVar(&cfg.Help, "help", false, "Show help")
	flag.Parse()
	return cfg
}

func showHelp() {
	fmt.Println("yafaray-core: demonstration front end for the rendering core")
	fmt.Println()
	flag.PrintDefaults()
}

func defaultParams(cfg config) scenegraph.ParamMap {
	return scenegraph.ParamMap{
		"width":      cfg.Width,
		"height":     cfg.Height,
		"AA_passes":  3,
		"AA_samples": 4,
		"raydepth":   5,
	}
}

func exitFor(err error) int {
	switch core.ErrorKind(err) {
	case core.KindCancelled:
		return exitCancelled
	case core.KindConfigInvalid:
		return exitConfig
	case core.KindSceneBuildFailed:
		return exitSceneBuild
	case core.KindResourceExhausted:
		return exitIO
	default:
		return exitIO
	}
}

// buildScene assembles one of the built-in demo scenes through the same
// construction API an external loader would use.
func buildScene(cfg config, logger core.Logger) (*scenegraph.Scene, error) {
	s := scenegraph.NewScene(logger)

	white := bsdf.NewLambert(core.NewVec3(0.73, 0.73, 0.73))
	red := bsdf.NewLambert(core.NewVec3(0.65, 0.05, 0.05))
	green := bsdf.NewLambert(core.NewVec3(0.12, 0.45, 0.15))
	lightMat := bsdf.NewEmissive(core.NewVec3(15, 15, 15))
	s.AddMaterial("white", white)
	s.AddMaterial("red", red)
	s.AddMaterial("green", green)
	s.AddMaterial("light", lightMat)

	// Cornell-style box: floor, ceiling, back wall, coloured side walls.
	addQuad(s, "floor", white,
		core.NewVec3(0, 0, 0), core.NewVec3(556, 0, 0), core.NewVec3(556, 0, 556), core.NewVec3(0, 0, 556))
	addQuad(s, "ceiling", white,
		core.NewVec3(0, 548, 0), core.NewVec3(0, 548, 556), core.NewVec3(556, 548, 556), core.NewVec3(556, 548, 0))
	addQuad(s, "back", white,
		core.NewVec3(0, 0, 556), core.NewVec3(556, 0, 556), core.NewVec3(556, 548, 556), core.NewVec3(0, 548, 556))
	addQuad(s, "left", red,
		core.NewVec3(556, 0, 0), core.NewVec3(556, 0, 556), core.NewVec3(556, 548, 556), core.NewVec3(556, 548, 0))
	addQuad(s, "right", green,
		core.NewVec3(0, 0, 0), core.NewVec3(0, 548, 0), core.NewVec3(0, 548, 556), core.NewVec3(0, 0, 556))

	s.AddAreaLightQuad(
		core.NewVec3(213, 547.9, 227),
		core.NewVec3(130, 0, 0),
		core.NewVec3(0, 0, 105),
		lightMat)

	switch cfg.Scene {
	case "caustic":
		glass := bsdf.NewGlass(1.5)
		s.AddMaterial("glass", glass)
		s.AddPrimitive(primitive.NewSphere(core.NewVec3(278, 120, 278), 100, glass))
	default:
		s.AddPrimitive(primitive.NewSphere(core.NewVec3(185, 82, 169), 82, white))
		glossy := bsdf.NewGlossy(core.NewVec3(0.8, 0.8, 0.9), 0.1)
		s.AddMaterial("glossy", glossy)
		s.AddPrimitive(primitive.NewSphere(core.NewVec3(370, 90, 350), 90, glossy))
	}

	camera := render.NewPinhole(
		core.NewVec3(278, 273, -800),
		core.NewVec3(278, 273, 0),
		core.NewVec3(0, 1, 0),
		38, cfg.Width, cfg.Height, 0, 0)
	s.AddCamera("main", camera)
	s.SetBackground(core.Vec3{})
	return s, nil
}

func addQuad(s *scenegraph.Scene, name string, mat core.Material, a, b, c, d core.Vec3) {
	if err := s.CreateObject(name, scenegraph.ObjectMesh, mat); err != nil {
		return
	}
	s.AddVertex(a)
	s.AddVertex(b)
	s.AddVertex(c)
	s.AddVertex(d)
	_ = s.AddFace([3]int{0, 1, 2}, nil)
	_ = s.AddFace([3]int{0, 2, 3}, nil)
	_ = s.EndObject()
}

func writePNG(path string, film *render.Film) error {
	if film == nil {
		return fmt.Errorf("no film produced")
	}
	img := image.NewRGBA(image.Rect(0, 0, film.Width, film.Height))
	for y := 0; y < film.Height; y++ {
		for x := 0; x < film.Width; x++ {
			img.SetRGBA(x, y, toSRGB(film.Pixel(x, y).Colour()))
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

// toSRGB gamma-encodes linear radiance for the PNG sink with the
// simple sqrt-gamma approximation.
func toSRGB(c core.Vec3) color.RGBA {
	enc := func(v float64) uint8 {
		v = math.Sqrt(math.Max(0, math.Min(1, v)))
		return uint8(v * 255.999)
	}
	return color.RGBA{R: enc(c.X), G: enc(c.Y), B: enc(c.Z), A: 255}
}
