// Command primview evaluates a scene script and draws its primitives, each
// filled in its color with a wireframe overlay, under a slowly orbiting
// camera.
//
// Usage:
//
//	primview [-config view.toml] [-script scene.prim] [-reference cells] [-check] [-write-config out.toml]
package main

import (
	_ "embed"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/chazu/primmesh/pkg/config"
	"github.com/chazu/primmesh/pkg/engine"
	"github.com/chazu/primmesh/pkg/gpu/gputest"
	"github.com/chazu/primmesh/pkg/scene"
	"github.com/chazu/primmesh/pkg/shader"
	"github.com/chazu/primmesh/pkg/surface"
)

//go:embed demo.prim
var demoScript string

func init() {
	// GLFW and OpenGL calls must stay on the main thread.
	runtime.LockOSThread()
}

// options are the command line flags.
type options struct {
	configPath  string
	script      string
	writeConfig string
	check       bool
	// reference replaces every shape with its marching cubes tessellation
	// at this many cells; zero keeps the generated meshes.
	reference int
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "settings file (.toml, .yaml or .yml)")
	flag.StringVar(&opts.script, "script", "", "scene script to draw; overrides the config")
	flag.BoolVar(&opts.check, "check", false, "build the scene without a window, report surface deviation and exit")
	flag.StringVar(&opts.writeConfig, "write-config", "", "write the effective settings to this file and exit")
	flag.IntVar(&opts.reference, "reference", 0, "draw the analytic solids tessellated at this many cells instead")
	flag.Parse()

	if err := run(opts); err != nil {
		slog.Error("primview failed", "err", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	settings, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.script != "" {
		settings.Script = opts.script
	}

	level, err := settings.Level()
	if err != nil {
		return err
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	if opts.writeConfig != "" {
		if err := config.Save(opts.writeConfig, settings); err != nil {
			return err
		}
		log.Info("settings written", "path", opts.writeConfig)
		return nil
	}

	sc, err := loadScene(settings, log)
	if err != nil {
		return err
	}
	if opts.reference > 0 {
		sc = referenceScene(sc, opts.reference, log)
	}

	if opts.check {
		return checkScene(sc, settings.Render.Tolerance, log)
	}
	return view(sc, settings, log)
}

// loadScene evaluates the configured script, or the demo scene when none
// is set.
func loadScene(settings config.Settings, log *slog.Logger) (*scene.Scene, error) {
	source, name := demoScript, "demo"
	if settings.Script != "" {
		data, err := os.ReadFile(settings.Script)
		if err != nil {
			return nil, fmt.Errorf("read script: %w", err)
		}
		source, name = string(data), settings.Script
	}

	eng := engine.NewEngine(engine.WithTimeout(settings.Timeout()), engine.WithLogger(log))
	res, err := eng.Run(source)
	if err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", name, err)
	}
	for _, e := range res.Errors {
		log.Error("script error", "script", name, "line", e.Line, "msg", e.Message)
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("evaluate %s: %d errors", name, len(res.Errors))
	}
	for _, w := range res.Warnings {
		log.Warn("parameters clamped", "script", name, "item", w.Item, "detail", w.Message)
	}
	if res.Scene.Len() == 0 {
		return nil, errors.New("scene is empty")
	}

	log.Info("scene loaded", "script", name, "items", res.Scene.Len())
	return res.Scene, nil
}

// referenceScene swaps every item's shape for its tessellated analytic solid.
func referenceScene(sc *scene.Scene, cells int, log *slog.Logger) *scene.Scene {
	out := scene.New(scene.WithLogger(log))
	for _, it := range sc.Items() {
		it.Shape = surface.Reference{Of: it.Shape, Cells: cells}
		out.Add(it)
	}
	return out
}

// checkScene builds sc against a recording backend and logs how far each
// mesh's vertices lie from the analytic surface.
func checkScene(sc *scene.Scene, tolerance float64, log *slog.Logger) error {
	dev := gputest.New()
	reg := shader.NewRegistry(log)
	if err := reg.BuildBasic(dev); err != nil {
		return err
	}
	defer reg.Release(dev)

	if err := sc.Build(dev, reg); err != nil {
		return err
	}
	defer sc.Release()

	return reportSurfaces(sc, tolerance, log)
}

// reportSurfaces logs the surface deviation of every built mesh in sc and
// the scene bounds.
func reportSurfaces(sc *scene.Scene, tolerance float64, log *slog.Logger) error {
	reports, err := sc.Check(tolerance)
	if err != nil {
		return err
	}
	for i, r := range reports {
		it := sc.Items()[i]
		attrs := []any{
			"item", it.Name,
			"kind", it.Shape.Kind(),
			"vertices", sc.Meshes()[i].VertexCount(),
			"max", r.Max,
			"mean", r.Mean,
		}
		if r.Off > 0 {
			log.Warn("off surface", append(attrs, "off", r.Off, "worst", r.Worst)...)
			continue
		}
		log.Info("on surface", attrs...)
	}

	bb := sc.Bounds()
	log.Info("scene bounds", "min", bb.Min, "max", bb.Max)
	return nil
}
