// Command facet loads mesh files, paints every triangle a flat color and
// writes the colorized model, optionally with a PNG preview and a
// histogram of triangle heights.
//
// Usage:
//
//	facet [flags] files...
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/soypat/facet"
	"github.com/soypat/facet/form3"
	"github.com/soypat/facet/internal/config"
	"github.com/soypat/facet/loader"
	"github.com/soypat/facet/preview"
	"github.com/soypat/facet/render"
	"github.com/soypat/facet/scene"
	"github.com/soypat/glgl/math/ms3"
	"gonum.org/v1/gonum/spatial/r3"
)

func main() {
	var (
		cfgPath  = flag.String("config", "", "TOML configuration file")
		strategy = flag.String("strategy", "", "color strategy: random, byHeight")
		up       = flag.String("up", "", "height axis for byHeight: x, y or z")
		seed     = flag.Int64("seed", 0, "seed for the random strategy, 0 seeds from the clock")
		output   = flag.String("o", "", "output mesh file (.obj, .obja or .stl)")
		png      = flag.String("png", "", "write a preview render to this PNG file")
		hist     = flag.String("hist", "", "write a triangle height histogram to this image file")
		demo     = flag.String("demo", "", "colorize a built-in model instead of files: box, grid or sphere")
		verbose  = flag.Bool("v", false, "log debug output")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] files...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fatalf("config: %v", err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "strategy":
			cfg.Strategy = *strategy
		case "up":
			cfg.Up = *up
		case "seed":
			cfg.Seed = *seed
		case "o":
			cfg.Output = *output
		case "png":
			cfg.Preview.Path = *png
		case "hist":
			cfg.Preview.Histogram = *hist
		}
	})
	if err := cfg.Validate(); err != nil {
		fatalf("config: %v", err)
	}
	if *demo == "" && flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, log, cfg, *demo, flag.Args()); err != nil {
		fatalf("%v", err)
	}
}

func run(ctx context.Context, log *slog.Logger, cfg config.Config, demo string, paths []string) error {
	col := &scene.Colorizer{
		Options: facet.Options{
			Strategy: facet.ParseStrategy(cfg.Strategy),
			Up:       cfg.Axis(),
		},
		Logger: log,
	}
	if cfg.Seed != 0 {
		col.Rand = rand.New(rand.NewSource(cfg.Seed))
	}
	if col.Strategy == facet.StrategyGray {
		log.Warn("unknown strategy, painting gray", slog.String("strategy", cfg.Strategy))
	}

	var (
		root  *scene.Group
		stats scene.Stats
		err   error
	)
	if demo != "" {
		root, err = demoScene(demo)
		if err != nil {
			return err
		}
		stats = col.Colorize(root)
	} else {
		root, stats, err = loadFiles(ctx, log, col, paths)
		if err != nil {
			return err
		}
	}
	log.Info("colorized", slog.Int("solids", stats.Colored), slog.Int("skipped", stats.Skipped),
		slog.Int("triangles", stats.Triangles), slog.String("strategy", col.Strategy.String()))

	if cfg.Output != "" {
		if err := writeMerged(cfg.Output, root); err != nil {
			return err
		}
		log.Info("wrote mesh", slog.String("path", cfg.Output))
	}
	if p := cfg.Preview; p.Path != "" {
		bg, _ := config.ParseHexColor(p.Background)
		v := preview.DefaultView()
		v.Width, v.Height, v.Supersample = p.Width, p.Height, p.Supersample
		v.Eye = r3.Vec{X: p.Eye[0], Y: p.Eye[1], Z: p.Eye[2]}
		v.Background = bg
		v.Up = upVector(col.Up)
		img, err := preview.Render(root, v)
		if err != nil {
			return fmt.Errorf("preview: %w", err)
		}
		if err := preview.SavePNG(p.Path, img); err != nil {
			return err
		}
		log.Info("wrote preview", slog.String("path", p.Path))
	}
	if p := cfg.Preview; p.Histogram != "" {
		plt, err := preview.HeightHistogram(root, col.Up, p.Bins)
		if err != nil {
			return fmt.Errorf("histogram: %w", err)
		}
		if err := preview.SaveHistogram(plt, p.Histogram); err != nil {
			return err
		}
		log.Info("wrote histogram", slog.String("path", p.Histogram))
	}
	return nil
}

func loadFiles(ctx context.Context, log *slog.Logger, col *scene.Colorizer, paths []string) (*scene.Group, scene.Stats, error) {
	l := &loader.Loader{Paths: paths, Logger: log}
	fut := l.Start(ctx)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for waiting := true; waiting; {
		select {
		case <-fut.Done():
			waiting = false
		case <-ticker.C:
			log.Info("loading", slog.String("progress", fmt.Sprintf("%.0f%%", 100*loader.Fraction(l.Progress()))))
		}
	}
	elems, err := fut.Wait(ctx)
	if err != nil {
		return nil, scene.Stats{}, err
	}
	c := loader.NewContainer("model")
	err = c.Assemble(elems, func(msg string) { log.Warn(msg) })
	if err != nil {
		return nil, scene.Stats{}, err
	}
	return c.Root, col.Colorize(c.Root), nil
}

// writeMerged concatenates every colored surface under root into one mesh
// and writes it to path.
func writeMerged(path string, root scene.Node) error {
	var merged facet.Mesh
	for _, s := range scene.Solids(root) {
		if !s.IsSurface() || s.Mesh.IsIndexed() || len(s.Mesh.Colors) != len(s.Mesh.Positions) {
			continue
		}
		merged.Positions = append(merged.Positions, s.Mesh.Positions...)
		merged.Colors = append(merged.Colors, s.Mesh.Colors...)
	}
	if len(merged.Positions) == 0 {
		return fmt.Errorf("%s: no colored surfaces to write", path)
	}
	return render.CreateFile(path, &merged)
}

func demoScene(name string) (*scene.Group, error) {
	root := scene.NewGroup(name)
	switch name {
	case "box":
		m, err := form3.Box(ms3.Vec{X: 1, Y: 1, Z: 1})
		if err != nil {
			return nil, err
		}
		root.Add(scene.NewSolid("box", m))
	case "grid":
		m, err := form3.Grid(32, 32, 0.1, 0.1, func(x, y float32) float32 {
			return 0.2 * float32(math.Cos(4*math.Hypot(float64(x-1.6), float64(y-1.6))))
		})
		if err != nil {
			return nil, err
		}
		root.Add(scene.NewSolid("grid", m))
	case "sphere":
		m, err := form3.UVSphere(1, 16, 32)
		if err != nil {
			return nil, err
		}
		root.Add(scene.NewSolid("sphere", m))
	default:
		return nil, fmt.Errorf("unknown demo %q", name)
	}
	return root, nil
}

func upVector(a facet.Axis) r3.Vec {
	switch a {
	case facet.AxisX:
		return r3.Vec{X: 1}
	case facet.AxisY:
		return r3.Vec{Y: 1}
	}
	return r3.Vec{Z: 1}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "facet: "+format+"\n", args...)
	os.Exit(1)
}
