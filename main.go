package main

import (
	"flag"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/pthm-cable/cityloop/assets"
	"github.com/pthm-cable/cityloop/camera"
	"github.com/pthm-cable/cityloop/city"
	"github.com/pthm-cable/cityloop/config"
	"github.com/pthm-cable/cityloop/systems"
	"github.com/pthm-cable/cityloop/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = config seed, then time-based)")
	frames := flag.Int("frames", 600, "Frames to run after generation (0 = generate only)")
	dt := flag.Float64("dt", 1.0/60.0, "Seconds per frame")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, config and layout snapshot")
	snapshotPath := flag.String("snapshot", "", "Layout snapshot path (default <output-dir>/layout.snap)")
	logStats := flag.Bool("log-stats", false, "Output perf stats via slog")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = cfg.Seed
	}
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}
	cfg.Seed = rngSeed

	if err := run(cfg, *frames, *dt, *outputDir, *snapshotPath, *logStats); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, frames int, dt float64, outputDir, snapshotPath string, logStats bool) error {
	catalog, err := assets.NewCatalog(cfg.Assets)
	if err != nil {
		return err
	}

	slog.Info("generating city",
		"seed", cfg.Seed,
		"table_size", cfg.Grid.TableSize,
		"neighborhood", cfg.Grid.Neighborhood,
		"profile", cfg.Spawn.Profile,
	)
	c, err := city.New(cfg, catalog, rand.New(rand.NewSource(cfg.Seed)))
	if err != nil {
		return err
	}

	out, err := telemetry.NewOutputManager(outputDir)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := out.WriteConfig(cfg); err != nil {
		return err
	}
	if err := out.WriteChunks(c.Stats().Records); err != nil {
		return err
	}

	cam := camera.New(
		cfg.Derived.WorldSpan,
		cfg.Grid.ChunkSpan,
		cfg.Camera.Height,
		cfg.Camera.HeadingDeg*math.Pi/180,
		cfg.Camera.Speed,
	)

	for i := 0; i < frames; i++ {
		cam.Advance(dt)
		c.Update(systems.Frame{Tick: c.Tick(), DT: dt, Focus: cam.Focus()})

		every := cfg.Telemetry.LogEvery
		if every <= 0 || c.Tick()%uint64(every) != 0 {
			continue
		}
		perf := c.Perf()
		if logStats {
			perf.LogStats()
		}
		if err := out.WritePerf(perf, c.Tick()); err != nil {
			return err
		}
		cx, cy := cam.Chunk()
		slog.Info("frame",
			"tick", c.Tick(),
			"chunk_x", cx,
			"chunk_y", cy,
			"visible_mobs", visibleMobs(c, cam, cfg),
		)
	}

	if snapshotPath == "" {
		snapshotPath = out.Path("layout.snap")
	}
	if snapshotPath != "" {
		if err := telemetry.WriteLayout(snapshotPath, c.Layout()); err != nil {
			return err
		}
		slog.Info("layout saved", "path", snapshotPath)
	}
	return nil
}

// visibleMobs counts mobs within the camera's view distance.
func visibleMobs(c *city.City, cam *camera.Camera, cfg *config.Config) int {
	n := 0
	for _, e := range c.Mobs() {
		ref, tr, ok := c.Transform(e)
		if !ok {
			continue
		}
		w := systems.WorldPosition(ref, tr.Position, cfg.Grid.ChunkSpan)
		if cam.IsVisible(w.X, w.Z, 0, cfg.Camera.ViewDist) {
			n++
		}
	}
	return n
}
