package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/pluribus/config"
	"github.com/pthm-cable/pluribus/engine"
	"github.com/pthm-cable/pluribus/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	engineName := flag.String("engine", "scalar", "Engine: scalar or vector")
	text := flag.String("text", "", "Initial text (empty = configured fallback)")
	headless := flag.Bool("headless", false, "Render in software without a window, then export a PNG")
	frames := flag.Int("frames", 600, "Frames to simulate in headless mode")
	width := flag.Int("width", 0, "Headless surface width (0 = screen width from config)")
	height := flag.Int("height", 0, "Headless surface height (0 = screen height from config)")
	out := flag.String("out", "", "PNG path for the headless export (empty = export file from config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	logStats := flag.Bool("log-stats", false, "Output telemetry windows via slog")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	workers := flag.Int("workers", 0, "Vector evaluation workers in headless mode (0 = all CPUs)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	kind, err := engine.ParseKind(*engineName)
	if err != nil {
		slog.Error("invalid engine", "error", err)
		os.Exit(2)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := engine.Options{
		Text:      *text,
		Seed:      rngSeed,
		OutputDir: *outputDir,
		LogStats:  *logStats,
	}

	if *headless {
		_, err := engine.Headless(cfg, opts, engine.HeadlessOptions{
			Kind:    kind,
			Width:   *width,
			Height:  *height,
			Frames:  *frames,
			Out:     *out,
			Workers: *workers,
		})
		if err != nil {
			slog.Error("headless run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), cfg.Screen.Title)
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g, err := game.New(cfg, kind, opts)
	if err != nil {
		slog.Error("failed to start", "error", err)
		return
	}
	defer g.Unload()

	slog.Info("starting", "engine", string(kind), "seed", rngSeed)
	for !rl.WindowShouldClose() {
		g.Update()
		g.Draw()
	}
}
