// Shader debug tool - renders the vector engine at a fixed time to a PNG
// file for inspection, optionally next to the CPU model of the same frame.
//
// Usage: go run ./cmd/shaderdebug -text hello -time 2.5 -out gpu.png -cpu-out cpu.png
package main

import (
	"flag"
	"fmt"
	"image"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/pluribus/config"
	"github.com/pthm-cable/pluribus/engine"
	"github.com/pthm-cable/pluribus/game"
	"github.com/pthm-cable/pluribus/raster"
	"github.com/pthm-cable/pluribus/renderer"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	text := flag.String("text", "", "Text to render (empty = configured fallback)")
	t := flag.Float64("time", 1.0, "Shader time in seconds")
	outPath := flag.String("out", "debug.png", "Output PNG path for the GPU frame")
	cpuOut := flag.String("cpu-out", "", "Also render the CPU model of the frame to this path")
	width := flag.Int("width", 1200, "Render width")
	height := flag.Int("height", 630, "Render height")
	seed := flag.Int64("seed", 1, "Noise seed for the CPU model")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Initialize raylib with hidden window
	rl.SetConfigFlags(rl.FlagWindowHidden)
	rl.InitWindow(int32(*width), int32(*height), "Shader Debug")
	defer rl.CloseWindow()

	ctx := engine.NewContext(cfg, *text, *width, *height, *seed)
	ctx.Time = *t

	points := game.NewGPUPoints()
	if !points.Valid() {
		points.Unload()
		fmt.Fprintln(os.Stderr, "Point shader failed to compile")
		os.Exit(1)
	}
	surface := renderer.NewSurface(ctx.Width, ctx.Height)
	defer surface.Unload()

	gpu := engine.NewVectorEngine(surface, points)
	defer gpu.Unload()
	gpu.Rebuild(ctx)
	gpu.Step(ctx)

	// Render the frame into the surface
	surface.Begin()
	gpu.Draw(ctx)
	surface.End()

	if err := writePNG(*outPath, surface.Snapshot()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to export image: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("GPU frame rendered to: %s (%dx%d, %d points, t=%.2f)\n", *outPath, ctx.Width, ctx.Height, gpu.Grid().Len(), *t)

	if *cpuOut == "" {
		return
	}

	canvas := raster.NewCanvas(ctx.Width, ctx.Height)
	cpu, err := engine.NewSoftwareEngine(engine.Vector, canvas, cfg, *seed, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create CPU engine: %v\n", err)
		os.Exit(1)
	}
	defer cpu.Unload()
	cpu.Rebuild(ctx)
	cpu.Step(ctx)
	cpu.Draw(ctx)
	stats := cpu.Stats()

	if err := writePNG(*cpuOut, canvas.Image()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to export CPU image: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("CPU frame rendered to: %s (%d of %d points kept)\n", *cpuOut, stats.Kept, stats.Kept+stats.Discarded)
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := raster.WritePNG(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
