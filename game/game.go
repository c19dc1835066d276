// Package game runs the field in a raylib window: the trail surface, the
// text box, keyboard shortcuts and PNG export of the current frame.
package game

import (
	"fmt"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/pluribus/config"
	"github.com/pthm-cable/pluribus/engine"
	"github.com/pthm-cable/pluribus/renderer"
)

// textCapacity bounds the text box input in bytes.
const textCapacity = 48

// Game holds the windowed run state.
type Game struct {
	cfg     *config.Config
	runner  *engine.Runner
	surface *renderer.Surface

	// Text box state
	text    string
	editing bool

	// Window size seen while editing, applied when editing ends
	pendingW, pendingH int
	resizePending      bool

	exportRequested bool
	status          string
	statusUntil     float64
	showPerf        bool
}

// New creates a game for the given engine. The window must be open.
func New(cfg *config.Config, kind engine.Kind, opts engine.Options) (*Game, error) {
	w, h := int(rl.GetScreenWidth()), int(rl.GetScreenHeight())
	surface := renderer.NewSurface(w, h)

	var eng engine.Engine
	switch kind {
	case engine.Scalar:
		eng = engine.NewScalarEngine(surface, opts.Seed)
	case engine.Vector:
		points := NewGPUPoints()
		if !points.Valid() {
			points.Unload()
			surface.Unload()
			return nil, fmt.Errorf("point shader failed to compile")
		}
		eng = engine.NewVectorEngine(surface, points)
	default:
		surface.Unload()
		return nil, fmt.Errorf("unknown engine %q", kind)
	}

	runner, err := engine.NewRunner(cfg, eng, opts)
	if err != nil {
		eng.Unload()
		surface.Unload()
		return nil, err
	}

	g := &Game{
		cfg:     cfg,
		runner:  runner,
		surface: surface,
		text:    opts.Text,
	}
	runner.Rebuild(g.text, w, h)
	return g, nil
}

// Update applies text and size changes, then steps the engine.
func (g *Game) Update() {
	g.runner.BeginFrame()
	g.handleInput()

	if g.resizePending && !g.editing {
		g.surface.Resize(g.pendingW, g.pendingH)
		g.resizePending = false
	}
	w, h := g.surface.Size()
	if g.runner.NeedsRebuild(g.text, w, h) {
		g.runner.Rebuild(g.text, w, h)
	}

	g.runner.Update()
}

// Draw renders the engine into the trail surface, presents it and draws
// the UI on top. An export requested this frame captures the surface only.
func (g *Game) Draw() {
	g.surface.Begin()
	g.runner.Draw()
	g.surface.End()

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)
	g.surface.Present()
	g.drawUI()
	rl.EndDrawing()

	if g.exportRequested {
		g.exportRequested = false
		g.export()
	}

	g.runner.EndFrame(float64(rl.GetFrameTime()))
	g.runner.RecordPresent()
}

// export writes the current surface as a letterboxed PNG.
func (g *Game) export() {
	path, err := g.runner.Export(g.surface.Snapshot(), "")
	if err != nil {
		slog.Error("export failed", "error", err)
		g.setStatus("export failed")
		return
	}
	g.setStatus("saved " + path)
}

func (g *Game) setStatus(msg string) {
	g.status = msg
	g.statusUntil = rl.GetTime() + 3
}

// Frames returns the number of completed frames.
func (g *Game) Frames() int64 {
	return g.runner.Frames()
}

// Unload releases all resources.
func (g *Game) Unload() {
	if err := g.runner.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
	g.surface.Unload()
}
