package game

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/pluribus/engine"
	"github.com/pthm-cable/pluribus/telemetry"
)

// handleInput processes keyboard shortcuts and window resizes.
func (g *Game) handleInput() {
	if rl.IsWindowResized() {
		g.pendingW = int(rl.GetScreenWidth())
		g.pendingH = int(rl.GetScreenHeight())
		g.resizePending = true
	}

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	// Letter keys belong to the text box while it has focus
	if g.editing {
		return
	}
	if rl.IsKeyPressed(rl.KeyS) {
		g.exportRequested = true
	}
	if rl.IsKeyPressed(rl.KeyP) {
		g.showPerf = !g.showPerf
	}
}

// drawUI draws the text box, the export button and the overlays.
func (g *Game) drawUI() {
	h := float32(rl.GetScreenHeight())
	panelY := h - 48

	box := rl.Rectangle{X: 16, Y: panelY, Width: 320, Height: 32}
	if gui.TextBox(box, &g.text, textCapacity, g.editing) {
		g.editing = !g.editing
	}
	if gui.Button(rl.Rectangle{X: 344, Y: panelY, Width: 96, Height: 32}, "Export") {
		g.exportRequested = true
	}

	if g.status != "" && rl.GetTime() < g.statusUntil {
		rl.DrawText(g.status, 452, int32(panelY+8), 16, rl.LightGray)
	}

	if g.showPerf {
		g.drawPerf()
	}
}

// drawPerf draws the frame timing overlay.
func (g *Game) drawPerf() {
	perf := g.runner.Perf()
	stats := g.runner.Engine().Stats()

	y := int32(10)
	line := func(s string) {
		rl.DrawText(s, 10, y, 16, rl.White)
		y += 20
	}

	line(fmt.Sprintf("FPS: %d  step: %dus", rl.GetFPS(), perf.AvgStepDuration.Microseconds()))
	if perf.RebuildFrames > 0 {
		line(fmt.Sprintf("rebuild: %dus (max %dus)  steady step: %dus",
			perf.AvgRebuild.Microseconds(), perf.MaxRebuild.Microseconds(), perf.SteadyAvgStep.Microseconds()))
	}
	if ctx := g.runner.Context(); ctx != nil {
		line(fmt.Sprintf("%s  %dx%d  compact=%v", ctx.Text, ctx.Width, ctx.Height, ctx.Compact))
	}
	switch g.runner.Engine().Kind() {
	case engine.Vector:
		line("vector engine (gpu)")
	default:
		line(fmt.Sprintf("bg: %d  text: %d  waves: %d", stats.Background, stats.Text, stats.Waves))
		line(fmt.Sprintf("displacement: %.2f", stats.MeanDisplacement))
	}
	for _, phase := range telemetry.Phases {
		if pct, ok := perf.PhasePct[phase]; ok {
			line(fmt.Sprintf("  %-10s %5.1f%%", phase, pct))
		}
	}
}
