package engine

import (
	"math/rand"

	"github.com/pthm-cable/pluribus/systems"
	"github.com/pthm-cable/pluribus/telemetry"
)

// ScalarEngine drives the particle field with expanding waves and draws it
// onto a persistent canvas that keeps fading trails.
type ScalarEngine struct {
	canvas  Canvas
	rng     *rand.Rand
	field   *systems.ParticleField
	emitter *systems.WaveEmitter

	trailAlpha float32
	fresh      bool // canvas must be cleared before the next draw
	stats      telemetry.FrameStats
}

// NewScalarEngine creates an engine drawing onto canvas.
func NewScalarEngine(canvas Canvas, seed int64) *ScalarEngine {
	rng := rand.New(rand.NewSource(seed))
	return &ScalarEngine{
		canvas: canvas,
		rng:    rng,
		field:  systems.NewParticleField(rng),
	}
}

// Kind implements Engine.
func (e *ScalarEngine) Kind() Kind { return Scalar }

// Rebuild regenerates every particle and restarts the wave cadence.
func (e *ScalarEngine) Rebuild(ctx *Context) {
	e.field.Init(ctx.Mask, ctx.Field)
	e.emitter = systems.NewWaveEmitter(ctx.Field, ctx.Mask.Anchor.X, ctx.Mask.Anchor.Y, ctx.Width, ctx.Height)
	e.trailAlpha = float32(ctx.Field.TrailAlpha)
	e.fresh = true

	bg, text := e.field.Counts()
	e.stats = telemetry.FrameStats{
		Frame:      ctx.Frame,
		Background: bg,
		Text:       text,
		Capped:     e.field.Capped(),
	}
}

// Step spawns due waves, applies their push and relaxation, then expands
// the rings and drops the ones past their maximum radius.
func (e *ScalarEngine) Step(ctx *Context) {
	if e.emitter == nil {
		return
	}
	e.emitter.Tick()
	e.field.Update(e.emitter.Waves())
	waves := len(e.emitter.Waves())
	e.emitter.Advance()

	bg, text := e.field.Counts()
	e.stats = telemetry.FrameStats{
		Frame:            ctx.Frame,
		Time:             ctx.Time,
		Background:       bg,
		Text:             text,
		Waves:            waves,
		MeanDisplacement: e.field.MeanDisplacement(),
		Capped:           e.field.Capped(),
	}
}

// Draw implements Engine. The canvas must be ready for drawing.
func (e *ScalarEngine) Draw(ctx *Context) {
	if e.emitter == nil {
		return
	}
	if e.fresh {
		e.canvas.Clear()
		e.fresh = false
	}
	DrawField(e.canvas, e.field, e.emitter, e.trailAlpha, e.rng)
}

// Stats implements Engine.
func (e *ScalarEngine) Stats() telemetry.FrameStats {
	return e.stats
}

// Field exposes the particle field for inspection.
func (e *ScalarEngine) Field() *systems.ParticleField {
	return e.field
}

// Emitter exposes the wave emitter for inspection.
func (e *ScalarEngine) Emitter() *systems.WaveEmitter {
	return e.emitter
}

// Unload implements Engine. The canvas belongs to the caller.
func (e *ScalarEngine) Unload() {}
