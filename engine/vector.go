package engine

import (
	"github.com/pthm-cable/pluribus/glyph"
	"github.com/pthm-cable/pluribus/raster"
	"github.com/pthm-cable/pluribus/shading"
	"github.com/pthm-cable/pluribus/systems"
	"github.com/pthm-cable/pluribus/telemetry"
)

// PointRenderer runs the vector shader stages over a static grid.
type PointRenderer interface {
	// Rebuild replaces the grid, mask and rebuild-time uniforms.
	Rebuild(grid *shading.Grid, mask *glyph.Mask, u *shading.Uniforms)
	// Draw renders one frame at u.Time and reports how many points survived
	// the fragment stage, when known.
	Draw(u *shading.Uniforms) (kept, discarded int)
	Unload()
}

// VectorEngine draws the text as a displaced point grid. All motion comes
// from the clock; the engine keeps no per-point state between frames.
type VectorEngine struct {
	canvas   Canvas
	points   PointRenderer
	grid     *shading.Grid
	uniforms shading.Uniforms
	stats    telemetry.FrameStats
}

// NewVectorEngine creates an engine that clears canvas every frame and
// draws through points.
func NewVectorEngine(canvas Canvas, points PointRenderer) *VectorEngine {
	return &VectorEngine{canvas: canvas, points: points}
}

// Kind implements Engine.
func (e *VectorEngine) Kind() Kind { return Vector }

// Rebuild lays out a new grid for the surface and pushes the mask and
// uniforms to the point renderer.
func (e *VectorEngine) Rebuild(ctx *Context) {
	vc := ctx.Config.Vector
	maxPoints := vc.MaxVertices / shading.VerticesPerPoint
	e.grid = shading.NewGrid(ctx.Width, ctx.Height, float32(vc.GridStep), maxPoints)

	e.uniforms = shading.NewUniforms(vc)
	e.uniforms.SetSurface(ctx.Mask)
	e.uniforms.SetTime(ctx.Time)
	e.points.Rebuild(e.grid, ctx.Mask, &e.uniforms)

	e.stats = telemetry.FrameStats{Frame: ctx.Frame}
}

// Step advances the clock uniforms.
func (e *VectorEngine) Step(ctx *Context) {
	e.uniforms.SetTime(ctx.Time)
}

// Draw implements Engine.
func (e *VectorEngine) Draw(ctx *Context) {
	if e.grid == nil {
		return
	}
	e.canvas.Clear()
	kept, discarded := e.points.Draw(&e.uniforms)
	e.stats = telemetry.FrameStats{
		Frame:     ctx.Frame,
		Time:      ctx.Time,
		Kept:      kept,
		Discarded: discarded,
	}
}

// Stats implements Engine.
func (e *VectorEngine) Stats() telemetry.FrameStats {
	return e.stats
}

// Grid returns the current point grid.
func (e *VectorEngine) Grid() *shading.Grid {
	return e.grid
}

// Unload implements Engine.
func (e *VectorEngine) Unload() {
	e.points.Unload()
}

// SoftwarePoints evaluates the shader stages on the CPU and rasterizes the
// surviving points as discs.
type SoftwarePoints struct {
	canvas  *raster.Canvas
	program *shading.Program
	grid    *shading.Grid
	samples []shading.Sample
}

// NewSoftwarePoints creates a software point renderer drawing onto canvas.
// workers <= 0 uses every available CPU.
func NewSoftwarePoints(canvas *raster.Canvas, noise *systems.Noise, workers int) *SoftwarePoints {
	return &SoftwarePoints{
		canvas:  canvas,
		program: shading.NewProgram(shading.Uniforms{}, nil, noise, workers),
	}
}

// Rebuild implements PointRenderer.
func (s *SoftwarePoints) Rebuild(grid *shading.Grid, mask *glyph.Mask, u *shading.Uniforms) {
	s.grid = grid
	s.program.SetMask(mask)
	s.program.Uniforms = *u
}

// Draw implements PointRenderer.
func (s *SoftwarePoints) Draw(u *shading.Uniforms) (kept, discarded int) {
	if s.grid == nil {
		return 0, 0
	}
	s.program.Uniforms = *u
	s.samples = s.program.Evaluate(s.grid, s.samples)
	raster.DrawSamples(s.canvas, s.samples)

	for i := range s.samples {
		if s.samples[i].Keep {
			kept++
		}
	}
	return kept, len(s.samples) - kept
}

// Samples returns the last evaluated frame.
func (s *SoftwarePoints) Samples() []shading.Sample {
	return s.samples
}

// Unload implements PointRenderer.
func (s *SoftwarePoints) Unload() {
	s.program.Close()
}
