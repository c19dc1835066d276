package engine

import (
	"image"
	"log/slog"
	"time"

	"github.com/pthm-cable/pluribus/config"
	"github.com/pthm-cable/pluribus/raster"
	"github.com/pthm-cable/pluribus/telemetry"
)

// Options configure a run.
type Options struct {
	Text      string
	Seed      int64
	OutputDir string // empty disables CSV output
	LogStats  bool   // log every telemetry window
}

// Runner owns the current Context and drives one Engine through frames,
// rebuilds and exports, feeding perf timings and window stats to telemetry.
//
// A frame is BeginFrame, an optional Rebuild, Update, Draw, EndFrame.
type Runner struct {
	cfg    *config.Config
	opts   Options
	ctx    *Context
	engine Engine

	perf   *telemetry.PerfCollector
	agg    *telemetry.Aggregator
	output *telemetry.OutputManager

	frames    int64 // run-wide frame number, not reset on rebuild
	stepStart time.Time
	step      time.Duration
}

// NewRunner creates a runner and, when opts.OutputDir is set, the output
// directory with a snapshot of cfg.
func NewRunner(cfg *config.Config, eng Engine, opts Options) (*Runner, error) {
	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := output.WriteConfig(cfg); err != nil {
		output.Close()
		return nil, err
	}

	return &Runner{
		cfg:    cfg,
		opts:   opts,
		engine: eng,
		perf:   telemetry.NewPerfCollector(cfg.Telemetry.WindowFrames),
		agg:    telemetry.NewAggregator(string(eng.Kind()), cfg.Telemetry.WindowFrames),
		output: output,
	}, nil
}

// Context returns the current context, nil before the first Rebuild.
func (r *Runner) Context() *Context {
	return r.ctx
}

// Engine returns the driven engine.
func (r *Runner) Engine() Engine {
	return r.engine
}

// Frames returns the number of completed frames.
func (r *Runner) Frames() int64 {
	return r.frames
}

// NeedsRebuild reports whether text on a width x height surface differs
// from the current context.
func (r *Runner) NeedsRebuild(text string, width, height int) bool {
	return r.ctx == nil || !r.ctx.Matches(text, width, height)
}

// Rebuild replaces the context and regenerates the scene synchronously.
// The pending telemetry window is flushed first because frame counts and
// particle populations restart.
func (r *Runner) Rebuild(text string, width, height int) {
	r.perf.StartPhase(telemetry.PhaseMask)
	if ws, ok := r.agg.Flush(); ok {
		r.emit(ws)
	}

	prev := r.ctx
	r.ctx = NewContext(r.cfg, text, width, height, r.opts.Seed)
	r.engine.Rebuild(r.ctx)

	ctx := r.ctx
	slog.Info("rebuild",
		"engine", string(r.engine.Kind()),
		"text", ctx.Text,
		"width", ctx.Width,
		"height", ctx.Height,
		"compact", ctx.Compact,
		"font_size", ctx.Mask.FontSize,
	)

	if prev != nil && (prev.Width != ctx.Width || prev.Height != ctx.Height) {
		r.bookmark(telemetry.ResizeBookmark(r.frames, ctx.Width, ctx.Height))
	}
	r.bookmark(telemetry.RebuildBookmark(r.frames, ctx.Text, ctx.Width, ctx.Height))
	if r.engine.Stats().Capped {
		r.bookmark(telemetry.ParticleCapBookmark(r.frames, ctx.Field.MaxParticles))
	}
}

// BeginFrame starts timing a frame.
func (r *Runner) BeginFrame() {
	r.perf.StartFrame()
}

// Update advances the engine one step.
func (r *Runner) Update() {
	if r.ctx == nil {
		return
	}
	r.perf.StartPhase(telemetry.PhaseUpdate)
	r.stepStart = time.Now()
	r.engine.Step(r.ctx)
}

// Draw draws the engine into whatever target the caller has bound.
func (r *Runner) Draw() {
	if r.ctx == nil {
		return
	}
	r.perf.StartPhase(telemetry.PhaseDraw)
	r.engine.Draw(r.ctx)
	r.step = time.Since(r.stepStart)
}

// EndFrame records the frame's stats and moves the clock forward by dt.
func (r *Runner) EndFrame(dt float64) {
	if r.ctx == nil {
		r.perf.EndFrame()
		return
	}
	r.perf.StartPhase(telemetry.PhaseTelemetry)
	fs := r.engine.Stats()
	fs.Frame = r.frames
	fs.Step = r.step
	if ws, ok := r.agg.Add(fs); ok {
		r.emit(ws)
	}
	r.perf.EndFrame()

	r.ctx.Advance(dt)
	r.frames++
}

// RecordPresent records wall-clock presentation timing.
func (r *Runner) RecordPresent() {
	r.perf.RecordPresent()
}

// Perf returns the current perf window.
func (r *Runner) Perf() telemetry.PerfStats {
	return r.perf.Stats()
}

// ExportPath resolves the export file name: path when given, otherwise the
// configured file inside the output directory.
func (r *Runner) ExportPath(path string) string {
	if path != "" {
		return path
	}
	return r.output.Path(r.cfg.Export.File)
}

// Export letterboxes frame onto the configured export size and writes it as
// PNG to ExportPath(path).
func (r *Runner) Export(frame image.Image, path string) (string, error) {
	path = r.ExportPath(path)
	w, h := r.cfg.Export.Width, r.cfg.Export.Height
	if err := raster.SavePNG(path, frame, w, h); err != nil {
		return "", err
	}
	slog.Info("exported", "path", path, "width", w, "height", h)
	r.bookmark(telemetry.ExportBookmark(r.frames, path))
	return path, nil
}

func (r *Runner) emit(ws telemetry.WindowStats) {
	perf := r.perf.Stats()
	if r.opts.LogStats {
		ws.LogStats()
		perf.LogStats()
	}
	if err := r.output.WriteTelemetry(ws); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := r.output.WritePerf(perf, ws.WindowEnd); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
}

func (r *Runner) bookmark(b telemetry.Bookmark) {
	if r.opts.LogStats {
		b.LogBookmark()
	}
	if err := r.output.WriteBookmark(b); err != nil {
		slog.Error("failed to write bookmark", "error", err)
	}
}

// Close flushes the last partial window, unloads the engine and closes the
// output files.
func (r *Runner) Close() error {
	if ws, ok := r.agg.Flush(); ok {
		r.emit(ws)
	}
	r.engine.Unload()
	return r.output.Close()
}
