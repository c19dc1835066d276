package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/pthm-cable/pluribus/config"
	"github.com/pthm-cable/pluribus/glyph"
	"github.com/pthm-cable/pluribus/raster"
	"github.com/pthm-cable/pluribus/systems"
)

// HeadlessOptions configure a windowless run.
type HeadlessOptions struct {
	Kind    Kind
	Width   int
	Height  int
	Frames  int    // frames to simulate before exporting
	Out     string // PNG path, empty uses the configured export file
	Workers int    // vector evaluation workers, <= 0 uses every CPU
}

// NewSoftwareEngine builds an engine of the given kind that draws onto a
// software canvas.
func NewSoftwareEngine(kind Kind, canvas *raster.Canvas, cfg *config.Config, seed int64, workers int) (Engine, error) {
	switch kind {
	case Scalar:
		return NewScalarEngine(canvas, seed), nil
	case Vector:
		noise := systems.NewNoise(seed, cfg.Vector.NoisePeriod)
		return NewVectorEngine(canvas, NewSoftwarePoints(canvas, noise, workers)), nil
	default:
		return nil, fmt.Errorf("unknown engine %q", kind)
	}
}

// Headless runs a fixed number of frames at the configured frame rate on a
// software canvas, then exports the last frame. It returns the PNG path.
func Headless(cfg *config.Config, opts Options, h HeadlessOptions) (string, error) {
	width, height := h.Width, h.Height
	if width <= 0 || height <= 0 {
		width, height = cfg.Screen.Width, cfg.Screen.Height
	}
	width, height = glyph.ClampSurface(width, height)

	canvas := raster.NewCanvas(width, height)
	eng, err := NewSoftwareEngine(h.Kind, canvas, cfg, opts.Seed, h.Workers)
	if err != nil {
		return "", err
	}
	r, err := NewRunner(cfg, eng, opts)
	if err != nil {
		eng.Unload()
		return "", err
	}
	defer func() {
		if err := r.Close(); err != nil {
			slog.Error("failed to close output", "error", err)
		}
	}()

	slog.Info("starting headless run",
		"engine", string(h.Kind),
		"width", width,
		"height", height,
		"frames", h.Frames,
		"seed", opts.Seed,
	)

	start := time.Now()
	dt := 1 / float64(cfg.Screen.TargetFPS)
	r.BeginFrame()
	r.Rebuild(opts.Text, width, height)
	for i := 0; i < h.Frames; i++ {
		if i > 0 {
			r.BeginFrame()
		}
		r.Update()
		r.Draw()
		r.EndFrame(dt)
	}
	if h.Frames <= 0 {
		// Nothing stepped; draw the freshly built scene once
		r.Draw()
	}

	path, err := r.Export(canvas.Image(), h.Out)
	if err != nil {
		return "", err
	}
	slog.Info("headless run finished",
		"frames", r.Frames(),
		"elapsed_ms", time.Since(start).Milliseconds(),
		"out", path,
	)
	return path, nil
}
