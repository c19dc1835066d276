// Field preview tool - interactive tuning of both engines with sliders.
//
// Usage: go run ./cmd/fieldpreview -text hello
package main

import (
	"flag"
	"fmt"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/pluribus/config"
	"github.com/pthm-cable/pluribus/engine"
	"github.com/pthm-cable/pluribus/game"
	"github.com/pthm-cable/pluribus/renderer"
)

const (
	windowWidth  = 1100
	windowHeight = 720
	previewW     = 640
	previewH     = 336
	panelX       = previewW + 20
	panelWidth   = windowWidth - panelX - 10
)

// slider binds one config value to a SliderBar.
type slider struct {
	label    string
	min, max float32
	format   string
	value    func(p *preview) *float64
}

func vectorSlider(label string, min, max float32, format string, value func(v *config.VectorConfig) *float64) slider {
	return slider{label, min, max, format, func(p *preview) *float64 { return value(&p.cfg.Vector) }}
}

// fieldSlider edits whatever Tuned reads for key on the preview surface, so
// compact overrides are tuned when the preview is compact.
func fieldSlider(label, key string, min, max float32, format string) slider {
	return slider{label, min, max, format, func(p *preview) *float64 { return p.cfg.FieldValue(key, p.ctx.Compact) }}
}

var vectorSliders = []slider{
	vectorSlider("Noise frequency", 0.001, 0.05, "%.4f", func(v *config.VectorConfig) *float64 { return &v.NoiseFrequency }),
	vectorSlider("Noise speed", 0, 2, "%.2f", func(v *config.VectorConfig) *float64 { return &v.NoiseSpeed }),
	vectorSlider("Depth amp", 0, 120, "%.1f", func(v *config.VectorConfig) *float64 { return &v.DepthAmp }),
	vectorSlider("Wave speed (px/s)", 50, 1000, "%.0f", func(v *config.VectorConfig) *float64 { return &v.WaveSpeed }),
	vectorSlider("Wavelength (px)", 100, 2000, "%.0f", func(v *config.VectorConfig) *float64 { return &v.Wavelength }),
	vectorSlider("Handoff width", 0.01, 0.3, "%.3f", func(v *config.VectorConfig) *float64 { return &v.HandoffWidth }),
	vectorSlider("Handoff threshold", 0, 1, "%.2f", func(v *config.VectorConfig) *float64 { return &v.HandoffThreshold }),
	vectorSlider("Curvature amp", 0, 40, "%.1f", func(v *config.VectorConfig) *float64 { return &v.CurvatureAmp }),
	vectorSlider("Erosion", 0, 1, "%.2f", func(v *config.VectorConfig) *float64 { return &v.Erosion }),
	vectorSlider("Ring keep", 0, 1, "%.3f", func(v *config.VectorConfig) *float64 { return &v.RingKeep }),
	vectorSlider("Cloud keep", 0.9, 1, "%.3f", func(v *config.VectorConfig) *float64 { return &v.CloudKeep }),
}

var scalarSliders = []slider{
	fieldSlider("Wave speed (px/frame)", "wave_speed", 1, 20, "%.1f"),
	fieldSlider("Wave strength", "wave_strength", 0, 10, "%.2f"),
	fieldSlider("Wave band width", "wave_band_width", 10, 200, "%.0f"),
	fieldSlider("Background gap", "bg_grid_gap", 4, 40, "%.1f"),
	fieldSlider("Texture spacing", "texture_spacing", 2, 20, "%.1f"),
	fieldSlider("Texture thickness", "texture_thickness", 0.5, 8, "%.2f"),
	fieldSlider("Text friction", "text_friction", 0.5, 0.99, "%.3f"),
	fieldSlider("Trail alpha", "trail_alpha", 0.01, 1, "%.2f"),
}

// preview owns the engine under tuning and its surface.
type preview struct {
	cfg     config.Config
	text    string
	seed    int64
	kind    engine.Kind
	surface *renderer.Surface
	engine  engine.Engine
	ctx     *engine.Context
}

func (p *preview) setKind(kind engine.Kind) error {
	var eng engine.Engine
	switch kind {
	case engine.Vector:
		points := game.NewGPUPoints()
		if !points.Valid() {
			points.Unload()
			return fmt.Errorf("point shader failed to compile")
		}
		eng = engine.NewVectorEngine(p.surface, points)
	default:
		eng = engine.NewScalarEngine(p.surface, p.seed)
	}
	if p.engine != nil {
		p.engine.Unload()
	}
	p.kind = kind
	p.engine = eng
	p.rebuild()
	return nil
}

// rebuild regenerates the scene from the tuned config, keeping the clock.
func (p *preview) rebuild() {
	var t float64
	if p.ctx != nil {
		t = p.ctx.Time
	}
	p.ctx = engine.NewContext(&p.cfg, p.text, previewW, previewH, p.seed)
	p.ctx.Time = t
	p.engine.Rebuild(p.ctx)
}

func (p *preview) sliders() []slider {
	if p.kind == engine.Vector {
		return vectorSliders
	}
	return scalarSliders
}

// yaml renders the tuned sections of the config. A compact preview also
// renders the compact overrides it was drawn with.
func (p *preview) yaml() string {
	sections := map[string]any{}
	if p.kind == engine.Vector {
		sections["vector"] = p.cfg.Vector
	} else {
		sections["field"] = p.cfg.Field
		if p.ctx.Compact {
			sections["compact"] = p.cfg.Compact
		}
	}
	data, err := yaml.Marshal(sections)
	if err != nil {
		return err.Error()
	}
	return string(data)
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	text := flag.String("text", "", "Preview text (empty = configured fallback)")
	kindName := flag.String("engine", "vector", "Engine to start with: scalar or vector")
	seed := flag.Int64("seed", 12345, "RNG seed")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	kind, err := engine.ParseKind(*kindName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	rl.InitWindow(windowWidth, windowHeight, "Field Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	p := &preview{
		cfg:     *config.Cfg(),
		text:    *text,
		seed:    *seed,
		surface: renderer.NewSurface(previewW, previewH),
	}
	defer p.surface.Unload()
	if err := p.setKind(kind); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { p.engine.Unload() }()

	animating := true
	defaults := *config.Cfg()

	for !rl.WindowShouldClose() {
		p.engine.Step(p.ctx)

		p.surface.Begin()
		p.engine.Draw(p.ctx)
		p.surface.End()

		if animating {
			p.ctx.Advance(float64(rl.GetFrameTime()))
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)
		p.surface.Present()
		rl.DrawRectangleLines(0, 0, previewW, previewH, rl.DarkGray)

		// Stats under the preview
		stats := p.engine.Stats()
		statsY := int32(previewH + 15)
		rl.DrawText(fmt.Sprintf("%s  %dx%d  compact=%v", p.ctx.Text, p.ctx.Width, p.ctx.Height, p.ctx.Compact), 15, statsY, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Time: %.1f  Frame: %d", p.ctx.Time, p.ctx.Frame), 15, statsY+20, 16, rl.DarkGray)
		if p.kind == engine.Scalar {
			rl.DrawText(fmt.Sprintf("bg: %d  text: %d  waves: %d  capped=%v", stats.Background, stats.Text, stats.Waves, stats.Capped), 15, statsY+40, 16, rl.DarkGray)
		}

		// Control panel
		panelY := float32(10)
		title := fmt.Sprintf("%s engine", p.kind)
		if p.kind == engine.Scalar && p.ctx.Compact {
			title += " (compact overrides)"
		}
		rl.DrawText(title, int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		changed := false
		for _, s := range p.sliders() {
			v := s.value(p)
			rl.DrawText(s.label, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 18
			nv := gui.SliderBar(
				rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
				"", "",
				float32(*v), s.min, s.max,
			)
			rl.DrawText(fmt.Sprintf(s.format, *v), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
			if nv != float32(*v) {
				*v = float64(nv)
				changed = true
			}
			panelY += 30
		}
		if changed {
			p.rebuild()
		}
		panelY += 10

		// Buttons
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(animating, "Pause", "Animate")) {
			animating = !animating
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset Time") {
			p.ctx = nil
			p.rebuild()
		}
		panelY += 40

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(p.kind == engine.Vector, "Scalar", "Vector")) {
			next := engine.Vector
			if p.kind == engine.Vector {
				next = engine.Scalar
			}
			if err := p.setKind(next); err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			p.cfg = defaults
			p.rebuild()
		}

		// Instructions
		rl.DrawText("Press C to copy YAML to clipboard, Y to print it", int32(panelX), int32(windowHeight-30), 12, rl.Gray)

		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(p.yaml())
		}
		if rl.IsKeyPressed(rl.KeyY) {
			fmt.Print(p.yaml())
		}

		rl.EndDrawing()
	}
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
