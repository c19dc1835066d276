package systems

import (
	"log/slog"
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/pluribus/components"
	"github.com/pthm-cable/pluribus/config"
	"github.com/pthm-cable/pluribus/glyph"
)

// ParticleState is a copy of one particle, used by tests and telemetry.
type ParticleState struct {
	Kind         components.Kind
	X, Y         float32
	BaseX, BaseY float32
	Size         float32
	Alpha        float32
}

// ParticleField owns the scalar engine's particles.
// Every Init builds a fresh world, so no particle survives a rebuild.
type ParticleField struct {
	cfg config.FieldConfig
	rng *rand.Rand

	world  *ecs.World
	mapper *ecs.Map4[components.Position, components.Anchor, components.Appearance, components.Dynamics]
	filter *ecs.Filter4[components.Position, components.Anchor, components.Appearance, components.Dynamics]

	numBackground int
	numText       int
	capped        bool
}

// NewParticleField creates an empty field. rng drives generation and jitter.
func NewParticleField(rng *rand.Rand) *ParticleField {
	f := &ParticleField{rng: rng}
	f.reset()
	return f
}

func (f *ParticleField) reset() {
	world := ecs.NewWorld()
	f.world = world
	f.mapper = ecs.NewMap4[components.Position, components.Anchor, components.Appearance, components.Dynamics](world)
	f.filter = ecs.NewFilter4[components.Position, components.Anchor, components.Appearance, components.Dynamics](world)
	f.numBackground = 0
	f.numText = 0
	f.capped = false
}

// Init replaces all particles with a fresh generation for mask.
// Background particles fill a jittered grid outside the glyph ellipses;
// text particles fill the glyph interiors along a concentric-ring texture.
func (f *ParticleField) Init(mask *glyph.Mask, cfg config.FieldConfig) {
	f.cfg = cfg
	f.reset()

	// Text first so the glyphs stay legible when the cap is hit
	f.spawnText(mask)
	zones := ExclusionZones(mask, cfg.GapScaleX, cfg.GapScaleY)
	f.spawnBackground(mask.Width, mask.Height, zones)

	if f.capped {
		slog.Warn("particle cap reached",
			"max", cfg.MaxParticles,
			"background", f.numBackground,
			"text", f.numText,
		)
	}
}

func (f *ParticleField) full() bool {
	if f.cfg.MaxParticles > 0 && f.numBackground+f.numText >= f.cfg.MaxParticles {
		f.capped = true
		return true
	}
	return false
}

func (f *ParticleField) spawn(x, y float32, look components.Appearance, dyn components.Dynamics) {
	pos := components.Position{X: x, Y: y}
	anchor := components.Anchor{X: x, Y: y}
	f.mapper.NewEntity(&pos, &anchor, &look, &dyn)
}

func (f *ParticleField) spawnBackground(width, height int, zones []Ellipse) {
	gap := f.cfg.BgGridGap
	jitter := f.cfg.BgJitter
	if gap <= 0 {
		return
	}
	for gy := 0.0; gy < float64(height); gy += gap {
		for gx := 0.0; gx < float64(width); gx += gap {
			// Membership is decided on the grid point so counts do not depend on the rng
			if InsideAny(zones, gx, gy) {
				continue
			}
			if f.full() {
				return
			}
			x := float32(gx + (f.rng.Float64()-0.5)*jitter)
			y := float32(gy + (f.rng.Float64()-0.5)*jitter)
			size := float32(f.rng.Float64()*f.cfg.BgSizeSpan + f.cfg.BgSizeMin)
			f.spawn(x, y,
				components.Appearance{Size: size, BaseAlpha: float32(f.cfg.BgAlpha), Alpha: float32(f.cfg.BgAlpha)},
				components.Dynamics{
					Kind:     components.KindBackground,
					Friction: float32(f.cfg.BgFriction),
					Push:     float32(f.cfg.WaveStrength),
				},
			)
			f.numBackground++
		}
	}
}

// OnTextureRing reports whether (x, y) lies on one of the concentric rings
// centered at (ax, ay). Rings are squashed vertically and gently warped.
func OnTextureRing(x, y, ax, ay, spacing, thickness float64) bool {
	dx := x - ax
	dy := y - ay
	d := math.Sqrt(dx*dx+(2*dy)*(2*dy)) + math.Sin(dy*0.05)*2
	return math.Mod(d, spacing) < thickness
}

func (f *ParticleField) spawnText(mask *glyph.Mask) {
	step := f.cfg.SampleStep
	if step < 1 {
		step = 1
	}
	ax, ay := mask.Anchor.X, mask.Anchor.Y
	for y := 0; y < mask.Height; y += step {
		for x := 0; x < mask.Width; x += step {
			if !mask.Covered(x, y, f.cfg.OpacityThreshold) {
				continue
			}
			if !OnTextureRing(float64(x), float64(y), ax, ay, f.cfg.TextureSpacing, f.cfg.TextureThickness) {
				continue
			}
			if f.full() {
				return
			}
			size := float32(f.rng.Float64()*f.cfg.TextSizeSpan + f.cfg.TextSizeMin)
			f.spawn(float32(x), float32(y),
				components.Appearance{Size: size, BaseAlpha: float32(f.cfg.TextAlpha), Alpha: float32(f.cfg.TextAlpha)},
				components.Dynamics{
					Kind:     components.KindText,
					Friction: float32(f.cfg.TextFriction),
					Jitter:   float32(f.cfg.TextBaseJitter),
				},
			)
			f.numText++
		}
	}
}

// Update advances every particle one frame against the active waves.
// Jitter and wave pulls are summed from the pre-update position, applied,
// and then the particle relaxes toward its anchor by its friction.
func (f *ParticleField) Update(waves []Wave) {
	band := float32(f.cfg.WaveBandWidth)

	query := f.filter.Query()
	for query.Next() {
		pos, anchor, look, dyn := query.Get()
		look.Alpha = look.BaseAlpha

		var pushX, pushY float32
		if dyn.Jitter > 0 {
			pushX += (f.rng.Float32() - 0.5) * dyn.Jitter
			pushY += (f.rng.Float32() - 0.5) * dyn.Jitter
		}

		if dyn.Push > 0 && band > 0 {
			for i := range waves {
				w := &waves[i]
				dx := pos.X - w.X
				dy := pos.Y - w.Y
				dist := float32(math.Sqrt(float64(dx*dx + dy*dy)))
				diff := dist - w.Radius
				if diff < 0 {
					diff = -diff
				}
				if diff >= band || dist == 0 {
					continue
				}
				falloff := 1 - diff/band
				falloff *= falloff

				// Pull toward the nearest point on the ring
				pullX := w.X + dx/dist*w.Radius - pos.X
				pullY := w.Y + dy/dist*w.Radius - pos.Y
				pushX += pullX * dyn.Push * falloff
				pushY += pullY * dyn.Push * falloff
			}
		}

		pos.X += pushX
		pos.Y += pushY

		pos.X -= (pos.X - anchor.X) * dyn.Friction
		pos.Y -= (pos.Y - anchor.Y) * dyn.Friction
	}
}

// ForEach visits every particle of the given kind.
func (f *ParticleField) ForEach(kind components.Kind, fn func(pos components.Position, look components.Appearance)) {
	query := f.filter.Query()
	for query.Next() {
		pos, _, look, dyn := query.Get()
		if dyn.Kind != kind {
			continue
		}
		fn(*pos, *look)
	}
}

// Counts returns the number of background and text particles.
func (f *ParticleField) Counts() (background, text int) {
	return f.numBackground, f.numText
}

// Len returns the total particle count.
func (f *ParticleField) Len() int {
	return f.numBackground + f.numText
}

// Capped reports whether the last Init stopped at the particle cap.
func (f *ParticleField) Capped() bool {
	return f.capped
}

// Snapshot copies all particles.
func (f *ParticleField) Snapshot() []ParticleState {
	out := make([]ParticleState, 0, f.Len())
	query := f.filter.Query()
	for query.Next() {
		pos, anchor, look, dyn := query.Get()
		out = append(out, ParticleState{
			Kind:  dyn.Kind,
			X:     pos.X,
			Y:     pos.Y,
			BaseX: anchor.X,
			BaseY: anchor.Y,
			Size:  look.Size,
			Alpha: look.Alpha,
		})
	}
	return out
}

// MeanDisplacement returns the average distance between particles and
// their anchors.
func (f *ParticleField) MeanDisplacement() float64 {
	var sum float64
	n := 0
	query := f.filter.Query()
	for query.Next() {
		pos, anchor, _, _ := query.Get()
		dx := float64(pos.X - anchor.X)
		dy := float64(pos.Y - anchor.Y)
		sum += math.Sqrt(dx*dx + dy*dy)
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
