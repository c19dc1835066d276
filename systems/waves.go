package systems

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/pluribus/config"
)

// Wave is an expanding ring anchored at the first glyph.
type Wave struct {
	X, Y      float32
	Radius    float32
	MaxRadius float32
}

// Life returns how far the wave has travelled toward its max radius.
func (w Wave) Life() float32 {
	return w.Radius / w.MaxRadius
}

// MaxRadius returns the termination radius for a surface: the diagonal
// scaled by factor.
func MaxRadius(width, height int, factor float64) float32 {
	return float32(math.Hypot(float64(width), float64(height)) * factor)
}

// WaveEmitter spawns and ages wave rings.
// A new emitter is created on every rebuild, so its frame counter starts at zero.
type WaveEmitter struct {
	cfg       config.FieldConfig
	originX   float32
	originY   float32
	maxRadius float32

	frame   int64
	spawned int
	waves   []Wave
}

// NewWaveEmitter creates an emitter whose waves all start at (originX, originY).
func NewWaveEmitter(cfg config.FieldConfig, originX, originY float64, width, height int) *WaveEmitter {
	return &WaveEmitter{
		cfg:       cfg,
		originX:   float32(originX),
		originY:   float32(originY),
		maxRadius: MaxRadius(width, height, cfg.MaxRadiusFactor),
		waves:     make([]Wave, 0, 8),
	}
}

// Tick advances the frame counter and spawns one wave on every
// WaveFrequency-th frame. Reports whether a wave was spawned.
func (e *WaveEmitter) Tick() bool {
	e.frame++
	if e.frame%int64(e.cfg.WaveFrequency) != 0 {
		return false
	}
	e.waves = append(e.waves, Wave{
		X:         e.originX,
		Y:         e.originY,
		MaxRadius: e.maxRadius,
	})
	e.spawned++
	return true
}

// Advance grows every wave by the configured speed and drops the ones that
// have passed their max radius. Survivors keep creation order.
func (e *WaveEmitter) Advance() int {
	speed := float32(e.cfg.WaveSpeed)
	alive := 0
	for i := range e.waves {
		w := e.waves[i]
		w.Radius += speed
		if w.Radius > w.MaxRadius {
			continue
		}
		e.waves[alive] = w
		alive++
	}
	removed := len(e.waves) - alive
	e.waves = e.waves[:alive]
	return removed
}

// Waves returns the active waves in creation order.
// The slice is only valid until the next Tick or Advance.
func (e *WaveEmitter) Waves() []Wave {
	return e.waves
}

// Frame returns the number of frames ticked since creation.
func (e *WaveEmitter) Frame() int64 {
	return e.frame
}

// Spawned returns the total number of waves spawned since creation.
func (e *WaveEmitter) Spawned() int {
	return e.spawned
}

// MaxRadius returns the termination radius shared by all waves.
func (e *WaveEmitter) MaxRadius() float32 {
	return e.maxRadius
}

// Origin returns the spawn point of every wave.
func (e *WaveEmitter) Origin() (float32, float32) {
	return e.originX, e.originY
}

// DustRing emits the ephemeral speckle ring for a wave. The number of
// specks grows linearly with radius; specks are not particles and are not
// retained. Nothing is emitted once the wave is past its max radius.
func (e *WaveEmitter) DustRing(w Wave, rng *rand.Rand, emit func(x, y, size, alpha float32)) {
	life := w.Life()
	if life > 1 {
		return
	}

	alpha := float32(e.cfg.BgAlpha) * (1 - life*0.5)
	count := e.cfg.DustBase + int(math.Floor(float64(w.Radius)*e.cfg.DustDensity))
	scatterWidth := float32(e.cfg.DustScatter)

	for i := 0; i < count; i++ {
		angle := rng.Float64() * 2 * math.Pi
		// Sum of two uniforms: triangular scatter concentrated on the ring
		scatter := (rng.Float32() - 0.5 + rng.Float32() - 0.5) * scatterWidth
		r := float64(w.Radius + scatter)
		x := w.X + float32(math.Cos(angle)*r)
		y := w.Y + float32(math.Sin(angle)*r)
		size := rng.Float32()*float32(e.cfg.BgSizeSpan) + float32(e.cfg.BgSizeMin)
		emit(x, y, size, alpha)
	}
}
