package engine

import (
	"math/rand"

	"github.com/pthm-cable/pluribus/components"
	"github.com/pthm-cable/pluribus/systems"
)

// Canvas is a white-on-black drawing target.
// Alpha values are in [0, 1].
type Canvas interface {
	// Fade darkens the whole canvas toward black by alpha.
	Fade(alpha float32)
	// Clear fills the canvas with opaque black.
	Clear()
	// Disc draws a filled white disc.
	Disc(x, y, r, alpha float32)
}

// DrawField draws one scalar frame: trail fade, background particles, wave
// dust, then text particles on top.
func DrawField(c Canvas, field *systems.ParticleField, emitter *systems.WaveEmitter, trailAlpha float32, rng *rand.Rand) {
	c.Fade(trailAlpha)

	field.ForEach(components.KindBackground, func(pos components.Position, look components.Appearance) {
		c.Disc(pos.X, pos.Y, look.Size, look.Alpha)
	})

	for _, w := range emitter.Waves() {
		emitter.DustRing(w, rng, c.Disc)
	}

	field.ForEach(components.KindText, func(pos components.Position, look components.Appearance) {
		c.Disc(pos.X, pos.Y, look.Size, look.Alpha)
	})
}
