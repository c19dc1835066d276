package systems

import (
	"math"

	"github.com/ojrac/opensimplex-go"
)

// Noise generates coherent simplex noise that tiles in x and y.
type Noise struct {
	src    opensimplex.Noise
	period float64
	radius float64
}

// NewNoise creates a noise source repeating every period units on both axes.
// Non-positive periods fall back to 256.
func NewNoise(seed int64, period float64) *Noise {
	if period <= 0 {
		period = 256
	}
	return &Noise{
		src:    opensimplex.New(seed),
		period: period,
		radius: period / (2 * math.Pi),
	}
}

// Period returns the tiling period.
func (n *Noise) Period() float64 {
	return n.period
}

// Eval returns a value in roughly [-1, 1] at (x, y) and time t.
// Each axis is wrapped onto a circle in 4D so Eval(x+period, y, t) equals
// Eval(x, y, t). Time slides along the diagonal of the first pair.
func (n *Noise) Eval(x, y, t float64) float64 {
	ax := 2 * math.Pi * x / n.period
	ay := 2 * math.Pi * y / n.period
	return n.src.Eval4(
		n.radius*math.Cos(ax)+t,
		n.radius*math.Sin(ax)+t,
		n.radius*math.Cos(ay),
		n.radius*math.Sin(ay),
	)
}
