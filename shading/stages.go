package shading

import "math"

// MaskSampler returns glyph coverage in [0, 1] at normalized coordinates.
// *glyph.Mask satisfies it.
type MaskSampler interface {
	Intensity(u, v float64) float64
}

// NoiseSource returns coherent noise in roughly [-1, 1].
// *systems.Noise satisfies it.
type NoiseSource interface {
	Eval(x, y, t float64) float64
}

// VertexOut is the vertex stage result for one grid point.
type VertexOut struct {
	X, Y    float32 // screen position
	Z       float32 // depth offset toward the camera
	Size    float32 // point diameter in pixels
	D       float32 // rest distance from the anchor, passed to the fragment stage
	N       float32 // vertex noise in [-1, 1], passed to the fragment stage
	Handoff float32
}

// FragmentIn carries the interpolated inputs of one point's fragments.
type FragmentIn struct {
	U, V float32
	D    float32
	N    float32
}

func fract(x float64) float64 {
	return x - math.Floor(x)
}

func step(edge, x float64) float64 {
	if x < edge {
		return 0
	}
	return 1
}

func smoothstep(e0, e1, x float64) float64 {
	t := (x - e0) / (e1 - e0)
	t = math.Max(0, math.Min(1, t))
	return t * t * (3 - 2*t)
}

// hash is the classic sin-fract hash of a 2D point, in [0, 1).
func hash(x, y float64) float64 {
	return fract(math.Sin(x*12.9898+y*78.233) * 43758.5453)
}

// Vertex displaces one grid point and projects it.
func Vertex(in GridVertex, u *Uniforms, mask MaskSampler, noise NoiseSource) VertexOut {
	t := float64(u.Time)
	x, y := float64(in.X), float64(in.Y)
	freq := float64(u.NoiseFrequency)
	nt := t * float64(u.NoiseSpeed)

	n1 := noise.Eval(x*freq, y*freq, nt)
	n2 := noise.Eval(x*freq+31.7, y*freq-11.3, nt)
	m := mask.Intensity(float64(in.U), float64(in.V))

	px := x + n1*float64(u.JitterAmp)
	py := y + n2*float64(u.JitterAmp)
	z := n1 * float64(u.DepthAmp)

	// Handoff: background points slip sideways just behind each wavefront
	d := math.Hypot(x-float64(u.Anchor[0]), y-float64(u.Anchor[1]))
	front := fract((d - t*float64(u.WaveSpeed)) / float64(u.Wavelength))
	h := smoothstep(1-float64(u.HandoffWidth), 1, front) *
		step(float64(u.HandoffThreshold), 0.5+0.5*n2) *
		(1 - m)
	px += h * float64(u.HandoffShift)

	// Curvature bends text points only
	bend := math.Sin(float64(in.U)*float64(u.CurvatureFreq)+t) * float64(u.CurvatureAmp) * m
	z += bend
	py += bend * 0.25

	cam := float64(u.CameraDistance)
	depth := math.Max(cam-z, 1)
	scale := cam / depth
	cx := float64(u.Resolution[0]) / 2
	cy := float64(u.Resolution[1]) / 2

	size := float64(u.PointSize) * scale * (1 + 0.35*n1)
	if size < 0.5 {
		size = 0.5
	}

	return VertexOut{
		X:       float32(cx + (px-cx)*scale),
		Y:       float32(cy + (py-cy)*scale),
		Z:       float32(z),
		Size:    float32(size),
		D:       float32(d),
		N:       float32(n1),
		Handoff: float32(h),
	}
}

// Fragment computes the alpha of a point. Text points are always kept and
// never drop below the minimum text alpha; background points show only on
// sparse ring and cloud sparkles and are discarded when too faint.
func Fragment(in FragmentIn, u *Uniforms, mask MaskSampler) (float32, bool) {
	uu, vv := float64(in.U), float64(in.V)
	m := mask.Intensity(uu, vv)
	tau := 2 * math.Pi
	wl := float64(u.Wavelength)
	phase := float64(in.D)/wl*tau - float64(u.Time)*float64(u.WaveSpeed)/wl*tau
	w := math.Sin(phase)
	rw := float64(u.RidgeWidth)
	cycle := float64(u.Cycle)

	var alpha float64
	if m > float64(u.TextThreshold) {
		dither := hash(uu*float64(u.Resolution[0]), vv*float64(u.Resolution[1]))
		base := float64(u.BaseAlpha) * (0.8 + 0.2*dither)
		ridge := math.Max(
			smoothstep(1-rw, 1, w),
			smoothstep(1-rw, 1, math.Sin(phase+float64(u.RidgeOffset))),
		)
		trough := smoothstep(0, 1, -w)
		alpha = base*(1-float64(u.Erosion)*trough) + ridge*(1-base)
		alpha = math.Max(alpha, float64(u.MinTextAlpha))

		box := u.FirstBox
		if in.U >= box[0] && in.U <= box[2] && in.V >= box[1] && in.V <= box[3] {
			alpha = math.Max(alpha, float64(u.FirstGlyphAlpha))
		}
	} else {
		ring := smoothstep(1-rw, 1, w) * step(float64(u.RingKeep), hash(uu+cycle, vv+cycle))
		gap := 1 - smoothstep(0.2, 1, -w)
		// Cloud sparkles thin out where the vertex noise is low
		cloud := step(float64(u.CloudKeep), hash(uu*1.7+cycle, vv*1.7+cycle)) * float64(u.CloudAlpha)
		cloud *= 0.5 + 0.5*float64(in.N)
		alpha = math.Max(ring*float64(u.RingAlpha), cloud) * gap
	}

	if alpha < float64(u.DiscardThreshold) {
		return 0, false
	}
	return float32(math.Min(alpha, 1)), true
}

// PointMask reports whether a point-sprite corner coordinate in [-1, 1]²
// falls inside the round point.
func PointMask(cx, cy float32) bool {
	return cx*cx+cy*cy <= 1
}
