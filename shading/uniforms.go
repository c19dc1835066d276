// Package shading models the vector engine's point shaders on the CPU.
//
// Vertex and Fragment mirror renderer/shaders/points.vs and points.fs
// formula for formula. The software renderer and the tests run them
// directly; the GPU path only consumes Uniforms and Grid.
package shading

import (
	"math"

	"github.com/pthm-cable/pluribus/config"
	"github.com/pthm-cable/pluribus/glyph"
)

// Scalar is a named float uniform as it appears in the GLSL source.
type Scalar struct {
	Name  string
	Value float32
}

// Uniforms holds every value the point shaders read. Surface fields change
// on rebuild; Time and Cycle change every frame.
type Uniforms struct {
	Time       float32
	Cycle      float32
	Resolution [2]float32
	Anchor     [2]float32
	FirstBox   [4]float32

	NoiseFrequency float32
	NoiseSpeed     float32
	DepthAmp       float32
	JitterAmp      float32
	CameraDistance float32
	PointSize      float32

	WaveSpeed        float32
	Wavelength       float32
	HandoffWidth     float32
	HandoffThreshold float32
	HandoffShift     float32
	CurvatureAmp     float32
	CurvatureFreq    float32

	TextThreshold    float32
	RidgeWidth       float32
	RidgeOffset      float32
	BaseAlpha        float32
	MinTextAlpha     float32
	FirstGlyphAlpha  float32
	Erosion          float32
	RingAlpha        float32
	RingKeep         float32
	CloudAlpha       float32
	CloudKeep        float32
	DiscardThreshold float32
}

// NewUniforms copies the tunables out of the vector config.
func NewUniforms(cfg config.VectorConfig) Uniforms {
	wavelength := cfg.Wavelength
	if wavelength <= 0 {
		wavelength = 1
	}
	cam := cfg.CameraDistance
	if cam <= 0 {
		cam = 1
	}
	return Uniforms{
		NoiseFrequency:   float32(cfg.NoiseFrequency),
		NoiseSpeed:       float32(cfg.NoiseSpeed),
		DepthAmp:         float32(cfg.DepthAmp),
		JitterAmp:        float32(cfg.JitterAmp),
		CameraDistance:   float32(cam),
		PointSize:        float32(cfg.PointSize),
		WaveSpeed:        float32(cfg.WaveSpeed),
		Wavelength:       float32(wavelength),
		HandoffWidth:     float32(cfg.HandoffWidth),
		HandoffThreshold: float32(cfg.HandoffThreshold),
		HandoffShift:     float32(cfg.HandoffShift),
		CurvatureAmp:     float32(cfg.CurvatureAmp),
		CurvatureFreq:    float32(cfg.CurvatureFreq),
		TextThreshold:    float32(cfg.TextThreshold),
		RidgeWidth:       float32(cfg.RidgeWidth),
		RidgeOffset:      float32(cfg.RidgeOffset),
		BaseAlpha:        float32(cfg.BaseAlpha),
		MinTextAlpha:     float32(cfg.MinTextAlpha),
		FirstGlyphAlpha:  float32(cfg.FirstGlyphAlpha),
		Erosion:          float32(cfg.Erosion),
		RingAlpha:        float32(cfg.RingAlpha),
		RingKeep:         float32(cfg.RingKeep),
		CloudAlpha:       float32(cfg.CloudAlpha),
		CloudKeep:        float32(cfg.CloudKeep),
		DiscardThreshold: float32(cfg.DiscardThreshold),
	}
}

// SetSurface points the uniforms at a freshly sampled mask.
func (u *Uniforms) SetSurface(mask *glyph.Mask) {
	u.Resolution = [2]float32{float32(mask.Width), float32(mask.Height)}
	u.Anchor = [2]float32{float32(mask.Anchor.X), float32(mask.Anchor.Y)}
	u.FirstBox = mask.FirstLetterBox()
}

// SetTime advances the clock. Cycle counts completed wavelengths and
// reseeds the per-wave sparkle hashes.
func (u *Uniforms) SetTime(t float64) {
	u.Time = float32(t)
	u.Cycle = float32(math.Floor(t * float64(u.WaveSpeed) / float64(u.Wavelength)))
}

// Scalars lists the float uniforms that only change on rebuild, keyed by
// their GLSL names.
func (u *Uniforms) Scalars() []Scalar {
	return []Scalar{
		{"uNoiseFrequency", u.NoiseFrequency},
		{"uNoiseSpeed", u.NoiseSpeed},
		{"uDepthAmp", u.DepthAmp},
		{"uJitterAmp", u.JitterAmp},
		{"uCameraDistance", u.CameraDistance},
		{"uPointSize", u.PointSize},
		{"uWaveSpeed", u.WaveSpeed},
		{"uWavelength", u.Wavelength},
		{"uHandoffWidth", u.HandoffWidth},
		{"uHandoffThreshold", u.HandoffThreshold},
		{"uHandoffShift", u.HandoffShift},
		{"uCurvatureAmp", u.CurvatureAmp},
		{"uCurvatureFreq", u.CurvatureFreq},
		{"uTextThreshold", u.TextThreshold},
		{"uRidgeWidth", u.RidgeWidth},
		{"uRidgeOffset", u.RidgeOffset},
		{"uBaseAlpha", u.BaseAlpha},
		{"uMinTextAlpha", u.MinTextAlpha},
		{"uFirstGlyphAlpha", u.FirstGlyphAlpha},
		{"uErosion", u.Erosion},
		{"uRingAlpha", u.RingAlpha},
		{"uRingKeep", u.RingKeep},
		{"uCloudAlpha", u.CloudAlpha},
		{"uCloudKeep", u.CloudKeep},
		{"uDiscardThreshold", u.DiscardThreshold},
	}
}
