// Package config provides configuration loading and access for the particle field.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Text      TextConfig      `yaml:"text"`
	Field     FieldConfig     `yaml:"field"`
	Compact   CompactConfig   `yaml:"compact"`
	Vector    VectorConfig    `yaml:"vector"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Export    ExportConfig    `yaml:"export"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	TargetFPS int    `yaml:"target_fps"`
	Title     string `yaml:"title"`
}

// TextConfig holds text normalization and font sizing parameters.
type TextConfig struct {
	Fallback       string  `yaml:"fallback"`         // Substituted for empty/whitespace input
	BaseDivisor    float64 `yaml:"base_divisor"`     // Base size = width / this
	BaseMax        float64 `yaml:"base_max"`         // Base size ceiling in px
	MaxWidthFrac   float64 `yaml:"max_width_frac"`   // Text must fit this fraction of width
	MaxHeightFrac  float64 `yaml:"max_height_frac"`  // Font size ceiling as fraction of height
	MinSize        float64 `yaml:"min_size"`         // Readability floor in px
	ZeroWidthRatio float64 `yaml:"zero_width_ratio"` // Substitute advance = font size * this
}

// FieldConfig holds scalar engine parameters.
type FieldConfig struct {
	WaveSpeed       float64 `yaml:"wave_speed"`        // px per frame
	WaveFrequency   int     `yaml:"wave_frequency"`    // frames between spawns
	WaveStrength    float64 `yaml:"wave_strength"`     // push strength for background particles
	WaveBandWidth   float64 `yaml:"wave_band_width"`   // radial band around the ring that feels force
	MaxRadiusFactor float64 `yaml:"max_radius_factor"` // max radius = diagonal * this

	BgGridGap  float64 `yaml:"bg_grid_gap"`
	BgJitter   float64 `yaml:"bg_jitter"` // full width of the uniform spawn offset
	BgAlpha    float64 `yaml:"bg_alpha"`
	BgFriction float64 `yaml:"bg_friction"`
	BgSizeMin  float64 `yaml:"bg_size_min"`
	BgSizeSpan float64 `yaml:"bg_size_span"`

	TextureSpacing   float64 `yaml:"texture_spacing"`
	TextureThickness float64 `yaml:"texture_thickness"`
	TextBaseJitter   float64 `yaml:"text_base_jitter"`
	TextAlpha        float64 `yaml:"text_alpha"`
	TextFriction     float64 `yaml:"text_friction"`
	TextSizeMin      float64 `yaml:"text_size_min"`
	TextSizeSpan     float64 `yaml:"text_size_span"`
	SampleStep       int     `yaml:"sample_step"`
	OpacityThreshold uint8   `yaml:"opacity_threshold"`

	GapScaleX float64 `yaml:"gap_scale_x"`
	GapScaleY float64 `yaml:"gap_scale_y"`

	DustBase    int     `yaml:"dust_base"`    // Minimum dust specks per ring
	DustDensity float64 `yaml:"dust_density"` // Additional specks per px of radius
	DustScatter float64 `yaml:"dust_scatter"` // Radial scatter width

	TrailAlpha   float64 `yaml:"trail_alpha"`   // Per-frame fade toward black
	MaxParticles int     `yaml:"max_particles"` // Guard against pathological surfaces
}

// CompactConfig holds overrides applied on small surfaces.
type CompactConfig struct {
	ShortSide        int     `yaml:"short_side"` // Apply when min(w, h) <= this
	TextureSpacing   float64 `yaml:"texture_spacing"`
	TextureThickness float64 `yaml:"texture_thickness"`
	TextBaseJitter   float64 `yaml:"text_base_jitter"`
	BgGridGap        float64 `yaml:"bg_grid_gap"`
	WaveBandWidth    float64 `yaml:"wave_band_width"`
	SampleStep       int     `yaml:"sample_step"`
}

// VectorConfig holds vector engine uniforms.
type VectorConfig struct {
	GridStep       float64 `yaml:"grid_step"`
	MaxVertices    int     `yaml:"max_vertices"`
	NoiseFrequency float64 `yaml:"noise_frequency"`
	NoiseSpeed     float64 `yaml:"noise_speed"`
	NoisePeriod    float64 `yaml:"noise_period"` // Tiling period in noise units
	DepthAmp       float64 `yaml:"depth_amp"`
	JitterAmp      float64 `yaml:"jitter_amp"`
	CameraDistance float64 `yaml:"camera_distance"`
	PointSize      float64 `yaml:"point_size"`

	WaveSpeed  float64 `yaml:"wave_speed"` // px per second
	Wavelength float64 `yaml:"wavelength"` // px between ridges

	HandoffWidth     float64 `yaml:"handoff_width"`
	HandoffThreshold float64 `yaml:"handoff_threshold"`
	HandoffShift     float64 `yaml:"handoff_shift"`

	CurvatureAmp  float64 `yaml:"curvature_amp"`
	CurvatureFreq float64 `yaml:"curvature_freq"`

	TextThreshold   float64 `yaml:"text_threshold"`
	RidgeWidth      float64 `yaml:"ridge_width"`
	RidgeOffset     float64 `yaml:"ridge_offset"`
	BaseAlpha       float64 `yaml:"base_alpha"`
	MinTextAlpha    float64 `yaml:"min_text_alpha"`
	FirstGlyphAlpha float64 `yaml:"first_glyph_alpha"`
	Erosion         float64 `yaml:"erosion"`

	RingAlpha        float64 `yaml:"ring_alpha"`
	RingKeep         float64 `yaml:"ring_keep"`
	CloudAlpha       float64 `yaml:"cloud_alpha"`
	CloudKeep        float64 `yaml:"cloud_keep"`
	DiscardThreshold float64 `yaml:"discard_threshold"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	WindowFrames int `yaml:"window_frames"`
}

// ExportConfig holds static raster export parameters.
type ExportConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	File   string `yaml:"file"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ScreenW32 float32
	ScreenH32 float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.Validate()
	cfg.computeDerived()

	return cfg, nil
}

// Validate clamps values that would stall or divide by zero to safe minima.
// Bad values are substituted, never reported, so the frame loop keeps running.
func (c *Config) Validate() {
	if c.Screen.Width < 1 {
		c.Screen.Width = 1280
	}
	if c.Screen.Height < 1 {
		c.Screen.Height = 720
	}
	if c.Screen.TargetFPS < 1 {
		c.Screen.TargetFPS = 60
	}
	if c.Text.Fallback == "" {
		c.Text.Fallback = "PLUR1BUS"
	}
	if c.Text.BaseDivisor <= 0 {
		c.Text.BaseDivisor = 6
	}
	if c.Text.ZeroWidthRatio <= 0 {
		c.Text.ZeroWidthRatio = 0.6
	}

	c.Field.clamp()

	if c.Vector.GridStep < 1 {
		c.Vector.GridStep = 1
	}
	if c.Vector.CameraDistance <= c.Vector.DepthAmp+c.Vector.CurvatureAmp {
		c.Vector.CameraDistance = c.Vector.DepthAmp + c.Vector.CurvatureAmp + 1
	}
	if c.Vector.Wavelength <= 0 {
		c.Vector.Wavelength = 1
	}
	if c.Vector.NoisePeriod <= 0 {
		c.Vector.NoisePeriod = 64
	}
	if c.Vector.MaxVertices < 1 {
		c.Vector.MaxVertices = 1
	}
	if c.Telemetry.WindowFrames < 1 {
		c.Telemetry.WindowFrames = 120
	}
	if c.Export.Width < 1 || c.Export.Height < 1 {
		c.Export.Width, c.Export.Height = 1200, 630
	}
}

func (f *FieldConfig) clamp() {
	if f.WaveFrequency < 1 {
		f.WaveFrequency = 1
	}
	if f.WaveSpeed <= 0 {
		f.WaveSpeed = 1
	}
	if f.WaveBandWidth <= 0 {
		f.WaveBandWidth = 1
	}
	if f.BgGridGap < 1 {
		f.BgGridGap = 1
	}
	if f.SampleStep < 1 {
		f.SampleStep = 1
	}
	if f.TextureSpacing <= 0 {
		f.TextureSpacing = 1
	}
	f.BgFriction = clampFriction(f.BgFriction)
	f.TextFriction = clampFriction(f.TextFriction)
	if f.MaxParticles < 1 {
		f.MaxParticles = 1
	}
}

// clampFriction keeps friction in (0, 1] so relaxation always converges.
func clampFriction(v float64) float64 {
	if v <= 0 || math.IsNaN(v) {
		return 0.01
	}
	return math.Min(v, 1)
}

// Tuned returns the field config for a surface, applying compact overrides
// when the short side is at or below the compact threshold.
func (c *Config) Tuned(width, height int) (FieldConfig, bool) {
	f := c.Field
	if min(width, height) > c.Compact.ShortSide {
		return f, false
	}

	f.TextureSpacing = c.Compact.TextureSpacing
	f.TextureThickness = c.Compact.TextureThickness
	f.TextBaseJitter = c.Compact.TextBaseJitter
	f.BgGridGap = c.Compact.BgGridGap
	f.WaveBandWidth = c.Compact.WaveBandWidth
	f.SampleStep = c.Compact.SampleStep
	f.clamp()
	return f, true
}

// FieldValue returns the float setting that Tuned reads for the YAML key on
// a compact or regular surface: the compact override when the key has one,
// otherwise the field value. Returns nil for unknown or non-float keys.
func (c *Config) FieldValue(key string, compact bool) *float64 {
	if compact {
		if p := floatField(reflect.ValueOf(&c.Compact).Elem(), key); p != nil {
			return p
		}
	}
	return floatField(reflect.ValueOf(&c.Field).Elem(), key)
}

// floatField finds the float64 field of struct v tagged yaml:"key".
func floatField(v reflect.Value, key string) *float64 {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == key && f.Type.Kind() == reflect.Float64 {
			return v.Field(i).Addr().Interface().(*float64)
		}
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
