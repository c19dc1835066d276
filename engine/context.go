package engine

import (
	"github.com/pthm-cable/pluribus/config"
	"github.com/pthm-cable/pluribus/glyph"
)

// Context is everything an engine needs to build and advance one scene:
// the normalized text on a surface, the tuning for that surface and the
// sampled mask. It is replaced wholesale on any text or size change.
type Context struct {
	Config *config.Config
	Seed   int64

	Text    string
	Width   int
	Height  int
	Compact bool
	Field   config.FieldConfig
	Mask    *glyph.Mask

	Frame int64   // frames since the context was built
	Time  float64 // seconds since the context was built
}

// NewContext normalizes text, clamps the surface, picks the field tuning for
// the surface size and samples the glyph mask.
func NewContext(cfg *config.Config, text string, width, height int, seed int64) *Context {
	width, height = glyph.ClampSurface(width, height)
	field, compact := cfg.Tuned(width, height)
	mask := glyph.Sample(text, width, height, cfg.Text)

	return &Context{
		Config:  cfg,
		Seed:    seed,
		Text:    mask.Text,
		Width:   width,
		Height:  height,
		Compact: compact,
		Field:   field,
		Mask:    mask,
	}
}

// Advance moves the clock past the frame that was just drawn.
func (c *Context) Advance(dt float64) {
	if dt < 0 {
		dt = 0
	}
	c.Frame++
	c.Time += dt
}

// Matches reports whether a rebuild for text on a width x height surface
// would produce this same context.
func (c *Context) Matches(text string, width, height int) bool {
	width, height = glyph.ClampSurface(width, height)
	return c.Width == width && c.Height == height &&
		c.Text == glyph.Normalize(text, c.Config.Text.Fallback)
}
