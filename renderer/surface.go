package renderer

import (
	"image"
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Surface is an offscreen render target kept between frames so the scalar
// engine can leave fading trails. Drawing uses premultiplied alpha so the
// target's own alpha channel stays opaque.
type Surface struct {
	target rl.RenderTexture2D
	width  int32
	height int32
	loaded bool
}

// NewSurface creates a cleared surface. Requires an open window.
func NewSurface(width, height int) *Surface {
	s := &Surface{}
	s.Resize(width, height)
	return s
}

// Resize replaces the render target. The new target starts black.
func (s *Surface) Resize(width, height int) {
	if s.loaded && s.width == int32(width) && s.height == int32(height) {
		return
	}
	s.Unload()
	s.width = int32(width)
	s.height = int32(height)
	s.target = rl.LoadRenderTexture(s.width, s.height)
	s.loaded = true

	rl.BeginTextureMode(s.target)
	rl.ClearBackground(rl.Black)
	rl.EndTextureMode()
}

// Begin redirects drawing into the surface.
func (s *Surface) Begin() {
	rl.BeginTextureMode(s.target)
	rl.BeginBlendMode(rl.BlendAlphaPremultiply)
}

// End restores drawing to the window.
func (s *Surface) End() {
	rl.EndBlendMode()
	rl.EndTextureMode()
}

func premultiplied(alpha float32) color.RGBA {
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	v := uint8(alpha * 255)
	return color.RGBA{R: v, G: v, B: v, A: v}
}

// Fade implements Canvas.
func (s *Surface) Fade(alpha float32) {
	c := premultiplied(alpha)
	c.R, c.G, c.B = 0, 0, 0
	rl.DrawRectangle(0, 0, s.width, s.height, c)
}

// Clear implements Canvas.
func (s *Surface) Clear() {
	rl.ClearBackground(rl.Black)
}

// Disc implements Canvas.
func (s *Surface) Disc(x, y, r, alpha float32) {
	rl.DrawCircleV(rl.Vector2{X: x, Y: y}, r, premultiplied(alpha))
}

// Present draws the surface onto the window at full size.
func (s *Surface) Present() {
	// Render textures are stored bottom-up
	src := rl.Rectangle{X: 0, Y: float32(s.height), Width: float32(s.width), Height: -float32(s.height)}
	dst := rl.Rectangle{X: 0, Y: 0, Width: float32(s.width), Height: float32(s.height)}
	rl.DrawTexturePro(s.target.Texture, src, dst, rl.Vector2{}, 0, rl.White)
}

// Size returns the surface dimensions.
func (s *Surface) Size() (int, int) {
	return int(s.width), int(s.height)
}

// Snapshot reads the surface back into a top-down Go image.
func (s *Surface) Snapshot() *image.RGBA {
	img := rl.LoadImageFromTexture(s.target.Texture)
	defer rl.UnloadImage(img)
	rl.ImageFlipVertical(img)

	colors := rl.LoadImageColors(img)
	defer rl.UnloadImageColors(colors)

	out := image.NewRGBA(image.Rect(0, 0, int(img.Width), int(img.Height)))
	for i, c := range colors {
		out.Pix[i*4+0] = c.R
		out.Pix[i*4+1] = c.G
		out.Pix[i*4+2] = c.B
		out.Pix[i*4+3] = 255
	}
	return out
}

// Unload frees the render target.
func (s *Surface) Unload() {
	if s.loaded {
		rl.UnloadRenderTexture(s.target)
		s.loaded = false
	}
}
