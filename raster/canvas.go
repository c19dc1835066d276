// Package raster is the software rendering path: anti-aliased discs on an
// RGBA image, letterboxed export and PNG encoding. It needs no window and
// backs headless runs and tests.
package raster

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"

	"github.com/pthm-cable/pluribus/shading"
)

// kappa places cubic control points so four curves approximate a circle.
const kappa = 0.5522847498

// Canvas is a white-on-black software canvas.
type Canvas struct {
	img  *image.RGBA
	ras  *vector.Rasterizer
	src  *image.Uniform
	full image.Rectangle
}

// NewCanvas creates a black canvas.
func NewCanvas(width, height int) *Canvas {
	c := &Canvas{
		ras: vector.NewRasterizer(1, 1),
		src: image.NewUniform(color.RGBA{}),
	}
	c.Resize(width, height)
	return c
}

// Resize replaces the backing image with a black one.
func (c *Canvas) Resize(width, height int) {
	width = max(width, 1)
	height = max(height, 1)
	c.full = image.Rect(0, 0, width, height)
	c.img = image.NewRGBA(c.full)
	c.Clear()
}

// Image returns the backing image. It is reused across frames.
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

// Size returns the canvas dimensions.
func (c *Canvas) Size() (int, int) {
	return c.full.Dx(), c.full.Dy()
}

// Clear fills the canvas with opaque black.
func (c *Canvas) Clear() {
	draw.Draw(c.img, c.full, image.Black, image.Point{}, draw.Src)
}

// Fade darkens every pixel as if black were drawn over it at alpha.
func (c *Canvas) Fade(alpha float32) {
	if alpha <= 0 {
		return
	}
	if alpha >= 1 {
		c.Clear()
		return
	}
	keep := 1 - alpha
	pix := c.img.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i+0] = uint8(float32(pix[i+0]) * keep)
		pix[i+1] = uint8(float32(pix[i+1]) * keep)
		pix[i+2] = uint8(float32(pix[i+2]) * keep)
	}
}

// Disc draws an anti-aliased white disc composited over the canvas.
func (c *Canvas) Disc(x, y, r, alpha float32) {
	if r <= 0 || alpha <= 0 {
		return
	}
	if alpha > 1 {
		alpha = 1
	}

	// Rasterize only the disc's bounding box
	minX := int(math.Floor(float64(x - r)))
	minY := int(math.Floor(float64(y - r)))
	maxX := int(math.Ceil(float64(x + r)))
	maxY := int(math.Ceil(float64(y + r)))
	clip := image.Rect(minX, minY, maxX, maxY).Intersect(c.full)
	if clip.Empty() {
		return
	}

	// Path coordinates are relative to the clipped box; the rasterizer
	// clips anything that falls outside it.
	lx := x - float32(clip.Min.X)
	ly := y - float32(clip.Min.Y)
	k := r * kappa

	c.ras.Reset(clip.Dx(), clip.Dy())
	c.ras.DrawOp = draw.Over
	c.ras.MoveTo(lx+r, ly)
	c.ras.CubeTo(lx+r, ly+k, lx+k, ly+r, lx, ly+r)
	c.ras.CubeTo(lx-k, ly+r, lx-r, ly+k, lx-r, ly)
	c.ras.CubeTo(lx-r, ly-k, lx-k, ly-r, lx, ly-r)
	c.ras.CubeTo(lx+k, ly-r, lx+r, ly-k, lx+r, ly)
	c.ras.ClosePath()

	v := uint8(alpha * 255)
	c.src.C = color.RGBA{R: v, G: v, B: v, A: v}
	c.ras.Draw(c.img, clip, c.src, image.Point{})
}

// DrawSamples draws the visible vector-engine points as discs whose
// diameter is the point size.
func DrawSamples(c *Canvas, samples []shading.Sample) {
	for i := range samples {
		s := &samples[i]
		if !s.Keep {
			continue
		}
		c.Disc(s.X, s.Y, s.Size/2, s.Alpha)
	}
}
