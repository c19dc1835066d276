// Package glyph rasterizes text into a coverage mask and answers
// point and bilinear coverage queries against it.
package glyph

import (
	"image"
	"math"
)

// Point is a position on the render surface in pixels.
type Point struct {
	X, Y float64
}

// Letter describes one laid-out glyph of the mask text.
type Letter struct {
	Rune    rune
	Left    float64 // Left edge of the advance box
	Advance float64 // Advance width (never zero, see Sample)
	Center  Point
}

// Mask is a rasterized text coverage field over the render surface.
// It is immutable once built and replaced wholesale on text or size change.
type Mask struct {
	Text     string
	Width    int
	Height   int
	FontSize float64
	Anchor   Point // Center of the first glyph, the origin of every wave
	Letters  []Letter

	// Coverage holds one alpha sample (0-255) per pixel, row-major.
	Coverage []uint8
}

// At returns the coverage at pixel (x, y), or 0 outside the surface.
func (m *Mask) At(x, y int) uint8 {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return 0
	}
	return m.Coverage[y*m.Width+x]
}

// Covered reports whether pixel (x, y) is a glyph pixel at the given threshold.
func (m *Mask) Covered(x, y int, threshold uint8) bool {
	return m.At(x, y) > threshold
}

// Intensity returns bilinearly interpolated coverage in [0, 1] at normalized
// surface coordinates (u, v). Samples clamp to the edge like a GL texture
// with CLAMP_TO_EDGE wrapping and texel-center addressing.
func (m *Mask) Intensity(u, v float64) float64 {
	if m.Width == 0 || m.Height == 0 {
		return 0
	}

	fx := u*float64(m.Width) - 0.5
	fy := v*float64(m.Height) - 0.5

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	fracX := fx - float64(x0)
	fracY := fy - float64(y0)

	x1 := clampInt(x0+1, 0, m.Width-1)
	y1 := clampInt(y0+1, 0, m.Height-1)
	x0 = clampInt(x0, 0, m.Width-1)
	y0 = clampInt(y0, 0, m.Height-1)

	v00 := float64(m.Coverage[y0*m.Width+x0])
	v10 := float64(m.Coverage[y0*m.Width+x1])
	v01 := float64(m.Coverage[y1*m.Width+x0])
	v11 := float64(m.Coverage[y1*m.Width+x1])

	v0 := v00 + (v10-v00)*fracX
	v1 := v01 + (v11-v01)*fracX
	return (v0 + (v1-v0)*fracY) / 255
}

// Bounds returns the bounding box of pixels above threshold.
// The rectangle is empty when no pixel qualifies.
func (m *Mask) Bounds(threshold uint8) image.Rectangle {
	minX, minY := m.Width, m.Height
	maxX, maxY := -1, -1
	for y := 0; y < m.Height; y++ {
		row := m.Coverage[y*m.Width : (y+1)*m.Width]
		for x, c := range row {
			if c <= threshold {
				continue
			}
			minX = min(minX, x)
			maxX = max(maxX, x)
			minY = min(minY, y)
			maxY = max(maxY, y)
		}
	}
	if maxX < 0 {
		return image.Rectangle{}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// Count returns the number of glyph pixels above threshold visited by a
// grid walk with the given stride.
func (m *Mask) Count(threshold uint8, step int) int {
	if step < 1 {
		step = 1
	}
	n := 0
	for y := 0; y < m.Height; y += step {
		for x := 0; x < m.Width; x += step {
			if m.Coverage[y*m.Width+x] > threshold {
				n++
			}
		}
	}
	return n
}

// FirstLetterBox returns the normalized (u0, v0, u1, v1) box of the first
// glyph's advance cell, spanning one font size vertically around the centerline.
func (m *Mask) FirstLetterBox() [4]float32 {
	if len(m.Letters) == 0 || m.Width == 0 || m.Height == 0 {
		return [4]float32{}
	}
	l := m.Letters[0]
	half := m.FontSize / 2
	return [4]float32{
		float32(l.Left / float64(m.Width)),
		float32((l.Center.Y - half) / float64(m.Height)),
		float32((l.Left + l.Advance) / float64(m.Width)),
		float32((l.Center.Y + half) / float64(m.Height)),
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
