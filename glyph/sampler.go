package glyph

import (
	"fmt"
	"image"
	"math"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/pthm-cable/pluribus/config"
)

// MaxSurface bounds either surface dimension. Larger requests are clamped.
const MaxSurface = 8192

var (
	fontOnce sync.Once
	boldFont *opentype.Font
)

// mustFont parses the embedded heavy face once.
func mustFont() *opentype.Font {
	fontOnce.Do(func() {
		f, err := opentype.Parse(gobold.TTF)
		if err != nil {
			panic(fmt.Sprintf("glyph: parsing embedded font: %v", err))
		}
		boldFont = f
	})
	return boldFont
}

// scratch holds ephemeral rasterization canvases. A canvas is borrowed for
// one Sample call and returned before the call ends.
var scratch = sync.Pool{
	New: func() any { return new(image.Alpha) },
}

// Normalize trims, substitutes the fallback for empty input and uppercases.
func Normalize(text, fallback string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		text = strings.TrimSpace(fallback)
	}
	if text == "" {
		text = "PLUR1BUS"
	}
	return strings.ToUpper(text)
}

// ClampSurface clamps surface dimensions to [1, MaxSurface].
func ClampSurface(width, height int) (int, int) {
	return clampInt(width, 1, MaxSurface), clampInt(height, 1, MaxSurface)
}

// newFace builds an unhinted face so measurements scale linearly with size.
func newFace(size float64) font.Face {
	face, err := opentype.NewFace(mustFont(), &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		// Only fails for invalid sizes, which FitFontSize never produces.
		panic(fmt.Sprintf("glyph: creating face at size %.2f: %v", size, err))
	}
	return face
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

// FitFontSize computes the font size that fits text on the surface.
// The base size shrinks proportionally when the measured width exceeds the
// width fraction, is capped by the height fraction and floored at the
// minimum readable size.
func FitFontSize(text string, width, height int, cfg config.TextConfig) float64 {
	size := math.Min(float64(width)/cfg.BaseDivisor, cfg.BaseMax)
	if size < 1 {
		size = 1
	}
	maxWidth := float64(width) * cfg.MaxWidthFrac
	maxHeight := float64(height) * cfg.MaxHeightFrac

	face := newFace(size)
	measured := fixedToFloat(font.MeasureString(face, text))
	face.Close()

	if measured > maxWidth && measured > 0 {
		size *= maxWidth / measured
	}
	if size > maxHeight {
		size = maxHeight
	}

	minSize := math.Min(cfg.MinSize, maxHeight)
	if size < minSize {
		size = minSize
	}
	if size < 1 {
		size = 1
	}
	return size
}

// Sample rasterizes text centered on a width x height surface and returns
// its coverage mask, per-letter layout and the first-glyph anchor.
// The same text and dimensions always produce the same mask.
func Sample(text string, width, height int, cfg config.TextConfig) *Mask {
	text = Normalize(text, cfg.Fallback)
	width, height = ClampSurface(width, height)

	size := FitFontSize(text, width, height, cfg)
	face := newFace(size)
	defer face.Close()

	total := fixedToFloat(font.MeasureString(face, text))
	startX := (float64(width) - total) / 2
	centerY := float64(height) / 2

	mask := &Mask{
		Text:     text,
		Width:    width,
		Height:   height,
		FontSize: size,
		Letters:  make([]Letter, 0, utf8.RuneCountInString(text)),
		Coverage: make([]uint8, width*height),
	}

	// Per-letter advance boxes
	x := startX
	for _, r := range text {
		adv := fixedToFloat(font.MeasureString(face, string(r)))
		if adv <= 0 {
			adv = size * cfg.ZeroWidthRatio
		}
		mask.Letters = append(mask.Letters, Letter{
			Rune:    r,
			Left:    x,
			Advance: adv,
			Center:  Point{X: x + adv/2, Y: centerY},
		})
		x += adv
	}
	first := mask.Letters[0]
	mask.Anchor = Point{X: startX + first.Advance/2, Y: centerY}

	// Uppercase text is centered on its cap height
	metrics := face.Metrics()
	capHeight := fixedToFloat(metrics.CapHeight)
	if capHeight <= 0 {
		capHeight = fixedToFloat(metrics.Ascent) * 0.7
	}
	baseline := centerY + capHeight/2

	rasterize(mask, face, text, startX, baseline)
	return mask
}

// rasterize draws text into a borrowed scratch canvas and copies the
// coverage into the mask. The canvas goes back to the pool before returning.
func rasterize(mask *Mask, face font.Face, text string, x, baseline float64) {
	canvas := scratch.Get().(*image.Alpha)
	defer scratch.Put(canvas)

	bounds := image.Rect(0, 0, mask.Width, mask.Height)
	if canvas.Rect != bounds {
		*canvas = *image.NewAlpha(bounds)
	} else {
		clear(canvas.Pix)
	}

	d := font.Drawer{
		Dst:  canvas,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(math.Round(x * 64)), Y: fixed.Int26_6(math.Round(baseline * 64))},
	}
	d.DrawString(text)

	for y := 0; y < mask.Height; y++ {
		copy(mask.Coverage[y*mask.Width:(y+1)*mask.Width], canvas.Pix[y*canvas.Stride:y*canvas.Stride+mask.Width])
	}
}
