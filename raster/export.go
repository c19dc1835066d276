package raster

import (
	"bufio"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"os"

	xdraw "golang.org/x/image/draw"
)

// LetterboxRect returns where a srcW x srcH frame lands when scaled to fit
// a dstW x dstH canvas without cropping, centered.
func LetterboxRect(srcW, srcH, dstW, dstH int) image.Rectangle {
	if srcW <= 0 || srcH <= 0 || dstW <= 0 || dstH <= 0 {
		return image.Rectangle{}
	}
	scale := math.Min(float64(dstW)/float64(srcW), float64(dstH)/float64(srcH))
	w := int(math.Round(float64(srcW) * scale))
	h := int(math.Round(float64(srcH) * scale))
	x := (dstW - w) / 2
	y := (dstH - h) / 2
	return image.Rect(x, y, x+w, y+h)
}

// Letterbox scales src onto a black dstW x dstH canvas.
func Letterbox(src image.Image, dstW, dstH int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	xdraw.Draw(dst, dst.Bounds(), image.Black, image.Point{}, xdraw.Src)

	sb := src.Bounds()
	r := LetterboxRect(sb.Dx(), sb.Dy(), dstW, dstH)
	if r.Empty() {
		return dst
	}
	xdraw.ApproxBiLinear.Scale(dst, r, src, sb, xdraw.Src, nil)
	return dst
}

// WritePNG encodes img as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	bw := bufio.NewWriter(w)
	if err := png.Encode(bw, img); err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}
	return bw.Flush()
}

// SavePNG letterboxes a frame to dstW x dstH and writes it to path.
func SavePNG(path string, frame image.Image, dstW, dstH int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := WritePNG(f, Letterbox(frame, dstW, dstH)); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
