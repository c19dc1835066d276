package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/pluribus/shading"
)

func TestLetterboxRect(t *testing.T) {
	cases := []struct {
		name       string
		srcW, srcH int
		dstW, dstH int
		want       image.Rectangle
	}{
		{"wide source", 2400, 630, 1200, 630, image.Rect(0, 157, 1200, 472)},
		{"tall source", 630, 1260, 1200, 630, image.Rect(442, 0, 757, 630)},
		{"exact fit", 1200, 630, 1200, 630, image.Rect(0, 0, 1200, 630)},
		{"upscale", 600, 315, 1200, 630, image.Rect(0, 0, 1200, 630)},
		{"degenerate", 0, 10, 1200, 630, image.Rectangle{}},
	}
	for _, c := range cases {
		if got := LetterboxRect(c.srcW, c.srcH, c.dstW, c.dstH); got != c.want {
			t.Errorf("%s: got %v, want %v", c.name, got, c.want)
		}
	}
}

func TestLetterboxKeepsBarsBlack(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for i := range src.Pix {
		src.Pix[i] = 255
	}
	out := Letterbox(src, 200, 100)
	if b := out.Bounds(); b.Dx() != 200 || b.Dy() != 100 {
		t.Fatalf("unexpected output size %v", b)
	}
	if c := out.RGBAAt(10, 50); c != (color.RGBA{A: 255}) {
		t.Errorf("expected black bar, got %v", c)
	}
	if c := out.RGBAAt(100, 50); c.R != 255 {
		t.Errorf("expected white frame in the middle, got %v", c)
	}
}

func TestCanvasDisc(t *testing.T) {
	c := NewCanvas(40, 40)
	c.Disc(20, 20, 5, 1)

	img := c.Image()
	if px := img.RGBAAt(20, 20); px.R < 250 {
		t.Errorf("expected white disc center, got %v", px)
	}
	if px := img.RGBAAt(30, 30); px.R != 0 {
		t.Errorf("expected black outside disc, got %v", px)
	}
	if px := img.RGBAAt(0, 0); px.A != 255 {
		t.Errorf("canvas must stay opaque, got %v", px)
	}
}

func TestCanvasDiscClipsAtEdges(t *testing.T) {
	c := NewCanvas(20, 20)
	c.Disc(0, 0, 4, 1)
	c.Disc(-50, -50, 4, 1) // fully outside

	if px := c.Image().RGBAAt(0, 0); px.R < 200 {
		t.Errorf("expected corner covered by clipped disc, got %v", px)
	}
	if px := c.Image().RGBAAt(6, 6); px.R != 0 {
		t.Errorf("expected clipped disc to stay within its radius, got %v", px)
	}
}

func TestCanvasFade(t *testing.T) {
	c := NewCanvas(8, 8)
	c.Disc(4, 4, 3, 1)
	before := c.Image().RGBAAt(4, 4).R

	c.Fade(0.4)
	after := c.Image().RGBAAt(4, 4).R
	if after >= before {
		t.Fatalf("expected fade to darken, %d -> %d", before, after)
	}

	for i := 0; i < 40; i++ {
		c.Fade(0.4)
	}
	if px := c.Image().RGBAAt(4, 4); px.R != 0 {
		t.Errorf("expected repeated fades to reach black, got %v", px)
	}
}

func TestDrawSamplesSkipsDiscarded(t *testing.T) {
	c := NewCanvas(20, 10)
	samples := []shading.Sample{
		{VertexOut: shading.VertexOut{X: 5, Y: 5, Size: 4}, Alpha: 1, Keep: true},
		{VertexOut: shading.VertexOut{X: 15, Y: 5, Size: 4}, Alpha: 1, Keep: false},
	}
	DrawSamples(c, samples)

	if px := c.Image().RGBAAt(5, 5); px.R == 0 {
		t.Error("expected kept sample drawn")
	}
	if px := c.Image().RGBAAt(15, 5); px.R != 0 {
		t.Error("expected discarded sample skipped")
	}
}

func TestSavePNG(t *testing.T) {
	c := NewCanvas(64, 32)
	c.Disc(32, 16, 8, 1)
	path := filepath.Join(t.TempDir(), "frame.png")

	if err := SavePNG(path, c.Image(), 120, 63); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}

	var buf bytes.Buffer
	if err := WritePNG(&buf, c.Image()); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 32 {
		t.Errorf("unexpected decoded size %v", b)
	}

	if err := SavePNG(filepath.Join(t.TempDir(), "missing", "x.png"), c.Image(), 10, 10); err == nil {
		t.Error("expected error writing into a missing directory")
	}
}
