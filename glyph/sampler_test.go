package glyph

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/pthm-cable/pluribus/config"
)

func init() {
	config.MustInit("")
}

func textConfig() config.TextConfig {
	return config.Cfg().Text
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"ab":      "AB",
		"  hi  ":  "HI",
		"":        "PLUR1BUS",
		"   \t\n": "PLUR1BUS",
		"Straße":  strings.ToUpper("Straße"),
	}
	for in, want := range cases {
		if got := Normalize(in, "plur1bus"); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSampleFitsWithinFractions(t *testing.T) {
	cfg := textConfig()
	mask := Sample("AB", 1000, 500, cfg)

	if mask.Text != "AB" {
		t.Fatalf("expected text AB, got %q", mask.Text)
	}
	b := mask.Bounds(128)
	if b.Empty() {
		t.Fatal("expected glyph pixels in mask")
	}
	if float64(b.Dx()) > 1000*cfg.MaxWidthFrac {
		t.Errorf("glyph width %d exceeds %.0f", b.Dx(), 1000*cfg.MaxWidthFrac)
	}
	if float64(b.Dy()) > 500*cfg.MaxHeightFrac {
		t.Errorf("glyph height %d exceeds %.0f", b.Dy(), 500*cfg.MaxHeightFrac)
	}

	// Text is centered: the glyph box straddles the surface center
	cx := float64(b.Min.X+b.Max.X) / 2
	cy := float64(b.Min.Y+b.Max.Y) / 2
	if math.Abs(cx-500) > 20 {
		t.Errorf("expected horizontally centered text, box center x=%.1f", cx)
	}
	if math.Abs(cy-250) > 20 {
		t.Errorf("expected vertically centered text, box center y=%.1f", cy)
	}
}

func TestSampleIdempotent(t *testing.T) {
	cfg := textConfig()
	a := Sample("Hello", 800, 400, cfg)
	b := Sample("Hello", 800, 400, cfg)

	if a.Anchor != b.Anchor {
		t.Errorf("anchor differs between runs: %v vs %v", a.Anchor, b.Anchor)
	}
	if a.FontSize != b.FontSize {
		t.Errorf("font size differs: %f vs %f", a.FontSize, b.FontSize)
	}
	if !bytes.Equal(a.Coverage, b.Coverage) {
		t.Error("coverage differs between identical samples")
	}
}

func TestSampleEmptyUsesFallback(t *testing.T) {
	cfg := textConfig()
	mask := Sample("   ", 1000, 500, cfg)

	if mask.Text != "PLUR1BUS" {
		t.Errorf("expected fallback text, got %q", mask.Text)
	}
	if mask.Count(128, 2) == 0 {
		t.Error("expected fallback text to produce glyph pixels")
	}
	if len(mask.Letters) != len("PLUR1BUS") {
		t.Errorf("expected %d letters, got %d", len("PLUR1BUS"), len(mask.Letters))
	}
}

func TestAnchorIsFirstLetterCenter(t *testing.T) {
	mask := Sample("WAVE", 1200, 600, textConfig())

	first := mask.Letters[0]
	if mask.Anchor != first.Center {
		t.Errorf("anchor %v should equal first letter center %v", mask.Anchor, first.Center)
	}
	if mask.Anchor.Y != 300 {
		t.Errorf("anchor should sit on the centerline, got y=%f", mask.Anchor.Y)
	}
	// Letters are laid out left to right without gaps
	for i := 1; i < len(mask.Letters); i++ {
		prev := mask.Letters[i-1]
		if math.Abs(mask.Letters[i].Left-(prev.Left+prev.Advance)) > 1e-9 {
			t.Errorf("letter %d does not start where letter %d ends", i, i-1)
		}
	}
}

func TestFitFontSizeBounds(t *testing.T) {
	cfg := textConfig()

	// Long text shrinks to fit the width fraction
	long := strings.Repeat("W", 30)
	size := FitFontSize(long, 1000, 500, cfg)
	if size >= 1000/cfg.BaseDivisor {
		t.Errorf("expected long text to shrink below base size, got %f", size)
	}

	// Height ceiling
	size = FitFontSize("A", 3000, 100, cfg)
	if size > 100*cfg.MaxHeightFrac+1e-9 {
		t.Errorf("expected size capped at %f, got %f", 100*cfg.MaxHeightFrac, size)
	}

	// Readability floor
	size = FitFontSize(strings.Repeat("M", 200), 600, 600, cfg)
	if size < cfg.MinSize {
		t.Errorf("expected size floored at %f, got %f", cfg.MinSize, size)
	}
}

func TestSampleClampsDegenerateSurface(t *testing.T) {
	mask := Sample("A", 0, -5, textConfig())
	if mask.Width != 1 || mask.Height != 1 {
		t.Errorf("expected 1x1 surface, got %dx%d", mask.Width, mask.Height)
	}
	if len(mask.Coverage) != 1 {
		t.Errorf("expected single coverage sample, got %d", len(mask.Coverage))
	}
}
