package systems

import (
	"testing"

	"github.com/pthm-cable/pluribus/glyph"
)

func TestEllipseContains(t *testing.T) {
	e := Ellipse{CX: 100, CY: 50, InvRxSq: 1.0 / (20 * 20), InvRySq: 1.0 / (10 * 10)}

	cases := []struct {
		x, y float64
		want bool
	}{
		{100, 50, true},
		{119.9, 50, true},
		{100, 59.9, true},
		{121, 50, false},
		{100, 61, false},
		{115, 58, false},
	}
	for _, c := range cases {
		if got := e.Contains(c.x, c.y); got != c.want {
			t.Errorf("Contains(%v, %v) = %v, want %v", c.x, c.y, got, c.want)
		}
	}
}

func TestExclusionZonesPerLetter(t *testing.T) {
	mask := &glyph.Mask{
		FontSize: 40,
		Letters: []glyph.Letter{
			{Rune: 'A', Left: 0, Advance: 30, Center: glyph.Point{X: 15, Y: 50}},
			{Rune: 'B', Left: 30, Advance: 20, Center: glyph.Point{X: 40, Y: 50}},
			{Rune: ' ', Left: 50, Advance: 0, Center: glyph.Point{X: 50, Y: 50}},
		},
	}
	zones := ExclusionZones(mask, 1.1, 1.3)
	if len(zones) != 2 {
		t.Fatalf("expected 2 zones (zero advance skipped), got %d", len(zones))
	}

	// rx = 15*1.1 = 16.5, ry = 20*1.3 = 26
	if !zones[0].Contains(15+16.4, 50) || zones[0].Contains(15+16.6, 50) {
		t.Error("unexpected horizontal radius for first zone")
	}
	if !zones[0].Contains(15, 50+25.9) || zones[0].Contains(15, 50+26.1) {
		t.Error("unexpected vertical radius for first zone")
	}
	if !InsideAny(zones, 40, 50) || InsideAny(zones, 200, 50) {
		t.Error("InsideAny disagrees with zone membership")
	}
}
