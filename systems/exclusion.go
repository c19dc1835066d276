package systems

import "github.com/pthm-cable/pluribus/glyph"

// Ellipse is an axis-aligned exclusion zone around one glyph.
// Radii are stored as inverse squares so membership is one multiply-add.
type Ellipse struct {
	CX, CY  float64
	InvRxSq float64
	InvRySq float64
}

// Contains reports whether (x, y) lies inside or on the ellipse.
func (e Ellipse) Contains(x, y float64) bool {
	dx := x - e.CX
	dy := y - e.CY
	return dx*dx*e.InvRxSq+dy*dy*e.InvRySq <= 1.0
}

// ExclusionZones builds one ellipse per laid-out letter of the mask.
// Horizontal radius is half the advance scaled by gapX, vertical radius is
// half the font size scaled by gapY. Degenerate radii produce no zone.
func ExclusionZones(mask *glyph.Mask, gapX, gapY float64) []Ellipse {
	zones := make([]Ellipse, 0, len(mask.Letters))
	ry := mask.FontSize / 2 * gapY
	for _, l := range mask.Letters {
		rx := l.Advance / 2 * gapX
		if rx <= 0 || ry <= 0 {
			continue
		}
		zones = append(zones, Ellipse{
			CX:      l.Center.X,
			CY:      l.Center.Y,
			InvRxSq: 1 / (rx * rx),
			InvRySq: 1 / (ry * ry),
		})
	}
	return zones
}

// InsideAny reports whether (x, y) falls within any zone.
func InsideAny(zones []Ellipse, x, y float64) bool {
	for i := range zones {
		if zones[i].Contains(x, y) {
			return true
		}
	}
	return false
}
