package systems

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/pluribus/components"
	"github.com/pthm-cable/pluribus/config"
	"github.com/pthm-cable/pluribus/glyph"
)

func init() {
	config.MustInit("")
}

func fieldConfig() config.FieldConfig {
	return config.Cfg().Field
}

func sampleMask(text string, w, h int) *glyph.Mask {
	return glyph.Sample(text, w, h, config.Cfg().Text)
}

// emptyField returns a field with no particles and the given config, for
// tests that place particles by hand.
func emptyField(cfg config.FieldConfig) *ParticleField {
	f := NewParticleField(rand.New(rand.NewSource(1)))
	f.cfg = cfg
	return f
}

func displaceAll(f *ParticleField, dx, dy float32) {
	query := f.filter.Query()
	for query.Next() {
		pos, _, _, _ := query.Get()
		pos.X += dx
		pos.Y += dy
	}
}

// ---------- generation ----------

func TestInit_TextParticlesInsideGlyphs(t *testing.T) {
	cfg := fieldConfig()
	mask := sampleMask("AB", 1000, 500)
	f := NewParticleField(rand.New(rand.NewSource(7)))
	f.Init(mask, cfg)

	bg, text := f.Counts()
	if text == 0 {
		t.Fatal("expected text particles")
	}
	if bg == 0 {
		t.Fatal("expected background particles")
	}

	bounds := mask.Bounds(cfg.OpacityThreshold)
	for _, p := range f.Snapshot() {
		if p.Kind != components.KindText {
			continue
		}
		if !mask.Covered(int(p.BaseX), int(p.BaseY), cfg.OpacityThreshold) {
			t.Fatalf("text particle at (%.0f, %.0f) is not on a covered pixel", p.BaseX, p.BaseY)
		}
		if int(p.BaseX) < bounds.Min.X || int(p.BaseX) >= bounds.Max.X ||
			int(p.BaseY) < bounds.Min.Y || int(p.BaseY) >= bounds.Max.Y {
			t.Fatalf("text particle outside glyph bounds %v", bounds)
		}
	}

	// Glyph box itself respects the layout fractions
	if float64(bounds.Dx()) > 1000*0.86 || float64(bounds.Dy()) > 500*0.55 {
		t.Errorf("glyph bounds %v exceed layout fractions", bounds)
	}
}

func TestInit_BackgroundAvoidsExclusionZones(t *testing.T) {
	cfg := fieldConfig()
	cfg.BgJitter = 0 // anchors sit exactly on the grid points
	mask := sampleMask("WAVE", 900, 450)
	f := NewParticleField(rand.New(rand.NewSource(3)))
	f.Init(mask, cfg)

	zones := ExclusionZones(mask, cfg.GapScaleX, cfg.GapScaleY)
	for _, p := range f.Snapshot() {
		if p.Kind != components.KindBackground {
			continue
		}
		if InsideAny(zones, float64(p.BaseX), float64(p.BaseY)) {
			t.Fatalf("background particle at (%.1f, %.1f) inside an exclusion zone", p.BaseX, p.BaseY)
		}
	}
}

func TestInit_KindParameters(t *testing.T) {
	cfg := fieldConfig()
	f := NewParticleField(rand.New(rand.NewSource(11)))
	f.Init(sampleMask("HI", 600, 300), cfg)

	for _, p := range f.Snapshot() {
		switch p.Kind {
		case components.KindText:
			if p.Size < float32(cfg.TextSizeMin) || p.Size > float32(cfg.TextSizeMin+cfg.TextSizeSpan) {
				t.Fatalf("text size %f out of range", p.Size)
			}
			if p.Alpha != float32(cfg.TextAlpha) {
				t.Fatalf("text alpha %f, want %f", p.Alpha, cfg.TextAlpha)
			}
		case components.KindBackground:
			if p.Size < float32(cfg.BgSizeMin) || p.Size > float32(cfg.BgSizeMin+cfg.BgSizeSpan) {
				t.Fatalf("background size %f out of range", p.Size)
			}
			if p.Alpha != float32(cfg.BgAlpha) {
				t.Fatalf("background alpha %f, want %f", p.Alpha, cfg.BgAlpha)
			}
		}
	}
}

func TestInit_IdempotentCounts(t *testing.T) {
	cfg := fieldConfig()
	mask := sampleMask("PLURIBUS", 800, 400)

	f := NewParticleField(rand.New(rand.NewSource(5)))
	f.Init(mask, cfg)
	bg1, text1 := f.Counts()

	// Rebuild replaces everything; text count depends only on the mask
	f.Init(mask, cfg)
	bg2, text2 := f.Counts()
	if text1 != text2 {
		t.Errorf("text count changed across rebuilds: %d vs %d", text1, text2)
	}
	if bg1 != bg2 {
		t.Errorf("background count changed across rebuilds: %d vs %d", bg1, bg2)
	}
	if f.Len() != bg2+text2 {
		t.Errorf("Len %d does not match counts %d+%d", f.Len(), bg2, text2)
	}
	if len(f.Snapshot()) != bg2+text2 {
		t.Errorf("rebuild kept stale particles: %d in world, %d counted", len(f.Snapshot()), bg2+text2)
	}
	if bg1 == 0 || bg2 == 0 {
		t.Error("expected background particles in both generations")
	}
}

func TestInit_BackgroundCountIndependentOfSeed(t *testing.T) {
	cfg := fieldConfig()
	mask := sampleMask("PLURIBUS", 800, 400)

	want := -1
	for seed := int64(1); seed <= 6; seed++ {
		f := NewParticleField(rand.New(rand.NewSource(seed)))
		f.Init(mask, cfg)
		bg, _ := f.Counts()
		if want < 0 {
			want = bg
			continue
		}
		if bg != want {
			t.Errorf("seed %d: expected %d background particles, got %d", seed, want, bg)
		}
	}
}

func TestInit_BackgroundJitterStaysNearGrid(t *testing.T) {
	cfg := fieldConfig()
	mask := sampleMask("GRID", 800, 400)
	f := NewParticleField(rand.New(rand.NewSource(4)))
	f.Init(mask, cfg)

	half := cfg.BgJitter/2 + 1e-3
	for _, p := range f.Snapshot() {
		if p.Kind != components.KindBackground {
			continue
		}
		gx := math.Round(float64(p.BaseX)/cfg.BgGridGap) * cfg.BgGridGap
		gy := math.Round(float64(p.BaseY)/cfg.BgGridGap) * cfg.BgGridGap
		if math.Abs(float64(p.BaseX)-gx) > half || math.Abs(float64(p.BaseY)-gy) > half {
			t.Fatalf("background particle at (%.1f, %.1f) is more than %.1f from grid point (%.0f, %.0f)",
				p.BaseX, p.BaseY, half, gx, gy)
		}
	}
}

func TestInit_RespectsParticleCap(t *testing.T) {
	cfg := fieldConfig()
	cfg.MaxParticles = 50
	f := NewParticleField(rand.New(rand.NewSource(1)))
	f.Init(sampleMask("CAP", 800, 400), cfg)

	if f.Len() > 50 {
		t.Errorf("expected at most 50 particles, got %d", f.Len())
	}
	if !f.Capped() {
		t.Error("expected field to report the cap")
	}
	if _, text := f.Counts(); text == 0 {
		t.Error("text particles should be kept ahead of background under the cap")
	}
}

func TestOnTextureRing(t *testing.T) {
	// On the horizontal axis the ring distance is plain |dx|
	if !OnTextureRing(100+22, 50, 100, 50, 11, 1.4) {
		t.Error("expected dx=22 to sit on a ring")
	}
	if OnTextureRing(100+27, 50, 100, 50, 11, 1.4) {
		t.Error("expected dx=27 to fall between rings")
	}
}

// ---------- update ----------

func TestUpdate_Dissipative(t *testing.T) {
	cfg := fieldConfig()
	cfg.TextBaseJitter = 0
	f := NewParticleField(rand.New(rand.NewSource(9)))
	f.Init(sampleMask("AB", 400, 200), cfg)

	displaceAll(f, 10, -6)
	if f.MeanDisplacement() < 5 {
		t.Fatal("expected displaced particles before relaxing")
	}

	for i := 0; i < 300; i++ {
		f.Update(nil)
	}
	if d := f.MeanDisplacement(); d > 1e-3 {
		t.Errorf("expected particles to settle at their anchors, mean displacement %f", d)
	}
}

func TestUpdate_TextJitterStaysBounded(t *testing.T) {
	cfg := fieldConfig()
	f := NewParticleField(rand.New(rand.NewSource(2)))
	f.Init(sampleMask("AB", 400, 200), cfg)

	fr := cfg.TextFriction
	limit := float32(cfg.TextBaseJitter/2*(1-fr)/fr) + 1e-3
	for i := 0; i < 500; i++ {
		f.Update(nil)
	}
	for _, p := range f.Snapshot() {
		dx := float32(math.Abs(float64(p.X - p.BaseX)))
		dy := float32(math.Abs(float64(p.Y - p.BaseY)))
		if dx > limit || dy > limit {
			t.Fatalf("particle drifted (%f, %f), limit %f", dx, dy, limit)
		}
		if p.Kind == components.KindBackground && (p.X != p.BaseX || p.Y != p.BaseY) {
			t.Fatal("background particles must not jitter without waves")
		}
	}
}

func TestUpdate_WavePushesBackgroundOnly(t *testing.T) {
	cfg := fieldConfig()
	cfg.TextBaseJitter = 0
	f := emptyField(cfg)

	f.spawn(110, 0, components.Appearance{Size: 1, BaseAlpha: 1, Alpha: 1},
		components.Dynamics{Kind: components.KindBackground, Friction: 0.9, Push: 2})
	f.spawn(110, 0, components.Appearance{Size: 1, BaseAlpha: 1, Alpha: 1},
		components.Dynamics{Kind: components.KindText, Friction: 0.15})

	waves := []Wave{{X: 0, Y: 0, Radius: 100, MaxRadius: 1000}}
	f.Update(waves)

	for _, p := range f.Snapshot() {
		switch p.Kind {
		case components.KindBackground:
			// pull -10, falloff 0.64, strength 2 -> 97.2, relaxed by 0.9 -> 108.72
			if math.Abs(float64(p.X)-108.72) > 1e-3 {
				t.Errorf("expected background x=108.72, got %f", p.X)
			}
			if p.Y != 0 {
				t.Errorf("radial push should not move y, got %f", p.Y)
			}
		case components.KindText:
			if p.X != 110 || p.Y != 0 {
				t.Errorf("text particle moved to (%f, %f)", p.X, p.Y)
			}
		}
	}
}

func TestUpdate_OutsideBandIgnored(t *testing.T) {
	cfg := fieldConfig()
	f := emptyField(cfg)
	f.spawn(300, 0, components.Appearance{Size: 1, BaseAlpha: 1, Alpha: 1},
		components.Dynamics{Kind: components.KindBackground, Friction: 0.9, Push: 2})

	f.Update([]Wave{{Radius: 100, MaxRadius: 1000}})
	if d := f.MeanDisplacement(); d != 0 {
		t.Errorf("expected no displacement outside the band, got %f", d)
	}
}

func TestUpdate_AlphaResets(t *testing.T) {
	cfg := fieldConfig()
	f := emptyField(cfg)
	f.spawn(10, 10, components.Appearance{Size: 1, BaseAlpha: 0.9, Alpha: 0.1},
		components.Dynamics{Kind: components.KindBackground, Friction: 0.9})

	f.Update(nil)
	f.ForEach(components.KindBackground, func(_ components.Position, look components.Appearance) {
		if look.Alpha != 0.9 {
			t.Errorf("expected alpha reset to 0.9, got %f", look.Alpha)
		}
	})
}

func TestForEach_FiltersByKind(t *testing.T) {
	cfg := fieldConfig()
	f := NewParticleField(rand.New(rand.NewSource(4)))
	f.Init(sampleMask("AB", 500, 250), cfg)

	bg, text := f.Counts()
	var seenBg, seenText int
	f.ForEach(components.KindBackground, func(components.Position, components.Appearance) { seenBg++ })
	f.ForEach(components.KindText, func(components.Position, components.Appearance) { seenText++ })
	if seenBg != bg || seenText != text {
		t.Errorf("ForEach saw %d/%d, counts say %d/%d", seenBg, seenText, bg, text)
	}
}
