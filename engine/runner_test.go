package engine

import (
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestHeadless_ScalarWritesTelemetryAndPNG(t *testing.T) {
	cfg := testConfig()
	cfg.Telemetry.WindowFrames = 10
	dir := t.TempDir()
	out := filepath.Join(dir, "frame.png")

	path, err := Headless(cfg, Options{Text: "ab", Seed: 11, OutputDir: dir}, HeadlessOptions{
		Kind:   Scalar,
		Width:  320,
		Height: 160,
		Frames: 30,
		Out:    out,
	})
	if err != nil {
		t.Fatalf("Headless: %v", err)
	}
	if path != out {
		t.Errorf("expected export at %s, got %s", out, path)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("opening export: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decoding export: %v", err)
	}
	if b := img.Bounds(); b.Dx() != cfg.Export.Width || b.Dy() != cfg.Export.Height {
		t.Errorf("expected %dx%d export, got %v", cfg.Export.Width, cfg.Export.Height, b)
	}

	rows := readLines(t, filepath.Join(dir, "telemetry.csv"))
	if len(rows) != 4 {
		t.Fatalf("expected header + 3 windows, got %d lines", len(rows))
	}
	if !strings.HasPrefix(rows[1], "9,scalar,") {
		t.Errorf("expected first window to end on frame 9, got %q", rows[1])
	}

	bookmarks := readLines(t, filepath.Join(dir, "bookmarks.csv"))
	joined := strings.Join(bookmarks, "\n")
	if !strings.Contains(joined, "rebuild,0,") || !strings.Contains(joined, "export,30,") {
		t.Errorf("expected rebuild and export bookmarks, got:\n%s", joined)
	}

	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("expected config snapshot: %v", err)
	}
}

func TestHeadless_VectorDefaultsToConfiguredExport(t *testing.T) {
	cfg := testConfig()
	dir := t.TempDir()

	path, err := Headless(cfg, Options{Seed: 2, OutputDir: dir}, HeadlessOptions{
		Kind:    Vector,
		Width:   200,
		Height:  100,
		Frames:  3,
		Workers: 2,
	})
	if err != nil {
		t.Fatalf("Headless: %v", err)
	}
	if want := filepath.Join(dir, cfg.Export.File); path != want {
		t.Errorf("expected export at %s, got %s", want, path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected exported file: %v", err)
	}
}

func TestHeadless_UnknownKind(t *testing.T) {
	if _, err := Headless(testConfig(), Options{}, HeadlessOptions{Kind: "raster"}); err == nil {
		t.Error("expected error for unknown engine")
	}
}

func TestRunner_RebuildFlushesAndResets(t *testing.T) {
	cfg := testConfig()
	cfg.Telemetry.WindowFrames = 100
	dir := t.TempDir()
	r, err := NewRunner(cfg, NewScalarEngine(&recordingCanvas{}, 1), Options{Text: "A", OutputDir: dir})
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}

	if !r.NeedsRebuild("A", 300, 150) {
		t.Fatal("expected rebuild before the first context")
	}
	r.Rebuild("A", 300, 150)
	if r.NeedsRebuild("a", 300, 150) {
		t.Error("expected equivalent text not to need a rebuild")
	}

	for i := 0; i < 5; i++ {
		r.BeginFrame()
		r.Update()
		r.Draw()
		r.EndFrame(1.0 / 60)
	}
	if r.Context().Frame != 5 {
		t.Errorf("expected context at frame 5, got %d", r.Context().Frame)
	}

	// A resize rebuild flushes the partial window and restarts the context clock
	r.Rebuild("A", 400, 150)
	if r.Context().Frame != 0 || r.Context().Time != 0 {
		t.Errorf("expected a fresh context, got frame=%d time=%v", r.Context().Frame, r.Context().Time)
	}
	if r.Frames() != 5 {
		t.Errorf("expected run-wide frame count kept, got %d", r.Frames())
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	rows := readLines(t, filepath.Join(dir, "telemetry.csv"))
	if len(rows) != 2 {
		t.Errorf("expected header + 1 partial window, got %d lines", len(rows))
	}
	bookmarks := strings.Join(readLines(t, filepath.Join(dir, "bookmarks.csv")), "\n")
	if !strings.Contains(bookmarks, "resize,5,400x150") {
		t.Errorf("expected resize bookmark, got:\n%s", bookmarks)
	}
}

func TestRunner_ExportPath(t *testing.T) {
	cfg := testConfig()
	r, err := NewRunner(cfg, NewScalarEngine(&recordingCanvas{}, 1), Options{})
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	defer r.Close()

	if got := r.ExportPath(""); got != cfg.Export.File {
		t.Errorf("expected configured file without output dir, got %q", got)
	}
	if got := r.ExportPath("x.png"); got != "x.png" {
		t.Errorf("expected explicit path kept, got %q", got)
	}
}
