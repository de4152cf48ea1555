package punkrun

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"hello", "hello"},
		{"after-jump", "after-jump"},
		{"frame.01", "frame.01"},
		{"has spaces", "has_spaces"},
		{"path/to/thing", "path_to_thing"},
		{"back\\slash", "back_slash"},
		{"special!@#$%", "special_____"},
		{"", "unlabeled"},
		{"   ", "unlabeled"},
		{"MixedCase123", "MixedCase123"},
	}
	for _, tt := range tests {
		got := sanitizeLabel(tt.in)
		if got != tt.want {
			t.Errorf("sanitizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestScreenshotQueueAppend(t *testing.T) {
	g, _ := newTestGame(t, AssetRef{}, AssetRef{})
	g.Screenshot("a")
	g.Screenshot("b")
	g.Screenshot("c")
	if len(g.screenshotQueue) != 3 {
		t.Fatalf("queue len = %d, want 3", len(g.screenshotQueue))
	}
	if g.screenshotQueue[0] != "a" || g.screenshotQueue[1] != "b" || g.screenshotQueue[2] != "c" {
		t.Errorf("queue = %v, want [a b c]", g.screenshotQueue)
	}
}

func TestScreenshotDirDefault(t *testing.T) {
	g, _ := newTestGame(t, AssetRef{}, AssetRef{})
	if g.ScreenshotDir != "screenshots" {
		t.Errorf("ScreenshotDir = %q, want %q", g.ScreenshotDir, "screenshots")
	}
}

func TestScreenshotQueueDrainsOnUpdate(t *testing.T) {
	g, _ := newTestGame(t, AssetRef{}, AssetRef{})
	g.ScreenshotDir = filepath.Join(t.TempDir(), "shots")
	g.Screenshot("one")
	g.Screenshot("two")
	g.Update(InputSnapshot{})

	if len(g.screenshotQueue) != 0 {
		t.Errorf("queue len = %d after update, want 0", len(g.screenshotQueue))
	}
	entries, err := os.ReadDir(g.ScreenshotDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("wrote %d files, want 2", len(entries))
	}
}

func TestDeviceImageTransposes(t *testing.T) {
	// 2 columns by 3 rows in bitmap orientation is 3x2 on the device.
	fb := NewBitmap(2, 3)
	fb.Set(1, 2, Pixel{R: 200, A: 255})
	fb.Set(0, 1, Pixel{G: 100, A: 255})

	img := DeviceImage(fb)
	if b := img.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
		t.Fatalf("bounds = %v, want 3x2", b)
	}
	if c := img.NRGBAAt(2, 1); c.R != 200 || c.A != 255 {
		t.Errorf("device (2,1) = %+v, want bitmap (col 1, row 2)", c)
	}
	if c := img.NRGBAAt(1, 0); c.G != 100 {
		t.Errorf("device (1,0) = %+v, want bitmap (col 0, row 1)", c)
	}
}

func TestBitmapRGBA(t *testing.T) {
	b := NewBitmap(2, 1)
	b.Set(1, 0, Pixel{R: 1, G: 2, B: 3, A: 4})
	dst := make([]byte, 8)
	b.RGBA(dst)
	want := []byte{0, 0, 0, 0, 1, 2, 3, 4}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("RGBA = %v, want %v", dst, want)
		}
	}
}

func TestWritePNG(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	path := filepath.Join(t.TempDir(), "out.png")
	if err := WritePNG(path, img); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 4 || cfg.Height != 2 {
		t.Errorf("decoded %dx%d, want 4x2", cfg.Width, cfg.Height)
	}
}

func TestWritePNGBadDir(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	if err := WritePNG(filepath.Join(t.TempDir(), "missing", "x.png"), img); err == nil {
		t.Error("expected error for missing directory")
	}
}
