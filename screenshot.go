package punkrun

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Screenshot queues a labeled capture of the framebuffer, taken after the
// current tick's composite. The PNG is written to ScreenshotDir with a
// timestamped filename in device orientation.
func (g *Game) Screenshot(label string) {
	g.screenshotQueue = append(g.screenshotQueue, label)
}

// flushScreenshots writes every queued capture. Called at the end of Update.
func (g *Game) flushScreenshots() {
	if len(g.screenshotQueue) == 0 {
		return
	}
	defer func() { g.screenshotQueue = g.screenshotQueue[:0] }()

	if err := os.MkdirAll(g.ScreenshotDir, 0o755); err != nil {
		g.log.Warn("screenshot: mkdir failed", zap.String("dir", g.ScreenshotDir), zap.Error(err))
		return
	}
	img := DeviceImage(&g.framebuffer)
	stamp := time.Now().Format("20060102_150405")
	for _, label := range g.screenshotQueue {
		path := filepath.Join(g.ScreenshotDir, fmt.Sprintf("%s_%06d_%s.png", stamp, g.tick, sanitizeLabel(label)))
		if err := WritePNG(path, img); err != nil {
			g.log.Warn("screenshot failed", zap.String("path", path), zap.Error(err))
			continue
		}
		g.log.Info("screenshot", zap.String("path", path))
	}
}

// DeviceImage transposes a bitmap-oriented framebuffer into a device-
// oriented straight-alpha image: device column x is bitmap row x.
func DeviceImage(fb *Bitmap) *image.NRGBA {
	w, h := int(fb.Height), int(fb.Width)
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	fb.DeviceRGBA(img.Pix)
	return img
}

// DeviceRGBA writes the bitmap into dst as device-oriented RGBA bytes,
// 4*Width*Height long.
func (b *Bitmap) DeviceRGBA(dst []byte) {
	w := int(b.Height)
	for row := int32(0); row < b.Height; row++ {
		src := b.Row(row)
		for col, p := range src {
			i := 4 * (col*w + int(row))
			dst[i], dst[i+1], dst[i+2], dst[i+3] = p.R, p.G, p.B, p.A
		}
	}
}

// RGBA writes the bitmap into dst as RGBA bytes in bitmap orientation.
func (b *Bitmap) RGBA(dst []byte) {
	for i, p := range b.Pix {
		dst[4*i], dst[4*i+1], dst[4*i+2], dst[4*i+3] = p.R, p.G, p.B, p.A
	}
}

// WritePNG encodes img to a PNG file at path.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return errors.Wrapf(err, "encode %s", path)
	}
	return f.Close()
}

// sanitizeLabel replaces characters that are unsafe in file names with
// underscores and falls back to "unlabeled" for empty strings.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
