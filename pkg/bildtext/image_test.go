package bildtext

import (
	"bytes"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	_ "image/jpeg"

	"github.com/anthonynsimon/bild/imgio"
)

// writeTestJPEG writes a gradient JPEG of the given dimensions.
func writeTestJPEG(t *testing.T, path string, w, h int) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x % 256), uint8(y % 256), 128, 255})
		}
	}

	if err := imgio.Save(path, img, imgio.JPEGEncoder(90)); err != nil {
		t.Fatalf("save %s: %v", path, err)
	}
}

func preparedBounds(t *testing.T, data []byte) (int, int) {
	t.Helper()

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("payload format = %q, want jpeg", format)
	}

	return cfg.Width, cfg.Height
}

func TestPrepareImageNoUpscale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "small.jpg")
	writeTestJPEG(t, path, 800, 600)

	data, err := PrepareImage(path)
	if err != nil {
		t.Fatalf("PrepareImage: %v", err)
	}

	w, h := preparedBounds(t, data)
	if w != 800 || h != 600 {
		t.Errorf("payload is %dx%d, want 800x600 (no upscaling)", w, h)
	}
}

func TestPrepareImageDownscale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wide.jpg")
	writeTestJPEG(t, path, 3200, 1600)

	data, err := PrepareImage(path)
	if err != nil {
		t.Fatalf("PrepareImage: %v", err)
	}

	w, h := preparedBounds(t, data)
	if w != 1600 || h != 800 {
		t.Errorf("payload is %dx%d, want 1600x800", w, h)
	}
}

func TestPrepareImageTallDownscale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tall.jpg")
	writeTestJPEG(t, path, 1000, 2000)

	data, err := PrepareImage(path)
	if err != nil {
		t.Fatalf("PrepareImage: %v", err)
	}

	w, h := preparedBounds(t, data)
	if w != 800 || h != 1600 {
		t.Errorf("payload is %dx%d, want 800x1600", w, h)
	}
}

func TestPrepareImageMissing(t *testing.T) {
	if _, err := PrepareImage(filepath.Join(t.TempDir(), "nope.jpg")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
