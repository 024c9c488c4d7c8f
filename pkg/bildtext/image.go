package bildtext

import (
	"bytes"
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
	"k8s.io/klog/v2"
)

// maxDimension bounds the longer edge of the payload sent to the AI
// provider. Larger images only add upload time, not caption quality.
var maxDimension = 1600

var jpegQuality = 85

// PrepareImage loads a raster image, bounds it to maxDimension on its
// longer edge, and re-encodes it as a JPEG suitable for a vision request.
func PrepareImage(path string) ([]byte, error) {
	img, err := imgio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("imgio.Open: %w", err)
	}

	img = bound(img, maxDimension)

	buf := &bytes.Buffer{}
	if err := imgio.JPEGEncoder(jpegQuality)(buf, img); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}

	klog.V(1).Infof("prepared %s: %d bytes %v", path, buf.Len(), img.Bounds())
	return buf.Bytes(), nil
}

// bound shrinks i so that neither edge exceeds max, preserving aspect
// ratio. Images already within bounds are returned unchanged: the payload
// is never upscaled.
func bound(i image.Image, max int) image.Image {
	x := i.Bounds().Dx()
	y := i.Bounds().Dy()
	if x <= max && y <= max {
		return i
	}

	scale := float64(x) / float64(max)
	if y > x {
		scale = float64(y) / float64(max)
	}

	return transform.Resize(i, int(float64(x)/scale), int(float64(y)/scale), transform.Lanczos)
}
