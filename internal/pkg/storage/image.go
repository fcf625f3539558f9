package storage

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"

	"github.com/disintegration/imaging"
)

const (
	ThumbnailWidth  = 320
	ThumbnailHeight = 320
	thumbnailJPEGQ  = 80
)

// Thumbnailer produces JPEG previews of uploaded images.
type Thumbnailer struct {
	width, height int
}

func NewThumbnailer(width, height int) *Thumbnailer {
	return &Thumbnailer{width: width, height: height}
}

// Generate decodes src and returns a JPEG fitted into the thumbnailer's box.
// Images already smaller than the box are not upscaled.
func (t *Thumbnailer) Generate(src io.Reader) ([]byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	b := img.Bounds()
	if b.Dx() > t.width || b.Dy() > t.height {
		img = imaging.Fit(img, t.width, t.height, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: thumbnailJPEGQ}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
