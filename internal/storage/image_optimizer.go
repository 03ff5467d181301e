package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"

	// decoders for image.Decode
	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"

	"github.com/mhsenam/rentmio/internal/utils"
)

const (
	MaxImageWidth = 1200
	JPEGQuality   = 70
)

var (
	ErrImageTooLarge = errors.New("File size exceeds 1MB limit even after optimization.")
	ErrNotAnImage    = errors.New("upload is not a jpeg, png or gif image")
)

// ImageOptimizer shrinks uploads to fit the storage limit.
type ImageOptimizer struct {
	MaxBytes int
	MaxWidth int
	Quality  int
}

func NewImageOptimizer() *ImageOptimizer {
	return &ImageOptimizer{
		MaxBytes: utils.MaxUploadBytes,
		MaxWidth: MaxImageWidth,
		Quality:  JPEGQuality,
	}
}

// Optimize rejects anything whose header is not a supported image with
// ErrNotAnImage. A valid image that already fits is returned unchanged;
// a larger one is scaled down to MaxWidth keeping the aspect ratio and
// re-encoded as JPEG.
func (o *ImageOptimizer) Optimize(data []byte) ([]byte, error) {
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}
	if len(data) <= o.MaxBytes {
		return data, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > o.MaxWidth {
		h = h * o.MaxWidth / w
		w = o.MaxWidth
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: o.Quality}); err != nil {
		return nil, err
	}
	if buf.Len() > o.MaxBytes {
		return nil, ErrImageTooLarge
	}
	return buf.Bytes(), nil
}
