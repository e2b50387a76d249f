// Package imaging resizes captured screenshots and moves them in and out of
// data URLs.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

const (
	DefaultWidth   = 300
	DefaultQuality = 70
)

var ErrEmptyImage = errors.New("imaging: empty image")

// Resizer scales an encoded image to a fixed width and re-encodes it as JPEG.
type Resizer struct {
	Quality int
}

func NewResizer(quality int) Resizer {
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	return Resizer{Quality: quality}
}

// Resize decodes src (JPEG or PNG), scales it to width keeping the aspect
// ratio and returns JPEG bytes.
func (r Resizer) Resize(src []byte, width int) ([]byte, error) {
	if len(src) == 0 {
		return nil, ErrEmptyImage
	}
	img, _, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("imaging: decode: %w", err)
	}
	scaled, err := Scale(img, width)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: r.Quality}); err != nil {
		return nil, fmt.Errorf("imaging: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Scale resamples img to width, height following the source aspect ratio.
func Scale(img image.Image, width int) (image.Image, error) {
	if width <= 0 {
		return nil, fmt.Errorf("imaging: invalid width %d", width)
	}
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, ErrEmptyImage
	}
	height := bounds.Dy() * width / bounds.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst, nil
}
