package storage

import (
	"bytes"
	"errors"
	"image"
	_ "image/gif" // Register GIF decoder
	_ "image/jpeg"
	_ "image/png"

	"github.com/chai2010/webp"
	_ "golang.org/x/image/bmp" // Register BMP decoder
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultMaxDimension = 1440
	WebPQuality         = 75
)

var ErrUnsupportedImage = errors.New("unsupported image")

// ImageProcessor normalises uploaded pictures to webp.
type ImageProcessor struct {
	quality float32
}

func NewImageProcessor() *ImageProcessor {
	return &ImageProcessor{quality: WebPQuality}
}

// ToWebP converts data bounded by DefaultMaxDimension.
func (p *ImageProcessor) ToWebP(data []byte) ([]byte, error) {
	return p.ToWebPSized(data, DefaultMaxDimension)
}

// ToWebPSized decodes data, shrinks it so neither side exceeds maxDim and
// re-encodes it as webp. A non-positive maxDim keeps the original size.
func (p *ImageProcessor) ToWebPSized(data []byte, maxDim int) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrUnsupportedImage
	}
	if maxDim > 0 {
		src = resizeToFit(src, maxDim, maxDim)
	}

	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, src, &webp.Options{Quality: p.quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scale := float64(maxWidth) / float64(w)
	if s := float64(maxHeight) / float64(h); s < scale {
		scale = s
	}
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}
