// Package imaging provides pure image transformations that prepare rendered
// PDF pages for a vision-language model: downscale to a pixel budget, flatten
// alpha onto white, JPEG encode, and wrap as a base64 data URI.
package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"math"

	"golang.org/x/image/draw"
)

const (
	// DefaultMaxPixels is the pixel budget used when none is configured.
	// Matches the input resolution limit of the default VLM.
	DefaultMaxPixels = 1_003_520

	// DefaultJPEGQuality is the encoder quality used when none is configured.
	DefaultJPEGQuality = 90
)

// ScaleFactor returns the downscale factor that fits width*height within
// maxPixels. Returns 1.0 when the image is already within budget; never
// upscales.
func ScaleFactor(width, height, maxPixels int) float64 {
	total := width * height
	if total <= maxPixels {
		return 1.0
	}
	return math.Sqrt(float64(maxPixels) / float64(total))
}

// Resize downscales img to fit within maxPixels using CatmullRom filtering.
// Returns img unchanged when it is already within budget.
func Resize(img image.Image, maxPixels int) image.Image {
	bounds := img.Bounds()
	factor := ScaleFactor(bounds.Dx(), bounds.Dy(), maxPixels)
	if factor >= 1.0 {
		return img
	}

	w := max(1, int(math.Round(float64(bounds.Dx())*factor)))
	h := max(1, int(math.Round(float64(bounds.Dy())*factor)))

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// ToRGB composites img onto an opaque white background, dropping any alpha
// channel. Non-RGB color models are converted in the process.
func ToRGB(img image.Image) image.Image {
	bounds := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Over)
	return dst
}

// EncodeJPEG encodes img as JPEG bytes. Quality must be in [1, 100].
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	if quality < 1 || quality > 100 {
		return nil, fmt.Errorf("jpeg quality %d out of range [1, 100]", quality)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// ToDataURI wraps JPEG bytes as a base64 data URI for VLM payloads.
func ToDataURI(jpegBytes []byte) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpegBytes)
}

// EncodeForVLM runs resize → flatten → JPEG encode, producing the bytes that
// are cached on disk per page.
func EncodeForVLM(img image.Image, maxPixels, quality int) ([]byte, error) {
	resized := Resize(img, maxPixels)
	return EncodeJPEG(ToRGB(resized), quality)
}

// PrepareForVLM is the full pipeline: resize → flatten → encode → data URI.
// Deterministic for identical inputs.
func PrepareForVLM(img image.Image, maxPixels, quality int) (string, error) {
	data, err := EncodeForVLM(img, maxPixels, quality)
	if err != nil {
		return "", err
	}
	return ToDataURI(data), nil
}
