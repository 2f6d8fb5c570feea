package client

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// minOCRWidth is the width below which scans are upscaled before OCR.
const minOCRWidth = 1200

// PreprocessImage prepares a scan for OCR: orientation fix, grayscale,
// upscaling of small images, contrast and sharpening. The result is PNG.
func PreprocessImage(data []byte) ([]byte, error) {
	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return EncodePNG(EnhanceForOCR(src))
}

// EnhanceForOCR applies the preprocessing steps to a decoded image.
func EnhanceForOCR(src image.Image) image.Image {
	img := imaging.Grayscale(src)

	if w := img.Bounds().Dx(); w > 0 && w < minOCRWidth {
		img = imaging.Resize(img, minOCRWidth, 0, imaging.Lanczos)
	}

	img = imaging.AdjustContrast(img, 30)
	img = imaging.Sharpen(img, 1.5)
	img = imaging.AdjustBrightness(img, 10)
	return img
}

// EncodePNG encodes an image for engines that take raw bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
