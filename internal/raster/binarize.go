package raster

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/disintegration/imaging"
)

// Grayscale converts an image to 8-bit grayscale.
//
// The conversion is delegated to the imaging library, which uses standard
// luminance weights, so binarization here matches the preview images
// produced elsewhere in the toolchain.
func Grayscale(img image.Image) *image.Gray {
	flat := imaging.Grayscale(img)
	bounds := flat.Bounds()

	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			// Grayscale output has R == G == B.
			c := flat.NRGBAAt(bounds.Min.X+x, bounds.Min.Y+y)
			gray.SetGray(x, y, color.Gray{Y: c.R})
		}
	}
	return gray
}

// OtsuLevel computes the Otsu threshold of a grayscale image: the level
// that maximizes the between-class variance of the foreground/background
// split. Returns 0 for an empty image.
func OtsuLevel(gray *image.Gray) uint8 {
	bounds := gray.Bounds()
	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return 0
	}

	var hist [256]int
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			hist[gray.GrayAt(x, y).Y]++
		}
	}

	var sum float64
	for level, n := range hist {
		sum += float64(level) * float64(n)
	}

	var (
		sumBack    float64
		weightBack int
		bestVar    float64
		bestLevel  uint8
	)
	for level := 0; level < 256; level++ {
		weightBack += hist[level]
		if weightBack == 0 {
			continue
		}
		weightFore := total - weightBack
		if weightFore == 0 {
			break
		}

		sumBack += float64(level) * float64(hist[level])
		meanBack := sumBack / float64(weightBack)
		meanFore := (sum - sumBack) / float64(weightFore)
		diff := meanBack - meanFore
		between := float64(weightBack) * float64(weightFore) * diff * diff
		if between > bestVar {
			bestVar = between
			bestLevel = uint8(level)
		}
	}
	return bestLevel
}

// FromImage converts an image to a binary raster: pixels with grayscale
// intensity >= threshold become 1, all others 0.
func FromImage(img image.Image, threshold uint8) *Raster {
	gray := Grayscale(img)
	bounds := gray.Bounds()

	r := NewRaster(bounds.Dx(), bounds.Dy())
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			if gray.GrayAt(x, y).Y >= threshold {
				r.Set(y, x, 1)
			}
		}
	}
	return r
}

// FromImageOtsu converts an image to a binary raster using an automatically
// selected Otsu threshold, and reports the level it picked. The level itself
// belongs to the background class, so foreground is intensity strictly above
// it.
func FromImageOtsu(img image.Image) (*Raster, uint8) {
	gray := Grayscale(img)
	level := OtsuLevel(gray)
	bounds := gray.Bounds()

	r := NewRaster(bounds.Dx(), bounds.Dy())
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			if gray.GrayAt(x, y).Y > level {
				r.Set(y, x, 1)
			}
		}
	}
	return r, level
}

// ToGray renders a raster as a grayscale image with foreground samples
// white (255) and background black (0).
func ToGray(r *Raster) *image.Gray {
	gray := image.NewGray(image.Rect(0, 0, r.Width(), r.Height()))
	for row := 0; row < r.Height(); row++ {
		for col := 0; col < r.Width(); col++ {
			if r.Get(row, col) != 0 {
				gray.SetGray(col, row, color.Gray{Y: 255})
			}
		}
	}
	return gray
}

// BinarizeResult contains a binarized image encoded as base64 PNG along
// with the threshold that produced it.
type BinarizeResult struct {
	// Width of the output image in pixels (same as input).
	Width int `json:"width"`

	// Height of the output image in pixels (same as input).
	Height int `json:"height"`

	// Threshold is the grayscale level used for the split. When Otsu
	// selection was requested this is the computed level.
	Threshold uint8 `json:"threshold"`

	// ForegroundPixels is the number of foreground pixels in the mask.
	ForegroundPixels int `json:"foreground_pixels"`

	// ImageBase64 is the binary mask encoded as base64 PNG, foreground
	// white and background black.
	ImageBase64 string `json:"image_base64"`

	// MimeType is always "image/png".
	MimeType string `json:"mime_type"`
}

// Binarize converts an image to a binary mask and returns it as base64 PNG.
//
// Parameters:
//   - img: Source image (color or grayscale).
//   - threshold: Grayscale cutoff (0-255). Pass a negative value to select
//     the threshold automatically with Otsu's method.
//
// Returns the encoded mask together with the binary raster, so callers can
// feed the raster straight into the topology operations without a second
// conversion.
func Binarize(img image.Image, threshold int) (*BinarizeResult, *Raster, error) {
	if threshold > 255 {
		return nil, nil, fmt.Errorf("threshold %d out of range [0, 255]", threshold)
	}

	var (
		bin   *Raster
		level uint8
	)
	if threshold < 0 {
		bin, level = FromImageOtsu(img)
	} else {
		level = uint8(threshold)
		bin = FromImage(img, level)
	}

	foreground := 0
	for row := 0; row < bin.Height(); row++ {
		for col := 0; col < bin.Width(); col++ {
			if bin.Get(row, col) != 0 {
				foreground++
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, ToGray(bin)); err != nil {
		return nil, nil, fmt.Errorf("failed to encode mask: %w", err)
	}

	return &BinarizeResult{
		Width:            bin.Width(),
		Height:           bin.Height(),
		Threshold:        level,
		ForegroundPixels: foreground,
		ImageBase64:      base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:         "image/png",
	}, bin, nil
}
