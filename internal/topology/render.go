package topology

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/image-topology-mcp/internal/raster"
)

// RenderResult contains a rendered visualization encoded as base64 PNG.
type RenderResult struct {
	// Width of the output image in pixels.
	Width int `json:"width"`

	// Height of the output image in pixels.
	Height int `json:"height"`

	// ImageBase64 is the visualization encoded as base64 PNG.
	ImageBase64 string `json:"image_base64"`

	// MimeType is always "image/png".
	MimeType string `json:"mime_type"`
}

// labelColor returns a deterministic, visually distinct color for a label.
// Hues advance by the golden angle so neighboring labels never share a
// similar color.
func labelColor(label int) color.RGBA {
	hue := math.Mod(float64(label)*137.508, 360)
	c := colorful.Hsv(hue, 0.65, 0.95)
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// RenderLabels renders a label raster as a color image: background pixels
// are black, every component gets its own deterministic color.
func RenderLabels(labels *raster.Raster) (*RenderResult, error) {
	width := labels.Width()
	height := labels.Height()

	out := image.NewRGBA(image.Rect(0, 0, width, height))
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			if l := labels.Get(row, col); l != 0 {
				out.SetRGBA(col, row, labelColor(l))
			} else {
				out.SetRGBA(col, row, color.RGBA{A: 255})
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("failed to encode label image: %w", err)
	}

	return &RenderResult{
		Width:       width,
		Height:      height,
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// RenderContours draws the traced boundary points of every contour in the
// tree over a black canvas of the given dimensions, one color per contour.
// Points outside the canvas are skipped.
func RenderContours(tree *ContourTree, width, height int) (*RenderResult, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("invalid canvas dimensions %dx%d", width, height)
	}

	out := image.NewRGBA(image.Rect(0, 0, width, height))
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			out.SetRGBA(col, row, color.RGBA{A: 255})
		}
	}

	tree.Walk(func(id int, c *Contour) bool {
		if c.Kind == ContourBackground {
			return true
		}
		col := labelColor(id)
		for _, p := range c.Points {
			if p.Row >= 0 && p.Row < height && p.Col >= 0 && p.Col < width {
				out.SetRGBA(p.Col, p.Row, col)
			}
		}
		return true
	})

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("failed to encode contour image: %w", err)
	}

	return &RenderResult{
		Width:       width,
		Height:      height,
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
