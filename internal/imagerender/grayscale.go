package imagerender

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"

	"github.com/disintegration/imaging"
)

// DefaultContrast is the contrast boost applied after grayscale conversion.
const DefaultContrast = 0.2

// Grayscale converts an encoded image to grayscale, applies a contrast
// adjustment in [-1, 1] and re-encodes it in the same format.
func Grayscale(data []byte, contrast float64) ([]byte, error) {
	_, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	format, err := imaging.FormatFromExtension(name)
	if err != nil {
		return nil, fmt.Errorf("unsupported image format %q", name)
	}
	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	adjusted := imaging.AdjustContrast(imaging.Grayscale(src), contrastPercent(contrast))
	gray := image.NewGray(adjusted.Bounds())
	draw.Draw(gray, gray.Bounds(), adjusted, adjusted.Bounds().Min, draw.Src)

	var out image.Image = gray
	if format == imaging.GIF {
		out = grayPaletted(gray)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, format, imaging.JPEGQuality(90)); err != nil {
		return nil, fmt.Errorf("encode %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// GrayscaleFile converts the image at path in place.
func GrayscaleFile(path string, contrast float64) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out, err := Grayscale(data, contrast)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o644)
}

// contrastPercent maps a [-1, 1] contrast onto imaging's percentage scale.
func contrastPercent(c float64) float64 {
	switch {
	case c > 1:
		c = 1
	case c < -1:
		c = -1
	}
	return c * 100
}

func grayPaletted(g *image.Gray) *image.Paletted {
	pal := make(color.Palette, 256)
	for i := range pal {
		pal[i] = color.Gray{Y: uint8(i)}
	}
	p := image.NewPaletted(g.Bounds(), pal)
	copy(p.Pix, g.Pix)
	return p
}
