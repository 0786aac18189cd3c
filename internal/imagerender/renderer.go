package imagerender

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"

	"github.com/gen2brain/go-fitz"
	"github.com/rs/zerolog/log"
)

// ColorMode defines the color mode for rendering
type ColorMode string

const (
	ColorRGB  ColorMode = "rgb"
	ColorGray ColorMode = "gray"
)

// Page is a rendered PDF page.
type Page struct {
	JPEG   []byte
	Width  int
	Height int
	// PageCount is the number of pages in the whole document.
	PageCount int
}

// RenderPDFPage renders page pageNum (1-based) of an in-memory PDF as JPEG.
func RenderPDFPage(pdf []byte, pageNum, dpi, quality int, mode ColorMode) (*Page, error) {
	doc, err := fitz.NewFromMemory(pdf)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	total := doc.NumPage()
	if pageNum < 1 || pageNum > total {
		return nil, fmt.Errorf("page %d out of range (1-%d)", pageNum, total)
	}
	if dpi <= 0 {
		dpi = 96
	}
	if quality <= 0 || quality > 100 {
		quality = 85
	}

	// go-fitz uses 0-based indexing
	img, err := doc.ImageDPI(pageNum-1, float64(dpi))
	if err != nil {
		return nil, fmt.Errorf("failed to render page %d: %w", pageNum, err)
	}

	var final image.Image = img
	if mode == ColorGray {
		gray := image.NewGray(img.Bounds())
		draw.Draw(gray, gray.Bounds(), img, img.Bounds().Min, draw.Src)
		final = gray
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, final, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}

	b := img.Bounds()
	log.Debug().
		Int("page", pageNum).
		Int("pages", total).
		Int("width", b.Dx()).
		Int("height", b.Dy()).
		Str("color", string(mode)).
		Int("jpeg_size", buf.Len()).
		Msg("rendered pdf page")

	return &Page{JPEG: buf.Bytes(), Width: b.Dx(), Height: b.Dy(), PageCount: total}, nil
}

// PDFPageCount opens an in-memory PDF with MuPDF and returns its page count.
func PDFPageCount(pdf []byte) (int, error) {
	doc, err := fitz.NewFromMemory(pdf)
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()
	return doc.NumPage(), nil
}
