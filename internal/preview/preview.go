// Package preview builds per-type previews of documents in an order: PDF
// pages rendered to JPEG, images as-is, the beginning of text files, and a
// notice for everything that is printed as submitted.
package preview

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/local/printdesk/internal/filetype"
	"github.com/local/printdesk/internal/imagerender"
	"github.com/local/printdesk/internal/order"
)

// MaxTextLength is the number of characters shown of a text file.
const MaxTextLength = 50000

// TruncationMarker is appended to truncated text previews.
const TruncationMarker = "\n\n[...content truncated for preview...]"

var (
	// ErrRead means the file content could not be read.
	ErrRead = errors.New("could not read file")
	// ErrUnavailable means the file type has no preview.
	ErrUnavailable = errors.New("preview not available")
)

// Preview is the result of previewing one document page.
type Preview struct {
	Kind     filetype.Kind `json:"kind"`
	Name     string        `json:"name"`
	Page     int           `json:"page,omitempty"`
	Pages    int           `json:"pages"`
	MIMEType string        `json:"mimeType"`
	// Image holds JPEG bytes for PDFs or the original bytes for images.
	Image     []byte `json:"-"`
	Text      string `json:"text,omitempty"`
	Truncated bool   `json:"truncated,omitempty"`
	// Notice is the message shown when there is nothing to render.
	Notice string `json:"notice,omitempty"`
}

// Options tune PDF rendering. Gray renders the page as it prints in
// black and white.
type Options struct {
	DPI     int
	Quality int
	Gray    bool
}

// Render previews page (1-based; PDFs only) of f. Read failures wrap
// ErrRead; types without a preview return a Preview with a Notice and
// ErrUnavailable.
func Render(f order.File, page int, opts Options) (*Preview, error) {
	info := filetype.New().Detect(f.Name, nil)
	p := &Preview{Kind: info.Kind, Name: f.Name, Pages: 1, MIMEType: info.MIMEType}

	switch info.Kind {
	case filetype.KindPDF:
		data, err := f.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrRead, f.Name, err)
		}
		if page < 1 {
			page = 1
		}
		mode := imagerender.ColorRGB
		if opts.Gray {
			mode = imagerender.ColorGray
		}
		rp, err := imagerender.RenderPDFPage(data, page, opts.DPI, opts.Quality, mode)
		if err != nil {
			log.Warn().Err(err).Str("file", f.Name).Int("page", page).Msg("pdf preview failed")
			return nil, fmt.Errorf("error loading PDF: %w", err)
		}
		p.Page, p.Pages, p.Image, p.MIMEType = page, rp.PageCount, rp.JPEG, "image/jpeg"
		return p, nil

	case filetype.KindImage:
		data, err := f.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrRead, f.Name, err)
		}
		p.Page, p.Image = 1, data
		return p, nil

	case filetype.KindText:
		data, err := f.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrRead, f.Name, err)
		}
		p.Text, p.Truncated = truncate(string(data), MaxTextLength)
		return p, nil

	case filetype.KindWord:
		p.Notice = "Preview not available for Word documents. The file will be printed as submitted."
		return p, ErrUnavailable

	default:
		p.Notice = "Preview not available for this file type. The file will be printed as submitted."
		return p, ErrUnavailable
	}
}

// truncate cuts s to max characters and appends TruncationMarker.
func truncate(s string, max int) (string, bool) {
	if utf8.RuneCountInString(s) <= max {
		return s, false
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i] + TruncationMarker, true
		}
		n++
	}
	return s, false
}

// Sync renders the first page of a PDF document to learn its real page
// count and, when it differs from the intake's, re-synchronizes the page
// settings. It reports whether the intake changed.
func Sync(in *order.Intake, id string) (bool, error) {
	doc, ok := in.Get(id)
	if !ok || filetype.KindOf(doc.Name) != filetype.KindPDF {
		return false, nil
	}
	data, err := doc.File.ReadAll()
	if err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrRead, doc.Name, err)
	}
	n, err := imagerender.PDFPageCount(data)
	if err != nil {
		return false, err
	}
	if n < 1 || n == len(doc.PageSettings) {
		return false, nil
	}
	log.Info().Str("file", doc.Name).Int("estimated", doc.Pages).Int("actual", n).Msg("page count corrected by preview")
	return in.SetPageCount(id, n), nil
}
