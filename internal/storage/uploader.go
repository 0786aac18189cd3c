package storage

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/local/printdesk/internal/filetype"
	"github.com/local/printdesk/internal/imagerender"
	"github.com/local/printdesk/internal/metrics"
)

// Uploader moves received temp files to a Backend, converting images to
// grayscale first when monochrome printing was requested.
type Uploader struct {
	backend  Backend
	detector *filetype.Detector
	contrast float64
}

// NewUploader wraps backend.
func NewUploader(backend Backend) *Uploader {
	return &Uploader{backend: backend, detector: filetype.New(), contrast: imagerender.DefaultContrast}
}

// Backend returns the wrapped backend.
func (u *Uploader) Backend() Backend { return u.backend }

// CreateFolder creates a folder on the backend.
func (u *Uploader) CreateFolder(ctx context.Context, name, parentID string) (string, error) {
	return u.backend.CreateFolder(ctx, name, parentID)
}

// UploadFile uploads the file at localPath into folderID under name. The
// local file is removed on every path.
func (u *Uploader) UploadFile(ctx context.Context, localPath, folderID, name string, monochrome bool) (Object, error) {
	defer func() {
		if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", localPath).Msg("failed to remove temp file")
		}
	}()

	kind := filetype.KindOf(name)
	if monochrome {
		u.convert(localPath, name, kind)
	}

	// temp files carry no extension; trust the original name for known kinds
	contentType := u.detector.DetectFile(localPath).MIMEType
	if kind != filetype.KindOther {
		contentType = u.detector.Detect(name, nil).MIMEType
	}

	f, err := os.Open(localPath)
	if err != nil {
		return Object{}, fmt.Errorf("open upload %s: %w", name, err)
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return Object{}, err
	}

	start := time.Now()
	obj, err := u.backend.Put(ctx, folderID, name, contentType, f, st.Size())
	if err != nil {
		return Object{}, fmt.Errorf("upload %s: %w", name, err)
	}

	mode := "color"
	if monochrome {
		mode = "bw"
	}
	metrics.IncStored(u.backend.Name(), mode)
	log.Info().
		Str("file", name).
		Str("folder", folderID).
		Str("backend", u.backend.Name()).
		Str("color_mode", mode).
		Int64("size", st.Size()).
		Dur("took", time.Since(start)).
		Msg("file stored")
	return obj, nil
}

// convert rewrites images in place as grayscale. PDFs and other documents
// are uploaded unchanged and printed in monochrome by the shop.
func (u *Uploader) convert(path, name string, kind filetype.Kind) {
	switch kind {
	case filetype.KindImage:
		if err := imagerender.GrayscaleFile(path, u.contrast); err != nil {
			metrics.IncConversion("image", "failed")
			log.Warn().Err(err).Str("file", name).Msg("grayscale conversion failed, uploading original")
			return
		}
		metrics.IncConversion("image", "converted")
		log.Debug().Str("file", name).Msg("converted image to grayscale")
	case filetype.KindPDF:
		metrics.IncConversion("pdf", "skipped")
		log.Info().Str("file", name).Msg("pdf marked for b&w printing, uploaded as-is")
	default:
		metrics.IncConversion(string(kind), "skipped")
	}
}
