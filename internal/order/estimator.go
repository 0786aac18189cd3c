package order

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/rs/zerolog/log"

	"github.com/local/printdesk/internal/filetype"
	"github.com/local/printdesk/internal/metrics"
)

const (
	pdfBytesPerPage  = 50 * 1024
	wordBytesPerPage = 20 * 1024
)

// Method tells how a page count was obtained.
type Method string

const (
	MethodFixed     Method = "fixed"
	MethodExact     Method = "exact"
	MethodHeuristic Method = "heuristic"
)

// Estimate is a page count and how it was obtained. Pages is always >= 1.
type Estimate struct {
	Pages  int    `json:"pages"`
	Method Method `json:"method"`
}

// PageCounter counts the pages of a PDF.
type PageCounter interface {
	CountPages(ctx context.Context, rs io.ReadSeeker) (int, error)
}

// PDFCounter counts pages with pdfcpu.
type PDFCounter struct{}

// CountPages parses rs and returns its page count. pdfcpu panics on some
// malformed inputs; those are returned as errors.
func (PDFCounter) CountPages(ctx context.Context, rs io.ReadSeeker) (n int, err error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("pdf parse panic: %v", r)
		}
	}()
	n, err = api.PageCount(rs, nil)
	if err != nil {
		return 0, fmt.Errorf("pdf page count failed: %w", err)
	}
	return n, nil
}

// Estimator turns a file into a page count. It never fails: anything that
// goes wrong on the exact path degrades to the size heuristic.
type Estimator struct {
	counter PageCounter
}

// NewEstimator returns an Estimator using counter for PDFs, or pdfcpu when
// counter is nil.
func NewEstimator(counter PageCounter) *Estimator {
	if counter == nil {
		counter = PDFCounter{}
	}
	return &Estimator{counter: counter}
}

// Estimate returns the page count of f.
func (e *Estimator) Estimate(ctx context.Context, f File) Estimate {
	est := e.estimate(ctx, f)
	metrics.IncEstimate(string(est.Method))
	return est
}

func (e *Estimator) estimate(ctx context.Context, f File) Estimate {
	switch filetype.KindOf(f.Name) {
	case filetype.KindImage:
		return Estimate{Pages: 1, Method: MethodFixed}
	case filetype.KindPDF:
		data, err := f.ReadAll()
		if err != nil {
			log.Warn().Err(err).Str("file", f.Name).Msg("pdf read failed; using size estimate")
			return Estimate{Pages: HeuristicPages(f.Name, f.Size), Method: MethodHeuristic}
		}
		n, err := e.counter.CountPages(ctx, bytes.NewReader(data))
		if err != nil || n < 1 {
			log.Warn().Err(err).Str("file", f.Name).Int("pages", n).Msg("pdf page count failed; using size estimate")
			return Estimate{Pages: HeuristicPages(f.Name, f.Size), Method: MethodHeuristic}
		}
		log.Debug().Str("file", f.Name).Int("pages", n).Msg("pdf page count")
		return Estimate{Pages: n, Method: MethodExact}
	case filetype.KindWord:
		return Estimate{Pages: HeuristicPages(f.Name, f.Size), Method: MethodHeuristic}
	default:
		return Estimate{Pages: 1, Method: MethodFixed}
	}
}

// HeuristicPages guesses a page count from the file size: 50KB per PDF
// page, 20KB per Word page, 1 for everything else.
func HeuristicPages(name string, size int64) int {
	var per int64
	switch filetype.KindOf(name) {
	case filetype.KindPDF:
		per = pdfBytesPerPage
	case filetype.KindWord:
		per = wordBytesPerPage
	default:
		return 1
	}
	if size <= 0 {
		return 1
	}
	return int((size + per - 1) / per)
}
