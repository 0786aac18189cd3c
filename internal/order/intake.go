package order

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/local/printdesk/internal/filetype"
)

// DefaultMaxFileSize is the largest file the intake accepts.
const DefaultMaxFileSize int64 = 10 * 1024 * 1024

// ErrFileTooLarge is reported for files over the intake's size limit.
var ErrFileTooLarge = errors.New("file too large")

// AddResult reports what happened to one file passed to Add.
type AddResult struct {
	Name     string
	ID       string // empty when rejected
	Estimate Estimate
	Err      error
}

// IntakeOptions configures an Intake.
type IntakeOptions struct {
	Estimator *Estimator
	// Pricing defaults to DefaultPricing when nil. A zero Pricing is
	// a free order.
	Pricing     *Pricing
	MaxFileSize int64
	// OnChange is called after every visible state change of a document
	// (added, analyzed). It runs without the intake lock held.
	OnChange func(Document)
}

// Intake owns the ordered list of documents of one order.
type Intake struct {
	mu   sync.Mutex
	docs []*Document

	estimator *Estimator
	detector  *filetype.Detector
	pricing   Pricing
	maxSize   int64
	onChange  func(Document)
}

// NewIntake creates an empty intake.
func NewIntake(opts IntakeOptions) *Intake {
	if opts.Estimator == nil {
		opts.Estimator = NewEstimator(nil)
	}
	pricing := DefaultPricing
	if opts.Pricing != nil {
		pricing = *opts.Pricing
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = DefaultMaxFileSize
	}
	return &Intake{
		estimator: opts.Estimator,
		detector:  filetype.New(),
		pricing:   pricing,
		maxSize:   opts.MaxFileSize,
		onChange:  opts.OnChange,
	}
}

// Add appends files in order, estimating each one before starting the next.
// Oversized files are rejected with ErrFileTooLarge and leave the list
// unchanged; every other file ends with its final page count.
func (in *Intake) Add(ctx context.Context, files ...File) []AddResult {
	results := make([]AddResult, 0, len(files))
	for _, f := range files {
		results = append(results, in.addOne(ctx, f))
	}
	return results
}

func (in *Intake) addOne(ctx context.Context, f File) AddResult {
	res := AddResult{Name: f.Name}
	if f.Size > in.maxSize {
		res.Err = fmt.Errorf("file %s is too large (maximum size is %dMB): %w", f.Name, in.maxSize>>20, ErrFileTooLarge)
		log.Warn().Str("file", f.Name).Int64("size", f.Size).Int64("max", in.maxSize).Msg("file rejected")
		return res
	}
	if f.Type == "" {
		f.Type = in.detector.Detect(f.Name, nil).MIMEType
	}

	doc := &Document{
		ID:           uuid.NewString(),
		Name:         f.Name,
		Size:         f.Size,
		Type:         f.Type,
		Pages:        1,
		PageSettings: resizeSettings(nil, 1),
		Analyzing:    true,
		File:         f,
	}
	in.mu.Lock()
	in.docs = append(in.docs, doc)
	snap := doc.clone()
	in.mu.Unlock()
	in.notify(snap)

	est := in.estimator.Estimate(ctx, f)

	in.mu.Lock()
	// the document may have been removed while it was being analyzed
	if in.indexOf(doc.ID) >= 0 {
		doc.Pages = est.Pages
		doc.PageSettings = resizeSettings(doc.PageSettings, est.Pages)
		doc.Analyzing = false
	}
	snap = doc.clone()
	in.mu.Unlock()
	in.notify(snap)

	log.Info().Str("file", f.Name).Str("id", doc.ID).Int("pages", est.Pages).Str("method", string(est.Method)).Msg("file added")
	res.ID = doc.ID
	res.Estimate = est
	return res
}

func (in *Intake) notify(d Document) {
	if in.onChange != nil {
		in.onChange(d)
	}
}

// indexOf must be called with mu held.
func (in *Intake) indexOf(id string) int {
	for i, d := range in.docs {
		if d.ID == id {
			return i
		}
	}
	return -1
}

// Remove deletes the document with id. It reports whether one was removed.
func (in *Intake) Remove(id string) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	i := in.indexOf(id)
	if i < 0 {
		return false
	}
	in.docs = append(in.docs[:i], in.docs[i+1:]...)
	return true
}

// UpdatePageSetting sets one field of one page. pageIndex is 0-based.
// Unknown ids, out-of-range indexes, unknown fields and invalid values are
// ignored; the return value reports whether anything changed.
func (in *Intake) UpdatePageSetting(id string, pageIndex int, field Field, value string) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	i := in.indexOf(id)
	if i < 0 {
		return false
	}
	doc := in.docs[i]
	if pageIndex < 0 || pageIndex >= len(doc.PageSettings) {
		return false
	}
	ps := &doc.PageSettings[pageIndex]
	switch field {
	case FieldColorMode:
		m := ColorMode(value)
		if !m.Valid() {
			return false
		}
		ps.ColorMode = m
	case FieldOrientation:
		o := Orientation(value)
		if !o.Valid() {
			return false
		}
		ps.Orientation = o
	default:
		return false
	}
	return true
}

// SetPageCount replaces the page count of a document, e.g. once a preview
// has found the real number of pages. Existing settings are kept by
// position.
func (in *Intake) SetPageCount(id string, pages int) bool {
	if pages < 1 {
		return false
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	i := in.indexOf(id)
	if i < 0 {
		return false
	}
	doc := in.docs[i]
	if doc.Pages == pages && len(doc.PageSettings) == pages {
		return false
	}
	doc.Pages = pages
	doc.PageSettings = resizeSettings(doc.PageSettings, pages)
	return true
}

// Get returns a copy of the document with id.
func (in *Intake) Get(id string) (Document, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	i := in.indexOf(id)
	if i < 0 {
		return Document{}, false
	}
	return in.docs[i].clone(), true
}

// List returns copies of all documents in insertion order.
func (in *Intake) List() []Document {
	in.mu.Lock()
	defer in.mu.Unlock()
	out := make([]Document, len(in.docs))
	for i, d := range in.docs {
		out[i] = d.clone()
	}
	return out
}

// Len returns the number of documents.
func (in *Intake) Len() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.docs)
}

// Summary prices the current documents.
func (in *Intake) Summary() Summary {
	return in.pricing.Summarize(in.List())
}

// Pricing returns the intake's unit prices.
func (in *Intake) Pricing() Pricing { return in.pricing }

// MaxFileSize is the effective per-file size limit in bytes.
func (in *Intake) MaxFileSize() int64 { return in.maxSize }

// Reset drops every document, e.g. after a successful submission.
func (in *Intake) Reset() {
	in.mu.Lock()
	in.docs = nil
	in.mu.Unlock()
}
