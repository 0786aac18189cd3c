package preview

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"io"
	"strings"
	"testing"

	"github.com/local/printdesk/internal/filetype"
	"github.com/local/printdesk/internal/order"
	"github.com/local/printdesk/internal/pdftest"
)

func TestRenderTextTruncates(t *testing.T) {
	long := strings.Repeat("a", MaxTextLength+10)
	p, err := Render(order.FileFromBytes("notes.txt", "", []byte(long)), 0, Options{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !p.Truncated {
		t.Error("expected truncation")
	}
	if !strings.HasSuffix(p.Text, TruncationMarker) || len(p.Text) != MaxTextLength+len(TruncationMarker) {
		t.Errorf("unexpected text length %d", len(p.Text))
	}

	p, err = Render(order.FileFromBytes("short.txt", "", []byte("hello")), 0, Options{})
	if err != nil || p.Truncated || p.Text != "hello" {
		t.Errorf("short text preview = %+v, %v", p, err)
	}
}

func TestRenderReadError(t *testing.T) {
	f := order.File{
		Name: "notes.txt",
		Size: 10,
		Open: func() (io.ReadCloser, error) { return nil, errors.New("permission denied") },
	}
	_, err := Render(f, 1, Options{})
	if !errors.Is(err, ErrRead) {
		t.Fatalf("want ErrRead, got %v", err)
	}
	if !strings.Contains(err.Error(), "could not read file") {
		t.Errorf("message = %q", err.Error())
	}
}

func TestRenderUnavailable(t *testing.T) {
	tests := []struct {
		name   string
		kind   filetype.Kind
		notice string
	}{
		{"essay.docx", filetype.KindWord, "Word documents"},
		{"slides.pptx", filetype.KindOther, "this file type"},
	}
	for _, tt := range tests {
		p, err := Render(order.FileFromBytes(tt.name, "", []byte("x")), 1, Options{})
		if !errors.Is(err, ErrUnavailable) {
			t.Errorf("%s: want ErrUnavailable, got %v", tt.name, err)
			continue
		}
		if p.Kind != tt.kind || !strings.Contains(p.Notice, tt.notice) {
			t.Errorf("%s: preview = %+v", tt.name, p)
		}
	}
}

func TestRenderImagePassthrough(t *testing.T) {
	data := []byte{0x89, 'P', 'N', 'G'}
	p, err := Render(order.FileFromBytes("scan.png", "", data), 3, Options{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if string(p.Image) != string(data) || p.Pages != 1 || p.Page != 1 {
		t.Errorf("image preview = %+v", p)
	}
}

func TestTruncateCountsRunes(t *testing.T) {
	s, cut := truncate("héllo wörld", 5)
	if !cut || s != "héllo"+TruncationMarker {
		t.Errorf("truncate = %q, %v", s, cut)
	}
}

func TestRenderPDFPage(t *testing.T) {
	f := order.FileFromBytes("thesis.pdf", "", pdftest.Blank(3))

	tests := []struct {
		name string
		opts Options
		gray bool
	}{
		{"color", Options{DPI: 36}, false},
		{"bw", Options{DPI: 36, Gray: true}, true},
	}
	for _, tt := range tests {
		p, err := Render(f, 2, tt.opts)
		if err != nil {
			t.Fatalf("%s: Render: %v", tt.name, err)
		}
		if p.Kind != filetype.KindPDF || p.Page != 2 || p.Pages != 3 || p.MIMEType != "image/jpeg" {
			t.Errorf("%s: preview = %+v", tt.name, p)
		}
		img, err := jpeg.Decode(bytes.NewReader(p.Image))
		if err != nil {
			t.Fatalf("%s: decode: %v", tt.name, err)
		}
		if _, isGray := img.(*image.Gray); isGray != tt.gray {
			t.Errorf("%s: decoded %T", tt.name, img)
		}
	}
}

func TestRenderPDFPageOutOfRange(t *testing.T) {
	f := order.FileFromBytes("thesis.pdf", "", pdftest.Blank(3))
	_, err := Render(f, 9, Options{})
	if err == nil || !strings.Contains(err.Error(), "out of range") {
		t.Errorf("page 9 of 3: err = %v", err)
	}
	if errors.Is(err, ErrRead) || errors.Is(err, ErrUnavailable) {
		t.Errorf("render failure classified as %v", err)
	}
}

type onePage struct{}

func (onePage) CountPages(ctx context.Context, rs io.ReadSeeker) (int, error) { return 1, nil }

func TestSyncGrowsUnderestimatedPDF(t *testing.T) {
	in := order.NewIntake(order.IntakeOptions{Estimator: order.NewEstimator(onePage{})})
	res := in.Add(context.Background(), order.FileFromBytes("thesis.pdf", "", pdftest.Blank(3)))
	id := res[0].ID
	if res[0].Estimate.Pages != 1 {
		t.Fatalf("estimate = %+v", res[0].Estimate)
	}
	in.UpdatePageSetting(id, 0, order.FieldColorMode, string(order.ColorFull))

	changed, err := Sync(in, id)
	if err != nil || !changed {
		t.Fatalf("Sync = %v, %v", changed, err)
	}
	d, _ := in.Get(id)
	if d.Pages != 3 || len(d.PageSettings) != 3 {
		t.Fatalf("after sync: pages %d settings %d", d.Pages, len(d.PageSettings))
	}
	if d.PageSettings[0].ColorMode != order.ColorFull {
		t.Errorf("first page setting lost: %+v", d.PageSettings[0])
	}
	if d.PageSettings[2] != (order.PageSetting{PageNumber: 3, ColorMode: order.ColorBW, Orientation: order.Portrait}) {
		t.Errorf("new page not defaulted: %+v", d.PageSettings[2])
	}

	if changed, err := Sync(in, id); err != nil || changed {
		t.Errorf("second Sync = %v, %v", changed, err)
	}
}

func TestSyncIgnoresNonPDF(t *testing.T) {
	in := order.NewIntake(order.IntakeOptions{})
	id := in.Add(context.Background(), order.FileFromBytes("notes.txt", "", []byte("hi")))[0].ID
	if changed, err := Sync(in, id); changed || err != nil {
		t.Errorf("Sync on text = %v, %v", changed, err)
	}
	if changed, err := Sync(in, "missing"); changed || err != nil {
		t.Errorf("Sync on unknown id = %v, %v", changed, err)
	}
}
