package pdftest

import (
	"bytes"
	"testing"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

func TestBlankPageCount(t *testing.T) {
	tests := []struct {
		pages int
		want  int
	}{
		{1, 1},
		{3, 3},
		{0, 1},
	}
	for _, tt := range tests {
		data := Blank(tt.pages)

		n, err := api.PageCount(bytes.NewReader(data), nil)
		if err != nil || n != tt.want {
			t.Errorf("pdfcpu Blank(%d) = %d, %v; want %d", tt.pages, n, err, tt.want)
		}

		doc, err := fitz.NewFromMemory(data)
		if err != nil {
			t.Fatalf("fitz Blank(%d): %v", tt.pages, err)
		}
		if got := doc.NumPage(); got != tt.want {
			t.Errorf("fitz Blank(%d) = %d; want %d", tt.pages, got, tt.want)
		}
		doc.Close()
	}
}
