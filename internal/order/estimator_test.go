package order

import (
	"context"
	"testing"

	"github.com/local/printdesk/internal/pdftest"
)

func TestEstimateByType(t *testing.T) {
	est := NewEstimator(&fakeCounter{err: errBroken})
	ctx := context.Background()

	tests := []struct {
		name   string
		file   File
		pages  int
		method Method
	}{
		{"jpg", sizedFile("photo.jpg", 5<<20, nil), 1, MethodFixed},
		{"jpeg", sizedFile("photo.JPEG", 1, nil), 1, MethodFixed},
		{"png", sizedFile("scan.png", 900_000, nil), 1, MethodFixed},
		{"gif", sizedFile("anim.gif", 300_000, nil), 1, MethodFixed},
		{"docx small", sizedFile("essay.docx", 100, nil), 1, MethodHeuristic},
		{"docx exact multiple", sizedFile("essay.docx", 40960, nil), 2, MethodHeuristic},
		{"doc rounds up", sizedFile("essay.doc", 40961, nil), 3, MethodHeuristic},
		{"txt", sizedFile("notes.txt", 1<<20, nil), 1, MethodFixed},
		{"unknown", sizedFile("slides.pptx", 9<<20, nil), 1, MethodFixed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := est.Estimate(ctx, tt.file)
			if got.Pages != tt.pages || got.Method != tt.method {
				t.Errorf("Estimate(%s) = %+v, want %d/%s", tt.file.Name, got, tt.pages, tt.method)
			}
		})
	}
}

func TestEstimateRealPDF(t *testing.T) {
	est := NewEstimator(nil)
	data := pdftest.Blank(3)

	got := est.Estimate(context.Background(), FileFromBytes("three.pdf", "application/pdf", data))
	if got.Pages != 3 || got.Method != MethodExact {
		t.Fatalf("3-page pdf estimated as %+v", got)
	}
}

func TestEstimateCorruptPDFFallsBack(t *testing.T) {
	est := NewEstimator(nil)
	// 120000 bytes -> ceil(120000/51200) = 3
	f := sizedFile("broken.pdf", 120000, []byte("this is not a pdf at all"))

	got := est.Estimate(context.Background(), f)
	if got.Pages != 3 || got.Method != MethodHeuristic {
		t.Fatalf("corrupt pdf estimated as %+v, want 3 heuristic", got)
	}
}

func TestEstimatePDFFallbacks(t *testing.T) {
	ctx := context.Background()

	t.Run("read error", func(t *testing.T) {
		counter := &fakeCounter{pages: 7}
		got := NewEstimator(counter).Estimate(ctx, failingFile("gone.pdf", 51201))
		if got.Pages != 2 || got.Method != MethodHeuristic {
			t.Errorf("got %+v, want 2 heuristic", got)
		}
		if counter.calls != 0 {
			t.Errorf("counter should not run when the read fails")
		}
	})

	t.Run("zero pages", func(t *testing.T) {
		got := NewEstimator(&fakeCounter{pages: 0}).Estimate(ctx, sizedFile("empty.pdf", 10, []byte("%PDF")))
		if got.Pages != 1 || got.Method != MethodHeuristic {
			t.Errorf("got %+v, want 1 heuristic", got)
		}
	})

	t.Run("empty file clamps to one", func(t *testing.T) {
		got := NewEstimator(&fakeCounter{err: errBroken}).Estimate(ctx, sizedFile("empty.pdf", 0, nil))
		if got.Pages != 1 {
			t.Errorf("got %+v, want 1", got)
		}
	})
}

func TestHeuristicPages(t *testing.T) {
	tests := []struct {
		name string
		size int64
		want int
	}{
		{"a.pdf", 1, 1},
		{"a.pdf", 51200, 1},
		{"a.pdf", 51201, 2},
		{"a.pdf", 10 << 20, 205},
		{"a.docx", 20480, 1},
		{"a.docx", 20481, 2},
		{"a.png", 10 << 20, 1},
		{"a.bin", 10 << 20, 1},
	}
	for _, tt := range tests {
		if got := HeuristicPages(tt.name, tt.size); got != tt.want {
			t.Errorf("HeuristicPages(%s, %d) = %d, want %d", tt.name, tt.size, got, tt.want)
		}
	}
}
