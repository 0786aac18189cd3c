package imagerender

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func solidPNG(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestGrayscalePNG(t *testing.T) {
	out, err := Grayscale(solidPNG(t, color.RGBA{R: 200, G: 30, B: 30, A: 255}), 0)
	if err != nil {
		t.Fatalf("Grayscale: %v", err)
	}
	img, format, err := image.Decode(bytes.NewReader(out))
	if err != nil || format != "png" {
		t.Fatalf("decode output: %v %s", err, format)
	}
	r, g, b, _ := img.At(1, 1).RGBA()
	if r != g || g != b {
		t.Errorf("pixel not gray: %d %d %d", r, g, b)
	}
}

func TestGrayscaleKeepsJPEGFormat(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatal(err)
	}
	out, err := Grayscale(buf.Bytes(), DefaultContrast)
	if err != nil {
		t.Fatalf("Grayscale: %v", err)
	}
	if _, format, err := image.DecodeConfig(bytes.NewReader(out)); err != nil || format != "jpeg" {
		t.Errorf("format = %q err = %v", format, err)
	}
}

func TestGrayscaleRejectsNonImage(t *testing.T) {
	if _, err := Grayscale([]byte("%PDF-1.4"), 0); err == nil {
		t.Error("expected error for non-image input")
	}
}

func grayLevel(t *testing.T, data []byte) uint8 {
	t.Helper()
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	return color.GrayModel.Convert(img.At(1, 1)).(color.Gray).Y
}

func TestGrayscaleContrastSpreadsLevels(t *testing.T) {
	tests := []struct {
		name   string
		level  uint8
		darker bool
	}{
		{"light", 200, false},
		{"dark", 50, true},
	}
	for _, tt := range tests {
		in := solidPNG(t, color.Gray{Y: tt.level})
		flat, err := Grayscale(in, 0)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		boosted, err := Grayscale(in, DefaultContrast)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		f, b := grayLevel(t, flat), grayLevel(t, boosted)
		if tt.darker && b >= f || !tt.darker && b <= f {
			t.Errorf("%s: level %d -> %d with contrast", tt.name, f, b)
		}
	}
}

func TestGrayscaleGIF(t *testing.T) {
	pal := color.Palette{color.RGBA{R: 255, A: 255}, color.RGBA{G: 255, A: 255}}
	src := image.NewPaletted(image.Rect(0, 0, 4, 4), pal)
	var buf bytes.Buffer
	if err := gif.Encode(&buf, src, nil); err != nil {
		t.Fatal(err)
	}
	out, err := Grayscale(buf.Bytes(), DefaultContrast)
	if err != nil {
		t.Fatalf("Grayscale: %v", err)
	}
	img, format, err := image.Decode(bytes.NewReader(out))
	if err != nil || format != "gif" {
		t.Fatalf("decode output: %v %s", err, format)
	}
	r, g, b, _ := img.At(0, 0).RGBA()
	if r != g || g != b {
		t.Errorf("pixel not gray: %d %d %d", r, g, b)
	}
}

func TestGrayscaleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.png")
	if err := os.WriteFile(path, solidPNG(t, color.RGBA{B: 255, A: 255}), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := GrayscaleFile(path, DefaultContrast); err != nil {
		t.Fatalf("GrayscaleFile: %v", err)
	}
	f, _ := os.Open(path)
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := img.(*image.Gray); !ok {
		t.Errorf("stored image is %T, want *image.Gray", img)
	}
}
