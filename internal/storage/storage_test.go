package storage

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type fakeBackend struct {
	err  error
	puts map[string][]byte
	ct   map[string]string
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) CreateFolder(ctx context.Context, name, parentID string) (string, error) {
	return joinKey(parentID, name), nil
}

func (f *fakeBackend) Put(ctx context.Context, folderID, name, contentType string, r io.Reader, size int64) (Object, error) {
	if f.err != nil {
		return Object{}, f.err
	}
	data, _ := io.ReadAll(r)
	if f.puts == nil {
		f.puts = map[string][]byte{}
		f.ct = map[string]string{}
	}
	key := joinKey(folderID, name)
	f.puts[key] = data
	f.ct[key] = contentType
	return Object{ID: key, URL: "fake://" + key}, nil
}

func (f *fakeBackend) Ping(ctx context.Context) error { return nil }

func writeTemp(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload-1234")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func colorPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 3, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			img.Set(x, y, color.RGBA{R: 250, G: 10, B: 10, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestUploadFileRemovesTempFileOnFailure(t *testing.T) {
	path := writeTemp(t, []byte("hello"))
	u := NewUploader(&fakeBackend{err: errors.New("quota exceeded")})

	if _, err := u.UploadFile(context.Background(), path, "folder", "notes.txt", false); err == nil {
		t.Fatal("expected error from backend")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("temp file still present: %v", err)
	}
}

func TestUploadFileMonochromeImage(t *testing.T) {
	path := writeTemp(t, colorPNG(t))
	fb := &fakeBackend{}
	u := NewUploader(fb)

	obj, err := u.UploadFile(context.Background(), path, "alice_42", "photo.png", true)
	if err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	if obj.ID != "alice_42/photo.png" {
		t.Errorf("object id = %q", obj.ID)
	}
	if fb.ct[obj.ID] != "image/png" {
		t.Errorf("content type = %q", fb.ct[obj.ID])
	}
	img, err := png.Decode(bytes.NewReader(fb.puts[obj.ID]))
	if err != nil {
		t.Fatalf("stored bytes are not a png: %v", err)
	}
	if _, ok := img.(*image.Gray); !ok {
		t.Errorf("stored image is %T, want *image.Gray", img)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("temp file still present")
	}
}

func TestUploadFileColorKeepsBytes(t *testing.T) {
	data := colorPNG(t)
	fb := &fakeBackend{}
	obj, err := NewUploader(fb).UploadFile(context.Background(), writeTemp(t, data), "f", "photo.png", false)
	if err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	if !bytes.Equal(fb.puts[obj.ID], data) {
		t.Error("color upload should be stored unchanged")
	}
}

func TestUploadFileMonochromePDFPassthrough(t *testing.T) {
	data := []byte("%PDF-1.4\n%%EOF\n")
	fb := &fakeBackend{}
	obj, err := NewUploader(fb).UploadFile(context.Background(), writeTemp(t, data), "f", "report.pdf", true)
	if err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	if !bytes.Equal(fb.puts[obj.ID], data) {
		t.Error("pdf should be uploaded unchanged")
	}
	if fb.ct[obj.ID] != "application/pdf" {
		t.Errorf("content type = %q", fb.ct[obj.ID])
	}
}

func TestLocalStore(t *testing.T) {
	root := t.TempDir()
	ls, err := NewLocal(root, "http://files.example/")
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	ctx := context.Background()

	folder, err := ls.CreateFolder(ctx, "Alice Smith_42", "orders")
	if err != nil {
		t.Fatalf("CreateFolder: %v", err)
	}
	if folder != "orders/Alice Smith_42" {
		t.Errorf("folder = %q", folder)
	}

	obj, err := ls.Put(ctx, folder, "../../escape.txt", "text/plain", strings.NewReader("hi"), 2)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if obj.ID != "orders/Alice Smith_42/escape.txt" {
		t.Errorf("id = %q", obj.ID)
	}
	if obj.URL != "http://files.example/orders/Alice%20Smith_42/escape.txt" {
		t.Errorf("url = %q", obj.URL)
	}
	got, err := os.ReadFile(filepath.Join(root, "orders", "Alice Smith_42", "escape.txt"))
	if err != nil || string(got) != "hi" {
		t.Errorf("stored content = %q, %v", got, err)
	}
	if err := ls.Ping(ctx); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestLocalStoreFileURL(t *testing.T) {
	ls, err := NewLocal(t.TempDir(), "")
	if err != nil {
		t.Fatal(err)
	}
	obj, err := ls.Put(context.Background(), "", "a.txt", "", strings.NewReader("x"), 1)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(obj.URL, "file://") || !strings.HasSuffix(obj.URL, "/a.txt") {
		t.Errorf("url = %q", obj.URL)
	}
}

func TestNewRequiresSettings(t *testing.T) {
	tests := []struct {
		name string
		fn   func() error
	}{
		{"s3", func() error { _, err := NewS3(context.Background(), S3Options{}); return err }},
		{"gcs", func() error { _, err := NewGCS(context.Background(), "", ""); return err }},
		{"drive", func() error { _, err := NewDrive(context.Background(), ""); return err }},
		{"local", func() error { _, err := NewLocal("", ""); return err }},
	}
	for _, tt := range tests {
		if err := tt.fn(); !errors.Is(err, ErrNotConfigured) {
			t.Errorf("%s: want ErrNotConfigured, got %v", tt.name, err)
		}
	}
}

func TestJoinKey(t *testing.T) {
	if got := joinKey("", "/root/", "a", "", "b.pdf"); got != "root/a/b.pdf" {
		t.Errorf("joinKey = %q", got)
	}
}

type closingBackend struct {
	fakeBackend
	closed int
}

func (c *closingBackend) Close() error {
	c.closed++
	return nil
}

func TestCloseBackend(t *testing.T) {
	cb := &closingBackend{}
	if err := Close(cb); err != nil || cb.closed != 1 {
		t.Errorf("Close = %v, closed %d times", err, cb.closed)
	}
	if err := Close(&fakeBackend{}); err != nil {
		t.Errorf("Close on a backend without clients = %v", err)
	}
	var _ io.Closer = (*GCSClient)(nil)
}
