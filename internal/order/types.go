// Package order holds the client-side print order model: the documents a
// student picked, their per-page print settings, page estimation and
// pricing.
package order

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ColorMode is the print color of a single page.
type ColorMode string

const (
	ColorBW   ColorMode = "bw"
	ColorFull ColorMode = "color"
)

// Valid reports whether m is a known color mode.
func (m ColorMode) Valid() bool { return m == ColorBW || m == ColorFull }

// Orientation is the print orientation of a single page.
type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// Valid reports whether o is a known orientation.
func (o Orientation) Valid() bool { return o == Portrait || o == Landscape }

// PageSetting is the print choice for one page of one document.
// PageNumber is 1-based and always equals the setting's index + 1.
type PageSetting struct {
	PageNumber  int         `json:"pageNumber"`
	ColorMode   ColorMode   `json:"colorMode"`
	Orientation Orientation `json:"orientation"`
}

// Field names a mutable PageSetting field.
type Field string

const (
	FieldColorMode   Field = "colorMode"
	FieldOrientation Field = "orientation"
)

// FileSetting is the per-file entry of the fileSettings form field sent
// with a submission, keyed by file name.
type FileSetting struct {
	ColorMode ColorMode     `json:"colorMode"`
	Pages     []PageSetting `json:"pages,omitempty"`
}

// File is a document picked by the user, before it enters the intake.
type File struct {
	Name string
	Size int64
	// Type is the MIME type when known.
	Type string
	// Open returns the raw content. It may be called more than once.
	Open func() (io.ReadCloser, error)
}

// ReadAll returns the full content of f.
func (f File) ReadAll() ([]byte, error) {
	if f.Open == nil {
		return nil, fmt.Errorf("file %s: no content", f.Name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// FileFromPath builds a File backed by a file on disk.
func FileFromPath(path string) (File, error) {
	st, err := os.Stat(path)
	if err != nil {
		return File{}, err
	}
	if st.IsDir() {
		return File{}, fmt.Errorf("%s is a directory", path)
	}
	return File{
		Name: filepath.Base(path),
		Size: st.Size(),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

// FileFromBytes builds an in-memory File.
func FileFromBytes(name, mimeType string, data []byte) File {
	return File{
		Name: name,
		Size: int64(len(data)),
		Type: mimeType,
		Open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}

// Document is a file that entered the intake, with its page settings.
type Document struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Size         int64         `json:"size"`
	Type         string        `json:"type"`
	Pages        int           `json:"pages"`
	PageSettings []PageSetting `json:"pageSettings"`
	Analyzing    bool          `json:"analyzing"`

	File File `json:"-"`
}

// clone returns a copy that shares no settings slice with d.
func (d *Document) clone() Document {
	c := *d
	c.PageSettings = append([]PageSetting(nil), d.PageSettings...)
	return c
}

// ColorMode summarizes the document as a whole: color when any page is
// printed in color, bw otherwise.
func (d Document) ColorMode() ColorMode {
	for _, p := range d.PageSettings {
		if p.ColorMode == ColorFull {
			return ColorFull
		}
	}
	return ColorBW
}

// resizeSettings returns n settings, keeping prev values positionally and
// defaulting new pages to black & white portrait.
func resizeSettings(prev []PageSetting, n int) []PageSetting {
	if n < 1 {
		n = 1
	}
	out := make([]PageSetting, n)
	for i := range out {
		out[i] = PageSetting{PageNumber: i + 1, ColorMode: ColorBW, Orientation: Portrait}
		if i < len(prev) {
			if prev[i].ColorMode.Valid() {
				out[i].ColorMode = prev[i].ColorMode
			}
			if prev[i].Orientation.Valid() {
				out[i].Orientation = prev[i].Orientation
			}
		}
	}
	return out
}
