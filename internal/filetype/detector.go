package filetype

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"
)

// Kind groups file types by how they are counted, previewed and converted.
type Kind string

const (
	KindPDF   Kind = "pdf"
	KindImage Kind = "image"
	KindText  Kind = "text"
	KindWord  Kind = "word"
	KindOther Kind = "other"
)

// FileTypeInfo contains detected file type information
type FileTypeInfo struct {
	Kind        Kind
	MIMEType    string
	Extension   string
	Previewable bool
	Description string
}

// Detector handles file type detection
type Detector struct{}

// New creates a new file type detector
func New() *Detector {
	return &Detector{}
}

// Ext returns the lower-cased extension of name without the leading dot.
func Ext(name string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}

// KindOf classifies a file by its name alone. Page estimation and
// conversion decisions are made on the extension the user supplied.
func KindOf(name string) Kind {
	switch Ext(name) {
	case "pdf":
		return KindPDF
	case "jpg", "jpeg", "png", "gif":
		return KindImage
	case "txt":
		return KindText
	case "doc", "docx":
		return KindWord
	default:
		return KindOther
	}
}

// Detect classifies name and sniffs the MIME type from the leading bytes of
// content. content may be nil, in which case the MIME type is derived from
// the extension only.
func (d *Detector) Detect(name string, content []byte) *FileTypeInfo {
	info := &FileTypeInfo{
		Kind:      KindOf(name),
		Extension: Ext(name),
	}

	if content != nil {
		mtype := mimetype.Detect(content)
		info.MIMEType = mtype.String()
		log.Debug().Str("mime", info.MIMEType).Str("ext", mtype.Extension()).Str("file", name).Msg("detected file type")
	}

	// Word documents sniff as zip/ole containers; report the document type.
	if info.Kind == KindWord || info.MIMEType == "" || isContainer(info.MIMEType) {
		if m := byExtension(info.Extension); m != "" {
			info.MIMEType = m
		}
	}
	if info.MIMEType == "" {
		info.MIMEType = "application/octet-stream"
	}

	d.classify(info)
	return info
}

// DetectFile is Detect for a file on disk, reading only its header.
func (d *Detector) DetectFile(path string) *FileTypeInfo {
	info := &FileTypeInfo{Kind: KindOf(path), Extension: Ext(path)}
	if mtype, err := mimetype.DetectFile(path); err == nil {
		info.MIMEType = mtype.String()
	} else {
		log.Debug().Err(err).Str("file", path).Msg("mime sniff failed")
	}
	if info.Kind == KindWord || info.MIMEType == "" || isContainer(info.MIMEType) {
		if m := byExtension(info.Extension); m != "" {
			info.MIMEType = m
		}
	}
	if info.MIMEType == "" {
		info.MIMEType = "application/octet-stream"
	}
	d.classify(info)
	return info
}

func isContainer(mime string) bool {
	return mime == "application/zip" || strings.Contains(mime, "application/x-zip") ||
		mime == "application/x-ole-storage" || mime == "application/x-cfb"
}

func byExtension(ext string) string {
	switch ext {
	case "pdf":
		return "application/pdf"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "txt":
		return "text/plain; charset=utf-8"
	case "doc":
		return "application/msword"
	case "docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return ""
}

// classify fills the preview capability and description
func (d *Detector) classify(info *FileTypeInfo) {
	switch info.Kind {
	case KindPDF:
		info.Previewable = true
		info.Description = "PDF document"
	case KindImage:
		info.Previewable = true
		info.Description = "Image file"
	case KindText:
		info.Previewable = true
		info.Description = "Plain text file"
	case KindWord:
		info.Previewable = false
		info.Description = "Microsoft Word Document"
	default:
		info.Previewable = false
		info.Description = strings.ToUpper(info.Extension) + " File"
		if info.Extension == "" {
			info.Description = "File"
		}
	}
}
