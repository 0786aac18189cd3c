package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// LocalStore keeps folders as directories under a root directory.
type LocalStore struct {
	root    string
	baseURL string
}

// NewLocal creates root if needed. When baseURL is set, object URLs are
// baseURL joined with the relative path; otherwise they are file:// URLs.
func NewLocal(root, baseURL string) (*LocalStore, error) {
	if root == "" {
		return nil, fmt.Errorf("%w: LOCAL_STORAGE_DIR is empty", ErrNotConfigured)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &LocalStore{root: abs, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (l *LocalStore) Name() string { return "local" }

func (l *LocalStore) CreateFolder(ctx context.Context, name, parentID string) (string, error) {
	rel := joinKey(parentID, safeName(name))
	if err := os.MkdirAll(filepath.Join(l.root, filepath.FromSlash(rel)), 0o755); err != nil {
		return "", fmt.Errorf("create folder: %w", err)
	}
	return rel, nil
}

func (l *LocalStore) Put(ctx context.Context, folderID, name, contentType string, r io.Reader, size int64) (Object, error) {
	rel := joinKey(folderID, safeName(name))
	dst := filepath.Join(l.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return Object{}, err
	}
	f, err := os.Create(dst)
	if err != nil {
		return Object{}, fmt.Errorf("create %s: %w", rel, err)
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dst)
		return Object{}, fmt.Errorf("write %s: %w", rel, err)
	}
	log.Debug().Str("path", dst).Int64("bytes", n).Msg("stored file locally")
	return Object{ID: rel, URL: l.url(rel, dst)}, nil
}

func (l *LocalStore) url(rel, abs string) string {
	if l.baseURL != "" {
		return l.baseURL + "/" + (&url.URL{Path: rel}).EscapedPath()
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
}

func (l *LocalStore) Ping(ctx context.Context) error {
	_, err := os.Stat(l.root)
	return err
}

// safeName strips path separators so a client-supplied name cannot escape
// its folder.
func safeName(name string) string {
	name = filepath.Base(filepath.Clean("/" + strings.ReplaceAll(name, "\\", "/")))
	if name == "/" || name == "." || name == "" {
		return "unnamed"
	}
	return name
}
