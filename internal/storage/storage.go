// Package storage puts submitted order files into a remote folder per
// student. The backend is chosen at startup: Google Drive, S3, Cloud
// Storage or a local directory.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/local/printdesk/internal/config"
)

// ErrNotConfigured is returned when the selected backend lacks its
// required settings.
var ErrNotConfigured = errors.New("storage backend not configured")

// Object identifies a stored file or folder.
type Object struct {
	ID  string
	URL string
}

// Backend is a place files can be grouped into folders and uploaded to.
type Backend interface {
	Name() string
	// CreateFolder creates a folder named name under parentID ("" for the
	// backend root) and returns its identifier.
	CreateFolder(ctx context.Context, name, parentID string) (string, error)
	Put(ctx context.Context, folderID, name, contentType string, r io.Reader, size int64) (Object, error)
	Ping(ctx context.Context) error
}

// New builds the backend selected by cfg.Backend.
func New(ctx context.Context, cfg config.StorageConfig) (Backend, error) {
	switch strings.ToLower(cfg.Backend) {
	case "drive":
		return NewDrive(ctx, cfg.CredentialsFile)
	case "s3":
		return NewS3(ctx, S3Options{
			Bucket:     cfg.S3Bucket,
			Region:     cfg.S3Region,
			AccessKey:  cfg.S3AccessKey,
			SecretKey:  cfg.S3SecretKey,
			PresignTTL: cfg.PresignTTL,
		})
	case "gcs":
		creds := cfg.CredentialsFile
		if _, err := os.Stat(creds); err != nil {
			creds = ""
		}
		return NewGCS(ctx, cfg.GCSBucket, creds)
	case "local", "":
		return NewLocal(cfg.LocalDir, cfg.LocalBaseURL)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// Close releases the clients held by b, if it holds any.
func Close(b Backend) error {
	if c, ok := b.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// joinKey builds an object key from a folder prefix and a name.
func joinKey(parts ...string) string {
	var out []string
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "/")
}
