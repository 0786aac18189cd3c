package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"

	gcs "cloud.google.com/go/storage"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// GCSClient stores folders as prefixes in a Cloud Storage bucket.
type GCSClient struct {
	client *gcs.Client
	bucket *gcs.BucketHandle
	name   string
}

// NewGCS opens bucket. An empty credentialsFile uses application default
// credentials.
func NewGCS(ctx context.Context, bucket, credentialsFile string) (*GCSClient, error) {
	if bucket == "" {
		return nil, fmt.Errorf("%w: GCS_BUCKET is empty", ErrNotConfigured)
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCSClient{client: client, bucket: client.Bucket(bucket), name: bucket}, nil
}

func (g *GCSClient) Name() string { return "gcs" }

func (g *GCSClient) CreateFolder(ctx context.Context, name, parentID string) (string, error) {
	prefix := joinKey(parentID, name)
	w := g.bucket.Object(prefix + "/").NewWriter(ctx)
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to create folder marker: %w", err)
	}
	return prefix, nil
}

func (g *GCSClient) Put(ctx context.Context, folderID, name, contentType string, r io.Reader, size int64) (Object, error) {
	key := joinKey(folderID, name)
	w := g.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{"name": name}

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		log.Error().Err(err).Str("object", key).Msg("gcs write failed")
		return Object{}, fmt.Errorf("failed to write to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return Object{}, fmt.Errorf("failed to finalize GCS write: %w", err)
	}

	log.Info().Str("object", key).Int64("size", size).Msg("uploaded file to GCS")
	return Object{ID: key, URL: g.consoleURL(key)}, nil
}

func (g *GCSClient) consoleURL(key string) string {
	return "https://storage.cloud.google.com/" + g.name + "/" + (&url.URL{Path: key}).EscapedPath()
}

func (g *GCSClient) Ping(ctx context.Context) error {
	_, err := g.bucket.Attrs(ctx)
	return err
}

// Close releases the underlying client.
func (g *GCSClient) Close() error { return g.client.Close() }
