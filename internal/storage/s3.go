package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

// S3Options configures the S3 backend. Empty keys fall back to the
// default AWS credential chain.
type S3Options struct {
	Bucket     string
	Region     string
	AccessKey  string
	SecretKey  string
	PresignTTL time.Duration
}

// S3Client stores folders as key prefixes in one bucket.
type S3Client struct {
	client     *s3.Client
	uploader   *manager.Uploader
	presigner  *s3.PresignClient
	bucketName string
	ttl        time.Duration
}

// NewS3 creates a new S3 backend.
func NewS3(ctx context.Context, opts S3Options) (*S3Client, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("%w: AWS_S3_BUCKET is empty", ErrNotConfigured)
	}

	var loaders []func(*awscfg.LoadOptions) error
	if opts.Region != "" {
		loaders = append(loaders, awscfg.WithRegion(opts.Region))
	}
	if opts.AccessKey != "" && opts.SecretKey != "" {
		loaders = append(loaders, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")))
	}
	cfg, err := awscfg.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	cli := s3.NewFromConfig(cfg)
	ttl := opts.PresignTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}

	return &S3Client{
		client:     cli,
		uploader:   manager.NewUploader(cli),
		presigner:  s3.NewPresignClient(cli),
		bucketName: opts.Bucket,
		ttl:        ttl,
	}, nil
}

func (s *S3Client) Name() string { return "s3" }

// CreateFolder writes a zero-byte marker so the prefix shows up in listings.
func (s *S3Client) CreateFolder(ctx context.Context, name, parentID string) (string, error) {
	prefix := joinKey(parentID, name)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(prefix + "/"),
		Body:   bytes.NewReader(nil),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create folder marker: %w", err)
	}
	log.Debug().Str("bucket", s.bucketName).Str("prefix", prefix).Msg("created s3 folder")
	return prefix, nil
}

// Put uploads the object and returns a presigned download URL.
func (s *S3Client) Put(ctx context.Context, folderID, name, contentType string, r io.Reader, size int64) (Object, error) {
	key := joinKey(folderID, name)
	in := &s3.PutObjectInput{
		Bucket:   aws.String(s.bucketName),
		Key:      aws.String(key),
		Body:     r,
		Metadata: map[string]string{"name": name},
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if _, err := s.uploader.Upload(ctx, in); err != nil {
		log.Error().Err(err).Str("key", key).Msg("s3 upload failed")
		return Object{}, fmt.Errorf("failed to upload to S3: %w", err)
	}

	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return Object{}, fmt.Errorf("failed to presign %s: %w", key, err)
	}

	log.Info().Str("key", key).Int64("size", size).Msg("uploaded file to S3")
	return Object{ID: key, URL: req.URL}, nil
}

func (s *S3Client) Ping(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucketName)})
	return err
}
