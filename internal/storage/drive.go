package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const driveFolderMime = "application/vnd.google-apps.folder"

// DriveClient stores files in Google Drive with a service account.
type DriveClient struct {
	svc *drive.Service
}

// NewDrive authenticates with the service account key at credentialsFile.
func NewDrive(ctx context.Context, credentialsFile string) (*DriveClient, error) {
	if credentialsFile == "" {
		return nil, fmt.Errorf("%w: GOOGLE_CREDENTIALS_FILE is empty", ErrNotConfigured)
	}
	svc, err := drive.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(drive.DriveScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return &DriveClient{svc: svc}, nil
}

func (d *DriveClient) Name() string { return "drive" }

func (d *DriveClient) CreateFolder(ctx context.Context, name, parentID string) (string, error) {
	f := &drive.File{Name: name, MimeType: driveFolderMime}
	if parentID != "" {
		f.Parents = []string{parentID}
	}
	folder, err := d.svc.Files.Create(f).Fields("id").SupportsAllDrives(true).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create drive folder: %w", err)
	}
	log.Debug().Str("folder", name).Str("id", folder.Id).Msg("created drive folder")
	return folder.Id, nil
}

func (d *DriveClient) Put(ctx context.Context, folderID, name, contentType string, r io.Reader, size int64) (Object, error) {
	f := &drive.File{Name: name, Parents: []string{folderID}}
	var opts []googleapi.MediaOption
	if contentType != "" {
		opts = append(opts, googleapi.ContentType(contentType))
	}
	res, err := d.svc.Files.Create(f).
		Media(r, opts...).
		Fields("id, webViewLink").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return Object{}, fmt.Errorf("failed to upload to drive: %w", err)
	}
	log.Info().Str("file", name).Str("id", res.Id).Int64("size", size).Msg("uploaded file to drive")
	return Object{ID: res.Id, URL: res.WebViewLink}, nil
}

func (d *DriveClient) Ping(ctx context.Context) error {
	_, err := d.svc.About.Get().Fields("user").Context(ctx).Do()
	return err
}
