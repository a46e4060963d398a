// Package storage uploads product images.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"farmerfriend-backend/internal/config"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

var ErrNotConfigured = errors.New("image storage is not configured")

type uploadFunc func(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)

// CloudinaryStore uploads images into one Cloudinary folder and returns their
// secure URLs.
type CloudinaryStore struct {
	upload uploadFunc
	folder string
}

func NewCloudinaryStore(cfg config.CloudinaryConfig) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("creating cloudinary client: %w", err)
	}
	cld.Config.URL.Secure = true
	return &CloudinaryStore{upload: cld.Upload.Upload, folder: cfg.Folder}, nil
}

func (s *CloudinaryStore) Upload(ctx context.Context, file io.Reader, filename string) (string, error) {
	resp, err := s.upload(ctx, file, uploader.UploadParams{
		ResourceType: "image",
		Folder:       s.folder,
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", filename, err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("uploading %s: %s", filename, resp.Error.Message)
	}
	return resp.SecureURL, nil
}

// Unconfigured rejects every upload. It stands in when no credentials are set
// so products without images can still be listed.
type Unconfigured struct{}

func (Unconfigured) Upload(context.Context, io.Reader, string) (string, error) {
	return "", ErrNotConfigured
}
