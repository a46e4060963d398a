package storage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloudinaryUpload(t *testing.T) {
	var got uploader.UploadParams
	s := &CloudinaryStore{
		folder: "farmerfriend/products",
		upload: func(_ context.Context, _ interface{}, params uploader.UploadParams) (*uploader.UploadResult, error) {
			got = params
			return &uploader.UploadResult{SecureURL: "https://res.cloudinary.com/demo/image/upload/tomato.jpg"}, nil
		},
	}

	url, err := s.Upload(context.Background(), strings.NewReader("jpeg"), "tomato.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/tomato.jpg", url)
	assert.Equal(t, "image", got.ResourceType)
	assert.Equal(t, "farmerfriend/products", got.Folder)
}

func TestCloudinaryUploadErrors(t *testing.T) {
	t.Run("Transport error", func(t *testing.T) {
		s := &CloudinaryStore{upload: func(context.Context, interface{}, uploader.UploadParams) (*uploader.UploadResult, error) {
			return nil, errors.New("timeout")
		}}
		_, err := s.Upload(context.Background(), strings.NewReader(""), "a.png")
		assert.ErrorContains(t, err, "timeout")
	})

	t.Run("API error in response", func(t *testing.T) {
		s := &CloudinaryStore{upload: func(context.Context, interface{}, uploader.UploadParams) (*uploader.UploadResult, error) {
			return &uploader.UploadResult{Error: api.ErrorResp{Message: "Invalid image file"}}, nil
		}}
		_, err := s.Upload(context.Background(), strings.NewReader(""), "a.png")
		assert.ErrorContains(t, err, "Invalid image file")
	})
}

func TestUnconfigured(t *testing.T) {
	_, err := Unconfigured{}.Upload(context.Background(), strings.NewReader(""), "a.png")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
