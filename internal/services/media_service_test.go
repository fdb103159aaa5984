package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"saveeat/internal/config"
	"saveeat/internal/models"
)

func TestMediaUpload(t *testing.T) {
	storage := new(MockMinioService)
	svc := NewMediaService(storage, 1, zap.NewNop())
	userID := uuid.New()
	ctx := context.Background()

	var key string
	storage.On("UploadObject", ctx, mock.AnythingOfType("string"), "image/png", mock.Anything, int64(4)).
		Run(func(args mock.Arguments) { key = args.String(1) }).
		Return(nil).Once()
	storage.On("ObjectURL", ctx, mock.AnythingOfType("string")).Return("https://cdn.example.com/x.png", nil).Once()

	item, err := svc.Upload(ctx, userID, &MediaUpload{
		Filename:    "Dinner.PNG",
		ContentType: "image/png",
		Size:        4,
		Reader:      strings.NewReader("data"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.MediaTypeImage, item.Type)
	assert.Equal(t, key, item.Key)
	assert.True(t, strings.HasPrefix(key, "posts/"+userID.String()+"/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
	storage.AssertExpectations(t)
}

func TestMediaUpload_Rejects(t *testing.T) {
	svc := NewMediaService(new(MockMinioService), 1, zap.NewNop())
	tests := []struct {
		name   string
		upload MediaUpload
	}{
		{"pdf", MediaUpload{Filename: "a.pdf", ContentType: "application/pdf", Size: 10}},
		{"garbage type", MediaUpload{Filename: "a", ContentType: ";;", Size: 10}},
		{"empty", MediaUpload{Filename: "a.jpg", ContentType: "image/jpeg", Size: 0}},
		{"too big", MediaUpload{Filename: "a.mp4", ContentType: "video/mp4", Size: 2 << 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upload(context.Background(), uuid.New(), &tt.upload)
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestMediaRemove_SkipsExternalAndLogsFailures(t *testing.T) {
	storage := new(MockMinioService)
	storage.On("DeleteObject", mock.Anything, "posts/a.jpg").Return(errors.New("denied")).Once()
	storage.On("DeleteObject", mock.Anything, "posts/b.mp4").Return(nil).Once()

	NewMediaService(storage, 1, zap.NewNop()).Remove(context.Background(), []models.MediaItem{
		{Type: models.MediaTypeImage, URL: "https://elsewhere.example.com/x.jpg"},
		{Type: models.MediaTypeImage, URL: "u", Key: "posts/a.jpg"},
		{Type: models.MediaTypeVideo, URL: "u", Key: "posts/b.mp4"},
	})
	storage.AssertExpectations(t)
}

func TestMinioObjectURL(t *testing.T) {
	public, err := NewMinioService(config.StorageConfig{
		Endpoint:      "localhost:9000",
		AccessKey:     "ak",
		SecretKey:     "sk",
		Region:        "us-east-1",
		Bucket:        "post-media",
		PublicBaseURL: "https://cdn.example.com/",
	})
	require.NoError(t, err)
	url, err := public.ObjectURL(context.Background(), "posts/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/post-media/posts/a.jpg", url)

	presigned, err := NewMinioService(config.StorageConfig{
		Endpoint:  "localhost:9000",
		AccessKey: "ak",
		SecretKey: "sk",
		Region:    "us-east-1",
		Bucket:    "post-media",
		URLExpiry: time.Hour,
	})
	require.NoError(t, err)
	url, err = presigned.ObjectURL(context.Background(), "posts/a.jpg")
	require.NoError(t, err)
	assert.Contains(t, url, "http://localhost:9000/post-media/posts/a.jpg?")
	assert.Contains(t, url, "X-Amz-Signature=")
}
