package services

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"saveeat/internal/models"
)

// MediaUpload describes one uploaded file
type MediaUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

type MediaService interface {
	Upload(ctx context.Context, userID uuid.UUID, upload *MediaUpload) (*models.MediaItem, error)
	Remove(ctx context.Context, media []models.MediaItem)
}

type mediaService struct {
	storage  MinioService
	maxBytes int64
	logger   *zap.Logger
}

func NewMediaService(storage MinioService, maxUploadMB int64, logger *zap.Logger) MediaService {
	return &mediaService{storage: storage, maxBytes: maxUploadMB << 20, logger: logger}
}

// mediaTypeOf maps a MIME type to a media kind; false for anything but images and videos
func mediaTypeOf(contentType string) (models.MediaType, bool) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", false
	}
	switch {
	case strings.HasPrefix(mediaType, "image/"):
		return models.MediaTypeImage, true
	case strings.HasPrefix(mediaType, "video/"):
		return models.MediaTypeVideo, true
	default:
		return "", false
	}
}

func (s *mediaService) Upload(ctx context.Context, userID uuid.UUID, upload *MediaUpload) (*models.MediaItem, error) {
	kind, ok := mediaTypeOf(upload.ContentType)
	if !ok {
		return nil, invalid("file", "only image and video files are allowed")
	}
	if upload.Size <= 0 {
		return nil, invalid("file", "is empty")
	}
	if upload.Size > s.maxBytes {
		return nil, invalid("file", fmt.Sprintf("cannot exceed %d MB", s.maxBytes>>20))
	}

	key := fmt.Sprintf("posts/%s/%s%s", userID, uuid.New(), strings.ToLower(path.Ext(upload.Filename)))
	if err := s.storage.UploadObject(ctx, key, upload.ContentType, upload.Reader, upload.Size); err != nil {
		return nil, err
	}

	url, err := s.storage.ObjectURL(ctx, key)
	if err != nil {
		return nil, err
	}
	return &models.MediaItem{Type: kind, URL: url, Key: key}, nil
}

// Remove deletes stored objects; media hosted elsewhere has no key and is skipped
func (s *mediaService) Remove(ctx context.Context, media []models.MediaItem) {
	for _, m := range media {
		if m.Key == "" {
			continue
		}
		if err := s.storage.DeleteObject(ctx, m.Key); err != nil {
			s.logger.Warn("failed to remove media object", zap.String("key", m.Key), zap.Error(err))
		}
	}
}
