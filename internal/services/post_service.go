package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"saveeat/internal/common"
	"saveeat/internal/models"
	"saveeat/internal/repositories"
)

const (
	FeedLimit          = 20
	maxPostTitleLength = 120
	maxPostBodyLength  = 4000
	maxCommentLength   = 1000
	maxIngredientTags  = 30
)

// PostInput is the body of a create request
type PostInput struct {
	Title       string             `json:"title"`
	Description *string            `json:"description"`
	Ingredients []string           `json:"ingredients"`
	Media       []models.MediaItem `json:"media"`
}

type PostService interface {
	Feed(ctx context.Context, viewerID *uuid.UUID) ([]*models.Post, error)
	Get(ctx context.Context, id uuid.UUID, viewerID *uuid.UUID) (*models.Post, error)
	Create(ctx context.Context, userID uuid.UUID, in *PostInput) (*models.Post, error)
	Update(ctx context.Context, userID, id uuid.UUID, upd *models.PostUpdate) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	Like(ctx context.Context, userID, postID uuid.UUID) error
	Unlike(ctx context.Context, userID, postID uuid.UUID) error
	Comments(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error)
	AddComment(ctx context.Context, userID, postID uuid.UUID, text string) (*models.Comment, error)
	UserPosts(ctx context.Context, userID uuid.UUID) ([]*models.Post, error)
	LikedPosts(ctx context.Context, userID uuid.UUID) ([]*models.Post, error)
}

type postService struct {
	repo   repositories.PostRepository
	media  MediaService
	logger *zap.Logger
}

func NewPostService(repo repositories.PostRepository, media MediaService, logger *zap.Logger) PostService {
	return &postService{repo: repo, media: media, logger: logger}
}

func (s *postService) Feed(ctx context.Context, viewerID *uuid.UUID) ([]*models.Post, error) {
	return s.repo.List(ctx, viewerID, FeedLimit)
}

func (s *postService) Get(ctx context.Context, id uuid.UUID, viewerID *uuid.UUID) (*models.Post, error) {
	return s.repo.GetByID(ctx, id, viewerID)
}

func (s *postService) Create(ctx context.Context, userID uuid.UUID, in *PostInput) (*models.Post, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, invalid("title", "is required")
	}
	if len(title) > maxPostTitleLength {
		return nil, invalid("title", fmt.Sprintf("cannot exceed %d characters", maxPostTitleLength))
	}
	if len(in.Media) == 0 {
		return nil, invalid("media", "at least one image or video is required")
	}
	if err := validateMedia(in.Media); err != nil {
		return nil, err
	}
	if err := common.ValidateOptionalString(in.Description, "description", maxPostBodyLength); err != nil {
		return nil, invalid("description", err.Error())
	}
	tags, err := normalizeTags(in.Ingredients)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       title,
		Body:        common.SafeString(in.Description),
		Ingredients: tags,
		Media:       in.Media,
	}
	if err := s.repo.Create(ctx, post); err != nil {
		s.logger.Error("failed to create post", zap.Stringer("user_id", userID), zap.Error(err))
		return nil, err
	}
	return post, nil
}

func (s *postService) Update(ctx context.Context, userID, id uuid.UUID, upd *models.PostUpdate) error {
	if upd.IsEmpty() {
		return invalid("body", "no_fields")
	}
	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		if title == "" {
			return invalid("title", "cannot be blank")
		}
		if len(title) > maxPostTitleLength {
			return invalid("title", fmt.Sprintf("cannot exceed %d characters", maxPostTitleLength))
		}
		upd.Title = &title
	}
	if err := common.ValidateOptionalString(upd.Description, "description", maxPostBodyLength); err != nil {
		return invalid("description", err.Error())
	}
	if upd.Ingredients != nil {
		tags, err := normalizeTags(upd.Ingredients)
		if err != nil {
			return err
		}
		upd.Ingredients = tags
	}
	if upd.Media != nil {
		if len(upd.Media) == 0 {
			return invalid("media", "at least one image or video is required")
		}
		if err := validateMedia(upd.Media); err != nil {
			return err
		}
	}

	return s.repo.Update(ctx, userID, id, upd)
}

// Delete removes the post and then its stored media. Media cleanup failures are only logged.
func (s *postService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	media, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return err
	}
	if s.media != nil {
		s.media.Remove(ctx, media)
	}
	return nil
}

func (s *postService) Like(ctx context.Context, userID, postID uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, postID, nil); err != nil {
		return err
	}
	return s.repo.Like(ctx, postID, userID)
}

func (s *postService) Unlike(ctx context.Context, userID, postID uuid.UUID) error {
	return s.repo.Unlike(ctx, postID, userID)
}

func (s *postService) Comments(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error) {
	return s.repo.ListComments(ctx, postID)
}

func (s *postService) AddComment(ctx context.Context, userID, postID uuid.UUID, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, invalid("text", "is required")
	}
	if len(text) > maxCommentLength {
		return nil, invalid("text", fmt.Sprintf("cannot exceed %d characters", maxCommentLength))
	}
	if _, err := s.repo.GetByID(ctx, postID, nil); err != nil {
		return nil, err
	}

	comment := &models.Comment{ID: uuid.New(), PostID: postID, UserID: userID, Body: text}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *postService) UserPosts(ctx context.Context, userID uuid.UUID) ([]*models.Post, error) {
	return s.repo.ListByUser(ctx, userID, FeedLimit)
}

func (s *postService) LikedPosts(ctx context.Context, userID uuid.UUID) ([]*models.Post, error) {
	return s.repo.ListLikedBy(ctx, userID, FeedLimit)
}

func validateMedia(media []models.MediaItem) error {
	for _, m := range media {
		if m.Type != models.MediaTypeImage && m.Type != models.MediaTypeVideo {
			return invalid("media", "type must be image or video")
		}
		if strings.TrimSpace(m.URL) == "" {
			return invalid("media", "url is required")
		}
	}
	return nil
}

// normalizeTags trims tags and drops blanks and duplicates
func normalizeTags(tags []string) ([]string, error) {
	out := []string{}
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	if len(out) > maxIngredientTags {
		return nil, invalid("ingredients", fmt.Sprintf("cannot have more than %d entries", maxIngredientTags))
	}
	return out, nil
}

// IsNotFound reports whether err means the row does not exist for the caller
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
