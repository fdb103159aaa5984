package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"saveeat/internal/models"
	"saveeat/internal/services"
	"saveeat/internal/viewengine"
)

type MockPantryService struct {
	mock.Mock
}

func (m *MockPantryService) List(ctx context.Context, userID uuid.UUID, q viewengine.Query, now time.Time) (*services.PantryList, error) {
	args := m.Called(ctx, userID, q, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.PantryList), args.Error(1)
}

func (m *MockPantryService) Items(ctx context.Context, userID uuid.UUID) ([]*models.PantryItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PantryItem), args.Error(1)
}

func (m *MockPantryService) Get(ctx context.Context, userID, id uuid.UUID) (*models.PantryItem, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PantryItem), args.Error(1)
}

func (m *MockPantryService) Create(ctx context.Context, userID uuid.UUID, in *services.PantryItemInput) (*models.PantryItem, models.ActionResult, error) {
	args := m.Called(ctx, userID, in)
	item, _ := args.Get(0).(*models.PantryItem)
	return item, args.Get(1).(models.ActionResult), args.Error(2)
}

func (m *MockPantryService) Update(ctx context.Context, userID, id uuid.UUID, upd *models.PantryItemUpdate) (*models.PantryItem, models.ActionResult, error) {
	args := m.Called(ctx, userID, id, upd)
	item, _ := args.Get(0).(*models.PantryItem)
	return item, args.Get(1).(models.ActionResult), args.Error(2)
}

func (m *MockPantryService) Delete(ctx context.Context, userID, id uuid.UUID) (models.ActionResult, error) {
	args := m.Called(ctx, userID, id)
	return args.Get(0).(models.ActionResult), args.Error(1)
}

type MockPushService struct {
	mock.Mock
}

func (m *MockPushService) Subscribe(ctx context.Context, userID uuid.UUID, in *services.SubscriptionInput) error {
	return m.Called(ctx, userID, in).Error(0)
}

func (m *MockPushService) Unsubscribe(ctx context.Context, userID uuid.UUID, endpoint string) error {
	return m.Called(ctx, userID, endpoint).Error(0)
}

func (m *MockPushService) VAPIDPublicKey() string {
	return m.Called().String(0)
}

func (m *MockPushService) Recipients(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	ids, _ := args.Get(0).([]uuid.UUID)
	return ids, args.Error(1)
}

func (m *MockPushService) SendDigest(ctx context.Context, userID uuid.UUID, days int, now time.Time) (models.PushResult, error) {
	args := m.Called(ctx, userID, days, now)
	return args.Get(0).(models.PushResult), args.Error(1)
}

func (m *MockPushService) SendAll(ctx context.Context, days int, now time.Time) (models.PushResult, error) {
	args := m.Called(ctx, days, now)
	return args.Get(0).(models.PushResult), args.Error(1)
}

type MockRecipeService struct {
	mock.Mock
}

func (m *MockRecipeService) Suggest(ctx context.Context, userID uuid.UUID, items []models.RecipeIngredient, now time.Time) ([]models.MenuSuggestion, error) {
	args := m.Called(ctx, userID, items, now)
	out, _ := args.Get(0).([]models.MenuSuggestion)
	return out, args.Error(1)
}

type MockPostService struct {
	mock.Mock
}

func (m *MockPostService) Feed(ctx context.Context, viewerID *uuid.UUID) ([]*models.Post, error) {
	args := m.Called(ctx, viewerID)
	posts, _ := args.Get(0).([]*models.Post)
	return posts, args.Error(1)
}

func (m *MockPostService) Get(ctx context.Context, id uuid.UUID, viewerID *uuid.UUID) (*models.Post, error) {
	args := m.Called(ctx, id, viewerID)
	post, _ := args.Get(0).(*models.Post)
	return post, args.Error(1)
}

func (m *MockPostService) Create(ctx context.Context, userID uuid.UUID, in *services.PostInput) (*models.Post, error) {
	args := m.Called(ctx, userID, in)
	post, _ := args.Get(0).(*models.Post)
	return post, args.Error(1)
}

func (m *MockPostService) Update(ctx context.Context, userID, id uuid.UUID, upd *models.PostUpdate) error {
	return m.Called(ctx, userID, id, upd).Error(0)
}

func (m *MockPostService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *MockPostService) Like(ctx context.Context, userID, postID uuid.UUID) error {
	return m.Called(ctx, userID, postID).Error(0)
}

func (m *MockPostService) Unlike(ctx context.Context, userID, postID uuid.UUID) error {
	return m.Called(ctx, userID, postID).Error(0)
}

func (m *MockPostService) Comments(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error) {
	args := m.Called(ctx, postID)
	comments, _ := args.Get(0).([]*models.Comment)
	return comments, args.Error(1)
}

func (m *MockPostService) AddComment(ctx context.Context, userID, postID uuid.UUID, text string) (*models.Comment, error) {
	args := m.Called(ctx, userID, postID, text)
	comment, _ := args.Get(0).(*models.Comment)
	return comment, args.Error(1)
}

func (m *MockPostService) UserPosts(ctx context.Context, userID uuid.UUID) ([]*models.Post, error) {
	args := m.Called(ctx, userID)
	posts, _ := args.Get(0).([]*models.Post)
	return posts, args.Error(1)
}

func (m *MockPostService) LikedPosts(ctx context.Context, userID uuid.UUID) ([]*models.Post, error) {
	args := m.Called(ctx, userID)
	posts, _ := args.Get(0).([]*models.Post)
	return posts, args.Error(1)
}

type MockMediaService struct {
	mock.Mock
}

func (m *MockMediaService) Upload(ctx context.Context, userID uuid.UUID, upload *services.MediaUpload) (*models.MediaItem, error) {
	args := m.Called(ctx, userID, upload)
	item, _ := args.Get(0).(*models.MediaItem)
	return item, args.Error(1)
}

func (m *MockMediaService) Remove(ctx context.Context, media []models.MediaItem) {
	m.Called(ctx, media)
}

type MockFollowService struct {
	mock.Mock
}

func (m *MockFollowService) Follow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	return m.Called(ctx, followerID, followeeID).Error(0)
}

func (m *MockFollowService) Unfollow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	return m.Called(ctx, followerID, followeeID).Error(0)
}

func (m *MockFollowService) Following(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, userID)
	ids, _ := args.Get(0).([]uuid.UUID)
	return ids, args.Error(1)
}

func (m *MockFollowService) Followers(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, userID)
	ids, _ := args.Get(0).([]uuid.UUID)
	return ids, args.Error(1)
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error {
	return p.err
}
