package services

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"saveeat/internal/models"
	"saveeat/internal/viewengine"
)

type MockPantryItemRepository struct {
	mock.Mock
}

func (m *MockPantryItemRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.PantryItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PantryItem), args.Error(1)
}

func (m *MockPantryItemRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.PantryItem, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PantryItem), args.Error(1)
}

func (m *MockPantryItemRepository) Create(ctx context.Context, item *models.PantryItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockPantryItemRepository) Update(ctx context.Context, userID, id uuid.UUID, upd *models.PantryItemUpdate) (*models.PantryItem, error) {
	args := m.Called(ctx, userID, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PantryItem), args.Error(1)
}

func (m *MockPantryItemRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetPantryItems(ctx context.Context, userID uuid.UUID) ([]*models.PantryItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PantryItem), args.Error(1)
}

func (m *MockCacheService) SetPantryItems(ctx context.Context, userID uuid.UUID, items []*models.PantryItem, ttl time.Duration) error {
	args := m.Called(ctx, userID, items, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeletePantryItems(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheService) MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockPushSubscriptionRepository struct {
	mock.Mock
}

func (m *MockPushSubscriptionRepository) Upsert(ctx context.Context, sub *models.PushSubscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *MockPushSubscriptionRepository) Delete(ctx context.Context, userID uuid.UUID, endpoint string) error {
	args := m.Called(ctx, userID, endpoint)
	return args.Error(0)
}

func (m *MockPushSubscriptionRepository) DeleteByEndpoint(ctx context.Context, endpoint string) error {
	args := m.Called(ctx, endpoint)
	return args.Error(0)
}

func (m *MockPushSubscriptionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.PushSubscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PushSubscription), args.Error(1)
}

func (m *MockPushSubscriptionRepository) ListUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

type MockPushSender struct {
	mock.Mock
}

func (m *MockPushSender) Send(ctx context.Context, sub *models.PushSubscription, payload []byte) (int, error) {
	args := m.Called(ctx, sub, payload)
	return args.Int(0), args.Error(1)
}

type MockPantryService struct {
	mock.Mock
}

func (m *MockPantryService) List(ctx context.Context, userID uuid.UUID, q viewengine.Query, now time.Time) (*PantryList, error) {
	args := m.Called(ctx, userID, q, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PantryList), args.Error(1)
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

func (m *MockPantryService) Create(ctx context.Context, userID uuid.UUID, in *PantryItemInput) (*models.PantryItem, models.ActionResult, error) {
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

type MockLLMClient struct {
	mock.Mock
}

func (m *MockLLMClient) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

type MockMinioService struct {
	mock.Mock
}

func (m *MockMinioService) UploadObject(ctx context.Context, objectName, contentType string, reader io.Reader, objectSize int64) error {
	args := m.Called(ctx, objectName, contentType, reader, objectSize)
	return args.Error(0)
}

func (m *MockMinioService) ObjectURL(ctx context.Context, objectName string) (string, error) {
	args := m.Called(ctx, objectName)
	return args.String(0), args.Error(1)
}

func (m *MockMinioService) DeleteObject(ctx context.Context, objectName string) error {
	args := m.Called(ctx, objectName)
	return args.Error(0)
}

func (m *MockMinioService) EnsureBucketExists(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockMinioService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) List(ctx context.Context, viewerID *uuid.UUID, limit int) ([]*models.Post, error) {
	args := m.Called(ctx, viewerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Post), args.Error(1)
}

func (m *MockPostRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Post, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Post), args.Error(1)
}

func (m *MockPostRepository) ListLikedBy(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Post, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Post), args.Error(1)
}

func (m *MockPostRepository) GetByID(ctx context.Context, id uuid.UUID, viewerID *uuid.UUID) (*models.Post, error) {
	args := m.Called(ctx, id, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) Update(ctx context.Context, userID, id uuid.UUID, upd *models.PostUpdate) error {
	args := m.Called(ctx, userID, id, upd)
	return args.Error(0)
}

func (m *MockPostRepository) Delete(ctx context.Context, userID, id uuid.UUID) ([]models.MediaItem, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MediaItem), args.Error(1)
}

func (m *MockPostRepository) Like(ctx context.Context, postID, userID uuid.UUID) error {
	args := m.Called(ctx, postID, userID)
	return args.Error(0)
}

func (m *MockPostRepository) Unlike(ctx context.Context, postID, userID uuid.UUID) error {
	args := m.Called(ctx, postID, userID)
	return args.Error(0)
}

func (m *MockPostRepository) ListComments(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Comment), args.Error(1)
}

func (m *MockPostRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

type MockFollowRepository struct {
	mock.Mock
}

func (m *MockFollowRepository) Follow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	args := m.Called(ctx, followerID, followeeID)
	return args.Error(0)
}

func (m *MockFollowRepository) Unfollow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	args := m.Called(ctx, followerID, followeeID)
	return args.Error(0)
}

func (m *MockFollowRepository) ListFollowing(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockFollowRepository) ListFollowers(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}
