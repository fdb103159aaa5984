package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"saveeat/internal/config"
	"saveeat/internal/models"
)

const keyPrefix = "saveeat:"

type CacheService interface {
	// Pantry list caching
	GetPantryItems(ctx context.Context, userID uuid.UUID) ([]*models.PantryItem, error)
	SetPantryItems(ctx context.Context, userID uuid.UUID, items []*models.PantryItem, ttl time.Duration) error
	DeletePantryItems(ctx context.Context, userID uuid.UUID) error

	// Rate limiting
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	// MarkOnce sets key if absent and reports whether this call set it
	MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error)

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

// NewRedisClient builds a client from cfg. Addresses may carry a redis:// or rediss:// scheme.
func NewRedisClient(cfg config.RedisConfig, logger *zap.Logger) *redis.Client {
	addr := strings.TrimPrefix(strings.TrimPrefix(cfg.Addr, "redis://"), "rediss://")

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping failed on initialization", zap.String("addr", addr), zap.Error(err))
	} else {
		logger.Debug("redis connection established", zap.String("addr", addr))
	}
	return client
}

func NewRedisCacheService(client *redis.Client) CacheService {
	return &redisCacheService{client: client}
}

func pantryKey(userID uuid.UUID) string {
	return fmt.Sprintf("%spantry:%s", keyPrefix, userID.String())
}

// GetPantryItems returns nil, nil on a cache miss
func (r *redisCacheService) GetPantryItems(ctx context.Context, userID uuid.UUID) ([]*models.PantryItem, error) {
	data, err := r.client.Get(ctx, pantryKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	items := []*models.PantryItem{}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *redisCacheService) SetPantryItems(ctx context.Context, userID uuid.UUID, items []*models.PantryItem, ttl time.Duration) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, pantryKey(userID), data, ttl).Err()
}

func (r *redisCacheService) DeletePantryItems(ctx context.Context, userID uuid.UUID) error {
	return r.client.Del(ctx, pantryKey(userID)).Err()
}

func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	cacheKey := keyPrefix + "ratelimit:" + key
	count, err := r.client.Incr(ctx, cacheKey).Result()
	if err != nil {
		return true, err
	}

	// Set expiry on first request
	if count == 1 {
		if err := r.client.Expire(ctx, cacheKey, window).Err(); err != nil {
			return false, err
		}
	}

	return count > int64(limit), nil
}

func (r *redisCacheService) MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, keyPrefix+"once:"+key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
