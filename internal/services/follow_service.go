package services

import (
	"context"

	"github.com/google/uuid"

	"saveeat/internal/repositories"
)

type FollowService interface {
	Follow(ctx context.Context, followerID, followeeID uuid.UUID) error
	Unfollow(ctx context.Context, followerID, followeeID uuid.UUID) error
	Following(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	Followers(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type followService struct {
	repo repositories.FollowRepository
}

func NewFollowService(repo repositories.FollowRepository) FollowService {
	return &followService{repo: repo}
}

func (s *followService) Follow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	if followerID == followeeID {
		return invalid("userId", "cannot follow yourself")
	}
	return s.repo.Follow(ctx, followerID, followeeID)
}

func (s *followService) Unfollow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	if followerID == followeeID {
		return invalid("userId", "cannot unfollow yourself")
	}
	return s.repo.Unfollow(ctx, followerID, followeeID)
}

func (s *followService) Following(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return s.repo.ListFollowing(ctx, userID)
}

func (s *followService) Followers(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return s.repo.ListFollowers(ctx, userID)
}
