package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type FollowRepository interface {
	Follow(ctx context.Context, followerID, followeeID uuid.UUID) error
	Unfollow(ctx context.Context, followerID, followeeID uuid.UUID) error
	ListFollowing(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	ListFollowers(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

const (
	followSQL = `INSERT INTO follows (follower_id, followee_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (follower_id, followee_id) DO NOTHING`

	unfollowSQL = `DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`

	listFollowingSQL = `SELECT followee_id FROM follows WHERE follower_id = $1 ORDER BY created_at DESC`

	listFollowersSQL = `SELECT follower_id FROM follows WHERE followee_id = $1 ORDER BY created_at DESC`
)

type followRepo struct {
	db DBTX
}

func NewFollowRepo(db DBTX) FollowRepository {
	return &followRepo{db: db}
}

func (r *followRepo) Follow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, followSQL, followerID, followeeID); err != nil {
		return fmt.Errorf("failed to follow user: %w", err)
	}
	return nil
}

func (r *followRepo) Unfollow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, unfollowSQL, followerID, followeeID); err != nil {
		return fmt.Errorf("failed to unfollow user: %w", err)
	}
	return nil
}

func (r *followRepo) ListFollowing(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return r.listIDs(ctx, listFollowingSQL, userID)
}

func (r *followRepo) ListFollowers(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return r.listIDs(ctx, listFollowersSQL, userID)
}

func (r *followRepo) listIDs(ctx context.Context, query string, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list follows: %w", err)
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan follow: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
