package repositories

import (
	"context"
	"fmt"

	"saveeat/internal/models"

	"github.com/google/uuid"
)

type PushSubscriptionRepository interface {
	Upsert(ctx context.Context, sub *models.PushSubscription) error
	Delete(ctx context.Context, userID uuid.UUID, endpoint string) error
	DeleteByEndpoint(ctx context.Context, endpoint string) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.PushSubscription, error)
	ListUserIDs(ctx context.Context) ([]uuid.UUID, error)
}

const (
	// An endpoint re-registered by another user moves to that user
	upsertPushSubscriptionSQL = `INSERT INTO push_subscriptions (endpoint, user_id, p256dh, auth, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (endpoint) DO UPDATE
		SET user_id = EXCLUDED.user_id, p256dh = EXCLUDED.p256dh, auth = EXCLUDED.auth
		RETURNING created_at`

	deletePushSubscriptionSQL = `DELETE FROM push_subscriptions WHERE user_id = $1 AND endpoint = $2`

	deletePushEndpointSQL = `DELETE FROM push_subscriptions WHERE endpoint = $1`

	listPushSubscriptionsSQL = `SELECT endpoint, user_id, p256dh, auth, created_at
		FROM push_subscriptions
		WHERE user_id = $1
		ORDER BY created_at`

	listPushUserIDsSQL = `SELECT DISTINCT user_id FROM push_subscriptions`
)

type pushSubscriptionRepo struct {
	db DBTX
}

func NewPushSubscriptionRepo(db DBTX) PushSubscriptionRepository {
	return &pushSubscriptionRepo{db: db}
}

func (r *pushSubscriptionRepo) Upsert(ctx context.Context, sub *models.PushSubscription) error {
	err := r.db.QueryRow(ctx, upsertPushSubscriptionSQL, sub.Endpoint, sub.UserID, sub.P256dh, sub.Auth).
		Scan(&sub.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save push subscription: %w", err)
	}
	return nil
}

func (r *pushSubscriptionRepo) Delete(ctx context.Context, userID uuid.UUID, endpoint string) error {
	tag, err := r.db.Exec(ctx, deletePushSubscriptionSQL, userID, endpoint)
	if err != nil {
		return fmt.Errorf("failed to delete push subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pushSubscriptionRepo) DeleteByEndpoint(ctx context.Context, endpoint string) error {
	if _, err := r.db.Exec(ctx, deletePushEndpointSQL, endpoint); err != nil {
		return fmt.Errorf("failed to prune push subscription: %w", err)
	}
	return nil
}

func (r *pushSubscriptionRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.PushSubscription, error) {
	rows, err := r.db.Query(ctx, listPushSubscriptionsSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list push subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []*models.PushSubscription
	for rows.Next() {
		sub := &models.PushSubscription{}
		if err := rows.Scan(&sub.Endpoint, &sub.UserID, &sub.P256dh, &sub.Auth, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan push subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func (r *pushSubscriptionRepo) ListUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, listPushUserIDsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscribed users: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
