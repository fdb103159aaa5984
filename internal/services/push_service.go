package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"saveeat/internal/config"
	"saveeat/internal/jobs"
	"saveeat/internal/models"
	"saveeat/internal/repositories"
	"saveeat/internal/viewengine"
)

// SubscriptionInput is the browser's PushSubscription JSON
type SubscriptionInput struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

// PushSender delivers one encrypted message and reports the push service status code
type PushSender interface {
	Send(ctx context.Context, sub *models.PushSubscription, payload []byte) (int, error)
}

type webpushSender struct {
	opts webpush.Options
}

// NewWebPushSender signs requests with the configured VAPID key pair
func NewWebPushSender(cfg config.PushConfig, client *http.Client) PushSender {
	if client == nil {
		client = http.DefaultClient
	}
	return &webpushSender{opts: webpush.Options{
		HTTPClient:      client,
		Subscriber:      cfg.Subscriber,
		VAPIDPublicKey:  cfg.VAPIDPublicKey,
		VAPIDPrivateKey: cfg.VAPIDPrivateKey,
		TTL:             cfg.TTLSeconds,
		Urgency:         webpush.UrgencyNormal,
	}}
}

func (w *webpushSender) Send(ctx context.Context, sub *models.PushSubscription, payload []byte) (int, error) {
	opts := w.opts
	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys:     webpush.Keys{P256dh: sub.P256dh, Auth: sub.Auth},
	}, &opts)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return resp.StatusCode, fmt.Errorf("push service responded %d", resp.StatusCode)
	}
	return resp.StatusCode, nil
}

type PushService interface {
	Subscribe(ctx context.Context, userID uuid.UUID, in *SubscriptionInput) error
	Unsubscribe(ctx context.Context, userID uuid.UUID, endpoint string) error
	VAPIDPublicKey() string
	Recipients(ctx context.Context) ([]uuid.UUID, error)
	SendDigest(ctx context.Context, userID uuid.UUID, days int, now time.Time) (models.PushResult, error)
	SendAll(ctx context.Context, days int, now time.Time) (models.PushResult, error)
}

type pushService struct {
	repo        repositories.PushSubscriptionRepository
	pantry      PantryService
	alerts      *jobs.ExpiryAlertService
	sender      PushSender
	publicKey   string
	concurrency int
	logger      *zap.Logger
}

// NewPushService builds the push service. A nil sender disables delivery.
func NewPushService(repo repositories.PushSubscriptionRepository, pantry PantryService, alerts *jobs.ExpiryAlertService,
	sender PushSender, cfg config.PushConfig, logger *zap.Logger) PushService {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	return &pushService{
		repo:        repo,
		pantry:      pantry,
		alerts:      alerts,
		sender:      sender,
		publicKey:   cfg.VAPIDPublicKey,
		concurrency: concurrency,
		logger:      logger,
	}
}

func (s *pushService) Subscribe(ctx context.Context, userID uuid.UUID, in *SubscriptionInput) error {
	endpoint := strings.TrimSpace(in.Endpoint)
	u, err := url.Parse(endpoint)
	if endpoint == "" || err != nil || u.Scheme != "https" || u.Host == "" {
		return invalid("endpoint", "must be an https URL")
	}
	if in.Keys.P256dh == "" || in.Keys.Auth == "" {
		return invalid("keys", "p256dh and auth are required")
	}

	return s.repo.Upsert(ctx, &models.PushSubscription{
		Endpoint: endpoint,
		UserID:   userID,
		P256dh:   in.Keys.P256dh,
		Auth:     in.Keys.Auth,
	})
}

func (s *pushService) Unsubscribe(ctx context.Context, userID uuid.UUID, endpoint string) error {
	if strings.TrimSpace(endpoint) == "" {
		return invalid("endpoint", "is required")
	}
	return s.repo.Delete(ctx, userID, endpoint)
}

func (s *pushService) VAPIDPublicKey() string {
	return s.publicKey
}

func (s *pushService) Recipients(ctx context.Context) ([]uuid.UUID, error) {
	return s.repo.ListUserIDs(ctx)
}

// SendDigest pushes the user's expiry digest to each of their subscriptions.
// Subscriptions the push service reports as gone are deleted.
func (s *pushService) SendDigest(ctx context.Context, userID uuid.UUID, days int, now time.Time) (models.PushResult, error) {
	var result models.PushResult
	if s.sender == nil {
		return result, fmt.Errorf("%w: push notifications are not configured", ErrUnavailable)
	}

	items, err := s.pantry.Items(ctx, userID)
	if err != nil {
		return result, err
	}
	digest := s.alerts.Digest(items, viewengine.Today(now), days)
	payload, err := json.Marshal(s.alerts.DigestPayload(digest, days))
	if err != nil {
		return result, err
	}

	subs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return result, err
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, sub := range subs {
		g.Go(func() error {
			outcome := s.deliver(gctx, sub, payload)
			mu.Lock()
			result.Add(outcome)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Info("expiry digest sent",
		zap.Stringer("user_id", userID),
		zap.Int("items", len(digest)),
		zap.Int("sent", result.Sent),
		zap.Int("removed", result.Removed),
		zap.Int("failed", result.Failed))
	return result, nil
}

func (s *pushService) deliver(ctx context.Context, sub *models.PushSubscription, payload []byte) models.PushResult {
	status, err := s.sender.Send(ctx, sub, payload)
	if status == http.StatusNotFound || status == http.StatusGone {
		if err := s.repo.DeleteByEndpoint(ctx, sub.Endpoint); err != nil {
			s.logger.Warn("failed to prune push subscription", zap.String("endpoint", sub.Endpoint), zap.Error(err))
			return models.PushResult{Failed: 1}
		}
		return models.PushResult{Removed: 1}
	}
	if err != nil {
		s.logger.Warn("push delivery failed", zap.String("endpoint", sub.Endpoint), zap.Int("status", status), zap.Error(err))
		return models.PushResult{Failed: 1}
	}
	return models.PushResult{Sent: 1}
}

// SendAll sends digests to every subscribed user. A failing user is logged and skipped.
func (s *pushService) SendAll(ctx context.Context, days int, now time.Time) (models.PushResult, error) {
	var total models.PushResult
	if s.sender == nil {
		return total, fmt.Errorf("%w: push notifications are not configured", ErrUnavailable)
	}

	users, err := s.repo.ListUserIDs(ctx)
	if err != nil {
		return total, err
	}
	for _, userID := range users {
		r, err := s.SendDigest(ctx, userID, days, now)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return total, err
			}
			s.logger.Error("failed to send expiry digest", zap.Stringer("user_id", userID), zap.Error(err))
			continue
		}
		total.Add(r)
	}
	return total, nil
}
