package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"saveeat/internal/caching"
	"saveeat/internal/common"
	"saveeat/internal/jobs"
	"saveeat/internal/models"
	"saveeat/internal/repositories"
	"saveeat/internal/viewengine"
)

const (
	maxItemNameLength = 100
	maxUnitLength     = 20
)

// PantryItemInput is the body of a create request
type PantryItemInput struct {
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	Unit       *string `json:"unit"`
	ExpiryDate *string `json:"expiry_date"`
}

// PantryList is a rendered list plus the in-app expiry notices for the whole pantry
type PantryList struct {
	*viewengine.View
	Notices []string `json:"notices"`
}

type PantryService interface {
	List(ctx context.Context, userID uuid.UUID, q viewengine.Query, now time.Time) (*PantryList, error)
	Items(ctx context.Context, userID uuid.UUID) ([]*models.PantryItem, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*models.PantryItem, error)
	Create(ctx context.Context, userID uuid.UUID, in *PantryItemInput) (*models.PantryItem, models.ActionResult, error)
	Update(ctx context.Context, userID, id uuid.UUID, upd *models.PantryItemUpdate) (*models.PantryItem, models.ActionResult, error)
	Delete(ctx context.Context, userID, id uuid.UUID) (models.ActionResult, error)
}

type pantryService struct {
	repo     repositories.PantryItemRepository
	cache    caching.CacheService
	engine   *viewengine.Engine
	alerts   *jobs.ExpiryAlertService
	cacheTTL time.Duration
	logger   *zap.Logger
}

func NewPantryService(repo repositories.PantryItemRepository, cache caching.CacheService, engine *viewengine.Engine,
	alerts *jobs.ExpiryAlertService, cacheTTL time.Duration, logger *zap.Logger) PantryService {
	return &pantryService{
		repo:     repo,
		cache:    cache,
		engine:   engine,
		alerts:   alerts,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

func (s *pantryService) List(ctx context.Context, userID uuid.UUID, q viewengine.Query, now time.Time) (*PantryList, error) {
	items, err := s.Items(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &PantryList{
		View:    s.engine.Render(items, q, now),
		Notices: s.alerts.Notices(items, viewengine.Today(now)),
	}, nil
}

// Items returns every item of the user, from cache when possible. Cache failures
// fall through to the database.
func (s *pantryService) Items(ctx context.Context, userID uuid.UUID) ([]*models.PantryItem, error) {
	if s.cache != nil {
		cached, err := s.cache.GetPantryItems(ctx, userID)
		if err != nil {
			s.logger.Warn("pantry cache read failed", zap.Stringer("user_id", userID), zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetPantryItems(ctx, userID, items, s.cacheTTL); err != nil {
			s.logger.Warn("pantry cache write failed", zap.Stringer("user_id", userID), zap.Error(err))
		}
	}
	return items, nil
}

func (s *pantryService) Get(ctx context.Context, userID, id uuid.UUID) (*models.PantryItem, error) {
	return s.repo.GetByID(ctx, userID, id)
}

func (s *pantryService) Create(ctx context.Context, userID uuid.UUID, in *PantryItemInput) (*models.PantryItem, models.ActionResult, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, failed("Name is required"), invalid("name", "is required")
	}
	if len(name) > maxItemNameLength {
		return nil, failed("Name is too long"), invalid("name", fmt.Sprintf("cannot exceed %d characters", maxItemNameLength))
	}
	if in.Quantity <= 0 {
		return nil, failed("Quantity must be a positive number"), invalid("quantity", "must be a positive integer")
	}
	if err := common.ValidateOptionalString(in.Unit, "unit", maxUnitLength); err != nil {
		return nil, failed("Unit is too long"), invalid("unit", err.Error())
	}

	item := &models.PantryItem{
		ID:       uuid.New(),
		UserID:   userID,
		Name:     name,
		Quantity: in.Quantity,
		Unit:     emptyToNil(in.Unit),
	}
	expiry, err := normalizeExpiry(in.ExpiryDate)
	if err != nil {
		return nil, failed("Expiry date must be YYYY-MM-DD"), err
	}
	item.ExpiryDate = expiry

	if err := s.repo.Create(ctx, item); err != nil {
		s.logger.Error("failed to create pantry item", zap.Stringer("user_id", userID), zap.Error(err))
		return nil, failed("Could not save the item"), err
	}
	s.invalidate(ctx, userID)

	return item, models.ActionResult{OK: true, Message: fmt.Sprintf("Added %s", item.Name)}, nil
}

func (s *pantryService) Update(ctx context.Context, userID, id uuid.UUID, upd *models.PantryItemUpdate) (*models.PantryItem, models.ActionResult, error) {
	if upd.Name != nil {
		trimmed := strings.TrimSpace(*upd.Name)
		if trimmed == "" {
			return nil, failed("Name is required"), invalid("name", "cannot be blank")
		}
		upd.Name = &trimmed
	}
	if upd.Quantity != nil && *upd.Quantity <= 0 {
		return nil, failed("Quantity must be a positive number"), invalid("quantity", "must be a positive integer")
	}
	if err := common.ValidateOptionalString(upd.Unit, "unit", maxUnitLength); err != nil {
		return nil, failed("Unit is too long"), invalid("unit", err.Error())
	}
	if upd.Unit != nil && *upd.Unit == "" {
		upd.Unit = nil
		upd.ClearUnit = true
	}
	if upd.ExpiryDate != nil {
		expiry, err := normalizeExpiry(upd.ExpiryDate)
		if err != nil {
			return nil, failed("Expiry date must be YYYY-MM-DD"), err
		}
		upd.ExpiryDate = expiry
		if expiry == nil {
			upd.ClearExpiry = true
		}
	}
	if upd.IsEmpty() {
		return nil, failed("Nothing to update"), invalid("body", "no fields to update")
	}

	item, err := s.repo.Update(ctx, userID, id, upd)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, failed("Item not found"), err
		}
		s.logger.Error("failed to update pantry item", zap.Stringer("item_id", id), zap.Error(err))
		return nil, failed("Could not update the item"), err
	}
	s.invalidate(ctx, userID)

	return item, models.ActionResult{OK: true, Message: fmt.Sprintf("Updated %s", item.Name)}, nil
}

func (s *pantryService) Delete(ctx context.Context, userID, id uuid.UUID) (models.ActionResult, error) {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return failed("Item not found"), err
		}
		s.logger.Error("failed to delete pantry item", zap.Stringer("item_id", id), zap.Error(err))
		return failed("Could not delete the item"), err
	}
	s.invalidate(ctx, userID)
	return models.ActionResult{OK: true, Message: "Deleted"}, nil
}

func (s *pantryService) invalidate(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePantryItems(ctx, userID); err != nil {
		s.logger.Warn("pantry cache invalidation failed", zap.Stringer("user_id", userID), zap.Error(err))
	}
}

func failed(message string) models.ActionResult {
	return models.ActionResult{OK: false, Message: message}
}

// normalizeExpiry maps an empty string to nil and validates the date layout
func normalizeExpiry(raw *string) (*string, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*raw)
	if err := common.ValidateDateFormat(trimmed, "expiry_date"); err != nil {
		return nil, invalid("expiry_date", "must be in YYYY-MM-DD format")
	}
	return &trimmed, nil
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
