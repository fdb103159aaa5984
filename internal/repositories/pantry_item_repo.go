package repositories

import (
	"context"
	"fmt"

	"saveeat/internal/models"

	"github.com/google/uuid"
)

type PantryItemRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.PantryItem, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.PantryItem, error)
	Create(ctx context.Context, item *models.PantryItem) error
	Update(ctx context.Context, userID, id uuid.UUID, upd *models.PantryItemUpdate) (*models.PantryItem, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// expiry_date is selected as text so rows with odd values still reach the view engine
const pantryItemColumns = `id, user_id, name, quantity, unit, to_char(expiry_date, 'YYYY-MM-DD'), created_at, updated_at`

const (
	listPantryItemsSQL = `SELECT ` + pantryItemColumns + `
		FROM pantry_items
		WHERE user_id = $1
		ORDER BY created_at DESC`

	getPantryItemSQL = `SELECT ` + pantryItemColumns + `
		FROM pantry_items
		WHERE user_id = $1 AND id = $2`

	createPantryItemSQL = `INSERT INTO pantry_items (id, user_id, name, quantity, unit, expiry_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6::date, NOW(), NOW())
		RETURNING created_at, updated_at`

	updatePantryItemSQL = `UPDATE pantry_items
		SET name = COALESCE($3, name),
			quantity = COALESCE($4, quantity),
			unit = CASE WHEN $8 THEN NULL ELSE COALESCE($5, unit) END,
			expiry_date = CASE WHEN $6 THEN NULL ELSE COALESCE($7::date, expiry_date) END,
			updated_at = NOW()
		WHERE user_id = $1 AND id = $2
		RETURNING ` + pantryItemColumns

	deletePantryItemSQL = `DELETE FROM pantry_items WHERE user_id = $1 AND id = $2`
)

type pantryItemRepo struct {
	db DBTX
}

func NewPantryItemRepo(db DBTX) PantryItemRepository {
	return &pantryItemRepo{db: db}
}

func scanPantryItem(row rowScanner) (*models.PantryItem, error) {
	item := &models.PantryItem{}
	err := row.Scan(&item.ID, &item.UserID, &item.Name, &item.Quantity, &item.Unit,
		&item.ExpiryDate, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *pantryItemRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.PantryItem, error) {
	rows, err := r.db.Query(ctx, listPantryItemsSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pantry items: %w", err)
	}
	defer rows.Close()

	items := []*models.PantryItem{}
	for rows.Next() {
		item, err := scanPantryItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pantry item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pantry items: %w", err)
	}
	return items, nil
}

func (r *pantryItemRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.PantryItem, error) {
	item, err := scanPantryItem(r.db.QueryRow(ctx, getPantryItemSQL, userID, id))
	if err != nil {
		return nil, notFound(err)
	}
	return item, nil
}

func (r *pantryItemRepo) Create(ctx context.Context, item *models.PantryItem) error {
	err := r.db.QueryRow(ctx, createPantryItemSQL, item.ID, item.UserID, item.Name, item.Quantity,
		item.Unit, item.ExpiryDate).Scan(&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create pantry item: %w", err)
	}
	return nil
}

func (r *pantryItemRepo) Update(ctx context.Context, userID, id uuid.UUID, upd *models.PantryItemUpdate) (*models.PantryItem, error) {
	row := r.db.QueryRow(ctx, updatePantryItemSQL, userID, id, upd.Name, upd.Quantity, upd.Unit,
		upd.ClearExpiry, upd.ExpiryDate, upd.ClearUnit)
	item, err := scanPantryItem(row)
	if err != nil {
		return nil, notFound(err)
	}
	return item, nil
}

func (r *pantryItemRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, deletePantryItemSQL, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete pantry item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
