package models

import (
	"time"

	"github.com/google/uuid"
)

// PantryItem is a tracked food unit owned by a single user
type PantryItem struct {
	ID         uuid.UUID `json:"id" db:"id"`
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	Name       string    `json:"name" db:"name"`
	Quantity   int       `json:"quantity" db:"quantity"`
	Unit       *string   `json:"unit" db:"unit"`               // Display only
	ExpiryDate *string   `json:"expiry_date" db:"expiry_date"` // YYYY-MM-DD, nil when not tracked
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// PantryItemUpdate carries a partial update. ClearUnit and ClearExpiry distinguish
// an explicit null from an absent field.
type PantryItemUpdate struct {
	Name        *string `json:"name,omitempty"`
	Quantity    *int    `json:"quantity,omitempty"`
	Unit        *string `json:"unit,omitempty"`
	ExpiryDate  *string `json:"expiry_date,omitempty"`
	ClearUnit   bool    `json:"-"`
	ClearExpiry bool    `json:"-"`
}

// IsEmpty reports whether the update changes nothing
func (u *PantryItemUpdate) IsEmpty() bool {
	return u.Name == nil && u.Quantity == nil && u.Unit == nil && u.ExpiryDate == nil && !u.ClearUnit && !u.ClearExpiry
}

// ActionResult is returned by mutating pantry operations so that the caller can
// surface the message in its own notification queue.
type ActionResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}
