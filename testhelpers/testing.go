package testhelpers

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"saveeat/internal/models"
)

// Ptr returns a pointer to v
func Ptr[T any](v T) *T {
	return &v
}

// MustDate parses a YYYY-MM-DD date in UTC
func MustDate(t testing.TB, s string) time.Time {
	t.Helper()

	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err, "bad test date %q", s)
	return d
}

// NewPantryItem builds an item owned by userID. An empty expiry means no expiry date.
func NewPantryItem(userID uuid.UUID, name, expiry string) *models.PantryItem {
	item := &models.PantryItem{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		Quantity:  1,
		CreatedAt: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
	}
	item.UpdatedAt = item.CreatedAt
	if expiry != "" {
		item.ExpiryDate = Ptr(expiry)
	}
	return item
}

// Names lists item names in order
func Names(items []*models.PantryItem) []string {
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}
	return names
}

// NewPost builds a post with a single image
func NewPost(userID uuid.UUID, title string) *models.Post {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	return &models.Post{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       title,
		Body:        "",
		Ingredients: []string{},
		Media:       []models.MediaItem{{Type: models.MediaTypeImage, URL: "https://cdn.example.com/" + title + ".jpg"}},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
