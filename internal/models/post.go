package models

import (
	"time"

	"github.com/google/uuid"
)

// MediaType is the kind of media attached to a post
type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

// MediaItem is one image or video attached to a post
type MediaItem struct {
	Type     MediaType `json:"type"`
	URL      string    `json:"url"`
	ThumbURL string    `json:"thumb_url,omitempty"`
	Key      string    `json:"key,omitempty"` // Object key when stored in our bucket
}

// Post is a published dish
type Post struct {
	ID           uuid.UUID   `json:"id" db:"id"`
	UserID       uuid.UUID   `json:"user_id" db:"user_id"`
	Title        string      `json:"title" db:"title"`
	Body         string      `json:"body" db:"body"`
	Ingredients  []string    `json:"ingredients" db:"ingredients"`
	Media        []MediaItem `json:"media" db:"media"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`
	LikeCount    int         `json:"like_count" db:"like_count"`
	CommentCount int         `json:"comment_count" db:"comment_count"`
	IsLiked      bool        `json:"is_liked" db:"is_liked"`
}

// PostUpdate is a partial post update; nil fields are left unchanged
type PostUpdate struct {
	Title       *string     `json:"title,omitempty"`
	Description *string     `json:"description,omitempty"`
	Ingredients []string    `json:"ingredients,omitempty"`
	Media       []MediaItem `json:"media,omitempty"`
}

// IsEmpty reports whether the update carries no fields
func (u *PostUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Ingredients == nil && u.Media == nil
}

// Comment is a comment on a post
type Comment struct {
	ID        uuid.UUID `json:"id" db:"id"`
	PostID    uuid.UUID `json:"post_id" db:"post_id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Body      string    `json:"body" db:"body"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Follow is a directed follower -> followee edge
type Follow struct {
	FollowerID uuid.UUID `json:"follower_id" db:"follower_id"`
	FolloweeID uuid.UUID `json:"followee_id" db:"followee_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
