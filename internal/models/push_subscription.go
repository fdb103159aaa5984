package models

import (
	"time"

	"github.com/google/uuid"
)

// PushSubscription is a browser Web Push endpoint registered by a user
type PushSubscription struct {
	Endpoint  string    `json:"endpoint" db:"endpoint"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	P256dh    string    `json:"p256dh" db:"p256dh"`
	Auth      string    `json:"auth" db:"auth"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PushPayload is the JSON document delivered to the service worker
type PushPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
}

// PushResult summarizes one delivery run
type PushResult struct {
	Sent    int `json:"sent"`
	Removed int `json:"removed"`
	Failed  int `json:"failed"`
}

// Add accumulates another result into r
func (r *PushResult) Add(other PushResult) {
	r.Sent += other.Sent
	r.Removed += other.Removed
	r.Failed += other.Failed
}
