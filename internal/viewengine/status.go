package viewengine

import (
	"fmt"
	"strings"
	"time"

	"saveeat/internal/models"
)

const (
	dateLayout = "2006-01-02"

	// ExpiringSoonDays is the last day count that still counts as expiring soon
	ExpiringSoonDays = 3
	// CautionDays is the upper bound of the caution badge tier
	CautionDays = 7

	secondsPerDay = 24 * 60 * 60
)

// Bucket is the filtering partition of an item relative to today
type Bucket string

const (
	BucketValid   Bucket = "valid"
	BucketExpired Bucket = "expired"
	BucketUnset   Bucket = "unset"
)

// StatusKind is the badge classification of an item
type StatusKind string

const (
	StatusFresh        StatusKind = "fresh"
	StatusExpiringSoon StatusKind = "expiring_soon"
	StatusExpired      StatusKind = "expired"
	StatusUnset        StatusKind = "unset"
)

// Tier drives the badge color
type Tier string

const (
	TierUrgent  Tier = "urgent"
	TierCaution Tier = "caution"
	TierSafe    Tier = "safe"
	TierNeutral Tier = "neutral"
)

// DisplayStatus is recomputed on every render and never stored.
// Days is the number of days until expiry, or the number of days overdue for
// expired items. It is zero for unset items.
type DisplayStatus struct {
	Kind  StatusKind `json:"kind"`
	Days  int        `json:"days"`
	Tier  Tier       `json:"tier"`
	Label string     `json:"label"`
}

// Today strips the time of day from now, keeping its calendar date
func Today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseExpiry parses a YYYY-MM-DD date. A full RFC 3339 timestamp is accepted and
// reduced to its date. Anything else reports false.
func ParseExpiry(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return Today(t), true
	}
	return time.Time{}, false
}

// FormatDate renders a date in the YYYY-MM-DD form stored on items
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func expiryOf(item *models.PantryItem) (time.Time, bool) {
	if item == nil || item.ExpiryDate == nil {
		return time.Time{}, false
	}
	return ParseExpiry(*item.ExpiryDate)
}

func bucketFor(expiry time.Time, ok bool, today time.Time) Bucket {
	switch {
	case !ok:
		return BucketUnset
	case expiry.Before(today):
		return BucketExpired
	default:
		return BucketValid
	}
}

// Partition reports which filtering bucket item falls into on the given day
func Partition(item *models.PantryItem, today time.Time) Bucket {
	expiry, ok := expiryOf(item)
	return bucketFor(expiry, ok, Today(today))
}

// DaysUntil returns the whole days from today to the item's expiry. ok is false
// when the item has no usable expiry date.
func DaysUntil(item *models.PantryItem, today time.Time) (days int, ok bool) {
	expiry, ok := expiryOf(item)
	if !ok {
		return 0, false
	}
	return daysBetween(Today(today), expiry), true
}

// daysBetween counts calendar days; both arguments are UTC midnights
func daysBetween(from, to time.Time) int {
	return int((to.Unix() - from.Unix()) / secondsPerDay)
}

// Classify computes the badge for item. It never fails: a missing or malformed
// expiry date yields StatusUnset.
func Classify(item *models.PantryItem, today time.Time) DisplayStatus {
	days, ok := DaysUntil(item, today)
	if !ok {
		return DisplayStatus{Kind: StatusUnset, Tier: TierNeutral, Label: "No expiry date"}
	}

	switch {
	case days < 0:
		return DisplayStatus{
			Kind:  StatusExpired,
			Days:  -days,
			Tier:  TierUrgent,
			Label: fmt.Sprintf("Expired %s ago", pluralDays(-days)),
		}
	case days == 0:
		return DisplayStatus{Kind: StatusExpiringSoon, Days: 0, Tier: TierUrgent, Label: "Expires today"}
	case days <= ExpiringSoonDays:
		return DisplayStatus{Kind: StatusExpiringSoon, Days: days, Tier: TierUrgent, Label: pluralDays(days) + " left"}
	case days <= CautionDays:
		return DisplayStatus{Kind: StatusFresh, Days: days, Tier: TierCaution, Label: pluralDays(days) + " left"}
	default:
		return DisplayStatus{Kind: StatusFresh, Days: days, Tier: TierSafe, Label: pluralDays(days) + " left"}
	}
}

func pluralDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
