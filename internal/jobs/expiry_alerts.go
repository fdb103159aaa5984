package jobs

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"saveeat/internal/models"
	"saveeat/internal/viewengine"
)

const (
	// NoticeWindowDays bounds in-app notices to items expiring within this many days
	NoticeWindowDays = viewengine.ExpiringSoonDays
	maxNotices       = 3
	maxDigestNames   = 3
)

// ExpiryAlertService builds expiry digests and notices from a user's items
type ExpiryAlertService struct {
	engine *viewengine.Engine
}

func NewExpiryAlertService(engine *viewengine.Engine) *ExpiryAlertService {
	return &ExpiryAlertService{engine: engine}
}

// Digest selects items expiring between today and today+days inclusive, nearest first
func (a *ExpiryAlertService) Digest(items []*models.PantryItem, today time.Time, days int) []*models.PantryItem {
	if days < 1 {
		days = 1
	}
	q := viewengine.Query{WithinDays: days, Sort: viewengine.SortExpiryAsc}
	return a.engine.FilterAndSort(items, q, today)
}

// DigestPayload renders the push notification for a digest
func (a *ExpiryAlertService) DigestPayload(digest []*models.PantryItem, days int) models.PushPayload {
	return models.PushPayload{
		Title: fmt.Sprintf("Items expiring within %d days", days),
		Body:  DigestBody(digest),
		URL:   fmt.Sprintf("/?within=%d", days),
	}
}

// DigestBody names up to three items and counts the rest
func DigestBody(digest []*models.PantryItem) string {
	if len(digest) == 0 {
		return "Nothing is expiring soon"
	}

	n := min(len(digest), maxDigestNames)
	names := make([]string, n)
	for i := range n {
		names[i] = digest[i].Name
	}
	head := strings.Join(names, ", ")

	if rest := len(digest) - n; rest > 0 {
		return fmt.Sprintf("%s and %d more expire soon", head, rest)
	}
	return head + " expire soon"
}

type dueItem struct {
	name string
	days int
}

// Notices returns the in-app reminders for items due within NoticeWindowDays.
// At most three items are named; the remainder is summarized in one extra line.
func (a *ExpiryAlertService) Notices(items []*models.PantryItem, today time.Time) []string {
	var due []dueItem
	for _, it := range items {
		if it == nil {
			continue
		}
		d, ok := viewengine.DaysUntil(it, today)
		if ok && d >= 0 && d <= NoticeWindowDays {
			due = append(due, dueItem{name: it.Name, days: d})
		}
	}
	slices.SortStableFunc(due, func(x, y dueItem) int { return x.days - y.days })

	notices := []string{}
	for i, it := range due {
		if i == maxNotices {
			break
		}
		if it.days == 0 {
			notices = append(notices, fmt.Sprintf("%s expires today!", it.name))
		} else if it.days == 1 {
			notices = append(notices, fmt.Sprintf("%s expires in 1 day", it.name))
		} else {
			notices = append(notices, fmt.Sprintf("%s expires in %d days", it.name, it.days))
		}
	}
	if rest := len(due) - maxNotices; rest > 0 {
		notices = append(notices, fmt.Sprintf("%d more items are expiring soon", rest))
	}
	return notices
}
