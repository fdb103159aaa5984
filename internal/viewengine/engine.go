package viewengine

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"saveeat/internal/models"
)

// Engine filters and orders pantry items. It only carries the collation locale
// used for name ordering and is safe for concurrent use.
type Engine struct {
	locale language.Tag
}

// NewEngine creates an engine that orders names using the given BCP 47 locale.
// An unparseable locale falls back to the root collation.
func NewEngine(locale string) *Engine {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Und
	}
	return &Engine{locale: tag}
}

// ItemView is an item together with its badge
type ItemView struct {
	*models.PantryItem
	Status DisplayStatus `json:"status"`
}

// View is a render-ready list
type View struct {
	Items []ItemView `json:"items"`
	Count int        `json:"count"` // Visible items
	Total int        `json:"total"` // Items before filtering
	Query Query      `json:"query"`
	Today string     `json:"today"`
}

type entry struct {
	item   *models.PantryItem
	expiry time.Time
	hasExp bool
}

// FilterAndSort returns the visible subset of items in display order. The input
// slice is not modified. Stages: keyword, status inclusion, expiry window, then
// one stable sort.
func (e *Engine) FilterAndSort(items []*models.PantryItem, q Query, today time.Time) []*models.PantryItem {
	entries := e.filter(items, q, Today(today))
	e.sort(entries, q.Sort)

	out := make([]*models.PantryItem, len(entries))
	for i, en := range entries {
		out[i] = en.item
	}
	return out
}

// Render runs FilterAndSort and classifies every visible item against the same day
func (e *Engine) Render(items []*models.PantryItem, q Query, today time.Time) *View {
	day := Today(today)
	visible := e.FilterAndSort(items, q, day)

	views := make([]ItemView, len(visible))
	for i, it := range visible {
		views[i] = ItemView{PantryItem: it, Status: Classify(it, day)}
	}
	return &View{
		Items: views,
		Count: len(views),
		Total: len(items),
		Query: q,
		Today: FormatDate(day),
	}
}

// Statuses classifies every item, keyed by id
func Statuses(items []*models.PantryItem, today time.Time) map[uuid.UUID]DisplayStatus {
	out := make(map[uuid.UUID]DisplayStatus, len(items))
	for _, it := range items {
		if it != nil {
			out[it.ID] = Classify(it, today)
		}
	}
	return out
}

func (e *Engine) filter(items []*models.PantryItem, q Query, today time.Time) []entry {
	keyword := strings.ToLower(strings.TrimSpace(q.Keyword))

	var upper time.Time
	windowed := q.WithinDays > 0
	if windowed {
		upper = today.AddDate(0, 0, min(q.WithinDays, MaxWithinDays))
	}

	out := make([]entry, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		if keyword != "" && !strings.Contains(strings.ToLower(it.Name), keyword) {
			continue
		}

		expiry, ok := expiryOf(it)
		bucket := bucketFor(expiry, ok, today)
		if !q.includes(bucket) {
			continue
		}
		// Items without an expiry have nothing to bound.
		if windowed && bucket != BucketUnset && expiry.After(upper) {
			continue
		}
		out = append(out, entry{item: it, expiry: expiry, hasExp: ok})
	}
	return out
}

func (e *Engine) sort(entries []entry, key SortKey) {
	var cmp func(a, b entry) int

	switch ParseSortKey(string(key)) {
	case SortExpiryDesc:
		cmp = func(a, b entry) int {
			return compareExpiry(a, b, true)
		}
	case SortNameAsc:
		// collate.Collator is not safe for concurrent use, so build one per call.
		col := collate.New(e.locale)
		cmp = func(a, b entry) int {
			return col.CompareString(a.item.Name, b.item.Name)
		}
	case SortNewest:
		cmp = func(a, b entry) int {
			return b.item.CreatedAt.Compare(a.item.CreatedAt)
		}
	default:
		cmp = func(a, b entry) int {
			return compareExpiry(a, b, false)
		}
	}

	slices.SortStableFunc(entries, cmp)
}

// compareExpiry orders by expiry date with unset items last in both directions
func compareExpiry(a, b entry, desc bool) int {
	switch {
	case !a.hasExp && !b.hasExp:
		return 0
	case !a.hasExp:
		return 1
	case !b.hasExp:
		return -1
	case desc:
		return b.expiry.Compare(a.expiry)
	default:
		return a.expiry.Compare(b.expiry)
	}
}
