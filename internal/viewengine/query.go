package viewengine

import (
	"net/url"
	"strconv"
	"strings"
)

// URL query keys recognised by ParseQuery
const (
	ParamKeyword  = "q"
	ParamWithin   = "within"
	ParamExpired  = "expired"
	ParamUnset    = "unset"
	ParamSort     = "sort"
	checkboxValue = "on"
)

// SortKey selects the ordering of the rendered list
type SortKey string

const (
	SortExpiryAsc  SortKey = "expiry_asc"
	SortExpiryDesc SortKey = "expiry_desc"
	SortNameAsc    SortKey = "name_asc"
	SortNewest     SortKey = "newest"
)

// ParseSortKey maps unknown or empty values to SortExpiryAsc
func ParseSortKey(s string) SortKey {
	switch k := SortKey(strings.TrimSpace(s)); k {
	case SortExpiryAsc, SortExpiryDesc, SortNameAsc, SortNewest:
		return k
	default:
		return SortExpiryAsc
	}
}

// Query holds the list controls for one render
type Query struct {
	Keyword        string  `json:"q"`
	WithinDays     int     `json:"within,omitempty"` // 0 means no window
	IncludeExpired bool    `json:"expired"`
	IncludeUnset   bool    `json:"unset"`
	Sort           SortKey `json:"sort"`
}

// DefaultQuery shows valid items only, nearest expiry first
func DefaultQuery() Query {
	return Query{Sort: SortExpiryAsc}
}

// ParseQuery builds a Query from URL values. Malformed values fall back to their
// defaults instead of failing.
func ParseQuery(values url.Values) Query {
	q := DefaultQuery()
	q.Keyword = strings.TrimSpace(values.Get(ParamKeyword))
	q.WithinDays = parseWithin(values.Get(ParamWithin))
	q.IncludeExpired = values.Get(ParamExpired) == checkboxValue
	q.IncludeUnset = values.Get(ParamUnset) == checkboxValue
	q.Sort = ParseSortKey(values.Get(ParamSort))
	return q
}

// MaxWithinDays caps the expiry window. Larger windows already cover every storable date.
const MaxWithinDays = 36500

func parseWithin(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return 0
	}
	return min(n, MaxWithinDays)
}

// Values renders q back into canonical URL values, omitting defaults
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Keyword != "" {
		v.Set(ParamKeyword, q.Keyword)
	}
	if q.WithinDays > 0 {
		v.Set(ParamWithin, strconv.Itoa(q.WithinDays))
	}
	if q.IncludeExpired {
		v.Set(ParamExpired, checkboxValue)
	}
	if q.IncludeUnset {
		v.Set(ParamUnset, checkboxValue)
	}
	if s := ParseSortKey(string(q.Sort)); s != SortExpiryAsc {
		v.Set(ParamSort, string(s))
	}
	return v
}

// includes applies the additive status rule: valid items are always shown and
// the flags only add expired or unset items on top of them.
func (q Query) includes(b Bucket) bool {
	switch b {
	case BucketValid:
		return true
	case BucketExpired:
		return q.IncludeExpired
	case BucketUnset:
		return q.IncludeUnset
	default:
		return false
	}
}
