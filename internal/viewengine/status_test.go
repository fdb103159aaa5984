package viewengine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"saveeat/testhelpers"
)

func TestClassify(t *testing.T) {
	today := testhelpers.MustDate(t, "2024-03-10")

	tests := []struct {
		expiry string
		kind   StatusKind
		days   int
		tier   Tier
		label  string
	}{
		{"2024-03-10", StatusExpiringSoon, 0, TierUrgent, "Expires today"},
		{"2024-03-11", StatusExpiringSoon, 1, TierUrgent, "1 day left"},
		{"2024-03-13", StatusExpiringSoon, 3, TierUrgent, "3 days left"},
		{"2024-03-14", StatusFresh, 4, TierCaution, "4 days left"},
		{"2024-03-17", StatusFresh, 7, TierCaution, "7 days left"},
		{"2024-03-18", StatusFresh, 8, TierSafe, "8 days left"},
		{"2024-03-09", StatusExpired, 1, TierUrgent, "Expired 1 day ago"},
		{"2024-02-29", StatusExpired, 10, TierUrgent, "Expired 10 days ago"},
		{"9999-12-31", StatusFresh, 2913104, TierSafe, "2913104 days left"},
	}

	for _, tt := range tests {
		t.Run(tt.expiry, func(t *testing.T) {
			got := Classify(item("x", tt.expiry), today)
			assert.Equal(t, DisplayStatus{Kind: tt.kind, Days: tt.days, Tier: tt.tier, Label: tt.label}, got)
		})
	}
}

func TestClassify_NeverPanics(t *testing.T) {
	today := testhelpers.MustDate(t, "2024-03-10")
	unset := DisplayStatus{Kind: StatusUnset, Tier: TierNeutral, Label: "No expiry date"}

	for _, raw := range []string{"not-a-date", "", "2024-13-40", "10/03/2024"} {
		it := item("x", "")
		it.ExpiryDate = testhelpers.Ptr(raw)
		assert.NotPanics(t, func() {
			assert.Equal(t, unset, Classify(it, today))
		})
	}

	assert.Equal(t, unset, Classify(item("x", ""), today))
	assert.Equal(t, unset, Classify(nil, today))
}

func TestParseExpiry(t *testing.T) {
	d, ok := ParseExpiry("2024-03-10")
	assert.True(t, ok)
	assert.Equal(t, "2024-03-10", FormatDate(d))

	d, ok = ParseExpiry("2024-03-10T15:04:05+09:00")
	assert.True(t, ok)
	assert.Equal(t, "2024-03-10", FormatDate(d))

	_, ok = ParseExpiry("tomorrow")
	assert.False(t, ok)
}
