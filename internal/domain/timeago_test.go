package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeAgo(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		at   time.Time
		want string
	}{
		{"just now", now.Add(-30 * time.Second), "now"},
		{"under an hour", now.Add(-59 * time.Minute), "now"},
		{"exactly one hour", now.Add(-time.Hour), "1 hour ago"},
		{"ninety minutes", now.Add(-90 * time.Minute), "1 hour ago"},
		{"plural hours", now.Add(-5 * time.Hour), "5 hours ago"},
		{"just under a day", now.Add(-23*time.Hour - 59*time.Minute), "23 hours ago"},
		{"exactly one day", now.Add(-24 * time.Hour), "1 day ago"},
		{"day and a half", now.Add(-36 * time.Hour), "1 day ago"},
		{"plural days", now.Add(-72 * time.Hour), "3 days ago"},
		{"weeks back", now.Add(-14 * 24 * time.Hour), "14 days ago"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, TimeAgo(tc.at, now))
		})
	}
}

func TestOccurrenceCode(t *testing.T) {
	assert.Equal(t, "OC-000001", OccurrenceCode(1))
	assert.Equal(t, "OC-000042", OccurrenceCode(42))
	assert.Equal(t, "OC-123456", OccurrenceCode(123456))
	assert.Equal(t, "OC-1234567", OccurrenceCode(1234567))
}
