package domain

import (
	"fmt"
	"time"
)

// TimeAgo renders the relative-time label shown next to requests and
// occurrences. Buckets: under one hour "now", under a day hours, then days.
func TimeAgo(createdAt, now time.Time) string {
	elapsed := now.Sub(createdAt)
	if elapsed < time.Hour {
		return "now"
	}
	if elapsed < 24*time.Hour {
		h := int(elapsed.Hours())
		if h == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", h)
	}
	d := int(elapsed.Hours() / 24)
	if d == 1 {
		return "1 day ago"
	}
	return fmt.Sprintf("%d days ago", d)
}

// OccurrenceCode formats the display code for an occurrence from its
// server-assigned sequence number.
func OccurrenceCode(seq int64) string {
	return fmt.Sprintf("OC-%06d", seq)
}
