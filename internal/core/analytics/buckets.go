package analytics

import (
	"strings"
	"time"
)

// monthKeyLen is the month bucket key width. "September" and "Sept"
// both collapse to "Sep".
const monthKeyLen = 3

// dayLayout pins the day bucket label to M/D/YYYY without leading
// zeros, in UTC. The upstream system used the host locale's short date
// format here, which made bucket keys platform-dependent; the shape is
// kept, the locale dependence is not.
const dayLayout = "1/2/2006"

// BucketKeysFor derives the month and day bucket labels for a
// timestamp. The month is the full English name; truncation to the
// bucket key happens at aggregation time, not here.
func BucketKeysFor(t time.Time) (month, day string) {
	t = t.UTC()
	return t.Month().String(), t.Format(dayLayout)
}

// MonthKey truncates a month label to the bucket key.
// Callers must have validated the label length (BillEvent.Validate).
func MonthKey(month string) string {
	return strings.TrimSpace(month)[:monthKeyLen]
}
