package signal

import "time"

// Window bounds for the volume comparison. Recent is the trailing seven days,
// baseline the twenty-one days before that. Both ranges are half-open
// [Start, End) so a boundary incident is counted exactly once
const (
	RecentWindowDays   = 7
	BaselineWindowDays = 21
)

// Windows holds the two comparison ranges anchored at a single evaluation time
type Windows struct {
	RecentStart   time.Time
	RecentEnd     time.Time
	BaselineStart time.Time
	BaselineEnd   time.Time
}

// SpikeWindows derives both comparison ranges from one captured now so the
// baseline ends exactly where the recent window begins
func SpikeWindows(now time.Time) Windows {
	recentStart := now.AddDate(0, 0, -RecentWindowDays)
	return Windows{
		RecentStart:   recentStart,
		RecentEnd:     now,
		BaselineStart: now.AddDate(0, 0, -(RecentWindowDays + BaselineWindowDays)),
		BaselineEnd:   recentStart,
	}
}

// DaysBetween returns the whole days elapsed from a to b, truncating any
// fractional day. Negative when b precedes a
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
