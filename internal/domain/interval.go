package domain

import "time"

// Interval is the symbolic reminder delay tag attached to a bookmark.
type Interval string

const (
	// IntervalShortTest fires after a few seconds. Testing only.
	IntervalShortTest Interval = "3s"
	IntervalOneDay    Interval = "1d"
	IntervalThreeDays Interval = "3d"
	IntervalOneWeek   Interval = "1w"
	IntervalOneMonth  Interval = "1m"
)

// DefaultInterval is the fallback for unrecognized tags.
const DefaultInterval = IntervalOneDay

var intervalDurations = map[Interval]time.Duration{
	IntervalShortTest: 3 * time.Second,
	IntervalOneDay:    24 * time.Hour,
	IntervalThreeDays: 3 * 24 * time.Hour,
	IntervalOneWeek:   7 * 24 * time.Hour,
	IntervalOneMonth:  30 * 24 * time.Hour,
}

// DurationFor maps an interval tag to its duration. The mapping is total:
// an unrecognized tag resolves to the one-day default instead of erroring,
// so a bad tag can degrade delivery but never block it. The second return
// reports whether the tag was recognized, letting callers log the fallback.
func DurationFor(tag Interval) (time.Duration, bool) {
	if d, ok := intervalDurations[tag]; ok {
		return d, true
	}
	return intervalDurations[DefaultInterval], false
}

// ValidInterval reports whether tag is one of the known interval tags.
func ValidInterval(tag Interval) bool {
	_, ok := intervalDurations[tag]
	return ok
}

// NextFireAt returns the reminder fire time for a bookmark whose interval
// clock starts at now.
func NextFireAt(tag Interval, now time.Time) time.Time {
	d, _ := DurationFor(tag)
	return now.Add(d)
}
