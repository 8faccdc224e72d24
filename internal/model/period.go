package model

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var ErrInvalidPeriodKey = errors.New("model: invalid period key")

// PeriodKey returns the canonical completion-bucket key for a date under the
// given frequency. Keys use the date's own calendar fields, so the same wall
// clock date always yields the same key regardless of process timezone.
//
//	daily   -> 2024-01-15
//	weekly  -> 2024-W03 (ISO-8601 week, Thursday-anchored)
//	monthly -> 2024-01
//	yearly  -> 2024
func PeriodKey(f Frequency, date time.Time) string {
	switch f {
	case FrequencyWeekly:
		year, week := date.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case FrequencyMonthly:
		return date.Format("2006-01")
	case FrequencyYearly:
		return date.Format("2006")
	default:
		return date.Format("2006-01-02")
	}
}

var weeklyKeyPattern = regexp.MustCompile(`^(\d{4})-W(\d{2})$`)

// InferDateFromKey maps a period key back to a representative date: the exact
// day for daily keys, the first day of the bucket for monthly and yearly keys,
// and the Monday of the ISO week for weekly keys. Completion entries stored
// without a timestamp are dated this way.
func InferDateFromKey(key string) (time.Time, error) {
	if m := weeklyKeyPattern.FindStringSubmatch(key); m != nil {
		year, _ := strconv.Atoi(m[1])
		week, _ := strconv.Atoi(m[2])
		if week < 1 || week > 53 {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidPeriodKey, key)
		}
		return isoWeekMonday(year, week), nil
	}
	for _, layout := range []string{"2006-01-02", "2006-01", "2006"} {
		if parsed, err := time.Parse(layout, key); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidPeriodKey, key)
}

// isoWeekMonday returns the Monday of the given ISO week. January 4th always
// falls in week 1 of its ISO year, which anchors the computation.
func isoWeekMonday(year, week int) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7 // days since Monday
	week1Monday := jan4.AddDate(0, 0, -offset)
	return week1Monday.AddDate(0, 0, (week-1)*7)
}
