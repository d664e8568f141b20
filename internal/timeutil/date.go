// Package timeutil handles the calendar-date values the API exchanges as
// YYYY-MM-DD strings. Dates are pinned to UTC midnight so they survive
// storage in date columns without timezone drift.
package timeutil

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

func ParseDate(value string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", value)
	}
	return t, nil
}

func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// Today returns the current date at UTC midnight.
func Today() time.Time {
	return Truncate(time.Now())
}

// Truncate drops the time-of-day component, keeping the UTC date.
func Truncate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole days from one UTC date to another.
func DaysBetween(from, to time.Time) int {
	return int(Truncate(to).Sub(Truncate(from)) / (24 * time.Hour))
}
