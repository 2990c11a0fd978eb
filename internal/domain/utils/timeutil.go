package utils

import (
	"time"
)

// DateStrictlyBetween checks if a date lies strictly between two boundaries, compared by calendar day.
// A date on either boundary day is outside.
func DateStrictlyBetween(date, start, end time.Time) bool {
	date, start, end = TruncateDay(date), TruncateDay(start), TruncateDay(end)
	return date.After(start) && date.Before(end)
}

// TruncateDay returns midnight UTC of the calendar day t falls on in its own location.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddMonths adds n calendar months to t, clamping the day to the last day of the target month.
//
// Example:
//
//	AddMonths(2014-11-30, 3) → 2015-02-28
//	AddMonths(2014-10-01, 3) → 2015-01-01
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	if last := DaysIn(first.Year(), first.Month()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
