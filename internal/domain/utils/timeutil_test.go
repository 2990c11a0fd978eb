package utils

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAddMonths(t *testing.T) {
	testCases := []struct {
		name string
		in   time.Time
		n    int
		want time.Time
	}{
		{name: "quarter start", in: day(2014, time.October, 1), n: 3, want: day(2015, time.January, 1)},
		{name: "clamps to february", in: day(2014, time.November, 30), n: 3, want: day(2015, time.February, 28)},
		{name: "clamps to leap february", in: day(2015, time.November, 30), n: 3, want: day(2016, time.February, 29)},
		{name: "month end to month end", in: day(2014, time.January, 31), n: 3, want: day(2014, time.April, 30)},
		{name: "negative", in: day(2014, time.March, 31), n: -1, want: day(2014, time.February, 28)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := AddMonths(tc.in, tc.n); !got.Equal(tc.want) {
				t.Errorf("AddMonths(%v, %d) = %v, want %v", tc.in, tc.n, got, tc.want)
			}
		})
	}
}

func TestDateStrictlyBetween(t *testing.T) {
	start := day(2014, time.October, 1)
	end := day(2015, time.January, 1)

	testCases := []struct {
		name string
		in   time.Time
		want bool
	}{
		{name: "start day", in: start, want: false},
		{name: "start day afternoon", in: start.Add(15 * time.Hour), want: false},
		{name: "inside", in: day(2014, time.November, 15), want: true},
		{name: "day after start", in: day(2014, time.October, 2), want: true},
		{name: "day before end", in: day(2014, time.December, 31), want: true},
		{name: "end day", in: end, want: false},
		{name: "after", in: day(2015, time.February, 1), want: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DateStrictlyBetween(tc.in, start, end); got != tc.want {
				t.Errorf("DateStrictlyBetween(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestDaysIn(t *testing.T) {
	if got := DaysIn(2016, time.February); got != 29 {
		t.Errorf("DaysIn(2016, February) = %d, want 29", got)
	}
	if got := DaysIn(2014, time.December); got != 31 {
		t.Errorf("DaysIn(2014, December) = %d, want 31", got)
	}
}
