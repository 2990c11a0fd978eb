package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestQuarterWindow(t *testing.T) {
	w := QuarterWindow(time.Date(2014, time.October, 1, 13, 30, 0, 0, time.UTC))

	assert.Equal(t, QuarterlyPeriod, w.Granularity)
	assert.Equal(t, day(2014, time.October, 1), w.StartDate)
	assert.Equal(t, day(2015, time.January, 1), w.EndDate)
}

func TestWindowContainsBoundaries(t *testing.T) {
	w := QuarterWindow(day(2014, time.October, 1))

	testCases := []struct {
		name string
		in   time.Time
		want bool
	}{
		{name: "window start day", in: day(2014, time.October, 1), want: false},
		{name: "mid quarter", in: day(2014, time.November, 15), want: true},
		{name: "window end day", in: day(2015, time.January, 1), want: false},
		{name: "last day of quarter", in: day(2014, time.December, 31), want: true},
		{name: "before window", in: day(2014, time.September, 30), want: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, w.Contains(tc.in))
		})
	}
}

func TestWindowLabel(t *testing.T) {
	assert.Equal(t, "Q4 2014", QuarterWindow(day(2014, time.October, 1)).Label())
	assert.Equal(t, "Q1 2015", QuarterWindow(day(2015, time.January, 1)).Label())
	assert.Equal(t, "2014-11-15..2015-02-15", QuarterWindow(day(2014, time.November, 15)).Label())
}
