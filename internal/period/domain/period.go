package domain

import (
	"fmt"
	"time"

	"github.com/nholding/finseries/internal/domain/utils"
)

// PeriodGranularity identifies the logical resolution of a reporting window.
// Disclosure files report one column per quarter, so QuarterlyPeriod is the only cadence a window is built with.
type PeriodGranularity string

const (
	QuarterlyPeriod PeriodGranularity = "QUARTERLY"
)

// monthsPerQuarter is the span of a QuarterlyPeriod window in calendar months.
const monthsPerQuarter = 3

// Window is the reporting window covered by one entry of a financial record.
// Windows are derived from an entry's period start and never stored.
//
//	Q4 2014
//	  StartDate: 2014-10-01
//	  EndDate:   2015-01-01 (first day after the quarter)
//
// Membership is evaluated per calendar day with both ends open, see Contains.
type Window struct {
	Granularity PeriodGranularity
	StartDate   time.Time // First day of the window (UTC midnight)
	EndDate     time.Time // StartDate + 3 calendar months (UTC midnight)
}

// QuarterWindow returns the three-calendar-month window starting on the day of start.
//
// Example:
//
//	w := QuarterWindow(time.Date(2014, 10, 1, 0, 0, 0, 0, time.UTC))
//	fmt.Println(w.EndDate.Format("2006-01-02")) // → "2015-01-01"
func QuarterWindow(start time.Time) Window {
	s := utils.TruncateDay(start)
	return Window{
		Granularity: QuarterlyPeriod,
		StartDate:   s,
		EndDate:     utils.AddMonths(s, monthsPerQuarter),
	}
}

// Contains reports whether d falls strictly inside the window: later than the start day and earlier than the end day.
// A date on the window's first day does not match.
func (w Window) Contains(d time.Time) bool {
	return utils.DateStrictlyBetween(d, w.StartDate, w.EndDate)
}

// Label returns a human-readable name, "Q4 2014" for calendar-aligned quarters and the date span otherwise.
func (w Window) Label() string {
	s := w.StartDate
	if s.Day() == 1 && (s.Month()-1)%monthsPerQuarter == 0 {
		return fmt.Sprintf("Q%d %d", int(s.Month()-1)/monthsPerQuarter+1, s.Year())
	}
	return fmt.Sprintf("%s..%s", fmtDate(w.StartDate), fmtDate(w.EndDate))
}

// fmtDate formats t as YYYY-MM-DD.
func fmtDate(t time.Time) string {
	return t.Format("2006-01-02")
}
