package domain

import (
	"fmt"
	"time"
)

// DetectDisorder returns the index of the first period start that is not strictly after its predecessor,
// or -1 when the sequence is strictly ascending.
//
// EXAMPLE:
//
//	DetectDisorder([]time.Time{jul, oct, oct}) // → 2
//	DetectDisorder([]time.Time{jul, oct, jan}) // → -1
func DetectDisorder(starts []time.Time) int {
	for i := 1; i < len(starts); i++ {
		if !starts[i].After(starts[i-1]) {
			return i
		}
	}
	return -1
}

// Validate checks the record for consistency and returns an error if invalid.
func (r *FinancialRecord) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("record id cannot be empty")
	}
	if r.SourceFile == "" {
		return fmt.Errorf("record %s has no source file", r.ID)
	}
	if len(r.Entries) == 0 {
		return fmt.Errorf("record %s has no entries", r.ID)
	}

	starts := make([]time.Time, len(r.Entries))
	for i, e := range r.Entries {
		starts[i] = e.PeriodStart
	}
	if i := DetectDisorder(starts); i >= 0 {
		return fmt.Errorf("record %s: period %s does not follow %s", r.ID, fmtDate(starts[i]), fmtDate(starts[i-1]))
	}
	return nil
}

func fmtDate(t time.Time) string {
	return t.Format("2006-01-02")
}
