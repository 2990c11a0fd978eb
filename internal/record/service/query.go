package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nholding/finseries/internal/domain/utils"
	period "github.com/nholding/finseries/internal/period/domain"
	"github.com/nholding/finseries/internal/record/domain"
)

// Finder answers point-in-time lookups. RangeQuery scans linearly; an interval-tree implementation can
// replace it behind this interface when files grow beyond tens of entries.
type Finder interface {
	Find(id, sourceFile string, target time.Time) (Result, bool)
}

// Result is a successful lookup: the matched record, the entry whose window contains the target date, and
// its raw value.
type Result struct {
	Record *domain.FinancialRecord
	Entry  domain.Entry
	Window period.Window
	Value  decimal.NullDecimal // As stored; Record.Scale is not applied
}

// Scaled returns Value multiplied by the record's scale. ok is false when the value is missing.
func (r Result) Scaled() (v decimal.Decimal, ok bool) {
	if !r.Value.Valid {
		return decimal.Decimal{}, false
	}
	return r.Value.Decimal.Mul(r.Record.Scale), true
}

// RangeQuery looks up values in a RecordStore.
type RangeQuery struct {
	store *domain.RecordStore
}

func NewRangeQuery(store *domain.RecordStore) *RangeQuery {
	return &RangeQuery{store: store}
}

// Find returns the value metric id had in sourceFile at target.
//
// The first record matching (id, sourceFile) is used. Its entries are scanned in order and the first entry whose
// quarterly window strictly contains target wins: target on the window's first day or on the day after the
// quarter does not match.
//
// A miss is not an error: ok is false when no record or no window matches.
//
// Example:
//
//	// MNZIRS0108.csv: MO_BS_INV with 2014-07-01=10, 2014-10-01=20, 2015-01-01=30
//	res, ok := q.Find("MO_BS_INV", "MNZIRS0108.csv", time.Date(2014, 11, 15, 0, 0, 0, 0, time.UTC))
//	// ok == true, res.Value == 20, res.Window.Label() == "Q4 2014"
func (q *RangeQuery) Find(id, sourceFile string, target time.Time) (Result, bool) {
	record := q.store.Find(id, sourceFile)
	if record == nil || !covers(record, target) {
		return Result{}, false
	}

	for _, e := range record.Entries {
		w := e.Window()
		if w.Contains(target) {
			return Result{Record: record, Entry: e, Window: w, Value: e.Value}, true
		}
	}

	return Result{}, false
}

// covers reports whether target falls inside the span of the record's windows, from the first period start to
// the end of the last window. Dates outside it cannot match any entry.
func covers(record *domain.FinancialRecord, target time.Time) bool {
	first, ok := record.StartDate()
	if !ok {
		return false
	}
	last, _ := record.EndDate()
	return utils.DateStrictlyBetween(target, first, period.QuarterWindow(last).EndDate)
}
