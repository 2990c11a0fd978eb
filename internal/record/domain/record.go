package domain

import (
	"time"

	"github.com/shopspring/decimal"

	period "github.com/nholding/finseries/internal/period/domain"
)

// Entry is one reporting column of a financial record.
// Value is not valid when the source cell was blank; consumers must treat that as missing data.
type Entry struct {
	PeriodStart time.Time           // First day of the reporting window (UTC midnight)
	Value       decimal.NullDecimal // Raw cell value, scale not applied
}

// Window returns the reporting window the entry covers.
func (e Entry) Window() period.Window {
	return period.QuarterWindow(e.PeriodStart)
}

// FinancialRecord is one metric row of a disclosure file, e.g. "MO_BS_INV" in "MNZIRS0108.csv".
//
// Entries keep the left-to-right column order of the source file, which the parser guarantees is ascending
// by PeriodStart. A record is immutable once returned by the parser.
//
// (ID, SourceFile) is the lookup key used by RecordStore.Find. It is not enforced unique.
type FinancialRecord struct {
	ID         string          // Metric identifier within the source file
	SourceFile string          // Base name of the file the record was parsed from
	Scale      decimal.Decimal // Unit multiplier (e.g. 1000), carried but never applied to entry values
	Entries    []Entry
}

// NewFinancialRecord builds a record. The entries slice is owned by the record after the call.
func NewFinancialRecord(id, sourceFile string, scale decimal.Decimal, entries []Entry) *FinancialRecord {
	return &FinancialRecord{
		ID:         id,
		SourceFile: sourceFile,
		Scale:      scale,
		Entries:    entries,
	}
}

// StartDate returns the first entry's period start. ok is false when the record has no entries.
func (r *FinancialRecord) StartDate() (t time.Time, ok bool) {
	if len(r.Entries) == 0 {
		return time.Time{}, false
	}
	return r.Entries[0].PeriodStart, true
}

// EndDate returns the last entry's period start. ok is false when the record has no entries.
func (r *FinancialRecord) EndDate() (t time.Time, ok bool) {
	if len(r.Entries) == 0 {
		return time.Time{}, false
	}
	return r.Entries[len(r.Entries)-1].PeriodStart, true
}

// Key returns the natural lookup key of the record.
func (r *FinancialRecord) Key() RecordKey {
	return RecordKey{ID: r.ID, SourceFile: r.SourceFile}
}

// RecordKey identifies a record by metric id and source file.
type RecordKey struct {
	ID         string
	SourceFile string
}

func (k RecordKey) String() string {
	return k.SourceFile + "#" + k.ID
}
