package domain

import (
	"sync"
)

// RecordStore holds every record parsed during one pipeline run, in file-processing order.
// Records are never deduplicated; Find resolves duplicate keys to the first record appended.
//
// Example usage:
//
//	rs := NewRecordStore()
//	rs.Append(records...)
//	inv := rs.Find("MO_BS_INV", "MNZIRS0108.csv")
type RecordStore struct {
	mu      sync.RWMutex
	records []*FinancialRecord
	index   map[RecordKey][]int // Positions in records, ascending
	files   []string            // Source files in first-seen order
}

// NewRecordStore initializes a RecordStore, optionally seeded with records.
func NewRecordStore(records ...*FinancialRecord) *RecordStore {
	store := &RecordStore{
		index: make(map[RecordKey][]int),
	}
	store.Append(records...)
	return store
}

// Append adds records at the end of the store under a single lock, so one call never interleaves with another.
// Nil records are skipped.
func (rs *RecordStore) Append(records ...*FinancialRecord) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	for _, r := range records {
		if r == nil {
			continue
		}
		key := r.Key()
		if !rs.hasFile(r.SourceFile) {
			rs.files = append(rs.files, r.SourceFile)
		}
		rs.index[key] = append(rs.index[key], len(rs.records))
		rs.records = append(rs.records, r)
	}
}

func (rs *RecordStore) hasFile(name string) bool {
	for _, f := range rs.files {
		if f == name {
			return true
		}
	}
	return false
}

// Find retrieves the first record matching id and sourceFile. Returns nil if no match is found.
//
// Example:
//
//	r := store.Find("MO_BS_INV", "MNZIRS0108.csv")
//	fmt.Println(r.Scale) // → 1000
func (rs *RecordStore) Find(id, sourceFile string) *FinancialRecord {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	if pos, ok := rs.index[RecordKey{ID: id, SourceFile: sourceFile}]; ok && len(pos) > 0 {
		return rs.records[pos[0]]
	}
	return nil
}

// FindAll retrieves every record matching id and sourceFile, in store order.
func (rs *RecordStore) FindAll(id, sourceFile string) []*FinancialRecord {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	pos := rs.index[RecordKey{ID: id, SourceFile: sourceFile}]
	out := make([]*FinancialRecord, 0, len(pos))
	for _, p := range pos {
		out = append(out, rs.records[p])
	}
	return out
}

// Duplicates returns the keys that occur more than once, ordered by their first occurrence.
func (rs *RecordStore) Duplicates() []RecordKey {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	var keys []RecordKey
	for i, r := range rs.records {
		pos := rs.index[r.Key()]
		if len(pos) > 1 && pos[0] == i {
			keys = append(keys, r.Key())
		}
	}
	return keys
}

// All returns a copy of the ordered record sequence.
func (rs *RecordStore) All() []*FinancialRecord {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	out := make([]*FinancialRecord, len(rs.records))
	copy(out, rs.records)
	return out
}

// Files returns the source files contributing records, in first-seen order.
func (rs *RecordStore) Files() []string {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	out := make([]string, len(rs.files))
	copy(out, rs.files)
	return out
}

// Len returns the number of records in the store.
func (rs *RecordStore) Len() int {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return len(rs.records)
}
