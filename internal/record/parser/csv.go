// Package parser turns the text of one tabular disclosure file into financial records.
//
// The expected layout is a header row followed by one row per metric:
//
//	id,scale,2014-07-01,2014-10-01,2015-01-01
//	MO_BS_INV,1000,10,20,30
//
// The parser never touches the file system; callers hand it the file content.
package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nholding/finseries/internal/record/domain"
)

const (
	idColumn    = "id"
	scaleColumn = "scale"

	// firstPeriodColumn is the index of the first date column.
	firstPeriodColumn = 2
)

// headerDateLayouts are tried in order for every date column of the header.
var headerDateLayouts = []string{
	"2006-01-02",
	"2006-1-2", // permissive: single-digit month/day
	"2006/01/02",
	"01/02/2006",
	time.RFC3339,
}

var defaultScale = decimal.NewFromInt(1)

// ParseString parses sourceText as the content of the file named sourceFile.
func ParseString(sourceText, sourceFile string) ([]*domain.FinancialRecord, error) {
	return Parse(strings.NewReader(sourceText), sourceFile)
}

// Parse reads a header row and every data row from r and returns one record per data row, in row order.
// A header-only or empty input yields an empty slice and no error.
//
// Every failure is a *domain.ParseError:
//   - the header lacks the id or scale column
//   - a data row follows a header without date columns
//   - a date column header is not a date, or dates are not strictly ascending
//   - a row has more cells than the header, an empty id, or a non-numeric scale or value
//
// Blank value cells, including cells missing at the end of a short row, become missing entry values.
func Parse(r io.Reader, sourceFile string) ([]*domain.FinancialRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records := []*domain.FinancialRecord{}

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return records, nil
	}
	if err != nil {
		return nil, csvError(sourceFile, err)
	}

	periods, err := parseHeader(header, sourceFile)
	if err != nil {
		return nil, err
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvError(sourceFile, err)
		}
		line, _ := reader.FieldPos(0)

		if len(periods) == 0 {
			return nil, &domain.ParseError{SourceFile: sourceFile, Line: line, Column: -1, Reason: "no date columns"}
		}
		record, err := parseRow(row, periods, sourceFile, line)
		if err != nil {
			return nil, err
		}
		if err := record.Validate(); err != nil {
			return nil, &domain.ParseError{SourceFile: sourceFile, Line: line, Column: -1, Reason: "invalid record", Err: err}
		}
		records = append(records, record)
	}

	return records, nil
}

// parseHeader validates the id and scale columns and parses every remaining column as a period start.
func parseHeader(header []string, sourceFile string) ([]time.Time, error) {
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	if len(header) < 1 || !strings.EqualFold(strings.TrimSpace(header[0]), idColumn) {
		return nil, &domain.ParseError{SourceFile: sourceFile, Line: 1, Column: 0, Reason: "missing id column"}
	}
	if len(header) < 2 || !strings.EqualFold(strings.TrimSpace(header[1]), scaleColumn) {
		return nil, &domain.ParseError{SourceFile: sourceFile, Line: 1, Column: 1, Reason: "missing scale column"}
	}
	periods := make([]time.Time, 0, len(header)-firstPeriodColumn)
	for col := firstPeriodColumn; col < len(header); col++ {
		d, err := parseDate(header[col])
		if err != nil {
			return nil, &domain.ParseError{SourceFile: sourceFile, Line: 1, Column: col, Reason: fmt.Sprintf("invalid date %q", header[col]), Err: err}
		}
		periods = append(periods, d)
	}

	if i := domain.DetectDisorder(periods); i >= 0 {
		return nil, &domain.ParseError{
			SourceFile: sourceFile,
			Line:       1,
			Column:     i + firstPeriodColumn,
			Reason:     fmt.Sprintf("date %s does not follow %s", periods[i].Format(time.DateOnly), periods[i-1].Format(time.DateOnly)),
		}
	}

	return periods, nil
}

func parseRow(row []string, periods []time.Time, sourceFile string, line int) (*domain.FinancialRecord, error) {
	if len(row) > len(periods)+firstPeriodColumn {
		return nil, &domain.ParseError{
			SourceFile: sourceFile,
			Line:       line,
			Column:     -1,
			Reason:     fmt.Sprintf("row has %d cells, header has %d", len(row), len(periods)+firstPeriodColumn),
		}
	}

	id := strings.TrimSpace(row[0])
	if id == "" {
		return nil, &domain.ParseError{SourceFile: sourceFile, Line: line, Column: 0, Reason: "empty id"}
	}

	scale := defaultScale
	if len(row) > 1 {
		if s := strings.TrimSpace(row[1]); s != "" {
			v, err := decimal.NewFromString(s)
			if err != nil {
				return nil, &domain.ParseError{SourceFile: sourceFile, Line: line, Column: 1, Reason: fmt.Sprintf("invalid scale %q", s), Err: err}
			}
			scale = v
		}
	}

	entries := make([]domain.Entry, len(periods))
	for i, start := range periods {
		entries[i].PeriodStart = start

		col := i + firstPeriodColumn
		if col >= len(row) {
			continue
		}
		cell := strings.TrimSpace(row[col])
		if cell == "" {
			continue
		}
		v, err := decimal.NewFromString(cell)
		if err != nil {
			return nil, &domain.ParseError{SourceFile: sourceFile, Line: line, Column: col, Reason: fmt.Sprintf("invalid value %q", cell), Err: err}
		}
		entries[i].Value = decimal.NewNullDecimal(v)
	}

	return domain.NewFinancialRecord(id, sourceFile, scale, entries), nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var firstErr error
	for _, layout := range headerDateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

func csvError(sourceFile string, err error) error {
	pe := &domain.ParseError{SourceFile: sourceFile, Column: -1, Reason: "malformed csv", Err: err}
	var csvErr *csv.ParseError
	if errors.As(err, &csvErr) {
		pe.Line = csvErr.Line
	}
	return pe
}
