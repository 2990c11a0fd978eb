package service

import (
	"fmt"
	"time"
)

// Query is one point-in-time lookup request.
type Query struct {
	ID         string
	SourceFile string
	Date       time.Time
}

func (q Query) String() string {
	return fmt.Sprintf("%s in %s at %s", q.ID, q.SourceFile, q.Date.Format(time.DateOnly))
}

// Validate checks that every field of the query is set.
func (q Query) Validate() error {
	if q.ID == "" {
		return fmt.Errorf("query id cannot be empty")
	}
	if q.SourceFile == "" {
		return fmt.Errorf("query %s: file cannot be empty", q.ID)
	}
	if q.Date.IsZero() {
		return fmt.Errorf("query %s: date cannot be empty", q.ID)
	}
	return nil
}

// Answer pairs a query with its outcome. Found is false for a miss.
type Answer struct {
	Query  Query
	Result Result
	Found  bool
}

// RunAll executes queries in order against f.
func RunAll(f Finder, queries []Query) []Answer {
	answers := make([]Answer, 0, len(queries))
	for _, q := range queries {
		res, ok := f.Find(q.ID, q.SourceFile, q.Date)
		answers = append(answers, Answer{Query: q, Result: res, Found: ok})
	}
	return answers
}
