package domain

import (
	"errors"
	"fmt"
)

// ErrParse is matched by every ParseError through errors.Is.
var ErrParse = errors.New("parse error")

// ParseError reports a malformed header or row in a tabular source file.
// Line is 1-based and counts the header; Column is 0-based, -1 when the whole line is concerned.
type ParseError struct {
	SourceFile string
	Line       int
	Column     int
	Reason     string
	Err        error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("parse %s", e.SourceFile)
	if e.Line > 0 {
		msg += fmt.Sprintf(" line %d", e.Line)
	}
	if e.Column >= 0 {
		msg += fmt.Sprintf(" column %d", e.Column)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }
