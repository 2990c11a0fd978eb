package pipeline

import (
	"fmt"
)

// Stage is a step of a pipeline run. Stages run strictly in declaration order; Failed is terminal.
// Setup covers option validation and workspace creation before any store access.
type Stage int

const (
	StageSetup Stage = iota
	StageListing
	StageDownloading
	StageExtracting
	StageParsing
	StageQuerying
	StageDone
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageSetup:
		return "Setup"
	case StageListing:
		return "Listing"
	case StageDownloading:
		return "Downloading"
	case StageExtracting:
		return "Extracting"
	case StageParsing:
		return "Parsing"
	case StageQuerying:
		return "Querying"
	case StageDone:
		return "Done"
	case StageFailed:
		return "Failed"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// StageError reports the stage a run failed in and the originating error.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
