package pipeline

import (
	"github.com/nholding/finseries/internal/audit"
	"github.com/nholding/finseries/internal/record/domain"
	"github.com/nholding/finseries/internal/record/service"
)

// StagedFile is a downloaded object.
type StagedFile struct {
	Key  string // Object key in the blob store
	Path string // Local path in the workspace
}

// FileResult is the outcome of extracting or parsing one file.
// Err is only ever set when Options.IsolateFiles is on; otherwise the first failure aborts the run.
type FileResult struct {
	Key        string // Object key the file came from
	Path       string
	SourceFile string // Base name, the SourceFile of its records
	Records    int
	Err        error
}

// Report describes a run. It is returned on failure too, filled up to the failing stage.
type Report struct {
	Run       *audit.RunInfo
	Stage     Stage // Done, or Failed
	FailedAt  Stage // Stage that failed when Stage is Failed
	Workspace string

	Keys       []string
	Staged     []StagedFile
	Files      []FileResult
	Records    *domain.RecordStore
	Duplicates []domain.RecordKey
	Answers    []service.Answer
}

// Failed reports whether the run ended in the Failed stage.
func (r *Report) Failed() bool { return r.Stage == StageFailed }

// FileErrors returns the isolated per-file failures.
func (r *Report) FileErrors() []FileResult {
	var out []FileResult
	for _, f := range r.Files {
		if f.Err != nil {
			out = append(out, f)
		}
	}
	return out
}
