package pipeline

import (
	"fmt"
	"path"
	"strings"
	"time"
)

const (
	DefaultArchivePattern = "*.zip"
	DefaultTabularPattern = "*.csv"
)

// Options configures a pipeline run.
type Options struct {
	SourcePath string // Logical path listed in the blob store
	StagingDir string // Parent of the per-run workspace; empty uses os.TempDir()

	ArchivePattern string // Glob matched against staged file names, case-insensitive
	TabularPattern string // Glob matched against staged and extracted file names, case-insensitive

	DownloadConcurrency int           // Parallel downloads; 0 or 1 downloads one object at a time
	StageTimeout        time.Duration // Upper bound for each stage; 0 means none

	IsolateFiles  bool // Record archive and parse failures per file instead of aborting the run
	KeepWorkspace bool // Leave the workspace on disk after the run

	StartedBy string // Recorded in the run info
}

// withDefaults fills the patterns left empty.
func (o Options) withDefaults() Options {
	if o.ArchivePattern == "" {
		o.ArchivePattern = DefaultArchivePattern
	}
	if o.TabularPattern == "" {
		o.TabularPattern = DefaultTabularPattern
	}
	if o.DownloadConcurrency < 1 {
		o.DownloadConcurrency = 1
	}
	return o
}

// Validate checks the options for consistency and returns an error if invalid.
func (o Options) Validate() error {
	o = o.withDefaults()
	if _, err := path.Match(o.ArchivePattern, ""); err != nil {
		return fmt.Errorf("invalid archive pattern %q: %w", o.ArchivePattern, err)
	}
	if _, err := path.Match(o.TabularPattern, ""); err != nil {
		return fmt.Errorf("invalid tabular pattern %q: %w", o.TabularPattern, err)
	}
	if o.StageTimeout < 0 {
		return fmt.Errorf("stage timeout cannot be negative")
	}
	return nil
}

// matchName reports whether the base name of p matches pattern, ignoring case.
func matchName(pattern, p string) bool {
	ok, _ := path.Match(strings.ToLower(pattern), strings.ToLower(path.Base(strings.ReplaceAll(p, "\\", "/"))))
	return ok
}
