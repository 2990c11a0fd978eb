package audit

import (
	"time"

	"github.com/nholding/finseries/internal/utils"
)

// RunInfo identifies one pipeline run and who started it.
type RunInfo struct {
	ID         string    `json:"id"` // Stable ULID, also names the staging workspace
	StartedBy  string    `json:"started_by"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
}

// NewRunInfo returns a RunInfo with a fresh ID, the current timestamp and creator.
func NewRunInfo(creator string) *RunInfo {
	var c string
	if creator != "" {
		c = creator
	} else {
		c = "system"
	}

	return &RunInfo{
		ID:        utils.GenerateStableID(),
		StartedBy: c,
		StartedAt: time.Now().UTC(),
	}
}

// Finish stamps the end of the run.
func (r *RunInfo) Finish() {
	r.FinishedAt = time.Now().UTC()
}

// Duration returns how long the run took, or has taken so far.
func (r *RunInfo) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
