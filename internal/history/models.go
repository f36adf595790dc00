package history

import "time"

// Status represents how a build run ended.
type Status string

const (
	// StatusCompleted marks a run where every planned image was written.
	StatusCompleted Status = "completed"
	// StatusPartial marks a run that skipped one or more images after failures.
	StatusPartial Status = "partial"
	// StatusFailed marks a run that aborted before saving the manifest.
	StatusFailed Status = "failed"
	// StatusDryRun marks a run that only planned actions.
	StatusDryRun Status = "dry_run"
)

// Run is one recorded build invocation.
type Run struct {
	ID           string    `json:"id"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	SourceDir    string    `json:"source_dir"`
	TargetDir    string    `json:"target_dir"`
	APIURL       string    `json:"api_url,omitempty"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	Scanned      int       `json:"scanned"`
	Labeled      int       `json:"labeled"`
	Missing      int       `json:"missing_labels"`
	Actions      int       `json:"actions"`
	Written      int       `json:"written"`
	Failed       int       `json:"failed"`
	DryRun       bool      `json:"dry_run"`
	Status       Status    `json:"status"`
	ErrorMessage string    `json:"error,omitempty"`
}

// Duration reports how long the run took.
func (r Run) Duration() time.Duration {
	if r.StartedAt.IsZero() || r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
