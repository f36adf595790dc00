package pipeline

import (
	"time"

	"preprocessor/internal/dataset"
	"preprocessor/internal/history"
)

// Failure records an image that could not be written.
type Failure struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

// Summary reports what a build run did.
type Summary struct {
	RunID         string                `json:"run_id"`
	StartedAt     time.Time             `json:"started_at"`
	Duration      time.Duration         `json:"duration_ns"`
	DryRun        bool                  `json:"dry_run"`
	SourceDir     string                `json:"source_dir"`
	TargetDir     string                `json:"target_dir"`
	Dimensions    dataset.Dimensions    `json:"dimensions"`
	Scanned       int                   `json:"scanned"`
	Labeled       int                   `json:"labeled"`
	MissingLabels int                   `json:"missing_labels"`
	Actions       int                   `json:"actions"`
	Written       int                   `json:"written"`
	Failed        int                   `json:"failed"`
	UpToDate      int                   `json:"up_to_date"`
	ManifestSize  int                   `json:"manifest_size"`
	Missing       []string              `json:"missing,omitempty"`
	Failures      []Failure             `json:"failures,omitempty"`
	Planned       []dataset.WriteAction `json:"planned,omitempty"`
}

// Status classifies the run for history.
func (s Summary) Status(runErr error) history.Status {
	switch {
	case runErr != nil:
		return history.StatusFailed
	case s.DryRun:
		return history.StatusDryRun
	case s.Failed > 0:
		return history.StatusPartial
	default:
		return history.StatusCompleted
	}
}

func (s Summary) historyRun(req Request, finished time.Time, runErr error) history.Run {
	run := history.Run{
		ID:         s.RunID,
		StartedAt:  s.StartedAt,
		FinishedAt: finished,
		SourceDir:  s.SourceDir,
		TargetDir:  s.TargetDir,
		APIURL:     req.APIURL,
		Width:      req.Dimensions.Width,
		Height:     req.Dimensions.Height,
		Scanned:    s.Scanned,
		Labeled:    s.Labeled,
		Missing:    s.MissingLabels,
		Actions:    s.Actions,
		Written:    s.Written,
		Failed:     s.Failed,
		DryRun:     s.DryRun,
		Status:     s.Status(runErr),
	}
	if runErr != nil {
		run.ErrorMessage = runErr.Error()
	}
	return run
}
