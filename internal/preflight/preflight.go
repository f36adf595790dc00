package preflight

import (
	"context"
	"strings"

	"preprocessor/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Skipped bool   `json:"skipped,omitempty"`
	Detail  string `json:"detail"`
}

// RunAll executes every preflight check that applies to cfg. Target checks
// are skipped when no target directory is configured.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckSourceDirectory("Source directory", cfg.Paths.SourceDir),
	}

	if strings.TrimSpace(cfg.Paths.TargetDir) == "" {
		results = append(results,
			Result{Name: "Target directory", Skipped: true, Detail: "not set (pass --target-directory)"},
			Result{Name: "Free space", Skipped: true, Detail: "no target directory"},
		)
	} else {
		results = append(results,
			CheckWritableDirectory("Target directory", cfg.Paths.TargetDir),
			CheckFreeSpace("Free space", cfg.Paths.TargetDir, uint64(cfg.Preflight.MinFreeMiB)),
		)
	}

	results = append(results,
		CheckWritableDirectory("State directory", cfg.Paths.StateDir),
		CheckLabelAPI(ctx, "Label API", cfg.API.URL),
	)
	return results
}

// Failed returns the checks that neither passed nor were skipped.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed && !r.Skipped {
			failed = append(failed, r)
		}
	}
	return failed
}
