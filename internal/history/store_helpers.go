package history

import (
	"database/sql"
	"errors"
	"time"
)

const runColumns = "id, started_at, finished_at, source_dir, target_dir, api_url, width, height, scanned, labeled, missing, actions, written, failed, dry_run, status, error_message"

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run         Run
		startedRaw  string
		finishedRaw string
		apiURL      sql.NullString
		dryRun      int64
		statusStr   string
		errorMsg    sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&startedRaw,
		&finishedRaw,
		&run.SourceDir,
		&run.TargetDir,
		&apiURL,
		&run.Width,
		&run.Height,
		&run.Scanned,
		&run.Labeled,
		&run.Missing,
		&run.Actions,
		&run.Written,
		&run.Failed,
		&dryRun,
		&statusStr,
		&errorMsg,
	); err != nil {
		return nil, err
	}
	run.APIURL = apiURL.String
	run.DryRun = dryRun != 0
	run.Status = Status(statusStr)
	run.ErrorMessage = errorMsg.String
	if started, err := parseTimeString(startedRaw); err == nil {
		run.StartedAt = started
	}
	if finished, err := parseTimeString(finishedRaw); err == nil {
		run.FinishedAt = finished
	}
	return &run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

// storedTimeLayout keeps a fixed-width fraction so text order in SQLite
// matches time order.
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(value time.Time) string {
	return value.UTC().Format(storedTimeLayout)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
