package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"preprocessor/internal/pipeline"
)

const summaryListLimit = 10

func summaryLines(s pipeline.Summary, colorize bool) []string {
	title := "Build summary"
	if s.DryRun {
		title = "Build plan (dry run)"
	}
	lines := renderSectionHeader(title, colorize)
	lines = append(lines,
		renderValueLine("Run ID", s.RunID),
		renderValueLine("Source", s.SourceDir),
		renderValueLine("Target", s.TargetDir),
		renderValueLine("Dimensions", s.Dimensions.String()),
		renderValueLine("Images scanned", humanize.Comma(int64(s.Scanned))),
		renderValueLine("Labeled", humanize.Comma(int64(s.Labeled))),
	)

	if s.MissingLabels > 0 {
		lines = append(lines, renderStatusLine("Missing labels", statusWarn, humanize.Comma(int64(s.MissingLabels)), colorize))
	} else {
		lines = append(lines, renderValueLine("Missing labels", "0"))
	}

	if s.DryRun {
		lines = append(lines,
			renderValueLine("Would write", humanize.Comma(int64(s.Actions))),
			renderValueLine("Up to date", humanize.Comma(int64(s.UpToDate))),
		)
	} else {
		lines = append(lines,
			renderStatusLine("Written", statusOK, humanize.Comma(int64(s.Written)), colorize),
			renderValueLine("Up to date", humanize.Comma(int64(s.UpToDate))),
		)
		if s.Failed > 0 {
			lines = append(lines, renderStatusLine("Failed", statusError, humanize.Comma(int64(s.Failed)), colorize))
		}
		lines = append(lines, renderValueLine("Manifest entries", humanize.Comma(int64(s.ManifestSize))))
	}
	lines = append(lines, renderValueLine("Duration", s.Duration.Round(time.Millisecond).String()))

	if len(s.Missing) > 0 {
		lines = append(lines, "")
		lines = append(lines, renderSectionHeader("Images without a label", colorize)...)
		lines = append(lines, limitedList(s.Missing)...)
	}
	if len(s.Failures) > 0 {
		lines = append(lines, "")
		lines = append(lines, renderSectionHeader("Failed images", colorize)...)
		for _, f := range s.Failures {
			lines = append(lines, renderStatusLine(f.Filename, statusError, f.Error, colorize))
		}
	}
	if s.DryRun && len(s.Planned) > 0 {
		rows := make([][]string, 0, len(s.Planned))
		for _, action := range s.Planned {
			rows = append(rows, []string{action.Filename, action.Label, plannedChange(action.Previous != nil, action.Relabeled())})
		}
		lines = append(lines, "", renderTable([]string{"File", "Label", "Change"}, rows, nil))
	}
	return lines
}

func plannedChange(exists, relabeled bool) string {
	switch {
	case !exists:
		return "new"
	case relabeled:
		return "relabel"
	default:
		return "resize"
	}
}

func limitedList(values []string) []string {
	lines := make([]string, 0, summaryListLimit+1)
	for i, v := range values {
		if i == summaryListLimit {
			lines = append(lines, fmt.Sprintf("%s... and %d more", statusIndent, len(values)-summaryListLimit))
			break
		}
		lines = append(lines, statusIndent+v)
	}
	return lines
}
