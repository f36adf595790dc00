package main

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"preprocessor/internal/dataset"
	"preprocessor/internal/pipeline"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Source directory", statusError, "does not exist", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Source directory:", "[ERROR] does not exist")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Label API", statusOK, "reachable", true)
	if !strings.HasPrefix(got, ansiGreen) || !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected green line, got %q", got)
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}

func TestSummaryLinesDryRunPlan(t *testing.T) {
	prev := dataset.Entry{Filename: "2.png", Label: "cat", Width: 8, Height: 8}
	summary := pipeline.Summary{
		DryRun:     true,
		Dimensions: dataset.Dimensions{Width: 8, Height: 8},
		Actions:    2,
		Planned: []dataset.WriteAction{
			{Filename: "1.png", Label: "cat", Dimensions: dataset.Dimensions{Width: 8, Height: 8}},
			{Filename: "2.png", Label: "dog", Dimensions: dataset.Dimensions{Width: 8, Height: 8}, Previous: &prev},
		},
	}
	out := strings.Join(summaryLines(summary, false), "\n")
	requireContains(t, out, "Build plan (dry run)")
	requireContains(t, out, "Would write")
	requireContains(t, out, "relabel")
	requireNotContains(t, out, "Manifest entries")
}

func TestLimitedListTruncates(t *testing.T) {
	values := make([]string, summaryListLimit+3)
	for i := range values {
		values[i] = fmt.Sprintf("%d.png", i)
	}
	lines := limitedList(values)
	if len(lines) != summaryListLimit+1 {
		t.Fatalf("expected %d lines, got %d", summaryListLimit+1, len(lines))
	}
	requireContains(t, lines[len(lines)-1], "and 3 more")
}
