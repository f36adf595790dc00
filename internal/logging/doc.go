// Package logging assembles structured slog loggers and formatting helpers used
// across the preprocessor.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code can tag log
// lines with run IDs, stages, and filenames. Console output goes to stderr so
// tables and JSON on stdout stay clean; a JSON copy can be appended to the
// state directory log file.
package logging
