// Package services defines shared utilities consumed by the build pipeline and
// its external collaborators.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and image filenames for
//     logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     into consistent CLI exit codes.
//
// Use these helpers when wiring new pipeline logic so error handling and
// observability stay uniform across the tool.
package services
