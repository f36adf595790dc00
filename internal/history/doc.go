// Package history records build runs in a SQLite database under the state
// directory so operators can review what earlier invocations scanned, wrote,
// and skipped.
//
// The schema is created on first open and guarded by a version row; a
// mismatched version is reported rather than migrated. Writes retry briefly
// when another process holds the database.
package history
