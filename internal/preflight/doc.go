// Package preflight provides readiness checks for the filesystem paths and
// label API a build run depends on.
//
// The check command prints every result; build runs RunAll first and refuses
// to start when a required check fails, so a doomed run fails before it
// touches the target directory.
package preflight
