// Package main hosts the preprocessor CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration, builds the structured
// logger, and hands work to the internal packages: build drives the
// pipeline, manifest and history inspect what previous builds left behind,
// and check runs the preflight probes. Keep this package thin; new behavior
// belongs in internal/ first.
package main
