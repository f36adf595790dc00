// Package textutil provides text helpers for turning API labels into safe
// filesystem names and readable summaries.
//
// Labels are normalized to Unicode NFC before comparison or sanitization so
// the same class never lands in two directories.
package textutil
