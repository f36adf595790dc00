// Package dataset holds the dataset model and the synchronizer that merges a
// batch of labeled source images into an existing dataset manifest.
//
// Synchronize is pure: it performs no I/O, never mutates its inputs, and
// returns the merged manifest together with the ordered write actions the
// caller must execute. Entries that a batch does not mention are always
// retained, so a target dataset accumulates samples across runs.
package dataset
