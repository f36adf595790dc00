// Package pipeline runs dataset builds end to end.
//
// A Builder locks the target directory, loads its manifest, scans the source
// directory, resolves labels through the label API, and asks the dataset
// synchronizer which images need writing. It then processes those images in
// order and saves the manifest once at the end. Images the API has no label
// for are skipped with a warning. Per-image failures either abort the run or
// revert that image's manifest entry, depending on the request.
package pipeline
