// Package imageproc normalizes raw images into dataset samples: decode with
// EXIF orientation applied, resize to fixed dimensions, optional grayscale
// conversion, and atomic encoding into a per-label directory.
package imageproc
