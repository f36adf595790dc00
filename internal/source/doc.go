// Package source discovers raw images to feed into a build run.
package source
