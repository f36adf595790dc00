package imageproc

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"preprocessor/internal/dataset"
	"preprocessor/internal/fileutil"
	"preprocessor/internal/manifest"
	"preprocessor/internal/textutil"
)

// ErrDecode marks source images that could not be read as images.
var ErrDecode = errors.New("decode image")

// Options controls how a source image is normalized.
type Options struct {
	Dimensions dataset.Dimensions
	Grayscale  bool
	Resampler  Resampler
}

// Result describes a written image.
type Result struct {
	Path       string
	Dimensions dataset.Dimensions
	Format     string
}

// Process reads srcPath, resizes it to exactly the requested dimensions,
// optionally converts it to 8-bit grayscale, and writes it to dstPath in the
// format implied by the destination extension. The destination is replaced
// atomically and parent directories are created as needed.
func Process(srcPath, dstPath string, opts Options) (Result, error) {
	if !opts.Dimensions.Valid() {
		return Result{}, fmt.Errorf("%w: %s", dataset.ErrInvalidDimensions, opts.Dimensions)
	}
	format, err := imaging.FormatFromFilename(dstPath)
	if err != nil {
		return Result{}, fmt.Errorf("output format for %s: %w", filepath.Base(dstPath), err)
	}
	resampler := opts.Resampler
	if resampler == "" {
		resampler = DefaultResampler
	}

	src, err := imaging.Open(srcPath, imaging.AutoOrientation(true))
	if err != nil {
		return Result{}, fmt.Errorf("%w %s: %w", ErrDecode, filepath.Base(srcPath), err)
	}

	out := resize(src, opts.Dimensions.Width, opts.Dimensions.Height, resampler)
	if opts.Grayscale {
		out = toGray(out)
	}

	err = fileutil.WriteAtomic(dstPath, 0o644, func(w io.Writer) error {
		return imaging.Encode(w, out, format)
	})
	if err != nil {
		return Result{}, fmt.Errorf("write %s: %w", dstPath, err)
	}
	return Result{Path: dstPath, Dimensions: opts.Dimensions, Format: format.String()}, nil
}

// reservedLabelSuffix is appended to label directories that would shadow
// the manifest or lock file in the target root.
const reservedLabelSuffix = "-label"

// OutputPath returns where an image with the given label is stored inside
// targetDir: one subdirectory per label.
func OutputPath(targetDir, label, filename string) string {
	return filepath.Join(targetDir, labelDir(label), filename)
}

func labelDir(label string) string {
	name := textutil.LabelDirName(label)
	for _, reserved := range []string{manifest.FileName, manifest.LockFileName} {
		if strings.EqualFold(name, reserved) {
			return name + reservedLabelSuffix
		}
	}
	return name
}
