package imageproc

import (
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// Resampler names a resize filter.
type Resampler string

const (
	NearestNeighbor Resampler = "nearest"
	ApproxBiLinear  Resampler = "approxbilinear"
	BiLinear        Resampler = "bilinear"
	CatmullRom      Resampler = "catmullrom"
	Lanczos         Resampler = "lanczos"
)

// DefaultResampler is used when no filter is configured.
const DefaultResampler = CatmullRom

// ParseResampler maps a configuration value to a Resampler. Dashes,
// underscores, and case are ignored.
func ParseResampler(value string) (Resampler, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.NewReplacer("-", "", "_", "").Replace(normalized)
	switch Resampler(normalized) {
	case "":
		return DefaultResampler, nil
	case NearestNeighbor, ApproxBiLinear, BiLinear, CatmullRom, Lanczos:
		return Resampler(normalized), nil
	default:
		return "", fmt.Errorf("unknown resampler %q", value)
	}
}

func (r Resampler) scaler() draw.Scaler {
	switch r {
	case NearestNeighbor:
		return draw.NearestNeighbor
	case ApproxBiLinear:
		return draw.ApproxBiLinear
	case BiLinear:
		return draw.BiLinear
	default:
		return draw.CatmullRom
	}
}

// resize scales src to exactly width x height, ignoring aspect ratio.
func resize(src image.Image, width, height int, r Resampler) image.Image {
	if r == Lanczos {
		return imaging.Resize(src, width, height, imaging.Lanczos)
	}
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	r.scaler().Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// toGray converts img to an 8-bit single channel image.
func toGray(img image.Image) *image.Gray {
	if gray, ok := img.(*image.Gray); ok {
		return gray
	}
	bounds := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(gray, gray.Bounds(), img, bounds.Min, draw.Src)
	return gray
}
