package pipeline

import (
	"fmt"
	"strings"

	"preprocessor/internal/config"
	"preprocessor/internal/dataset"
	"preprocessor/internal/imageproc"
	"preprocessor/internal/services"
)

// Request describes one build run.
type Request struct {
	SourceDir    string
	TargetDir    string
	APIURL       string
	APIMode      string
	Dimensions   dataset.Dimensions
	Grayscale    bool
	Resampler    imageproc.Resampler
	Extensions   []string
	DryRun       bool
	AbortOnError bool
}

// RequestFromConfig builds a Request from resolved configuration.
func RequestFromConfig(cfg *config.Config) (Request, error) {
	if cfg == nil {
		return Request{}, services.Wrap(services.ErrConfiguration, "pipeline", "request", "configuration unavailable", nil)
	}
	resampler, err := imageproc.ParseResampler(cfg.Image.Resampler)
	if err != nil {
		return Request{}, services.Wrap(services.ErrConfiguration, "pipeline", "request", "invalid resampler", err)
	}
	req := Request{
		SourceDir:    cfg.Paths.SourceDir,
		TargetDir:    cfg.Paths.TargetDir,
		APIURL:       cfg.API.URL,
		APIMode:      cfg.API.Mode,
		Dimensions:   dataset.Dimensions{Width: cfg.Image.Width, Height: cfg.Image.Height},
		Grayscale:    cfg.Image.Grayscale,
		Resampler:    resampler,
		Extensions:   append([]string(nil), cfg.Image.Extensions...),
		AbortOnError: cfg.Run.AbortOnError,
	}
	return req, req.Validate()
}

// Validate reports configuration problems that make the run impossible.
func (r Request) Validate() error {
	if strings.TrimSpace(r.TargetDir) == "" {
		return services.Wrap(services.ErrConfiguration, "pipeline", "request", "target directory is required (--target-directory)", nil)
	}
	if strings.TrimSpace(r.SourceDir) == "" {
		return services.Wrap(services.ErrConfiguration, "pipeline", "request", "source directory is required", nil)
	}
	if !r.Dimensions.Valid() {
		return services.Wrap(services.ErrValidation, "pipeline", "request",
			fmt.Sprintf("width and height must be positive, got %s", r.Dimensions), dataset.ErrInvalidDimensions)
	}
	return nil
}

func (r Request) imageOptions() imageproc.Options {
	return imageproc.Options{
		Dimensions: r.Dimensions,
		Grayscale:  r.Grayscale,
		Resampler:  r.Resampler,
	}
}
