package testsupport

import (
	"path/filepath"
	"testing"

	"preprocessor/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Source, target, and state directories live under one temp root; none of
// them are created.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.SourceDir = filepath.Join(base, "raw_images")
	cfgVal.Paths.TargetDir = filepath.Join(base, "dataset")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.API.URL = "http://127.0.0.1:0/images"
	cfgVal.API.MaxRetries = 0
	cfgVal.Image.Width = 8
	cfgVal.Image.Height = 8
	cfgVal.Preflight.MinFreeMiB = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithAPIURL points the config at a label API, usually an httptest server.
func WithAPIURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.API.URL = url
	}
}

// WithAPIMode selects bulk or per-image label lookup.
func WithAPIMode(mode string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.API.Mode = mode
	}
}

// WithDimensions overrides the target image size.
func WithDimensions(width, height int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Image.Width = width
		b.cfg.Image.Height = height
	}
}
