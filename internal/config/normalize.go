package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAPI()
	c.normalizeImage()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.SourceDir) == "" {
		c.Paths.SourceDir = defaultSourceDir
	}
	if c.Paths.SourceDir, err = expandPath(strings.TrimSpace(c.Paths.SourceDir)); err != nil {
		return fmt.Errorf("paths.source_dir: %w", err)
	}
	if c.Paths.TargetDir, err = expandPath(strings.TrimSpace(c.Paths.TargetDir)); err != nil {
		return fmt.Errorf("paths.target_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir()
	}
	if c.Paths.StateDir, err = expandPath(strings.TrimSpace(c.Paths.StateDir)); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAPI() {
	if value, ok := os.LookupEnv("PREPROCESSOR_API_URL"); ok && strings.TrimSpace(value) != "" {
		c.API.URL = value
	}
	c.API.URL = strings.TrimRight(strings.TrimSpace(c.API.URL), "/")
	if c.API.URL == "" {
		c.API.URL = defaultAPIURL
	}
	c.API.Mode = strings.ToLower(strings.TrimSpace(c.API.Mode))
	c.API.Mode = strings.ReplaceAll(c.API.Mode, "-", "_")
	if c.API.Mode == "" {
		c.API.Mode = defaultAPIMode
	}
	if c.API.TimeoutSeconds <= 0 {
		c.API.TimeoutSeconds = defaultAPITimeoutSeconds
	}
	if c.API.MaxRetries < 0 {
		c.API.MaxRetries = 0
	}
}

func (c *Config) normalizeImage() {
	c.Image.Resampler = strings.ToLower(strings.TrimSpace(c.Image.Resampler))
	c.Image.Resampler = strings.NewReplacer("-", "", "_", "").Replace(c.Image.Resampler)
	if c.Image.Resampler == "" {
		c.Image.Resampler = defaultResampler
	}
	c.Image.Extensions = NormalizeExtensions(c.Image.Extensions)
}

// NormalizeExtensions lowercases, dot-prefixes, and dedupes file extensions.
// An empty result falls back to the default extension set.
func NormalizeExtensions(values []string) []string {
	exts := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, ext := range values {
		normalized := strings.ToLower(strings.TrimSpace(ext))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		exts = append(exts, normalized)
	}
	if len(exts) == 0 {
		return append([]string(nil), defaultExtensions...)
	}
	return exts
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
