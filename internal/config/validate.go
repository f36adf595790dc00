package config

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAPI(); err != nil {
		return err
	}
	if err := c.validateImage(); err != nil {
		return err
	}
	if c.Preflight.MinFreeMiB < 0 {
		return errors.New("preflight.min_free_mib must be >= 0")
	}
	return nil
}

func (c *Config) validateAPI() error {
	if err := ValidateAPIURL(c.API.URL); err != nil {
		return fmt.Errorf("api.url: %w", err)
	}
	switch c.API.Mode {
	case APIModeBulk, APIModePerImage:
	default:
		return fmt.Errorf("api.mode must be %q or %q, got %q", APIModeBulk, APIModePerImage, c.API.Mode)
	}
	if c.API.TimeoutSeconds <= 0 {
		return errors.New("api.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateImage() error {
	if err := ensurePositiveMap(map[string]int{
		"image.width":  c.Image.Width,
		"image.height": c.Image.Height,
	}); err != nil {
		return err
	}
	if _, ok := knownResamplers[c.Image.Resampler]; !ok {
		names := make([]string, 0, len(knownResamplers))
		for name := range knownResamplers {
			names = append(names, name)
		}
		sort.Strings(names)
		return fmt.Errorf("image.resampler %q is not one of %s", c.Image.Resampler, strings.Join(names, ", "))
	}
	if len(c.Image.Extensions) == 0 {
		return errors.New("image.extensions must include at least one extension")
	}
	return nil
}

// ValidateAPIURL checks that raw is an absolute http(s) URL.
func ValidateAPIURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return errors.New("must be set")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse %q: %w", raw, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%q must use http or https", raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%q is missing a host", raw)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if values[key] <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
