// Package config loads, normalizes, and validates preprocessor configuration.
//
// It supplies repository defaults (the public demo label API endpoint, 512x512
// grayscale output, PNG inputs), expands user paths including tilde
// shortcuts, reads TOML files, and honours the PREPROCESSOR_API_URL
// environment fallback. CLI flags are applied on top of the loaded Config by
// the command layer.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical enum values, and clear validation errors.
package config
