package services_test

import (
	"errors"
	"strings"
	"testing"

	"preprocessor/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternal, "labels", "fetch", "request failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternal) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"labels", "fetch", "request failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestExitCodeMapping(t *testing.T) {
	validationErr := services.Wrap(services.ErrValidation, "dataset", "synchronize", "invalid", nil)
	if code := services.ExitCode(validationErr); code != services.ExitUsage {
		t.Fatalf("expected usage exit for validation error, got %d", code)
	}

	configErr := services.Wrap(services.ErrConfiguration, "config", "load", "bad", nil)
	if code := services.ExitCode(configErr); code != services.ExitUsage {
		t.Fatalf("expected usage exit for configuration error, got %d", code)
	}

	transientErr := services.Wrap(services.ErrTransient, "imageproc", "write", "write failed", errors.New("io"))
	if code := services.ExitCode(transientErr); code != services.ExitFailure {
		t.Fatalf("expected failure exit for transient error, got %d", code)
	}

	if code := services.ExitCode(nil); code != 0 {
		t.Fatalf("expected zero exit for nil error, got %d", code)
	}
}
