package source_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"preprocessor/internal/services"
	"preprocessor/internal/source"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestScanFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.png", "a.PNG", "c.jpg", ".hidden.png", "notes.txt"} {
		touch(t, filepath.Join(dir, name))
	}
	touch(t, filepath.Join(dir, "nested", "d.png"))

	images, err := source.Scan(dir, nil)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("expected 2 images, got %+v", images)
	}
	if images[0].Filename != "a.PNG" || images[0].ID != "a" {
		t.Fatalf("unexpected first image: %+v", images[0])
	}
	if images[1].Filename != "b.png" || images[1].Path != filepath.Join(dir, "b.png") {
		t.Fatalf("unexpected second image: %+v", images[1])
	}
	if ids := source.IDs(images); ids[0] != "a" || ids[1] != "b" {
		t.Fatalf("unexpected ids: %v", ids)
	}
}

func TestScanHonoursExtensions(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "1.png"))
	touch(t, filepath.Join(dir, "2.jpg"))
	touch(t, filepath.Join(dir, "3.jpeg"))

	images, err := source.Scan(dir, []string{"JPG", ".jpeg"})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(images) != 2 || images[0].ID != "2" || images[1].ID != "3" {
		t.Fatalf("unexpected images: %+v", images)
	}
}

func TestScanMissingDirectory(t *testing.T) {
	_, err := source.Scan(filepath.Join(t.TempDir(), "absent"), nil)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestScanEmptyDirectory(t *testing.T) {
	images, err := source.Scan(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(images) != 0 {
		t.Fatalf("expected no images, got %+v", images)
	}
}
