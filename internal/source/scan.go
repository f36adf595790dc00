package source

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"preprocessor/internal/services"
)

// Image is a raw image candidate found in the source directory.
type Image struct {
	Filename string
	Path     string
	// ID is the filename without its extension; the label API keys on it.
	ID string
}

// DefaultExtensions lists the file extensions scanned when none are given.
var DefaultExtensions = []string{".png"}

// Scan lists regular files directly inside dir whose extension matches one
// of extensions, compared case-insensitively. Results are sorted by
// filename. Subdirectories and hidden files are ignored.
func Scan(dir string, extensions []string) ([]Image, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "source", "scan", "source directory not set", nil)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "source", "scan", fmt.Sprintf("source directory %q does not exist", dir), err)
		}
		return nil, fmt.Errorf("read source directory: %w", err)
	}

	allowed := extensionSet(extensions)
	images := make([]Image, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if !entry.Type().IsRegular() {
			if entry.Type()&fs.ModeSymlink == 0 {
				continue
			}
			info, err := os.Stat(filepath.Join(dir, name))
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
		}
		ext := filepath.Ext(name)
		if _, ok := allowed[strings.ToLower(ext)]; !ok {
			continue
		}
		images = append(images, Image{
			Filename: name,
			Path:     filepath.Join(dir, name),
			ID:       strings.TrimSuffix(name, ext),
		})
	}
	sort.Slice(images, func(i, j int) bool {
		return images[i].Filename < images[j].Filename
	})
	return images, nil
}

// IDs returns the API identifiers of images in order.
func IDs(images []Image) []string {
	ids := make([]string, len(images))
	for i, img := range images {
		ids[i] = img.ID
	}
	return ids
}

func extensionSet(extensions []string) map[string]struct{} {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	set := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = struct{}{}
	}
	return set
}
