package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"preprocessor/internal/dataset"
	"preprocessor/internal/fileutil"
)

const (
	// FileName is the manifest document stored at the root of a target directory.
	FileName = "dataset.json"
	// Version is the manifest document format written by Save.
	Version = 1
)

// LoadInfo reports how the persisted manifest was interpreted.
type LoadInfo struct {
	Path string
	// Exists is true when a manifest file was found.
	Exists bool
	// Malformed is true when the file existed but could not be used. The
	// returned manifest is empty in that case and Cause explains why.
	Malformed bool
	Cause     error
	UpdatedAt time.Time
}

type document struct {
	Version   int             `json:"version"`
	UpdatedAt time.Time       `json:"updated_at"`
	Entries   []dataset.Entry `json:"entries"`
}

// Path returns the manifest location for a target directory.
func Path(dir string) string {
	return filepath.Join(dir, FileName)
}

// Load reads the manifest stored in dir. A missing directory or file yields
// an empty manifest. A malformed file also yields an empty manifest with
// LoadInfo.Malformed set; only unexpected I/O failures return an error.
func Load(dir string) (dataset.Manifest, LoadInfo, error) {
	info := LoadInfo{Path: Path(dir)}
	data, err := os.ReadFile(info.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return dataset.Manifest{}, info, nil
		}
		return nil, info, fmt.Errorf("read manifest: %w", err)
	}
	info.Exists = true

	if len(bytes.TrimSpace(data)) == 0 {
		info.Malformed = true
		info.Cause = errors.New("manifest file is empty")
		return dataset.Manifest{}, info, nil
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		info.Malformed = true
		info.Cause = fmt.Errorf("parse manifest: %w", err)
		return dataset.Manifest{}, info, nil
	}
	if doc.Version != Version {
		info.Malformed = true
		info.Cause = fmt.Errorf("unsupported manifest version %d", doc.Version)
		return dataset.Manifest{}, info, nil
	}
	info.UpdatedAt = doc.UpdatedAt

	m := make(dataset.Manifest, len(doc.Entries))
	for _, entry := range doc.Entries {
		if strings.TrimSpace(entry.Filename) == "" {
			continue
		}
		m[entry.Filename] = entry
	}
	return m, info, nil
}

// Save writes m to dir atomically, creating dir when needed. Entries are
// ordered by filename.
func Save(dir string, m dataset.Manifest) error {
	return saveAt(dir, m, time.Now().UTC())
}

func saveAt(dir string, m dataset.Manifest, now time.Time) error {
	if strings.TrimSpace(dir) == "" {
		return errors.New("manifest directory is empty")
	}
	doc := document{
		Version:   Version,
		UpdatedAt: now,
		Entries:   m.Entries(),
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	data = append(data, '\n')
	if err := fileutil.WriteFileAtomic(Path(dir), data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
