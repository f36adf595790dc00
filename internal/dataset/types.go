package dataset

import (
	"fmt"
	"sort"
)

// Dimensions is the processed image resolution in pixels.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Valid reports whether both dimensions are positive.
func (d Dimensions) Valid() bool {
	return d.Width > 0 && d.Height > 0
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// Entry is one dataset sample as recorded in the manifest.
type Entry struct {
	Filename string `json:"filename"`
	Label    string `json:"label"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// Dimensions returns the processed dimensions recorded for the entry.
func (e Entry) Dimensions() Dimensions {
	return Dimensions{Width: e.Width, Height: e.Height}
}

// Matches reports whether the entry already holds label at dims.
func (e Entry) Matches(label string, dims Dimensions) bool {
	return e.Label == label && e.Width == dims.Width && e.Height == dims.Height
}

// Manifest maps filenames to their dataset entries.
type Manifest map[string]Entry

// Clone returns an independent copy of the manifest. A nil manifest clones to
// an empty one.
func (m Manifest) Clone() Manifest {
	out := make(Manifest, len(m))
	for name, entry := range m {
		out[name] = entry
	}
	return out
}

// Filenames returns the manifest keys in lexical order.
func (m Manifest) Filenames() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Entries returns the manifest entries ordered by filename.
func (m Manifest) Entries() []Entry {
	entries := make([]Entry, 0, len(m))
	for _, name := range m.Filenames() {
		entries = append(entries, m[name])
	}
	return entries
}

// Labels counts entries per label.
func (m Manifest) Labels() map[string]int {
	counts := make(map[string]int)
	for _, entry := range m {
		counts[entry.Label]++
	}
	return counts
}

// SourceRecord pairs a raw image filename with the label resolved for it in
// the current run.
type SourceRecord struct {
	Filename string `json:"filename"`
	Label    string `json:"label"`
}

// WriteAction instructs the caller to process one source image into the
// target dataset.
type WriteAction struct {
	Filename   string     `json:"filename"`
	Label      string     `json:"label"`
	Dimensions Dimensions `json:"dimensions"`
	// Previous holds the entry that the action replaces, if any.
	Previous *Entry `json:"previous,omitempty"`
}

// Relabeled reports whether the action moves an existing sample to a
// different label.
func (a WriteAction) Relabeled() bool {
	return a.Previous != nil && a.Previous.Label != a.Label
}

// Entry returns the manifest entry the action produces.
func (a WriteAction) Entry() Entry {
	return Entry{
		Filename: a.Filename,
		Label:    a.Label,
		Width:    a.Dimensions.Width,
		Height:   a.Dimensions.Height,
	}
}
