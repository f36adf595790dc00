package dataset_test

import (
	"errors"
	"reflect"
	"testing"

	"preprocessor/internal/dataset"
)

func entry(name, label string, w, h int) dataset.Entry {
	return dataset.Entry{Filename: name, Label: label, Width: w, Height: h}
}

func TestSynchronizeEmptyManifest(t *testing.T) {
	records := []dataset.SourceRecord{
		{Filename: "a.jpg", Label: "dog"},
		{Filename: "b.jpg", Label: "cat"},
	}
	dims := dataset.Dimensions{Width: 100, Height: 100}

	updated, actions, err := dataset.Synchronize(dataset.Manifest{}, records, dims)
	if err != nil {
		t.Fatalf("Synchronize returned error: %v", err)
	}

	want := dataset.Manifest{
		"a.jpg": entry("a.jpg", "dog", 100, 100),
		"b.jpg": entry("b.jpg", "cat", 100, 100),
	}
	if !reflect.DeepEqual(updated, want) {
		t.Fatalf("unexpected manifest: got %#v want %#v", updated, want)
	}
	if len(actions) != 2 {
		t.Fatalf("expected 2 actions, got %d", len(actions))
	}
	if actions[0].Filename != "a.jpg" || actions[0].Label != "dog" {
		t.Fatalf("unexpected first action: %#v", actions[0])
	}
	if actions[1].Filename != "b.jpg" || actions[1].Label != "cat" {
		t.Fatalf("unexpected second action: %#v", actions[1])
	}
	for _, action := range actions {
		if action.Dimensions != dims {
			t.Fatalf("expected dims %v on action, got %v", dims, action.Dimensions)
		}
		if action.Previous != nil {
			t.Fatalf("expected no previous entry for new image %q", action.Filename)
		}
	}
}

func TestSynchronizeIsIdempotent(t *testing.T) {
	existing := dataset.Manifest{"old.png": entry("old.png", "bird", 64, 64)}
	records := []dataset.SourceRecord{
		{Filename: "a.png", Label: "dog"},
		{Filename: "b.png", Label: "cat"},
	}
	dims := dataset.Dimensions{Width: 64, Height: 64}

	first, actions, err := dataset.Synchronize(existing, records, dims)
	if err != nil {
		t.Fatalf("first Synchronize: %v", err)
	}
	if len(actions) != 2 {
		t.Fatalf("expected 2 actions on first run, got %d", len(actions))
	}

	again, _, err := dataset.Synchronize(existing, records, dims)
	if err != nil {
		t.Fatalf("repeat Synchronize: %v", err)
	}
	if !reflect.DeepEqual(first, again) {
		t.Fatalf("expected identical manifests for identical inputs")
	}

	second, actions, err := dataset.Synchronize(first, records, dims)
	if err != nil {
		t.Fatalf("second Synchronize: %v", err)
	}
	if len(actions) != 0 {
		t.Fatalf("expected no actions on second run, got %#v", actions)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("manifest changed on second run: %#v vs %#v", first, second)
	}
}

func TestSynchronizeRetainsUnmentionedEntries(t *testing.T) {
	existing := dataset.Manifest{
		"keep.png":  entry("keep.png", "bird", 32, 32),
		"other.png": entry("other.png", "fish", 128, 128),
	}
	records := []dataset.SourceRecord{{Filename: "new.png", Label: "dog"}}

	updated, _, err := dataset.Synchronize(existing, records, dataset.Dimensions{Width: 64, Height: 64})
	if err != nil {
		t.Fatalf("Synchronize: %v", err)
	}
	for name, want := range existing {
		got, ok := updated[name]
		if !ok {
			t.Fatalf("expected %q to be retained", name)
		}
		if got != want {
			t.Fatalf("entry %q changed: got %#v want %#v", name, got, want)
		}
	}
	if len(updated) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(updated))
	}
}

func TestSynchronizeDoesNotMutateExisting(t *testing.T) {
	existing := dataset.Manifest{"a.png": entry("a.png", "cat", 64, 64)}
	snapshot := existing.Clone()

	_, _, err := dataset.Synchronize(existing, []dataset.SourceRecord{
		{Filename: "a.png", Label: "dog"},
		{Filename: "b.png", Label: "cat"},
	}, dataset.Dimensions{Width: 64, Height: 64})
	if err != nil {
		t.Fatalf("Synchronize: %v", err)
	}
	if !reflect.DeepEqual(existing, snapshot) {
		t.Fatalf("existing manifest was mutated: %#v", existing)
	}
}

func TestSynchronizeUpsertsEveryRecord(t *testing.T) {
	existing := dataset.Manifest{
		"a.png": entry("a.png", "cat", 64, 64),
		"b.png": entry("b.png", "dog", 32, 32),
	}
	records := []dataset.SourceRecord{
		{Filename: "a.png", Label: "cat"},
		{Filename: "b.png", Label: "dog"},
		{Filename: "c.png", Label: "bird"},
	}
	dims := dataset.Dimensions{Width: 64, Height: 64}

	updated, _, err := dataset.Synchronize(existing, records, dims)
	if err != nil {
		t.Fatalf("Synchronize: %v", err)
	}
	for _, record := range records {
		got := updated[record.Filename]
		want := entry(record.Filename, record.Label, dims.Width, dims.Height)
		if got != want {
			t.Fatalf("entry %q: got %#v want %#v", record.Filename, got, want)
		}
	}
}

func TestSynchronizeLastWriteWins(t *testing.T) {
	records := []dataset.SourceRecord{
		{Filename: "f.png", Label: "cat"},
		{Filename: "g.png", Label: "bird"},
		{Filename: "f.png", Label: "dog"},
	}

	updated, actions, err := dataset.Synchronize(nil, records, dataset.Dimensions{Width: 10, Height: 10})
	if err != nil {
		t.Fatalf("Synchronize: %v", err)
	}
	if updated["f.png"].Label != "dog" {
		t.Fatalf("expected last label to win, got %q", updated["f.png"].Label)
	}
	if len(actions) != 2 {
		t.Fatalf("expected one action per distinct filename, got %#v", actions)
	}
	if actions[0].Filename != "f.png" || actions[0].Label != "dog" {
		t.Fatalf("expected first action for f.png with final label, got %#v", actions[0])
	}
	if actions[1].Filename != "g.png" {
		t.Fatalf("expected second action for g.png, got %#v", actions[1])
	}
}

func TestSynchronizeDuplicateResolvingToExistingEmitsNothing(t *testing.T) {
	existing := dataset.Manifest{"f.png": entry("f.png", "cat", 64, 64)}
	records := []dataset.SourceRecord{
		{Filename: "f.png", Label: "dog"},
		{Filename: "f.png", Label: "cat"},
	}

	updated, actions, err := dataset.Synchronize(existing, records, dataset.Dimensions{Width: 64, Height: 64})
	if err != nil {
		t.Fatalf("Synchronize: %v", err)
	}
	if len(actions) != 0 {
		t.Fatalf("expected no actions, got %#v", actions)
	}
	if updated["f.png"].Label != "cat" {
		t.Fatalf("expected cat label, got %q", updated["f.png"].Label)
	}
}

func TestSynchronizeChangeDetection(t *testing.T) {
	existing := dataset.Manifest{"f.png": entry("f.png", "cat", 64, 64)}
	records := []dataset.SourceRecord{{Filename: "f.png", Label: "cat"}}

	_, actions, err := dataset.Synchronize(existing, records, dataset.Dimensions{Width: 64, Height: 64})
	if err != nil {
		t.Fatalf("Synchronize: %v", err)
	}
	if len(actions) != 0 {
		t.Fatalf("expected no actions for up-to-date entry, got %#v", actions)
	}

	updated, actions, err := dataset.Synchronize(existing, records, dataset.Dimensions{Width: 128, Height: 128})
	if err != nil {
		t.Fatalf("Synchronize: %v", err)
	}
	if len(actions) != 1 || actions[0].Filename != "f.png" {
		t.Fatalf("expected exactly one action for f.png, got %#v", actions)
	}
	if actions[0].Previous == nil || actions[0].Previous.Width != 64 {
		t.Fatalf("expected previous entry to be reported, got %#v", actions[0].Previous)
	}
	if actions[0].Relabeled() {
		t.Fatal("dimension change must not count as relabel")
	}
	if got := updated["f.png"]; got.Width != 128 || got.Height != 128 {
		t.Fatalf("expected entry resized to 128x128, got %#v", got)
	}
}

func TestSynchronizeLabelChangeReportsRelabel(t *testing.T) {
	existing := dataset.Manifest{"f.png": entry("f.png", "cat", 64, 64)}

	_, actions, err := dataset.Synchronize(existing, []dataset.SourceRecord{{Filename: "f.png", Label: "dog"}}, dataset.Dimensions{Width: 64, Height: 64})
	if err != nil {
		t.Fatalf("Synchronize: %v", err)
	}
	if len(actions) != 1 {
		t.Fatalf("expected one action, got %d", len(actions))
	}
	if !actions[0].Relabeled() {
		t.Fatalf("expected relabel, got %#v", actions[0])
	}
	if actions[0].Previous.Label != "cat" {
		t.Fatalf("expected previous label cat, got %q", actions[0].Previous.Label)
	}
}

func TestSynchronizeRejectsInvalidDimensions(t *testing.T) {
	for _, dims := range []dataset.Dimensions{{Width: 0, Height: 10}, {Width: 10, Height: -1}} {
		if _, _, err := dataset.Synchronize(nil, nil, dims); !errors.Is(err, dataset.ErrInvalidDimensions) {
			t.Fatalf("expected ErrInvalidDimensions for %v, got %v", dims, err)
		}
	}
}

func TestSynchronizeIgnoresEmptyFilenames(t *testing.T) {
	updated, actions, err := dataset.Synchronize(nil, []dataset.SourceRecord{{Filename: "", Label: "cat"}}, dataset.Dimensions{Width: 1, Height: 1})
	if err != nil {
		t.Fatalf("Synchronize: %v", err)
	}
	if len(updated) != 0 || len(actions) != 0 {
		t.Fatalf("expected empty result, got %#v %#v", updated, actions)
	}
}

func TestRevert(t *testing.T) {
	existing := dataset.Manifest{"a.png": entry("a.png", "cat", 64, 64)}
	updated, _, err := dataset.Synchronize(existing, []dataset.SourceRecord{
		{Filename: "a.png", Label: "dog"},
		{Filename: "b.png", Label: "bird"},
	}, dataset.Dimensions{Width: 64, Height: 64})
	if err != nil {
		t.Fatalf("Synchronize: %v", err)
	}

	dataset.Revert(updated, existing, "a.png")
	if updated["a.png"].Label != "cat" {
		t.Fatalf("expected a.png restored to cat, got %#v", updated["a.png"])
	}
	dataset.Revert(updated, existing, "b.png")
	if _, ok := updated["b.png"]; ok {
		t.Fatal("expected b.png removed after revert")
	}
}

func TestManifestHelpers(t *testing.T) {
	m := dataset.Manifest{
		"b.png": entry("b.png", "cat", 1, 1),
		"a.png": entry("a.png", "cat", 1, 1),
		"c.png": entry("c.png", "dog", 1, 1),
	}
	if got := m.Filenames(); !reflect.DeepEqual(got, []string{"a.png", "b.png", "c.png"}) {
		t.Fatalf("unexpected filenames order: %v", got)
	}
	if got := m.Labels(); got["cat"] != 2 || got["dog"] != 1 {
		t.Fatalf("unexpected label counts: %v", got)
	}
	if entries := m.Entries(); entries[0].Filename != "a.png" {
		t.Fatalf("expected entries sorted by filename, got %v", entries)
	}
	var nilManifest dataset.Manifest
	if clone := nilManifest.Clone(); clone == nil {
		t.Fatal("expected non-nil clone of nil manifest")
	}
}
