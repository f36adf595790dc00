package dataset

import (
	"errors"
	"fmt"
)

// ErrInvalidDimensions is returned when the target dimensions are not positive.
var ErrInvalidDimensions = errors.New("target dimensions must be positive")

// Synchronize merges records into existing and reports which images must be
// (re)written.
//
// A record produces a write action when its filename is absent from existing
// or when the recorded label or dimensions differ; otherwise the existing
// entry is kept as is. Entries not named by any record are retained. When a
// filename repeats, the last record wins and a single action is emitted at the
// position of the first occurrence. Records with an empty filename are
// ignored. existing is never mutated.
func Synchronize(existing Manifest, records []SourceRecord, dims Dimensions) (Manifest, []WriteAction, error) {
	if !dims.Valid() {
		return nil, nil, fmt.Errorf("%w: got %s", ErrInvalidDimensions, dims)
	}

	updated := existing.Clone()
	batch := dedupe(records)
	actions := make([]WriteAction, 0, len(batch))

	for _, record := range batch {
		prev, found := existing[record.Filename]
		if found && prev.Matches(record.Label, dims) {
			continue
		}
		action := WriteAction{
			Filename:   record.Filename,
			Label:      record.Label,
			Dimensions: dims,
		}
		if found {
			prevCopy := prev
			action.Previous = &prevCopy
		}
		updated[record.Filename] = action.Entry()
		actions = append(actions, action)
	}

	return updated, actions, nil
}

// Revert restores filename in updated to its state in existing, removing it
// when existing has no such entry. Callers use it when the side effect of a
// write action fails so the persisted manifest never names an unwritten image.
func Revert(updated, existing Manifest, filename string) {
	if updated == nil {
		return
	}
	if prev, ok := existing[filename]; ok {
		updated[filename] = prev
		return
	}
	delete(updated, filename)
}

// dedupe applies last-write-wins per filename while keeping first-seen order.
func dedupe(records []SourceRecord) []SourceRecord {
	positions := make(map[string]int, len(records))
	out := make([]SourceRecord, 0, len(records))
	for _, record := range records {
		if record.Filename == "" {
			continue
		}
		if pos, ok := positions[record.Filename]; ok {
			out[pos].Label = record.Label
			continue
		}
		positions[record.Filename] = len(out)
		out = append(out, record)
	}
	return out
}
