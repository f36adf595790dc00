package history_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"preprocessor/internal/history"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(filepath.Join(t.TempDir(), "state", "history.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleRun(id string, started time.Time) history.Run {
	return history.Run{
		ID:         id,
		StartedAt:  started,
		FinishedAt: started.Add(1500 * time.Millisecond),
		SourceDir:  "/data/raw",
		TargetDir:  "/data/out",
		APIURL:     "http://labels.test/images",
		Width:      64,
		Height:     64,
		Scanned:    3,
		Labeled:    2,
		Missing:    1,
		Actions:    2,
		Written:    2,
		Status:     history.StatusCompleted,
	}
}

func TestRecordAndGetRoundTrip(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if err := store.Record(ctx, sampleRun("run-alpha-1", started)); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	got, err := store.Get(ctx, "run-alpha-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.TargetDir != "/data/out" || got.Written != 2 || got.Missing != 1 {
		t.Fatalf("unexpected run: %+v", got)
	}
	if !got.StartedAt.Equal(started) {
		t.Fatalf("unexpected start time: %v", got.StartedAt)
	}
	if got.Duration() != 1500*time.Millisecond {
		t.Fatalf("unexpected duration: %v", got.Duration())
	}
	if got.Status != history.StatusCompleted || got.DryRun {
		t.Fatalf("unexpected status: %+v", got)
	}
}

func TestGetMatchesUniquePrefix(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	now := time.Now().UTC()
	if err := store.Record(ctx, sampleRun("abcd1234", now)); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := store.Record(ctx, sampleRun("abce5678", now)); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	got, err := store.Get(ctx, "abcd")
	if err != nil {
		t.Fatalf("Get by prefix failed: %v", err)
	}
	if got.ID != "abcd1234" {
		t.Fatalf("unexpected match: %s", got.ID)
	}
	if _, err := store.Get(ctx, "abc"); !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("expected short prefix to miss, got %v", err)
	}
	if _, err := store.Get(ctx, "zzzz"); !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListReturnsNewestFirst(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"first", "second", "third"} {
		if err := store.Record(ctx, sampleRun(id, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("Record %s failed: %v", id, err)
		}
	}

	runs, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "third" || runs[1].ID != "second" {
		t.Fatalf("unexpected order: %+v", runs)
	}
}

func TestRecordRejectsEmptyID(t *testing.T) {
	store := openStore(t)
	if err := store.Record(context.Background(), history.Run{}); err == nil {
		t.Fatal("expected error for empty id")
	}
}

func TestPruneRemovesOldRuns(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := store.Record(ctx, sampleRun("old", base)); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := store.Record(ctx, sampleRun("new", base.Add(48*time.Hour))); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	removed, err := store.Prune(ctx, base.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	runs, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != "new" {
		t.Fatalf("unexpected remaining runs: %+v", runs)
	}
}

func TestPruneAndListOrderWithinOneSecond(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := store.Record(ctx, sampleRun("whole-second", base)); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := store.Record(ctx, sampleRun("half-second", base.Add(500*time.Millisecond))); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	runs, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "half-second" || runs[1].ID != "whole-second" {
		t.Fatalf("unexpected order: %+v", runs)
	}

	removed, err := store.Prune(ctx, base.Add(250*time.Millisecond))
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if _, err := store.Get(ctx, "whole-second"); !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("expected whole-second run pruned, got %v", err)
	}
	got, err := store.Get(ctx, "half-second")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !got.StartedAt.Equal(base.Add(500 * time.Millisecond)) {
		t.Fatalf("unexpected started_at %s", got.StartedAt)
	}
}

func TestReopenKeepsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := history.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := store.Record(context.Background(), sampleRun("persisted", time.Now())); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := history.Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.Get(context.Background(), "persisted"); err != nil {
		t.Fatalf("expected run after reopen: %v", err)
	}
}
