package history

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestRecordAndRecent(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, filepath.Join(t.TempDir(), "state", "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := store.Record(ctx,
		Entry{RunID: "run-1", Region: "JP", StartedAt: base, FinishedAt: base.Add(time.Second), Added: 2, Merged: 1, Changed: true},
		Entry{RunID: "run-1", Region: "us", StartedAt: base, FinishedAt: base.Add(time.Second), FailedFiles: 1, Error: "malformed input"},
	); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := store.Record(ctx,
		Entry{RunID: "run-2", Region: "jp", StartedAt: base.Add(time.Hour), FinishedAt: base.Add(time.Hour), Merged: 3},
	); err != nil {
		t.Fatalf("Record: %v", err)
	}

	all, err := store.Recent(ctx, "", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(all))
	}
	if all[0].RunID != "run-2" {
		t.Errorf("newest first: got %s", all[0].RunID)
	}

	jp, err := store.Recent(ctx, "JP", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(jp) != 2 {
		t.Fatalf("expected 2 jp entries, got %d", len(jp))
	}
	last := jp[1]
	if !last.Changed || last.Added != 2 || last.Merged != 1 || !last.StartedAt.Equal(base) {
		t.Errorf("round trip mismatch: %+v", last)
	}

	limited, err := store.Recent(ctx, "", 1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("limit: %d entries, err %v", len(limited), err)
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := store.db.ExecContext(ctx, "PRAGMA user_version = 99"); err != nil {
		t.Fatal(err)
	}
	_ = store.Close()

	if _, err := Open(ctx, path); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestOpenRejectsForeignDatabase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "other.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.ExecContext(ctx, "CREATE TABLE jobs (id INTEGER PRIMARY KEY)"); err != nil {
		t.Fatal(err)
	}
	_ = db.Close()

	if _, err := Open(ctx, path); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestOpenReusesExistingDatabase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")
	for i := 0; i < 2; i++ {
		store, err := Open(ctx, path)
		if err != nil {
			t.Fatalf("Open #%d: %v", i+1, err)
		}
		_ = store.Close()
	}
}
