package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/docarc/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *RunDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func sampleRun(mode string, started time.Time) *model.RunSummary {
	return &model.RunSummary{
		Mode:            mode,
		StartedAt:       started,
		FinishedAt:      started.Add(10 * time.Minute),
		DatasetsFound:   4,
		FilesDiscovered: 120,
		FilesDownloaded: 118,
		FilesFailed:     2,
		MaxDatasetFound: 4,
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, "docarc.db")); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
	})

	t.Run("CreateIfNotExists=false requires existing database", func(t *testing.T) {
		t.Parallel()

		opts := Options{CreateIfNotExists: false, EnableWAL: true}
		if _, err := Open(t.TempDir(), opts); err == nil {
			t.Error("Open() error = nil, want missing-database error")
		}
	})
}

func TestRunDB_InsertAndRecentRuns(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		run := sampleRun("archive", base.Add(time.Duration(i)*time.Hour))
		id, err := db.InsertRunSummary(ctx, run)
		if err != nil {
			t.Fatalf("InsertRunSummary() error = %v", err)
		}
		if id == 0 {
			t.Error("InsertRunSummary() returned zero id")
		}
	}

	runs, err := db.RecentRuns(ctx, 2)
	if err != nil {
		t.Fatalf("RecentRuns() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if !runs[0].StartedAt.After(runs[1].StartedAt) {
		t.Error("runs not ordered newest first")
	}
	if runs[0].Mode != "archive" {
		t.Errorf("Mode = %q, want %q", runs[0].Mode, "archive")
	}
	if runs[0].FilesDownloaded != 118 {
		t.Errorf("FilesDownloaded = %d, want 118", runs[0].FilesDownloaded)
	}
	if got := runs[0].Duration(); got != 10*time.Minute {
		t.Errorf("Duration() = %v, want 10m", got)
	}
}

func TestRunDB_InterruptedRoundTrip(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	run := sampleRun("discover", time.Now().UTC())
	run.Interrupted = true
	if _, err := db.InsertRunSummary(ctx, run); err != nil {
		t.Fatalf("InsertRunSummary() error = %v", err)
	}

	runs, err := db.RecentRuns(ctx, 1)
	if err != nil {
		t.Fatalf("RecentRuns() error = %v", err)
	}
	if len(runs) != 1 || !runs[0].Interrupted {
		t.Error("interrupted flag did not survive the round trip")
	}
}

func TestRunDB_RunCount(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	count, err := db.RunCount(ctx)
	if err != nil {
		t.Fatalf("RunCount() error = %v", err)
	}
	if count != 0 {
		t.Errorf("RunCount() = %d on empty database, want 0", count)
	}

	if _, err := db.InsertRunSummary(ctx, sampleRun("archive", time.Now().UTC())); err != nil {
		t.Fatal(err)
	}
	count, err = db.RunCount(ctx)
	if err != nil {
		t.Fatalf("RunCount() error = %v", err)
	}
	if count != 1 {
		t.Errorf("RunCount() = %d, want 1", count)
	}
}

func TestRunDB_RecentRunsEmpty(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	runs, err := db.RecentRuns(context.Background(), 10)
	if err != nil {
		t.Fatalf("RecentRuns() error = %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("got %d runs on empty database, want 0", len(runs))
	}
}
