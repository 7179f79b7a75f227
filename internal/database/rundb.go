package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/docarc/internal/model"
)

// dbFileName is the run-history database file.
const dbFileName = "docarc.db"

// FilePath returns where the run-history database lives under dbDir.
func FilePath(dbDir string) string {
	return filepath.Join(dbDir, dbFileName)
}

// RunDB provides SQLite-based storage for the run history: one row per
// completed (or interrupted) discover/archive run.
//
// Design decision: The JSON state file stays the single source of truth
// for file records; the database only accumulates run summaries for
// reporting. Keeping them apart means a corrupt or deleted database never
// costs archive progress, and the hand-inspectable state file never grows
// a binary sibling it depends on.
type RunDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures RunDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging. Recommended: a run writes
	// its summary while the stats command may be reading.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a RunDB in the specified directory.
// If CreateIfNotExists is false and the database doesn't exist, an error
// is returned; the stats command uses that to report "no runs yet".
func Open(dbDir string, opts Options) (*RunDB, error) {
	dbPath := filepath.Join(dbDir, dbFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("run history not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating
	// new files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &RunDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Close closes the database connection.
func (rdb *RunDB) Close() error {
	return rdb.db.Close()
}

// Path returns the path to the database file.
func (rdb *RunDB) Path() string {
	return rdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (rdb *RunDB) createTables() error {
	schema := `
	-- One row per discover/archive run
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		mode TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL,
		datasets_found INTEGER DEFAULT 0,
		files_discovered INTEGER DEFAULT 0,
		files_downloaded INTEGER DEFAULT 0,
		files_failed INTEGER DEFAULT 0,
		max_dataset_found INTEGER DEFAULT 0,
		interrupted INTEGER DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// InsertRunSummary appends one run to the history and returns its row id.
func (rdb *RunDB) InsertRunSummary(ctx context.Context, run *model.RunSummary) (int64, error) {
	query := `
	INSERT INTO runs (mode, started_at, finished_at, datasets_found,
		files_discovered, files_downloaded, files_failed, max_dataset_found, interrupted)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := rdb.db.ExecContext(ctx, query,
		run.Mode,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
		run.DatasetsFound,
		run.FilesDiscovered,
		run.FilesDownloaded,
		run.FilesFailed,
		run.MaxDatasetFound,
		boolToInt(run.Interrupted),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run summary: %w", err)
	}

	return result.LastInsertId()
}

// RecentRuns returns up to limit run summaries, newest first.
func (rdb *RunDB) RecentRuns(ctx context.Context, limit int) ([]model.RunSummary, error) {
	query := `
	SELECT id, mode, started_at, finished_at, datasets_found,
		files_discovered, files_downloaded, files_failed, max_dataset_found, interrupted
	FROM runs
	ORDER BY started_at DESC, id DESC
	LIMIT ?
	`

	rows, err := rdb.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query run history: %w", err)
	}
	defer rows.Close()

	var results []model.RunSummary
	for rows.Next() {
		var run model.RunSummary
		var started, finished string
		var interrupted int

		if err := rows.Scan(
			&run.ID,
			&run.Mode,
			&started,
			&finished,
			&run.DatasetsFound,
			&run.FilesDiscovered,
			&run.FilesDownloaded,
			&run.FilesFailed,
			&run.MaxDatasetFound,
			&interrupted,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run summary: %w", err)
		}

		run.StartedAt = parseTimestamp(started)
		run.FinishedAt = parseTimestamp(finished)
		run.Interrupted = interrupted != 0
		results = append(results, run)
	}

	return results, rows.Err()
}

// RunCount returns the total number of recorded runs.
func (rdb *RunDB) RunCount(ctx context.Context) (int, error) {
	var count int
	if err := rdb.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return count, nil
}

// parseTimestamp handles the timestamp formats SQLite may return
// depending on how the value was written.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// boolToInt stores a bool in an INTEGER column.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
