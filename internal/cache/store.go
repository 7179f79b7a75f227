package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/nao1215/docarc/internal/model"
)

const (
	// StateFileName is the canonical archive state file.
	StateFileName = "archive_cache.json"
	// BackupFileName holds the previous generation of the state file.
	BackupFileName = "archive_cache_backup.json"
	// tempSuffix marks an in-flight write.
	tempSuffix = ".tmp"
)

// Store persists the archive state as JSON under a single directory.
//
// Design decision: Save never truncates the live file in place. It first
// copies the current state to a backup, then writes the new state to a
// temp file and renames it over the original. A crash at any point leaves
// either the old state, the new state, or the old state plus a stale temp
// file, and Load tolerates all three. Because of that guarantee the worst
// a crash can cost is the work done since the previous Save.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore creates a Store rooted at dir, creating it if needed.
func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{dir: dir, logger: logger}, nil
}

// StatePath returns the path of the canonical state file.
func (s *Store) StatePath() string {
	return filepath.Join(s.dir, StateFileName)
}

// BackupPath returns the path of the backup state file.
func (s *Store) BackupPath() string {
	return filepath.Join(s.dir, BackupFileName)
}

// Load reads the archive state from disk. A missing or unreadable file
// yields a fresh empty state rather than an error: losing the cache only
// costs re-verification work, it never blocks a run.
func (s *Store) Load() *model.ArchiveState {
	data, err := os.ReadFile(s.StatePath())
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("state file unreadable, starting fresh", "path", s.StatePath(), "error", err)
		}
		return model.NewArchiveState()
	}

	state := model.NewArchiveState()
	if err := json.Unmarshal(data, state); err != nil {
		s.logger.Warn("state file corrupt, starting fresh", "path", s.StatePath(), "error", err)
		return model.NewArchiveState()
	}
	state.RecomputeCounters()
	return state
}

// Save writes the state atomically, preserving the previous generation
// as a backup first.
func (s *Store) Save(state *model.ArchiveState) error {
	state.LastUpdatedAt = time.Now().UTC()

	if err := s.backup(); err != nil {
		// Losing the backup is not worth aborting the save over.
		s.logger.Warn("could not write backup state file", "error", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode archive state: %w", err)
	}

	tmp := s.StatePath() + tempSuffix
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := os.Rename(tmp, s.StatePath()); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

// Reset removes the state file and its backup.
func (s *Store) Reset() error {
	for _, p := range []string{s.StatePath(), s.BackupPath(), s.StatePath() + tempSuffix} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", filepath.Base(p), err)
		}
	}
	return nil
}

// backup copies the current state file to the backup path. A missing
// state file (first run) is not an error.
func (s *Store) backup() error {
	src, err := os.Open(s.StatePath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer src.Close()

	dst, err := os.Create(s.BackupPath())
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}
