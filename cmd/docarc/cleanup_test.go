package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestNewCleanupCmd tests the cleanup command creation.
func TestNewCleanupCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCleanupCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "cleanup" {
			t.Errorf("expected use 'cleanup', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has yes flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("yes")
		if flag == nil {
			t.Fatal("expected yes flag")
		}
		if flag.Shorthand != "y" {
			t.Errorf("expected shorthand 'y', got %q", flag.Shorthand)
		}
		if flag.DefValue != "false" {
			t.Errorf("expected default 'false', got %q", flag.DefValue)
		}
	})

	t.Run("has data-dir flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("data-dir") == nil {
			t.Error("expected data-dir flag")
		}
	})
}

// TestRunCleanupCmd tests the cleanup command execution.
func TestRunCleanupCmd(t *testing.T) {
	t.Run("removes state and downloads with yes flag", func(t *testing.T) {
		tmpDir := t.TempDir()

		// Seed files that cleanup must remove.
		downloadDir := filepath.Join(tmpDir, "raw")
		stateDir := filepath.Join(tmpDir, "cache")
		for _, dir := range []string{downloadDir, stateDir} {
			if err := os.MkdirAll(dir, 0750); err != nil {
				t.Fatalf("failed to create %s: %v", dir, err)
			}
		}
		if err := os.WriteFile(filepath.Join(downloadDir, "a.pdf"), []byte("payload"), 0600); err != nil {
			t.Fatalf("failed to seed download: %v", err)
		}
		stateFile := filepath.Join(stateDir, "archive_cache.json")
		if err := os.WriteFile(stateFile, []byte("{}"), 0600); err != nil {
			t.Fatalf("failed to seed state: %v", err)
		}

		var buf bytes.Buffer
		cmd := NewCleanupCmd()
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{"--data-dir", tmpDir, "--yes"})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "removed") {
			t.Errorf("expected removal confirmation, got %q", buf.String())
		}
		if _, err := os.Stat(downloadDir); !os.IsNotExist(err) {
			t.Error("expected download directory to be removed")
		}
		if _, err := os.Stat(stateFile); !os.IsNotExist(err) {
			t.Error("expected state file to be removed")
		}
	})

	t.Run("aborts when confirmation is declined", func(t *testing.T) {
		tmpDir := t.TempDir()
		stateDir := filepath.Join(tmpDir, "cache")
		if err := os.MkdirAll(stateDir, 0750); err != nil {
			t.Fatalf("failed to create state dir: %v", err)
		}
		stateFile := filepath.Join(stateDir, "archive_cache.json")
		if err := os.WriteFile(stateFile, []byte("{}"), 0600); err != nil {
			t.Fatalf("failed to seed state: %v", err)
		}

		var buf bytes.Buffer
		cmd := NewCleanupCmd()
		cmd.SetOut(&buf)
		cmd.SetIn(strings.NewReader("n\n"))
		cmd.SetArgs([]string{"--data-dir", tmpDir})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "Aborted") {
			t.Errorf("expected abort message, got %q", buf.String())
		}
		if _, err := os.Stat(stateFile); err != nil {
			t.Error("expected state file to survive a declined cleanup")
		}
	})

	t.Run("proceeds when confirmation is accepted", func(t *testing.T) {
		tmpDir := t.TempDir()

		var buf bytes.Buffer
		cmd := NewCleanupCmd()
		cmd.SetOut(&buf)
		cmd.SetIn(strings.NewReader("y\n"))
		cmd.SetArgs([]string{"--data-dir", tmpDir})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "removed") {
			t.Errorf("expected removal confirmation, got %q", buf.String())
		}
	})
}
