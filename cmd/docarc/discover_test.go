package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/docarc/internal/config"
)

// TestNewDiscoverAllCmd tests the discover-all command creation.
func TestNewDiscoverAllCmd(t *testing.T) {
	t.Parallel()

	cmd := NewDiscoverAllCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "discover-all" {
			t.Errorf("expected use 'discover-all', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has long description", func(t *testing.T) {
		t.Parallel()
		if cmd.Long == "" {
			t.Error("expected non-empty long description")
		}
	})

	t.Run("takes no arguments", func(t *testing.T) {
		t.Parallel()
		if cmd.Args == nil {
			t.Error("expected Args validator")
		}
	})

	t.Run("has start-from flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("start-from")
		if flag == nil {
			t.Fatal("expected start-from flag")
		}
		if flag.Shorthand != "s" {
			t.Errorf("expected shorthand 's', got %q", flag.Shorthand)
		}
		if flag.DefValue != "1" {
			t.Errorf("expected default '1', got %q", flag.DefValue)
		}
	})

	t.Run("has discover-only flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("discover-only")
		if flag == nil {
			t.Fatal("expected discover-only flag")
		}
		if flag.DefValue != "false" {
			t.Errorf("expected default 'false', got %q", flag.DefValue)
		}
	})

	t.Run("has timeout flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("timeout")
		if flag == nil {
			t.Fatal("expected timeout flag")
		}
		if flag.Shorthand != "t" {
			t.Errorf("expected shorthand 't', got %q", flag.Shorthand)
		}
	})

	t.Run("has max-pages flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("max-pages")
		if flag == nil {
			t.Fatal("expected max-pages flag")
		}
		if flag.Shorthand != "p" {
			t.Errorf("expected shorthand 'p', got %q", flag.Shorthand)
		}
	})

	t.Run("has workers flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("workers")
		if flag == nil {
			t.Fatal("expected workers flag")
		}
		if flag.Shorthand != "w" {
			t.Errorf("expected shorthand 'w', got %q", flag.Shorthand)
		}
	})

	t.Run("has config flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("config")
		if flag == nil {
			t.Fatal("expected config flag")
		}
		if flag.Shorthand != "c" {
			t.Errorf("expected shorthand 'c', got %q", flag.Shorthand)
		}
	})

	t.Run("has politeness flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{"min-delay", "max-delay"} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected %s flag", name)
			}
		}
	})

	t.Run("has sweep behavior flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{"failure-threshold", "empty-threshold", "save-every", "base-url", "collection", "data-dir"} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected %s flag", name)
			}
		}
	})
}

// TestGetVerboseFlag tests the verbose flag retrieval.
func TestGetVerboseFlag(t *testing.T) {
	t.Run("returns false when flag not set", func(t *testing.T) {
		cmd := NewDiscoverAllCmd()
		result := getVerboseFlag(cmd)
		if result {
			t.Error("expected false when flag not set")
		}
	})

	t.Run("returns value from parent verbose flag", func(t *testing.T) {
		root := NewRootCmd()
		// Set verbose flag to true
		_ = root.PersistentFlags().Set("verbose", "true")

		discoverCmd, _, err := root.Find([]string{"discover-all"})
		if err != nil {
			t.Fatalf("failed to find discover-all command: %v", err)
		}

		result := getVerboseFlag(discoverCmd)
		if !result {
			t.Error("expected true from parent verbose flag")
		}
	})
}

// TestBuildConfig tests configuration building from flags.
func TestBuildConfig(t *testing.T) {
	t.Run("builds config with default values", func(t *testing.T) {
		cmd := NewDiscoverAllCmd()
		cfg, err := buildConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg == nil {
			t.Fatal("expected non-nil config")
		}
		if cfg.BaseURL != config.DefaultBaseURL {
			t.Errorf("expected base URL %q, got %q", config.DefaultBaseURL, cfg.BaseURL)
		}
		if cfg.Collection != config.DefaultCollection {
			t.Errorf("expected collection %q, got %q", config.DefaultCollection, cfg.Collection)
		}
		if cfg.Workers != config.DefaultWorkers {
			t.Errorf("expected %d workers, got %d", config.DefaultWorkers, cfg.Workers)
		}
		if cfg.MaxPages != config.DefaultMaxPages {
			t.Errorf("expected max pages %d, got %d", config.DefaultMaxPages, cfg.MaxPages)
		}
	})

	t.Run("builds config with custom target", func(t *testing.T) {
		cmd := NewDiscoverAllCmd()
		_ = cmd.Flags().Set("base-url", "https://archive.example.org")
		_ = cmd.Flags().Set("collection", "records/foia")
		cfg, err := buildConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.BaseURL != "https://archive.example.org" {
			t.Errorf("expected custom base URL, got %q", cfg.BaseURL)
		}
		if cfg.Collection != "records/foia" {
			t.Errorf("expected custom collection, got %q", cfg.Collection)
		}
	})

	t.Run("builds config with custom delays", func(t *testing.T) {
		cmd := NewDiscoverAllCmd()
		_ = cmd.Flags().Set("min-delay", "100ms")
		_ = cmd.Flags().Set("max-delay", "250ms")
		cfg, err := buildConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.MinDelay != 100*time.Millisecond {
			t.Errorf("expected min delay 100ms, got %v", cfg.MinDelay)
		}
		if cfg.MaxDelay != 250*time.Millisecond {
			t.Errorf("expected max delay 250ms, got %v", cfg.MaxDelay)
		}
	})

	t.Run("builds config with custom data dir", func(t *testing.T) {
		tmpDir := t.TempDir()
		cmd := NewDiscoverAllCmd()
		_ = cmd.Flags().Set("data-dir", tmpDir)
		cfg, err := buildConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.DataDir != tmpDir {
			t.Errorf("expected data dir %q, got %q", tmpDir, cfg.DataDir)
		}
	})

	t.Run("builds config with custom workers", func(t *testing.T) {
		cmd := NewDiscoverAllCmd()
		_ = cmd.Flags().Set("workers", "4")
		cfg, err := buildConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Workers != 4 {
			t.Errorf("expected 4 workers, got %d", cfg.Workers)
		}
	})

	t.Run("builds config with valid config file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "docarc.yaml")

		content := []byte(`
defaults:
  minDelay: 3s
  maxDelay: 6s
collections:
  records/foia:
    cookie: session=xyz
`)
		if err := os.WriteFile(configPath, content, 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewDiscoverAllCmd()
		_ = cmd.Flags().Set("config", configPath)
		cfg, err := buildConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Collections == nil {
			t.Fatal("expected Collections to be loaded")
		}
		if cfg.Collections.Defaults.MinDelay.Std() != 3*time.Second {
			t.Errorf("expected default min delay 3s, got %v", cfg.Collections.Defaults.MinDelay.Std())
		}
		cc := cfg.Collections.GetCollectionConfig("records/foia")
		if cc.Cookie != "session=xyz" {
			t.Errorf("expected cookie 'session=xyz', got %q", cc.Cookie)
		}
	})

	t.Run("returns error for invalid config file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "invalid.yaml")

		content := []byte(`{invalid yaml`)
		if err := os.WriteFile(configPath, content, 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewDiscoverAllCmd()
		_ = cmd.Flags().Set("config", configPath)
		_, err := buildConfig(cmd)
		if err == nil {
			t.Fatal("expected error for invalid config file")
		}
	})

	t.Run("returns error for missing explicit config file", func(t *testing.T) {
		cmd := NewDiscoverAllCmd()
		_ = cmd.Flags().Set("config", filepath.Join(t.TempDir(), "nope.yaml"))
		_, err := buildConfig(cmd)
		if err == nil {
			t.Fatal("expected error for missing config file")
		}
	})
}
