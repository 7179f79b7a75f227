package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/docarc/internal/config"
	"github.com/nao1215/docarc/internal/controller"
	"github.com/nao1215/docarc/internal/log"
)

// NewDiscoverAllCmd creates the discover-all command.
func NewDiscoverAllCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discover-all",
		Short: "Discover every dataset and archive its files",
		Long: `Discover-all sweeps the dataset id space upward from a starting id,
walks each dataset's listing pages, and downloads every document it
finds. The sweep ends after a streak of consecutive missing datasets.

Progress is saved continuously. Interrupting with Ctrl-C is safe: the
state is written one final time and the next run resumes from it.

Examples:
  # Discover and archive everything
  docarc discover-all

  # Only map what exists, download nothing
  docarc discover-all --discover-only

  # Resume the sweep from a known dataset id
  docarc discover-all --start-from 12

  # Archive with three parallel download workers
  docarc discover-all --workers 3

Configuration file (.docarc) example:
  collections:
    epstein/doj-disclosures:
      cookie: "session_id=abc123"
      headers:
        X-Requested-With: "XMLHttpRequest"`,
		Args: cobra.NoArgs,
		RunE: runDiscoverAllCmd,
	}

	cmd.Flags().IntP("start-from", "s", 1,
		"Dataset id to start the sweep from")
	cmd.Flags().Bool("discover-only", false,
		"Map datasets and files without downloading anything")

	// Target flags
	cmd.Flags().String("base-url", config.DefaultBaseURL,
		"Base URL of the remote repository")
	cmd.Flags().String("collection", config.DefaultCollection,
		"Collection path between the base URL and dataset pages")
	cmd.Flags().String("data-dir", "",
		"Directory for payloads and state (default: XDG data directory)")

	// Politeness flags
	cmd.Flags().Duration("min-delay", config.DefaultMinDelay,
		"Minimum politeness delay before each request")
	cmd.Flags().Duration("max-delay", config.DefaultMaxDelay,
		"Maximum politeness delay before each request")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Per-request timeout")

	// Sweep behavior flags
	cmd.Flags().Int("failure-threshold", config.DefaultFailureThreshold,
		"Consecutive missing datasets that end the sweep")
	cmd.Flags().Int("empty-threshold", config.DefaultEmptyPageThreshold,
		"Consecutive empty pages that end a dataset walk")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Hard page ceiling per dataset")
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Parallel download workers (discovery stays sequential)")
	cmd.Flags().Int("save-every", config.DefaultSaveEvery,
		"Downloads between state checkpoints")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .docarc in current or home directory)")

	return cmd
}

// runDiscoverAllCmd executes the discover-all command.
func runDiscoverAllCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	startID, err := cmd.Flags().GetInt("start-from")
	if err != nil {
		return err
	}
	discoverOnly, err := cmd.Flags().GetBool("discover-only")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// A signal cancels the context; the controller saves state and
	// returns an interrupted summary instead of dying mid-write.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, saving state...")
		cancel()
	}()

	ctrl, err := controller.New(cfg, logger)
	if err != nil {
		return err
	}

	run, err := ctrl.DiscoverAndArchive(ctx, startID, !discoverOnly)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if run.Interrupted {
		fmt.Fprintln(out, "Interrupted. Progress saved; re-run to resume.")
	}
	fmt.Fprintf(out, "Datasets found:   %d (highest id %d)\n", run.DatasetsFound, run.MaxDatasetFound)
	fmt.Fprintf(out, "Files discovered: %d\n", run.FilesDiscovered)
	if !discoverOnly {
		fmt.Fprintf(out, "Files downloaded: %d\n", run.FilesDownloaded)
		if run.FilesFailed > 0 {
			fmt.Fprintf(out, "Files failed:     %d (will retry next run)\n", run.FilesFailed)
		}
	}
	return nil
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.BaseURL, err = cmd.Flags().GetString("base-url")
	if err != nil {
		return nil, err
	}

	cfg.Collection, err = cmd.Flags().GetString("collection")
	if err != nil {
		return nil, err
	}

	dataDir, err := cmd.Flags().GetString("data-dir")
	if err != nil {
		return nil, err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}

	cfg.MinDelay, err = cmd.Flags().GetDuration("min-delay")
	if err != nil {
		return nil, err
	}

	cfg.MaxDelay, err = cmd.Flags().GetDuration("max-delay")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.FailureThreshold, err = cmd.Flags().GetInt("failure-threshold")
	if err != nil {
		return nil, err
	}

	cfg.EmptyPageThreshold, err = cmd.Flags().GetInt("empty-threshold")
	if err != nil {
		return nil, err
	}

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.Workers, err = cmd.Flags().GetInt("workers")
	if err != nil {
		return nil, err
	}

	cfg.SaveEvery, err = cmd.Flags().GetInt("save-every")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load collection-specific settings from the config file.
	// An explicitly specified file must exist; the default search may
	// come up empty.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.Collections, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	cfg.Verbose = getVerboseFlag(cmd)

	return cfg, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}
